// Package filler provides the bounded accumulator every world resource is built on.
// A Filler is a value: every method returns a new Filler and never mutates the receiver.
package filler

import "fmt"

// Filler holds a current amount, a signed per-tick rate and a nominal maximum.
//
// Advance keeps the amount inside [0, bound]. The amount may still sit above
// the bound after WithBound lowers it; OverBound reports that overflow.
type Filler struct {
	amount float64
	rate   float64
	bound  float64
}

// Reading is the exported view of a Filler for JSON and storage.
type Reading struct {
	Amount float64 `json:"amount"`
	Rate   float64 `json:"rate"`
	Bound  float64 `json:"bound"`
}

// New creates a Filler with explicit initial values.
func New(amount, rate, bound float64) Filler {
	return Filler{amount: amount, rate: rate, bound: bound}
}

// IsEmpty reports whether the amount is exactly zero.
func (f Filler) IsEmpty() bool {
	return f.amount == 0
}

func (f Filler) Amount() float64 { return f.amount }
func (f Filler) Rate() float64   { return f.rate }
func (f Filler) Bound() float64  { return f.bound }

// OverBound returns how far the amount exceeds the bound, or 0.
func (f Filler) OverBound() float64 {
	over := f.amount - f.bound
	if over > 0 {
		return over
	}
	return 0
}

// Advance moves the amount by one tick of rate.
// Saturated fillers (at the bound going up, at zero going down) are returned
// unchanged. Otherwise the result is clamped in the direction of motion, so a
// filler sitting above a lowered bound drains by its rate instead of snapping.
func (f Filler) Advance() Filler {
	if (f.amount >= f.bound && f.rate > 0) || (f.amount <= 0 && f.rate < 0) {
		return f
	}

	next := f.amount + f.rate
	switch {
	case next > f.bound && f.rate > 0:
		next = f.bound
	case next < 0 && f.rate < 0:
		next = 0
	}
	f.amount = next
	return f
}

func (f Filler) WithAmount(v float64) Filler {
	f.amount = v
	return f
}

func (f Filler) WithRate(v float64) Filler {
	f.rate = v
	return f
}

// WithBound replaces the bound without clamping the amount.
func (f Filler) WithBound(v float64) Filler {
	f.bound = v
	return f
}

// AddToBound raises the bound by v.
func (f Filler) AddToBound(v float64) Filler {
	f.bound += v
	return f
}

// ForceDeposit adds v regardless of the bound.
func (f Filler) ForceDeposit(v float64) Filler {
	f.amount += v
	return f
}

// Deposit adds v if it fits under the bound. When it does not, the receiver
// is returned unchanged along with the room left (bound - amount) and false.
func (f Filler) Deposit(v float64) (Filler, float64, bool) {
	room := f.bound - f.amount
	if v <= room {
		f.amount += v
		return f, v, true
	}
	return f, room, false
}

// ForceWithdraw subtracts v even if the amount goes negative.
func (f Filler) ForceWithdraw(v float64) Filler {
	f.amount -= v
	return f
}

// Withdraw subtracts v if the amount covers it. When it does not, the receiver
// is returned unchanged along with the current amount and false.
func (f Filler) Withdraw(v float64) (Filler, float64, bool) {
	if f.amount >= v {
		f.amount -= v
		return f, v, true
	}
	return f, f.amount, false
}

// Reading returns the exported view of f.
func (f Filler) Reading() Reading {
	return Reading{Amount: f.amount, Rate: f.rate, Bound: f.bound}
}

// String formats the filler as "amount/bound" with two decimals.
func (f Filler) String() string {
	return fmt.Sprintf("%.2f/%.2f", f.amount, f.bound)
}
