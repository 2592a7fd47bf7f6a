package filler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceKeepsAmountInsideBound(t *testing.T) {
	amounts := []float64{0, 0.5, 3, 9.99, 10}
	rates := []float64{-20, -1, -0.001, 0, 0.001, 0.2, 1, 20}

	for _, amt := range amounts {
		for _, rate := range rates {
			f := New(amt, rate, 10)
			for i := 0; i < 50; i++ {
				f = f.Advance()
				require.GreaterOrEqual(t, f.Amount(), 0.0, "amount=%v rate=%v step=%d", amt, rate, i)
				require.LessOrEqual(t, f.Amount(), f.Bound(), "amount=%v rate=%v step=%d", amt, rate, i)
			}
		}
	}
}

func TestAdvanceSaturates(t *testing.T) {
	full := New(10, 1, 10)
	assert.Equal(t, full, full.Advance())

	empty := New(0, -1, 10)
	assert.Equal(t, empty, empty.Advance())

	assert.Equal(t, 10.0, New(9.5, 1, 10).Advance().Amount())
	assert.Equal(t, 0.0, New(0.5, -1, 10).Advance().Amount())
	assert.Equal(t, 3.5, New(3, 0.5, 10).Advance().Amount())
}

func TestAdvanceDrainsOverflowByRate(t *testing.T) {
	crowded := New(10, -0.5, 10).WithBound(8)
	require.Equal(t, 2.0, crowded.OverBound())

	next := crowded.Advance()
	assert.Equal(t, 9.5, next.Amount())
	assert.Equal(t, 1.5, next.OverBound())
}

func TestOverBound(t *testing.T) {
	assert.Equal(t, 0.0, New(3, 0, 10).OverBound())
	assert.Equal(t, 0.0, New(10, 0, 10).OverBound())
	assert.Equal(t, 2.5, New(12.5, 0, 10).OverBound())
}

func TestWithBoundDoesNotClamp(t *testing.T) {
	f := New(7, 0, 10).WithBound(4)
	assert.Equal(t, 7.0, f.Amount())
	assert.Equal(t, 4.0, f.Bound())
	assert.Equal(t, 3.0, f.OverBound())
}

func TestDeposit(t *testing.T) {
	f := New(8, 0, 10)

	next, moved, ok := f.Deposit(1.5)
	require.True(t, ok)
	assert.Equal(t, 1.5, moved)
	assert.Equal(t, 9.5, next.Amount())

	same, room, ok := f.Deposit(3)
	require.False(t, ok)
	assert.Equal(t, 2.0, room)
	assert.Equal(t, f, same)

	_, room, ok = New(10, 0, 10).Deposit(1)
	assert.False(t, ok)
	assert.Equal(t, 0.0, room)
}

func TestWithdraw(t *testing.T) {
	f := New(4, 0, 10)

	next, moved, ok := f.Withdraw(4)
	require.True(t, ok)
	assert.Equal(t, 4.0, moved)
	assert.True(t, next.IsEmpty())

	same, avail, ok := f.Withdraw(4.5)
	require.False(t, ok)
	assert.Equal(t, 4.0, avail)
	assert.Equal(t, f, same)
}

func TestDepositWithdrawInverse(t *testing.T) {
	amounts := []float64{0, 0.5, 2.25, 7}
	values := []float64{0.25, 1, 2.75}

	for _, amt := range amounts {
		for _, v := range values {
			start := New(amt, 0.125, 10)

			deposited, _, ok := start.Deposit(v)
			require.True(t, ok)
			back, _, ok := deposited.Withdraw(v)
			require.True(t, ok)
			assert.Equal(t, start.Amount(), back.Amount())

			if withdrawn, _, ok := start.Withdraw(v); ok {
				again, _, ok := withdrawn.Deposit(v)
				require.True(t, ok)
				assert.Equal(t, start.Amount(), again.Amount())
			}
		}
	}
}

func TestForceOperationsIgnoreLimits(t *testing.T) {
	f := New(9, 0, 10)
	assert.Equal(t, 12.0, f.ForceDeposit(3).Amount())
	assert.Equal(t, -1.0, f.ForceWithdraw(10).Amount())
	assert.Equal(t, 13.0, f.AddToBound(3).Bound())
}

func TestValueSemantics(t *testing.T) {
	f := New(1, 2, 3)
	_ = f.WithAmount(9).WithRate(9).WithBound(9)
	_ = f.ForceDeposit(5)
	assert.Equal(t, Reading{Amount: 1, Rate: 2, Bound: 3}, f.Reading())
}

func TestString(t *testing.T) {
	assert.Equal(t, "10.00/10.00", New(10, 0, 10).String())
	assert.Equal(t, "0.12/3.50", New(0.123, 0, 3.5).String())
}
