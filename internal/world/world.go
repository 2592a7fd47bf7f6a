// Package world implements the coupled resource model: people, food, cleared
// land, wild growth and the hermits living in it.
// A World is a value. Update and Click return a new World and leave the
// receiver untouched, so callers replace the value they hold.
package world

import (
	"fmt"

	"github.com/talgya/clearing/internal/filler"
)

// Coupling constants for the tick rule.
const (
	// UnusedLandThreshold is the unused-land level above which clearing
	// slows as 1/unused instead of running at the fixed floor.
	UnusedLandThreshold = 5.0
	ClearingFloor       = 0.2
	ClearingScale       = 0.1

	FoodPerPerson      = 0.001 // food gained per tick per person
	FoodLossPerCrowded = 0.004 // food lost per tick per person over capacity
)

// World is the complete simulation state.
type World struct {
	People filler.Filler
	Food   filler.Filler
	Land   filler.Filler
	Wild   filler.Filler
	Hermit filler.Filler
}

// New returns the fixed starting world.
func New() World {
	return World{
		People: filler.New(0, -0.001, 10),
		Food:   filler.New(10, 0, 10),
		Land:   filler.New(10, 0, 10),
		Wild:   filler.New(0, 0.01, 0),
		Hermit: filler.New(0, 0.001, 0),
	}
}

// UnusedLand is cleared land not yet given over to food.
func (w World) UnusedLand() float64 {
	return w.Land.Amount() - w.Food.Amount()
}

// Overcrowding is how far people exceed their current bound.
func (w World) Overcrowding() float64 {
	return w.People.OverBound()
}

// clearingRate is the land clearing speed before scaling.
func (w World) clearingRate() float64 {
	unused := w.UnusedLand()
	if unused > UnusedLandThreshold {
		return 1 / unused
	}
	return ClearingFloor
}

// Update advances the world by one tick. Every derived rate and bound is
// computed from the receiver, never from a partially updated sibling.
func (w World) Update() World {
	clearing := w.clearingRate()
	overcrowding := w.Overcrowding()
	intoWoods := !w.Wild.IsEmpty() && overcrowding > 0

	people := w.People.WithBound(w.Land.Amount())
	food := filler.New(
		w.Food.Amount(),
		w.People.Amount()*FoodPerPerson-overcrowding*FoodLossPerCrowded,
		w.Land.Amount(),
	)
	land := w.Land.WithRate(clearing * ClearingScale)
	wild := w.Wild.WithBound(land.Bound() - land.Amount())
	hermit := w.Hermit.WithBound(wild.Amount())

	// People only shrink by tick while crowded; growth comes from births.
	if overcrowding > 0 {
		people = people.Advance()
	}
	if intoWoods {
		hermit = hermit.Advance()
	}

	return World{
		People: people,
		Food:   food.Advance(),
		Land:   land.Advance(),
		Wild:   wild.Advance(),
		Hermit: hermit,
	}
}

// Text renders all five resources as "label: amount/bound" lines.
func (w World) Text() string {
	return fmt.Sprintf("food: %s\npeople: %s\nland: %s\nwild_growth: %s\nwild_people: %s\n",
		w.Food, w.People, w.Land, w.Wild, w.Hermit)
}

// Snapshot is the JSON view of a World.
type Snapshot struct {
	People       filler.Reading `json:"people"`
	Food         filler.Reading `json:"food"`
	Land         filler.Reading `json:"land"`
	Wild         filler.Reading `json:"wild"`
	Hermit       filler.Reading `json:"hermit"`
	Overcrowding float64        `json:"overcrowding"`
	UnusedLand   float64        `json:"unused_land"`
}

// Snapshot returns the exported view of w.
func (w World) Snapshot() Snapshot {
	return Snapshot{
		People:       w.People.Reading(),
		Food:         w.Food.Reading(),
		Land:         w.Land.Reading(),
		Wild:         w.Wild.Reading(),
		Hermit:       w.Hermit.Reading(),
		Overcrowding: w.Overcrowding(),
		UnusedLand:   w.UnusedLand(),
	}
}
