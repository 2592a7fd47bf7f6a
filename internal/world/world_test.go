package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/clearing/internal/filler"
)

func TestNewWorld(t *testing.T) {
	w := New()
	assert.Equal(t, filler.New(0, -0.001, 10), w.People)
	assert.Equal(t, filler.New(10, 0, 10), w.Food)
	assert.Equal(t, filler.New(10, 0, 10), w.Land)
	assert.Equal(t, filler.New(0, 0.01, 0), w.Wild)
	assert.Equal(t, filler.New(0, 0.001, 0), w.Hermit)
}

func TestGatherAtBoundLeavesFood(t *testing.T) {
	w := New().Click(ActionGather)
	assert.Equal(t, 10.0, w.Food.Amount())
	assert.Equal(t, New(), w)
}

func TestGatherTopsUpToBound(t *testing.T) {
	w := New()
	w.Food = filler.New(9.5, 0, 10)

	next, out := w.Apply(ActionGather)
	assert.True(t, out.Applied)
	assert.Equal(t, 0.5, out.Shortfall)
	assert.Equal(t, 10.0, next.Food.Amount())

	w.Food = filler.New(3, 0, 10)
	assert.Equal(t, 4.0, w.Click(ActionGather).Food.Amount())
}

func TestBirthConsumesFood(t *testing.T) {
	w := New()
	w.People = filler.New(1, -0.001, 10)

	next := w.Click(ActionBirth)
	assert.Equal(t, 0.0, next.Food.Amount())
	assert.Equal(t, 2.0, next.People.Amount())
}

func TestBirthWithoutFoodFails(t *testing.T) {
	w := New()
	w.Food = filler.New(9.5, 0, 10)

	next, out := w.Apply(ActionBirth)
	assert.False(t, out.Applied)
	assert.Equal(t, 9.5, out.Shortfall)
	assert.Equal(t, w, next)
}

func TestWarKillsHalfAndFreesLand(t *testing.T) {
	w := New()
	w.People = filler.New(7, -0.001, 10)

	next, out := w.Apply(ActionWar)
	assert.Equal(t, 3.0, out.Deaths)
	assert.Equal(t, 4.0, next.People.Amount())
	assert.Equal(t, w.Land.Bound()+3, next.Land.Bound())
	assert.Equal(t, w.Land.Amount(), next.Land.Amount())
}

func TestUnknownActionIsNoop(t *testing.T) {
	w := New()
	w.People = filler.New(3, -0.001, 10)
	w.Food = filler.New(4.25, 0.01, 10)

	assert.Equal(t, w, w.Click(Action(99)))
	assert.Equal(t, w, w.Click(Action(0)))
}

func TestTitles(t *testing.T) {
	w := New()
	assert.Equal(t, "food", w.Title(ActionGather))
	assert.Equal(t, "birth", w.Title(ActionBirth))
	assert.Equal(t, "war", w.Title(ActionWar))
	assert.Equal(t, "unused", w.Title(Action(7)))
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
		ok   bool
	}{
		{"food", ActionGather, true},
		{" Birth ", ActionBirth, true},
		{"3", ActionWar, true},
		{"99", Action(99), false},
		{"harvest", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAction(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestText(t *testing.T) {
	want := "food: 10.00/10.00\n" +
		"people: 0.00/10.00\n" +
		"land: 10.00/10.00\n" +
		"wild_growth: 0.00/0.00\n" +
		"wild_people: 0.00/0.00\n"
	assert.Equal(t, want, New().Text())
}

func TestUpdateStartingWorldStaysInBounds(t *testing.T) {
	w := New()
	for tick := 0; tick < 1000; tick++ {
		w = w.Update()
		require.GreaterOrEqual(t, w.Land.Amount(), 0.0, "tick %d", tick)
		require.LessOrEqual(t, w.Land.Amount(), w.Land.Bound(), "tick %d", tick)
		require.GreaterOrEqual(t, w.Wild.Amount(), 0.0, "tick %d", tick)
		require.LessOrEqual(t, w.Wild.Amount(), w.Wild.Bound(), "tick %d", tick)
	}
}

func TestUpdateAfterWarClearsLand(t *testing.T) {
	w := New()
	w.People = filler.New(10, -0.001, 10)
	w = w.Click(ActionWar)
	require.Equal(t, 15.0, w.Land.Bound())

	w = w.Update()
	assert.InDelta(t, 10.02, w.Land.Amount(), 1e-9)
	assert.Equal(t, 5.0, w.Wild.Bound())
	assert.InDelta(t, 0.01, w.Wild.Amount(), 1e-9)
	// Food was already at its old bound, so it only starts growing next tick.
	assert.Equal(t, 10.0, w.Food.Amount())
	assert.InDelta(t, 0.005, w.Food.Rate(), 1e-12)

	for tick := 0; tick < 1000; tick++ {
		w = w.Update()
		require.GreaterOrEqual(t, w.Land.Amount(), 0.0, "tick %d", tick)
		require.LessOrEqual(t, w.Land.Amount(), w.Land.Bound(), "tick %d", tick)
		require.GreaterOrEqual(t, w.Wild.Amount(), 0.0, "tick %d", tick)
		require.GreaterOrEqual(t, w.People.Amount(), 0.0, "tick %d", tick)
	}
	assert.Equal(t, 15.0, w.Land.Amount())
}

func TestUpdateOvercrowded(t *testing.T) {
	w := World{
		People: filler.New(10, -0.001, 8),
		Food:   filler.New(4, 0, 8),
		Land:   filler.New(8, 0, 10),
		Wild:   filler.New(1, 0.01, 2),
		Hermit: filler.New(0, 0.001, 0),
	}
	require.Equal(t, 2.0, w.Overcrowding())

	next := w.Update()
	assert.InDelta(t, 9.999, next.People.Amount(), 1e-9)
	assert.Equal(t, 8.0, next.People.Bound())
	assert.InDelta(t, 0.002, next.Food.Rate(), 1e-12)
	assert.InDelta(t, 4.002, next.Food.Amount(), 1e-9)
	assert.InDelta(t, 8.02, next.Land.Amount(), 1e-9)
	assert.Equal(t, 2.0, next.Wild.Bound())
	assert.InDelta(t, 1.01, next.Wild.Amount(), 1e-9)
	assert.Equal(t, 1.0, next.Hermit.Bound())
	assert.InDelta(t, 0.001, next.Hermit.Amount(), 1e-12)

	// The receiver is untouched.
	assert.Equal(t, 10.0, w.People.Amount())
}

func TestUpdateDoesNotGrowPeople(t *testing.T) {
	w := New()
	w.People = filler.New(3, 0.5, 10)
	w.Land = filler.New(6, 0, 10)

	next := w.Update()
	assert.Equal(t, 3.0, next.People.Amount())
	assert.Equal(t, 6.0, next.People.Bound())
	assert.Equal(t, w.Hermit, next.Hermit)
}

func TestClearingRateUsesUnusedLand(t *testing.T) {
	w := New()
	w.Land = filler.New(10, 0, 20)
	w.Food = filler.New(2, 0, 10)
	assert.InDelta(t, 1.0/8, w.clearingRate(), 1e-12)

	w.Food = filler.New(6, 0, 10)
	assert.Equal(t, ClearingFloor, w.clearingRate())
}

func TestSnapshot(t *testing.T) {
	s := New().Snapshot()
	assert.Equal(t, filler.Reading{Amount: 10, Rate: 0, Bound: 10}, s.Food)
	assert.Equal(t, 0.0, s.Overcrowding)
	assert.Equal(t, 0.0, s.UnusedLand)
}
