package steward

import (
	"fmt"

	"github.com/talgya/clearing/internal/world"
)

// Decision is the steward's choice for one cycle.
type Decision struct {
	Action    world.Action `json:"action"` // 0 means no action
	Rationale string       `json:"rationale"`
}

// None reports whether the decision is to do nothing.
func (d Decision) None() bool {
	return !d.Action.Valid()
}

// Decide picks at most one action from a snapshot.
//
// Rules, first match wins:
//   - overcrowded: war, to free land and stop the food penalty
//   - enough food and room for one more person: birth
//   - food below its bound: gather
//   - otherwise wait
func Decide(s world.Snapshot) Decision {
	if s.Overcrowding > 0 {
		return Decision{
			Action:    world.ActionWar,
			Rationale: fmt.Sprintf("people exceed the cleared land by %.2f", s.Overcrowding),
		}
	}

	if s.Food.Amount >= world.BirthCost && s.People.Amount+1 <= s.People.Bound {
		return Decision{
			Action:    world.ActionBirth,
			Rationale: fmt.Sprintf("%.2f food on hand and room for %.2f more people", s.Food.Amount, s.People.Bound-s.People.Amount),
		}
	}

	if s.Food.Amount < s.Food.Bound {
		return Decision{
			Action:    world.ActionGather,
			Rationale: fmt.Sprintf("food store has %.2f room", s.Food.Bound-s.Food.Amount),
		}
	}

	return Decision{Rationale: "food is full and there is no room for births"}
}
