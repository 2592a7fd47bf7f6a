package world

import (
	"math"
	"strconv"
	"strings"
)

// Action identifies a discrete player action.
type Action int

const (
	ActionGather Action = 1 // gather food
	ActionBirth  Action = 2
	ActionWar    Action = 3
)

// Actions lists the recognized actions in display order.
var Actions = []Action{ActionGather, ActionBirth, ActionWar}

const (
	GatherAmount = 1.0
	BirthCost    = 10.0 // food consumed per birth
)

// String returns the action's caption.
func (a Action) String() string {
	switch a {
	case ActionGather:
		return "food"
	case ActionBirth:
		return "birth"
	case ActionWar:
		return "war"
	default:
		return "unused"
	}
}

// Valid reports whether a is one of the recognized actions.
func (a Action) Valid() bool {
	return a >= ActionGather && a <= ActionWar
}

// ParseAction accepts a caption ("food", "birth", "war") or a numeric id.
// Unknown names parse to an invalid Action and false.
func ParseAction(s string) (Action, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, a := range Actions {
		if s == a.String() {
			return a, true
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	a := Action(n)
	return a, a.Valid()
}

// Outcome describes what an action did.
type Outcome struct {
	Action  Action  `json:"action"`
	Title   string  `json:"title"`
	Applied bool    `json:"applied"`
	Deaths  float64 `json:"deaths,omitempty"`
	Capped  bool    `json:"capped,omitempty"` // gather stopped at the bound
	// Shortfall is the room (gather) or food on hand (birth) reported when
	// the guarded transfer did not fit.
	Shortfall float64 `json:"shortfall,omitempty"`
}

// Title returns the caption for the given action id.
func (w World) Title(a Action) string {
	return a.String()
}

// Click applies one discrete action. Unrecognized actions return w unchanged.
func (w World) Click(a Action) World {
	next, _ := w.Apply(a)
	return next
}

// Apply is Click that also reports the outcome.
func (w World) Apply(a Action) (World, Outcome) {
	out := Outcome{Action: a, Title: a.String()}

	switch a {
	case ActionGather:
		food, room, ok := w.Food.Deposit(GatherAmount)
		if !ok {
			// Top up to the bound rather than overshoot.
			food = w.Food.ForceDeposit(room)
			out.Shortfall = room
			out.Capped = true
		}
		w.Food = food
		out.Applied = true

	case ActionBirth:
		food, onHand, ok := w.Food.Withdraw(BirthCost)
		if !ok {
			out.Shortfall = onHand
			return w, out
		}
		w.Food = food
		w.People = w.People.ForceDeposit(1)
		out.Applied = true

	case ActionWar:
		deaths := math.Floor(w.People.Amount() / 2)
		w.People = w.People.ForceWithdraw(deaths)
		w.Land = w.Land.AddToBound(deaths)
		out.Deaths = deaths
		out.Applied = true
	}

	return w, out
}
