// Simulation holds the live world and applies ticks and actions to it.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/talgya/clearing/internal/world"
)

// ErrUnknownAction is returned by Click for ids outside the action set.
var ErrUnknownAction = errors.New("unknown action")

const maxEvents = 1000

// Simulation is the single owner of the live World value.
type Simulation struct {
	mu       sync.RWMutex
	world    world.World
	lastTick uint64
	events   []Event
	stats    SimStats

	// Edge detectors for tick events.
	crowded    bool
	hermitSeen bool

	// OnAction is called after every applied or failed action, outside the lock.
	OnAction func(tick uint64, out world.Outcome)
}

// Event is a notable occurrence in the world.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "action", "crowding", "wild"
}

// SimStats tracks action counts since the process started.
type SimStats struct {
	Gathers      int     `json:"gathers"`
	Births       int     `json:"births"`
	FailedBirths int     `json:"failed_births"`
	Wars         int     `json:"wars"`
	Deaths       float64 `json:"deaths"`
}

// NewSimulation creates a Simulation holding w.
func NewSimulation(w world.World) *Simulation {
	return &Simulation{
		world:   w,
		crowded: w.Overcrowding() > 0,
	}
}

// World returns the current world value.
func (s *Simulation) World() world.World {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTick
}

// Stats returns a copy of the action counters.
func (s *Simulation) Stats() SimStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Step runs every tick: the world is replaced by its update.
func (s *Simulation) Step(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastTick = tick
	s.world = s.world.Update()

	crowded := s.world.Overcrowding() > 0
	if crowded != s.crowded {
		desc := "people have room again"
		if crowded {
			desc = fmt.Sprintf("people outgrow the cleared land by %.2f", s.world.Overcrowding())
		}
		s.emit(Event{Tick: tick, Description: desc, Category: "crowding"})
		s.crowded = crowded
	}

	if !s.hermitSeen && !s.world.Hermit.IsEmpty() {
		s.hermitSeen = true
		s.emit(Event{Tick: tick, Description: "the first hermit walks into the woods", Category: "wild"})
	}
}

// Click applies a discrete action to the live world.
func (s *Simulation) Click(a world.Action) (world.Outcome, error) {
	if !a.Valid() {
		return world.Outcome{Action: a, Title: a.String()}, fmt.Errorf("%w: %d", ErrUnknownAction, int(a))
	}

	s.mu.Lock()
	next, out := s.world.Apply(a)
	s.world = next
	tick := s.lastTick
	s.record(tick, out)
	hook := s.OnAction
	s.mu.Unlock()

	slog.Info("action", "tick", tick, "action", out.Title, "applied", out.Applied, "deaths", out.Deaths)
	if hook != nil {
		hook(tick, out)
	}
	return out, nil
}

// record updates counters and the event log for an action. Caller holds mu.
func (s *Simulation) record(tick uint64, out world.Outcome) {
	var desc string
	switch out.Action {
	case world.ActionGather:
		s.stats.Gathers++
		desc = "food gathered"
		if out.Capped {
			desc = fmt.Sprintf("food gathered up to the bound (%.2f fit)", out.Shortfall)
		}
	case world.ActionBirth:
		if out.Applied {
			s.stats.Births++
			desc = "a child is born"
		} else {
			s.stats.FailedBirths++
			desc = fmt.Sprintf("no birth: only %.2f food on hand", out.Shortfall)
		}
	case world.ActionWar:
		s.stats.Wars++
		s.stats.Deaths += out.Deaths
		desc = fmt.Sprintf("war: %s dead, the land bound grows", humanize.Ftoa(out.Deaths))
	}
	s.emit(Event{Tick: tick, Description: desc, Category: "action"})
}

// emit appends to the event log, keeping the last maxEvents. Caller holds mu.
func (s *Simulation) emit(e Event) {
	s.events = append(s.events, e)
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
}

// RecentEvents returns up to limit of the newest events, newest first.
func (s *Simulation) RecentEvents(limit int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out
}

// Report logs a periodic summary of the world.
func (s *Simulation) Report(tick uint64) {
	w := s.World()
	st := s.Stats()
	slog.Info("world report",
		"tick", humanize.Comma(int64(tick)),
		"time", TickTime(tick),
		"people", fmt.Sprintf("%.2f", w.People.Amount()),
		"food", fmt.Sprintf("%.2f", w.Food.Amount()),
		"land", w.Land.String(),
		"wild", w.Wild.String(),
		"hermits", fmt.Sprintf("%.3f", w.Hermit.Amount()),
		"overcrowding", fmt.Sprintf("%.3f", w.Overcrowding()),
		"births", st.Births,
		"wars", st.Wars,
	)
}
