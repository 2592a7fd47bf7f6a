package steward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Steward ties observe, decide and act together.
type Steward struct {
	Observer *Observer
	Actor    *Actor
	Memory   *Memory
}

// New creates a Steward for the API at baseURL.
func New(baseURL, adminKey string) *Steward {
	return &Steward{
		Observer: NewObserver(baseURL),
		Actor:    NewActor(baseURL, adminKey),
		Memory:   &Memory{},
	}
}

// Cycle executes one observe → decide → act cycle.
// The result is nil when the decision was to wait.
func (s *Steward) Cycle(ctx context.Context) (Decision, *ClickResult, error) {
	obs, err := s.Observer.Observe(ctx)
	if err != nil {
		return Decision{}, nil, fmt.Errorf("observe: %w", err)
	}

	d := Decide(obs.World)
	slog.Debug("decision made", "tick", obs.Tick, "action", d.Action.String(), "rationale", d.Rationale)

	rec := CycleRecord{
		Tick:      obs.Tick,
		Action:    d.Action,
		People:    obs.World.People.Amount,
		Food:      obs.World.Food.Amount,
		Rationale: d.Rationale,
	}
	if d.None() {
		s.Memory.Record(rec)
		return d, nil, nil
	}

	res, err := s.Actor.Act(ctx, d.Action)
	if err != nil {
		return d, nil, fmt.Errorf("act: %w", err)
	}
	rec.Applied = res.Outcome.Applied
	s.Memory.Record(rec)
	return d, res, nil
}

// Run cycles every interval until ctx is cancelled. Cycle errors are logged, not fatal.
func (s *Steward) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer func() {
		slog.Info("steward history", "cycles", s.Memory.Summary())
	}()

	for {
		d, res, err := s.Cycle(ctx)
		switch {
		case err != nil && !errors.Is(err, context.Canceled):
			slog.Error("steward cycle failed", "error", err)
		case res != nil:
			slog.Info("action played",
				"tick", res.Tick,
				"action", res.Outcome.Title,
				"applied", res.Outcome.Applied,
				"rationale", d.Rationale,
			)
		case err == nil:
			slog.Debug("steward waits", "rationale", d.Rationale)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// WaitReady polls the status endpoint with exponential backoff until it
// responds or timeout passes.
func (s *Steward) WaitReady(ctx context.Context, timeout time.Duration) error {
	backoff := 500 * time.Millisecond
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(timeout)

	for {
		if s.Observer.Ready(ctx) {
			slog.Info("worldsim API is ready")
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("worldsim API not ready after %s", timeout)
		}
		slog.Info("worldsim not ready, retrying...", "backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
