// Package engine provides the tick-based simulation loop and owns the live world.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TickSchedule defines when each callback layer runs relative to the tick counter.
const (
	TicksPerSecond = 60   // nominal cadence
	TicksPerMinute = 3600 // 60 seconds × 60
)

// DefaultInterval gives roughly 60 ticks per second.
const DefaultInterval = 16 * time.Millisecond

// Engine drives the simulation forward.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Interval time.Duration // Base tick interval

	// Callbacks for each tick layer — populated during setup.
	OnTick   func(tick uint64) // Every tick
	OnSecond func(tick uint64) // Every 60 ticks
	OnMinute func(tick uint64) // Every 3600 ticks

	mu      sync.Mutex
	speed   float64 // Multiplier: 1.0 = nominal, 0 = paused
	running bool
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Interval: DefaultInterval,
		speed:    1.0,
	}
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. Values <= 0 pause the loop.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()
	slog.Info("engine speed changed", "speed", speed)
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Run starts the simulation loop. Blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed(), "interval", e.Interval)

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		slog.Info("simulation engine stopped", "tick", e.Tick)
	}()

	for {
		speed := e.Speed()
		if speed <= 0 {
			// Paused — sleep briefly and check again.
			if !sleep(ctx, 100*time.Millisecond) {
				return
			}
			continue
		}

		start := time.Now()
		e.step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		target := time.Duration(float64(e.Interval) / speed)
		wait := target - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		if !sleep(ctx, wait) {
			return
		}
	}
}

// Advance runs n ticks immediately, without pacing.
func (e *Engine) Advance(n int) {
	for i := 0; i < n; i++ {
		e.step()
	}
}

// step advances the simulation by one tick.
func (e *Engine) step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
	if e.Tick%TicksPerSecond == 0 && e.OnSecond != nil {
		e.OnSecond(e.Tick)
	}
	if e.Tick%TicksPerMinute == 0 && e.OnMinute != nil {
		e.OnMinute(e.Tick)
	}
}

// sleep waits for d or until ctx is done. Returns false if ctx ended.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// TickTime returns the elapsed time a tick represents at the nominal cadence.
func TickTime(tick uint64) string {
	seconds := tick / TicksPerSecond
	frames := tick % TicksPerSecond
	hours := seconds / 3600
	minutes := (seconds / 60) % 60

	return fmt.Sprintf("%d:%02d:%02d+%02d", hours, minutes, seconds%60, frames)
}
