// Package engine provides the tick-based scheduler that drives colony worlds.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/talgya/cell-colony/internal/calendar"
)

// Engine drives the simulation forward. It owns simulated time; worlds are
// advanced by the OnTick callback with the engine's fixed step.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Elapsed  float64       // Simulated seconds since start
	DT       float64       // Simulated seconds per tick
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base wall-clock tick interval

	// Callbacks, populated during setup.
	OnTick   func(tick uint64, dt float64) error // Every tick
	OnDay    func(day int)                       // Each calendar day boundary
	OnSeason func(s calendar.Season)             // Each season boundary
}

// NewEngine creates an engine stepping dt simulated seconds per tick.
func NewEngine(dt float64) *Engine {
	return &Engine{
		DT:       dt,
		Speed:    1.0,
		Interval: 100 * time.Millisecond,
	}
}

// Run steps the engine at wall-clock pace until ctx is cancelled or a tick
// fails. A cancelled context is not an error.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed, "dt", e.DT)
	defer func() { slog.Info("simulation engine stopped", "tick", e.Tick, "time", calendar.Display(e.Elapsed)) }()

	for {
		if e.Speed <= 0 {
			// Paused.
			if !sleep(ctx, 100*time.Millisecond) {
				return nil
			}
			continue
		}

		start := time.Now()
		if err := e.Step(); err != nil {
			return err
		}

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target && !sleep(ctx, target-elapsed) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// RunTicks steps n ticks back to back with no pacing.
func (e *Engine) RunTicks(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			return nil
		}
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the simulation by one tick.
func (e *Engine) Step() error {
	if e.DT <= 0 {
		return fmt.Errorf("engine step: dt must be positive, got %v", e.DT)
	}
	prev := e.Elapsed
	e.Tick++
	e.Elapsed += e.DT

	if e.OnTick != nil {
		if err := e.OnTick(e.Tick, e.DT); err != nil {
			return fmt.Errorf("tick %d: %w", e.Tick, err)
		}
	}

	// A long tick can cross several boundaries; each one fires.
	if e.OnDay != nil && calendar.Crossed(prev, e.Elapsed, calendar.TimePerDay) {
		first, last := boundaries(prev, e.Elapsed, calendar.TimePerDay)
		for d := first; d <= last; d++ {
			e.OnDay(d)
		}
	}
	if e.OnSeason != nil && calendar.Crossed(prev, e.Elapsed, calendar.TimePerSeason) {
		first, last := boundaries(prev, e.Elapsed, calendar.TimePerSeason)
		for n := first; n <= last; n++ {
			e.OnSeason(calendar.SeasonFromTime(float64(n) * calendar.TimePerSeason))
		}
	}
	return nil
}

// boundaries returns the indexes of the first and last multiples of period
// in (prev, now].
func boundaries(prev, now, period float64) (first, last int) {
	return int(math.Floor(prev/period)) + 1, int(math.Floor(now / period))
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
