package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talgya/cell-colony/internal/calendar"
	"github.com/talgya/cell-colony/internal/colony"
	"github.com/talgya/cell-colony/internal/species"
	"github.com/talgya/cell-colony/internal/world"
)

func TestStepFiresCalendarCallbacks(t *testing.T) {
	e := NewEngine(0.5)
	ticks, days, seasons := 0, 0, 0
	var lastDay int
	var lastSeason calendar.Season
	e.OnTick = func(tick uint64, dt float64) error {
		ticks++
		if dt != 0.5 {
			t.Fatalf("dt = %v", dt)
		}
		return nil
	}
	e.OnDay = func(day int) { days++; lastDay = day }
	e.OnSeason = func(s calendar.Season) { seasons++; lastSeason = s }

	n := int(calendar.TimePerYear / 0.5)
	if err := e.RunTicks(context.Background(), n); err != nil {
		t.Fatalf("RunTicks: %v", err)
	}
	if ticks != n || e.Tick != uint64(n) {
		t.Fatalf("ticks = %d, engine tick = %d, want %d", ticks, e.Tick, n)
	}
	if e.Elapsed != calendar.TimePerYear {
		t.Fatalf("elapsed = %v", e.Elapsed)
	}
	wantDays := int(calendar.TimePerYear / calendar.TimePerDay)
	if days != wantDays || lastDay != wantDays {
		t.Fatalf("days = %d (last %d), want %d", days, lastDay, wantDays)
	}
	if seasons != calendar.SeasonsPerYear {
		t.Fatalf("seasons = %d", seasons)
	}
	if lastSeason.Year != 1 || lastSeason.Season != calendar.Spring {
		t.Fatalf("last season = %+v", lastSeason)
	}
}

func TestStepRejectsBadDT(t *testing.T) {
	e := NewEngine(0)
	if err := e.Step(); err == nil {
		t.Fatal("expected error for zero dt")
	}
	if e.Tick != 0 || e.Elapsed != 0 {
		t.Fatal("failed step must not advance the clock")
	}
}

func TestLongStepFiresEveryBoundary(t *testing.T) {
	e := NewEngine(calendar.TimePerSeason*2 + calendar.TimePerDay*1.5)
	var days []int
	var seasons []calendar.Season
	e.OnDay = func(day int) { days = append(days, day) }
	e.OnSeason = func(s calendar.Season) { seasons = append(seasons, s) }

	if err := e.RunTicks(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	wantDays := int(e.Elapsed / calendar.TimePerDay)
	if len(days) != wantDays {
		t.Fatalf("got %d day callbacks, want %d", len(days), wantDays)
	}
	for i, d := range days {
		if d != i+1 {
			t.Fatalf("day callback %d reported day %d", i, d)
		}
	}
	// 1230 simulated seconds: four season boundaries, the last one a new year.
	if len(seasons) != 4 {
		t.Fatalf("got %d season callbacks, want 4", len(seasons))
	}
	for i, s := range seasons {
		if s.Season != (i+1)%calendar.SeasonsPerYear || s.Percent != 0 {
			t.Fatalf("season callback %d: %+v", i, s)
		}
	}
	if seasons[3].Year != 1 {
		t.Fatalf("last season %+v, want year 1", seasons[3])
	}
}

func TestStepPropagatesTickError(t *testing.T) {
	boom := errors.New("boom")
	e := NewEngine(1)
	e.OnTick = func(uint64, float64) error { return boom }
	if err := e.RunTicks(context.Background(), 5); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if e.Tick != 1 {
		t.Fatalf("engine should stop on the failing tick, got %d", e.Tick)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e := NewEngine(1)
	e.Interval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	e.OnTick = func(tick uint64, _ float64) error {
		if tick == 3 {
			cancel()
		}
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if e.Tick != 3 {
		t.Fatalf("expected to stop at tick 3, got %d", e.Tick)
	}
}

func TestRunPausedStillCancels(t *testing.T) {
	e := NewEngine(1)
	e.Speed = 0
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.Tick != 0 {
		t.Fatalf("paused engine stepped %d ticks", e.Tick)
	}
}

func newTestSimulation(t *testing.T) *Simulation {
	t.Helper()
	reg, err := species.NewRegistry([]*species.Species{species.Default()})
	if err != nil {
		t.Fatal(err)
	}
	cfg := colony.DefaultConfig()
	cfg.Founders = 3
	return NewSimulation(world.GenerateLargeContinent(42), reg, 16, 16, cfg)
}

func TestSimulationSettleAndRun(t *testing.T) {
	sim := newTestSimulation(t)
	c, err := sim.Settle("Protocyte", sim.OverWorld.StartHex())
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if got := c.World.Census().Cells; got != 3 {
		t.Fatalf("founders = %d", got)
	}
	if sim.Stats.Colonies != 1 || sim.Stats.Cells != 3 {
		t.Fatalf("stats after settle = %+v", sim.Stats)
	}

	e := NewEngine(1)
	sim.Attach(e)
	if err := e.RunTicks(context.Background(), 50); err != nil {
		t.Fatalf("RunTicks: %v", err)
	}
	if c.World.Elapsed != e.Elapsed || c.World.Ticks != 50 {
		t.Fatalf("colony clock %v/%d, engine %v", c.World.Elapsed, c.World.Ticks, e.Elapsed)
	}
	if sim.LastTick != 50 {
		t.Fatalf("last tick = %d", sim.LastTick)
	}
	if len(sim.Events) == 0 || sim.Events[0].Category != "settle" {
		t.Fatalf("expected a settle event, got %+v", sim.Events)
	}
}

func TestSimulationSettleRejections(t *testing.T) {
	sim := newTestSimulation(t)
	if _, err := sim.Settle("Protocite", sim.OverWorld.StartHex()); !errors.Is(err, species.ErrUnknownSpecies) {
		t.Fatalf("expected ErrUnknownSpecies, got %v", err)
	}
	if _, err := sim.Settle("Protocyte", sim.OverWorld.StartHex()); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if _, err := sim.Settle("Protocyte", sim.OverWorld.StartHex()); !errors.Is(err, world.ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
	if len(sim.Colonies) != 1 {
		t.Fatalf("rejections must not add colonies, have %d", len(sim.Colonies))
	}
	// The unknown name never reached the overworld; the resettle is logged.
	attempts := sim.OverWorld.Attempts()
	if len(attempts) != 2 {
		t.Fatalf("attempt log has %d entries, want 2", len(attempts))
	}
	if attempts[0].Status != world.AttemptCommitted || attempts[1].Status != world.AttemptRejected {
		t.Fatalf("attempt statuses %s, %s", attempts[0].Status, attempts[1].Status)
	}
}

func TestSimulationRecordsExtinction(t *testing.T) {
	doomed := &species.Species{Name: "Doomed", CellCapacity: 10, Upkeep: 100, StarveSeconds: 1}
	reg, err := species.NewRegistry([]*species.Species{doomed})
	if err != nil {
		t.Fatal(err)
	}
	cfg := colony.DefaultConfig()
	cfg.Founders = 3
	sim := NewSimulation(world.GenerateLargeContinent(42), reg, 16, 16, cfg)
	c, err := sim.Settle("Doomed", sim.OverWorld.StartHex())
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}

	e := NewEngine(1)
	sim.Attach(e)
	if err := e.RunTicks(context.Background(), 5); err != nil {
		t.Fatal(err)
	}
	if n := c.World.CellCount(); n != 0 {
		t.Fatalf("%d cells survived", n)
	}
	if sim.Stats.Deaths != 3 {
		t.Fatalf("deaths = %d, want 3", sim.Stats.Deaths)
	}
	extinct := 0
	for _, ev := range sim.Events {
		if ev.Category == "extinct" {
			extinct++
			if ev.Tick != 2 {
				t.Fatalf("extinction recorded at tick %d, want 2", ev.Tick)
			}
		}
	}
	if extinct != 1 {
		t.Fatalf("expected one extinction event, got %d", extinct)
	}
}
