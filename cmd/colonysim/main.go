// Command colonysim generates an overworld, settles a species on the start
// hex and runs the colony simulation, saving state to SQLite.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/cell-colony/internal/calendar"
	"github.com/talgya/cell-colony/internal/config"
	"github.com/talgya/cell-colony/internal/engine"
	"github.com/talgya/cell-colony/internal/persistence"
	"github.com/talgya/cell-colony/internal/species"
	"github.com/talgya/cell-colony/internal/telemetry"
	"github.com/talgya/cell-colony/internal/world"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	fresh := flag.Bool("fresh", false, "Ignore saved state and generate a new world")
	maxTicks := flag.Int("ticks", -1, "Stop after N ticks (-1 = use config, 0 = until interrupted)")
	outputDir := flag.String("output-dir", "", "Directory for colonies.csv (empty = use config)")
	writeConfig := flag.String("write-config", "", "Write the effective config to this path and exit")
	flag.Parse()

	logLevel := new(slog.LevelVar)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if lvl, err := cfg.Sim.Level(); err == nil {
		logLevel.Set(lvl)
	}
	if *maxTicks >= 0 {
		cfg.Sim.Ticks = *maxTicks
	}
	if *outputDir != "" {
		cfg.Telemetry.OutputDir = *outputDir
	}

	if *writeConfig != "" {
		if err := cfg.WriteYAML(*writeConfig); err != nil {
			slog.Error("failed to write config", "error", err)
			os.Exit(1)
		}
		slog.Info("config written", "path", *writeConfig)
		return
	}

	if err := run(cfg, *fresh); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, fresh bool) error {
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.Storage.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		db, err = persistence.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("database opened", "path", cfg.Storage.Path)
	}

	// ── Load or Generate ─────────────────────────────────────────────
	sim, err := loadOrGenerate(cfg, reg, db, fresh)
	if err != nil {
		return err
	}
	logOverWorld(sim.OverWorld)

	out, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	sim.Output = out

	// ── Engine ───────────────────────────────────────────────────────
	eng := engine.NewEngine(cfg.Sim.DT)
	eng.Tick = sim.LastTick
	eng.Elapsed = sim.Elapsed
	eng.Speed = cfg.Sim.Speed
	eng.Interval = cfg.Sim.Interval()
	sim.Attach(eng)

	// Auto-save every season.
	eng.OnSeason = func(s calendar.Season) {
		sim.TickSeason(s)
		save(db, sim)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startTick := eng.Tick
	if startTick > 0 {
		fmt.Printf("Resuming from tick %s (%s)\n", humanize.Comma(int64(startTick)), calendar.Display(eng.Elapsed))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	if err := runEngine(ctx, eng, cfg.Sim.Ticks); err != nil {
		return err
	}

	slog.Info("final save...")
	save(db, sim)

	census := 0
	for _, c := range sim.Colonies {
		census += c.World.Census().Cells
	}
	fmt.Printf("\n%s ticks run, now %s: %s cells in %d colonies, %s births and %s deaths.\n",
		humanize.Comma(int64(eng.Tick-startTick)),
		calendar.SeasonFromTime(eng.Elapsed),
		humanize.Comma(int64(census)),
		len(sim.Colonies),
		humanize.Comma(int64(sim.Stats.Births)),
		humanize.Comma(int64(sim.Stats.Deaths)),
	)
	if out.Dir() != "" {
		fmt.Printf("Telemetry written to %s\n", filepath.Join(out.Dir(), "colonies.csv"))
	}
	return nil
}

func loadOrGenerate(cfg *config.Config, reg *species.Registry, db *persistence.DB, fresh bool) (*engine.Simulation, error) {
	if db != nil && !fresh && db.HasWorldState() {
		slog.Info("found saved world state, loading...")
		sim, err := db.LoadWorldState(reg, cfg.Colony.Width, cfg.Colony.Height, cfg.Colony.Config)
		if err != nil {
			return nil, err
		}
		return sim, nil
	}

	slog.Info("no saved state used, generating new world...", "seed", cfg.OverWorld.Seed)
	ow := world.Generate(cfg.OverWorld)
	sim := engine.NewSimulation(ow, reg, cfg.Colony.Width, cfg.Colony.Height, cfg.Colony.Config)

	if cfg.Sim.Settle != "" {
		if _, err := sim.Settle(cfg.Sim.Settle, ow.StartHex()); err != nil {
			// Rejections are not fatal; the run continues with no colony.
			slog.Warn("initial settling rejected", "species", cfg.Sim.Settle, "hex", ow.StartHex().String(), "error", err)
		}
	}
	return sim, nil
}

// runEngine paces the engine when a speed is set, otherwise steps headless.
// ticks == 0 runs until the context is cancelled.
func runEngine(ctx context.Context, eng *engine.Engine, ticks int) error {
	if eng.Speed > 0 {
		if ticks > 0 {
			target := eng.Tick + uint64(ticks)
			var cancel context.CancelFunc
			ctx, cancel = context.WithCancel(ctx)
			defer cancel()
			onTick := eng.OnTick
			eng.OnTick = func(tick uint64, dt float64) error {
				if tick >= target {
					cancel()
				}
				return onTick(tick, dt)
			}
		}
		return eng.Run(ctx)
	}

	if ticks > 0 {
		return eng.RunTicks(ctx, ticks)
	}
	for ctx.Err() == nil {
		if err := eng.RunTicks(ctx, 1000); err != nil {
			return err
		}
	}
	return nil
}

func logOverWorld(ow *world.OverWorld) {
	counts := world.BiomeCounts(ow.Map)
	for _, b := range []world.Biome{
		world.BiomeOcean, world.BiomeCoast, world.BiomePlains, world.BiomeForest,
		world.BiomeMountain, world.BiomeDesert, world.BiomeSwamp, world.BiomeTundra, world.BiomeRiver,
	} {
		if counts[b] > 0 {
			slog.Info("biome", "type", world.BiomeName(b), "count", counts[b])
		}
	}
	start := ow.Map.Get(ow.StartHex())
	slog.Info("overworld ready",
		"hexes", ow.Map.HexCount(),
		"start", ow.StartHex().String(),
		"start_biome", world.BiomeName(start.Biome),
		"attempts", len(ow.Attempts()),
	)
}

func save(db *persistence.DB, sim *engine.Simulation) {
	if db == nil {
		return
	}
	if err := db.SaveWorldState(sim); err != nil {
		slog.Error("save failed", "error", err)
	}
}
