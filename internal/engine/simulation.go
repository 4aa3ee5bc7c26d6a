// Simulation ties the overworld and its settled colonies together and runs them each tick.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/cell-colony/internal/calendar"
	"github.com/talgya/cell-colony/internal/colony"
	"github.com/talgya/cell-colony/internal/species"
	"github.com/talgya/cell-colony/internal/telemetry"
	"github.com/talgya/cell-colony/internal/world"
)

// Colony is one settled tile grid on the overworld.
type Colony struct {
	ID      uuid.UUID      `json:"id"` // Committed settling attempt
	Species string         `json:"species"`
	Hex     world.HexCoord `json:"hex"`
	World   *colony.World  `json:"-"`

	// Births and deaths since the last daily sample.
	births, deaths int
}

// Name identifies the colony in logs and telemetry.
func (c *Colony) Name() string {
	return fmt.Sprintf("%s@%s", c.Species, c.Hex)
}

// Event is a notable occurrence in the simulation.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "settle", "birth", "death", "extinct"
}

// SimStats tracks aggregate statistics across all colonies.
type SimStats struct {
	Colonies   int     `json:"colonies"`
	Cells      int     `json:"cells"`
	Births     int     `json:"births"`
	Deaths     int     `json:"deaths"`
	TotalWater float64 `json:"total_water"`
	TotalSugar float64 `json:"total_sugar"`
}

// Simulation holds the overworld, the species registry and every active colony.
type Simulation struct {
	OverWorld *world.OverWorld
	Species   *species.Registry
	Colonies  []*Colony
	Events    []Event // Recent events, trimmed daily
	LastTick  uint64
	Elapsed   float64 // Simulated seconds, shared by every colony

	// ColonyWidth and ColonyHeight size newly committed colony grids.
	ColonyWidth  int
	ColonyHeight int
	ColonyConfig colony.Config

	Stats  SimStats
	Output *telemetry.OutputManager // nil disables CSV output
}

// NewSimulation creates a Simulation over a generated overworld.
func NewSimulation(ow *world.OverWorld, reg *species.Registry, width, height int, cfg colony.Config) *Simulation {
	return &Simulation{
		OverWorld:    ow,
		Species:      reg,
		ColonyWidth:  width,
		ColonyHeight: height,
		ColonyConfig: cfg,
	}
}

// Settle submits and immediately commits a settling attempt for a named
// species. A rejection is returned as the error and adds no colony; the
// rejected attempt stays in the overworld's attempt log. An unknown
// species name is refused before any attempt is recorded.
func (s *Simulation) Settle(speciesName string, target world.HexCoord) (*Colony, error) {
	sp, err := s.Species.Lookup(speciesName)
	if err != nil {
		return nil, err
	}
	a, err := s.OverWorld.Submit(sp, target)
	if err != nil {
		return nil, err
	}
	w, err := s.OverWorld.Commit(a.ID, s.ColonyWidth, s.ColonyHeight, s.ColonyConfig)
	if err != nil {
		return nil, err
	}
	c := s.AddColony(a.ID, sp.Name, target, w)
	s.record("settle", fmt.Sprintf("%s settled %s with %d founders", sp.Name, target, w.Census().Cells))
	return c, nil
}

// AddColony registers an existing colony world, e.g. one loaded from storage.
// A freshly committed world starts at time zero and is fast-forwarded to
// the simulation clock without stepping; a loaded world keeps its own clock.
func (s *Simulation) AddColony(id uuid.UUID, speciesName string, hex world.HexCoord, w *colony.World) *Colony {
	if w.Ticks == 0 && w.Elapsed < s.Elapsed {
		w.Rebase(s.Elapsed)
	}
	c := &Colony{ID: id, Species: speciesName, Hex: hex, World: w}
	s.Colonies = append(s.Colonies, c)
	s.updateStats()
	return c
}

// Attach wires the simulation's tick handlers into an engine.
func (s *Simulation) Attach(e *Engine) {
	e.OnTick = s.TickColonies
	e.OnDay = s.TickDay
	e.OnSeason = s.TickSeason
}

// TickColonies advances every colony by dt, in settlement order.
func (s *Simulation) TickColonies(tick uint64, dt float64) error {
	s.LastTick = tick
	s.Elapsed += dt
	for _, c := range s.Colonies {
		hadCells := c.World.CellCount() > 0
		rep, err := c.World.Advance(dt)
		if err != nil {
			return fmt.Errorf("colony %s: %w", c.Name(), err)
		}
		c.births += rep.Births
		c.deaths += rep.Deaths
		s.Stats.Births += rep.Births
		s.Stats.Deaths += rep.Deaths

		if hadCells && rep.Deaths > 0 && c.World.CellCount() == 0 {
			s.record("extinct", fmt.Sprintf("colony %s died out", c.Name()))
		}
	}
	return nil
}

// TickDay runs at every calendar day boundary: statistics, telemetry, daily report.
func (s *Simulation) TickDay(day int) {
	s.updateStats()

	var rows []telemetry.ColonyStats
	for _, c := range s.Colonies {
		rows = append(rows, telemetry.Collect(c.Name(), c.Species, c.World, c.births, c.deaths))
		c.births, c.deaths = 0, 0
	}
	if err := s.Output.WriteStats(rows...); err != nil {
		slog.Warn("telemetry write failed", "error", err)
	}

	slog.Info("daily report",
		"tick", s.LastTick,
		"day", day,
		"time", calendar.Display(s.Elapsed),
		"colonies", s.Stats.Colonies,
		"cells", s.Stats.Cells,
		"births", s.Stats.Births,
		"deaths", s.Stats.Deaths,
		"water", fmt.Sprintf("%.2f", s.Stats.TotalWater),
		"sugar", fmt.Sprintf("%.2f", s.Stats.TotalSugar),
	)

	// Keep the last 1000 events.
	if len(s.Events) > 1000 {
		s.Events = s.Events[len(s.Events)-1000:]
	}
}

// TickSeason runs at every season boundary: per-colony summaries.
func (s *Simulation) TickSeason(season calendar.Season) {
	slog.Info("season change", "season", season.Display())
	for _, c := range s.Colonies {
		census := c.World.Census()
		biome := "Unknown"
		if hex := s.OverWorld.Map.Get(c.Hex); hex != nil {
			biome = world.BiomeName(hex.Biome)
		}
		slog.Info("colony summary",
			"colony", c.Name(),
			"biome", biome,
			"cells", census.Cells,
			"terrain", census.Terrain,
			"empty", census.Empty,
		)
	}
}

func (s *Simulation) record(category, desc string) {
	s.Events = append(s.Events, Event{Tick: s.LastTick, Description: desc, Category: category})
	slog.Info("event", "category", category, "description", desc)
}

func (s *Simulation) updateStats() {
	st := SimStats{Colonies: len(s.Colonies), Births: s.Stats.Births, Deaths: s.Stats.Deaths}
	for _, c := range s.Colonies {
		census := c.World.Census()
		st.Cells += census.Cells
		st.TotalWater += census.Water
		st.TotalSugar += census.Sugar
	}
	s.Stats = st
}
