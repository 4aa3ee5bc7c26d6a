// Package colony provides the micro tile grid: occupants, resource
// inventories, neighbor queries, foraging, and rate-gated stepping.
package colony

import (
	"fmt"
	"math"
)

// Directions lists the four neighbor offsets in the fixed clockwise order
// used by every neighbor query: north, east, south, west.
var Directions = [4]Pos{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

// World owns a rectangular tile grid and its simulated clock.
type World struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Elapsed float64 `json:"elapsed"`
	Ticks   uint64  `json:"ticks"`
	Params  Params  `json:"params"`
	Config  Config  `json:"config"`

	tiles []*Tile // row-major; nil means empty
}

// TickReport summarizes one Advance call.
type TickReport struct {
	Stepped int
	Skipped int
	Births  int
	Deaths  int
}

// New creates an empty world. Params supplies the size; terrain is left empty.
func New(params Params, cfg Config) (*World, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &World{
		Width:  params.Width,
		Height: params.Height,
		Params: params,
		Config: cfg,
		tiles:  make([]*Tile, params.Width*params.Height),
	}, nil
}

// InBounds reports whether p lies on the grid.
func (w *World) InBounds(p Pos) bool {
	return p.X >= 0 && p.X < w.Width && p.Y >= 0 && p.Y < w.Height
}

func (w *World) index(p Pos) int {
	return p.Y*w.Width + p.X
}

// At returns the occupant at p, or nil if p is empty or off-grid.
func (w *World) At(p Pos) *Tile {
	if !w.InBounds(p) {
		return nil
	}
	return w.tiles[w.index(p)]
}

// Place puts t at its position, replacing and returning any previous
// occupant. The previous occupant's inventory goes with it. The new
// occupant starts its step clock at the current time.
func (w *World) Place(t *Tile) (*Tile, error) {
	prev, err := w.Restore(t)
	if err != nil {
		return nil, err
	}
	t.LastStep = w.Elapsed
	return prev, nil
}

// Restore is Place without resetting the step clock. Persistence uses it.
func (w *World) Restore(t *Tile) (*Tile, error) {
	if t == nil || t.Inv == nil {
		return nil, fmt.Errorf("%w: nil tile or inventory", ErrInvalidParams)
	}
	if !w.InBounds(t.Pos) {
		return nil, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, t.Pos.X, t.Pos.Y)
	}
	i := w.index(t.Pos)
	prev := w.tiles[i]
	t.Inv.setOwner(t.Pos)
	w.tiles[i] = t
	return prev, nil
}

// Remove empties p and returns whatever was there.
func (w *World) Remove(p Pos) *Tile {
	if !w.InBounds(p) {
		return nil
	}
	i := w.index(p)
	prev := w.tiles[i]
	w.tiles[i] = nil
	return prev
}

// TileNeighbors returns the occupants adjacent to p in north, east, south,
// west order. Off-grid and empty slots are left out.
func (w *World) TileNeighbors(p Pos) []*Tile {
	out := make([]*Tile, 0, len(Directions))
	for _, d := range Directions {
		if t := w.At(p.Add(d)); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Each visits every occupant in row-major order.
func (w *World) Each(fn func(t *Tile)) {
	for _, t := range w.tiles {
		if t != nil {
			fn(t)
		}
	}
}

// Advance moves the clock forward by dt and steps every occupant whose rate
// gate opens. Occupants are visited in row-major order. A skipped occupant
// is left untouched and its pending time carries into the next tick.
func (w *World) Advance(dt float64) (TickReport, error) {
	var rep TickReport
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return rep, fmt.Errorf("%w: dt must be a non-negative number, got %v", ErrInvalidStep, dt)
	}

	w.Elapsed += dt
	w.Ticks++

	for i := range w.tiles {
		t := w.tiles[i]
		if t == nil {
			continue
		}
		since := w.Elapsed - t.LastStep
		if !t.ShouldStep(since) {
			rep.Skipped++
			continue
		}
		w.step(t, since, &rep)
		t.LastStep = w.Elapsed
		rep.Stepped++
	}
	return rep, nil
}

// step dispatches on the occupant kind.
func (w *World) step(t *Tile, dt float64, rep *TickReport) {
	switch t.Kind {
	case KindBarren:
		t.Inv.drain(t.Inv.Water() * w.Config.Evaporation)
	case KindSoil:
		target := t.Moisture * t.Inv.Capacity()
		if deficit := target - t.Inv.Water(); deficit > 0 {
			t.Inv.fill(math.Min(deficit, w.Config.Recharge*dt))
		}
	case KindSpring:
		t.Inv.fill(t.Inv.Free())
	case KindRock:
		// Inert.
	case KindCell:
		w.stepCell(t, dt, rep)
	}
}

// Rebase moves the world clock to t without stepping. Every tile's last
// step moves with it, so no tile sees the skipped time.
func (w *World) Rebase(t float64) {
	shift := t - w.Elapsed
	w.Elapsed = t
	for _, tile := range w.tiles {
		if tile != nil {
			tile.LastStep += shift
		}
	}
}

// CellCount returns the number of living cells without building a Census.
func (w *World) CellCount() int {
	n := 0
	for _, t := range w.tiles {
		if t != nil && t.IsCell() {
			n++
		}
	}
	return n
}

// Census aggregates grid contents for reports and telemetry.
type Census struct {
	Cells     int
	Terrain   int
	Empty     int
	Water     float64
	Sugar     float64
	CellSugar []float64
	CellWater []float64
	BySpecies map[string]int
}

// Census counts occupants and sums their inventories.
func (w *World) Census() Census {
	c := Census{BySpecies: make(map[string]int)}
	for _, t := range w.tiles {
		if t == nil {
			c.Empty++
			continue
		}
		c.Water += t.Inv.Water()
		c.Sugar += t.Inv.Sugar()
		if t.IsCell() {
			c.Cells++
			c.CellSugar = append(c.CellSugar, t.Inv.Sugar())
			c.CellWater = append(c.CellWater, t.Inv.Water())
			c.BySpecies[t.Species.Name]++
		} else {
			c.Terrain++
		}
	}
	return c
}

// TileView is a read-only copy of one occupant for presentation code.
type TileView struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Kind     string  `json:"kind"`
	Name     string  `json:"name"`
	Obstacle bool    `json:"obstacle"`
	Water    float64 `json:"water"`
	Sugar    float64 `json:"sugar"`
	Capacity float64 `json:"capacity"`
}

// Snapshot copies every occupant in row-major order.
func (w *World) Snapshot() []TileView {
	out := make([]TileView, 0, len(w.tiles))
	w.Each(func(t *Tile) {
		out = append(out, TileView{
			X:        t.Pos.X,
			Y:        t.Pos.Y,
			Kind:     KindName(t.Kind),
			Name:     t.Name,
			Obstacle: t.Obstacle,
			Water:    t.Inv.Water(),
			Sugar:    t.Inv.Sugar(),
			Capacity: t.Inv.Capacity(),
		})
	})
	return out
}

// String returns a summary of the world.
func (w *World) String() string {
	return fmt.Sprintf("World(%dx%d, t=%.1f, ticks=%d)", w.Width, w.Height, w.Elapsed, w.Ticks)
}
