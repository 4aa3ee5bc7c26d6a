package colony

import (
	"fmt"

	"github.com/talgya/cell-colony/internal/species"
)

// Pos is an integer grid coordinate. Y grows southward.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p offset by d.
func (p Pos) Add(d Pos) Pos {
	return Pos{X: p.X + d.X, Y: p.Y + d.Y}
}

// Kind is the closed set of grid occupant variants.
type Kind uint8

const (
	KindBarren Kind = iota // Dry ground, slowly loses water
	KindSoil               // Holds water, recharges toward its moisture level
	KindSpring             // Refills with water every step
	KindRock               // Impassable structural support
	KindCell               // Living cell of some species
)

// KindName returns a human-readable name for a kind.
func KindName(k Kind) string {
	switch k {
	case KindBarren:
		return "Barren Land"
	case KindSoil:
		return "Soil"
	case KindSpring:
		return "Spring"
	case KindRock:
		return "Rock"
	case KindCell:
		return "Cell"
	default:
		return "Unknown"
	}
}

// ParseKind is the inverse of Kind's uint8 encoding used by persistence.
func ParseKind(v uint8) (Kind, error) {
	k := Kind(v)
	if k > KindCell {
		return 0, fmt.Errorf("%w: unknown tile kind %d", ErrInvalidParams, v)
	}
	return k, nil
}

// Tile is one grid occupant. Cell-only fields are zero on terrain.
type Tile struct {
	Kind     Kind       `json:"kind"`
	Pos      Pos        `json:"pos"`
	Obstacle bool       `json:"obstacle"`
	Support  bool       `json:"support"`
	Name     string     `json:"name"`
	Inv      *Inventory `json:"-"`

	// LastStep is the simulated time this tile last executed a step.
	LastStep float64 `json:"last_step"`
	// Interval is the rate gate for terrain kinds.
	Interval float64 `json:"interval"`
	// Moisture is the water fraction soil recharges toward.
	Moisture float64 `json:"moisture"`

	// Cell state.
	Species  *species.Species `json:"-"`
	Starving float64          `json:"starving"` // seconds spent without sugar
	Age      float64          `json:"age"`
}

// NewTerrain creates a non-living tile of the given kind.
func NewTerrain(kind Kind, pos Pos, cfg Config, water float64) (*Tile, error) {
	if kind == KindCell {
		return nil, fmt.Errorf("%w: use NewCell for living tiles", ErrInvalidParams)
	}
	inv, err := NewInventory(pos, cfg.TerrainCapacity, water, 0)
	if err != nil {
		return nil, err
	}
	t := &Tile{
		Kind: kind,
		Pos:  pos,
		Name: KindName(kind),
		Inv:  inv,
	}
	switch kind {
	case KindBarren:
		t.Interval = cfg.InertInterval
	case KindSoil:
		t.Support = true
		t.Interval = cfg.SoilInterval
	case KindSpring:
		t.Interval = cfg.SoilInterval
	case KindRock:
		t.Obstacle = true
		t.Support = true
		t.Interval = cfg.InertInterval
	}
	return t, nil
}

// NewCell creates a living cell of the given species.
func NewCell(pos Pos, sp *species.Species, water, sugar float64) (*Tile, error) {
	if sp == nil {
		return nil, fmt.Errorf("%w: cell needs a species", ErrInvalidParams)
	}
	inv, err := NewInventory(pos, sp.CellCapacity, water, sugar)
	if err != nil {
		return nil, err
	}
	return &Tile{
		Kind:     KindCell,
		Pos:      pos,
		Obstacle: true,
		Name:     sp.Name,
		Inv:      inv,
		Species:  sp,
	}, nil
}

// IsCell reports whether the tile is alive.
func (t *Tile) IsCell() bool {
	return t.Kind == KindCell
}

// ShouldStep is the per-kind rate gate. dt is the simulated time since the
// tile last stepped. Cells step on every tick that advances time; terrain
// waits until more than its interval has passed.
func (t *Tile) ShouldStep(dt float64) bool {
	switch t.Kind {
	case KindCell:
		return dt > 0
	case KindBarren, KindSoil, KindSpring, KindRock:
		return dt > t.Interval
	default:
		return false
	}
}

// String returns a short description for logs.
func (t *Tile) String() string {
	return fmt.Sprintf("%s(%d,%d) %s", t.Name, t.Pos.X, t.Pos.Y, t.Inv)
}
