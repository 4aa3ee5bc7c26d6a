// Package world provides the macro hex overworld: biome generation, the
// start hex, and species settling attempts that seed colony grids.
// Uses axial coordinates (q, r) for the hex grid.
package world

import "fmt"

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// String formats the coordinate as "(q,r)".
func (h HexCoord) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// Less orders coordinates by r, then q. Every pass over the map uses this
// order so generation does not depend on map iteration.
func (h HexCoord) Less(o HexCoord) bool {
	if h.R != o.R {
		return h.R < o.R
	}
	return h.Q < o.Q
}

// Biome classifies a macro hex.
type Biome uint8

const (
	BiomeOcean    Biome = iota // Uninhabitable open water
	BiomeCoast                 // Wet margins, springs common
	BiomePlains                // Deep soil, moderate water
	BiomeForest                // Rich soil, shade
	BiomeMountain              // Mostly rock
	BiomeDesert                // Barren, few springs
	BiomeSwamp                 // Waterlogged soil
	BiomeTundra                // Cold, thin soil
	BiomeRiver                 // Freshwater corridor
)

// Hex is a macro-biome descriptor on the overworld.
type Hex struct {
	Coord HexCoord `json:"coord"`
	Biome Biome    `json:"biome"`

	// Channel values set during generation, all 0.0–1.0.
	Elevation  float64 `json:"elevation"`
	Rainfall   float64 `json:"rainfall"`
	Ruggedness float64 `json:"ruggedness"`
	Fertility  float64 `json:"fertility"`

	// Capacity is how many more species can settle here.
	Capacity int `json:"capacity"`
	// Settled lists species that have colonized this hex, in order.
	Settled []string `json:"settled,omitempty"`
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	return max(dq, dr, ds)
}

// BiomeName returns a human-readable name for a biome.
func BiomeName(b Biome) string {
	switch b {
	case BiomeOcean:
		return "Ocean"
	case BiomeCoast:
		return "Coast"
	case BiomePlains:
		return "Plains"
	case BiomeForest:
		return "Forest"
	case BiomeMountain:
		return "Mountain"
	case BiomeDesert:
		return "Desert"
	case BiomeSwamp:
		return "Swamp"
	case BiomeTundra:
		return "Tundra"
	case BiomeRiver:
		return "River"
	default:
		return "Unknown"
	}
}

// baseCapacity is how many species a fresh hex of each biome can hold.
func baseCapacity(b Biome) int {
	switch b {
	case BiomeOcean:
		return 0
	case BiomeMountain, BiomeDesert, BiomeTundra:
		return 1
	case BiomePlains, BiomeForest, BiomeRiver:
		return 3
	default:
		return 2
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
