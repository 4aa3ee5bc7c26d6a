// Start hex selection and per-hex colony parameters.
package world

import (
	"math"

	"github.com/talgya/cell-colony/internal/colony"
	"github.com/talgya/cell-colony/internal/noise"
)

// chooseStart returns the most desirable land hex, ties broken by
// coordinate order. A map with no land falls back to the origin.
func chooseStart(m *Map) HexCoord {
	best := HexCoord{}
	bestScore := math.Inf(-1)
	for _, coord := range m.Coords() {
		hex := m.Get(coord)
		if hex.Biome == BiomeOcean {
			continue
		}
		s := startScore(m, coord, hex)
		if s > bestScore {
			best, bestScore = coord, s
		}
	}
	return best
}

// startScore evaluates how hospitable a hex is for a first colony.
// Prefers fertile, watered land with varied surroundings near the center.
func startScore(m *Map, coord HexCoord, hex *Hex) float64 {
	score := 0.0

	switch hex.Biome {
	case BiomePlains:
		score += 3.0
	case BiomeRiver:
		score += 3.5
	case BiomeCoast:
		score += 2.5
	case BiomeForest:
		score += 2.0
	case BiomeSwamp:
		score += 1.0
	case BiomeDesert, BiomeTundra:
		score += 0.5
	case BiomeMountain:
		score += 0.3
	}

	// Bonus for nearby biome diversity.
	biomes := make(map[Biome]bool)
	for _, nc := range coord.Neighbors() {
		nh := m.Get(nc)
		if nh != nil && nh.Biome != BiomeOcean {
			biomes[nh.Biome] = true
		}
	}
	score += float64(len(biomes)) * 0.3

	// Bonus for nearby fresh water.
	for _, nc := range coord.Neighbors() {
		nh := m.Get(nc)
		if nh != nil && (nh.Biome == BiomeRiver || nh.Biome == BiomeSwamp) {
			score += 0.5
			break
		}
	}

	score += hex.Fertility + hex.Rainfall*0.5

	// Slight pull toward the middle of the continent.
	score -= float64(Distance(coord, HexCoord{})) / float64(m.Radius+1) * 0.5

	return score
}

// TerrainParams derives colony-grid generation parameters from a hex's
// biome descriptor. The colony seed mixes the world seed with the hex
// coordinate so every hex has its own terrain.
func (h *Hex) TerrainParams(worldSeed int64, width, height int) colony.Params {
	seed := noise.ChannelSeed(worldSeed, "hex"+h.Coord.String())
	p := colony.DefaultParams(seed, width, height)

	// Rugged, high land has more rock; wet land more springs; fertile land more soil.
	p.RockLevel = clamp01(0.85 - h.Ruggedness*0.25 - h.Elevation*0.15)
	p.SpringLevel = clamp01(0.85 - h.Rainfall*0.2)
	p.SoilLevel = clamp01(0.7 - h.Fertility*0.35)
	p.Moisture = clamp01(0.2 + h.Rainfall*0.7)

	switch h.Biome {
	case BiomeMountain:
		p.RockLevel = clamp01(p.RockLevel - 0.12)
	case BiomeDesert:
		p.SpringLevel = clamp01(p.SpringLevel + 0.1)
		p.SoilLevel = clamp01(p.SoilLevel + 0.15)
		p.Moisture *= 0.5
	case BiomeSwamp, BiomeRiver, BiomeCoast:
		p.SpringLevel = clamp01(p.SpringLevel - 0.06)
	case BiomeTundra:
		p.Moisture *= 0.7
	}
	return p
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
