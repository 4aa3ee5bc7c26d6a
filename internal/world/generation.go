// Overworld generation from the four noise channels at continent scale.
// Elevation, rainfall, ruggedness and fertility maps derive the biome of each hex.
package world

import (
	"math"
	"math/rand"

	"github.com/talgya/cell-colony/internal/noise"
)

// GenConfig holds overworld generation parameters.
type GenConfig struct {
	Radius      int     `yaml:"radius"`       // Hex grid radius
	Seed        int64   `yaml:"seed"`         // World seed; every value is valid
	SeaLevel    float64 `yaml:"sea_level"`    // Elevation threshold for ocean (0.0–1.0)
	MountainLvl float64 `yaml:"mountain_lvl"` // Elevation threshold for mountains (0.0–1.0)
}

// DefaultGenConfig returns the large-continent configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:      16,
		Seed:        0,
		SeaLevel:    0.25,
		MountainLvl: 0.72,
	}
}

// SmallTestConfig returns a tiny overworld for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:      5,
		Seed:        42,
		SeaLevel:    0.30,
		MountainLvl: 0.75,
	}
}

// GenerateLargeContinent generates the default continent for a seed.
// Same seed, same map.
func GenerateLargeContinent(seed int64) *OverWorld {
	cfg := DefaultGenConfig()
	cfg.Seed = seed
	return Generate(cfg)
}

// Generate creates an overworld with biomes, a start hex and no settlers.
func Generate(cfg GenConfig) *OverWorld {
	if cfg.Radius < 1 {
		cfg.Radius = 1
	}
	ctx := noise.NewContext(cfg.Seed)
	m := NewMap(cfg.Radius)

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := HexCoord{Q: q, R: r}
			if !m.InBounds(coord) {
				continue
			}

			// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			elev := ctx.Height.Fractal(x, y, 4, 0.08, 0.5)
			rain := ctx.Water.Fractal(x, y, 3, 0.06, 0.5)
			rugged := ctx.Rock.Fractal(x, y, 3, 0.1, 0.5)
			fertile := ctx.Soil.Fractal(x, y, 3, 0.07, 0.5)

			// Continental shaping: reduce elevation near edges to create ocean border.
			distFromCenter := math.Sqrt(x*x+y*y) / float64(cfg.Radius)
			edgeFalloff := 1.0 - math.Pow(distFromCenter, 3.5)
			if edgeFalloff < 0 {
				edgeFalloff = 0
			}
			elev *= edgeFalloff

			// Colder toward the poles and at altitude.
			temp := (1.0-math.Abs(y)/float64(cfg.Radius))*0.75 + (1.0-elev)*0.25

			biome := deriveBiome(elev, rain, temp, rugged, cfg)
			m.Set(&Hex{
				Coord:      coord,
				Biome:      biome,
				Elevation:  elev,
				Rainfall:   rain,
				Ruggedness: rugged,
				Fertility:  fertile,
				Capacity:   baseCapacity(biome),
			})
		}
	}

	markCoastalHexes(m)
	placeRivers(m, noise.ChannelSeed(cfg.Seed, "river"))

	return newOverWorld(cfg, m)
}

// deriveBiome determines the biome from environmental parameters.
func deriveBiome(elev, rain, temp, rugged float64, cfg GenConfig) Biome {
	if elev < cfg.SeaLevel {
		return BiomeOcean
	}
	if elev > cfg.MountainLvl || (rugged > 0.75 && elev > 0.55) {
		return BiomeMountain
	}
	if temp < 0.3 {
		return BiomeTundra
	}
	if rain < 0.3 && temp > 0.5 {
		return BiomeDesert
	}
	if rain > 0.7 && elev < 0.45 {
		return BiomeSwamp
	}
	if rain > 0.45 && elev > 0.45 {
		return BiomeForest
	}
	return BiomePlains
}

// markCoastalHexes converts low land hexes adjacent to ocean into coast.
func markCoastalHexes(m *Map) {
	var toMark []HexCoord

	for _, coord := range m.Coords() {
		hex := m.Get(coord)
		if hex.Biome == BiomeOcean {
			continue
		}
		for _, neighbor := range coord.Neighbors() {
			nh := m.Get(neighbor)
			if nh != nil && nh.Biome == BiomeOcean {
				toMark = append(toMark, coord)
				break
			}
		}
	}

	for _, coord := range toMark {
		hex := m.Get(coord)
		if hex.Biome == BiomePlains || hex.Biome == BiomeForest {
			if hex.Elevation < 0.5 {
				hex.Biome = BiomeCoast
				hex.Capacity = baseCapacity(BiomeCoast)
			}
		}
	}
}

// placeRivers traces paths from high elevation to the sea, marking hexes as river.
func placeRivers(m *Map, seed int64) {
	rng := rand.New(rand.NewSource(seed))

	var sources []HexCoord
	for _, coord := range m.Coords() {
		hex := m.Get(coord)
		if hex.Elevation > 0.6 && hex.Biome != BiomeOcean {
			sources = append(sources, coord)
		}
	}

	numRivers := len(sources) / 8
	if numRivers < 2 {
		numRivers = 2
	}
	if numRivers > 8 {
		numRivers = 8
	}

	rng.Shuffle(len(sources), func(i, j int) {
		sources[i], sources[j] = sources[j], sources[i]
	})
	if len(sources) > numRivers {
		sources = sources[:numRivers]
	}

	for _, start := range sources {
		traceRiver(m, start)
	}
}

// traceRiver follows the steepest descent from a source hex until reaching
// ocean or running out of downhill path.
func traceRiver(m *Map, start HexCoord) {
	current := start
	visited := make(map[HexCoord]bool)
	maxSteps := 50

	for step := 0; step < maxSteps; step++ {
		visited[current] = true
		hex := m.Get(current)
		if hex == nil || hex.Biome == BiomeOcean {
			break
		}

		if hex.Biome != BiomeMountain && hex.Biome != BiomeCoast {
			hex.Biome = BiomeRiver
			hex.Capacity = baseCapacity(BiomeRiver)
			hex.Rainfall = math.Max(hex.Rainfall, 0.6)
		}

		// Neighbors are scanned in fixed direction order; the first strictly
		// lowest one wins ties.
		var next *HexCoord
		bestElev := hex.Elevation
		for _, nc := range current.Neighbors() {
			if visited[nc] {
				continue
			}
			nh := m.Get(nc)
			if nh == nil {
				continue
			}
			if nh.Elevation < bestElev {
				bestElev = nh.Elevation
				c := nc
				next = &c
			}
		}

		if next == nil {
			break
		}
		current = *next
	}
}

// BiomeCounts returns a summary of biome distribution.
func BiomeCounts(m *Map) map[Biome]int {
	counts := make(map[Biome]int)
	for _, hex := range m.Hexes {
		counts[hex.Biome]++
	}
	return counts
}
