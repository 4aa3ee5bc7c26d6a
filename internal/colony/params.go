package colony

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrInvalidInventory = errors.New("invalid inventory")
	ErrInvalidParams    = errors.New("invalid colony parameters")
	ErrInvalidStep      = errors.New("invalid step")
	ErrOutOfBounds      = errors.New("position out of bounds")
	ErrNoRoom           = errors.New("no room for founders")
)

// Params holds the terrain generation parameters for one colony grid.
// The overworld derives them from a hex's biome; tests build them directly.
type Params struct {
	Seed   int64 `json:"seed"`
	Width  int   `json:"width"`
	Height int   `json:"height"`

	// Noise sampling frequency in cycles per tile.
	Scale float64 `json:"scale"`

	// Classification thresholds in [0,1]. A tile becomes rock when its rock
	// score exceeds RockLevel, a spring when its water score exceeds
	// SpringLevel, soil when its soil score exceeds SoilLevel, otherwise barren.
	RockLevel   float64 `json:"rock_level"`
	SpringLevel float64 `json:"spring_level"`
	SoilLevel   float64 `json:"soil_level"`

	// Moisture is the fraction of capacity soil holds at rest.
	Moisture float64 `json:"moisture"`
}

// DefaultParams returns temperate-plains parameters for the given seed and size.
func DefaultParams(seed int64, width, height int) Params {
	return Params{
		Seed:        seed,
		Width:       width,
		Height:      height,
		Scale:       0.12,
		RockLevel:   0.68,
		SpringLevel: 0.74,
		SoilLevel:   0.45,
		Moisture:    0.6,
	}
}

// Validate rejects unusable parameters.
func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidParams, p.Width, p.Height)
	}
	if !finite(p.Scale) || p.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive, got %v", ErrInvalidParams, p.Scale)
	}
	levels := map[string]float64{
		"rock_level":   p.RockLevel,
		"spring_level": p.SpringLevel,
		"soil_level":   p.SoilLevel,
		"moisture":     p.Moisture,
	}
	names := make([]string, 0, len(levels))
	for k := range levels {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		v := levels[name]
		if !finite(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %v", ErrInvalidParams, name, v)
		}
	}
	return nil
}

// Config holds stepping and terrain behavior shared by every colony.
type Config struct {
	// Rate gates in simulated seconds. Barren and rock tiles step only after
	// InertInterval has passed; soil and springs after SoilInterval.
	InertInterval float64 `yaml:"inert_interval" json:"inert_interval"`
	SoilInterval  float64 `yaml:"soil_interval" json:"soil_interval"`

	TerrainCapacity float64 `yaml:"terrain_capacity" json:"terrain_capacity"`
	Evaporation     float64 `yaml:"evaporation" json:"evaporation"` // fraction of barren water lost per step
	Recharge        float64 `yaml:"recharge" json:"recharge"`       // soil water regained per second

	Founders int `yaml:"founders" json:"founders"`
}

// DefaultConfig returns the stepping configuration used by the runner.
func DefaultConfig() Config {
	return Config{
		InertInterval:   5,
		SoilInterval:    1,
		TerrainCapacity: 20,
		Evaporation:     0.1,
		Recharge:        0.5,
		Founders:        4,
	}
}

// Validate rejects unusable configuration.
func (c Config) Validate() error {
	if !finite(c.InertInterval) || c.InertInterval < 0 {
		return fmt.Errorf("%w: inert_interval must be non-negative, got %v", ErrInvalidParams, c.InertInterval)
	}
	if !finite(c.SoilInterval) || c.SoilInterval < 0 {
		return fmt.Errorf("%w: soil_interval must be non-negative, got %v", ErrInvalidParams, c.SoilInterval)
	}
	if !finite(c.TerrainCapacity) || c.TerrainCapacity <= 0 {
		return fmt.Errorf("%w: terrain_capacity must be positive, got %v", ErrInvalidParams, c.TerrainCapacity)
	}
	if !finite(c.Evaporation) || c.Evaporation < 0 || c.Evaporation > 1 {
		return fmt.Errorf("%w: evaporation must be in [0,1], got %v", ErrInvalidParams, c.Evaporation)
	}
	if !finite(c.Recharge) || c.Recharge < 0 {
		return fmt.Errorf("%w: recharge must be non-negative, got %v", ErrInvalidParams, c.Recharge)
	}
	if c.Founders < 0 {
		return fmt.Errorf("%w: founders must be non-negative, got %d", ErrInvalidParams, c.Founders)
	}
	return nil
}
