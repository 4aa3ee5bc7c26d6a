package noise

import (
	"gonum.org/v1/gonum/stat"
)

// Terrain channel names. Each one keys an independent noise field.
const (
	ChannelHeight = "height"
	ChannelRock   = "rock"
	ChannelWater  = "water"
	ChannelSoil   = "soil"
)

// Channels lists the terrain channels in a fixed order.
var Channels = [4]string{ChannelHeight, ChannelRock, ChannelWater, ChannelSoil}

// ChannelSeed derives a channel seed from a world seed by folding the
// channel name into it one character at a time. The shift applied for each
// character grows with the square of its code point, so channel seeds share
// no simple arithmetic relation with each other or with the world seed.
// All arithmetic is unsigned and wraps on overflow.
func ChannelSeed(worldSeed int64, channel string) int64 {
	h := uint64(worldSeed)
	for _, c := range channel {
		cc := uint64(c)
		shift := (cc*cc)%61 + 1
		h ^= h << shift
		h ^= h >> 7
		h = h*0x9e3779b97f4a7c15 + cc
	}
	return int64(avalanche(h))
}

// avalanche is the splitmix64 finalizer. Adjacent inputs map to
// unrelated outputs.
func avalanche(h uint64) uint64 {
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return h
}

// GeneratorContext holds one field per terrain channel, all derived from a
// single world seed.
type GeneratorContext struct {
	Seed   int64
	Height *Field
	Rock   *Field
	Water  *Field
	Soil   *Field
}

// NewContext builds the four channel fields for a world seed.
func NewContext(worldSeed int64) *GeneratorContext {
	return &GeneratorContext{
		Seed:   worldSeed,
		Height: NewField(ChannelSeed(worldSeed, ChannelHeight)),
		Rock:   NewField(ChannelSeed(worldSeed, ChannelRock)),
		Water:  NewField(ChannelSeed(worldSeed, ChannelWater)),
		Soil:   NewField(ChannelSeed(worldSeed, ChannelSoil)),
	}
}

// Channel returns the field for a channel name, or nil if the name is unknown.
func (g *GeneratorContext) Channel(name string) *Field {
	switch name {
	case ChannelHeight:
		return g.Height
	case ChannelRock:
		return g.Rock
	case ChannelWater:
		return g.Water
	case ChannelSoil:
		return g.Soil
	default:
		return nil
	}
}

// Grid samples a field on a w×h lattice with the given spacing, row-major.
func Grid(f *Field, w, h int, spacing float64) []float64 {
	out := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out = append(out, f.Sample(float64(x)*spacing, float64(y)*spacing))
		}
	}
	return out
}

// Correlation returns the Pearson correlation of two equally sized samples.
func Correlation(a, b []float64) float64 {
	return stat.Correlation(a, b, nil)
}
