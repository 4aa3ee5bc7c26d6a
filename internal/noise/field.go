// Package noise provides seeded continuous scalar fields for terrain generation.
// Every field is a pure function of its seed and the sampled coordinate.
package noise

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Field is a seeded OpenSimplex field normalized to [0, 1).
// A Field is immutable after construction and safe to sample repeatedly.
type Field struct {
	seed  int64
	noise opensimplex.Noise
}

// NewField creates a field for the given seed. Every int64 is a valid seed.
func NewField(seed int64) *Field {
	return &Field{
		seed:  seed,
		noise: opensimplex.NewNormalized(seed),
	}
}

// Seed returns the seed the field was built from.
func (f *Field) Seed() int64 {
	return f.seed
}

// Sample evaluates the field at a 2D coordinate.
func (f *Field) Sample(x, y float64) float64 {
	return f.noise.Eval2(x, y)
}

// SampleAt evaluates the field at a 2D coordinate and time.
func (f *Field) SampleAt(x, y, t float64) float64 {
	return f.noise.Eval3(x, y, t)
}

// Fractal layers several frequencies of the field for natural-looking terrain.
// Each octave doubles the frequency and scales the amplitude by persistence.
// The result stays in [0, 1) because it is normalized by the amplitude sum.
func (f *Field) Fractal(x, y float64, octaves int, frequency, persistence float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += f.noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
