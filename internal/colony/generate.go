// Colony terrain generation from the four noise channels.
package colony

import (
	"github.com/talgya/cell-colony/internal/noise"
)

// Generate builds a colony grid whose terrain is classified per tile from
// the height, rock, water and soil channels seeded by params.Seed.
// The same params always produce the same grid.
func Generate(params Params, cfg Config) (*World, error) {
	w, err := New(params, cfg)
	if err != nil {
		return nil, err
	}
	ctx := noise.NewContext(params.Seed)

	for y := 0; y < params.Height; y++ {
		for x := 0; x < params.Width; x++ {
			fx, fy := float64(x), float64(y)
			height := ctx.Height.Fractal(fx, fy, 3, params.Scale, 0.5)
			rock := ctx.Rock.Fractal(fx, fy, 3, params.Scale*1.5, 0.5)
			water := ctx.Water.Fractal(fx, fy, 2, params.Scale, 0.5)
			soil := ctx.Soil.Fractal(fx, fy, 2, params.Scale*0.8, 0.5)

			kind, moisture := classify(params, height, rock, water, soil)
			pos := Pos{X: x, Y: y}

			initial := 0.0
			switch kind {
			case KindSoil:
				initial = moisture * cfg.TerrainCapacity
			case KindSpring:
				initial = cfg.TerrainCapacity
			case KindBarren:
				initial = water * 0.1 * cfg.TerrainCapacity
			}

			t, err := NewTerrain(kind, pos, cfg, initial)
			if err != nil {
				return nil, err
			}
			t.Moisture = moisture
			if _, err := w.Place(t); err != nil {
				return nil, err
			}
		}
	}
	return w, nil
}

// classify picks a terrain kind from channel samples. Highlands favor rock,
// lowlands favor springs.
func classify(p Params, height, rock, water, soil float64) (Kind, float64) {
	rockScore := 0.7*rock + 0.3*height
	if rockScore > p.RockLevel {
		return KindRock, 0
	}
	springScore := 0.8*water + 0.2*(1-height)
	if springScore > p.SpringLevel {
		return KindSpring, 1
	}
	if soil > p.SoilLevel {
		m := p.Moisture * (0.5 + water)
		if m > 1 {
			m = 1
		}
		return KindSoil, m
	}
	return KindBarren, 0
}
