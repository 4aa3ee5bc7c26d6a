package colony

import (
	"math"
	"sort"

	"github.com/talgya/cell-colony/internal/species"
)

// stepCell runs one step of a living cell. Phases run in a fixed order:
// terrain intake, neighbor foraging, photosynthesis, metabolism, then
// death or division. dt is the simulated time since the cell last stepped.
func (w *World) stepCell(t *Tile, dt float64, rep *TickReport) {
	sp := t.Species
	inv := t.Inv

	w.Absorb(t.Pos, sp.RootIntake*dt)

	// Cells top water up to half capacity and keep one step of upkeep in sugar.
	wantWater := math.Min(sp.ForageWater*dt, math.Max(0, inv.Capacity()/2-inv.Water()))
	wantSugar := math.Min(sp.ForageSugar*dt, math.Max(0, sp.Upkeep*dt-inv.Sugar()))
	if wantWater > 0 || wantSugar > 0 {
		switch sp.Policy {
		case species.ForageAll:
			w.ForageAll(t.Pos, wantWater, wantSugar)
		default:
			w.ForageSingle(t.Pos, wantWater, wantSugar)
		}
	}

	inv.convert(sp.Photosynthesis * dt)

	need := sp.Upkeep * dt
	if burned := inv.burn(need); burned < need {
		t.Starving += dt
	} else {
		t.Starving = 0
	}
	t.Age += dt

	if t.Starving > sp.StarveSeconds {
		w.die(t)
		rep.Deaths++
		return
	}
	if sp.DivideAt > 0 && inv.Sugar() >= sp.DivideAt {
		if w.divide(t) {
			rep.Births++
		}
	}
}

// die replaces a cell with barren land. The cell's water soaks into the
// ground; its sugar is lost with its inventory.
func (w *World) die(t *Tile) {
	ground, err := NewTerrain(KindBarren, t.Pos, w.Config, 0)
	if err != nil {
		w.Remove(t.Pos)
		return
	}
	t.Inv.Give(ground.Inv, t.Inv.Water(), 0)
	w.Place(ground)
}

// divide places a daughter cell in the first free neighbor slot (empty,
// barren or soil) and splits the parent's resources with it.
func (w *World) divide(parent *Tile) bool {
	for _, d := range Directions {
		p := parent.Pos.Add(d)
		if !w.InBounds(p) {
			continue
		}
		target := w.At(p)
		if target != nil && target.Kind != KindBarren && target.Kind != KindSoil {
			continue
		}

		child, err := NewCell(p, parent.Species, 0, 0)
		if err != nil {
			return false
		}
		if target != nil {
			target.Inv.Give(child.Inv, target.Inv.Water(), 0)
		}
		parent.Inv.Give(child.Inv, parent.Inv.Water()/2, parent.Inv.Sugar()/2)
		w.Place(child)
		return true
	}
	return false
}

// SeedFounders places n founder cells of a species on the passable,
// non-spring tiles nearest the grid center, nearest first with row-major
// tie-breaking. Each founder soaks up the water of the tile it replaces
// and starts with a quarter of its capacity in sugar.
func (w *World) SeedFounders(sp *species.Species, n int) ([]*Tile, error) {
	if n <= 0 {
		return nil, nil
	}
	cx, cy := w.Width/2, w.Height/2

	type candidate struct {
		pos  Pos
		dist int
	}
	var cands []candidate
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			p := Pos{X: x, Y: y}
			t := w.At(p)
			if t != nil && t.Kind != KindBarren && t.Kind != KindSoil {
				continue
			}
			cands = append(cands, candidate{p, abs(x-cx) + abs(y-cy)})
		}
	}
	if len(cands) == 0 {
		return nil, ErrNoRoom
	}
	// Stable sort keeps row-major order among equal distances.
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	if len(cands) > n {
		cands = cands[:n]
	}

	founders := make([]*Tile, 0, len(cands))
	for _, c := range cands {
		cell, err := NewCell(c.pos, sp, 0, sp.CellCapacity/4)
		if err != nil {
			return founders, err
		}
		if prev := w.At(c.pos); prev != nil {
			prev.Inv.Give(cell.Inv, prev.Inv.Water(), 0)
		}
		if _, err := w.Place(cell); err != nil {
			return founders, err
		}
		founders = append(founders, cell)
	}
	return founders, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
