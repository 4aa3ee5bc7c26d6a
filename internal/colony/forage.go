package colony

// ForageSingle draws resources into the occupant at p from the first
// neighboring cell, in TileNeighbors order, that gives anything. Later
// neighbors are not asked even if they could give more.
func (w *World) ForageSingle(p Pos, maxWater, maxSugar float64) Transfer {
	self := w.At(p)
	if self == nil {
		return Transfer{}
	}
	for _, n := range w.TileNeighbors(p) {
		if n == self || !n.IsCell() {
			continue
		}
		if t := n.Inv.Give(self.Inv, maxWater, maxSugar); t.Any() {
			return t
		}
	}
	return Transfer{}
}

// ForageAll asks every neighboring cell for up to maxWater and maxSugar and
// returns the combined amount received.
func (w *World) ForageAll(p Pos, maxWater, maxSugar float64) Transfer {
	self := w.At(p)
	if self == nil {
		return Transfer{}
	}
	var total Transfer
	for _, n := range w.TileNeighbors(p) {
		if n == self || !n.IsCell() {
			continue
		}
		total = total.Add(n.Inv.Give(self.Inv, maxWater, maxSugar))
	}
	return total
}

// Absorb draws up to maxWater into the occupant at p from adjacent passable
// terrain, taking from each neighbor in order until the request is met.
func (w *World) Absorb(p Pos, maxWater float64) float64 {
	self := w.At(p)
	if self == nil {
		return 0
	}
	got := 0.0
	for _, n := range w.TileNeighbors(p) {
		if got >= maxWater {
			break
		}
		if n == self || n.IsCell() || n.Obstacle {
			continue
		}
		got += n.Inv.Give(self.Inv, maxWater-got, 0).Water
	}
	return got
}
