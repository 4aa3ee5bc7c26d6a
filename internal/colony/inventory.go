package colony

import (
	"fmt"
	"math"
)

// Inventory is a bounded store of water and sugar held by one grid occupant.
// Water + Sugar never exceeds Capacity, and both are non-negative.
// Outside this package the contents change only through Give and Take.
type Inventory struct {
	owner    Pos
	capacity float64
	water    float64
	sugar    float64
}

// Transfer reports how much of each resource moved in one Give.
type Transfer struct {
	Water float64 `json:"water"`
	Sugar float64 `json:"sugar"`
}

// Any reports whether anything moved.
func (t Transfer) Any() bool {
	return t.Water > 0 || t.Sugar > 0
}

// Add accumulates another transfer.
func (t Transfer) Add(o Transfer) Transfer {
	return Transfer{Water: t.Water + o.Water, Sugar: t.Sugar + o.Sugar}
}

// NewInventory validates and creates an inventory owned by the occupant at pos.
func NewInventory(owner Pos, capacity, water, sugar float64) (*Inventory, error) {
	if !finite(capacity) || capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %v", ErrInvalidInventory, capacity)
	}
	if !finite(water) || water < 0 {
		return nil, fmt.Errorf("%w: water must be non-negative, got %v", ErrInvalidInventory, water)
	}
	if !finite(sugar) || sugar < 0 {
		return nil, fmt.Errorf("%w: sugar must be non-negative, got %v", ErrInvalidInventory, sugar)
	}
	if water+sugar > capacity*(1+roundingSlack) {
		return nil, fmt.Errorf("%w: contents %v exceed capacity %v", ErrInvalidInventory, water+sugar, capacity)
	}
	return &Inventory{owner: owner, capacity: capacity, water: water, sugar: sugar}, nil
}

func (inv *Inventory) Owner() Pos        { return inv.owner }
func (inv *Inventory) Capacity() float64 { return inv.capacity }
func (inv *Inventory) Water() float64    { return inv.water }
func (inv *Inventory) Sugar() float64    { return inv.sugar }
func (inv *Inventory) Total() float64    { return inv.water + inv.sugar }

// Free returns the remaining capacity.
func (inv *Inventory) Free() float64 {
	free := inv.capacity - inv.water - inv.sugar
	if free < 0 {
		return 0
	}
	return free
}

// Give moves up to maxWater water and maxSugar sugar from inv into other.
// Amounts are clamped to what inv holds and to other's free capacity, water
// first, then sugar against whatever capacity remains. A shortfall in one
// resource never blocks the other. Negative or NaN requests move nothing.
// The caller must not pass the same inventory as both ends.
func (inv *Inventory) Give(other *Inventory, maxWater, maxSugar float64) Transfer {
	var t Transfer

	t.Water = clampAmount(maxWater, inv.water, other.Free())
	inv.water -= t.Water
	other.water += t.Water

	t.Sugar = clampAmount(maxSugar, inv.sugar, other.Free())
	inv.sugar -= t.Sugar
	other.sugar += t.Sugar

	return t
}

// Take pulls resources from other into inv. It is Give with the ends swapped.
func (inv *Inventory) Take(other *Inventory, maxWater, maxSugar float64) Transfer {
	return other.Give(inv, maxWater, maxSugar)
}

// fill adds water up to capacity without a source and returns the amount added.
// Terrain uses it to model springs and soil recharge.
func (inv *Inventory) fill(water float64) float64 {
	add := clampAmount(water, math.Inf(1), inv.Free())
	inv.water += add
	return add
}

// drain removes up to water from the store and returns the amount removed.
func (inv *Inventory) drain(water float64) float64 {
	take := clampAmount(water, inv.water, math.Inf(1))
	inv.water -= take
	return take
}

// convert turns up to amount water into sugar in place.
func (inv *Inventory) convert(amount float64) float64 {
	c := clampAmount(amount, inv.water, math.Inf(1))
	inv.water -= c
	inv.sugar += c
	return c
}

// burn consumes up to amount sugar and returns how much was burned.
func (inv *Inventory) burn(amount float64) float64 {
	b := clampAmount(amount, inv.sugar, math.Inf(1))
	inv.sugar -= b
	return b
}

func (inv *Inventory) setOwner(p Pos) {
	inv.owner = p
}

// String returns a compact summary.
func (inv *Inventory) String() string {
	return fmt.Sprintf("Inventory(water=%.2f, sugar=%.2f, cap=%.2f)", inv.water, inv.sugar, inv.capacity)
}

func clampAmount(requested, available, room float64) float64 {
	if math.IsNaN(requested) || requested <= 0 {
		return 0
	}
	amt := requested
	if available < amt {
		amt = available
	}
	if room < amt {
		amt = room
	}
	if amt < 0 {
		return 0
	}
	return amt
}

// roundingSlack absorbs float error accumulated by repeated transfers.
const roundingSlack = 1e-12

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
