package world

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/cell-colony/internal/colony"
	"github.com/talgya/cell-colony/internal/species"
)

var (
	ErrOutOfBounds      = errors.New("hex out of bounds")
	ErrUninhabitable    = errors.New("hex is uninhabitable")
	ErrHexFull          = errors.New("hex has no remaining capacity")
	ErrAlreadySettled   = errors.New("species already settled on hex")
	ErrDuplicateAttempt = errors.New("species already has a pending attempt on hex")
	ErrUnknownAttempt   = errors.New("unknown settling attempt")
	ErrNotPending       = errors.New("settling attempt is not pending")
)

// AttemptStatus tracks a settling attempt through its life.
type AttemptStatus uint8

const (
	AttemptPending AttemptStatus = iota
	AttemptCommitted
	AttemptRejected
)

// String returns the status name.
func (s AttemptStatus) String() string {
	switch s {
	case AttemptPending:
		return "pending"
	case AttemptCommitted:
		return "committed"
	case AttemptRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// SettlingAttempt binds a species to a target hex.
type SettlingAttempt struct {
	ID      uuid.UUID     `json:"id"`
	Species string        `json:"species"`
	Target  HexCoord      `json:"target"`
	Status  AttemptStatus `json:"status"`
	Reason  string        `json:"reason,omitempty"`

	species *species.Species
}

// OverWorld is the generated macro map plus its settling state.
// The map is fixed after generation; only hex capacity, settled species
// and the attempt list change.
type OverWorld struct {
	Seed   int64     `json:"seed"`
	Config GenConfig `json:"config"`
	Map    *Map      `json:"map"`

	start    HexCoord
	attempts []*SettlingAttempt
	index    map[uuid.UUID]*SettlingAttempt
}

func newOverWorld(cfg GenConfig, m *Map) *OverWorld {
	return &OverWorld{
		Seed:   cfg.Seed,
		Config: cfg,
		Map:    m,
		start:  chooseStart(m),
		index:  make(map[uuid.UUID]*SettlingAttempt),
	}
}

// StartHex returns the designated start location.
func (o *OverWorld) StartHex() HexCoord {
	return o.start
}

// Hexes returns every hex in coordinate order. Callers must treat them as read-only.
func (o *OverWorld) Hexes() []*Hex {
	coords := o.Map.Coords()
	out := make([]*Hex, len(coords))
	for i, c := range coords {
		out[i] = o.Map.Get(c)
	}
	return out
}

// Attempts returns copies of every attempt in submission order.
func (o *OverWorld) Attempts() []SettlingAttempt {
	out := make([]SettlingAttempt, len(o.attempts))
	for i, a := range o.attempts {
		out[i] = *a
	}
	return out
}

// Pending returns copies of the attempts still awaiting a commit.
func (o *OverWorld) Pending() []SettlingAttempt {
	var out []SettlingAttempt
	for _, a := range o.attempts {
		if a.Status == AttemptPending {
			out = append(out, *a)
		}
	}
	return out
}

// Attempt returns a copy of one attempt.
func (o *OverWorld) Attempt(id uuid.UUID) (SettlingAttempt, bool) {
	a, ok := o.index[id]
	if !ok {
		return SettlingAttempt{}, false
	}
	return *a, true
}

// Submit records a settling attempt. An attempt that cannot succeed is
// recorded as rejected and its reason is returned as the error.
func (o *OverWorld) Submit(sp *species.Species, target HexCoord) (SettlingAttempt, error) {
	if sp == nil {
		return SettlingAttempt{}, fmt.Errorf("%w: nil species", species.ErrInvalidSpecies)
	}
	a := &SettlingAttempt{
		ID:      uuid.New(),
		Species: sp.Name,
		Target:  target,
		species: sp,
	}
	o.attempts = append(o.attempts, a)
	o.index[a.ID] = a

	if err := o.check(sp.Name, target, a.ID); err != nil {
		o.reject(a, err)
		return *a, err
	}
	slog.Debug("settling attempt submitted", "id", a.ID, "species", sp.Name, "target", target.String())
	return *a, nil
}

// Commit resolves a pending attempt: it generates a colony grid from the
// target hex's biome, seeds founder cells of the species, and uses up one
// unit of the hex's capacity. Conflicts that arose since submission, or a
// grid with no room for founders, reject the attempt. A bad grid size or
// config is returned as an error and leaves the attempt pending.
func (o *OverWorld) Commit(id uuid.UUID, width, height int, cfg colony.Config) (*colony.World, error) {
	a, ok := o.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAttempt, id)
	}
	if a.Status != AttemptPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPending, id, a.Status)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: grid %dx%d", colony.ErrInvalidParams, width, height)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := o.check(a.Species, a.Target, a.ID); err != nil {
		o.reject(a, err)
		return nil, err
	}

	hex := o.Map.Get(a.Target)
	params := hex.TerrainParams(o.Seed, width, height)
	w, err := colony.Generate(params, cfg)
	if err != nil {
		return nil, fmt.Errorf("generate colony: %w", err)
	}
	if _, err := w.SeedFounders(a.species, cfg.Founders); err != nil {
		if errors.Is(err, colony.ErrNoRoom) {
			o.reject(a, err)
		}
		return nil, fmt.Errorf("seed founders: %w", err)
	}

	o.settle(hex, a)
	slog.Info("species settled",
		"species", a.Species,
		"hex", a.Target.String(),
		"biome", BiomeName(hex.Biome),
		"capacity_left", hex.Capacity,
	)
	return w, nil
}

func (o *OverWorld) settle(hex *Hex, a *SettlingAttempt) {
	hex.Capacity--
	hex.Settled = append(hex.Settled, a.Species)
	a.Status = AttemptCommitted
	a.Reason = ""
}

func (o *OverWorld) reject(a *SettlingAttempt, err error) {
	a.Status = AttemptRejected
	a.Reason = err.Error()
	slog.Info("settling attempt rejected", "id", a.ID, "species", a.Species, "target", a.Target.String(), "reason", a.Reason)
}

// check validates a species against a target hex. self is excluded from
// the duplicate-attempt scan.
func (o *OverWorld) check(name string, target HexCoord, self uuid.UUID) error {
	hex := o.Map.Get(target)
	if hex == nil {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, target)
	}
	if baseCapacity(hex.Biome) == 0 {
		return fmt.Errorf("%w: %s is %s", ErrUninhabitable, target, BiomeName(hex.Biome))
	}
	for _, s := range hex.Settled {
		if s == name {
			return fmt.Errorf("%w: %s on %s", ErrAlreadySettled, name, target)
		}
	}
	if hex.Capacity <= 0 {
		return fmt.Errorf("%w: %s", ErrHexFull, target)
	}
	for _, a := range o.attempts {
		if a.ID != self && a.Status == AttemptPending && a.Species == name && a.Target == target {
			return fmt.Errorf("%w: %s on %s", ErrDuplicateAttempt, name, target)
		}
	}
	return nil
}

// Restore replays saved attempts onto a freshly generated overworld.
// Committed attempts reapply their hex changes in order; pending attempts
// are looked up in the registry so they can still be committed.
func (o *OverWorld) Restore(saved []SettlingAttempt, reg *species.Registry) error {
	for _, s := range saved {
		a := s
		if a.Status == AttemptPending {
			sp, err := reg.Lookup(a.Species)
			if err != nil {
				return fmt.Errorf("restore attempt %s: %w", a.ID, err)
			}
			a.species = sp
		}
		if a.Status == AttemptCommitted {
			hex := o.Map.Get(a.Target)
			if hex == nil {
				return fmt.Errorf("restore attempt %s: %w: %s", a.ID, ErrOutOfBounds, a.Target)
			}
			o.settle(hex, &a)
		}
		o.attempts = append(o.attempts, &a)
		o.index[a.ID] = &a
	}
	return nil
}
