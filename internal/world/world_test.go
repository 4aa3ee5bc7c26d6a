package world

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/talgya/cell-colony/internal/colony"
	"github.com/talgya/cell-colony/internal/species"
)

func TestGenerateLargeContinentDeterministic(t *testing.T) {
	a := GenerateLargeContinent(42)
	b := GenerateLargeContinent(42)

	if a.StartHex() != b.StartHex() {
		t.Fatalf("start hex differs: %v vs %v", a.StartHex(), b.StartHex())
	}
	if a.Map.HexCount() != b.Map.HexCount() {
		t.Fatalf("hex count differs: %d vs %d", a.Map.HexCount(), b.Map.HexCount())
	}
	for _, coord := range a.Map.Coords() {
		ha, hb := a.Map.Get(coord), b.Map.Get(coord)
		if hb == nil {
			t.Fatalf("hex %v missing from second map", coord)
		}
		if ha.Biome != hb.Biome || ha.Elevation != hb.Elevation || ha.Capacity != hb.Capacity {
			t.Fatalf("hex %v differs: %+v vs %+v", coord, ha, hb)
		}
	}
}

func TestGenerateDiffersBySeed(t *testing.T) {
	a := GenerateLargeContinent(42)
	b := GenerateLargeContinent(43)
	same := 0
	for _, coord := range a.Map.Coords() {
		if a.Map.Get(coord).Elevation == b.Map.Get(coord).Elevation {
			same++
		}
	}
	if same == a.Map.HexCount() {
		t.Fatal("adjacent seeds produced identical elevation maps")
	}
}

func TestMapShapeAndConnectivity(t *testing.T) {
	cfg := SmallTestConfig()
	ow := Generate(cfg)
	r := cfg.Radius
	if want := 3*r*(r+1) + 1; ow.Map.HexCount() != want {
		t.Fatalf("expected %d hexes for radius %d, got %d", want, r, ow.Map.HexCount())
	}

	seen := map[HexCoord]bool{{}: true}
	queue := []HexCoord{{}}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, n := range c.Neighbors() {
			if ow.Map.Get(n) != nil && !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	if len(seen) != ow.Map.HexCount() {
		t.Fatalf("reached %d of %d hexes from the origin", len(seen), ow.Map.HexCount())
	}
}

func TestStartHexIsLand(t *testing.T) {
	for _, seed := range []int64{0, 1, 42, -7, 123456789} {
		ow := GenerateLargeContinent(seed)
		hex := ow.Map.Get(ow.StartHex())
		if hex == nil {
			t.Fatalf("seed %d: start hex %v not on map", seed, ow.StartHex())
		}
		if hex.Biome == BiomeOcean {
			t.Fatalf("seed %d: start hex %v is ocean", seed, ow.StartHex())
		}
	}
}

func TestEdgesAreOcean(t *testing.T) {
	ow := GenerateLargeContinent(42)
	counts := BiomeCounts(ow.Map)
	if counts[BiomeOcean] == 0 {
		t.Fatal("expected an ocean border")
	}
	land := ow.Map.HexCount() - counts[BiomeOcean]
	if land == 0 {
		t.Fatal("expected some land")
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b HexCoord
		want int
	}{
		{HexCoord{}, HexCoord{}, 0},
		{HexCoord{}, HexCoord{Q: 1}, 1},
		{HexCoord{}, HexCoord{Q: 2, R: -1}, 2},
		{HexCoord{Q: -3, R: 3}, HexCoord{Q: 3, R: -3}, 6},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func smallColony() colony.Config {
	cfg := colony.DefaultConfig()
	cfg.Founders = 2
	return cfg
}

func TestSubmitAndCommit(t *testing.T) {
	ow := GenerateLargeContinent(42)
	sp := species.Default()
	start := ow.StartHex()
	before := ow.Map.Get(start).Capacity

	a, err := ow.Submit(sp, start)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if a.Status != AttemptPending {
		t.Fatalf("expected pending, got %s", a.Status)
	}
	if len(ow.Pending()) != 1 {
		t.Fatalf("expected 1 pending attempt, got %d", len(ow.Pending()))
	}

	w, err := ow.Commit(a.ID, 16, 16, smallColony())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	c := w.Census()
	if c.Cells != 2 {
		t.Fatalf("expected 2 founder cells, got %d", c.Cells)
	}

	hex := ow.Map.Get(start)
	if hex.Capacity != before-1 {
		t.Fatalf("capacity %d, want %d", hex.Capacity, before-1)
	}
	if len(hex.Settled) != 1 || hex.Settled[0] != sp.Name {
		t.Fatalf("settled = %v", hex.Settled)
	}
	got, ok := ow.Attempt(a.ID)
	if !ok || got.Status != AttemptCommitted {
		t.Fatalf("attempt after commit: %+v", got)
	}
	if len(ow.Pending()) != 0 {
		t.Fatal("committed attempt still pending")
	}

	if _, err := ow.Commit(a.ID, 16, 16, smallColony()); !errors.Is(err, ErrNotPending) {
		t.Fatalf("second commit: expected ErrNotPending, got %v", err)
	}
}

func TestCommitIsDeterministic(t *testing.T) {
	run := func() []colony.TileView {
		ow := GenerateLargeContinent(7)
		a, err := ow.Submit(species.Default(), ow.StartHex())
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		w, err := ow.Commit(a.ID, 12, 12, smallColony())
		if err != nil {
			t.Fatalf("Commit: %v", err)
		}
		return w.Snapshot()
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("snapshot sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("tile %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func findHex(t *testing.T, ow *OverWorld, match func(*Hex) bool) *Hex {
	t.Helper()
	for _, hex := range ow.Hexes() {
		if match(hex) {
			return hex
		}
	}
	t.Fatal("no matching hex")
	return nil
}

func TestSubmitRejections(t *testing.T) {
	ow := GenerateLargeContinent(42)
	sp := species.Default()

	ocean := findHex(t, ow, func(h *Hex) bool { return h.Biome == BiomeOcean })
	if _, err := ow.Submit(sp, ocean.Coord); !errors.Is(err, ErrUninhabitable) {
		t.Errorf("ocean: expected ErrUninhabitable, got %v", err)
	}

	if _, err := ow.Submit(sp, HexCoord{Q: 1000}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("off map: expected ErrOutOfBounds, got %v", err)
	}

	full := findHex(t, ow, func(h *Hex) bool { return h.Biome != BiomeOcean && h.Coord != ow.StartHex() })
	full.Capacity = 0
	if _, err := ow.Submit(sp, full.Coord); !errors.Is(err, ErrHexFull) {
		t.Errorf("full hex: expected ErrHexFull, got %v", err)
	}

	if _, err := ow.Submit(nil, ow.StartHex()); !errors.Is(err, species.ErrInvalidSpecies) {
		t.Errorf("nil species: expected ErrInvalidSpecies, got %v", err)
	}

	for _, a := range ow.Attempts() {
		if a.Status != AttemptRejected || a.Reason == "" {
			t.Errorf("attempt %s: expected rejected with reason, got %+v", a.ID, a)
		}
	}
	if len(ow.Attempts()) != 3 {
		t.Fatalf("expected 3 recorded attempts, got %d", len(ow.Attempts()))
	}
}

func TestSettledSpeciesCannotResettle(t *testing.T) {
	ow := GenerateLargeContinent(42)
	sp := species.Default()
	start := ow.StartHex()
	ow.Map.Get(start).Capacity = 5

	first, err := ow.Submit(sp, start)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := ow.Submit(sp, start); !errors.Is(err, ErrDuplicateAttempt) {
		t.Fatalf("expected ErrDuplicateAttempt, got %v", err)
	}
	if _, err := ow.Commit(first.ID, 12, 12, smallColony()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := ow.Submit(sp, start); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
	if got := ow.Map.Get(start).Capacity; got != 4 {
		t.Fatalf("rejections must not change capacity, got %d", got)
	}
}

func TestCommitRechecksConflicts(t *testing.T) {
	ow := GenerateLargeContinent(42)
	start := ow.StartHex()
	ow.Map.Get(start).Capacity = 1

	a, err := ow.Submit(species.Default(), start)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	other := species.Default()
	other.Name = "Rival"
	b, err := ow.Submit(other, start)
	if err != nil {
		t.Fatalf("Submit rival: %v", err)
	}
	if _, err := ow.Commit(b.ID, 12, 12, smallColony()); err != nil {
		t.Fatalf("Commit rival: %v", err)
	}
	if _, err := ow.Commit(a.ID, 12, 12, smallColony()); !errors.Is(err, ErrHexFull) {
		t.Fatalf("expected ErrHexFull on stale attempt, got %v", err)
	}
	got, _ := ow.Attempt(a.ID)
	if got.Status != AttemptRejected {
		t.Fatalf("stale attempt status %s", got.Status)
	}
}

func TestCommitBadInputLeavesAttemptPending(t *testing.T) {
	ow := GenerateLargeContinent(42)
	start := ow.StartHex()
	before := ow.Map.Get(start).Capacity

	a, err := ow.Submit(species.Default(), start)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	badCfg := smallColony()
	badCfg.TerrainCapacity = 0
	tests := []struct {
		name          string
		width, height int
		cfg           colony.Config
	}{
		{"empty grid", 0, 0, smallColony()},
		{"negative width", -3, 12, smallColony()},
		{"bad config", 12, 12, badCfg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ow.Commit(a.ID, tt.width, tt.height, tt.cfg); !errors.Is(err, colony.ErrInvalidParams) {
				t.Fatalf("expected ErrInvalidParams, got %v", err)
			}
			got, _ := ow.Attempt(a.ID)
			if got.Status != AttemptPending || got.Reason != "" {
				t.Fatalf("attempt became %s (%q)", got.Status, got.Reason)
			}
		})
	}

	if ow.Map.Get(start).Capacity != before {
		t.Fatal("failed commits must not use capacity")
	}
	if _, err := ow.Commit(a.ID, 12, 12, smallColony()); err != nil {
		t.Fatalf("retry with a valid grid: %v", err)
	}
	got, _ := ow.Attempt(a.ID)
	if got.Status != AttemptCommitted {
		t.Fatalf("retried attempt is %s", got.Status)
	}
}

func TestCommitUnknownAttempt(t *testing.T) {
	ow := Generate(SmallTestConfig())
	if _, err := ow.Commit(uuid.New(), 8, 8, smallColony()); !errors.Is(err, ErrUnknownAttempt) {
		t.Fatalf("expected ErrUnknownAttempt, got %v", err)
	}
}

func TestRestoreReplaysAttempts(t *testing.T) {
	ow := GenerateLargeContinent(42)
	start := ow.StartHex()
	ow.Map.Get(start).Capacity = 3
	sp := species.Default()

	a, _ := ow.Submit(sp, start)
	if _, err := ow.Commit(a.ID, 12, 12, smallColony()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	rival := species.Default()
	rival.Name = "Rival"
	pending, _ := ow.Submit(rival, start)

	reg, err := species.NewRegistry([]*species.Species{sp, rival})
	if err != nil {
		t.Fatal(err)
	}

	fresh := GenerateLargeContinent(42)
	fresh.Map.Get(start).Capacity = 3
	if err := fresh.Restore(ow.Attempts(), reg); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	hex := fresh.Map.Get(start)
	if hex.Capacity != 2 || len(hex.Settled) != 1 {
		t.Fatalf("restored hex: capacity %d settled %v", hex.Capacity, hex.Settled)
	}
	if _, err := fresh.Commit(pending.ID, 12, 12, smallColony()); err != nil {
		t.Fatalf("Commit restored pending attempt: %v", err)
	}
}

func TestTerrainParamsValid(t *testing.T) {
	ow := GenerateLargeContinent(42)
	seeds := make(map[int64]bool)
	for _, hex := range ow.Hexes() {
		p := hex.TerrainParams(ow.Seed, 10, 10)
		if err := p.Validate(); err != nil {
			t.Fatalf("hex %v: %v", hex.Coord, err)
		}
		seeds[p.Seed] = true
	}
	if len(seeds) != ow.Map.HexCount() {
		t.Fatalf("expected a distinct colony seed per hex, got %d of %d", len(seeds), ow.Map.HexCount())
	}
}
