// Package species provides the genome reference carried by every living cell.
package species

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	ErrInvalidSpecies = errors.New("invalid species")
	ErrUnknownSpecies = errors.New("unknown species")
)

// ForagePolicy selects how a cell draws resources from neighboring cells.
type ForagePolicy uint8

const (
	ForageSingle ForagePolicy = iota // First neighbor that gives anything wins
	ForageAll                        // Every neighbor contributes
)

// String returns the policy name used in config files.
func (p ForagePolicy) String() string {
	switch p {
	case ForageSingle:
		return "single"
	case ForageAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseForagePolicy converts a config name into a policy.
func ParseForagePolicy(s string) (ForagePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single":
		return ForageSingle, nil
	case "all":
		return ForageAll, nil
	default:
		return ForageSingle, fmt.Errorf("%w: forage policy %q", ErrInvalidSpecies, s)
	}
}

// Species is the shared genome of a cell lineage. Cells hold a pointer to
// their species and never mutate it.
type Species struct {
	Name string `yaml:"name" json:"name"`

	// Resource capacity of each cell's inventory.
	CellCapacity float64 `yaml:"cell_capacity" json:"cell_capacity"`

	// Per-step intake limits.
	RootIntake  float64      `yaml:"root_intake" json:"root_intake"`   // water drawn from terrain
	ForageWater float64      `yaml:"forage_water" json:"forage_water"` // water requested from neighbor cells
	ForageSugar float64      `yaml:"forage_sugar" json:"forage_sugar"` // sugar requested from neighbor cells
	Policy      ForagePolicy `yaml:"-" json:"policy"`
	PolicyName  string       `yaml:"policy" json:"-"`

	// Metabolism, per simulated second.
	Photosynthesis float64 `yaml:"photosynthesis" json:"photosynthesis"` // water converted to sugar
	Upkeep         float64 `yaml:"upkeep" json:"upkeep"`                 // sugar burned

	// Reproduction and death.
	DivideAt      float64 `yaml:"divide_at" json:"divide_at"`           // sugar needed to divide
	StarveSeconds float64 `yaml:"starve_seconds" json:"starve_seconds"` // time without sugar before death
}

// Validate rejects genomes that cannot be simulated.
func (s *Species) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSpecies)
	}
	if !positive(s.CellCapacity) {
		return fmt.Errorf("%w: %s: cell capacity must be positive, got %v", ErrInvalidSpecies, s.Name, s.CellCapacity)
	}
	fields := map[string]float64{
		"root_intake":    s.RootIntake,
		"forage_water":   s.ForageWater,
		"forage_sugar":   s.ForageSugar,
		"photosynthesis": s.Photosynthesis,
		"upkeep":         s.Upkeep,
		"divide_at":      s.DivideAt,
		"starve_seconds": s.StarveSeconds,
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := fields[k]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s: %s must be non-negative, got %v", ErrInvalidSpecies, s.Name, k, v)
		}
	}
	if s.DivideAt > s.CellCapacity {
		return fmt.Errorf("%w: %s: divide_at %v exceeds capacity %v", ErrInvalidSpecies, s.Name, s.DivideAt, s.CellCapacity)
	}
	return nil
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Default returns a hardy baseline species used when no genome is configured.
func Default() *Species {
	return &Species{
		Name:           "Protocyte",
		CellCapacity:   10,
		RootIntake:     1.0,
		ForageWater:    0.5,
		ForageSugar:    0.25,
		Policy:         ForageSingle,
		PolicyName:     "single",
		Photosynthesis: 0.4,
		Upkeep:         0.1,
		DivideAt:       6,
		StarveSeconds:  30,
	}
}

// Registry holds the known species by name.
type Registry struct {
	byName map[string]*Species
}

// NewRegistry validates and indexes a set of species.
func NewRegistry(list []*Species) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Species, len(list))}
	for _, s := range list {
		if err := r.Add(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add validates and registers a species. Names are case-insensitive.
func (r *Registry) Add(s *Species) error {
	if s.PolicyName != "" {
		p, err := ParseForagePolicy(s.PolicyName)
		if err != nil {
			return err
		}
		s.Policy = p
	}
	if err := s.Validate(); err != nil {
		return err
	}
	key := strings.ToLower(s.Name)
	if _, ok := r.byName[key]; ok {
		return fmt.Errorf("%w: duplicate name %q", ErrInvalidSpecies, s.Name)
	}
	r.byName[key] = s
	return nil
}

// Lookup finds a species by name. Unknown names report the closest match.
func (r *Registry) Lookup(name string) (*Species, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if s, ok := r.byName[key]; ok {
		return s, nil
	}
	if best := r.closest(key); best != "" {
		return nil, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownSpecies, name, r.byName[best].Name)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
}

// closest returns the registered key nearest to name by edit distance,
// or "" if nothing is within half the name's length.
func (r *Registry) closest(name string) string {
	best := ""
	bestDist := len(name)/2 + 1
	for _, key := range r.Names() {
		key = strings.ToLower(key)
		d := levenshtein.ComputeDistance(name, key)
		if d < bestDist {
			best, bestDist = key, d
		}
	}
	return best
}

// Names returns species names sorted alphabetically.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for _, s := range r.byName {
		out = append(out, s.Name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered species.
func (r *Registry) Len() int {
	return len(r.byName)
}
