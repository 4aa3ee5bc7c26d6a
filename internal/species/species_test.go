package species

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default species invalid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Species)
	}{
		{"empty name", func(s *Species) { s.Name = " " }},
		{"zero capacity", func(s *Species) { s.CellCapacity = 0 }},
		{"negative upkeep", func(s *Species) { s.Upkeep = -1 }},
		{"divide above capacity", func(s *Species) { s.DivideAt = s.CellCapacity + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidSpecies) {
				t.Fatalf("expected ErrInvalidSpecies, got %v", err)
			}
		})
	}
}

func TestParseForagePolicy(t *testing.T) {
	if p, err := ParseForagePolicy("ALL"); err != nil || p != ForageAll {
		t.Fatalf("ParseForagePolicy(ALL) = %v, %v", p, err)
	}
	if p, err := ParseForagePolicy(""); err != nil || p != ForageSingle {
		t.Fatalf("empty policy should default to single, got %v, %v", p, err)
	}
	if _, err := ParseForagePolicy("greedy"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestRegistryLookup(t *testing.T) {
	moss := Default()
	moss.Name = "Moss"
	moss.PolicyName = "all"
	reg, err := NewRegistry([]*Species{Default(), moss})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 species, got %d", reg.Len())
	}

	s, err := reg.Lookup("moss")
	if err != nil {
		t.Fatalf("Lookup(moss): %v", err)
	}
	if s.Policy != ForageAll {
		t.Fatalf("expected policy parsed from name, got %v", s.Policy)
	}

	_, err = reg.Lookup("Protocite")
	if !errors.Is(err, ErrUnknownSpecies) {
		t.Fatalf("expected ErrUnknownSpecies, got %v", err)
	}
	if !strings.Contains(err.Error(), "Protocyte") {
		t.Fatalf("expected suggestion in error, got %q", err)
	}

	_, err = reg.Lookup("zzzzzzzzzzzz")
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("expected plain unknown error, got %v", err)
	}
}

func TestRegistryDuplicate(t *testing.T) {
	_, err := NewRegistry([]*Species{Default(), Default()})
	if !errors.Is(err, ErrInvalidSpecies) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}
