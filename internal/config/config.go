// Package config loads simulation settings from YAML, layered over embedded defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/cell-colony/internal/colony"
	"github.com/talgya/cell-colony/internal/species"
	"github.com/talgya/cell-colony/internal/world"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all tunable parameters.
type Config struct {
	Sim       SimConfig          `yaml:"sim"`
	OverWorld world.GenConfig    `yaml:"overworld"`
	Colony    ColonyConfig       `yaml:"colony"`
	Species   []*species.Species `yaml:"species"`
	Storage   StorageConfig      `yaml:"storage"`
	Telemetry TelemetryConfig    `yaml:"telemetry"`
}

type SimConfig struct {
	DT         float64 `yaml:"dt"`          // Simulated seconds per tick
	Ticks      int     `yaml:"ticks"`       // Headless run length (0 = until interrupted)
	Speed      float64 `yaml:"speed"`       // Wall-clock multiplier (0 = headless)
	IntervalMS int     `yaml:"interval_ms"` // Wall-clock tick interval at speed 1
	LogLevel   string  `yaml:"log_level"`   // debug, info, warn, error
	Settle     string  `yaml:"settle"`      // Species settled on the start hex
}

type ColonyConfig struct {
	Width         int `yaml:"width"`
	Height        int `yaml:"height"`
	colony.Config `yaml:",inline"`
}

type StorageConfig struct {
	Path string `yaml:"path"` // SQLite file; empty disables saving
}

type TelemetryConfig struct {
	OutputDir string `yaml:"output_dir"` // CSV output directory; empty disables
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults,
// and validates the result. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file; a species list replaces the default list.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configuration the simulation cannot run with.
func (c *Config) Validate() error {
	if err := c.Sim.Validate(); err != nil {
		return err
	}
	if err := validateOverWorld(c.OverWorld); err != nil {
		return err
	}
	if err := c.Colony.Validate(); err != nil {
		return err
	}
	reg, err := c.Registry()
	if err != nil {
		return fmt.Errorf("%w: species: %w", ErrInvalidConfig, err)
	}
	if c.Sim.Settle != "" {
		if _, err := reg.Lookup(c.Sim.Settle); err != nil {
			return fmt.Errorf("%w: sim.settle: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

func (s SimConfig) Validate() error {
	if s.DT <= 0 {
		return fmt.Errorf("%w: sim.dt must be positive, got %v", ErrInvalidConfig, s.DT)
	}
	if s.Ticks < 0 {
		return fmt.Errorf("%w: sim.ticks must be non-negative, got %d", ErrInvalidConfig, s.Ticks)
	}
	if s.Speed < 0 {
		return fmt.Errorf("%w: sim.speed must be non-negative, got %v", ErrInvalidConfig, s.Speed)
	}
	if s.IntervalMS <= 0 {
		return fmt.Errorf("%w: sim.interval_ms must be positive, got %d", ErrInvalidConfig, s.IntervalMS)
	}
	if _, err := s.Level(); err != nil {
		return fmt.Errorf("%w: sim.log_level: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Level parses the configured log level.
func (s SimConfig) Level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s.LogLevel))
	return l, err
}

// Interval returns the wall-clock tick interval.
func (s SimConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

func validateOverWorld(g world.GenConfig) error {
	if g.Radius < 1 {
		return fmt.Errorf("%w: overworld.radius must be at least 1, got %d", ErrInvalidConfig, g.Radius)
	}
	if g.SeaLevel < 0 || g.SeaLevel > 1 || g.MountainLvl < 0 || g.MountainLvl > 1 {
		return fmt.Errorf("%w: overworld levels must be in [0,1]", ErrInvalidConfig)
	}
	if g.SeaLevel >= g.MountainLvl {
		return fmt.Errorf("%w: overworld.sea_level %v must be below mountain_lvl %v", ErrInvalidConfig, g.SeaLevel, g.MountainLvl)
	}
	return nil
}

func (c ColonyConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: colony grid %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if err := c.Config.Validate(); err != nil {
		return fmt.Errorf("%w: colony: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Registry builds a species registry from the configured list.
func (c *Config) Registry() (*species.Registry, error) {
	if len(c.Species) == 0 {
		return nil, errors.New("no species configured")
	}
	return species.NewRegistry(c.Species)
}

// WriteYAML saves the configuration to a file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
