package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dyluth/sweep/pkg/anneal"
	"github.com/dyluth/sweep/pkg/cost"
	"github.com/dyluth/sweep/pkg/layout"
	"gopkg.in/yaml.v3"
)

// Default file names searched by the CLI, in order.
var DefaultFiles = []string{"sweep.yml", "sweep.yaml", "sweep.toml"}

// Schedule modes.
const (
	ModeFixed  = "fixed"
	ModeStable = "stable"
)

// Store backends.
const (
	BackendNone   = "none"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// SweepConfig represents the top-level sweep.yml configuration
type SweepConfig struct {
	Version  string          `yaml:"version" toml:"version"`
	Model    string          `yaml:"model" toml:"model"`   // heuristic, measured or simple (default: heuristic)
	Corpus   string          `yaml:"corpus" toml:"corpus"` // Required: directory or file of training text
	Layout   string          `yaml:"layout" toml:"layout"` // Required: starting layout file
	Output   string          `yaml:"output,omitempty" toml:"output,omitempty"`
	Schedule *ScheduleConfig `yaml:"schedule,omitempty" toml:"schedule,omitempty"`
	Trials   *TrialsConfig   `yaml:"trials,omitempty" toml:"trials,omitempty"`
	Pins     *PinsConfig     `yaml:"pins,omitempty" toml:"pins,omitempty"`
	Store    *StoreConfig    `yaml:"store,omitempty" toml:"store,omitempty"`
}

// ScheduleConfig selects the annealing temperature schedule
type ScheduleConfig struct {
	Mode         string  `yaml:"mode" toml:"mode"`                   // "fixed" or "stable"
	Iterations   int     `yaml:"iterations" toml:"iterations"`       // fixed: total steps
	K            float64 `yaml:"k" toml:"k"`                         // fixed: decay rate over the whole run
	HalfLife     float64 `yaml:"half_life" toml:"half_life"`         // stable: steps for the temperature to halve
	MaxUnchanged int     `yaml:"max_unchanged" toml:"max_unchanged"` // stable: consecutive idle steps before stopping
	TempScale    float64 `yaml:"temp_scale" toml:"temp_scale"`       // initial temperature as a fraction of initial energy
	Log          string  `yaml:"log,omitempty" toml:"log,omitempty"` // stable: CSV file for per-step energy
}

// TrialsConfig controls the parallel independent runs
type TrialsConfig struct {
	Count    int    `yaml:"count" toml:"count"`
	Seed     int64  `yaml:"seed,omitempty" toml:"seed,omitempty"`         // 0 = seed from the clock
	Deadline string `yaml:"deadline,omitempty" toml:"deadline,omitempty"` // Go duration; empty = wait for all
	Workers  int    `yaml:"workers,omitempty" toml:"workers,omitempty"`   // 0 = one per CPU
}

// PinsConfig lists placement constraints
type PinsConfig struct {
	Positions [][2]int `yaml:"positions" toml:"positions"` // [layer, pos] pairs that never move
	Alpha     string   `yaml:"alpha" toml:"alpha"`         // "position" or "layer"
}

// StoreConfig selects where run records are kept
type StoreConfig struct {
	Backend   string `yaml:"backend" toml:"backend"` // none, redis or sqlite
	RedisAddr string `yaml:"redis_addr,omitempty" toml:"redis_addr,omitempty"`
	Namespace string `yaml:"namespace,omitempty" toml:"namespace,omitempty"`
	Path      string `yaml:"path,omitempty" toml:"path,omitempty"`
}

// Default returns a configuration with every optional section filled in.
func Default() *SweepConfig {
	c := &SweepConfig{Version: "1.0", Corpus: "corpus", Layout: "layout.json"}
	c.applyDefaults()
	return c
}

// applyDefaults fills in sections that are missing entirely and string
// fields left empty. Numbers inside a present section are kept as written so
// that Validate sees an explicit zero.
func (c *SweepConfig) applyDefaults() {
	if c.Model == "" {
		c.Model = "heuristic"
	}
	if c.Output == "" {
		c.Output = "best.json"
	}

	if c.Schedule == nil {
		c.Schedule = &ScheduleConfig{
			Iterations:   100_000,
			K:            10,
			HalfLife:     10_000,
			MaxUnchanged: 5_000,
			TempScale:    0.1,
		}
	}
	if c.Schedule.Mode == "" {
		c.Schedule.Mode = ModeFixed
	}

	if c.Trials == nil {
		c.Trials = &TrialsConfig{Count: 14}
	}

	if c.Pins == nil {
		c.Pins = &PinsConfig{Positions: [][2]int{{0, 31}}}
	}
	if c.Pins.Alpha == "" {
		c.Pins.Alpha = string(anneal.AlphaPosition)
	}

	if c.Store == nil {
		c.Store = &StoreConfig{}
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendNone
	}
	if c.Store.RedisAddr == "" {
		c.Store.RedisAddr = "localhost:6379"
	}
	if c.Store.Namespace == "" {
		c.Store.Namespace = "default"
	}
	if c.Store.Path == "" {
		c.Store.Path = "sweep.db"
	}
}

// Validate performs strict validation on the configuration and fills in
// defaults for any section left out
func (c *SweepConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}
	if c.Corpus == "" {
		return fmt.Errorf("corpus is required")
	}
	if c.Layout == "" {
		return fmt.Errorf("layout is required")
	}

	c.applyDefaults()

	if _, err := cost.New(c.Model); err != nil {
		return err
	}

	s := c.Schedule
	switch s.Mode {
	case ModeFixed:
		if s.Iterations < 1 {
			return fmt.Errorf("schedule.iterations must be >= 1, got %d", s.Iterations)
		}
		if s.Log != "" {
			return fmt.Errorf("schedule.log is only supported in 'stable' mode")
		}
	case ModeStable:
		if s.HalfLife <= 0 {
			return fmt.Errorf("schedule.half_life must be > 0, got %g", s.HalfLife)
		}
		if s.MaxUnchanged < 1 {
			return fmt.Errorf("schedule.max_unchanged must be >= 1, got %d", s.MaxUnchanged)
		}
	default:
		return fmt.Errorf("invalid schedule.mode: %s (must be 'fixed' or 'stable')", s.Mode)
	}
	if s.K < 0 {
		return fmt.Errorf("schedule.k must be >= 0, got %g", s.K)
	}
	if s.TempScale < 0 {
		return fmt.Errorf("schedule.temp_scale must be >= 0, got %g", s.TempScale)
	}

	if c.Trials.Count < 1 {
		return fmt.Errorf("trials.count must be >= 1, got %d", c.Trials.Count)
	}
	if c.Trials.Workers < 0 {
		return fmt.Errorf("trials.workers must be >= 0, got %d", c.Trials.Workers)
	}
	if c.Trials.Deadline != "" {
		d, err := time.ParseDuration(c.Trials.Deadline)
		if err != nil {
			return fmt.Errorf("invalid trials.deadline: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("trials.deadline must be positive, got %s", c.Trials.Deadline)
		}
	}

	if !anneal.AlphaPolicy(c.Pins.Alpha).Valid() {
		return fmt.Errorf("invalid pins.alpha: %s (must be 'position' or 'layer')", c.Pins.Alpha)
	}
	for _, p := range c.Pins.Positions {
		if p[0] < 0 || p[1] < 0 || p[1] >= layout.NumKeys {
			return fmt.Errorf("invalid pin [%d, %d]: position must be in 0..%d", p[0], p[1], layout.NumKeys-1)
		}
	}

	switch c.Store.Backend {
	case BackendNone, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("invalid store.backend: %s (must be 'none', 'redis' or 'sqlite')", c.Store.Backend)
	}

	return nil
}

// Deadline returns the trial deadline, or zero when trials run to completion.
func (c *SweepConfig) Deadline() time.Duration {
	if c.Trials == nil || c.Trials.Deadline == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.Trials.Deadline)
	return d
}

// AnnealPins converts the pin section for the optimiser.
func (c *SweepConfig) AnnealPins() anneal.Pins {
	if c.Pins == nil {
		return anneal.DefaultPins()
	}
	pins := anneal.Pins{
		Positions: make([]layout.Slot, 0, len(c.Pins.Positions)),
		Alpha:     anneal.AlphaPolicy(c.Pins.Alpha),
	}
	for _, p := range c.Pins.Positions {
		pins.Positions = append(pins.Positions, layout.Slot{Layer: p[0], Pos: p[1]})
	}
	return pins
}

// Load reads and validates a sweep.yml or sweep.toml file; the format is
// chosen by extension
func Load(path string) (*SweepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Decode over the defaults so a key the file leaves out keeps its default
	// while a zero the file spells out reaches Validate.
	var config SweepConfig
	config.applyDefaults()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.resolvePaths(filepath.Dir(path))
	return &config, nil
}

// resolvePaths makes relative file references relative to the config file.
func (c *SweepConfig) resolvePaths(dir string) {
	for _, p := range []*string{&c.Corpus, &c.Layout, &c.Output, &c.Schedule.Log, &c.Store.Path} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Find returns the first default config file present in dir.
func Find(dir string) (string, error) {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no config file found in %s (looked for %s)", dir, strings.Join(DefaultFiles, ", "))
}
