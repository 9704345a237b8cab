// Package config loads experiment settings from YAML (or JSON) files with
// GAA_* environment overrides on top of a quick or full preset.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/opt"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	ModeQuick  = "quick"
	ModeFull   = "full"
	ModeCustom = "custom"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("family", validateFamily)
}

func validateFamily(fl validator.FieldLevel) bool {
	_, err := problem.ParseDomain(fl.Field().String())
	return err == nil
}

// Algorithms controls how the algorithm pool is assembled.
type Algorithms struct {
	Count    int   `json:"count" yaml:"count" validate:"gte=1,lte=1000"`
	Seed     int64 `json:"seed" yaml:"seed"`
	MinDepth int   `json:"min_depth" yaml:"min_depth" validate:"gte=1"`
	MaxDepth int   `json:"max_depth" yaml:"max_depth" validate:"gtefield=MinDepth"`
	Retries  int   `json:"retries" yaml:"retries" validate:"gte=0"`
	// PoolFile, when set, names an algorithms.yaml written by assemble --sync;
	// its algorithms are used instead of assembling new ones.
	PoolFile string `json:"pool_file" yaml:"pool_file"`
}

// Experiment is one benchmark campaign.
type Experiment struct {
	Mode     string   `json:"mode" yaml:"mode" validate:"required,oneof=quick full custom"`
	Families []string `json:"families" yaml:"families" validate:"required,min=1,dive,family"`
	// Instances maps a family to glob patterns of instance files.
	Instances map[string][]string `json:"instances" yaml:"instances" validate:"dive,keys,family,endkeys,min=1"`
	// MaxInstances keeps the first n files per family after sorting; 0 keeps all.
	MaxInstances int           `json:"max_instances" yaml:"max_instances" validate:"gte=0"`
	Algorithms   Algorithms    `json:"algorithms" yaml:"algorithms"`
	Repetitions  int           `json:"repetitions" yaml:"repetitions" validate:"gte=1"`
	BaseSeed     int64         `json:"base_seed" yaml:"base_seed"`
	Workers      int           `json:"workers" yaml:"workers" validate:"gte=0"`
	RunTimeout   time.Duration `json:"run_timeout" yaml:"run_timeout" validate:"gte=0"`
	Settings     opt.Settings  `json:"settings" yaml:"settings"`
	OutputDir    string        `json:"output_dir" yaml:"output_dir" validate:"required"`
	LogLevel     string        `json:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
}

func defaultInstances() map[string][]string {
	return map[string][]string{
		"GCP":   {"datasets/GCP/*.col"},
		"KBP":   {"datasets/KBP/*.kp", "datasets/KBP/*.csv"},
		"VRPTW": {"datasets/VRPTW/*.txt"},
	}
}

// QuickPreset is a smoke run: few algorithms, two instances per family and a
// short budget.
func QuickPreset() Experiment {
	s := opt.DefaultSettings()
	s.Budget = search.Budget{MaxIterations: 200, MaxStale: 50}
	return Experiment{
		Mode:         ModeQuick,
		Families:     []string{"GCP", "KBP", "VRPTW"},
		Instances:    defaultInstances(),
		MaxInstances: 2,
		Algorithms:   Algorithms{Count: 3, Seed: 42, MinDepth: 1, MaxDepth: 2, Retries: 10},
		Repetitions:  1,
		BaseSeed:     1000,
		Settings:     s,
		OutputDir:    "output",
		LogLevel:     "info",
	}
}

// FullPreset runs every instance with the full pool and repetitions.
func FullPreset() Experiment {
	s := opt.DefaultSettings()
	s.Budget = search.Budget{MaxIterations: 2000, MaxStale: 500, WallClock: 2 * time.Minute}
	return Experiment{
		Mode:        ModeFull,
		Families:    []string{"GCP", "KBP", "VRPTW"},
		Instances:   defaultInstances(),
		Algorithms:  Algorithms{Count: 10, Seed: 42, MinDepth: 1, MaxDepth: 3, Retries: 10},
		Repetitions: 10,
		BaseSeed:    1000,
		Settings:    s,
		OutputDir:   "output",
		LogLevel:    "info",
	}
}

// Preset returns the preset named by mode; "custom" starts from the quick one.
func Preset(mode string) (Experiment, error) {
	switch strings.ToLower(mode) {
	case ModeQuick, "":
		return QuickPreset(), nil
	case ModeFull:
		return FullPreset(), nil
	case ModeCustom:
		e := QuickPreset()
		e.Mode = ModeCustom
		return e, nil
	}
	return Experiment{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, mode)
}

// Domains parses Families in their configured order.
func (e Experiment) Domains() ([]problem.Domain, error) {
	out := make([]problem.Domain, 0, len(e.Families))
	for _, f := range e.Families {
		d, err := problem.ParseDomain(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// Patterns are the instance globs of family d.
func (e Experiment) Patterns(d problem.Domain) []string {
	for k, v := range e.Instances {
		if got, err := problem.ParseDomain(k); err == nil && got == d {
			return v
		}
	}
	return nil
}

// PoolSpec is the assembly request for the configured algorithms.
func (e Experiment) PoolSpec() opt.PoolSpec {
	a := e.Algorithms
	return opt.PoolSpec{Count: a.Count, BaseSeed: a.Seed, MinDepth: a.MinDepth, MaxDepth: a.MaxDepth, Retries: a.Retries}
}

// Validate checks the struct tags, then the search settings, then rules that
// span fields.
func (e Experiment) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := e.Settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	seen := make(map[problem.Domain]bool, len(e.Families))
	for _, f := range e.Families {
		d, _ := problem.ParseDomain(f)
		if seen[d] {
			return fmt.Errorf("%w: family %s listed twice", ErrInvalidConfig, d)
		}
		seen[d] = true
		if len(e.Patterns(d)) == 0 {
			return fmt.Errorf("%w: family %s has no instance patterns", ErrInvalidConfig, d)
		}
	}
	return nil
}

// Load starts from base, applies the file at path (if it exists) and then
// the environment, and validates the result.
func Load(path string, base Experiment) (Experiment, error) {
	cfg := base
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := loadFromEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Experiment) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

// Env lists the variables Load reads, for help output.
func Env() []string {
	out := make([]string, 0, len(envSetters))
	for k := range envSetters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var envSetters = map[string]func(*Experiment, string) error{
	"GAA_MODE":       func(c *Experiment, v string) error { c.Mode = v; return nil },
	"GAA_OUTPUT_DIR": func(c *Experiment, v string) error { c.OutputDir = v; return nil },
	"GAA_LOG_LEVEL":  func(c *Experiment, v string) error { c.LogLevel = v; return nil },
	"GAA_FAMILIES": func(c *Experiment, v string) error {
		c.Families = splitList(v)
		return nil
	},
	"GAA_REPETITIONS":    intSetter(func(c *Experiment) *int { return &c.Repetitions }),
	"GAA_WORKERS":        intSetter(func(c *Experiment) *int { return &c.Workers }),
	"GAA_MAX_INSTANCES":  intSetter(func(c *Experiment) *int { return &c.MaxInstances }),
	"GAA_ALGORITHMS":     intSetter(func(c *Experiment) *int { return &c.Algorithms.Count }),
	"GAA_MAX_ITERATIONS": intSetter(func(c *Experiment) *int { return &c.Settings.Budget.MaxIterations }),
	"GAA_MAX_STALE":      intSetter(func(c *Experiment) *int { return &c.Settings.Budget.MaxStale }),
	"GAA_BASE_SEED": func(c *Experiment, v string) error {
		i, err := strconv.ParseInt(v, 10, 64)
		c.BaseSeed = i
		return err
	},
	"GAA_ALGORITHM_SEED": func(c *Experiment, v string) error {
		i, err := strconv.ParseInt(v, 10, 64)
		c.Algorithms.Seed = i
		return err
	},
	"GAA_WALL_CLOCK": func(c *Experiment, v string) error {
		d, err := time.ParseDuration(v)
		c.Settings.Budget.WallClock = d
		return err
	},
	"GAA_RUN_TIMEOUT": func(c *Experiment, v string) error {
		d, err := time.ParseDuration(v)
		c.RunTimeout = d
		return err
	},
	"GAA_SKELETON": func(c *Experiment, v string) error {
		return c.Settings.Search.Skeleton.UnmarshalText([]byte(v))
	},
}

func intSetter(field func(*Experiment) *int) func(*Experiment, string) error {
	return func(c *Experiment, v string) error {
		i, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = i
		return nil
	}
}

// loadFromEnv applies every set GAA_* variable. Unlike a missing file, a
// value that does not parse is an error.
func loadFromEnv(cfg *Experiment) error {
	for _, name := range Env() {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		next := *cfg
		if err := envSetters[name](&next, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, name, v, err)
		}
		*cfg = next
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
