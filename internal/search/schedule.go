package search

import (
	"fmt"
	"math"
	"strings"
)

// Schedule shapes the perturbation strength over a search.
type Schedule int

const (
	ScheduleConstant Schedule = iota
	// ScheduleLinear grows by Step per iteration without improvement.
	ScheduleLinear
	// ScheduleExponential multiplies by Growth per iteration without improvement.
	ScheduleExponential
	// ScheduleCyclical sweeps from the base strength to Max every Period iterations.
	ScheduleCyclical
	// ScheduleAdaptive tracks the improvement rate over the last Window iterations.
	ScheduleAdaptive
)

func (s Schedule) String() string {
	switch s {
	case ScheduleConstant:
		return "constant"
	case ScheduleLinear:
		return "linear"
	case ScheduleExponential:
		return "exponential"
	case ScheduleCyclical:
		return "cyclical"
	case ScheduleAdaptive:
		return "adaptive"
	default:
		return fmt.Sprintf("schedule(%d)", int(s))
	}
}

func ParseSchedule(s string) (Schedule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "constant", "":
		return ScheduleConstant, nil
	case "linear":
		return ScheduleLinear, nil
	case "exponential":
		return ScheduleExponential, nil
	case "cyclical", "cyclic":
		return ScheduleCyclical, nil
	case "adaptive":
		return ScheduleAdaptive, nil
	}
	return 0, fmt.Errorf("unknown strength schedule %q", s)
}

type StrengthConfig struct {
	Schedule Schedule `json:"schedule" yaml:"schedule"`
	Max      float64  `json:"max" yaml:"max"`
	Step     float64  `json:"step" yaml:"step"`
	Growth   float64  `json:"growth" yaml:"growth"`
	Period   int      `json:"period" yaml:"period"`
	Window   int      `json:"window" yaml:"window"`
	// TargetRate is the improvement rate the adaptive schedule aims for.
	TargetRate float64 `json:"target_rate" yaml:"target_rate"`
}

func DefaultStrengthConfig() StrengthConfig {
	return StrengthConfig{
		Schedule:   ScheduleConstant,
		Max:        0.8,
		Step:       0.01,
		Growth:     1.05,
		Period:     50,
		Window:     20,
		TargetRate: 0.2,
	}
}

func (c StrengthConfig) Validate() error {
	if c.Max < 0 || c.Max > 1 {
		return fmt.Errorf("strength max must lie in [0,1] (got %g)", c.Max)
	}
	switch c.Schedule {
	case ScheduleConstant:
	case ScheduleLinear:
		if c.Step < 0 {
			return fmt.Errorf("linear strength step must be >= 0 (got %g)", c.Step)
		}
	case ScheduleExponential:
		if c.Growth < 1 {
			return fmt.Errorf("exponential strength growth must be >= 1 (got %g)", c.Growth)
		}
	case ScheduleCyclical:
		if c.Period <= 0 {
			return fmt.Errorf("cyclical strength period must be > 0 (got %d)", c.Period)
		}
	case ScheduleAdaptive:
		if c.Window <= 0 {
			return fmt.Errorf("adaptive strength window must be > 0 (got %d)", c.Window)
		}
		if c.TargetRate <= 0 || c.TargetRate >= 1 {
			return fmt.Errorf("adaptive target rate must lie in (0,1) (got %g)", c.TargetRate)
		}
	default:
		return fmt.Errorf("unknown strength schedule %d", int(c.Schedule))
	}
	return nil
}

// window is a ring of booleans with a running count of true values.
type window struct {
	buf  []bool
	i    int
	n    int
	hits int
}

func newWindow(size int) *window {
	if size < 1 {
		size = 1
	}
	return &window{buf: make([]bool, size)}
}

func (w *window) push(v bool) {
	if w.n == len(w.buf) {
		if w.buf[w.i] {
			w.hits--
		}
	} else {
		w.n++
	}
	w.buf[w.i] = v
	if v {
		w.hits++
	}
	w.i = (w.i + 1) % len(w.buf)
}

func (w *window) full() bool { return w.n == len(w.buf) }

func (w *window) rate() float64 {
	if w.n == 0 {
		return 0
	}
	return float64(w.hits) / float64(w.n)
}

// strength is the per-search state of a schedule. Adaptive state never leaks
// between searches because each Solve builds its own.
type strength struct {
	cfg    StrengthConfig
	win    *window
	factor float64
}

func newStrength(cfg StrengthConfig) *strength {
	return &strength{cfg: cfg, win: newWindow(cfg.Window), factor: 1}
}

// next returns the strength for a perturbation whose tree strength is base.
func (s *strength) next(iter, stale int, base float64) float64 {
	var v float64
	switch s.cfg.Schedule {
	case ScheduleLinear:
		v = base + s.cfg.Step*float64(stale)
	case ScheduleExponential:
		v = base * math.Pow(s.cfg.Growth, float64(stale))
	case ScheduleCyclical:
		frac := float64(iter%s.cfg.Period) / float64(s.cfg.Period)
		v = base + (s.cfg.Max-base)*frac
	case ScheduleAdaptive:
		v = base * s.factor
	default:
		v = base
	}
	return clampStrength(v, base, s.cfg.Max)
}

func (s *strength) observe(improved bool) {
	if s.cfg.Schedule != ScheduleAdaptive {
		return
	}
	s.win.push(improved)
	if !s.win.full() {
		return
	}
	// Too few improvements: perturb harder to escape; many: intensify.
	if s.win.rate() < s.cfg.TargetRate {
		s.factor *= 1.1
	} else {
		s.factor *= 0.9
	}
	s.factor = math.Min(math.Max(s.factor, 0.1), 10)
}

func clampStrength(v, base, max float64) float64 {
	hi := math.Max(max, base)
	if v > hi {
		v = hi
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

func (s Schedule) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Schedule) UnmarshalText(b []byte) error {
	v, err := ParseSchedule(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
