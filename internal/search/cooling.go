package search

import (
	"fmt"
	"math"
	"strings"
)

type Cooling int

const (
	CoolGeometric Cooling = iota
	CoolLinear
	CoolExponential
	CoolLogarithmic
	// CoolAdaptive is geometric with α nudged to keep the acceptance rate
	// near TargetAcceptance.
	CoolAdaptive
)

func (c Cooling) String() string {
	switch c {
	case CoolGeometric:
		return "geometric"
	case CoolLinear:
		return "linear"
	case CoolExponential:
		return "exponential"
	case CoolLogarithmic:
		return "logarithmic"
	case CoolAdaptive:
		return "adaptive"
	default:
		return fmt.Sprintf("cooling(%d)", int(c))
	}
}

func ParseCooling(s string) (Cooling, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "geometric", "":
		return CoolGeometric, nil
	case "linear":
		return CoolLinear, nil
	case "exponential":
		return CoolExponential, nil
	case "logarithmic", "log":
		return CoolLogarithmic, nil
	case "adaptive":
		return CoolAdaptive, nil
	}
	return 0, fmt.Errorf("unknown cooling schedule %q", s)
}

type CoolingConfig struct {
	Schedule Cooling `json:"schedule" yaml:"schedule"`
	// InitialTemp <= 0 asks the annealer to estimate it from sampled moves.
	InitialTemp float64 `json:"initial_temp" yaml:"initial_temp"`
	FinalTemp   float64 `json:"final_temp" yaml:"final_temp"`
	Alpha       float64 `json:"alpha" yaml:"alpha"`
	// Levels is the horizon of the linear and exponential schedules.
	Levels int `json:"levels" yaml:"levels"`
	// Steps is the number of iterations spent at each temperature.
	Steps            int     `json:"steps" yaml:"steps"`
	TargetAcceptance float64 `json:"target_acceptance" yaml:"target_acceptance"`
	Window           int     `json:"window" yaml:"window"`
}

func DefaultCoolingConfig() CoolingConfig {
	return CoolingConfig{
		Schedule:         CoolGeometric,
		InitialTemp:      0,
		FinalTemp:        1e-3,
		Alpha:            0.95,
		Levels:           200,
		Steps:            10,
		TargetAcceptance: 0.3,
		Window:           50,
	}
}

func (c CoolingConfig) Validate() error {
	if c.FinalTemp <= 0 {
		return fmt.Errorf("final temperature must be > 0 (got %g)", c.FinalTemp)
	}
	if c.InitialTemp > 0 && c.FinalTemp >= c.InitialTemp {
		return fmt.Errorf("final temperature must be < initial (got %g >= %g)", c.FinalTemp, c.InitialTemp)
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("alpha must lie in (0,1) (got %g)", c.Alpha)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps per temperature must be > 0 (got %d)", c.Steps)
	}
	switch c.Schedule {
	case CoolGeometric, CoolLogarithmic:
	case CoolLinear, CoolExponential:
		if c.Levels <= 0 {
			return fmt.Errorf("%s cooling needs levels > 0 (got %d)", c.Schedule, c.Levels)
		}
	case CoolAdaptive:
		if c.Window <= 0 {
			return fmt.Errorf("adaptive cooling window must be > 0 (got %d)", c.Window)
		}
		if c.TargetAcceptance <= 0 || c.TargetAcceptance >= 1 {
			return fmt.Errorf("target acceptance must lie in (0,1) (got %g)", c.TargetAcceptance)
		}
	default:
		return fmt.Errorf("unknown cooling schedule %d", int(c.Schedule))
	}
	return nil
}

// cooler holds the per-search temperature state.
type cooler struct {
	cfg   CoolingConfig
	t0    float64
	level int
	alpha float64
	win   *window
}

func newCooler(cfg CoolingConfig, t0 float64) *cooler {
	return &cooler{cfg: cfg, t0: t0, alpha: cfg.Alpha, win: newWindow(cfg.Window)}
}

func (c *cooler) observe(accepted bool) { c.win.push(accepted) }

// next moves to the following temperature level.
func (c *cooler) next(t float64) float64 {
	c.level++
	k := float64(c.level)
	tf := c.cfg.FinalTemp
	switch c.cfg.Schedule {
	case CoolLinear:
		t = c.t0 - k*(c.t0-tf)/float64(c.cfg.Levels)
	case CoolExponential:
		beta := math.Log(c.t0/tf) / float64(c.cfg.Levels)
		t = c.t0 * math.Exp(-beta*k)
	case CoolLogarithmic:
		t = c.t0 / math.Log(math.E+k)
	case CoolAdaptive:
		if c.win.full() {
			if c.win.rate() > c.cfg.TargetAcceptance {
				c.alpha = math.Max(0.5, c.alpha-0.01)
			} else {
				c.alpha = math.Min(0.999, c.alpha+0.01)
			}
		}
		t *= c.alpha
	default:
		t *= c.alpha
	}
	if t < 0 {
		t = 0
	}
	return t
}

func (c Cooling) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Cooling) UnmarshalText(b []byte) error {
	v, err := ParseCooling(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
