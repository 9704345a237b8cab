package search

import "fmt"

type Skeleton int

const (
	// SkeletonAuto picks ILS, GRASP or a single descent from the tree shape.
	SkeletonAuto Skeleton = iota
	SkeletonILS
	SkeletonGRASP
	SkeletonSA
	SkeletonDescent
)

func (s Skeleton) String() string {
	switch s {
	case SkeletonAuto:
		return "auto"
	case SkeletonILS:
		return "ils"
	case SkeletonGRASP:
		return "grasp"
	case SkeletonSA:
		return "sa"
	case SkeletonDescent:
		return "descent"
	default:
		return fmt.Sprintf("skeleton(%d)", int(s))
	}
}

func ParseSkeleton(s string) (Skeleton, error) {
	switch s {
	case "auto", "":
		return SkeletonAuto, nil
	case "ils":
		return SkeletonILS, nil
	case "grasp":
		return SkeletonGRASP, nil
	case "sa":
		return SkeletonSA, nil
	case "descent":
		return SkeletonDescent, nil
	}
	return 0, fmt.Errorf("unknown skeleton %q", s)
}

type Config struct {
	Skeleton   Skeleton       `json:"skeleton" yaml:"skeleton"`
	Acceptance Acceptance     `json:"acceptance" yaml:"acceptance"`
	Strength   StrengthConfig `json:"strength" yaml:"strength"`
	Cooling    CoolingConfig  `json:"cooling" yaml:"cooling"`
	// NeighborStrength is the perturbation strength of one annealing move.
	NeighborStrength float64 `json:"neighbor_strength" yaml:"neighbor_strength"`
	// Samples is the number of moves drawn to estimate an initial temperature.
	Samples int `json:"samples" yaml:"samples"`
}

func DefaultConfig() Config {
	return Config{
		Skeleton:         SkeletonAuto,
		Acceptance:       AcceptBetter,
		Strength:         DefaultStrengthConfig(),
		Cooling:          DefaultCoolingConfig(),
		NeighborStrength: 0,
		Samples:          20,
	}
}

func (c Config) Validate() error {
	if _, err := ParseSkeleton(c.Skeleton.String()); err != nil {
		return err
	}
	if _, err := ParseAcceptance(c.Acceptance.String()); err != nil {
		return err
	}
	if err := c.Strength.Validate(); err != nil {
		return err
	}
	if c.Skeleton == SkeletonSA || c.Acceptance == AcceptProbabilistic {
		if err := c.Cooling.Validate(); err != nil {
			return err
		}
	}
	if c.NeighborStrength < 0 || c.NeighborStrength > 1 {
		return fmt.Errorf("neighbor strength must lie in [0,1] (got %g)", c.NeighborStrength)
	}
	if c.Samples < 0 {
		return fmt.Errorf("samples must be >= 0 (got %d)", c.Samples)
	}
	return nil
}

func (s Skeleton) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Skeleton) UnmarshalText(b []byte) error {
	v, err := ParseSkeleton(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
