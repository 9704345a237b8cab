package search

import (
	"fmt"
	"time"
)

// Budget bounds one search. Zero disables a limit; at least one of
// MaxIterations, MaxEvaluations or WallClock must be set.
type Budget struct {
	MaxIterations  int           `json:"max_iterations" yaml:"max_iterations"`
	MaxEvaluations int           `json:"max_evaluations" yaml:"max_evaluations"`
	WallClock      time.Duration `json:"wall_clock" yaml:"wall_clock"`
	// MaxStale stops the search after that many iterations without a new best.
	MaxStale int `json:"max_stale" yaml:"max_stale"`
}

func DefaultBudget() Budget {
	return Budget{
		MaxIterations: 1000,
		MaxStale:      250,
	}
}

func (b Budget) Validate() error {
	if b.MaxIterations < 0 {
		return fmt.Errorf("max iterations must be >= 0 (got %d)", b.MaxIterations)
	}
	if b.MaxEvaluations < 0 {
		return fmt.Errorf("max evaluations must be >= 0 (got %d)", b.MaxEvaluations)
	}
	if b.WallClock < 0 {
		return fmt.Errorf("wall clock must be >= 0 (got %s)", b.WallClock)
	}
	if b.MaxStale < 0 {
		return fmt.Errorf("max stale iterations must be >= 0 (got %d)", b.MaxStale)
	}
	if b.MaxIterations == 0 && b.MaxEvaluations == 0 && b.WallClock == 0 {
		return fmt.Errorf("budget must set max iterations, max evaluations or wall clock")
	}
	return nil
}

// StopReason records which limit ended a search.
type StopReason int

const (
	StopNone StopReason = iota
	StopIterations
	StopEvaluations
	StopWallClock
	StopStagnation
	StopTemperature
	StopCancelled
	// StopCompleted is used by single-pass descents that end on their own.
	StopCompleted
)

func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "none"
	case StopIterations:
		return "iterations"
	case StopEvaluations:
		return "evaluations"
	case StopWallClock:
		return "wall_clock"
	case StopStagnation:
		return "stagnation"
	case StopTemperature:
		return "temperature"
	case StopCancelled:
		return "cancelled"
	case StopCompleted:
		return "completed"
	default:
		return fmt.Sprintf("stop(%d)", int(r))
	}
}
