package search

import (
	"errors"
	"fmt"
)

var (
	// ErrInfeasibleOperatorResult is fatal for a search: a repair operator
	// handed back a solution that still violates a hard constraint.
	ErrInfeasibleOperatorResult = errors.New("repair returned an infeasible solution")

	// ErrBudgetExhausted is a signal, not a failure. Context.Check wraps it and
	// the skeletons translate it into a StopReason.
	ErrBudgetExhausted = errors.New("budget exhausted")

	// ErrNoFeasibleFound is returned together with the best outcome when the
	// search ended without any feasible solution.
	ErrNoFeasibleFound = errors.New("no feasible solution found")
)

// OperatorError names the operator and the seed of the run that failed.
type OperatorError struct {
	Operator  string
	Seed      int64
	Iteration int
	Err       error
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("operator %s (seed %d, iteration %d): %v", e.Operator, e.Seed, e.Iteration, e.Err)
}

func (e *OperatorError) Unwrap() error { return e.Err }
