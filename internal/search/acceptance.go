package search

import (
	"fmt"
	"math"
	"strings"
)

// Acceptance decides whether ILS moves to a candidate. AcceptBetter takes
// candidates that are no worse than the current solution, so the walk can
// cross plateaus; the best solution only changes on strict improvement.
type Acceptance int

const (
	AcceptBetter Acceptance = iota
	AcceptAlways
	// AcceptProbabilistic is the Metropolis rule at a temperature that cools
	// independently of the strength schedule.
	AcceptProbabilistic
)

func (a Acceptance) String() string {
	switch a {
	case AcceptBetter:
		return "better"
	case AcceptAlways:
		return "always"
	case AcceptProbabilistic:
		return "probabilistic"
	default:
		return fmt.Sprintf("acceptance(%d)", int(a))
	}
}

func ParseAcceptance(s string) (Acceptance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "better", "":
		return AcceptBetter, nil
	case "always":
		return AcceptAlways, nil
	case "probabilistic", "metropolis":
		return AcceptProbabilistic, nil
	}
	return 0, fmt.Errorf("unknown acceptance %q", s)
}

// metropolis accepts any non-worsening candidate and a worsening one with
// probability exp(-delta/temp). The RNG is drawn only for worsening moves.
func metropolis(ec *Context, delta, temp float64) bool {
	if delta <= 0 {
		return true
	}
	if temp <= 0 {
		return false
	}
	return ec.Float64() < math.Exp(-delta/temp)
}

func (a Acceptance) accept(ec *Context, obj Objective, cur, cand Fitness, temp float64) bool {
	switch a {
	case AcceptAlways:
		return true
	case AcceptProbabilistic:
		if cand.Feasible != cur.Feasible {
			return cand.Feasible
		}
		return metropolis(ec, obj.Delta(cur, cand), temp)
	default:
		return obj.NotWorse(cand, cur)
	}
}

func (a Acceptance) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Acceptance) UnmarshalText(b []byte) error {
	v, err := ParseAcceptance(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
