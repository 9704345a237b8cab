package search

import "math"

type Sense int

const (
	Minimize Sense = iota
	Maximize
)

// Fitness is the score of a solution. Single-objective domains use Primary
// only; VRPTW puts the vehicle count in Primary and the distance in Secondary.
type Fitness struct {
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
	Feasible  bool    `json:"feasible"`
}

// Objective compares fitness values. With Lexicographic set, (Primary,
// Secondary) is compared as a tuple; otherwise Value is compared.
type Objective struct {
	Sense         Sense
	Lexicographic bool
	// Weight folds Primary into a scalar as Primary*Weight + Secondary. Zero
	// means the scalar is Primary alone.
	Weight float64
}

const relEps = 1e-9

// Value is the scalar form of f, in the objective's own sense.
func (o Objective) Value(f Fitness) float64 {
	if o.Weight > 0 {
		return f.Primary*o.Weight + f.Secondary
	}
	return f.Primary
}

// Scalar is Value oriented for minimisation.
func (o Objective) Scalar(f Fitness) float64 {
	if o.Sense == Maximize {
		return -o.Value(f)
	}
	return o.Value(f)
}

func (o Objective) lt(a, b float64) bool {
	tol := relEps * math.Max(1, math.Abs(b))
	if o.Sense == Maximize {
		return a > b+tol
	}
	return a < b-tol
}

func (o Objective) eq(a, b float64) bool {
	return math.Abs(a-b) <= relEps*math.Max(1, math.Abs(b))
}

// Better reports whether a is strictly better than b. A feasible solution
// beats an infeasible one regardless of the scores.
func (o Objective) Better(a, b Fitness) bool {
	if a.Feasible != b.Feasible {
		return a.Feasible
	}
	if o.Lexicographic {
		if !o.eq(a.Primary, b.Primary) {
			return o.lt(a.Primary, b.Primary)
		}
		return o.lt(a.Secondary, b.Secondary)
	}
	return o.lt(o.Value(a), o.Value(b))
}

// NotWorse reports whether a is at least as good as b. Equal scores count.
func (o Objective) NotWorse(a, b Fitness) bool { return !o.Better(b, a) }

// Delta is how much worse cand is than cur, in minimisation units. It is
// the Δ of the Metropolis rule; negative means cand improves.
func (o Objective) Delta(cur, cand Fitness) float64 {
	return o.Scalar(cand) - o.Scalar(cur)
}

// Evaluator scores solutions of one domain.
type Evaluator[S any] interface {
	Evaluate(s S) Fitness
	Objective() Objective
}

// Reporter exposes the per-domain metrics written to the result files.
type Reporter[S any] interface {
	Metrics(s S) map[string]float64
	// Gap is the percentage distance to the instance's known optimum.
	Gap(s S) (float64, bool)
}
