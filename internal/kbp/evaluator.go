package kbp

import (
	"math"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

// DefaultPenalty is max(value)+1 per unit of excess weight, so dropping any
// single unit of overload pays for the most valuable item.
func DefaultPenalty(inst *Instance) float64 {
	return float64(inst.maxValue + 1)
}

// Evaluator maximises the total value. An overloaded selection scores
// value - penalty*excess, or -Inf in strict mode.
type Evaluator struct {
	inst    *Instance
	penalty float64
	strict  bool
}

type EvaluatorOption func(*Evaluator)

func WithPenalty(p float64) EvaluatorOption {
	return func(e *Evaluator) {
		if p > 0 {
			e.penalty = p
		}
	}
}

func WithStrict() EvaluatorOption {
	return func(e *Evaluator) { e.strict = true }
}

func NewEvaluator(inst *Instance, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{inst: inst, penalty: DefaultPenalty(inst)}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Evaluator) Penalty() float64 { return e.penalty }
func (e *Evaluator) Strict() bool     { return e.strict }

// Evaluate puts the (penalised) value in Primary and the total weight in
// Secondary.
func (e *Evaluator) Evaluate(s *Solution) search.Fitness {
	excess := s.Excess()
	f := search.Fitness{
		Primary:   float64(s.TotalValue()),
		Secondary: float64(s.TotalWeight()),
		Feasible:  excess == 0,
	}
	if excess > 0 {
		if e.strict {
			f.Primary = math.Inf(-1)
		} else {
			f.Primary -= e.penalty * float64(excess)
		}
	}
	return f
}

func (e *Evaluator) Objective() search.Objective {
	return search.Objective{Sense: search.Maximize}
}

func (e *Evaluator) EvaluateBatch(sols []*Solution) []search.Fitness {
	out := make([]search.Fitness, len(sols))
	for i, s := range sols {
		out[i] = e.Evaluate(s)
	}
	return out
}

func (e *Evaluator) IsBetterThan(a, b *Solution) bool {
	return e.Objective().Better(e.Evaluate(a), e.Evaluate(b))
}

// Utilization is the share of the capacity in use.
func (e *Evaluator) Utilization(s *Solution) float64 {
	return float64(s.TotalWeight()) / float64(e.inst.capacity)
}

func (e *Evaluator) Metrics(s *Solution) map[string]float64 {
	feasible := 0.0
	if s.Feasible() {
		feasible = 1
	}
	return map[string]float64{
		"value":       float64(s.TotalValue()),
		"weight":      float64(s.TotalWeight()),
		"items":       float64(s.Count()),
		"excess":      float64(s.Excess()),
		"utilization": e.Utilization(s),
		"feasible":    feasible,
	}
}

// Gap is the percentage below the known optimum.
func (e *Evaluator) Gap(s *Solution) (float64, bool) {
	z, ok := e.inst.KnownOptimum()
	if !ok || !s.Feasible() {
		return 0, false
	}
	return 100 * (z - float64(s.TotalValue())) / z, true
}
