package gcp

import "github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"

// Evaluator minimises colours + penalty*(conflicts + uncoloured vertices).
// The default penalty N+1 makes any proper colouring beat any improper one.
type Evaluator struct {
	inst    *Instance
	penalty float64
}

type EvaluatorOption func(*Evaluator)

func WithPenalty(p float64) EvaluatorOption {
	return func(e *Evaluator) {
		if p > 0 {
			e.penalty = p
		}
	}
}

func NewEvaluator(inst *Instance, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{inst: inst, penalty: float64(inst.n + 1)}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Evaluator) Penalty() float64 { return e.penalty }

// Evaluate puts the penalised colour count in Primary and the number of
// conflicting edges in Secondary.
func (e *Evaluator) Evaluate(s *Solution) search.Fitness {
	bad := s.NumConflicts() + s.Uncolored()
	return search.Fitness{
		Primary:   float64(s.NumColors()) + e.penalty*float64(bad),
		Secondary: float64(s.NumConflicts()),
		Feasible:  bad == 0,
	}
}

func (e *Evaluator) Objective() search.Objective {
	return search.Objective{Sense: search.Minimize}
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

// Utilization is the share of the N available colours in use.
func (e *Evaluator) Utilization(s *Solution) float64 {
	return float64(s.NumColors()) / float64(e.inst.n)
}

func (e *Evaluator) Metrics(s *Solution) map[string]float64 {
	feasible := 0.0
	if s.Feasible() {
		feasible = 1
	}
	return map[string]float64{
		"colors":      float64(s.NumColors()),
		"conflicts":   float64(s.NumConflicts()),
		"uncolored":   float64(s.Uncolored()),
		"utilization": e.Utilization(s),
		"feasible":    feasible,
	}
}

// Gap is the percentage above the known chromatic number.
func (e *Evaluator) Gap(s *Solution) (float64, bool) {
	chi, ok := e.inst.Chromatic()
	if !ok || !s.Feasible() {
		return 0, false
	}
	return 100 * float64(s.NumColors()-chi) / float64(chi), true
}
