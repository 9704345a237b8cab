package vrptw

import "github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"

// DefaultVehicleWeight is the distance one vehicle is worth in the weighted
// objective and in the scalar the annealing rule uses.
const DefaultVehicleWeight = 1000

// DefaultPenalty is added to the distance per unit of overload, per time
// unit of lateness and per unassigned customer.
const DefaultPenalty = 1000

// Evaluator compares (vehicles, distance) lexicographically, or as
// vehicles*w + distance with WithWeighted.
type Evaluator struct {
	inst     *Instance
	weight   float64
	weighted bool
	penalty  float64
}

type EvaluatorOption func(*Evaluator)

// WithWeighted switches to the weighted objective; w <= 0 keeps
// DefaultVehicleWeight.
func WithWeighted(w float64) EvaluatorOption {
	return func(e *Evaluator) {
		e.weighted = true
		if w > 0 {
			e.weight = w
		}
	}
}

func WithPenalty(p float64) EvaluatorOption {
	return func(e *Evaluator) {
		if p > 0 {
			e.penalty = p
		}
	}
}

func NewEvaluator(inst *Instance, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{inst: inst, weight: DefaultVehicleWeight, penalty: DefaultPenalty}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Evaluator) Weight() float64 { return e.weight }

// Evaluate puts the vehicle count in Primary and the distance, plus the
// penalties of an infeasible solution, in Secondary.
func (e *Evaluator) Evaluate(s *Solution) search.Fitness {
	bad := float64(s.CapacityExcess()) + s.Lateness() + float64(s.Unassigned())
	return search.Fitness{
		Primary:   float64(s.NumVehicles()),
		Secondary: s.TotalDistance() + e.penalty*bad,
		Feasible:  s.Feasible(),
	}
}

func (e *Evaluator) Objective() search.Objective {
	return search.Objective{Sense: search.Minimize, Lexicographic: !e.weighted, Weight: e.weight}
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

// Utilization is the mean route load over the vehicle capacity.
func (e *Evaluator) Utilization(s *Solution) float64 {
	loads := s.Loads()
	if len(loads) == 0 {
		return 0
	}
	total := 0
	for _, l := range loads {
		total += l
	}
	return float64(total) / float64(len(loads)*e.inst.capacity)
}

func (e *Evaluator) Metrics(s *Solution) map[string]float64 {
	feasible := 0.0
	if s.Feasible() {
		feasible = 1
	}
	m := map[string]float64{
		"vehicles":        float64(s.NumVehicles()),
		"distance":        s.TotalDistance(),
		"capacity_excess": float64(s.CapacityExcess()),
		"lateness":        s.Lateness(),
		"unassigned":      float64(s.Unassigned()),
		"fleet_excess":    float64(max(0, s.NumVehicles()-e.inst.vehicles)),
		"utilization":     e.Utilization(s),
		"feasible":        feasible,
	}
	if k, _, ok := e.inst.BestKnown(); ok && k > 0 {
		m["vehicle_gap"] = float64(s.NumVehicles() - k)
	}
	return m
}

// Gap is the percentage of distance above the best known solution.
func (e *Evaluator) Gap(s *Solution) (float64, bool) {
	_, d, ok := e.inst.BestKnown()
	if !ok || !s.Feasible() {
		return 0, false
	}
	return 100 * (s.TotalDistance() - d) / d, true
}
