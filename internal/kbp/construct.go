package kbp

import (
	"sort"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

// regretWidth bounds the candidates RegretInsertion compares per step.
const regretWidth = 32

// fill adds, in order, every item that still fits.
func fill(s *Solution, order []int) {
	inst := s.inst
	residual := s.Residual()
	for _, i := range order {
		if s.sel.Test(uint(i)) || inst.weights[i] > residual {
			continue
		}
		s.sel.Set(uint(i))
		residual -= inst.weights[i]
		s.dirty = true
	}
}

func sortedItems(inst *Instance, less func(a, b int) bool) []int {
	order := make([]int, inst.N())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return less(order[a], order[b]) })
	return order
}

type greedyByDensest struct{ inst *Instance }

func (greedyByDensest) Name() string { return "GreedyByDensest" }

// Construct takes the most valuable items first.
func (g greedyByDensest) Construct(*search.Context) *Solution {
	s := NewSolution(g.inst)
	fill(s, sortedItems(g.inst, func(a, b int) bool { return g.inst.values[a] > g.inst.values[b] }))
	return s
}

type greedyByEfficiency struct{ inst *Instance }

func (greedyByEfficiency) Name() string { return "GreedyByEfficiency" }

// Construct is Dantzig's greedy: decreasing value/weight.
func (g greedyByEfficiency) Construct(*search.Context) *Solution {
	s := NewSolution(g.inst)
	fill(s, g.inst.byRatio)
	return s
}

type greedyByScarcity struct{ inst *Instance }

func (greedyByScarcity) Name() string { return "GreedyByScarcity" }

// Construct packs the lightest items first.
func (g greedyByScarcity) Construct(*search.Context) *Solution {
	s := NewSolution(g.inst)
	fill(s, sortedItems(g.inst, func(a, b int) bool { return g.inst.weights[a] < g.inst.weights[b] }))
	return s
}

type randomized struct{ inst *Instance }

func (randomized) Name() string     { return "Randomized" }
func (randomized) Randomized() bool { return true }

func (r randomized) Construct(ec *search.Context) *Solution {
	s := NewSolution(r.inst)
	fill(s, ec.Perm(r.inst.N()))
	return s
}

// rclConstruct repeatedly picks a random fitting item whose ratio lies
// within alpha of the best fitting ratio.
type rclConstruct struct {
	inst  *Instance
	alpha float64
}

func (rclConstruct) Name() string     { return "RCL" }
func (rclConstruct) Randomized() bool { return true }

func (r rclConstruct) Construct(ec *search.Context) *Solution {
	inst := r.inst
	s := NewSolution(inst)
	residual := inst.capacity
	var rcl []int
	for {
		lo, hi := 0.0, -1.0
		for _, i := range inst.byRatio {
			if s.sel.Test(uint(i)) || inst.weights[i] > residual {
				continue
			}
			if hi < 0 {
				hi = inst.ratios[i]
			}
			lo = inst.ratios[i]
		}
		if hi < 0 {
			break
		}
		threshold := hi - r.alpha*(hi-lo)
		rcl = rcl[:0]
		for _, i := range inst.byRatio {
			if inst.ratios[i] < threshold {
				break
			}
			if !s.sel.Test(uint(i)) && inst.weights[i] <= residual {
				rcl = append(rcl, i)
			}
		}
		pick := rcl[ec.Intn(len(rcl))]
		s.sel.Set(uint(pick))
		residual -= inst.weights[pick]
	}
	s.dirty = true
	return s
}

// regretInsertion takes the item whose value most exceeds the best value it
// would shut out of the knapsack, among the best fitting items by ratio.
type regretInsertion struct{ inst *Instance }

func (regretInsertion) Name() string { return "RegretInsertion" }

func (g regretInsertion) Construct(*search.Context) *Solution {
	inst := g.inst
	s := NewSolution(inst)
	residual := inst.capacity
	cand := make([]int, 0, regretWidth)
	for {
		cand = cand[:0]
		for _, i := range inst.byRatio {
			if !s.sel.Test(uint(i)) && inst.weights[i] <= residual {
				cand = append(cand, i)
				if len(cand) == regretWidth {
					break
				}
			}
		}
		if len(cand) == 0 {
			break
		}
		pick, bestRegret := -1, 0
		for _, i := range cand {
			lost := 0
			for _, j := range cand {
				if j != i && inst.weights[i]+inst.weights[j] > residual {
					lost = max(lost, inst.values[j])
				}
			}
			if regret := inst.values[i] - lost; pick < 0 || regret > bestRegret {
				pick, bestRegret = i, regret
			}
		}
		s.sel.Set(uint(pick))
		residual -= inst.weights[pick]
	}
	s.dirty = true
	return s
}
