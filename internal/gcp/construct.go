package gcp

import (
	"math"
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

// palette finds the smallest colour not used around a vertex. Stamps save
// clearing the scratch slice between calls.
type palette struct {
	seen  []int
	stamp int
}

func newPalette(n int) *palette { return &palette{seen: make([]int, n+2)} }

func (p *palette) free(inst *Instance, colors []int, v int) int {
	p.stamp++
	for _, u := range inst.adj[v] {
		if c := colors[u]; c > 0 && c < len(p.seen) {
			p.seen[c] = p.stamp
		}
	}
	for c := 1; c < len(p.seen); c++ {
		if p.seen[c] != p.stamp {
			return c
		}
	}
	return len(p.seen)
}

// firstFit colours the uncoloured vertices of s in order with the smallest
// free colour.
func firstFit(s *Solution, order []int) {
	pal := newPalette(s.inst.n)
	for _, v := range order {
		if s.colors[v] == 0 {
			s.colors[v] = pal.free(s.inst, s.colors, v)
		}
	}
	s.dirty = true
}

// saturation is DSATUR. With rcl set the next vertex is drawn from those
// whose saturation is within alpha of the best.
func saturation(inst *Instance, ec *search.Context, rcl bool, alpha float64) *Solution {
	n := inst.n
	s := NewSolution(inst)
	sat := make([]*bitset.BitSet, n)
	for v := range sat {
		sat[v] = bitset.New(8)
	}
	pal := newPalette(n)
	cands := make([]int, 0, n)
	for step := 0; step < n; step++ {
		pick := -1
		if rcl {
			lo, hi := math.MaxInt, -1
			for v := 0; v < n; v++ {
				if s.colors[v] != 0 {
					continue
				}
				k := int(sat[v].Count())
				lo, hi = min(lo, k), max(hi, k)
			}
			threshold := float64(hi) - alpha*float64(hi-lo)
			cands = cands[:0]
			for v := 0; v < n; v++ {
				if s.colors[v] == 0 && float64(sat[v].Count()) >= threshold {
					cands = append(cands, v)
				}
			}
			pick = cands[ec.Intn(len(cands))]
		} else {
			bestSat := -1
			for v := 0; v < n; v++ {
				if s.colors[v] != 0 {
					continue
				}
				k := int(sat[v].Count())
				if k > bestSat || (k == bestSat && inst.degree[v] > inst.degree[pick]) {
					pick, bestSat = v, k
				}
			}
		}
		c := pal.free(inst, s.colors, pick)
		s.colors[pick] = c
		for _, u := range inst.adj[pick] {
			if s.colors[u] == 0 {
				sat[u].Set(uint(c))
			}
		}
	}
	s.dirty = true
	return s
}

func byDegree(inst *Instance) []int {
	order := make([]int, inst.n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return inst.degree[order[a]] > inst.degree[order[b]]
	})
	return order
}

// smallestLast repeatedly removes a minimum-degree vertex and returns the
// removal order reversed.
func smallestLast(inst *Instance) []int {
	n := inst.n
	deg := append([]int(nil), inst.degree...)
	removed := make([]bool, n)
	order := make([]int, n)
	for i := n - 1; i >= 0; i-- {
		pick := -1
		for v := 0; v < n; v++ {
			if !removed[v] && (pick < 0 || deg[v] < deg[pick]) {
				pick = v
			}
		}
		order[i] = pick
		removed[pick] = true
		for _, u := range inst.adj[pick] {
			if !removed[u] {
				deg[u]--
			}
		}
	}
	return order
}

type greedyByDensest struct{ inst *Instance }

func (greedyByDensest) Name() string { return "GreedyByDensest" }

func (g greedyByDensest) Construct(ec *search.Context) *Solution {
	return saturation(g.inst, ec, false, 0)
}

// greedyByEfficiency is largest-first.
type greedyByEfficiency struct{ inst *Instance }

func (greedyByEfficiency) Name() string { return "GreedyByEfficiency" }

func (g greedyByEfficiency) Construct(*search.Context) *Solution {
	s := NewSolution(g.inst)
	firstFit(s, byDegree(g.inst))
	return s
}

type greedyByScarcity struct{ inst *Instance }

func (greedyByScarcity) Name() string { return "GreedyByScarcity" }

func (g greedyByScarcity) Construct(*search.Context) *Solution {
	s := NewSolution(g.inst)
	firstFit(s, smallestLast(g.inst))
	return s
}

type randomized struct{ inst *Instance }

func (randomized) Name() string     { return "Randomized" }
func (randomized) Randomized() bool { return true }

func (r randomized) Construct(ec *search.Context) *Solution {
	s := NewSolution(r.inst)
	firstFit(s, ec.Perm(r.inst.n))
	return s
}

type rclConstruct struct {
	inst  *Instance
	alpha float64
}

func (rclConstruct) Name() string     { return "RCL" }
func (rclConstruct) Randomized() bool { return true }

func (r rclConstruct) Construct(ec *search.Context) *Solution {
	return saturation(r.inst, ec, true, r.alpha)
}

// regretInsertion colours next the vertex that loses most by waiting: the
// gap between its two smallest admissible colours, counting a fresh colour.
type regretInsertion struct{ inst *Instance }

func (regretInsertion) Name() string { return "RegretInsertion" }

func (g regretInsertion) Construct(*search.Context) *Solution {
	inst := g.inst
	n := inst.n
	s := NewSolution(inst)
	sat := make([]*bitset.BitSet, n)
	for v := range sat {
		sat[v] = bitset.New(8)
	}
	k := 0
	for step := 0; step < n; step++ {
		pick, pickColor := -1, 0
		bestRegret, bestSat := -1, -1
		for v := 0; v < n; v++ {
			if s.colors[v] != 0 {
				continue
			}
			first, second := 0, 0
			for c := 1; second == 0; c++ {
				if c > k || !sat[v].Test(uint(c)) {
					if first == 0 {
						first = c
					} else {
						second = c
					}
				}
			}
			regret := second - first
			vs := int(sat[v].Count())
			better := regret > bestRegret ||
				(regret == bestRegret && vs > bestSat) ||
				(regret == bestRegret && vs == bestSat && inst.degree[v] > inst.degree[pick])
			if better {
				pick, pickColor, bestRegret, bestSat = v, first, regret, vs
			}
		}
		s.colors[pick] = pickColor
		if pickColor > k {
			k = pickColor
		}
		for _, u := range inst.adj[pick] {
			if s.colors[u] == 0 {
				sat[u].Set(uint(pickColor))
			}
		}
	}
	s.dirty = true
	return s
}
