package gcp

import (
	"sort"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

// greedyComplete recolours first-fit, in vertex order, every vertex that is
// uncoloured or clashes with a neighbour. A recoloured vertex avoids all its
// neighbours' colours, so no new clash appears and one pass is enough.
type greedyComplete struct{ inst *Instance }

func (greedyComplete) Name() string { return "GreedyComplete" }

func (o greedyComplete) Repair(s *Solution, _ *search.Context) *Solution {
	if s.Feasible() {
		return s
	}
	out := s.Clone()
	pal := newPalette(o.inst.n)
	for v := 0; v < o.inst.n; v++ {
		if out.colors[v] == 0 || out.conflictsAt(v) > 0 {
			out.colors[v] = pal.free(o.inst, out.colors, v)
		}
	}
	out.dirty = true
	out.compact()
	return out
}

// removeWorst uncolours the vertex with most clashes until none remain,
// then recolours the uncoloured vertices first-fit by decreasing degree.
type removeWorst struct{ inst *Instance }

func (removeWorst) Name() string { return "RemoveWorst" }

func (o removeWorst) Repair(s *Solution, _ *search.Context) *Solution {
	if s.Feasible() {
		return s
	}
	inst := o.inst
	out := s.Clone()
	clash := make([]int, inst.n)
	for v := range clash {
		clash[v] = out.conflictsAt(v)
	}
	for {
		worst := -1
		for v, c := range clash {
			if c > 0 && (worst < 0 || c > clash[worst]) {
				worst = v
			}
		}
		if worst < 0 {
			break
		}
		col := out.colors[worst]
		out.colors[worst] = 0
		clash[worst] = 0
		for _, u := range inst.adj[worst] {
			if out.colors[u] == col && clash[u] > 0 {
				clash[u]--
			}
		}
	}
	var order []int
	for v, c := range out.colors {
		if c == 0 {
			order = append(order, v)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return inst.degree[order[a]] > inst.degree[order[b]]
	})
	firstFit(out, order)
	out.compact()
	return out
}
