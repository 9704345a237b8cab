package vrptw

import (
	"math"
	"sort"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

// reinsert places the pooled customers by increasing due time, each at its
// cheapest feasible slot or on a new route. Single-customer routes are
// always feasible, so the result is feasible when every kept route is.
func reinsert(s *Solution, pool []int) {
	in := s.inst
	sort.SliceStable(pool, func(a, b int) bool { return in.nodes[pool[a]].Due < in.nodes[pool[b]].Due })
	s.prune()
	p := newPlanner(s)
	for _, c := range pool {
		p.place(c)
	}
	s.dirty = true
}

// feasiblePrefix is the largest k such that visiting route[1..k] and
// returning to the depot respects capacity and every window.
func (in *Instance) feasiblePrefix(route []int) int {
	depot := in.nodes[0]
	t, load, keep := depot.Ready, 0, 0
	for k := 1; k < len(route)-1; k++ {
		prev, c := route[k-1], route[k]
		node := in.nodes[c]
		t = math.Max(t+in.nodes[prev].Service+in.Distance(prev, c), node.Ready)
		load += node.Demand
		if t > node.Due+timeEps || load > in.capacity {
			break
		}
		if t+node.Service+in.Distance(c, 0) <= depot.Due+timeEps {
			keep = k
		}
	}
	return keep
}

// greedyComplete keeps the longest feasible prefix of every route and
// reinserts everything else.
type greedyComplete struct{ inst *Instance }

func (greedyComplete) Name() string { return "GreedyComplete" }

func (o greedyComplete) Repair(s *Solution, _ *search.Context) *Solution {
	if s.Feasible() {
		return s
	}
	out := s.Clone()
	pool := out.missing()
	for r, route := range out.routes {
		k := o.inst.feasiblePrefix(route)
		pool = append(pool, route[k+1:len(route)-1]...)
		out.routes[r] = append(append([]int(nil), route[:k+1]...), 0)
	}
	reinsert(out, pool)
	return out
}

// removeWorst strips, from every infeasible route, the customer whose
// removal cuts the violation most (the larger distance saving breaks
// ties) until the route is feasible, then reinserts the removed ones.
type removeWorst struct{ inst *Instance }

func (removeWorst) Name() string { return "RemoveWorst" }

func (o removeWorst) Repair(s *Solution, _ *search.Context) *Solution {
	if s.Feasible() {
		return s
	}
	in := o.inst
	out := s.Clone()
	pool := out.missing()
	var cand []int
	for r := range out.routes {
		for !in.IsRouteFeasible(out.routes[r]) {
			route := out.routes[r]
			worst, wv, wd := -1, math.Inf(1), math.Inf(1)
			for p := 1; p < len(route)-1; p++ {
				cand = without(cand, route, p, 1)
				d, v := in.measure(cand)
				if v < wv-timeEps || (v <= wv+timeEps && d < wd) {
					worst, wv, wd = p, v, d
				}
			}
			pool = append(pool, out.RemoveCustomer(r, worst))
		}
	}
	reinsert(out, pool)
	return out
}
