package vrptw

import (
	"math"
	"sort"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

// greedyByDensest is the parallel Clarke-Wright savings heuristic: start
// with one route per customer and merge route ends in decreasing order of
// d(0,i)+d(0,j)-d(i,j) while the merged route stays feasible.
type greedyByDensest struct{ inst *Instance }

func (greedyByDensest) Name() string { return "GreedyByDensest" }

func (g greedyByDensest) Construct(*search.Context) *Solution {
	in := g.inst
	n := in.NumNodes()
	type saving struct {
		i, j int
		v    float64
	}
	savings := make([]saving, 0, (n-1)*(n-2)/2)
	for i := 1; i < n; i++ {
		for j := i + 1; j < n; j++ {
			savings = append(savings, saving{i, j, in.Distance(0, i) + in.Distance(0, j) - in.Distance(i, j)})
		}
	}
	sort.SliceStable(savings, func(a, b int) bool { return savings[a].v > savings[b].v })

	routes := make([][]int, n)
	owner := make([]int, n)
	for c := 1; c < n; c++ {
		routes[c] = []int{c}
		owner[c] = c
	}
	merged := make([]int, 0, n+1)
	try := func(a, b int) bool {
		ra, rb := routes[a], routes[b]
		merged = append(merged[:0], 0)
		merged = append(merged, ra...)
		merged = append(merged, rb...)
		merged = append(merged, 0)
		if !in.IsRouteFeasible(merged) {
			return false
		}
		routes[a] = append(routes[a], rb...)
		for _, c := range rb {
			owner[c] = a
		}
		routes[b] = nil
		return true
	}
	for _, sv := range savings {
		ri, rj := owner[sv.i], owner[sv.j]
		if ri == rj {
			continue
		}
		a, b := routes[ri], routes[rj]
		switch {
		case a[len(a)-1] == sv.i && b[0] == sv.j && try(ri, rj):
		case b[len(b)-1] == sv.j && a[0] == sv.i && try(rj, ri):
		}
	}

	s := NewSolution(in)
	for c := 1; c < n; c++ {
		if r := routes[c]; r != nil {
			s.routes = append(s.routes, append(append([]int{0}, r...), 0))
		}
	}
	return s
}

// sequential builds routes one at a time, appending the unrouted customer
// that key ranks lowest among those that can still be reached on time and
// carried, and opening a new route when none can.
func sequential(in *Instance, key func(last, c int, start float64) float64) *Solution {
	n := in.NumNodes()
	depot := in.nodes[0]
	routed := make([]bool, n)
	s := NewSolution(in)
	left := n - 1
	for left > 0 {
		route := []int{0}
		last, t, load := 0, depot.Ready, 0
		for {
			pick, pickStart, pickKey := -1, 0.0, math.Inf(1)
			for c := 1; c < n; c++ {
				if routed[c] {
					continue
				}
				node := in.nodes[c]
				if load+node.Demand > in.capacity {
					continue
				}
				st := math.Max(t+in.nodes[last].Service+in.Distance(last, c), node.Ready)
				if st > node.Due+timeEps || st+node.Service+in.Distance(c, 0) > depot.Due+timeEps {
					continue
				}
				if k := key(last, c, st); k < pickKey {
					pick, pickStart, pickKey = c, st, k
				}
			}
			if pick < 0 {
				break
			}
			route = append(route, pick)
			routed[pick] = true
			last, t, load = pick, pickStart, load+in.nodes[pick].Demand
			left--
		}
		s.routes = append(s.routes, append(route, 0))
	}
	return s
}

// greedyByEfficiency is nearest neighbour.
type greedyByEfficiency struct{ inst *Instance }

func (greedyByEfficiency) Name() string { return "GreedyByEfficiency" }

func (g greedyByEfficiency) Construct(*search.Context) *Solution {
	return sequential(g.inst, func(last, c int, _ float64) float64 {
		return g.inst.Distance(last, c)
	})
}

// greedyByScarcity is the time-oriented nearest neighbour: earliest due
// time first, distance breaking ties.
type greedyByScarcity struct{ inst *Instance }

func (greedyByScarcity) Name() string { return "GreedyByScarcity" }

func (g greedyByScarcity) Construct(*search.Context) *Solution {
	return sequential(g.inst, func(last, c int, _ float64) float64 {
		return g.inst.nodes[c].Due + 1e-6*g.inst.Distance(last, c)
	})
}

// randomized inserts the customers in random order, each at its cheapest
// feasible position.
type randomized struct{ inst *Instance }

func (randomized) Name() string     { return "Randomized" }
func (randomized) Randomized() bool { return true }

func (r randomized) Construct(ec *search.Context) *Solution {
	s := NewSolution(r.inst)
	p := newPlanner(s)
	for _, i := range ec.Perm(r.inst.Size()) {
		p.place(i + 1)
	}
	return s
}

// seed opens a route with the unrouted customer farthest from the depot.
func seed(p *planner, routed []bool) int {
	in := p.s.inst
	far, fd := -1, -1.0
	for c := 1; c < len(routed); c++ {
		if !routed[c] && in.Distance(0, c) > fd {
			far, fd = c, in.Distance(0, c)
		}
	}
	p.open(far)
	routed[far] = true
	return far
}

// rclConstruct picks at random among the unrouted customers whose cheapest
// insertion cost lies within alpha of the best one.
type rclConstruct struct {
	inst  *Instance
	alpha float64
}

func (rclConstruct) Name() string     { return "RCL" }
func (rclConstruct) Randomized() bool { return true }

func (r rclConstruct) Construct(ec *search.Context) *Solution {
	in := r.inst
	n := in.NumNodes()
	s := NewSolution(in)
	p := newPlanner(s)
	routed := make([]bool, n)
	type cand struct {
		c, r, pos int
		cost      float64
	}
	var cands, rcl []cand
	for left := n - 1; left > 0; left-- {
		cands = cands[:0]
		lo, hi := math.Inf(1), math.Inf(-1)
		for c := 1; c < n; c++ {
			if routed[c] {
				continue
			}
			if rr, pos, cost := p.best(c, -1); rr >= 0 {
				cands = append(cands, cand{c, rr, pos, cost})
				lo, hi = math.Min(lo, cost), math.Max(hi, cost)
			}
		}
		if len(cands) == 0 {
			seed(p, routed)
			continue
		}
		threshold := lo + r.alpha*(hi-lo)
		rcl = rcl[:0]
		for _, c := range cands {
			if c.cost <= threshold+timeEps {
				rcl = append(rcl, c)
			}
		}
		pick := rcl[ec.Intn(len(rcl))]
		p.insert(pick.r, pick.pos, pick.c)
		routed[pick.c] = true
	}
	return s
}

// regretInsertion is regret-2 insertion: the customer that loses most if
// it misses its best route goes first. A new route is the fallback
// alternative when only one route can take the customer.
type regretInsertion struct{ inst *Instance }

func (regretInsertion) Name() string { return "RegretInsertion" }

func (g regretInsertion) Construct(*search.Context) *Solution {
	in := g.inst
	n := in.NumNodes()
	s := NewSolution(in)
	p := newPlanner(s)
	routed := make([]bool, n)
	for left := n - 1; left > 0; left-- {
		pick, pr, ppos := -1, -1, 0
		bestRegret, bestCost := math.Inf(-1), math.Inf(1)
		for c := 1; c < n; c++ {
			if routed[c] {
				continue
			}
			r, pos, c1 := p.best(c, -1)
			if r < 0 {
				continue
			}
			c2 := math.Min(p.secondBest(c, r), in.Distance(0, c)+in.Distance(c, 0))
			regret := c2 - c1
			if regret > bestRegret+timeEps || (math.Abs(regret-bestRegret) <= timeEps && c1 < bestCost) {
				pick, pr, ppos, bestRegret, bestCost = c, r, pos, regret, c1
			}
		}
		if pick < 0 {
			seed(p, routed)
			continue
		}
		p.insert(pr, ppos, pick)
		routed[pick] = true
	}
	return s
}
