package vrptw

import (
	"math"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

// A move replaces some routes by new ones. It is taken when neither the
// distance nor the violation of the touched routes grows and one of them
// shrinks. Moves never add a vehicle, so the result is never worse under
// either objective.

func (in *Instance) measure(routes ...[]int) (dist, viol float64) {
	for _, r := range routes {
		e := in.evalRoute(r)
		dist += e.dist
		viol += e.violation(in.capacity)
	}
	return dist, viol
}

func dominates(oldD, oldV, newD, newV float64) bool {
	return newV <= oldV+timeEps && newD <= oldD+timeEps && (newV < oldV-timeEps || newD < oldD-timeEps)
}

// without returns route minus positions [p, p+l).
func without(dst, route []int, p, l int) []int {
	dst = append(dst[:0], route[:p]...)
	return append(dst, route[p+l:]...)
}

// with returns route with seg inserted before position q.
func with(dst, route []int, q int, seg []int) []int {
	dst = append(dst[:0], route[:q]...)
	dst = append(dst, seg...)
	return append(dst, route[q:]...)
}

// descend runs pass until it finds nothing, MaxPasses is reached or the
// budget runs out. It returns s itself when no move was taken.
func descend(s *Solution, ec *search.Context, maxPasses int, pass func(*Solution) bool) *Solution {
	out := s.Clone()
	changed := false
	for i := 0; i < maxPasses && !ec.Exhausted(); i++ {
		if !pass(out) {
			break
		}
		changed = true
	}
	if !changed {
		return s
	}
	out.prune()
	out.dirty = true
	return out
}

// moveSegments relocates the first improving segment of length 1..maxLen
// to another position of its route or of another non-empty route.
func moveSegments(s *Solution, maxLen int) bool {
	in := s.inst
	var rest, cand, cand2 []int
	for r1, route := range s.routes {
		d1, v1 := in.measure(route)
		for l := 1; l <= maxLen; l++ {
			for p := 1; p+l < len(route); p++ {
				seg := append([]int(nil), route[p:p+l]...)
				rest = without(rest, route, p, l)
				for q := 1; q < len(rest); q++ {
					if q == p {
						continue
					}
					cand = with(cand, rest, q, seg)
					if nd, nv := in.measure(cand); dominates(d1, v1, nd, nv) {
						s.routes[r1] = append([]int(nil), cand...)
						s.dirty = true
						return true
					}
				}
				rd, rv := in.measure(rest)
				for r2, other := range s.routes {
					if r2 == r1 || len(other) <= 2 {
						continue
					}
					d2, v2 := in.measure(other)
					for q := 1; q < len(other); q++ {
						cand2 = with(cand2, other, q, seg)
						nd, nv := in.measure(cand2)
						if dominates(d1+d2, v1+v2, rd+nd, rv+nv) {
							s.routes[r1] = append([]int(nil), rest...)
							s.routes[r2] = append([]int(nil), cand2...)
							s.dirty = true
							return true
						}
					}
				}
			}
		}
	}
	return false
}

// relocate moves single customers.
type relocate struct {
	inst *Instance
	opts Options
}

func (relocate) Name() string { return "Relocate" }

func (o relocate) Improve(s *Solution, ec *search.Context) *Solution {
	return descend(s, ec, o.opts.MaxPasses, func(out *Solution) bool { return moveSegments(out, 1) })
}

// orOpt moves chains of up to three consecutive customers, keeping their
// order.
type orOpt struct {
	inst *Instance
	opts Options
}

func (orOpt) Name() string { return "OrOpt" }

func (o orOpt) Improve(s *Solution, ec *search.Context) *Solution {
	return descend(s, ec, o.opts.MaxPasses, func(out *Solution) bool { return moveSegments(out, 3) })
}

// twoOpt reverses a segment inside a route, or exchanges the tails of two
// routes (2-opt*), which keeps every visit's direction.
type twoOpt struct {
	inst *Instance
	opts Options
}

func (twoOpt) Name() string { return "TwoOpt" }

func (o twoOpt) Improve(s *Solution, ec *search.Context) *Solution {
	return descend(s, ec, o.opts.MaxPasses, twoOptPass)
}

func twoOptPass(s *Solution) bool {
	in := s.inst
	var cand, cand2 []int
	for r, route := range s.routes {
		d, v := in.measure(route)
		for i := 1; i < len(route)-2; i++ {
			for j := i + 1; j < len(route)-1; j++ {
				cand = append(cand[:0], route...)
				for a, b := i, j; a < b; a, b = a+1, b-1 {
					cand[a], cand[b] = cand[b], cand[a]
				}
				if nd, nv := in.measure(cand); dominates(d, v, nd, nv) {
					s.routes[r] = append([]int(nil), cand...)
					s.dirty = true
					return true
				}
			}
		}
	}
	for r1 := 0; r1 < len(s.routes); r1++ {
		for r2 := r1 + 1; r2 < len(s.routes); r2++ {
			a, b := s.routes[r1], s.routes[r2]
			if len(a) <= 2 || len(b) <= 2 {
				continue
			}
			od, ov := in.measure(a, b)
			for i := 0; i < len(a)-1; i++ {
				for j := 0; j < len(b)-1; j++ {
					if i == 0 && j == 0 || i == len(a)-2 && j == len(b)-2 {
						continue
					}
					cand = append(append(cand[:0], a[:i+1]...), b[j+1:]...)
					cand2 = append(append(cand2[:0], b[:j+1]...), a[i+1:]...)
					if nd, nv := in.measure(cand, cand2); dominates(od, ov, nd, nv) {
						s.routes[r1] = append([]int(nil), cand...)
						s.routes[r2] = append([]int(nil), cand2...)
						s.dirty = true
						return true
					}
				}
			}
		}
	}
	return false
}

// swapInter exchanges two customers of different routes.
type swapInter struct {
	inst *Instance
	opts Options
}

func (swapInter) Name() string { return "SwapInter" }

func (o swapInter) Improve(s *Solution, ec *search.Context) *Solution {
	return descend(s, ec, o.opts.MaxPasses, swapPass)
}

func swapPass(s *Solution) bool {
	in := s.inst
	for r1 := 0; r1 < len(s.routes); r1++ {
		for r2 := r1 + 1; r2 < len(s.routes); r2++ {
			a, b := s.routes[r1], s.routes[r2]
			od, ov := in.measure(a, b)
			for p1 := 1; p1 < len(a)-1; p1++ {
				for p2 := 1; p2 < len(b)-1; p2++ {
					a[p1], b[p2] = b[p2], a[p1]
					nd, nv := in.measure(a, b)
					if dominates(od, ov, nd, nv) {
						s.dirty = true
						return true
					}
					a[p1], b[p2] = b[p2], a[p1]
				}
			}
		}
	}
	return false
}

// routeElimination empties the route with fewest customers when each of
// them has a feasible slot elsewhere and the extra distance stays below
// one vehicle's weight. It repeats until no route can be removed.
type routeElimination struct {
	inst *Instance
	opts Options
}

func (routeElimination) Name() string { return "RouteElimination" }

func (o routeElimination) Improve(s *Solution, ec *search.Context) *Solution {
	cur := s.Clone()
	cur.prune()
	changed := false
	tried := make(map[uint64]bool)
	for !ec.Exhausted() {
		r := -1
		for i, route := range cur.routes {
			if tried[routeKey(route)] {
				continue
			}
			if r < 0 || len(route) < len(cur.routes[r]) {
				r = i
			}
		}
		if r < 0 {
			break
		}
		tried[routeKey(cur.routes[r])] = true
		if next, ok := o.eliminate(cur, r); ok {
			cur, changed = next, true
			clear(tried)
		}
	}
	if !changed {
		return s
	}
	return cur
}

func routeKey(route []int) uint64 { return search.MoveKey(route[1], route[len(route)-2], len(route)) }

func (o routeElimination) eliminate(s *Solution, r int) (*Solution, bool) {
	in := o.inst
	trial := s.Clone()
	victims := append([]int(nil), trial.routes[r][1:len(trial.routes[r])-1]...)
	saved := in.evalRoute(trial.routes[r]).dist
	trial.routes[r] = []int{0, 0}
	p := newPlanner(trial)
	added := 0.0
	for _, c := range victims {
		rr, pos, cost := p.best(c, r)
		if rr < 0 {
			return nil, false
		}
		p.insert(rr, pos, c)
		added += cost
	}
	if added-saved >= o.opts.VehicleWeight {
		return nil, false
	}
	trial.prune()
	trial.dirty = true
	return trial, true
}

// tabuRelocate is tabu search over relocations to the cheapest feasible
// slot of another route. Taking a customer out of a route forbids moving
// it back for ⌈√n⌉ iterations unless that beats the best seen. It returns
// the best solution visited. Infeasible inputs get a plain Relocate
// descent instead.
type tabuRelocate struct {
	inst *Instance
	opts Options
}

func (tabuRelocate) Name() string { return "TabuRelocate" }

func (o tabuRelocate) iterations() int {
	if o.opts.TabuIterations > 0 {
		return o.opts.TabuIterations
	}
	return min(10*o.inst.Size(), 1000)
}

func (o tabuRelocate) score(vehicles int, dist float64) float64 {
	return float64(vehicles)*o.opts.VehicleWeight + dist
}

func (o tabuRelocate) Improve(s *Solution, ec *search.Context) *Solution {
	if !s.Feasible() {
		return relocate(o).Improve(s, ec)
	}
	in := o.inst
	cur := s.Clone()
	cur.prune()
	p := newPlanner(cur)
	vehicles, dist := cur.NumVehicles(), cur.TotalDistance()
	bestScore := o.score(vehicles, dist)
	var best *Solution
	tenure := search.TabuTenure(in.Size())
	tabu := search.NewTabuList(2 * tenure)

	for iter := 0; iter < o.iterations() && !ec.Exhausted(); iter++ {
		type move struct {
			from, pos, to, at int
			delta             float64
			emptied           bool
		}
		bm := move{from: -1}
		bs := math.Inf(1)
		for r1, route := range cur.routes {
			for pos := 1; pos < len(route)-1; pos++ {
				c := route[pos]
				a, b := route[pos-1], route[pos+1]
				gain := in.Distance(a, c) + in.Distance(c, b) - in.Distance(a, b)
				emptied := len(route) == 3
				for r2, other := range cur.routes {
					if r2 == r1 || len(other) <= 2 {
						continue
					}
					for q := 1; q < len(other); q++ {
						cost, ok := in.insertion(other, &p.sch[r2], q, c)
						if !ok {
							continue
						}
						v := vehicles
						if emptied {
							v--
						}
						sc := o.score(v, dist+cost-gain)
						aspiration := sc < bestScore-timeEps
						if tabu.IsTabu(search.MoveKey(c, r2, 0), iter) && !aspiration {
							continue
						}
						if sc < bs-timeEps {
							bs = sc
							bm = move{r1, pos, r2, q, cost - gain, emptied}
						}
					}
				}
			}
		}
		if bm.from < 0 {
			break
		}
		c := cur.RemoveCustomer(bm.from, bm.pos)
		p.refresh(bm.from)
		p.insert(bm.to, bm.at, c)
		dist += bm.delta
		if bm.emptied {
			vehicles--
		}
		tabu.Add(search.MoveKey(c, bm.from, 0), iter+tenure)
		if bs < bestScore-timeEps {
			bestScore = bs
			best = cur.Clone()
		}
	}
	if best == nil {
		return s
	}
	best.prune()
	best.dirty = true
	return best
}
