package vrptw

import "github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"

// randomRelocate moves round(strength*N) random customers to random
// positions of random routes, ignoring windows and capacity.
type randomRelocate struct{ inst *Instance }

func (randomRelocate) Name() string { return "RandomRelocate" }

func (o randomRelocate) Perturb(s *Solution, ec *search.Context, strength float64) *Solution {
	out := s.Clone()
	out.prune()
	n := o.inst.Size()
	for k := search.Magnitude(strength, n); k > 0; k-- {
		c := 1 + ec.Intn(n)
		if at := out.positions()[c]; at.r >= 0 {
			out.RemoveCustomer(at.r, at.p)
		}
		var targets []int
		for r, route := range out.routes {
			if len(route) > 2 {
				targets = append(targets, r)
			}
		}
		if len(targets) == 0 {
			out.InsertCustomer(len(out.routes), 1, c)
			continue
		}
		r := targets[ec.Intn(len(targets))]
		out.InsertCustomer(r, 1+ec.Intn(len(out.routes[r])-1), c)
	}
	out.prune()
	return out
}

// ruinRecreate removes round(strength*N) random customers and reinserts
// them, in random order, at their cheapest feasible positions.
type ruinRecreate struct{ inst *Instance }

func (ruinRecreate) Name() string { return "RuinRecreate" }

func (o ruinRecreate) Perturb(s *Solution, ec *search.Context, strength float64) *Solution {
	out := s.Clone()
	n := o.inst.Size()
	pool := out.missing()
	for _, i := range ec.Perm(n)[:search.Magnitude(strength, n)] {
		at := out.positions()[i+1]
		if at.r < 0 {
			continue
		}
		pool = append(pool, out.RemoveCustomer(at.r, at.p))
	}
	out.prune()
	p := newPlanner(out)
	for _, c := range pool {
		p.place(c)
	}
	return out
}

// segmentRemoval cuts a run of consecutive customers out of a random route
// and reinserts them elsewhere, opening a route when nothing else fits.
type segmentRemoval struct{ inst *Instance }

func (segmentRemoval) Name() string { return "SegmentRemoval" }

func (o segmentRemoval) Perturb(s *Solution, ec *search.Context, strength float64) *Solution {
	out := s.Clone()
	out.prune()
	if len(out.routes) == 0 {
		return out
	}
	r := ec.Intn(len(out.routes))
	route := out.routes[r]
	l := min(search.Magnitude(strength, o.inst.Size()), len(route)-2)
	start := 1 + ec.Intn(len(route)-1-l)
	seg := append([]int(nil), route[start:start+l]...)
	out.routes[r] = without(nil, route, start, l)
	out.dirty = true
	p := newPlanner(out)
	for _, c := range seg {
		if rr, pos, _ := p.best(c, r); rr >= 0 {
			p.insert(rr, pos, c)
			continue
		}
		p.open(c)
	}
	out.prune()
	return out
}
