package vrptw

import "math"

// schedule caches, for one route, the service start at every position and
// the latest start that keeps the rest of the route on time. With it an
// insertion is checked in O(1).
type schedule struct {
	start  []float64
	latest []float64
	load   int
	ok     bool
}

func (in *Instance) schedule(route []int) schedule {
	m := len(route)
	sc := schedule{start: make([]float64, m), latest: make([]float64, m), ok: true}
	sc.start[0] = in.nodes[0].Ready
	for k := 1; k < m; k++ {
		prev, cur := route[k-1], route[k]
		node := in.nodes[cur]
		sc.start[k] = math.Max(sc.start[k-1]+in.nodes[prev].Service+in.Distance(prev, cur), node.Ready)
		if sc.start[k] > node.Due+timeEps {
			sc.ok = false
		}
		sc.load += node.Demand
	}
	if sc.load > in.capacity {
		sc.ok = false
	}
	sc.latest[m-1] = in.nodes[0].Due
	for k := m - 2; k >= 0; k-- {
		cur, next := route[k], route[k+1]
		sc.latest[k] = math.Min(in.nodes[cur].Due, sc.latest[k+1]-in.Distance(cur, next)-in.nodes[cur].Service)
	}
	return sc
}

// insertion checks placing customer c between positions p-1 and p of a
// feasible route and returns the added distance.
func (in *Instance) insertion(route []int, sc *schedule, p, c int) (float64, bool) {
	if !sc.ok || sc.load+in.nodes[c].Demand > in.capacity {
		return 0, false
	}
	a, b := route[p-1], route[p]
	node := in.nodes[c]
	st := math.Max(sc.start[p-1]+in.nodes[a].Service+in.Distance(a, c), node.Ready)
	if st > node.Due+timeEps {
		return 0, false
	}
	stB := math.Max(st+node.Service+in.Distance(c, b), in.nodes[b].Ready)
	if stB > sc.latest[p]+timeEps {
		return 0, false
	}
	return in.Distance(a, c) + in.Distance(c, b) - in.Distance(a, b), true
}

// planner tracks schedules for the routes of a solution under construction
// or repair.
type planner struct {
	s   *Solution
	sch []schedule
}

func newPlanner(s *Solution) *planner {
	p := &planner{s: s, sch: make([]schedule, len(s.routes))}
	for r, route := range s.routes {
		p.sch[r] = s.inst.schedule(route)
	}
	return p
}

// best returns the cheapest feasible insertion of c over all routes except
// skip. r is -1 when no route can take c.
func (p *planner) best(c, skip int) (r, pos int, cost float64) {
	r, cost = -1, math.Inf(1)
	for i, route := range p.s.routes {
		if i == skip {
			continue
		}
		for q := 1; q < len(route); q++ {
			if d, ok := p.s.inst.insertion(route, &p.sch[i], q, c); ok && d < cost-timeEps {
				r, pos, cost = i, q, d
			}
		}
	}
	return r, pos, cost
}

// secondBest returns the cheapest feasible insertion cost of c into any
// route but exclude, +Inf when there is none.
func (p *planner) secondBest(c, exclude int) float64 {
	best := math.Inf(1)
	for i, route := range p.s.routes {
		if i == exclude {
			continue
		}
		for q := 1; q < len(route); q++ {
			if d, ok := p.s.inst.insertion(route, &p.sch[i], q, c); ok && d < best {
				best = d
			}
		}
	}
	return best
}

func (p *planner) insert(r, pos, c int) {
	p.s.insertAt(r, pos, c)
	p.sch[r] = p.s.inst.schedule(p.s.routes[r])
}

// open starts a new route serving c alone.
func (p *planner) open(c int) int {
	p.s.routes = append(p.s.routes, []int{0, c, 0})
	p.s.dirty = true
	p.sch = append(p.sch, p.s.inst.schedule(p.s.routes[len(p.s.routes)-1]))
	return len(p.s.routes) - 1
}

// place inserts c at its cheapest feasible position, opening a route when
// none exists.
func (p *planner) place(c int) {
	if r, pos, _ := p.best(c, -1); r >= 0 {
		p.insert(r, pos, c)
		return
	}
	p.open(c)
}

func (p *planner) refresh(r int) {
	p.sch[r] = p.s.inst.schedule(p.s.routes[r])
}
