package vrptw

import (
	"fmt"
	"sort"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
)

// Solution is a set of routes, each stored as 0, c1..ck, 0. Customers not
// on any route are unassigned; that only happens inside operators and in
// hand-built solutions.
type Solution struct {
	inst   *Instance
	routes [][]int

	dirty      bool
	vehicles   int
	distance   float64
	excess     int
	late       float64
	unassigned int
}

// NewSolution returns the solution with no routes.
func NewSolution(inst *Instance) *Solution {
	return &Solution{inst: inst, dirty: true}
}

// FromRoutes accepts routes with or without the depot at both ends. Each
// customer may appear at most once.
func FromRoutes(inst *Instance, routes [][]int) (*Solution, error) {
	s := NewSolution(inst)
	seen := make([]bool, inst.NumNodes())
	for _, r := range routes {
		route := []int{0}
		for k, c := range r {
			if c == 0 && (k == 0 || k == len(r)-1) {
				continue
			}
			if c <= 0 || c >= inst.NumNodes() {
				return nil, fmt.Errorf("customer %d outside [1,%d)", c, inst.NumNodes())
			}
			if seen[c] {
				return nil, fmt.Errorf("customer %d visited twice", c)
			}
			seen[c] = true
			route = append(route, c)
		}
		if len(route) > 1 {
			s.routes = append(s.routes, append(route, 0))
		}
	}
	return s, nil
}

func (s *Solution) Instance() *Instance { return s.inst }

// Routes returns a copy of the non-empty routes.
func (s *Solution) Routes() [][]int {
	out := make([][]int, 0, len(s.routes))
	for _, r := range s.routes {
		if len(r) > 2 {
			out = append(out, append([]int(nil), r...))
		}
	}
	return out
}

func (s *Solution) NumRoutes() int { return len(s.routes) }

// Route returns route r; callers must not modify it.
func (s *Solution) Route(r int) []int { return s.routes[r] }

// InsertCustomer puts c at position pos (1..len-1) of route r. r equal to
// NumRoutes opens a new route.
func (s *Solution) InsertCustomer(r, pos, c int) {
	if r == len(s.routes) {
		s.routes = append(s.routes, []int{0, 0})
		pos = 1
	}
	s.insertAt(r, pos, c)
}

func (s *Solution) insertAt(r, pos, c int) {
	route := append(s.routes[r], 0)
	copy(route[pos+1:], route[pos:])
	route[pos] = c
	s.routes[r] = route
	s.dirty = true
}

// RemoveCustomer takes out the customer at position pos of route r and
// returns it. An emptied route stays until prune.
func (s *Solution) RemoveCustomer(r, pos int) int {
	route := s.routes[r]
	c := route[pos]
	s.routes[r] = append(route[:pos], route[pos+1:]...)
	s.dirty = true
	return c
}

// SwapCustomers exchanges the customers at (r1,p1) and (r2,p2).
func (s *Solution) SwapCustomers(r1, p1, r2, p2 int) {
	s.routes[r1][p1], s.routes[r2][p2] = s.routes[r2][p2], s.routes[r1][p1]
	s.dirty = true
}

// prune drops empty routes.
func (s *Solution) prune() {
	kept := s.routes[:0]
	for _, r := range s.routes {
		if len(r) > 2 {
			kept = append(kept, r)
		}
	}
	for i := len(kept); i < len(s.routes); i++ {
		s.routes[i] = nil
	}
	s.routes = kept
}

func (s *Solution) refresh() {
	if !s.dirty {
		return
	}
	s.vehicles, s.distance, s.excess, s.late = 0, 0, 0, 0
	served := 0
	for _, r := range s.routes {
		if len(r) <= 2 {
			continue
		}
		e := s.inst.evalRoute(r)
		s.vehicles++
		s.distance += e.dist
		s.excess += max(0, e.load-s.inst.capacity)
		s.late += e.late
		served += len(r) - 2
	}
	s.unassigned = s.inst.Size() - served
	s.dirty = false
}

// NumVehicles counts non-empty routes.
func (s *Solution) NumVehicles() int {
	s.refresh()
	return s.vehicles
}

func (s *Solution) TotalDistance() float64 {
	s.refresh()
	return s.distance
}

// CapacityExcess sums the overload of every route.
func (s *Solution) CapacityExcess() int {
	s.refresh()
	return s.excess
}

// Lateness sums how late each late visit starts.
func (s *Solution) Lateness() float64 {
	s.refresh()
	return s.late
}

func (s *Solution) Unassigned() int {
	s.refresh()
	return s.unassigned
}

func (s *Solution) CapacityFeasible() bool { return s.CapacityExcess() == 0 }
func (s *Solution) TimeFeasible() bool     { return s.Lateness() == 0 }

// Feasible requires every customer served once, within capacity and on time.
func (s *Solution) Feasible() bool {
	return s.Unassigned() == 0 && s.CapacityFeasible() && s.TimeFeasible()
}

// Loads lists the load of every non-empty route.
func (s *Solution) Loads() []int {
	var out []int
	for _, r := range s.routes {
		if len(r) <= 2 {
			continue
		}
		load := 0
		for _, c := range r[1 : len(r)-1] {
			load += s.inst.nodes[c].Demand
		}
		out = append(out, load)
	}
	return out
}

// missing lists the customers no route visits.
func (s *Solution) missing() []int {
	seen := make([]bool, s.inst.NumNodes())
	for _, r := range s.routes {
		for _, c := range r {
			seen[c] = true
		}
	}
	var out []int
	for c := 1; c < len(seen); c++ {
		if !seen[c] {
			out = append(out, c)
		}
	}
	return out
}

type position struct{ r, p int }

// positions indexes every routed customer.
func (s *Solution) positions() []position {
	out := make([]position, s.inst.NumNodes())
	for i := range out {
		out[i] = position{-1, -1}
	}
	for r, route := range s.routes {
		for p := 1; p < len(route)-1; p++ {
			out[route[p]] = position{r, p}
		}
	}
	return out
}

func (s *Solution) Clone() *Solution {
	c := *s
	c.routes = make([][]int, len(s.routes))
	for i, r := range s.routes {
		c.routes[i] = append([]int(nil), r...)
	}
	return &c
}

// canonical orders the non-empty routes by first customer so that route
// order does not matter.
func (s *Solution) canonical() [][]int {
	out := s.Routes()
	sort.Slice(out, func(i, j int) bool { return out[i][1] < out[j][1] })
	return out
}

func (s *Solution) Equal(o *Solution) bool {
	if o == nil {
		return false
	}
	a, b := s.canonical(), o.canonical()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for k := range a[i] {
			if a[i][k] != b[i][k] {
				return false
			}
		}
	}
	return true
}

func (s *Solution) Hash() uint64 { return problem.HashInts(s.canonical()...) }

func (s *Solution) String() string {
	return fmt.Sprintf("vrptw.Solution{vehicles=%d distance=%.2f excess=%d late=%.2f unassigned=%d}",
		s.NumVehicles(), s.TotalDistance(), s.CapacityExcess(), s.Lateness(), s.Unassigned())
}
