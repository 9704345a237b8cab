// Package vrptw is the vehicle routing with time windows domain: Solomon
// style instances, route sets, the (vehicles, distance) evaluator and the
// operator library.
package vrptw

import (
	"math"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
)

// Instances up to this many nodes get a precomputed distance matrix.
const matrixLimit = 1500

// timeEps absorbs rounding in schedule arithmetic.
const timeEps = 1e-9

// Node is the depot (index 0) or a customer.
type Node struct {
	ID      int     `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Demand  int     `json:"demand"`
	Ready   float64 `json:"ready"`
	Due     float64 `json:"due"`
	Service float64 `json:"service"`
}

// Instance is read-only after NewInstance.
type Instance struct {
	name     string
	nodes    []Node
	capacity int
	vehicles int
	dist     []float64
	bksK     int
	bksD     float64
}

type InstanceOption func(*Instance)

// WithBestKnown records the best known solution: k vehicles, distance d.
func WithBestKnown(k int, d float64) InstanceOption {
	return func(in *Instance) { in.bksK, in.bksD = k, d }
}

// NewInstance validates nodes (depot first) and rejects customers that no
// single vehicle can serve on its own, since no route could then be
// feasible.
func NewInstance(name string, nodes []Node, capacity, vehicles int, opts ...InstanceOption) (*Instance, error) {
	if len(nodes) < 2 {
		return nil, problem.Malformed("vrptw %q: need a depot and at least one customer (got %d nodes)", name, len(nodes))
	}
	if capacity <= 0 {
		return nil, problem.Malformed("vrptw %q: capacity must be positive (got %d)", name, capacity)
	}
	if vehicles <= 0 {
		return nil, problem.Malformed("vrptw %q: fleet size must be positive (got %d)", name, vehicles)
	}
	in := &Instance{
		name:     name,
		nodes:    append([]Node(nil), nodes...),
		capacity: capacity,
		vehicles: vehicles,
	}
	for _, o := range opts {
		o(in)
	}
	if in.bksK < 0 || in.bksD < 0 {
		return nil, problem.Malformed("vrptw %q: negative best known solution (%d, %g)", name, in.bksK, in.bksD)
	}
	depot := in.nodes[0]
	if depot.Demand != 0 {
		return nil, problem.Malformed("vrptw %q: depot demand must be 0 (got %d)", name, depot.Demand)
	}
	n := len(in.nodes)
	if n <= matrixLimit {
		in.dist = make([]float64, n*n)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				d := in.euclid(i, j)
				in.dist[i*n+j], in.dist[j*n+i] = d, d
			}
		}
	}
	for i, c := range in.nodes {
		switch {
		case c.Ready > c.Due:
			return nil, problem.Malformed("vrptw %q: node %d has ready %g after due %g", name, i, c.Ready, c.Due)
		case c.Service < 0:
			return nil, problem.Malformed("vrptw %q: node %d has negative service time", name, i)
		case i == 0:
			continue
		case c.Demand <= 0:
			return nil, problem.Malformed("vrptw %q: customer %d has demand %d", name, i, c.Demand)
		case c.Demand > capacity:
			return nil, problem.Malformed("vrptw %q: customer %d demand %d exceeds capacity %d", name, i, c.Demand, capacity)
		}
		start := math.Max(depot.Ready+in.Distance(0, i), c.Ready)
		if start > c.Due+timeEps {
			return nil, problem.Malformed("vrptw %q: customer %d cannot be reached before %g", name, i, c.Due)
		}
		if start+c.Service+in.Distance(i, 0) > depot.Due+timeEps {
			return nil, problem.Malformed("vrptw %q: customer %d cannot be served and returned before the depot closes", name, i)
		}
	}
	return in, nil
}

func (in *Instance) euclid(i, j int) float64 {
	a, b := in.nodes[i], in.nodes[j]
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func (in *Instance) Domain() problem.Domain { return problem.VRPTW }
func (in *Instance) Name() string           { return in.name }

// Size is the number of customers.
func (in *Instance) Size() int { return len(in.nodes) - 1 }

// KnownOptimum is the best known distance.
func (in *Instance) KnownOptimum() (float64, bool) {
	if in.bksD == 0 {
		return 0, false
	}
	return in.bksD, true
}

// BestKnown is the best known (vehicles, distance) pair.
func (in *Instance) BestKnown() (int, float64, bool) {
	return in.bksK, in.bksD, in.bksD > 0
}

func (in *Instance) NumNodes() int { return len(in.nodes) }
func (in *Instance) Capacity() int { return in.capacity }

// Vehicles is the fleet size. It is reported, not enforced.
func (in *Instance) Vehicles() int { return in.vehicles }

func (in *Instance) Node(i int) Node { return in.nodes[i] }

// Nodes returns the node table; callers must not modify it.
func (in *Instance) Nodes() []Node { return in.nodes }

func (in *Instance) Distance(i, j int) float64 {
	if in.dist != nil {
		return in.dist[i*len(in.nodes)+j]
	}
	return in.euclid(i, j)
}

// routeEval summarises a route: travelled distance, load, and lateness
// summed over the visits that start after their due time.
type routeEval struct {
	dist float64
	load int
	late float64
}

func (e routeEval) violation(capacity int) float64 {
	return float64(max(0, e.load-capacity)) + e.late
}

// evalRoute simulates route, which starts and ends at the depot. Vehicles
// leave at the depot's ready time and wait for early windows.
func (in *Instance) evalRoute(route []int) routeEval {
	var e routeEval
	t := in.nodes[0].Ready
	for k := 1; k < len(route); k++ {
		prev, cur := route[k-1], route[k]
		d := in.Distance(prev, cur)
		e.dist += d
		node := in.nodes[cur]
		t = math.Max(t+in.nodes[prev].Service+d, node.Ready)
		if t > node.Due+timeEps {
			e.late += t - node.Due
		}
		e.load += node.Demand
	}
	return e
}

// IsRouteFeasible reports whether route (0, c1..ck, 0) respects capacity
// and every time window.
func (in *Instance) IsRouteFeasible(route []int) bool {
	if len(route) < 2 || route[0] != 0 || route[len(route)-1] != 0 {
		return false
	}
	e := in.evalRoute(route)
	return e.load <= in.capacity && e.late == 0
}
