// Package gcp is the graph colouring domain: instances, colourings, their
// evaluator and the operator library the grammar draws from.
package gcp

import (
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
)

// Graphs up to this many vertices get an adjacency bit matrix.
const matrixLimit = 4096

// Edge is stored 0-based with U < V.
type Edge struct {
	U, V int
}

// Instance is an undirected simple graph. It is read-only after NewInstance.
type Instance struct {
	name   string
	n      int
	edges  []Edge
	adj    [][]int
	degree []int
	matrix *bitset.BitSet
	origin int
	chi    int
}

type instanceConfig struct {
	origin int
	chi    int
}

type InstanceOption func(*instanceConfig)

// WithOrigin fixes the vertex numbering of the input edges (0 or 1) instead
// of detecting it.
func WithOrigin(origin int) InstanceOption {
	return func(c *instanceConfig) { c.origin = origin }
}

// WithChromatic records the known chromatic number.
func WithChromatic(k int) InstanceOption {
	return func(c *instanceConfig) { c.chi = k }
}

// NewInstance normalises edges to 0-based pairs with U < V and drops
// duplicates. Without WithOrigin the numbering is 0-based when some edge
// touches vertex 0 and 1-based otherwise.
func NewInstance(name string, n int, edges []Edge, opts ...InstanceOption) (*Instance, error) {
	cfg := instanceConfig{origin: -1}
	for _, o := range opts {
		o(&cfg)
	}
	if n <= 0 {
		return nil, problem.Malformed("graph %q: vertex count must be positive (got %d)", name, n)
	}
	if cfg.chi < 0 || cfg.chi > n {
		return nil, problem.Malformed("graph %q: chromatic number %d outside [0,%d]", name, cfg.chi, n)
	}
	origin := cfg.origin
	if origin < 0 {
		origin = 1
		for _, e := range edges {
			if e.U == 0 || e.V == 0 {
				origin = 0
				break
			}
		}
	}
	if origin != 0 && origin != 1 {
		return nil, problem.Malformed("graph %q: vertex origin must be 0 or 1 (got %d)", name, origin)
	}

	norm := make([]Edge, 0, len(edges))
	for _, e := range edges {
		u, v := e.U-origin, e.V-origin
		if u < 0 || u >= n || v < 0 || v >= n {
			return nil, problem.Malformed("graph %q: edge (%d,%d) outside %d vertices", name, e.U, e.V, n)
		}
		if u == v {
			return nil, problem.Malformed("graph %q: self loop on vertex %d", name, e.U)
		}
		if u > v {
			u, v = v, u
		}
		norm = append(norm, Edge{U: u, V: v})
	}
	sort.Slice(norm, func(i, j int) bool {
		if norm[i].U != norm[j].U {
			return norm[i].U < norm[j].U
		}
		return norm[i].V < norm[j].V
	})
	uniq := norm[:0]
	for i, e := range norm {
		if i > 0 && e == norm[i-1] {
			continue
		}
		uniq = append(uniq, e)
	}

	inst := &Instance{
		name:   name,
		n:      n,
		edges:  uniq,
		adj:    make([][]int, n),
		degree: make([]int, n),
		origin: origin,
		chi:    cfg.chi,
	}
	for _, e := range uniq {
		inst.adj[e.U] = append(inst.adj[e.U], e.V)
		inst.adj[e.V] = append(inst.adj[e.V], e.U)
	}
	for v := range inst.adj {
		sort.Ints(inst.adj[v])
		inst.degree[v] = len(inst.adj[v])
	}
	if n <= matrixLimit {
		inst.matrix = bitset.New(uint(n * n))
		for _, e := range uniq {
			inst.matrix.Set(uint(e.U*n + e.V))
			inst.matrix.Set(uint(e.V*n + e.U))
		}
	}
	return inst, nil
}

func (g *Instance) Domain() problem.Domain { return problem.GCP }
func (g *Instance) Name() string           { return g.name }
func (g *Instance) Size() int              { return g.n }

// KnownOptimum is the chromatic number when it was supplied.
func (g *Instance) KnownOptimum() (float64, bool) {
	if g.chi == 0 {
		return 0, false
	}
	return float64(g.chi), true
}

func (g *Instance) N() int { return g.n }

// Edges returns the normalised edge list; callers must not modify it.
func (g *Instance) Edges() []Edge { return g.edges }

func (g *Instance) NumEdges() int { return len(g.edges) }

// Neighbors returns the sorted adjacency list of v; callers must not modify it.
func (g *Instance) Neighbors(v int) []int { return g.adj[v] }

func (g *Instance) Degree(v int) int { return g.degree[v] }

// Origin is the numbering the input used: 0 or 1.
func (g *Instance) Origin() int { return g.origin }

func (g *Instance) Chromatic() (int, bool) { return g.chi, g.chi > 0 }

func (g *Instance) MaxDegree() int {
	m := 0
	for _, d := range g.degree {
		if d > m {
			m = d
		}
	}
	return m
}

func (g *Instance) Density() float64 {
	if g.n < 2 {
		return 0
	}
	return 2 * float64(len(g.edges)) / float64(g.n*(g.n-1))
}

func (g *Instance) IsEdge(u, v int) bool {
	if u == v || u < 0 || v < 0 || u >= g.n || v >= g.n {
		return false
	}
	if g.matrix != nil {
		return g.matrix.Test(uint(u*g.n + v))
	}
	nb := g.adj[u]
	i := sort.SearchInts(nb, v)
	return i < len(nb) && nb[i] == v
}

// IsFeasible reports whether colors is a complete proper colouring.
func (g *Instance) IsFeasible(colors []int) bool {
	if len(colors) != g.n {
		return false
	}
	for _, c := range colors {
		if c <= 0 {
			return false
		}
	}
	for _, e := range g.edges {
		if colors[e.U] == colors[e.V] {
			return false
		}
	}
	return true
}
