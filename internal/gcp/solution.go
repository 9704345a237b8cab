package gcp

import (
	"fmt"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
)

// Solution is a colouring. Colours are 1-based; 0 marks an uncoloured vertex
// and only appears transiently inside operators.
type Solution struct {
	inst   *Instance
	colors []int

	dirty     bool
	numColors int
	maxColor  int
	conflicts int
	uncolored int
}

// NewSolution returns the empty colouring of inst.
func NewSolution(inst *Instance) *Solution {
	return &Solution{inst: inst, colors: make([]int, inst.n), dirty: true}
}

func FromColors(inst *Instance, colors []int) (*Solution, error) {
	if len(colors) != inst.n {
		return nil, fmt.Errorf("colouring has %d entries for %d vertices", len(colors), inst.n)
	}
	for v, c := range colors {
		if c < 0 {
			return nil, fmt.Errorf("vertex %d has negative colour %d", v, c)
		}
	}
	return &Solution{inst: inst, colors: append([]int(nil), colors...), dirty: true}, nil
}

func (s *Solution) Instance() *Instance { return s.inst }

func (s *Solution) Color(v int) int { return s.colors[v] }

func (s *Solution) Colors() []int { return append([]int(nil), s.colors...) }

// Recolor sets the colour of v; 0 uncolours it.
func (s *Solution) Recolor(v, c int) {
	s.colors[v] = c
	s.dirty = true
}

func (s *Solution) refresh() {
	if !s.dirty {
		return
	}
	s.maxColor, s.uncolored = 0, 0
	for _, c := range s.colors {
		if c == 0 {
			s.uncolored++
		}
		if c > s.maxColor {
			s.maxColor = c
		}
	}
	used := make([]bool, s.maxColor+1)
	s.numColors = 0
	for _, c := range s.colors {
		if c > 0 && !used[c] {
			used[c] = true
			s.numColors++
		}
	}
	s.conflicts = 0
	for _, e := range s.inst.edges {
		if c := s.colors[e.U]; c > 0 && c == s.colors[e.V] {
			s.conflicts++
		}
	}
	s.dirty = false
}

// NumColors counts distinct colours in use.
func (s *Solution) NumColors() int {
	s.refresh()
	return s.numColors
}

// MaxColor is the largest colour in use. It equals NumColors after compact.
func (s *Solution) MaxColor() int {
	s.refresh()
	return s.maxColor
}

// NumConflicts counts edges whose endpoints share a colour.
func (s *Solution) NumConflicts() int {
	s.refresh()
	return s.conflicts
}

func (s *Solution) Uncolored() int {
	s.refresh()
	return s.uncolored
}

func (s *Solution) Feasible() bool {
	s.refresh()
	return s.conflicts == 0 && s.uncolored == 0
}

func (s *Solution) Clone() *Solution {
	c := *s
	c.colors = append([]int(nil), s.colors...)
	return &c
}

// Classes groups vertices by colour; index 0 holds the uncoloured ones.
func (s *Solution) Classes() [][]int {
	out := make([][]int, s.MaxColor()+1)
	for v, c := range s.colors {
		out[c] = append(out[c], v)
	}
	return out
}

// conflictsAt counts neighbours of v sharing its colour.
func (s *Solution) conflictsAt(v int) int {
	c := s.colors[v]
	if c == 0 {
		return 0
	}
	n := 0
	for _, u := range s.inst.adj[v] {
		if s.colors[u] == c {
			n++
		}
	}
	return n
}

// compact renumbers the colours in use to 1..k keeping their order.
func (s *Solution) compact() {
	k := s.MaxColor()
	if s.numColors == k {
		return
	}
	remap := make([]int, k+1)
	next := 0
	used := make([]bool, k+1)
	for _, c := range s.colors {
		used[c] = true
	}
	for c := 1; c <= k; c++ {
		if used[c] {
			next++
			remap[c] = next
		}
	}
	for v, c := range s.colors {
		s.colors[v] = remap[c]
	}
	s.dirty = true
}

// Equal compares the colour tuples. Colourings that differ only by a
// renaming of colours are different solutions.
func (s *Solution) Equal(o *Solution) bool {
	if o == nil || len(s.colors) != len(o.colors) {
		return false
	}
	for i := range s.colors {
		if s.colors[i] != o.colors[i] {
			return false
		}
	}
	return true
}

func (s *Solution) Hash() uint64 { return problem.HashInts(s.colors) }

func (s *Solution) String() string {
	return fmt.Sprintf("gcp.Solution{colors=%d conflicts=%d uncolored=%d}", s.NumColors(), s.NumConflicts(), s.Uncolored())
}
