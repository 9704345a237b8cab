package kbp

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
)

// Solution is an item selection. Totals are cached and recomputed after a
// mutation.
type Solution struct {
	inst *Instance
	sel  *bitset.BitSet

	dirty  bool
	value  int
	weight int
}

// NewSolution returns the empty selection.
func NewSolution(inst *Instance) *Solution {
	return &Solution{inst: inst, sel: bitset.New(uint(inst.N()))}
}

func FromItems(inst *Instance, items []int) (*Solution, error) {
	s := NewSolution(inst)
	for _, i := range items {
		if i < 0 || i >= inst.N() {
			return nil, fmt.Errorf("item %d outside [0,%d)", i, inst.N())
		}
		s.sel.Set(uint(i))
	}
	s.dirty = true
	return s, nil
}

func (s *Solution) Instance() *Instance { return s.inst }

func (s *Solution) Has(i int) bool { return s.sel.Test(uint(i)) }

// Flip toggles item i.
func (s *Solution) Flip(i int) {
	if s.sel.Test(uint(i)) {
		s.Remove(i)
		return
	}
	s.Add(i)
}

func (s *Solution) Add(i int) {
	if s.sel.Test(uint(i)) {
		return
	}
	s.sel.Set(uint(i))
	s.dirty = true
}

func (s *Solution) Remove(i int) {
	if !s.sel.Test(uint(i)) {
		return
	}
	s.sel.Clear(uint(i))
	s.dirty = true
}

// Items lists the selected items in increasing order.
func (s *Solution) Items() []int {
	out := make([]int, 0, s.sel.Count())
	for i, ok := s.sel.NextSet(0); ok; i, ok = s.sel.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

func (s *Solution) Count() int { return int(s.sel.Count()) }

func (s *Solution) refresh() {
	if !s.dirty {
		return
	}
	s.value, s.weight = 0, 0
	for i, ok := s.sel.NextSet(0); ok; i, ok = s.sel.NextSet(i + 1) {
		s.value += s.inst.values[i]
		s.weight += s.inst.weights[i]
	}
	s.dirty = false
}

func (s *Solution) TotalValue() int {
	s.refresh()
	return s.value
}

func (s *Solution) TotalWeight() int {
	s.refresh()
	return s.weight
}

// Excess is the weight above capacity, 0 when the selection fits.
func (s *Solution) Excess() int {
	return max(0, s.TotalWeight()-s.inst.capacity)
}

// Residual is the capacity left; negative when over.
func (s *Solution) Residual() int {
	return s.inst.capacity - s.TotalWeight()
}

func (s *Solution) Feasible() bool { return s.Excess() == 0 }

func (s *Solution) Clone() *Solution {
	c := *s
	c.sel = s.sel.Clone()
	return &c
}

func (s *Solution) Equal(o *Solution) bool {
	return o != nil && s.sel.Equal(o.sel)
}

func (s *Solution) Hash() uint64 { return problem.HashInts(s.Items()) }

func (s *Solution) String() string {
	return fmt.Sprintf("kbp.Solution{items=%d value=%d weight=%d/%d}", s.Count(), s.TotalValue(), s.TotalWeight(), s.inst.capacity)
}
