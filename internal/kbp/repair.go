package kbp

import "github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"

// unload removes selected items by increasing ratio until s fits.
func unload(s *Solution) {
	inst := s.inst
	w := s.TotalWeight()
	for k := len(inst.byRatio) - 1; k >= 0 && w > inst.capacity; k-- {
		if i := inst.byRatio[k]; s.sel.Test(uint(i)) {
			s.sel.Clear(uint(i))
			w -= inst.weights[i]
			s.dirty = true
		}
	}
}

// removeWorst drops the least efficient items until the selection fits.
type removeWorst struct{ inst *Instance }

func (removeWorst) Name() string { return "RemoveWorst" }

func (o removeWorst) Repair(s *Solution, _ *search.Context) *Solution {
	if s.Feasible() {
		return s
	}
	out := s.Clone()
	unload(out)
	return out
}

// greedyComplete is removeWorst followed by a ratio-ordered refill of the
// freed capacity.
type greedyComplete struct{ inst *Instance }

func (greedyComplete) Name() string { return "GreedyComplete" }

func (o greedyComplete) Repair(s *Solution, _ *search.Context) *Solution {
	if s.Feasible() {
		return s
	}
	out := s.Clone()
	unload(out)
	fill(out, o.inst.byRatio)
	return out
}
