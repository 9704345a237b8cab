package kbp

import "github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"

// randomFlip flips round(strength*N) distinct random items. The result may
// be overloaded.
type randomFlip struct{ inst *Instance }

func (randomFlip) Name() string { return "RandomFlip" }

func (o randomFlip) Perturb(s *Solution, ec *search.Context, strength float64) *Solution {
	out := s.Clone()
	n := o.inst.N()
	for _, i := range ec.Perm(n)[:search.Magnitude(strength, n)] {
		out.sel.Flip(uint(i))
	}
	out.dirty = true
	return out
}

// ruinRecreate drops round(strength*k) of the k selected items at random,
// then refills by ratio from the items that were not dropped.
type ruinRecreate struct{ inst *Instance }

func (ruinRecreate) Name() string { return "RuinRecreate" }

func (o ruinRecreate) Perturb(s *Solution, ec *search.Context, strength float64) *Solution {
	out := s.Clone()
	items := out.Items()
	if len(items) == 0 {
		fill(out, ec.Perm(o.inst.N()))
		return out
	}
	ec.Shuffle(items)
	dropped := make(map[int]bool)
	for _, i := range items[:search.Magnitude(strength, len(items))] {
		out.sel.Clear(uint(i))
		dropped[i] = true
	}
	out.dirty = true
	order := make([]int, 0, o.inst.N())
	for _, i := range o.inst.byRatio {
		if !dropped[i] {
			order = append(order, i)
		}
	}
	fill(out, order)
	return out
}
