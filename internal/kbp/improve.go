package kbp

import "github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"

// scorer mirrors the evaluator's penalised value so operators can rank
// moves from running totals.
type scorer struct {
	capacity int
	penalty  float64
}

func (sc scorer) score(value, weight int) float64 {
	if weight <= sc.capacity {
		return float64(value)
	}
	return float64(value) - sc.penalty*float64(weight-sc.capacity)
}

// admissible keeps a feasible selection feasible; an overloaded one may
// move anywhere.
func (sc scorer) admissible(curWeight, newWeight int) bool {
	return curWeight > sc.capacity || newWeight <= sc.capacity
}

// improves reports whether (v1,w1) is a strictly better admissible move
// from (v0,w0).
func (sc scorer) improves(v0, w0, v1, w1 int) bool {
	if !sc.admissible(w0, w1) {
		return false
	}
	if w0 > sc.capacity && w1 <= sc.capacity {
		return true
	}
	return sc.score(v1, w1) > sc.score(v0, w0)
}

// flipBest applies the best improving single flip until none is left.
type flipBest struct {
	inst *Instance
	sc   scorer
	opts Options
}

func (flipBest) Name() string { return "FlipBest" }

func (o flipBest) Improve(s *Solution, ec *search.Context) *Solution {
	inst := o.inst
	out := s.Clone()
	v, w := out.TotalValue(), out.TotalWeight()
	changed := false
	for pass := 0; pass < o.opts.MaxPasses && !ec.Exhausted(); pass++ {
		best, bv, bw := -1, v, w
		for i := 0; i < inst.N(); i++ {
			nv, nw := v+inst.values[i], w+inst.weights[i]
			if out.sel.Test(uint(i)) {
				nv, nw = v-inst.values[i], w-inst.weights[i]
			}
			if o.sc.improves(bv, bw, nv, nw) && o.sc.improves(v, w, nv, nw) {
				best, bv, bw = i, nv, nw
			}
		}
		if best < 0 {
			break
		}
		out.sel.Flip(uint(best))
		v, w = bv, bw
		changed = true
	}
	if !changed {
		return s
	}
	out.dirty = true
	return out
}

// oneExchange swaps one selected item for one unselected item, or adds a
// fitting item, taking the best improving move each pass.
type oneExchange struct {
	inst *Instance
	sc   scorer
	opts Options
}

func (oneExchange) Name() string { return "OneExchange" }

func (o oneExchange) Improve(s *Solution, ec *search.Context) *Solution {
	inst := o.inst
	out := s.Clone()
	v, w := out.TotalValue(), out.TotalWeight()
	changed := false
	for pass := 0; pass < o.opts.MaxPasses && !ec.Exhausted(); pass++ {
		in := out.Items()
		bi, bj, bv, bw := -1, -1, v, w
		for j := 0; j < inst.N(); j++ {
			if out.sel.Test(uint(j)) {
				continue
			}
			if nv, nw := v+inst.values[j], w+inst.weights[j]; o.sc.improves(bv, bw, nv, nw) && o.sc.improves(v, w, nv, nw) {
				bi, bj, bv, bw = -1, j, nv, nw
			}
			for _, i := range in {
				nv := v - inst.values[i] + inst.values[j]
				nw := w - inst.weights[i] + inst.weights[j]
				if o.sc.improves(bv, bw, nv, nw) && o.sc.improves(v, w, nv, nw) {
					bi, bj, bv, bw = i, j, nv, nw
				}
			}
		}
		if bj < 0 {
			break
		}
		if bi >= 0 {
			out.sel.Clear(uint(bi))
		}
		out.sel.Set(uint(bj))
		v, w = bv, bw
		changed = true
	}
	if !changed {
		return s
	}
	out.dirty = true
	return out
}

// tabuFlip is tabu search over single flips: it takes the best non-tabu
// admissible flip even when it worsens, forbids flipping the item back for
// ⌈√n⌉ iterations unless that beats the best seen, and returns the best
// selection visited.
type tabuFlip struct {
	inst *Instance
	sc   scorer
	opts Options
}

func (tabuFlip) Name() string { return "TabuFlip" }

func (o tabuFlip) iterations() int {
	if o.opts.TabuIterations > 0 {
		return o.opts.TabuIterations
	}
	return min(10*o.inst.N(), 5000)
}

func (o tabuFlip) Improve(s *Solution, ec *search.Context) *Solution {
	inst := o.inst
	n := inst.N()
	cur := s.Clone()
	v, w := cur.TotalValue(), cur.TotalWeight()
	var best *Solution
	bestV, bestW := v, w
	tenure := search.TabuTenure(n)
	tabu := search.NewTabuList(2 * tenure)
	maxIter := o.iterations()

	for iter := 0; iter < maxIter && !ec.Exhausted(); iter++ {
		mi, mv, mw := -1, 0, 0
		for i := 0; i < n; i++ {
			nv, nw := v+inst.values[i], w+inst.weights[i]
			if cur.sel.Test(uint(i)) {
				nv, nw = v-inst.values[i], w-inst.weights[i]
			}
			if !o.sc.admissible(w, nw) {
				continue
			}
			aspiration := o.sc.improves(bestV, bestW, nv, nw)
			if tabu.IsTabu(search.MoveKey(i, 0, 0), iter) && !aspiration {
				continue
			}
			if mi < 0 || o.sc.score(nv, nw) > o.sc.score(mv, mw) {
				mi, mv, mw = i, nv, nw
			}
		}
		if mi < 0 {
			break
		}
		cur.sel.Flip(uint(mi))
		v, w = mv, mw
		tabu.Add(search.MoveKey(mi, 0, 0), iter+tenure)
		if o.sc.improves(bestV, bestW, v, w) {
			best, bestV, bestW = cur.Clone(), v, w
		}
	}
	if best == nil {
		return s
	}
	best.dirty = true
	return best
}
