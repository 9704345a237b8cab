package gcp

import (
	"sort"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

// reduceConflicts recolours, in vertex order, every uncoloured or
// conflicting vertex with the existing colour that has fewest clashes, or a
// new colour when that still clashes. Each move strictly lowers the
// penalised objective. It reports whether anything changed.
func reduceConflicts(s *Solution) bool {
	inst := s.inst
	k := s.MaxColor()
	count := make([]int, k+2)
	changed := false
	for v := 0; v < inst.n; v++ {
		cur := s.colors[v]
		clashes := s.conflictsAt(v)
		if cur != 0 && clashes == 0 {
			continue
		}
		for c := range count {
			count[c] = 0
		}
		for _, u := range inst.adj[v] {
			if c := s.colors[u]; c > 0 && c <= k {
				count[c]++
			}
		}
		best, bestCount := 0, -1
		for c := 1; c <= k; c++ {
			if c == cur {
				continue
			}
			if bestCount < 0 || count[c] < bestCount {
				best, bestCount = c, count[c]
			}
		}
		switch {
		case best != 0 && bestCount == 0:
		case cur != 0 && best != 0 && bestCount < clashes:
		default:
			k++
			best = k
			count = append(count, 0)
		}
		s.colors[v] = best
		s.dirty = true
		changed = true
	}
	if changed {
		s.compact()
	}
	return changed
}

// classOrder lists colours by class size, smallest first.
func classOrder(s *Solution) []int {
	classes := s.Classes()
	order := make([]int, 0, len(classes))
	for c := 1; c < len(classes); c++ {
		if len(classes[c]) > 0 {
			order = append(order, c)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(classes[order[a]]) < len(classes[order[b]])
	})
	return order
}

// directMove moves v to the first other colour none of its neighbours use.
func directMove(s *Solution, v, from, k int) bool {
	for d := 1; d <= k; d++ {
		if d == from {
			continue
		}
		free := true
		for _, u := range s.inst.adj[v] {
			if s.colors[u] == d {
				free = false
				break
			}
		}
		if free {
			s.colors[v] = d
			s.dirty = true
			return true
		}
	}
	return false
}

// eliminateClass tries to empty one colour class, smallest first. Vertices
// move only to colours free around them, optionally after a Kempe chain
// swap. A class that cannot be fully emptied is restored.
func eliminateClass(s *Solution, kempe bool, ec *search.Context) bool {
	k := s.MaxColor()
	if k <= 1 {
		return false
	}
	classes := s.Classes()
	for _, c := range classOrder(s) {
		if ec.Exhausted() {
			return false
		}
		saved := append([]int(nil), s.colors...)
		ok := true
		for _, v := range classes[c] {
			if directMove(s, v, c, k) {
				continue
			}
			if kempe && kempeMove(s, v, c, k) {
				continue
			}
			ok = false
			break
		}
		if ok {
			s.compact()
			return true
		}
		copy(s.colors, saved)
		s.dirty = true
	}
	return false
}

// kempeMove frees some colour d for v (coloured from) by swapping d and e
// on the Kempe chains through v's d-neighbours, provided none of v's
// e-neighbours lie on those chains.
func kempeMove(s *Solution, v, from, k int) bool {
	inst := s.inst
	mark := make([]bool, inst.n)
	for d := 1; d <= k; d++ {
		if d == from {
			continue
		}
		for e := 1; e <= k; e++ {
			if e == from || e == d {
				continue
			}
			for i := range mark {
				mark[i] = false
			}
			var chain, queue []int
			for _, u := range inst.adj[v] {
				if s.colors[u] == d && !mark[u] {
					mark[u] = true
					queue = append(queue, u)
				}
			}
			for len(queue) > 0 {
				x := queue[0]
				queue = queue[1:]
				chain = append(chain, x)
				for _, y := range inst.adj[x] {
					if mark[y] || y == v {
						continue
					}
					if cy := s.colors[y]; cy == d || cy == e {
						mark[y] = true
						queue = append(queue, y)
					}
				}
			}
			blocked := false
			for _, u := range inst.adj[v] {
				if s.colors[u] == e && mark[u] {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}
			for _, x := range chain {
				if s.colors[x] == d {
					s.colors[x] = e
				} else {
					s.colors[x] = d
				}
			}
			s.colors[v] = d
			s.dirty = true
			return true
		}
	}
	return false
}

// singleRecolor fixes conflicts one vertex at a time, then empties colour
// classes by moving single vertices.
type singleRecolor struct {
	inst *Instance
	opts Options
}

func (singleRecolor) Name() string { return "SingleRecolor" }

func (o singleRecolor) Improve(s *Solution, ec *search.Context) *Solution {
	out := s.Clone()
	changed := false
	for pass := 0; pass < o.opts.MaxPasses && !ec.Exhausted(); pass++ {
		moved := reduceConflicts(out)
		if out.NumConflicts() == 0 && eliminateClass(out, false, ec) {
			moved = true
		}
		if !moved {
			break
		}
		changed = true
	}
	if !changed {
		return s
	}
	return out
}

// kempeChain is singleRecolor with Kempe chain interchanges when a vertex
// has no free colour.
type kempeChain struct {
	inst *Instance
	opts Options
}

func (kempeChain) Name() string { return "KempeChain" }

func (o kempeChain) Improve(s *Solution, ec *search.Context) *Solution {
	out := s.Clone()
	changed := false
	for pass := 0; pass < o.opts.MaxPasses && !ec.Exhausted(); pass++ {
		moved := reduceConflicts(out)
		if out.NumConflicts() == 0 && eliminateClass(out, true, ec) {
			moved = true
		}
		if !moved {
			break
		}
		changed = true
	}
	if !changed {
		return s
	}
	return out
}

// tabuRecolor is TabuCol: starting from a proper k-colouring it merges the
// smallest class away and runs tabu search on the conflicts of the k-1
// colouring, repeating while it succeeds.
type tabuRecolor struct {
	inst *Instance
	opts Options
}

func (tabuRecolor) Name() string { return "TabuRecolor" }

func (o tabuRecolor) Improve(s *Solution, ec *search.Context) *Solution {
	if !s.Feasible() {
		out := s.Clone()
		if reduceConflicts(out) {
			return out
		}
		return s
	}
	best := s
	for best.NumColors() > 1 && !ec.Exhausted() {
		next, ok := o.tabucol(best, ec)
		if !ok {
			break
		}
		best = next
	}
	return best
}

func (o tabuRecolor) iterations() int {
	if o.opts.TabuIterations > 0 {
		return o.opts.TabuIterations
	}
	return min(20*o.inst.n, 10000)
}

// tabucol looks for a proper colouring with one colour fewer than s.
func (o tabuRecolor) tabucol(s *Solution, ec *search.Context) (*Solution, bool) {
	inst := o.inst
	n := inst.n
	cur := s.Clone()
	cur.compact()
	k := cur.MaxColor() - 1

	// Drop the smallest class onto the colour with fewest clashes.
	drop := classOrder(cur)[0]
	var dropped []int
	for v, c := range cur.colors {
		switch {
		case c == drop:
			cur.colors[v] = 0
			dropped = append(dropped, v)
		case c > drop:
			cur.colors[v] = c - 1
		}
	}
	gamma := make([][]int, n)
	for v := range gamma {
		gamma[v] = make([]int, k+1)
	}
	for v := 0; v < n; v++ {
		for _, u := range inst.adj[v] {
			if c := cur.colors[u]; c > 0 {
				gamma[v][c]++
			}
		}
	}
	for _, v := range dropped {
		bc := 1
		for c := 2; c <= k; c++ {
			if gamma[v][c] < gamma[v][bc] {
				bc = c
			}
		}
		cur.colors[v] = bc
		for _, u := range inst.adj[v] {
			gamma[u][bc]++
		}
	}
	cur.dirty = true

	conflicts := 0
	for _, e := range inst.edges {
		if cur.colors[e.U] == cur.colors[e.V] {
			conflicts++
		}
	}
	bestConflicts := conflicts
	tenure := search.TabuTenure(n)
	tabu := search.NewTabuList(n * tenure)
	maxIter := o.iterations()

	for iter := 0; iter < maxIter && conflicts > 0; iter++ {
		if ec.Exhausted() {
			return nil, false
		}
		mv, mc, md := -1, 0, 0
		for v := 0; v < n; v++ {
			cv := cur.colors[v]
			if gamma[v][cv] == 0 {
				continue
			}
			for c := 1; c <= k; c++ {
				if c == cv {
					continue
				}
				delta := gamma[v][c] - gamma[v][cv]
				aspiration := conflicts+delta < bestConflicts
				if tabu.IsTabu(search.MoveKey(v, c, 0), iter) && !aspiration {
					continue
				}
				if mv < 0 || delta < md {
					mv, mc, md = v, c, delta
				}
			}
		}
		if mv < 0 {
			continue
		}
		old := cur.colors[mv]
		cur.colors[mv] = mc
		for _, u := range inst.adj[mv] {
			gamma[u][old]--
			gamma[u][mc]++
		}
		conflicts += md
		tabu.Add(search.MoveKey(mv, old, 0), iter+tenure)
		if conflicts < bestConflicts {
			bestConflicts = conflicts
		}
	}
	cur.dirty = true
	if conflicts != 0 {
		return nil, false
	}
	return cur, true
}
