package search

import (
	"math"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
)

// vec is a toy domain: integer vectors in [0,9]^n scored by their L1
// distance to a target. bad marks a hard-constraint violation.
type vec struct {
	x   []int
	bad bool
}

func (v *vec) Clone() *vec {
	return &vec{x: append([]int(nil), v.x...), bad: v.bad}
}

func (v *vec) Feasible() bool { return !v.bad }

func (v *vec) Equal(o *vec) bool {
	if len(v.x) != len(o.x) || v.bad != o.bad {
		return false
	}
	for i := range v.x {
		if v.x[i] != o.x[i] {
			return false
		}
	}
	return true
}

func (v *vec) Hash() uint64 {
	var h uint64 = 1469598103934665603
	for _, e := range v.x {
		h = (h ^ uint64(e)) * 1099511628211
	}
	return h
}

type vecEval struct {
	target    []int
	rejectAll bool
}

func (e *vecEval) Evaluate(v *vec) Fitness {
	var d float64
	for i, x := range v.x {
		d += math.Abs(float64(x - e.target[i]))
	}
	return Fitness{Primary: d, Feasible: !v.bad && !e.rejectAll}
}

func (e *vecEval) Objective() Objective { return Objective{Sense: Minimize} }

type zeroInit struct{ n int }

func (zeroInit) Name() string { return "Zero" }
func (z zeroInit) Construct(*Context) *vec {
	return &vec{x: make([]int, z.n)}
}

type randomInit struct{ n int }

func (randomInit) Name() string     { return "Random" }
func (randomInit) Randomized() bool { return true }
func (r randomInit) Construct(ec *Context) *vec {
	v := &vec{x: make([]int, r.n)}
	for i := range v.x {
		v.x[i] = ec.Intn(10)
	}
	return v
}

// stepper moves every coordinate one unit towards the target.
type stepper struct{ target []int }

func (stepper) Name() string { return "Step" }
func (s stepper) Improve(v *vec, _ *Context) *vec {
	out := v.Clone()
	for i := range out.x {
		switch {
		case out.x[i] < s.target[i]:
			out.x[i]++
		case out.x[i] > s.target[i]:
			out.x[i]--
		}
	}
	return out
}

type noop struct{}

func (noop) Name() string                    { return "Noop" }
func (noop) Improve(v *vec, _ *Context) *vec { return v }

type kick struct{}

func (kick) Name() string { return "Kick" }
func (kick) Perturb(v *vec, ec *Context, strength float64) *vec {
	out := v.Clone()
	k := int(math.Round(strength * float64(len(out.x))))
	if k < 1 {
		k = 1
	}
	for i := 0; i < k; i++ {
		out.x[ec.Intn(len(out.x))] = ec.Intn(10)
	}
	return out
}

type spoil struct{}

func (spoil) Name() string { return "Spoil" }
func (spoil) Perturb(v *vec, _ *Context, _ float64) *vec {
	out := v.Clone()
	out.bad = true
	return out
}

type fix struct{}

func (fix) Name() string { return "Fix" }
func (fix) Repair(v *vec, _ *Context) *vec {
	if !v.bad {
		return v
	}
	out := v.Clone()
	out.bad = false
	return out
}

type broken struct{}

func (broken) Name() string                   { return "Broken" }
func (broken) Repair(v *vec, _ *Context) *vec { return v }

var toyTarget = []int{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8}

func toyLibrary() *Library[*vec] {
	n := len(toyTarget)
	return NewLibrary[*vec]().
		AddConstructive(zeroInit{n: n}).
		AddConstructive(randomInit{n: n}).
		AddImprovement(stepper{target: toyTarget}).
		AddImprovement(noop{}).
		AddPerturbation(kick{}).
		AddPerturbation(spoil{}).
		AddRepair(fix{}).
		AddRepair(broken{})
}

func toyEngine(cfg Config) (*Engine[*vec], error) {
	return NewEngine(toyLibrary(), &vecEval{target: toyTarget}, cfg)
}

func ilsTree() *grammar.Tree {
	return grammar.Build("Random", grammar.Improve("Noop"),
		grammar.Step{Perturbation: "Kick", Strength: 0.2, Local: grammar.Improve("Step")})
}
