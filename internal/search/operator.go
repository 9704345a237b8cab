package search

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
)

// Solution is implemented by the pointer type of each domain's solution.
type Solution[S any] interface {
	Clone() S
	Feasible() bool
	Equal(other S) bool
	Hash() uint64
}

// Operators never mutate their input; they clone before changing anything.
// The problem instance is bound when the operator is built.

type Constructive[S any] interface {
	Name() string
	Construct(ec *Context) S
}

// Improvement must return a solution no worse than its input.
type Improvement[S any] interface {
	Name() string
	Improve(s S, ec *Context) S
}

// Perturbation may worsen s. Strength lies in [0,1].
type Perturbation[S any] interface {
	Name() string
	Perturb(s S, ec *Context, strength float64) S
}

// Repair must return a feasible solution.
type Repair[S any] interface {
	Name() string
	Repair(s S, ec *Context) S
}

// Randomized is implemented by constructives whose output depends on the
// RNG. Trees built on one use GRASP when they have no perturbation.
type Randomized interface {
	Randomized() bool
}

// Library maps operator names to operators of one domain.
type Library[S any] struct {
	constructives map[string]Constructive[S]
	improvements  map[string]Improvement[S]
	perturbations map[string]Perturbation[S]
	repairs       map[string]Repair[S]
	repair        string
	perturbation  string
}

func NewLibrary[S any]() *Library[S] {
	return &Library[S]{
		constructives: map[string]Constructive[S]{},
		improvements:  map[string]Improvement[S]{},
		perturbations: map[string]Perturbation[S]{},
		repairs:       map[string]Repair[S]{},
	}
}

func checkName(kind, name string, taken bool) {
	if name == "" {
		panic(fmt.Sprintf("search: %s operator without a name", kind))
	}
	if taken {
		panic(fmt.Sprintf("search: duplicate %s operator %q", kind, name))
	}
}

// The Add methods panic on a duplicate or empty name: libraries are built
// once from fixed operator sets.

func (l *Library[S]) AddConstructive(op Constructive[S]) *Library[S] {
	_, taken := l.constructives[op.Name()]
	checkName("constructive", op.Name(), taken)
	l.constructives[op.Name()] = op
	return l
}

func (l *Library[S]) AddImprovement(op Improvement[S]) *Library[S] {
	_, taken := l.improvements[op.Name()]
	checkName("improvement", op.Name(), taken)
	l.improvements[op.Name()] = op
	return l
}

// AddPerturbation registers op; the first one added becomes the default
// neighbour move for annealing.
func (l *Library[S]) AddPerturbation(op Perturbation[S]) *Library[S] {
	_, taken := l.perturbations[op.Name()]
	checkName("perturbation", op.Name(), taken)
	l.perturbations[op.Name()] = op
	if l.perturbation == "" {
		l.perturbation = op.Name()
	}
	return l
}

// AddRepair registers op; the first one added is the default repair until
// SetDefaultRepair says otherwise.
func (l *Library[S]) AddRepair(op Repair[S]) *Library[S] {
	_, taken := l.repairs[op.Name()]
	checkName("repair", op.Name(), taken)
	l.repairs[op.Name()] = op
	if l.repair == "" {
		l.repair = op.Name()
	}
	return l
}

func (l *Library[S]) SetDefaultRepair(name string) error {
	if _, ok := l.repairs[name]; !ok {
		return fmt.Errorf("unknown repair %q", name)
	}
	l.repair = name
	return nil
}

func (l *Library[S]) Constructive(name string) (Constructive[S], bool) {
	op, ok := l.constructives[name]
	return op, ok
}

func (l *Library[S]) Improvement(name string) (Improvement[S], bool) {
	op, ok := l.improvements[name]
	return op, ok
}

func (l *Library[S]) Perturbation(name string) (Perturbation[S], bool) {
	op, ok := l.perturbations[name]
	return op, ok
}

func (l *Library[S]) Repair(name string) (Repair[S], bool) {
	op, ok := l.repairs[name]
	return op, ok
}

func (l *Library[S]) DefaultRepair() Repair[S]             { return l.repairs[l.repair] }
func (l *Library[S]) DefaultPerturbation() Perturbation[S] { return l.perturbations[l.perturbation] }

func (l *Library[S]) Repairs() []string { return keys(l.repairs) }

// Terminals lists the names the grammar may emit for this library.
func (l *Library[S]) Terminals() grammar.Terminals {
	return grammar.Terminals{
		Constructives: keys(l.constructives),
		Improvements:  keys(l.improvements),
		Perturbations: keys(l.perturbations),
	}
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Plan is a tree resolved against a library: the loop L1;P1;L2;...;Pn-1;Ln.
type Plan[S any] struct {
	Constructive  Constructive[S]
	Locals        []Improvement[S]
	Perturbations []Perturbation[S]
	Strengths     []float64
	Repair        Repair[S]
	Randomized    bool
}

// Bind resolves every name of t. Unknown names wrap grammar.ErrMalformedTree.
// VND locals are built over eval.
func (l *Library[S]) Bind(t *grammar.Tree, eval Evaluator[S]) (*Plan[S], error) {
	sh, err := grammar.Decompose(t)
	if err != nil {
		return nil, err
	}
	p := &Plan[S]{Repair: l.DefaultRepair()}
	if l.repair == "" {
		return nil, fmt.Errorf("library has no repair operator")
	}
	c, ok := l.constructives[sh.Constructive]
	if !ok {
		return nil, fmt.Errorf("%w: unknown constructive %q", grammar.ErrMalformedTree, sh.Constructive)
	}
	p.Constructive = c
	if r, ok := c.(Randomized); ok {
		p.Randomized = r.Randomized()
	}
	for _, loc := range sh.Locals {
		steps := make([]Improvement[S], len(loc.Steps))
		for i, name := range loc.Steps {
			op, ok := l.improvements[name]
			if !ok {
				return nil, fmt.Errorf("%w: unknown improvement %q", grammar.ErrMalformedTree, name)
			}
			steps[i] = op
		}
		if loc.VND {
			p.Locals = append(p.Locals, NewVND(eval, steps...))
		} else {
			p.Locals = append(p.Locals, steps[0])
		}
	}
	for _, leaf := range sh.Perturbations {
		op, ok := l.perturbations[leaf.Name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown perturbation %q", grammar.ErrMalformedTree, leaf.Name)
		}
		p.Perturbations = append(p.Perturbations, op)
		p.Strengths = append(p.Strengths, leaf.Strength)
	}
	return p, nil
}

// VND applies its steps in order, going back to the first step after every
// strict improvement, until no step improves or the budget runs out.
type VND[S any] struct {
	steps []Improvement[S]
	eval  Evaluator[S]
}

func NewVND[S any](eval Evaluator[S], steps ...Improvement[S]) *VND[S] {
	return &VND[S]{steps: steps, eval: eval}
}

func (v *VND[S]) Name() string {
	names := make([]string, len(v.steps))
	for i, s := range v.steps {
		names[i] = s.Name()
	}
	return "VND(" + strings.Join(names, ",") + ")"
}

func (v *VND[S]) Improve(s S, ec *Context) S {
	obj := v.eval.Objective()
	cur := s
	curFit := Evaluate(ec, v.eval, cur)
	for k := 0; k < len(v.steps); {
		if ec.Exhausted() {
			break
		}
		cand := v.steps[k].Improve(cur, ec)
		candFit := Evaluate(ec, v.eval, cand)
		if obj.Better(candFit, curFit) {
			cur, curFit = cand, candFit
			k = 0
			continue
		}
		k++
	}
	return cur
}

// Magnitude converts a strength in [0,1] into a number of elements to
// touch out of n: round(strength*n), at least 1 and at most n.
func Magnitude(strength float64, n int) int {
	if n <= 0 {
		return 0
	}
	k := int(math.Round(strength * float64(n)))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return k
}
