package grammar

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

var ErrInvalidDepth = errors.New("invalid depth bounds")

// Terminals are the operator names a grammar may emit.
type Terminals struct {
	Constructives []string `json:"constructives" yaml:"constructives"`
	Improvements  []string `json:"improvements" yaml:"improvements"`
	Perturbations []string `json:"perturbations" yaml:"perturbations"`
}

type Grammar struct {
	terms     Terminals
	known     map[Category]map[string]bool
	recurse   float64
	vnd       float64
	maxVND    int
	strengths []float64
}

type Option func(*Grammar)

// WithRecurseProbability sets the chance of expanding <SearchLoop> again
// once the minimum depth is met.
func WithRecurseProbability(p float64) Option { return func(g *Grammar) { g.recurse = p } }

// WithVNDProbability sets the chance of a VND local instead of a single
// improvement.
func WithVNDProbability(p float64) Option { return func(g *Grammar) { g.vnd = p } }

func WithMaxVND(n int) Option { return func(g *Grammar) { g.maxVND = n } }

// WithStrengths sets the grid perturbation strengths are drawn from.
func WithStrengths(s ...float64) Option {
	return func(g *Grammar) { g.strengths = append([]float64(nil), s...) }
}

func New(t Terminals, opts ...Option) (*Grammar, error) {
	g := &Grammar{
		terms: Terminals{
			Constructives: sortedCopy(t.Constructives),
			Improvements:  sortedCopy(t.Improvements),
			Perturbations: sortedCopy(t.Perturbations),
		},
		recurse:   0.5,
		vnd:       0.3,
		maxVND:    3,
		strengths: []float64{0.1, 0.2, 0.3, 0.4, 0.5},
	}
	for _, o := range opts {
		o(g)
	}
	if len(g.terms.Constructives) == 0 || len(g.terms.Improvements) == 0 {
		return nil, fmt.Errorf("grammar needs at least one constructive and one improvement")
	}
	if g.recurse < 0 || g.recurse > 1 || g.vnd < 0 || g.vnd > 1 {
		return nil, fmt.Errorf("grammar probabilities must lie in [0,1]")
	}
	if g.maxVND < 2 {
		g.maxVND = 2
	}
	if len(g.strengths) == 0 {
		return nil, fmt.Errorf("grammar needs at least one perturbation strength")
	}
	for _, s := range g.strengths {
		if s < 0 || s > 1 {
			return nil, fmt.Errorf("perturbation strength %g outside [0,1]", s)
		}
	}
	g.known = map[Category]map[string]bool{
		Constructive: set(g.terms.Constructives),
		Improvement:  set(g.terms.Improvements),
		Perturbation: set(g.terms.Perturbations),
	}
	return g, nil
}

func (g *Grammar) Terminals() Terminals { return g.terms }

// Generate derives a tree whose search loop has between minDepth and maxDepth
// levels. The result depends only on seed and the grammar's terminals and
// options.
func (g *Grammar) Generate(seed int64, minDepth, maxDepth int) (*Tree, error) {
	if minDepth < 1 || maxDepth < minDepth {
		return nil, fmt.Errorf("%w: min %d, max %d", ErrInvalidDepth, minDepth, maxDepth)
	}
	if len(g.terms.Perturbations) == 0 {
		if minDepth > 1 {
			return nil, fmt.Errorf("%w: depth %d needs perturbations", ErrInvalidDepth, minDepth)
		}
		maxDepth = 1
	}
	rng := rand.New(rand.NewSource(seed))
	c := &Leaf{Category: Constructive, Name: pick(rng, g.terms.Constructives)}
	return &Tree{
		Root:    &Seq{Head: c, Tail: g.loop(rng, 1, minDepth, maxDepth)},
		Seed:    seed,
		Version: Version,
	}, nil
}

func (g *Grammar) loop(rng *rand.Rand, depth, minDepth, maxDepth int) Node {
	local := g.local(rng)
	more := depth < minDepth
	if !more && depth < maxDepth {
		more = rng.Float64() < g.recurse
	}
	if !more {
		return local
	}
	p := &Leaf{
		Category: Perturbation,
		Name:     pick(rng, g.terms.Perturbations),
		Strength: g.strengths[rng.Intn(len(g.strengths))],
	}
	return &Seq{Head: local, Tail: &Seq{Head: p, Tail: g.loop(rng, depth+1, minDepth, maxDepth)}}
}

func (g *Grammar) local(rng *rand.Rand) Node {
	imps := g.terms.Improvements
	if len(imps) >= 2 && rng.Float64() < g.vnd {
		hi := g.maxVND
		if hi > len(imps) {
			hi = len(imps)
		}
		k := 2 + rng.Intn(hi-1)
		perm := rng.Perm(len(imps))
		v := &VND{Steps: make([]*Leaf, k)}
		for i := 0; i < k; i++ {
			v.Steps[i] = &Leaf{Category: Improvement, Name: imps[perm[i]]}
		}
		return v
	}
	return &Leaf{Category: Improvement, Name: pick(rng, imps)}
}

// Validate checks structure and that every name is a known terminal.
func (g *Grammar) Validate(t *Tree) error {
	sh, err := Decompose(t)
	if err != nil {
		return err
	}
	if !g.known[Constructive][sh.Constructive] {
		return fmt.Errorf("%w: unknown constructive %q", ErrMalformedTree, sh.Constructive)
	}
	for _, l := range sh.Locals {
		for _, s := range l.Steps {
			if !g.known[Improvement][s] {
				return fmt.Errorf("%w: unknown improvement %q", ErrMalformedTree, s)
			}
		}
	}
	for _, p := range sh.Perturbations {
		if !g.known[Perturbation][p.Name] {
			return fmt.Errorf("%w: unknown perturbation %q", ErrMalformedTree, p.Name)
		}
	}
	return nil
}

func pick(rng *rand.Rand, names []string) string { return names[rng.Intn(len(names))] }

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func set(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
