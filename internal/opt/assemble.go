package opt

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/gcp"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/kbp"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/vrptw"
)

// ErrStaleAlgorithm means a stored algorithm no longer regenerates to the
// same tree, usually after the grammar or the operator set changed.
var ErrStaleAlgorithm = errors.New("stored algorithm does not match its seed")

func Terminals(d problem.Domain) (grammar.Terminals, error) {
	switch d {
	case problem.GCP:
		return gcp.Terminals(), nil
	case problem.KBP:
		return kbp.Terminals(), nil
	case problem.VRPTW:
		return vrptw.Terminals(), nil
	}
	return grammar.Terminals{}, fmt.Errorf("unknown problem family %s", d)
}

func NewGrammar(d problem.Domain) (*grammar.Grammar, error) {
	t, err := Terminals(d)
	if err != nil {
		return nil, err
	}
	return grammar.New(t)
}

// PoolSpec says how many algorithms to assemble and from which seed.
type PoolSpec struct {
	Count    int
	BaseSeed int64
	MinDepth int
	MaxDepth int
	Retries  int
}

func AlgorithmID(d problem.Domain, i int) string {
	return fmt.Sprintf("%s-A%02d", d, i+1)
}

// Assemble builds spec.Count structurally distinct algorithms for family d.
func Assemble(d problem.Domain, spec PoolSpec, logger *slog.Logger) ([]Algorithm, error) {
	if spec.Count <= 0 {
		return nil, fmt.Errorf("algorithm count must be > 0 (got %d)", spec.Count)
	}
	g, err := NewGrammar(d)
	if err != nil {
		return nil, err
	}
	a := &grammar.Assembler{
		Grammar:  g,
		MinDepth: spec.MinDepth,
		MaxDepth: spec.MaxDepth,
		Retries:  spec.Retries,
		Logger:   logger,
	}
	trees, err := a.Pool(spec.BaseSeed, spec.Count)
	if err != nil {
		return nil, fmt.Errorf("assemble %s: %w", d, err)
	}
	out := make([]Algorithm, len(trees))
	for i, t := range trees {
		out[i] = Algorithm{ID: AlgorithmID(d, i), Domain: d, Tree: t}
	}
	return out, nil
}

// Regenerate rebuilds a stored algorithm from the seed its tree was
// generated with and checks it against the stored signature.
func Regenerate(d problem.Domain, id string, seed int64, minDepth, maxDepth int, signature string) (Algorithm, error) {
	g, err := NewGrammar(d)
	if err != nil {
		return Algorithm{}, err
	}
	t, err := g.Generate(seed, minDepth, maxDepth)
	if err != nil {
		return Algorithm{}, err
	}
	if err := g.Validate(t); err != nil {
		return Algorithm{}, fmt.Errorf("%s: %w", id, err)
	}
	if got := grammar.Signature(t); got != signature {
		return Algorithm{}, fmt.Errorf("%w: %s regenerates as %q, stored %q", ErrStaleAlgorithm, id, got, signature)
	}
	return Algorithm{ID: id, Domain: d, Tree: t}, nil
}
