package grammar

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Assembler turns seeds into valid trees. When a generated tree is rejected
// as malformed it tries seed+1, seed+2, ... up to Retries more times.
type Assembler struct {
	Grammar  *Grammar
	MinDepth int
	MaxDepth int
	Retries  int
	// Check adds constraints on top of Grammar.Validate. Returning an error
	// that wraps ErrMalformedTree triggers a retry.
	Check  func(*Tree) error
	Logger *slog.Logger
}

func (a *Assembler) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (a *Assembler) Assemble(seed int64) (*Tree, error) {
	if a.Grammar == nil {
		return nil, fmt.Errorf("assembler has no grammar")
	}
	var last error
	for i := 0; i <= a.Retries; i++ {
		s := seed + int64(i)
		t, err := a.Grammar.Generate(s, a.MinDepth, a.MaxDepth)
		if err != nil {
			return nil, err
		}
		if err = a.Grammar.Validate(t); err == nil && a.Check != nil {
			err = a.Check(t)
		}
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, ErrMalformedTree) {
			return nil, err
		}
		a.logger().Warn("rejected generated tree", "seed", s, "err", err)
		last = err
	}
	return nil, fmt.Errorf("no valid tree after %d attempts from seed %d: %w", a.Retries+1, seed, last)
}

// Pool assembles n structurally distinct trees starting from baseSeed.
// Duplicates are skipped; the search for new trees gives up after 50*n seeds.
func (a *Assembler) Pool(baseSeed int64, n int) ([]*Tree, error) {
	seen := make(map[string]bool, n)
	out := make([]*Tree, 0, n)
	seed := baseSeed
	for tries := 0; len(out) < n; tries++ {
		if tries >= 50*n {
			return out, fmt.Errorf("only %d distinct trees found for %d requested", len(out), n)
		}
		t, err := a.Assemble(seed)
		if err != nil {
			return out, err
		}
		seed = t.Seed + 1
		sig := Signature(t)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, t)
	}
	return out, nil
}
