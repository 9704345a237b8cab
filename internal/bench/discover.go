package bench

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/dataset"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
)

// Discover expands the glob patterns into a sorted list of distinct files
// and keeps the first max of them (0 keeps all).
func Discover(patterns []string, max int) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// LoadInstances loads the files of family d. Any file that fails to parse,
// or parses as another family, fails the whole load.
func LoadInstances(d problem.Domain, patterns []string, max int) ([]problem.Instance, error) {
	paths, err := Discover(patterns, max)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s instance matches %v", d, patterns)
	}
	out := make([]problem.Instance, 0, len(paths))
	for _, p := range paths {
		in, err := dataset.LoadFile(p)
		if err != nil {
			return nil, err
		}
		if in.Domain() != d {
			return nil, fmt.Errorf("%s: %w: file holds a %s instance, expected %s", p, problem.ErrMalformedInstance, in.Domain(), d)
		}
		out = append(out, in)
	}
	return out, nil
}
