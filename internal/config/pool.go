package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/opt"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
)

// Pool is the algorithms.yaml file kept in sync by assemble --sync. Trees
// are stored as the seed that generates them plus a signature to detect
// grammar drift.
type Pool struct {
	Version  string                 `yaml:"version" validate:"required"`
	Seed     int64                  `yaml:"seed"`
	MinDepth int                    `yaml:"min_depth" validate:"gte=1"`
	MaxDepth int                    `yaml:"max_depth" validate:"gtefield=MinDepth"`
	Families map[string][]PoolEntry `yaml:"families" validate:"required,dive,keys,family,endkeys,min=1,dive"`
}

type PoolEntry struct {
	ID        string `yaml:"id" validate:"required"`
	Seed      int64  `yaml:"seed"`
	Signature string `yaml:"signature" validate:"required"`
	// Text is the pseudocode, kept for readers of the file.
	Text string `yaml:"text,omitempty"`
}

// NewPool records algorithms assembled with a.
func NewPool(a Algorithms, algs map[problem.Domain][]opt.Algorithm) Pool {
	p := Pool{
		Version:  grammar.Version,
		Seed:     a.Seed,
		MinDepth: a.MinDepth,
		MaxDepth: a.MaxDepth,
		Families: make(map[string][]PoolEntry, len(algs)),
	}
	for d, list := range algs {
		entries := make([]PoolEntry, len(list))
		for i, alg := range list {
			entries[i] = PoolEntry{
				ID:        alg.ID,
				Seed:      alg.Tree.Seed,
				Signature: grammar.Signature(alg.Tree),
				Text:      grammar.Text(alg.Tree),
			}
		}
		p.Families[d.String()] = entries
	}
	return p
}

func (p Pool) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if p.Version != grammar.Version {
		return fmt.Errorf("%w: pool written by grammar version %s, current is %s", opt.ErrStaleAlgorithm, p.Version, grammar.Version)
	}
	return nil
}

// Resolve regenerates the algorithms of family d.
func (p Pool) Resolve(d problem.Domain) ([]opt.Algorithm, error) {
	var entries []PoolEntry
	for k, v := range p.Families {
		if got, err := problem.ParseDomain(k); err == nil && got == d {
			entries = v
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("pool has no algorithms for %s", d)
	}
	out := make([]opt.Algorithm, 0, len(entries))
	for _, e := range entries {
		alg, err := opt.Regenerate(d, e.ID, e.Seed, p.MinDepth, p.MaxDepth, e.Signature)
		if err != nil {
			return nil, err
		}
		out = append(out, alg)
	}
	return out, nil
}

func LoadPool(path string) (Pool, error) {
	var p Pool
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("load pool: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: parse pool %s: %v", ErrInvalidConfig, path, err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// SavePool writes p atomically through a temporary file in the same
// directory.
func SavePool(path string, p Pool) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".algorithms-*.yaml")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
