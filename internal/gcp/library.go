package gcp

import (
	"fmt"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

// Options tunes the operators of the library.
type Options struct {
	// MaxPasses caps the passes of the descent operators.
	MaxPasses int `json:"max_passes" yaml:"max_passes"`
	// TabuIterations caps each TabuRecolor attempt; 0 means min(20N, 10000).
	TabuIterations int `json:"tabu_iterations" yaml:"tabu_iterations"`
	// RCLAlpha is the restricted candidate list width in [0,1].
	RCLAlpha float64 `json:"rcl_alpha" yaml:"rcl_alpha"`
}

func DefaultOptions() Options {
	return Options{MaxPasses: 50, RCLAlpha: 0.3}
}

func (o Options) Validate() error {
	if o.MaxPasses <= 0 {
		return fmt.Errorf("max passes must be > 0 (got %d)", o.MaxPasses)
	}
	if o.TabuIterations < 0 {
		return fmt.Errorf("tabu iterations must be >= 0 (got %d)", o.TabuIterations)
	}
	if o.RCLAlpha < 0 || o.RCLAlpha > 1 {
		return fmt.Errorf("rcl alpha must lie in [0,1] (got %g)", o.RCLAlpha)
	}
	return nil
}

// NewLibrary registers every graph colouring operator bound to inst.
// GreedyComplete is the default repair and RandomRecolor the default
// annealing move.
func NewLibrary(inst *Instance, opts Options) (*search.Library[*Solution], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	lib := search.NewLibrary[*Solution]().
		AddConstructive(greedyByDensest{inst}).
		AddConstructive(greedyByEfficiency{inst}).
		AddConstructive(greedyByScarcity{inst}).
		AddConstructive(randomized{inst}).
		AddConstructive(rclConstruct{inst: inst, alpha: opts.RCLAlpha}).
		AddConstructive(regretInsertion{inst}).
		AddImprovement(singleRecolor{inst: inst, opts: opts}).
		AddImprovement(kempeChain{inst: inst, opts: opts}).
		AddImprovement(tabuRecolor{inst: inst, opts: opts}).
		AddPerturbation(randomRecolor{inst}).
		AddPerturbation(ruinRecreate{inst}).
		AddRepair(greedyComplete{inst}).
		AddRepair(removeWorst{inst})
	return lib, nil
}

// Terminals lists the operator names of NewLibrary. The grammar needs them
// before any instance is loaded.
func Terminals() grammar.Terminals {
	lib, _ := NewLibrary(&Instance{}, DefaultOptions())
	return lib.Terminals()
}
