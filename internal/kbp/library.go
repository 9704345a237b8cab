package kbp

import (
	"fmt"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

// Options tunes the operators of the library.
type Options struct {
	MaxPasses int `json:"max_passes" yaml:"max_passes"`
	// TabuIterations caps each TabuFlip run; 0 means min(10N, 5000).
	TabuIterations int     `json:"tabu_iterations" yaml:"tabu_iterations"`
	RCLAlpha       float64 `json:"rcl_alpha" yaml:"rcl_alpha"`
	// Penalty per unit of excess weight used to rank moves through
	// overloaded selections. 0 means DefaultPenalty; it should match the
	// evaluator's.
	Penalty float64 `json:"penalty" yaml:"penalty"`
}

func DefaultOptions() Options {
	return Options{MaxPasses: 100, RCLAlpha: 0.3}
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
	if o.Penalty < 0 {
		return fmt.Errorf("penalty must be >= 0 (got %g)", o.Penalty)
	}
	return nil
}

// NewLibrary registers every knapsack operator bound to inst. GreedyComplete
// is the default repair and RandomFlip the default annealing move.
func NewLibrary(inst *Instance, opts Options) (*search.Library[*Solution], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	sc := scorer{capacity: inst.capacity, penalty: opts.Penalty}
	if sc.penalty == 0 {
		sc.penalty = DefaultPenalty(inst)
	}
	lib := search.NewLibrary[*Solution]().
		AddConstructive(greedyByDensest{inst}).
		AddConstructive(greedyByEfficiency{inst}).
		AddConstructive(greedyByScarcity{inst}).
		AddConstructive(randomized{inst}).
		AddConstructive(rclConstruct{inst: inst, alpha: opts.RCLAlpha}).
		AddConstructive(regretInsertion{inst}).
		AddImprovement(flipBest{inst: inst, sc: sc, opts: opts}).
		AddImprovement(oneExchange{inst: inst, sc: sc, opts: opts}).
		AddImprovement(tabuFlip{inst: inst, sc: sc, opts: opts}).
		AddPerturbation(randomFlip{inst}).
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
