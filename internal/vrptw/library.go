package vrptw

import (
	"fmt"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

// Options tunes the operators of the library.
type Options struct {
	MaxPasses int `json:"max_passes" yaml:"max_passes"`
	// TabuIterations caps each TabuRelocate run; 0 means min(10N, 1000).
	TabuIterations int     `json:"tabu_iterations" yaml:"tabu_iterations"`
	RCLAlpha       float64 `json:"rcl_alpha" yaml:"rcl_alpha"`
	// VehicleWeight is the distance a vehicle is worth when a move trades
	// one for extra travel; it should match the evaluator's weight.
	VehicleWeight float64 `json:"vehicle_weight" yaml:"vehicle_weight"`
}

func DefaultOptions() Options {
	return Options{MaxPasses: 200, RCLAlpha: 0.2, VehicleWeight: DefaultVehicleWeight}
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
	if o.VehicleWeight <= 0 {
		return fmt.Errorf("vehicle weight must be > 0 (got %g)", o.VehicleWeight)
	}
	return nil
}

// NewLibrary registers every VRPTW operator bound to inst. GreedyComplete
// is the default repair and RandomRelocate the default annealing move.
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
		AddImprovement(relocate{inst: inst, opts: opts}).
		AddImprovement(twoOpt{inst: inst, opts: opts}).
		AddImprovement(swapInter{inst: inst, opts: opts}).
		AddImprovement(orOpt{inst: inst, opts: opts}).
		AddImprovement(routeElimination{inst: inst, opts: opts}).
		AddImprovement(tabuRelocate{inst: inst, opts: opts}).
		AddPerturbation(randomRelocate{inst}).
		AddPerturbation(ruinRecreate{inst}).
		AddPerturbation(segmentRemoval{inst}).
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
