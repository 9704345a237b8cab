// Package opt runs one assembled algorithm on one instance of any family.
// It pairs each domain's operator library with a matching evaluator so that
// the penalty and vehicle weight the operators rank moves by are the ones
// the evaluator scores with.
package opt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/gcp"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/kbp"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/vrptw"
)

type Optimizer interface {
	Solve(ctx context.Context, inst problem.Instance) (Result, error)
}

// Result is one run. When Solve also returns an error, Result is still
// filled whenever the search got as far as a first solution. Objective is
// the scalar of Fitness in the domain's own sense, and Scoring turns any
// Fitness of the run, trace records included, into that scalar. Solution
// is the rendered best solution.
type Result struct {
	Algorithm   string
	Instance    string
	Domain      problem.Domain
	Seed        int64
	Skeleton    search.Skeleton
	Sense       search.Sense
	Scoring     search.Objective
	Fitness     search.Fitness
	Objective   float64
	Feasible    bool
	Gap         float64
	GapKnown    bool
	Metrics     map[string]float64
	Evaluations int
	Iterations  int
	Stop        search.StopReason
	Duration    time.Duration
	Trace       *search.Trace
	Solution    string
}

// KBPSettings selects the knapsack evaluator variant.
type KBPSettings struct {
	Options kbp.Options `json:"options" yaml:"options"`
	// Strict scores overloaded selections as -Inf instead of penalising them.
	Strict bool `json:"strict" yaml:"strict"`
}

// VRPTWSettings selects the routing objective.
type VRPTWSettings struct {
	Options vrptw.Options `json:"options" yaml:"options"`
	// Weighted replaces the (vehicles, distance) order with
	// vehicles*Options.VehicleWeight + distance.
	Weighted bool `json:"weighted" yaml:"weighted"`
}

// Settings are shared by every run of an experiment.
type Settings struct {
	Budget search.Budget `json:"budget" yaml:"budget"`
	Search search.Config `json:"search" yaml:"search"`
	GCP    gcp.Options   `json:"gcp" yaml:"gcp"`
	KBP    KBPSettings   `json:"kbp" yaml:"kbp"`
	VRPTW  VRPTWSettings `json:"vrptw" yaml:"vrptw"`

	// PerFamily overrides parts of Search for the family named by the key.
	PerFamily map[string]SearchOverride `json:"per_family,omitempty" yaml:"per_family,omitempty"`
}

// SearchOverride replaces the fields it sets in Settings.Search.
type SearchOverride struct {
	Skeleton   *search.Skeleton   `json:"skeleton,omitempty" yaml:"skeleton,omitempty"`
	Acceptance *search.Acceptance `json:"acceptance,omitempty" yaml:"acceptance,omitempty"`
}

// SearchFor is the search configuration of runs on family d.
func (s Settings) SearchFor(d problem.Domain) search.Config {
	cfg := s.Search
	for name, o := range s.PerFamily {
		if fd, err := problem.ParseDomain(name); err != nil || fd != d {
			continue
		}
		if o.Skeleton != nil {
			cfg.Skeleton = *o.Skeleton
		}
		if o.Acceptance != nil {
			cfg.Acceptance = *o.Acceptance
		}
	}
	return cfg
}

func DefaultSettings() Settings {
	return Settings{
		Budget: search.DefaultBudget(),
		Search: search.DefaultConfig(),
		GCP:    gcp.DefaultOptions(),
		KBP:    KBPSettings{Options: kbp.DefaultOptions()},
		VRPTW:  VRPTWSettings{Options: vrptw.DefaultOptions()},
	}
}

func (s Settings) Validate() error {
	if err := s.Budget.Validate(); err != nil {
		return err
	}
	if err := s.Search.Validate(); err != nil {
		return err
	}
	if err := s.GCP.Validate(); err != nil {
		return fmt.Errorf("gcp: %w", err)
	}
	if err := s.KBP.Options.Validate(); err != nil {
		return fmt.Errorf("kbp: %w", err)
	}
	if err := s.VRPTW.Options.Validate(); err != nil {
		return fmt.Errorf("vrptw: %w", err)
	}
	for name := range s.PerFamily {
		d, err := problem.ParseDomain(name)
		if err != nil {
			return fmt.Errorf("per_family: %w", err)
		}
		if err := s.SearchFor(d).Validate(); err != nil {
			return fmt.Errorf("per_family %s: %w", name, err)
		}
	}
	return nil
}

// Algorithm is one assembled tree of one family.
type Algorithm struct {
	ID     string
	Domain problem.Domain
	Tree   *grammar.Tree
}

// Solver runs one algorithm with one seed.
type Solver struct {
	alg      Algorithm
	seed     int64
	settings Settings
	logger   *slog.Logger
}

// New is used by the experiment driver's factories.
func New(alg Algorithm, seed int64, settings Settings, logger *slog.Logger) (*Solver, error) {
	if alg.Tree == nil {
		return nil, fmt.Errorf("algorithm %q has no tree", alg.ID)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Solver{alg: alg, seed: seed, settings: settings, logger: logger}, nil
}

func (s *Solver) Solve(ctx context.Context, inst problem.Instance) (Result, error) {
	if inst.Domain() != s.alg.Domain {
		return Result{}, fmt.Errorf("algorithm %s is for %s, instance %s is %s", s.alg.ID, s.alg.Domain, inst.Name(), inst.Domain())
	}
	switch in := inst.(type) {
	case *gcp.Instance:
		lib, err := gcp.NewLibrary(in, s.settings.GCP)
		if err != nil {
			return Result{}, err
		}
		return solve(ctx, s, inst, lib, gcp.NewEvaluator(in))
	case *kbp.Instance:
		ks := s.settings.KBP
		lib, err := kbp.NewLibrary(in, ks.Options)
		if err != nil {
			return Result{}, err
		}
		var opts []kbp.EvaluatorOption
		if ks.Options.Penalty > 0 {
			opts = append(opts, kbp.WithPenalty(ks.Options.Penalty))
		}
		if ks.Strict {
			opts = append(opts, kbp.WithStrict())
		}
		return solve(ctx, s, inst, lib, kbp.NewEvaluator(in, opts...))
	case *vrptw.Instance:
		vs := s.settings.VRPTW
		lib, err := vrptw.NewLibrary(in, vs.Options)
		if err != nil {
			return Result{}, err
		}
		var opts []vrptw.EvaluatorOption
		if vs.Weighted {
			opts = append(opts, vrptw.WithWeighted(vs.Options.VehicleWeight))
		}
		return solve(ctx, s, inst, lib, vrptw.NewEvaluator(in, opts...))
	default:
		return Result{}, fmt.Errorf("unsupported instance type %T", inst)
	}
}

type solution[S any] interface {
	search.Solution[S]
	String() string
}

type evaluator[S any] interface {
	search.Evaluator[S]
	search.Reporter[S]
}

func solve[S solution[S]](ctx context.Context, s *Solver, inst problem.Instance, lib *search.Library[S], eval evaluator[S]) (Result, error) {
	eng, err := search.NewEngine(lib, eval, s.settings.SearchFor(inst.Domain()))
	if err != nil {
		return Result{}, err
	}
	log := s.logger.With("algorithm", s.alg.ID, "instance", inst.Name(), "seed", s.seed)
	ec := search.NewContext(s.seed, s.settings.Budget, search.WithLogger(log))
	out, err := eng.Solve(ctx, s.alg.Tree, ec)
	if err != nil && !partial(err) {
		return Result{}, fmt.Errorf("%s on %s (seed %d): %w", s.alg.ID, inst.Name(), s.seed, err)
	}
	if isZero(out.Best) {
		return Result{}, err
	}
	res := Result{
		Algorithm:   s.alg.ID,
		Instance:    inst.Name(),
		Domain:      inst.Domain(),
		Seed:        s.seed,
		Skeleton:    out.Skeleton,
		Sense:       eval.Objective().Sense,
		Scoring:     eval.Objective(),
		Fitness:     out.Fitness,
		Objective:   eval.Objective().Value(out.Fitness),
		Feasible:    out.Fitness.Feasible,
		Metrics:     eval.Metrics(out.Best),
		Evaluations: out.Evaluations,
		Iterations:  out.Iterations,
		Stop:        out.Stop,
		Duration:    out.Duration,
		Trace:       ec.Trace(),
		Solution:    out.Best.String(),
	}
	res.Gap, res.GapKnown = eval.Gap(out.Best)
	return res, err
}

// partial reports errors that still come with a usable outcome.
func partial(err error) bool {
	return errors.Is(err, search.ErrNoFeasibleFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func isZero[S any](s S) bool {
	var zero S
	return any(s) == any(zero)
}
