package search

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
)

// Outcome is what a skeleton returns: the best solution found and the
// counters of the run. The full trajectory stays in the Context's Trace.
type Outcome[S any] struct {
	Best        S
	Fitness     Fitness
	Skeleton    Skeleton
	Iterations  int
	Evaluations int
	Stop        StopReason
	Duration    time.Duration
	// Temperature is the final temperature when one was used.
	Temperature float64
}

// Engine runs algorithm trees of one domain.
type Engine[S Solution[S]] struct {
	lib  *Library[S]
	eval Evaluator[S]
	cfg  Config
}

func NewEngine[S Solution[S]](lib *Library[S], eval Evaluator[S], cfg Config) (*Engine[S], error) {
	if lib == nil {
		return nil, fmt.Errorf("engine needs an operator library")
	}
	if eval == nil {
		return nil, fmt.Errorf("engine needs an evaluator")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine[S]{lib: lib, eval: eval, cfg: cfg}, nil
}

func (e *Engine[S]) Config() Config          { return e.cfg }
func (e *Engine[S]) Library() *Library[S]    { return e.lib }
func (e *Engine[S]) Evaluator() Evaluator[S] { return e.eval }

// Solve binds t to the library and runs it. Cancelling ctx stops the search
// between iterations; the best solution so far is returned with ctx's error.
// When no feasible solution was found the outcome comes with
// ErrNoFeasibleFound.
func (e *Engine[S]) Solve(ctx context.Context, t *grammar.Tree, ec *Context) (Outcome[S], error) {
	plan, err := e.lib.Bind(t, e.eval)
	if err != nil {
		return Outcome[S]{}, err
	}
	return e.Run(ctx, plan, ec)
}

// Select reports the skeleton that Run will use for p.
func (e *Engine[S]) Select(p *Plan[S]) Skeleton {
	if e.cfg.Skeleton != SkeletonAuto {
		return e.cfg.Skeleton
	}
	switch {
	case len(p.Perturbations) > 0:
		return SkeletonILS
	case p.Randomized:
		return SkeletonGRASP
	default:
		return SkeletonDescent
	}
}

func (e *Engine[S]) Run(ctx context.Context, p *Plan[S], ec *Context) (Outcome[S], error) {
	if err := ec.Budget().Validate(); err != nil {
		return Outcome[S]{}, err
	}
	if p.Repair == nil || p.Constructive == nil || len(p.Locals) == 0 {
		return Outcome[S]{}, fmt.Errorf("%w: incomplete plan", grammar.ErrMalformedTree)
	}
	sk := e.Select(p)
	if sk == SkeletonILS && len(p.Perturbations) == 0 {
		p = e.withDefaultPerturbation(p)
		if p == nil {
			return Outcome[S]{}, fmt.Errorf("iterated local search needs a perturbation operator")
		}
	}
	r := &run[S]{e: e, plan: p, ec: ec, obj: e.eval.Objective()}
	var err error
	switch sk {
	case SkeletonILS:
		err = r.ils(ctx)
	case SkeletonGRASP:
		err = r.grasp(ctx)
	case SkeletonSA:
		err = r.anneal(ctx)
	default:
		err = r.descent()
	}
	out := r.outcome(sk)
	ec.Logger().Debug("search finished",
		"skeleton", sk.String(),
		"stop", out.Stop.String(),
		"iterations", out.Iterations,
		"evaluations", out.Evaluations,
		"feasible", out.Fitness.Feasible,
	)
	if err != nil {
		return out, err
	}
	if !out.Fitness.Feasible {
		return out, ErrNoFeasibleFound
	}
	return out, nil
}

func (e *Engine[S]) withDefaultPerturbation(p *Plan[S]) *Plan[S] {
	pert := e.lib.DefaultPerturbation()
	if pert == nil {
		return nil
	}
	q := *p
	q.Perturbations = []Perturbation[S]{pert}
	q.Strengths = []float64{e.cfg.Strength.Max / 4}
	q.Locals = []Improvement[S]{p.Locals[0], p.Locals[0]}
	return &q
}

// run is the state of one Solve.
type run[S Solution[S]] struct {
	e    *Engine[S]
	plan *Plan[S]
	ec   *Context
	obj  Objective

	cur     S
	curFit  Fitness
	best    S
	bestFit Fitness
	hasBest bool
	temp    float64
	stop    StopReason
}

func (r *run[S]) repair(s S) (S, error) {
	out := r.plan.Repair.Repair(s, r.ec)
	if !out.Feasible() {
		return out, &OperatorError{
			Operator:  r.plan.Repair.Name(),
			Seed:      r.ec.Seed(),
			Iteration: r.ec.Iterations(),
			Err:       ErrInfeasibleOperatorResult,
		}
	}
	return out, nil
}

// offer replaces the best solution when s is feasible and strictly better.
func (r *run[S]) offer(s S, f Fitness) bool {
	if !f.Feasible {
		return false
	}
	if r.hasBest && !r.obj.Better(f, r.bestFit) {
		return false
	}
	r.best, r.bestFit, r.hasBest = s, f, true
	r.ec.emit(EventImprovement, r.obj.Value(f))
	r.ec.Logger().Debug("new best",
		"iteration", r.ec.Iterations(),
		"primary", f.Primary,
		"secondary", f.Secondary,
	)
	return true
}

func (r *run[S]) bestOrCurrent() Fitness {
	if r.hasBest {
		return r.bestFit
	}
	return r.curFit
}

// start is construct, repair, first local search; it is iteration 0.
func (r *run[S]) start() error {
	s := r.plan.Constructive.Construct(r.ec)
	s, err := r.repair(s)
	if err != nil {
		return err
	}
	s = r.plan.Locals[0].Improve(s, r.ec)
	f := Evaluate(r.ec, r.e.eval, s)
	r.cur, r.curFit = s, f
	r.offer(s, f)
	r.ec.record(Record{
		Iteration: 0,
		Current:   f,
		Best:      r.bestOrCurrent(),
		Feasible:  f.Feasible,
		Accepted:  true,
		Improved:  r.hasBest,
	})
	return nil
}

// halt checks cancellation and the budget before an iteration.
func (r *run[S]) halt(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		r.stop = StopCancelled
		return true, err
	}
	if err := r.ec.Check(); err != nil {
		r.stop = r.ec.Reason()
		return true, nil
	}
	return false, nil
}

func (r *run[S]) step(iter int, accepted, improved bool, strength float64) {
	r.ec.observe(improved)
	r.ec.record(Record{
		Iteration:   iter,
		Current:     r.curFit,
		Best:        r.bestOrCurrent(),
		Feasible:    r.curFit.Feasible,
		Accepted:    accepted,
		Improved:    improved,
		Temperature: r.temp,
		Strength:    strength,
	})
}

// initialTemp returns the configured temperature, or one at which about 80%
// of sampled worsening moves would be accepted.
func (r *run[S]) initialTemp(neighbor Perturbation[S], strength float64) float64 {
	cfg := r.e.cfg.Cooling
	if cfg.InitialTemp > 0 {
		return cfg.InitialTemp
	}
	var sum float64
	var n int
	for i := 0; i < r.e.cfg.Samples && !r.ec.Exhausted(); i++ {
		cand := r.plan.Repair.Repair(neighbor.Perturb(r.cur, r.ec, strength), r.ec)
		f := Evaluate(r.ec, r.e.eval, cand)
		if f.Feasible != r.curFit.Feasible {
			continue
		}
		if d := r.obj.Delta(r.curFit, f); d > 0 {
			sum += d
			n++
		}
	}
	t := 1.0
	if n > 0 {
		t = -(sum / float64(n)) / math.Log(0.8)
	}
	return math.Max(t, 10*cfg.FinalTemp)
}

func (r *run[S]) descent() error {
	if err := r.start(); err != nil {
		return err
	}
	r.stop = StopCompleted
	return nil
}

func (r *run[S]) outcome(sk Skeleton) Outcome[S] {
	out := Outcome[S]{
		Best:        r.cur,
		Fitness:     r.curFit,
		Skeleton:    sk,
		Iterations:  r.ec.Iterations(),
		Evaluations: r.ec.Evaluations(),
		Stop:        r.stop,
		Duration:    r.ec.Elapsed(),
		Temperature: r.temp,
	}
	if r.hasBest {
		out.Best, out.Fitness = r.best, r.bestFit
	}
	return out
}
