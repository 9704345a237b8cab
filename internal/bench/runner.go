// Package bench runs every (algorithm, instance, repetition) cell of an
// experiment and writes the result files.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/opt"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

// Cell is one run: an algorithm on an instance with the seed of one
// repetition.
type Cell struct {
	Algorithm opt.Algorithm
	Instance  problem.Instance
	Rep       int
	Seed      int64
}

// Cells crosses the algorithms and instances of every family with reps
// repetitions. Repetition i runs with seed baseSeed+i so that every
// algorithm sees the same seeds on the same instance.
func Cells(algs map[problem.Domain][]opt.Algorithm, insts map[problem.Domain][]problem.Instance, reps int, baseSeed int64) []Cell {
	var out []Cell
	for _, d := range problem.Domains() {
		for _, alg := range algs[d] {
			for _, in := range insts[d] {
				for i := 0; i < reps; i++ {
					out = append(out, Cell{Algorithm: alg, Instance: in, Rep: i, Seed: baseSeed + int64(i)})
				}
			}
		}
	}
	return out
}

// Record is one row of raw_results.csv. Size is the colour, item or
// vehicle count; Value is the figure the known optimum measures (colours,
// total value or total distance) and Delta how far it is from that optimum,
// positive when worse.
type Record struct {
	Algorithm    string  `json:"algorithm"`
	Family       string  `json:"family"`
	Instance     string  `json:"instance"`
	Rep          int     `json:"rep"`
	Seed         int64   `json:"seed"`
	Skeleton     string  `json:"skeleton"`
	Maximize     bool    `json:"maximize"`
	Feasible     bool    `json:"feasible"`
	Objective    float64 `json:"objective"`
	Primary      float64 `json:"primary"`
	Secondary    float64 `json:"secondary"`
	Size         float64 `json:"size"`
	Value        float64 `json:"value"`
	KnownOptimum float64 `json:"known_optimum"`
	OptimumKnown bool    `json:"optimum_known"`
	Delta        float64 `json:"delta"`
	Reached      bool    `json:"reached_optimum"`
	Gap          float64 `json:"gap"`
	GapKnown     bool    `json:"gap_known"`
	Evaluations  int     `json:"evaluations"`
	Iterations   int     `json:"iterations"`
	Stop         string  `json:"stop"`
	DurationMs   float64 `json:"duration_ms"`
	Solution     string  `json:"solution"`
	Error        string  `json:"error,omitempty"`

	// Resumed marks records read back from the store.
	Resumed bool             `json:"-"`
	Trace   *search.Trace    `json:"-"`
	Scoring search.Objective `json:"-"`
}

// headline names the metrics behind Size and Value for each family.
var headline = map[problem.Domain][2]string{
	problem.GCP:   {"colors", "colors"},
	problem.KBP:   {"items", "value"},
	problem.VRPTW: {"vehicles", "distance"},
}

const (
	StatusOK         = "ok"
	StatusInfeasible = "infeasible"
	StatusError      = "error"
)

// Status is "error" when the run produced no solution at all.
func (r Record) Status() string {
	switch {
	case r.Error != "" && r.Evaluations == 0:
		return StatusError
	case !r.Feasible:
		return StatusInfeasible
	default:
		return StatusOK
	}
}

type Runner struct {
	// Workers bounds the cells run at once; 0 means one.
	Workers    int
	RunTimeout time.Duration // 0 = no timeout
	Settings   opt.Settings
	Logger     *slog.Logger
	// Store, when set, receives every finished cell. With Resume also set,
	// cells already in the store are not run again.
	Store   *Store
	Resume  bool
	Metrics *Metrics
	// Progress is called after every cell with the number done so far.
	Progress func(done, total int)
}

func (r Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Logger
}

// Run executes cells and returns their records in cell order. A failing
// cell is recorded and the run goes on; the returned error is only the
// context's.
func (r Runner) Run(ctx context.Context, cells []Cell) ([]Record, error) {
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	records := make([]Record, len(cells))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range cells {
		if gctx.Err() != nil {
			break
		}
		i, c := i, c
		g.Go(func() error {
			records[i] = r.RunCell(gctx, c)
			n := done.Add(1)
			if r.Progress != nil {
				r.Progress(int(n), len(cells))
			}
			return nil
		})
	}
	_ = g.Wait()
	return records, ctx.Err()
}

// RunCell runs one cell, or returns the stored record of an earlier run.
func (r Runner) RunCell(ctx context.Context, c Cell) Record {
	log := r.logger().With("algorithm", c.Algorithm.ID, "instance", c.Instance.Name(), "seed", c.Seed)

	key := CellKey(Fingerprint(r.Settings, c.Algorithm), c.Algorithm.ID, c.Instance.Name(), c.Seed)
	if r.Store != nil && r.Resume {
		rec, ok, err := r.Store.Get(key)
		if err != nil {
			log.Warn("result store read failed", "error", err)
		} else if ok {
			rec.Rep = c.Rep
			rec.Resumed = true
			r.Metrics.Observe(rec)
			return rec
		}
	}

	rec := Record{
		Algorithm: c.Algorithm.ID,
		Family:    c.Instance.Domain().String(),
		Instance:  c.Instance.Name(),
		Rep:       c.Rep,
		Seed:      c.Seed,
	}
	rec.KnownOptimum, rec.OptimumKnown = c.Instance.KnownOptimum()
	solver, err := opt.New(c.Algorithm, c.Seed, r.Settings, log)
	if err != nil {
		rec.Error = err.Error()
		log.Error("cell not started", "error", err)
		r.Metrics.Observe(rec)
		return rec
	}

	runCtx := ctx
	cancel := func() {}
	if r.RunTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.RunTimeout)
	}
	start := time.Now()
	res, err := solver.Solve(runCtx, c.Instance)
	dur := time.Since(start)
	cancel()

	if res.Algorithm != "" {
		fill(&rec, res)
	}
	rec.DurationMs = float64(dur.Microseconds()) / 1000.0
	if err != nil {
		rec.Error = err.Error()
		if errors.Is(err, search.ErrNoFeasibleFound) {
			log.Warn("no feasible solution", "evaluations", rec.Evaluations)
		} else {
			log.Error("cell failed", "error", err)
		}
	} else {
		log.Debug("cell done", "objective", rec.Objective, "stop", rec.Stop, "duration_ms", rec.DurationMs)
	}
	r.Metrics.Observe(rec)

	// A cell cut short by the experiment's own cancellation runs again on
	// resume.
	if r.Store != nil && ctx.Err() == nil {
		if err := r.Store.Put(key, rec); err != nil {
			log.Warn("result store write failed", "error", err)
		}
	}
	return rec
}

func fill(rec *Record, res opt.Result) {
	rec.Skeleton = res.Skeleton.String()
	rec.Maximize = res.Sense == search.Maximize
	rec.Feasible = res.Feasible
	rec.Objective = finite(res.Objective)
	rec.Primary = finite(res.Fitness.Primary)
	rec.Secondary = finite(res.Fitness.Secondary)
	rec.Gap, rec.GapKnown = finite(res.Gap), res.GapKnown
	rec.Evaluations = res.Evaluations
	rec.Iterations = res.Iterations
	rec.Stop = res.Stop.String()
	rec.Solution = res.Solution
	rec.Trace = res.Trace
	rec.Scoring = res.Scoring

	names := headline[res.Domain]
	rec.Size = finite(res.Metrics[names[0]])
	rec.Value = finite(res.Metrics[names[1]])
	if rec.OptimumKnown {
		rec.Delta = rec.Value - rec.KnownOptimum
		if rec.Maximize {
			rec.Delta = -rec.Delta
		}
		rec.Reached = rec.Feasible && rec.Delta <= reachTolerance*math.Max(1, math.Abs(rec.KnownOptimum))
	}
}

// reachTolerance is the relative slack under which Value counts as the
// known optimum.
const reachTolerance = 1e-6

// finite maps the -Inf of strict knapsack scoring to 0 so that records
// stay JSON encodable; Feasible already says the value is meaningless.
func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// Tally counts records by status. Cells never started are left out.
func Tally(records []Record) map[string]int {
	out := map[string]int{StatusOK: 0, StatusInfeasible: 0, StatusError: 0}
	for _, r := range records {
		if r.Algorithm != "" {
			out[r.Status()]++
		}
	}
	return out
}

// CheckRecords returns an error when no cell produced a feasible solution
// and failOnInfeasible is set, or when every cell failed outright.
func CheckRecords(records []Record, failOnInfeasible bool) error {
	t := Tally(records)
	n := t[StatusOK] + t[StatusInfeasible] + t[StatusError]
	if n > 0 && t[StatusError] == n {
		return fmt.Errorf("all %d cells failed", n)
	}
	if failOnInfeasible && n > 0 && t[StatusOK] == 0 {
		return fmt.Errorf("no cell found a feasible solution (%d infeasible, %d failed)", t[StatusInfeasible], t[StatusError])
	}
	return nil
}
