package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/config"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/opt"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
)

// StoreDir is the result store under the output directory. It is shared by
// every run directory so that --resume finds the cells of an earlier run.
const StoreDir = ".store"

// Plan is what an experiment runs: the algorithms and instances of each
// family.
type Plan struct {
	Families   []problem.Domain
	Algorithms map[problem.Domain][]opt.Algorithm
	Instances  map[problem.Domain][]problem.Instance
}

func (p Plan) Cells(reps int, baseSeed int64) []Cell {
	return Cells(p.Algorithms, p.Instances, reps, baseSeed)
}

// Prepare loads the instances of every family and resolves its algorithms,
// from the pool file when one is configured and by assembling otherwise.
func Prepare(e config.Experiment, logger *slog.Logger) (Plan, error) {
	ds, err := e.Domains()
	if err != nil {
		return Plan{}, err
	}
	var pool *config.Pool
	if e.Algorithms.PoolFile != "" {
		p, err := config.LoadPool(e.Algorithms.PoolFile)
		if err != nil {
			return Plan{}, err
		}
		pool = &p
	}

	plan := Plan{
		Families:   ds,
		Algorithms: make(map[problem.Domain][]opt.Algorithm, len(ds)),
		Instances:  make(map[problem.Domain][]problem.Instance, len(ds)),
	}
	for _, d := range ds {
		var algs []opt.Algorithm
		if pool != nil {
			algs, err = pool.Resolve(d)
		} else {
			algs, err = opt.Assemble(d, e.PoolSpec(), logger)
		}
		if err != nil {
			return Plan{}, fmt.Errorf("%s algorithms: %w", d, err)
		}
		insts, err := LoadInstances(d, e.Patterns(d), e.MaxInstances)
		if err != nil {
			return Plan{}, fmt.Errorf("%s instances: %w", d, err)
		}
		plan.Algorithms[d] = algs
		plan.Instances[d] = insts
	}
	return plan, nil
}

type Options struct {
	Resume   bool
	Logger   *slog.Logger
	Progress func(done, total int)
	// Now stamps the run directory; time.Now when nil.
	Now func() time.Time
}

// Report is what Execute wrote.
type Report struct {
	Dir       string
	Metadata  Metadata
	Records   []Record
	Summaries []Summary
}

// Execute runs every cell of plan and writes the run directory. Files are
// written even when ctx is cancelled part way, in which case the returned
// error is the context's.
func Execute(ctx context.Context, e config.Experiment, plan Plan, o Options) (Report, error) {
	log := o.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	started := now()

	art, err := NewArtifacts(e.OutputDir, started)
	if err != nil {
		return Report{}, err
	}
	cells := plan.Cells(e.Repetitions, e.BaseSeed)

	meta := NewMetadata(e.Mode, started)
	meta.Repetitions = e.Repetitions
	meta.TotalCells = len(cells)
	meta.BaseSeed = e.BaseSeed
	meta.AlgorithmSeed = e.Algorithms.Seed
	meta.Settings = e.Settings
	for _, d := range plan.Families {
		meta.Families = append(meta.Families, d.String())
		for _, alg := range plan.Algorithms[d] {
			meta.Algorithms = append(meta.Algorithms, alg.ID)
			if err := art.WriteAlgorithm(alg); err != nil {
				return Report{}, fmt.Errorf("write algorithm %s: %w", alg.ID, err)
			}
		}
		for _, in := range plan.Instances[d] {
			meta.Instances = append(meta.Instances, in.Name())
		}
	}
	log.Info("experiment started", "id", meta.ID, "dir", art.Dir, "cells", len(cells), "families", meta.Families)

	store, err := OpenStore(StoreConfig{Path: filepath.Join(e.OutputDir, StoreDir), SyncWrites: true, Logger: log})
	if err != nil {
		return Report{}, err
	}
	defer store.Close()

	metrics := NewMetrics()
	runner := Runner{
		Workers:    e.Workers,
		RunTimeout: e.RunTimeout,
		Settings:   e.Settings,
		Logger:     log,
		Store:      store,
		Resume:     o.Resume,
		Metrics:    metrics,
		Progress:   o.Progress,
	}
	records, runErr := runner.Run(ctx, cells)

	rep := Report{Dir: art.Dir, Records: records, Summaries: Summarize(records)}
	meta.Outcome = Tally(records)
	meta.Elapsed = now().Sub(started).Round(time.Millisecond).String()
	rep.Metadata = meta

	err = errors.Join(
		art.WriteRaw(records),
		art.WriteTrace(records),
		art.WriteSummary(rep.Summaries),
		metrics.WriteFile(art.Path(MetricsFile)),
		art.WriteMetadata(meta),
	)
	if err != nil {
		return rep, fmt.Errorf("write results: %w", err)
	}
	log.Info("experiment finished", "id", meta.ID, "ok", meta.Outcome[StatusOK],
		"infeasible", meta.Outcome[StatusInfeasible], "failed", meta.Outcome[StatusError], "elapsed", meta.Elapsed)
	return rep, runErr
}
