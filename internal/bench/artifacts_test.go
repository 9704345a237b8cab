package bench

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/opt"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

func TestResultHeaders(t *testing.T) {
	assert.Equal(t, []string{
		"algorithm_id", "instance_id", "family", "run_id", "seed",
		"K_final_or_colors", "value_or_distance", "known_optimum", "delta",
		"gap_percent", "reached_optimum", "total_time_sec", "iterations", "evaluations",
	}, rawHeader[:14])
	assert.Equal(t, []string{
		"algorithm_id", "instance_id", "run_id", "iteration", "elapsed_sec",
		"best_so_far", "current", "feasible",
	}, traceHeader[:8])
	assert.Contains(t, traceHeader, "perturbation_strength")
}

func TestFillHeadlineFigures(t *testing.T) {
	tests := []struct {
		name        string
		res         opt.Result
		known       float64
		size, value float64
		delta       float64
		reached     bool
	}{
		{
			name: "knapsack at optimum",
			res: opt.Result{Algorithm: "A", Domain: problem.KBP, Sense: search.Maximize, Feasible: true,
				Metrics: map[string]float64{"items": 6, "value": 295}},
			known: 295, size: 6, value: 295, delta: 0, reached: true,
		},
		{
			name: "knapsack below optimum",
			res: opt.Result{Algorithm: "A", Domain: problem.KBP, Sense: search.Maximize, Feasible: true,
				Metrics: map[string]float64{"items": 6, "value": 294}},
			known: 295, size: 6, value: 294, delta: 1,
		},
		{
			name: "colouring with an extra colour",
			res: opt.Result{Algorithm: "A", Domain: problem.GCP, Sense: search.Minimize, Feasible: true,
				Metrics: map[string]float64{"colors": 5}},
			known: 4, size: 5, value: 5, delta: 1,
		},
		{
			name: "routing compares distance",
			res: opt.Result{Algorithm: "A", Domain: problem.VRPTW, Sense: search.Minimize, Feasible: true,
				Metrics: map[string]float64{"vehicles": 10, "distance": 828.94}},
			known: 828.94, size: 10, value: 828.94, delta: 0, reached: true,
		},
		{
			name: "infeasible never reaches",
			res: opt.Result{Algorithm: "A", Domain: problem.GCP, Sense: search.Minimize,
				Metrics: map[string]float64{"colors": 4}},
			known: 4, size: 4, value: 4, delta: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{KnownOptimum: tt.known, OptimumKnown: true}
			fill(&rec, tt.res)
			assert.Equal(t, tt.size, rec.Size)
			assert.Equal(t, tt.value, rec.Value)
			assert.InDelta(t, tt.delta, rec.Delta, 1e-9)
			assert.Equal(t, tt.reached, rec.Reached)
		})
	}
}

func TestWriteRawAndTrace(t *testing.T) {
	dir := t.TempDir()
	a, err := NewArtifacts(dir, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	tr := &search.Trace{}
	tr.Append(search.Record{Iteration: 0, Elapsed: 1500 * time.Millisecond,
		Current: search.Fitness{Primary: 290, Feasible: true}, Best: search.Fitness{Primary: 290, Feasible: true},
		Feasible: true, Accepted: true, Improved: true})
	tr.Append(search.Record{Iteration: 1, Elapsed: 2 * time.Second,
		Current: search.Fitness{Primary: 280, Feasible: true}, Best: search.Fitness{Primary: 295, Feasible: true},
		Feasible: true, Accepted: true, Strength: 0.25})
	records := []Record{
		{
			Algorithm: "KBP-A01", Family: "KBP", Instance: "f1", Rep: 2, Seed: 44,
			Maximize: true, Feasible: true, Objective: 295, Size: 6, Value: 295,
			KnownOptimum: 295, OptimumKnown: true, Reached: true, GapKnown: true,
			Evaluations: 12, Iterations: 1, DurationMs: 2500,
			Trace: tr, Scoring: search.Objective{Sense: search.Maximize},
		},
		{Algorithm: "KBP-A02", Family: "KBP", Instance: "f2", Error: "boom"},
		{},
	}
	require.NoError(t, a.WriteRaw(records))
	require.NoError(t, a.WriteTrace(records))

	raw := readCSV(t, a.Path(RawResultsFile))
	require.Len(t, raw, 3)
	assert.Equal(t, []string{
		"KBP-A01", "f1", "KBP", "2", "44",
		"6.000000", "295.000000", "295.000000", "0.000000",
		"0.000000", "true", "2.500000", "1", "12",
	}, raw[1][:14])
	// Unknown optimum and gap stay empty.
	assert.Equal(t, []string{"", "", ""}, []string{raw[2][7], raw[2][8], raw[2][9]})
	assert.Equal(t, "boom", raw[2][len(raw[2])-1])

	trace := readCSV(t, a.Path(TraceFile))
	require.Len(t, trace, 3)
	assert.Equal(t, []string{"KBP-A01", "f1", "2", "0", "1.500000", "290.000000", "290.000000", "true"}, trace[1][:8])
	assert.Equal(t, []string{"KBP-A01", "f1", "2", "1", "2.000000", "295.000000", "280.000000", "true"}, trace[2][:8])
	assert.Equal(t, "0.250000", trace[2][len(trace[2])-1])
}

func TestRunCellReportsKnownOptimum(t *testing.T) {
	rec := Runner{Settings: settings()}.RunCell(context.Background(), cells(t, 1)[0])
	require.Empty(t, rec.Error)
	assert.True(t, rec.OptimumKnown)
	assert.Equal(t, 309.0, rec.KnownOptimum)
	assert.Equal(t, rec.Objective, rec.Value)
	assert.InDelta(t, 309-rec.Value, rec.Delta, 1e-9)
	assert.Equal(t, rec.Value == 309, rec.Reached)
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "x.csv")
	require.NoError(t, writeCSV(path, []string{"a", "b"}, [][]string{{"1", "2"}}))
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, readCSV(t, path))

	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	assert.Error(t, writeCSV(filepath.Join(blocker, "x.csv"), []string{"a"}, nil))
}
