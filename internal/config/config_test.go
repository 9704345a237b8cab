package config

import (
	"errors"
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

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestPresetsAreValid(t *testing.T) {
	for _, mode := range []string{ModeQuick, ModeFull, ModeCustom} {
		e, err := Preset(mode)
		require.NoError(t, err)
		assert.NoError(t, e.Validate(), mode)
		assert.Equal(t, mode, e.Mode)
	}
	_, err := Preset("huge")
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	q, f := QuickPreset(), FullPreset()
	assert.Less(t, q.Algorithms.Count, f.Algorithms.Count)
	assert.Less(t, q.Repetitions, f.Repetitions)
	assert.Less(t, q.Settings.Budget.MaxIterations, f.Settings.Budget.MaxIterations)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "exp.yaml", `
mode: custom
families: [KBP, vrptw]
instances:
  KBP: ["data/*.kp"]
  VRPTW: ["data/*.txt"]
algorithms:
  count: 5
  seed: 7
  min_depth: 2
  max_depth: 4
repetitions: 3
run_timeout: 30s
settings:
  budget:
    max_iterations: 500
    wall_clock: 10s
  search:
    skeleton: sa
    acceptance: probabilistic
  kbp:
    strict: true
  vrptw:
    weighted: true
output_dir: out
`)
	e, err := Load(path, QuickPreset())
	require.NoError(t, err)
	assert.Equal(t, ModeCustom, e.Mode)
	assert.Equal(t, []string{"KBP", "vrptw"}, e.Families)
	ds, err := e.Domains()
	require.NoError(t, err)
	assert.Equal(t, []problem.Domain{problem.KBP, problem.VRPTW}, ds)
	assert.Equal(t, []string{"data/*.kp"}, e.Patterns(problem.KBP))
	assert.Equal(t, opt.PoolSpec{Count: 5, BaseSeed: 7, MinDepth: 2, MaxDepth: 4, Retries: 10}, e.PoolSpec())
	assert.Equal(t, 3, e.Repetitions)
	assert.Equal(t, 30*time.Second, e.RunTimeout)
	assert.Equal(t, 500, e.Settings.Budget.MaxIterations)
	assert.Equal(t, 10*time.Second, e.Settings.Budget.WallClock)
	assert.Equal(t, 50, e.Settings.Budget.MaxStale, "unset fields keep the preset")
	assert.Equal(t, search.SkeletonSA, e.Settings.Search.Skeleton)
	assert.Equal(t, search.AcceptProbabilistic, e.Settings.Search.Acceptance)
	assert.True(t, e.Settings.KBP.Strict)
	assert.True(t, e.Settings.VRPTW.Weighted)
	assert.Equal(t, "out", e.OutputDir)
}

func TestLoadPerFamilySearch(t *testing.T) {
	path := writeFile(t, "exp.yaml", `
families: [GCP, KBP]
settings:
  per_family:
    KBP:
      skeleton: sa
    GCP:
      acceptance: always
`)
	e, err := Load(path, QuickPreset())
	require.NoError(t, err)
	require.NoError(t, e.Validate())
	assert.Equal(t, search.SkeletonSA, e.Settings.SearchFor(problem.KBP).Skeleton)
	assert.Equal(t, search.SkeletonAuto, e.Settings.SearchFor(problem.GCP).Skeleton)
	assert.Equal(t, search.AcceptAlways, e.Settings.SearchFor(problem.GCP).Acceptance)

	bad := writeFile(t, "bad.yaml", "settings:\n  per_family:\n    TSP:\n      skeleton: sa\n")
	e, err = Load(bad, QuickPreset())
	if err == nil {
		err = e.Validate()
	}
	assert.Error(t, err)
}

func TestLoadJSONDocument(t *testing.T) {
	path := writeFile(t, "exp.json", `{"mode": "full", "repetitions": 4, "output_dir": "results"}`)
	e, err := Load(path, FullPreset())
	require.NoError(t, err)
	assert.Equal(t, 4, e.Repetitions)
	assert.Equal(t, "results", e.OutputDir)
}

func TestLoadMissingFileKeepsBase(t *testing.T) {
	e, err := Load(filepath.Join(t.TempDir(), "none.yaml"), QuickPreset())
	require.NoError(t, err)
	assert.Equal(t, QuickPreset().Algorithms, e.Algorithms)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := writeFile(t, "bad.yaml", "mode: [unclosed")
	_, err := Load(path, QuickPreset())
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("GAA_REPETITIONS", "7")
	t.Setenv("GAA_FAMILIES", "GCP, KBP")
	t.Setenv("GAA_WALL_CLOCK", "1m")
	t.Setenv("GAA_SKELETON", "grasp")
	t.Setenv("GAA_BASE_SEED", "123")
	e, err := Load("", QuickPreset())
	require.NoError(t, err)
	assert.Equal(t, 7, e.Repetitions)
	assert.Equal(t, []string{"GCP", "KBP"}, e.Families)
	assert.Equal(t, time.Minute, e.Settings.Budget.WallClock)
	assert.Equal(t, search.SkeletonGRASP, e.Settings.Search.Skeleton)
	assert.Equal(t, int64(123), e.BaseSeed)
	assert.Contains(t, Env(), "GAA_WORKERS")

	t.Setenv("GAA_WORKERS", "many")
	_, err = Load("", QuickPreset())
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Experiment)
	}{
		{"unknown mode", func(e *Experiment) { e.Mode = "fast" }},
		{"no families", func(e *Experiment) { e.Families = nil }},
		{"unknown family", func(e *Experiment) { e.Families = []string{"TSP"} }},
		{"duplicate family", func(e *Experiment) { e.Families = []string{"KBP", "kp"} }},
		{"family without patterns", func(e *Experiment) { e.Instances = map[string][]string{"GCP": {"*.col"}} }},
		{"unknown instance key", func(e *Experiment) { e.Instances["TSP"] = []string{"*.tsp"} }},
		{"zero repetitions", func(e *Experiment) { e.Repetitions = 0 }},
		{"negative workers", func(e *Experiment) { e.Workers = -1 }},
		{"depth inverted", func(e *Experiment) { e.Algorithms.MinDepth, e.Algorithms.MaxDepth = 3, 2 }},
		{"no algorithms", func(e *Experiment) { e.Algorithms.Count = 0 }},
		{"no output", func(e *Experiment) { e.OutputDir = "" }},
		{"bad log level", func(e *Experiment) { e.LogLevel = "loud" }},
		{"empty budget", func(e *Experiment) { e.Settings.Budget = search.Budget{} }},
		{"bad cooling", func(e *Experiment) {
			e.Settings.Search.Skeleton = search.SkeletonSA
			e.Settings.Search.Cooling.Alpha = 2
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := QuickPreset()
			tt.mutate(&e)
			err := e.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}
