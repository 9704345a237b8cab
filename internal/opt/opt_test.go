package opt

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/gcp"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/kbp"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/vrptw"
)

func cycle5(t *testing.T) *gcp.Instance {
	t.Helper()
	edges := []gcp.Edge{{U: 0, V: 1}, {U: 1, V: 2}, {U: 2, V: 3}, {U: 3, V: 4}, {U: 0, V: 4}}
	g, err := gcp.NewInstance("c5", 5, edges, gcp.WithOrigin(0), gcp.WithChromatic(3))
	require.NoError(t, err)
	return g
}

func p10(t *testing.T) *kbp.Instance {
	t.Helper()
	k, err := kbp.NewInstance("p10",
		[]int{92, 57, 49, 68, 60, 43, 67, 84, 87, 72},
		[]int{23, 31, 29, 44, 53, 38, 63, 85, 89, 82},
		165, kbp.WithOptimum(309))
	require.NoError(t, err)
	return k
}

func square(t *testing.T) *vrptw.Instance {
	t.Helper()
	nodes := []vrptw.Node{
		{ID: 0, Due: 1000},
		{ID: 1, X: 10, Demand: 3, Due: 1000},
		{ID: 2, Y: 10, Demand: 3, Due: 1000},
		{ID: 3, X: -10, Demand: 3, Due: 1000},
		{ID: 4, Y: -10, Demand: 3, Due: 1000},
	}
	in, err := vrptw.NewInstance("square", nodes, 6, 4, vrptw.WithBestKnown(2, 40+20*math.Sqrt2))
	require.NoError(t, err)
	return in
}

func settings() Settings {
	s := DefaultSettings()
	s.Budget = search.Budget{MaxIterations: 30}
	return s
}

func TestTerminalsMatchLibraries(t *testing.T) {
	gl, err := gcp.NewLibrary(cycle5(t), gcp.DefaultOptions())
	require.NoError(t, err)
	kl, err := kbp.NewLibrary(p10(t), kbp.DefaultOptions())
	require.NoError(t, err)
	vl, err := vrptw.NewLibrary(square(t), vrptw.DefaultOptions())
	require.NoError(t, err)

	for d, want := range map[problem.Domain]grammar.Terminals{
		problem.GCP:   gl.Terminals(),
		problem.KBP:   kl.Terminals(),
		problem.VRPTW: vl.Terminals(),
	} {
		got, err := Terminals(d)
		require.NoError(t, err)
		assert.Equal(t, want, got, d.String())
	}
	_, err = Terminals(problem.Domain(9))
	assert.Error(t, err)
}

func TestSolveEachFamily(t *testing.T) {
	tests := []struct {
		name string
		alg  Algorithm
		inst problem.Instance
		// want is the exact colour or vehicle count, or the greedy value a
		// knapsack run must not fall below.
		want float64
	}{
		{
			name: "gcp",
			alg: Algorithm{ID: "GCP-T", Domain: problem.GCP, Tree: grammar.Build("GreedyByDensest", grammar.Improve("KempeChain"),
				grammar.Step{Perturbation: "RandomRecolor", Strength: 0.2, Local: grammar.Improve("TabuRecolor")})},
			inst: cycle5(t),
			want: 3,
		},
		{
			name: "kbp",
			alg: Algorithm{ID: "KBP-T", Domain: problem.KBP, Tree: grammar.Build("GreedyByDensest", grammar.Improve("OneExchange"),
				grammar.Step{Perturbation: "RuinRecreate", Strength: 0.5, Local: grammar.Improve("TabuFlip")})},
			inst: p10(t),
			want: 247,
		},
		{
			name: "vrptw",
			alg:  Algorithm{ID: "VRPTW-T", Domain: problem.VRPTW, Tree: grammar.Build("GreedyByEfficiency", grammar.VNDOf("TwoOpt", "SwapInter"))},
			inst: square(t),
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.alg, 11, settings(), nil)
			require.NoError(t, err)
			res, err := s.Solve(context.Background(), tt.inst)
			require.NoError(t, err)
			assert.True(t, res.Feasible)
			assert.Equal(t, tt.alg.ID, res.Algorithm)
			assert.Equal(t, tt.inst.Name(), res.Instance)
			assert.Equal(t, tt.inst.Domain(), res.Domain)
			assert.Equal(t, int64(11), res.Seed)
			if tt.inst.Domain() == problem.KBP {
				assert.GreaterOrEqual(t, res.Fitness.Primary, tt.want)
			} else {
				assert.Equal(t, tt.want, res.Fitness.Primary)
			}
			assert.True(t, res.GapKnown)
			assert.NotEmpty(t, res.Metrics)
			assert.NotEmpty(t, res.Solution)
			assert.Positive(t, res.Evaluations)
			require.NotNil(t, res.Trace)
			assert.Positive(t, res.Trace.Len())
		})
	}
}

func TestSolveRejectsOtherFamily(t *testing.T) {
	alg := Algorithm{ID: "KBP-T", Domain: problem.KBP, Tree: grammar.Build("RCL", grammar.Improve("FlipBest"))}
	s, err := New(alg, 1, settings(), nil)
	require.NoError(t, err)
	_, err = s.Solve(context.Background(), cycle5(t))
	assert.Error(t, err)
}

func TestSolveUnknownOperator(t *testing.T) {
	alg := Algorithm{ID: "KBP-T", Domain: problem.KBP, Tree: grammar.Build("RCL", grammar.Improve("TwoOpt"))}
	s, err := New(alg, 1, settings(), nil)
	require.NoError(t, err)
	_, err = s.Solve(context.Background(), p10(t))
	assert.True(t, errors.Is(err, grammar.ErrMalformedTree))
}

func TestStrictKnapsackSettings(t *testing.T) {
	st := settings()
	st.KBP.Strict = true
	alg := Algorithm{ID: "KBP-T", Domain: problem.KBP, Tree: grammar.Build("GreedyByEfficiency", grammar.Improve("FlipBest"))}
	s, err := New(alg, 3, st, nil)
	require.NoError(t, err)
	res, err := s.Solve(context.Background(), p10(t))
	require.NoError(t, err)
	assert.True(t, res.Feasible)
	assert.Equal(t, res.Fitness.Primary, res.Objective)
}

func TestWeightedRoutingObjective(t *testing.T) {
	st := settings()
	st.VRPTW.Weighted = true
	st.VRPTW.Options.VehicleWeight = 500
	alg := Algorithm{ID: "VRPTW-T", Domain: problem.VRPTW, Tree: grammar.Build("GreedyByDensest", grammar.Improve("Relocate"))}
	s, err := New(alg, 3, st, nil)
	require.NoError(t, err)
	res, err := s.Solve(context.Background(), square(t))
	require.NoError(t, err)
	assert.InDelta(t, res.Fitness.Primary*500+res.Fitness.Secondary, res.Objective, 1e-9)
}

func TestSolveIsDeterministic(t *testing.T) {
	alg := Algorithm{ID: "KBP-T", Domain: problem.KBP, Tree: grammar.Build("Randomized", grammar.Improve("FlipBest"),
		grammar.Step{Perturbation: "RandomFlip", Strength: 0.3, Local: grammar.Improve("OneExchange")})}
	run := func() Result {
		s, err := New(alg, 99, settings(), nil)
		require.NoError(t, err)
		res, err := s.Solve(context.Background(), p10(t))
		require.NoError(t, err)
		return res
	}
	a, b := run(), run()
	assert.Equal(t, a.Solution, b.Solution)
	assert.Equal(t, a.Fitness, b.Fitness)
	assert.Equal(t, a.Evaluations, b.Evaluations)
	assert.Equal(t, a.Trace.Normalized(), b.Trace.Normalized())
}

func TestNewValidates(t *testing.T) {
	_, err := New(Algorithm{ID: "x", Domain: problem.GCP}, 1, settings(), nil)
	assert.Error(t, err)

	bad := settings()
	bad.Budget = search.Budget{}
	_, err = New(Algorithm{ID: "x", Tree: grammar.Build("RCL", grammar.Improve("FlipBest"))}, 1, bad, nil)
	assert.Error(t, err)

	bad = settings()
	bad.VRPTW.Options.VehicleWeight = 0
	assert.Error(t, bad.Validate())
	assert.NoError(t, DefaultSettings().Validate())
}

func TestAssembleAndRegenerate(t *testing.T) {
	spec := PoolSpec{Count: 4, BaseSeed: 7, MinDepth: 1, MaxDepth: 3, Retries: 5}
	algs, err := Assemble(problem.VRPTW, spec, nil)
	require.NoError(t, err)
	require.Len(t, algs, 4)

	seen := map[string]bool{}
	for i, a := range algs {
		assert.Equal(t, AlgorithmID(problem.VRPTW, i), a.ID)
		sig := grammar.Signature(a.Tree)
		assert.False(t, seen[sig], "duplicate %s", sig)
		seen[sig] = true

		back, err := Regenerate(problem.VRPTW, a.ID, a.Tree.Seed, spec.MinDepth, spec.MaxDepth, sig)
		require.NoError(t, err)
		assert.Equal(t, sig, grammar.Signature(back.Tree))
	}

	_, err = Regenerate(problem.VRPTW, "x", algs[0].Tree.Seed, spec.MinDepth, spec.MaxDepth, "Other;Sig")
	assert.True(t, errors.Is(err, ErrStaleAlgorithm))

	again, err := Assemble(problem.VRPTW, spec, nil)
	require.NoError(t, err)
	for i := range algs {
		assert.Equal(t, grammar.Signature(algs[i].Tree), grammar.Signature(again[i].Tree))
	}

	_, err = Assemble(problem.GCP, PoolSpec{Count: 0, MinDepth: 1, MaxDepth: 1}, nil)
	assert.Error(t, err)
	assert.Equal(t, "GCP-A01", AlgorithmID(problem.GCP, 0))
}

func TestPerFamilySearchSettings(t *testing.T) {
	sa := search.SkeletonSA
	always := search.AcceptAlways
	st := settings()
	st.PerFamily = map[string]SearchOverride{
		"KBP": {Skeleton: &sa},
		"gcp": {Acceptance: &always},
	}
	require.NoError(t, st.Validate())

	assert.Equal(t, search.SkeletonSA, st.SearchFor(problem.KBP).Skeleton)
	assert.Equal(t, search.AcceptBetter, st.SearchFor(problem.KBP).Acceptance)
	assert.Equal(t, search.SkeletonAuto, st.SearchFor(problem.GCP).Skeleton)
	assert.Equal(t, search.AcceptAlways, st.SearchFor(problem.GCP).Acceptance)
	assert.Equal(t, st.Search, st.SearchFor(problem.VRPTW))

	tree := func(d problem.Domain) *grammar.Tree {
		if d == problem.KBP {
			return grammar.Build("GreedyByEfficiency", grammar.Improve("FlipBest"),
				grammar.Step{Perturbation: "RandomFlip", Strength: 0.2, Local: grammar.Improve("FlipBest")})
		}
		return grammar.Build("GreedyByDensest", grammar.Improve("KempeChain"),
			grammar.Step{Perturbation: "RandomRecolor", Strength: 0.2, Local: grammar.Improve("SingleRecolor")})
	}
	for _, c := range []struct {
		inst problem.Instance
		want search.Skeleton
	}{
		{p10(t), search.SkeletonSA},
		{cycle5(t), search.SkeletonILS},
	} {
		d := c.inst.Domain()
		s, err := New(Algorithm{ID: d.String() + "-T", Domain: d, Tree: tree(d)}, 5, st, nil)
		require.NoError(t, err)
		res, err := s.Solve(context.Background(), c.inst)
		require.NoError(t, err)
		assert.Equal(t, c.want, res.Skeleton, "%s", d)
	}

	st.PerFamily = map[string]SearchOverride{"TSP": {Skeleton: &sa}}
	assert.Error(t, st.Validate())
}
