package kbp

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

func randomInstance(seed int64, n int) *Instance {
	rng := rand.New(rand.NewSource(seed))
	values := make([]int, n)
	weights := make([]int, n)
	total := 0
	for i := range values {
		values[i] = 1 + rng.Intn(100)
		weights[i] = 1 + rng.Intn(100)
		total += weights[i]
	}
	k, err := NewInstance(fmt.Sprintf("r%d", seed), values, weights, total/2)
	if err != nil {
		panic(err)
	}
	return k
}

func randomSelection(k *Instance, seed int64, p float64) *Solution {
	rng := rand.New(rand.NewSource(seed))
	s := NewSolution(k)
	for i := 0; i < k.N(); i++ {
		if rng.Float64() < p {
			s.Add(i)
		}
	}
	return s
}

func testInstances() []*Instance {
	return []*Instance{p10(), randomInstance(1, 40), randomInstance(2, 120)}
}

func newContext(seed int64) *search.Context {
	return search.NewContext(seed, search.Budget{MaxIterations: 100})
}

func TestConstructivesAreFeasible(t *testing.T) {
	for _, k := range testInstances() {
		lib, err := NewLibrary(k, DefaultOptions())
		require.NoError(t, err)
		for _, name := range lib.Terminals().Constructives {
			op, _ := lib.Constructive(name)
			s := op.Construct(newContext(3))
			assert.True(t, s.Feasible(), "%s on %s", name, k.Name())
			assert.Positive(t, s.Count(), "%s on %s", name, k.Name())
			// Maximal: no left-out item fits the residual capacity.
			for i := 0; i < k.N(); i++ {
				if !s.Has(i) {
					assert.Greater(t, k.Weight(i), s.Residual(), "%s left item %d out", name, i)
				}
			}
		}
	}
}

func TestRepairsAlwaysFeasible(t *testing.T) {
	for _, k := range testInstances() {
		lib, err := NewLibrary(k, DefaultOptions())
		require.NoError(t, err)
		for _, name := range lib.Repairs() {
			op, _ := lib.Repair(name)
			for seed := int64(0); seed < 5; seed++ {
				in := randomSelection(k, seed, 0.9)
				before := in.Clone()
				out := op.Repair(in, newContext(seed))
				assert.True(t, out.Feasible(), "%s on %s seed %d", name, k.Name(), seed)
				assert.True(t, in.Equal(before), "%s mutated its input", name)
			}
			good := greedyByEfficiency{k}.Construct(nil)
			assert.Same(t, good, op.Repair(good, newContext(1)))
		}
	}
}

func TestImprovementsNeverWorsen(t *testing.T) {
	for _, k := range testInstances() {
		lib, err := NewLibrary(k, DefaultOptions())
		require.NoError(t, err)
		evals := []*Evaluator{NewEvaluator(k), NewEvaluator(k, WithStrict())}
		starts := []*Solution{
			greedyByDensest{k}.Construct(nil),
			randomized{k}.Construct(newContext(4)),
			randomSelection(k, 9, 0.7),
		}
		for _, name := range lib.Terminals().Improvements {
			op, _ := lib.Improvement(name)
			for i, s := range starts {
				before := s.Clone()
				out := op.Improve(s, newContext(int64(i)))
				for _, eval := range evals {
					obj := eval.Objective()
					assert.False(t, obj.Better(eval.Evaluate(s), eval.Evaluate(out)), "%s worsened start %d on %s", name, i, k.Name())
				}
				assert.True(t, s.Equal(before), "%s mutated its input", name)
				if s.Feasible() {
					assert.True(t, out.Feasible(), "%s lost feasibility", name)
				}
			}
		}
	}
}

func TestPerturbationsKeepInputIntact(t *testing.T) {
	k := randomInstance(5, 80)
	lib, err := NewLibrary(k, DefaultOptions())
	require.NoError(t, err)
	s := greedyByEfficiency{k}.Construct(nil)
	before := s.Clone()
	for _, name := range lib.Terminals().Perturbations {
		op, _ := lib.Perturbation(name)
		for _, strength := range []float64{0, 0.3, 1} {
			out := op.Perturb(s, newContext(2), strength)
			assert.True(t, s.Equal(before), "%s mutated its input", name)
			assert.False(t, out.Equal(s), "%s at %g left the selection unchanged", name, strength)
		}
	}
	ruined := ruinRecreate{k}.Perturb(s, newContext(2), 0.5)
	assert.True(t, ruined.Feasible())
}

func TestFlipBestFillsResidualCapacity(t *testing.T) {
	k := p10()
	s, err := FromItems(k, []int{0, 1})
	require.NoError(t, err)
	lib, err := NewLibrary(k, DefaultOptions())
	require.NoError(t, err)
	op, _ := lib.Improvement("FlipBest")
	out := op.Improve(s, newContext(1))
	assert.True(t, out.Feasible())
	assert.Greater(t, out.TotalValue(), s.TotalValue())
	for i := 0; i < k.N(); i++ {
		if !out.Has(i) {
			assert.Greater(t, k.Weight(i), out.Residual())
		}
	}
}

func TestOneExchangeSwapsForValue(t *testing.T) {
	// Capacity 10: {0} holds value 5; swapping it for item 1 gains 3.
	k, err := NewInstance("swap", []int{5, 8}, []int{6, 9}, 10)
	require.NoError(t, err)
	s, err := FromItems(k, []int{0})
	require.NoError(t, err)
	out := oneExchange{inst: k, sc: scorer{capacity: 10, penalty: DefaultPenalty(k)}, opts: DefaultOptions()}.Improve(s, newContext(1))
	assert.Equal(t, []int{1}, out.Items())
	flip := flipBest{inst: k, sc: scorer{capacity: 10, penalty: DefaultPenalty(k)}, opts: DefaultOptions()}.Improve(s, newContext(1))
	assert.Same(t, s, flip)
}

// lowDim10 is f1_l-d_kp_10_269 from Pisinger's low-dimensional set.
func lowDim10() *Instance {
	k, err := NewInstance("f1_l-d_kp_10_269",
		[]int{55, 10, 47, 5, 4, 50, 8, 61, 85, 87},
		[]int{95, 4, 60, 32, 23, 72, 80, 62, 65, 46},
		269, WithOptimum(295))
	if err != nil {
		panic(err)
	}
	return k
}

func TestPisingerScenarioReachesOptimum(t *testing.T) {
	k := lowDim10()
	greedy := greedyByEfficiency{k}.Construct(nil)
	assert.Equal(t, 294, greedy.TotalValue())

	lib, err := NewLibrary(k, DefaultOptions())
	require.NoError(t, err)
	eval := NewEvaluator(k)
	eng, err := search.NewEngine[*Solution](lib, eval, search.DefaultConfig())
	require.NoError(t, err)
	for _, pert := range lib.Terminals().Perturbations {
		t.Run(pert, func(t *testing.T) {
			tree := grammar.Build("GreedyByEfficiency", grammar.Improve("FlipBest"),
				grammar.Step{Perturbation: pert, Strength: 0.3, Local: grammar.Improve("OneExchange")})
			out, err := eng.Solve(context.Background(), tree, search.NewContext(42, search.Budget{MaxIterations: 500}))
			require.NoError(t, err)
			assert.Equal(t, search.SkeletonILS, out.Skeleton)
			assert.Equal(t, 295, out.Best.TotalValue())
			assert.Equal(t, 295.0, out.Fitness.Primary)
			gap, ok := eval.Gap(out.Best)
			require.True(t, ok)
			assert.Zero(t, gap)
		})
	}
}

func TestGRASPOnKnapsack(t *testing.T) {
	k := randomInstance(11, 60)
	lib, err := NewLibrary(k, DefaultOptions())
	require.NoError(t, err)
	eval := NewEvaluator(k)
	eng, err := search.NewEngine[*Solution](lib, eval, search.DefaultConfig())
	require.NoError(t, err)
	tree := grammar.Build("RCL", grammar.VNDOf("FlipBest", "OneExchange"))
	out, err := eng.Solve(context.Background(), tree, search.NewContext(1, search.Budget{MaxIterations: 20}))
	require.NoError(t, err)
	assert.Equal(t, search.SkeletonGRASP, out.Skeleton)
	assert.True(t, out.Best.Feasible())
	greedy := greedyByEfficiency{k}.Construct(nil)
	assert.GreaterOrEqual(t, out.Best.TotalValue(), greedy.TotalValue()-k.MaxValue())
}

func TestSearchIsDeterministic(t *testing.T) {
	k := randomInstance(7, 50)
	lib, err := NewLibrary(k, DefaultOptions())
	require.NoError(t, err)
	cfg := search.DefaultConfig()
	cfg.Acceptance = search.AcceptProbabilistic
	eng, err := search.NewEngine[*Solution](lib, NewEvaluator(k), cfg)
	require.NoError(t, err)
	tree := grammar.Build("Randomized", grammar.Improve("FlipBest"),
		grammar.Step{Perturbation: "RandomFlip", Strength: 0.1, Local: grammar.Improve("OneExchange")})

	run := func() search.Outcome[*Solution] {
		out, err := eng.Solve(context.Background(), tree, search.NewContext(5, search.Budget{MaxIterations: 30}))
		require.NoError(t, err)
		return out
	}
	a, b := run(), run()
	assert.Equal(t, a.Best.Items(), b.Best.Items())
	assert.Equal(t, a.Fitness, b.Fitness)
}
