package vrptw

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/search"
)

// randomInstance scatters n customers on a 100x100 grid around a central
// depot with windows of the given width placed so that each customer can
// be served alone.
func randomInstance(seed int64, n int, width float64) *Instance {
	const horizon = 400.0
	rng := rand.New(rand.NewSource(seed))
	nodes := make([]Node, n+1)
	nodes[0] = Node{X: 50, Y: 50, Due: horizon}
	for i := 1; i <= n; i++ {
		x, y := rng.Float64()*100, rng.Float64()*100
		d0 := math.Hypot(x-50, y-50)
		service := 5.0
		center := d0 + rng.Float64()*(horizon-2*d0-service)
		nodes[i] = Node{
			ID: i, X: x, Y: y,
			Demand:  1 + rng.Intn(20),
			Ready:   math.Max(0, center-width/2),
			Due:     center + width/2,
			Service: service,
		}
	}
	in, err := NewInstance(fmt.Sprintf("r%d", seed), nodes, 60, n)
	if err != nil {
		panic(err)
	}
	return in
}

func testInstances() []*Instance {
	return []*Instance{square(), line(), randomInstance(1, 25, 60), randomInstance(2, 40, 200)}
}

func newContext(seed int64) *search.Context {
	return search.NewContext(seed, search.Budget{MaxIterations: 100})
}

// servedOnce checks that every customer appears on exactly one route.
func servedOnce(t *testing.T, s *Solution, msg string) {
	t.Helper()
	seen := make([]int, s.Instance().NumNodes())
	for _, r := range s.Routes() {
		require.Equal(t, 0, r[0], msg)
		require.Equal(t, 0, r[len(r)-1], msg)
		for _, c := range r[1 : len(r)-1] {
			seen[c]++
		}
	}
	for c := 1; c < len(seen); c++ {
		assert.Equal(t, 1, seen[c], "%s: customer %d", msg, c)
	}
}

// scramble deals customers round robin onto k routes in random order,
// ignoring every constraint.
func scramble(in *Instance, seed int64, k int) *Solution {
	rng := rand.New(rand.NewSource(seed))
	routes := make([][]int, k)
	for i, c := range rng.Perm(in.Size()) {
		routes[i%k] = append(routes[i%k], c+1)
	}
	s, err := FromRoutes(in, routes)
	if err != nil {
		panic(err)
	}
	return s
}

func TestConstructivesAreFeasible(t *testing.T) {
	for _, in := range testInstances() {
		lib, err := NewLibrary(in, DefaultOptions())
		require.NoError(t, err)
		for _, name := range lib.Terminals().Constructives {
			op, _ := lib.Constructive(name)
			s := op.Construct(newContext(3))
			msg := fmt.Sprintf("%s on %s", name, in.Name())
			assert.True(t, s.Feasible(), msg)
			servedOnce(t, s, msg)
			for _, r := range s.Routes() {
				assert.True(t, in.IsRouteFeasible(r), msg)
			}
		}
	}
}

func TestRepairsAlwaysFeasible(t *testing.T) {
	for _, in := range testInstances() {
		lib, err := NewLibrary(in, DefaultOptions())
		require.NoError(t, err)
		for _, name := range lib.Repairs() {
			op, _ := lib.Repair(name)
			for seed := int64(0); seed < 4; seed++ {
				in1 := scramble(in, seed, 1+int(seed))
				before := in1.Clone()
				out := op.Repair(in1, newContext(seed))
				msg := fmt.Sprintf("%s on %s seed %d", name, in.Name(), seed)
				assert.True(t, out.Feasible(), msg)
				servedOnce(t, out, msg)
				assert.True(t, in1.Equal(before), "%s mutated its input", name)
			}
			partial, err := FromRoutes(in, [][]int{{1}})
			require.NoError(t, err)
			out := op.Repair(partial, newContext(1))
			assert.True(t, out.Feasible())
			servedOnce(t, out, name+" on partial")
		}
	}
}

func TestRepairsFixTimeWindowOrder(t *testing.T) {
	in := line()
	bad, err := FromRoutes(in, [][]int{{2, 1}})
	require.NoError(t, err)
	want, err := FromRoutes(in, [][]int{{1, 2}})
	require.NoError(t, err)
	assert.True(t, greedyComplete{in}.Repair(bad, nil).Equal(want))
	assert.True(t, removeWorst{in}.Repair(bad, nil).Equal(want))
}

func TestImprovementsNeverWorsen(t *testing.T) {
	for _, in := range testInstances() {
		lib, err := NewLibrary(in, DefaultOptions())
		require.NoError(t, err)
		evals := []*Evaluator{NewEvaluator(in), NewEvaluator(in, WithWeighted(0))}
		starts := []*Solution{
			greedyByEfficiency{in}.Construct(nil),
			randomized{in}.Construct(newContext(4)),
			scramble(in, 9, 2),
		}
		for _, name := range lib.Terminals().Improvements {
			op, _ := lib.Improvement(name)
			for i, s := range starts {
				before := s.Clone()
				out := op.Improve(s, newContext(int64(i)))
				msg := fmt.Sprintf("%s start %d on %s", name, i, in.Name())
				for _, eval := range evals {
					assert.False(t, eval.Objective().Better(eval.Evaluate(s), eval.Evaluate(out)), msg)
				}
				assert.True(t, s.Equal(before), "%s mutated its input", msg)
				servedOnce(t, out, msg)
				if s.Feasible() {
					assert.True(t, out.Feasible(), "%s lost feasibility", msg)
				}
			}
		}
	}
}

func TestPerturbationsKeepInputIntact(t *testing.T) {
	in := randomInstance(5, 30, 150)
	lib, err := NewLibrary(in, DefaultOptions())
	require.NoError(t, err)
	s := greedyByScarcity{in}.Construct(nil)
	before := s.Clone()
	for _, name := range lib.Terminals().Perturbations {
		op, _ := lib.Perturbation(name)
		for _, strength := range []float64{0, 0.3, 1} {
			out := op.Perturb(s, newContext(2), strength)
			msg := fmt.Sprintf("%s at %g", name, strength)
			assert.True(t, s.Equal(before), "%s mutated its input", msg)
			servedOnce(t, out, msg)
			if name != "RandomRelocate" {
				assert.True(t, out.Feasible(), msg)
			}
		}
	}
}

func TestOperatorsOnSquare(t *testing.T) {
	in := square()
	ec := newContext(1)
	opts := DefaultOptions()

	nn := greedyByEfficiency{in}.Construct(ec)
	assert.Equal(t, 2, nn.NumVehicles())
	assert.InDelta(t, 40+20*math.Sqrt2, nn.TotalDistance(), 1e-9)

	cw := greedyByDensest{in}.Construct(ec)
	assert.Equal(t, 2, cw.NumVehicles())
	assert.InDelta(t, 40+20*math.Sqrt2, cw.TotalDistance(), 1e-9)

	// Opposite customers paired: 2-opt* or a swap reconnects neighbours.
	crossed, err := FromRoutes(in, [][]int{{1, 3}, {2, 4}})
	require.NoError(t, err)
	for _, op := range []search.Improvement[*Solution]{twoOpt{in, opts}, swapInter{in, opts}} {
		out := op.Improve(crossed, ec)
		assert.InDelta(t, 40+20*math.Sqrt2, out.TotalDistance(), 1e-9, op.Name())
	}

	singles, err := FromRoutes(in, [][]int{{1}, {2}, {3}, {4}})
	require.NoError(t, err)
	out := routeElimination{in, opts}.Improve(singles, ec)
	assert.Equal(t, 2, out.NumVehicles())
	assert.True(t, out.Feasible())
	relocated := relocate{in, opts}.Improve(singles, ec)
	assert.Less(t, relocated.NumVehicles(), 4)
}

func TestSquareScenario(t *testing.T) {
	in := square()
	lib, err := NewLibrary(in, DefaultOptions())
	require.NoError(t, err)
	eng, err := search.NewEngine[*Solution](lib, NewEvaluator(in), search.DefaultConfig())
	require.NoError(t, err)
	tree := grammar.Build("Randomized", grammar.VNDOf("Relocate", "RouteElimination"),
		grammar.Step{Perturbation: "RuinRecreate", Strength: 0.5, Local: grammar.VNDOf("TwoOpt", "SwapInter")})
	out, err := eng.Solve(context.Background(), tree, search.NewContext(42, search.Budget{MaxIterations: 30}))
	require.NoError(t, err)
	assert.Equal(t, 2, out.Best.NumVehicles())
	assert.InDelta(t, 40+20*math.Sqrt2, out.Best.TotalDistance(), 1e-9)
	gap, ok := NewEvaluator(in).Gap(out.Best)
	assert.True(t, ok)
	assert.InDelta(t, 0, gap, 1e-9)
}

func TestRandomInstanceScenario(t *testing.T) {
	in := randomInstance(3, 40, 80)
	lib, err := NewLibrary(in, DefaultOptions())
	require.NoError(t, err)
	eval := NewEvaluator(in)
	eng, err := search.NewEngine[*Solution](lib, eval, search.DefaultConfig())
	require.NoError(t, err)
	start := greedyByScarcity{in}.Construct(nil)
	tree := grammar.Build("GreedyByScarcity", grammar.VNDOf("RouteElimination", "Relocate", "TwoOpt"),
		grammar.Step{Perturbation: "SegmentRemoval", Strength: 0.1, Local: grammar.Improve("TabuRelocate")})

	run := func() search.Outcome[*Solution] {
		out, err := eng.Solve(context.Background(), tree, search.NewContext(7, search.Budget{MaxIterations: 15}))
		require.NoError(t, err)
		return out
	}
	a := run()
	assert.True(t, a.Best.Feasible())
	servedOnce(t, a.Best, "scenario")
	assert.False(t, eval.IsBetterThan(start, a.Best))

	b := run()
	assert.True(t, a.Best.Equal(b.Best))
	assert.Equal(t, a.Fitness, b.Fitness)
}

func TestAnnealingOnVRPTW(t *testing.T) {
	in := randomInstance(4, 20, 200)
	lib, err := NewLibrary(in, DefaultOptions())
	require.NoError(t, err)
	cfg := search.DefaultConfig()
	cfg.Skeleton = search.SkeletonSA
	eng, err := search.NewEngine[*Solution](lib, NewEvaluator(in), cfg)
	require.NoError(t, err)
	tree := grammar.Build("RegretInsertion", grammar.Improve("OrOpt"))
	out, err := eng.Solve(context.Background(), tree, search.NewContext(3, search.Budget{MaxIterations: 200}))
	require.NoError(t, err)
	assert.Equal(t, search.SkeletonSA, out.Skeleton)
	assert.True(t, out.Best.Feasible())
}
