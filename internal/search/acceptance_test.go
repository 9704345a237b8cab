package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
)

func TestAcceptanceRules(t *testing.T) {
	feasible := func(v float64) Fitness { return Fitness{Primary: v, Feasible: true} }
	lower := Objective{Sense: Minimize}
	higher := Objective{Sense: Maximize}

	tests := []struct {
		name      string
		rule      Acceptance
		obj       Objective
		cur, cand Fitness
		temp      float64
		want      bool
	}{
		{"better takes improvement", AcceptBetter, lower, feasible(5), feasible(4), 0, true},
		{"better takes equal score", AcceptBetter, lower, feasible(5), feasible(5), 0, true},
		{"better rejects worse", AcceptBetter, lower, feasible(5), feasible(6), 0, false},
		{"better takes equal score when maximising", AcceptBetter, higher, feasible(7), feasible(7), 0, true},
		{"better rejects worse when maximising", AcceptBetter, higher, feasible(7), feasible(6), 0, false},
		{"better rejects infeasible candidate", AcceptBetter, lower, feasible(5), Fitness{Primary: 1}, 0, false},
		{"better takes feasible over infeasible", AcceptBetter, lower, Fitness{Primary: 1}, feasible(50), 0, true},
		{"always takes worse", AcceptAlways, lower, feasible(5), feasible(500), 0, true},
		{"always takes infeasible", AcceptAlways, lower, feasible(5), Fitness{Primary: 5}, 0, true},
		{"probabilistic takes equal score when frozen", AcceptProbabilistic, lower, feasible(5), feasible(5), 0, true},
		{"probabilistic rejects worse when frozen", AcceptProbabilistic, lower, feasible(5), feasible(6), 0, false},
		{"probabilistic takes feasible over infeasible", AcceptProbabilistic, lower, Fitness{Primary: 1}, feasible(9), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec := NewContext(1, Budget{MaxIterations: 1})
			assert.Equal(t, tt.want, tt.rule.accept(ec, tt.obj, tt.cur, tt.cand, tt.temp))
		})
	}
}

func TestObjectiveNotWorse(t *testing.T) {
	lex := Objective{Lexicographic: true}
	a := Fitness{Primary: 3, Secondary: 10, Feasible: true}
	assert.True(t, lex.NotWorse(a, a))
	assert.True(t, lex.NotWorse(a, Fitness{Primary: 3, Secondary: 11, Feasible: true}))
	assert.False(t, lex.NotWorse(Fitness{Primary: 4, Secondary: 1, Feasible: true}, a))
}

// tagged logs every call, as a perturbation or as an improvement.
type tagged struct {
	name string
	log  *[]string
}

func (t tagged) Name() string { return t.name }

func (t tagged) Perturb(v *vec, _ *Context, _ float64) *vec {
	*t.log = append(*t.log, t.name)
	return v.Clone()
}

func (t tagged) Improve(v *vec, _ *Context) *vec {
	*t.log = append(*t.log, t.name)
	return v
}

func TestILSCyclesStagesOnPlateau(t *testing.T) {
	var log []string
	lib := NewLibrary[*vec]().
		AddConstructive(zeroInit{n: 3}).
		AddImprovement(noop{}).
		AddRepair(fix{})
	for _, name := range []string{"P1", "P2", "P3"} {
		lib.AddPerturbation(tagged{name: name, log: &log})
	}
	for _, name := range []string{"L2", "L3", "L4"} {
		lib.AddImprovement(tagged{name: name, log: &log})
	}
	eng, err := NewEngine[*vec](lib, &vecEval{target: []int{1, 1, 1}}, DefaultConfig())
	require.NoError(t, err)

	tree := grammar.Build("Zero", grammar.Improve("Noop"),
		grammar.Step{Perturbation: "P1", Strength: 0.1, Local: grammar.Improve("L2")},
		grammar.Step{Perturbation: "P2", Strength: 0.1, Local: grammar.Improve("L3")},
		grammar.Step{Perturbation: "P3", Strength: 0.1, Local: grammar.Improve("L4")})
	ec := NewContext(4, Budget{MaxIterations: 7})
	_, err = eng.Solve(context.Background(), tree, ec)
	require.NoError(t, err)

	// Iteration k applies the pair (Pj, Lj+1) with j = k mod 3.
	assert.Equal(t, []string{
		"P1", "L2", "P2", "L3", "P3", "L4",
		"P1", "L2",
	}, log)

	// Every candidate scores the same as the current solution.
	recs := ec.Trace().Records()
	require.Len(t, recs, 8)
	for _, rec := range recs[1:] {
		assert.True(t, rec.Accepted, "iteration %d", rec.Iteration)
		assert.False(t, rec.Improved, "iteration %d", rec.Iteration)
	}
}

type targetInit struct{ target []int }

func (targetInit) Name() string { return "Target" }
func (t targetInit) Construct(*Context) *vec {
	return &vec{x: append([]int(nil), t.target...)}
}

// drift moves the first coordinate one unit further from the target.
type drift struct{}

func (drift) Name() string { return "Drift" }
func (drift) Perturb(v *vec, _ *Context, _ float64) *vec {
	out := v.Clone()
	out.x[0]++
	return out
}

func TestILSAcceptanceOnWorseningMoves(t *testing.T) {
	target := []int{2, 2}
	tests := []struct {
		rule        Acceptance
		wantCurrent func(iter int) float64
	}{
		{AcceptBetter, func(int) float64 { return 0 }},
		{AcceptAlways, func(iter int) float64 { return float64(iter) }},
	}
	for _, tt := range tests {
		t.Run(tt.rule.String(), func(t *testing.T) {
			lib := NewLibrary[*vec]().
				AddConstructive(targetInit{target: target}).
				AddImprovement(noop{}).
				AddPerturbation(drift{}).
				AddRepair(fix{})
			cfg := DefaultConfig()
			cfg.Acceptance = tt.rule
			eng, err := NewEngine[*vec](lib, &vecEval{target: target}, cfg)
			require.NoError(t, err)

			tree := grammar.Build("Target", grammar.Improve("Noop"),
				grammar.Step{Perturbation: "Drift", Strength: 0.1, Local: grammar.Improve("Noop")})
			ec := NewContext(1, Budget{MaxIterations: 5})
			out, err := eng.Solve(context.Background(), tree, ec)
			require.NoError(t, err)

			for _, rec := range ec.Trace().Records()[1:] {
				assert.Equal(t, tt.rule == AcceptAlways, rec.Accepted, "iteration %d", rec.Iteration)
				assert.False(t, rec.Improved, "iteration %d", rec.Iteration)
				assert.Equal(t, tt.wantCurrent(rec.Iteration), rec.Current.Primary, "iteration %d", rec.Iteration)
				assert.Zero(t, rec.Best.Primary, "iteration %d", rec.Iteration)
			}
			assert.Equal(t, target, out.Best.x)
		})
	}
}
