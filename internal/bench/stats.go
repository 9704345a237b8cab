package bench

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Stats struct {
	N    int
	Best float64
	Mean float64
	Std  float64
}

// CalcStats summarises values. Best is the maximum when maximize is set and
// the minimum otherwise; Std is the sample deviation and 0 below two values.
func CalcStats(values []float64, maximize bool) Stats {
	s := Stats{N: len(values)}
	if s.N == 0 {
		return s
	}
	if maximize {
		s.Best = floats.Max(values)
	} else {
		s.Best = floats.Min(values)
	}
	if s.N < 2 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(values, nil)
	return s
}

// Summary aggregates the repetitions of one algorithm on one instance.
// Objective and Gap cover feasible runs only.
type Summary struct {
	Algorithm   string
	Family      string
	Instance    string
	Runs        int
	Feasible    int
	Failed      int
	Objective   Stats
	Gap         Stats
	TimeMs      Stats
	Evaluations Stats
}

// FeasibleRate is the share of runs that ended feasible.
func (s Summary) FeasibleRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Feasible) / float64(s.Runs)
}

// Summarize groups records by (algorithm, instance) in the order they first
// appear.
func Summarize(records []Record) []Summary {
	type group struct {
		first                        Record
		maximize                     bool
		runs, feasible, failed       int
		objective, gap, times, evals []float64
	}
	var order []string
	groups := map[string]*group{}
	for _, r := range records {
		if r.Algorithm == "" {
			continue
		}
		k := r.Algorithm + "|" + r.Instance
		g, ok := groups[k]
		if !ok {
			g = &group{first: r}
			groups[k] = g
			order = append(order, k)
		}
		g.runs++
		g.maximize = g.maximize || r.Maximize
		switch r.Status() {
		case StatusError:
			g.failed++
			continue
		case StatusOK:
			g.feasible++
			g.objective = append(g.objective, r.Objective)
			if r.GapKnown {
				g.gap = append(g.gap, r.Gap)
			}
		}
		g.times = append(g.times, r.DurationMs)
		g.evals = append(g.evals, float64(r.Evaluations))
	}

	out := make([]Summary, 0, len(order))
	for _, k := range order {
		g := groups[k]
		out = append(out, Summary{
			Algorithm:   g.first.Algorithm,
			Family:      g.first.Family,
			Instance:    g.first.Instance,
			Runs:        g.runs,
			Feasible:    g.feasible,
			Failed:      g.failed,
			Objective:   CalcStats(g.objective, g.maximize),
			Gap:         CalcStats(g.gap, false),
			TimeMs:      CalcStats(g.times, false),
			Evaluations: CalcStats(g.evals, false),
		})
	}
	return out
}
