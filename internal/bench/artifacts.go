package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/opt"
)

const (
	RawResultsFile = "raw_results.csv"
	TraceFile      = "convergence_trace.csv"
	SummaryFile    = "summary.csv"
	MetadataFile   = "experiment_metadata.json"
	MetricsFile    = "metrics.prom"
	AlgorithmsDir  = "algorithms"
)

// Artifacts is the directory of one experiment run.
type Artifacts struct {
	Dir string
}

// NewArtifacts creates <outputDir>/<DD-MM-YY_HH-MM-SS>.
func NewArtifacts(outputDir string, now time.Time) (*Artifacts, error) {
	dir := filepath.Join(outputDir, now.Format(TimestampLayout))
	if err := os.MkdirAll(filepath.Join(dir, AlgorithmsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	return &Artifacts{Dir: dir}, nil
}

func (a *Artifacts) Path(name string) string { return filepath.Join(a.Dir, name) }

// rawHeader starts with the columns every result table carries; the ones
// after evaluations are specific to this runner.
var rawHeader = []string{
	"algorithm_id", "instance_id", "family", "run_id", "seed",
	"K_final_or_colors", "value_or_distance", "known_optimum", "delta",
	"gap_percent", "reached_optimum", "total_time_sec", "iterations", "evaluations",
	"skeleton", "feasible", "objective", "primary", "secondary", "stop", "resumed", "error",
}

func (a *Artifacts) WriteRaw(records []Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		if r.Algorithm == "" {
			continue
		}
		var known, delta, gap string
		if r.OptimumKnown {
			known = ftoa(r.KnownOptimum)
		}
		if r.OptimumKnown && r.Evaluations > 0 {
			delta = ftoa(r.Delta)
		}
		if r.GapKnown {
			gap = ftoa(r.Gap)
		}
		rows = append(rows, []string{
			r.Algorithm, r.Instance, r.Family, itoa(r.Rep), i64toa(r.Seed),
			ftoa(r.Size), ftoa(r.Value), known, delta,
			gap, btoa(r.Reached), ftoa(r.DurationMs / 1000), itoa(r.Iterations), itoa(r.Evaluations),
			r.Skeleton, btoa(r.Feasible), ftoa(r.Objective), ftoa(r.Primary), ftoa(r.Secondary), r.Stop, btoa(r.Resumed), r.Error,
		})
	}
	return writeCSV(a.Path(RawResultsFile), rawHeader, rows)
}

var traceHeader = []string{
	"algorithm_id", "instance_id", "run_id", "iteration", "elapsed_sec",
	"best_so_far", "current", "feasible",
	"seed", "best_primary", "best_secondary", "current_primary", "current_secondary",
	"accepted", "improved", "temperature", "perturbation_strength",
}

// WriteTrace writes one row per trace record. best_so_far and current are
// the run's objective scalar. Resumed cells carry no trace.
func (a *Artifacts) WriteTrace(records []Record) error {
	var rows [][]string
	for _, r := range records {
		if r.Trace == nil {
			continue
		}
		for _, t := range r.Trace.Records() {
			rows = append(rows, []string{
				r.Algorithm, r.Instance, itoa(r.Rep), itoa(t.Iteration), ftoa(t.Elapsed.Seconds()),
				ftoa(finite(r.Scoring.Value(t.Best))), ftoa(finite(r.Scoring.Value(t.Current))), btoa(t.Feasible),
				i64toa(r.Seed), ftoa(finite(t.Best.Primary)), ftoa(finite(t.Best.Secondary)),
				ftoa(finite(t.Current.Primary)), ftoa(finite(t.Current.Secondary)),
				btoa(t.Accepted), btoa(t.Improved), ftoa(t.Temperature), ftoa(t.Strength),
			})
		}
	}
	return writeCSV(a.Path(TraceFile), traceHeader, rows)
}

var summaryHeader = []string{
	"algorithm", "family", "instance", "runs", "feasible", "failed", "feasible_rate",
	"objective_best", "objective_mean", "objective_std",
	"gap_best", "gap_mean", "gap_std",
	"time_best_ms", "time_mean_ms", "time_std_ms", "evaluations_mean",
}

func (a *Artifacts) WriteSummary(sums []Summary) error {
	rows := make([][]string, 0, len(sums))
	for _, s := range sums {
		rows = append(rows, []string{
			s.Algorithm, s.Family, s.Instance, itoa(s.Runs), itoa(s.Feasible), itoa(s.Failed), ftoa(s.FeasibleRate()),
			ftoa(s.Objective.Best), ftoa(s.Objective.Mean), ftoa(s.Objective.Std),
			ftoa(s.Gap.Best), ftoa(s.Gap.Mean), ftoa(s.Gap.Std),
			ftoa(s.TimeMs.Best), ftoa(s.TimeMs.Mean), ftoa(s.TimeMs.Std), ftoa(s.Evaluations.Mean),
		})
	}
	return writeCSV(a.Path(SummaryFile), summaryHeader, rows)
}

// AlgorithmFile is the content of algorithms/<id>.json.
type AlgorithmFile struct {
	ID        string        `json:"id"`
	Family    string        `json:"family"`
	Seed      int64         `json:"seed"`
	Signature string        `json:"signature"`
	Text      string        `json:"text"`
	Stats     grammar.Stats `json:"stats"`
	Tree      *grammar.Tree `json:"tree"`
}

func (a *Artifacts) WriteAlgorithm(alg opt.Algorithm) error {
	f := AlgorithmFile{
		ID:        alg.ID,
		Family:    alg.Domain.String(),
		Seed:      alg.Tree.Seed,
		Signature: grammar.Signature(alg.Tree),
		Text:      grammar.Text(alg.Tree),
		Stats:     grammar.ComputeStats(alg.Tree),
		Tree:      alg.Tree,
	}
	return writeJSON(filepath.Join(a.Dir, AlgorithmsDir, alg.ID+".json"), f)
}

// Metadata is experiment_metadata.json.
type Metadata struct {
	ID             string       `json:"id"`
	Mode           string       `json:"mode"`
	Timestamp      string       `json:"timestamp"`
	Families       []string     `json:"families"`
	Algorithms     []string     `json:"algorithms"`
	Instances      []string     `json:"instances"`
	Repetitions    int          `json:"repetitions"`
	TotalCells     int          `json:"total_cells"`
	BaseSeed       int64        `json:"base_seed"`
	AlgorithmSeed  int64        `json:"algorithm_seed"`
	GrammarVersion string       `json:"grammar_version"`
	Settings       opt.Settings `json:"settings"`
	System         SysInfo      `json:"system"`

	// Outcome is filled once the cells have run.
	Outcome map[string]int `json:"outcome,omitempty"`
	Elapsed string         `json:"elapsed,omitempty"`
}

// NewMetadata stamps a fresh experiment id and the host description.
func NewMetadata(mode string, now time.Time) Metadata {
	return Metadata{
		ID:             uuid.NewString(),
		Mode:           mode,
		Timestamp:      now.Format(TimestampLayout),
		GrammarVersion: grammar.Version,
		System:         CollectSysInfo(),
	}
}

func (a *Artifacts) WriteMetadata(m Metadata) error {
	return writeJSON(a.Path(MetadataFile), m)
}
