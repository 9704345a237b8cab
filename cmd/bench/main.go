// Command bench runs GAA experiments: every assembled algorithm on every
// instance of the configured families, with repetitions.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/logging"
)

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

const (
	exitFailure = 1
	// exitConfig covers bad configuration and instance files that do not load.
	exitConfig = 2
)

var (
	quick      bool
	full       bool
	configPath string

	logLevel string
	logJSON  bool
	logDir   string
)

var rootCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run GAA experiments on GCP, KBP and VRPTW instances",
	Long: `Run assembled algorithms on benchmark instances and write the results.

Each run writes a directory <output>/<DD-MM-YY_HH-MM-SS>/ holding
raw_results.csv, convergence_trace.csv, summary.csv, metrics.prom,
experiment_metadata.json and algorithms/<id>.json.

Settings come from the --quick or --full preset, then the --config file,
then GAA_* environment variables, then flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&quick, "quick", false, "start from the quick preset (default)")
	rootCmd.PersistentFlags().BoolVar(&full, "full", false, "start from the full preset")
	rootCmd.MarkFlagsMutuallyExclusive("quick", "full")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "experiment file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log JSON to stderr")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "also write JSON logs to this directory")
	rootCmd.AddCommand(runCmd, configCmd)
}

func newLogger(level string) (*logging.Logger, error) {
	if logLevel != "" {
		level = logLevel
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Config{Level: lvl, JSON: logJSON, LogDir: logDir, Service: "bench"})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bench:", err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(exitFailure)
	}
}
