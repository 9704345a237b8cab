package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/bench"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/config"
)

var (
	families         []string
	workers          int
	repetitions      int
	outputDir        string
	poolFile         string
	resume           bool
	failOnInfeasible bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an experiment",
	Long: `Assemble (or load) the algorithm pool, load the instances of every
family and run each algorithm on each instance for every repetition.

Exit status is 2 when the configuration or an instance file is invalid,
and 1 when every cell failed or, with --fail-on-infeasible, when no cell
found a feasible solution.`,
	Example: `  bench run --quick
  bench run --full --family VRPTW --workers 8
  bench run -c experiment.yaml --resume`,
	Args: cobra.NoArgs,
	RunE: runExperiment,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved experiment settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := resolveExperiment(cmd)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(e)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		fmt.Fprintf(cmd.OutOrStdout(), "# environment overrides: %s\n", strings.Join(config.Env(), ", "))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{runCmd, configCmd} {
		c.Flags().StringSliceVar(&families, "family", nil, "families to run (GCP, KBP, VRPTW); repeat or comma-separate")
		c.Flags().IntVar(&workers, "workers", 0, "cells run at once")
		c.Flags().IntVar(&repetitions, "repetitions", 0, "runs per algorithm and instance")
		c.Flags().StringVarP(&outputDir, "output", "o", "", "output directory")
		c.Flags().StringVar(&poolFile, "pool", "", "algorithm pool written by assemble --sync")
	}
	runCmd.Flags().BoolVar(&resume, "resume", false, "reuse cells already finished by an earlier run with the same settings")
	runCmd.Flags().BoolVar(&failOnInfeasible, "fail-on-infeasible", false, "exit non-zero when no cell found a feasible solution")
}

// resolveExperiment layers preset, file, environment and flags.
func resolveExperiment(cmd *cobra.Command) (config.Experiment, error) {
	mode := config.ModeQuick
	if full {
		mode = config.ModeFull
	}
	base, err := config.Preset(mode)
	if err != nil {
		return base, &exitError{code: exitConfig, err: err}
	}
	e, err := config.Load(configPath, base)
	if err != nil {
		return e, &exitError{code: exitConfig, err: err}
	}

	flags := cmd.Flags()
	if flags.Changed("family") {
		e.Families = families
	}
	if flags.Changed("workers") {
		e.Workers = workers
	}
	if flags.Changed("repetitions") {
		e.Repetitions = repetitions
	}
	if flags.Changed("output") {
		e.OutputDir = outputDir
	}
	if flags.Changed("pool") {
		e.Algorithms.PoolFile = poolFile
	}
	if err := e.Validate(); err != nil {
		return e, &exitError{code: exitConfig, err: err}
	}
	return e, nil
}

func runExperiment(cmd *cobra.Command, _ []string) error {
	e, err := resolveExperiment(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(e.LogLevel)
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}
	defer logger.Close()

	plan, err := bench.Prepare(e, logger.Slog())
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}
	cells := plan.Cells(e.Repetitions, e.BaseSeed)
	logger.Info("plan ready", "mode", e.Mode, "families", e.Families, "cells", len(cells), "workers", e.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	step := len(cells) / 10
	if step == 0 {
		step = 1
	}
	rep, err := bench.Execute(ctx, e, plan, bench.Options{
		Resume: resume,
		Logger: logger.Slog(),
		Progress: func(done, total int) {
			if done%step == 0 || done == total {
				logger.Info("progress", "done", done, "total", total)
			}
		},
	})
	if err != nil {
		if rep.Dir != "" {
			logger.Warn("partial results written", "dir", rep.Dir)
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rep.Dir)
	return bench.CheckRecords(rep.Records, failOnInfeasible)
}
