// Command assemble generates the algorithm pool of each family from the
// grammar and keeps the pool file in step with the experiment settings.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/config"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/grammar"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/logging"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/opt"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
)

const defaultPoolFile = "algorithms.yaml"

var (
	doSync     bool
	doValidate bool
	doGenerate bool
	doWatch    bool

	full       bool
	configPath string
	poolPath   string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble GAA algorithms from the grammar",
	Long: `Assemble algorithm trees for each configured family.

  --generate  print the algorithms the settings produce
  --sync      write them to the pool file
  --validate  check that every algorithm in the pool file regenerates
              from its seed with the current grammar and operators
  --watch     sync now and again whenever the config file changes`,
	Example: `  assemble --generate
  assemble --sync -c experiment.yaml --pool algorithms.yaml
  assemble --validate --pool algorithms.yaml`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&doSync, "sync", false, "write the pool file")
	f.BoolVar(&doValidate, "validate", false, "check the pool file against the grammar")
	f.BoolVar(&doGenerate, "generate", false, "print the assembled algorithms")
	f.BoolVar(&doWatch, "watch", false, "sync on every change of the config file")
	rootCmd.MarkFlagsMutuallyExclusive("sync", "validate", "generate", "watch")
	rootCmd.MarkFlagsOneRequired("sync", "validate", "generate", "watch")

	f.BoolVar(&full, "full", false, "start from the full preset instead of the quick one")
	f.StringVarP(&configPath, "config", "c", "", "experiment file (YAML or JSON)")
	f.StringVar(&poolPath, "pool", "", "pool file (default: the config's pool_file, else "+defaultPoolFile+")")
	f.StringVar(&logLevel, "log-level", "info", "log level")
}

func loadExperiment() (config.Experiment, error) {
	mode := config.ModeQuick
	if full {
		mode = config.ModeFull
	}
	base, err := config.Preset(mode)
	if err != nil {
		return base, err
	}
	return config.Load(configPath, base)
}

func resolvePoolPath(e config.Experiment) string {
	switch {
	case poolPath != "":
		return poolPath
	case e.Algorithms.PoolFile != "":
		return e.Algorithms.PoolFile
	default:
		return defaultPoolFile
	}
}

// assembleAll builds the pool of every configured family.
func assembleAll(e config.Experiment, log *logging.Logger) (map[problem.Domain][]opt.Algorithm, error) {
	ds, err := e.Domains()
	if err != nil {
		return nil, err
	}
	out := make(map[problem.Domain][]opt.Algorithm, len(ds))
	for _, d := range ds {
		algs, err := opt.Assemble(d, e.PoolSpec(), log.Slog())
		if err != nil {
			return nil, err
		}
		out[d] = algs
	}
	return out, nil
}

func syncPool(e config.Experiment, log *logging.Logger) error {
	algs, err := assembleAll(e, log)
	if err != nil {
		return err
	}
	path := resolvePoolPath(e)
	if err := config.SavePool(path, config.NewPool(e.Algorithms, algs)); err != nil {
		return fmt.Errorf("write pool: %w", err)
	}
	n := 0
	for _, list := range algs {
		n += len(list)
	}
	log.Info("pool synced", "path", path, "algorithms", n, "grammar_version", grammar.Version)
	return nil
}

func generate(w io.Writer, e config.Experiment, log *logging.Logger) error {
	algs, err := assembleAll(e, log)
	if err != nil {
		return err
	}
	for _, d := range problem.Domains() {
		for _, alg := range algs[d] {
			st := grammar.ComputeStats(alg.Tree)
			fmt.Fprintf(w, "## %s  seed=%d depth=%d nodes=%d\n%s\n\n", alg.ID, alg.Tree.Seed, st.Depth, st.NodeCount, grammar.Text(alg.Tree))
		}
	}
	return nil
}

func validatePool(w io.Writer, path string) error {
	p, err := config.LoadPool(path)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(p.Families))
	for k := range p.Families {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		d, err := problem.ParseDomain(k)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		algs, err := p.Resolve(d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(w, "%s: %d algorithms ok\n", d, len(algs))
	}
	return errors.Join(errs...)
}

func watch(ctx context.Context, e config.Experiment, log *logging.Logger) error {
	if configPath == "" {
		return errors.New("--watch needs --config")
	}
	if err := syncPool(e, log); err != nil {
		return err
	}
	log.Info("watching", "config", configPath)
	return config.Watch(ctx, configPath, config.DefaultDebounce, log.Slog(), func() {
		next, err := loadExperiment()
		if err != nil {
			log.Error("config rejected, pool left unchanged", "error", err)
			return
		}
		if err := syncPool(next, log); err != nil {
			log.Error("sync failed", "error", err)
		}
	})
}

func run(cmd *cobra.Command, _ []string) error {
	lvl, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Config{Level: lvl, Service: "assemble"})
	if err != nil {
		return err
	}
	defer log.Close()

	e, err := loadExperiment()
	if err != nil {
		return err
	}
	switch {
	case doValidate:
		return validatePool(cmd.OutOrStdout(), resolvePoolPath(e))
	case doGenerate:
		return generate(cmd.OutOrStdout(), e, log)
	case doSync:
		return syncPool(e, log)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watch(ctx, e, log)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "assemble:", err)
		os.Exit(1)
	}
}
