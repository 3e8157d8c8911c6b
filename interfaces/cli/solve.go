package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/maker-go/infrastructure/logging"
	api "github.com/felixgeelhaar/maker-go/interfaces/api"
)

// errSolutionInvalid is returned when a finished plan fails verification.
var errSolutionInvalid = errors.New("solution contains errors")

type solveOptions struct {
	configPaths []string
	disks       int
	k           int
	model       string
	provider    string
	noRedFlag   bool
	concurrency int
	timeout     time.Duration
	jsonOutput  bool
	store       string
	cache       string
}

func (a *App) newSolveCmd() *cobra.Command {
	opts := &solveOptions{}

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve an n-disk puzzle with consensus voting",
		Long: `Solve the Tower of Hanoi with 2^n - 1 voted model calls.

Without a configuration file the defaults are used and the API key is read
from OPENAI_API_KEY or ANTHROPIC_API_KEY.

Examples:
  # Solve three disks with the defaults
  maker solve

  # Ten disks, k=5, persisted to sqlite
  maker solve --disks 10 --k 5 --store sqlite:runs.db

  # Layer a local override on a shared file and print the record as JSON
  maker solve -c maker.yaml -c maker.local.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.solve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.configPaths, "config", "c", nil, "Configuration file, repeat to layer overrides")
	cmd.Flags().IntVarP(&opts.disks, "disks", "n", 0, "Number of disks (overrides config)")
	cmd.Flags().IntVar(&opts.k, "k", 0, "Vote threshold (overrides config)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model identifier (overrides config)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Provider: openai, anthropic, ollama (overrides config)")
	cmd.Flags().BoolVar(&opts.noRedFlag, "no-red-flag", false, "Fail on the first malformed or illegal reply")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Diversity samples drawn in parallel")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Overall timeout")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the run record as JSON")
	cmd.Flags().StringVar(&opts.store, "store", "", "Run store: memory or sqlite:PATH")
	cmd.Flags().StringVar(&opts.cache, "cache", "", "Greedy-step cache: none, memory, redis or badger")

	return cmd
}

func (a *App) solve(ctx context.Context, opts *solveOptions) error {
	cfg, err := loadConfig(opts.configPaths)
	if err != nil {
		return err
	}
	if err := applySolveOverrides(cfg, opts); err != nil {
		return err
	}
	if errs := api.NewConfigValidator().Validate(cfg); errs.HasErrors() {
		return fmt.Errorf("%w: %v", api.ErrValidationFailed, errs)
	}

	built, err := api.NewConfigBuilder(cfg).WithOutput(a.stderr).Build()
	if err != nil {
		return fmt.Errorf("%w: %v", api.ErrBuildFailed, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = built.Close(closeCtx)
	}()
	logging.Init(built.Logging)

	var extra []api.Option
	if !opts.jsonOutput {
		extra = append(extra, api.WithObserver(api.ProgressObserver(a.stdout)))
		a.printHeader(cfg)
	}

	engine, err := api.New(api.EngineOptions(cfg, built, extra...)...)
	if err != nil {
		return err
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	started := time.Now()
	record, solveErr := engine.Solve(ctx, cfg.Puzzle.Disks)

	if opts.jsonOutput && record != nil {
		if err := writeJSON(a, record); err != nil {
			return err
		}
	}
	if solveErr != nil {
		return solveErr
	}

	if !opts.jsonOutput {
		elapsed := time.Since(started)
		fmt.Fprintf(a.stdout, "\nCompleted in %.1f seconds (%.1f min)\n", elapsed.Seconds(), elapsed.Minutes())
		fmt.Fprintf(a.stdout, "Run ID: %s\n", record.ID)
		if steps := record.TimedOutSteps(); steps > 0 {
			fmt.Fprintf(a.stdout, "Steps decided by plurality: %d\n", steps)
		}
		printReport(a, record.Report)
	}

	if !record.Verified {
		return errSolutionInvalid
	}
	return nil
}

func (a *App) printHeader(cfg *api.SolverConfig) {
	rule := strings.Repeat("=", 70)
	strategy := "EVEN = clockwise"
	if cfg.Puzzle.Disks%2 == 1 {
		strategy = "ODD = counter-clockwise"
	}

	fmt.Fprintln(a.stdout, rule)
	fmt.Fprintln(a.stdout, "MAKER: Massively Decomposed Agentic Processes")
	fmt.Fprintln(a.stdout, rule)
	fmt.Fprintf(a.stdout, "Model: %s\n", cfg.Oracle.Model)
	fmt.Fprintf(a.stdout, "Number of disks: %d\n", cfg.Puzzle.Disks)
	fmt.Fprintf(a.stdout, "Strategy: %s\n", strategy)
	fmt.Fprintf(a.stdout, "Total optimal steps: %d\n", api.OptimalLength(cfg.Puzzle.Disks))
	fmt.Fprintf(a.stdout, "Voting threshold k = %d\n", cfg.Voting.K)
	fmt.Fprintf(a.stdout, "Temperature_first = %g, Temperature_rest = %g\n",
		cfg.Sampling.FirstTemperature, cfg.Sampling.RestTemperature)
	fmt.Fprintf(a.stdout, "Red-flagging enabled: %t\n", cfg.Sampling.RedFlagging)
	fmt.Fprintln(a.stdout, rule)
}

func printReport(a *App, report *api.Report) {
	if report == nil {
		return
	}
	if report.Valid {
		fmt.Fprintf(a.stdout, "Solution verified: %d moves reach %s\n", report.Steps, report.Expected)
		return
	}
	fmt.Fprintf(a.stdout, "Solution contains errors: %s\n", report.Reason)
	fmt.Fprintf(a.stdout, "  Final: %s, expected %s\n", report.Actual, report.Expected)
}

// loadConfig layers paths onto the defaults. Validation happens after the
// command line overrides are applied.
func loadConfig(paths []string) (*api.SolverConfig, error) {
	if len(paths) == 0 {
		return api.DefaultSolverConfig(), nil
	}
	cfg, err := api.NewConfigLoaderWithOptions(api.ConfigWithValidation(false)).LoadFiles(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func applySolveOverrides(cfg *api.SolverConfig, opts *solveOptions) error {
	if opts.provider != "" {
		cfg.Oracle.Provider = opts.provider
	}
	if opts.model != "" {
		cfg.Oracle.Model = opts.model
	}
	if opts.disks > 0 {
		cfg.Puzzle.Disks = opts.disks
	}
	if opts.k > 0 {
		cfg.Voting.K = opts.k
	}
	if opts.noRedFlag {
		cfg.Sampling.RedFlagging = false
	}
	if opts.concurrency > 0 {
		cfg.Voting.Concurrency = opts.concurrency
	}
	if opts.cache != "" {
		cfg.Cache.Driver = opts.cache
	}
	if opts.store != "" {
		driver, dsn, _ := strings.Cut(opts.store, ":")
		switch driver {
		case "memory":
			cfg.Storage.Driver = "memory"
		case "sqlite":
			cfg.Storage.Driver = "sqlite"
			cfg.Storage.DSN = dsn
		default:
			return fmt.Errorf("invalid --store %q: want memory or sqlite:PATH", opts.store)
		}
	}

	if cfg.Oracle.APIKey == "" {
		switch cfg.Oracle.Provider {
		case "openai":
			cfg.Oracle.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			cfg.Oracle.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	return nil
}
