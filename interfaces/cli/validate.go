package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/maker-go/interfaces/api"
)

var errNoConfig = errors.New("at least one configuration file is required (-c)")

func (a *App) newValidateCmd() *cobra.Command {
	var (
		paths  []string
		strict bool
		schema bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a configuration without solving",
		Long: `Load, validate and build a solver configuration without calling the model.

Several -c files are merged in order, later files overriding earlier ones,
and the result is validated once. With --strict, unset environment
variables and unknown keys are errors.

  maker validate -c maker.yaml
  maker validate -c maker.yaml -c maker.local.yaml --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if schema {
				data, err := schemaBytes(false)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, string(data))
				return nil
			}
			if len(paths) == 0 {
				return errNoConfig
			}
			return a.validate(cmd.Context(), paths, strict)
		},
	}

	cmd.Flags().StringSliceVarP(&paths, "config", "c", nil, "configuration file, repeat to layer overrides")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject unset env vars and unknown keys")
	cmd.Flags().BoolVar(&schema, "schema", false, "print the configuration schema and exit")
	return cmd
}

func (a *App) validate(ctx context.Context, paths []string, strict bool) error {
	cfg, err := api.NewConfigLoaderWithOptions(
		api.ConfigWithValidation(true),
		api.ConfigWithStrictEnv(strict),
		api.ConfigWithKnownFields(strict),
	).LoadFiles(paths...)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	built, err := api.NewConfigBuilder(cfg).WithOutput(a.stderr).Build()
	if err != nil {
		return fmt.Errorf("configuration build failed: %w", err)
	}
	_ = built.Close(context.WithoutCancel(ctx))

	rows := [][2]string{
		{"Provider", fmt.Sprintf("%s (%s)", cfg.Oracle.Provider, cfg.Oracle.Model)},
		{"Disks", fmt.Sprintf("%d (%d steps)", cfg.Puzzle.Disks, api.OptimalLength(cfg.Puzzle.Disks))},
		{"Voting", fmt.Sprintf("k=%d, max rounds %d", cfg.Voting.K, cfg.Voting.MaxRounds)},
		{"Sampling", fmt.Sprintf("T0=%g, T=%g, %d attempts, red-flagging %t",
			cfg.Sampling.FirstTemperature, cfg.Sampling.RestTemperature,
			cfg.Sampling.MaxAttempts, cfg.Sampling.RedFlagging)},
		{"Storage", cfg.Storage.Driver},
	}
	if d := cfg.Cache.Driver; d != "" && d != "none" {
		rows = append(rows, [2]string{"Cache", d})
	}
	if cb := cfg.Resilience.CircuitBreaker; cb.Enabled {
		rows = append(rows, [2]string{"Circuit breaker", fmt.Sprintf("threshold %d", cb.Threshold)})
	}
	if rl := cfg.Resilience.RateLimit; rl.Enabled {
		rows = append(rows, [2]string{"Rate limit", fmt.Sprintf("%d/s, burst %d", rl.Rate, rl.Burst)})
	}
	if cfg.Telemetry.Enabled {
		rows = append(rows, [2]string{"Telemetry", cfg.Telemetry.Exporter})
	}

	fmt.Fprintln(a.stdout, "✓ Configuration is valid")
	if cfg.Name != "" {
		fmt.Fprintf(a.stdout, "  Name: %s\n", cfg.Name)
	}
	fmt.Fprintln(a.stdout)
	for _, r := range rows {
		fmt.Fprintf(a.stdout, "  %s: %s\n", r[0], r[1])
	}
	return nil
}
