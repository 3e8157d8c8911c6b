package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/maker-go/interfaces/api"
)

var errNoCache = errors.New("no cache configured (cache.driver is none)")

type cacheOptions struct {
	configPaths []string
	driver      string
	jsonOutput  bool
}

func (a *App) newCacheCmd() *cobra.Command {
	opts := &cacheOptions{}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the greedy-step cache",
		Long: `Inspect or clear the cache of validated zero-temperature steps.

The cache is opened from the cache section of the configuration. Only
persistent drivers (redis, badger with a dir) hold entries between runs.

Examples:
  maker cache stats -c maker.yaml
  maker cache clear -c maker.yaml`,
	}

	cmd.PersistentFlags().StringSliceVarP(&opts.configPaths, "config", "c", nil, "Configuration file, repeat to layer overrides")
	cmd.PersistentFlags().StringVar(&opts.driver, "cache", "", "Cache driver (overrides config)")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the number of cached steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cacheStats(cmd.Context(), opts)
		},
	}
	statsCmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCache(opts, func(c api.Cache) error {
				if err := c.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
				fmt.Fprintln(a.stdout, "Cache cleared.")
				return nil
			})
		},
	}

	cmd.AddCommand(statsCmd, clearCmd)
	return cmd
}

func (a *App) cacheStats(ctx context.Context, opts *cacheOptions) error {
	return a.withCache(opts, func(c api.Cache) error {
		inspector, ok := c.(api.CacheInspector)
		if !ok {
			return fmt.Errorf("cache %T does not report statistics", c)
		}
		stats, err := inspector.Stats(ctx)
		if err != nil {
			return fmt.Errorf("failed to read cache statistics: %w", err)
		}

		if opts.jsonOutput {
			return writeJSON(a, stats)
		}
		fmt.Fprintf(a.stdout, "Entries: %d\n", stats.Entries)
		return nil
	})
}

func (a *App) withCache(opts *cacheOptions, fn func(api.Cache) error) error {
	cfg, err := loadConfig(opts.configPaths)
	if err != nil {
		return err
	}
	if opts.driver != "" {
		cfg.Cache.Driver = opts.driver
	}
	if errs := api.NewConfigValidator().Validate(cfg); errs.HasErrors() {
		return fmt.Errorf("%w: %v", api.ErrValidationFailed, errs)
	}

	c, closer, err := api.OpenCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if c == nil {
		return errNoCache
	}
	if closer != nil {
		defer closer.Close()
	}
	return fn(c)
}
