package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/felixgeelhaar/maker-go/domain/cache"
	domainconfig "github.com/felixgeelhaar/maker-go/domain/config"
	"github.com/felixgeelhaar/maker-go/domain/oracle"
	"github.com/felixgeelhaar/maker-go/domain/prompt"
	"github.com/felixgeelhaar/maker-go/domain/run"
	"github.com/felixgeelhaar/maker-go/infrastructure/logging"
	"github.com/felixgeelhaar/maker-go/infrastructure/observability"
	"github.com/felixgeelhaar/maker-go/infrastructure/provider"
	"github.com/felixgeelhaar/maker-go/infrastructure/resilience"
	"github.com/felixgeelhaar/maker-go/infrastructure/storage/badger"
	"github.com/felixgeelhaar/maker-go/infrastructure/storage/memory"
	"github.com/felixgeelhaar/maker-go/infrastructure/storage/redis"
	"github.com/felixgeelhaar/maker-go/infrastructure/storage/sqlite"
	"github.com/felixgeelhaar/maker-go/infrastructure/telemetry"
)

// Builder builds solver components from configuration.
type Builder struct {
	config        *domainconfig.SolverConfig
	output        io.Writer
	observability []observability.Option
}

// NewBuilder creates a new configuration builder.
func NewBuilder(config *domainconfig.SolverConfig) *Builder {
	return &Builder{config: config, output: os.Stderr}
}

// WithOutput sets where logs and stdout traces are written.
func (b *Builder) WithOutput(w io.Writer) *Builder {
	b.output = w
	return b
}

// WithObservability adds options applied when telemetry is enabled.
func (b *Builder) WithObservability(opts ...observability.Option) *Builder {
	b.observability = append(b.observability, opts...)
	return b
}

// BuildResult contains the components built from configuration. Close
// releases every component that holds a connection or file.
type BuildResult struct {
	// Provider is the configured provider wrapped with resilience.
	Provider oracle.Provider
	// Runs persists run records.
	Runs run.Store
	// Cache is the greedy-step cache, nil when disabled.
	Cache cache.Cache
	// CacheTTL is the cache entry lifetime.
	CacheTTL time.Duration
	// Prompts is the default prompt set with configured overrides applied.
	Prompts prompt.Set
	// Logging configures the global logger.
	Logging logging.Config
	// Tracing owns the tracer provider.
	Tracing *observability.Provider
	// Metrics records solver metrics.
	Metrics telemetry.Metrics

	closers []io.Closer
}

// Build creates all components. On error, components built so far are closed.
func (b *Builder) Build() (result *BuildResult, err error) {
	result = &BuildResult{}
	defer func() {
		if err != nil {
			_ = result.Close(context.Background())
			result = nil
		}
	}()

	result.Logging = logging.Config{
		Level:  b.config.Logging.Level,
		Format: b.config.Logging.Format,
		Output: b.output,
	}

	if err := b.buildProvider(result); err != nil {
		return result, fmt.Errorf("building provider: %w", err)
	}

	if err := b.buildPrompts(result); err != nil {
		return result, fmt.Errorf("building prompts: %w", err)
	}

	if err := b.buildRunStore(result); err != nil {
		return result, fmt.Errorf("building run store: %w", err)
	}

	if err := b.buildCache(result); err != nil {
		return result, fmt.Errorf("building cache: %w", err)
	}

	if err := b.buildTelemetry(result); err != nil {
		return result, fmt.Errorf("building telemetry: %w", err)
	}

	return result, nil
}

func (b *Builder) buildProvider(result *BuildResult) error {
	p, err := provider.New(b.config.Oracle)
	if err != nil {
		return err
	}
	result.Provider = resilience.NewProvider(p, resilience.FromConfig(b.config.Resilience))
	return nil
}

func (b *Builder) buildPrompts(result *BuildResult) error {
	set := prompt.Set{
		System: b.config.Prompts.System,
		Odd:    b.config.Prompts.Odd,
		Even:   b.config.Prompts.Even,
	}.Merge(prompt.Default())
	if err := set.Check(); err != nil {
		return err
	}
	result.Prompts = set
	return nil
}

func (b *Builder) buildRunStore(result *BuildResult) error {
	switch b.config.Storage.Driver {
	case "memory", "":
		result.Runs = memory.NewRunStore()
	case "sqlite":
		store, err := sqlite.NewRunStore(sqlite.DefaultConfig(), sqlite.WithPath(b.config.Storage.DSN))
		if err != nil {
			return err
		}
		result.Runs = store
		result.closers = append(result.closers, store)
	default:
		return fmt.Errorf("unknown storage driver: %s", b.config.Storage.Driver)
	}
	return nil
}

func (b *Builder) buildCache(result *BuildResult) error {
	result.CacheTTL = b.config.Cache.TTL.Duration()

	c, closer, err := OpenCache(b.config.Cache)
	if err != nil {
		return err
	}
	result.Cache = c
	if closer != nil {
		result.closers = append(result.closers, closer)
	}
	return nil
}

// OpenCache opens the cache named by cfg.Driver. It returns a nil cache for
// "none" and a nil closer for backends that hold no resources.
func OpenCache(cfg domainconfig.CacheConfig) (cache.Cache, io.Closer, error) {
	switch cfg.Driver {
	case "none", "":
		return nil, nil, nil
	case "memory":
		return memory.NewCache(), nil, nil
	case "redis":
		c, err := redis.NewCache(redis.DefaultConfig(),
			redis.WithAddress(cfg.Addr),
			redis.WithPassword(cfg.Password),
			redis.WithDB(cfg.DB),
			redis.WithURL(cfg.URL),
			redis.WithKeyPrefix(cfg.Prefix),
		)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case "badger":
		opts := []badger.Option{badger.WithKeyPrefix(cfg.Prefix)}
		if cfg.Dir == "" {
			opts = append(opts, badger.WithInMemory())
		} else {
			opts = append(opts, badger.WithDir(cfg.Dir))
		}
		c, err := badger.NewCache(badger.DefaultConfig(), opts...)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache driver: %s", cfg.Driver)
	}
}

func (b *Builder) buildTelemetry(result *BuildResult) error {
	opts := observability.FromConfig(b.config.Telemetry)
	if len(opts) > 0 {
		opts = append(opts, observability.WithWriter(b.output))
		opts = append(opts, b.observability...)
	}
	tracing, err := observability.New(context.Background(), opts...)
	if err != nil {
		return err
	}
	result.Tracing = tracing

	if !b.config.Telemetry.Enabled {
		result.Metrics = telemetry.NoopMetricsProvider{}
		return nil
	}
	mc := telemetry.DefaultMetricsConfig()
	mc.MeterProvider = tracing.MeterProvider()
	metrics := telemetry.NewMetricsProvider(mc)
	if err := metrics.Error(); err != nil {
		return err
	}
	result.Metrics = metrics
	return nil
}

// Close releases stores and caches and flushes pending spans and metrics.
func (r *BuildResult) Close(ctx context.Context) error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	if r.Tracing != nil {
		if err := r.Tracing.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DefaultConfig returns the default solver configuration.
func DefaultConfig() *domainconfig.SolverConfig {
	cfg := domainconfig.Default()
	return &cfg
}
