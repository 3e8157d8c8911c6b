package api

import (
	"context"

	"github.com/felixgeelhaar/maker-go/application"
	"github.com/felixgeelhaar/maker-go/infrastructure/storage/sqlite"
)

// EngineOptions translates a loaded configuration and the components built
// from it into engine options. Extra options are applied last.
func EngineOptions(cfg *SolverConfig, built *ConfigBuildResult, extra ...Option) []Option {
	opts := []Option{
		WithProvider(built.Provider),
		WithSampling(application.SamplingConfig{
			Model:              cfg.Oracle.Model,
			MaxTokens:          cfg.Oracle.MaxTokens,
			FirstTemperature:   cfg.Sampling.FirstTemperature,
			RestTemperature:    cfg.Sampling.RestTemperature,
			MaxAttempts:        cfg.Sampling.MaxAttempts,
			RedFlagging:        cfg.Sampling.RedFlagging,
			ProviderRetryDelay: cfg.Sampling.ProviderRetryDelay.Duration(),
			LogEvery:           cfg.Sampling.LogEvery,
		}),
		WithVoting(application.VotingConfig{
			K:           cfg.Voting.K,
			MaxRounds:   cfg.Voting.MaxRounds,
			Concurrency: cfg.Voting.Concurrency,
			NoteAfter:   application.DefaultVotingConfig().NoteAfter,
		}),
		WithPrompts(built.Prompts),
		WithRunStore(built.Runs),
		WithMetrics(built.Metrics),
	}
	if built.Cache != nil {
		opts = append(opts, WithCache(built.Cache, built.CacheTTL))
	}
	if built.Tracing != nil {
		opts = append(opts, WithTracer(built.Tracing.Tracer()))
	}
	return append(opts, extra...)
}

// NewFromConfig builds components from cfg and creates an engine. The caller
// must Close the returned build result.
func NewFromConfig(cfg *SolverConfig, extra ...Option) (*Engine, *ConfigBuildResult, error) {
	built, err := NewConfigBuilder(cfg).Build()
	if err != nil {
		return nil, nil, err
	}
	engine, err := New(EngineOptions(cfg, built, extra...)...)
	if err != nil {
		_ = built.Close(context.Background())
		return nil, nil, err
	}
	return engine, built, nil
}

// OpenRunStore opens the sqlite run store at path, creating and migrating it
// if needed.
func OpenRunStore(path string) (*sqlite.RunStore, error) {
	return sqlite.NewRunStore(sqlite.DefaultConfig(), sqlite.WithPath(path))
}
