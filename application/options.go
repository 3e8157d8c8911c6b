package application

import (
	"time"

	"github.com/felixgeelhaar/maker-go/domain/cache"
	"github.com/felixgeelhaar/maker-go/domain/oracle"
	"github.com/felixgeelhaar/maker-go/domain/prompt"
	"github.com/felixgeelhaar/maker-go/domain/run"
	domaintelemetry "github.com/felixgeelhaar/maker-go/domain/telemetry"
	"github.com/felixgeelhaar/maker-go/infrastructure/telemetry"
)

// Option configures the engine.
type Option func(*EngineConfig)

// WithProvider sets the completion provider.
func WithProvider(p oracle.Provider) Option {
	return func(c *EngineConfig) {
		c.Provider = p
	}
}

// WithModel sets the model sent with every request.
func WithModel(model string) Option {
	return func(c *EngineConfig) {
		c.Sampling.Model = model
	}
}

// WithSampling replaces the sampling settings.
func WithSampling(s SamplingConfig) Option {
	return func(c *EngineConfig) {
		c.Sampling = s
	}
}

// WithTemperatures sets the first and rest sampling temperatures.
func WithTemperatures(first, rest float64) Option {
	return func(c *EngineConfig) {
		c.Sampling.FirstTemperature = first
		c.Sampling.RestTemperature = rest
	}
}

// WithMaxAttempts sets the oracle call budget per valid sample.
func WithMaxAttempts(n int) Option {
	return func(c *EngineConfig) {
		c.Sampling.MaxAttempts = n
	}
}

// WithRedFlagging enables or disables resampling of malformed and illegal replies.
func WithRedFlagging(enabled bool) Option {
	return func(c *EngineConfig) {
		c.Sampling.RedFlagging = enabled
	}
}

// WithProviderRetryDelay sets the wait after a provider failure.
func WithProviderRetryDelay(d time.Duration) Option {
	return func(c *EngineConfig) {
		c.Sampling.ProviderRetryDelay = d
	}
}

// WithVoting replaces the voting settings.
func WithVoting(v VotingConfig) Option {
	return func(c *EngineConfig) {
		c.Voting = v
	}
}

// WithK sets the vote threshold.
func WithK(k int) Option {
	return func(c *EngineConfig) {
		c.Voting.K = k
	}
}

// WithMaxRounds sets the sample limit per step.
func WithMaxRounds(n int) Option {
	return func(c *EngineConfig) {
		c.Voting.MaxRounds = n
	}
}

// WithConcurrency sets the number of diversity samples drawn in parallel.
func WithConcurrency(n int) Option {
	return func(c *EngineConfig) {
		c.Voting.Concurrency = n
	}
}

// WithPrompts sets the prompt templates. Empty fields keep the defaults.
func WithPrompts(p prompt.Set) Option {
	return func(c *EngineConfig) {
		c.Prompts = p
	}
}

// WithRunStore sets the run store.
func WithRunStore(s run.Store) Option {
	return func(c *EngineConfig) {
		c.Runs = s
	}
}

// WithCache sets the greedy-step cache.
func WithCache(cc cache.Cache, ttl time.Duration) Option {
	return func(c *EngineConfig) {
		c.Cache = cc
		c.CacheTTL = ttl
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m telemetry.Metrics) Option {
	return func(c *EngineConfig) {
		c.Metrics = m
	}
}

// WithTracer sets the tracer.
func WithTracer(t domaintelemetry.Tracer) Option {
	return func(c *EngineConfig) {
		c.Tracer = t
	}
}

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(c *EngineConfig) {
		c.Observer = o
	}
}

// NewEngineWithOptions creates a new engine using functional options.
// Unset settings start from DefaultSamplingConfig and DefaultVotingConfig.
func NewEngineWithOptions(opts ...Option) (*Engine, error) {
	config := &EngineConfig{
		Sampling: DefaultSamplingConfig(),
		Voting:   DefaultVotingConfig(),
		Prompts:  prompt.Default(),
	}
	for _, opt := range opts {
		opt(config)
	}
	return NewEngine(*config)
}
