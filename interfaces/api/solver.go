// Package api provides the public API for the maker-go solver.
//
// maker-go plans long action sequences with an unreliable language model by
// decomposing the task into single steps, validating every proposed step,
// and voting on each step until one action leads all others by k votes.
//
// # Quick Start
//
// Solve a three-disk puzzle with an OpenAI model:
//
//	provider := api.NewOpenAIProvider(api.OpenAIConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-4.1",
//	})
//
//	engine, _ := api.New(
//	    api.WithProvider(provider),
//	    api.WithK(3),
//	)
//	record, _ := engine.Solve(ctx, 3)
//	fmt.Println(record.Verified, record.Actions)
//
// # Sampling
//
// Every vote comes from rejection sampling. A reply that cannot be parsed,
// or that proposes an illegal move or a wrong resulting configuration, is
// discarded and resampled when red-flagging is on. Provider failures are
// always retried after a short delay. Both draw on the same attempt budget.
//
// # Voting
//
// The first sample of a step is drawn at temperature 0. If it does not
// already win, further samples are drawn at the rest temperature until one
// action key has at least k more votes than any other key. After MaxRounds
// samples the plurality action is taken and the step is marked timed out.
package api

import (
	"github.com/felixgeelhaar/maker-go/application"
	"github.com/felixgeelhaar/maker-go/domain/cache"
	"github.com/felixgeelhaar/maker-go/domain/hanoi"
	"github.com/felixgeelhaar/maker-go/domain/oracle"
	"github.com/felixgeelhaar/maker-go/domain/run"
	"github.com/felixgeelhaar/maker-go/infrastructure/provider"
)

// Re-export core types for convenience.
type (
	// Engine plans and verifies solutions.
	Engine = application.Engine

	// Option configures the engine.
	Option = application.Option

	// Outcome is the result of voting on one step.
	Outcome = application.Outcome

	// Observer receives planning progress.
	Observer = application.Observer

	// Action moves one disk between pegs.
	Action = hanoi.Action

	// Configuration is the content of the three pegs.
	Configuration = hanoi.Configuration

	// Plan is an ordered sequence of actions.
	Plan = hanoi.Plan

	// Report is the result of re-simulating a plan.
	Report = hanoi.Report

	// Record is a persisted solve.
	Record = run.Record

	// RunStore persists records.
	RunStore = run.Store

	// Provider is a completion provider.
	Provider = oracle.Provider

	// Cache stores validated greedy steps.
	Cache = cache.Cache

	// CacheStats reports hits, misses and stored entries.
	CacheStats = cache.Stats

	// CacheInspector is implemented by caches that report CacheStats.
	CacheInspector = cache.Inspector
)

// Re-export run status.
type RunStatus = run.Status

const (
	StatusRunning   = run.StatusRunning
	StatusCompleted = run.StatusCompleted
	StatusFailed    = run.StatusFailed
)

// Re-export solver errors.
var (
	ErrProviderRequired  = application.ErrProviderRequired
	ErrExhaustedAttempts = application.ErrExhaustedAttempts
	ErrInvalidDiskCount  = application.ErrInvalidDiskCount
	ErrInvalidTransition = hanoi.ErrInvalidTransition
	ErrMalformedResponse = hanoi.ErrMalformedResponse
	ErrRunNotFound       = run.ErrRunNotFound
)

// New creates an engine from options.
func New(opts ...Option) (*Engine, error) {
	return application.NewEngineWithOptions(opts...)
}

// Engine options.
var (
	WithProvider           = application.WithProvider
	WithModel              = application.WithModel
	WithSampling           = application.WithSampling
	WithTemperatures       = application.WithTemperatures
	WithMaxAttempts        = application.WithMaxAttempts
	WithRedFlagging        = application.WithRedFlagging
	WithProviderRetryDelay = application.WithProviderRetryDelay
	WithVoting             = application.WithVoting
	WithK                  = application.WithK
	WithMaxRounds          = application.WithMaxRounds
	WithConcurrency        = application.WithConcurrency
	WithPrompts            = application.WithPrompts
	WithRunStore           = application.WithRunStore
	WithCache              = application.WithCache
	WithMetrics            = application.WithMetrics
	WithTracer             = application.WithTracer
	WithObserver           = application.WithObserver
)

// ProgressObserver writes human-readable progress lines.
var ProgressObserver = application.ProgressObserver

// Start returns the start configuration for n disks.
func Start(n int) Configuration {
	return hanoi.Start(n)
}

// Verify re-simulates a plan without an engine.
func Verify(plan Plan, diskCount int) Report {
	return hanoi.Verify(plan, diskCount)
}

// Provider constructors.
type (
	OpenAIConfig    = provider.OpenAIConfig
	AnthropicConfig = provider.AnthropicConfig
	OllamaConfig    = provider.OllamaConfig
	ScriptedReply   = provider.Reply
)

// NewOpenAIProvider creates an OpenAI chat completions provider.
func NewOpenAIProvider(cfg OpenAIConfig) Provider {
	return provider.NewOpenAIProvider(cfg)
}

// NewAnthropicProvider creates an Anthropic messages provider.
func NewAnthropicProvider(cfg AnthropicConfig) Provider {
	return provider.NewAnthropicProvider(cfg)
}

// NewOllamaProvider creates a local Ollama provider.
func NewOllamaProvider(cfg OllamaConfig) Provider {
	return provider.NewOllamaProvider(cfg)
}

// NewScriptedProvider creates a provider that replays texts in order and
// then starts over.
func NewScriptedProvider(texts ...string) *provider.ScriptedProvider {
	return provider.NewScriptedProvider(provider.Texts(texts...)...).Loop()
}

// OptimalLength returns the number of moves in the optimal n-disk solution.
func OptimalLength(n int) int {
	return hanoi.OptimalLength(n)
}
