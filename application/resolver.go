package application

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/maker-go/domain/cache"
	"github.com/felixgeelhaar/maker-go/domain/hanoi"
	"github.com/felixgeelhaar/maker-go/domain/oracle"
	"github.com/felixgeelhaar/maker-go/domain/prompt"
	domaintelemetry "github.com/felixgeelhaar/maker-go/domain/telemetry"
	"github.com/felixgeelhaar/maker-go/domain/vote"
	"github.com/felixgeelhaar/maker-go/infrastructure/logging"
	"github.com/felixgeelhaar/maker-go/infrastructure/statemachine"
	"github.com/felixgeelhaar/maker-go/infrastructure/telemetry"
)

// Query is the input of one step: the configuration before the step and the
// action that produced it.
type Query struct {
	Current   hanoi.Configuration
	Previous  *hanoi.Action
	DiskCount int
}

// Attempts counts what one Resolve call spent.
type Attempts struct {
	Calls          int  `json:"calls"`
	Rejections     int  `json:"rejections"`
	ProviderErrors int  `json:"provider_errors"`
	Cached         bool `json:"cached"`
}

func (a *Attempts) add(other Attempts) {
	a.Calls += other.Calls
	a.Rejections += other.Rejections
	a.ProviderErrors += other.ProviderErrors
}

// SamplingConfig configures rejection sampling.
type SamplingConfig struct {
	Model            string
	MaxTokens        int
	FirstTemperature float64
	RestTemperature  float64

	// MaxAttempts bounds oracle calls per valid sample.
	MaxAttempts int

	// RedFlagging discards malformed and illegal replies and resamples.
	RedFlagging bool

	// ProviderRetryDelay is the wait after a failed completion call.
	ProviderRetryDelay time.Duration

	// LogEvery logs every n-th rejected attempt (0 disables).
	LogEvery int
}

// DefaultSamplingConfig returns the reference sampling settings.
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Model:              "gpt-4.1",
		MaxTokens:          750,
		FirstTemperature:   0,
		RestTemperature:    0.1,
		MaxAttempts:        50,
		RedFlagging:        true,
		ProviderRetryDelay: time.Second,
		LogEvery:           10,
	}
}

// Resolver draws one validated candidate from the oracle.
type Resolver struct {
	provider oracle.Provider
	prompts  *prompt.Templates
	sampling SamplingConfig
	machine  *statekit.MachineConfig[*statemachine.Context]
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  telemetry.Metrics
	tracer   domaintelemetry.Tracer
}

// ResolverConfig holds the resolver's collaborators.
type ResolverConfig struct {
	Provider oracle.Provider
	Prompts  prompt.Set
	Sampling SamplingConfig

	// Cache, when set, stores validated zero-temperature samples.
	Cache    cache.Cache
	CacheTTL time.Duration

	Metrics telemetry.Metrics
	Tracer  domaintelemetry.Tracer
}

// NewResolver creates a resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Provider == nil {
		return nil, ErrProviderRequired
	}
	prompts, err := cfg.Prompts.Compile()
	if err != nil {
		return nil, err
	}

	machine, err := statemachine.NewSamplingMachine()
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		provider: cfg.Provider,
		prompts:  prompts,
		sampling: cfg.Sampling,
		machine:  machine,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		metrics:  cfg.Metrics,
		tracer:   cfg.Tracer,
	}
	if r.sampling.MaxAttempts <= 0 {
		r.sampling.MaxAttempts = 1
	}
	if r.metrics == nil {
		r.metrics = telemetry.NoopMetricsProvider{}
	}
	if r.tracer == nil {
		r.tracer = domaintelemetry.NoopTracer{}
	}
	return r, nil
}

// Resolve samples the oracle at temperature until a reply parses and
// validates against q.Current. Malformed or illegal replies are resampled
// only with red-flagging; provider failures are always retried after
// ProviderRetryDelay. Both consume the same attempt budget.
func (r *Resolver) Resolve(ctx context.Context, q Query, temperature float64) (vote.Candidate, Attempts, error) {
	system, user, err := r.prompts.Render(q.DiskCount, q.Previous, q.Current)
	if err != nil {
		return vote.Candidate{}, Attempts{}, err
	}

	greedy := temperature == 0
	key := cache.StepKey(r.sampling.Model, system, user)
	if greedy && r.cache != nil {
		if c, ok := r.lookup(ctx, key, q.Current); ok {
			return c, Attempts{Cached: true}, nil
		}
	}

	loop := statemachine.NewLoop(r.machine, r.sampling.MaxAttempts, r.sampling.RedFlagging)
	loop.Start()
	defer func() {
		if loop.Done() {
			logging.Debug().
				Add(logging.Str("phase", string(loop.Phase()))).
				Add(logging.Attempt(loop.Attempts())).
				Msg("sampling finished")
		}
		loop.Stop()
	}()

	attempts := func() Attempts {
		mc := loop.Context()
		return Attempts{Calls: mc.Attempts, Rejections: mc.Rejections, ProviderErrors: mc.ProviderErrors}
	}

	for {
		if err := ctx.Err(); err != nil {
			loop.Abort(err)
			return vote.Candidate{}, attempts(), err
		}

		attempt := loop.Attempts()
		c, err := r.sample(ctx, q, system, user, temperature, attempt)
		r.metrics.RecordSample(ctx, r.sampling.Model, greedy)

		switch {
		case err == nil:
			loop.Accept()
			if greedy && r.cache != nil {
				r.store(ctx, key, c)
			}
			return c, attempts(), nil

		case ctx.Err() != nil:
			loop.Abort(ctx.Err())
			return vote.Candidate{}, attempts(), ctx.Err()

		case errors.Is(err, hanoi.ErrMalformedResponse) || errors.Is(err, hanoi.ErrInvalidTransition):
			r.metrics.RecordRejection(ctx, rejectionReason(err))
			if !loop.Reject(err) {
				return vote.Candidate{}, attempts(), err
			}
			if r.sampling.LogEvery > 0 && attempt%r.sampling.LogEvery == 0 {
				logging.Info().
					Add(logging.Attempt(attempt)).
					Add(logging.Temperature(temperature)).
					Add(logging.Reason(truncate(err.Error(), 80))).
					Msg("resampling")
			}

		default:
			r.metrics.RecordProviderError(ctx, r.provider.Name())
			loop.Transient(err)
			logging.Warn().
				Add(logging.Provider(r.provider.Name())).
				Add(logging.Attempt(attempt)).
				Add(logging.ErrorField(err)).
				Msg("api error, retrying")
			if err := r.wait(ctx); err != nil {
				loop.Abort(err)
				return vote.Candidate{}, attempts(), err
			}
		}

		if !loop.Retry() {
			return vote.Candidate{}, attempts(), &ExhaustedAttemptsError{
				Attempts: loop.Attempts(),
				Last:     loop.Context().LastErr,
			}
		}
	}
}

func (r *Resolver) sample(ctx context.Context, q Query, system, user string, temperature float64, attempt int) (vote.Candidate, error) {
	ctx, span := r.tracer.StartSpan(ctx, domaintelemetry.SpanSample,
		domaintelemetry.Int("attempt", attempt),
		domaintelemetry.Float64("temperature", temperature),
	)

	resp, err := r.provider.Complete(ctx, oracle.Request{
		Model:       r.sampling.Model,
		System:      system,
		Prompt:      user,
		Temperature: temperature,
		MaxTokens:   r.sampling.MaxTokens,
	})
	if err != nil {
		span.Finish(err)
		return vote.Candidate{}, err
	}

	action, next, err := hanoi.ParseResponse(resp.Text, q.DiskCount)
	if err == nil {
		err = hanoi.Validate(q.Current, action, next)
	}
	if err != nil {
		span.Finish(err)
		return vote.Candidate{}, err
	}

	span.SetAttributes(domaintelemetry.String("action", action.Key()))
	span.Finish(nil)
	return vote.Candidate{Action: action, Next: next}, nil
}

func (r *Resolver) wait(ctx context.Context) error {
	if r.sampling.ProviderRetryDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.sampling.ProviderRetryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// lookup returns a cached candidate only if it still validates against the
// current configuration. Cache failures are treated as misses; entries that
// no longer decode or validate are evicted.
func (r *Resolver) lookup(ctx context.Context, key string, current hanoi.Configuration) (vote.Candidate, bool) {
	data, found, err := r.cache.Get(ctx, key)
	if err != nil || !found {
		r.metrics.RecordCacheMiss(ctx)
		if err != nil {
			logging.Debug().Add(logging.ErrorField(err)).Msg("cache lookup failed")
		}
		return vote.Candidate{}, false
	}

	entry, err := cache.Decode(data)
	if err == nil {
		err = hanoi.Validate(current, entry.Action, entry.Next)
	}
	if err != nil {
		r.metrics.RecordCacheMiss(ctx)
		logging.Debug().Add(logging.ErrorField(err)).Msg("evicting cached step")
		_ = r.cache.Delete(ctx, key)
		return vote.Candidate{}, false
	}

	r.metrics.RecordCacheHit(ctx)
	return vote.Candidate{Action: entry.Action, Next: entry.Next}, true
}

func (r *Resolver) store(ctx context.Context, key string, c vote.Candidate) {
	data, err := cache.Encode(cache.Entry{
		Action:   c.Action,
		Next:     c.Next,
		Model:    r.sampling.Model,
		StoredAt: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data, r.cacheTTL); err != nil {
		logging.Debug().Add(logging.ErrorField(err)).Msg("cache store failed")
	}
}

func rejectionReason(err error) string {
	if errors.Is(err, hanoi.ErrInvalidTransition) {
		return telemetry.ReasonIllegal
	}
	return telemetry.ReasonMalformed
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
