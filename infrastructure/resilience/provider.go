// Package resilience wraps oracle providers with fortify resilience patterns.
package resilience

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/maker-go/domain/config"
	"github.com/felixgeelhaar/maker-go/domain/oracle"
)

const rateLimitKey = "oracle"

// ProviderConfig configures the resilient provider. Zero values disable the
// corresponding pattern.
type ProviderConfig struct {
	// Timeout bounds a single completion call.
	Timeout time.Duration

	// MaxConcurrent limits in-flight completions.
	MaxConcurrent int

	// Rate and Burst configure a token bucket shared by all calls.
	Rate  int
	Burst int

	// CircuitBreakerThreshold is the number of consecutive failures before opening.
	CircuitBreakerThreshold int

	// CircuitBreakerTimeout is how long the circuit stays open.
	CircuitBreakerTimeout time.Duration

	// RetryMaxAttempts is the maximum number of transport retries per call.
	RetryMaxAttempts int

	// RetryInitialDelay is the initial delay between retries.
	RetryInitialDelay time.Duration

	// RetryBackoffMultiplier is the exponential backoff multiplier.
	RetryBackoffMultiplier float64
}

// DefaultProviderConfig returns a configuration with sensible defaults.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Timeout:                 2 * time.Minute,
		MaxConcurrent:           4,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
		RetryMaxAttempts:        3,
		RetryInitialDelay:       500 * time.Millisecond,
		RetryBackoffMultiplier:  2.0,
	}
}

// FromConfig maps the resilience section of the solver configuration.
// Disabled sections stay zero.
func FromConfig(cfg config.ResilienceConfig) ProviderConfig {
	pc := ProviderConfig{Timeout: cfg.Timeout.Duration()}
	if cfg.Bulkhead.Enabled {
		pc.MaxConcurrent = cfg.Bulkhead.MaxConcurrent
	}
	if cfg.RateLimit.Enabled {
		pc.Rate = cfg.RateLimit.Rate
		pc.Burst = cfg.RateLimit.Burst
	}
	if cfg.CircuitBreaker.Enabled {
		pc.CircuitBreakerThreshold = cfg.CircuitBreaker.Threshold
		pc.CircuitBreakerTimeout = cfg.CircuitBreaker.Timeout.Duration()
		if pc.CircuitBreakerTimeout == 0 {
			pc.CircuitBreakerTimeout = 30 * time.Second
		}
	}
	if cfg.Retry.Enabled {
		pc.RetryMaxAttempts = cfg.Retry.MaxAttempts
		pc.RetryInitialDelay = cfg.Retry.InitialDelay.Duration()
		pc.RetryBackoffMultiplier = cfg.Retry.Multiplier
	}
	return pc
}

// Provider decorates an oracle.Provider.
// Composition order: Bulkhead → Rate limit → Timeout → Circuit Breaker → Retry.
type Provider struct {
	next     oracle.Provider
	bulkhead bulkhead.Bulkhead[oracle.Response]
	limiter  ratelimit.RateLimiter
	breaker  circuitbreaker.CircuitBreaker[oracle.Response]
	retry    retry.Retry[oracle.Response]
	timeout  time.Duration
}

// NewProvider wraps next with the patterns enabled in config.
func NewProvider(next oracle.Provider, config ProviderConfig) *Provider {
	p := &Provider{next: next, timeout: config.Timeout}

	if config.MaxConcurrent > 0 {
		p.bulkhead = bulkhead.New[oracle.Response](bulkhead.Config{
			MaxConcurrent: config.MaxConcurrent,
		})
	}

	if config.Rate > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = config.Rate
		}
		p.limiter = ratelimit.New(&ratelimit.Config{
			Rate:  config.Rate,
			Burst: burst,
		})
	}

	if config.CircuitBreakerThreshold > 0 {
		threshold := uint32(config.CircuitBreakerThreshold) // #nosec G115 -- checked positive above
		p.breaker = circuitbreaker.New[oracle.Response](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    config.CircuitBreakerTimeout,
			Timeout:     config.CircuitBreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
		})
	}

	if config.RetryMaxAttempts > 1 {
		multiplier := config.RetryBackoffMultiplier
		if multiplier < 1 {
			multiplier = 2.0
		}
		p.retry = retry.New[oracle.Response](retry.Config{
			MaxAttempts:        config.RetryMaxAttempts,
			InitialDelay:       config.RetryInitialDelay,
			BackoffPolicy:      retry.BackoffExponential,
			Multiplier:         multiplier,
			NonRetryableErrors: []error{context.Canceled, context.DeadlineExceeded},
		})
	}

	return p
}

// Name returns the wrapped provider's name.
func (p *Provider) Name() string {
	return p.next.Name()
}

// Complete implements oracle.Provider. Every failure is returned as an
// oracle.ProviderError.
func (p *Provider) Complete(ctx context.Context, req oracle.Request) (oracle.Response, error) {
	resp, err := p.withBulkhead(ctx, func(ctx context.Context) (oracle.Response, error) {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx, rateLimitKey); err != nil {
				return oracle.Response{}, err
			}
		}

		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}

		return p.withBreaker(ctx, func(ctx context.Context) (oracle.Response, error) {
			if p.retry != nil {
				return p.retry.Do(ctx, func(ctx context.Context) (oracle.Response, error) {
					return p.next.Complete(ctx, req)
				})
			}
			return p.next.Complete(ctx, req)
		})
	})
	if err != nil {
		return oracle.Response{}, oracle.WrapError(p.Name(), err)
	}
	return resp, nil
}

func (p *Provider) withBulkhead(ctx context.Context, fn func(context.Context) (oracle.Response, error)) (oracle.Response, error) {
	if p.bulkhead == nil {
		return fn(ctx)
	}
	return p.bulkhead.Execute(ctx, fn)
}

func (p *Provider) withBreaker(ctx context.Context, fn func(context.Context) (oracle.Response, error)) (oracle.Response, error) {
	if p.breaker == nil {
		return fn(ctx)
	}
	return p.breaker.Execute(ctx, fn)
}

// CircuitBreakerState returns the breaker state, or "disabled".
func (p *Provider) CircuitBreakerState() string {
	if p.breaker == nil {
		return "disabled"
	}
	return p.breaker.State().String()
}
