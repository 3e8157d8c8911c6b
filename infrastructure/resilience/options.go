package resilience

import (
	"time"

	"github.com/felixgeelhaar/maker-go/domain/oracle"
)

// Option configures the resilient provider.
type Option func(*ProviderConfig)

// WithMaxConcurrent sets the maximum in-flight completions.
func WithMaxConcurrent(n int) Option {
	return func(c *ProviderConfig) {
		c.MaxConcurrent = n
	}
}

// WithRateLimit sets the token bucket rate and burst.
func WithRateLimit(rate, burst int) Option {
	return func(c *ProviderConfig) {
		c.Rate = rate
		c.Burst = burst
	}
}

// WithCircuitBreaker sets the failure threshold and open duration.
func WithCircuitBreaker(threshold int, timeout time.Duration) Option {
	return func(c *ProviderConfig) {
		c.CircuitBreakerThreshold = threshold
		c.CircuitBreakerTimeout = timeout
	}
}

// WithRetry sets the transport retry attempts and initial delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *ProviderConfig) {
		c.RetryMaxAttempts = attempts
		c.RetryInitialDelay = delay
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *ProviderConfig) {
		c.Timeout = d
	}
}

// NewProviderWithOptions wraps next using the defaults adjusted by opts.
func NewProviderWithOptions(next oracle.Provider, opts ...Option) *Provider {
	config := DefaultProviderConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return NewProvider(next, config)
}
