package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/maker-go/domain/oracle"
)

type flakyProvider struct {
	calls    atomic.Int32
	failures int32
	block    bool
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) Complete(ctx context.Context, req oracle.Request) (oracle.Response, error) {
	n := f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return oracle.Response{}, ctx.Err()
	}
	if n <= f.failures {
		return oracle.Response{}, errors.New("connection reset")
	}
	return oracle.Response{Text: "ok:" + req.Prompt}, nil
}

func TestProvider_PassThrough(t *testing.T) {
	t.Parallel()

	next := &flakyProvider{}
	p := NewProvider(next, ProviderConfig{})

	resp, err := p.Complete(context.Background(), oracle.Request{Prompt: "hi"})
	if err != nil || resp.Text != "ok:hi" {
		t.Fatalf("Complete() = %+v, %v", resp, err)
	}
	if p.Name() != "flaky" {
		t.Errorf("Name() = %s, want wrapped name", p.Name())
	}
	if p.CircuitBreakerState() != "disabled" {
		t.Errorf("CircuitBreakerState() = %s, want disabled", p.CircuitBreakerState())
	}
}

func TestProvider_RetriesTransportErrors(t *testing.T) {
	t.Parallel()

	next := &flakyProvider{failures: 2}
	p := NewProvider(next, ProviderConfig{
		RetryMaxAttempts:  3,
		RetryInitialDelay: time.Millisecond,
	})

	resp, err := p.Complete(context.Background(), oracle.Request{Prompt: "x"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != "ok:x" {
		t.Errorf("Text = %q", resp.Text)
	}
	if got := next.calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestProvider_ErrorsAreProviderErrors(t *testing.T) {
	t.Parallel()

	next := &flakyProvider{failures: 100}
	p := NewProvider(next, ProviderConfig{})

	_, err := p.Complete(context.Background(), oracle.Request{})
	if !oracle.IsProviderError(err) {
		t.Errorf("Complete() error = %v, want ProviderError", err)
	}
}

func TestProvider_CircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	next := &flakyProvider{failures: 100}
	p := NewProvider(next, ProviderConfig{
		CircuitBreakerThreshold: 2,
		CircuitBreakerTimeout:   time.Minute,
	})

	for i := 0; i < 2; i++ {
		if _, err := p.Complete(context.Background(), oracle.Request{}); err == nil {
			t.Fatalf("call %d should fail", i)
		}
	}

	_, err := p.Complete(context.Background(), oracle.Request{})
	if !oracle.IsProviderError(err) {
		t.Errorf("open breaker error = %v, want ProviderError", err)
	}
	if got := next.calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2 (third call short-circuited)", got)
	}
}

func TestProvider_Timeout(t *testing.T) {
	t.Parallel()

	next := &flakyProvider{block: true}
	p := NewProvider(next, ProviderConfig{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := p.Complete(context.Background(), oracle.Request{})
	if !oracle.IsProviderError(err) {
		t.Errorf("Complete() error = %v, want ProviderError", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not applied, took %v", elapsed)
	}
}

func TestProvider_WithBulkheadAndRateLimit(t *testing.T) {
	t.Parallel()

	next := &flakyProvider{}
	p := NewProviderWithOptions(next,
		WithMaxConcurrent(2),
		WithRateLimit(1000, 1000),
		WithRetry(0, 0),
		WithCircuitBreaker(0, 0),
	)

	for i := 0; i < 5; i++ {
		if _, err := p.Complete(context.Background(), oracle.Request{}); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
	}
	if got := next.calls.Load(); got != 5 {
		t.Errorf("calls = %d, want 5", got)
	}
}
