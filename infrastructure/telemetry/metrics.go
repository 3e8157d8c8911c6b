// Package telemetry records OpenTelemetry metrics for the consensus solver.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Rejection reasons reported on maker.samples.rejected.
const (
	ReasonMalformed = "malformed"
	ReasonIllegal   = "illegal"
)

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	// Counters
	samples        metric.Int64Counter
	rejections     metric.Int64Counter
	providerErrors metric.Int64Counter
	votingTimeouts metric.Int64Counter
	steps          metric.Int64Counter
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	runs           metric.Int64Counter

	// Histograms
	rounds       metric.Int64Histogram
	stepDuration metric.Float64Histogram
	runDuration  metric.Float64Histogram

	activeRuns metric.Int64UpDownCounter

	initOnce sync.Once
	initErr  error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter (default: "github.com/felixgeelhaar/maker-go").
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
	// MeterProvider supplies the meter. Nil means the global provider.
	MeterProvider metric.MeterProvider
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/maker-go",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates the solver instruments on config.MeterProvider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config.MeterName = DefaultMetricsConfig().MeterName
	}
	provider := config.MeterProvider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	meter := provider.Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)

	mp := &MetricsProvider{meter: meter}
	mp.initOnce.Do(func() {
		mp.initErr = mp.initInstruments()
	})
	return mp
}

type counterSpec struct {
	target      *metric.Int64Counter
	name        string
	description string
	unit        string
}

func (mp *MetricsProvider) initInstruments() error {
	counters := []counterSpec{
		{&mp.samples, "maker.samples", "Oracle samples requested", "{sample}"},
		{&mp.rejections, "maker.samples.rejected", "Samples discarded by red-flagging", "{sample}"},
		{&mp.providerErrors, "maker.provider.errors", "Failed completion calls", "{error}"},
		{&mp.votingTimeouts, "maker.voting.timeouts", "Steps decided by plurality fallback", "{step}"},
		{&mp.steps, "maker.steps", "Steps decided", "{step}"},
		{&mp.cacheHits, "maker.cache.hits", "Greedy samples served from cache", "{hit}"},
		{&mp.cacheMisses, "maker.cache.misses", "Greedy samples not in cache", "{miss}"},
		{&mp.runs, "maker.runs", "Completed runs", "{run}"},
	}
	for _, c := range counters {
		counter, err := mp.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return err
		}
		*c.target = counter
	}

	var err error
	mp.rounds, err = mp.meter.Int64Histogram(
		"maker.voting.rounds",
		metric.WithDescription("Samples drawn per step"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return err
	}

	mp.stepDuration, err = mp.meter.Float64Histogram(
		"maker.step.duration",
		metric.WithDescription("Duration of one voted step"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.runDuration, err = mp.meter.Float64Histogram(
		"maker.run.duration",
		metric.WithDescription("Duration of a full solve"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.activeRuns, err = mp.meter.Int64UpDownCounter(
		"maker.runs.active",
		metric.WithDescription("Runs in progress"),
		metric.WithUnit("{run}"),
	)
	return err
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordSample records one oracle call.
func (mp *MetricsProvider) RecordSample(ctx context.Context, model string, greedy bool) {
	mp.samples.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.Bool("greedy", greedy),
	))
}

// RecordRejection records a red-flagged sample.
func (mp *MetricsProvider) RecordRejection(ctx context.Context, reason string) {
	mp.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordProviderError records a failed completion call.
func (mp *MetricsProvider) RecordProviderError(ctx context.Context, provider string) {
	mp.providerErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordStep records a decided step.
func (mp *MetricsProvider) RecordStep(ctx context.Context, rounds int, timedOut bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("timed_out", timedOut))

	mp.steps.Add(ctx, 1, attrs)
	mp.rounds.Record(ctx, int64(rounds), attrs)
	mp.stepDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if timedOut {
		mp.votingTimeouts.Add(ctx, 1)
	}
}

// RecordCacheHit records a greedy sample served from cache.
func (mp *MetricsProvider) RecordCacheHit(ctx context.Context) {
	mp.cacheHits.Add(ctx, 1)
}

// RecordCacheMiss records a greedy sample missing from cache.
func (mp *MetricsProvider) RecordCacheMiss(ctx context.Context) {
	mp.cacheMisses.Add(ctx, 1)
}

// RunStarted increments the active runs gauge.
func (mp *MetricsProvider) RunStarted(ctx context.Context) {
	mp.activeRuns.Add(ctx, 1)
}

// RunFinished decrements the active runs gauge and records the run.
func (mp *MetricsProvider) RunFinished(ctx context.Context, disks int, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.Int("disks", disks),
		attribute.String("status", status),
	)
	mp.activeRuns.Add(ctx, -1)
	mp.runs.Add(ctx, 1, attrs)
	mp.runDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// NoopMetricsProvider is a no-op metrics provider for when metrics are disabled.
type NoopMetricsProvider struct{}

func (NoopMetricsProvider) RecordSample(context.Context, string, bool) {}
func (NoopMetricsProvider) RecordRejection(context.Context, string) {}
func (NoopMetricsProvider) RecordProviderError(context.Context, string) {}
func (NoopMetricsProvider) RecordStep(context.Context, int, bool, time.Duration) {}
func (NoopMetricsProvider) RecordCacheHit(context.Context) {}
func (NoopMetricsProvider) RecordCacheMiss(context.Context) {}
func (NoopMetricsProvider) RunStarted(context.Context) {}
func (NoopMetricsProvider) RunFinished(context.Context, int, string, time.Duration) {}

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordSample(ctx context.Context, model string, greedy bool)
	RecordRejection(ctx context.Context, reason string)
	RecordProviderError(ctx context.Context, provider string)
	RecordStep(ctx context.Context, rounds int, timedOut bool, duration time.Duration)
	RecordCacheHit(ctx context.Context)
	RecordCacheMiss(ctx context.Context)
	RunStarted(ctx context.Context)
	RunFinished(ctx context.Context, disks int, status string, duration time.Duration)
}

var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = NoopMetricsProvider{}
)
