// Package observability exports solver spans through OpenTelemetry.
package observability

import (
	"io"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	domainconfig "github.com/felixgeelhaar/maker-go/domain/config"
)

// ExporterType names a span exporter.
type ExporterType string

const (
	ExporterOTLP   ExporterType = "otlp"
	ExporterStdout ExporterType = "stdout"
	ExporterNoop   ExporterType = "noop"
)

// Config controls span export. The zero Exporter and a false Enabled both
// mean spans are discarded.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	Enabled  bool
	Exporter ExporterType

	// Endpoint is host:port of an OTLP/gRPC collector.
	Endpoint string
	Insecure bool

	SampleRate   float64
	BatchTimeout time.Duration

	// Writer receives stdout exporter output. Nil means os.Stdout.
	Writer io.Writer

	// MetricInterval is how often metrics are pushed to the exporter.
	MetricInterval time.Duration

	// MetricReader replaces the exporter-backed periodic reader.
	MetricReader sdkmetric.Reader
}

func DefaultConfig() Config {
	return Config{
		ServiceName:    "maker",
		ServiceVersion: "dev",
		Environment:    "development",
		Exporter:       ExporterNoop,
		SampleRate:     1,
		BatchTimeout:   5 * time.Second,
		MetricInterval: time.Minute,
	}
}

type Option func(*Config)

func WithServiceName(name string) Option {
	return func(c *Config) { c.ServiceName = name }
}

func WithServiceVersion(version string) Option {
	return func(c *Config) { c.ServiceVersion = version }
}

// WithTracing turns export on.
func WithTracing(exporter ExporterType, endpoint string) Option {
	return func(c *Config) {
		c.Enabled, c.Exporter, c.Endpoint = true, exporter, endpoint
	}
}

func WithInsecure() Option {
	return func(c *Config) { c.Insecure = true }
}

func WithSampleRate(rate float64) Option {
	return func(c *Config) { c.SampleRate = rate }
}

func WithWriter(w io.Writer) Option {
	return func(c *Config) { c.Writer = w }
}

// WithMetricReader collects metrics through r instead of an exporter.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(c *Config) { c.MetricReader = r }
}

// FromConfig maps the telemetry section of a solver configuration. A
// disabled section yields no options. OTLP connections are plaintext.
func FromConfig(cfg domainconfig.TelemetryConfig) []Option {
	if !cfg.Enabled {
		return nil
	}

	exporter := ExporterType(cfg.Exporter)
	opts := []Option{WithTracing(exporter, cfg.Endpoint), WithSampleRate(cfg.SampleRate)}
	if cfg.ServiceName != "" {
		opts = append(opts, WithServiceName(cfg.ServiceName))
	}
	if exporter == ExporterOTLP {
		opts = append(opts, WithInsecure())
	}
	return opts
}
