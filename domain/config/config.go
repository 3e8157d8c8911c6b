// Package config provides domain models for solver configuration.
package config

import "time"

// SolverConfig represents the complete solver configuration.
type SolverConfig struct {
	// Name is a human-readable name for this configuration.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Oracle selects and configures the completion provider.
	Oracle OracleConfig `json:"oracle" yaml:"oracle"`
	// Sampling configures per-step rejection sampling.
	Sampling SamplingConfig `json:"sampling" yaml:"sampling"`
	// Voting configures first-to-ahead-by-k voting.
	Voting VotingConfig `json:"voting" yaml:"voting"`
	// Puzzle describes the puzzle instance.
	Puzzle PuzzleConfig `json:"puzzle" yaml:"puzzle"`
	// Prompts overrides the built-in prompt templates.
	Prompts PromptsConfig `json:"prompts,omitempty" yaml:"prompts,omitempty"`
	// Resilience wraps provider calls.
	Resilience ResilienceConfig `json:"resilience,omitempty" yaml:"resilience,omitempty"`
	// Storage configures run persistence.
	Storage StorageConfig `json:"storage,omitempty" yaml:"storage,omitempty"`
	// Cache configures the greedy-step cache.
	Cache CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty"`
	// Logging configures the global logger.
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
	// Telemetry configures tracing and metrics export.
	Telemetry TelemetryConfig `json:"telemetry,omitempty" yaml:"telemetry,omitempty"`
}

// OracleConfig configures the completion provider.
type OracleConfig struct {
	// Provider is the provider name (openai, anthropic, ollama, scripted).
	Provider string `json:"provider" yaml:"provider"`
	// Model is the model identifier sent with every request.
	Model string `json:"model" yaml:"model"`
	// APIKey authenticates against the provider. Usually ${OPENAI_API_KEY}.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// MaxTokens bounds the reply length.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
	// Timeout is the HTTP client timeout.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// Replies are canned replies for the scripted provider.
	Replies []string `json:"replies,omitempty" yaml:"replies,omitempty"`
}

// SamplingConfig configures rejection sampling of a single step.
type SamplingConfig struct {
	// FirstTemperature is used for the first (greedy) sample of every step.
	FirstTemperature float64 `json:"first_temperature" yaml:"first_temperature"`
	// RestTemperature is used for all further samples.
	RestTemperature float64 `json:"rest_temperature" yaml:"rest_temperature"`
	// MaxAttempts bounds the oracle calls made to obtain one valid sample.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
	// RedFlagging discards malformed or illegal replies and resamples.
	RedFlagging bool `json:"red_flagging" yaml:"red_flagging"`
	// ProviderRetryDelay is the wait after a provider failure.
	ProviderRetryDelay Duration `json:"provider_retry_delay,omitempty" yaml:"provider_retry_delay,omitempty"`
	// LogEvery logs every n-th rejected attempt.
	LogEvery int `json:"log_every,omitempty" yaml:"log_every,omitempty"`
}

// VotingConfig configures per-step voting.
type VotingConfig struct {
	// K is the lead a candidate needs over every rival.
	K int `json:"k" yaml:"k"`
	// MaxRounds bounds the samples per step, including the first.
	MaxRounds int `json:"max_rounds" yaml:"max_rounds"`
	// Concurrency is the number of diversity samples drawn in parallel.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
}

// PuzzleConfig describes the puzzle instance.
type PuzzleConfig struct {
	// Disks is the number of disks.
	Disks int `json:"disks" yaml:"disks"`
}

// PromptsConfig overrides prompt templates. Empty fields keep the defaults.
type PromptsConfig struct {
	System string `json:"system,omitempty" yaml:"system,omitempty"`
	Odd    string `json:"odd,omitempty" yaml:"odd,omitempty"`
	Even   string `json:"even,omitempty" yaml:"even,omitempty"`
}

// ResilienceConfig contains resilience settings for provider calls.
type ResilienceConfig struct {
	// Timeout bounds a single provider call.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// Retry configures transport retries within one attempt.
	Retry RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
	// CircuitBreaker configures circuit breaker behavior.
	CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker,omitempty" yaml:"circuit_breaker,omitempty"`
	// Bulkhead configures bulkhead behavior.
	Bulkhead BulkheadConfig `json:"bulkhead,omitempty" yaml:"bulkhead,omitempty"`
	// RateLimit configures request rate limiting.
	RateLimit RateLimitConfig `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// Enabled enables retry.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// MaxAttempts is the maximum retry attempts.
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	// InitialDelay is the first retry delay.
	InitialDelay Duration `json:"initial_delay,omitempty" yaml:"initial_delay,omitempty"`
	// Multiplier is the backoff multiplier.
	Multiplier float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
}

// CircuitBreakerConfig configures circuit breaker behavior.
type CircuitBreakerConfig struct {
	// Enabled enables circuit breaker.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Threshold is consecutive failures before opening.
	Threshold int `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	// Timeout is how long the circuit stays open.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// BulkheadConfig configures bulkhead behavior.
type BulkheadConfig struct {
	// Enabled enables bulkhead.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// MaxConcurrent is the maximum in-flight completions.
	MaxConcurrent int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`
}

// RateLimitConfig configures rate limiting.
type RateLimitConfig struct {
	// Enabled enables rate limiting.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Rate is the requests per second.
	Rate int `json:"rate,omitempty" yaml:"rate,omitempty"`
	// Burst is the maximum burst size.
	Burst int `json:"burst,omitempty" yaml:"burst,omitempty"`
}

// StorageConfig configures run persistence.
type StorageConfig struct {
	// Driver is memory or sqlite.
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`
	// DSN is the sqlite database path.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// CacheConfig configures the greedy-step cache.
type CacheConfig struct {
	// Driver is none, memory, redis or badger.
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`
	// URL is a redis:// or rediss:// URL. It takes precedence over Addr,
	// Password and DB.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Addr is the redis address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
	// Password is the redis password.
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	// DB is the redis database number.
	DB int `json:"db,omitempty" yaml:"db,omitempty"`
	// Dir is the badger data directory. Empty means in-memory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
	// Prefix namespaces cache keys.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	// TTL is the entry lifetime. Zero means no expiry.
	TTL Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	// Level is trace, debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format is json or console.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// TelemetryConfig configures tracing and metrics.
type TelemetryConfig struct {
	// Enabled enables tracing export.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Exporter is stdout or otlp.
	Exporter string `json:"exporter,omitempty" yaml:"exporter,omitempty"`
	// Endpoint is the OTLP collector endpoint.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	// ServiceName overrides the reported service name.
	ServiceName string `json:"service_name,omitempty" yaml:"service_name,omitempty"`
	// SampleRate is the trace sampling ratio between 0 and 1.
	SampleRate float64 `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() SolverConfig {
	return SolverConfig{
		Oracle: OracleConfig{
			Provider:  "openai",
			Model:     "gpt-4.1",
			APIKey:    "",
			MaxTokens: 750,
			Timeout:   Duration(120 * time.Second),
		},
		Sampling: SamplingConfig{
			FirstTemperature:   0,
			RestTemperature:    0.1,
			MaxAttempts:        50,
			RedFlagging:        true,
			ProviderRetryDelay: Duration(time.Second),
			LogEvery:           10,
		},
		Voting: VotingConfig{
			K:           3,
			MaxRounds:   100,
			Concurrency: 1,
		},
		Puzzle: PuzzleConfig{
			Disks: 3,
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Cache: CacheConfig{
			Driver: "none",
			Prefix: "maker:",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Exporter:   "stdout",
			SampleRate: 1,
		},
	}
}

// Duration is a time.Duration that supports JSON/YAML string representation.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
