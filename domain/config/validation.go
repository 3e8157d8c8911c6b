package config

import (
	"fmt"
	"strings"
)

// MaxDisks bounds the puzzle size accepted by the validator.
const MaxDisks = 30

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the YAML path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates solver configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(config *SolverConfig) ValidationErrors {
	v.errors = nil

	v.validateOracle(config)
	v.validateSampling(config)
	v.validateVoting(config)
	v.validatePuzzle(config)
	v.validateResilience(config)
	v.validateStorage(config)
	v.validateCache(config)
	v.validateLogging(config)
	v.validateTelemetry(config)

	return v.errors
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) validateOracle(config *SolverConfig) {
	validProviders := map[string]bool{
		"openai": true, "anthropic": true, "ollama": true, "scripted": true,
	}
	switch {
	case config.Oracle.Provider == "":
		v.addError("oracle.provider", "provider is required")
	case !validProviders[config.Oracle.Provider]:
		v.addError("oracle.provider", fmt.Sprintf("unknown provider: %s", config.Oracle.Provider))
	}

	if config.Oracle.Model == "" {
		v.addError("oracle.model", "model is required")
	}
	if config.Oracle.MaxTokens <= 0 {
		v.addError("oracle.max_tokens", "max_tokens must be positive")
	}
	if config.Oracle.Timeout < 0 {
		v.addError("oracle.timeout", "timeout must be non-negative")
	}
	if config.Oracle.Provider == "scripted" && len(config.Oracle.Replies) == 0 {
		v.addError("oracle.replies", "scripted provider needs at least one reply")
	}
}

func (v *Validator) validateSampling(config *SolverConfig) {
	s := config.Sampling
	if s.FirstTemperature < 0 || s.FirstTemperature > 2 {
		v.addError("sampling.first_temperature", "temperature must be between 0 and 2")
	}
	if s.RestTemperature < 0 || s.RestTemperature > 2 {
		v.addError("sampling.rest_temperature", "temperature must be between 0 and 2")
	}
	if s.MaxAttempts <= 0 {
		v.addError("sampling.max_attempts", "max_attempts must be positive")
	}
	if s.ProviderRetryDelay < 0 {
		v.addError("sampling.provider_retry_delay", "provider_retry_delay must be non-negative")
	}
	if s.LogEvery < 0 {
		v.addError("sampling.log_every", "log_every must be non-negative")
	}
}

func (v *Validator) validateVoting(config *SolverConfig) {
	if config.Voting.K < 1 {
		v.addError("voting.k", "k must be at least 1")
	}
	if config.Voting.MaxRounds < 1 {
		v.addError("voting.max_rounds", "max_rounds must be at least 1")
	}
	if config.Voting.Concurrency < 0 {
		v.addError("voting.concurrency", "concurrency must be non-negative")
	}
}

func (v *Validator) validatePuzzle(config *SolverConfig) {
	if config.Puzzle.Disks < 1 || config.Puzzle.Disks > MaxDisks {
		v.addError("puzzle.disks", fmt.Sprintf("disks must be between 1 and %d", MaxDisks))
	}
}

func (v *Validator) validateResilience(config *SolverConfig) {
	r := config.Resilience
	if r.Timeout < 0 {
		v.addError("resilience.timeout", "timeout must be non-negative")
	}

	if r.Retry.Enabled {
		if r.Retry.MaxAttempts <= 0 {
			v.addError("resilience.retry.max_attempts", "max_attempts must be positive when enabled")
		}
		if r.Retry.Multiplier < 1 {
			v.addError("resilience.retry.multiplier", "multiplier must be >= 1")
		}
	}

	if r.CircuitBreaker.Enabled && r.CircuitBreaker.Threshold <= 0 {
		v.addError("resilience.circuit_breaker.threshold", "threshold must be positive when enabled")
	}

	if r.Bulkhead.Enabled && r.Bulkhead.MaxConcurrent <= 0 {
		v.addError("resilience.bulkhead.max_concurrent", "max_concurrent must be positive when enabled")
	}

	if r.RateLimit.Enabled {
		if r.RateLimit.Rate <= 0 {
			v.addError("resilience.rate_limit.rate", "rate must be positive when enabled")
		}
		if r.RateLimit.Burst <= 0 {
			v.addError("resilience.rate_limit.burst", "burst must be positive when enabled")
		}
	}
}

func (v *Validator) validateStorage(config *SolverConfig) {
	switch config.Storage.Driver {
	case "", "memory":
	case "sqlite":
		if config.Storage.DSN == "" {
			v.addError("storage.dsn", "dsn is required for sqlite storage")
		}
	default:
		v.addError("storage.driver", fmt.Sprintf("unknown storage driver: %s", config.Storage.Driver))
	}
}

func (v *Validator) validateCache(config *SolverConfig) {
	switch config.Cache.Driver {
	case "", "none", "memory", "badger":
	case "redis":
		if config.Cache.Addr == "" && config.Cache.URL == "" {
			v.addError("cache.addr", "addr or url is required for redis cache")
		}
	default:
		v.addError("cache.driver", fmt.Sprintf("unknown cache driver: %s", config.Cache.Driver))
	}
	if config.Cache.TTL < 0 {
		v.addError("cache.ttl", "ttl must be non-negative")
	}
}

func (v *Validator) validateLogging(config *SolverConfig) {
	if config.Logging.Level != "" {
		validLevels := map[string]bool{
			"trace": true, "debug": true, "info": true, "warn": true, "error": true,
		}
		if !validLevels[strings.ToLower(config.Logging.Level)] {
			v.addError("logging.level", fmt.Sprintf("invalid level: %s", config.Logging.Level))
		}
	}
	switch config.Logging.Format {
	case "", "json", "console":
	default:
		v.addError("logging.format", fmt.Sprintf("invalid format: %s", config.Logging.Format))
	}
}

func (v *Validator) validateTelemetry(config *SolverConfig) {
	if !config.Telemetry.Enabled {
		return
	}

	switch config.Telemetry.Exporter {
	case "stdout":
	case "otlp":
		if config.Telemetry.Endpoint == "" {
			v.addError("telemetry.endpoint", "endpoint is required for otlp exporter")
		}
	default:
		v.addError("telemetry.exporter", fmt.Sprintf("unknown exporter: %s", config.Telemetry.Exporter))
	}
	if config.Telemetry.SampleRate < 0 || config.Telemetry.SampleRate > 1 {
		v.addError("telemetry.sample_rate", "sample_rate must be between 0 and 1")
	}
}
