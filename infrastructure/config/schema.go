package config

import (
	"encoding/json"

	domainconfig "github.com/felixgeelhaar/maker-go/domain/config"
)

// JSONSchema represents a JSON Schema document.
type JSONSchema struct {
	Schema      string                 `json:"$schema,omitempty"`
	ID          string                 `json:"$id,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Description string                 `json:"description,omitempty"`
	Type        string                 `json:"type,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Items       *JSONSchema            `json:"items,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Default     any                    `json:"default,omitempty"`
	Minimum     *float64               `json:"minimum,omitempty"`
	Maximum     *float64               `json:"maximum,omitempty"`
	Format      string                 `json:"format,omitempty"`
}

// GenerateSchema generates a JSON Schema for SolverConfig. Defaults are taken
// from domainconfig.Default.
func GenerateSchema() *JSONSchema {
	def := domainconfig.Default()

	return &JSONSchema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		ID:          "https://github.com/felixgeelhaar/maker-go/solver-config.schema.json",
		Title:       "Solver Configuration",
		Description: "Configuration schema for the maker consensus solver",
		Type:        "object",
		Properties: map[string]*JSONSchema{
			"name": stringProp("A human-readable name for this configuration"),
			"oracle": object("Completion provider settings", map[string]*JSONSchema{
				"provider": enumProp("Provider name", def.Oracle.Provider,
					"openai", "anthropic", "ollama", "scripted"),
				"model":      withDefault(stringProp("Model identifier"), def.Oracle.Model),
				"api_key":    stringProp("API key, usually ${OPENAI_API_KEY}"),
				"base_url":   stringProp("Provider endpoint override"),
				"max_tokens": intProp("Maximum reply tokens", 1, def.Oracle.MaxTokens),
				"timeout":    durationProp("HTTP client timeout", def.Oracle.Timeout),
				"replies": {
					Type:        "array",
					Description: "Canned replies for the scripted provider",
					Items:       &JSONSchema{Type: "string"},
				},
			}),
			"sampling": object("Per-step rejection sampling", map[string]*JSONSchema{
				"first_temperature":    temperatureProp("Temperature of the first sample", def.Sampling.FirstTemperature),
				"rest_temperature":     temperatureProp("Temperature of later samples", def.Sampling.RestTemperature),
				"max_attempts":         intProp("Oracle calls allowed per valid sample", 1, def.Sampling.MaxAttempts),
				"red_flagging":         {Type: "boolean", Description: "Discard malformed or illegal replies and resample", Default: def.Sampling.RedFlagging},
				"provider_retry_delay": durationProp("Wait after a provider failure", def.Sampling.ProviderRetryDelay),
				"log_every":            intProp("Log every n-th rejected attempt", 0, def.Sampling.LogEvery),
			}),
			"voting": object("First-to-ahead-by-k voting", map[string]*JSONSchema{
				"k":           intProp("Required lead over every rival", 1, def.Voting.K),
				"max_rounds":  intProp("Samples per step including the first", 1, def.Voting.MaxRounds),
				"concurrency": intProp("Diversity samples drawn in parallel", 0, def.Voting.Concurrency),
			}),
			"puzzle": object("Puzzle instance", map[string]*JSONSchema{
				"disks": withMax(intProp("Number of disks", 1, def.Puzzle.Disks), domainconfig.MaxDisks),
			}),
			"prompts": object("Prompt template overrides", map[string]*JSONSchema{
				"system": stringProp("System prompt"),
				"odd":    stringProp("Step template for odd disk counts"),
				"even":   stringProp("Step template for even disk counts"),
			}),
			"resilience": generateResilienceSchema(),
			"storage": object("Run persistence", map[string]*JSONSchema{
				"driver": enumProp("Storage driver", def.Storage.Driver, "memory", "sqlite"),
				"dsn":    stringProp("sqlite database path"),
			}),
			"cache": object("Greedy-step cache", map[string]*JSONSchema{
				"driver":   enumProp("Cache driver", def.Cache.Driver, "none", "memory", "redis", "badger"),
				"url":      stringProp("redis URL, overrides addr, password and db"),
				"addr":     stringProp("redis address"),
				"password": stringProp("redis password"),
				"db":       intProp("redis database", 0, 0),
				"dir":      stringProp("badger directory, empty for in-memory"),
				"prefix":   withDefault(stringProp("Key prefix"), def.Cache.Prefix),
				"ttl":      durationProp("Entry lifetime, 0 for none", 0),
			}),
			"logging": object("Logging", map[string]*JSONSchema{
				"level":  enumProp("Log level", def.Logging.Level, "trace", "debug", "info", "warn", "error"),
				"format": enumProp("Log format", def.Logging.Format, "json", "console"),
			}),
			"telemetry": object("Tracing export", map[string]*JSONSchema{
				"enabled":      {Type: "boolean", Description: "Enable tracing export"},
				"exporter":     enumProp("Trace exporter", def.Telemetry.Exporter, "stdout", "otlp"),
				"endpoint":     stringProp("OTLP collector endpoint"),
				"service_name": stringProp("Reported service name"),
				"sample_rate":  withMax(numberProp("Trace sampling ratio", 0, def.Telemetry.SampleRate), 1),
			}),
		},
	}
}

func generateResilienceSchema() *JSONSchema {
	return object("Provider call resilience", map[string]*JSONSchema{
		"timeout": durationProp("Per-call timeout", 0),
		"retry": object("Transport retries within one attempt", map[string]*JSONSchema{
			"enabled":       {Type: "boolean"},
			"max_attempts":  intProp("Maximum retry attempts", 1, 3),
			"initial_delay": durationProp("First retry delay", domainconfig.Duration(0)),
			"multiplier":    numberProp("Backoff multiplier", 1, 2.0),
		}),
		"circuit_breaker": object("Circuit breaker", map[string]*JSONSchema{
			"enabled":   {Type: "boolean"},
			"threshold": intProp("Consecutive failures before opening", 1, 5),
			"timeout":   durationProp("How long the circuit stays open", 0),
		}),
		"bulkhead": object("Concurrent completion limit", map[string]*JSONSchema{
			"enabled":        {Type: "boolean"},
			"max_concurrent": intProp("Maximum in-flight completions", 1, 4),
		}),
		"rate_limit": object("Request rate limit", map[string]*JSONSchema{
			"enabled": {Type: "boolean"},
			"rate":    intProp("Requests per second", 1, 0),
			"burst":   intProp("Burst size", 1, 0),
		}),
	})
}

func object(description string, props map[string]*JSONSchema) *JSONSchema {
	return &JSONSchema{Type: "object", Description: description, Properties: props}
}

func stringProp(description string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: description}
}

func enumProp(description, def string, values ...string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: description, Enum: values, Default: def}
}

func intProp(description string, minimum float64, def int) *JSONSchema {
	s := &JSONSchema{Type: "integer", Description: description, Minimum: floatPtr(minimum)}
	if def != 0 {
		s.Default = def
	}
	return s
}

func numberProp(description string, minimum, def float64) *JSONSchema {
	s := &JSONSchema{Type: "number", Description: description, Minimum: floatPtr(minimum)}
	if def != 0 {
		s.Default = def
	}
	return s
}

func temperatureProp(description string, def float64) *JSONSchema {
	return withMax(numberProp(description, 0, def), 2)
}

func durationProp(description string, def domainconfig.Duration) *JSONSchema {
	s := &JSONSchema{Type: "string", Description: description, Format: "duration"}
	if def != 0 {
		s.Default = def.Duration().String()
	}
	return s
}

func withDefault(s *JSONSchema, def any) *JSONSchema {
	s.Default = def
	return s
}

func withMax(s *JSONSchema, maximum float64) *JSONSchema {
	s.Maximum = floatPtr(maximum)
	return s
}

func floatPtr(f float64) *float64 {
	return &f
}

// SchemaJSON returns the JSON Schema as a JSON string.
func SchemaJSON() (string, error) {
	data, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
