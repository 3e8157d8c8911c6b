package provider

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/maker-go/domain/config"
	"github.com/felixgeelhaar/maker-go/domain/oracle"
)

// ErrMissingAPIKey indicates a hosted provider was configured without a key.
var ErrMissingAPIKey = errors.New("api key is required")

// New builds the provider named by cfg.Provider.
func New(cfg config.OracleConfig) (oracle.Provider, error) {
	timeout := cfg.Timeout.Duration()

	switch cfg.Provider {
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
		}
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		}), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic: %w", ErrMissingAPIKey)
		}
		return NewAnthropicProvider(AnthropicConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		}), nil
	case "ollama":
		return NewOllamaProvider(OllamaConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		}), nil
	case "scripted":
		return NewScriptedProvider(Texts(cfg.Replies...)...).Loop(), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
