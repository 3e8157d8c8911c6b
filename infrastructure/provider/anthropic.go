package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/maker-go/domain/oracle"
)

const anthropicVersion = "2023-06-01"

// AnthropicProvider implements oracle.Provider for the Anthropic messages API.
type AnthropicProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey  string        // Required: Anthropic API key
	BaseURL string        // Default: https://api.anthropic.com
	Model   string        // Used when the request names no model
	Timeout time.Duration // Default: 120s
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(config AnthropicConfig) *AnthropicProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	return &AnthropicProvider{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		model:   config.Model,
		client:  newHTTPClient(config.Timeout),
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete implements oracle.Provider.
func (p *AnthropicProvider) Complete(ctx context.Context, req oracle.Request) (oracle.Response, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	var resp anthropicResponse
	err := postJSON(ctx, p.client, p.Name(), p.baseURL+"/v1/messages",
		map[string]string{
			"x-api-key":         p.apiKey,
			"anthropic-version": anthropicVersion,
		},
		anthropicRequest{
			Model:       model,
			MaxTokens:   maxTokens,
			Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
			System:      req.System,
			Temperature: req.Temperature,
		}, &resp)
	if err != nil {
		return oracle.Response{}, oracle.WrapError(p.Name(), err)
	}

	if resp.Error != nil {
		return oracle.Response{}, oracle.WrapError(p.Name(),
			fmt.Errorf("%s: %s", resp.Error.Type, resp.Error.Message))
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return oracle.Response{}, oracle.WrapError(p.Name(), oracle.ErrEmptyCompletion)
	}

	return oracle.Response{
		Text:  text.String(),
		Model: resp.Model,
		Usage: oracle.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}
