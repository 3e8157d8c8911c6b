package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/maker-go/domain/oracle"
)

// OpenAIProvider implements oracle.Provider for the OpenAI chat completions API.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey  string        // Required: OpenAI API key
	BaseURL string        // Default: https://api.openai.com
	Model   string        // Used when the request names no model
	Timeout time.Duration // Default: 120s
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(config OpenAIConfig) *OpenAIProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	return &OpenAIProvider{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		model:   config.Model,
		client:  newHTTPClient(config.Timeout),
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Temperature is sent even when zero: the API default is 1.
type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Complete implements oracle.Provider.
func (p *OpenAIProvider) Complete(ctx context.Context, req oracle.Request) (oracle.Response, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	messages := make([]openAIMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})

	var resp openAIChatResponse
	err := postJSON(ctx, p.client, p.Name(), p.baseURL+"/v1/chat/completions",
		map[string]string{"Authorization": "Bearer " + p.apiKey},
		openAIChatRequest{
			Model:       model,
			Messages:    messages,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		}, &resp)
	if err != nil {
		return oracle.Response{}, oracle.WrapError(p.Name(), err)
	}

	if resp.Error != nil {
		return oracle.Response{}, oracle.WrapError(p.Name(),
			fmt.Errorf("%s: %s (%s)", resp.Error.Type, resp.Error.Message, resp.Error.Code))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return oracle.Response{}, oracle.WrapError(p.Name(), oracle.ErrEmptyCompletion)
	}

	return oracle.Response{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: oracle.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
