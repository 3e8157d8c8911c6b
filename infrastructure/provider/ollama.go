package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/felixgeelhaar/maker-go/domain/oracle"
)

// OllamaProvider implements oracle.Provider for a local Ollama server.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

// OllamaConfig configures the Ollama provider.
type OllamaConfig struct {
	BaseURL string        // Default: http://localhost:11434
	Model   string        // e.g. "llama3.2", "qwen2.5"
	Timeout time.Duration // Default: 120s
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(config OllamaConfig) *OllamaProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	return &OllamaProvider{
		baseURL: baseURL,
		model:   config.Model,
		client:  newHTTPClient(config.Timeout),
	}
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}

// Complete implements oracle.Provider.
func (p *OllamaProvider) Complete(ctx context.Context, req oracle.Request) (oracle.Response, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	messages := make([]ollamaMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: req.Prompt})

	var resp ollamaChatResponse
	err := postJSON(ctx, p.client, p.Name(), p.baseURL+"/api/chat", nil,
		ollamaChatRequest{
			Model:    model,
			Messages: messages,
			Options: ollamaOptions{
				Temperature: req.Temperature,
				NumPredict:  req.MaxTokens,
			},
		}, &resp)
	if err != nil {
		return oracle.Response{}, oracle.WrapError(p.Name(), err)
	}
	if resp.Message.Content == "" {
		return oracle.Response{}, oracle.WrapError(p.Name(), oracle.ErrEmptyCompletion)
	}

	return oracle.Response{
		Text:  resp.Message.Content,
		Model: resp.Model,
		Usage: oracle.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}
