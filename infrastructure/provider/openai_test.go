package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/maker-go/domain/oracle"
)

const sampleReply = "move = [1, 0, 2]\nnext_state = [[3, 2], [], [1]]"

func TestNewOpenAIProvider(t *testing.T) {
	t.Parallel()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4.1"})
	if p.baseURL != "https://api.openai.com" {
		t.Errorf("baseURL = %s, want https://api.openai.com", p.baseURL)
	}
	if p.client.Timeout != defaultTimeout {
		t.Errorf("Timeout = %v, want %v", p.client.Timeout, defaultTimeout)
	}
	if p.Name() != "openai" {
		t.Errorf("Name() = %s, want openai", p.Name())
	}
}

func TestOpenAIProvider_Complete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Path = %s, want /v1/chat/completions", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization header not set correctly")
		}

		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if temp, ok := raw["temperature"]; !ok || temp.(float64) != 0 {
			t.Errorf("temperature = %v, want explicit 0", raw["temperature"])
		}
		if raw["max_tokens"].(float64) != 750 {
			t.Errorf("max_tokens = %v, want 750", raw["max_tokens"])
		}
		messages := raw["messages"].([]any)
		if len(messages) != 2 {
			t.Errorf("messages = %d, want system and user", len(messages))
		} else if messages[0].(map[string]any)["role"] != "system" {
			t.Errorf("first message should be the system prompt")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "gpt-4.1",
			"choices": [{"message": {"role": "assistant", "content": "move = [1, 0, 2]\nnext_state = [[3, 2], [], [1]]"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4.1"})
	resp, err := p.Complete(context.Background(), oracle.Request{
		System:      "system",
		Prompt:      "user",
		Temperature: 0,
		MaxTokens:   750,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != sampleReply {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d, want 15", resp.Usage.TotalTokens)
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down"}}`},
		{name: "server error", status: http.StatusInternalServerError, body: "oops"},
		{name: "api error body", status: http.StatusOK, body: `{"error":{"type":"invalid_request_error","message":"bad"}}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: oracle.ErrEmptyCompletion},
		{name: "invalid json", status: http.StatusOK, body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
			_, err := p.Complete(context.Background(), oracle.Request{Prompt: "p"})
			if !oracle.IsProviderError(err) {
				t.Fatalf("Complete() error = %v, want ProviderError", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Complete() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatusError_Temporary(t *testing.T) {
	t.Parallel()

	if !(&StatusError{StatusCode: 429}).Temporary() {
		t.Error("429 should be temporary")
	}
	if !(&StatusError{StatusCode: 503}).Temporary() {
		t.Error("503 should be temporary")
	}
	if (&StatusError{StatusCode: 401}).Temporary() {
		t.Error("401 should not be temporary")
	}
}

func TestOpenAIProvider_ContextCancelled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
	_, err := p.Complete(ctx, oracle.Request{Prompt: "p"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Complete() error = %v, want context.Canceled", err)
	}
}
