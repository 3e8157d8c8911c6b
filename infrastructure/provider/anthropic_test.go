package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/maker-go/domain/oracle"
)

func TestAnthropicProvider_Complete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Path = %s, want /v1/messages", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key header not set correctly")
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("anthropic-version header not set correctly")
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.System != "system" {
			t.Errorf("System = %q, want system", req.System)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("Messages = %+v", req.Messages)
		}
		if req.MaxTokens != 1024 {
			t.Errorf("MaxTokens = %d, want default 1024", req.MaxTokens)
		}

		_, _ = w.Write([]byte(`{
			"model": "claude",
			"content": [{"type": "text", "text": "move = [1, 0, 2]\n"}, {"type": "text", "text": "next_state = [[3, 2], [], [1]]"}],
			"usage": {"input_tokens": 7, "output_tokens": 3}
		}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", BaseURL: server.URL, Model: "claude"})
	if p.Name() != "anthropic" {
		t.Errorf("Name() = %s", p.Name())
	}

	resp, err := p.Complete(context.Background(), oracle.Request{System: "system", Prompt: "user"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != sampleReply {
		t.Errorf("Text = %q, want joined text blocks", resp.Text)
	}
	if resp.Usage.TotalTokens != 10 {
		t.Errorf("TotalTokens = %d, want 10", resp.Usage.TotalTokens)
	}
}

func TestAnthropicProvider_StatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error"}}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider(AnthropicConfig{APIKey: "bad", BaseURL: server.URL})
	_, err := p.Complete(context.Background(), oracle.Request{Prompt: "p"})
	if !oracle.IsProviderError(err) {
		t.Fatalf("Complete() error = %v, want ProviderError", err)
	}
}
