package provider

import (
	"context"
	"errors"
	"sync"

	"github.com/felixgeelhaar/maker-go/domain/oracle"
)

// ErrScriptExhausted is returned once every scripted reply has been used.
var ErrScriptExhausted = errors.New("script exhausted")

// Reply is one scripted provider outcome. A non-nil Err is returned as a
// provider error instead of Text.
type Reply struct {
	Text string
	Err  error
}

// Texts turns reply texts into Replies.
func Texts(texts ...string) []Reply {
	replies := make([]Reply, len(texts))
	for i, t := range texts {
		replies[i] = Reply{Text: t}
	}
	return replies
}

// ScriptedProvider replays a fixed sequence of replies for deterministic
// tests and dry runs. It records every request it receives.
type ScriptedProvider struct {
	mu       sync.Mutex
	replies  []Reply
	index    int
	loop     bool
	requests []oracle.Request
}

// NewScriptedProvider creates a provider that returns replies in order.
func NewScriptedProvider(replies ...Reply) *ScriptedProvider {
	return &ScriptedProvider{replies: replies}
}

// Loop makes the provider start over after the last reply.
func (p *ScriptedProvider) Loop() *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loop = true
	return p
}

// Name returns the provider name.
func (p *ScriptedProvider) Name() string {
	return "scripted"
}

// Complete implements oracle.Provider.
func (p *ScriptedProvider) Complete(ctx context.Context, req oracle.Request) (oracle.Response, error) {
	if err := ctx.Err(); err != nil {
		return oracle.Response{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)

	if p.index >= len(p.replies) {
		if !p.loop || len(p.replies) == 0 {
			return oracle.Response{}, oracle.WrapError(p.Name(), ErrScriptExhausted)
		}
		p.index = 0
	}

	reply := p.replies[p.index]
	p.index++

	if reply.Err != nil {
		return oracle.Response{}, oracle.WrapError(p.Name(), reply.Err)
	}
	return oracle.Response{Text: reply.Text, Model: req.Model}, nil
}

// Requests returns a copy of every request received so far.
func (p *ScriptedProvider) Requests() []oracle.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]oracle.Request(nil), p.requests...)
}

// Calls returns the number of requests received.
func (p *ScriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// Reset rewinds the script and forgets recorded requests.
func (p *ScriptedProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index = 0
	p.requests = nil
}
