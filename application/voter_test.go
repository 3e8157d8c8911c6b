package application

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/maker-go/infrastructure/provider"
)

func newTestVoter(t *testing.T, p *provider.ScriptedProvider, voting VotingConfig) *Voter {
	t.Helper()
	return NewVoter(newTestResolver(t, p, testSampling(), nil), voting)
}

func TestVoter_GreedyEarlyExit(t *testing.T) {
	t.Parallel()

	p := provider.NewScriptedProvider(provider.Texts(replyRight, replyLeft)...)
	v := newTestVoter(t, p, VotingConfig{K: 1, MaxRounds: 100})

	out, err := v.Vote(context.Background(), startQuery())
	if err != nil {
		t.Fatalf("Vote() error = %v", err)
	}
	if !out.Decided || out.Rounds != 1 || out.Candidate.Key() != "[1,0,2]" {
		t.Errorf("Vote() = %+v, want greedy winner after one round", out)
	}
	if p.Calls() != 1 {
		t.Errorf("Calls() = %d, want 1", p.Calls())
	}
	if temp := p.Requests()[0].Temperature; temp != 0 {
		t.Errorf("first sample temperature = %v, want 0", temp)
	}
}

func TestVoter_Margin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		k          int
		replies    []string
		wantKey    string
		wantRounds int
	}{
		{
			name:       "leader needs k over runner-up",
			k:          2,
			replies:    []string{replyRight, replyLeft, replyRight, replyRight},
			wantKey:    "[1,0,2]",
			wantRounds: 4,
		},
		{
			name:       "late comeback",
			k:          2,
			replies:    []string{replyRight, replyLeft, replyLeft, replyLeft},
			wantKey:    "[1,0,1]",
			wantRounds: 4,
		},
		{
			name:       "unanimous k=3",
			k:          3,
			replies:    []string{replyLeft, replyLeft, replyLeft},
			wantKey:    "[1,0,1]",
			wantRounds: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := provider.NewScriptedProvider(provider.Texts(tt.replies...)...)
			v := newTestVoter(t, p, VotingConfig{K: tt.k, MaxRounds: 100})

			out, err := v.Vote(context.Background(), startQuery())
			if err != nil {
				t.Fatalf("Vote() error = %v", err)
			}
			if !out.Decided || out.TimedOut {
				t.Errorf("Vote() should decide without timeout: %+v", out)
			}
			if out.Candidate.Key() != tt.wantKey || out.Rounds != tt.wantRounds {
				t.Errorf("Vote() = %s after %d rounds, want %s after %d",
					out.Candidate.Key(), out.Rounds, tt.wantKey, tt.wantRounds)
			}
			for _, req := range p.Requests()[1:] {
				if req.Temperature != 0.1 {
					t.Errorf("diversity sample temperature = %v, want 0.1", req.Temperature)
				}
			}
		})
	}
}

func TestVoter_TimeoutFallsBackToPlurality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		replies []string
		rounds  int
		wantKey string
	}{
		{
			name:    "plurality",
			replies: []string{replyLeft, replyRight, replyRight},
			rounds:  3,
			wantKey: "[1,0,2]",
		},
		{
			name:    "tie goes to first seen",
			replies: []string{replyLeft, replyRight},
			rounds:  2,
			wantKey: "[1,0,1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := provider.NewScriptedProvider(provider.Texts(tt.replies...)...)
			v := newTestVoter(t, p, VotingConfig{K: 3, MaxRounds: tt.rounds})

			out, err := v.Vote(context.Background(), startQuery())
			if err != nil {
				t.Fatalf("Vote() error = %v", err)
			}
			if !out.TimedOut || out.Decided {
				t.Errorf("Vote() should time out: %+v", out)
			}
			if out.Candidate.Key() != tt.wantKey || out.Rounds != tt.rounds {
				t.Errorf("Vote() = %s after %d rounds, want %s", out.Candidate.Key(), out.Rounds, tt.wantKey)
			}
			if p.Calls() != tt.rounds {
				t.Errorf("Calls() = %d, want %d", p.Calls(), tt.rounds)
			}
		})
	}
}

func TestVoter_VotesSnapshot(t *testing.T) {
	t.Parallel()

	p := provider.NewScriptedProvider(provider.Texts(replyRight, replyLeft, replyRight, replyRight)...)
	v := newTestVoter(t, p, VotingConfig{K: 2, MaxRounds: 10})

	out, err := v.Vote(context.Background(), startQuery())
	if err != nil {
		t.Fatalf("Vote() error = %v", err)
	}
	if len(out.Votes) != 2 {
		t.Fatalf("Votes = %+v, want two keys", out.Votes)
	}
	if out.Votes[0].Key != "[1,0,2]" || out.Votes[0].Count != 3 || out.Votes[1].Count != 1 {
		t.Errorf("Votes = %+v", out.Votes)
	}
}

func TestVoter_PropagatesFatalErrors(t *testing.T) {
	t.Parallel()

	s := testSampling()
	s.RedFlagging = false
	p := provider.NewScriptedProvider(provider.Texts(replyRight, replyMalformed)...)
	v := NewVoter(newTestResolver(t, p, s, nil), VotingConfig{K: 2, MaxRounds: 10})

	_, err := v.Vote(context.Background(), startQuery())
	if err == nil {
		t.Fatal("Vote() should fail on a malformed diversity sample")
	}
}

func TestVoter_Concurrent(t *testing.T) {
	t.Parallel()

	p := provider.NewScriptedProvider(provider.Texts(replyRight)...).Loop()
	v := newTestVoter(t, p, VotingConfig{K: 3, MaxRounds: 100, Concurrency: 4})

	out, err := v.Vote(context.Background(), startQuery())
	if err != nil {
		t.Fatalf("Vote() error = %v", err)
	}
	if !out.Decided || out.Candidate.Key() != "[1,0,2]" {
		t.Errorf("Vote() = %+v", out)
	}
	if out.Rounds != 3 {
		t.Errorf("Rounds = %d, want 3", out.Rounds)
	}
	if p.Calls() > 5 {
		t.Errorf("Calls() = %d, want at most one batch after the greedy sample", p.Calls())
	}
}

func TestVoter_ConcurrentTimeout(t *testing.T) {
	t.Parallel()

	p := provider.NewScriptedProvider(provider.Texts(replyRight, replyLeft)...).Loop()
	v := newTestVoter(t, p, VotingConfig{K: 50, MaxRounds: 7, Concurrency: 3})

	out, err := v.Vote(context.Background(), startQuery())
	if err != nil {
		t.Fatalf("Vote() error = %v", err)
	}
	if !out.TimedOut || out.Rounds != 7 {
		t.Errorf("Vote() = %+v, want timeout after 7 rounds", out)
	}
	if p.Calls() != 7 {
		t.Errorf("Calls() = %d, want 7", p.Calls())
	}
}

func TestVoter_ConcurrentCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := provider.NewScriptedProvider(provider.Texts(replyRight)...).Loop()
	v := newTestVoter(t, p, VotingConfig{K: 3, MaxRounds: 10, Concurrency: 2})

	if _, err := v.Vote(ctx, startQuery()); !errors.Is(err, context.Canceled) {
		t.Errorf("Vote() error = %v, want context.Canceled", err)
	}
}
