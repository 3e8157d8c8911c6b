package application

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/maker-go/domain/vote"
	"github.com/felixgeelhaar/maker-go/infrastructure/logging"
)

// VotingConfig configures first-to-ahead-by-k voting.
type VotingConfig struct {
	// K is the lead a key needs over every other key to win.
	K int

	// MaxRounds bounds the samples per step, the first included.
	MaxRounds int

	// Concurrency is the number of diversity samples drawn in parallel.
	// Values below 2 sample sequentially.
	Concurrency int

	// NoteAfter logs a note when a step needs more rounds than this.
	NoteAfter int
}

// DefaultVotingConfig returns the reference voting settings.
func DefaultVotingConfig() VotingConfig {
	return VotingConfig{
		K:           3,
		MaxRounds:   100,
		Concurrency: 1,
		NoteAfter:   10,
	}
}

// Outcome is the result of voting on one step.
type Outcome struct {
	Candidate vote.Candidate
	Rounds    int
	Votes     []vote.Entry
	Decided   bool
	TimedOut  bool
	Attempts  Attempts
}

// Voter runs first-to-ahead-by-k voting over samples drawn by a Resolver.
type Voter struct {
	resolver *Resolver
	config   VotingConfig
	sampling SamplingConfig
}

// NewVoter creates a voter.
func NewVoter(resolver *Resolver, config VotingConfig) *Voter {
	if config.MaxRounds <= 0 {
		config.MaxRounds = 1
	}
	return &Voter{
		resolver: resolver,
		config:   config,
		sampling: resolver.sampling,
	}
}

// Vote decides the step for q with the configured K.
func (v *Voter) Vote(ctx context.Context, q Query) (Outcome, error) {
	return v.decide(ctx, q, v.config.K)
}

// decide draws samples for q until one action key leads every other key by
// at least k votes. The first sample is drawn at the first temperature, the
// rest at the rest temperature. When MaxRounds is reached without a winner
// the plurality key wins and the outcome is marked TimedOut.
func (v *Voter) decide(ctx context.Context, q Query, k int) (Outcome, error) {
	tally := vote.NewTally()
	var spent Attempts

	first, used, err := v.resolver.Resolve(ctx, q, v.sampling.FirstTemperature)
	spent.add(used)
	if err != nil {
		return Outcome{Attempts: spent}, err
	}
	tally.Add(first)
	out := Outcome{Rounds: 1, Attempts: spent}
	out.Attempts.Cached = used.Cached

	if tally.Leads(first.Key(), k) {
		return v.decided(out, tally, first), nil
	}

	var winner *vote.Candidate
	if v.config.Concurrency > 1 {
		winner, err = v.sampleConcurrent(ctx, q, k, tally, &out)
	} else {
		winner, err = v.sampleSequential(ctx, q, k, tally, &out)
	}
	if err != nil {
		return out, err
	}

	if v.config.NoteAfter > 0 && out.Rounds > v.config.NoteAfter {
		logging.Info().
			Add(logging.Round(out.Rounds)).
			Msg("voting needed extra rounds")
	}

	if winner != nil {
		return v.decided(out, tally, *winner), nil
	}

	c, n, _ := tally.Plurality()
	out.Candidate = c
	out.Votes = tally.Snapshot()
	out.TimedOut = true
	logging.Warn().
		Add(logging.Round(out.Rounds)).
		Add(logging.Action(c.Action)).
		Add(logging.Votes(n, tally.Total())).
		Add(logging.Int("keys", tally.Len())).
		Msg("voting timeout, taking plurality")
	return out, nil
}

func (v *Voter) decided(out Outcome, tally *vote.Tally, c vote.Candidate) Outcome {
	out.Candidate = c
	out.Votes = tally.Snapshot()
	out.Decided = true
	return out
}

func (v *Voter) sampleSequential(ctx context.Context, q Query, k int, tally *vote.Tally, out *Outcome) (*vote.Candidate, error) {
	for out.Rounds < v.config.MaxRounds {
		c, used, err := v.resolver.Resolve(ctx, q, v.sampling.RestTemperature)
		out.Attempts.add(used)
		if err != nil {
			return nil, err
		}
		out.Rounds++
		tally.Add(c)
		if tally.Leads(c.Key(), k) {
			return &c, nil
		}
	}
	return nil, nil
}

// sampleConcurrent draws diversity samples in batches of up to Concurrency.
// Samples that arrive after a winner is found are discarded.
func (v *Voter) sampleConcurrent(ctx context.Context, q Query, k int, tally *vote.Tally, out *Outcome) (*vote.Candidate, error) {
	var (
		mu     sync.Mutex
		winner *vote.Candidate
	)

	for winner == nil && out.Rounds < v.config.MaxRounds {
		batch := min(v.config.Concurrency, v.config.MaxRounds-out.Rounds)

		batchCtx, cancel := context.WithCancel(ctx)
		g, gctx := errgroup.WithContext(batchCtx)
		for i := 0; i < batch; i++ {
			g.Go(func() error {
				c, used, err := v.resolver.Resolve(gctx, q, v.sampling.RestTemperature)

				mu.Lock()
				defer mu.Unlock()
				out.Attempts.add(used)
				if winner != nil {
					return nil
				}
				if err != nil {
					return err
				}
				out.Rounds++
				tally.Add(c)
				if tally.Leads(c.Key(), k) {
					winner = &c
					cancel()
				}
				return nil
			})
		}
		err := g.Wait()
		cancel()
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return winner, nil
}
