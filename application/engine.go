// Package application provides the consensus planning engine: rejection
// sampling of single steps, first-to-ahead-by-k voting, and sequential
// planning of a whole solution.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/maker-go/domain/cache"
	domainconfig "github.com/felixgeelhaar/maker-go/domain/config"
	"github.com/felixgeelhaar/maker-go/domain/hanoi"
	"github.com/felixgeelhaar/maker-go/domain/oracle"
	"github.com/felixgeelhaar/maker-go/domain/prompt"
	"github.com/felixgeelhaar/maker-go/domain/run"
	domaintelemetry "github.com/felixgeelhaar/maker-go/domain/telemetry"
	"github.com/felixgeelhaar/maker-go/infrastructure/logging"
	"github.com/felixgeelhaar/maker-go/infrastructure/telemetry"
)

// Engine plans solutions one step at a time by voting over oracle samples.
type Engine struct {
	provider oracle.Provider
	resolver *Resolver
	voter    *Voter
	sampling SamplingConfig
	voting   VotingConfig
	runs     run.Store
	metrics  telemetry.Metrics
	tracer   domaintelemetry.Tracer
	observer Observer
}

// EngineConfig contains configuration for the engine.
type EngineConfig struct {
	Provider oracle.Provider
	Sampling SamplingConfig
	Voting   VotingConfig
	Prompts  prompt.Set
	Runs     run.Store
	Cache    cache.Cache
	CacheTTL time.Duration
	Metrics  telemetry.Metrics
	Tracer   domaintelemetry.Tracer
	Observer Observer
}

// NewEngine creates a new engine with the given configuration.
func NewEngine(config EngineConfig) (*Engine, error) {
	if config.Provider == nil {
		return nil, ErrProviderRequired
	}

	defaults := DefaultSamplingConfig()
	if config.Sampling.Model == "" {
		config.Sampling.Model = defaults.Model
	}
	if config.Sampling.MaxTokens == 0 {
		config.Sampling.MaxTokens = defaults.MaxTokens
	}
	if config.Sampling.MaxAttempts == 0 {
		config.Sampling.MaxAttempts = defaults.MaxAttempts
	}
	if config.Voting.K == 0 {
		config.Voting.K = DefaultVotingConfig().K
	}
	if config.Voting.MaxRounds == 0 {
		config.Voting.MaxRounds = DefaultVotingConfig().MaxRounds
	}
	if config.Metrics == nil {
		config.Metrics = telemetry.NoopMetricsProvider{}
	}
	if config.Tracer == nil {
		config.Tracer = domaintelemetry.NoopTracer{}
	}
	if config.Observer == nil {
		config.Observer = NoopObserver()
	}

	resolver, err := NewResolver(ResolverConfig{
		Provider: config.Provider,
		Prompts:  config.Prompts.Merge(prompt.Default()),
		Sampling: config.Sampling,
		Cache:    config.Cache,
		CacheTTL: config.CacheTTL,
		Metrics:  config.Metrics,
		Tracer:   config.Tracer,
	})
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}

	return &Engine{
		provider: config.Provider,
		resolver: resolver,
		voter:    NewVoter(resolver, config.Voting),
		sampling: config.Sampling,
		voting:   config.Voting,
		runs:     config.Runs,
		metrics:  config.Metrics,
		tracer:   config.Tracer,
		observer: config.Observer,
	}, nil
}

// Sampling returns the effective sampling settings.
func (e *Engine) Sampling() SamplingConfig {
	return e.sampling
}

// Voting returns the effective voting settings.
func (e *Engine) Voting() VotingConfig {
	return e.voting
}

// Plan builds exactly stepCount actions from start, voting on each step with
// threshold k. Any step error aborts planning and no partial plan is
// returned.
func (e *Engine) Plan(ctx context.Context, start hanoi.Configuration, stepCount, k int) (hanoi.Plan, error) {
	return e.plan(ctx, nil, start, stepCount, k)
}

func (e *Engine) plan(ctx context.Context, rec *run.Record, start hanoi.Configuration, stepCount, k int) (hanoi.Plan, error) {
	if stepCount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStepCount, stepCount)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, k)
	}

	var runID string
	if rec != nil {
		runID = rec.ID
	}
	began := time.Now()
	diskCount := start.DiskCount()
	state := start.Clone()
	plan := make(hanoi.Plan, 0, stepCount)
	var previous *hanoi.Action

	e.observer.OnRunStart(RunStart{RunID: runID, Start: start.Clone(), Steps: stepCount, K: k})

	fail := func(step int, err error) (hanoi.Plan, error) {
		err = &StepError{Step: step, Err: err}
		e.observer.OnRunEnd(RunEnd{RunID: runID, Final: state, Steps: step, Err: err, Elapsed: time.Since(began)})
		return nil, err
	}

	for i := 0; i < stepCount; i++ {
		if err := ctx.Err(); err != nil {
			return fail(i, err)
		}

		stepStart := time.Now()
		stepCtx, span := e.tracer.StartSpan(ctx, domaintelemetry.SpanStep,
			domaintelemetry.Int("step", i),
			domaintelemetry.String("state", state.String()),
		)

		out, err := e.voter.decide(stepCtx, Query{Current: state, Previous: previous, DiskCount: diskCount}, k)
		if err != nil {
			span.Finish(err)
			logging.Error().
				Add(logging.RunID(runID)).
				Add(logging.Step(i)).
				Add(logging.ErrorField(err)).
				Msg("step failed")
			return fail(i, err)
		}

		elapsed := time.Since(stepStart)
		span.SetAttributes(
			domaintelemetry.String("action", out.Candidate.Key()),
			domaintelemetry.Int("rounds", out.Rounds),
			domaintelemetry.Bool("timed_out", out.TimedOut),
		)
		span.Finish(nil)
		e.metrics.RecordStep(ctx, out.Rounds, out.TimedOut, elapsed)

		action := out.Candidate.Action
		plan = append(plan, action)
		state = out.Candidate.Next.Clone()
		previous = &action

		if rec != nil {
			if err := e.persistStep(ctx, rec, i, out); err != nil {
				return fail(i, err)
			}
		}

		logging.Debug().
			Add(logging.RunID(runID)).
			Add(logging.Step(i)).
			Add(logging.Action(action)).
			Add(logging.Round(out.Rounds)).
			Add(logging.Cached(out.Attempts.Cached)).
			Msg("step decided")

		e.observer.OnStep(StepEvent{
			RunID:   runID,
			Index:   i,
			Action:  action,
			State:   state,
			Outcome: out,
			Elapsed: elapsed,
		})
	}

	e.observer.OnRunEnd(RunEnd{RunID: runID, Final: state, Steps: stepCount, Elapsed: time.Since(began)})
	return plan, nil
}

func (e *Engine) persistStep(ctx context.Context, rec *run.Record, i int, out Outcome) error {
	step := run.StepSummary{
		Index:    i,
		Action:   out.Candidate.Action,
		Rounds:   out.Rounds,
		Votes:    out.Votes,
		TimedOut: out.TimedOut,
	}
	if err := rec.AddStep(step); err != nil {
		return err
	}
	if e.runs == nil {
		return nil
	}
	return e.runs.AppendStep(ctx, rec.ID, step)
}

// Verify re-simulates plan from the start configuration for diskCount disks.
func (e *Engine) Verify(plan hanoi.Plan, diskCount int) hanoi.Report {
	report := hanoi.Verify(plan, diskCount)
	if report.Valid {
		logging.Info().
			Add(logging.Disks(diskCount)).
			Add(logging.Int("moves", len(plan))).
			Msg("solution verified")
	} else {
		logging.Warn().
			Add(logging.Disks(diskCount)).
			Add(logging.Int("moves", len(plan))).
			Add(logging.Reason(report.Reason)).
			Add(logging.Configuration(report.Actual)).
			Msg("solution contains errors")
	}
	return report
}

// Solve plans and verifies the optimal-length solution for diskCount disks
// with the configured K. The returned record is persisted when a run store
// is configured and is returned even when planning fails.
func (e *Engine) Solve(ctx context.Context, diskCount int) (*run.Record, error) {
	if diskCount < 1 || diskCount > domainconfig.MaxDisks {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDiskCount, diskCount)
	}

	rec := run.NewRecord(uuid.NewString(), diskCount, e.voting.K, e.sampling.Model)
	steps := hanoi.OptimalLength(diskCount)

	ctx, span := e.tracer.StartSpan(ctx, domaintelemetry.SpanSolve,
		domaintelemetry.String("run.id", rec.ID),
		domaintelemetry.Int("disks", diskCount),
		domaintelemetry.Int("steps", steps),
		domaintelemetry.Int("k", e.voting.K),
	)

	logging.Info().
		Add(logging.RunID(rec.ID)).
		Add(logging.Disks(diskCount)).
		Add(logging.Int("steps", steps)).
		Add(logging.Margin(e.voting.K)).
		Add(logging.Model(e.sampling.Model)).
		Add(logging.Provider(e.provider.Name())).
		Msg("run started")

	e.metrics.RunStarted(ctx)
	if e.runs != nil {
		if err := e.runs.Save(ctx, rec); err != nil {
			e.metrics.RunFinished(ctx, diskCount, string(run.StatusFailed), 0)
			span.Finish(err)
			return nil, fmt.Errorf("save run: %w", err)
		}
	}

	plan, err := e.plan(ctx, rec, hanoi.Start(diskCount), steps, e.voting.K)
	if err != nil {
		rec.Fail(err)
		e.finish(ctx, rec)
		span.Finish(err)
		return rec, err
	}

	_, verifySpan := e.tracer.StartSpan(ctx, domaintelemetry.SpanVerify,
		domaintelemetry.Int("moves", len(plan)),
	)
	report := e.Verify(plan, diskCount)
	verifySpan.SetAttributes(domaintelemetry.Bool("valid", report.Valid))
	verifySpan.Finish(nil)

	rec.Complete(report)
	e.finish(ctx, rec)
	span.SetAttributes(domaintelemetry.Bool("verified", report.Valid))
	span.Finish(nil)
	return rec, nil
}

// finish persists the final record state. The write survives cancellation
// of ctx so that aborted runs are recorded as failed.
func (e *Engine) finish(ctx context.Context, rec *run.Record) {
	ctx = context.WithoutCancel(ctx)
	e.metrics.RunFinished(ctx, rec.DiskCount, string(rec.Status), rec.Duration())

	event := logging.Info()
	if rec.Status == run.StatusFailed {
		event = logging.Error().Add(logging.Reason(rec.Error))
	}
	event.
		Add(logging.RunID(rec.ID)).
		Add(logging.Int("steps", len(rec.Steps))).
		Add(logging.Str("status", string(rec.Status))).
		Add(logging.Duration(rec.Duration())).
		Msg("run finished")

	if e.runs == nil {
		return
	}
	if err := e.runs.Update(ctx, rec); err != nil {
		logging.Error().
			Add(logging.RunID(rec.ID)).
			Add(logging.ErrorField(err)).
			Msg("failed to persist run")
	}
}
