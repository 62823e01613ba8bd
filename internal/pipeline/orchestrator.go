// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the two-stage research-then-write pipeline. A run
// searches for news on a topic, asks the researcher model to summarize it,
// then asks the writer model to turn the summary into a Markdown post.
//
// Each external call is retried with exponential backoff on transient
// failures. A failed search does not fail the run: research proceeds
// without sources (degraded mode). Runs share no mutable state.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/newsdesk/internal/completion"
	"github.com/pdiddy/newsdesk/internal/httputil"
	"github.com/pdiddy/newsdesk/internal/team"
	"github.com/pdiddy/newsdesk/pkg/types"
)

// Searcher finds news results for a query.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error)
}

// Orchestrator executes pipeline runs. It holds only read-only clients and
// configuration and is safe for concurrent use.
type Orchestrator struct {
	search    Searcher
	completer completion.Completer
	retry     types.RetryConfig
	log       *zap.Logger
	now       func() time.Time
}

// New returns an Orchestrator. A nil log discards output.
func New(search Searcher, completer completion.Completer, retry types.RetryConfig, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		search:    search,
		completer: completer,
		retry:     retry,
		log:       log,
		now:       time.Now,
	}
}

// runner carries the per-run state. It is confined to the goroutine
// executing Run.
type runner struct {
	o        *Orchestrator
	run      *types.PipelineRun
	team     *team.Team
	log      *zap.Logger
	observer Observer
}

// Run executes the pipeline for topic using the team snapshot tm. An empty
// topic is replaced by the team's default topic.
//
// Provider failures do not produce an error: they are recorded in the
// returned run, whose State is then ResearchFailed, WritingFailed, or
// Cancelled. A non-nil error is always an *InternalError; the run is still
// returned with Status Failed.
func (o *Orchestrator) Run(ctx context.Context, topic types.Topic, tm *team.Team, opts ...RunOption) (run *types.PipelineRun, err error) {
	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}

	run = &types.PipelineRun{
		ID:        uuid.NewString(),
		State:     types.StateIdle,
		Status:    types.StatusRunning,
		StartedAt: o.now(),
	}
	r := &runner{
		o:        o,
		run:      run,
		team:     tm,
		log:      o.log.With(zap.String("run_id", run.ID)),
		observer: ro.observer,
	}

	defer func() {
		if p := recover(); p != nil {
			err = &InternalError{Op: "run", Err: fmt.Errorf("panic: %v", p)}
			r.log.Error("pipeline panicked", zap.Any("panic", p), zap.ByteString("stack", debug.Stack()))
		}
		if err != nil {
			run.Status = types.StatusFailed
		}
		run.FinishedAt = o.now()
		r.log.Info("pipeline run ended",
			zap.String("state", string(run.State)),
			zap.String("status", string(run.Status)),
			zap.Bool("degraded", run.Degraded),
			zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)),
			zap.Error(err))
	}()

	if tm == nil {
		return run, &InternalError{Op: "run", Err: errors.New("no team configured")}
	}
	t, terr := types.TopicOrDefault(topic.String(), tm.DefaultTopic)
	if terr != nil {
		return run, &InternalError{Op: "topic", Err: terr}
	}
	run.Topic = t
	r.log = r.log.With(zap.String("topic", t.String()))
	r.log.Info("pipeline run started", zap.String("team", tm.Name))

	return run, r.execute(ctx)
}

func (r *runner) execute(ctx context.Context) error {
	if err := r.advance(types.StateResearchRunning); err != nil {
		return err
	}
	summary, perr, err := r.research(ctx)
	if err != nil {
		return err
	}
	if perr != nil {
		return r.fail(ctx, types.StateResearchFailed, perr)
	}
	run := r.run
	run.Research = types.StageResult{Text: summary, Succeeded: true, Attempts: run.Research.Attempts}
	r.emit(Event{Type: EventSummary, Stage: types.StageResearch, Text: summary})
	if err := r.advance(types.StateResearchDone); err != nil {
		return err
	}

	if ctx.Err() != nil {
		return r.fail(ctx, types.StateCancelled, &PipelineError{Stage: types.StageWriting, Kind: types.KindCancelled, Err: ctx.Err()})
	}
	if err := r.advance(types.StateWritingRunning); err != nil {
		return err
	}
	post, perr, err := r.write(ctx, summary)
	if err != nil {
		return err
	}
	if perr != nil {
		return r.fail(ctx, types.StateWritingFailed, perr)
	}
	run.Writing = types.StageResult{Text: post, Succeeded: true, Attempts: run.Writing.Attempts}
	return r.advance(types.StateFinished)
}

// research gathers sources (best effort) and summarizes them. It returns
// a *PipelineError for a stage failure and a plain error for internal faults.
func (r *runner) research(ctx context.Context) (string, *PipelineError, error) {
	run := r.run
	query := r.team.SearchQuery(run.Topic)

	var sources []types.SearchResult
	attempts, err := withRetry(ctx, r.o.retry, func(ctx context.Context) error {
		var serr error
		sources, serr = r.o.search.Search(ctx, query, r.team.MaxResults)
		return serr
	}, r.onRetry(types.StageResearch, "search"))

	switch {
	case err != nil && ctx.Err() != nil:
		return "", &PipelineError{Stage: types.StageResearch, Kind: types.KindCancelled, Err: err}, nil
	case err != nil:
		run.Degraded = true
		sources = nil
		r.log.Warn("search failed, continuing without sources",
			zap.String("query", query), zap.Int("attempts", attempts),
			zap.String("kind", string(types.KindOf(err))), zap.Error(err))
		r.emit(Event{Type: EventDegraded, Stage: types.StageResearch, Kind: types.KindOf(err)})
	default:
		run.Sources = sources
		r.log.Debug("search succeeded", zap.String("query", query), zap.Int("results", len(sources)))
		r.emit(Event{Type: EventSources, Stage: types.StageResearch, Sources: sources})
	}

	prompt, err := renderResearchPrompt(r.team, run.Topic, sources)
	if err != nil {
		return "", nil, &InternalError{Op: "render research prompt", Err: err}
	}

	summary, n, err := r.complete(ctx, types.StageResearch, prompt, r.team.Researcher.LLM)
	run.Research.Attempts = n
	if err != nil {
		return "", stageError(types.StageResearch, n, err), nil
	}
	return summary, nil, nil
}

// write turns the research summary into the final post.
func (r *runner) write(ctx context.Context, summary string) (string, *PipelineError, error) {
	prompt, err := renderWritingPrompt(r.team, r.run.Topic, summary)
	if err != nil {
		return "", nil, &InternalError{Op: "render writing prompt", Err: err}
	}
	post, n, err := r.complete(ctx, types.StageWriting, prompt, r.team.Writer.LLM)
	r.run.Writing.Attempts = n
	if err != nil {
		return "", stageError(types.StageWriting, n, err), nil
	}
	return post, nil, nil
}

// complete calls the completer with retries. Blank output is a malformed
// response and is not retried.
func (r *runner) complete(ctx context.Context, stage types.Stage, prompt string, role types.RoleConfig) (string, int, error) {
	var text string
	n, err := withRetry(ctx, r.o.retry, func(ctx context.Context) error {
		out, cerr := r.o.completer.Complete(ctx, prompt, role)
		if cerr != nil {
			return cerr
		}
		if strings.TrimSpace(out) == "" {
			return httputil.MalformedError(string(role.Provider), "complete", fmt.Errorf("empty %s output", stage))
		}
		text = out
		return nil
	}, r.onRetry(stage, "complete"))
	return text, n, err
}

func stageError(stage types.Stage, attempts int, err error) *PipelineError {
	return &PipelineError{Stage: stage, Kind: types.KindOf(err), Attempts: attempts, Err: err}
}

// fail records perr on the failing stage and moves the run to a terminal
// state. A done context always wins: the run is Cancelled regardless of the
// error the provider reported.
func (r *runner) fail(ctx context.Context, to types.RunState, perr *PipelineError) error {
	if ctx.Err() != nil {
		to = types.StateCancelled
	}
	if to == types.StateCancelled {
		perr.Kind = types.KindCancelled
	}

	info := perr.Info()
	switch perr.Stage {
	case types.StageResearch:
		r.run.Research.Succeeded = false
		r.run.Research.Error = info
	case types.StageWriting:
		r.run.Writing.Succeeded = false
		r.run.Writing.Error = info
	}

	lvl := r.log.Warn
	if to == types.StateCancelled {
		lvl = r.log.Info
	}
	lvl("pipeline stage failed",
		zap.String("stage", string(perr.Stage)),
		zap.String("kind", string(perr.Kind)),
		zap.Int("attempts", perr.Attempts),
		zap.Error(perr.Err))

	return r.advance(to)
}

func (r *runner) advance(to types.RunState) error {
	if err := advance(r.run, to); err != nil {
		return err
	}
	r.log.Debug("state changed", zap.String("state", string(to)))
	r.emit(Event{Type: EventState, State: to})
	return nil
}

func (r *runner) onRetry(stage types.Stage, op string) retryFunc {
	return func(attempt int, err error, wait time.Duration) {
		kind := types.KindOf(err)
		r.log.Info("retrying after transient failure",
			zap.String("stage", string(stage)), zap.String("op", op),
			zap.Int("attempt", attempt), zap.Duration("wait", wait),
			zap.String("kind", string(kind)), zap.Error(err))
		r.emit(Event{Type: EventRetry, Stage: stage, Attempt: attempt, DelayMS: wait.Milliseconds(), Kind: kind})
	}
}

func (r *runner) emit(ev Event) {
	if r.observer == nil {
		return
	}
	ev.RunID = r.run.ID
	ev.Time = r.o.now()
	r.observer(ev)
}
