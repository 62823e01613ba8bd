// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/newsdesk/internal/pipeline"
	"github.com/pdiddy/newsdesk/internal/team"
	"github.com/pdiddy/newsdesk/pkg/types"
)

func TestMain(m *testing.M) {
	// genai links opencensus, whose view worker starts in init and never exits.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

var fastRetry = types.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

const writingMarker = "Research provided by your colleague"

type stubSearch struct {
	results []types.SearchResult
	err     error
}

func (s stubSearch) Search(context.Context, string, int) ([]types.SearchResult, error) {
	return s.results, s.err
}

// stageCompleter answers research and writing prompts separately. With
// block set every call waits for its context to end.
type stageCompleter struct {
	research    string
	writing     string
	researchErr error
	writingErr  error
	block       bool

	once    sync.Once
	started chan struct{}
	stopped chan struct{}
}

func (c *stageCompleter) Complete(ctx context.Context, prompt string, _ types.RoleConfig) (string, error) {
	if c.block {
		c.once.Do(func() { close(c.started) })
		<-ctx.Done()
		if c.stopped != nil {
			close(c.stopped)
		}
		return "", types.NewProviderError("fake", "complete", types.KindTimeout, 0, ctx.Err())
	}
	if strings.Contains(prompt, writingMarker) {
		return c.writing, c.writingErr
	}
	return c.research, c.researchErr
}

func providerErr(kind types.ErrorKind) error {
	return types.NewProviderError("fake", "complete", kind, 0, errors.New("secret provider detail"))
}

func newServer(t *testing.T, r Runner, cfg types.ServerConfig) *Server {
	t.Helper()
	return New(r, team.NewStore(team.Default(), "", zap.NewNop()), cfg, zap.NewNop())
}

func orchestrated(c *stageCompleter) *pipeline.Orchestrator {
	return pipeline.New(stubSearch{results: []types.SearchResult{{Title: "T", URL: "https://example.com/a"}}}, c, fastRetry, zap.NewNop())
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

// topicRunner records topics and finishes every run with a fixed output.
type topicRunner struct {
	mu     sync.Mutex
	topics []types.Topic
}

func (r *topicRunner) Run(_ context.Context, topic types.Topic, _ *team.Team, _ ...pipeline.RunOption) (*types.PipelineRun, error) {
	r.mu.Lock()
	r.topics = append(r.topics, topic)
	r.mu.Unlock()
	return &types.PipelineRun{ID: "run-1", Topic: topic, State: types.StateFinished, Writing: types.StageResult{Text: "post", Succeeded: true}}, nil
}

type runnerFunc func(context.Context, types.Topic, *team.Team, ...pipeline.RunOption) (*types.PipelineRun, error)

func (f runnerFunc) Run(ctx context.Context, topic types.Topic, tm *team.Team, opts ...pipeline.RunOption) (*types.PipelineRun, error) {
	return f(ctx, topic, tm, opts...)
}

func TestAgentsFinished(t *testing.T) {
	const post = "AI News Sep, 2024\n\n* **Item** ... [link](https://x)\n"
	s := newServer(t, orchestrated(&stageCompleter{research: "summary", writing: post}), types.ServerConfig{})

	rec, env := get(t, s.Handler(), "/api/agents?topic=robotics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Run-Id"))
	assert.True(t, env.Succeeded())
	assert.Equal(t, post, env.Output)
	assert.JSONEq(t, `{"output":`+mustJSON(t, post)+`}`, rec.Body.String())
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestAgentsDefaultTopic(t *testing.T) {
	for _, target := range []string{"/api/agents", "/api/agents?topic=", "/api/agents?topic=%20%20%09"} {
		t.Run(target, func(t *testing.T) {
			r := &topicRunner{}
			rec, _ := get(t, newServer(t, r, types.ServerConfig{}).Handler(), target)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, []types.Topic{"llm and ai"}, r.topics)
		})
	}

	r := &topicRunner{}
	get(t, newServer(t, r, types.ServerConfig{}).Handler(), "/api/agents?topic=%20quantum%20")
	assert.Equal(t, []types.Topic{"quantum"}, r.topics)
}

func TestAgentsStageFailures(t *testing.T) {
	tests := []struct {
		name      string
		completer *stageCompleter
		stage     types.Stage
	}{
		{"research auth", &stageCompleter{researchErr: providerErr(types.KindAuth)}, types.StageResearch},
		{"research rejected", &stageCompleter{researchErr: providerErr(types.KindContentRejected)}, types.StageResearch},
		{"writing exhausted", &stageCompleter{research: "summary", writingErr: providerErr(types.KindUnavailable)}, types.StageWriting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t, orchestrated(tt.completer), types.ServerConfig{})
			rec, env := get(t, s.Handler(), "/api/agents?topic=x")

			assert.Equal(t, http.StatusBadGateway, rec.Code)
			assert.Equal(t, StatusFailed, env.Status)
			assert.Equal(t, tt.stage, env.Stage)
			assert.Empty(t, env.Output)
			assert.Contains(t, env.Message, string(tt.stage))
			assert.NotContains(t, rec.Body.String(), "secret provider detail")
		})
	}
}

func TestAgentsRequestTimeout(t *testing.T) {
	c := &stageCompleter{block: true, started: make(chan struct{})}
	s := newServer(t, orchestrated(c), types.ServerConfig{RequestTimeout: 20 * time.Millisecond})

	rec, env := get(t, s.Handler(), "/api/agents?topic=x")

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, StatusFailed, env.Status)
	assert.Equal(t, "request cancelled", env.Message)
}

func TestAgentsInternalError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := runnerFunc(func(_ context.Context, topic types.Topic, _ *team.Team, _ ...pipeline.RunOption) (*types.PipelineRun, error) {
		run := &types.PipelineRun{ID: "run-2", Topic: topic, State: types.StateResearchRunning}
		return run, &pipeline.InternalError{Op: "advance", Err: errors.New("broken invariant")}
	})
	s := New(r, team.NewStore(team.Default(), "", zap.NewNop()), types.ServerConfig{}, zap.New(core))

	rec, env := get(t, s.Handler(), "/api/agents?topic=x")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, Envelope{Status: StatusError, Message: "internal error"}, env)
	assert.NotContains(t, rec.Body.String(), "broken invariant")
	require.Equal(t, 1, logs.FilterMessage("pipeline internal error").Len())
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	r := runnerFunc(func(context.Context, types.Topic, *team.Team, ...pipeline.RunOption) (*types.PipelineRun, error) {
		panic("boom")
	})
	rec, env := get(t, newServer(t, r, types.ServerConfig{}).Handler(), "/api/agents")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, StatusError, env.Status)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(t, &topicRunner{}, types.ServerConfig{}).Handler().
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/agents", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(t, &topicRunner{}, types.ServerConfig{}).Handler().
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","team":"AI News Blogging Team"}`, rec.Body.String())
}

func TestRequestsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := New(&topicRunner{}, team.NewStore(team.Default(), "", zap.NewNop()), types.ServerConfig{}, zap.New(core))
	get(t, s.Handler(), "/api/agents?topic=x")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/agents", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestEnvelopeFor(t *testing.T) {
	failed := func(state types.RunState, info *types.ErrorInfo) *types.PipelineRun {
		run := &types.PipelineRun{State: state}
		run.Research.Error = info
		return run
	}
	tests := []struct {
		name string
		run  *types.PipelineRun
		err  error
		code int
		want Envelope
	}{
		{"finished", &types.PipelineRun{State: types.StateFinished, Writing: types.StageResult{Text: "out"}}, nil, 200, Envelope{Output: "out"}},
		{"stage failed", failed(types.StateResearchFailed, &types.ErrorInfo{Stage: types.StageResearch, Message: "m"}), nil, 502,
			Envelope{Status: StatusFailed, Message: "m", Stage: types.StageResearch}},
		{"cancelled", failed(types.StateCancelled, &types.ErrorInfo{Stage: types.StageResearch, Message: "request cancelled"}), nil, 504,
			Envelope{Status: StatusFailed, Message: "request cancelled", Stage: types.StageResearch}},
		{"failed without info", &types.PipelineRun{State: types.StateWritingFailed}, nil, 500, Envelope{Status: StatusError, Message: internalMessage}},
		{"not terminal", &types.PipelineRun{State: types.StateWritingRunning}, nil, 500, Envelope{Status: StatusError, Message: internalMessage}},
		{"error", &types.PipelineRun{State: types.StateFinished}, errors.New("x"), 500, Envelope{Status: StatusError, Message: internalMessage}},
		{"nil run", nil, nil, 500, Envelope{Status: StatusError, Message: internalMessage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := envelopeFor(tt.run, tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.want, env)
		})
	}
}

func TestOriginChecker(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/agents/stream", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.Nil(t, originChecker(nil))

	wildcard := originChecker([]string{"*"})
	assert.True(t, wildcard(req("https://elsewhere.example")))

	listed := originChecker([]string{"https://app.example"})
	assert.True(t, listed(req("https://app.example")))
	assert.True(t, listed(req("")))
	assert.False(t, listed(req("https://evil.example")))
}
