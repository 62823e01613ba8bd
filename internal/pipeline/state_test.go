// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/newsdesk/pkg/types"
)

func TestAdvance(t *testing.T) {
	run := &types.PipelineRun{State: types.StateIdle, Status: types.StatusRunning}

	require.NoError(t, advance(run, types.StateResearchRunning))
	assert.Equal(t, types.StatusRunning, run.Status)

	err := advance(run, types.StateFinished)
	var ie *InternalError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, err.Error(), "ResearchRunning -> Finished")
	assert.Equal(t, types.StateResearchRunning, run.State, "invalid transition leaves state unchanged")

	require.NoError(t, advance(run, types.StateResearchDone))
	require.NoError(t, advance(run, types.StateWritingRunning))
	require.NoError(t, advance(run, types.StateFinished))
	assert.Equal(t, types.StatusFinished, run.Status)

	assert.Error(t, advance(run, types.StateCancelled), "terminal states have no successors")
}

func TestTerminalStatesHaveNoSuccessors(t *testing.T) {
	for _, s := range []types.RunState{types.StateFinished, types.StateResearchFailed, types.StateWritingFailed, types.StateCancelled} {
		assert.True(t, s.Terminal())
		assert.Empty(t, transitions[s], s)
	}
	for from := range transitions {
		assert.False(t, from.Terminal(), from)
	}
}

func TestBackoff(t *testing.T) {
	cfg := types.RetryConfig{BaseDelay: 500 * time.Millisecond, MaxDelay: 8 * time.Second}
	want := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second}
	for i, w := range want {
		assert.Equal(t, w, backoff(cfg, i+1), "retry %d", i+1)
	}
	assert.Equal(t, time.Second, backoff(types.RetryConfig{BaseDelay: 2 * time.Second, MaxDelay: time.Second}, 1))
}

func TestWithRetry(t *testing.T) {
	transient := providerErr(types.KindUnavailable)

	t.Run("succeeds after transient", func(t *testing.T) {
		calls := 0
		var waits []time.Duration
		n, err := withRetry(context.Background(), fastRetry, func(context.Context) error {
			calls++
			if calls < 3 {
				return transient
			}
			return nil
		}, func(_ int, _ error, w time.Duration) { waits = append(waits, w) })
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, waits)
	})

	t.Run("zero max attempts still calls once", func(t *testing.T) {
		n, err := withRetry(context.Background(), types.RetryConfig{}, func(context.Context) error { return transient }, nil)
		assert.Equal(t, 1, n)
		assert.ErrorIs(t, err, transient)
	})

	t.Run("plain errors are not retried", func(t *testing.T) {
		n, err := withRetry(context.Background(), fastRetry, func(context.Context) error { return errors.New("x") }, nil)
		assert.Equal(t, 1, n)
		assert.Error(t, err)
	})
}

func TestPipelineErrorInfo(t *testing.T) {
	pe := &PipelineError{Stage: types.StageWriting, Kind: types.KindRateLimit, Attempts: 3, Err: errors.New("429 from upstream: key sk-123")}
	info := pe.Info()
	assert.Equal(t, types.StageWriting, info.Stage)
	assert.Equal(t, "writing stage failed: the provider rate limit was exceeded", info.Message)
	assert.NotContains(t, info.Message, "sk-123")
	assert.Contains(t, pe.Error(), "3 attempt(s)")
	assert.ErrorContains(t, errors.Unwrap(pe), "429")
}
