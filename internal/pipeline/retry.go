// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"time"

	"github.com/pdiddy/newsdesk/pkg/types"
)

// backoff returns the wait before retry number n (1-based): BaseDelay
// doubled n-1 times, capped at MaxDelay.
func backoff(cfg types.RetryConfig, n int) time.Duration {
	d := cfg.BaseDelay
	for i := 1; i < n; i++ {
		d *= 2
		if cfg.MaxDelay > 0 && d >= cfg.MaxDelay {
			return cfg.MaxDelay
		}
	}
	if cfg.MaxDelay > 0 && d > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return d
}

// retryFunc is notified before each backoff wait.
type retryFunc func(attempt int, err error, wait time.Duration)

// withRetry calls op until it succeeds, fails with a non-transient error,
// MaxAttempts is reached, or ctx is done. It returns the number of calls
// made and the last error.
func withRetry(ctx context.Context, cfg types.RetryConfig, op func(context.Context) error, onRetry retryFunc) (int, error) {
	maxAttempts := max(cfg.MaxAttempts, 1)

	var err error
	for attempt := 1; ; attempt++ {
		err = op(ctx)
		if err == nil {
			return attempt, nil
		}
		if attempt >= maxAttempts || !types.KindOf(err).Transient() || ctx.Err() != nil {
			return attempt, err
		}

		wait := backoff(cfg, attempt)
		if onRetry != nil {
			onRetry(attempt, err, wait)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return attempt, err
		case <-t.C:
		}
	}
}
