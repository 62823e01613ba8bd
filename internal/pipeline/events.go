// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"time"

	"github.com/pdiddy/newsdesk/pkg/types"
)

// EventType names a pipeline progress notification.
type EventType string

const (
	// EventState reports a state machine transition.
	EventState EventType = "state"
	// EventSources reports the search results fed to the researcher.
	EventSources EventType = "sources"
	// EventDegraded reports that search failed and research continues without it.
	EventDegraded EventType = "degraded"
	// EventRetry reports a transient failure that will be retried.
	EventRetry EventType = "retry"
	// EventSummary carries the research stage output.
	EventSummary EventType = "summary"
)

// Event is one progress notification of a run. Only fields relevant to
// Type are set. Events never carry provider error text.
type Event struct {
	Type    EventType            `json:"type"`
	RunID   string               `json:"run_id"`
	Time    time.Time            `json:"time"`
	State   types.RunState       `json:"state,omitempty"`
	Stage   types.Stage          `json:"stage,omitempty"`
	Sources []types.SearchResult `json:"sources,omitempty"`
	Text    string               `json:"text,omitempty"`
	Attempt int                  `json:"attempt,omitempty"`
	DelayMS int64                `json:"delay_ms,omitempty"`
	Kind    types.ErrorKind      `json:"kind,omitempty"`
}

// Observer receives the events of a single run, synchronously and in order,
// on the goroutine executing the run. It must not block for long.
type Observer func(Event)

// RunOption customizes a single Run call.
type RunOption func(*runOptions)

type runOptions struct {
	observer Observer
}

// WithObserver registers fn to receive the run's events.
func WithObserver(fn Observer) RunOption {
	return func(o *runOptions) { o.observer = fn }
}
