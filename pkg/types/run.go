// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Stage identifies one sequential phase of the pipeline.
type Stage string

const (
	StageResearch Stage = "research"
	StageWriting  Stage = "writing"
)

// RunState is the fine-grained position of a run in the pipeline state machine.
type RunState string

const (
	StateIdle            RunState = "Idle"
	StateResearchRunning RunState = "ResearchRunning"
	StateResearchDone    RunState = "ResearchDone"
	StateResearchFailed  RunState = "ResearchFailed"
	StateWritingRunning  RunState = "WritingRunning"
	StateWritingFailed   RunState = "WritingFailed"
	StateFinished        RunState = "Finished"
	StateCancelled       RunState = "Cancelled"
)

// Terminal reports whether no further transition is possible from s.
func (s RunState) Terminal() bool {
	switch s {
	case StateFinished, StateResearchFailed, StateWritingFailed, StateCancelled:
		return true
	}
	return false
}

// RunStatus is the coarse outcome reported to callers.
type RunStatus string

const (
	StatusRunning  RunStatus = "Running"
	StatusFinished RunStatus = "Finished"
	StatusFailed   RunStatus = "Failed"
)

// ErrorInfo describes a stage failure in terms safe to show to end users.
type ErrorInfo struct {
	Stage   Stage     `json:"stage"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// StageResult is the outcome of one pipeline stage.
type StageResult struct {
	Text      string     `json:"text"`
	Succeeded bool       `json:"succeeded"`
	Error     *ErrorInfo `json:"error,omitempty"`

	// Attempts counts completion calls made for the stage, retries included.
	Attempts int `json:"attempts"`
}

// PipelineRun is the ephemeral record of one request's pipeline execution.
// It is owned by the goroutine that created it and never shared.
type PipelineRun struct {
	ID    string `json:"id"`
	Topic Topic  `json:"topic"`

	// Sources holds the search results fed to the research prompt. It is
	// empty when the research stage ran in degraded mode.
	Sources []SearchResult `json:"sources,omitempty"`

	// Degraded is set when search failed and research ran without context.
	Degraded bool `json:"degraded"`

	Research StageResult `json:"research"`
	Writing  StageResult `json:"writing"`

	State  RunState  `json:"state"`
	Status RunStatus `json:"status"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Artifact returns the final generated text. It is empty unless the run
// finished successfully.
func (r *PipelineRun) Artifact() string {
	if r.State != StateFinished {
		return ""
	}
	return r.Writing.Text
}

// Failure returns the error of the failing stage, or nil when the run did
// not fail.
func (r *PipelineRun) Failure() *ErrorInfo {
	if r.Research.Error != nil {
		return r.Research.Error
	}
	return r.Writing.Error
}
