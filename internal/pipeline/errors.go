// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"

	"github.com/pdiddy/newsdesk/pkg/types"
)

// cancelledMessage is reported for runs abandoned by the caller.
const cancelledMessage = "request cancelled"

// PipelineError is a stage failure after retries were exhausted or skipped.
// Err keeps the provider detail for logs; Info carries only what may be
// shown to callers.
type PipelineError struct {
	Stage    types.Stage
	Kind     types.ErrorKind
	Attempts int
	Err      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage failed after %d attempt(s): %s: %v", e.Stage, e.Attempts, e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Info returns the caller-safe description of the failure.
func (e *PipelineError) Info() *types.ErrorInfo {
	msg := fmt.Sprintf("%s stage failed: %s", e.Stage, e.Kind.SafeMessage())
	if e.Kind == types.KindCancelled {
		msg = cancelledMessage
	}
	return &types.ErrorInfo{Stage: e.Stage, Kind: e.Kind, Message: msg}
}

// InternalError is an unexpected fault inside the orchestrator: a template
// that fails to render, an invalid state transition, or a recovered panic.
// Callers log it and report a generic error.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string { return "internal error: " + e.Op + ": " + e.Err.Error() }

func (e *InternalError) Unwrap() error { return e.Err }
