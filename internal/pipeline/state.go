// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"

	"github.com/pdiddy/newsdesk/pkg/types"
)

// transitions lists the legal successors of each state. Terminal states
// have none.
var transitions = map[types.RunState][]types.RunState{
	types.StateIdle:            {types.StateResearchRunning, types.StateCancelled},
	types.StateResearchRunning: {types.StateResearchDone, types.StateResearchFailed, types.StateCancelled},
	types.StateResearchDone:    {types.StateWritingRunning, types.StateCancelled},
	types.StateWritingRunning:  {types.StateFinished, types.StateWritingFailed, types.StateCancelled},
}

// canTransition reports whether from -> to is legal.
func canTransition(from, to types.RunState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// advance moves run to state to and keeps Status consistent with it.
func advance(run *types.PipelineRun, to types.RunState) error {
	if !canTransition(run.State, to) {
		return &InternalError{Op: "transition", Err: fmt.Errorf("invalid transition %s -> %s", run.State, to)}
	}
	run.State = to
	switch {
	case to == types.StateFinished:
		run.Status = types.StatusFinished
	case to.Terminal():
		run.Status = types.StatusFailed
	default:
		run.Status = types.StatusRunning
	}
	return nil
}
