// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/pdiddy/newsdesk/pkg/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope statuses. A success envelope carries Output and no Status.
const (
	StatusFailed = "FAILED"
	StatusError  = "ERROR"
)

// internalMessage is the only text an internal fault exposes.
const internalMessage = "internal error"

// Envelope is the response body of the agents endpoints. Exactly one of
// Output or Status is set. Type is used only on the streaming endpoint,
// where it is "result".
type Envelope struct {
	Type    string      `json:"type,omitempty"`
	RunID   string      `json:"run_id,omitempty"`
	Output  string      `json:"output,omitempty"`
	Status  string      `json:"status,omitempty"`
	Message string      `json:"message,omitempty"`
	Stage   types.Stage `json:"stage,omitempty"`
}

// Succeeded reports whether e is a success envelope.
func (e Envelope) Succeeded() bool { return e.Status == "" }

// envelopeFor maps a finished run to an HTTP status and envelope. A non-nil
// err is an internal fault and always yields the generic ERROR envelope.
func envelopeFor(run *types.PipelineRun, err error) (int, Envelope) {
	if err != nil || run == nil {
		return http.StatusInternalServerError, Envelope{Status: StatusError, Message: internalMessage}
	}

	switch run.State {
	case types.StateFinished:
		return http.StatusOK, Envelope{Output: run.Artifact()}
	case types.StateResearchFailed, types.StateWritingFailed, types.StateCancelled:
		info := run.Failure()
		if info == nil {
			break
		}
		code := http.StatusBadGateway
		if run.State == types.StateCancelled {
			code = http.StatusGatewayTimeout
		}
		return code, Envelope{Status: StatusFailed, Message: info.Message, Stage: info.Stage}
	}
	return http.StatusInternalServerError, Envelope{Status: StatusError, Message: internalMessage}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
