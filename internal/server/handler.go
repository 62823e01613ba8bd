// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/newsdesk/internal/team"
	"github.com/pdiddy/newsdesk/pkg/types"
)

// prepare captures the team snapshot and resolves the topic, substituting
// the team default for a missing or blank parameter.
func (s *Server) prepare(r *http.Request) (*team.Team, types.Topic, error) {
	tm := s.teams.Current()
	if tm == nil {
		return nil, "", &types.InputError{Field: "team", Reason: "not configured"}
	}
	topic, err := types.TopicOrDefault(r.URL.Query().Get("topic"), tm.DefaultTopic)
	return tm, topic, err
}

// handleAgents runs the pipeline synchronously and writes one envelope.
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	tm, topic, err := s.prepare(r)
	if err != nil {
		s.log.Error("cannot start run", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Envelope{Status: StatusError, Message: internalMessage})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	run, err := s.runner.Run(ctx, topic, tm)
	status, env := envelopeFor(run, err)
	if err != nil {
		s.log.Error("pipeline internal error", zap.String("topic", topic.String()), zap.Error(err))
	}
	if run != nil {
		w.Header().Set("X-Run-Id", run.ID)
	}
	writeJSON(w, status, env)
}
