// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pdiddy/newsdesk/internal/pipeline"
)

const (
	writeWait = 10 * time.Second
	// resultType marks the final frame of a stream.
	resultType = "result"
)

// safeConn serializes writes; gorilla connections allow one concurrent writer.
type safeConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *safeConn) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(websocket.TextMessage, data)
}

func (c *safeConn) close(code int, reason string) {
	c.mu.Lock()
	_ = c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	c.mu.Unlock()
	_ = c.Close()
}

// handleStream upgrades to a WebSocket, streams pipeline events as JSON
// frames, and finishes with a "result" envelope. The run is cancelled as
// soon as the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	tm, topic, err := s.prepare(r)
	if err != nil {
		s.log.Error("cannot start run", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Envelope{Status: StatusError, Message: internalMessage})
		return
	}

	raw, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	conn := &safeConn{Conn: raw}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	// Reading is required to process close frames; any read error means the
	// client is gone.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	observe := func(ev pipeline.Event) {
		if err := conn.writeJSON(ev); err != nil {
			s.log.Debug("dropping stream event", zap.String("type", string(ev.Type)), zap.Error(err))
			cancel()
		}
	}

	run, err := s.runner.Run(ctx, topic, tm, pipeline.WithObserver(observe))
	status, env := envelopeFor(run, err)
	if err != nil {
		s.log.Error("pipeline internal error", zap.String("topic", topic.String()), zap.Error(err))
	}
	env.Type = resultType
	if run != nil {
		env.RunID = run.ID
	}

	if werr := conn.writeJSON(env); werr != nil {
		s.log.Debug("client gone before result", zap.Int("status", status), zap.Error(werr))
	}
	conn.close(websocket.CloseNormalClosure, "")
	<-readDone
}
