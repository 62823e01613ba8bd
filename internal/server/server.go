// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the pipeline over HTTP:
//
//	GET /api/agents?topic=...         runs the pipeline and returns one JSON envelope
//	GET /api/agents/stream?topic=...  WebSocket streaming progress events, then the envelope
//	GET /healthz                      liveness
//
// Each request runs under its own deadline and shares nothing with other
// requests except read-only clients and the current team snapshot.
package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pdiddy/newsdesk/internal/pipeline"
	"github.com/pdiddy/newsdesk/internal/team"
	"github.com/pdiddy/newsdesk/pkg/types"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, topic types.Topic, tm *team.Team, opts ...pipeline.RunOption) (*types.PipelineRun, error)
}

// TeamSource returns the team snapshot for a new run.
type TeamSource interface {
	Current() *team.Team
}

// Server routes HTTP requests to the pipeline.
type Server struct {
	runner   Runner
	teams    TeamSource
	cfg      types.ServerConfig
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// New returns a Server. Zero timeouts in cfg fall back to defaults.
func New(runner Runner, teams TeamSource, cfg types.ServerConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 3 * time.Minute
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	s := &Server{runner: runner, teams: teams, cfg: cfg, log: log}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return s
}

// Handler returns the routed handler wrapped in logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/agents", s.handleAgents)
	mux.HandleFunc("GET /api/agents/stream", s.handleStream)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.logRequests(s.recoverPanics(mux))
}

// HTTPServer returns an *http.Server for s bound to cfg.Addr. No write
// timeout is set: runs are bounded by RequestTimeout instead.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ErrorLog:          zap.NewStdLog(s.log.Named("http")),
	}
}

// originChecker returns nil (same-origin only) for an empty list.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if tm := s.teams.Current(); tm != nil {
		body["team"] = tm.Name
	}
	writeJSON(w, http.StatusOK, body)
}

// recoverPanics turns a handler panic into the generic ERROR envelope.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			s.log.Error("handler panicked",
				zap.String("path", r.URL.Path),
				zap.Any("panic", p),
				zap.ByteString("stack", debug.Stack()))
			if rec, ok := w.(*statusRecorder); ok && rec.status != 0 {
				return
			}
			writeJSON(w, http.StatusInternalServerError, Envelope{Status: StatusError, Message: internalMessage})
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// statusRecorder captures the response status. It forwards Hijack so the
// WebSocket upgrade keeps working behind the middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
