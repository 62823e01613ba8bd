// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/newsdesk/internal/completion"
	"github.com/pdiddy/newsdesk/internal/config"
	"github.com/pdiddy/newsdesk/internal/pipeline"
	"github.com/pdiddy/newsdesk/internal/search"
	"github.com/pdiddy/newsdesk/internal/server"
	"github.com/pdiddy/newsdesk/internal/team"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	Long: `Serve listens for GET /api/agents?topic=... and runs the research and
writing pipeline for each request. GET /api/agents/stream upgrades to a
WebSocket that streams progress events before the final result.

The server shuts down gracefully on SIGINT or SIGTERM. With --watch the
team file is reloaded when it changes; runs already in flight keep the team
they started with.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().String("team", "", "team definition file (default: built-in team)")
	serveCmd.Flags().Bool("watch", false, "reload the team file when it changes")

	bindFlag(serveCmd, "server.addr", "addr")
	bindFlag(serveCmd, "team.watch", "watch")

	rootCmd.AddCommand(serveCmd)
}

// openTeam loads the team named by the command's --team flag, or by
// team.file, and checks that every provider it uses has credentials. The
// search provider is checked too.
func openTeam(cmd *cobra.Command) (*team.Store, error) {
	path := cfg.Team.File
	if f := cmd.Flags().Lookup("team"); f != nil && f.Changed {
		path = f.Value.String()
	}
	store, err := team.Open(path, logger.Named("team"))
	if err != nil {
		return nil, err
	}
	if err := config.RequireCredentials(cfg, store.Current().Providers()); err != nil {
		return nil, err
	}
	return store, nil
}

// newOrchestrator wires the configured search and completion clients into
// a pipeline.
func newOrchestrator(ctx context.Context) (*pipeline.Orchestrator, error) {
	sc, err := search.New(cfg.Search, cfg.Credentials)
	if err != nil {
		return nil, err
	}
	router, err := completion.New(ctx, cfg.Providers, cfg.Credentials, logger.Named("completion"))
	if err != nil {
		return nil, err
	}
	return pipeline.New(sc, router, cfg.Retry, logger.Named("pipeline")), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := openTeam(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, err := newOrchestrator(ctx)
	if err != nil {
		return err
	}
	srv := server.New(orch, store, cfg.Server, logger.Named("server")).HTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("team", store.Current().Name),
			zap.String("search", cfg.Search.Provider))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if cfg.Team.Watch {
		g.Go(func() error { return store.Watch(gctx) })
	}
	return g.Wait()
}
