// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/pdiddy/newsdesk/internal/pipeline"
	"github.com/pdiddy/newsdesk/pkg/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and print the blog post",
	Long: `Run searches for the topic, asks the researcher for a summary, and asks
the writer for a blog post, exactly as the HTTP API does. The post is
printed to stdout. With --json the whole run record is printed instead,
including sources, degraded mode, and per-stage attempts.

An empty --topic uses the team's default topic.`,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().String("topic", "", "topic to write about (default: the team's default topic)")
	runCmd.Flags().String("team", "", "team definition file (default: built-in team)")
	runCmd.Flags().Bool("json", false, "print the run record as JSON")
	runCmd.Flags().Bool("events", false, "print progress events to stderr as they happen")
	runCmd.Flags().Duration("timeout", 0, "bound the run (default: server.request_timeout)")

	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("topic")
	asJSON, _ := cmd.Flags().GetBool("json")
	showEvents, _ := cmd.Flags().GetBool("events")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		timeout = cfg.Server.RequestTimeout
	}

	store, err := openTeam(cmd)
	if err != nil {
		return err
	}
	tm := store.Current()
	topic, err := types.TopicOrDefault(raw, tm.DefaultTopic)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	orch, err := newOrchestrator(ctx)
	if err != nil {
		return err
	}

	var opts []pipeline.RunOption
	if showEvents {
		opts = append(opts, pipeline.WithObserver(printEvent(cmd.ErrOrStderr())))
	}

	run, err := orch.Run(ctx, topic, tm, opts...)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(run); err != nil {
			return err
		}
	} else if run.State == types.StateFinished {
		fmt.Fprintln(cmd.OutOrStdout(), run.Artifact())
	}

	if info := run.Failure(); info != nil {
		return fmt.Errorf("%s (%s)", info.Message, info.Kind)
	}
	return nil
}

// printEvent renders events as one line each.
func printEvent(w io.Writer) pipeline.Observer {
	return func(ev pipeline.Event) {
		switch ev.Type {
		case pipeline.EventState:
			fmt.Fprintf(w, "state     %s\n", ev.State)
		case pipeline.EventSources:
			fmt.Fprintf(w, "sources   %d results\n", len(ev.Sources))
			for _, s := range ev.Sources {
				fmt.Fprintf(w, "          %s (%s)\n", s.Title, s.URL)
			}
		case pipeline.EventDegraded:
			fmt.Fprintf(w, "degraded  search failed (%s), researching without sources\n", ev.Kind)
		case pipeline.EventRetry:
			fmt.Fprintf(w, "retry     %s attempt %d failed (%s), waiting %dms\n", ev.Stage, ev.Attempt, ev.Kind, ev.DelayMS)
		case pipeline.EventSummary:
			fmt.Fprintf(w, "summary   %d characters\n", len(ev.Text))
		}
	}
}
