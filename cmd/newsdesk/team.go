// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/newsdesk/internal/team"
	"github.com/pdiddy/newsdesk/pkg/types"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Inspect team definitions",
}

var teamCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a team definition and render its tasks",
	Long: `Check parses a team YAML file (or the built-in team when no file is
given), validates both roles, and renders the research and writing task
descriptions for --topic so template mistakes show up before serving.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTeamCheck,
}

func init() {
	teamCheckCmd.Flags().String("topic", "", "topic to render tasks with (default: the team's default topic)")

	teamCmd.AddCommand(teamCheckCmd)
	rootCmd.AddCommand(teamCmd)
}

func runTeamCheck(cmd *cobra.Command, args []string) error {
	tm := team.Default()
	if len(args) == 1 {
		t, err := team.LoadFile(args[0])
		if err != nil {
			return err
		}
		tm = t
	}

	raw, _ := cmd.Flags().GetString("topic")
	topic, err := types.TopicOrDefault(raw, tm.DefaultTopic)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "team      %s\n", tm.Name)
	fmt.Fprintf(out, "topic     %s\n", topic)
	fmt.Fprintf(out, "query     %s\n", tm.SearchQuery(topic))
	for _, m := range []struct {
		label  string
		member team.Member
		task   *team.Task
	}{
		{"researcher", tm.Researcher, &tm.Research},
		{"writer", tm.Writer, &tm.Writing},
	} {
		rt, err := m.task.Render(topic)
		if err != nil {
			return fmt.Errorf("%s task: %w", m.label, err)
		}
		fmt.Fprintf(out, "\n%s  %s (%s) via %s/%s\n", m.label, m.member.Name, m.member.Role, m.member.LLM.Provider, m.member.LLM.Model)
		fmt.Fprintf(out, "  task: %s\n", rt.Description)
		fmt.Fprintf(out, "  expected: %s\n", rt.ExpectedOutput)
	}
	return nil
}
