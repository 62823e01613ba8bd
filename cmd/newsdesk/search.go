// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/newsdesk/internal/config"
	"github.com/pdiddy/newsdesk/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search recent news with the configured search provider",
	Long: `Search runs the same web search the researcher uses (Tavily or Brave,
per search.provider) and prints the deduplicated results. Use it to check
credentials and to see what sources a topic would produce.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "search query (or pass it as arguments)")
	searchCmd.Flags().Int("max-results", search.DefaultMaxResults, "maximum number of results to return")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	if query == "" {
		query = strings.Join(args, " ")
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	asJSON, _ := cmd.Flags().GetBool("json")

	if err := config.RequireCredentials(cfg, nil); err != nil {
		return err
	}
	client, err := search.New(cfg.Search, cfg.Credentials)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Server.RequestTimeout)
	defer cancel()

	results, err := client.Search(ctx, query, maxResults)
	if err != nil {
		return fmt.Errorf("%s search: %w", client.Name(), err)
	}
	if asJSON {
		return search.FormatJSON(results, cmd.OutOrStdout())
	}
	search.FormatTable(results, cmd.OutOrStdout())
	return nil
}
