// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the newsdesk CLI. newsdesk runs a
// two-agent research and writing pipeline behind an HTTP API and exposes
// its stages as subcommands for local use.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/newsdesk/internal/config"
	"github.com/pdiddy/newsdesk/internal/logging"
	"github.com/pdiddy/newsdesk/internal/secrets"
	"github.com/pdiddy/newsdesk/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Resolved once in PersistentPreRunE and read-only afterwards.
var (
	cfg    types.Config
	logger = zap.NewNop()
)

// rootCmd is the base command for the newsdesk CLI.
var rootCmd = &cobra.Command{
	Use:   "newsdesk",
	Short: "AI news blogging team: search, research, write",
	Long: `newsdesk turns a topic into a short blog post. A researcher agent
summarizes recent web search results and a writer agent turns the summary
into a post. Each agent is served by a configurable model provider
(gemini, openai, anthropic, ollama).

Serve the pipeline over HTTP with "newsdesk serve", or run it once from the
terminal with "newsdesk run".`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./newsdesk.yaml or ~/.config/newsdesk/newsdesk.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of API key files")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: json or console")

	bindFlag(rootCmd, "log.level", "log-level")
	bindFlag(rootCmd, "log.format", "log-format")
}

// bindFlag binds a flag of cmd to a viper key so the flag wins over file
// and environment values when set.
func bindFlag(cmd *cobra.Command, key, flag string) {
	f := cmd.PersistentFlags().Lookup(flag)
	if f == nil {
		f = cmd.Flags().Lookup(flag)
	}
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag, err))
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	v := viper.GetViper()

	used, err := config.Init(v, cfgFile)
	if err != nil {
		return err
	}

	log, err := logging.New(types.LogConfig{Level: v.GetString("log.level"), Format: v.GetString("log.format")})
	if err != nil {
		return err
	}
	logger = log
	if used != "" {
		logger.Info("using config file", zap.String("file", used))
	}

	dir, _ := cmd.Flags().GetString("secrets-dir")
	s, err := secrets.Load(dir, logger)
	if err != nil {
		return err
	}

	c, applied, err := config.Load(v, s)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		logger.Info("loaded secrets", zap.Strings("names", applied))
	}
	cfg = c
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
