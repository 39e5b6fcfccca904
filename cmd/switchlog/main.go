// Package main provides the switchlog CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/switchlog/switchlog/internal/config"
	"github.com/switchlog/switchlog/internal/store"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "switchlog",
	Short: "Task-switch logging from Slack to Google Sheets",
	Long: `switchlog records task switches posted in Slack channels.

Core features:
  - Webhook server that parses "ts: description (category)" messages
  - Per-channel Google Sheets, provisioned and shared automatically
  - Weekly todo documents from "tdo:" messages
  - Time audits over any day, week, or date range

State lives in a .switchlog workspace directory with a local SQLite
journal. Commands output JSON by default; use --human for tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env if present (for SLACK_BOT_TOKEN and friends)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustFindWorkspace locates the .switchlog workspace, exits on error.
func mustFindWorkspace() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}
	root, err := config.FindWorkspace(cwd)
	if err != nil {
		exitWithError(ExitConfigError, "no .switchlog workspace found; run 'switchlog init' first")
	}
	return root
}

// mustLoadConfig loads workspace configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenDatabase opens the journal database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(root string) *store.DB {
	db, err := store.Open(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadRegistry loads the channel registry, exits on error.
func mustLoadRegistry(root string) *config.Registry {
	reg, err := config.LoadRegistry(config.ChannelsPath(root))
	if err != nil {
		exitWithError(ExitConfigError, "loading channel registry: %v", err)
	}
	return reg
}
