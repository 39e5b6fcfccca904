package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/switchlog/switchlog/internal/config"
	"github.com/switchlog/switchlog/internal/server"
	"github.com/switchlog/switchlog/internal/sheets"
	"github.com/switchlog/switchlog/internal/slack"
)

var (
	servePort  int
	serveDebug bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Slack events webhook server",
	Long: `Run the webhook server that receives Slack message events.

Point the Slack app's Events API request URL at /slack/events on this
server. Messages matching "ts: description (category)" are appended to
the channel's Google Sheet; "tdo:" messages go to the weekly todo doc.

Requires SLACK_BOT_TOKEN, SLACK_SIGNING_SECRET, and
GOOGLE_SERVICE_ACCOUNT_FILE (loaded from .env if present).

Examples:
  switchlog serve
  switchlog serve --port 3000
  PORT=8080 switchlog serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT env, default 8080)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	level := slog.LevelInfo
	if serveDebug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	signingSecret := os.Getenv("SLACK_SIGNING_SECRET")
	if signingSecret == "" {
		exitWithError(ExitConfigError, "SLACK_SIGNING_SECRET not set")
	}

	keyFile := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")
	if keyFile == "" {
		exitWithError(ExitConfigError, "GOOGLE_SERVICE_ACCOUNT_FILE not set")
	}
	tokens, err := sheets.NewTokenSource(keyFile)
	if err != nil {
		exitWithError(ExitConfigError, "loading service account key: %v", err)
	}
	google := sheets.NewClient(tokens)

	slackClient, err := slack.NewClient(slack.WithUserCachePath(config.UserCachePath(root)))
	if err != nil {
		exitWithError(ExitSlackMissingToken, "creating Slack client: %v", err)
	}

	db := mustOpenDatabase(root)
	defer db.Close()

	registry, err := server.NewRegistryHolder(config.ChannelsPath(root), log)
	if err != nil {
		exitWithError(ExitConfigError, "loading channel registry: %v", err)
	}
	if err := registry.Watch(); err != nil {
		log.Warn("channel registry watch disabled", "err", err)
	}
	defer registry.Close()

	recorder := server.NewRecorder(root, cfg, db, google, slackClient, registry, log)
	verifier := slack.NewVerifier(signingSecret)

	addr := listenAddr()
	srv := server.New(addr, verifier, recorder, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting server", "addr", addr, "workspace", root)
	return srv.Run(ctx)
}

// listenAddr resolves the listen address from --port, then PORT, then 8080.
func listenAddr() string {
	if servePort != 0 {
		return fmt.Sprintf(":%d", servePort)
	}
	if p := os.Getenv("PORT"); p != "" {
		return ":" + p
	}
	return ":8080"
}
