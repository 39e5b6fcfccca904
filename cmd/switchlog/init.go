package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/switchlog/switchlog/internal/config"
)

var (
	initShareEmail string
	initFolder     string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .switchlog workspace in the current directory",
	Long: `Create the .switchlog workspace: config, channel registry, and
cache directory.

Examples:
  switchlog init
  switchlog init --share you@example.com --folder SwitchLogs`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initShareEmail, "share", "", "Email to share provisioned sheets and docs with")
	initCmd.Flags().StringVar(&initFolder, "folder", "", "Drive folder name for provisioned sheets")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	cfg := &config.Config{
		ShareEmail: initShareEmail,
		FolderName: initFolder,
	}
	if err := config.Init(cwd, cfg); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	path := config.SwitchlogPath(cwd)
	if humanOutput {
		fmt.Printf("Initialized workspace at %s\n", path)
		fmt.Printf("Next: add channels to %s and set SLACK_BOT_TOKEN,\n", config.ChannelsPath(cwd))
		fmt.Println("SLACK_SIGNING_SECRET, and GOOGLE_SERVICE_ACCOUNT_FILE in .env")
		return nil
	}
	return outputJSON(StatusResponse{Status: "initialized", Path: path})
}
