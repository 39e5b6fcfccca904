package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/switchlog/switchlog/internal/config"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the configured channel registry",
	Long: `List channels from .switchlog/channels.yaml.

Examples:
  switchlog channels
  switchlog channels --human`,
	Args: cobra.NoArgs,
	RunE: runChannels,
}

func init() {
	rootCmd.AddCommand(channelsCmd)
}

// ChannelsResponse is the JSON output of the channels command.
type ChannelsResponse struct {
	Channels []config.Channel `json:"channels"`
}

func runChannels(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	reg := mustLoadRegistry(root)

	if humanOutput {
		if len(reg.Channels) == 0 {
			fmt.Println("No channels configured.")
			fmt.Printf("Add them to %s\n", config.ChannelsPath(root))
			return nil
		}
		for _, ch := range reg.Channels {
			fmt.Printf("%-20s %s", ch.Name, ch.ID)
			if ch.Purpose != "" {
				fmt.Printf("  (%s)", ch.Purpose)
			}
			fmt.Println()
		}
		return nil
	}
	return outputJSON(ChannelsResponse{Channels: reg.Channels})
}
