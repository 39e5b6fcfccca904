package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the switchlog version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if humanOutput {
			fmt.Printf("switchlog %s\n", Version)
			return nil
		}
		return outputJSON(map[string]string{"version": Version})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
