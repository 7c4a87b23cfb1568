package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crewsync",
	Short: "CrewSync messaging backend",
	Long: `CrewSync is the real-time messaging backend for the employee platform.

Available commands:
  serve    Start the messaging server

Use "crewsync [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
