// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pr-size-score",
	Short: "A CLI tool to score the size of merged GitHub pull requests.",
	Long: `pr-size-score computes a size score for a single pull request,
ln(additions + deletions + 1) * sqrt(max(changed files, 1)),
and appends it as a JSON line to an append-only score log.
It is meant to be run by CI once per merged pull request.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
