// Prep turns a photo of your ingredients into a recipe.
//
// It talks to an ingredient/recipe service over HTTP: a photo is uploaded for
// ingredient detection, the list can be edited, and the service generates a
// recipe from it. The service address comes from flags, the environment, the
// config file or mDNS discovery.
//
// Usage:
//
//	prep [command] [flags]
//
// Running without arguments launches the interactive terminal UI.
// See 'prep --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/prep/internal/logging"
	"github.com/muurk/prep/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "prep",
	Short: "Photo to recipe client",
	Long: `Take or pick a photo of your ingredients, check the list the service
detected, and get a recipe.

If no command is specified, the interactive UI will launch automatically.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the UI when no subcommand provided
		return runUI(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("prep %s (commit: %s)\n", version.Version, version.Commit)
	},
}
