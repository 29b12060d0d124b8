// Prep-server is a mock ingredient/recipe service for developing and testing
// the prep client.
//
// It serves the detect-ingredients, generate-recipe and scan-ingredients
// endpoints with canned responses, validates uploads and JSON bodies the way
// the real service does, and advertises itself over mDNS so clients can find
// it without configuration.
//
// Usage:
//
//	prep-server [flags]
//
// See 'prep-server --help' for available options.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/prep/internal/logging"
	"github.com/muurk/prep/internal/server"
	"github.com/muurk/prep/internal/urls"
	"github.com/muurk/prep/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Server flags
var (
	host      string
	port      int
	apiPrefix string
	latency   time.Duration
	noMDNS    bool
	instance  string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "prep-server",
	Short: "Mock Prep Recipe Service",
	Long: `A standalone mock of the ingredient/recipe service.

Every valid detect request returns the same ingredients and every valid
generate or scan request returns the same scrambled eggs recipe. Requests
without an image or with an empty ingredient list get a 400 with an error
body, so client error handling can be exercised too.

The server advertises _prep._tcp over mDNS unless --no-mdns is given, and
shuts down gracefully on SIGINT/SIGTERM.`,
	Version: version.Version,
	Example: `  # Serve on :8000/api and advertise over mDNS
  prep-server

  # Slow responses to test timeouts and the busy overlay
  prep-server --latency 3s --log-level debug

  # Different port and prefix, no mDNS
  prep-server --port 9000 --prefix /v1 --no-mdns`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	rootCmd.Flags().IntVar(&port, "port", 8000, "Server port")
	rootCmd.Flags().StringVar(&apiPrefix, "prefix", urls.DefaultAPIPrefix, "Path prefix for the endpoints")
	rootCmd.Flags().DurationVar(&latency, "latency", 0, "Delay every API response by this long")
	rootCmd.Flags().BoolVar(&noMDNS, "no-mdns", false, "Do not advertise the service over mDNS")
	rootCmd.Flags().StringVar(&instance, "instance", "", "mDNS instance name (default: hostname)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	if latency < 0 {
		return fmt.Errorf("latency must not be negative: %s", latency)
	}

	srv, err := server.New(&server.Config{
		Host:      host,
		Port:      port,
		APIPrefix: apiPrefix,
		Latency:   latency,
		Advertise: !noMDNS,
		Instance:  instance,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(cmd.Context())
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("prep-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}
