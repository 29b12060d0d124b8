package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/prep/internal/config"
	"github.com/muurk/prep/internal/discovery"
	"github.com/muurk/prep/internal/session"
	"github.com/muurk/prep/internal/ui"
	"github.com/muurk/prep/internal/urls"
)

// Discover command flags
var (
	discoverTimeout time.Duration
	saveFirst       bool
)

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetURLCmd)
	configCmd.AddCommand(configSetContractCmd)
	configCmd.AddCommand(configPathCmd)
}

// discoverCmd finds recipe services on the local network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find recipe services on the local network",
	Long: `Find recipe services using mDNS/DNS-SD discovery.

Services advertise themselves as _prep._tcp; prep-server does this unless
started with --no-mdns.`,
	Example: `  # Scan for 5 seconds (default)
  prep discover

  # Remember the first service as the default
  prep discover --save`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", discovery.DefaultScanTimeout, "Scan timeout")
	discoverCmd.Flags().BoolVar(&saveFirst, "save", false, "Save the first service found as the configured base URL")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	format, err := ui.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	p := ui.NewPrinter(cmd.OutOrStdout(), format)

	if !p.JSON() {
		p.Println(fmt.Sprintf("Scanning for recipe services (timeout: %s)...", discoverTimeout))
		p.Newline()
	}

	services, err := discovery.Scan(cmd.Context(), discoverTimeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if p.JSON() {
		type entry struct {
			Instance string            `json:"instance"`
			Host     string            `json:"host"`
			BaseURL  string            `json:"base_url"`
			Metadata map[string]string `json:"metadata,omitempty"`
		}
		out := make([]entry, 0, len(services))
		for _, svc := range services {
			out = append(out, entry{Instance: svc.Instance, Host: svc.Host, BaseURL: svc.BaseURL(), Metadata: svc.Metadata})
		}
		if err := p.PrintJSON(out); err != nil {
			return err
		}
	} else if len(services) == 0 {
		p.PrintWarning("No services found", "Nothing answered on "+discovery.ServiceType+".", []string{
			"Check that the service is running (prep-server starts one for testing)",
			"Make sure this machine and the service are on the same network",
			"Try increasing --timeout for slower networks",
			"Use --url to set the address manually",
			"See: " + urls.TroubleshootingGuide,
		})
		return nil
	} else {
		p.Println(fmt.Sprintf("Found %d service(s):", len(services)))
		p.Newline()
		for i, svc := range services {
			p.Println(fmt.Sprintf("%d. %s", i+1, svc.Instance))
			p.Println(fmt.Sprintf("   Host:    %s", svc.Host))
			p.Println(fmt.Sprintf("   URL:     %s", svc.BaseURL()))
			if v := svc.GetMetadata(discovery.TxtVersion); v != "" {
				p.Println(fmt.Sprintf("   Version: %s", v))
			}
			p.Newline()
		}
	}

	if len(services) == 0 {
		return nil
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	for _, svc := range services {
		registry.RememberService(svc.Instance, svc.BaseURL())
	}
	if saveFirst {
		registry.SetBaseURL(services[0].BaseURL())
	}
	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if saveFirst && !p.JSON() {
		p.PrintSuccess("Service saved", ui.Param{Key: "Base URL", Value: services[0].BaseURL()})
	} else if !p.JSON() {
		p.Println("Use 'prep config set-url <url>' or 'prep discover --save' to make one the default")
	}
	return nil
}

// configCmd groups config file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and update the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings and where they came from",
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd.Context())
	if err != nil {
		return err
	}
	s := e.settings

	if e.printer.JSON() {
		return e.printer.PrintJSON(map[string]any{
			"base_url":         s.BaseURL,
			"base_url_source":  string(s.BaseURLSource),
			"contract":         string(e.contract),
			"timeout":          s.Timeout.String(),
			"camera_device":    s.CameraDevice,
			"quality":          s.Quality,
			"gallery_dir":      e.galleryDir(),
			"auto_discover":    s.AutoDiscover,
			"discover_timeout": s.DiscoverTimeout.String(),
		})
	}

	path, _ := config.GetConfigPath()
	e.printer.PrintHeader("Configuration", "prep config show", ui.Param{Key: "File", Value: path})

	camera := s.CameraDevice
	if camera == "" {
		camera = "(default)"
	}
	e.printer.PrintSuccess("Effective settings",
		ui.Param{Key: "Base URL", Value: s.BaseURL},
		ui.Param{Key: "Source", Value: string(s.BaseURLSource)},
		ui.Param{Key: "Contract", Value: string(e.contract)},
		ui.Param{Key: "Timeout", Value: s.Timeout.String()},
		ui.Param{Key: "Camera", Value: camera},
		ui.Param{Key: "Gallery", Value: e.galleryDir()},
		ui.Param{Key: "Discovery", Value: fmt.Sprintf("%t (%s)", s.AutoDiscover, s.DiscoverTimeout)},
	)
	return nil
}

var configSetURLCmd = &cobra.Command{
	Use:     "set-url <url>",
	Short:   "Save the service base URL",
	Example: `  prep config set-url http://192.168.1.20:8000/api`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL, err := validateBaseURL(args[0])
		if err != nil {
			return err
		}
		return updateRegistry(func(r *config.Registry) {
			r.SetBaseURL(baseURL)
		}, "Base URL saved", ui.Param{Key: "Base URL", Value: baseURL})
	},
}

var configSetContractCmd = &cobra.Command{
	Use:   "set-contract <split|combined>",
	Short: "Save which service endpoints to use",
	Long: `Save the service contract.

  split     detect-ingredients, then generate-recipe after editing (default)
  combined  scan-ingredients returns ingredients and recipe in one call`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contract, err := session.ParseContract(args[0])
		if err != nil {
			return err
		}
		return updateRegistry(func(r *config.Registry) {
			r.Service.Contract = string(contract)
		}, "Contract saved", ui.Param{Key: "Contract", Value: string(contract)})
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// updateRegistry loads, edits and saves the config file
func updateRegistry(edit func(*config.Registry), title string, details ...ui.Param) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	edit(registry)

	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	format, err := ui.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	ui.NewPrinter(nil, format).PrintSuccess(title, details...)
	return nil
}

// validateBaseURL accepts absolute http(s) URLs
func validateBaseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: missing host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
