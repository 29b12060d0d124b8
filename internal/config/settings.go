package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/muurk/prep/internal/logging"
	"github.com/muurk/prep/internal/urls"
)

// Environment variables read by Resolve
const (
	EnvBaseURL      = "PREP_BASE_URL"
	EnvContract     = "PREP_CONTRACT"
	EnvTimeout      = "PREP_TIMEOUT"
	EnvCameraDevice = "PREP_CAMERA_DEVICE"
	EnvGalleryDir   = "PREP_GALLERY_DIR"
	EnvLogLevel     = logging.LogLevelEnvVar
	EnvLogFile      = logging.LogFileEnvVar
)

// DefaultTimeout is used when no timeout is configured anywhere
const DefaultTimeout = 30 * time.Second

// Source records where a setting came from
type Source string

const (
	SourceFlag      Source = "flag"
	SourceEnv       Source = "environment"
	SourceFile      Source = "config file"
	SourceDiscovery Source = "mDNS discovery"
	SourceDefault   Source = "default"
)

// Settings is the effective configuration for one run
type Settings struct {
	BaseURL       string
	BaseURLSource Source
	Contract      string
	Timeout       time.Duration

	CameraDevice string
	Quality      float64
	GalleryDir   string

	AutoDiscover    bool
	DiscoverTimeout time.Duration
}

// Overrides holds values given on the command line. Zero values mean unset.
type Overrides struct {
	BaseURL  string
	Contract string
	Timeout  time.Duration
}

// DiscoverFunc finds a service base URL on the local network
type DiscoverFunc func(ctx context.Context, timeout time.Duration) (string, error)

// Resolver combines flags, environment, config file and discovery
type Resolver struct {
	Registry *Registry
	Flags    Overrides

	// Getenv defaults to os.Getenv
	Getenv func(string) string

	// Discover is consulted only when no base URL is set anywhere and the
	// registry allows auto-discovery
	Discover DiscoverFunc
}

// LoadDotEnv loads KEY=value files into the environment without overriding
// variables that are already set. Missing files are skipped. With no paths
// it loads ./.env.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Resolve computes the effective settings. The precedence for every value is
// flag, environment, config file, then default; the base URL additionally
// tries mDNS discovery before falling back to the default.
func (r *Resolver) Resolve(ctx context.Context) Settings {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	reg := r.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	reg.normalize()

	s := Settings{
		Contract:        firstNonEmpty(r.Flags.Contract, getenv(EnvContract), reg.Service.Contract),
		CameraDevice:    firstNonEmpty(getenv(EnvCameraDevice), reg.Capture.Device),
		Quality:         reg.Capture.Quality,
		GalleryDir:      firstNonEmpty(getenv(EnvGalleryDir), reg.Capture.GalleryDir),
		AutoDiscover:    reg.Preferences.AutoDiscover,
		DiscoverTimeout: time.Duration(reg.Preferences.DiscoverTimeout) * time.Second,
	}
	if s.DiscoverTimeout <= 0 {
		s.DiscoverTimeout = 3 * time.Second
	}

	switch {
	case r.Flags.Timeout > 0:
		s.Timeout = r.Flags.Timeout
	case parseSeconds(getenv(EnvTimeout)) > 0:
		s.Timeout = parseSeconds(getenv(EnvTimeout))
	case reg.Service.Timeout > 0:
		s.Timeout = time.Duration(reg.Service.Timeout) * time.Second
	default:
		s.Timeout = DefaultTimeout
	}

	switch {
	case r.Flags.BaseURL != "":
		s.BaseURL, s.BaseURLSource = r.Flags.BaseURL, SourceFlag
	case getenv(EnvBaseURL) != "":
		s.BaseURL, s.BaseURLSource = getenv(EnvBaseURL), SourceEnv
	case reg.Service.BaseURL != "":
		s.BaseURL, s.BaseURLSource = reg.Service.BaseURL, SourceFile
	default:
		s.BaseURL, s.BaseURLSource = urls.DefaultBaseURL, SourceDefault
		if s.AutoDiscover && r.Discover != nil {
			found, err := r.Discover(ctx, s.DiscoverTimeout)
			switch {
			case err == nil && found != "":
				s.BaseURL, s.BaseURLSource = found, SourceDiscovery
			case err != nil && !errors.Is(err, context.Canceled):
				logging.Warn("Service discovery failed", zap.Error(err))
			}
		}
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")

	return s
}

// parseSeconds accepts "45" (seconds) or a Go duration such as "1m30s"
func parseSeconds(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
