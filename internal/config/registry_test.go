package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS != "windows" && runtime.GOOS != "darwin" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	}

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if filepath.Base(configDir) != "prep" {
		t.Errorf("GetConfigDir() = %v, should end in 'prep'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	default:
		if configDir != filepath.Join("/tmp/xdg-test", "prep") {
			t.Errorf("GetConfigDir() = %v, want XDG_CONFIG_HOME/prep", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Service == nil || reg.Capture == nil || reg.Preferences == nil {
		t.Fatal("NewRegistry() should initialize all sections")
	}
	if !reg.Preferences.AutoDiscover {
		t.Error("AutoDiscover should default to true")
	}
	if reg.Preferences.DiscoverTimeout != 3 {
		t.Errorf("DiscoverTimeout = %d, want 3", reg.Preferences.DiscoverTimeout)
	}
	if reg.KnownServices == nil {
		t.Error("KnownServices should be initialized")
	}
}

func TestRegistrySetBaseURL(t *testing.T) {
	reg := &Registry{Version: 1}
	reg.SetBaseURL("  http://192.168.1.20:8000/api/ ")

	if reg.Service.BaseURL != "http://192.168.1.20:8000/api" {
		t.Errorf("BaseURL = %q, want trimmed URL", reg.Service.BaseURL)
	}
}

func TestRegistryRememberService(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.RememberService("kitchen", "http://10.0.0.5:8000/api")

	svc := reg.GetKnownService("kitchen")
	if svc == nil {
		t.Fatal("GetKnownService() returned nil after RememberService")
	}
	if svc.LastURL != "http://10.0.0.5:8000/api" {
		t.Errorf("LastURL = %v, want http://10.0.0.5:8000/api", svc.LastURL)
	}
	if svc.LastSeen.Before(before) {
		t.Error("LastSeen should be updated")
	}

	reg.RememberService("kitchen", "http://10.0.0.6:8000/api")
	if reg.GetKnownService("kitchen").LastURL != "http://10.0.0.6:8000/api" {
		t.Error("RememberService should update an existing entry")
	}
	if reg.GetKnownService("pantry") != nil {
		t.Error("GetKnownService() for an unknown instance should be nil")
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	testConfigPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	reg.SetBaseURL("http://192.168.1.20:8000/api")
	reg.Service.Contract = "combined"
	reg.Service.Timeout = 45
	reg.Capture.Device = "/dev/video2"
	reg.Capture.Quality = 0.7
	reg.RememberService("kitchen", "http://192.168.1.20:8000/api")

	if err := reg.SaveTo(testConfigPath); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	data, err := os.ReadFile(testConfigPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# Prep Configuration File") {
		t.Error("saved file should start with the header comment")
	}
	if _, err := os.Stat(testConfigPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be renamed away")
	}

	loaded, err := loadRegistryFromFile(testConfigPath)
	if err != nil {
		t.Fatalf("loadRegistryFromFile() error = %v", err)
	}

	if loaded.Service.BaseURL != "http://192.168.1.20:8000/api" {
		t.Errorf("BaseURL = %v, want http://192.168.1.20:8000/api", loaded.Service.BaseURL)
	}
	if loaded.Service.Contract != "combined" {
		t.Errorf("Contract = %v, want combined", loaded.Service.Contract)
	}
	if loaded.Capture.Quality != 0.7 {
		t.Errorf("Quality = %v, want 0.7", loaded.Capture.Quality)
	}
	if loaded.GetKnownService("kitchen") == nil {
		t.Error("known service should survive a round trip")
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	reg, err := loadRegistryFromFile(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("loadRegistryFromFile() error = %v", err)
	}
	if reg.Version != 1 {
		t.Errorf("Version = %d, want 1", reg.Version)
	}
}

func TestLoadRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad version", "version: 2\n"},
		{"bad yaml", "version: [1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := loadRegistryFromFile(path); err == nil {
				t.Error("loadRegistryFromFile() should fail")
			}
		})
	}
}

func TestLoadRegistry_FillsMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nservice:\n  base_url: http://x/api\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := loadRegistryFromFile(path)
	if err != nil {
		t.Fatalf("loadRegistryFromFile() error = %v", err)
	}
	if reg.Capture == nil || reg.Preferences == nil || reg.KnownServices == nil {
		t.Error("missing sections should be filled with defaults")
	}
	if !reg.Preferences.AutoDiscover {
		t.Error("AutoDiscover should default to true when preferences are missing")
	}
}

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolve_BaseURLPrecedence(t *testing.T) {
	fileReg := NewRegistry()
	fileReg.SetBaseURL("http://file:8000/api")

	discover := func(ctx context.Context, timeout time.Duration) (string, error) {
		return "http://mdns:8000/api", nil
	}

	tests := []struct {
		name       string
		reg        *Registry
		flags      Overrides
		env        map[string]string
		discover   DiscoverFunc
		wantURL    string
		wantSource Source
	}{
		{
			name:       "flag wins",
			reg:        fileReg,
			flags:      Overrides{BaseURL: "http://flag:8000/api/"},
			env:        map[string]string{EnvBaseURL: "http://env:8000/api"},
			discover:   discover,
			wantURL:    "http://flag:8000/api",
			wantSource: SourceFlag,
		},
		{
			name:       "env over file",
			reg:        fileReg,
			env:        map[string]string{EnvBaseURL: "http://env:8000/api"},
			discover:   discover,
			wantURL:    "http://env:8000/api",
			wantSource: SourceEnv,
		},
		{
			name:       "file over discovery",
			reg:        fileReg,
			discover:   discover,
			wantURL:    "http://file:8000/api",
			wantSource: SourceFile,
		},
		{
			name:       "discovery over default",
			reg:        NewRegistry(),
			discover:   discover,
			wantURL:    "http://mdns:8000/api",
			wantSource: SourceDiscovery,
		},
		{
			name: "discovery failure falls back to default",
			reg:  NewRegistry(),
			discover: func(ctx context.Context, timeout time.Duration) (string, error) {
				return "", errors.New("no services found")
			},
			wantURL:    "http://localhost:8000/api",
			wantSource: SourceDefault,
		},
		{
			name:       "default",
			reg:        nil,
			wantURL:    "http://localhost:8000/api",
			wantSource: SourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resolver{
				Registry: tt.reg,
				Flags:    tt.flags,
				Getenv:   envMap(tt.env),
				Discover: tt.discover,
			}
			s := r.Resolve(context.Background())

			if s.BaseURL != tt.wantURL {
				t.Errorf("BaseURL = %q, want %q", s.BaseURL, tt.wantURL)
			}
			if s.BaseURLSource != tt.wantSource {
				t.Errorf("BaseURLSource = %q, want %q", s.BaseURLSource, tt.wantSource)
			}
		})
	}
}

func TestResolve_DiscoveryDisabled(t *testing.T) {
	reg := NewRegistry()
	reg.Preferences.AutoDiscover = false

	called := false
	r := &Resolver{
		Registry: reg,
		Getenv:   envMap(nil),
		Discover: func(ctx context.Context, timeout time.Duration) (string, error) {
			called = true
			return "http://mdns/api", nil
		},
	}
	s := r.Resolve(context.Background())

	if called {
		t.Error("Discover should not run when auto_discover is false")
	}
	if s.BaseURLSource != SourceDefault {
		t.Errorf("BaseURLSource = %q, want default", s.BaseURLSource)
	}
}

func TestResolve_OtherSettings(t *testing.T) {
	reg := NewRegistry()
	reg.Service.Contract = "split"
	reg.Service.Timeout = 20
	reg.Capture.Device = "/dev/video1"
	reg.Capture.GalleryDir = "/photos"

	tests := []struct {
		name         string
		flags        Overrides
		env          map[string]string
		wantContract string
		wantTimeout  time.Duration
		wantDevice   string
		wantGallery  string
	}{
		{
			name:         "file values",
			wantContract: "split",
			wantTimeout:  20 * time.Second,
			wantDevice:   "/dev/video1",
			wantGallery:  "/photos",
		},
		{
			name: "env overrides",
			env: map[string]string{
				EnvContract:     "combined",
				EnvTimeout:      "1m",
				EnvCameraDevice: "/dev/video3",
				EnvGalleryDir:   "/mnt/pics",
			},
			wantContract: "combined",
			wantTimeout:  time.Minute,
			wantDevice:   "/dev/video3",
			wantGallery:  "/mnt/pics",
		},
		{
			name:         "flags override env",
			flags:        Overrides{Contract: "split", Timeout: 5 * time.Second},
			env:          map[string]string{EnvContract: "combined", EnvTimeout: "90"},
			wantContract: "split",
			wantTimeout:  5 * time.Second,
			wantDevice:   "/dev/video1",
			wantGallery:  "/photos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resolver{Registry: reg, Flags: tt.flags, Getenv: envMap(tt.env)}
			s := r.Resolve(context.Background())

			if s.Contract != tt.wantContract {
				t.Errorf("Contract = %q, want %q", s.Contract, tt.wantContract)
			}
			if s.Timeout != tt.wantTimeout {
				t.Errorf("Timeout = %v, want %v", s.Timeout, tt.wantTimeout)
			}
			if s.CameraDevice != tt.wantDevice {
				t.Errorf("CameraDevice = %q, want %q", s.CameraDevice, tt.wantDevice)
			}
			if s.GalleryDir != tt.wantGallery {
				t.Errorf("GalleryDir = %q, want %q", s.GalleryDir, tt.wantGallery)
			}
		})
	}
}

func TestResolve_DefaultTimeout(t *testing.T) {
	r := &Resolver{Getenv: envMap(nil)}
	if s := r.Resolve(context.Background()); s.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultTimeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "PREP_TEST_DOTENV_URL=http://dotenv:8000/api\nPREP_TEST_DOTENV_KEEP=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PREP_TEST_DOTENV_KEEP", "from-env")
	t.Cleanup(func() { os.Unsetenv("PREP_TEST_DOTENV_URL") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	if got := os.Getenv("PREP_TEST_DOTENV_URL"); got != "http://dotenv:8000/api" {
		t.Errorf("PREP_TEST_DOTENV_URL = %q, want value from file", got)
	}
	if got := os.Getenv("PREP_TEST_DOTENV_KEEP"); got != "from-env" {
		t.Errorf("PREP_TEST_DOTENV_KEEP = %q, existing env should win", got)
	}
}
