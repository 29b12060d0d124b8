// Package config provides user configuration management for prep.
//
// This package manages a YAML configuration file that stores the recipe
// service address, the service contract, capture settings and application
// preferences. It replaces the hardcoded service IP of earlier clients.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/prep/config.yaml or $HOME/.config/prep/config.yaml
//   - macOS: $HOME/.config/prep/config.yaml
//   - Windows: %LOCALAPPDATA%\prep\config.yaml
//
// # Precedence
//
// Resolver.Resolve combines, highest first:
//  1. Command-line flags (--url, --contract, --timeout)
//  2. Environment variables (PREP_BASE_URL, PREP_CONTRACT, PREP_TIMEOUT,
//     PREP_CAMERA_DEVICE, PREP_GALLERY_DIR), optionally loaded from a .env
//     file with LoadDotEnv
//  3. The config file
//  4. mDNS discovery, when preferences.auto_discover is set
//  5. The default http://localhost:8000/api
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.SetBaseURL("http://192.168.1.20:8000/api")
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
