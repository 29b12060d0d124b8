package config

import (
	"strings"
	"time"
)

// Registry represents the entire user configuration file.
type Registry struct {
	Version       int                      `yaml:"version"`
	Service       *ServiceConfig           `yaml:"service,omitempty"`
	Capture       *CaptureConfig           `yaml:"capture,omitempty"`
	Preferences   *Preferences             `yaml:"preferences,omitempty"`
	KnownServices map[string]*KnownService `yaml:"known_services,omitempty"` // Keyed by mDNS instance name
}

// ServiceConfig describes how to reach the ingredient/recipe service.
type ServiceConfig struct {
	BaseURL  string `yaml:"base_url,omitempty"` // API root, e.g. http://192.168.1.20:8000/api
	Contract string `yaml:"contract,omitempty"` // "split" or "combined"
	Timeout  int    `yaml:"timeout,omitempty"`  // Request timeout in seconds
}

// CaptureConfig describes the photo sources.
type CaptureConfig struct {
	Device     string  `yaml:"device,omitempty"`      // Camera device (/dev/video0, 0, video=Name)
	Quality    float64 `yaml:"quality,omitempty"`     // JPEG quality factor in (0,1]
	GalleryDir string  `yaml:"gallery_dir,omitempty"` // Where the gallery picker starts
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool `yaml:"auto_discover"`    // Look for a service over mDNS when no URL is set
	DiscoverTimeout int  `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
}

// KnownService remembers a service found by discovery.
type KnownService struct {
	Nickname string    `yaml:"nickname,omitempty"`
	LastURL  string    `yaml:"last_url"`
	LastSeen time.Time `yaml:"last_seen,omitempty"`
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Service: &ServiceConfig{},
		Capture: &CaptureConfig{},
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 3,
		},
		KnownServices: make(map[string]*KnownService),
	}
}

// normalize fills in sections missing from an older or hand-edited file.
func (r *Registry) normalize() {
	if r.Service == nil {
		r.Service = &ServiceConfig{}
	}
	if r.Capture == nil {
		r.Capture = &CaptureConfig{}
	}
	if r.Preferences == nil {
		r.Preferences = &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 3,
		}
	}
	if r.KnownServices == nil {
		r.KnownServices = make(map[string]*KnownService)
	}
}

// SetBaseURL stores the service address. Trailing slashes are dropped.
func (r *Registry) SetBaseURL(baseURL string) {
	r.normalize()
	r.Service.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// RememberService records a discovered service and when it was seen.
func (r *Registry) RememberService(instance, baseURL string) {
	r.normalize()

	svc, exists := r.KnownServices[instance]
	if !exists {
		svc = &KnownService{}
		r.KnownServices[instance] = svc
	}
	svc.LastURL = baseURL
	svc.LastSeen = time.Now()
}

// GetKnownService retrieves a remembered service by instance name.
// Returns nil if it has never been seen.
func (r *Registry) GetKnownService(instance string) *KnownService {
	return r.KnownServices[instance]
}
