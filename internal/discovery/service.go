package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/muurk/prep/internal/urls"
)

// Service represents a recipe service found on the network
type Service struct {
	// Instance is the advertised instance name (e.g., "kitchen-laptop")
	Instance string

	// Host is the mDNS hostname (e.g., "kitchen-laptop.local.")
	Host string

	// IP is the address to connect to, IPv4 preferred
	IP string

	// Port is the HTTP port
	Port int

	// Path is the API prefix from the "path" TXT record (default "/api")
	Path string

	// Metadata contains all mDNS TXT record data
	// Common fields: "path=/api", "version=0.3.0"
	Metadata map[string]string

	// DiscoveredAt is when the service was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the service
func (s *Service) String() string {
	return fmt.Sprintf("Prep service %q (%s) at %s", s.Instance, s.Host, s.BaseURL())
}

// BaseURL returns the API root for the service
func (s *Service) BaseURL() string {
	path := s.Path
	if path == "" {
		path = urls.DefaultAPIPrefix
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	path = strings.TrimRight(path, "/")

	host := net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
	return "http://" + host + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Service) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
