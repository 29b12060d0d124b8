package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/prep/internal/logging"
)

const (
	// ServiceType is the mDNS service type prep services advertise
	ServiceType = "_prep._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for service discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is used when an entry carries no port
	DefaultPort = 8000

	// TXT record keys
	TxtPath    = "path"
	TxtVersion = "version"
)

// ErrNoServices is returned by FindFirst when nothing answered in time
var ErrNoServices = errors.New("no prep services found on the local network")

// Scanner handles mDNS service discovery
type Scanner struct {
	// Timeout is the maximum time to wait for service discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan discovers all prep services until the timeout or ctx ends
func (s *Scanner) Scan(ctx context.Context) ([]*Service, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	services := make([]*Service, 0)
	seen := make(map[string]bool)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for entry := range entries {
			svc := s.parseServiceEntry(entry)
			if svc == nil || seen[svc.Instance] {
				continue
			}
			seen[svc.Instance] = true
			logging.Debug("Discovered service",
				zap.String("instance", svc.Instance),
				zap.String("url", svc.BaseURL()))
			services = append(services, svc)
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	// The resolver closes entries once ctx is done
	wg.Wait()

	return services, nil
}

// FindFirst returns the first service that answers
func (s *Scanner) FindFirst(ctx context.Context) (*Service, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Service, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			if svc := s.parseServiceEntry(entry); svc != nil {
				select {
				case found <- svc:
					cancel()
				default:
				}
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case svc := <-found:
		return svc, nil
	case <-ctx.Done():
		select {
		case svc := <-found:
			return svc, nil
		default:
		}
		return nil, ErrNoServices
	}
}

// parseServiceEntry converts a zeroconf service entry to a Service
// Returns nil if the entry has no usable address
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Service {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Service{
		Instance:     entry.Instance,
		Host:         entry.HostName,
		IP:           ip,
		Port:         port,
		Path:         metadata[TxtPath],
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Advertise registers a prep service on the local network. Call Shutdown on
// the returned server to withdraw it.
func Advertise(instance string, port int, path, version string) (*zeroconf.Server, error) {
	txt := []string{TxtPath + "=" + path}
	if version != "" {
		txt = append(txt, TxtVersion+"="+version)
	}

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return server, nil
}

// Scan is a convenience function to scan for services with a custom timeout
func Scan(ctx context.Context, timeout time.Duration) ([]*Service, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan(ctx)
}

// DiscoverBaseURL returns the base URL of the first service found. It has
// the shape config.Resolver expects for its Discover hook.
func DiscoverBaseURL(ctx context.Context, timeout time.Duration) (string, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout

	svc, err := scanner.FindFirst(ctx)
	if err != nil {
		return "", err
	}
	return svc.BaseURL(), nil
}
