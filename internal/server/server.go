package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/prep/internal/discovery"
	"github.com/muurk/prep/internal/logging"
	"github.com/muurk/prep/internal/urls"
	"github.com/muurk/prep/internal/version"
)

// DefaultShutdownTimeout bounds how long in-flight requests may take to finish
const DefaultShutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	Host      string
	Port      int
	APIPrefix string // Path prefix for the endpoints (default "/api")
	Latency   time.Duration

	// Advertise over mDNS as Instance (default: the hostname)
	Advertise bool
	Instance  string
}

// Server is the mock recipe service
type Server struct {
	config     *Config
	httpServer *http.Server
	listener   net.Listener
	mdns       *zeroconf.Server
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if config == nil {
		return nil, errors.New("server config is required")
	}
	if config.Port < 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", config.Port)
	}
	if config.APIPrefix == "" {
		config.APIPrefix = urls.DefaultAPIPrefix
	}
	if !strings.HasPrefix(config.APIPrefix, "/") {
		config.APIPrefix = "/" + config.APIPrefix
	}
	config.APIPrefix = strings.TrimRight(config.APIPrefix, "/")

	s := &Server{config: config}
	s.httpServer = &http.Server{
		Handler:           NewRouter(config.APIPrefix, config.Latency),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Addr returns the listening address once Listen has succeeded
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Listen binds the listening socket without serving
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	return nil
}

// Start starts the server and blocks until a shutdown signal or ctx ends
func (s *Server) Start(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	logging.Info("Starting prep mock service",
		zap.String("addr", s.Addr()),
		zap.String("api_prefix", s.config.APIPrefix),
		zap.Duration("latency", s.config.Latency),
	)

	if s.config.Advertise {
		if err := s.advertise(); err != nil {
			// The service still works when addressed directly
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		}
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
	case <-ctx.Done():
		logging.Info("Context cancelled, stopping server...")
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

func (s *Server) advertise() error {
	instance := s.config.Instance
	if instance == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "prep-server"
		}
		instance = host
	}

	_, portStr, err := net.SplitHostPort(s.Addr())
	if err != nil {
		return err
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return fmt.Errorf("invalid listen port %q: %w", portStr, err)
	}

	mdns, err := discovery.Advertise(instance, port, s.config.APIPrefix, version.Version)
	if err != nil {
		return err
	}
	s.mdns = mdns

	logging.Info("Advertising over mDNS",
		zap.String("instance", instance),
		zap.String("service", discovery.ServiceType),
		zap.Int("port", port),
	)
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		_ = s.httpServer.Close()
		return err
	}

	logging.Info("All connections closed gracefully")
	logging.Sync()
	return nil
}
