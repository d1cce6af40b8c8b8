// Package server wires the HTTP API together: the generator registry, the
// document and progress stores, and the endpoint routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/lumenstudy/lumen/internal/api"
	"github.com/lumenstudy/lumen/internal/config"
	"github.com/lumenstudy/lumen/internal/document"
	"github.com/lumenstudy/lumen/internal/home"
	"github.com/lumenstudy/lumen/internal/progress"
	"github.com/lumenstudy/lumen/internal/providers"
	"github.com/lumenstudy/lumen/internal/server/endpoints"
	"github.com/lumenstudy/lumen/internal/svcctx"
)

// Server is the main Lumen HTTP server.
type Server struct {
	httpServer    *http.Server
	registry      *providers.Registry
	configMgr     *config.Manager
	documents     *document.Store
	progressStore *progress.MemoryStore
	home          *home.Dir
	logger        *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	sweepInterval time.Duration

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the directory for uploads and config
	Home *home.Dir
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		h, err := home.New("")
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.Home = h
	}

	// Create generator registry
	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)

	ttl := progress.DefaultTTL
	sweepInterval := time.Minute

	// If config manager provided, set up generators and hot reload
	if cfg.ConfigManager != nil {
		c := cfg.ConfigManager.Get()
		registry.Reload(c.ToRegistryConfig())
		if c.Pipeline.ProgressTTLMinutes > 0 {
			ttl = time.Duration(c.Pipeline.ProgressTTLMinutes) * time.Minute
		}
		if c.Pipeline.SweepIntervalSeconds > 0 {
			sweepInterval = time.Duration(c.Pipeline.SweepIntervalSeconds) * time.Second
		}

		// Watch for config changes
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			registry.Reload(c.ToRegistryConfig())
			cfg.Logger.Info("generator registry reloaded from config")
		})
	}

	s := &Server{
		registry:      registry,
		configMgr:     cfg.ConfigManager,
		documents:     document.NewStore(),
		progressStore: progress.NewMemoryStore(ttl, cfg.Logger),
		home:          cfg.Home,
		logger:        cfg.Logger,
		sweepInterval: sweepInterval,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = endpoints.NewRegistry()

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.home.EnsureExists(); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to prepare home directory: %w", err)
	}

	// Create services struct for context enrichment
	s.services = &svcctx.Services{
		ConfigManager: s.configMgr,
		Registry:      s.registry,
		Documents:     s.documents,
		Progress:      s.progressStore,
		Home:          s.home,
		Logger:        s.logger,
	}

	// Evict finished progress records in the background
	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	go s.progressStore.StartSweeper(sweepCtx, s.sweepInterval)

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the generator registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Documents returns the document store.
func (s *Server) Documents() *document.Store {
	return s.documents
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until Start has assembled the services.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.services == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
