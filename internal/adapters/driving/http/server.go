package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driving"
)

// DefaultImportLockTTL bounds how long a crashed import can block the next one.
const DefaultImportLockTTL = 15 * time.Minute

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	lockTTL    time.Duration
	lockRenew  time.Duration
	logger     *slog.Logger

	connections driving.ConnectionService
	imports     driving.ImportService
	identity    driven.IdentityVerifier
	importLock  driven.DistributedLock
	db          Pinger
}

// Config holds server configuration
type Config struct {
	Host          string
	Port          int
	Version       string
	ImportLockTTL time.Duration
	Logger        *slog.Logger

	// ImportLockRenewInterval is how often a running import extends its lock.
	// Defaults to a third of ImportLockTTL.
	ImportLockRenewInterval time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:          "0.0.0.0",
		Port:          8080,
		Version:       "dev",
		ImportLockTTL: DefaultImportLockTTL,
	}
}

// NewServer creates the HTTP server. importLock serializes imports per user.
func NewServer(
	cfg Config,
	connections driving.ConnectionService,
	imports driving.ImportService,
	identity driven.IdentityVerifier,
	importLock driven.DistributedLock,
	db Pinger,
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lockTTL := cfg.ImportLockTTL
	if lockTTL <= 0 {
		lockTTL = DefaultImportLockTTL
	}
	lockRenew := cfg.ImportLockRenewInterval
	if lockRenew <= 0 || lockRenew >= lockTTL {
		lockRenew = lockTTL / 3
	}

	s := &Server{
		router:      http.NewServeMux(),
		version:     cfg.Version,
		lockTTL:     lockTTL,
		lockRenew:   lockRenew,
		logger:      logger,
		connections: connections,
		imports:     imports,
		identity:    identity,
		importLock:  importLock,
		db:          db,
	}
	s.setupRoutes()

	handler := NewRecoveryMiddleware(logger).Handler(
		NewLoggingMiddleware(logger).Handler(s.router))

	// Imports of long histories can take minutes, so there is no write timeout.
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) setupRoutes() {
	auth := NewAuthMiddleware(s.identity)

	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.Handle("GET /metrics", promhttp.Handler())

	s.router.Handle("PUT /api/v1/provider/credentials",
		auth.Authenticate(http.HandlerFunc(s.handleSaveCredentials)))
	s.router.Handle("GET /api/v1/provider/status",
		auth.Authenticate(http.HandlerFunc(s.handleCredentialStatus)))
	s.router.Handle("GET /api/v1/provider/authorize",
		auth.Authenticate(http.HandlerFunc(s.handleAuthorize)))
	s.router.Handle("DELETE /api/v1/provider/connection",
		auth.Authenticate(http.HandlerFunc(s.handleDisconnect)))

	// The provider redirects the browser here; the user comes from state.
	s.router.HandleFunc("GET /api/v1/provider/callback", s.handleCallback)

	s.router.Handle("POST /api/v1/imports",
		auth.Authenticate(http.HandlerFunc(s.handleImport)))
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
