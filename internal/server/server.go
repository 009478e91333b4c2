// Package server exposes zone extraction over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/platinummonkey/zoneorder/internal/logger"
	"github.com/platinummonkey/zoneorder/internal/readingorder"
	"github.com/platinummonkey/zoneorder/internal/zones"
)

// RequestIDHeader carries the per-request identifier on every response
const RequestIDHeader = "X-Request-Id"

const (
	defaultAddr           = ":8080"
	defaultMaxUploadBytes = 64 << 20
	shutdownTimeout       = 5 * time.Second
)

// Server serves the extraction API
type Server struct {
	logger     *logger.Logger
	addr       string
	maxUpload  int64
	zoneOpts   zones.Options
	orderOpts  readingorder.Options
	htmlLang   string
	status     *StatusTracker
	httpServer *http.Server
}

// Config holds configuration for the server
type Config struct {
	Logger         *logger.Logger
	Addr           string // Listen address (default: ":8080")
	MaxUploadBytes int64  // Request body limit (default: 64 MiB)

	// Zones are the default detector options; requests may override them
	Zones zones.Options

	Order    readingorder.Options
	HTMLLang string
}

type requestIDKey struct{}

// New creates a new server instance
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := cfg.Zones.Validate(); err != nil {
		return nil, fmt.Errorf("invalid zone options: %w", err)
	}

	// Use provided logger or get default
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	addr := cfg.Addr
	if addr == "" {
		addr = defaultAddr
	}

	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	return &Server{
		logger:    log,
		addr:      addr,
		maxUpload: maxUpload,
		zoneOpts:  cfg.Zones,
		orderOpts: cfg.Order,
		htmlLang:  cfg.HTMLLang,
		status:    NewStatusTracker(),
	}, nil
}

// Status returns the server's status tracker
func (s *Server) Status() *StatusTracker {
	return s.status
}

// Router builds the HTTP handler with every route attached
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/status", s.handleStatus)

	r.Route("/v1", s.Attach)

	return r
}

// Attach registers the extraction endpoints on r
func (s *Server) Attach(r chi.Router) {
	r.Post("/structure", s.handleStructure)
	r.Post("/paragraphs", s.handleParagraphs)
}

// Run serves until ctx is canceled or a shutdown signal is received
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)

	// Start server in background
	go func() {
		s.logger.WithFields("addr", s.addr).Info("Starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()
	s.status.SetReady(true)

	select {
	case <-ctx.Done():
		s.logger.Info("Context canceled, shutting down")
	case sig := <-sigChan:
		s.logger.WithFields("signal", sig.String()).Info("Received shutdown signal")
	case err, ok := <-errChan:
		if ok {
			s.status.SetReady(false)
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown stops the HTTP server, letting in-flight requests finish
func (s *Server) shutdown() error {
	s.status.SetReady(false)
	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server gracefully: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// requestID tags every response with a request id, reusing a well-formed
// incoming one
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the request id stored in ctx, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
