// Package web exposes the identity engine over an HTTP API.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/face-id/internal/analyze"
	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/identity"
	"github.com/kozaktomas/face-id/internal/web/handlers"
	"github.com/kozaktomas/face-id/internal/web/middleware"
)

// Server represents the web server.
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server

	store     *identity.Store
	extractor handlers.EmbeddingExtractor
	analyzer  analyze.Provider
	repo      handlers.IdentityRepository
}

// NewServer creates a new web server. The analyzer and repository are
// optional; a nil analyzer disables the /analyze endpoint and a nil
// repository runs the store memory-only.
func NewServer(
	cfg *config.Config,
	store *identity.Store,
	extractor handlers.EmbeddingExtractor,
	analyzer analyze.Provider,
	repo handlers.IdentityRepository,
	port int,
	host string,
) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:    cfg,
		router:    r,
		store:     store,
		extractor: extractor,
		analyzer:  analyzer,
		repo:      repo,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(2 * time.Minute))
	r.Use(middleware.CORS())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // Long timeout for uploads
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
