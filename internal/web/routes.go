package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-id/internal/web/handlers"
	"github.com/kozaktomas/face-id/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	identitiesHandler := handlers.NewIdentitiesHandler(s.config, s.store, s.extractor, s.repo)
	identifyHandler := handlers.NewIdentifyHandler(s.config, s.store, s.extractor)
	analyzeHandler := handlers.NewAnalyzeHandler(s.analyzer)
	statsHandler := handlers.NewStatsHandler(s.config, s.store, s.repo)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireToken(s.config.Web.APIToken))

			// Identities
			r.Post("/identities", identitiesHandler.Register)
			r.Get("/identities", identitiesHandler.List)
			r.Delete("/identities/{label}", identitiesHandler.Delete)

			// Identification
			r.Post("/identify", identifyHandler.Identify)

			// Analysis
			r.Post("/analyze", analyzeHandler.Analyze)

			// Stats
			r.Get("/stats", statsHandler.Get)
		})
	})
}
