package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/identity"
)

// StatsHandler reports store size and the active matching calibration.
type StatsHandler struct {
	config *config.Config
	store  *identity.Store
	repo   IdentityRepository
}

// NewStatsHandler creates a new stats handler. The repository may be nil for
// memory-only deployments.
func NewStatsHandler(cfg *config.Config, store *identity.Store, repo IdentityRepository) *StatsHandler {
	return &StatsHandler{
		config: cfg,
		store:  store,
		repo:   repo,
	}
}

// Get handles GET /stats. With persistence enabled the response also carries
// the database row count, which can differ from the in-memory count when
// other instances share the database.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"identities":  h.store.Count(),
		"model":       h.config.Matching.Model,
		"dim":         h.config.Matching.Dim,
		"threshold":   h.config.Matching.Threshold,
		"metric":      h.config.Matching.Metric,
		"persistence": h.repo != nil,
	}

	if h.repo != nil {
		persisted, err := h.repo.Count(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to count persisted identities: "+err.Error())
			return
		}
		stats["persisted"] = persisted
	}

	respondJSON(w, http.StatusOK, stats)
}
