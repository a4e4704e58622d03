package handlers

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/identity"
)

// IdentitiesHandler handles identity registration and management endpoints.
type IdentitiesHandler struct {
	config    *config.Config
	store     *identity.Store
	extractor EmbeddingExtractor
	repo      IdentityRepository
}

// NewIdentitiesHandler creates a new identities handler. The repository may
// be nil for memory-only deployments.
func NewIdentitiesHandler(cfg *config.Config, store *identity.Store, extractor EmbeddingExtractor, repo IdentityRepository) *IdentitiesHandler {
	return &IdentitiesHandler{
		config:    cfg,
		store:     store,
		extractor: extractor,
		repo:      repo,
	}
}

// registerRequest is the JSON body for registration with a precomputed embedding.
type registerRequest struct {
	Label     string    `json:"label"`
	Embedding []float32 `json:"embedding"`
}

// identitySummary is a registered identity without its embedding. Embeddings
// never leave the server through list endpoints.
type identitySummary struct {
	UID       string    `json:"uid"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// Register handles POST /identities. It accepts either a multipart form with
// an image file plus a label, or a JSON body with a precomputed embedding.
func (h *IdentitiesHandler) Register(w http.ResponseWriter, r *http.Request) {
	var label string
	var embedding []float32

	if isMultipart(r) {
		imageData, err := readImageFile(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		label = r.FormValue("label")
		if strings.TrimSpace(label) == "" {
			respondError(w, http.StatusBadRequest, "label is required")
			return
		}

		embedding, err = h.extractor.ExtractEmbedding(r.Context(), imageData)
		if err != nil {
			respondStoreError(w, err)
			return
		}
	} else {
		var req registerRequest
		if err := decodeJSONBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
		label = req.Label
		embedding = req.Embedding
	}

	count, err := h.store.Register(label, embedding)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	rec, _ := h.store.Get(label)

	if h.repo != nil {
		if err := h.repo.SaveIdentity(r.Context(), rec); err != nil {
			// Keep memory and database consistent: roll the registration back.
			// The database can report a duplicate the in-memory store has not
			// seen, such as a row written by another instance.
			h.store.Remove(rec.Label)
			respondStoreError(w, err)
			return
		}
	}

	log.Printf("Registered identity %q (%d total)", sanitizeForLog(rec.Label), count)

	respondJSON(w, http.StatusCreated, map[string]any{
		"uid":   rec.UID,
		"label": rec.Label,
		"count": count,
	})
}

// List handles GET /identities. An optional q parameter filters labels by
// normalized substring match (case and diacritics insensitive).
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := identity.NormalizeLabel(r.URL.Query().Get("q"))

	records := h.store.Records()
	summaries := make([]identitySummary, 0, len(records))
	for _, rec := range records {
		if q != "" && !strings.Contains(identity.NormalizeLabel(rec.Label), q) {
			continue
		}
		summaries = append(summaries, identitySummary{
			UID:       rec.UID,
			Label:     rec.Label,
			CreatedAt: rec.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"identities": summaries,
		"count":      len(summaries),
	})
}

// Delete handles DELETE /identities/{label}.
func (h *IdentitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	if unescaped, err := url.PathUnescape(label); err == nil {
		label = unescaped
	}

	if !h.store.Remove(label) {
		respondError(w, http.StatusNotFound, "identity not found")
		return
	}

	if h.repo != nil {
		if _, err := h.repo.DeleteIdentity(r.Context(), strings.TrimSpace(label)); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to delete persisted identity: "+err.Error())
			return
		}
	}

	log.Printf("Removed identity %q", sanitizeForLog(label))
	w.WriteHeader(http.StatusNoContent)
}
