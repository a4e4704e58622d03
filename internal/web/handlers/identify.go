package handlers

import (
	"net/http"
	"strconv"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/identity"
)

// IdentifyHandler handles the identification endpoint.
type IdentifyHandler struct {
	config    *config.Config
	store     *identity.Store
	extractor EmbeddingExtractor
}

// NewIdentifyHandler creates a new identify handler.
func NewIdentifyHandler(cfg *config.Config, store *identity.Store, extractor EmbeddingExtractor) *IdentifyHandler {
	return &IdentifyHandler{
		config:    cfg,
		store:     store,
		extractor: extractor,
	}
}

// identifyRequest is the JSON body for identification with a precomputed embedding.
type identifyRequest struct {
	Embedding []float32 `json:"embedding"`
	Threshold float64   `json:"threshold,omitempty"`
}

// Identify handles POST /identify. It accepts either a multipart form with an
// image file (plus optional threshold form value), or a JSON body with a
// precomputed embedding. The threshold defaults to the calibrated value for
// the configured model.
func (h *IdentifyHandler) Identify(w http.ResponseWriter, r *http.Request) {
	threshold := h.config.Matching.Threshold
	var embedding []float32

	if isMultipart(r) {
		imageData, err := readImageFile(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		if v := r.FormValue("threshold"); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid threshold value")
				return
			}
			threshold = parsed
		}

		embedding, err = h.extractor.ExtractEmbedding(r.Context(), imageData)
		if err != nil {
			respondStoreError(w, err)
			return
		}
	} else {
		var req identifyRequest
		if err := decodeJSONBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
		embedding = req.Embedding
		if req.Threshold != 0 {
			threshold = req.Threshold
		}
	}

	match, err := h.store.Identify(embedding, threshold)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if !match.Matched {
		respondJSON(w, http.StatusOK, map[string]any{
			"matched": false,
			"reason":  "no-match",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"matched":    true,
		"uid":        match.UID,
		"label":      match.Label,
		"distance":   match.Distance,
		"confidence": match.Confidence,
	})
}
