package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-id/internal/analyze"
)

// AnalyzeHandler handles the face analysis endpoint.
type AnalyzeHandler struct {
	provider analyze.Provider
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(provider analyze.Provider) *AnalyzeHandler {
	return &AnalyzeHandler{provider: provider}
}

// Analyze handles POST /analyze. It classifies the apparent age, gender and
// emotion of the face in the uploaded image. No identity matching happens
// here.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		respondError(w, http.StatusServiceUnavailable, "no analysis provider configured")
		return
	}

	imageData, err := readImageFile(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := h.provider.AnalyzeFace(r.Context(), imageData)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"provider": h.provider.Name(),
		"analysis": analysis,
	})
}
