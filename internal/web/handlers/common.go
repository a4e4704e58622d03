// Package handlers implements the HTTP API on top of the identity store.
// Handlers translate between wire formats and store semantics; all matching
// rules live in the identity package.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-id/internal/faceserver"
	"github.com/kozaktomas/face-id/internal/identity"
)

// maxUploadSize limits uploaded image size to 32 MB.
const maxUploadSize = 32 << 20

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// EmbeddingExtractor turns an uploaded image into a face embedding.
// Implemented by faceserver.Client.
type EmbeddingExtractor interface {
	ExtractEmbedding(ctx context.Context, imageData []byte) ([]float32, error)
}

// IdentityRepository is the optional persistence backend. A nil repository
// means the server runs memory-only.
type IdentityRepository interface {
	SaveIdentity(ctx context.Context, rec identity.Record) error
	DeleteIdentity(ctx context.Context, label string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps identity and extraction errors to HTTP statuses:
// duplicate labels conflict (409), rejected inputs and images without a
// detectable face are unprocessable (422), anything else is a server fault.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case identity.IsDuplicate(err):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, identity.ErrInvalidInput):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, faceserver.ErrNoFace):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeJSONBody parses a JSON request body into dst.
func decodeJSONBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, maxUploadSize)).Decode(dst)
}

// readImageFile extracts the uploaded image from a multipart request.
func readImageFile(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("file field is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("uploaded file is empty")
	}
	return data, nil
}

// isMultipart reports whether the request carries a multipart form.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
