package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-id/internal/faceserver"
	"github.com/kozaktomas/face-id/internal/identity"
)

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	HealthCheck(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var resp map[string]string
	decodeResponse(t, w, &resp)
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got '%s'", resp["status"])
	}
}

func TestRespondStoreError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"duplicate", &identity.DuplicateError{Label: "alice"}, http.StatusConflict},
		{"invalid input", identity.ErrInvalidInput, http.StatusUnprocessableEntity},
		{"no face", faceserver.ErrNoFace, http.StatusUnprocessableEntity},
		{"generic", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondStoreError(w, tc.err)

			if w.Code != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, w.Code)
			}

			var resp map[string]string
			decodeResponse(t, w, &resp)
			if resp["error"] == "" {
				t.Error("expected non-empty error message")
			}
		})
	}
}

func TestSanitizeForLog(t *testing.T) {
	got := sanitizeForLog("evil\nlabel\rwith newlines")
	if got != "evillabelwith newlines" {
		t.Errorf("unexpected sanitized value: %q", got)
	}
}
