package handlers

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-id/internal/identity"
)

type identifyResponse struct {
	Matched    bool    `json:"matched"`
	Reason     string  `json:"reason"`
	UID        string  `json:"uid"`
	Label      string  `json:"label"`
	Distance   float64 `json:"distance"`
	Confidence float64 `json:"confidence"`
}

func TestIdentify_JSONMatch(t *testing.T) {
	store := identity.NewStore(128)
	store.Register("Alice", basisVector(0))
	handler := NewIdentifyHandler(testConfig(), store, &mockExtractor{})

	req := jsonRequest(t, http.MethodPost, "/api/v1/identify", identifyRequest{Embedding: basisVector(0)})
	w := httptest.NewRecorder()
	handler.Identify(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp identifyResponse
	decodeResponse(t, w, &resp)

	if !resp.Matched {
		t.Fatal("expected a match")
	}
	if resp.Label != "Alice" {
		t.Errorf("expected label 'Alice', got '%s'", resp.Label)
	}
	if resp.Distance != 0 {
		t.Errorf("expected distance 0 for identical embedding, got %g", resp.Distance)
	}
	if resp.Confidence != 1 {
		t.Errorf("expected confidence 1 for identical embedding, got %g", resp.Confidence)
	}
	if resp.UID == "" {
		t.Error("expected non-empty UID")
	}
}

func TestIdentify_NoMatch(t *testing.T) {
	store := identity.NewStore(128)
	store.Register("Alice", basisVector(0))
	handler := NewIdentifyHandler(testConfig(), store, &mockExtractor{})

	// Distance to Alice is sqrt(2), far above the 0.6 threshold.
	req := jsonRequest(t, http.MethodPost, "/api/v1/identify", identifyRequest{Embedding: basisVector(1)})
	w := httptest.NewRecorder()
	handler.Identify(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for no-match, got %d", w.Code)
	}

	var resp identifyResponse
	decodeResponse(t, w, &resp)

	if resp.Matched {
		t.Error("expected no match")
	}
	if resp.Reason != "no-match" {
		t.Errorf("expected reason 'no-match', got '%s'", resp.Reason)
	}
}

func TestIdentify_EmptyStore(t *testing.T) {
	store := identity.NewStore(128)
	handler := NewIdentifyHandler(testConfig(), store, &mockExtractor{})

	req := jsonRequest(t, http.MethodPost, "/api/v1/identify", identifyRequest{Embedding: basisVector(0)})
	w := httptest.NewRecorder()
	handler.Identify(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty store, got %d", w.Code)
	}

	var resp identifyResponse
	decodeResponse(t, w, &resp)
	if resp.Matched {
		t.Error("expected no match on empty store")
	}
}

func TestIdentify_CustomThreshold(t *testing.T) {
	store := identity.NewStore(128)
	store.Register("Alice", basisVector(0))
	handler := NewIdentifyHandler(testConfig(), store, &mockExtractor{})

	// sqrt(2) apart; a generous threshold turns it into a match.
	req := jsonRequest(t, http.MethodPost, "/api/v1/identify", identifyRequest{
		Embedding: basisVector(1),
		Threshold: math.Sqrt2 + 0.1,
	})
	w := httptest.NewRecorder()
	handler.Identify(w, req)

	var resp identifyResponse
	decodeResponse(t, w, &resp)

	if !resp.Matched {
		t.Fatal("expected match with raised threshold")
	}
	if resp.Label != "Alice" {
		t.Errorf("expected label 'Alice', got '%s'", resp.Label)
	}
}

func TestIdentify_InvalidThreshold(t *testing.T) {
	store := identity.NewStore(128)
	handler := NewIdentifyHandler(testConfig(), store, &mockExtractor{})

	req := jsonRequest(t, http.MethodPost, "/api/v1/identify", identifyRequest{
		Embedding: basisVector(0),
		Threshold: -1,
	})
	w := httptest.NewRecorder()
	handler.Identify(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for negative threshold, got %d", w.Code)
	}
}

func TestIdentify_WrongDimension(t *testing.T) {
	store := identity.NewStore(128)
	handler := NewIdentifyHandler(testConfig(), store, &mockExtractor{})

	req := jsonRequest(t, http.MethodPost, "/api/v1/identify", identifyRequest{Embedding: make([]float32, 64)})
	w := httptest.NewRecorder()
	handler.Identify(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for wrong dimension, got %d", w.Code)
	}
}

func TestIdentify_Multipart(t *testing.T) {
	store := identity.NewStore(128)
	store.Register("Bob", basisVector(2))
	handler := NewIdentifyHandler(testConfig(), store, &mockExtractor{embedding: basisVector(2)})

	req := multipartRequest(t, http.MethodPost, "/api/v1/identify", nil)
	w := httptest.NewRecorder()
	handler.Identify(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp identifyResponse
	decodeResponse(t, w, &resp)
	if !resp.Matched || resp.Label != "Bob" {
		t.Errorf("expected match for Bob, got %+v", resp)
	}
}

func TestIdentify_MultipartThresholdField(t *testing.T) {
	store := identity.NewStore(128)
	store.Register("Bob", basisVector(2))
	handler := NewIdentifyHandler(testConfig(), store, &mockExtractor{embedding: basisVector(3)})

	req := multipartRequest(t, http.MethodPost, "/api/v1/identify", map[string]string{"threshold": "2.0"})
	w := httptest.NewRecorder()
	handler.Identify(w, req)

	var resp identifyResponse
	decodeResponse(t, w, &resp)
	if !resp.Matched {
		t.Error("expected match with widened threshold form field")
	}
}

func TestIdentify_MultipartBadThreshold(t *testing.T) {
	store := identity.NewStore(128)
	handler := NewIdentifyHandler(testConfig(), store, &mockExtractor{embedding: basisVector(0)})

	req := multipartRequest(t, http.MethodPost, "/api/v1/identify", map[string]string{"threshold": "abc"})
	w := httptest.NewRecorder()
	handler.Identify(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unparsable threshold, got %d", w.Code)
	}
}
