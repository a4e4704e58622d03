package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-id/internal/analyze"
)

type mockAnalyzer struct {
	analysis *analyze.FaceAnalysis
	err      error
}

func (m *mockAnalyzer) Name() string { return "mock" }

func (m *mockAnalyzer) AnalyzeFace(ctx context.Context, imageData []byte) (*analyze.FaceAnalysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.analysis, nil
}

func TestAnalyze(t *testing.T) {
	handler := NewAnalyzeHandler(&mockAnalyzer{
		analysis: &analyze.FaceAnalysis{
			Age:              29,
			Gender:           "male",
			GenderConfidence: 0.92,
			Emotion:          "neutral",
		},
	})

	req := multipartRequest(t, http.MethodPost, "/api/v1/analyze", nil)
	w := httptest.NewRecorder()
	handler.Analyze(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Provider string               `json:"provider"`
		Analysis analyze.FaceAnalysis `json:"analysis"`
	}
	decodeResponse(t, w, &resp)

	if resp.Provider != "mock" {
		t.Errorf("expected provider 'mock', got '%s'", resp.Provider)
	}
	if resp.Analysis.Age != 29 {
		t.Errorf("expected age 29, got %d", resp.Analysis.Age)
	}
	if resp.Analysis.Emotion != "neutral" {
		t.Errorf("expected emotion 'neutral', got '%s'", resp.Analysis.Emotion)
	}
}

func TestAnalyze_NoProvider(t *testing.T) {
	handler := NewAnalyzeHandler(nil)

	req := multipartRequest(t, http.MethodPost, "/api/v1/analyze", nil)
	w := httptest.NewRecorder()
	handler.Analyze(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without provider, got %d", w.Code)
	}
}

func TestAnalyze_MissingFile(t *testing.T) {
	handler := NewAnalyzeHandler(&mockAnalyzer{analysis: &analyze.FaceAnalysis{}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	w := httptest.NewRecorder()
	handler.Analyze(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing file, got %d", w.Code)
	}
}
