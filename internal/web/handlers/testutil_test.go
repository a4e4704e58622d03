package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/identity"
)

// testConfig creates a minimal config for testing.
func testConfig() *config.Config {
	return &config.Config{
		Matching: config.MatchingConfig{
			Model:     "dlib-resnet-v1",
			Dim:       128,
			Threshold: 0.6,
			Metric:    "euclidean",
		},
	}
}

// basisVector returns a 128-dim vector with a single 1.0 component.
func basisVector(i int) []float32 {
	vec := make([]float32, 128)
	vec[i] = 1.0
	return vec
}

// mockExtractor returns a fixed embedding or error for any image.
type mockExtractor struct {
	embedding []float32
	err       error
}

func (m *mockExtractor) ExtractEmbedding(ctx context.Context, imageData []byte) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.embedding, nil
}

// mockRepo records persistence calls and can fail on demand.
type mockRepo struct {
	mu       sync.Mutex
	saveErr  error
	countErr error
	saved    []identity.Record
	deleted  []string
}

func (m *mockRepo) SaveIdentity(ctx context.Context, rec identity.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, rec)
	return nil
}

func (m *mockRepo) DeleteIdentity(ctx context.Context, label string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, label)
	return true, nil
}

func (m *mockRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.saved), nil
}

var (
	errExtractorDown = errors.New("face server unavailable")
	errDatabaseDown  = errors.New("database unavailable")
)

// jsonRequest creates a request with a JSON body.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest creates a request with an image file and extra form fields.
func multipartRequest(t *testing.T, method, path string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "face.jpg")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0}) // JPEG magic bytes

	for key, value := range fields {
		writer.WriteField(key, value)
	}
	writer.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeResponse unmarshals a recorded JSON response body.
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response body %q: %v", w.Body.String(), err)
	}
}
