package faceserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

var jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}

func embedServer(t *testing.T, resp embedResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/face" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "bad multipart", http.StatusBadRequest)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, "missing file part", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestExtractEmbedding_SingleFace(t *testing.T) {
	server := embedServer(t, embedResponse{
		FacesCount: 1,
		Faces: []Detection{
			{FaceIndex: 0, Dim: 4, Embedding: []float32{0.1, 0.2, 0.3, 0.4}, DetScore: 0.99},
		},
		Model: "dlib-resnet-v1",
	})
	defer server.Close()

	client := NewClient(server.URL)
	emb, err := client.ExtractEmbedding(context.Background(), jpegMagic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emb) != 4 {
		t.Fatalf("expected 4-dim embedding, got %d", len(emb))
	}
	if emb[0] != 0.1 || emb[3] != 0.4 {
		t.Errorf("unexpected embedding values: %v", emb)
	}
}

func TestExtractEmbedding_PicksHighestDetScore(t *testing.T) {
	server := embedServer(t, embedResponse{
		FacesCount: 3,
		Faces: []Detection{
			{FaceIndex: 0, Embedding: []float32{1}, DetScore: 0.55},
			{FaceIndex: 1, Embedding: []float32{2}, DetScore: 0.97},
			{FaceIndex: 2, Embedding: []float32{3}, DetScore: 0.80},
		},
	})
	defer server.Close()

	client := NewClient(server.URL)
	emb, err := client.ExtractEmbedding(context.Background(), jpegMagic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb[0] != 2 {
		t.Errorf("expected the face with the highest detection score, got %v", emb)
	}
}

func TestExtractEmbedding_NoFace(t *testing.T) {
	server := embedServer(t, embedResponse{FacesCount: 0, Faces: nil})
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ExtractEmbedding(context.Background(), jpegMagic)
	if !errors.Is(err, ErrNoFace) {
		t.Errorf("expected ErrNoFace, got %v", err)
	}
}

func TestExtractEmbedding_EmptyEmbedding(t *testing.T) {
	// A detection without an embedding counts as no usable face.
	server := embedServer(t, embedResponse{
		FacesCount: 1,
		Faces:      []Detection{{FaceIndex: 0, DetScore: 0.9}},
	})
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ExtractEmbedding(context.Background(), jpegMagic)
	if !errors.Is(err, ErrNoFace) {
		t.Errorf("expected ErrNoFace, got %v", err)
	}
}

func TestExtractEmbedding_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ExtractEmbedding(context.Background(), jpegMagic)
	if err == nil {
		t.Fatal("expected an error for a 500 response")
	}
	if errors.Is(err, ErrNoFace) {
		t.Error("server failure must not be reported as ErrNoFace")
	}
}

func TestDetectFaces_ReturnsAll(t *testing.T) {
	server := embedServer(t, embedResponse{
		FacesCount: 2,
		Faces: []Detection{
			{FaceIndex: 0, Embedding: []float32{1}, BBox: []float64{0, 0, 50, 50}, DetScore: 0.9},
			{FaceIndex: 1, Embedding: []float32{2}, BBox: []float64{60, 0, 110, 50}, DetScore: 0.8},
		},
	})
	defer server.Close()

	client := NewClient(server.URL)
	faces, err := client.DetectFaces(context.Background(), jpegMagic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(faces) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(faces))
	}
	if faces[1].BBox[0] != 60 {
		t.Errorf("unexpected bbox for second face: %v", faces[1].BBox)
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", jpegMagic, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"gif", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x00, 0x00}, "image/gif"},
		{"webp", []byte{0x52, 0x49, 0x46, 0x46, 0, 0, 0, 0, 0x57, 0x45, 0x42, 0x50}, "image/webp"},
		{"unknown", []byte{0, 1, 2, 3, 4, 5, 6, 7}, "application/octet-stream"},
		{"too short", []byte{0xFF}, "application/octet-stream"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectMIMEType(tc.data); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNewClient_DefaultURL(t *testing.T) {
	client := NewClient("")
	if client.baseURL != defaultBaseURL {
		t.Errorf("expected default base URL %q, got %q", defaultBaseURL, client.baseURL)
	}

	client = NewClient("http://example.com/")
	if client.baseURL != "http://example.com" {
		t.Errorf("expected trailing slash to be trimmed, got %q", client.baseURL)
	}
}
