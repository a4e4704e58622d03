package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultLocalURL = "http://localhost:8000"

// LocalProvider calls the face model server's /analyze/face endpoint. This is
// the same server that computes embeddings, so a single local deployment
// covers both paths.
type LocalProvider struct {
	baseURL string
	client  *http.Client
}

// NewLocalProvider creates a provider for the face model server at baseURL.
func NewLocalProvider(baseURL string) *LocalProvider {
	if baseURL == "" {
		baseURL = defaultLocalURL
	}
	return &LocalProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *LocalProvider) Name() string {
	return "local"
}

func (p *LocalProvider) AnalyzeFace(ctx context.Context, imageData []byte) (*FaceAnalysis, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/analyze/face", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("face server error (status %d): %s", resp.StatusCode, string(body))
	}

	var analysis FaceAnalysis
	if err := json.Unmarshal(body, &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &analysis, nil
}
