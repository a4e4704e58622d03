// Package faceserver is the HTTP client for the external face model server:
// the collaborator that detects a face in an image and computes its
// fixed-length embedding. The identity store never imports this package; it
// only consumes the vectors this client produces.
package faceserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const defaultBaseURL = "http://localhost:8000"

// ErrNoFace is returned when the model server finds no face in the image.
// This is a normal outcome for non-portrait input, not a server failure.
var ErrNoFace = errors.New("no face found in image")

// Client talks to the face model server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the face model server at baseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Detection is a single detected face with its embedding.
type Detection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2] in pixels
	DetScore  float64   `json:"det_score"`
}

type embedResponse struct {
	FacesCount int         `json:"faces_count"`
	Faces      []Detection `json:"faces"`
	Model      string      `json:"model"`
}

// postMultipartImage posts the image as a multipart form to the given
// endpoint, with an explicit per-part Content-Type from magic byte detection.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
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

	return body, nil
}

// ExtractEmbedding detects faces in the image and returns the embedding of
// the most confident detection. Multi-face matching is out of scope, so when
// several faces are present the highest detection score wins.
func (c *Client) ExtractEmbedding(ctx context.Context, imageData []byte) ([]float32, error) {
	body, err := c.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var embResp embedResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	best := bestDetection(embResp.Faces)
	if best == nil || len(best.Embedding) == 0 {
		return nil, ErrNoFace
	}

	return best.Embedding, nil
}

// DetectFaces returns all detections for an image, ordered as the server
// reports them. Callers that only want one face should use ExtractEmbedding.
func (c *Client) DetectFaces(ctx context.Context, imageData []byte) ([]Detection, error) {
	body, err := c.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var embResp embedResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return embResp.Faces, nil
}

func bestDetection(faces []Detection) *Detection {
	var best *Detection
	for i := range faces {
		if len(faces[i].Embedding) == 0 {
			continue
		}
		if best == nil || faces[i].DetScore > best.DetScore {
			best = &faces[i]
		}
	}
	return best
}

// detectMIMEType detects the MIME type from image magic bytes.
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// WebP: RIFF ... WEBP
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
