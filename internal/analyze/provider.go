// Package analyze classifies the apparent age, gender and emotion of a face
// in an uploaded photo. This path shares the external model family with the
// embedding extractor but performs no identity matching: results are labeled
// scalars, never identities.
package analyze

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-id/internal/config"
)

// FaceAnalysis is the classification result for a single face.
type FaceAnalysis struct {
	// Age is the apparent age in years.
	Age int `json:"age"`
	// Gender is the apparent gender label ("male", "female").
	Gender string `json:"gender"`
	// GenderConfidence is the model's score for the gender label, 0-1.
	GenderConfidence float64 `json:"gender_confidence"`
	// Emotion is the dominant emotion label.
	Emotion string `json:"emotion"`
	// Emotions holds per-label scores when the backend reports them.
	Emotions map[string]float64 `json:"emotions,omitempty"`
}

// Provider defines the interface for face analysis backends.
type Provider interface {
	Name() string
	AnalyzeFace(ctx context.Context, imageData []byte) (*FaceAnalysis, error)
}

// NewProvider creates the analysis backend selected by name: "local" (the
// face model server), "openai", or "gemini".
func NewProvider(ctx context.Context, name string, cfg *config.Config) (Provider, error) {
	switch name {
	case "", "local":
		return NewLocalProvider(cfg.FaceServer.URL), nil
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, fmt.Errorf("OPENAI_TOKEN is required for the openai provider")
		}
		return NewOpenAIProvider(cfg.OpenAI.Token), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
		return NewGeminiProvider(ctx, cfg.Gemini.APIKey)
	default:
		return nil, fmt.Errorf("unknown analysis provider %q", name)
	}
}
