package config

import (
	_ "embed"
	"os"
	"strconv"
)

//go:embed calibration.yaml
var calibrationYAML []byte

type Config struct {
	FaceServer  FaceServerConfig
	Matching    MatchingConfig
	OpenAI      OpenAIConfig
	Gemini      GeminiConfig
	Database    DatabaseConfig
	Web         WebConfig
	Calibration Calibration
}

type FaceServerConfig struct {
	URL string // defaults to http://localhost:8000
}

// MatchingConfig is the resolved calibration for the embedding model in use.
// Model selects an entry from calibration.yaml; Dim and Threshold can be
// overridden individually through the environment when a model is being
// recalibrated.
type MatchingConfig struct {
	Model     string
	Dim       int
	Threshold float64
	Metric    string // "euclidean" or "cosine"
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty disables persistence
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type WebConfig struct {
	APIToken string // bearer token for the API; empty disables auth
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	calibration, err := parseCalibration(calibrationYAML)
	if err != nil {
		// The calibration file is embedded, so this only happens when the
		// file itself is broken at build time.
		panic("failed to parse embedded calibration.yaml: " + err.Error())
	}

	model := envString("FACE_MODEL", DefaultModel)
	matching := calibration.Resolve(model)
	matching.Dim = envInt("FACE_EMBEDDING_DIM", matching.Dim)
	matching.Threshold = envFloat("FACE_MATCH_THRESHOLD", matching.Threshold)

	return &Config{
		FaceServer: FaceServerConfig{
			URL: os.Getenv("FACE_SERVER_URL"),
		},
		Matching: matching,
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Web: WebConfig{
			APIToken: os.Getenv("FACEID_API_TOKEN"),
		},
		Calibration: calibration,
	}
}
