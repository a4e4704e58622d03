package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultModel is the embedding model assumed when FACE_MODEL is not set:
// dlib's 128-dim ResNet face descriptor with the standard 0.6 Euclidean
// acceptance threshold.
const DefaultModel = "dlib-resnet-v1"

// Calibration holds the known per-model matching parameters shipped with the
// binary. A model's threshold is an empirically calibrated separation point;
// changing models means changing the threshold, never the matching code.
type Calibration struct {
	Models map[string]ModelCalibration `yaml:"models"`
}

type ModelCalibration struct {
	Dim       int     `yaml:"dim"`
	Threshold float64 `yaml:"threshold"`
	Metric    string  `yaml:"metric"`
}

func parseCalibration(data []byte) (Calibration, error) {
	var c Calibration
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Calibration{}, fmt.Errorf("unmarshal calibration: %w", err)
	}
	return c, nil
}

// Resolve returns the matching parameters for a model name, falling back to
// the default model's calibration for unknown names so a typo degrades to the
// stock dlib setup instead of a zero threshold.
func (c Calibration) Resolve(model string) MatchingConfig {
	if m, ok := c.Models[model]; ok {
		return MatchingConfig{Model: model, Dim: m.Dim, Threshold: m.Threshold, Metric: m.Metric}
	}
	fallback := c.Models[DefaultModel]
	return MatchingConfig{
		Model:     DefaultModel,
		Dim:       fallback.Dim,
		Threshold: fallback.Threshold,
		Metric:    fallback.Metric,
	}
}
