package identity

import "math"

// DistanceFunc computes the distance between two embedding vectors of equal
// length. Smaller means more similar.
type DistanceFunc func(a, b []float32) float64

// EuclideanDistance computes sqrt(sum((a_i - b_i)^2)) over all dimensions.
// This is the metric dlib-style 128-dim face descriptors are calibrated for.
// Returns +Inf for mismatched or empty vectors so invalid pairs never win a
// nearest-neighbor scan.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// CosineDistance computes 1 - cosine similarity, in [0, 2]. Useful for
// embedding models calibrated on angular separation (e.g. ArcFace). Returns
// the maximum distance for mismatched or zero vectors.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 2.0
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [-1, 1] to handle floating point errors.
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}

	return 1 - similarity
}
