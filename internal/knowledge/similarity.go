package knowledge

import "math"

// Cosine returns the cosine similarity between two vectors, in [-1, 1].
//
// Vectors of different lengths score 0 instead of failing: a dimensionality
// mismatch (for example after an embedding model change) must not crash
// retrieval. A zero vector also scores 0 to avoid a zero denominator.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
