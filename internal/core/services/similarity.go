package services

import "math"

// CosineSimilarity returns the cosine of the angle between a and b.
// ok is false when the vectors are empty or differ in length. A zero
// vector has similarity 0 with everything.
func CosineSimilarity(a, b []float32) (score float64, ok bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, true
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
