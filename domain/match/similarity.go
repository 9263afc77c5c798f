// Package match scores and ranks contact embeddings against a goal embedding.
package match

import "math"

// Cosine computes the cosine similarity between two vectors.
// Returns a value between -1 (opposite) and 1 (identical).
// Returns 0 if either vector is empty or has zero magnitude, if the lengths
// differ, or if any component is not finite.
//
// Each vector is scaled by its largest absolute component first, so the
// result holds for magnitudes whose squares would overflow or underflow.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	scaleA, ok := maxAbs(a)
	if !ok || scaleA == 0 {
		return 0
	}
	scaleB, ok := maxAbs(b)
	if !ok || scaleB == 0 {
		return 0
	}

	var dotProduct, magA, magB float64
	for i := range a {
		x, y := a[i]/scaleA, b[i]/scaleB
		dotProduct += x * y
		magA += x * x
		magB += y * y
	}

	score := dotProduct / (math.Sqrt(magA) * math.Sqrt(magB))
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return max(-1, min(1, score))
}

// maxAbs returns the largest absolute component of v, and false if any
// component is NaN or infinite.
func maxAbs(v []float64) (float64, bool) {
	var m float64
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		m = max(m, math.Abs(x))
	}
	return m, true
}
