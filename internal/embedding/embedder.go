// Package embedding holds the text embedders and the vector helpers they share.
package embedding

import "math"

// Normalize scales v to unit L2 length in place and returns it.
// Zero vectors are returned unchanged.
func Normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
