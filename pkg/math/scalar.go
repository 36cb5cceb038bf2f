package math

import "math"

// Lerp blends a and b: (1-f)*a + f*b.
func Lerp(a, b, f float32) float32 {
	return (1-f)*a + f*b
}

// Mod returns the Euclidean remainder of v / m, always in [0, m) for m > 0.
func Mod(v, m float32) float32 {
	r := float32(math.Mod(float64(v), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
