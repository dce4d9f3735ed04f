package common

import "math"

// Epsilon is the tolerance used by Approximately.
const Epsilon = 1e-6

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Sign returns 1 for zero and positive values and -1 for negative ones.
func Sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// Approximately reports whether a and b are equal within a tolerance scaled
// by their magnitude.
func Approximately(a, b float64) bool {
	return math.Abs(b-a) < math.Max(Epsilon*math.Max(math.Abs(a), math.Abs(b)), Epsilon*8)
}

// InverseLerp maps v from [a, b] onto [0, 1] without clamping.
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return (v - a) / (b - a)
}
