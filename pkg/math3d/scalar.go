package math3d

import "math"

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Smoothstep is the GLSL smoothstep: 0 below edge0, 1 above edge1,
// cubic Hermite in between.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Mix is the GLSL mix: a*(1-t) + b*t.
func Mix(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Fract returns x - floor(x), always in [0, 1).
func Fract(x float64) float64 {
	f := x - math.Floor(x)
	// x - floor(x) rounds to 1 for tiny negative x.
	if f >= 1 {
		return 0
	}
	return f
}

// Wrap returns x modulo period in [0, period). math.Mod is exact, so
// Wrap(x+period, period) == Wrap(x, period) for integral x.
func Wrap(x, period float64) float64 {
	m := math.Mod(x, period)
	if m < 0 {
		m += period
	}
	if m >= period {
		return 0
	}
	return m
}
