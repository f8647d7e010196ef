// Package noise provides the seeded gradient-noise field used by texture
// synthesis.
package noise

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// torusRadius scales the 4D torus used by Tileable so that one unit of
// frequency covers roughly one noise feature.
const torusRadius = 1 / (2 * math.Pi)

// Field is a deterministic scalar noise field. It holds no state besides the
// seeded permutation tables, so it is safe for concurrent use.
type Field struct {
	seed  int64
	noise opensimplex.Noise
}

// New creates a field for the given seed.
func New(seed int64) *Field {
	return &Field{
		seed:  seed,
		noise: opensimplex.New(seed),
	}
}

// Seed returns the seed the field was created with.
func (f *Field) Seed() int64 {
	return f.seed
}

// Sample2 evaluates 2D noise in [-1, 1]. Non-finite inputs return 0.
func (f *Field) Sample2(x, y float64) float64 {
	if !finite(x) || !finite(y) {
		return 0
	}
	return clamp1(f.noise.Eval2(x, y))
}

// Sample3 evaluates 3D noise in [-1, 1]. Non-finite inputs return 0.
func (f *Field) Sample3(x, y, z float64) float64 {
	if !finite(x) || !finite(y) || !finite(z) {
		return 0
	}
	return clamp1(f.noise.Eval3(x, y, z))
}

// Tileable samples the field at (u, v) so that the result has period 1 in
// both u and v. The square is wrapped onto a 4D torus: each axis becomes a
// circle, so Tileable(u+1, v) lands on exactly the same 4D point as
// Tileable(u, v) once u is reduced modulo 1.
func (f *Field) Tileable(u, v, frequency float64) float64 {
	if !finite(u) || !finite(v) || !finite(frequency) {
		return 0
	}
	u = fract(u)
	v = fract(v)
	r := torusRadius * frequency
	au := 2 * math.Pi * u
	av := 2 * math.Pi * v
	return clamp1(f.noise.Eval4(
		r*math.Cos(au),
		r*math.Sin(au),
		r*math.Cos(av),
		r*math.Sin(av),
	))
}

// FBM sums octaves of tileable noise, each at double the frequency, and
// normalizes the total back into [-1, 1].
func (f *Field) FBM(u, v, frequency float64, octaves int, persistence float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	var total, maxValue float64
	amplitude := 1.0
	for range octaves {
		total += f.Tileable(u, v, frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	if maxValue == 0 {
		return 0
	}
	return clamp1(total / maxValue)
}

func fract(x float64) float64 {
	r := x - math.Floor(x)
	if r >= 1 {
		return 0
	}
	return r
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func clamp1(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
