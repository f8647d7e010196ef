package math3d

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		name            string
		edge0, edge1, x float64
		expected        float64
	}{
		{"below", 0.2, 0.8, 0.1, 0},
		{"above", 0.2, 0.8, 0.9, 1},
		{"midpoint", 0, 1, 0.5, 0.5},
		{"degenerate below", 0.5, 0.5, 0.4, 0},
		{"degenerate above", 0.5, 0.5, 0.6, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Smoothstep(tc.edge0, tc.edge1, tc.x)
			if math.Abs(got-tc.expected) > 1e-12 {
				t.Errorf("Smoothstep(%v, %v, %v) = %v, want %v", tc.edge0, tc.edge1, tc.x, got, tc.expected)
			}
		})
	}
}

func TestFract(t *testing.T) {
	for _, x := range []float64{0, 0.25, 1, 3.75, -0.25, -1e-20, 1e9 + 0.5} {
		f := Fract(x)
		if f < 0 || f >= 1 {
			t.Errorf("Fract(%v) = %v, want [0,1)", x, f)
		}
	}
	if got := Fract(-0.25); math.Abs(got-0.75) > 1e-12 {
		t.Errorf("Fract(-0.25) = %v, want 0.75", got)
	}
}

func TestWrapIsExactForIntegralOffsets(t *testing.T) {
	const period = 64
	for x := -3.0; x < 70; x++ {
		a := Wrap(x, period)
		b := Wrap(x+period, period)
		if a != b {
			t.Errorf("Wrap(%v) = %v but Wrap(%v) = %v", x, a, x+period, b)
		}
		if a < 0 || a >= period {
			t.Errorf("Wrap(%v) = %v out of range", x, a)
		}
	}
}

func TestFromQuatMatchesRotate(t *testing.T) {
	q := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	m := FromQuat(q)
	got := m.MulVec3Dir(V3(1, 0, 0))
	want := FromMgl(q.Rotate(mgl64.Vec3{1, 0, 0}))
	if got.Distance(want) > 1e-9 {
		t.Errorf("FromQuat rotated (1,0,0) to %v, want %v", got, want)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 2, 2)))
	p := V3(0.3, -1.2, 4)
	back := m.Inverse().MulVec3(m.MulVec3(p))
	if back.Distance(p) > 1e-9 {
		t.Errorf("inverse round trip = %v, want %v", back, p)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 2, 2)))

	for b.Loop() {
		_ = m.Inverse()
	}
}
