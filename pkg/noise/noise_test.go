package noise

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestSampleRangeAndDeterminism(t *testing.T) {
	a := New(42)
	b := New(42)
	rng := rand.New(rand.NewPCG(1, 2))

	for range 5000 {
		x := (rng.Float64() - 0.5) * 200
		y := (rng.Float64() - 0.5) * 200
		z := (rng.Float64() - 0.5) * 200

		v2 := a.Sample2(x, y)
		if v2 < -1 || v2 > 1 {
			t.Fatalf("Sample2(%v, %v) = %v out of [-1,1]", x, y, v2)
		}
		if w := b.Sample2(x, y); math.Float64bits(w) != math.Float64bits(v2) {
			t.Fatalf("Sample2 not deterministic: %v vs %v", v2, w)
		}

		v3 := a.Sample3(x, y, z)
		if v3 < -1 || v3 > 1 {
			t.Fatalf("Sample3 = %v out of [-1,1]", v3)
		}
		if w := b.Sample3(x, y, z); math.Float64bits(w) != math.Float64bits(v3) {
			t.Fatalf("Sample3 not deterministic: %v vs %v", v3, w)
		}
	}
}

func TestSeedsDiffer(t *testing.T) {
	a := New(1)
	b := New(2)
	same := 0
	for i := range 100 {
		x := float64(i) * 0.37
		if a.Sample2(x, x*0.5) == b.Sample2(x, x*0.5) {
			same++
		}
	}
	if same > 10 {
		t.Errorf("different seeds produced %d/100 identical samples", same)
	}
}

func TestNonFiniteInputs(t *testing.T) {
	f := New(7)
	tests := []struct {
		name string
		got  float64
	}{
		{"nan x", f.Sample2(math.NaN(), 0)},
		{"inf y", f.Sample2(0, math.Inf(1))},
		{"nan z", f.Sample3(0, 0, math.NaN())},
		{"inf u", f.Tileable(math.Inf(-1), 0, 4)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != 0 {
				t.Errorf("got %v, want 0", tc.got)
			}
		})
	}
}

func TestTileablePeriodic(t *testing.T) {
	f := New(99)
	for i := range 64 {
		v := float64(i) / 64
		left := f.Tileable(0, v, 4)
		right := f.Tileable(1, v, 4)
		if left != right {
			t.Errorf("Tileable(0,%v) = %v, Tileable(1,%v) = %v", v, left, v, right)
		}
		top := f.Tileable(v, 0, 4)
		bottom := f.Tileable(v, 1, 4)
		if top != bottom {
			t.Errorf("Tileable(%v,0) = %v, Tileable(%v,1) = %v", v, top, v, bottom)
		}
	}
}

func TestFBMRange(t *testing.T) {
	f := New(5)
	for i := range 256 {
		u := float64(i%16) / 16
		v := float64(i/16) / 16
		n := f.FBM(u, v, 3, 4, 0.5)
		if n < -1 || n > 1 {
			t.Fatalf("FBM(%v,%v) = %v out of range", u, v, n)
		}
	}
}

func BenchmarkTileable(b *testing.B) {
	f := New(1)
	for b.Loop() {
		_ = f.Tileable(0.3, 0.7, 8)
	}
}
