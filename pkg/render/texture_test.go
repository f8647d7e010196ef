package render

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

func TestTextureSampleWrap(t *testing.T) {
	tex := NewTexture(4, 4)
	tex.Nearest = true
	for y := range 4 {
		for x := range 4 {
			tex.SetPixel(x, y, RGB(uint8(x*60), uint8(y*60), 0))
		}
	}

	tests := []struct {
		name string
		u, v float64
		want Color
	}{
		{"inside", 0.3, 0.6, RGB(60, 120, 0)},
		{"wraps past one", 1.3, 1.6, RGB(60, 120, 0)},
		{"wraps negative", -0.7, -0.4, RGB(60, 120, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tex.Sample(tc.u, tc.v); got != tc.want {
				t.Errorf("Sample(%v, %v) = %v, want %v", tc.u, tc.v, got, tc.want)
			}
		})
	}
}

func TestTextureBilinearSeam(t *testing.T) {
	tex := NewTexture(2, 1)
	tex.SetPixel(0, 0, RGB(0, 0, 0))
	tex.SetPixel(1, 0, RGB(200, 200, 200))

	// Exactly on the left edge the repeat filter blends the last and first
	// columns equally.
	got := tex.Sample(0, 0.5)
	if got.R != 100 {
		t.Errorf("seam sample R = %d, want 100", got.R)
	}
}

func TestTextureEncodePNG(t *testing.T) {
	tex := NewTexture(3, 2)
	tex.SetPixel(2, 1, RGB(10, 20, 30))

	var buf bytes.Buffer
	if err := tex.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	back := TextureFromImage(img)
	if back.GetPixel(2, 1) != RGB(10, 20, 30) {
		t.Errorf("round-tripped pixel = %v", back.GetPixel(2, 1))
	}
}

func TestCubeMapFaceSelection(t *testing.T) {
	var cm CubeMap
	for i := range cm.Faces {
		tex := NewTexture(1, 1)
		tex.SetPixel(0, 0, RGB(uint8(i*40), 0, 0))
		cm.Faces[i] = tex
	}

	tests := []struct {
		dir  math3d.Vec3
		face int
	}{
		{math3d.V3(1, 0.1, 0.2), FacePosX},
		{math3d.V3(-1, 0.1, 0.2), FaceNegX},
		{math3d.V3(0.1, 1, 0.2), FacePosY},
		{math3d.V3(0.1, -1, 0.2), FaceNegY},
		{math3d.V3(0.1, 0.2, 1), FacePosZ},
		{math3d.V3(0.1, 0.2, -1), FaceNegZ},
	}

	for _, tc := range tests {
		got := cm.Sample(tc.dir)
		want := float64(tc.face*40) / 255
		if math.Abs(got.X-want) > 1e-9 {
			t.Errorf("Sample(%v) red = %v, want face %d (%v)", tc.dir, got.X, tc.face, want)
		}
	}
}

func TestNeutralCubeMapGradient(t *testing.T) {
	cm := NeutralCubeMap(8)
	up := cm.Sample(math3d.V3(0, 1, 0))
	down := cm.Sample(math3d.V3(0, -1, 0))
	if up.X <= down.X {
		t.Errorf("sky %v should be brighter than floor %v", up, down)
	}
}

func TestLoadCubeMapMissingFile(t *testing.T) {
	var paths [6]string
	for i := range paths {
		paths[i] = t.TempDir() + "/missing.png"
	}
	if _, err := LoadCubeMap(paths); err == nil {
		t.Error("expected error for missing cube faces")
	}
}
