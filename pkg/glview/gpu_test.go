package glview

import (
	"testing"

	"github.com/taigrr/ouroboros/pkg/math3d"
	"github.com/taigrr/ouroboros/pkg/models"
)

func TestInterleave(t *testing.T) {
	m := models.NewMesh("tri")
	m.Vertices = []models.MeshVertex{
		{Position: math3d.V3(1, 2, 3), Normal: math3d.V3(0, 0, 1), UV: math3d.V2(0.25, 0.75), TubeInfo: math3d.V3(4, 0.5, 1)},
		{Position: math3d.V3(0, 1, 0)},
		{Position: math3d.V3(1, 0, 0)},
	}
	m.Faces = []models.Face{{V: [3]int{0, 2, 1}}}

	verts, idx := interleave(m)
	if len(verts) != 3*vertexStride {
		t.Fatalf("len(verts) = %d", len(verts))
	}
	want := []float32{1, 2, 3, 0, 0, 1, 0.25, 0.75, 4, 0.5, 1}
	for i, w := range want {
		if verts[i] != w {
			t.Errorf("verts[%d] = %v, want %v", i, verts[i], w)
		}
	}
	if len(idx) != 3 || idx[0] != 0 || idx[1] != 2 || idx[2] != 1 {
		t.Errorf("indices = %v", idx)
	}
}

func TestMat4fKeepsColumnMajor(t *testing.T) {
	m := mat4f(math3d.Translate(math3d.V3(5, 6, 7)))
	if m[12] != 5 || m[13] != 6 || m[14] != 7 || m[15] != 1 {
		t.Errorf("translation column = %v", m[12:])
	}
}

func TestNormalMat3(t *testing.T) {
	// A non-uniform scale: normals scale by the reciprocal.
	n := normalMat3(math3d.Scale(math3d.V3(2, 4, 1)).Mul(math3d.Translate(math3d.V3(9, 9, 9))))
	want := [9]float32{0.5, 0, 0, 0, 0.25, 0, 0, 0, 1}
	for i := range want {
		if d := n[i] - want[i]; d > 1e-6 || d < -1e-6 {
			t.Fatalf("normal matrix = %v, want %v", n, want)
		}
	}
}

func TestNormalizePointer(t *testing.T) {
	tests := []struct {
		x, y         float64
		w, h         int
		wantX, wantY float64
		wantOK       bool
	}{
		{400, 300, 800, 600, 0.5, 0.5, true},
		{0, 600, 800, 600, 0, 1, true},
		{-20, 900, 800, 600, 0, 1, true},
		{10, 10, 0, 600, 0, 0, false},
	}
	for _, tc := range tests {
		x, y, ok := normalizePointer(tc.x, tc.y, tc.w, tc.h)
		if ok != tc.wantOK || x != tc.wantX || y != tc.wantY {
			t.Errorf("normalizePointer(%v, %v, %d, %d) = %v, %v, %v", tc.x, tc.y, tc.w, tc.h, x, y, ok)
		}
	}
}
