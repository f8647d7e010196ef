package models

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestSaveGLBRoundTrip(t *testing.T) {
	body, err := BuildTube(DefaultPath(), 16, 0.1, 6)
	if err != nil {
		t.Fatalf("BuildTube: %v", err)
	}
	albedo := image.NewRGBA(image.Rect(0, 0, 4, 4))
	albedo.Set(1, 2, color.RGBA{200, 100, 50, 255})
	body.Material = Material{
		Name:      "scales",
		BaseColor: [4]float64{1, 1, 1, 1},
		Roughness: 0.6,
		BaseMap:   albedo,
	}

	eye, err := NewSphere("eye", 0.05, 8, 6)
	if err != nil {
		t.Fatalf("NewSphere: %v", err)
	}

	path := filepath.Join(t.TempDir(), "creature.glb")
	offset := math3d.V3(1, 2, 3)
	err = SaveGLB(path, []ExportNode{
		{Mesh: body, Transform: math3d.Identity()},
		{Mesh: eye, Transform: math3d.Translate(offset)},
	})
	if err != nil {
		t.Fatalf("SaveGLB: %v", err)
	}

	meshes, err := LoadGLB(path)
	if err != nil {
		t.Fatalf("LoadGLB: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("loaded %d meshes, want 2", len(meshes))
	}

	gotBody := meshes[0]
	if gotBody.Name != "body" || gotBody.VertexCount() != body.VertexCount() || gotBody.TriangleCount() != body.TriangleCount() {
		t.Errorf("body = %q %d verts %d tris", gotBody.Name, gotBody.VertexCount(), gotBody.TriangleCount())
	}
	if !gotBody.HasTubeInfo {
		t.Fatal("tube info attribute was not read back")
	}
	for i, v := range gotBody.Vertices {
		if v.TubeInfo.Sub(body.Vertices[i].TubeInfo).Len() > 1e-6 {
			t.Fatalf("vertex %d tube info = %v, want %v", i, v.TubeInfo, body.Vertices[i].TubeInfo)
		}
	}
	if gotBody.Material.BaseMap == nil {
		t.Fatal("albedo map was not embedded")
	}
	r, g, b, _ := gotBody.Material.BaseMap.At(1, 2).RGBA()
	if r>>8 != 200 || g>>8 != 100 || b>>8 != 50 {
		t.Errorf("albedo pixel = (%d,%d,%d)", r>>8, g>>8, b>>8)
	}

	gotEye := meshes[1]
	if gotEye.HasTubeInfo {
		t.Error("sphere should not carry tube info")
	}
	if d := gotEye.Center().Distance(offset); d > 1e-4 {
		t.Errorf("eye transform not baked: center %v", gotEye.Center())
	}
}
