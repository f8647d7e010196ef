package models

import (
	"errors"
	"math"
	"testing"
)

func TestBuildTubeLayout(t *testing.T) {
	const segments, radial = 32, 8
	curve := DefaultPath()
	mesh, err := BuildTube(curve, segments, 0.1, radial)
	if err != nil {
		t.Fatalf("BuildTube: %v", err)
	}

	if got, want := mesh.VertexCount(), (segments+1)*(radial+1); got != want {
		t.Errorf("VertexCount = %d, want %d", got, want)
	}
	if got, want := mesh.TriangleCount(), segments*radial*2; got != want {
		t.Errorf("TriangleCount = %d, want %d", got, want)
	}
	if !mesh.HasTubeInfo {
		t.Error("tube mesh should carry tube info")
	}

	for i := 0; i <= segments; i++ {
		for j := 0; j <= radial; j++ {
			v := mesh.Vertices[i*(radial+1)+j]
			u := float64(i) / segments
			if v.UV.X != u || v.UV.Y != float64(j)/radial {
				t.Fatalf("vertex (%d,%d) UV = %v", i, j, v.UV)
			}
			if v.TubeInfo.X != math.Floor(u*segments) || v.TubeInfo.Y != u || v.TubeInfo.Z != 1 {
				t.Fatalf("vertex (%d,%d) TubeInfo = %v", i, j, v.TubeInfo)
			}
		}
	}
}

func TestBuildTubeSeamsCoincide(t *testing.T) {
	const segments, radial = 24, 6
	mesh, err := BuildTube(DefaultPath(), segments, 0.1, radial)
	if err != nil {
		t.Fatalf("BuildTube: %v", err)
	}
	ring := radial + 1

	for j := range ring {
		first := mesh.Vertices[j].Position
		last := mesh.Vertices[segments*ring+j].Position
		if first.Distance(last) > 1e-4 {
			t.Errorf("ring seam vertex %d: %v vs %v", j, first, last)
		}
	}
	for i := 0; i <= segments; i++ {
		a := mesh.Vertices[i*ring].Position
		b := mesh.Vertices[i*ring+radial].Position
		if a.Distance(b) > 1e-9 {
			t.Errorf("radial seam on ring %d: %v vs %v", i, a, b)
		}
	}
}

func TestBuildTubeFacesPointOutward(t *testing.T) {
	curve := DefaultPath()
	const radius = 0.1
	mesh, err := BuildTube(curve, 48, radius, 8)
	if err != nil {
		t.Fatalf("BuildTube: %v", err)
	}

	for i, f := range mesh.Faces {
		p0 := mesh.Vertices[f.V[0]].Position
		p1 := mesh.Vertices[f.V[1]].Position
		p2 := mesh.Vertices[f.V[2]].Position
		faceNormal := p1.Sub(p0).Cross(p2.Sub(p0))
		if faceNormal.Dot(mesh.Vertices[f.V[0]].Normal) <= 0 {
			t.Fatalf("face %d winds inward", i)
		}
	}

	for i, v := range mesh.Vertices {
		center := curve.PointAt(v.TubeInfo.Y)
		if d := v.Position.Distance(center); math.Abs(d-radius) > 1e-6 {
			t.Fatalf("vertex %d is %v from the path, want %v", i, d, radius)
		}
	}
}

func TestBuildTubeRejectsBadParams(t *testing.T) {
	tests := []struct {
		name     string
		segments int
		radius   float64
		radial   int
	}{
		{"too few segments", 2, 0.1, 8},
		{"too few radial segments", 32, 0.1, 2},
		{"zero radius", 32, 0, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildTube(DefaultPath(), tc.segments, tc.radius, tc.radial)
			if !errors.Is(err, ErrInvalidTube) {
				t.Errorf("err = %v, want ErrInvalidTube", err)
			}
		})
	}
}

func TestNewSphereFacesPointOutward(t *testing.T) {
	mesh, err := NewSphere("eye", 0.5, 12, 8)
	if err != nil {
		t.Fatalf("NewSphere: %v", err)
	}
	if got, want := mesh.VertexCount(), 13*9; got != want {
		t.Errorf("VertexCount = %d, want %d", got, want)
	}
	if got, want := mesh.TriangleCount(), 12*(8-1)*2; got != want {
		t.Errorf("TriangleCount = %d, want %d", got, want)
	}

	for i, f := range mesh.Faces {
		p0 := mesh.Vertices[f.V[0]].Position
		p1 := mesh.Vertices[f.V[1]].Position
		p2 := mesh.Vertices[f.V[2]].Position
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		centroid := p0.Add(p1).Add(p2).Scale(1.0 / 3)
		if n.Dot(centroid) <= 0 {
			t.Fatalf("face %d winds inward", i)
		}
	}
}

func BenchmarkBuildTube(b *testing.B) {
	curve := DefaultPath()
	for b.Loop() {
		if _, err := BuildTube(curve, 200, 0.1, 16); err != nil {
			b.Fatal(err)
		}
	}
}
