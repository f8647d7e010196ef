package render

import (
	"math"
	"testing"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

func TestPlaneDistanceToPoint(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float64
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := plane.DistanceToPoint(tc.point)
			if math.Abs(dist-tc.expected) > 1e-9 {
				t.Errorf("got %v, want %v", dist, tc.expected)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	if math.Abs(plane.Normal.Len()-1.0) > 1e-9 {
		t.Errorf("normalized normal length = %v, want 1.0", plane.Normal.Len())
	}
	if math.Abs(plane.D-2.0) > 1e-9 {
		t.Errorf("D = %v, want 2.0", plane.D)
	}
}

func TestAABBTransformAndExpand(t *testing.T) {
	box := AABB{Min: math3d.V3(-1, -1, -1), Max: math3d.V3(1, 1, 1)}

	moved := box.Transform(math3d.Translate(math3d.V3(10, 20, 30)))
	if moved.Min != math3d.V3(9, 19, 29) || moved.Max != math3d.V3(11, 21, 31) {
		t.Errorf("translated box = %v", moved)
	}

	grown := box.Expand(0.5)
	if grown.Size() != math3d.V3(3, 3, 3) {
		t.Errorf("expanded size = %v, want (3,3,3)", grown.Size())
	}
	if !grown.ContainsPoint(math3d.V3(1.4, -1.4, 0)) {
		t.Error("expanded box should contain point inside the margin")
	}
}

func TestAABBTransformRotated(t *testing.T) {
	box := AABB{Min: math3d.V3(-1, -1, -1), Max: math3d.V3(1, 1, 1)}
	got := box.Transform(math3d.RotateY(math.Pi / 4))
	r := math.Sqrt2
	if math.Abs(got.Max.X-r) > 1e-9 || math.Abs(got.Max.Z-r) > 1e-9 || math.Abs(got.Max.Y-1) > 1e-9 {
		t.Errorf("rotated box = %v, want half extents (%v, 1, %v)", got, r, r)
	}
}

func TestFrustumIntersectAABB(t *testing.T) {
	proj := math3d.Perspective(math.Pi/3, 16.0/9.0, 1.0, 100.0)
	frustum := NewFrustumFromMatrix(proj)

	for i, plane := range frustum.Planes {
		if math.Abs(plane.Normal.Len()-1.0) > 1e-6 {
			t.Errorf("plane %d normal length = %v, want 1.0", i, plane.Normal.Len())
		}
	}

	tests := []struct {
		name     string
		box      AABB
		expected bool
	}{
		{"fully inside", AABB{math3d.V3(-1, -1, -10), math3d.V3(1, 1, -5)}, true},
		{"crossing near plane", AABB{math3d.V3(-1, -1, -2), math3d.V3(1, 1, 2)}, true},
		{"behind camera", AABB{math3d.V3(-1, -1, 5), math3d.V3(1, 1, 10)}, false},
		{"beyond far plane", AABB{math3d.V3(-1, -1, -150), math3d.V3(1, 1, -120)}, false},
		{"far to the right", AABB{math3d.V3(100, -1, -10), math3d.V3(110, 1, -5)}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := frustum.IntersectAABB(tc.box); got != tc.expected {
				t.Errorf("IntersectAABB(%v) = %v, want %v", tc.box, got, tc.expected)
			}
		})
	}
}

func TestFrustumFollowsCamera(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(math3d.V3(4.2, 0, 0))
	cam.LookAt(math3d.Zero3())
	frustum := NewFrustumFromMatrix(cam.ViewProjectionMatrix())

	if !frustum.ContainsPoint(math3d.Zero3()) {
		t.Error("origin should be visible from a camera looking at it")
	}
	if frustum.ContainsPoint(math3d.V3(10, 0, 0)) {
		t.Error("point behind the camera should not be visible")
	}
}

func BenchmarkFrustumIntersectAABB(b *testing.B) {
	frustum := NewFrustumFromMatrix(math3d.Perspective(math.Pi/3, 1, 0.1, 100))
	box := AABB{Min: math3d.V3(-1, -1, -6), Max: math3d.V3(1, 1, -4)}
	for b.Loop() {
		frustum.IntersectAABB(box)
	}
}
