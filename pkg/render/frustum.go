package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

func planeFromRow(r mgl64.Vec4) Plane {
	return Plane{Normal: math3d.V3(r[0], r[1], r[2]), D: r[3]}
}

// Normalize scales the equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// DistanceToPoint is positive on the side the normal points to.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Plane indices in Frustum.Planes.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// Frustum is the view volume bounded by six inward-facing planes.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustumFromMatrix extracts the planes of a view-projection matrix
// (Gribb/Hartmann): each is row 3 plus or minus one of rows 0 to 2.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	mm := mgl64.Mat4(m)
	w := mm.Row(3)

	var f Frustum
	for axis := range 3 {
		r := mm.Row(axis)
		f.Planes[2*axis] = planeFromRow(w.Add(r))
		f.Planes[2*axis+1] = planeFromRow(w.Sub(r))
	}
	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// IntersectAABB reports whether any part of box may lie inside. For each
// plane only the box corner furthest along the normal is tested.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, p := range f.Planes {
		corner := box.Min
		if p.Normal.X >= 0 {
			corner.X = box.Max.X
		}
		if p.Normal.Y >= 0 {
			corner.Y = box.Max.Y
		}
		if p.Normal.Z >= 0 {
			corner.Z = box.Max.Z
		}
		if p.DistanceToPoint(corner) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside every plane.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// Center returns the midpoint of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box's extent along each axis.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Expand grows the box by margin on every side.
func (b AABB) Expand(margin float64) AABB {
	m := math3d.V3(margin, margin, margin)
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// Transform bounds the box after an affine transform (Arvo's method):
// the center moves with m and each half extent grows by |m|.
func (b AABB) Transform(m math3d.Mat4) AABB {
	c := m.MulVec3(b.Center())
	h := b.Size().Scale(0.5)

	var e [3]float64
	for row := range 3 {
		e[row] = math.Abs(m[row])*h.X + math.Abs(m[row+4])*h.Y + math.Abs(m[row+8])*h.Z
	}
	ext := math3d.V3(e[0], e[1], e[2])
	return AABB{Min: c.Sub(ext), Max: c.Add(ext)}
}

// ContainsPoint reports whether p lies inside or on the box.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}
