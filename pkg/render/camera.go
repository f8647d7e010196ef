package render

import (
	"math"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

// Camera is a perspective eye aimed at a fixed point. The creature
// controller moves it along +Z as the hover spring dollies in and out.
type Camera struct {
	eye, target, up math3d.Vec3

	fovY, aspect, near, far float64

	// viewProj is rebuilt lazily after any setter runs.
	viewProj math3d.Mat4
	stale    bool
}

// NewCamera returns a 45° camera on the +Z axis, five units from the origin.
func NewCamera() *Camera {
	return &Camera{
		eye:    math3d.V3(0, 0, 5),
		up:     math3d.Up(),
		fovY:   math.Pi / 4,
		aspect: 1,
		near:   0.1,
		far:    100,
		stale:  true,
	}
}

// Position is the eye point in world space.
func (c *Camera) Position() math3d.Vec3 { return c.eye }

func (c *Camera) SetPosition(eye math3d.Vec3) {
	c.eye = eye
	c.stale = true
}

func (c *Camera) LookAt(target math3d.Vec3) {
	c.target = target
	c.stale = true
}

// SetFOV takes the vertical field of view in radians.
func (c *Camera) SetFOV(fovY float64) {
	c.fovY = fovY
	c.stale = true
}

// SetAspectRatio takes width over height. Non-positive ratios are ignored.
func (c *Camera) SetAspectRatio(aspect float64) {
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.stale = true
}

// ViewProjectionMatrix maps world space to clip space.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.stale {
		proj := math3d.Perspective(c.fovY, c.aspect, c.near, c.far)
		c.viewProj = proj.Mul(math3d.LookAt(c.eye, c.target, c.up))
		c.stale = false
	}
	return c.viewProj
}

// WorldToScreen projects p into a width×height pixel grid with y down. The
// last result is false when p falls outside the view volume.
func (c *Camera) WorldToScreen(p math3d.Vec3, width, height int) (x, y, depth float64, ok bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	if math.Abs(ndc.X) > 1 || math.Abs(ndc.Y) > 1 || math.Abs(ndc.Z) > 1 {
		return 0, 0, 0, false
	}
	return (ndc.X + 1) / 2 * float64(width), (1 - ndc.Y) / 2 * float64(height), ndc.Z, true
}

// Unproject turns normalized device coordinates (y up) into a ray leaving
// the eye.
func (c *Camera) Unproject(ndcX, ndcY float64) (origin, dir math3d.Vec3) {
	inv := c.ViewProjectionMatrix().Inverse()
	through := inv.MulVec4(math3d.V4(ndcX, ndcY, 0.5, 1)).PerspectiveDivide()
	return c.eye, through.Sub(c.eye).Normalize()
}

// PointerToPlaneZ casts a ray through a normalized pointer position
// ([0,1]², y down) and intersects it with the plane z = planeZ.
// It reports false when the ray runs parallel to or away from the plane.
func (c *Camera) PointerToPlaneZ(px, py, planeZ float64) (math3d.Vec3, bool) {
	origin, dir := c.Unproject(px*2-1, 1-py*2)
	if math.Abs(dir.Z) < 1e-9 {
		return math3d.Vec3{}, false
	}
	t := (planeZ - origin.Z) / dir.Z
	if t <= 0 {
		return math3d.Vec3{}, false
	}
	return origin.Add(dir.Scale(t)), true
}
