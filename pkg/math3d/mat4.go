package math3d

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Mat4 is a column-major 4x4 matrix with the same memory layout as
// mgl64.Mat4, so the two convert freely and GL uniforms upload it as is.
//
//	| 0  4  8  12 |
//	| 1  5  9  13 |
//	| 2  6  10 14 |
//	| 3  7  11 15 |
type Mat4 [16]float64

func (m Mat4) mgl() mgl64.Mat4 { return mgl64.Mat4(m) }

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4(mgl64.Ident4())
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4(mgl64.Translate3D(v.X, v.Y, v.Z))
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4(mgl64.Scale3D(v.X, v.Y, v.Z))
}

// RotateY rotates counter-clockwise about +Y, looking down the axis.
func RotateY(angle float64) Mat4 {
	return Mat4(mgl64.HomogRotate3DY(angle))
}

// Rotate rotates by angle radians about axis.
func Rotate(axis Vec3, angle float64) Mat4 {
	return Mat4(mgl64.HomogRotate3D(angle, axis.Normalize().Mgl()))
}

// LookAt creates a right-handed view matrix looking from eye at center.
func LookAt(eye, center, up Vec3) Mat4 {
	return Mat4(mgl64.LookAtV(eye.Mgl(), center.Mgl(), up.Mgl()))
}

// Perspective creates an OpenGL projection (clip z in [-w, w]).
// fovy is the vertical field of view in radians and aspect is width/height.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	return Mat4(mgl64.Perspective(fovy, aspect, near, far))
}

// Mul returns a * b.
func (m Mat4) Mul(b Mat4) Mat4 {
	return Mat4(m.mgl().Mul4(b.mgl()))
}

// MulVec3 transforms v as a point and divides by w.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	r := m.mgl().Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 1})
	if r[3] == 0 {
		r[3] = 1
	}
	return Vec3{r[0] / r[3], r[1] / r[3], r[2] / r[3]}
}

// MulVec3Dir transforms v as a direction, ignoring translation.
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return FromMgl(m.mgl().Mat3().Mul3x1(v.Mgl()))
}

// MulVec4 transforms a homogeneous vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	r := m.mgl().Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, v.W})
	return Vec4{r[0], r[1], r[2], r[3]}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4(m.mgl().Transpose())
}

// Inverse returns the inverse, or the identity for a singular matrix.
func (m Mat4) Inverse() Mat4 {
	if m.mgl().Det() == 0 {
		return Identity()
	}
	return Mat4(m.mgl().Inv())
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// FromQuat converts a quaternion to a rotation matrix.
func FromQuat(q mgl64.Quat) Mat4 {
	return Mat4(q.Normalize().Mat4())
}

// Compose builds translate * rotate * scale.
func Compose(pos Vec3, rot mgl64.Quat, scale Vec3) Mat4 {
	return Translate(pos).Mul(FromQuat(rot)).Mul(Scale(scale))
}
