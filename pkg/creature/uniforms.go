package creature

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/taigrr/ouroboros/pkg/math3d"
	"github.com/taigrr/ouroboros/pkg/shading"
)

// UniformSink receives the per-frame uniform set. Both the software program
// and the GL program implement it.
type UniformSink interface {
	SetUniforms(u shading.Uniforms)
}

// ComputeUniforms derives the shader parameters from a state snapshot.
// It has no side effects.
func ComputeUniforms(s State, t Tuning, clock float64) shading.Uniforms {
	return shading.Uniforms{
		Time:            clock,
		PathProgress:    s.Progress,
		WiggleSpeed:     t.WiggleSpeed,
		WiggleAmplitude: s.Wiggle,
		PulseAmplitude:  t.PulseAmplitude,
		LightDirection:  t.LightDirection,
		CameraPosition:  math3d.V3(0, 0, s.CameraDistance),
		EnvMapIntensity: t.EnvMapIntensity,
	}
}

// PushUniforms hands u to every non-nil sink.
func PushUniforms(u shading.Uniforms, sinks ...UniformSink) {
	for _, s := range sinks {
		if s != nil {
			s.SetUniforms(u)
		}
	}
}

// Pose holds the object transforms for one frame.
type Pose struct {
	Body math3d.Mat4
	Head math3d.Mat4
	Eyes [2]math3d.Mat4
}

// Pose places the head at the current path point, moved with the body's
// wiggle so it stays attached, and hangs the eyes off it.
func (c *Controller) Pose(u shading.Uniforms) Pose {
	s := &c.state
	t := &c.tuning

	pos := c.path.PointAt(s.Progress)
	// Relative progress 0 and radius scale 0: the lateral wiggle only.
	pos, _ = shading.Displace(u, pos, math3d.Zero3(), math3d.V3(0, s.Progress, 0))

	nod := mgl64.QuatRotate(-t.NodAngle*s.Nod, mgl64.Vec3{1, 0, 0})
	rot := s.Head.Mul(nod).Normalize()
	scale := 1 + t.NodScale*s.Nod
	head := math3d.Compose(pos, rot, math3d.V3(scale, scale, scale))

	p := Pose{Body: math3d.Identity(), Head: head}
	for i, q := range s.Eyes {
		p.Eyes[i] = head.Mul(math3d.Translate(eyeOffsets[i])).Mul(math3d.FromQuat(q))
	}
	return p
}
