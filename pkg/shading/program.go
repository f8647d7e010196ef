package shading

import (
	"github.com/taigrr/ouroboros/pkg/math3d"
	"github.com/taigrr/ouroboros/pkg/render"
)

// Varying slots written by Program.Vertex.
const (
	varPosX = iota
	varPosY
	varPosZ
	varNormX
	varNormY
	varNormZ
	varU
	varV
	varDistortion
)

// Program runs Displace and Shade inside render.Rasterizer.
type Program struct {
	material Material
	env      *render.CubeMap
	uniforms Uniforms

	model     math3d.Mat4
	normalMat math3d.Mat4
	mvp       math3d.Mat4
}

// NewProgram checks the material and binds it to an environment map.
// env may be nil to disable reflections.
func NewProgram(m Material, env *render.CubeMap) (*Program, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &Program{
		material:  m,
		env:       env,
		uniforms:  DefaultUniforms(),
		model:     math3d.Identity(),
		normalMat: math3d.Identity(),
		mvp:       math3d.Identity(),
	}, nil
}

// Material returns the bound material.
func (p *Program) Material() *Material {
	return &p.material
}

// SetEnvironment swaps the reflection map.
func (p *Program) SetEnvironment(env *render.CubeMap) {
	p.env = env
}

// SetUniforms replaces the per-frame parameters.
func (p *Program) SetUniforms(u Uniforms) {
	p.uniforms = u
}

// Uniforms returns the parameters of the last SetUniforms call.
func (p *Program) Uniforms() Uniforms {
	return p.uniforms
}

// MaxDisplacement reports the padding the rasterizer adds to mesh bounds.
func (p *Program) MaxDisplacement() float64 {
	if p.material.Rigid {
		return 0
	}
	return MaxDisplacement(p.uniforms)
}

// Bind caches the matrices for one draw.
func (p *Program) Bind(model, viewProj math3d.Mat4) {
	p.model = model
	p.normalMat = model.Inverse().Transpose()
	p.mvp = viewProj.Mul(model)
}

// Vertex implements render.Program.
func (p *Program) Vertex(in *render.VertexInput) (math3d.Vec4, render.Varyings) {
	pos := in.Position
	var distortion float64
	if !p.material.Rigid {
		pos, distortion = Displace(p.uniforms, in.Position, in.Normal, in.TubeInfo)
	}

	world := p.model.MulVec3(pos)
	normal := p.normalMat.MulVec3Dir(in.Normal)

	var out render.Varyings
	out[varPosX], out[varPosY], out[varPosZ] = world.X, world.Y, world.Z
	out[varNormX], out[varNormY], out[varNormZ] = normal.X, normal.Y, normal.Z
	out[varU], out[varV] = in.UV.X, in.UV.Y
	out[varDistortion] = distortion

	return p.mvp.MulVec4(math3d.V4FromV3(pos, 1)), out
}

// Fragment implements render.Program.
func (p *Program) Fragment(in *render.Varyings) (render.Color, bool) {
	s := Surface{
		Position:   math3d.V3(in[varPosX], in[varPosY], in[varPosZ]),
		Normal:     math3d.V3(in[varNormX], in[varNormY], in[varNormZ]),
		UV:         math3d.V2(in[varU], in[varV]),
		Distortion: in[varDistortion],
	}
	c := Shade(p.uniforms, &p.material, p.env, s)
	return render.RGB(to8(c.X), to8(c.Y), to8(c.Z)), true
}

func to8(x float64) uint8 {
	return uint8(math3d.Clamp(x, 0, 1)*255 + 0.5)
}
