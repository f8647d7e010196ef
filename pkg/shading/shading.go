// Package shading holds the creature's vertex and fragment program: a
// travelling-wave displacement of the tube and a small Cook-Torrance surface
// model. The same math runs on the CPU through render.Rasterizer and on the
// GPU as the GLSL sources in this package.
package shading

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/ouroboros/pkg/math3d"
	"github.com/taigrr/ouroboros/pkg/render"
	"github.com/taigrr/ouroboros/pkg/texgen"
)

// Displacement and lighting constants shared by the CPU and GLSL programs.
const (
	WaveCount     = 3.0 // wiggle wavelengths along the body
	PulseCount    = 2.0 // pulse wavelengths along the body
	PulseSpeed    = 2.0 // radians per second
	WiggleFalloff = 0.5 // wiggle amplitude lost at the tail
	PulseFalloff  = 0.7 // pulse amplitude lost at the tail

	LightIntensity = 3.0
	AmbientLevel   = 0.06
	TintStrength   = 2.5
	Gamma          = 2.2
)

// WarmTint is added in proportion to the surface distortion.
var WarmTint = math3d.V3(1.0, 0.55, 0.25)

// ErrMissingTexture is returned when a textured material lacks one of its maps.
var ErrMissingTexture = errors.New("material texture missing")

// Uniforms is the per-frame parameter set pushed into a program.
type Uniforms struct {
	Time            float64
	PathProgress    float64
	WiggleSpeed     float64
	WiggleAmplitude float64
	PulseAmplitude  float64
	LightDirection  math3d.Vec3 // towards the light, need not be unit length
	CameraPosition  math3d.Vec3
	EnvMapIntensity float64
}

// DefaultUniforms returns the resting values used before the first update.
func DefaultUniforms() Uniforms {
	return Uniforms{
		WiggleSpeed:     3,
		WiggleAmplitude: 0.04,
		PulseAmplitude:  0.015,
		LightDirection:  math3d.V3(0.5, 0.8, 1.0),
		CameraPosition:  math3d.V3(0, 0, 4.2),
		EnvMapIntensity: 0.6,
	}
}

// Material describes a surface. When Maps is nil the constant Color and
// Roughness are used instead of the synthesized textures.
type Material struct {
	Name      string
	Maps      *texgen.Set
	Color     math3d.Vec3 // linear RGB
	Roughness float64
	Metallic  float64
	Rigid     bool // skip displacement
}

// Validate reports ErrMissingTexture for a textured material with a nil map.
func (m *Material) Validate() error {
	if m.Maps == nil {
		return nil
	}
	for _, k := range texgen.Kinds {
		if m.Maps.Map(k) == nil {
			return fmt.Errorf("material %q %s map: %w", m.Name, k, ErrMissingTexture)
		}
	}
	return nil
}

// lateralDirection approximates the body binormal by the loop's radial
// direction in the XY plane. Every vertex of a ring shares nearly the same
// value, so the ring moves as a whole and keeps its shape.
func lateralDirection(pos math3d.Vec3) math3d.Vec3 {
	d := math3d.V3(pos.X, pos.Y, 0)
	if d.LenSq() < 1e-12 {
		return math3d.V3(1, 0, 0)
	}
	return d.Normalize()
}

// Displace moves a tube vertex in object space. p is measured from the
// head, so the body behind the head is damped progressively towards the
// tail. It returns the new position and the signed distortion.
func Displace(u Uniforms, pos, normal, tubeInfo math3d.Vec3) (math3d.Vec3, float64) {
	p := math3d.Fract(u.PathProgress - tubeInfo.Y)

	wiggle := math.Sin(p*WaveCount*2*math.Pi-u.Time*u.WiggleSpeed) *
		u.WiggleAmplitude * (1 - WiggleFalloff*p)
	pulse := math.Sin(p*PulseCount*2*math.Pi-u.Time*PulseSpeed) *
		u.PulseAmplitude * (1 - PulseFalloff*p)

	out := pos.
		Add(lateralDirection(pos).Scale(wiggle)).
		Add(normal.Scale(pulse * tubeInfo.Z))
	return out, wiggle + pulse
}

// MaxDisplacement bounds how far Displace can move any vertex.
func MaxDisplacement(u Uniforms) float64 {
	return math.Abs(u.WiggleAmplitude) + math.Abs(u.PulseAmplitude)
}

// Surface is the interpolated fragment input.
type Surface struct {
	Position   math3d.Vec3 // world space
	Normal     math3d.Vec3 // world space, not necessarily unit length
	UV         math3d.Vec2
	Distortion float64
}

// Shade evaluates the surface model and returns a gamma-encoded color in
// [0,1]. env may be nil, in which case only the direct light and ambient
// terms contribute.
func Shade(u Uniforms, m *Material, env *render.CubeMap, s Surface) math3d.Vec3 {
	n := s.Normal.Normalize()

	albedo := m.Color
	rough := m.Roughness
	if m.Maps != nil {
		albedo = m.Maps.Albedo.SampleVec(s.UV.X, s.UV.Y).Pow(Gamma)
		rough = m.Maps.Roughness.SampleVec(s.UV.X, s.UV.Y).X
		n = perturbNormal(n, m.Maps.Normal.SampleVec(s.UV.X, s.UV.Y))
	}
	rough = math3d.Clamp(rough, 0.04, 1)

	v := u.CameraPosition.Sub(s.Position).Normalize()
	l := u.LightDirection.Normalize()
	h := v.Add(l).Normalize()

	nDotL := math.Max(n.Dot(l), 0)
	nDotV := math.Max(n.Dot(v), 1e-4)
	nDotH := math.Max(n.Dot(h), 0)
	vDotH := math.Max(v.Dot(h), 0)

	f0 := math3d.V3(0.04, 0.04, 0.04).Lerp(albedo, m.Metallic)

	// Cook-Torrance: GGX distribution, Smith-Schlick geometry, Schlick Fresnel
	d := distributionGGX(nDotH, rough)
	g := geometrySmith(nDotV, nDotL, rough)
	f := fresnelSchlick(vDotH, f0)
	specular := f.Scale(d * g / (4*nDotV*nDotL + 1e-4))

	kd := math3d.V3(1, 1, 1).Sub(f).Scale(1 - m.Metallic)
	diffuse := kd.Mul(albedo).Scale(1 / math.Pi)
	color := diffuse.Add(specular).Scale(LightIntensity * nDotL)

	color = color.Add(albedo.Scale(AmbientLevel))

	if env != nil {
		r := v.Negate().Reflect(n)
		envColor := env.Sample(r).Pow(Gamma)
		fr := fresnelRoughness(nDotV, f0, rough)
		color = color.Add(envColor.Mul(fr).Scale(u.EnvMapIntensity))
	}

	// Stretch and compression glow warm
	color = color.Add(WarmTint.Scale(math.Abs(s.Distortion) * TintStrength))

	return color.Clamp01().Pow(1 / Gamma)
}

// perturbNormal applies a tangent-space normal map sample in [0,1]. The
// tangent frame is approximated from the world up axis.
func perturbNormal(n, sample math3d.Vec3) math3d.Vec3 {
	ref := math3d.Up()
	if math.Abs(n.Dot(ref)) > 0.999 {
		ref = math3d.V3(1, 0, 0)
	}
	t := ref.Cross(n).Normalize()
	b := n.Cross(t)
	ts := sample.Scale(2).Sub(math3d.V3(1, 1, 1))
	return t.Scale(ts.X).Add(b.Scale(ts.Y)).Add(n.Scale(ts.Z)).Normalize()
}

func distributionGGX(nDotH, rough float64) float64 {
	a := rough * rough
	a2 := a * a
	d := nDotH*nDotH*(a2-1) + 1
	return a2 / (math.Pi * d * d)
}

func geometrySmith(nDotV, nDotL, rough float64) float64 {
	k := (rough + 1) * (rough + 1) / 8
	g1 := func(x float64) float64 { return x / (x*(1-k) + k) }
	return g1(nDotV) * g1(nDotL)
}

func fresnelSchlick(cosTheta float64, f0 math3d.Vec3) math3d.Vec3 {
	w := math.Pow(1-math3d.Clamp(cosTheta, 0, 1), 5)
	return f0.Add(math3d.V3(1, 1, 1).Sub(f0).Scale(w))
}

func fresnelRoughness(cosTheta float64, f0 math3d.Vec3, rough float64) math3d.Vec3 {
	w := math.Pow(1-math3d.Clamp(cosTheta, 0, 1), 5)
	top := math3d.V3(1-rough, 1-rough, 1-rough).Max(f0)
	return f0.Add(top.Sub(f0).Scale(w))
}
