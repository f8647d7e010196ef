package shading

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/taigrr/ouroboros/pkg/math3d"
	"github.com/taigrr/ouroboros/pkg/models"
	"github.com/taigrr/ouroboros/pkg/render"
	"github.com/taigrr/ouroboros/pkg/texgen"
)

func testMaps(t testing.TB) *texgen.Set {
	t.Helper()
	p := texgen.DefaultParams()
	p.Width, p.Height = 32, 32
	set, err := texgen.Synthesize(context.Background(), p)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	return set
}

func TestDisplaceBounded(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	u := DefaultUniforms()
	limit := MaxDisplacement(u) + 1e-9

	for range 1000 {
		u.Time = rng.Float64() * 100
		u.PathProgress = rng.Float64()
		pos := math3d.V3(rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1)
		normal := math3d.V3(rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1).Normalize()
		info := math3d.V3(0, rng.Float64(), 1)

		got, _ := Displace(u, pos, normal, info)
		if d := got.Distance(pos); d > limit {
			t.Fatalf("displacement %v exceeds bound %v", d, limit)
		}
	}
}

func TestDisplaceDampsTowardsTail(t *testing.T) {
	u := DefaultUniforms()
	u.PulseAmplitude = 0
	u.PathProgress = 0.5
	pos := math3d.V3(1, 0, 0)
	normal := math3d.V3(1, 0, 0)

	// Largest displacement over a full wiggle cycle at relative progress p.
	peak := func(p float64) float64 {
		info := math3d.V3(0, math3d.Fract(u.PathProgress-p), 1)
		var best float64
		for i := range 200 {
			u.Time = float64(i) / 200 * 2 * math.Pi / u.WiggleSpeed
			_, d := Displace(u, pos, normal, info)
			best = max(best, math.Abs(d))
		}
		return best
	}

	head, tail := peak(0), peak(0.99)
	if math.Abs(head-u.WiggleAmplitude) > 1e-3 {
		t.Errorf("head amplitude = %v, want %v", head, u.WiggleAmplitude)
	}
	want := u.WiggleAmplitude * (1 - WiggleFalloff*0.99)
	if math.Abs(tail-want) > 1e-3 {
		t.Errorf("tail amplitude = %v, want %v", tail, want)
	}
}

func TestDisplaceRadiusScale(t *testing.T) {
	u := DefaultUniforms()
	u.WiggleAmplitude = 0
	u.Time = 0.3
	pos := math3d.V3(0, 1, 0)
	normal := math3d.V3(0, 0, 1)

	got, _ := Displace(u, pos, normal, math3d.V3(0, 0.2, 0))
	if got != pos {
		t.Errorf("radius scale 0 moved vertex to %v", got)
	}
}

func TestNewProgramMissingTexture(t *testing.T) {
	maps := testMaps(t)
	maps.Normal = nil

	_, err := NewProgram(Material{Name: "body", Maps: maps}, nil)
	if !errors.Is(err, ErrMissingTexture) {
		t.Errorf("err = %v, want ErrMissingTexture", err)
	}

	if _, err := NewProgram(Material{Name: "eye", Color: math3d.V3(0.1, 0.1, 0.1)}, nil); err != nil {
		t.Errorf("constant material: %v", err)
	}
}

func TestShadeFacingLightIsBrighter(t *testing.T) {
	u := DefaultUniforms()
	u.LightDirection = math3d.V3(0, 0, 1)
	u.CameraPosition = math3d.V3(0, 0, 5)
	m := &Material{Color: math3d.V3(0.5, 0.5, 0.5), Roughness: 0.5}

	lit := Shade(u, m, nil, Surface{Normal: math3d.V3(0, 0, 1)})
	dark := Shade(u, m, nil, Surface{Normal: math3d.V3(0, 1, 0)})
	if lit.X <= dark.X {
		t.Errorf("lit %v not brighter than grazing %v", lit, dark)
	}
	for _, c := range []float64{lit.X, lit.Y, lit.Z} {
		if c < 0 || c > 1 {
			t.Errorf("component %v outside [0,1]", c)
		}
	}
}

func TestShadeDistortionWarmsColor(t *testing.T) {
	u := DefaultUniforms()
	m := &Material{Color: math3d.V3(0.05, 0.2, 0.05), Roughness: 0.6}
	s := Surface{Normal: math3d.V3(0, 0, 1), UV: math3d.V2(0.3, 0.4)}

	calm := Shade(u, m, nil, s)
	s.Distortion = -0.05
	warm := Shade(u, m, nil, s)

	if warm.X-calm.X <= warm.Z-calm.Z {
		t.Errorf("tint not warm: calm %v, distorted %v", calm, warm)
	}
}

func TestShadeEnvironmentAddsLight(t *testing.T) {
	u := DefaultUniforms()
	u.LightDirection = math3d.V3(0, 0, -1) // behind the surface
	m := &Material{Color: math3d.V3(0.2, 0.2, 0.2), Roughness: 0.2}
	s := Surface{Normal: math3d.V3(0, 0, 1)}

	without := Shade(u, m, nil, s)
	with := Shade(u, m, render.NeutralCubeMap(8), s)
	if with.Y <= without.Y {
		t.Errorf("environment did not add light: %v vs %v", with, without)
	}
}

func TestProgramDrawsSphere(t *testing.T) {
	sphere, err := models.NewSphere("head", 1, 16, 12)
	if err != nil {
		t.Fatalf("NewSphere: %v", err)
	}
	prog, err := NewProgram(Material{Name: "head", Maps: testMaps(t), Rigid: true}, render.NeutralCubeMap(8))
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}

	fb := render.NewFramebuffer(48, 48)
	r := render.NewRasterizer(render.NewCamera(), fb)
	r.BeginFrame(render.ColorBlack)
	r.DrawMesh(sphere, math3d.Identity(), prog)

	if c := fb.GetPixel(24, 24); c == render.ColorBlack {
		t.Error("centre pixel was not shaded")
	}
	if c := fb.GetPixel(0, 0); c != render.ColorBlack {
		t.Errorf("corner pixel = %v, want background", c)
	}
}

func TestProgramRigidIgnoresUniforms(t *testing.T) {
	prog, err := NewProgram(Material{Rigid: true}, nil)
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	u := DefaultUniforms()
	u.Time = 1.3
	prog.SetUniforms(u)
	prog.Bind(math3d.Identity(), math3d.Identity())

	in := &render.VertexInput{Position: math3d.V3(0.5, 0.5, 0), Normal: math3d.V3(0, 0, 1)}
	clip, out := prog.Vertex(in)
	if clip != math3d.V4(0.5, 0.5, 0, 1) {
		t.Errorf("clip = %v, want rest position", clip)
	}
	if out[varDistortion] != 0 || prog.MaxDisplacement() != 0 {
		t.Error("rigid program reported distortion")
	}
}

func TestGLSLCarriesConstants(t *testing.T) {
	for _, want := range []string{
		"const float WAVE_COUNT = 3.000000;",
		"const float PULSE_FALLOFF = 0.700000;",
		"layout (location = 3) in vec3 aTubeInfo;",
	} {
		if !strings.Contains(VertexSource, want) {
			t.Errorf("vertex source missing %q", want)
		}
	}
	for _, want := range []string{"uniform samplerCube uEnvMap;", "const float GAMMA = 2.200000;"} {
		if !strings.Contains(FragmentSource, want) {
			t.Errorf("fragment source missing %q", want)
		}
	}
}

func BenchmarkFragment(b *testing.B) {
	prog, err := NewProgram(Material{Name: "body", Maps: testMaps(b)}, render.NeutralCubeMap(16))
	if err != nil {
		b.Fatal(err)
	}
	var in render.Varyings
	in[varNormZ] = 1
	in[varU], in[varV] = 0.25, 0.75
	for b.Loop() {
		prog.Fragment(&in)
	}
}
