package creature

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/taigrr/ouroboros/pkg/math3d"
	"github.com/taigrr/ouroboros/pkg/models"
	"github.com/taigrr/ouroboros/pkg/render"
	"github.com/taigrr/ouroboros/pkg/shading"
	"github.com/taigrr/ouroboros/pkg/texgen"
)

// ErrNoSurface is returned by Setup when there is nothing to draw into.
var ErrNoSurface = errors.New("no rendering surface")

// SceneConfig describes what Setup builds.
type SceneConfig struct {
	Width, Height int // framebuffer size

	Texture texgen.Params
	Tuning  Tuning

	Path           []math3d.Vec3 // nil uses models.DefaultPath
	TubeSegments   int
	TubeRadius     float64
	RadialSegments int
	HeadRadius     float64
	EyeRadius      float64

	// CubeMap lists the six face images (+x, -x, +y, -y, +z, -z). Nil or
	// unloadable faces fall back to a neutral gradient.
	CubeMap *[6]string
	// AlbedoPath replaces the synthesized albedo map with an image.
	AlbedoPath string

	Navigator  Navigator
	Background render.Color
}

// DefaultSceneConfig returns a 64x64 scene with the logo's look.
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Width:          64,
		Height:         64,
		Texture:        texgen.DefaultParams(),
		Tuning:         DefaultTuning(),
		TubeSegments:   200,
		TubeRadius:     0.12,
		RadialSegments: 16,
		HeadRadius:     0.16,
		EyeRadius:      0.035,
		Background:     render.ColorBlack,
	}
}

// Scene owns everything needed to draw the creature: the controller, the
// synthesized maps, the meshes and their programs. A nil *Scene is a valid
// no-op, which is what hosts hold when Setup fails.
type Scene struct {
	ctrl   *Controller
	logger *log.Logger

	maps *texgen.Set
	env  *render.CubeMap

	body *models.Mesh
	head *models.Mesh
	eye  *models.Mesh

	bodyProg *shading.Program
	headProg *shading.Program
	eyeProg  *shading.Program

	raster     *render.Rasterizer
	background render.Color

	sinks   []UniformSink
	closers []io.Closer

	clock    float64
	uniforms shading.Uniforms
	pose     Pose

	// Wireframe draws triangle edges instead of shaded surfaces.
	Wireframe bool

	disposed bool
}

// Setup synthesizes the textures, builds the meshes and binds the programs.
// On failure it logs and returns a nil scene with the error.
func Setup(ctx context.Context, cfg SceneConfig, opts ...Option) (*Scene, error) {
	o := buildOptions(opts)
	s, err := setup(ctx, cfg, o)
	if err != nil {
		o.logger.Printf("creature setup: %v", err)
		return nil, err
	}
	return s, nil
}

func setup(ctx context.Context, cfg SceneConfig, o options) (*Scene, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("setup %dx%d: %w", cfg.Width, cfg.Height, ErrNoSurface)
	}

	path := models.DefaultPath()
	if cfg.Path != nil {
		var err error
		if path, err = models.NewPathCurve(cfg.Path); err != nil {
			return nil, fmt.Errorf("setup path: %w", err)
		}
	}

	maps, err := texgen.Synthesize(ctx, cfg.Texture)
	if err != nil {
		return nil, fmt.Errorf("setup textures: %w", err)
	}

	if cfg.AlbedoPath != "" {
		tex, err := render.LoadTexture(cfg.AlbedoPath)
		if err != nil {
			o.logger.Printf("albedo override unavailable, using synthesized map: %v", err)
		} else {
			maps.Albedo = tex
		}
	}

	body, err := models.BuildTube(path, cfg.TubeSegments, cfg.TubeRadius, cfg.RadialSegments)
	if err != nil {
		return nil, fmt.Errorf("setup body: %w", err)
	}
	head, err := models.NewSphere("head", cfg.HeadRadius, 16, 12)
	if err != nil {
		return nil, fmt.Errorf("setup head: %w", err)
	}
	// Stretch the head along its forward axis.
	head.Transform(math3d.Scale(math3d.V3(1, 0.8, 1.3)))
	eye, err := models.NewSphere("eye", cfg.EyeRadius, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("setup eye: %w", err)
	}

	env := render.NeutralCubeMap(32)
	if cfg.CubeMap != nil {
		loaded, err := render.LoadCubeMap(*cfg.CubeMap)
		if err != nil {
			o.logger.Printf("environment map unavailable, using neutral fallback: %v", err)
		} else {
			env = loaded
		}
	}

	bodyProg, err := shading.NewProgram(shading.Material{Name: "body", Maps: maps}, env)
	if err != nil {
		return nil, fmt.Errorf("setup body program: %w", err)
	}
	headProg, err := shading.NewProgram(shading.Material{Name: "head", Maps: maps, Rigid: true}, env)
	if err != nil {
		return nil, fmt.Errorf("setup head program: %w", err)
	}
	eyeProg, err := shading.NewProgram(shading.Material{
		Name:      "eye",
		Color:     math3d.V3(0.02, 0.02, 0.02),
		Roughness: 0.15,
		Rigid:     true,
	}, env)
	if err != nil {
		return nil, fmt.Errorf("setup eye program: %w", err)
	}

	camera := o.camera
	camera.SetAspectRatio(float64(cfg.Width) / float64(cfg.Height))
	ctrl := NewController(path, cfg.Tuning, cfg.Navigator, WithLogger(o.logger), WithCamera(camera))

	s := &Scene{
		ctrl:       ctrl,
		logger:     o.logger,
		maps:       maps,
		env:        env,
		body:       body,
		head:       head,
		eye:        eye,
		bodyProg:   bodyProg,
		headProg:   headProg,
		eyeProg:    eyeProg,
		raster:     render.NewRasterizer(camera, render.NewFramebuffer(cfg.Width, cfg.Height)),
		background: cfg.Background,
	}
	s.publish()
	return s, nil
}

// Controller returns the scene's controller.
func (s *Scene) Controller() *Controller {
	if s == nil {
		return nil
	}
	return s.ctrl
}

// Framebuffer returns the software render target.
func (s *Scene) Framebuffer() *render.Framebuffer {
	if s == nil || s.raster == nil {
		return nil
	}
	return s.raster.Framebuffer()
}

// Resize replaces the framebuffer with one of the given size.
func (s *Scene) Resize(width, height int) {
	if s == nil || s.disposed || width <= 0 || height <= 0 {
		return
	}
	s.raster.SetFramebuffer(render.NewFramebuffer(width, height))
	s.raster.Camera().SetAspectRatio(float64(width) / float64(height))
}

// Maps returns the synthesized textures.
func (s *Scene) Maps() *texgen.Set {
	if s == nil {
		return nil
	}
	return s.maps
}

// Environment returns the reflection map in use.
func (s *Scene) Environment() *render.CubeMap {
	if s == nil {
		return nil
	}
	return s.env
}

// Meshes returns the body, head and eye meshes in rest position.
func (s *Scene) Meshes() (body, head, eye *models.Mesh) {
	if s == nil {
		return nil, nil, nil
	}
	return s.body, s.head, s.eye
}

// Materials returns the body, head and eye materials so another backend
// can shade the meshes the same way.
func (s *Scene) Materials() (body, head, eye shading.Material) {
	if s == nil || s.disposed {
		return
	}
	return *s.bodyProg.Material(), *s.headProg.Material(), *s.eyeProg.Material()
}

// Background returns the clear color.
func (s *Scene) Background() render.Color {
	if s == nil {
		return render.Color{}
	}
	return s.background
}

// Uniforms returns the parameters pushed by the last Step.
func (s *Scene) Uniforms() shading.Uniforms {
	if s == nil {
		return shading.Uniforms{}
	}
	return s.uniforms
}

// Pose returns the object transforms computed by the last Step.
func (s *Scene) Pose() Pose {
	if s == nil {
		return Pose{}
	}
	return s.pose
}

// AddSink registers an extra uniform receiver, such as a GPU program.
func (s *Scene) AddSink(sink UniformSink) {
	if s == nil || s.disposed {
		return
	}
	s.sinks = append(s.sinks, sink)
	sink.SetUniforms(s.uniforms)
}

// AddCloser registers a resource released by Dispose.
func (s *Scene) AddCloser(c io.Closer) {
	if s == nil || s.disposed {
		return
	}
	s.closers = append(s.closers, c)
}

// Step advances the controller and pushes uniforms without drawing.
func (s *Scene) Step(dt float64) {
	if s == nil || s.disposed {
		return
	}
	s.clock += dt
	s.ctrl.Update(dt)
	s.publish()
}

func (s *Scene) publish() {
	s.uniforms = ComputeUniforms(s.ctrl.State(), s.ctrl.Tuning(), s.clock)
	PushUniforms(s.uniforms, s.bodyProg, s.headProg, s.eyeProg)
	PushUniforms(s.uniforms, s.sinks...)
	s.pose = s.ctrl.Pose(s.uniforms)
}

// Frame steps the animation and draws it into the framebuffer.
func (s *Scene) Frame(dt float64) {
	if s == nil || s.disposed {
		return
	}
	s.Step(dt)
	s.Draw()
}

// Draw renders the current pose into the framebuffer.
func (s *Scene) Draw() {
	if s == nil || s.disposed {
		return
	}
	s.raster.BeginFrame(s.background)

	if s.Wireframe {
		s.raster.DrawMeshWireframe(s.body, s.pose.Body, s.bodyProg, render.ColorGreen)
		s.raster.DrawMeshWireframe(s.head, s.pose.Head, s.headProg, render.ColorWhite)
		return
	}
	s.raster.DrawMesh(s.body, s.pose.Body, s.bodyProg)
	s.raster.DrawMesh(s.head, s.pose.Head, s.headProg)
	for _, m := range s.pose.Eyes {
		s.raster.DrawMesh(s.eye, m, s.eyeProg)
	}
}

// ExportNodes returns the current pose as glTF nodes with the synthesized
// maps attached to the materials.
func (s *Scene) ExportNodes() []models.ExportNode {
	if s == nil || s.disposed {
		return nil
	}
	skin := models.Material{
		Name:         "scales",
		BaseColor:    [4]float64{1, 1, 1, 1},
		Roughness:    1,
		BaseMap:      s.maps.Albedo.ToImage(),
		NormalMap:    s.maps.Normal.ToImage(),
		RoughnessMap: s.maps.Roughness.ToImage(),
	}
	body := s.body.Clone()
	body.Material = skin
	head := s.head.Clone()
	head.Material = skin
	eye := s.eye.Clone()
	eye.Material = models.Material{Name: "eye", BaseColor: [4]float64{0.02, 0.02, 0.02, 1}, Roughness: 0.15}

	nodes := []models.ExportNode{
		{Mesh: body, Transform: s.pose.Body},
		{Mesh: head, Transform: s.pose.Head},
	}
	for _, m := range s.pose.Eyes {
		nodes = append(nodes, models.ExportNode{Mesh: eye, Transform: m})
	}
	return nodes
}

// Dispose releases every resource the scene holds. It is safe to call more
// than once and on a nil scene; later calls do nothing.
func (s *Scene) Dispose() error {
	if s == nil || s.disposed {
		return nil
	}
	s.disposed = true

	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	s.sinks = nil

	s.bodyProg, s.headProg, s.eyeProg = nil, nil, nil
	s.body, s.head, s.eye = nil, nil, nil
	s.maps = nil
	s.env = nil
	s.raster = nil

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("dispose scene: %w", err)
	}
	return nil
}
