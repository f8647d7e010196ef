// Package glview draws a creature scene in an OpenGL 4.1 window through
// the GLSL rendition of the shading package. The scene still owns the
// animation; the view is one more uniform sink and closer registered on it.
//
// GLFW and GL calls must come from the main OS thread: call Init from
// main before anything else.
package glview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/taigrr/ouroboros/pkg/creature"
	"github.com/taigrr/ouroboros/pkg/math3d"
	"github.com/taigrr/ouroboros/pkg/shading"
	"github.com/taigrr/ouroboros/pkg/texgen"
)

var glInitOnce sync.Once

// ErrNoScene is returned by Open when the scene failed to set up.
var ErrNoScene = errors.New("no scene to display")

// Init locks the calling goroutine to its thread and starts GLFW.
func Init() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	return nil
}

// Terminate shuts GLFW down. Call it after every View is closed.
func Terminate() {
	glfw.Terminate()
}

// Options configures the window.
type Options struct {
	Width, Height int
	Title         string
	VSync         bool
}

// View is a window showing a scene.
type View struct {
	scene  *creature.Scene
	window *glfw.Window
	logger *log.Logger

	program uint32
	loc     map[string]int32

	body, head, eye gpuMesh
	maps            [3]uint32
	env             uint32

	uniforms  shading.Uniforms
	wireframe bool
	closed    bool
}

// uniformNames lists every uniform looked up after linking.
var uniformNames = []string{
	"uModel", "uViewProj", "uNormalMatrix",
	"uTime", "uPathProgress", "uWiggleSpeed", "uWiggleAmplitude", "uPulseAmplitude", "uRigid",
	"uAlbedoMap", "uNormalMap", "uRoughnessMap", "uEnvMap", "uUseMaps", "uUseEnv",
	"uColor", "uRoughness", "uMetallic",
	"uLightDirection", "uCameraPosition", "uEnvMapIntensity",
}

// Open creates the window, uploads the scene's meshes and maps and
// registers the view on the scene so Dispose closes it.
func Open(scene *creature.Scene, opts Options, logger *log.Logger) (*View, error) {
	if scene == nil {
		return nil, ErrNoScene
	}
	if logger == nil {
		logger = log.Default()
	}
	if opts.Title == "" {
		opts.Title = "ouroboros"
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	}

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		win.Destroy()
		return nil, fmt.Errorf("init gl: %w", initErr)
	}
	logger.Printf("OpenGL %s", gl.GoStr(gl.GetString(gl.VERSION)))

	program, err := newProgram(shading.VertexSource, shading.FragmentSource)
	if err != nil {
		win.Destroy()
		return nil, err
	}

	v := &View{
		scene:   scene,
		window:  win,
		logger:  logger,
		program: program,
		loc:     make(map[string]int32, len(uniformNames)),
	}
	for _, name := range uniformNames {
		v.loc[name] = gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	}

	body, head, eye := scene.Meshes()
	v.body = uploadMesh(body)
	v.head = uploadMesh(head)
	v.eye = uploadMesh(eye)

	maps := scene.Maps()
	for i, k := range texgen.Kinds {
		v.maps[i] = uploadTexture(maps.Map(k))
	}
	v.env = uploadCubeMap(scene.Environment())

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	v.bindInput()
	fbw, fbh := win.GetFramebufferSize()
	v.resize(fbw, fbh)

	scene.AddSink(v)
	scene.AddCloser(v)
	return v, nil
}

// SetUniforms implements creature.UniformSink.
func (v *View) SetUniforms(u shading.Uniforms) {
	v.uniforms = u
}

func (v *View) bindInput() {
	ctrl := v.scene.Controller()
	v.window.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if entered {
			ctrl.PointerEnter()
		} else {
			ctrl.PointerLeave()
		}
	})
	v.window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		width, height := w.GetSize()
		if px, py, ok := normalizePointer(x, y, width, height); ok {
			ctrl.PointerMove(px, py)
		}
	})
	v.window.SetMouseButtonCallback(func(_ *glfw.Window, b glfw.MouseButton, a glfw.Action, _ glfw.ModifierKey) {
		if b == glfw.MouseButtonLeft && a == glfw.Press {
			ctrl.Click()
		}
	})
	v.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, a glfw.Action, _ glfw.ModifierKey) {
		if a != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape, glfw.KeyQ:
			w.SetShouldClose(true)
		case glfw.KeyW:
			v.wireframe = !v.wireframe
		}
	})
	v.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		v.resize(width, height)
	})
}

// normalizePointer maps window coordinates to [0,1]² with Y down.
func normalizePointer(x, y float64, width, height int) (float64, float64, bool) {
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return math3d.Clamp(x/float64(width), 0, 1), math3d.Clamp(y/float64(height), 0, 1), true
}

func (v *View) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	gl.Viewport(0, 0, int32(width), int32(height))
	v.scene.Controller().Camera().SetAspectRatio(float64(width) / float64(height))
}

// Run steps and draws the scene until the window closes or ctx is done.
func (v *View) Run(ctx context.Context) error {
	last := glfw.GetTime()
	for !v.window.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		now := glfw.GetTime()
		v.scene.Step(now - last)
		last = now

		v.Draw()
		v.window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

// Draw renders the scene's current pose.
func (v *View) Draw() {
	if v.closed {
		return
	}
	bg := v.scene.Background()
	gl.ClearColor(float32(bg.R)/255, float32(bg.G)/255, float32(bg.B)/255, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if v.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	gl.UseProgram(v.program)
	v.setFrameUniforms()

	for i, id := range v.maps {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, id)
	}
	gl.ActiveTexture(gl.TEXTURE3)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, v.env)
	gl.Uniform1i(v.loc["uAlbedoMap"], 0)
	gl.Uniform1i(v.loc["uNormalMap"], 1)
	gl.Uniform1i(v.loc["uRoughnessMap"], 2)
	gl.Uniform1i(v.loc["uEnvMap"], 3)

	pose := v.scene.Pose()
	bodyMat, headMat, eyeMat := v.scene.Materials()
	v.drawMesh(&v.body, pose.Body, bodyMat)
	v.drawMesh(&v.head, pose.Head, headMat)
	for _, m := range pose.Eyes {
		v.drawMesh(&v.eye, m, eyeMat)
	}
	gl.BindVertexArray(0)
}

func (v *View) setFrameUniforms() {
	u := v.uniforms
	viewProj := mat4f(v.scene.Controller().Camera().ViewProjectionMatrix())
	gl.UniformMatrix4fv(v.loc["uViewProj"], 1, false, &viewProj[0])
	gl.Uniform1f(v.loc["uTime"], float32(u.Time))
	gl.Uniform1f(v.loc["uPathProgress"], float32(u.PathProgress))
	gl.Uniform1f(v.loc["uWiggleSpeed"], float32(u.WiggleSpeed))
	gl.Uniform1f(v.loc["uWiggleAmplitude"], float32(u.WiggleAmplitude))
	gl.Uniform1f(v.loc["uPulseAmplitude"], float32(u.PulseAmplitude))
	lx, ly, lz := vec3f(u.LightDirection)
	gl.Uniform3f(v.loc["uLightDirection"], lx, ly, lz)
	cx, cy, cz := vec3f(u.CameraPosition)
	gl.Uniform3f(v.loc["uCameraPosition"], cx, cy, cz)
	gl.Uniform1f(v.loc["uEnvMapIntensity"], float32(u.EnvMapIntensity))
}

func (v *View) drawMesh(g *gpuMesh, model math3d.Mat4, m shading.Material) {
	mm := mat4f(model)
	nm := normalMat3(model)
	gl.UniformMatrix4fv(v.loc["uModel"], 1, false, &mm[0])
	gl.UniformMatrix3fv(v.loc["uNormalMatrix"], 1, false, &nm[0])
	gl.Uniform1i(v.loc["uRigid"], boolInt(m.Rigid))
	gl.Uniform1i(v.loc["uUseMaps"], boolInt(m.Maps != nil))
	gl.Uniform1i(v.loc["uUseEnv"], 1)
	r, gr, b := vec3f(m.Color)
	gl.Uniform3f(v.loc["uColor"], r, gr, b)
	gl.Uniform1f(v.loc["uRoughness"], float32(m.Roughness))
	gl.Uniform1f(v.loc["uMetallic"], float32(m.Metallic))

	gl.BindVertexArray(g.vao)
	gl.DrawElements(gl.TRIANGLES, g.count, gl.UNSIGNED_INT, nil)
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Close frees the GL objects and destroys the window. It is safe to call
// more than once.
func (v *View) Close() error {
	if v == nil || v.closed {
		return nil
	}
	v.closed = true
	v.window.MakeContextCurrent()
	v.body.delete()
	v.head.delete()
	v.eye.delete()
	gl.DeleteTextures(int32(len(v.maps)), &v.maps[0])
	gl.DeleteTextures(1, &v.env)
	gl.DeleteProgram(v.program)
	v.window.Destroy()
	v.window = nil
	return nil
}
