// Package creature animates the snake: a single Update advances path
// progress, springs, head and eye orientation, and the click timeline. A
// Scene ties the controller to geometry, textures and programs.
package creature

import (
	"log"
	"math"
	"math/rand/v2"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/taigrr/ouroboros/pkg/math3d"
	"github.com/taigrr/ouroboros/pkg/models"
	"github.com/taigrr/ouroboros/pkg/render"
)

// Eye placement in the head's local frame. The head faces -Z with +Y up.
var eyeOffsets = [2]math3d.Vec3{
	{X: -0.07, Y: 0.09, Z: -0.1},
	{X: 0.07, Y: 0.09, Z: -0.1},
}

// Navigator performs the navigation side effect at the end of a click.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

// Navigate calls f(route).
func (f NavigatorFunc) Navigate(route string) { f(route) }

// Option configures a Controller or Scene.
type Option func(*options)

type options struct {
	logger *log.Logger
	camera *render.Camera
}

// WithLogger sets the logger used for warnings and navigation.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCamera makes the controller drive an existing camera.
func WithCamera(c *render.Camera) Option {
	return func(o *options) { o.camera = c }
}

func buildOptions(opts []Option) options {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.camera == nil {
		o.camera = render.NewCamera()
	}
	return o
}

// State is the controller's mutable animation state.
type State struct {
	Progress float64 // in [0,1)
	Elapsed  float64

	Hovered      bool
	Pointer      math3d.Vec2 // normalized, Y down
	PointerValid bool

	Animating  bool // click guard
	ClickTimer float64
	Nods       int // nods started since construction

	Head         mgl64.Quat
	Eyes         [2]mgl64.Quat // relative to the head
	Wander       mgl64.Quat
	WanderTarget mgl64.Quat
	WanderTimer  float64

	CameraDistance float64
	CameraVelocity float64
	Wiggle         float64
	WiggleVelocity float64
	Nod            float64
	NodVelocity    float64
}

// spring wraps a harmonica spring whose coefficients are rebuilt when the
// frame time changes.
type spring struct {
	freq, damping float64
	dt            float64
	s             harmonica.Spring
}

func (sp *spring) update(dt float64, pos, vel *float64, target float64) {
	if dt != sp.dt {
		sp.s = harmonica.NewSpring(dt, sp.freq, sp.damping)
		sp.dt = dt
	}
	*pos, *vel = sp.s.Update(*pos, *vel, target)
}

// Controller owns the AnimationState and advances it once per frame. It is
// not safe for concurrent use; hosts forward input to the frame goroutine.
type Controller struct {
	path   *models.PathCurve
	tuning Tuning
	nav    Navigator
	camera *render.Camera
	logger *log.Logger
	rng    *rand.Rand
	spring spring

	state State
}

// NewController creates a controller following path. nav may be nil.
func NewController(path *models.PathCurve, t Tuning, nav Navigator, opts ...Option) *Controller {
	o := buildOptions(opts)
	c := &Controller{
		path:   path,
		tuning: t,
		nav:    nav,
		camera: o.camera,
		logger: o.logger,
		rng:    rand.New(rand.NewPCG(t.Seed, t.Seed^0x9e3779b97f4a7c15)),
		spring: spring{freq: t.SpringFrequency, damping: t.SpringDamping},
	}
	c.state = State{
		Head:           c.baseOrientation(0),
		Eyes:           [2]mgl64.Quat{mgl64.QuatIdent(), mgl64.QuatIdent()},
		Wander:         mgl64.QuatIdent(),
		WanderTarget:   mgl64.QuatIdent(),
		CameraDistance: t.CameraRest,
		Wiggle:         t.WiggleRest,
	}
	c.syncCamera()
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Tuning returns the controller's constants.
func (c *Controller) Tuning() Tuning {
	return c.tuning
}

// SetTuning replaces the constants, keeping the current state. The springs
// are rebuilt only when their coefficients change.
func (c *Controller) SetTuning(t Tuning) {
	c.tuning = t
	if t.SpringFrequency != c.spring.freq || t.SpringDamping != c.spring.damping {
		c.spring = spring{freq: t.SpringFrequency, damping: t.SpringDamping}
	}
}

// SetLightDirection aims the shading light without touching other tuning.
func (c *Controller) SetLightDirection(dir math3d.Vec3) {
	c.tuning.LightDirection = dir
}

// Camera returns the camera the controller dollies.
func (c *Controller) Camera() *render.Camera {
	return c.camera
}

// Path returns the curve the head follows.
func (c *Controller) Path() *models.PathCurve {
	return c.path
}

// PointerEnter starts hover tracking.
func (c *Controller) PointerEnter() {
	c.state.Hovered = true
}

// PointerLeave stops hover tracking. Eyes relax to neutral on later updates.
func (c *Controller) PointerLeave() {
	c.state.Hovered = false
	c.state.PointerValid = false
}

// PointerMove records the pointer in normalized [0,1]² coordinates.
func (c *Controller) PointerMove(x, y float64) {
	c.state.Pointer = math3d.V2(math3d.Clamp(x, 0, 1), math3d.Clamp(y, 0, 1))
	c.state.PointerValid = true
}

// Click starts the nod and schedules navigation. It reports false and does
// nothing while a previous click is still playing.
func (c *Controller) Click() bool {
	if c.state.Animating {
		return false
	}
	c.state.Animating = true
	c.state.ClickTimer = 0
	c.state.Nods++
	return true
}

// Update advances the animation by dt seconds.
func (c *Controller) Update(dt float64) {
	if dt <= 0 {
		return
	}
	t := &c.tuning
	s := &c.state
	s.Elapsed += dt

	speed := t.BaseSpeed
	if s.Hovered {
		speed *= t.HoverSpeedFactor
	}
	if s.Animating {
		speed *= t.ClickSpeedFactor
	}
	s.Progress = math3d.Fract(s.Progress + speed*dt)

	cameraTarget, wiggleTarget := t.CameraRest, t.WiggleRest
	if s.Hovered {
		cameraTarget, wiggleTarget = t.CameraHover, t.WiggleHover
	}
	c.spring.update(dt, &s.CameraDistance, &s.CameraVelocity, cameraTarget)
	c.spring.update(dt, &s.Wiggle, &s.WiggleVelocity, wiggleTarget)

	c.updateClick(dt)
	c.updateWander(dt)

	target := c.baseOrientation(s.Progress).Mul(s.Wander)
	s.Head = slerp(s.Head, target, smoothing(t.HeadSmoothing, dt))

	c.syncCamera()
	c.updateEyes(dt)
}

func (c *Controller) updateClick(dt float64) {
	t := &c.tuning
	s := &c.state
	nodTarget := 0.0
	if s.Animating {
		// The nod phase is judged at the start of the step, so a step
		// longer than NodDuration still nods before navigating.
		if s.ClickTimer < t.NodDuration {
			nodTarget = 1
		}
		s.ClickTimer += dt
		if s.ClickTimer >= t.NavigateDelay {
			s.Animating = false
			if c.nav != nil {
				c.logger.Printf("navigate %s", t.Route)
				c.nav.Navigate(t.Route)
			}
		}
	}
	c.spring.update(dt, &s.Nod, &s.NodVelocity, nodTarget)
}

func (c *Controller) updateWander(dt float64) {
	t := &c.tuning
	s := &c.state
	s.WanderTimer -= dt
	if s.WanderTimer <= 0 {
		s.WanderTimer = t.WanderMinInterval + c.rng.Float64()*(t.WanderMaxInterval-t.WanderMinInterval)
		yaw := (c.rng.Float64()*2 - 1) * t.WanderAngle
		pitch := (c.rng.Float64()*2 - 1) * t.WanderAngle * 0.5
		s.WanderTarget = mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0}).
			Mul(mgl64.QuatRotate(pitch, mgl64.Vec3{1, 0, 0})).Normalize()
	}
	s.Wander = slerp(s.Wander, s.WanderTarget, smoothing(t.WanderSmoothing, dt))
}

// updateEyes turns the eyes towards the pointer while hovered and back to
// neutral otherwise.
func (c *Controller) updateEyes(dt float64) {
	s := &c.state
	amount := smoothing(c.tuning.EyeSmoothing, dt)

	var world math3d.Vec3
	tracking := s.Hovered && s.PointerValid
	if tracking {
		var ok bool
		world, ok = c.camera.PointerToPlaneZ(s.Pointer.X, s.Pointer.Y, 0)
		tracking = ok
		world = world.Scale(c.tuning.EyeReach)
	}

	headPos := c.path.PointAt(s.Progress)
	inv := s.Head.Normalize().Inverse()
	for i := range s.Eyes {
		target := mgl64.QuatIdent()
		if tracking {
			eyePos := headPos.Add(math3d.FromMgl(s.Head.Rotate(eyeOffsets[i].Mgl())))
			local := inv.Rotate(world.Sub(eyePos).Mgl())
			target = c.clampedLook(local)
		}
		s.Eyes[i] = slerp(s.Eyes[i], target, amount)
	}
}

// clampedLook returns the rotation turning the local forward axis towards
// dir, limited to EyeMaxAngle so the eyes never face backwards.
func (c *Controller) clampedLook(dir mgl64.Vec3) mgl64.Quat {
	if dir.Len() < 1e-9 {
		return mgl64.QuatIdent()
	}
	dir = dir.Normalize()
	fwd := math3d.Forward().Mgl()
	angle := math.Acos(math3d.Clamp(fwd.Dot(dir), -1, 1))
	if angle < 1e-9 {
		return mgl64.QuatIdent()
	}
	axis := fwd.Cross(dir)
	if axis.Len() < 1e-9 {
		// Directly behind: any perpendicular axis will do.
		axis = mgl64.Vec3{0, 1, 0}
	}
	angle = math.Min(angle, c.tuning.EyeMaxAngle)
	return mgl64.QuatRotate(angle, axis.Normalize())
}

// baseOrientation looks from the path point at u towards a point slightly
// ahead, with the head's up axis towards the viewer.
func (c *Controller) baseOrientation(u float64) mgl64.Quat {
	pos := c.path.PointAt(u)
	ahead := c.path.PointAt(u + c.tuning.HeadLead)
	return lookRotation(ahead.Sub(pos), math3d.V3(0, 0, 1))
}

func (c *Controller) syncCamera() {
	c.camera.SetPosition(math3d.V3(0, 0, c.state.CameraDistance))
	c.camera.LookAt(math3d.Zero3())
}

// lookRotation returns the rotation taking the model's -Z forward axis to
// forward and +Y as close to up as possible.
func lookRotation(forward, up math3d.Vec3) mgl64.Quat {
	f := forward.Normalize()
	if f.LenSq() == 0 {
		return mgl64.QuatIdent()
	}
	z := f.Negate()
	x := up.Cross(z)
	if x.LenSq() < 1e-12 {
		x = math3d.Up().Cross(z)
		if x.LenSq() < 1e-12 {
			x = math3d.V3(1, 0, 0)
		}
	}
	x = x.Normalize()
	y := z.Cross(x)
	m := mgl64.Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		0, 0, 0, 1,
	}
	return mgl64.Mat4ToQuat(m).Normalize()
}

// slerp interpolates along the shorter arc and renormalizes.
func slerp(from, to mgl64.Quat, amount float64) mgl64.Quat {
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}
	return mgl64.QuatSlerp(from, to, amount).Normalize()
}

// smoothing converts a rate per second into a frame-rate independent
// interpolation amount.
func smoothing(rate, dt float64) float64 {
	return 1 - math.Exp(-rate*dt)
}
