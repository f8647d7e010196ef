package creature

import "github.com/taigrr/ouroboros/pkg/math3d"

// Tuning holds the controller's cosmetic constants. Times are in seconds,
// angles in radians and speeds in path lengths per second.
type Tuning struct {
	BaseSpeed        float64
	HoverSpeedFactor float64 // progress multiplier while hovered
	ClickSpeedFactor float64 // progress multiplier while a click plays

	CameraRest  float64
	CameraHover float64
	WiggleRest  float64
	WiggleHover float64

	WiggleSpeed     float64
	PulseAmplitude  float64
	LightDirection  math3d.Vec3
	EnvMapIntensity float64

	// SpringFrequency and SpringDamping drive the camera, wiggle and nod
	// springs. Frequency 12 with critical damping settles a step to within
	// 2% in half a second.
	SpringFrequency float64
	SpringDamping   float64

	HeadLead      float64 // path parameter the head looks ahead
	HeadSmoothing float64 // slerp rate towards the target orientation

	WanderMinInterval float64
	WanderMaxInterval float64
	WanderAngle       float64
	WanderSmoothing   float64

	// EyeReach scales the pointer's hit point on the z=0 plane before the
	// eyes aim at it.
	EyeReach     float64
	EyeSmoothing float64
	EyeMaxAngle  float64 // must stay below π/2 so eyes never look backward

	NodDuration   float64 // time spent nodding out before the yoyo returns
	NodAngle      float64
	NodScale      float64
	NavigateDelay float64
	Route         string

	Seed uint64
}

// DefaultTuning returns the logo's resting behaviour.
func DefaultTuning() Tuning {
	return Tuning{
		BaseSpeed:        0.09,
		HoverSpeedFactor: 0.35,
		ClickSpeedFactor: 0.1,

		CameraRest:  4.2,
		CameraHover: 3.4,
		WiggleRest:  0.04,
		WiggleHover: 0.015,

		WiggleSpeed:     3,
		PulseAmplitude:  0.015,
		LightDirection:  math3d.V3(0.5, 0.8, 1.0),
		EnvMapIntensity: 0.6,

		SpringFrequency: 12,
		SpringDamping:   1,

		HeadLead:      0.02,
		HeadSmoothing: 8,

		WanderMinInterval: 2,
		WanderMaxInterval: 5,
		WanderAngle:       0.25,
		WanderSmoothing:   1.5,

		EyeReach:     1.5,
		EyeSmoothing: 10,
		EyeMaxAngle:  1.0,

		NodDuration:   0.2,
		NodAngle:      0.35,
		NodScale:      0.12,
		NavigateDelay: 0.6,
		Route:         "/courses",

		Seed: 1,
	}
}
