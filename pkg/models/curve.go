package models

import (
	"errors"
	"math"
	"sort"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

// arcDivisions is the number of samples in the arc-length table.
const arcDivisions = 200

// ErrTooFewPoints is returned when a closed curve has fewer than four
// control points.
var ErrTooFewPoints = errors.New("path curve needs at least 4 control points")

// PathCurve is a closed centripetal Catmull-Rom spline. Positions are
// addressed by normalized arc length u, wrapped into [0,1).
type PathCurve struct {
	points  []math3d.Vec3
	lengths []float64 // Cumulative arc length at arcDivisions+1 raw samples
}

// Frame is the orthonormal basis carried along the curve at one sample.
type Frame struct {
	Tangent  math3d.Vec3
	Normal   math3d.Vec3
	Binormal math3d.Vec3
}

// NewPathCurve builds a closed curve through points.
func NewPathCurve(points []math3d.Vec3) (*PathCurve, error) {
	if len(points) < 4 {
		return nil, ErrTooFewPoints
	}
	c := &PathCurve{points: append([]math3d.Vec3(nil), points...)}
	c.buildArcTable()
	return c, nil
}

// DefaultPath returns the logo loop: a ring leaning toward the viewer so
// the body passes in front of and behind itself.
func DefaultPath() *PathCurve {
	const n = 8
	points := make([]math3d.Vec3, n)
	for i := range n {
		a := float64(i) / n * 2 * math.Pi
		points[i] = math3d.V3(1.2*math.Cos(a), 0.85*math.Sin(a), 0.3*math.Sin(2*a))
	}
	c, _ := NewPathCurve(points)
	return c
}

// Points returns a copy of the control points.
func (c *PathCurve) Points() []math3d.Vec3 {
	return append([]math3d.Vec3(nil), c.points...)
}

// Length returns the total arc length of the loop.
func (c *PathCurve) Length() float64 {
	return c.lengths[len(c.lengths)-1]
}

// rawPoint evaluates the spline at raw parameter t ∈ [0,1], where each
// control-point span takes an equal share of t.
func (c *PathCurve) rawPoint(t float64) math3d.Vec3 {
	l := len(c.points)
	p := float64(l) * t
	i := int(math.Floor(p))
	w := p - float64(i)
	i = ((i % l) + l) % l

	p0 := c.points[(i-1+l)%l]
	p1 := c.points[i]
	p2 := c.points[(i+1)%l]
	p3 := c.points[(i+2)%l]

	// Centripetal parameterization: knot spacing is the square root of the
	// chord length.
	dt0 := math.Pow(p0.Sub(p1).LenSq(), 0.25)
	dt1 := math.Pow(p1.Sub(p2).LenSq(), 0.25)
	dt2 := math.Pow(p2.Sub(p3).LenSq(), 0.25)
	if dt1 < 1e-4 {
		dt1 = 1
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}

	return math3d.V3(
		nonuniformCatmullRom(p0.X, p1.X, p2.X, p3.X, dt0, dt1, dt2, w),
		nonuniformCatmullRom(p0.Y, p1.Y, p2.Y, p3.Y, dt0, dt1, dt2, w),
		nonuniformCatmullRom(p0.Z, p1.Z, p2.Z, p3.Z, dt0, dt1, dt2, w),
	)
}

// nonuniformCatmullRom evaluates one coordinate of the segment x1..x2 as a
// cubic Hermite polynomial with tangents from the non-uniform knots.
func nonuniformCatmullRom(x0, x1, x2, x3, dt0, dt1, dt2, t float64) float64 {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
	t1 *= dt1
	t2 *= dt1

	c0 := x1
	c1 := t1
	c2 := -3*x1 + 3*x2 - 2*t1 - t2
	c3 := 2*x1 - 2*x2 + t1 + t2
	return c0 + t*(c1+t*(c2+t*c3))
}

func (c *PathCurve) buildArcTable() {
	c.lengths = make([]float64, arcDivisions+1)
	prev := c.rawPoint(0)
	for i := 1; i <= arcDivisions; i++ {
		cur := c.rawPoint(float64(i) / arcDivisions)
		c.lengths[i] = c.lengths[i-1] + cur.Distance(prev)
		prev = cur
	}
}

// rawParam maps normalized arc length u ∈ [0,1] to the raw parameter.
func (c *PathCurve) rawParam(u float64) float64 {
	target := u * c.Length()
	i := sort.SearchFloat64s(c.lengths, target)
	if i == 0 {
		return 0
	}
	if i > arcDivisions {
		return 1
	}

	before := c.lengths[i-1]
	seg := c.lengths[i] - before
	if seg == 0 {
		return float64(i-1) / arcDivisions
	}
	return (float64(i-1) + (target-before)/seg) / arcDivisions
}

// PointAt returns the position at normalized arc length u. u is wrapped, so
// PointAt(u+1) == PointAt(u).
func (c *PathCurve) PointAt(u float64) math3d.Vec3 {
	return c.rawPoint(c.rawParam(math3d.Fract(u)))
}

// TangentAt returns the unit direction of travel at u.
func (c *PathCurve) TangentAt(u float64) math3d.Vec3 {
	const delta = 1e-4
	a := c.PointAt(u - delta)
	b := c.PointAt(u + delta)
	return b.Sub(a).Normalize()
}

// Frames computes segments+1 parallel-transported frames at u = i/segments.
// On a closed curve the accumulated twist is spread over the loop so the
// last frame matches the first.
func (c *PathCurve) Frames(segments int) []Frame {
	frames := make([]Frame, segments+1)
	for i := range frames {
		frames[i].Tangent = c.TangentAt(float64(i) / float64(segments))
	}

	// Initial normal: perpendicular to the tangent, seeded from the axis
	// the tangent is least aligned with.
	t0 := frames[0].Tangent
	axis := math3d.V3(1, 0, 0)
	minComp := math.Abs(t0.X)
	if math.Abs(t0.Y) <= minComp {
		minComp = math.Abs(t0.Y)
		axis = math3d.V3(0, 1, 0)
	}
	if math.Abs(t0.Z) <= minComp {
		axis = math3d.V3(0, 0, 1)
	}
	side := t0.Cross(axis).Normalize()
	frames[0].Normal = t0.Cross(side)
	frames[0].Binormal = t0.Cross(frames[0].Normal)

	// Transport: rotate the previous normal by the turn between tangents
	for i := 1; i <= segments; i++ {
		prev, cur := frames[i-1], &frames[i]
		cur.Normal = prev.Normal

		turn := prev.Tangent.Cross(cur.Tangent)
		if turn.Len() > 1e-9 {
			theta := math.Acos(math3d.Clamp(prev.Tangent.Dot(cur.Tangent), -1, 1))
			cur.Normal = math3d.Rotate(turn, theta).MulVec3Dir(cur.Normal)
		}
		cur.Binormal = cur.Tangent.Cross(cur.Normal)
	}

	// Closed-curve twist correction
	last := frames[segments].Normal
	theta := math.Acos(math3d.Clamp(frames[0].Normal.Dot(last), -1, 1)) / float64(segments)
	if frames[0].Tangent.Dot(frames[0].Normal.Cross(last)) > 0 {
		theta = -theta
	}
	for i := 1; i <= segments; i++ {
		f := &frames[i]
		f.Normal = math3d.Rotate(f.Tangent, theta*float64(i)).MulVec3Dir(f.Normal).Normalize()
		f.Binormal = f.Tangent.Cross(f.Normal)
	}
	return frames
}
