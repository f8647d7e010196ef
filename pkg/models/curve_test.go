package models

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

func TestNewPathCurveTooFewPoints(t *testing.T) {
	_, err := NewPathCurve([]math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)})
	if !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("err = %v, want ErrTooFewPoints", err)
	}
}

func TestPathCurveInterpolatesControlPoints(t *testing.T) {
	c := DefaultPath()
	pts := c.Points()
	for i, p := range pts {
		got := c.rawPoint(float64(i) / float64(len(pts)))
		if got.Distance(p) > 1e-9 {
			t.Errorf("rawPoint at knot %d = %v, want %v", i, got, p)
		}
	}
}

func TestPathCurveIsPeriodic(t *testing.T) {
	c := DefaultPath()
	for _, u := range []float64{0, 0.1, 0.37, 0.5, 0.99} {
		a := c.PointAt(u)
		b := c.PointAt(u + 1)
		if a.Distance(b) > 1e-9 {
			t.Errorf("PointAt(%v) = %v but PointAt(%v) = %v", u, a, u+1, b)
		}
	}
	if c.PointAt(0).Distance(c.PointAt(0.999999)) > 1e-3 {
		t.Error("loop should close on itself")
	}
}

func TestPathCurveArcLengthIsUniform(t *testing.T) {
	c := DefaultPath()
	const n = 50
	step := c.Length() / n
	for i := range n {
		d := c.PointAt(float64(i) / n).Distance(c.PointAt(float64(i+1) / n))
		// Chords are slightly shorter than arcs
		if d > step*1.01 || d < step*0.95 {
			t.Errorf("chord %d = %v, want about %v", i, d, step)
		}
	}
}

func TestFramesAreOrthonormalAndClosed(t *testing.T) {
	c := DefaultPath()
	const segments = 64
	frames := c.Frames(segments)
	if len(frames) != segments+1 {
		t.Fatalf("len(frames) = %d, want %d", len(frames), segments+1)
	}

	for i, f := range frames {
		if math.Abs(f.Tangent.Len()-1) > 1e-6 || math.Abs(f.Normal.Len()-1) > 1e-6 || math.Abs(f.Binormal.Len()-1) > 1e-6 {
			t.Fatalf("frame %d is not unit length: %+v", i, f)
		}
		if math.Abs(f.Tangent.Dot(f.Normal)) > 1e-6 || math.Abs(f.Tangent.Dot(f.Binormal)) > 1e-6 {
			t.Fatalf("frame %d is not orthogonal: %+v", i, f)
		}
	}

	if frames[0].Normal.Distance(frames[segments].Normal) > 1e-4 {
		t.Errorf("closing normal %v does not match start %v", frames[segments].Normal, frames[0].Normal)
	}
}
