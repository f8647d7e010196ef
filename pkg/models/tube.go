package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

// ErrInvalidTube is returned for non-positive tube dimensions.
var ErrInvalidTube = errors.New("invalid tube parameters")

// BuildTube sweeps a circle of radius along curve. The result has
// (segments+1)*(radialSegments+1) vertices: the first and last rings, and
// the first and last vertex of each ring, coincide so UVs can run 0..1.
func BuildTube(curve *PathCurve, segments int, radius float64, radialSegments int) (*Mesh, error) {
	if curve == nil || segments < 3 || radialSegments < 3 || radius <= 0 {
		return nil, fmt.Errorf("build tube (segments=%d radial=%d radius=%v): %w",
			segments, radialSegments, radius, ErrInvalidTube)
	}

	frames := curve.Frames(segments)
	ring := radialSegments + 1

	mesh := NewMesh("body")
	mesh.HasTubeInfo = true
	mesh.Vertices = make([]MeshVertex, 0, (segments+1)*ring)
	mesh.Faces = make([]Face, 0, segments*radialSegments*2)

	for i := 0; i <= segments; i++ {
		u := float64(i) / float64(segments)
		// The closing ring reuses the start so the seam has no gap
		center := curve.PointAt(u)
		if i == segments {
			center = curve.PointAt(0)
		}
		f := frames[i]

		for j := 0; j <= radialSegments; j++ {
			v := float64(j) / float64(radialSegments) * 2 * math.Pi
			sin, cos := math.Sin(v), -math.Cos(v)
			normal := f.Normal.Scale(cos).Add(f.Binormal.Scale(sin)).Normalize()

			mesh.Vertices = append(mesh.Vertices, MeshVertex{
				Position: center.Add(normal.Scale(radius)),
				Normal:   normal,
				UV:       math3d.V2(u, float64(j)/float64(radialSegments)),
				TubeInfo: math3d.V3(math.Floor(u*float64(segments)), u, 1.0),
			})
		}
	}

	for i := 1; i <= segments; i++ {
		for j := 1; j <= radialSegments; j++ {
			a := ring*(i-1) + (j - 1)
			b := ring*i + (j - 1)
			c := ring*i + j
			d := ring*(i-1) + j

			mesh.Faces = append(mesh.Faces, Face{V: [3]int{a, b, d}}, Face{V: [3]int{b, c, d}})
		}
	}

	mesh.CalculateBounds()
	return mesh, nil
}
