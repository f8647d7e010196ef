package models

import (
	"fmt"
	"math"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

// NewSphere builds a UV sphere centered on the origin. The poles lie on the
// Y axis and triangles at the poles are not degenerate.
func NewSphere(name string, radius float64, widthSegments, heightSegments int) (*Mesh, error) {
	if radius <= 0 || widthSegments < 3 || heightSegments < 2 {
		return nil, fmt.Errorf("build sphere %q: %w", name, ErrInvalidTube)
	}

	mesh := NewMesh(name)
	grid := make([][]int, heightSegments+1)

	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		theta := v * math.Pi
		grid[iy] = make([]int, widthSegments+1)

		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			phi := u * 2 * math.Pi

			pos := math3d.V3(
				-radius*math.Cos(phi)*math.Sin(theta),
				radius*math.Cos(theta),
				radius*math.Sin(phi)*math.Sin(theta),
			)
			grid[iy][ix] = len(mesh.Vertices)
			mesh.Vertices = append(mesh.Vertices, MeshVertex{
				Position: pos,
				Normal:   pos.Normalize(),
				UV:       math3d.V2(u, v),
			})
		}
	}

	for iy := range heightSegments {
		for ix := range widthSegments {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]

			if iy != 0 {
				mesh.Faces = append(mesh.Faces, Face{V: [3]int{a, b, d}})
			}
			if iy != heightSegments-1 {
				mesh.Faces = append(mesh.Faces, Face{V: [3]int{b, c, d}})
			}
		}
	}

	mesh.CalculateBounds()
	return mesh, nil
}
