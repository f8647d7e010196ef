package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

// Cube map faces in the order OpenGL numbers them.
const (
	FacePosX = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// ErrFaceSize is returned when cube map faces are not square and equal.
var ErrFaceSize = errors.New("cube map faces must be equal squares")

// CubeMap is an environment map made of six square faces.
type CubeMap struct {
	Faces [6]*Texture
}

// LoadCubeMap loads six face images ordered +X, -X, +Y, -Y, +Z, -Z.
func LoadCubeMap(paths [6]string) (*CubeMap, error) {
	var cm CubeMap
	for i, p := range paths {
		tex, err := LoadTexture(p)
		if err != nil {
			return nil, fmt.Errorf("load cube face %d: %w", i, err)
		}
		tex.Clamp = true
		cm.Faces[i] = tex
	}

	size := cm.Faces[0].Width
	for i, f := range cm.Faces {
		if f.Width != size || f.Height != size {
			return nil, fmt.Errorf("cube face %d is %dx%d: %w", i, f.Width, f.Height, ErrFaceSize)
		}
	}
	return &cm, nil
}

// NeutralCubeMap builds a soft studio gradient: a bright sky fading to a
// dark floor. It is used whenever the environment images cannot be loaded.
func NeutralCubeMap(size int) *CubeMap {
	sky := colorful.Color{R: 0.86, G: 0.89, B: 0.95}
	horizon := colorful.Color{R: 0.55, G: 0.56, B: 0.6}
	floor := colorful.Color{R: 0.12, G: 0.12, B: 0.14}

	var cm CubeMap
	for face := range cm.Faces {
		tex := NewTexture(size, size)
		tex.Clamp = true
		for y := range size {
			for x := range size {
				u := (float64(x)+0.5)/float64(size)*2 - 1
				v := (float64(y)+0.5)/float64(size)*2 - 1
				dir := faceDirection(face, u, v)

				var c colorful.Color
				if dir.Y >= 0 {
					c = horizon.BlendLab(sky, math.Sqrt(dir.Y))
				} else {
					c = horizon.BlendLab(floor, math.Sqrt(-dir.Y))
				}
				r, g, b := c.Clamped().RGB255()
				tex.SetPixel(x, y, RGB(r, g, b))
			}
		}
		cm.Faces[face] = tex
	}
	return &cm
}

// faceDirection returns the unit direction through face coordinates
// (u, v) ∈ [-1,1]², v pointing down the image.
func faceDirection(face int, u, v float64) math3d.Vec3 {
	var d math3d.Vec3
	switch face {
	case FacePosX:
		d = math3d.V3(1, -v, -u)
	case FaceNegX:
		d = math3d.V3(-1, -v, u)
	case FacePosY:
		d = math3d.V3(u, 1, v)
	case FaceNegY:
		d = math3d.V3(u, -1, -v)
	case FacePosZ:
		d = math3d.V3(u, -v, 1)
	default:
		d = math3d.V3(-u, -v, -1)
	}
	return d.Normalize()
}

// Sample returns the environment color in [0,1] seen along dir.
func (c *CubeMap) Sample(dir math3d.Vec3) math3d.Vec3 {
	ax, ay, az := math.Abs(dir.X), math.Abs(dir.Y), math.Abs(dir.Z)

	var face int
	var sc, tc, ma float64
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if dir.X > 0 {
			face, sc, tc = FacePosX, -dir.Z, -dir.Y
		} else {
			face, sc, tc = FaceNegX, dir.Z, -dir.Y
		}
	case ay >= az:
		ma = ay
		if dir.Y > 0 {
			face, sc, tc = FacePosY, dir.X, dir.Z
		} else {
			face, sc, tc = FaceNegY, dir.X, -dir.Z
		}
	default:
		ma = az
		if dir.Z > 0 {
			face, sc, tc = FacePosZ, dir.X, -dir.Y
		} else {
			face, sc, tc = FaceNegZ, -dir.X, -dir.Y
		}
	}
	if ma == 0 {
		return math3d.Zero3()
	}

	u := (sc/ma + 1) * 0.5
	v := (tc/ma + 1) * 0.5
	return c.Faces[face].SampleVec(u, v)
}
