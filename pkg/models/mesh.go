// Package models builds and stores the creature's geometry: the closed path
// curve, the tube swept along it, the head and eye spheres, and their glTF
// import and export.
package models

import (
	"image"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

// Mesh is an indexed triangle list. Tube meshes also carry a per-vertex
// TubeInfo attribute that drives the travelling wave.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Faces    []Face
	Material Material

	HasTubeInfo bool

	// BoundsMin and BoundsMax are refreshed by CalculateBounds.
	BoundsMin, BoundsMax math3d.Vec3
}

type MeshVertex struct {
	Position, Normal math3d.Vec3
	UV               math3d.Vec2
	// TubeInfo is (segment index, path progress, radius scale) on the body
	// and zero on rigid parts.
	TubeInfo math3d.Vec3
}

// Face indexes three vertices wound counter-clockwise from outside.
type Face struct {
	V [3]int
}

// Material is what the glTF exporter writes for a mesh. Maps are optional;
// roughness is read from the green channel.
type Material struct {
	Name                             string
	BaseColor                        [4]float64
	Metallic, Roughness              float64
	BaseMap, NormalMap, RoughnessMap image.Image
}

// NewMesh returns an empty mesh with a white, fully rough material.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Material: Material{Name: name, BaseColor: [4]float64{1, 1, 1, 1}, Roughness: 1},
	}
}

func (m *Mesh) CalculateBounds() {
	for i, v := range m.Vertices {
		if i == 0 {
			m.BoundsMin, m.BoundsMax = v.Position, v.Position
			continue
		}
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

func (m *Mesh) Center() math3d.Vec3 { return m.BoundsMin.Lerp(m.BoundsMax, 0.5) }
func (m *Mesh) Size() math3d.Vec3   { return m.BoundsMax.Sub(m.BoundsMin) }
func (m *Mesh) TriangleCount() int  { return len(m.Faces) }
func (m *Mesh) VertexCount() int    { return len(m.Vertices) }

// CalculateSmoothNormals rebuilds normals by summing unnormalized face
// normals, so larger faces weigh more.
func (m *Mesh) CalculateSmoothNormals() {
	sums := make([]math3d.Vec3, len(m.Vertices))
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f.V[0]].Position, m.Vertices[f.V[1]].Position, m.Vertices[f.V[2]].Position
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range f.V {
			sums[idx] = sums[idx].Add(n)
		}
	}
	for i, n := range sums {
		m.Vertices[i].Normal = n.Normalize()
	}
}

// Transform bakes mat into the vertices. Normals go through the inverse
// transpose so the squashed head keeps correct shading.
func (m *Mesh) Transform(mat math3d.Mat4) {
	nm := mat.Inverse().Transpose()
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = mat.MulVec3(v.Position)
		v.Normal = nm.MulVec3Dir(v.Normal).Normalize()
	}
	m.CalculateBounds()
}

// Clone copies the geometry. Material images are shared; nothing writes them.
func (m *Mesh) Clone() *Mesh {
	out := *m
	out.Vertices = append([]MeshVertex(nil), m.Vertices...)
	out.Faces = append([]Face(nil), m.Faces...)
	return &out
}

// The accessors below satisfy the rasterizer's mesh interfaces.

func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := &m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

func (m *Mesh) GetFace(i int) [3]int            { return m.Faces[i].V }
func (m *Mesh) GetTubeInfo(i int) math3d.Vec3   { return m.Vertices[i].TubeInfo }
func (m *Mesh) GetBounds() (lo, hi math3d.Vec3) { return m.BoundsMin, m.BoundsMax }
