// Package render provides the software rasterizer, camera, textures, cube
// maps and terminal output used to draw the creature without a GPU.
package render

import (
	"math"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

// MaxVaryings is the number of scalars a vertex program can hand to the
// fragment program.
const MaxVaryings = 16

// nearW is the smallest clip-space W accepted. Triangles with a vertex closer
// than this to the eye plane are dropped instead of clipped.
const nearW = 1e-4

// Varyings are per-vertex outputs interpolated perspective-correctly across a
// triangle before being handed to the fragment stage.
type Varyings [MaxVaryings]float64

// VertexInput holds the attributes of one mesh vertex.
type VertexInput struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
	TubeInfo math3d.Vec3 // (segment index, path progress, radius scale)
}

// Program is a vertex/fragment program pair run by the rasterizer.
type Program interface {
	// Bind is called once per draw with the object transform and the
	// camera's view-projection matrix.
	Bind(model, viewProj math3d.Mat4)
	// Vertex returns the clip-space position and the varyings for a vertex.
	Vertex(in *VertexInput) (math3d.Vec4, Varyings)
	// Fragment shades one pixel. Returning false discards it.
	Fragment(in *Varyings) (Color, bool)
}

// Displacer is implemented by programs that move vertices away from their
// rest position. The rasterizer grows culling bounds by the returned amount.
type Displacer interface {
	MaxDisplacement() float64
}

// MeshRenderer is the read-only view of a mesh the rasterizer needs.
// models.Mesh satisfies it without render importing models.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer meshes are tested against the view frustum before
// the vertex stage runs.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (lo, hi math3d.Vec3)
}

// TubeMeshRenderer meshes feed TubeInfo to the vertex program.
type TubeMeshRenderer interface {
	MeshRenderer
	GetTubeInfo(i int) math3d.Vec3
}

// Rasterizer draws meshes through a Program into a Framebuffer with a
// float depth buffer.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	depth   []float64
	frustum Frustum

	// TwoSided draws back faces too.
	TwoSided bool
	// Stats counts frustum tests since the last BeginFrame.
	Stats CullStats

	verts []shadedVertex
}

// CullStats counts triangles seen by the frustum test in the current frame.
type CullStats struct {
	Tested, Culled, Drawn int
}

// shadedVertex is a vertex after the program ran, in pixel space.
type shadedVertex struct {
	X, Y, Z float64
	InvW    float64
	// Valid is false for vertices at or behind the eye plane.
	Valid bool
	Out   Varyings
}

// NewRasterizer draws through camera into fb.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera}
	r.SetFramebuffer(fb)
	r.frustum = NewFrustumFromMatrix(camera.ViewProjectionMatrix())
	return r
}

// Camera and Framebuffer expose the rasterizer's targets.
func (r *Rasterizer) Camera() *Camera           { return r.camera }
func (r *Rasterizer) Framebuffer() *Framebuffer { return r.fb }

// SetFramebuffer swaps the render target and reallocates the depth buffer.
func (r *Rasterizer) SetFramebuffer(fb *Framebuffer) {
	r.fb = fb
	r.depth = nil
	if fb != nil {
		r.depth = make([]float64, fb.Width*fb.Height)
	}
}

func (r *Rasterizer) size() (int, int) {
	if r.fb == nil {
		return 0, 0
	}
	return r.fb.Width, r.fb.Height
}

// BeginFrame clears color and depth, snapshots the camera frustum and
// zeroes Stats. Camera moves after this call are not seen by culling until
// the next frame.
func (r *Rasterizer) BeginFrame(bg Color) {
	if r.fb != nil {
		r.fb.Clear(bg)
	}
	if len(r.depth) > 0 {
		r.depth[0] = math.Inf(1)
		for filled := 1; filled < len(r.depth); filled *= 2 {
			copy(r.depth[filled:], r.depth[:filled])
		}
	}
	r.frustum = NewFrustumFromMatrix(r.camera.ViewProjectionMatrix())
	r.Stats = CullStats{}
}

// culled reports whether mesh, grown by the program's displacement, lies
// entirely outside the frustum. Meshes without bounds are never culled.
func (r *Rasterizer) culled(mesh MeshRenderer, model math3d.Mat4, prog Program) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}
	lo, hi := bounded.GetBounds()
	box := AABB{Min: lo, Max: hi}
	if d, ok := prog.(Displacer); ok {
		box = box.Expand(d.MaxDisplacement())
	}

	r.Stats.Tested++
	if !r.frustum.IntersectAABB(box.Transform(model)) {
		r.Stats.Culled++
		return true
	}
	r.Stats.Drawn++
	return false
}

// runVertexStage shades every vertex of the mesh once and projects it to
// screen space.
func (r *Rasterizer) runVertexStage(mesh MeshRenderer, transform math3d.Mat4, prog Program) []shadedVertex {
	prog.Bind(transform, r.camera.ViewProjectionMatrix())

	n := mesh.VertexCount()
	if cap(r.verts) < n {
		r.verts = make([]shadedVertex, n)
	}
	verts := r.verts[:n]

	tube, hasTube := mesh.(TubeMeshRenderer)
	w, h := r.size()
	width, height := float64(w), float64(h)

	var in VertexInput
	for i := range n {
		in.Position, in.Normal, in.UV = mesh.GetVertex(i)
		if hasTube {
			in.TubeInfo = tube.GetTubeInfo(i)
		}

		clip, out := prog.Vertex(&in)
		sv := &verts[i]
		sv.Out = out
		sv.Valid = clip.W > nearW
		if !sv.Valid {
			continue
		}

		invW := 1.0 / clip.W
		sv.InvW = invW
		sv.X = (clip.X*invW + 1) * 0.5 * width
		sv.Y = (1 - clip.Y*invW) * 0.5 * height // Y flipped
		sv.Z = clip.Z * invW
	}
	return verts
}

// DrawMesh runs prog over every triangle of mesh unless its bounds are
// outside the frustum.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, prog Program) {
	if r.fb == nil || r.culled(mesh, transform, prog) {
		return
	}

	verts := r.runVertexStage(mesh, transform, prog)
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		r.drawTriangle(&verts[face[0]], &verts[face[1]], &verts[face[2]], prog)
	}
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C of the edge
// from (x0, y0) to (x1, y1).
func edgeCoeffs(x0, y0, x1, y1 float64) (a, b, c float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

// drawTriangle rasterizes one triangle with edge functions, perspective
// correct varyings and a depth test.
func (r *Rasterizer) drawTriangle(v0, v1, v2 *shadedVertex, prog Program) {
	if !v0.Valid || !v1.Valid || !v2.Valid {
		return
	}

	// Counter-clockwise in NDC is front-facing; the Y flip makes that a
	// negative screen-space cross product.
	cross := (v1.X-v0.X)*(v2.Y-v0.Y) - (v1.Y-v0.Y)*(v2.X-v0.X)
	if cross == 0 {
		return
	}
	if cross > 0 && !r.TwoSided {
		return
	}

	width, height := r.size()
	minX := max(0, int(math.Floor(min(v0.X, v1.X, v2.X))))
	maxX := min(width-1, int(math.Ceil(max(v0.X, v1.X, v2.X))))
	minY := max(0, int(math.Floor(min(v0.Y, v1.Y, v2.Y))))
	maxY := min(height-1, int(math.Ceil(max(v0.Y, v1.Y, v2.Y))))
	if minX > maxX || minY > maxY {
		return
	}

	a0, b0, c0 := edgeCoeffs(v1.X, v1.Y, v2.X, v2.Y)
	a1, b1, c1 := edgeCoeffs(v2.X, v2.Y, v0.X, v0.Y)
	a2, b2, c2 := edgeCoeffs(v0.X, v0.Y, v1.X, v1.Y)
	invArea := 1.0 / cross

	var interp Varyings

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5

			// Normalized barycentrics; the sign of invArea makes them
			// positive inside for either winding.
			l0 := (a0*px + b0*py + c0) * invArea
			l1 := (a1*px + b1*py + c1) * invArea
			l2 := (a2*px + b2*py + c2) * invArea
			if l0 < 0 || l1 < 0 || l2 < 0 {
				continue
			}

			z := l0*v0.Z + l1*v1.Z + l2*v2.Z
			idx := y*width + x
			if z >= r.depth[idx] {
				continue
			}

			w0, w1, w2 := l0*v0.InvW, l1*v1.InvW, l2*v2.InvW
			norm := 1 / (w0 + w1 + w2)
			w0, w1, w2 = w0*norm, w1*norm, w2*norm
			for k := range interp {
				interp[k] = w0*v0.Out[k] + w1*v1.Out[k] + w2*v2.Out[k]
			}

			c, ok := prog.Fragment(&interp)
			if !ok {
				continue
			}
			r.depth[idx] = z
			r.fb.Pixels[idx] = c
		}
	}
}

// DrawMeshWireframe renders the triangle edges of mesh after the vertex
// stage, so displaced geometry is shown as it moves.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, prog Program, color Color) {
	if r.fb == nil || r.culled(mesh, transform, prog) {
		return
	}

	verts := r.runVertexStage(mesh, transform, prog)
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		for e := range 3 {
			a, b := &verts[face[e]], &verts[face[(e+1)%3]]
			if !a.Valid || !b.Valid {
				continue
			}
			r.fb.DrawLine(int(a.X), int(a.Y), int(b.X), int(b.Y), color)
		}
	}
}
