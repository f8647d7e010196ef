package glview

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/taigrr/ouroboros/pkg/math3d"
	"github.com/taigrr/ouroboros/pkg/models"
	"github.com/taigrr/ouroboros/pkg/render"
	"github.com/taigrr/ouroboros/pkg/shading"
)

// vertexStride is the float count of one interleaved vertex:
// position, normal, uv, tube info.
const vertexStride = 3 + 3 + 2 + 3

// interleave packs a mesh into the vertex and index layout VertexSource reads.
func interleave(m *models.Mesh) ([]float32, []uint32) {
	verts := make([]float32, 0, len(m.Vertices)*vertexStride)
	for _, v := range m.Vertices {
		verts = append(verts,
			float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z),
			float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z),
			float32(v.UV.X), float32(v.UV.Y),
			float32(v.TubeInfo.X), float32(v.TubeInfo.Y), float32(v.TubeInfo.Z),
		)
	}
	idx := make([]uint32, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		idx = append(idx, uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
	}
	return verts, idx
}

// mat4f narrows a column-major matrix for glUniformMatrix4fv.
func mat4f(m math3d.Mat4) [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// normalMat3 returns the upper 3x3 of the inverse transpose of m, column-major.
func normalMat3(m math3d.Mat4) [9]float32 {
	n := m.Inverse().Transpose()
	return [9]float32{
		float32(n[0]), float32(n[1]), float32(n[2]),
		float32(n[4]), float32(n[5]), float32(n[6]),
		float32(n[8]), float32(n[9]), float32(n[10]),
	}
}

func vec3f(v math3d.Vec3) (float32, float32, float32) {
	return float32(v.X), float32(v.Y), float32(v.Z)
}

type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

func uploadMesh(m *models.Mesh) gpuMesh {
	verts, idx := interleave(m)
	var g gpuMesh
	g.count = int32(len(idx))

	gl.GenVertexArrays(1, &g.vao)
	gl.GenBuffers(1, &g.vbo)
	gl.GenBuffers(1, &g.ebo)
	gl.BindVertexArray(g.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(idx)*4, gl.Ptr(idx), gl.STATIC_DRAW)

	stride := int32(vertexStride * 4)
	attribs := []struct {
		loc, size, offset uint32
	}{
		{shading.AttribPosition, 3, 0},
		{shading.AttribNormal, 3, 3},
		{shading.AttribUV, 2, 6},
		{shading.AttribTubeInfo, 3, 8},
	}
	for _, a := range attribs {
		gl.EnableVertexAttribArray(a.loc)
		gl.VertexAttribPointer(a.loc, int32(a.size), gl.FLOAT, false, stride, gl.PtrOffset(int(a.offset)*4))
	}
	gl.BindVertexArray(0)
	return g
}

func (g *gpuMesh) delete() {
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
	*g = gpuMesh{}
}

// uploadTexture creates a repeating, mipmapped 2D texture. Row 0 is v = 0,
// which is also where GL puts t = 0, so no flip is needed.
func uploadTexture(tex *render.Texture) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(tex.Pixels))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id
}

// uploadCubeMap creates a cube texture. Faces are already in GL order.
func uploadCubeMap(cm *render.CubeMap) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	for i, f := range cm.Faces {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA8,
			int32(f.Width), int32(f.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(f.Pixels))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return id
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link program: %v", logText)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile shader: %v", logText)
	}
	return shader, nil
}
