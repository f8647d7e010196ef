package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

// TubeInfoAttribute is the custom vertex attribute that carries
// (segment index, path progress, radius scale) through glTF files.
const TubeInfoAttribute = "_TUBEINFO"

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals computes smooth normals for primitives without them.
	CalculateNormals bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{CalculateNormals: true}
}

// LoadGLB loads a binary GLTF (.glb) file, one Mesh per glTF mesh.
func LoadGLB(path string) ([]*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns its meshes.
func (l *GLTFLoader) Load(path string) ([]*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	meshes := make([]*Mesh, 0, len(doc.Meshes))
	for i, m := range doc.Meshes {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("%s#%d", filepath.Base(path), i)
		}
		mesh := NewMesh(name)
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", name, err)
		}
		mesh.CalculateBounds()
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// processMesh extracts geometry and material from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		var tubeInfo [][3]float32
		if idx, ok := prim.Attributes[TubeInfoAttribute]; ok {
			data, err := modeler.ReadAccessor(doc, doc.Accessors[idx], nil)
			if err != nil {
				return fmt.Errorf("read tube info: %w", err)
			}
			if tubeInfo, ok = data.([][3]float32); !ok {
				return fmt.Errorf("read tube info: unexpected %T", data)
			}
			mesh.HasTubeInfo = true
		}

		// Base vertex index for this primitive
		baseVertex := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: vec3(p)}
			if i < len(normals) {
				v.Normal = vec3(normals[i])
			}
			if i < len(uvs) {
				v.UV = math3d.V2(float64(uvs[i][0]), float64(uvs[i][1]))
			}
			if i < len(tubeInfo) {
				v.TubeInfo = vec3(tubeInfo[i])
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		if prim.Indices != nil {
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
			for i := 0; i+2 < len(indices); i += 3 {
				mesh.Faces = append(mesh.Faces, Face{V: [3]int{
					baseVertex + int(indices[i]),
					baseVertex + int(indices[i+1]),
					baseVertex + int(indices[i+2]),
				}})
			}
		} else {
			// No indices, assume sequential triangles
			for i := 0; i+2 < len(positions); i += 3 {
				mesh.Faces = append(mesh.Faces, Face{V: [3]int{baseVertex + i, baseVertex + i + 1, baseVertex + i + 2}})
			}
		}

		if len(normals) == 0 && l.CalculateNormals {
			mesh.CalculateSmoothNormals()
		}

		if prim.Material != nil {
			if err := readMaterial(doc, doc.Materials[*prim.Material], &mesh.Material); err != nil {
				return err
			}
		}
	}
	return nil
}

func vec3(v [3]float32) math3d.Vec3 {
	return math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
}

// readMaterial copies factors and decodes embedded texture images.
func readMaterial(doc *gltf.Document, src *gltf.Material, dst *Material) error {
	dst.Name = src.Name
	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			dst.BaseColor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			dst.Metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			dst.Roughness = *pbr.RoughnessFactor
		}

		var err error
		if pbr.BaseColorTexture != nil {
			if dst.BaseMap, err = textureImage(doc, pbr.BaseColorTexture.Index); err != nil {
				return fmt.Errorf("read base color texture: %w", err)
			}
		}
		if pbr.MetallicRoughnessTexture != nil {
			if dst.RoughnessMap, err = textureImage(doc, pbr.MetallicRoughnessTexture.Index); err != nil {
				return fmt.Errorf("read roughness texture: %w", err)
			}
		}
	}
	if src.NormalTexture != nil && src.NormalTexture.Index != nil {
		img, err := textureImage(doc, *src.NormalTexture.Index)
		if err != nil {
			return fmt.Errorf("read normal texture: %w", err)
		}
		dst.NormalMap = img
	}
	return nil
}

// textureImage decodes the image a texture points at from its buffer view.
func textureImage(doc *gltf.Document, texIdx int) (image.Image, error) {
	tex := doc.Textures[texIdx]
	if tex.Source == nil {
		return nil, fmt.Errorf("texture %d has no source", texIdx)
	}
	img := doc.Images[*tex.Source]
	if img.BufferView == nil {
		return nil, fmt.Errorf("image %d is not embedded", *tex.Source)
	}

	bv := doc.BufferViews[*img.BufferView]
	buf := doc.Buffers[bv.Buffer]
	if buf.Data == nil {
		return nil, fmt.Errorf("image %d buffer has no data", *tex.Source)
	}
	data := buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %d: %w", *tex.Source, err)
	}
	return decoded, nil
}

// ExportNode places a mesh in an exported scene.
type ExportNode struct {
	Mesh      *Mesh
	Transform math3d.Mat4 // Baked into the exported vertices
}

// SaveGLB writes nodes as a binary glTF file. Tube meshes carry their tube
// attribute as TubeInfoAttribute, and material maps are embedded as PNG.
func SaveGLB(path string, nodes []ExportNode) error {
	doc := gltf.NewDocument()

	for _, n := range nodes {
		mesh := n.Mesh.Clone()
		mesh.Transform(n.Transform)

		meshIdx, err := writeMesh(doc, mesh)
		if err != nil {
			return fmt.Errorf("write mesh %q: %w", mesh.Name, err)
		}
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: mesh.Name, Mesh: gltf.Index(meshIdx)})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}

	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save glb: %w", err)
	}
	return nil
}

func writeMesh(doc *gltf.Document, mesh *Mesh) (int, error) {
	positions := make([][3]float32, len(mesh.Vertices))
	normals := make([][3]float32, len(mesh.Vertices))
	uvs := make([][2]float32, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		positions[i] = [3]float32{float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z)}
		normals[i] = [3]float32{float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z)}
		uvs[i] = [2]float32{float32(v.UV.X), float32(v.UV.Y)}
	}

	indices := make([]uint32, 0, len(mesh.Faces)*3)
	for _, f := range mesh.Faces {
		indices = append(indices, uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
	}

	attributes := map[string]int{
		gltf.POSITION:   modeler.WritePosition(doc, positions),
		gltf.NORMAL:     modeler.WriteNormal(doc, normals),
		gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uvs),
	}
	if mesh.HasTubeInfo {
		info := make([][3]float32, len(mesh.Vertices))
		for i, v := range mesh.Vertices {
			info[i] = [3]float32{float32(v.TubeInfo.X), float32(v.TubeInfo.Y), float32(v.TubeInfo.Z)}
		}
		attributes[TubeInfoAttribute] = modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, info)
	}

	matIdx, err := writeMaterial(doc, &mesh.Material)
	if err != nil {
		return 0, err
	}

	prim := &gltf.Primitive{
		Indices:  gltf.Index(modeler.WriteIndices(doc, indices)),
		Material: gltf.Index(matIdx),
	}
	prim.Attributes = attributes

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: mesh.Name, Primitives: []*gltf.Primitive{prim}})
	return len(doc.Meshes) - 1, nil
}

func writeMaterial(doc *gltf.Document, m *Material) (int, error) {
	baseColor := m.BaseColor
	mat := &gltf.Material{
		Name: m.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &baseColor,
			MetallicFactor:  gltf.Float(m.Metallic),
			RoughnessFactor: gltf.Float(m.Roughness),
		},
	}

	if m.BaseMap != nil {
		idx, err := writeTexture(doc, m.Name+"-albedo", m.BaseMap)
		if err != nil {
			return 0, err
		}
		mat.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: idx}
	}
	if m.RoughnessMap != nil {
		idx, err := writeTexture(doc, m.Name+"-roughness", m.RoughnessMap)
		if err != nil {
			return 0, err
		}
		mat.PBRMetallicRoughness.MetallicRoughnessTexture = &gltf.TextureInfo{Index: idx}
	}
	if m.NormalMap != nil {
		idx, err := writeTexture(doc, m.Name+"-normal", m.NormalMap)
		if err != nil {
			return 0, err
		}
		mat.NormalTexture = &gltf.NormalTexture{Index: gltf.Index(idx)}
	}

	doc.Materials = append(doc.Materials, mat)
	return len(doc.Materials) - 1, nil
}

// writeTexture embeds img as PNG and returns the texture index.
func writeTexture(doc *gltf.Document, name string, img image.Image) (int, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, fmt.Errorf("encode %s: %w", name, err)
	}
	imgIdx, err := modeler.WriteImage(doc, name, "image/png", &buf)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", name, err)
	}
	doc.Textures = append(doc.Textures, &gltf.Texture{Name: name, Source: gltf.Index(imgIdx)})
	return len(doc.Textures) - 1, nil
}
