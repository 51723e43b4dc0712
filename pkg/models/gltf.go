package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/pixel"
)

// GLTFLoader loads glTF/GLB files into meshes, one mesh per primitive.
type GLTFLoader struct {
	// FileNormals keeps normals stored in the file instead of regenerating them.
	FileNormals bool
	// Textures decodes base color textures into power-of-two pixel textures.
	Textures bool
}

// NewGLTFLoader creates a loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		FileNormals: true,
		Textures:    true,
	}
}

// LoadGLTF loads a .gltf or .glb file with default options.
func LoadGLTF(path string) ([]*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load reads every triangle primitive of every mesh in the document.
// Returned meshes are rebuilt and ready to add to a scene.
func (l *GLTFLoader) Load(path string) ([]*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	materials := make(map[int]*Material)
	var meshes []*Mesh
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				// Skip non-triangle primitives (lines, points, etc)
				continue
			}

			name := gm.Name
			if name == "" {
				name = fmt.Sprintf("mesh%d", mi)
			}
			if len(gm.Primitives) > 1 {
				name = fmt.Sprintf("%s.%d", name, pi)
			}

			mesh, err := l.processPrimitive(doc, prim, name)
			if err != nil {
				return nil, fmt.Errorf("process mesh %q: %w", name, err)
			}
			if mesh == nil {
				continue
			}

			matIdx := -1
			if prim.Material != nil {
				matIdx = *prim.Material
			}
			mat, ok := materials[matIdx]
			if !ok {
				mat = l.material(doc, matIdx, filepath.Dir(path))
				materials[matIdx] = mat
			}
			mesh.Material = mat

			if err := mesh.Rebuild(); err != nil {
				return nil, err
			}
			meshes = append(meshes, mesh)
		}
	}

	if len(meshes) == 0 {
		return nil, fmt.Errorf("gltf %s: no triangle primitives", filepath.Base(path))
	}
	return meshes, nil
}

// processPrimitive extracts geometry from one glTF primitive.
func (l *GLTFLoader) processPrimitive(doc *gltf.Document, prim *gltf.Primitive, name string) (*Mesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}

	positions, err := readVec3Accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals []math3d.Vec3
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = readVec3Accessor(doc, normIdx)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs []math3d.Vec2
	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err = readVec2Accessor(doc, uvIdx)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
	}

	mesh := NewMesh(name)
	mesh.PreserveNormals = l.FileNormals && len(normals) == len(positions)

	for i, p := range positions {
		v := Vertex{Pos: p}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			// glTF UVs have a top-left origin, matching texture rows.
			v.U, v.V = uvs[i].X, uvs[i].Y
		}
		mesh.AddVertex(v)
	}

	if prim.Indices != nil {
		indices, err := readIndices(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		for i := 0; i+2 < len(indices); i += 3 {
			mesh.AddTriangle(indices[i], indices[i+1], indices[i+2])
		}
	} else {
		// No indices, assume sequential triangles
		for i := 0; i+2 < len(positions); i += 3 {
			mesh.AddTriangle(i, i+1, i+2)
		}
	}
	return mesh, nil
}

// material converts glTF material idx into a facet material. Index -1 or a
// missing material yields a light grey default.
func (l *GLTFLoader) material(doc *gltf.Document, idx int, dir string) *Material {
	mat := NewMaterial(pixel.RGB(200, 200, 200))
	if idx < 0 || idx >= len(doc.Materials) {
		return mat
	}

	gm := doc.Materials[idx]
	mat.Name = gm.Name
	pbr := gm.PBRMetallicRoughness
	if pbr == nil {
		return mat
	}

	if f := pbr.BaseColorFactor; f != nil {
		mat.Color = pixel.RGB(unitToByte(f[0]), unitToByte(f[1]), unitToByte(f[2]))
		if gm.AlphaMode == gltf.AlphaBlend {
			mat.Transparency = 255 - unitToByte(f[3])
		}
	}
	if pbr.MetallicFactor != nil {
		mat.Reflectivity = unitToByte(*pbr.MetallicFactor)
	}

	if l.Textures && pbr.BaseColorTexture != nil {
		if img := readTextureImage(doc, pbr.BaseColorTexture.Index, dir); img != nil {
			mat.Texture = pixel.FromImage(img)
			// Texels replace the base color; keep the factor out of the way.
			mat.Color = pixel.White
		}
	}
	return mat
}

func unitToByte(f float64) uint8 {
	return uint8(math.Round(math.Min(math.Max(f, 0), 1) * 255))
}

// readTextureImage decodes the image behind texture index texIdx, either
// embedded in a buffer view or stored next to the document. Undecodable
// images yield nil.
func readTextureImage(doc *gltf.Document, texIdx int, dir string) image.Image {
	if texIdx < 0 || texIdx >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
		return nil
	}
	src := *doc.Textures[texIdx].Source
	if src < 0 || src >= len(doc.Images) {
		return nil
	}
	gi := doc.Images[src]

	var data []byte
	switch {
	case gi.BufferView != nil:
		bv := doc.BufferViews[*gi.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil || bv.ByteOffset+bv.ByteLength > len(buf.Data) {
			return nil
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case gi.URI != "":
		b, err := os.ReadFile(filepath.Join(dir, gi.URI))
		if err != nil {
			return nil
		}
		data = b
	default:
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return img
}

// readVec3Accessor reads Vec3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v/%v", accessor.Type, accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range accessor.Count {
		b := data[i*stride:]
		result[i] = math3d.V3(readFloat32(b), readFloat32(b[4:]), readFloat32(b[8:]))
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a glTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC2, got %v/%v", accessor.Type, accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, 8)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec2, accessor.Count)
	for i := range accessor.Count {
		b := data[i*stride:]
		result[i] = math3d.V2(readFloat32(b), readFloat32(b[4:]))
	}
	return result, nil
}

// readIndices reads index data from a scalar glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		b := data[i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

// accessorBytes returns the accessor's bytes starting at its first element
// and the stride between elements. elemSize is the tightly packed element size.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, 0, fmt.Errorf("buffer %d has no data", bufferView.Buffer)
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	end := start
	if accessor.Count > 0 {
		end = start + (accessor.Count-1)*stride + elemSize
	}
	if end > len(buffer.Data) {
		return nil, 0, fmt.Errorf("accessor reads past buffer end (%d > %d)", end, len(buffer.Data))
	}
	return buffer.Data[start:end], stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}
