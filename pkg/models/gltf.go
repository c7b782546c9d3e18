package models

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
)

// GLTFLoader loads glTF and GLB files into Mesh format.
//
// glTF front faces are counter-clockwise and texture V grows downward, which
// is what the renderer expects, so neither winding nor V is altered.
type GLTFLoader struct {
	// LoadTextures decodes base color textures into Material.BaseMap.
	LoadTextures bool
}

// NewGLTFLoader creates a loader that also decodes textures.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{LoadTextures: true}
}

// LoadGLTF loads a .gltf or .glb file with the default loader.
func LoadGLTF(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a glTF or GLB file and returns a single Mesh holding every
// triangle primitive of every mesh in the document.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	mesh.Materials = l.readMaterials(doc, filepath.Dir(path))

	for _, m := range doc.Meshes {
		if err := processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// readMaterials converts the document materials. Textures that cannot be
// read are logged and left out; the material keeps its base color.
func (l *GLTFLoader) readMaterials(doc *gltf.Document, dir string) []Material {
	mats := make([]Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := DefaultMaterial(gm.Name)
		if mat.Name == "" {
			mat.Name = fmt.Sprintf("material%d", i)
		}
		pbr := gm.PBRMetallicRoughness
		if pbr != nil {
			if pbr.BaseColorFactor != nil {
				mat.BaseColor = *pbr.BaseColorFactor
			}
			mat.Metallic = 1
			if pbr.MetallicFactor != nil {
				mat.Metallic = *pbr.MetallicFactor
			}
			if pbr.RoughnessFactor != nil {
				mat.Roughness = *pbr.RoughnessFactor
			}
			if l.LoadTextures && pbr.BaseColorTexture != nil {
				img, err := readTexture(doc, pbr.BaseColorTexture.Index, dir)
				if err != nil {
					Logger().Warn("skipping base color texture", "material", mat.Name, "error", err)
				} else {
					mat.BaseMap = img
				}
			}
		}
		mats[i] = mat
	}
	return mats
}

// readTexture decodes the image behind texture index ti.
func readTexture(doc *gltf.Document, ti int, dir string) (image.Image, error) {
	if ti < 0 || ti >= len(doc.Textures) {
		return nil, fmt.Errorf("texture %d out of range", ti)
	}
	src := doc.Textures[ti].Source
	if src == nil || *src < 0 || *src >= len(doc.Images) {
		return nil, fmt.Errorf("texture %d has no image", ti)
	}

	data, err := imageData(doc, doc.Images[*src], dir)
	if err != nil {
		return nil, err
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("decode image %d: %w", *src, err)
	}
	return img, nil
}

// imageData returns the encoded bytes of img from a buffer view, a data URI
// or a file next to the document.
func imageData(doc *gltf.Document, img *gltf.Image, dir string) ([]byte, error) {
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer].Data
		end := bv.ByteOffset + bv.ByteLength
		if end > len(buf) {
			return nil, fmt.Errorf("image buffer view exceeds buffer (%d > %d)", end, len(buf))
		}
		return buf[bv.ByteOffset:end], nil
	case img.IsEmbeddedResource():
		return img.MarshalData()
	case img.URI != "":
		return os.ReadFile(filepath.Join(dir, img.URI))
	}
	return nil, fmt.Errorf("image %q has no data", img.Name)
}

// processMesh appends the triangle primitives of m to mesh.
func processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, strips)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var uvs [][2]float32
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		baseVertex := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{}
			v.Position.X, v.Position.Y, v.Position.Z = float64(p[0]), float64(p[1]), float64(p[2])
			if i < len(uvs) {
				v.UV.X, v.UV.Y = float64(uvs[i][0]), float64(uvs[i][1])
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{
				V:        [3]int{baseVertex + indices[i], baseVertex + indices[i+1], baseVertex + indices[i+2]},
				Material: material,
			}
			if indices[i] >= len(positions) || indices[i+1] >= len(positions) || indices[i+2] >= len(positions) {
				return fmt.Errorf("index out of range in face %d", i/3)
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return nil
}

// accessorBytes resolves the buffer bytes, start offset and stride of a
// float or index accessor with elemSize bytes per element.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	bv := doc.BufferViews[*accessor.BufferView]
	data := doc.Buffers[bv.Buffer].Data
	if data == nil {
		return nil, 0, 0, fmt.Errorf("buffer %d has no data", bv.Buffer)
	}

	start := bv.ByteOffset + accessor.ByteOffset
	stride := bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if accessor.Count > 0 {
		last := start + (accessor.Count-1)*stride + elemSize
		if last > len(data) {
			return nil, 0, 0, fmt.Errorf("accessor reads past buffer end (%d > %d)", last, len(data))
		}
	}
	return data, start, stride, nil
}

func readFloats(doc *gltf.Document, idx int, want gltf.AccessorType, n int) ([]float32, int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, 0, fmt.Errorf("accessor %d out of range", idx)
	}
	accessor := doc.Accessors[idx]
	if accessor.Type != want {
		return nil, 0, fmt.Errorf("expected %v, got %v", want, accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, 0, fmt.Errorf("%w: %v components", ErrUnsupportedFormat, accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, 4*n)
	if err != nil {
		return nil, 0, err
	}
	out := make([]float32, accessor.Count*n)
	for i := range accessor.Count {
		off := start + i*stride
		for j := range n {
			out[i*n+j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off+j*4:]))
		}
	}
	return out, accessor.Count, nil
}

// readVec3Accessor reads float VEC3 data.
func readVec3Accessor(doc *gltf.Document, idx int) ([][3]float32, error) {
	flat, count, err := readFloats(doc, idx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	result := make([][3]float32, count)
	for i := range result {
		result[i] = [3]float32{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return result, nil
}

// readVec2Accessor reads float VEC2 data.
func readVec2Accessor(doc *gltf.Document, idx int) ([][2]float32, error) {
	flat, count, err := readFloats(doc, idx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	result := make([][2]float32, count)
	for i := range result {
		result[i] = [2]float32{flat[i*2], flat[i*2+1]}
	}
	return result, nil
}

// readIndices reads unsigned SCALAR index data.
func readIndices(doc *gltf.Document, idx int) ([]int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	accessor := doc.Accessors[idx]
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
		return nil, fmt.Errorf("%w: index type %v", ErrUnsupportedFormat, accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}
	result := make([]int, accessor.Count)
	for i := range result {
		off := start + i*stride
		switch size {
		case 1:
			result[i] = int(data[off])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(data[off:]))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(data[off:]))
		}
	}
	return result, nil
}
