// Package models loads triangle meshes from glTF, GLB and OBJ files and
// converts them into the triangle lists the renderer consumes.
package models

import (
	"image"
	"image/color"
	"math"

	"github.com/taigrr/raster3d/pkg/math3d"
)

// Mesh is an indexed triangle mesh with per-face materials.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds the attributes the renderer uses.
type MeshVertex struct {
	Position math3d.Vec3
	UV       math3d.Vec2
}

// Face is a triangle with counter-clockwise vertex indices when seen from
// the front, and a material reference.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material describes the surface of a group of faces.
type Material struct {
	Name      string
	BaseColor [4]float64  // RGBA in 0-1 range
	Metallic  float64     // 0 = dielectric, 1 = metal
	Roughness float64     // 0 = smooth, 1 = rough
	BaseMap   image.Image // Optional base color texture
}

// DefaultMaterial is opaque white, fully rough and non-metallic.
func DefaultMaterial(name string) Material {
	return Material{Name: name, BaseColor: [4]float64{1, 1, 1, 1}, Roughness: 1}
}

// HasTexture reports whether the material carries a base color map.
func (m *Material) HasTexture() bool {
	return m.BaseMap != nil
}

// Color returns the base color as 8-bit RGBA.
func (m *Material) Color() color.RGBA {
	return color.RGBA{
		R: unit8(m.BaseColor[0]),
		G: unit8(m.BaseColor[1]),
		B: unit8(m.BaseColor[2]),
		A: unit8(m.BaseColor[3]),
	}
}

func unit8(f float64) uint8 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Bounds returns the axis-aligned bounding box.
func (m *Mesh) Bounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// Radius returns half the diagonal of the bounding box.
func (m *Mesh) Radius() float64 {
	return m.Size().Len() / 2
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Transform applies mat to every vertex position and refreshes the bounds.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
	}
	m.CalculateBounds()
}

// Normalize centers the mesh on the origin and scales it so its bounding
// box diagonal is size long. Empty or flat-to-a-point meshes are left alone.
func (m *Mesh) Normalize(size float64) {
	r := m.Radius()
	if r == 0 {
		return
	}
	s := size / (2 * r)
	m.Transform(math3d.ScaleUniform(s).Mul(math3d.Translate(m.Center().Negate())))
}

// Clone creates a deep copy of the mesh. Texture images are shared.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Materials: make([]Material, len(m.Materials)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	copy(clone.Materials, m.Materials)
	return clone
}

// FaceMaterial returns the material index for face i, or -1.
func (m *Mesh) FaceMaterial(i int) int {
	return m.Faces[i].Material
}

// Material returns the material at index i, or nil if out of range.
func (m *Mesh) Material(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// triangle builds the renderer triangle of face f. Faces referencing
// missing vertices are reported as not ok.
func (m *Mesh) triangle(f Face) (math3d.Triangle, bool) {
	for _, idx := range f.V {
		if idx < 0 || idx >= len(m.Vertices) {
			return math3d.Triangle{}, false
		}
	}
	a, b, c := m.Vertices[f.V[0]], m.Vertices[f.V[1]], m.Vertices[f.V[2]]
	tri := math3d.NewTriangle(a.Position, b.Position, c.Position, a.UV, b.UV, c.UV)
	if mat := m.Material(f.Material); mat != nil {
		tri.Color = mat.Color()
	}
	return tri, true
}

// Triangles flattens the mesh into renderer triangles, each colored with
// its material's base color (white without a material).
func (m *Mesh) Triangles() math3d.Mesh {
	out := make(math3d.Mesh, 0, len(m.Faces))
	for _, f := range m.Faces {
		if tri, ok := m.triangle(f); ok {
			out = append(out, tri)
		}
	}
	return out
}

// Part is the set of faces sharing one material.
type Part struct {
	Name     string
	Mesh     math3d.Mesh
	Color    color.RGBA
	Texture  image.Image
	Material int
}

// Parts groups the faces by material in order of first use. Faces without
// a material form a part named after the mesh.
func (m *Mesh) Parts() []Part {
	var parts []Part
	index := make(map[int]int)
	for _, f := range m.Faces {
		tri, ok := m.triangle(f)
		if !ok {
			continue
		}
		i, seen := index[f.Material]
		if !seen {
			p := Part{Name: m.Name, Color: tri.Color, Material: f.Material}
			if mat := m.Material(f.Material); mat != nil {
				p.Name = mat.Name
				p.Texture = mat.BaseMap
			} else {
				p.Material = -1
			}
			i = len(parts)
			index[f.Material] = i
			parts = append(parts, p)
		}
		parts[i].Mesh = append(parts[i].Mesh, tri)
	}
	return parts
}
