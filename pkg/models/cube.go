package models

import (
	"github.com/taigrr/raster3d/pkg/math3d"
)

// NewCube builds an axis-aligned cube of edge length size centred on the
// origin. Each face has its own four vertices so it carries a full 0-1
// texture mapping.
func NewCube(size float64) *Mesh {
	h := size / 2
	faces := [6][4]math3d.Vec3{
		{{X: -h, Y: -h, Z: -h}, {X: -h, Y: h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: -h, Z: -h}}, // -Z
		{{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h}},     // +Z
		{{X: -h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: h}, {X: -h, Y: h, Z: h}, {X: -h, Y: h, Z: -h}}, // -X
		{{X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: h, Z: h}, {X: h, Y: -h, Z: h}},     // +X
		{{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: -h, Z: h}, {X: -h, Y: -h, Z: h}}, // -Y
		{{X: -h, Y: h, Z: -h}, {X: -h, Y: h, Z: h}, {X: h, Y: h, Z: h}, {X: h, Y: h, Z: -h}},     // +Y
	}
	uvs := [4]math3d.Vec2{{X: 0, Y: 1}, {X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}

	mesh := NewMesh("cube")
	for _, quad := range faces {
		base := len(mesh.Vertices)
		for i, p := range quad {
			mesh.Vertices = append(mesh.Vertices, MeshVertex{Position: p, UV: uvs[i]})
		}
		mesh.Faces = append(mesh.Faces,
			Face{V: [3]int{base, base + 1, base + 2}, Material: -1},
			Face{V: [3]int{base, base + 2, base + 3}, Material: -1},
		)
	}
	mesh.CalculateBounds()
	return mesh
}
