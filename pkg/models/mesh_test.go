package models

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/taigrr/raster3d/pkg/math3d"
)

func TestMaterialColor(t *testing.T) {
	tests := []struct {
		name string
		base [4]float64
		want color.RGBA
	}{
		{"white", [4]float64{1, 1, 1, 1}, color.RGBA{255, 255, 255, 255}},
		{"half red", [4]float64{0.5, 0, 0, 1}, color.RGBA{128, 0, 0, 255}},
		{"clamped", [4]float64{2, -1, 0, 1}, color.RGBA{255, 0, 0, 255}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := Material{BaseColor: tc.base}
			if got := m.Color(); got != tc.want {
				t.Errorf("Color() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFaceMaterialIndex(t *testing.T) {
	mesh := NewMesh("test")
	mesh.Materials = []Material{
		{Name: "red", BaseColor: [4]float64{1, 0, 0, 1}},
		{Name: "green", BaseColor: [4]float64{0, 1, 0, 1}},
	}
	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{3, 4, 5}, Material: 1},
		{V: [3]int{6, 7, 8}, Material: -1},
	}

	if mesh.FaceMaterial(1) != 1 || mesh.FaceMaterial(2) != -1 {
		t.Errorf("face materials = %d, %d", mesh.FaceMaterial(1), mesh.FaceMaterial(2))
	}
	if mat := mesh.Material(0); mat == nil || mat.Name != "red" {
		t.Errorf("Material(0) = %v, want red", mat)
	}
	if mesh.Material(-1) != nil || mesh.Material(99) != nil {
		t.Error("out-of-range Material should be nil")
	}
}

func TestMeshClonePreservesMaterials(t *testing.T) {
	mesh := NewCube(1)
	mesh.Materials = []Material{DefaultMaterial("mat1")}

	clone := mesh.Clone()
	clone.Materials[0].Name = "modified"
	clone.Vertices[0].Position = math3d.V3(9, 9, 9)

	if mesh.Materials[0].Name == "modified" {
		t.Error("clone shares materials")
	}
	if mesh.Vertices[0].Position == math3d.V3(9, 9, 9) {
		t.Error("clone shares vertices")
	}
	if clone.MaterialCount() != 1 || clone.TriangleCount() != mesh.TriangleCount() {
		t.Error("clone lost data")
	}
}

func TestCube(t *testing.T) {
	cube := NewCube(2)

	if cube.TriangleCount() != 12 || cube.VertexCount() != 24 {
		t.Fatalf("cube has %d triangles and %d vertices", cube.TriangleCount(), cube.VertexCount())
	}
	approx := cmpopts.EquateApprox(0, 1e-12)
	if diff := cmp.Diff(math3d.V3(-1, -1, -1), cube.BoundsMin, approx); diff != "" {
		t.Errorf("bounds min (-want +got):\n%s", diff)
	}

	// Every face normal points away from the center.
	for i, tri := range cube.Triangles() {
		n := tri.Normal()
		c := tri.P[0].Vec3().Add(tri.P[1].Vec3()).Add(tri.P[2].Vec3()).Scale(1.0 / 3)
		if n.Dot(c) <= 0 {
			t.Errorf("triangle %d normal %v points inward", i, n)
		}
	}
}

func TestMeshTriangles(t *testing.T) {
	mesh := NewMesh("m")
	mesh.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0), UV: math3d.V2(0, 0)},
		{Position: math3d.V3(1, 0, 0), UV: math3d.V2(1, 0)},
		{Position: math3d.V3(0, 1, 0), UV: math3d.V2(0, 1)},
	}
	mesh.Materials = []Material{{Name: "blue", BaseColor: [4]float64{0, 0, 1, 1}}}
	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{0, 2, 1}, Material: -1},
		{V: [3]int{0, 1, 7}, Material: 0}, // dangling index, dropped
	}

	tris := mesh.Triangles()
	if len(tris) != 2 {
		t.Fatalf("got %d triangles, want 2", len(tris))
	}
	if tris[0].Color != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("material color = %v", tris[0].Color)
	}
	if tris[1].Color != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("default color = %v", tris[1].Color)
	}
	if tris[0].T[2] != math3d.V3(0, 1, 1) {
		t.Errorf("uv = %v", tris[0].T[2])
	}
}

func TestMeshParts(t *testing.T) {
	tex := image.NewRGBA(image.Rect(0, 0, 1, 1))
	mesh := NewCube(1)
	mesh.Materials = []Material{
		{Name: "front", BaseColor: [4]float64{1, 0, 0, 1}, BaseMap: tex},
		{Name: "rest", BaseColor: [4]float64{0, 1, 0, 1}},
	}
	for i := range mesh.Faces {
		switch {
		case i < 2:
			mesh.Faces[i].Material = 0
		case i < 10:
			mesh.Faces[i].Material = 1
		}
	}

	parts := mesh.Parts()
	got := make([]string, len(parts))
	counts := make([]int, len(parts))
	for i, p := range parts {
		got[i] = p.Name
		counts[i] = len(p.Mesh)
	}
	if diff := cmp.Diff([]string{"front", "rest", "cube"}, got); diff != "" {
		t.Errorf("part names (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 8, 2}, counts); diff != "" {
		t.Errorf("part sizes (-want +got):\n%s", diff)
	}
	if parts[0].Texture == nil || parts[1].Texture != nil {
		t.Error("textures not carried to parts")
	}
	if parts[2].Material != -1 {
		t.Errorf("unassigned part material = %d, want -1", parts[2].Material)
	}
}

func TestMeshNormalize(t *testing.T) {
	mesh := NewCube(4)
	mesh.Transform(math3d.Translate(math3d.V3(10, 0, 0)))
	mesh.Normalize(2)

	approx := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(math3d.Zero3(), mesh.Center(), approx); diff != "" {
		t.Errorf("center (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(1.0, mesh.Radius(), approx); diff != "" {
		t.Errorf("radius (-want +got):\n%s", diff)
	}

	empty := NewMesh("empty")
	empty.Normalize(2)
	if empty.VertexCount() != 0 {
		t.Error("normalize changed an empty mesh")
	}
}
