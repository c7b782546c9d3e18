package render

import (
	"github.com/taigrr/raster3d/pkg/math3d"
)

// Object is one named part of a model. Texture and Color are both
// optional; a texture wins over a color.
type Object struct {
	Name    string
	Mesh    math3d.Mesh
	Texture TextureSource
	Color   *Color
}

// Model is an ordered list of objects drawn with a shared transform.
type Model struct {
	Objects []Object
}

// NewModel creates a model from objects.
func NewModel(objects ...Object) *Model {
	return &Model{Objects: objects}
}

// Add appends an object.
func (m *Model) Add(obj Object) {
	m.Objects = append(m.Objects, obj)
}

// TriangleCount returns the number of triangles across all objects.
func (m *Model) TriangleCount() int {
	n := 0
	for _, o := range m.Objects {
		n += len(o.Mesh)
	}
	return n
}

// Object returns the first object named name.
func (m *Model) Object(name string) (Object, bool) {
	for _, o := range m.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return Object{}, false
}

// RenderModel draws every object in order with its own texture or color.
func (p *Pipeline) RenderModel(m *Model) {
	if m == nil {
		return
	}
	for _, o := range m.Objects {
		switch {
		case o.Texture != nil:
			p.RenderMeshTextured(o.Mesh, o.Texture)
		case o.Color != nil:
			p.RenderMeshColor(o.Mesh, *o.Color)
		default:
			p.RenderMesh(o.Mesh)
		}
	}
}

// RenderModelColor draws every object with c, ignoring textures.
func (p *Pipeline) RenderModelColor(m *Model, c Color) {
	if m == nil {
		return
	}
	for _, o := range m.Objects {
		p.RenderMeshColor(o.Mesh, c)
	}
}
