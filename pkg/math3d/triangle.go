package math3d

import "image/color"

// Triangle is the unit of work of the pipeline.
//
// P holds the three vertex positions and T the matching texture
// coordinates (u, v, and a perspective term that starts at 1 and becomes
// 1/w after projection). Vertex order defines the winding: the face normal
// is (P1-P0)×(P2-P0).
type Triangle struct {
	P          [3]Vec4
	T          [3]Vec3
	Color      color.RGBA
	Brightness float64
}

// Mesh is an ordered list of model-space triangles.
type Mesh []Triangle

// NewTriangle builds a triangle from three points and their UVs. The color
// is opaque white and brightness is 1.
func NewTriangle(p0, p1, p2 Vec3, uv0, uv1, uv2 Vec2) Triangle {
	return Triangle{
		P:          [3]Vec4{p0.Point(), p1.Point(), p2.Point()},
		T:          [3]Vec3{uv0.UV(), uv1.UV(), uv2.UV()},
		Color:      color.RGBA{255, 255, 255, 255},
		Brightness: 1,
	}
}

// Transform returns a copy with every position multiplied by m.
// Texture coordinates are untouched.
func (t Triangle) Transform(m Mat4) Triangle {
	for i := range t.P {
		t.P[i] = m.MulVec4(t.P[i])
	}
	return t
}

// FaceNormal returns the unnormalized normal (P1-P0)×(P2-P0).
func (t Triangle) FaceNormal() Vec3 {
	e1 := t.P[1].Vec3().Sub(t.P[0].Vec3())
	e2 := t.P[2].Vec3().Sub(t.P[0].Vec3())
	return e1.Cross(e2)
}

// Normal returns the unit face normal, or zero for a degenerate triangle.
func (t Triangle) Normal() Vec3 {
	return t.FaceNormal().Normalize()
}

// AvgZ returns the mean Z of the three positions.
func (t Triangle) AvgZ() float64 {
	return (t.P[0].Z + t.P[1].Z + t.P[2].Z) / 3
}

// Degenerate reports whether the triangle has (numerically) zero area.
func (t Triangle) Degenerate() bool {
	return t.FaceNormal().LenSq() < 1e-18
}
