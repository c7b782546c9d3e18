package math3d

// Plane is defined by a point on it and a unit normal. The normal side is
// "inside" for clipping.
type Plane struct {
	Point  Vec3
	Normal Vec3
}

// NewPlane builds a plane through point, normalizing normal.
func NewPlane(point, normal Vec3) Plane {
	return Plane{Point: point, Normal: normal.Normalize()}
}

// Distance returns the signed distance from the plane to p. Positive values
// are on the normal side.
func (p Plane) Distance(v Vec3) float64 {
	return p.Normal.Dot(v) - p.Normal.Dot(p.Point)
}

type clipVertex struct {
	p  Vec4
	uv Vec3
}

// ClipTriangle clips tri against a single plane (Sutherland-Hodgman).
//
// A vertex is inside when its signed distance is >= 0. The result is empty
// when every vertex is outside and is tri itself when every vertex is
// inside. Otherwise the clipped polygon, which keeps the input's cyclic
// order and so its winding, is fanned into one or two triangles. New
// vertices sit at the parametric crossing of their edge; position (all
// four components) and texture coordinates are interpolated by the same
// parameter. Newly created triangles with zero area are dropped.
func ClipTriangle(plane Plane, tri Triangle) []Triangle {
	var d [3]float64
	inside := 0
	for i := range 3 {
		d[i] = plane.Distance(tri.P[i].Vec3())
		if d[i] >= 0 {
			inside++
		}
	}

	switch inside {
	case 0:
		return nil
	case 3:
		return []Triangle{tri}
	}

	var poly [4]clipVertex
	n := 0
	for i := range 3 {
		j := (i + 1) % 3
		if d[i] >= 0 {
			poly[n] = clipVertex{tri.P[i], tri.T[i]}
			n++
		}
		if (d[i] >= 0) != (d[j] >= 0) {
			t := d[i] / (d[i] - d[j])
			poly[n] = clipVertex{
				p:  tri.P[i].Lerp(tri.P[j], t),
				uv: tri.T[i].Lerp(tri.T[j], t),
			}
			n++
		}
	}

	out := make([]Triangle, 0, 2)
	for k := 1; k+1 < n; k++ {
		nt := tri
		nt.P = [3]Vec4{poly[0].p, poly[k].p, poly[k+1].p}
		nt.T = [3]Vec3{poly[0].uv, poly[k].uv, poly[k+1].uv}
		if nt.Degenerate() {
			continue
		}
		out = append(out, nt)
	}
	return out
}
