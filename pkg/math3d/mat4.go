package math3d

import "math"

// Mat4 is a 4x4 matrix stored row-major: element (row, col) lives at
// index row*4+col.
//
// Vectors are columns, so M.MulVec4(p) computes M·p and A.Mul(B) applies B
// first. For an affine transform the layout reads:
//
//	| Xx Yx Zx Tx |
//	| Xy Yy Zy Ty |
//	| Xz Yz Zz Tz |
//	| 0  0  0  1  |
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// ScaleUniform scales all three axes by s.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateX rotates by angle radians around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY rotates by angle radians around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ rotates by angle radians around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Perspective builds a projection for a left-handed view space looking down
// +Z. fovDeg is the field of view in degrees and aspect is height/width; it
// scales X so square world units stay square on screen.
//
// After projection W holds the view-space Z, and Z/W runs from 0 at the near
// plane to 1 at the far plane.
func Perspective(fovDeg, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovDeg*0.5/180*math.Pi)
	q := far / (far - near)
	return Mat4{
		aspect * f, 0, 0, 0,
		0, f, 0, 0,
		0, 0, q, -near * q,
		0, 0, 1, 0,
	}
}

// Default parameters of Orthogonal.
const (
	OrthoHalfExtent = 4.0
	OrthoNear       = 0.1
	OrthoFar        = 1000.0
)

// Orthographic builds a parallel projection that maps a box of the given
// half extent onto [-1, 1] in X and Y. aspect is height/width, as in
// Perspective. Z maps to [0, 1] between near and far; W stays 1.
func Orthographic(halfExtent, aspect, near, far float64) Mat4 {
	return Mat4{
		aspect / halfExtent, 0, 0, 0,
		0, 1 / halfExtent, 0, 0,
		0, 0, 1 / (far - near), -near / (far - near),
		0, 0, 0, 1,
	}
}

// Orthogonal returns the fixed-parameter orthographic projection.
func Orthogonal() Mat4 {
	return Orthographic(OrthoHalfExtent, 1, OrthoNear, OrthoFar)
}

// PointAt builds the matrix that places an object at pos facing target.
// Its columns are the right, up and forward basis vectors followed by pos.
// up is re-orthogonalised against the forward direction.
func PointAt(pos, target, up Vec3) Mat4 {
	forward := target.Sub(pos).Normalize()
	newUp := up.Sub(forward.Scale(up.Dot(forward))).Normalize()
	right := newUp.Cross(forward)

	return Mat4{
		right.X, newUp.X, forward.X, pos.X,
		right.Y, newUp.Y, forward.Y, pos.Y,
		right.Z, newUp.Z, forward.Z, pos.Z,
		0, 0, 0, 1,
	}
}

// QuickInverse inverts a rigid transform (orthonormal rotation plus
// translation) by transposing the rotation and rotating the negated
// translation. The result is wrong for any matrix with scale, shear or
// projection; use Inverse for those.
func (m Mat4) QuickInverse() Mat4 {
	tx, ty, tz := m[3], m[7], m[11]
	return Mat4{
		m[0], m[4], m[8], -(m[0]*tx + m[4]*ty + m[8]*tz),
		m[1], m[5], m[9], -(m[1]*tx + m[5]*ty + m[9]*tz),
		m[2], m[6], m[10], -(m[2]*tx + m[6]*ty + m[10]*tz),
		0, 0, 0, 1,
	}
}

// Mul returns a·b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for row := range 4 {
		for col := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row*4+k] * b[k*4+col]
			}
			m[row*4+col] = sum
		}
	}
	return m
}

// MulVec4 returns m·v. The homogeneous divide is left to the caller.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3]*v.W,
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7]*v.W,
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]*v.W,
		m[12]*v.X + m[13]*v.Y + m[14]*v.Z + m[15]*v.W,
	}
}

// MulVec3 transforms v as a point (w = 1) and drops the resulting W.
// Only meaningful for affine matrices.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3],
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7],
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11],
	}
}

// MulDir transforms v as a direction (w = 0), ignoring translation.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z,
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// Row returns row i as a Vec4.
func (m Mat4) Row(i int) Vec4 {
	return Vec4{m[i*4], m[i*4+1], m[i*4+2], m[i*4+3]}
}

// Determinant returns the determinant, expanded along 2x2 minors of the
// top and bottom row pairs.
func (m Mat4) Determinant() float64 {
	s0 := m[0]*m[5] - m[1]*m[4]
	s1 := m[0]*m[6] - m[2]*m[4]
	s2 := m[0]*m[7] - m[3]*m[4]
	s3 := m[1]*m[6] - m[2]*m[5]
	s4 := m[1]*m[7] - m[3]*m[5]
	s5 := m[2]*m[7] - m[3]*m[6]

	c5 := m[10]*m[15] - m[11]*m[14]
	c4 := m[9]*m[15] - m[11]*m[13]
	c3 := m[9]*m[14] - m[10]*m[13]
	c2 := m[8]*m[15] - m[11]*m[12]
	c1 := m[8]*m[14] - m[10]*m[12]
	c0 := m[8]*m[13] - m[9]*m[12]

	return s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
}

// Inverse returns the general inverse using Gauss-Jordan elimination with
// partial pivoting. A singular matrix yields the identity.
func (m Mat4) Inverse() Mat4 {
	a := m
	inv := Identity()

	for col := range 4 {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row*4+col]) > math.Abs(a[pivot*4+col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot*4+col]) < 1e-12 {
			return Identity()
		}
		if pivot != col {
			for k := range 4 {
				a[col*4+k], a[pivot*4+k] = a[pivot*4+k], a[col*4+k]
				inv[col*4+k], inv[pivot*4+k] = inv[pivot*4+k], inv[col*4+k]
			}
		}

		d := 1 / a[col*4+col]
		for k := range 4 {
			a[col*4+k] *= d
			inv[col*4+k] *= d
		}

		for row := range 4 {
			if row == col {
				continue
			}
			f := a[row*4+col]
			if f == 0 {
				continue
			}
			for k := range 4 {
				a[row*4+k] -= f * a[col*4+k]
				inv[row*4+k] -= f * inv[col*4+k]
			}
		}
	}

	return inv
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row*4+col]
}

// Set sets the element at (row, col).
func (m *Mat4) Set(row, col int, val float64) {
	m[row*4+col] = val
}

// Translation extracts the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}
