// Package transform composes affine model transforms from translate, rotate
// and scale steps in caller-specified order.
package transform

import (
	"fmt"

	"github.com/taigrr/raster3d/pkg/math3d"
)

// Kind identifies one of the three transform variants.
type Kind uint8

const (
	KindTranslate Kind = iota
	KindRotate
	KindScale
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTranslate:
		return "translate"
	case KindRotate:
		return "rotate"
	case KindScale:
		return "scale"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Transform is a single affine step. Delta holds the offset for
// KindTranslate, the X/Y/Z angles in radians for KindRotate and the per-axis
// factors for KindScale.
type Transform struct {
	Kind  Kind
	Delta math3d.Vec3
}

// Translation creates a translate step.
func Translation(x, y, z float64) Transform {
	return Transform{Kind: KindTranslate, Delta: math3d.V3(x, y, z)}
}

// Rotation creates a rotate step from angles in radians.
func Rotation(x, y, z float64) Transform {
	return Transform{Kind: KindRotate, Delta: math3d.V3(x, y, z)}
}

// Scaling creates a scale step.
func Scaling(x, y, z float64) Transform {
	return Transform{Kind: KindScale, Delta: math3d.V3(x, y, z)}
}

// Matrix builds the 4x4 matrix of the step. Rotation is Rz·(Ry·Rx), so X is
// applied first and Z last.
func (t Transform) Matrix() math3d.Mat4 {
	switch t.Kind {
	case KindTranslate:
		return math3d.Translate(t.Delta)
	case KindRotate:
		rx := math3d.RotateX(t.Delta.X)
		ry := math3d.RotateY(t.Delta.Y)
		rz := math3d.RotateZ(t.Delta.Z)
		return rz.Mul(ry.Mul(rx))
	case KindScale:
		return math3d.Scale(t.Delta)
	default:
		return math3d.Identity()
	}
}

// String formats the step as "kind(x, y, z)".
func (t Transform) String() string {
	return fmt.Sprintf("%s(%g, %g, %g)", t.Kind, t.Delta.X, t.Delta.Y, t.Delta.Z)
}

// Combine returns the matrix that applies a, then b: b.Matrix()·a.Matrix().
func Combine(a, b Transform) math3d.Mat4 {
	return b.Matrix().Mul(a.Matrix())
}

// Chain is an ordered sequence of steps applied first to last.
type Chain []Transform

// NewChain returns a chain of the given steps.
func NewChain(steps ...Transform) Chain {
	return Chain(steps)
}

// Then returns a new chain with t appended. The receiver is not modified.
func (c Chain) Then(t Transform) Chain {
	out := make(Chain, len(c), len(c)+1)
	copy(out, c)
	return append(out, t)
}

// Matrix folds the chain into one matrix. An empty chain is the identity.
func (c Chain) Matrix() math3d.Mat4 {
	m := math3d.Identity()
	for _, t := range c {
		m = t.Matrix().Mul(m)
	}
	return m
}
