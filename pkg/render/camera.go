package render

import (
	"github.com/taigrr/raster3d/pkg/math3d"
)

// Camera holds the viewer's origin and accumulated rotation. The view matrix
// is derived on demand and cached until origin or rotation change.
type Camera struct {
	origin math3d.Vec3
	up     math3d.Vec3
	target math3d.Vec3

	// Accumulated rotation around X, Y and Z in radians.
	rot math3d.Vec3

	// Cached matrices (computed on demand)
	lookDir   math3d.Vec3
	camMatrix math3d.Mat4
	view      math3d.Mat4
	viewDirty bool
}

// NewCamera creates a camera at origin looking down +Z with +Y up.
func NewCamera(origin math3d.Vec3) *Camera {
	return &Camera{
		origin:    origin,
		up:        math3d.Up(),
		target:    math3d.Forward(),
		viewDirty: true,
	}
}

// Origin returns the camera position.
func (c *Camera) Origin() math3d.Vec3 {
	return c.origin
}

// SetOrigin moves the camera to origin.
func (c *Camera) SetOrigin(origin math3d.Vec3) {
	c.origin = origin
	c.viewDirty = true
}

// Move translates the camera by delta.
func (c *Camera) Move(delta math3d.Vec3) {
	c.SetOrigin(c.origin.Add(delta))
}

// RotX adds angle radians of rotation around X.
func (c *Camera) RotX(angle float64) {
	c.rot.X += angle
	c.viewDirty = true
}

// RotY adds angle radians of rotation around Y.
func (c *Camera) RotY(angle float64) {
	c.rot.Y += angle
	c.viewDirty = true
}

// RotZ adds angle radians of rotation around Z.
func (c *Camera) RotZ(angle float64) {
	c.rot.Z += angle
	c.viewDirty = true
}

// SetRotation replaces the accumulated rotation.
func (c *Camera) SetRotation(x, y, z float64) {
	c.rot = math3d.V3(x, y, z)
	c.viewDirty = true
}

// Rotation returns the accumulated X, Y and Z angles.
func (c *Camera) Rotation() math3d.Vec3 {
	return c.rot
}

// Up returns the reference up vector.
func (c *Camera) Up() math3d.Vec3 {
	return c.up
}

// Target returns the unrotated look direction.
func (c *Camera) Target() math3d.Vec3 {
	return c.target
}

// LookDirection returns the target direction rotated by Rz·Ry·Rx.
func (c *Camera) LookDirection() math3d.Vec3 {
	c.update()
	return c.lookDir
}

// Matrix returns the camera-to-world matrix,
// PointAt(origin, origin+LookDirection, up).
func (c *Camera) Matrix() math3d.Mat4 {
	c.update()
	return c.camMatrix
}

// ViewMatrix returns the world-to-view matrix, the rigid inverse of Matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	c.update()
	return c.view
}

func (c *Camera) update() {
	if !c.viewDirty {
		return
	}
	rot := math3d.RotateZ(c.rot.Z).
		Mul(math3d.RotateY(c.rot.Y)).
		Mul(math3d.RotateX(c.rot.X))
	c.lookDir = rot.MulDir(c.target)
	c.camMatrix = math3d.PointAt(c.origin, c.origin.Add(c.lookDir), c.up)
	c.view = c.camMatrix.QuickInverse()
	c.viewDirty = false
}
