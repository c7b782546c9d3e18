package render

import (
	"github.com/taigrr/raster3d/pkg/math3d"
)

// Light is a directional light. Its effective vector is
// normalize(Origin + Direction).
type Light struct {
	Origin    math3d.Vec3
	Direction math3d.Vec3
}

// DefaultLight points back along the default camera's view axis, so faces
// looking at a camera at the origin are fully lit.
func DefaultLight() Light {
	return Light{Direction: math3d.V3(0, 0, -1)}
}

// NewLight creates a light from an origin and direction.
func NewLight(origin, direction math3d.Vec3) Light {
	return Light{Origin: origin, Direction: direction}
}

// Vector returns the unit light vector.
func (l Light) Vector() math3d.Vec3 {
	return l.Origin.Add(l.Direction).Normalize()
}

// Intensity returns dot(normal, Vector()) without clamping.
func (l Light) Intensity(normal math3d.Vec3) float64 {
	return normal.Dot(l.Vector())
}

// Lights is the light model of a pipeline: an ordered set of directional
// lights whose contributions are summed.
type Lights []Light

// Brightness sums the intensity of every light for normal, stopping once
// the sum reaches 1, and clamps the result to [AmbientFloor, 1]. With no
// lights only the ambient floor remains.
func (ls Lights) Brightness(normal math3d.Vec3) float64 {
	var sum float64
	for _, l := range ls {
		sum += l.Intensity(normal)
		if sum >= 1 {
			return 1
		}
	}
	return clampBrightness(sum)
}
