package render

import (
	"image/color"
	"math"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack   = color.RGBA{0, 0, 0, 255}
	ColorWhite   = color.RGBA{255, 255, 255, 255}
	ColorRed     = color.RGBA{255, 0, 0, 255}
	ColorGreen   = color.RGBA{0, 255, 0, 255}
	ColorBlue    = color.RGBA{0, 0, 255, 255}
	ColorMagenta = color.RGBA{255, 0, 255, 255}
	ColorGray    = color.RGBA{128, 128, 128, 255}
)

// MissingSample replaces any texel that could not be read.
var MissingSample = ColorMagenta

// WireColor is the overlay color of the wireframe render modes.
var WireColor = ColorWhite

// AmbientFloor is the lowest brightness applied to a lit color.
const AmbientFloor = 0.1

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// RGBA creates a color with alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Hex converts a 0xAARRGGBB value to a Color.
func Hex(argb uint32) Color {
	return Color{
		R: uint8(argb >> 16),
		G: uint8(argb >> 8),
		B: uint8(argb),
		A: uint8(argb >> 24),
	}
}

// clampBrightness limits b to [AmbientFloor, 1].
func clampBrightness(b float64) float64 {
	if math.IsNaN(b) || b < AmbientFloor {
		return AmbientFloor
	}
	if b > 1 {
		return 1
	}
	return b
}

// Shade multiplies the color channels of c by brightness, clamped to
// [AmbientFloor, 1]. Alpha is kept.
func Shade(c Color, brightness float64) Color {
	b := clampBrightness(brightness)
	return Color{
		R: uint8(float64(c.R) * b),
		G: uint8(float64(c.G) * b),
		B: uint8(float64(c.B) * b),
		A: c.A,
	}
}

// Grey returns the greyscale color for a brightness.
func Grey(brightness float64) Color {
	return Shade(ColorWhite, brightness)
}
