package render

import (
	"github.com/taigrr/raster3d/pkg/math3d"
)

// DrawWire outlines a screen-space triangle. Lines go straight to the
// pixel buffer and neither test nor update depth, so an overlay always
// shows on top of the fill it outlines.
func (r *Rasterizer) DrawWire(tri *math3d.Triangle, c Color) {
	for i := range 3 {
		a, b := tri.P[i], tri.P[(i+1)%3]
		r.drawLine(int(a.X), int(a.Y), int(b.X), int(b.Y), c)
	}
}

// drawLine rasterizes a 2D line, counting and logging the cells that fall
// off the buffer.
func (r *Rasterizer) drawLine(x0, y0, x1, y1 int, c Color) {
	if !r.fb.InBounds(x0, y0) || !r.fb.InBounds(x1, y1) {
		r.stats.OutOfBounds++
		Logger().Debug("wire endpoint out of bounds", "x0", x0, "y0", y0, "x1", x1, "y1", y1)
	}
	r.fb.DrawLine(x0, y0, x1, y1, c)
}
