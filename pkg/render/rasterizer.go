package render

import (
	"image"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/raster3d/pkg/math3d"
)

// Rasterizer owns the pixel and depth buffers and scan-converts screen-space
// triangles into them.
//
// Depth values are closeness measures: larger means nearer to the camera,
// and a cleared buffer holds 0 everywhere. Triangles carry their screen Z
// (0 at the near plane, 1 at the far plane) and the rasterizer stores
// 1 - Z, interpolated linearly across the triangle.
type Rasterizer struct {
	fb    *Framebuffer
	depth []float64
	mode  RenderMode
	stats RasterStats
}

// RasterStats counts rasterizer work since the last ClearDepthBuffer.
type RasterStats struct {
	Triangles     int // Triangles handed to DrawTriangles
	PixelsWritten int // Pixels that passed the depth test
	OutOfBounds   int // Writes outside the buffer, dropped
}

// NewRasterizer allocates buffers for a width x height screen.
func NewRasterizer(width, height int) *Rasterizer {
	width, height = max(width, 0), max(height, 0)
	return &Rasterizer{
		fb:    NewFramebuffer(width, height),
		depth: make([]float64, width*height),
		mode:  DefaultRenderMode,
	}
}

// Width returns the screen width in pixels.
func (r *Rasterizer) Width() int {
	return r.fb.Width
}

// Height returns the screen height in pixels.
func (r *Rasterizer) Height() int {
	return r.fb.Height
}

// Mode returns the active render mode.
func (r *Rasterizer) Mode() RenderMode {
	return r.mode
}

// SetMode selects the render mode for subsequent draws.
func (r *Rasterizer) SetMode(m RenderMode) {
	r.mode = m
}

// Stats returns the counters since the last ClearDepthBuffer.
func (r *Rasterizer) Stats() RasterStats {
	return r.stats
}

// ClearDepthBuffer resets every depth cell to 0 and the counters. Call it
// once per frame; stale depth hides farther geometry of the next frame.
func (r *Rasterizer) ClearDepthBuffer() {
	r.stats = RasterStats{}
	n := len(r.depth)
	if n == 0 {
		return
	}
	r.depth[0] = 0
	for i := 1; i < n; i *= 2 {
		copy(r.depth[i:], r.depth[:i])
	}
}

// Clear fills the pixel buffer with c. Depth is not touched.
func (r *Rasterizer) Clear(c Color) {
	r.fb.Clear(c)
}

// SetPixel writes c at (x, y) when depth is strictly greater than the
// stored depth, and records depth. Out-of-bounds writes are logged and
// dropped. It reports whether the pixel was written.
func (r *Rasterizer) SetPixel(x, y int, depth float64, c Color) bool {
	if !r.fb.InBounds(x, y) {
		r.stats.OutOfBounds++
		Logger().Debug("pixel write out of bounds", "x", x, "y", y, "width", r.fb.Width, "height", r.fb.Height)
		return false
	}
	i := y*r.fb.Width + x
	if depth <= r.depth[i] {
		return false
	}
	r.depth[i] = depth
	r.fb.Pixels[i] = c
	r.stats.PixelsWritten++
	return true
}

// nearer reports whether depth would pass the test at (x, y). Out-of-bounds
// cells pass so that SetPixel gets to report them.
func (r *Rasterizer) nearer(x, y int, depth float64) bool {
	if !r.fb.InBounds(x, y) {
		return true
	}
	return depth > r.depth[y*r.fb.Width+x]
}

// PixelAt returns the color at (x, y), or transparent black out of bounds.
func (r *Rasterizer) PixelAt(x, y int) Color {
	return r.fb.GetPixel(x, y)
}

// DepthAt returns the stored depth at (x, y), or 0 out of bounds.
func (r *Rasterizer) DepthAt(x, y int) float64 {
	if !r.fb.InBounds(x, y) {
		return 0
	}
	return r.depth[y*r.fb.Width+x]
}

// Image returns a copy of the pixel buffer.
func (r *Rasterizer) Image() *image.RGBA {
	return r.fb.ToImage()
}

// Draw blits the pixel buffer onto a terminal screen.
func (r *Rasterizer) Draw(scr uv.Screen, area uv.Rectangle) {
	r.fb.Draw(scr, area)
}

// DrawTriangles rasterizes screen-space triangles in order under the active
// mode. tex may be nil, in which case texture modes fill with the triangle
// color.
func (r *Rasterizer) DrawTriangles(tris []math3d.Triangle, tex TextureSource) {
	textured := tex != nil
	if textured {
		if w, h := tex.Size(); w <= 0 || h <= 0 {
			textured = false
		}
	}
	e := r.mode.entry(textured)
	for i := range tris {
		r.stats.Triangles++
		tri := &tris[i]
		switch e.fill {
		case fillWire:
			r.DrawWire(tri, tri.Color)
			continue
		case fillFlat:
			r.FillFlat(tri)
		case fillTexture:
			r.FillTextured(tri, tex, e.lit)
		}
		if e.overlay {
			c := WireColor
			if e.tinted {
				c = tri.Color
			}
			r.DrawWire(tri, c)
		}
	}
}

// FillFlat fills tri with its resolved color.
func (r *Rasterizer) FillFlat(tri *math3d.Triangle) {
	c := tri.Color
	r.scan(tri, func(x, y int, f fragment) {
		r.SetPixel(x, y, f.depth, c)
	})
}

// FillTextured fills tri from tex with perspective-correct coordinates. The
// interpolated (u, v) are divided by the interpolated 1/w before sampling;
// pixels where that term is 0 are skipped. When lit is set the texel is
// shaded by the triangle brightness.
func (r *Rasterizer) FillTextured(tri *math3d.Triangle, tex TextureSource, lit bool) {
	brightness := tri.Brightness
	r.scan(tri, func(x, y int, f fragment) {
		if f.q == 0 || !r.nearer(x, y, f.depth) {
			return
		}
		c := Sample(tex, f.u/f.q, f.v/f.q)
		if lit {
			c = Shade(c, brightness)
		}
		r.SetPixel(x, y, f.depth, c)
	})
}

// fragment holds the interpolated attributes at one pixel: texture
// coordinates divided by w (u, v), 1/w (q) and depth.
type fragment struct {
	u, v, q float64
	depth   float64
}

func (f fragment) lerp(g fragment, t float64) fragment {
	return fragment{
		u:     f.u + (g.u-f.u)*t,
		v:     f.v + (g.v-f.v)*t,
		q:     f.q + (g.q-f.q)*t,
		depth: f.depth + (g.depth-f.depth)*t,
	}
}

type scanVertex struct {
	x, y int
	attr fragment
}

// scan walks every pixel covered by tri with the two-half scanline
// algorithm: vertices sorted by Y, the upper half bounded by edges 0→1 and
// 0→2, the lower half by 1→2 and 0→2. Rows span the columns [ax, bx).
// Zero-height halves and zero-width rows produce nothing.
func (r *Rasterizer) scan(tri *math3d.Triangle, plot func(x, y int, f fragment)) {
	var vs [3]scanVertex
	for i := range 3 {
		p := tri.P[i]
		vs[i] = scanVertex{
			x: int(p.X),
			y: int(p.Y),
			attr: fragment{
				u:     tri.T[i].X,
				v:     tri.T[i].Y,
				q:     tri.T[i].Z,
				depth: 1 - p.Z,
			},
		}
	}
	if vs[1].y < vs[0].y {
		vs[0], vs[1] = vs[1], vs[0]
	}
	if vs[2].y < vs[0].y {
		vs[0], vs[2] = vs[2], vs[0]
	}
	if vs[2].y < vs[1].y {
		vs[1], vs[2] = vs[2], vs[1]
	}
	if vs[2].y == vs[0].y {
		return
	}

	scanHalf(vs[0], vs[1], vs[0], vs[2], plot)
	scanHalf(vs[1], vs[2], vs[0], vs[2], plot)
}

// scanHalf fills the rows from s0.y to s1.y between the short edge s0→s1
// and the long edge l0→l1.
func scanHalf(s0, s1, l0, l1 scanVertex, plot func(x, y int, f fragment)) {
	dyShort := s1.y - s0.y
	if dyShort == 0 {
		return
	}
	dyLong := float64(l1.y - l0.y)

	for y := s0.y; y <= s1.y; y++ {
		ts := float64(y-s0.y) / float64(dyShort)
		tl := float64(y-l0.y) / dyLong

		ax := int(float64(s0.x) + float64(s1.x-s0.x)*ts)
		bx := int(float64(l0.x) + float64(l1.x-l0.x)*tl)
		a := s0.attr.lerp(s1.attr, ts)
		b := l0.attr.lerp(l1.attr, tl)
		if ax > bx {
			ax, bx = bx, ax
			a, b = b, a
		}
		if ax == bx {
			continue
		}

		step := 1 / float64(bx-ax)
		t := 0.0
		for x := ax; x < bx; x++ {
			plot(x, y, a.lerp(b, t))
			t += step
		}
	}
}
