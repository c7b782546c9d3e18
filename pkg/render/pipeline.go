package render

import (
	"cmp"
	"math"
	"slices"

	"github.com/taigrr/raster3d/pkg/math3d"
	"github.com/taigrr/raster3d/pkg/transform"
)

// Projection selects how view space is mapped onto the screen.
type Projection int

const (
	// ProjectionPerspective divides by view depth.
	ProjectionPerspective Projection = iota
	// ProjectionOrthogonal maps a fixed box onto the screen without
	// foreshortening.
	ProjectionOrthogonal
)

func (p Projection) String() string {
	switch p {
	case ProjectionPerspective:
		return "perspective"
	case ProjectionOrthogonal:
		return "orthogonal"
	}
	return "unknown"
}

// Default projection parameters.
const (
	DefaultFOV  = 90.0
	DefaultNear = 0.1
	DefaultFar  = 1000.0
)

// NearClipZ is the view-space depth of the near clip plane.
const NearClipZ = 0.1

// minW is the smallest |w| accepted before the perspective divide.
const minW = 1e-9

// screenEps is the slack onScreen allows past a border.
const screenEps = 1e-6

// Stats counts pipeline work since the last ClearDepthBuffer.
type Stats struct {
	TrianglesIn     int // Model triangles submitted
	BackFacesCulled int // Rejected by the facing test
	NearClipped     int // Lost entirely to the near plane
	BorderClipped   int // Produced by cutting against a screen border
	Drawn           int // Handed to the rasterizer
	MeshesCulled    int // Skipped whole by the frustum test
}

// Pipeline turns model-space meshes into pixels. It owns the world, view and
// projection state, the lights, the camera, and the rasterizer that holds
// the frame and depth buffers.
//
// A pipeline is not safe for concurrent use.
type Pipeline struct {
	width, height int

	world  math3d.Mat4
	camera *Camera
	view   math3d.Mat4
	lights Lights

	projMode Projection
	fov      float64
	near     float64
	far      float64
	proj     math3d.Mat4

	raster *Rasterizer
	stats  Stats

	// Reused between calls.
	work   []math3d.Triangle
	queue  []math3d.Triangle
	screen []math3d.Triangle
}

// NewPipeline creates a pipeline for a width x height screen. Without
// options it uses a perspective projection with a 90 degree field of view,
// a camera at the origin looking down +Z, one default light and
// DefaultRenderMode.
func NewPipeline(width, height int, opts ...Option) *Pipeline {
	p := &Pipeline{
		width:    max(width, 0),
		height:   max(height, 0),
		world:    math3d.Identity(),
		camera:   NewCamera(math3d.Zero3()),
		lights:   Lights{DefaultLight()},
		projMode: ProjectionPerspective,
		fov:      DefaultFOV,
		near:     DefaultNear,
		far:      DefaultFar,
	}
	p.raster = NewRasterizer(p.width, p.height)
	for _, opt := range opts {
		opt(p)
	}
	p.view = p.camera.ViewMatrix()
	p.buildProjection()
	return p
}

// Width returns the screen width in pixels.
func (p *Pipeline) Width() int { return p.width }

// Height returns the screen height in pixels.
func (p *Pipeline) Height() int { return p.height }

// SetTransform replaces the world matrix applied to every vertex.
func (p *Pipeline) SetTransform(m math3d.Mat4) {
	p.world = m
}

// SetTransformChain replaces the world matrix with the composition of chain.
func (p *Pipeline) SetTransformChain(chain transform.Chain) {
	p.world = chain.Matrix()
}

// World returns the current world matrix.
func (p *Pipeline) World() math3d.Mat4 {
	return p.world
}

// Camera returns the pipeline camera. Changes to it take effect on the next
// UpdateView.
func (p *Pipeline) Camera() *Camera {
	return p.camera
}

// SetCamera replaces the camera and refreshes the view matrix. A nil camera
// is ignored.
func (p *Pipeline) SetCamera(c *Camera) {
	if c == nil {
		return
	}
	p.camera = c
	p.UpdateView()
}

// SetCameraOrigin moves the camera and refreshes the view matrix.
func (p *Pipeline) SetCameraOrigin(origin math3d.Vec3) {
	p.camera.SetOrigin(origin)
	p.UpdateView()
}

// UpdateView pulls the view matrix from the camera.
func (p *Pipeline) UpdateView() {
	p.view = p.camera.ViewMatrix()
}

// View returns the view matrix in use.
func (p *Pipeline) View() math3d.Mat4 {
	return p.view
}

// SetProjection switches between perspective and orthogonal projection.
func (p *Pipeline) SetProjection(mode Projection) {
	p.projMode = mode
	p.buildProjection()
}

// SetPerspective sets the perspective parameters and rebuilds the
// projection. Invalid values (fov outside (0, 180), near <= 0 or
// far <= near) are ignored.
func (p *Pipeline) SetPerspective(fovDeg, near, far float64) {
	if fovDeg <= 0 || fovDeg >= 180 || near <= 0 || far <= near {
		Logger().Warn("ignoring invalid perspective", "fov", fovDeg, "near", near, "far", far)
		return
	}
	p.fov, p.near, p.far = fovDeg, near, far
	p.buildProjection()
}

// Projection returns the active projection mode.
func (p *Pipeline) Projection() Projection {
	return p.projMode
}

// ProjectionMatrix returns the projection matrix in use.
func (p *Pipeline) ProjectionMatrix() math3d.Mat4 {
	return p.proj
}

func (p *Pipeline) buildProjection() {
	aspect := 1.0
	if p.width > 0 {
		aspect = float64(p.height) / float64(p.width)
	}
	switch p.projMode {
	case ProjectionOrthogonal:
		p.proj = math3d.Orthographic(math3d.OrthoHalfExtent, aspect, p.near, p.far)
	default:
		p.proj = math3d.Perspective(p.fov, aspect, p.near, p.far)
	}
}

// SetLights replaces the light model.
func (p *Pipeline) SetLights(ls Lights) {
	p.lights = slices.Clone(ls)
}

// Lights returns a copy of the light model.
func (p *Pipeline) Lights() Lights {
	return slices.Clone(p.lights)
}

// SetRenderMode selects the fill and overlay behaviour.
func (p *Pipeline) SetRenderMode(m RenderMode) {
	p.raster.SetMode(m)
}

// RenderMode returns the active render mode.
func (p *Pipeline) RenderMode() RenderMode {
	return p.raster.Mode()
}

// Rasterizer exposes the buffers for presentation.
func (p *Pipeline) Rasterizer() *Rasterizer {
	return p.raster
}

// ClearDepthBuffer starts a new frame: depth is reset and the counters
// return to zero.
func (p *Pipeline) ClearDepthBuffer() {
	p.raster.ClearDepthBuffer()
	p.stats = Stats{}
}

// Clear fills the pixel buffer with c.
func (p *Pipeline) Clear(c Color) {
	p.raster.Clear(c)
}

// TrianglesDrawn returns how many screen triangles reached the rasterizer
// since the last ClearDepthBuffer.
func (p *Pipeline) TrianglesDrawn() int {
	return p.stats.Drawn
}

// Stats returns the counters since the last ClearDepthBuffer.
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// RenderMesh draws mesh using each triangle's own color as the base.
func (p *Pipeline) RenderMesh(mesh math3d.Mesh) {
	p.render(mesh, nil, nil)
}

// RenderMeshColor draws mesh with c as the base color of every triangle.
func (p *Pipeline) RenderMeshColor(mesh math3d.Mesh, c Color) {
	p.render(mesh, &c, nil)
}

// RenderMeshTextured draws mesh sampling tex. When the mode is not a
// texture mode, or tex is empty, triangles are filled with their lit color.
func (p *Pipeline) RenderMeshTextured(mesh math3d.Mesh, tex TextureSource) {
	p.render(mesh, nil, tex)
}

func (p *Pipeline) render(mesh math3d.Mesh, base *Color, tex TextureSource) {
	p.stats.TrianglesIn += len(mesh)
	if len(mesh) == 0 || p.width == 0 || p.height == 0 {
		return
	}
	if p.culled(mesh) {
		p.stats.MeshesCulled++
		return
	}

	tris := p.project(mesh, base)
	slices.SortStableFunc(tris, func(a, b math3d.Triangle) int {
		return cmp.Compare(b.AvgZ(), a.AvgZ())
	})
	tris = p.clipToScreen(tris)

	p.stats.Drawn += len(tris)
	p.raster.DrawTriangles(tris, tex)
}

// culled reports whether the world-space bounds of mesh lie entirely
// outside the view frustum.
func (p *Pipeline) culled(mesh math3d.Mesh) bool {
	box, ok := MeshBounds(mesh)
	if !ok {
		return true
	}
	f := NewFrustum(p.proj, p.view, NearClipZ)
	return !f.IntersectAABB(box.Transform(p.world))
}

// project runs world transform, back-face culling, lighting, view
// transform, near clipping, projection and screen mapping. The result
// lives in p.work and is only valid until the next call.
func (p *Pipeline) project(mesh math3d.Mesh, base *Color) []math3d.Triangle {
	near := math3d.NewPlane(math3d.V3(0, 0, NearClipZ), math3d.V3(0, 0, 1))
	origin := p.camera.Origin()
	halfW := 0.5 * float64(p.width)
	halfH := 0.5 * float64(p.height)

	out := p.work[:0]
	for _, src := range mesh {
		tri := src.Transform(p.world)

		normal := tri.Normal()
		if normal.Dot(tri.P[0].Vec3().Sub(origin)) >= 0 {
			p.stats.BackFacesCulled++
			continue
		}

		c := tri.Color
		if base != nil {
			c = *base
		}
		tri.Brightness = p.lights.Brightness(normal)
		tri.Color = Shade(c, tri.Brightness)

		tri = tri.Transform(p.view)
		clipped := math3d.ClipTriangle(near, tri)
		if len(clipped) == 0 {
			p.stats.NearClipped++
			continue
		}

	next:
		for _, ct := range clipped {
			ct = ct.Transform(p.proj)
			for i := range 3 {
				w := ct.P[i].W
				if math.Abs(w) < minW {
					continue next
				}
				ct.T[i] = math3d.V3(ct.T[i].X/w, ct.T[i].Y/w, 1/w)
				pt := ct.P[i].PerspectiveDivide()
				ct.P[i] = math3d.V4(
					(-pt.X+1)*halfW,
					(-pt.Y+1)*halfH,
					pt.Z,
					1,
				)
			}
			out = append(out, ct)
		}
	}
	p.work = out
	return out
}

// onScreen reports whether every vertex lies within [0,width]x[0,height],
// allowing screenEps of rounding left by the border clipper.
func (p *Pipeline) onScreen(tri math3d.Triangle) bool {
	w, h := float64(p.width), float64(p.height)
	for _, v := range tri.P {
		if v.X < -screenEps || v.X > w+screenEps || v.Y < -screenEps || v.Y > h+screenEps {
			return false
		}
	}
	return true
}

// borders returns the four screen clip planes in processing order: top,
// bottom, left, right.
func (p *Pipeline) borders() [4]math3d.Plane {
	w, h := float64(p.width), float64(p.height)
	return [4]math3d.Plane{
		math3d.NewPlane(math3d.V3(0, 0, 0), math3d.V3(0, 1, 0)),
		math3d.NewPlane(math3d.V3(0, h-1, 0), math3d.V3(0, -1, 0)),
		math3d.NewPlane(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0)),
		math3d.NewPlane(math3d.V3(w-1, 0, 0), math3d.V3(-1, 0, 0)),
	}
}

// clipToScreen cuts the depth-sorted triangles against the screen borders.
// Each triangle keeps its place in the list: one already on screen passes
// through, any other is replaced by its fragments. The fragments come from a
// worklist where each border takes what was queued when it starts, passes
// what is now on screen and queues what clipping that border leaves of the
// rest. Whatever is queued after the last border is kept too.
func (p *Pipeline) clipToScreen(tris []math3d.Triangle) []math3d.Triangle {
	final := p.screen[:0]
	borders := p.borders()
	for _, tri := range tris {
		if p.onScreen(tri) {
			final = append(final, tri)
			continue
		}

		queue := append(p.queue[:0], tri)
		head := 0
		for _, border := range borders {
			n := len(queue) - head
			for range n {
				t := queue[head]
				head++
				if p.onScreen(t) {
					final = append(final, t)
					continue
				}
				parts := math3d.ClipTriangle(border, t)
				if len(parts) != 1 || parts[0] != t {
					p.stats.BorderClipped += len(parts)
				}
				queue = append(queue, parts...)
			}
		}
		final = append(final, queue[head:]...)
		p.queue = queue
	}

	p.screen = final
	return final
}
