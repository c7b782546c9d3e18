package render

import "slices"

// Option configures a Pipeline during creation.
//
// Example:
//
//	p := render.NewPipeline(800, 600,
//		render.WithRenderMode(render.ModeFlat),
//		render.WithPerspective(60, 0.1, 100),
//	)
type Option func(*Pipeline)

// WithRenderMode sets the initial render mode.
func WithRenderMode(m RenderMode) Option {
	return func(p *Pipeline) {
		p.raster.SetMode(m)
	}
}

// WithCamera replaces the default camera. A nil camera is ignored.
func WithCamera(c *Camera) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.camera = c
		}
	}
}

// WithLights replaces the default light.
func WithLights(ls Lights) Option {
	return func(p *Pipeline) {
		p.lights = slices.Clone(ls)
	}
}

// WithProjection selects the projection mode.
func WithProjection(mode Projection) Option {
	return func(p *Pipeline) {
		p.projMode = mode
	}
}

// WithPerspective sets the perspective field of view (degrees) and clip
// distances. Invalid values leave the defaults in place.
func WithPerspective(fovDeg, near, far float64) Option {
	return func(p *Pipeline) {
		if fovDeg <= 0 || fovDeg >= 180 || near <= 0 || far <= near {
			return
		}
		p.fov, p.near, p.far = fovDeg, near, far
	}
}
