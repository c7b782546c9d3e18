package render

import (
	"fmt"
	"strings"
)

// RenderMode selects how the rasterizer draws triangles.
type RenderMode int

const (
	// ModeWire draws triangle edges only, in the triangle color.
	ModeWire RenderMode = iota
	// ModeFlat fills with the triangle color and overlays white edges.
	ModeFlat
	// ModeSmoothFlat fills with the triangle color without edges.
	ModeSmoothFlat
	// ModeTextured maps the texture unlit and overlays white edges.
	ModeTextured
	// ModeFullTextured maps the texture unlit without edges.
	ModeFullTextured
	// ModeTexturedShadow maps the lit texture and overlays white edges.
	ModeTexturedShadow
	// ModeFullTexturedShadow maps the lit texture without edges.
	ModeFullTexturedShadow

	renderModeCount
)

// DefaultRenderMode is the mode of a new pipeline.
const DefaultRenderMode = ModeTexturedShadow

var renderModeNames = [renderModeCount]string{
	ModeWire:               "wire",
	ModeFlat:               "flat",
	ModeSmoothFlat:         "smooth-flat",
	ModeTextured:           "textured",
	ModeFullTextured:       "full-textured",
	ModeTexturedShadow:     "textured-shadow",
	ModeFullTexturedShadow: "full-textured-shadow",
}

// String returns the mode name used in flags and config files.
func (m RenderMode) String() string {
	if m < 0 || m >= renderModeCount {
		return fmt.Sprintf("RenderMode(%d)", int(m))
	}
	return renderModeNames[m]
}

// Valid reports whether m is one of the defined modes.
func (m RenderMode) Valid() bool {
	return m >= 0 && m < renderModeCount
}

// RenderModes lists every mode in declaration order.
func RenderModes() []RenderMode {
	modes := make([]RenderMode, renderModeCount)
	for i := range modes {
		modes[i] = RenderMode(i)
	}
	return modes
}

// ParseRenderMode maps a mode name (case-insensitive, '_' accepted for '-')
// to its RenderMode.
func ParseRenderMode(s string) (RenderMode, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for i, n := range renderModeNames {
		if n == name {
			return RenderMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown render mode %q", s)
}

// fillKind is the fill strategy of a mode.
type fillKind int

const (
	fillWire fillKind = iota
	fillFlat
	fillTexture
)

type modeEntry struct {
	fill    fillKind
	lit     bool // texture modulated by brightness
	overlay bool // wireframe on top of the fill
	tinted  bool // overlay in the triangle color instead of WireColor
}

var modeTable = [renderModeCount]modeEntry{
	ModeWire:               {fill: fillWire},
	ModeFlat:               {fill: fillFlat, overlay: true},
	ModeSmoothFlat:         {fill: fillFlat},
	ModeTextured:           {fill: fillTexture, overlay: true, tinted: true},
	ModeFullTextured:       {fill: fillTexture},
	ModeTexturedShadow:     {fill: fillTexture, lit: true, overlay: true, tinted: true},
	ModeFullTexturedShadow: {fill: fillTexture, lit: true},
}

// entry returns the table row of m. Texture fills fall back to flat fills,
// with a white overlay, when no texture is bound; unknown modes draw as
// ModeWire.
func (m RenderMode) entry(textured bool) modeEntry {
	if !m.Valid() {
		return modeTable[ModeWire]
	}
	e := modeTable[m]
	if e.fill == fillTexture && !textured {
		e.fill = fillFlat
		e.tinted = false
	}
	return e
}
