// Package config reads the raster3d JSON settings file and merges it with
// command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/raster3d/pkg/math3d"
	"github.com/taigrr/raster3d/pkg/render"
)

// Config holds the scene and output settings.
type Config struct {
	// Render settings
	RenderMode string  `json:"render_mode"`
	Projection string  `json:"projection"`
	FOV        float64 `json:"fov"`
	Near       float64 `json:"near"`
	Far        float64 `json:"far"`
	Background string  `json:"background"`

	// Scene
	Camera   [3]float64    `json:"camera"`
	Distance float64       `json:"distance"`
	Rotation [3]float64    `json:"rotation"` // degrees
	Size     float64       `json:"size"`     // model is scaled to this diagonal; 0 keeps it
	Lights   []LightConfig `json:"lights"`

	// Output
	Width  int `json:"width"`
	Height int `json:"height"`
	Scale  int `json:"scale"`
	FPS    int `json:"fps"`
}

// LightConfig is one directional light.
type LightConfig struct {
	Origin    [3]float64 `json:"origin"`
	Direction [3]float64 `json:"direction"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		RenderMode: render.DefaultRenderMode.String(),
		Projection: render.ProjectionPerspective.String(),
		FOV:        render.DefaultFOV,
		Near:       render.DefaultNear,
		Far:        render.DefaultFar,
		Background: "#000000",
		Distance:   4,
		Size:       2,
		Lights:     []LightConfig{{Direction: [3]float64{0, 0, -1}}},
		Width:      320,
		Height:     240,
		Scale:      1,
		FPS:        30,
	}
}

// Load reads a JSON config file over the defaults. Fields not set in the
// file keep their default values. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings. Zero
// values mean "not set".
type Flags struct {
	RenderMode string
	Projection string
	Background string
	FOV        float64
	Distance   float64
	Width      int
	Height     int
	Scale      int
	FPS        int
}

// Resolve applies flag overrides and fills any empty fields with defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.RenderMode != "" {
		c.RenderMode = flags.RenderMode
	}
	if flags.Projection != "" {
		c.Projection = flags.Projection
	}
	if flags.Background != "" {
		c.Background = flags.Background
	}
	if flags.FOV > 0 {
		c.FOV = flags.FOV
	}
	if flags.Distance > 0 {
		c.Distance = flags.Distance
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Scale > 0 {
		c.Scale = flags.Scale
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}

	def := Default()
	if c.RenderMode == "" {
		c.RenderMode = def.RenderMode
	}
	if c.Projection == "" {
		c.Projection = def.Projection
	}
	if c.Background == "" {
		c.Background = def.Background
	}
	if c.FOV <= 0 {
		c.FOV = def.FOV
	}
	if c.Near <= 0 {
		c.Near = def.Near
	}
	if c.Far <= 0 {
		c.Far = def.Far
	}
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.Scale <= 0 {
		c.Scale = def.Scale
	}
	if c.FPS <= 0 {
		c.FPS = def.FPS
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	_, err := c.Scene()
	return err
}

// Scene is the typed form of the render settings.
type Scene struct {
	Mode       render.RenderMode
	Projection render.Projection
	FOV        float64
	Near       float64
	Far        float64
	Background render.Color
	Camera     math3d.Vec3
	Distance   float64
	Rotation   math3d.Vec3 // radians
	Size       float64
	Lights     render.Lights
}

// Scene parses and checks the render settings.
func (c Config) Scene() (Scene, error) {
	mode, err := render.ParseRenderMode(c.RenderMode)
	if err != nil {
		return Scene{}, fmt.Errorf("config: %w", err)
	}
	proj, err := ParseProjection(c.Projection)
	if err != nil {
		return Scene{}, fmt.Errorf("config: %w", err)
	}
	bg, err := ParseColor(c.Background)
	if err != nil {
		return Scene{}, fmt.Errorf("config: background: %w", err)
	}
	if c.FOV <= 0 || c.FOV >= 180 {
		return Scene{}, fmt.Errorf("config: fov %v outside (0, 180)", c.FOV)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return Scene{}, fmt.Errorf("config: need 0 < near < far, got near=%v far=%v", c.Near, c.Far)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return Scene{}, fmt.Errorf("config: size %dx%d must be positive", c.Width, c.Height)
	}
	if c.Size < 0 {
		return Scene{}, fmt.Errorf("config: negative model size %v", c.Size)
	}

	lights := make(render.Lights, len(c.Lights))
	for i, l := range c.Lights {
		lights[i] = render.NewLight(vec(l.Origin), vec(l.Direction))
		if lights[i].Vector().LenSq() == 0 {
			return Scene{}, fmt.Errorf("config: light %d has no direction", i)
		}
	}

	return Scene{
		Mode:       mode,
		Projection: proj,
		FOV:        c.FOV,
		Near:       c.Near,
		Far:        c.Far,
		Background: bg,
		Camera:     vec(c.Camera),
		Distance:   c.Distance,
		Rotation:   vec(c.Rotation).Scale(math.Pi / 180),
		Size:       c.Size,
		Lights:     lights,
	}, nil
}

func vec(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}

// ParseProjection accepts "perspective" or "orthogonal" ("ortho" for short).
func ParseProjection(s string) (render.Projection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "perspective", "persp":
		return render.ProjectionPerspective, nil
	case "orthogonal", "orthographic", "ortho":
		return render.ProjectionOrthogonal, nil
	}
	return 0, fmt.Errorf("unknown projection %q", s)
}

// ParseColor reads "#RRGGBB" or "#AARRGGBB" (the '#' is optional).
func ParseColor(s string) (render.Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return render.Color{}, fmt.Errorf("invalid color %q", s)
	}
	switch len(h) {
	case 6:
		return render.Hex(0xff000000 | uint32(v)), nil
	case 8:
		return render.Hex(uint32(v)), nil
	}
	return render.Color{}, fmt.Errorf("invalid color %q: want 6 or 8 hex digits", s)
}
