package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/taigrr/raster3d/internal/config"
	"github.com/taigrr/raster3d/pkg/math3d"
	"github.com/taigrr/raster3d/pkg/render"
)

const (
	torqueStrength = 3.0
	zoomStep       = 0.5
	minDistance    = 1.0
	maxDistance    = 50.0
	dragSpeed      = 0.03
)

// errNotTerminal is returned by view when stdout cannot show frames.
var errNotTerminal = errors.New("stdout is not a terminal; use the snapshot command to render to a file")

func newViewCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [model]",
		Short: "Spin a model interactively in the terminal",
		Long: `View renders a model with half-block characters, two pixels per cell.

Controls:
  1-7          Select render mode
  P            Toggle perspective / orthogonal projection
  Mouse drag   Rotate model
  Scroll, +/-  Zoom
  W/S A/D Q/E  Pitch, yaw and roll
  Space        Random spin
  R            Reset view
  L            Aim the light with the mouse, click to set
  ?            Toggle HUD
  Esc          Quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "cube"
			if len(args) == 1 {
				path = args[0]
			}
			return runView(cmd.Context(), opts, path)
		},
	}
	cmd.Flags().IntVar(&opts.flags.FPS, "fps", 0, "target frames per second")
	return cmd
}

// viewer is the interactive state of one view session.
type viewer struct {
	term   *uv.Terminal
	sink   *render.TerminalSink
	pipe   *render.Pipeline
	scene  config.Scene
	model  *loaded
	spin   *spin
	hud    *hud
	cancel context.CancelFunc

	width, height int
	distance      float64
	torque        struct{ pitch, yaw, roll float64 }

	mouseDown    bool
	lastX, lastY int

	lightMode    bool
	pendingLight math3d.Vec3
}

func runView(ctx context.Context, opts *options, modelPath string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}
	cfg, scene, err := opts.settings()
	if err != nil {
		return err
	}
	m, err := loadModel(modelPath, opts.texturePath, scene.Size)
	if err != nil {
		return err
	}

	t := uv.DefaultTerminal()
	width, height, err := t.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := t.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	t.EnterAltScreen()
	t.HideCursor()
	t.Resize(width, height)
	// any-event mouse tracking, SGR extended coordinates
	fmt.Fprint(os.Stdout, "\x1b[?1003h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	v := &viewer{
		term:     t,
		scene:    scene,
		model:    m,
		spin:     newSpin(cfg.FPS),
		hud:      newHUD(os.Stdout, m.name, m.triangles),
		cancel:   cancel,
		distance: scene.Distance,
	}
	v.resize(width, height, nil)

	err = v.loop(ctx, cfg.FPS)

	fmt.Fprint(os.Stdout, "\x1b[?1003l")
	fmt.Fprint(os.Stdout, "\x1b[?1006l")
	t.ExitAltScreen()
	t.ShowCursor()
	if serr := t.Shutdown(context.Background()); err == nil && serr != nil {
		err = fmt.Errorf("shutdown terminal: %w", serr)
	}
	return err
}

// resize rebuilds the sink and pipeline for a new terminal size. The render
// mode, projection and lights of prev carry over.
func (v *viewer) resize(width, height int, prev *render.Pipeline) {
	v.width, v.height = width, height
	v.sink = render.NewTerminalSink(v.term, width, height)
	fbw, fbh := v.sink.FramebufferSize()
	v.pipe = newPipeline(fbw, fbh, v.scene)
	if prev != nil {
		v.pipe.SetRenderMode(prev.RenderMode())
		v.pipe.SetProjection(prev.Projection())
		v.pipe.SetLights(prev.Lights())
	}
	render.Logger().Debug("viewport", "cells", fmt.Sprintf("%dx%d", width, height), "pixels", fmt.Sprintf("%dx%d", fbw, fbh))
}

func (v *viewer) loop(ctx context.Context, fps int) error {
	frame := time.Second / time.Duration(fps)
	last := time.Now()
	events := v.term.Events()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				v.handle(ev)
			default:
				break drain
			}
		}
		if ctx.Err() != nil {
			return nil
		}

		now := time.Now()
		dt := min(now.Sub(last).Seconds(), 0.1)
		last = now

		// key releases are not reported by every terminal, so torque fades out
		v.spin.Impulse(v.torque.pitch*dt, v.torque.yaw*dt, v.torque.roll*dt)
		v.torque.pitch *= 0.9
		v.torque.yaw *= 0.9
		v.torque.roll *= 0.9
		v.spin.Update()

		if err := v.draw(); err != nil {
			return err
		}

		if elapsed := time.Since(now); elapsed < frame {
			time.Sleep(frame - elapsed)
		}
	}
}

func (v *viewer) draw() error {
	p := v.pipe
	p.Clear(v.scene.Background)
	p.ClearDepthBuffer()

	lights := p.Lights()
	if v.lightMode {
		p.SetLights(v.aimedLights(v.pendingLight))
	}
	pitch, yaw, roll := v.spin.Angles()
	p.SetTransformChain(modelChain(v.scene, v.model.center, pitch, yaw, roll, v.distance))
	p.RenderModel(v.model.model)
	if v.lightMode {
		p.SetLights(lights)
	}

	if err := v.sink.Present(p.Rasterizer()); err != nil {
		return err
	}
	v.hud.Tick()
	v.hud.Render(v.width, v.height, p, v.lightMode)
	return nil
}

// aimedLights replaces the direction of the first light with dir.
func (v *viewer) aimedLights(dir math3d.Vec3) render.Lights {
	ls := v.pipe.Lights()
	if len(ls) == 0 {
		return render.Lights{render.NewLight(math3d.Vec3{}, dir)}
	}
	ls[0] = render.NewLight(math3d.Vec3{}, dir)
	return ls
}

func (v *viewer) zoom(delta float64) {
	v.distance = math.Max(minDistance, math.Min(maxDistance, v.distance+delta))
}

func (v *viewer) handle(ev uv.Event) {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.term.Erase()
		v.term.Resize(ev.Width, ev.Height)
		v.resize(ev.Width, ev.Height, v.pipe)

	case uv.KeyPressEvent:
		v.key(ev)

	case uv.KeyReleaseEvent:
		switch {
		case ev.MatchString("w", "up", "s", "down"):
			v.torque.pitch = 0
		case ev.MatchString("a", "left", "d", "right"):
			v.torque.yaw = 0
		case ev.MatchString("q", "e"):
			v.torque.roll = 0
		}

	case uv.MouseClickEvent:
		if v.lightMode {
			v.pipe.SetLights(v.aimedLights(v.pendingLight))
			v.lightMode = false
			return
		}
		v.mouseDown = true
		v.lastX, v.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		v.mouseDown = false

	case uv.MouseMotionEvent:
		switch {
		case v.lightMode:
			v.pendingLight = screenToLight(ev.X, ev.Y, v.width, v.height)
		case v.mouseDown:
			dx, dy := ev.X-v.lastX, ev.Y-v.lastY
			v.spin.Impulse(float64(dy)*dragSpeed, float64(dx)*dragSpeed, 0)
			v.lastX, v.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.zoom(-zoomStep)
		case uv.MouseWheelDown:
			v.zoom(zoomStep)
		}
	}
}

func (v *viewer) key(ev uv.KeyPressEvent) {
	switch {
	case ev.MatchString("ctrl+c"):
		v.cancel()
	case ev.MatchString("escape"):
		if v.lightMode {
			v.lightMode = false
			return
		}
		v.cancel()
	case ev.MatchString("1", "2", "3", "4", "5", "6", "7"):
		for i, m := range render.RenderModes() {
			if ev.MatchString(strconv.Itoa(i + 1)) {
				v.pipe.SetRenderMode(m)
			}
		}
	case ev.MatchString("p"):
		if v.pipe.Projection() == render.ProjectionPerspective {
			v.pipe.SetProjection(render.ProjectionOrthogonal)
		} else {
			v.pipe.SetProjection(render.ProjectionPerspective)
		}
	case ev.MatchString("w", "up"):
		v.torque.pitch = -torqueStrength
	case ev.MatchString("s", "down"):
		v.torque.pitch = torqueStrength
	case ev.MatchString("a", "left"):
		v.torque.yaw = -torqueStrength
	case ev.MatchString("d", "right"):
		v.torque.yaw = torqueStrength
	case ev.MatchString("q"):
		v.torque.roll = -torqueStrength
	case ev.MatchString("e"):
		v.torque.roll = torqueStrength
	case ev.MatchString("space"):
		v.spin.Impulse(
			(rand.Float64()-0.5)*1.5,
			(rand.Float64()-0.5)*1.5,
			(rand.Float64()-0.5)*1.5,
		)
	case ev.MatchString("r"):
		v.spin.Reset()
		v.distance = v.scene.Distance
	case ev.MatchString("+", "="):
		v.zoom(-zoomStep)
	case ev.MatchString("-", "_"):
		v.zoom(zoomStep)
	case ev.MatchString("l"):
		v.lightMode = true
		if ls := v.pipe.Lights(); len(ls) > 0 {
			v.pendingLight = ls[0].Vector()
		} else {
			v.pendingLight = render.DefaultLight().Vector()
		}
	case ev.MatchString("?", "shift+/"):
		v.hud.Toggle()
	}
}

// screenToLight maps a cell position to a unit light vector on the
// hemisphere facing the camera. The center of the screen gives (0, 0, -1);
// moving right or down lights the model from the right or from below.
func screenToLight(x, y, width, height int) math3d.Vec3 {
	if width <= 0 || height <= 0 {
		return render.DefaultLight().Vector()
	}
	nx := (float64(x)/float64(width))*2 - 1
	ny := (float64(y)/float64(height))*2 - 1
	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}
	nz := math.Sqrt(1 - lenSq)
	return math3d.V3(-nx, -ny, -nz).Normalize()
}
