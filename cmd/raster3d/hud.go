package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/taigrr/raster3d/pkg/render"
)

const (
	ansiReset     = "\x1b[0m"
	ansiBold      = "\x1b[1m"
	ansiDim       = "\x1b[2m"
	ansiBgBlack   = "\x1b[40m"
	ansiFgWhite   = "\x1b[97m"
	ansiFgGreen   = "\x1b[92m"
	ansiFgYellow  = "\x1b[93m"
	ansiFgCyan    = "\x1b[96m"
	ansiClearLine = "\x1b[2K"
)

func moveTo(row, col int) string {
	return fmt.Sprintf("\x1b[%d;%dH", row, col)
}

// hud draws a two-line overlay: frame rate, file name and triangle counts
// on the top row, render mode and projection on the bottom row.
type hud struct {
	out       io.Writer
	filename  string
	triangles int
	visible   bool

	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func newHUD(out io.Writer, filename string, triangles int) *hud {
	return &hud{out: out, filename: filename, triangles: triangles, fpsTime: time.Now()}
}

// Tick counts a frame toward the frame rate estimate.
func (h *hud) Tick() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Toggle flips overlay visibility.
func (h *hud) Toggle() { h.visible = !h.visible }

// Render writes the overlay for a width x height cell terminal. The light
// mode banner is shown even when the overlay is hidden.
func (h *hud) Render(width, height int, p *render.Pipeline, lightMode bool) {
	var b strings.Builder
	b.WriteString(moveTo(1, 1) + ansiClearLine)
	b.WriteString(moveTo(height, 1) + ansiClearLine)

	switch {
	case lightMode:
		msg := " ◉ LIGHT MODE - move mouse to aim, click to set, Esc to cancel "
		b.WriteString(moveTo(height, max((width-len(msg))/2, 1)))
		b.WriteString(ansiBgBlack + ansiBold + ansiFgYellow + msg + ansiReset)
	case h.visible:
		fmt.Fprintf(&b, "%s%s%s %.0f FPS %s", moveTo(1, 1), ansiBgBlack, ansiFgGreen, h.fps, ansiReset)

		b.WriteString(moveTo(1, max((width-len(h.filename)-2)/2, 1)))
		fmt.Fprintf(&b, "%s%s%s %s %s", ansiBold, ansiBgBlack, ansiFgWhite, h.filename, ansiReset)

		tris := fmt.Sprintf(" %d/%d tris ", p.TrianglesDrawn(), h.triangles)
		b.WriteString(moveTo(1, max(width-len(tris), 1)))
		b.WriteString(ansiBgBlack + ansiFgCyan + ansiBold + tris + ansiReset)

		fmt.Fprintf(&b, "%s%s%s [%d] %s  %s %s", moveTo(height, 1), ansiBgBlack, ansiFgWhite,
			int(p.RenderMode())+1, p.RenderMode(), p.Projection(), ansiReset)

		hint := " 1-7 mode  P proj  L light "
		b.WriteString(moveTo(height, max(width-len(hint), 1)))
		b.WriteString(ansiBgBlack + ansiDim + ansiFgYellow + hint + ansiReset)
	}

	io.WriteString(h.out, b.String())
}
