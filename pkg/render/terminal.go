package render

import (
	"fmt"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. Each terminal row shows two framebuffer rows: the upper half
// block ▀ takes the top color as foreground and the bottom one as
// background, so the framebuffer height should be twice the area height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor maps fully transparent pixels to the terminal default color.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// TerminalSink presents rasterizer output on an ultraviolet terminal.
type TerminalSink struct {
	term   *uv.Terminal
	width  int
	height int
}

// NewTerminalSink creates a sink covering width x height terminal cells.
func NewTerminalSink(term *uv.Terminal, width, height int) *TerminalSink {
	return &TerminalSink{term: term, width: width, height: height}
}

// FramebufferSize returns the pixel resolution the sink can show: one column
// per cell and two rows per cell.
func (s *TerminalSink) FramebufferSize() (int, int) {
	return s.width, s.height * 2
}

// Present draws the rasterizer's pixels and flushes the terminal.
func (s *TerminalSink) Present(r *Rasterizer) error {
	r.Draw(s.term, uv.Rect(0, 0, s.width, s.height))
	if err := s.term.Display(); err != nil {
		return fmt.Errorf("display frame: %w", err)
	}
	return nil
}
