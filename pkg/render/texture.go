package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"math"
	"os"

	"github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp" // Register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// TextureSource is a fixed-size pixel grid the rasterizer samples from.
// Texel reports false for coordinates it cannot serve; the rasterizer then
// uses MissingSample.
type TextureSource interface {
	Size() (width, height int)
	Texel(x, y int) (Color, bool)
}

// WrapMode determines how texel coordinates outside the image are handled.
type WrapMode int

const (
	WrapNone   WrapMode = iota // Out-of-range lookups fail
	WrapRepeat                 // Tile the texture
	WrapClamp                  // Clamp to edge
)

// Texture holds a 2D image for texture mapping.
type Texture struct {
	Width  int
	Height int
	Pixels []Color // Row-major pixel data
	Wrap   WrapMode
}

var _ TextureSource = (*Texture)(nil)

// NewTexture creates a transparent texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture reads and decodes an image file. PNG, JPEG, TGA, BMP and WebP
// are supported.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	tex, err := DecodeTexture(f)
	if err != nil {
		return nil, fmt.Errorf("load texture %s: %w", path, err)
	}
	return tex, nil
}

// DecodeTexture decodes an image stream into a texture.
func DecodeTexture(r io.Reader) (*Texture, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return TextureFromImage(img), nil
}

// decodeImage tries the registered formats first and TGA last. TGA has no
// magic number, so it is never registered with the image package.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return tga.Decode(bytes.NewReader(data))
	}
	return img, err
}

// TextureFromImage copies img into a new texture.
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	tex := NewTexture(b.Dx(), b.Dy())
	for y := range tex.Height {
		off := y * rgba.Stride
		for x := range tex.Width {
			p := rgba.Pix[off+x*4 : off+x*4+4 : off+x*4+4]
			tex.Pixels[y*tex.Width+x] = Color{R: p[0], G: p[1], B: p[2], A: p[3]}
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture. Out-of-range writes are ignored.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// Size returns the texture dimensions.
func (t *Texture) Size() (int, int) {
	return t.Width, t.Height
}

// Texel returns the pixel at (x, y) after applying the wrap mode.
func (t *Texture) Texel(x, y int) (Color, bool) {
	if t.Width <= 0 || t.Height <= 0 {
		return Color{}, false
	}
	x, okX := wrapCoord(x, t.Width, t.Wrap)
	y, okY := wrapCoord(y, t.Height, t.Wrap)
	if !okX || !okY {
		return Color{}, false
	}
	return t.Pixels[y*t.Width+x], true
}

func wrapCoord(x, size int, mode WrapMode) (int, bool) {
	switch mode {
	case WrapRepeat:
		x %= size
		if x < 0 {
			x += size
		}
	case WrapClamp:
		x = max(0, min(x, size-1))
	}
	return x, x >= 0 && x < size
}

// Sample looks up tex at normalized coordinates (u, v) with v = 0 at the top
// row. The texel index is int(u*width), capped at width-1 (likewise for v).
// Lookups the source cannot serve, including NaN coordinates, are logged
// and yield MissingSample.
func Sample(tex TextureSource, u, v float64) Color {
	w, h := tex.Size()
	if math.IsNaN(u) || math.IsNaN(v) || math.IsInf(u, 0) || math.IsInf(v, 0) {
		Logger().Debug("texture sample not a number", "u", u, "v", v)
		return MissingSample
	}
	x := min(int(u*float64(w)), w-1)
	y := min(int(v*float64(h)), h-1)
	c, ok := tex.Texel(x, y)
	if !ok {
		Logger().Debug("texture sample out of range", "u", u, "v", v, "x", x, "y", y, "width", w, "height", h)
		return MissingSample
	}
	return c
}
