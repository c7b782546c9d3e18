package render

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"
)

func TestSample(t *testing.T) {
	tex := NewTexture(2, 2)
	tex.SetPixel(0, 0, ColorRed)
	tex.SetPixel(1, 0, ColorGreen)
	tex.SetPixel(0, 1, ColorBlue)
	tex.SetPixel(1, 1, ColorWhite)

	tests := []struct {
		name string
		wrap WrapMode
		u, v float64
		want Color
	}{
		{"top left", WrapNone, 0.1, 0.1, ColorRed},
		{"top right", WrapNone, 0.9, 0.1, ColorGreen},
		{"bottom left", WrapNone, 0.1, 0.9, ColorBlue},
		{"edge u=1 capped", WrapNone, 1, 0, ColorGreen},
		{"edge v=1 capped", WrapNone, 0, 1, ColorBlue},
		{"far negative fails closed", WrapNone, -1, 0, MissingSample},
		{"far positive capped", WrapNone, 5, 0, ColorGreen},
		{"nan fails closed", WrapNone, math.NaN(), 0, MissingSample},
		{"repeat negative", WrapRepeat, -0.75, 0.1, ColorGreen},
		{"clamp negative", WrapClamp, -3, 0.9, ColorBlue},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tex.Wrap = tc.wrap
			if got := Sample(tex, tc.u, tc.v); got != tc.want {
				t.Errorf("Sample(%v, %v) = %v, want %v", tc.u, tc.v, got, tc.want)
			}
		})
	}
}

func TestTexelEmpty(t *testing.T) {
	tex := NewTexture(0, 0)
	if _, ok := tex.Texel(0, 0); ok {
		t.Error("empty texture returned a texel")
	}
	if got := Sample(tex, 0.5, 0.5); got != MissingSample {
		t.Errorf("Sample on empty texture = %v, want MissingSample", got)
	}
}

func TestDecodeTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(2, 1, color.NRGBA{10, 20, 30, 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	tex, err := DecodeTexture(&buf)
	if err != nil {
		t.Fatalf("DecodeTexture: %v", err)
	}
	if w, h := tex.Size(); w != 3 || h != 2 {
		t.Fatalf("size = %dx%d, want 3x2", w, h)
	}
	if c, _ := tex.Texel(2, 1); c != RGB(10, 20, 30) {
		t.Errorf("texel = %v, want (10,20,30)", c)
	}
}

// tgaPixel is an uncompressed 24-bit 1x1 TGA holding RGB (10, 20, 30).
var tgaPixel = []byte{
	0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 24, 0x20,
	30, 20, 10,
}

func TestDecodeTextureFormats(t *testing.T) {
	jpg := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var jbuf bytes.Buffer
	if err := jpeg.Encode(&jbuf, jpg, nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		data  []byte
		w, h  int
		texel Color
		check bool
	}{
		{name: "jpeg", data: jbuf.Bytes(), w: 8, h: 8},
		{name: "tga", data: tgaPixel, w: 1, h: 1, texel: RGB(10, 20, 30), check: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := DecodeTexture(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("DecodeTexture: %v", err)
			}
			if w, h := tex.Size(); w != tt.w || h != tt.h {
				t.Fatalf("size = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
			if !tt.check {
				return
			}
			if c, _ := tex.Texel(0, 0); c != tt.texel {
				t.Errorf("texel = %v, want %v", c, tt.texel)
			}
		})
	}
}

func TestDecodeTextureInvalid(t *testing.T) {
	if _, err := DecodeTexture(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestCheckerTexture(t *testing.T) {
	tex := NewCheckerTexture(4, 4, 2, ColorBlack, ColorWhite)
	if c, _ := tex.Texel(0, 0); c != ColorBlack {
		t.Errorf("(0,0) = %v, want black", c)
	}
	if c, _ := tex.Texel(2, 0); c != ColorWhite {
		t.Errorf("(2,0) = %v, want white", c)
	}
	if c, _ := tex.Texel(2, 2); c != ColorBlack {
		t.Errorf("(2,2) = %v, want black", c)
	}
}
