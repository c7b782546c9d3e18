package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/taigrr/raster3d/pkg/render"
)

type snapshotOptions struct {
	output string
	stats  bool
}

func newSnapshotCmd(opts *options) *cobra.Command {
	so := &snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot <model>",
		Short: "Render one frame to a PNG or WebP file",
		Example: "  raster3d snapshot cube -o cube.png\n" +
			"  raster3d snapshot helmet.glb -o helmet.webp --width 640 --height 480 --scale 2",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(opts, so, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&so.output, "output", "o", "", "output file (.png or .webp)")
	f.BoolVar(&so.stats, "stats", false, "print render counters onto the image")
	f.IntVar(&opts.flags.Width, "width", 0, "frame width in pixels")
	f.IntVar(&opts.flags.Height, "height", 0, "frame height in pixels")
	f.IntVar(&opts.flags.Scale, "scale", 0, "integer upscale factor for the saved image")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runSnapshot(opts *options, so *snapshotOptions, modelPath string) error {
	encode, err := encoderFor(so.output)
	if err != nil {
		return err
	}
	cfg, scene, err := opts.settings()
	if err != nil {
		return err
	}
	m, err := loadModel(modelPath, opts.texturePath, scene.Size)
	if err != nil {
		return err
	}

	p := newPipeline(cfg.Width, cfg.Height, scene)
	p.Clear(scene.Background)
	p.ClearDepthBuffer()
	p.SetTransformChain(modelChain(scene, m.center, 0, 0, 0, scene.Distance))
	p.RenderModel(m.model)

	var img draw.Image = p.Rasterizer().Image()
	if cfg.Scale > 1 {
		img = upscale(img, cfg.Scale)
	}
	if so.stats {
		s := p.Stats()
		caption(img, fmt.Sprintf("%s %s  in:%d culled:%d drawn:%d",
			m.name, p.RenderMode(), s.TrianglesIn, s.BackFacesCulled, s.Drawn))
	}

	out, err := os.Create(so.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", so.output, err)
	}
	return out.Close()
}

type encoder func(io.Writer, image.Image) error

// encoderFor picks the image encoder from the output file extension.
func encoderFor(path string) (encoder, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return png.Encode, nil
	case ".webp":
		return func(w io.Writer, img image.Image) error {
			return nativewebp.Encode(w, img, nil)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (use .png or .webp)", ext)
	}
}

// upscale enlarges img by an integer factor keeping pixels sharp.
func upscale(img image.Image, factor int) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// caption writes text in the top-left corner of img on a dark band.
func caption(img draw.Image, text string) {
	face := basicfont.Face7x13
	band := image.Rect(0, 0, img.Bounds().Dx(), face.Height+4)
	draw.Draw(img, band, image.NewUniform(color.RGBA{0, 0, 0, 160}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(render.ColorWhite),
		Face: face,
		Dot:  fixed.P(4, face.Ascent+2),
	}
	d.DrawString(text)
}
