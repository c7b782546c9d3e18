// raster3d - software 3D renderer for the terminal and image files.
//
// Usage:
//
//	raster3d view <model>                 interactive terminal viewer
//	raster3d snapshot <model> -o out.png  render one frame to PNG or WebP
//
// <model> is a .glb, .gltf or .obj file, or "cube" for the built-in cube.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/raster3d/internal/config"
	"github.com/taigrr/raster3d/pkg/models"
	"github.com/taigrr/raster3d/pkg/render"
)

var version = "dev"

// options holds the flags shared by every command.
type options struct {
	configPath  string
	verbose     bool
	texturePath string
	flags       config.Flags
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "raster3d",
		Short: "Software 3D renderer for terminals and image files",
		Long: "raster3d renders glTF, GLB and OBJ models with a software pipeline:\n" +
			"back-face culling, near and screen clipping, perspective-correct\n" +
			"texturing and a depth buffer.",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if opts.verbose {
				logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
				render.SetLogger(logger)
				models.SetLogger(logger)
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "JSON settings file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log diagnostics to stderr")
	pf.StringVarP(&opts.texturePath, "texture", "t", "", "texture image for parts without one")
	pf.StringVarP(&opts.flags.RenderMode, "mode", "m", "", "render mode (wire, flat, smooth-flat, textured, full-textured, textured-shadow, full-textured-shadow)")
	pf.StringVar(&opts.flags.Projection, "projection", "", "perspective or orthogonal")
	pf.StringVar(&opts.flags.Background, "bg", "", "background color as #RRGGBB")
	pf.Float64Var(&opts.flags.FOV, "fov", 0, "field of view in degrees")
	pf.Float64VarP(&opts.flags.Distance, "distance", "d", 0, "model distance from the camera")

	root.AddCommand(newViewCmd(opts), newSnapshotCmd(opts))
	return root
}

// settings loads the config file, applies the flags and validates the
// result.
func (o *options) settings() (config.Config, config.Scene, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, config.Scene{}, err
	}
	cfg.Resolve(o.flags)
	scene, err := cfg.Scene()
	if err != nil {
		return config.Config{}, config.Scene{}, err
	}
	return cfg, scene, nil
}
