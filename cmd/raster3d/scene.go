package main

import (
	"fmt"
	"path/filepath"

	"github.com/taigrr/raster3d/internal/config"
	"github.com/taigrr/raster3d/pkg/math3d"
	"github.com/taigrr/raster3d/pkg/models"
	"github.com/taigrr/raster3d/pkg/render"
	"github.com/taigrr/raster3d/pkg/transform"
)

// loaded is a model ready to render.
type loaded struct {
	name      string
	model     *render.Model
	center    math3d.Vec3
	triangles int
	vertices  int
}

// loadModel reads path (or the built-in cube), rescales it to size and
// converts its material groups into render objects. Parts without a texture
// get texturePath if one is given; the built-in cube falls back to a
// checker pattern.
func loadModel(path, texturePath string, size float64) (*loaded, error) {
	mesh, err := models.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if size > 0 {
		mesh.Normalize(size)
	}

	var fallback render.TextureSource
	switch {
	case texturePath != "":
		tex, err := render.LoadTexture(texturePath)
		if err != nil {
			return nil, fmt.Errorf("load texture: %w", err)
		}
		fallback = tex
	case path == models.BuiltinCube:
		fallback = render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
	}

	model := render.NewModel()
	for _, part := range mesh.Parts() {
		obj := render.Object{Name: part.Name, Mesh: part.Mesh}
		if part.Texture != nil {
			obj.Texture = render.TextureFromImage(part.Texture)
		} else if fallback != nil {
			obj.Texture = fallback
		}
		model.Add(obj)
	}

	return &loaded{
		name:      filepath.Base(path),
		model:     model,
		center:    mesh.Center(),
		triangles: mesh.TriangleCount(),
		vertices:  mesh.VertexCount(),
	}, nil
}

// newPipeline builds a pipeline for a width x height buffer from scene.
func newPipeline(width, height int, scene config.Scene) *render.Pipeline {
	return render.NewPipeline(width, height,
		render.WithRenderMode(scene.Mode),
		render.WithProjection(scene.Projection),
		render.WithPerspective(scene.FOV, scene.Near, scene.Far),
		render.WithLights(scene.Lights),
		render.WithCamera(render.NewCamera(scene.Camera)),
	)
}

// modelChain moves the model center to the origin, rotates it there and
// then pushes it distance units in front of the camera.
func modelChain(scene config.Scene, center math3d.Vec3, pitch, yaw, roll, distance float64) transform.Chain {
	return transform.NewChain(
		transform.Translation(-center.X, -center.Y, -center.Z),
		transform.Rotation(scene.Rotation.X+pitch, scene.Rotation.Y+yaw, scene.Rotation.Z+roll),
		transform.Translation(scene.Camera.X, scene.Camera.Y, scene.Camera.Z+distance),
	)
}
