package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files or encodings the loaders do
// not handle.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// BuiltinCube is the model name Load resolves to NewCube(1) without
// touching the filesystem.
const BuiltinCube = "cube"

// Load opens a model by file extension: .glb and .gltf through the glTF
// loader, .obj through the OBJ loader.
func Load(path string) (*Mesh, error) {
	if path == BuiltinCube {
		return NewCube(1), nil
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".glb", ".gltf":
		return LoadGLTF(path)
	case ".obj":
		return LoadOBJ(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
