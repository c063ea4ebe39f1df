package models

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Load picks a loader from the file extension: .obj, .gltf or .glb.
func Load(path string, logger *log.Logger) (*Mesh, error) {
	var (
		mesh *Mesh
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		mesh, err = LoadOBJ(path)
	case ".gltf", ".glb":
		mesh, err = LoadGLTF(path)
	default:
		return nil, fmt.Errorf("load %s: %q: %w", path, ext, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("loaded mesh",
		"name", mesh.Name,
		"vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount(),
		"materials", len(mesh.Materials),
	)
	return mesh, nil
}
