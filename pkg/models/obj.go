package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/penumbra/pkg/math3d"
	"github.com/taigrr/penumbra/pkg/render"
)

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	mesh.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return mesh, nil
}

// ParseOBJ reads positions (v), texture coordinates (vt), normals (vn) and
// faces (f). Face corners may be written v, v/t, v//n or v/t/n, and
// negative indices count back from the latest element. Polygons are
// triangulated as fans around their first corner. Other statements are
// ignored.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	mesh := NewMesh("")
	scanner := bufio.NewScanner(r)

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			var v math3d.Vec3
			v, err = parseVec3(fields[1:])
			mesh.Positions = append(mesh.Positions, v)
		case "vt":
			var v math3d.Vec3
			v, err = parseVec3(append(fields[1:], "0", "0")[:2])
			mesh.UVs = append(mesh.UVs, math3d.V2(v.X, v.Y))
		case "vn":
			var v math3d.Vec3
			v, err = parseVec3(fields[1:])
			mesh.Normals = append(mesh.Normals, v)
		case "f":
			err = mesh.parseFace(fields[1:])
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	if len(mesh.Faces) == 0 {
		return nil, ErrNoGeometry
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// parseVec3 parses up to three floats; missing components are zero.
func parseVec3(fields []string) (math3d.Vec3, error) {
	if len(fields) < 2 {
		return math3d.Vec3{}, fmt.Errorf("want at least 2 components, got %d", len(fields))
	}
	var c [3]float64
	for i := range min(len(fields), 3) {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("parse component: %w", err)
		}
		c[i] = f
	}
	return math3d.V3(c[0], c[1], c[2]), nil
}

func (m *Mesh) parseFace(corners []string) error {
	if len(corners) < 3 {
		return fmt.Errorf("face has %d corners", len(corners))
	}

	v := make([]int, len(corners))
	t := make([]int, len(corners))
	n := make([]int, len(corners))
	for i, c := range corners {
		// v, v/t, v//n, v/t/n
		parts := strings.Split(c+"//", "/")
		var err error
		if v[i], err = fixIndex(parts[0], len(m.Positions)); err != nil {
			return err
		}
		if v[i] < 0 {
			return fmt.Errorf("corner %q has no position", c)
		}
		if t[i], err = fixIndex(parts[1], len(m.UVs)); err != nil {
			return err
		}
		if n[i], err = fixIndex(parts[2], len(m.Normals)); err != nil {
			return err
		}
	}

	for i := 1; i+1 < len(corners); i++ {
		a, b, c := 0, i, i+1
		m.Faces = append(m.Faces, Face{
			V:        [3]int{v[a], v[b], v[c]},
			T:        [3]int{t[a], t[b], t[c]},
			N:        [3]int{n[a], n[b], n[c]},
			Material: -1,
		})
	}
	return nil
}

// fixIndex converts a one-based or negative OBJ index into a zero-based
// one. An empty field yields -1.
func fixIndex(field string, length int) (int, error) {
	if field == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("parse index: %w", err)
	}

	switch {
	case i > 0 && i <= length:
		return i - 1, nil
	case i < 0 && -i <= length:
		return length + i, nil
	default:
		return 0, fmt.Errorf("index %d with %d elements: %w", i, length, render.ErrIndexRange)
	}
}
