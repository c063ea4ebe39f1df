package models

import (
	"github.com/fogleman/simplify"

	"github.com/taigrr/penumbra/pkg/math3d"
)

// Simplify returns a decimated copy keeping roughly factor of the
// triangles, using quadric error metrics. Texture coordinates are dropped
// and smooth normals are rebuilt. A factor of 1 or more returns a clone.
func (m *Mesh) Simplify(factor float64) *Mesh {
	if factor >= 1 || len(m.Faces) == 0 {
		return m.Clone()
	}

	tris := make([]*simplify.Triangle, len(m.Faces))
	for i, f := range m.Faces {
		tris[i] = &simplify.Triangle{
			V1: toVector(m.Positions[f.V[0]]),
			V2: toVector(m.Positions[f.V[1]]),
			V3: toVector(m.Positions[f.V[2]]),
		}
	}
	reduced := simplify.NewMesh(tris).Simplify(factor)

	out := NewMesh(m.Name)
	out.Materials = append(out.Materials, m.Materials...)

	// Weld identical positions back into an indexed mesh
	index := make(map[simplify.Vector]int)
	weld := func(v simplify.Vector) int {
		if i, ok := index[v]; ok {
			return i
		}
		i := len(out.Positions)
		index[v] = i
		out.Positions = append(out.Positions, math3d.V3(v.X, v.Y, v.Z))
		return i
	}

	for _, t := range reduced.Triangles {
		f := Face{
			V:        [3]int{weld(t.V1), weld(t.V2), weld(t.V3)},
			T:        [3]int{-1, -1, -1},
			Material: -1,
		}
		if f.V[0] == f.V[1] || f.V[1] == f.V[2] || f.V[0] == f.V[2] {
			continue
		}
		out.Faces = append(out.Faces, f)
	}

	out.CalculateSmoothNormals()
	out.CalculateBounds()
	return out
}

func toVector(v math3d.Vec3) simplify.Vector {
	return simplify.Vector{X: v.X, Y: v.Y, Z: v.Z}
}
