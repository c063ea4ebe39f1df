package models

import "github.com/taigrr/penumbra/pkg/math3d"

// quadUVs are the corner texture coordinates shared by every quad.
var quadUVs = []math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

// addQuad appends a counter-clockwise quad as two triangles with a flat
// normal.
func (m *Mesh) addQuad(v [4]int, normal math3d.Vec3) {
	n := len(m.Normals)
	m.Normals = append(m.Normals, normal)
	for _, c := range [][3]int{{0, 1, 2}, {0, 2, 3}} {
		m.Faces = append(m.Faces, Face{
			V:        [3]int{v[c[0]], v[c[1]], v[c[2]]},
			T:        c,
			N:        [3]int{n, n, n},
			Material: -1,
		})
	}
}

// Cube returns an axis-aligned cube centered on the origin with flat
// normals and one full texture per face.
func Cube(size float64) *Mesh {
	h := size / 2
	m := NewMesh("cube")
	m.UVs = append(m.UVs, quadUVs...)
	m.Positions = []math3d.Vec3{
		{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h},
		{X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h},
		{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h},
		{X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h},
	}

	m.addQuad([4]int{4, 5, 6, 7}, math3d.V3(0, 0, 1))
	m.addQuad([4]int{1, 0, 3, 2}, math3d.V3(0, 0, -1))
	m.addQuad([4]int{5, 1, 2, 6}, math3d.V3(1, 0, 0))
	m.addQuad([4]int{0, 4, 7, 3}, math3d.V3(-1, 0, 0))
	m.addQuad([4]int{7, 6, 2, 3}, math3d.V3(0, 1, 0))
	m.addQuad([4]int{0, 1, 5, 4}, math3d.V3(0, -1, 0))

	m.CalculateBounds()
	return m
}

// Plane returns a square in the XZ plane facing +Y.
func Plane(size float64) *Mesh {
	h := size / 2
	m := NewMesh("plane")
	m.UVs = append(m.UVs, quadUVs...)
	m.Positions = []math3d.Vec3{
		{X: -h, Z: h}, {X: h, Z: h},
		{X: h, Z: -h}, {X: -h, Z: -h},
	}
	m.addQuad([4]int{0, 1, 2, 3}, math3d.V3(0, 1, 0))

	m.CalculateBounds()
	return m
}
