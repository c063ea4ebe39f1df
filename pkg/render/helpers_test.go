package render

import (
	"math"

	"github.com/beorn7/floats"

	"github.com/taigrr/penumbra/pkg/math3d"
)

const tolerance = 1e-9

// approx accepts an absolute difference of tol, or a relative one for
// large magnitudes.
func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol || floats.AlmostEqual(a, b, tol)
}

func approxVec3(a, b math3d.Vec3, tol float64) bool {
	return approx(a.X, b.X, tol) && approx(a.Y, b.Y, tol) && approx(a.Z, b.Z, tol)
}

func approxVec4(a, b math3d.Vec4, tol float64) bool {
	return approxVec3(a.XYZ(), b.XYZ(), tol) && approx(a.W, b.W, tol)
}

// cubeModel returns a cube of side 1 centered at the origin with
// counter-clockwise faces seen from outside and one normal per face.
func cubeModel(shader PixelShader) *Model {
	m := NewModel("cube", shader)
	m.Vertices = []math3d.Vec3{
		{X: -0.5, Y: -0.5, Z: -0.5}, {X: 0.5, Y: -0.5, Z: -0.5},
		{X: 0.5, Y: 0.5, Z: -0.5}, {X: -0.5, Y: 0.5, Z: -0.5},
		{X: -0.5, Y: -0.5, Z: 0.5}, {X: 0.5, Y: -0.5, Z: 0.5},
		{X: 0.5, Y: 0.5, Z: 0.5}, {X: -0.5, Y: 0.5, Z: 0.5},
	}
	m.Normals = []math3d.Vec3{
		{Z: 1}, {Z: -1}, {X: 1}, {X: -1}, {Y: 1}, {Y: -1},
	}
	m.UVs = []math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	faces := [6][4]int{
		{4, 5, 6, 7}, // +Z
		{1, 0, 3, 2}, // -Z
		{5, 1, 2, 6}, // +X
		{0, 4, 7, 3}, // -X
		{7, 6, 2, 3}, // +Y
		{0, 1, 5, 4}, // -Y
	}
	for n, f := range faces {
		for _, c := range [6]int{0, 1, 2, 0, 2, 3} {
			m.VertexIndices = append(m.VertexIndices, f[c])
			m.UVIndices = append(m.UVIndices, c)
			m.NormalIndices = append(m.NormalIndices, n)
		}
	}
	return m
}

// planeModel returns a square in the XZ plane facing +Y.
func planeModel(half float64, shader PixelShader) *Model {
	m := NewModel("plane", shader)
	m.Vertices = []math3d.Vec3{
		{X: -half, Z: half}, {X: half, Z: half},
		{X: half, Z: -half}, {X: -half, Z: -half},
	}
	m.UVs = []math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	m.Normals = []math3d.Vec3{{Y: 1}}
	m.VertexIndices = []int{0, 1, 2, 0, 2, 3}
	m.UVIndices = []int{0, 1, 2, 0, 2, 3}
	m.NormalIndices = []int{0, 0, 0, 0, 0, 0}
	return m
}

// scalar is a one-field attribute bundle for interpolation tests.
type scalar float64

func (a scalar) Add(b scalar) scalar             { return a + b }
func (a scalar) Scale(s float64) scalar          { return a * scalar(s) }
func (a scalar) Lerp(b scalar, t float64) scalar { return a + (b-a)*scalar(t) }
