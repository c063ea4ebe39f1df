package math3d

import "math"

// Mat4 is a 4x4 homogeneous transform stored in row-major order and applied
// to column vectors (M * v).
//
// Memory layout (indices):
// | 0  1  2  3  |
// | 4  5  6  7  |
// | 8  9  10 11 |
// | 12 13 14 15 |
//
// Transforms compose right to left: A.Mul(B) applies B first.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
	}
}

// Scale creates a non-uniform scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateX creates a right-handed rotation around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a right-handed rotation around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ creates a right-handed rotation around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Perspective creates an off-center perspective projection for a camera
// looking down -z. near and far are negative view-space depths with
// far < near; left, right, top and bottom are the frustum extents on the
// near plane.
//
// The last row copies view z into w, so visible points have w < 0 and
// NDC z runs from -1 at the near plane to 1 at the far plane.
func Perspective(near, far, left, right, top, bottom float64) Mat4 {
	return Mat4{
		2 * near / (right - left), 0, -(right + left) / (right - left), 0,
		0, 2 * near / (top - bottom), -(top + bottom) / (top - bottom), 0,
		0, 0, (far + near) / (far - near), -2 * far * near / (far - near),
		0, 0, 1, 0,
	}
}

// Mul multiplies two matrices: m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for row := range 4 {
		for col := range 4 {
			var sum float64
			for k := range 4 {
				sum += m[row*4+k] * n[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	return out
}

// MulVec4 transforms a homogeneous vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3]*v.W,
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7]*v.W,
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]*v.W,
		m[12]*v.X + m[13]*v.Y + m[14]*v.Z + m[15]*v.W,
	}
}

// MulPoint transforms p as a point (w = 1) and drops w. Only meaningful
// for affine matrices.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	return m.MulVec4(Point(p)).XYZ()
}

// MulDir transforms d as a direction (w = 0, no translation).
func (m Mat4) MulDir(d Vec3) Vec3 {
	return m.MulVec4(Direction(d)).XYZ()
}

// Transpose returns the transposed matrix. For a pure rotation this is
// the inverse.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// NormalMatrix returns the inverse transpose of the upper-left 3x3 block,
// which carries surface normals through m. Translation is dropped. A
// singular block gives the zero matrix.
func (m Mat4) NormalMatrix() Mat4 {
	a00, a01, a02 := m[0], m[1], m[2]
	a10, a11, a12 := m[4], m[5], m[6]
	a20, a21, a22 := m[8], m[9], m[10]

	// Cofactors
	c00 := a11*a22 - a12*a21
	c01 := a12*a20 - a10*a22
	c02 := a10*a21 - a11*a20
	c10 := a02*a21 - a01*a22
	c11 := a00*a22 - a02*a20
	c12 := a01*a20 - a00*a21
	c20 := a01*a12 - a02*a11
	c21 := a02*a10 - a00*a12
	c22 := a00*a11 - a01*a10

	det := a00*c00 + a01*c01 + a02*c02
	if det == 0 {
		return Mat4{}
	}
	inv := 1 / det
	return Mat4{
		c00 * inv, c01 * inv, c02 * inv, 0,
		c10 * inv, c11 * inv, c12 * inv, 0,
		c20 * inv, c21 * inv, c22 * inv, 0,
		0, 0, 0, 1,
	}
}

// At returns the element at (row, col).
func (m Mat4) At(row, col int) float64 {
	return m[row*4+col]
}

// Row returns row i as a Vec4.
func (m Mat4) Row(i int) Vec4 {
	return Vec4{m[i*4], m[i*4+1], m[i*4+2], m[i*4+3]}
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// ApproxEqual reports whether every element of m and n differs by at most
// eps.
func (m Mat4) ApproxEqual(n Mat4, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-n[i]) > eps {
			return false
		}
	}
	return true
}
