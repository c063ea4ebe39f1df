package render

import (
	"math"

	"github.com/taigrr/penumbra/pkg/math3d"
)

// Transform places an object in the world with Euler angles, a position
// and a non-uniform scale. Matrices are derived on every call.
//
// Rotation applies roll (Z) first, then pitch (X), then yaw (Y):
// R = RotateY(yaw) * RotateX(pitch) * RotateZ(roll).
type Transform struct {
	Yaw   float64 // Rotation around Y axis (radians)
	Pitch float64 // Rotation around X axis (radians)
	Roll  float64 // Rotation around Z axis (radians)

	Position math3d.Vec3
	Scale    math3d.Vec3
}

// NewTransform returns an identity transform.
func NewTransform() Transform {
	return Transform{Scale: math3d.V3(1, 1, 1)}
}

// Rotation returns the rotation matrix.
func (t Transform) Rotation() math3d.Mat4 {
	return math3d.RotateY(t.Yaw).
		Mul(math3d.RotateX(t.Pitch)).
		Mul(math3d.RotateZ(t.Roll))
}

// WorldMatrix returns the model-to-world matrix T * R * S.
func (t Transform) WorldMatrix() math3d.Mat4 {
	return math3d.Translate(t.Position).
		Mul(t.Rotation()).
		Mul(math3d.Scale(t.Scale))
}

// InverseWorldMatrix returns the world-to-model matrix S^-1 * R^T * T^-1.
// It is the exact inverse of WorldMatrix when no scale component is zero.
func (t Transform) InverseWorldMatrix() math3d.Mat4 {
	inv := math3d.V3(1/t.Scale.X, 1/t.Scale.Y, 1/t.Scale.Z)
	return math3d.Scale(inv).
		Mul(t.Rotation().Transpose()).
		Mul(math3d.Translate(t.Position.Negate()))
}

// NormalMatrix returns the matrix that carries model-space normals into
// world space (the inverse transpose of R * S, which is R * S^-1).
func (t Transform) NormalMatrix() math3d.Mat4 {
	inv := math3d.V3(1/t.Scale.X, 1/t.Scale.Y, 1/t.Scale.Z)
	return t.Rotation().Mul(math3d.Scale(inv))
}

// Right returns the local +X axis in world space.
func (t Transform) Right() math3d.Vec3 {
	return t.Rotation().MulDir(math3d.V3(1, 0, 0))
}

// Up returns the local +Y axis in world space.
func (t Transform) Up() math3d.Vec3 {
	return t.Rotation().MulDir(math3d.Up())
}

// Forward returns the local -Z axis in world space.
func (t Transform) Forward() math3d.Vec3 {
	return t.Rotation().MulDir(math3d.Forward())
}

// ToWorldPoint maps a model-space point to world space.
func (t Transform) ToWorldPoint(p math3d.Vec3) math3d.Vec3 {
	return t.WorldMatrix().MulPoint(p)
}

// ToLocalPoint maps a world-space point back to model space.
func (t Transform) ToLocalPoint(p math3d.Vec3) math3d.Vec3 {
	return t.InverseWorldMatrix().MulPoint(p)
}

// ToWorldDirection rotates a model-space direction into world space.
// Scale is ignored.
func (t Transform) ToWorldDirection(d math3d.Vec3) math3d.Vec3 {
	return t.Rotation().MulDir(d)
}

// LookAt orients the transform so Forward points at target with no roll.
// Looking straight up or down leaves yaw at zero.
func (t *Transform) LookAt(target math3d.Vec3) {
	dir := target.Sub(t.Position).Normalize()
	if dir == (math3d.Vec3{}) {
		return
	}

	t.Pitch = math.Asin(math3d.Clamp(dir.Y, -1, 1))
	t.Yaw = math.Atan2(-dir.X, -dir.Z)
	t.Roll = 0
}
