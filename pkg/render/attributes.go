package render

import "github.com/taigrr/penumbra/pkg/math3d"

// Interpolable is an attribute bundle that supports affine combinations.
// For every field, a.Lerp(b, t) must equal a + t*(b - a).
type Interpolable[T any] interface {
	Add(T) T
	Scale(float64) T
	Lerp(T, float64) T
}

// NoAttributes is the empty bundle carried through the depth-only shadow
// pass.
type NoAttributes struct{}

// Add implements Interpolable.
func (NoAttributes) Add(NoAttributes) NoAttributes { return NoAttributes{} }

// Scale implements Interpolable.
func (NoAttributes) Scale(float64) NoAttributes { return NoAttributes{} }

// Lerp implements Interpolable.
func (NoAttributes) Lerp(NoAttributes, float64) NoAttributes { return NoAttributes{} }

// VertexAttributes is the per-vertex bundle of the color pass and, once
// interpolated, the input of a PixelShader.
type VertexAttributes struct {
	World  math3d.Vec3 // World-space position
	Light  math3d.Vec4 // Light clip-space position, not divided by w
	UV     math3d.Vec2
	Normal math3d.Vec3 // World-space normal
}

// Add implements Interpolable.
func (a VertexAttributes) Add(b VertexAttributes) VertexAttributes {
	return VertexAttributes{
		World:  a.World.Add(b.World),
		Light:  a.Light.Add(b.Light),
		UV:     a.UV.Add(b.UV),
		Normal: a.Normal.Add(b.Normal),
	}
}

// Scale implements Interpolable.
func (a VertexAttributes) Scale(s float64) VertexAttributes {
	return VertexAttributes{
		World:  a.World.Scale(s),
		Light:  a.Light.Scale(s),
		UV:     a.UV.Scale(s),
		Normal: a.Normal.Scale(s),
	}
}

// Lerp implements Interpolable.
func (a VertexAttributes) Lerp(b VertexAttributes, t float64) VertexAttributes {
	return VertexAttributes{
		World:  a.World.Lerp(b.World, t),
		Light:  a.Light.Lerp(b.Light, t),
		UV:     a.UV.Lerp(b.UV, t),
		Normal: a.Normal.Lerp(b.Normal, t),
	}
}
