package render

import "github.com/taigrr/penumbra/pkg/math3d"

// Culling mask bits. A set bit means the vertex is outside that half-space.
// Visible clip-space points have w < 0, so each test is flipped relative to
// the usual positive-w convention.
const (
	CullFar    uint8 = 1 << iota // z - w <= 0
	CullNear                     // z + w >= 0
	CullTop                      // y - w <= 0
	CullBottom                   // y + w >= 0
	CullRight                    // x - w <= 0
	CullLeft                     // x + w >= 0
	CullBehind                   // w >= 0
)

// CullingMask classifies a clip-space vertex against the frustum.
func CullingMask(v math3d.Vec4) uint8 {
	var m uint8
	if v.W >= 0 {
		m |= CullBehind
	}
	if v.X+v.W >= 0 {
		m |= CullLeft
	}
	if v.X-v.W <= 0 {
		m |= CullRight
	}
	if v.Y+v.W >= 0 {
		m |= CullBottom
	}
	if v.Y-v.W <= 0 {
		m |= CullTop
	}
	if v.Z+v.W >= 0 {
		m |= CullNear
	}
	if v.Z-v.W <= 0 {
		m |= CullFar
	}
	return m
}

// Rejected reports whether all three vertices are outside the same plane.
// The test is conservative: a triangle that passes may still be invisible.
func Rejected(m0, m1, m2 uint8) bool {
	return m0&m1&m2 != 0
}

// ShadowVertex is the output of the shadow pass vertex stage.
type ShadowVertex struct {
	Clip math3d.Vec4
	Mask uint8
}

// ShadowPassShader transforms model vertices into a light's clip space.
type ShadowPassShader struct {
	ModelToWorld math3d.Mat4
	WorldToLight math3d.Mat4
}

// Shade transforms vertices into dst, reusing its storage.
func (s ShadowPassShader) Shade(dst []ShadowVertex, vertices []math3d.Vec3) []ShadowVertex {
	m := s.WorldToLight.Mul(s.ModelToWorld)
	dst = dst[:0]
	for _, v := range vertices {
		clip := m.MulVec4(math3d.Point(v))
		dst = append(dst, ShadowVertex{Clip: clip, Mask: CullingMask(clip)})
	}
	return dst
}

// ShadedVertex is the output of the color pass vertex stage.
type ShadedVertex struct {
	Clip  math3d.Vec4 // Camera clip space
	Light math3d.Vec4 // Light clip space
	World math3d.Vec3
	Mask  uint8 // Camera culling mask
}

// RenderPassShader transforms model vertices for the color pass, into
// camera and light clip space at once.
type RenderPassShader struct {
	ModelToWorld  math3d.Mat4
	NormalMatrix  math3d.Mat4
	WorldToCamera math3d.Mat4
	WorldToLight  math3d.Mat4
}

// NewRenderPassShader builds the color pass vertex stage for a model
// transform.
func NewRenderPassShader(t Transform, worldToCamera, worldToLight math3d.Mat4) RenderPassShader {
	return RenderPassShader{
		ModelToWorld:  t.WorldMatrix(),
		NormalMatrix:  t.NormalMatrix(),
		WorldToCamera: worldToCamera,
		WorldToLight:  worldToLight,
	}
}

// Shade transforms vertices into dst, reusing its storage.
func (s RenderPassShader) Shade(dst []ShadedVertex, vertices []math3d.Vec3) []ShadedVertex {
	dst = dst[:0]
	for _, v := range vertices {
		world := s.ModelToWorld.MulVec4(math3d.Point(v))
		clip := s.WorldToCamera.MulVec4(world)
		dst = append(dst, ShadedVertex{
			Clip:  clip,
			Light: s.WorldToLight.MulVec4(world),
			World: world.XYZ(),
			Mask:  CullingMask(clip),
		})
	}
	return dst
}

// ShadeNormals rotates normals into world space and renormalizes them.
func (s RenderPassShader) ShadeNormals(dst []math3d.Vec3, normals []math3d.Vec3) []math3d.Vec3 {
	dst = dst[:0]
	for _, n := range normals {
		dst = append(dst, s.NormalMatrix.MulDir(n).Normalize())
	}
	return dst
}
