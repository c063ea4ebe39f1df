package render

import (
	"math"

	"github.com/taigrr/penumbra/pkg/math3d"
)

// Gamma is the display gamma applied by SpotlightShader.
const Gamma = 2.2

// LightSource resolves light handles. Scene implements it.
type LightSource interface {
	Light(id LightID) *SpotLight
}

// PixelShader computes the color of a covered pixel from its interpolated
// attributes.
type PixelShader interface {
	Shade(frag VertexAttributes, lights LightSource) math3d.Vec3
}

// ShadowReceiver is implemented by shaders that read a light's shadow map.
// The color pass uses the light's matrices to fill VertexAttributes.Light.
type ShadowReceiver interface {
	ShadowLight() LightID
}

// DiffuseShader is ambient plus Lambert lighting from a fixed direction.
type DiffuseShader struct {
	Albedo   math3d.Vec3
	LightDir math3d.Vec3 // Points toward the light
	Ambient  float64
}

// Shade implements PixelShader.
func (s *DiffuseShader) Shade(frag VertexAttributes, _ LightSource) math3d.Vec3 {
	n := frag.Normal.Normalize()
	diffuse := math.Max(n.Dot(s.LightDir.Normalize()), 0)
	return s.Albedo.Scale(s.Ambient + diffuse)
}

// TextureShader returns the nearest texel at the fragment's uv.
type TextureShader struct {
	Texture *Texture[math3d.Vec3]
}

// Shade implements PixelShader.
func (s *TextureShader) Shade(frag VertexAttributes, _ LightSource) math3d.Vec3 {
	return s.Texture.Sample(frag.UV.X, frag.UV.Y)
}

// NormalShader maps world normals to colors. Useful for debugging geometry.
type NormalShader struct{}

// Shade implements PixelShader.
func (NormalShader) Shade(frag VertexAttributes, _ LightSource) math3d.Vec3 {
	return frag.Normal.Normalize().Add(math3d.Splat3(1)).Scale(0.5)
}

// SpotlightShader combines ambient, directional and shadowed spotlight
// terms, then gamma-corrects the result. Output is not clamped.
type SpotlightShader struct {
	Albedo  math3d.Vec3
	Texture *Texture[math3d.Vec3] // Optional, modulates Albedo

	Ambient        math3d.Vec3
	Directional    math3d.Vec3 // Directional light color
	DirectionalDir math3d.Vec3 // Points toward the directional light

	Light  LightID
	Shadow *PCF // Nil disables shadowing
}

// ShadowLight implements ShadowReceiver.
func (s *SpotlightShader) ShadowLight() LightID {
	return s.Light
}

// Shade implements PixelShader.
func (s *SpotlightShader) Shade(frag VertexAttributes, lights LightSource) math3d.Vec3 {
	n := frag.Normal.Normalize()

	base := s.Albedo
	if s.Texture != nil {
		base = base.Mul(s.Texture.Sample(frag.UV.X, frag.UV.Y))
	}

	c := base.Mul(s.Ambient)
	if d := n.Dot(s.DirectionalDir.Normalize()); d > 0 {
		c = c.Add(base.Mul(s.Directional).Scale(d))
	}

	if light := lights.Light(s.Light); light != nil {
		c = c.Add(base.Mul(light.Color).Scale(s.spot(light, n, frag)))
	}

	return c.Pow(1 / Gamma)
}

// spot returns the spotlight intensity at a fragment, shadow included.
func (s *SpotlightShader) spot(light *SpotLight, n math3d.Vec3, frag VertexAttributes) float64 {
	toLight := light.Position.Sub(frag.World)
	dist := toLight.Len()
	if dist == 0 {
		return 0
	}
	toLight = toLight.Div(dist)
	if toLight.Dot(light.Axis()) <= math.Cos(light.HalfAngle) {
		return 0
	}

	intensity := math.Max(n.Dot(toLight), 0) / dist
	if intensity == 0 || s.Shadow == nil {
		return intensity
	}
	return intensity * s.Shadow.Factor(light, frag.Light)
}
