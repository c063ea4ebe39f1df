package render

import (
	"math"

	"github.com/taigrr/penumbra/pkg/math3d"
)

// LightID indexes the light table owned by a Scene.
type LightID int

// NoLight is a LightID that never resolves.
const NoLight LightID = -1

// maxHalfAngle keeps the shadow camera's field of view below 180 degrees.
const maxHalfAngle = 89 * math.Pi / 180

// SpotLightOptions tunes the shadow camera of a SpotLight.
type SpotLightOptions struct {
	ShadowSize int     // Shadow map width and height in texels
	Near       float64 // Negative near plane depth
	Far        float64 // Negative far plane depth
}

// DefaultSpotLightOptions returns a 512x512 shadow map over [-0.01, -100].
func DefaultSpotLightOptions() SpotLightOptions {
	return SpotLightOptions{
		ShadowSize: 512,
		Near:       -0.01,
		Far:        -100,
	}
}

// SpotLight is a cone light that casts shadows through its own camera and
// depth-only shadow map.
type SpotLight struct {
	Color     math3d.Vec3
	Position  math3d.Vec3
	Target    math3d.Vec3
	HalfAngle float64 // Cone half-angle in radians

	Camera    *Camera
	ShadowMap *Texture[float64]
}

// NewSpotLight creates a spotlight whose shadow camera covers the cone.
func NewSpotLight(color, position, target math3d.Vec3, halfAngle float64, opts SpotLightOptions) *SpotLight {
	def := DefaultSpotLightOptions()
	if opts.ShadowSize <= 0 {
		opts.ShadowSize = def.ShadowSize
	}
	if opts.Near >= 0 {
		opts.Near = def.Near
	}
	if opts.Far >= opts.Near {
		opts.Far = def.Far
	}
	halfAngle = math3d.Clamp(halfAngle, 0.01, maxHalfAngle)

	l := &SpotLight{
		Color:     color,
		HalfAngle: halfAngle,
		Camera:    NewCameraFOV(2*halfAngle, 1, opts.Near, opts.Far),
		ShadowMap: NewTexture[float64](opts.ShadowSize, opts.ShadowSize),
	}
	l.Aim(position, target)
	l.ClearShadowMap()
	return l
}

// Aim moves the light and points its shadow camera at target.
func (l *SpotLight) Aim(position, target math3d.Vec3) {
	l.Position = position
	l.Target = target
	l.Camera.SetPosition(position)
	l.Camera.LookAt(target)
}

// Axis returns the unit vector from the target back to the light.
func (l *SpotLight) Axis() math3d.Vec3 {
	return l.Position.Sub(l.Target).Normalize()
}

// InCone reports whether the direction from p to the light lies strictly
// inside the cone.
func (l *SpotLight) InCone(p math3d.Vec3) bool {
	toLight := l.Position.Sub(p).Normalize()
	return toLight.Dot(l.Axis()) > math.Cos(l.HalfAngle)
}

// ClearShadowMap resets every shadow texel to +Inf.
func (l *SpotLight) ClearShadowMap() {
	l.ShadowMap.Fill(math.Inf(1))
}
