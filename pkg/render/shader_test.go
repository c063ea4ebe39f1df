package render

import (
	"math"
	"testing"

	"github.com/taigrr/penumbra/pkg/math3d"
)

type lightTable []*SpotLight

func (t lightTable) Light(id LightID) *SpotLight {
	if id < 0 || int(id) >= len(t) {
		return nil
	}
	return t[id]
}

func TestDiffuseShader(t *testing.T) {
	s := &DiffuseShader{Albedo: math3d.V3(1, 0.5, 0), LightDir: math3d.V3(0, 2, 0), Ambient: 0.2}

	tests := []struct {
		name   string
		normal math3d.Vec3
		want   float64
	}{
		{"facing", math3d.V3(0, 1, 0), 1.2},
		{"grazing", math3d.V3(1, 0, 0), 0.2},
		{"away", math3d.V3(0, -1, 0), 0.2},
		{"unnormalized", math3d.V3(0, 3, 0), 1.2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Shade(VertexAttributes{Normal: tc.normal}, nil)
			if !approxVec3(got, s.Albedo.Scale(tc.want), tolerance) {
				t.Errorf("Shade = %v, want %v", got, s.Albedo.Scale(tc.want))
			}
		})
	}
}

func TestTextureShader(t *testing.T) {
	tex := NewCheckerTexture(2, 2, 1, math3d.V3(1, 0, 0), math3d.V3(0, 0, 1))
	s := &TextureShader{Texture: tex}
	if got := s.Shade(VertexAttributes{UV: math3d.V2(0, 1)}, nil); got != math3d.V3(1, 0, 0) {
		t.Errorf("top left = %v", got)
	}
	if got := s.Shade(VertexAttributes{UV: math3d.V2(1, 1)}, nil); got != math3d.V3(0, 0, 1) {
		t.Errorf("top right = %v", got)
	}
}

func TestNormalShader(t *testing.T) {
	got := NormalShader{}.Shade(VertexAttributes{Normal: math3d.V3(0, 0, -2)}, nil)
	if !approxVec3(got, math3d.V3(0.5, 0.5, 0), tolerance) {
		t.Errorf("Shade = %v", got)
	}
}

func TestSpotlightShader(t *testing.T) {
	light := NewSpotLight(math3d.V3(1, 1, 1), math3d.V3(0, 4, 0), math3d.V3(0, 0, 0),
		math.Pi/6, DefaultSpotLightOptions())
	lights := lightTable{light}
	up := math3d.V3(0, 1, 0)

	base := SpotlightShader{
		Albedo:  math3d.V3(1, 1, 1),
		Ambient: math3d.Splat3(0.1),
		Light:   0,
	}

	tests := []struct {
		name   string
		shader SpotlightShader
		frag   VertexAttributes
		want   float64 // Linear intensity before gamma
	}{
		{
			name:   "on axis",
			shader: base,
			frag:   VertexAttributes{World: math3d.V3(0, 0, 0), Normal: up},
			want:   0.1 + 1.0/4,
		},
		{
			name:   "outside cone",
			shader: base,
			frag:   VertexAttributes{World: math3d.V3(4, 0, 0), Normal: up},
			want:   0.1,
		},
		{
			name:   "facing away",
			shader: base,
			frag:   VertexAttributes{World: math3d.V3(0, 0, 0), Normal: up.Negate()},
			want:   0.1,
		},
		{
			name: "unknown light",
			shader: func() SpotlightShader {
				s := base
				s.Light = 3
				return s
			}(),
			frag: VertexAttributes{World: math3d.V3(0, 0, 0), Normal: up},
			want: 0.1,
		},
		{
			name: "directional",
			shader: func() SpotlightShader {
				s := base
				s.Light = NoLight
				s.Directional = math3d.Splat3(0.5)
				s.DirectionalDir = math3d.V3(0, 1, 1)
				return s
			}(),
			frag: VertexAttributes{Normal: up},
			want: 0.1 + 0.5*math.Sqrt(0.5),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.shader.Shade(tc.frag, lights)
			want := math.Pow(tc.want, 1/Gamma)
			if !approxVec3(got, math3d.Splat3(want), 1e-12) {
				t.Errorf("Shade = %v, want %v", got, want)
			}
		})
	}
}

func TestSpotlightShaderNotClamped(t *testing.T) {
	s := &SpotlightShader{Albedo: math3d.V3(1, 1, 1), Ambient: math3d.Splat3(4), Light: NoLight}
	got := s.Shade(VertexAttributes{Normal: math3d.V3(0, 1, 0)}, lightTable{})
	if got.X <= 1 {
		t.Errorf("Shade = %v, want values above 1", got)
	}
}

func TestSpotlightShaderTexture(t *testing.T) {
	tex := NewTexture[math3d.Vec3](1, 1)
	tex.Fill(math3d.V3(1, 0, 0.25))
	s := &SpotlightShader{Albedo: math3d.V3(1, 1, 1), Texture: tex, Ambient: math3d.Splat3(1), Light: NoLight}

	got := s.Shade(VertexAttributes{}, lightTable{})
	want := math3d.V3(1, 0, math.Pow(0.25, 1/Gamma))
	if !approxVec3(got, want, 1e-12) {
		t.Errorf("Shade = %v, want %v", got, want)
	}
}

func TestSpotLight(t *testing.T) {
	l := NewSpotLight(math3d.V3(1, 1, 1), math3d.V3(0, 10, 0), math3d.V3(0, 0, 0),
		math.Pi/4, SpotLightOptions{ShadowSize: 32, Near: -0.1, Far: -40})

	if !approxVec3(l.Axis(), math3d.V3(0, 1, 0), tolerance) {
		t.Errorf("Axis = %v", l.Axis())
	}
	if !approxVec3(l.Camera.Forward(), math3d.V3(0, -1, 0), 1e-9) {
		t.Errorf("camera forward = %v", l.Camera.Forward())
	}
	if l.ShadowMap.Width != 32 || l.ShadowMap.Height != 32 {
		t.Errorf("shadow map %dx%d", l.ShadowMap.Width, l.ShadowMap.Height)
	}
	if !math.IsInf(l.ShadowMap.At(5, 5), 1) {
		t.Error("shadow map not cleared")
	}

	// The shadow camera spans the cone
	if !approx(l.Camera.Top/-l.Camera.Near, math.Tan(math.Pi/4), 1e-12) {
		t.Errorf("top/near = %v", l.Camera.Top/-l.Camera.Near)
	}

	if !l.InCone(math3d.V3(1, 0, 0)) {
		t.Error("point near the axis outside the cone")
	}
	if l.InCone(math3d.V3(20, 0, 0)) {
		t.Error("point far off axis inside the cone")
	}
}

func TestSpotLightClampsHalfAngle(t *testing.T) {
	l := NewSpotLight(math3d.V3(1, 1, 1), math3d.V3(0, 1, 0), math3d.V3(0, 0, 0), math.Pi, SpotLightOptions{})
	if l.HalfAngle >= math.Pi/2 {
		t.Errorf("HalfAngle = %v, want below 90 degrees", l.HalfAngle)
	}
	if l.ShadowMap.Width != DefaultSpotLightOptions().ShadowSize {
		t.Errorf("shadow size = %d", l.ShadowMap.Width)
	}
}
