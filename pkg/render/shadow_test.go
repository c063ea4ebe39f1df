package render

import (
	"math"
	"testing"

	"github.com/taigrr/penumbra/pkg/math3d"
)

// probeLight sits at the origin looking down -z.
func probeLight() *SpotLight {
	return NewSpotLight(
		math3d.V3(1, 1, 1),
		math3d.V3(0, 0, 0),
		math3d.V3(0, 0, -1),
		math.Pi/6,
		SpotLightOptions{ShadowSize: 16, Near: -0.5, Far: -20},
	)
}

func lightClip(l *SpotLight, p math3d.Vec3) math3d.Vec4 {
	return l.Camera.ViewProjection().MulVec4(math3d.Point(p))
}

func storedDepth(l *SpotLight, p math3d.Vec3) float64 {
	c := lightClip(l, p)
	return (c.Z/c.W + 1) / 2
}

func TestPCFFactor(t *testing.T) {
	light := probeLight()
	occluder := storedDepth(light, math3d.V3(0, 0, -5))

	tests := []struct {
		name  string
		clear bool
		p     math3d.Vec3
		want  float64
	}{
		{"behind occluder", false, math3d.V3(0, 0, -8), 0},
		{"in front of occluder", false, math3d.V3(0, 0, -3), 1},
		{"empty map", true, math3d.V3(0, 0, -8), 1},
		{"outside frustum", false, math3d.V3(10, 0, -3), 0},
		{"beyond far plane", true, math3d.V3(0, 0, -30), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.clear {
				light.ClearShadowMap()
			} else {
				light.ShadowMap.Fill(occluder)
			}
			pcf := NewPCF(0.05, 0, 1)
			if got := pcf.Factor(light, lightClip(light, tc.p)); got != tc.want {
				t.Errorf("Factor = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPCFPartialShadow(t *testing.T) {
	light := probeLight()
	light.ClearShadowMap()
	occluder := storedDepth(light, math3d.V3(0, 0, -5))

	// Occlude the left half of the map
	sm := light.ShadowMap
	for y := range sm.Height {
		for x := range sm.Width / 2 {
			sm.Set(x, y, occluder)
		}
	}

	got := NewPCF(0.05, 0, 1).Factor(light, lightClip(light, math3d.V3(0, 0, -8)))
	if got <= 0 || got >= 1 {
		t.Errorf("Factor on the shadow edge = %v, want a fraction", got)
	}
	if n := got * 9; !approx(n, math.Round(n), 1e-12) {
		t.Errorf("Factor = %v is not a multiple of 1/9", got)
	}
}

func TestPCFJitterIsSeeded(t *testing.T) {
	light := probeLight()
	light.ClearShadowMap()
	occluder := storedDepth(light, math3d.V3(0, 0, -5))
	sm := light.ShadowMap
	for y := range sm.Height {
		for x := range sm.Width / 2 {
			sm.Set(x, y, occluder)
		}
	}

	sample := func(seed uint64) []float64 {
		pcf := NewPCF(0.05, 0.8, seed)
		var out []float64
		for i := range 32 {
			x := -0.2 + 0.4*float64(i)/31
			out = append(out, pcf.Factor(light, lightClip(light, math3d.V3(x, 0, -8))))
		}
		return out
	}

	a, b := sample(7), sample(7)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d: %v != %v with the same seed", i, a[i], b[i])
		}
		if a[i] < 0 || a[i] > 1 {
			t.Fatalf("sample %d = %v out of range", i, a[i])
		}
	}
}

// shadowScene places a cube above a plane, lit by a spotlight from the
// upper left so the cube's shadow falls toward +X.
func shadowScene(shadow *PCF) (*Scene, *RenderTarget) {
	camera := NewCameraFOV(math.Pi/3, 4.0/3, -0.5, -50)
	camera.SetPosition(math3d.V3(0, 6, 8))
	camera.LookAt(math3d.V3(0, 0, 0))

	scene := NewScene(camera)
	id := scene.AddLight(NewSpotLight(
		math3d.V3(1, 1, 1),
		math3d.V3(-4, 8, 0),
		math3d.V3(0, 0, 0),
		35*math.Pi/180,
		DefaultSpotLightOptions(),
	))

	shader := &SpotlightShader{
		Albedo:  math3d.V3(1, 1, 1),
		Ambient: math3d.Splat3(0.05),
		Light:   id,
		Shadow:  shadow,
	}

	scene.AddModel(planeModel(4, shader))
	cube := cubeModel(shader)
	cube.Transform.Position = math3d.V3(0, 2, 0)
	scene.AddModel(cube)

	return scene, NewRenderTarget(160, 120)
}

func pixelAt(t *testing.T, scene *Scene, rt *RenderTarget, p math3d.Vec3) math3d.Vec3 {
	t.Helper()
	x, y, _, ok := scene.Camera.WorldToScreen(p, rt.Width, rt.Height)
	if !ok {
		t.Fatalf("%v is not visible", p)
	}
	return rt.ColorAt(int(x), int(y))
}

func TestRenderCastsShadow(t *testing.T) {
	scene, rt := shadowScene(NewPCF(0.05, 0, 1))
	rt.RenderFrame(scene)

	lit := pixelAt(t, scene, rt, math3d.V3(-1.5, 0, 0))
	shadowed := pixelAt(t, scene, rt, math3d.V3(1.4, 0, 0))

	if shadowed.X >= lit.X {
		t.Errorf("shadowed %v is not darker than lit %v", shadowed, lit)
	}

	// Only the ambient term survives inside the umbra
	ambient := math.Pow(0.05, 1/Gamma)
	if !approxVec3(shadowed, math3d.Splat3(ambient), 1e-9) {
		t.Errorf("shadowed = %v, want ambient %v", shadowed, ambient)
	}

	if light := scene.Light(0); light.ShadowMap.At(256, 256) == math.Inf(1) {
		t.Error("shadow map was not filled")
	}
}

func TestRenderWithoutShadowFilter(t *testing.T) {
	scene, rt := shadowScene(nil)
	rt.RenderFrame(scene)

	p := pixelAt(t, scene, rt, math3d.V3(1.4, 0, 0))
	ambient := math.Pow(0.05, 1/Gamma)
	if p.X <= ambient+1e-3 {
		t.Errorf("unshadowed pixel = %v, want spotlight contribution", p)
	}
}
