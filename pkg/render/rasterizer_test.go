package render

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/taigrr/penumbra/pkg/math3d"
)

// clipFromScreen builds a clip-space vertex that lands on pixel (sx, sy)
// of a width x height target with the given NDC z and w.
func clipFromScreen(sx, sy, z, w float64, width, height int) math3d.Vec4 {
	nx := 2*sx/float64(width) - 1
	ny := 1 - 2*sy/float64(height)
	return math3d.V4(nx*w, ny*w, z*w, w)
}

func newDepth(n int) []float64 {
	d := make([]float64, n)
	fill(d, math.Inf(1))
	return d
}

func TestRasterizePerspectiveCorrect(t *testing.T) {
	const size = 100
	tri := Triangle[scalar]{
		Pos: [3]math3d.Vec4{
			clipFromScreen(0, 0, 0, -1, size, size),
			clipFromScreen(0, size, 0, -2, size, size),
			clipFromScreen(size, 0, 0, -4, size, size),
		},
		Attr: [3]scalar{0, 1, 2},
	}

	var got scalar
	found := false
	var stats Stats
	rasterize(size, size, newDepth(size*size), tri, &stats, func(idx int, a scalar) {
		if idx == 24*size+24 {
			got = a
			found = true
		}
	})
	if !found {
		t.Fatal("pixel (24,24) not shaded")
	}

	// Screen weights at (24.5, 24.5) are 0.51, 0.245, 0.245
	ka, kb, kc := 0.51/1, 0.245/2, 0.245/4
	want := (kb*1 + kc*2) / (ka + kb + kc)
	if !approx(float64(got), want, 1e-12) {
		t.Errorf("attribute = %v, want %v", got, want)
	}

	// Screen-linear interpolation would give 0.735
	if approx(float64(got), 0.735, 1e-3) {
		t.Error("attribute was interpolated in screen space")
	}
}

func TestRasterizeQuadCoversEveryPixelOnce(t *testing.T) {
	const w, h = 64, 64
	quad := []Triangle[scalar]{
		{Pos: [3]math3d.Vec4{
			clipFromScreen(0, 0, 0, -1, w, h),
			clipFromScreen(0, h, 0, -1, w, h),
			clipFromScreen(w, 0, 0, -1, w, h),
		}},
		{Pos: [3]math3d.Vec4{
			clipFromScreen(w, 0, 0, -1, w, h),
			clipFromScreen(0, h, 0, -1, w, h),
			clipFromScreen(w, h, 0, -1, w, h),
		}},
	}

	hits := make([]int, w*h)
	depth := newDepth(w * h)
	var stats Stats
	for _, tri := range quad {
		rasterize(w, h, depth, tri, &stats, func(idx int, _ scalar) { hits[idx]++ })
	}

	for i, n := range hits {
		if n != 1 {
			t.Fatalf("pixel (%d,%d) shaded %d times", i%w, i/w, n)
		}
	}
	if stats.Rasterized != 2 || stats.BackFacing != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRasterizeDepthTest(t *testing.T) {
	const w, h = 8, 8
	full := func(z float64, a scalar) Triangle[scalar] {
		return Triangle[scalar]{
			Pos: [3]math3d.Vec4{
				clipFromScreen(-w, -h, z, -1, w, h),
				clipFromScreen(-w, 3*h, z, -1, w, h),
				clipFromScreen(3*w, -h, z, -1, w, h),
			},
			Attr: [3]scalar{a, a, a},
		}
	}

	tests := []struct {
		name   string
		first  float64
		second float64
		want   scalar
	}{
		{"nearer wins", 0.5, -0.5, 2},
		{"farther loses", -0.5, 0.5, 1},
		{"equal depth keeps first", 0.25, 0.25, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			color := make([]scalar, w*h)
			depth := newDepth(w * h)
			var stats Stats
			shade := func(idx int, a scalar) { color[idx] = a }

			rasterize(w, h, depth, full(tc.first, 1), &stats, shade)
			rasterize(w, h, depth, full(tc.second, 2), &stats, shade)

			for i, c := range color {
				if c != tc.want {
					t.Fatalf("pixel %d = %v, want %v", i, c, tc.want)
				}
			}
		})
	}
}

func TestRasterizeBackFaceDeterministic(t *testing.T) {
	const w, h = 32, 32
	rng := rand.New(rand.NewSource(42))
	coord := func() float64 { return rng.Float64()*2 - 1 }

	for i := range 200 {
		tri := Triangle[scalar]{Pos: [3]math3d.Vec4{
			math3d.V4(coord(), coord(), 0, -1),
			math3d.V4(coord(), coord(), 0, -1),
			math3d.V4(coord(), coord(), 0, -1),
		}}
		rev := tri
		rev.Pos[1], rev.Pos[2] = tri.Pos[2], tri.Pos[1]

		s0 := toScreenVertex(tri.Pos[0], w, h)
		s1 := toScreenVertex(tri.Pos[1], w, h)
		s2 := toScreenVertex(tri.Pos[2], w, h)
		if math.Abs(math3d.SignedArea(s0.p, s1.p, s2.p)) < 1e-9 {
			continue
		}

		var stats Stats
		rasterize(w, h, newDepth(w*h), tri, &stats, nil)
		rasterize(w, h, newDepth(w*h), rev, &stats, nil)
		if stats.BackFacing != 1 {
			t.Fatalf("triangle %d: %d of the pair culled, want 1", i, stats.BackFacing)
		}
	}
}

func TestRasterizeOffscreenBoundingBox(t *testing.T) {
	const w, h = 16, 16
	tri := Triangle[scalar]{Pos: [3]math3d.Vec4{
		clipFromScreen(100, 100, 0, -1, w, h),
		clipFromScreen(100, 200, 0, -1, w, h),
		clipFromScreen(200, 100, 0, -1, w, h),
	}}

	var stats Stats
	calls := 0
	rasterize(w, h, newDepth(w*h), tri, &stats, func(int, scalar) { calls++ })
	if calls != 0 || stats.Rasterized != 0 {
		t.Errorf("offscreen triangle shaded %d pixels", calls)
	}
}

func TestDrawClippedCountsClippedAway(t *testing.T) {
	tri := Triangle[scalar]{Pos: [3]math3d.Vec4{
		math3d.V4(0, 0, 0, 1),
		math3d.V4(1, 0, 0, 1),
		math3d.V4(0, 1, 0, 1),
	}}

	var stats Stats
	drawClipped(8, 8, newDepth(64), tri, &stats, nil)
	if stats.ClippedAway != 1 {
		t.Errorf("ClippedAway = %d, want 1", stats.ClippedAway)
	}
}

type countingShader struct {
	PixelShader
	calls int
}

func (s *countingShader) Shade(frag VertexAttributes, lights LightSource) math3d.Vec3 {
	s.calls++
	return s.PixelShader.Shade(frag, lights)
}

func cubeScene(shader PixelShader) *Scene {
	camera := NewCameraFOV(math.Pi/3, 4.0/3, -1, -50)
	camera.SetPosition(math3d.V3(0, 0, 5))
	camera.LookAt(math3d.V3(0, 0, 0))

	scene := NewScene(camera)
	scene.Background = math3d.V3(0.2, 0.3, 0.4)
	scene.AddModel(cubeModel(shader))
	return scene
}

func TestRenderCube(t *testing.T) {
	shader := &DiffuseShader{Albedo: math3d.V3(1, 1, 1), LightDir: math3d.V3(0, 0, 1), Ambient: 0.1}
	scene := cubeScene(shader)
	rt := NewRenderTarget(64, 48)
	rt.RenderFrame(scene)

	center := rt.ColorAt(32, 24)
	if !approxVec3(center, math3d.Splat3(1.1), 1e-9) {
		t.Errorf("center = %v, want lit front face", center)
	}

	if got := scene.Camera.Linearize(rt.DepthAt(32, 24)); !approx(got, -4.5, 1e-6) {
		t.Errorf("center depth = %v, want -4.5", got)
	}

	for _, p := range [][2]int{{0, 0}, {63, 0}, {0, 47}, {63, 47}} {
		if c := rt.ColorAt(p[0], p[1]); c != scene.Background {
			t.Errorf("corner %v = %v, want background", p, c)
		}
		if d := rt.DepthAt(p[0], p[1]); !math.IsInf(d, 1) {
			t.Errorf("corner %v depth = %v, want +Inf", p, d)
		}
	}

	// Only the +Z face is turned toward the camera
	want := Stats{Triangles: 12, BackFacing: 10, Rasterized: 2, Fragments: rt.Stats.Fragments}
	if rt.Stats != want {
		t.Errorf("stats = %+v, want %+v", rt.Stats, want)
	}
	if rt.Stats.Fragments == 0 {
		t.Error("no fragments shaded")
	}
}

func TestRenderWithoutClearIsIdempotent(t *testing.T) {
	shader := &countingShader{PixelShader: NormalShader{}}
	scene := cubeScene(shader)
	scene.Models[0].Transform.Yaw = 0.6
	scene.Models[0].Transform.Pitch = 0.3

	rt := NewRenderTarget(64, 48)
	rt.RenderFrame(scene)
	if shader.calls == 0 {
		t.Fatal("first render shaded nothing")
	}
	color := append([]math3d.Vec3(nil), rt.Color...)
	depth := append([]float64(nil), rt.Depth...)

	shader.calls = 0
	rt.Render(scene)
	if shader.calls != 0 {
		t.Errorf("second render shaded %d pixels, want 0", shader.calls)
	}
	for i := range color {
		if rt.Color[i] != color[i] || rt.Depth[i] != depth[i] {
			t.Fatalf("pixel %d changed", i)
		}
	}
}

func TestRenderCullsModelOutsideFrustum(t *testing.T) {
	scene := cubeScene(NormalShader{})
	scene.Models[0].Transform.Position = math3d.V3(100, 0, 0)

	rt := NewRenderTarget(32, 24)
	rt.RenderFrame(scene)
	if rt.Stats.ModelsCulled != 1 || rt.Stats.Triangles != 0 {
		t.Errorf("stats = %+v, want model culled", rt.Stats)
	}
}

func TestRenderSkipsModelsWithoutShader(t *testing.T) {
	scene := cubeScene(nil)
	rt := NewRenderTarget(32, 24)
	rt.RenderFrame(scene)
	for i, c := range rt.Color {
		if c != scene.Background {
			t.Fatalf("pixel %d drawn without a shader", i)
		}
	}
}

func BenchmarkRenderCube(b *testing.B) {
	scene := cubeScene(NormalShader{})
	scene.Models[0].Transform.Yaw = 0.6
	rt := NewRenderTarget(320, 240)
	for b.Loop() {
		rt.RenderFrame(scene)
	}
}
