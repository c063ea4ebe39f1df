// Package render implements a CPU triangle rasterizer: homogeneous vertex
// transforms, near-plane clipping, perspective-correct barycentric
// interpolation with a depth buffer, and a spotlight shadow-map pass
// sampled with percentage-closer filtering.
package render

import (
	"math"

	"github.com/taigrr/penumbra/pkg/math3d"
)

// Stats counts what happened to geometry during the last Render call.
type Stats struct {
	ModelsCulled int // Models skipped because their bounds are off-frustum
	Triangles    int // Triangles submitted
	Rejected     int // Triangles dropped by the culling mask
	ClippedAway  int // Triangles entirely in front of the near plane
	BackFacing   int // Triangles with non-positive screen area
	Rasterized   int // Triangles that reached the pixel loop
	Fragments    int // Pixels shaded in the color pass
}

// screenVertex is a clip-space vertex after the perspective divide and
// viewport mapping.
type screenVertex struct {
	p    math3d.Vec2 // Pixel coordinates, y down
	z    float64     // NDC depth remapped to [0,1]
	invW float64     // 1/w for perspective-correct interpolation
}

func toScreenVertex(v math3d.Vec4, width, height int) screenVertex {
	ndc := v.PerspectiveDivide()
	x, y := toScreen(ndc, width, height)
	return screenVertex{
		p:    math3d.V2(x, y),
		z:    (ndc.Z + 1) / 2,
		invW: 1 / v.W,
	}
}

// drawClipped clips a triangle against the near plane and rasterizes the
// pieces. shade may be nil for depth-only passes.
func drawClipped[A Interpolable[A]](width, height int, depth []float64, tri Triangle[A], stats *Stats, shade func(idx int, attr A)) {
	pieces := ClipNear(tri)
	if len(pieces) == 0 {
		stats.ClippedAway++
		return
	}
	for _, piece := range pieces {
		rasterize(width, height, depth, piece, stats, shade)
	}
}

// rasterize fills a clipped triangle into a width x height depth buffer.
// A pixel is written only when its depth is strictly smaller than the
// stored value; shade is then called with the perspective-correct
// attributes.
func rasterize[A Interpolable[A]](width, height int, depth []float64, tri Triangle[A], stats *Stats, shade func(idx int, attr A)) {
	s0 := toScreenVertex(tri.Pos[0], width, height)
	s1 := toScreenVertex(tri.Pos[1], width, height)
	s2 := toScreenVertex(tri.Pos[2], width, height)

	// Back faces and degenerate triangles
	if area := math3d.SignedArea(s0.p, s1.p, s2.p); !(area > 0) {
		stats.BackFacing++
		return
	}

	// Bounding box, clamped before the int conversion
	minX := int(math.Max(0, math.Floor(min3(s0.p.X, s1.p.X, s2.p.X))))
	maxX := int(math.Min(float64(width-1), math.Ceil(max3(s0.p.X, s1.p.X, s2.p.X))))
	minY := int(math.Max(0, math.Floor(min3(s0.p.Y, s1.p.Y, s2.p.Y))))
	maxY := int(math.Min(float64(height-1), math.Ceil(max3(s0.p.Y, s1.p.Y, s2.p.Y))))
	if minX > maxX || minY > maxY {
		return
	}
	stats.Rasterized++

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := math3d.V2(float64(x)+0.5, float64(y)+0.5)

			areaABP := math3d.SignedArea(s0.p, s1.p, p)
			areaBCP := math3d.SignedArea(s1.p, s2.p, p)
			areaCAP := math3d.SignedArea(s2.p, s0.p, p)
			if areaABP < 0 || areaBCP < 0 || areaCAP < 0 {
				continue
			}
			total := areaABP + areaBCP + areaCAP
			if total <= 0 {
				continue
			}
			wa, wb, wc := areaBCP/total, areaCAP/total, areaABP/total

			z := wa*s0.z + wb*s1.z + wc*s2.z
			idx := y*width + x
			if !(z < depth[idx]) {
				continue
			}
			depth[idx] = z

			if shade == nil {
				continue
			}
			ka, kb, kc := wa*s0.invW, wb*s1.invW, wc*s2.invW
			w := 1 / (ka + kb + kc)
			attr := tri.Attr[0].Scale(ka).
				Add(tri.Attr[1].Scale(kb)).
				Add(tri.Attr[2].Scale(kc)).
				Scale(w)
			shade(idx, attr)
		}
	}
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

// Render draws the scene in two passes. Every light's shadow map is
// cleared and filled first; the color pass then reads them. The color and
// depth buffers are not cleared here; call Clear first.
//
// Models without a shader cast shadows but are not drawn.
func (rt *RenderTarget) Render(scene *Scene) {
	rt.Stats = Stats{}

	for _, light := range scene.Lights() {
		light.ClearShadowMap()
		lightVP := light.Camera.ViewProjection()
		for _, m := range scene.Models {
			rt.shadowPass(light, lightVP, m)
		}
	}

	cameraVP := scene.Camera.ViewProjection()
	for _, m := range scene.Models {
		if m.Shader == nil {
			continue
		}
		rt.colorPass(scene, cameraVP, m)
	}
}

// RenderFrame clears to the scene background and renders.
func (rt *RenderTarget) RenderFrame(scene *Scene) {
	rt.Clear(scene.Background)
	rt.Render(scene)
}

func (rt *RenderTarget) shadowPass(light *SpotLight, lightVP math3d.Mat4, m *Model) {
	vs := ShadowPassShader{ModelToWorld: m.Transform.WorldMatrix(), WorldToLight: lightVP}
	if m.Bounds().OutsideClip(lightVP.Mul(vs.ModelToWorld)) {
		rt.Stats.ModelsCulled++
		return
	}
	rt.shadowVerts = vs.Shade(rt.shadowVerts, m.Vertices)

	sm := light.ShadowMap
	for t := range m.TriangleCount() {
		v0 := rt.shadowVerts[m.VertexIndices[3*t]]
		v1 := rt.shadowVerts[m.VertexIndices[3*t+1]]
		v2 := rt.shadowVerts[m.VertexIndices[3*t+2]]

		rt.Stats.Triangles++
		if Rejected(v0.Mask, v1.Mask, v2.Mask) {
			rt.Stats.Rejected++
			continue
		}

		tri := Triangle[NoAttributes]{Pos: [3]math3d.Vec4{v0.Clip, v1.Clip, v2.Clip}}
		drawClipped(sm.Width, sm.Height, sm.Pixels, tri, &rt.Stats, nil)
	}
}

func (rt *RenderTarget) colorPass(scene *Scene, cameraVP math3d.Mat4, m *Model) {
	lightVP := math3d.Identity()
	if r, ok := m.Shader.(ShadowReceiver); ok {
		if l := scene.Light(r.ShadowLight()); l != nil {
			lightVP = l.Camera.ViewProjection()
		}
	}

	vs := NewRenderPassShader(m.Transform, cameraVP, lightVP)
	if m.Bounds().OutsideClip(cameraVP.Mul(vs.ModelToWorld)) {
		rt.Stats.ModelsCulled++
		return
	}
	rt.verts = vs.Shade(rt.verts, m.Vertices)
	rt.normals = vs.ShadeNormals(rt.normals, m.Normals)

	shade := func(idx int, frag VertexAttributes) {
		rt.Color[idx] = m.Shader.Shade(frag, scene)
		rt.Stats.Fragments++
	}

	for t := range m.TriangleCount() {
		var tri Triangle[VertexAttributes]
		var masks [3]uint8
		for k := range 3 {
			v := rt.verts[m.VertexIndices[3*t+k]]
			tri.Pos[k] = v.Clip
			tri.Attr[k] = VertexAttributes{
				World:  v.World,
				Light:  v.Light,
				UV:     m.uv(t, k),
				Normal: rt.normal(m, t, k),
			}
			masks[k] = v.Mask
		}

		rt.Stats.Triangles++
		if Rejected(masks[0], masks[1], masks[2]) {
			rt.Stats.Rejected++
			continue
		}
		drawClipped(rt.Width, rt.Height, rt.Depth, tri, &rt.Stats, shade)
	}
}

// normal returns the world normal of corner k of triangle t.
func (rt *RenderTarget) normal(m *Model, t, k int) math3d.Vec3 {
	if len(m.NormalIndices) == 0 {
		return math3d.Vec3{}
	}
	return rt.normals[m.NormalIndices[3*t+k]]
}
