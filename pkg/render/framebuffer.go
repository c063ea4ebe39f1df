package render

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"github.com/taigrr/penumbra/pkg/math3d"
)

// RenderTarget holds the color and depth buffers of one view. Both are
// row-major with the origin at the top-left.
type RenderTarget struct {
	Width  int
	Height int
	Color  []math3d.Vec3 // Linear RGB, not clamped
	Depth  []float64     // NDC depth in [0,1]; +Inf where nothing was drawn
	Stats  Stats

	// Per-frame scratch reused across models
	shadowVerts []ShadowVertex
	verts       []ShadedVertex
	normals     []math3d.Vec3
}

// NewRenderTarget creates a cleared target.
func NewRenderTarget(width, height int) *RenderTarget {
	rt := &RenderTarget{}
	rt.Resize(width, height)
	return rt
}

// Resize reallocates the buffers and clears them to black.
func (rt *RenderTarget) Resize(width, height int) {
	rt.Width = width
	rt.Height = height
	rt.Color = make([]math3d.Vec3, width*height)
	rt.Depth = make([]float64, width*height)
	rt.Clear(math3d.Vec3{})
}

// Clear fills the color buffer with background and resets depth to +Inf.
func (rt *RenderTarget) Clear(background math3d.Vec3) {
	fill(rt.Color, background)
	fill(rt.Depth, math.Inf(1))
}

func fill[T any](buf []T, v T) {
	if len(buf) == 0 {
		return
	}
	buf[0] = v
	for i := 1; i < len(buf); i *= 2 {
		copy(buf[i:], buf[:i])
	}
}

// ColorAt returns the color at (x, y), or black when out of bounds.
func (rt *RenderTarget) ColorAt(x, y int) math3d.Vec3 {
	if x < 0 || x >= rt.Width || y < 0 || y >= rt.Height {
		return math3d.Vec3{}
	}
	return rt.Color[y*rt.Width+x]
}

// DepthAt returns the depth at (x, y), or +Inf when out of bounds.
func (rt *RenderTarget) DepthAt(x, y int) float64 {
	if x < 0 || x >= rt.Width || y < 0 || y >= rt.Height {
		return math.Inf(1)
	}
	return rt.Depth[y*rt.Width+x]
}

// ColorBufferToBytes packs the color buffer as 8-bit RGBA. Channels are
// scaled by 255 and clamped; alpha is opaque.
func (rt *RenderTarget) ColorBufferToBytes() []byte {
	out := make([]byte, 0, 4*len(rt.Color))
	for _, c := range rt.Color {
		out = append(out, toByte(c.X), toByte(c.Y), toByte(c.Z), 0xff)
	}
	return out
}

// DepthBufferToBytes renders the depth buffer as opaque grey RGBA for
// debugging. See DepthToBytes.
func (rt *RenderTarget) DepthBufferToBytes(near, far float64, linearize bool) []byte {
	return DepthToBytes(rt.Depth, near, far, linearize)
}

// DepthToBytes maps depths in [0,1] to grey levels, near dark and far
// light. With linearize set, depths are first converted back to view
// distance so the ramp is even across [near, far]. Empty texels (+Inf) are
// white.
func DepthToBytes(depth []float64, near, far float64, linearize bool) []byte {
	out := make([]byte, 0, 4*len(depth))
	for _, d := range depth {
		v := 1.0
		if !math.IsInf(d, 1) {
			v = d
			if linearize {
				v = (LinearizeDepth(d, near, far) - near) / (far - near)
			}
		}
		g := toByte(v)
		out = append(out, g, g, g, 0xff)
	}
	return out
}

func toByte(v float64) byte {
	if math.IsNaN(v) {
		return 0
	}
	return byte(math3d.Clamp(v*255, 0, 255))
}

// Image returns the color buffer as an image.
func (rt *RenderTarget) Image() *image.RGBA {
	return rgbaImage(rt.ColorBufferToBytes(), rt.Width, rt.Height)
}

// DepthImage returns the depth buffer as a grey image.
func (rt *RenderTarget) DepthImage(near, far float64, linearize bool) *image.RGBA {
	return rgbaImage(rt.DepthBufferToBytes(near, far, linearize), rt.Width, rt.Height)
}

// ShadowMapImage returns a light's shadow map as a grey image.
func ShadowMapImage(l *SpotLight, linearize bool) *image.RGBA {
	sm := l.ShadowMap
	return rgbaImage(DepthToBytes(sm.Pixels, l.Camera.Near, l.Camera.Far, linearize), sm.Width, sm.Height)
}

func rgbaImage(pix []byte, width, height int) *image.RGBA {
	return &image.RGBA{
		Pix:    pix,
		Stride: 4 * width,
		Rect:   image.Rect(0, 0, width, height),
	}
}

// SavePNG writes an image to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
