package render

import (
	"math"

	"github.com/taigrr/penumbra/pkg/math3d"
)

// Camera is a perspective camera looking down its local -Z axis.
//
// Near and Far are negative view-space depths with Far < Near. The frustum
// extents describe the near-plane rectangle and may be off-center.
type Camera struct {
	AspectRatio float64 // Width / Height
	Near        float64
	Far         float64

	Left, Right, Top, Bottom float64

	Transform Transform

	// Fixed at construction
	projection math3d.Mat4
}

// NewCameraFOV creates a symmetric camera from a vertical field of view in
// radians.
func NewCameraFOV(fovY, aspect, near, far float64) *Camera {
	top := -near * math.Tan(fovY/2)
	right := top * aspect
	return newCamera(aspect, near, far, -right, right, top, -top)
}

// NewCameraWidth creates a symmetric camera whose near plane is width units
// wide.
func NewCameraWidth(width, aspect, near, far float64) *Camera {
	right := width / 2
	top := right / aspect
	return newCamera(aspect, near, far, -right, right, top, -top)
}

func newCamera(aspect, near, far, left, right, top, bottom float64) *Camera {
	return &Camera{
		AspectRatio: aspect,
		Near:        near,
		Far:         far,
		Left:        left,
		Right:       right,
		Top:         top,
		Bottom:      bottom,
		Transform:   NewTransform(),
		projection:  math3d.Perspective(near, far, left, right, top, bottom),
	}
}

// Projection returns the projection matrix.
func (c *Camera) Projection() math3d.Mat4 {
	return c.projection
}

// View returns the world-to-camera matrix.
func (c *Camera) View() math3d.Mat4 {
	return c.Transform.InverseWorldMatrix()
}

// ViewProjection returns the world-to-clip matrix.
func (c *Camera) ViewProjection() math3d.Mat4 {
	return c.projection.Mul(c.View())
}

// Position returns the camera position in world space.
func (c *Camera) Position() math3d.Vec3 {
	return c.Transform.Position
}

// SetPosition moves the camera without changing its orientation.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Transform.Position = pos
}

// LookAt makes the camera look at a target point.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.Transform.LookAt(target)
}

// Forward returns the viewing direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Transform.Forward()
}

// Linearize converts a stored depth in [0,1] back to view-space z.
func (c *Camera) Linearize(d float64) float64 {
	return LinearizeDepth(d, c.Near, c.Far)
}

// LinearizeDepth inverts the projection's depth mapping: d is the NDC
// depth remapped to [0,1] and the result is the (negative) view-space z.
func LinearizeDepth(d, near, far float64) float64 {
	return 2 * far * near / (far + near - (2*d-1)*(far-near))
}

// WorldToScreen projects a world point into a width x height target.
// Returns (screenX, screenY, depth, visible); depth is in [0,1].
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, width, height int) (x, y, depth float64, visible bool) {
	clip := c.ViewProjection().MulVec4(math3d.Point(worldPos))

	// Behind the eye
	if clip.W >= 0 {
		return 0, 0, 0, false
	}

	ndc := clip.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x, y = toScreen(ndc, width, height)
	return x, y, (ndc.Z + 1) / 2, true
}

// toScreen maps NDC x and y to pixel coordinates with y pointing down.
func toScreen(ndc math3d.Vec3, width, height int) (x, y float64) {
	x = (ndc.X + 1) / 2 * float64(width)
	y = (1 - (ndc.Y+1)/2) * float64(height)
	return x, y
}
