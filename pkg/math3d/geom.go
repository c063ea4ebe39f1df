package math3d

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SignedArea returns cross(c-a, b-a)/2. In y-down screen space the area is
// positive when a, b, c wind clockwise on screen.
func SignedArea(a, b, c Vec2) float64 {
	return c.Sub(a).Cross(b.Sub(a)) / 2
}

// Barycentric returns the weights of p with respect to triangle abc, built
// from the signed areas of the sub-triangles opposite each vertex. The
// weights sum to 1 when the triangle has non-zero area; ok is false for a
// degenerate triangle.
func Barycentric(a, b, c, p Vec2) (w Vec3, ok bool) {
	total := SignedArea(a, b, c)
	if total == 0 {
		return Vec3{}, false
	}
	return Vec3{
		SignedArea(b, c, p) / total,
		SignedArea(c, a, p) / total,
		SignedArea(a, b, p) / total,
	}, true
}

// PointInTriangle reports whether p lies inside or on the edge of abc for
// either winding.
func PointInTriangle(a, b, c, p Vec2) bool {
	w, ok := Barycentric(a, b, c, p)
	if !ok {
		return false
	}
	return w.X >= 0 && w.Y >= 0 && w.Z >= 0
}
