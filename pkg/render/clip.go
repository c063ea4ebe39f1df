package render

import "github.com/taigrr/penumbra/pkg/math3d"

// Triangle is a clip-space triangle with one attribute bundle per vertex.
type Triangle[A Interpolable[A]] struct {
	Pos  [3]math3d.Vec4
	Attr [3]A
}

// outsideNear reports whether a clip-space vertex lies in front of the near
// plane (closer to the eye than near, or behind it). Visible points have
// w < 0 and z + w <= 0.
func outsideNear(v math3d.Vec4) bool {
	return v.Z+v.W > 0
}

// nearFraction returns where the edge from a (outside) to b (inside)
// crosses z + w = 0.
func nearFraction(a, b math3d.Vec4) float64 {
	da := a.W + a.Z
	db := b.W + b.Z
	return da / (da - db)
}

// intersectNear returns the vertex where edge (from, to) meets the near
// plane, with attributes interpolated at the same fraction.
func intersectNear[A Interpolable[A]](tri Triangle[A], from, to int) (math3d.Vec4, A) {
	t := nearFraction(tri.Pos[from], tri.Pos[to])
	p := tri.Pos[from].Lerp(tri.Pos[to], t)
	// Snap onto the plane so rounding never leaves it outside
	p.Z = -p.W
	return p, tri.Attr[from].Lerp(tri.Attr[to], t)
}

// ClipNear clips a triangle against the near plane and returns zero, one or
// two triangles. A triangle entirely on the visible side is returned
// unchanged and one entirely on the eye side is dropped. New vertices lie
// on z + w = 0 and output triangles keep the input winding.
func ClipNear[A Interpolable[A]](tri Triangle[A]) []Triangle[A] {
	var outside [3]bool
	count := 0
	for i, v := range tri.Pos {
		if outsideNear(v) {
			outside[i] = true
			count++
		}
	}

	switch count {
	case 0:
		return []Triangle[A]{tri}
	case 3:
		return nil
	case 1:
		c := 0
		for i := range outside {
			if outside[i] {
				c = i
			}
		}
		next, prev := (c+1)%3, (c+2)%3

		// The clipped polygon is (pNext, next, prev, pPrev).
		pNext, aNext := intersectNear(tri, c, next)
		pPrev, aPrev := intersectNear(tri, c, prev)
		return []Triangle[A]{
			{
				Pos:  [3]math3d.Vec4{pNext, tri.Pos[next], tri.Pos[prev]},
				Attr: [3]A{aNext, tri.Attr[next], tri.Attr[prev]},
			},
			{
				Pos:  [3]math3d.Vec4{pNext, tri.Pos[prev], pPrev},
				Attr: [3]A{aNext, tri.Attr[prev], aPrev},
			},
		}
	default:
		k := 0
		for i := range outside {
			if !outside[i] {
				k = i
			}
		}
		next, prev := (k+1)%3, (k+2)%3

		pNext, aNext := intersectNear(tri, next, k)
		pPrev, aPrev := intersectNear(tri, prev, k)
		return []Triangle[A]{{
			Pos:  [3]math3d.Vec4{tri.Pos[k], pNext, pPrev},
			Attr: [3]A{tri.Attr[k], aNext, aPrev},
		}}
	}
}
