package render

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/taigrr/penumbra/pkg/math3d"
)

// pcfOffsets are the texel offsets of the 3x3 filter kernel on each axis.
var pcfOffsets = [3]float64{1.5, -0.5, -1.5}

// PCF samples a shadow map with a small jittered kernel and returns the lit
// fraction.
//
// A sample is lit when the fragment's linear depth plus Bias is at least
// the stored linear depth. Depth values are negative view-space z, so a
// larger value is nearer the light.
type PCF struct {
	Bias   float64 // View-space units
	Jitter float64 // Relative kernel jitter; 0 gives fixed offsets

	rng *rand.Rand
}

// NewPCF creates a filter with a deterministic jitter sequence.
func NewPCF(bias, jitter float64, seed uint64) *PCF {
	return &PCF{
		Bias:   bias,
		Jitter: jitter,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Factor returns the lit fraction in [0,1] for a fragment at light clip
// position lightClip. Fragments outside the light frustum are unlit.
func (p *PCF) Factor(light *SpotLight, lightClip math3d.Vec4) float64 {
	if lightClip.W == 0 {
		return 0
	}
	ndc := lightClip.PerspectiveDivide()
	u, v, d := (ndc.X+1)/2, (ndc.Y+1)/2, (ndc.Z+1)/2
	if u < 0 || u > 1 || v < 0 || v > 1 || d < 0 || d > 1 {
		return 0
	}

	sm := light.ShadowMap
	near, far := light.Camera.Near, light.Camera.Far
	frag := LinearizeDepth(d, near, far)

	cx := u * float64(sm.Width-1)
	cy := (1 - v) * float64(sm.Height-1)

	lit := 0
	for _, oy := range pcfOffsets {
		for _, ox := range pcfOffsets {
			x := int(math.Floor(cx + ox*p.scale()))
			y := int(math.Floor(cy + oy*p.scale()))

			stored := sm.At(x, y)
			if math.IsInf(stored, 1) {
				// Nothing was drawn here
				lit++
				continue
			}
			if frag+p.Bias >= LinearizeDepth(stored, near, far) {
				lit++
			}
		}
	}
	return float64(lit) / float64(len(pcfOffsets)*len(pcfOffsets))
}

func (p *PCF) scale() float64 {
	if p.Jitter == 0 || p.rng == nil {
		return 1
	}
	return 1 + p.Jitter*(p.rng.Float64()-0.5)
}
