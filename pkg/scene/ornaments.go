package scene

import (
	"math"
	"math/rand/v2"

	"github.com/taigrr/noel/pkg/math3d"
	"github.com/taigrr/noel/pkg/render"
)

// Ornament sizing and hover easing.
const (
	OrnamentRadius = 0.07
	HoverScale     = 2.5
	HoverRate      = 0.2
	RestRate       = 0.1
)

// DefaultPalette is the ornament color cycle.
var DefaultPalette = []render.Color{
	render.Hex(0xff0055),
	render.Hex(0x00ff88),
	render.Hex(0xffcc00),
	render.Hex(0xaa00ff),
	render.Hex(0xffffff),
}

// Ornament is a glowing sphere hung on the cone surface.
type Ornament struct {
	Local math3d.Vec3 // position inside the decorations group
	Color render.Color
	Scale float64
}

func buildOrnaments(rng *rand.Rand, n int, palette []render.Color) []Ornament {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	out := make([]Ornament, n)
	for i := range n {
		t := rng.Float64()
		h := t*5 - 1.2
		r := (4 - h) * 0.45
		angle := rng.Float64() * math.Pi * 2
		out[i] = Ornament{
			Local: math3d.V3(math.Cos(angle)*r, h, math.Sin(angle)*r),
			Color: palette[i%len(palette)],
			Scale: 1,
		}
	}
	return out
}

// decorationsMatrix is the world transform of the decorations group.
func decorationsMatrix(rotation, m float64) math3d.Mat4 {
	return math3d.Translate(math3d.V3(0, DecorationsDrop(m), 0)).Mul(math3d.RotateY(rotation))
}

// pickOrnament returns the index of the nearest ornament hit by ray, or -1.
func pickOrnament(ray math3d.Ray, ornaments []Ornament, group math3d.Mat4) int {
	hit := -1
	best := math.MaxFloat64
	for i, o := range ornaments {
		center := group.MulVec3(o.Local)
		t, ok := ray.IntersectSphere(center, OrnamentRadius*o.Scale)
		if ok && t < best {
			best, hit = t, i
		}
	}
	return hit
}

// easeOrnaments grows the highlighted ornament and relaxes the rest.
func easeOrnaments(ornaments []Ornament, highlighted int, frames float64) {
	grow := math3d.FrameRate(HoverRate, frames)
	rest := math3d.FrameRate(RestRate, frames)
	for i := range ornaments {
		if i == highlighted {
			ornaments[i].Scale = math3d.Approach(ornaments[i].Scale, HoverScale, grow)
		} else {
			ornaments[i].Scale = math3d.Approach(ornaments[i].Scale, 1, rest)
		}
	}
}
