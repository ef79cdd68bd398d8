package scene

import (
	"math"
	"math/rand/v2"

	"github.com/taigrr/noel/pkg/math3d"
	"github.com/taigrr/noel/pkg/render"
)

// Particles is a struct-of-slices particle population. Base and Scatter
// are fixed at construction; Pos is rewritten every frame.
type Particles struct {
	Base    []math3d.Vec3
	Scatter []math3d.Vec3
	Pos     []math3d.Vec3
	Color   []render.Color
}

func newParticles(n int) Particles {
	return Particles{
		Base:    make([]math3d.Vec3, 0, n),
		Scatter: make([]math3d.Vec3, 0, n),
		Pos:     make([]math3d.Vec3, 0, n),
		Color:   make([]render.Color, 0, n),
	}
}

func (p *Particles) add(base, scatter math3d.Vec3, c render.Color) {
	p.Base = append(p.Base, base)
	p.Scatter = append(p.Scatter, scatter)
	p.Pos = append(p.Pos, base)
	p.Color = append(p.Color, c)
}

// Len returns the number of particles.
func (p *Particles) Len() int {
	return len(p.Base)
}

// Update sets every position to Base + Scatter*m in place.
func (p *Particles) Update(m float64) {
	for i := range p.Pos {
		p.Pos[i] = p.Base[i].AddScaled(p.Scatter[i], m)
	}
}

// scatterOf pushes a point radially outward to 10..25 units from the origin.
func scatterOf(rng *rand.Rand, base math3d.Vec3) math3d.Vec3 {
	return base.Normalize().Scale(10 + rng.Float64()*15)
}

// buildTree generates the spiral band, the cone fill and the ambient halo,
// in that order.
func buildTree(rng *rand.Rand, spiral, fill, halo int) Particles {
	p := newParticles(spiral + fill + halo)

	for range spiral {
		t := rng.Float64()
		h := t*5.5 - 1.5
		angle := t * math.Pi * 2 * 6
		spread := 0.25 * (1 - t*0.5)
		r := (4-h)*0.45 + (rng.Float64()-0.5)*spread
		base := math3d.V3(math.Cos(angle)*r, h, math.Sin(angle)*r)

		c := render.ColorCyan
		if rng.Float64() > 0.7 {
			c = render.ColorWhite
		}
		p.add(base, scatterOf(rng, base), c)
	}

	for range fill {
		t := rng.Float64()
		h := t*5.2 - 1.5
		angle := rng.Float64() * math.Pi * 2
		r := math.Sqrt(rng.Float64()) * (4 - h) * 0.38
		base := math3d.V3(math.Cos(angle)*r, h, math.Sin(angle)*r)
		c := render.LerpColor(render.ColorBlue, render.ColorCyan, rng.Float64()*0.5)
		p.add(base, scatterOf(rng, base), c)
	}

	for range halo {
		base := math3d.V3(
			(rng.Float64()-0.5)*12,
			(rng.Float64()-0.5)*10+1,
			(rng.Float64()-0.5)*12,
		)
		p.add(base, scatterOf(rng, base), render.ColorWhite)
	}

	return p
}

// FloorY is the height of the glowing floor disk.
const FloorY = -1.8

// buildFloor generates the static floor disk: cyan near the trunk, blue
// further out.
func buildFloor(rng *rand.Rand, n int) ([]math3d.Vec3, []render.Color) {
	pos := make([]math3d.Vec3, n)
	colors := make([]render.Color, n)
	for i := range n {
		angle := rng.Float64() * math.Pi * 2
		dist := math.Sqrt(rng.Float64()) * 20
		pos[i] = math3d.V3(math.Cos(angle)*dist, FloorY, math.Sin(angle)*dist)
		if dist < 6 {
			colors[i] = render.ColorCyan
		} else {
			colors[i] = render.ColorBlue
		}
	}
	return pos, colors
}

// Snow wrap bounds.
const (
	SnowFloor   = -15.0
	SnowCeiling = 15.0
)

// Snow is the falling ambient layer, independent of the morph.
type Snow struct {
	Pos   []math3d.Vec3
	Speed []float64 // units per frame
}

func buildSnow(rng *rand.Rand, n int) Snow {
	s := Snow{Pos: make([]math3d.Vec3, n), Speed: make([]float64, n)}
	for i := range n {
		s.Pos[i] = math3d.V3(
			(rng.Float64()-0.5)*40,
			(rng.Float64()-0.5)*30,
			(rng.Float64()-0.5)*40,
		)
		s.Speed[i] = 0.02 + rng.Float64()*0.06
	}
	return s
}

// Fall moves every flake down by its speed; flakes below SnowFloor restart
// at SnowCeiling.
func (s *Snow) Fall(frames float64) {
	for i := range s.Pos {
		s.Pos[i].Y -= s.Speed[i] * frames
		if s.Pos[i].Y < SnowFloor {
			s.Pos[i].Y = SnowCeiling
		}
	}
}
