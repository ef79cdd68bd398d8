package render

import (
	"math"

	"github.com/taigrr/noel/pkg/math3d"
)

// PointStyle controls how a batch of points is splatted.
type PointStyle struct {
	Size     float64 // world-space diameter
	Opacity  float64
	Additive bool // add light instead of blending over
}

// minCoverage keeps sub-pixel particles visible on coarse terminal grids.
const minCoverage = 0.3

// DrawPoints projects every point through model and the camera and splats it
// into the framebuffer. Points are depth tested but never write depth, so
// overlapping particles accumulate. colors may be nil, in which case tint is
// used for every point. It returns the number of points drawn.
func (r *Rasterizer) DrawPoints(points []math3d.Vec3, colors []Color, tint Color, model math3d.Mat4, style PointStyle) int {
	if style.Opacity <= 0 || len(points) == 0 {
		return 0
	}
	mvp := r.camera.ViewProjectionMatrix().Mul(model)
	focal := r.camera.FocalScale()
	w, h := float64(r.fb.Width), float64(r.fb.Height)
	drawn := 0

	for i, p := range points {
		clip := mvp.MulVec4(math3d.V4FromV3(p, 1))
		if clip.W <= r.camera.Near {
			continue
		}
		inv := 1 / clip.W
		sx := (clip.X*inv + 1) * 0.5 * w
		sy := (1 - clip.Y*inv) * 0.5 * h
		z := clip.Z * inv
		radius := style.Size * 0.5 * focal * inv
		if sx+radius < 0 || sx-radius >= w || sy+radius < 0 || sy-radius >= h || z > 1 {
			continue
		}

		c := tint
		if colors != nil {
			c = colors[i]
		}

		if radius < 0.75 {
			x, y := int(sx), int(sy)
			if z >= r.depthAt(x, y) {
				continue
			}
			coverage := math.Max(minCoverage, math.Min(1, math.Pi*radius*radius))
			r.plot(x, y, c, style.Opacity*coverage, style.Additive)
			drawn++
			continue
		}

		rr := radius * radius
		for y := int(sy - radius); y <= int(sy+radius); y++ {
			dy := float64(y) + 0.5 - sy
			for x := int(sx - radius); x <= int(sx+radius); x++ {
				dx := float64(x) + 0.5 - sx
				if dx*dx+dy*dy > rr || z >= r.depthAt(x, y) {
					continue
				}
				r.plot(x, y, c, style.Opacity, style.Additive)
			}
		}
		drawn++
	}
	return drawn
}

func (r *Rasterizer) plot(x, y int, c Color, alpha float64, additive bool) {
	if additive {
		r.fb.AddPixel(x, y, c, alpha)
		return
	}
	r.fb.BlendPixel(x, y, c, alpha)
}

// DrawGlow splats a soft radial glow centered on a world point, fading
// linearly to the edge. Used for point lights such as the tree star.
func (r *Rasterizer) DrawGlow(center math3d.Vec3, radius float64, c Color, intensity float64) {
	if intensity <= 0 {
		return
	}
	sx, sy, _, w, ok := r.camera.WorldToScreen(center)
	if !ok {
		return
	}
	pr := radius * r.camera.FocalScale() / w
	if pr < 1 {
		pr = 1
	}
	for y := int(sy - pr); y <= int(sy+pr); y++ {
		dy := float64(y) + 0.5 - sy
		for x := int(sx - pr); x <= int(sx+pr); x++ {
			dx := float64(x) + 0.5 - sx
			d := math.Sqrt(dx*dx+dy*dy) / pr
			if d >= 1 {
				continue
			}
			r.fb.AddPixel(x, y, c, intensity*(1-d)*(1-d))
		}
	}
}
