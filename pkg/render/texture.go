package render

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Texture holds a 2D image for texture mapping. Texture coordinates are
// clamped to the edge; V=0 is the bottom row.
type Texture struct {
	Width    int
	Height   int
	Pixels   []Color // Row-major pixel data, top row first
	Bilinear bool
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// TextureFromImage converts img into a texture whose longer side is at most
// maxDim pixels (0 keeps the original size). Downscaling uses an approximate
// bilinear filter.
func TextureFromImage(img image.Image, maxDim int) *Texture {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return NewTexture(1, 1)
	}
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		if w >= h {
			h = max(1, h*maxDim/w)
			w = maxDim
		} else {
			w = max(1, w*maxDim/h)
			h = maxDim
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}

	tex := NewTexture(w, h)
	for i := range tex.Pixels {
		tex.Pixels[i] = Color{R: dst.Pix[i*4], G: dst.Pix[i*4+1], B: dst.Pix[i*4+2], A: dst.Pix[i*4+3]}
	}
	tex.Bilinear = true
	return tex
}

// Aspect returns width / height.
func (t *Texture) Aspect() float64 {
	return float64(t.Width) / float64(t.Height)
}

// GetPixel returns the texel at (x, y), or transparent black out of bounds.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample samples the texture at UV coordinates in [0,1].
func (t *Texture) Sample(u, v float64) Color {
	u = math.Max(0, math.Min(1, u))
	v = 1 - math.Max(0, math.Min(1, v))
	if t.Bilinear {
		return t.sampleBilinear(u, v)
	}
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.GetPixel(x, y)
}

func (t *Texture) sampleBilinear(u, v float64) Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	clampX := func(x int) int { return max(0, min(t.Width-1, x)) }
	clampY := func(y int) int { return max(0, min(t.Height-1, y)) }
	x1, y1 := clampX(x0+1), clampY(y0+1)
	x0, y0 = clampX(x0), clampY(y0)

	top := LerpColor(t.GetPixel(x0, y0), t.GetPixel(x1, y0), tx)
	bot := LerpColor(t.GetPixel(x0, y1), t.GetPixel(x1, y1), tx)
	return LerpColor(top, bot, ty)
}
