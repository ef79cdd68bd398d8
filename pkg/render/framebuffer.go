// Package render is a small software renderer: a pixel framebuffer with a
// depth buffer, additive point splatting, textured and lit triangles, and
// conversion of the result to half-block terminal cells.
package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// Framebuffer is a 2D array of pixels. On a terminal each cell shows two
// vertically stacked pixels, so Height is twice the number of rows.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []Color // Row-major pixel data
}

// NewFramebuffer creates a new framebuffer with the given dimensions,
// clamped to at least 1x1.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize reallocates the pixel buffer when the size changes.
func (fb *Framebuffer) Resize(width, height int) {
	width, height = max(1, width), max(1, height)
	if width == fb.Width && height == fb.Height {
		return
	}
	fb.Width, fb.Height = width, height
	fb.Pixels = make([]Color, width*height)
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c Color) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel sets a pixel at (x, y). Out of bounds writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y), or transparent black out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return Color{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// BlendPixel alpha-blends c over the pixel at (x, y).
func (fb *Framebuffer) BlendPixel(x, y int, c Color, alpha float64) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height || alpha <= 0 {
		return
	}
	if alpha >= 1 {
		fb.Pixels[y*fb.Width+x] = c
		return
	}
	dst := &fb.Pixels[y*fb.Width+x]
	dst.R = uint8(float64(dst.R) + (float64(c.R)-float64(dst.R))*alpha)
	dst.G = uint8(float64(dst.G) + (float64(c.G)-float64(dst.G))*alpha)
	dst.B = uint8(float64(dst.B) + (float64(c.B)-float64(dst.B))*alpha)
	dst.A = 255
}

// AddPixel adds c scaled by alpha to the pixel at (x, y), saturating at
// white. This is the blend used for glowing particles.
func (fb *Framebuffer) AddPixel(x, y int, c Color, alpha float64) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height || alpha <= 0 {
		return
	}
	dst := &fb.Pixels[y*fb.Width+x]
	dst.R = addChannel(dst.R, c.R, alpha)
	dst.G = addChannel(dst.G, c.G, alpha)
	dst.B = addChannel(dst.B, c.B, alpha)
	dst.A = 255
}

func addChannel(dst, src uint8, alpha float64) uint8 {
	v := float64(dst) + float64(src)*alpha
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// Dim scales every pixel by f, used to darken the scene behind an overlay.
func (fb *Framebuffer) Dim(f float64) {
	for i := range fb.Pixels {
		fb.Pixels[i] = MultiplyColor(fb.Pixels[i], f)
	}
}

// DrawRect draws a filled rectangle.
func (fb *Framebuffer) DrawRect(x, y, w, h int, c Color) {
	for py := max(0, y); py < min(fb.Height, y+h); py++ {
		for px := max(0, x); px < min(fb.Width, x+w); px++ {
			fb.Pixels[py*fb.Width+px] = c
		}
	}
}

// DrawTexture blits tex stretched over the screen rectangle at (x, y) of
// size w×h, blending by opacity.
func (fb *Framebuffer) DrawTexture(tex *Texture, x, y, w, h, opacity float64) {
	if tex == nil || w <= 0 || h <= 0 || opacity <= 0 {
		return
	}
	x0, y0 := max(0, int(x)), max(0, int(y))
	x1, y1 := min(fb.Width, int(x+w+0.5)), min(fb.Height, int(y+h+0.5))
	for py := y0; py < y1; py++ {
		v := 1 - (float64(py)+0.5-y)/h
		for px := x0; px < x1; px++ {
			u := (float64(px) + 0.5 - x) / w
			fb.BlendPixel(px, py, tex.Sample(u, v), opacity)
		}
	}
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	fb.AppendRGBA(img.Pix[:0])
	return img
}

// AppendRGBA appends the pixels to dst as opaque RGBA bytes, four per pixel.
func (fb *Framebuffer) AppendRGBA(dst []byte) []byte {
	for _, c := range fb.Pixels {
		dst = append(dst, c.R, c.G, c.B, 255)
	}
	return dst
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, fb.ToImage()); err != nil {
		return fmt.Errorf("render: encode %s: %w", path, err)
	}
	return nil
}
