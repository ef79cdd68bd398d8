package render

import (
	"math"

	"github.com/taigrr/noel/pkg/math3d"
)

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	Position math3d.Vec3
	Target   math3d.Vec3

	// Projection parameters
	FOV  float64 // Vertical field of view in radians
	Near float64
	Far  float64

	// Viewport in framebuffer pixels, never below 1x1.
	width, height int

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	invViewProj    math3d.Mat4
	viewDirty      bool
	projDirty      bool
	vpDirty        bool
}

// NewCamera creates a camera at pos looking down -Z with a vertical field of
// view of fovDeg degrees.
func NewCamera(pos math3d.Vec3, fovDeg float64) *Camera {
	return &Camera{
		Position:  pos,
		Target:    pos.Add(math3d.V3(0, 0, -1)),
		FOV:       fovDeg * math.Pi / 180,
		Near:      0.1,
		Far:       1000,
		width:     1,
		height:    1,
		viewDirty: true,
		projDirty: true,
	}
}

// SetPosition moves the camera, keeping its viewing direction.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Target = c.Target.Add(pos.Sub(c.Position))
	c.Position = pos
	c.viewDirty = true
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.Target = target
	c.viewDirty = true
}

// SetViewport sets the viewport size in pixels. Dimensions are clamped to at
// least 1 so the aspect ratio stays finite.
func (c *Camera) SetViewport(width, height int) {
	c.width = max(1, width)
	c.height = max(1, height)
	c.projDirty = true
}

// Viewport returns the clamped viewport size.
func (c *Camera) Viewport() (width, height int) {
	return c.width, c.height
}

// AspectRatio returns width / height of the viewport.
func (c *Camera) AspectRatio() float64 {
	return float64(c.width) / float64(c.height)
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position, c.Target, math3d.Up())
		c.viewDirty = false
		c.vpDirty = true
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio(), c.Near, c.Far)
		c.projDirty = false
		c.vpDirty = true
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	view := c.ViewMatrix()
	proj := c.ProjectionMatrix()
	if c.vpDirty {
		c.viewProjMatrix = proj.Mul(view)
		c.invViewProj = c.viewProjMatrix.Inverse()
		c.vpDirty = false
	}
	return c.viewProjMatrix
}

// FocalScale returns the number of pixels a unit-length object spans at a
// view distance of 1.
func (c *Camera) FocalScale() float64 {
	return float64(c.height) / (2 * math.Tan(c.FOV/2))
}

// WorldToScreen transforms a world point to screen coordinates.
// w is the clip-space W (view depth). ok is false behind the camera.
func (c *Camera) WorldToScreen(p math3d.Vec3) (x, y, depth, w float64, ok bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= c.Near {
		return 0, 0, 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	x = (ndc.X + 1) * 0.5 * float64(c.width)
	y = (1 - ndc.Y) * 0.5 * float64(c.height)
	return x, y, ndc.Z, clip.W, true
}

// ScreenToNDC converts pixel coordinates to normalized device coordinates.
func (c *Camera) ScreenToNDC(x, y float64) (nx, ny float64) {
	return x/float64(c.width)*2 - 1, -(y/float64(c.height))*2 + 1
}

// Ray returns the world-space ray through the given NDC position.
func (c *Camera) Ray(nx, ny float64) math3d.Ray {
	c.ViewProjectionMatrix()
	far := c.invViewProj.MulVec3(math3d.V3(nx, ny, 1))
	return math3d.Ray{
		Origin: c.Position,
		Dir:    far.Sub(c.Position).Normalize(),
	}
}
