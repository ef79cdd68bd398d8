package render

import (
	"math"

	"github.com/taigrr/noel/pkg/math3d"
)

// Rasterizer draws points and triangles into a framebuffer through a camera,
// with a shared depth buffer.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64 // row-major, NDC depth

	frustum      Frustum
	frustumDirty bool

	// Culled counts meshes and quads skipped by frustum tests since the last
	// ClearDepth.
	Culled int
}

// NewRasterizer creates a rasterizer drawing into fb.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera, fb: fb, frustumDirty: true}
	r.Resize()
	return r
}

// Camera returns the camera used for projection.
func (r *Rasterizer) Camera() *Camera {
	return r.camera
}

// Framebuffer returns the target framebuffer.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// SetFramebuffer retargets the rasterizer, resizing the depth buffer and the
// camera viewport to match.
func (r *Rasterizer) SetFramebuffer(fb *Framebuffer) {
	r.fb = fb
	r.Resize()
}

// Resize matches the depth buffer and camera viewport to the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	if n := r.fb.Width * r.fb.Height; len(r.zbuffer) != n {
		r.zbuffer = make([]float64, n)
	}
	r.camera.SetViewport(r.fb.Width, r.fb.Height)
	r.frustumDirty = true
}

// ClearDepth resets the depth buffer; call once per frame before drawing.
func (r *Rasterizer) ClearDepth() {
	if len(r.zbuffer) != r.fb.Width*r.fb.Height {
		r.Resize()
	}
	n := len(r.zbuffer)
	if n > 0 {
		r.zbuffer[0] = math.MaxFloat64
		for i := 1; i < n; i *= 2 {
			copy(r.zbuffer[i:], r.zbuffer[:i])
		}
	}
	r.frustumDirty = true
	r.Culled = 0
}

// Frustum returns the view frustum for the current camera.
func (r *Rasterizer) Frustum() Frustum {
	if r.frustumDirty {
		r.frustum = ExtractFrustum(r.camera.ViewProjectionMatrix())
		r.frustumDirty = false
	}
	return r.frustum
}

func (r *Rasterizer) depthAt(x, y int) float64 {
	if x < 0 || x >= r.fb.Width || y < 0 || y >= r.fb.Height {
		return -math.MaxFloat64
	}
	return r.zbuffer[y*r.fb.Width+x]
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64 // pixels
	Z    float64 // NDC depth
	InvW float64 // 1/w for perspective-correct interpolation
}

// fragment shades one pixel given perspective-correct barycentric weights.
// It returns the color and coverage alpha; alpha <= 0 discards the pixel.
type fragment func(b0, b1, b2 float64) (Color, float64)

// rasterize fills a world-space triangle, calling shade for every covered
// pixel that passes the depth test. Opaque fragments write depth.
func (r *Rasterizer) rasterize(v [3]math3d.Vec3, shade fragment) {
	viewProj := r.camera.ViewProjectionMatrix()
	w, h := float64(r.fb.Width), float64(r.fb.Height)

	var sv [3]screenVertex
	for i := range 3 {
		clip := viewProj.MulVec4(math3d.V4FromV3(v[i], 1))
		if clip.W <= r.camera.Near {
			// no near-plane clipping; everything in these scenes sits well
			// in front of the camera
			return
		}
		inv := 1 / clip.W
		sv[i] = screenVertex{
			X:    (clip.X*inv + 1) * 0.5 * w,
			Y:    (1 - clip.Y*inv) * 0.5 * h,
			Z:    clip.Z * inv,
			InvW: inv,
		}
	}

	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(w-1, math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(h-1, math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				float64(x)+0.5, float64(y)+0.5,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			idx := y*r.fb.Width + x
			if z >= r.zbuffer[idx] {
				continue
			}

			// perspective-correct weights
			p0, p1, p2 := bc.X*sv[0].InvW, bc.Y*sv[1].InvW, bc.Z*sv[2].InvW
			sum := p0 + p1 + p2
			c, alpha := shade(p0/sum, p1/sum, p2/sum)
			if alpha <= 0 {
				continue
			}
			if alpha >= 1 {
				r.zbuffer[idx] = z
				r.fb.Pixels[idx] = c
				continue
			}
			r.fb.BlendPixel(x, y, c, alpha)
		}
	}
}

// DrawTriangle draws a flat-colored triangle with the given opacity.
func (r *Rasterizer) DrawTriangle(v [3]math3d.Vec3, c Color, alpha float64) {
	r.rasterize(v, func(_, _, _ float64) (Color, float64) {
		return c, alpha
	})
}

// DrawTriangleTextured draws a triangle sampling tex with perspective-correct
// texture coordinates.
func (r *Rasterizer) DrawTriangleTextured(v [3]math3d.Vec3, uv [3]math3d.Vec2, tex *Texture, opacity float64) {
	r.rasterize(v, func(b0, b1, b2 float64) (Color, float64) {
		u := b0*uv[0].X + b1*uv[1].X + b2*uv[2].X
		t := b0*uv[0].Y + b1*uv[1].Y + b2*uv[2].Y
		return tex.Sample(u, t), opacity
	})
}

// DrawQuad draws a flat-colored quad. Quads are double sided.
func (r *Rasterizer) DrawQuad(q math3d.Quad, c Color, alpha float64) {
	if !r.Frustum().IntersectsSphere(q.Center, quadRadius(q)) {
		r.Culled++
		return
	}
	p := q.Corners()
	r.DrawTriangle([3]math3d.Vec3{p[0], p[1], p[2]}, c, alpha)
	r.DrawTriangle([3]math3d.Vec3{p[0], p[2], p[3]}, c, alpha)
}

// DrawTexturedQuad maps the whole of tex onto a quad, V increasing upward.
func (r *Rasterizer) DrawTexturedQuad(q math3d.Quad, tex *Texture, opacity float64) {
	if !r.Frustum().IntersectsSphere(q.Center, quadRadius(q)) {
		r.Culled++
		return
	}
	p := q.Corners()
	uvBL, uvBR, uvTR, uvTL := math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1), math3d.V2(0, 1)
	r.DrawTriangleTextured([3]math3d.Vec3{p[0], p[1], p[2]}, [3]math3d.Vec2{uvBL, uvBR, uvTR}, tex, opacity)
	r.DrawTriangleTextured([3]math3d.Vec3{p[0], p[2], p[3]}, [3]math3d.Vec2{uvBL, uvTR, uvTL}, tex, opacity)
}

func quadRadius(q math3d.Quad) float64 {
	return math.Sqrt(q.AxisU.LenSq() + q.AxisV.LenSq())
}

// MeshRenderer is the geometry interface the rasterizer draws, implemented
// by models.Mesh without importing it.
type MeshRenderer interface {
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3)
	GetFace(i int) [3]int
	BoundingRadius() float64
}

// Light describes simple directional shading for meshes.
type Light struct {
	Dir     math3d.Vec3 // direction toward the light, world space
	Ambient float64     // floor intensity in [0,1]
}

// DrawMesh renders a mesh with flat per-face lighting. Meshes whose bounding
// sphere is outside the frustum are skipped.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, model math3d.Mat4, c Color, alpha float64, light Light) {
	scale := model.Column(0).Len()
	if !r.Frustum().IntersectsSphere(model.Column(3), mesh.BoundingRadius()*scale) {
		r.Culled++
		return
	}
	dir := light.Dir.Normalize()

	for i := range mesh.TriangleCount() {
		f := mesh.GetFace(i)
		p0, _ := mesh.GetVertex(f[0])
		p1, _ := mesh.GetVertex(f[1])
		p2, _ := mesh.GetVertex(f[2])
		v := [3]math3d.Vec3{model.MulVec3(p0), model.MulVec3(p1), model.MulVec3(p2)}

		n := v[1].Sub(v[0]).Cross(v[2].Sub(v[0])).Normalize()
		// faces are lit from either side; winding differs between sources
		diffuse := math.Abs(n.Dot(dir))
		intensity := light.Ambient + (1-light.Ambient)*diffuse
		r.DrawTriangle(v, MultiplyColor(c, intensity), alpha)
	}
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	denom := dot00*dot11 - dot01*dot01
	if denom == 0 {
		return math3d.V3(-1, -1, -1)
	}
	invDenom := 1.0 / denom
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
