// Package scene is the particle tree: a cone of glowing particles with
// ornaments, a star and hung photos that scatters into a cloud when the
// gallery opens and reassembles when it closes.
package scene

import (
	"math/rand/v2"
	"time"

	"github.com/taigrr/noel/pkg/input"
	"github.com/taigrr/noel/pkg/math3d"
	"github.com/taigrr/noel/pkg/models"
	"github.com/taigrr/noel/pkg/photo"
	"github.com/taigrr/noel/pkg/render"
)

// Easing selects how per-frame easing rates scale with elapsed time.
type Easing int

const (
	// EasingFrame applies each rate once per Update, whatever dt is.
	EasingFrame Easing = iota
	// EasingTime scales each rate by dt as if Update ran at 60 Hz.
	EasingTime
)

// Options configures an engine.
type Options struct {
	Seed uint64 // 0 seeds from the clock

	Spiral    int
	Fill      int
	Halo      int
	Floor     int
	Snow      int
	Ornaments int

	Easing  Easing
	Palette []render.Color

	// StarModel and OrnamentModel replace the procedural meshes. They are
	// rescaled in place to the star and ornament radius.
	StarModel     *models.Mesh
	OrnamentModel *models.Mesh

	TextureSize int              // longest side of hung photo textures
	Decode      photo.DecodeFunc // nil uses photo.Decode
}

// DefaultOptions returns the full-size scene.
func DefaultOptions() Options {
	return Options{
		Spiral:      18000,
		Fill:        15000,
		Halo:        5000,
		Floor:       6000,
		Snow:        4000,
		Ornaments:   70,
		Palette:     DefaultPalette,
		TextureSize: 128,
	}
}

// Scene constants.
const (
	RotationSpeed = 0.005 // rad per frame, tree and decorations
	StarSpin      = 0.02  // rad per frame
	StarHeight    = 4.0
	StarRadius    = 0.35

	treePointSize  = 0.035
	floorPointSize = 0.05
	snowPointSize  = 0.06
	snowOpacity    = 0.5
	starGlowRadius = 1.2
)

// offscreen is the pointer position before any pointer event, far outside
// NDC so nothing is hovered.
var offscreen = math3d.V2(-10, -10)

// Stats describes the last rendered frame.
type Stats struct {
	Points int // particles splatted
	Culled int // meshes and quads rejected by the frustum
}

// Engine owns the tree scene. It is not safe for concurrent use; the frame
// loop drives every method.
type Engine struct {
	opts Options

	camera *render.Camera
	raster *render.Rasterizer
	rng    *rand.Rand

	morph      Morph
	vis        Visibility
	tree       Particles
	floorPos   []math3d.Vec3
	floorColor []render.Color
	snow       Snow
	ornaments  []Ornament

	highlighted int
	rotation    float64
	starSpin    float64

	starMesh     *models.Mesh
	ornamentMesh *models.Mesh

	pointer math3d.Vec2 // NDC

	photos   photo.List
	surfaces []surface
	loader   *photo.Loader

	detach []func()
	stats  Stats
	closed bool
}

// New builds a scene for a width×height framebuffer.
func New(opts Options, width, height int) *Engine {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	camera := render.NewCamera(math3d.V3(0, 2.2, 8.5), 75)
	camera.LookAt(math3d.V3(0, 1.5, 0))

	e := &Engine{
		opts:        opts,
		camera:      camera,
		raster:      render.NewRasterizer(camera, render.NewFramebuffer(width, height)),
		rng:         rng,
		highlighted: -1,
		pointer:     offscreen,
		loader:      photo.NewLoader(opts.TextureSize, opts.Decode),
	}

	e.tree = buildTree(rng, opts.Spiral, opts.Fill, opts.Halo)
	e.floorPos, e.floorColor = buildFloor(rng, opts.Floor)
	e.snow = buildSnow(rng, opts.Snow)
	e.ornaments = buildOrnaments(rng, opts.Ornaments, opts.Palette)

	e.starMesh = opts.StarModel
	if e.starMesh == nil {
		e.starMesh = models.Octahedron(StarRadius)
	} else {
		e.starMesh.FitRadius(StarRadius)
	}
	e.ornamentMesh = opts.OrnamentModel
	if e.ornamentMesh == nil {
		e.ornamentMesh = models.UVSphere(OrnamentRadius, 8, 6)
	} else {
		e.ornamentMesh.FitRadius(OrnamentRadius)
	}

	e.vis = VisibilityAt(0)
	return e
}

// Attach registers pointer hover listeners on r. They are removed by Close.
func (e *Engine) Attach(r *input.Router) {
	if e.closed {
		return
	}
	e.detach = append(e.detach, r.Add(func(ev input.Event) bool {
		switch ev.Kind {
		case input.PointerMove, input.PointerDown:
			e.SetPointer(ev.X, ev.Y)
		case input.PointerLeave:
			e.ClearPointer()
		}
		return false
	}))
}

// SetPointer records the pointer position in framebuffer pixels.
func (e *Engine) SetPointer(x, y float64) {
	if e.closed {
		return
	}
	nx, ny := e.camera.ScreenToNDC(x, y)
	e.pointer = math3d.V2(nx, ny)
}

// ClearPointer moves the pointer off screen.
func (e *Engine) ClearPointer() {
	e.pointer = offscreen
}

// Resize changes the viewport. Particle state is untouched.
func (e *Engine) Resize(width, height int) {
	if e.closed {
		return
	}
	e.raster.Framebuffer().Resize(width, height)
	e.raster.Resize()
}

// SetPhotos replaces the hung photos. Nothing happens unless the list
// version differs from the current one; otherwise every surface and pending
// load is dropped and rebuilt.
func (e *Engine) SetPhotos(list photo.List) {
	if e.closed || list.Version() == e.photos.Version() {
		return
	}
	e.loader.Close()
	e.loader = photo.NewLoader(e.opts.TextureSize, e.opts.Decode)
	e.photos = list
	e.surfaces = buildSurfaces(e.rng, list, e.loader)
}

func (e *Engine) frames(dt float64) float64 {
	if e.opts.Easing == EasingTime {
		return dt * 60
	}
	return 1
}

// Update advances the scene by one frame. dt is in seconds and only matters
// with EasingTime.
func (e *Engine) Update(galleryOpen bool, dt float64) {
	if e.closed {
		return
	}
	frames := e.frames(dt)

	e.morph.SetShattered(galleryOpen)
	e.morph.Step(frames)
	m := e.morph.Value

	e.tree.Update(m)
	e.snow.Fall(frames)

	if galleryOpen {
		e.highlighted = -1
	} else {
		ray := e.camera.Ray(e.pointer.X, e.pointer.Y)
		e.highlighted = pickOrnament(ray, e.ornaments, decorationsMatrix(e.rotation, m))
	}
	easeOrnaments(e.ornaments, e.highlighted, frames)

	e.vis = VisibilityAt(m)
	e.rotation += RotationSpeed * frames
	e.starSpin += StarSpin * frames
}

// Render draws the scene into fb, resizing the viewport to match it.
func (e *Engine) Render(fb *render.Framebuffer) {
	if e.closed {
		return
	}
	if fb != e.raster.Framebuffer() {
		e.raster.SetFramebuffer(fb)
	}
	e.raster.ClearDepth()
	m := e.morph.Value
	spin := math3d.RotateY(e.rotation)
	light := render.Light{Dir: math3d.V3(0.3, 1, 0.6), Ambient: 0.55}
	points := 0

	if e.vis.Star {
		model := math3d.Translate(math3d.V3(0, StarHeight, 0)).Mul(math3d.RotateY(e.starSpin))
		e.raster.DrawMesh(e.starMesh, model, render.ColorWhite, 1, light)
	}

	if e.vis.Decorations {
		group := decorationsMatrix(e.rotation, m)
		for _, o := range e.ornaments {
			model := group.Mul(math3d.Translate(o.Local)).Mul(math3d.ScaleUniform(o.Scale))
			e.raster.DrawMesh(e.ornamentMesh, model, o.Color, 1, light)
		}
	}

	if e.vis.Photos {
		for _, s := range e.surfaces {
			tex := s.texture.Texture()
			if tex == nil {
				continue
			}
			q := math3d.QuadFromMatrix(spin.Mul(s.local), SurfaceWidth, SurfaceHeight)
			e.raster.DrawTexturedQuad(q, tex, 1)
		}
	}

	points += e.raster.DrawPoints(e.tree.Pos, e.tree.Color, render.ColorWhite, spin, render.PointStyle{
		Size:     treePointSize,
		Opacity:  TreeOpacity(m),
		Additive: true,
	})
	points += e.raster.DrawPoints(e.floorPos, e.floorColor, render.ColorWhite, math3d.Identity(), render.PointStyle{
		Size:     floorPointSize,
		Opacity:  FloorOpacity(m),
		Additive: true,
	})

	if e.vis.Star {
		e.raster.DrawGlow(math3d.V3(0, StarHeight, 0), starGlowRadius, render.ColorCyan, StarLight(m)*0.1)
	}

	points += e.raster.DrawPoints(e.snow.Pos, nil, render.ColorWhite, math3d.Identity(), render.PointStyle{
		Size:    snowPointSize,
		Opacity: snowOpacity,
	})

	e.stats = Stats{Points: points, Culled: e.raster.Culled}
}

// Highlighted returns the hovered ornament index, or -1.
func (e *Engine) Highlighted() int {
	return e.highlighted
}

// Morph returns the current morph factor in [0,1].
func (e *Engine) Morph() float64 {
	return e.morph.Value
}

// Visibility returns which element groups are currently drawn.
func (e *Engine) Visibility() Visibility {
	return e.vis
}

// Ornaments returns the ornament slice. Callers must not modify it.
func (e *Engine) Ornaments() []Ornament {
	return e.ornaments
}

// Tree returns the tree particles. Callers must not modify them.
func (e *Engine) Tree() *Particles {
	return &e.tree
}

// SnowLayer returns the snow particles. Callers must not modify them.
func (e *Engine) SnowLayer() *Snow {
	return &e.snow
}

// Photos returns the current photo list.
func (e *Engine) Photos() photo.List {
	return e.photos
}

// SurfaceCount returns the number of hung photo surfaces.
func (e *Engine) SurfaceCount() int {
	return len(e.surfaces)
}

// Stats returns statistics for the last Render.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Camera returns the scene camera.
func (e *Engine) Camera() *render.Camera {
	return e.camera
}

// Closed reports whether Close has been called.
func (e *Engine) Closed() bool {
	return e.closed
}

// Close cancels texture loads, removes listeners and drops every particle
// buffer. Later calls to any method are no-ops.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	for _, fn := range e.detach {
		fn()
	}
	e.detach = nil
	e.loader.Close()
	e.surfaces = nil
	e.tree = Particles{}
	e.floorPos, e.floorColor = nil, nil
	e.snow = Snow{}
	e.ornaments = nil
	e.highlighted = -1
}
