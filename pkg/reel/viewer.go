// Package reel is the photo gallery: a curved film strip of photos that
// spins under drag and zooms a photo full screen on tap.
package reel

import (
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/noel/pkg/input"
	"github.com/taigrr/noel/pkg/math3d"
	"github.com/taigrr/noel/pkg/photo"
	"github.com/taigrr/noel/pkg/render"
)

// Options configures a viewer.
type Options struct {
	Sensitivity  float64 // radians per pixel of drag
	TapThreshold float64 // pixels
	Ease         float64 // per-frame rotation easing
	FPS          int     // frame rate the zoom spring is tuned for

	TextureSize int
	Decode      photo.DecodeFunc

	// OnClose is called when the back button is tapped or Escape pressed.
	OnClose func()
}

// DefaultOptions returns the standard gesture tuning.
func DefaultOptions() Options {
	return Options{
		Sensitivity:  0.004,
		TapThreshold: 5,
		Ease:         0.08,
		FPS:          60,
		TextureSize:  256,
	}
}

// Overlay text.
const (
	Title       = "MEMORY REEL"
	BackLabel   = "◀ BACK TO TREE"
	HintLabel   = "drag to spin · tap a photo"
	ShowingText = "NOW SHOWING"
)

// Zoom fit and spring.
const (
	zoomFitW     = 0.9
	zoomFitH     = 0.85
	zoomStart    = 0.95
	bobAmplitude = 0.1
)

var (
	titleColor = render.Hex(0x00ffff)
	textColor  = render.Hex(0xcccccc)
)

// Frame is one photo on the ribbon.
type Frame struct {
	Slot
	Photo   photo.Photo
	texture *photo.Pending
}

// Texture returns the loaded photo texture, or nil while loading or after
// a failure.
func (f *Frame) Texture() *render.Texture {
	return f.texture.Texture()
}

type zoom struct {
	index  int
	scale  float64
	vel    float64
	spring harmonica.Spring
}

// Viewer is the gallery overlay. Like the scene engine it is driven from
// the frame loop only.
type Viewer struct {
	opts Options

	camera *render.Camera
	raster *render.Rasterizer

	photos photo.List
	frames []Frame
	loader *photo.Loader

	gesture  Gesture
	target   float64
	rotation float64
	elapsed  float64
	zoom     *zoom

	detach []func()
	closed bool
}

// New creates a viewer for list drawing into a width×height framebuffer.
func New(list photo.List, width, height int, opts Options) *Viewer {
	def := DefaultOptions()
	if opts.Sensitivity == 0 {
		opts.Sensitivity = def.Sensitivity
	}
	if opts.TapThreshold == 0 {
		opts.TapThreshold = def.TapThreshold
	}
	if opts.Ease == 0 {
		opts.Ease = def.Ease
	}
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}

	camera := render.NewCamera(math3d.V3(0, 0, 12), 60)
	camera.LookAt(math3d.V3(0, 0, 0))

	v := &Viewer{
		opts:   opts,
		camera: camera,
		raster: render.NewRasterizer(camera, render.NewFramebuffer(width, height)),
		loader: photo.NewLoader(opts.TextureSize, opts.Decode),
	}
	v.SetPhotos(list)
	return v
}

// Attach registers the viewer's pointer and key listeners on r. The viewer
// consumes every pointer event while attached since it covers the screen.
func (v *Viewer) Attach(r *input.Router) {
	if v.closed {
		return
	}
	v.detach = append(v.detach, r.Add(func(ev input.Event) bool {
		switch ev.Kind {
		case input.PointerDown:
			v.PointerDown(ev.X, ev.Y)
		case input.PointerMove:
			v.PointerMove(ev.X, ev.Y)
		case input.PointerUp:
			v.PointerUp(ev.X, ev.Y)
		case input.DoubleClick:
		case input.Key:
			return v.Key(ev.Key)
		default:
			return false
		}
		return true
	}))
}

// SetPhotos rebuilds every frame when the list version changes.
func (v *Viewer) SetPhotos(list photo.List) {
	if v.closed || (list.Version() == v.photos.Version() && v.frames != nil) {
		return
	}
	v.loader.Close()
	v.loader = photo.NewLoader(v.opts.TextureSize, v.opts.Decode)
	v.photos = list
	v.zoom = nil

	slots := Layout(list.Len())
	v.frames = make([]Frame, len(slots))
	for i, s := range slots {
		p := list.At(i)
		v.frames[i] = Frame{Slot: s, Photo: p, texture: v.loader.Load(p)}
	}
}

// Frames returns the ribbon frames. Callers must not modify them.
func (v *Viewer) Frames() []Frame {
	return v.frames
}

// Resize changes the viewport.
func (v *Viewer) Resize(width, height int) {
	if v.closed {
		return
	}
	v.raster.Framebuffer().Resize(width, height)
	v.raster.Resize()
}

// PointerDown starts a drag or tap.
func (v *Viewer) PointerDown(x, y float64) {
	if v.closed {
		return
	}
	v.gesture.Down(x)
}

// PointerMove spins the ribbon while dragging. Moves are ignored while a
// photo is zoomed.
func (v *Viewer) PointerMove(x, y float64) {
	if v.closed {
		return
	}
	dx := v.gesture.Move(x)
	if v.zoom == nil {
		v.target += dx * v.opts.Sensitivity
	}
}

// PointerUp ends a gesture. Any click closes the zoomed photo if one is
// open; otherwise a tap fires the back button or zooms the photo under the
// pointer.
func (v *Viewer) PointerUp(x, y float64) {
	if v.closed {
		return
	}
	pressed := v.gesture.State == Dragging
	tap := v.gesture.Up(x, v.opts.TapThreshold)
	switch {
	case v.zoom != nil:
		if pressed {
			v.zoom = nil
		}
	case !tap:
	case v.backButtonHit(x, y):
		v.fireClose()
	default:
		if i := v.Pick(x, y); i >= 0 {
			v.openZoom(i)
		}
	}
}

// Key handles a key press and reports whether it was used. Escape closes
// the zoomed photo first, then the gallery.
func (v *Viewer) Key(key string) bool {
	if v.closed || key != "escape" {
		return false
	}
	if v.zoom != nil {
		v.zoom = nil
		return true
	}
	v.fireClose()
	return true
}

func (v *Viewer) fireClose() {
	if v.opts.OnClose != nil {
		v.opts.OnClose()
	}
}

// backButtonHit reports whether (x, y) lies in the button row at the top
// left of the screen.
func (v *Viewer) backButtonHit(x, y float64) bool {
	w, h := v.camera.Viewport()
	return y < math.Max(2, float64(h)*0.1) && x < math.Max(float64(render.TextWidth(BackLabel)+4), float64(w)*0.3)
}

func (v *Viewer) groupMatrix() math3d.Mat4 {
	return math3d.Translate(math3d.V3(0, math.Sin(v.elapsed)*bobAmplitude, 0)).Mul(math3d.RotateY(v.rotation))
}

func (v *Viewer) photoQuad(group math3d.Mat4, f *Frame) math3d.Quad {
	m := group.Mul(f.Local).Mul(math3d.Translate(math3d.V3(0, 0, photoZ)))
	return math3d.QuadFromMatrix(m, FrameWidth*0.9, FrameHeight*0.9)
}

// Pick returns the index of the nearest photo surface under framebuffer
// pixel (x, y), or -1.
func (v *Viewer) Pick(x, y float64) int {
	ray := v.camera.Ray(v.camera.ScreenToNDC(x, y))
	group := v.groupMatrix()
	hit := -1
	best := math.MaxFloat64
	for i := range v.frames {
		t, ok := ray.IntersectQuad(v.photoQuad(group, &v.frames[i]))
		if ok && t < best {
			best, hit = t, i
		}
	}
	return hit
}

func (v *Viewer) openZoom(i int) {
	v.zoom = &zoom{
		index:  i,
		scale:  zoomStart,
		spring: harmonica.NewSpring(harmonica.FPS(v.opts.FPS), 6.0, 1.0),
	}
}

// Zoomed returns the index of the zoomed photo, or -1.
func (v *Viewer) Zoomed() int {
	if v.zoom == nil {
		return -1
	}
	return v.zoom.index
}

// ZoomScale returns the zoom overlay scale, 0 when nothing is zoomed.
func (v *Viewer) ZoomScale() float64 {
	if v.zoom == nil {
		return 0
	}
	return v.zoom.scale
}

// State returns the gesture state.
func (v *Viewer) State() GestureState {
	return v.gesture.State
}

// Rotation returns the current and target ribbon rotation.
func (v *Viewer) Rotation() (current, target float64) {
	return v.rotation, v.target
}

// Update eases the ribbon toward its target rotation, bobs it and springs
// the zoom overlay. dt is in seconds.
func (v *Viewer) Update(dt float64) {
	if v.closed {
		return
	}
	v.rotation = math3d.Approach(v.rotation, v.target, v.opts.Ease)
	v.elapsed += dt
	if v.zoom != nil {
		v.zoom.scale, v.zoom.vel = v.zoom.spring.Update(v.zoom.scale, v.zoom.vel, 1)
	}
}

// Render draws the gallery over fb, darkening what is already there.
func (v *Viewer) Render(fb *render.Framebuffer) {
	if v.closed {
		return
	}
	if fb != v.raster.Framebuffer() {
		v.raster.SetFramebuffer(fb)
	}
	fb.Dim(0.15)
	v.raster.ClearDepth()

	group := v.groupMatrix()
	holes := holeOffsets()
	for i := range v.frames {
		f := &v.frames[i]
		local := group.Mul(f.Local)
		v.raster.DrawQuad(math3d.QuadFromMatrix(local, StripWidth, StripHeight), StripColor, 1)
		for _, h := range holes {
			m := local.Mul(math3d.Translate(h))
			v.raster.DrawQuad(math3d.QuadFromMatrix(m, HoleSize, HoleSize), HoleColor, 1)
		}
		if tex := f.Texture(); tex != nil {
			v.raster.DrawTexturedQuad(v.photoQuad(group, f), tex, 1)
		}
	}

	if v.zoom != nil {
		v.renderZoom(fb)
	}
}

func (v *Viewer) renderZoom(fb *render.Framebuffer) {
	fb.Dim(0.1)
	tex := v.frames[v.zoom.index].Texture()
	if tex == nil {
		return
	}
	w, h := fitRect(tex.Aspect(), float64(fb.Width)*zoomFitW, float64(fb.Height)*zoomFitH)
	w *= v.zoom.scale
	h *= v.zoom.scale
	fb.DrawTexture(tex, (float64(fb.Width)-w)/2, (float64(fb.Height)-h)/2, w, h, 1)
}

// fitRect returns the largest size with the given aspect inside maxW×maxH.
func fitRect(aspect, maxW, maxH float64) (w, h float64) {
	if aspect <= 0 {
		return maxW, maxH
	}
	w, h = maxW, maxW/aspect
	if h > maxH {
		h = maxH
		w = maxH * aspect
	}
	return w, h
}

// Labels returns the overlay text for the current state.
func (v *Viewer) Labels() []render.Label {
	if v.closed {
		return nil
	}
	w, h := v.camera.Viewport()
	labels := []render.Label{
		{X: 2, Y: 0, Text: BackLabel, Color: textColor},
		{X: (w - render.TextWidth(Title)) / 2, Y: 0, Text: Title, Color: titleColor},
	}
	if v.zoom != nil {
		caption := fmt.Sprintf("%s  %d/%d", ShowingText, v.zoom.index+1, len(v.frames))
		labels = append(labels, render.Label{X: (w - render.TextWidth(caption)) / 2, Y: h - 2, Text: caption, Color: titleColor})
	} else if len(v.frames) > 0 {
		labels = append(labels, render.Label{X: (w - render.TextWidth(HintLabel)) / 2, Y: h - 2, Text: HintLabel, Color: textColor})
	}
	return labels
}

// Closed reports whether Close has been called.
func (v *Viewer) Closed() bool {
	return v.closed
}

// Close cancels texture loads, drops every frame and removes the viewer's
// listeners. It is safe to call more than once.
func (v *Viewer) Close() {
	if v.closed {
		return
	}
	v.closed = true
	for _, fn := range v.detach {
		fn()
	}
	v.detach = nil
	v.loader.Close()
	v.frames = nil
	v.zoom = nil
	v.gesture = Gesture{}
}
