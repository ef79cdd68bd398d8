package scene

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/taigrr/noel/pkg/math3d"
	"github.com/taigrr/noel/pkg/photo"
	"github.com/taigrr/noel/pkg/render"
)

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Seed = 42
	opts.Spiral = 300
	opts.Fill = 200
	opts.Halo = 100
	opts.Floor = 100
	opts.Snow = 50
	opts.Decode = func(context.Context, string) (image.Image, error) {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		for i := range img.Pix {
			img.Pix[i] = 0xff
		}
		return img, nil
	}
	return opts
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(smallOptions(), 160, 96)
	t.Cleanup(e.Close)
	return e
}

func TestMorphConvergesWithoutOvershoot(t *testing.T) {
	var m Morph
	m.SetShattered(true)
	prev := m.Value
	for range 300 {
		m.Step(1)
		if m.Value < prev {
			t.Fatalf("morph decreased: %v -> %v", prev, m.Value)
		}
		if m.Value > 1 {
			t.Fatalf("morph overshot: %v", m.Value)
		}
		prev = m.Value
	}
	if m.Value < 0.999 {
		t.Errorf("got %v after 300 frames, want close to 1", m.Value)
	}

	m.SetShattered(false)
	for range 300 {
		m.Step(1)
		if m.Value > prev || m.Value < 0 {
			t.Fatalf("morph left [0, prev]: %v", m.Value)
		}
		prev = m.Value
	}
}

func TestMorphFirstStep(t *testing.T) {
	tests := []struct {
		name   string
		easing Easing
		dt     float64
		want   float64
	}{
		{"frame", EasingFrame, 1.0 / 30, 0.06},
		{"time 60Hz", EasingTime, 1.0 / 60, 0.06},
		{"time 30Hz", EasingTime, 1.0 / 30, 1 - 0.94*0.94},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := smallOptions()
			opts.Easing = tt.easing
			e := New(opts, 64, 64)
			defer e.Close()
			e.Update(true, tt.dt)
			if got := e.Morph(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParticlePositionsFollowMorph(t *testing.T) {
	e := newTestEngine(t)
	for range 25 {
		e.Update(true, 1.0/60)
	}
	m := e.Morph()
	if m <= 0 || m >= 1 {
		t.Fatalf("morph = %v, want strictly between 0 and 1", m)
	}

	tree := e.Tree()
	if tree.Len() != 600 {
		t.Fatalf("got %d particles, want 600", tree.Len())
	}
	for i := range tree.Len() {
		want := tree.Base[i].AddScaled(tree.Scatter[i], m)
		if tree.Pos[i].Distance(want) > 1e-9 {
			t.Fatalf("particle %d: got %v, want %v", i, tree.Pos[i], want)
		}
	}
}

func TestScatterMagnitude(t *testing.T) {
	e := newTestEngine(t)
	tree := e.Tree()
	for i, s := range tree.Scatter {
		if l := s.Len(); l < 10-1e-9 || l > 25+1e-9 {
			t.Fatalf("scatter %d length %v outside [10, 25]", i, l)
		}
	}
}

func TestSnowWraps(t *testing.T) {
	s := Snow{
		Pos:   []math3d.Vec3{math3d.V3(1, SnowFloor+0.01, 2), math3d.V3(0, 0, 0)},
		Speed: []float64{0.05, 0.05},
	}
	s.Fall(1)
	if s.Pos[0].Y != SnowCeiling {
		t.Errorf("wrapped flake y = %v, want %v", s.Pos[0].Y, SnowCeiling)
	}
	if s.Pos[0].X != 1 || s.Pos[0].Z != 2 {
		t.Errorf("wrap moved flake horizontally: %v", s.Pos[0])
	}
	if math.Abs(s.Pos[1].Y+0.05) > 1e-12 {
		t.Errorf("falling flake y = %v, want -0.05", s.Pos[1].Y)
	}
}

func TestSnowStaysInBounds(t *testing.T) {
	e := newTestEngine(t)
	for range 1000 {
		e.Update(false, 1.0/60)
	}
	for i, p := range e.SnowLayer().Pos {
		if p.Y < SnowFloor || p.Y > SnowCeiling {
			t.Fatalf("flake %d at y=%v", i, p.Y)
		}
	}
}

// pointAtOrnament aims the pointer at the screen position of ornament i.
func pointAtOrnament(t *testing.T, e *Engine, i int) {
	t.Helper()
	center := decorationsMatrix(e.rotation, e.Morph()).MulVec3(e.Ornaments()[i].Local)
	x, y, _, _, ok := e.Camera().WorldToScreen(center)
	if !ok {
		t.Fatalf("ornament %d behind camera", i)
	}
	e.SetPointer(x, y)
}

func TestHoverHighlightsOneOrnament(t *testing.T) {
	opts := smallOptions()
	opts.Ornaments = 5
	e := New(opts, 160, 96)
	defer e.Close()
	pointAtOrnament(t, e, 0)
	e.Update(false, 1.0/60)

	hit := e.Highlighted()
	if hit < 0 {
		t.Fatal("no ornament highlighted under the pointer")
	}

	for range 60 {
		pointAtOrnament(t, e, hit)
		e.Update(false, 1.0/60)
	}
	grown := 0
	for i, o := range e.Ornaments() {
		if o.Scale > 1.5 {
			grown++
			if i != e.Highlighted() {
				t.Errorf("ornament %d grew but %d is highlighted", i, e.Highlighted())
			}
		}
	}
	if grown != 1 {
		t.Errorf("got %d grown ornaments, want 1", grown)
	}
	if s := e.Ornaments()[e.Highlighted()].Scale; s > HoverScale {
		t.Errorf("scale %v overshot %v", s, HoverScale)
	}
}

func TestNoHoverWhileGalleryOpen(t *testing.T) {
	e := newTestEngine(t)
	pointAtOrnament(t, e, 0)
	e.Update(true, 1.0/60)
	if got := e.Highlighted(); got != -1 {
		t.Errorf("got %d, want -1", got)
	}
}

func TestInitialPointerHoversNothing(t *testing.T) {
	e := newTestEngine(t)
	for range 10 {
		e.Update(false, 1.0/60)
	}
	if got := e.Highlighted(); got != -1 {
		t.Errorf("got %d, want -1", got)
	}
}

func TestVisibilityAt(t *testing.T) {
	tests := []struct {
		m    float64
		want Visibility
	}{
		{0, Visibility{Decorations: true, Star: true, Photos: true}},
		{0.5, Visibility{Decorations: true, Star: true, Photos: true}},
		{0.8, Visibility{Decorations: true, Star: false, Photos: true}},
		{0.85, Visibility{Decorations: true, Star: false, Photos: true}},
		{0.9, Visibility{Decorations: true, Star: false, Photos: false}},
		{0.99, Visibility{}},
		{1, Visibility{}},
	}

	for _, tt := range tests {
		if got := VisibilityAt(tt.m); got != tt.want {
			t.Errorf("VisibilityAt(%v) = %+v, want %+v", tt.m, got, tt.want)
		}
	}
}

func TestOpacities(t *testing.T) {
	if got := TreeOpacity(0); got != 0.85 {
		t.Errorf("TreeOpacity(0) = %v, want 0.85", got)
	}
	if got := TreeOpacity(1); math.Abs(got-0.085) > 1e-12 {
		t.Errorf("TreeOpacity(1) = %v, want 0.085", got)
	}
	if got := FloorOpacity(1); got != 0 {
		t.Errorf("FloorOpacity(1) = %v, want 0", got)
	}
	if got := DecorationsDrop(0.5); got != -10 {
		t.Errorf("DecorationsDrop(0.5) = %v, want -10", got)
	}
}

func TestResizeToZero(t *testing.T) {
	e := newTestEngine(t)
	e.Resize(0, 0)
	w, h := e.Camera().Viewport()
	if w != 1 || h != 1 {
		t.Errorf("viewport = %dx%d, want 1x1", w, h)
	}
	if a := e.Camera().AspectRatio(); math.IsNaN(a) || math.IsInf(a, 0) {
		t.Errorf("aspect = %v", a)
	}

	e.Update(true, 1.0/60)
	e.Render(render.NewFramebuffer(0, 0))
	for i, p := range e.Tree().Pos {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
			t.Fatalf("particle %d is NaN", i)
		}
	}
}

func TestSetPhotosRebuildsOnVersionChange(t *testing.T) {
	e := newTestEngine(t)
	a, b := photo.New("a.png"), photo.New("b.png")

	list := photo.NewList(a, b)
	e.SetPhotos(list)
	if got := e.SurfaceCount(); got != 2 {
		t.Fatalf("got %d surfaces, want 2", got)
	}
	first := e.surfaces[0].texture

	e.SetPhotos(list)
	if e.surfaces[0].texture != first {
		t.Error("same list version rebuilt the surfaces")
	}

	e.SetPhotos(photo.NewList(a, b))
	if e.surfaces[0].texture == first {
		t.Error("new list version did not rebuild the surfaces")
	}

	e.SetPhotos(photo.NewList())
	if got := e.SurfaceCount(); got != 0 {
		t.Errorf("got %d surfaces after empty list, want 0", got)
	}
}

func TestSetPhotosDoesNotWaitForDecodes(t *testing.T) {
	release := make(chan struct{})
	opts := smallOptions()
	opts.Decode = func(context.Context, string) (image.Image, error) {
		<-release // ignores ctx, like a file decode
		return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
	}
	e := New(opts, 160, 96)
	t.Cleanup(func() {
		close(release)
		e.Close()
	})

	e.SetPhotos(photo.NewList(photo.New("a.png")))
	start := time.Now()
	e.SetPhotos(photo.NewList(photo.New("a.png"), photo.New("b.png")))
	if d := time.Since(start); d > 100*time.Millisecond {
		t.Errorf("SetPhotos took %v while a decode was in flight", d)
	}
	if got := e.SurfaceCount(); got != 2 {
		t.Errorf("got %d surfaces, want 2", got)
	}
}

func TestSurfacesFaceTrunk(t *testing.T) {
	e := newTestEngine(t)
	e.SetPhotos(photo.NewList(photo.New("a.png"), photo.New("b.png"), photo.New("c.png")))
	for i, s := range e.surfaces {
		pos := s.local.Column(3)
		facing := s.local.Column(2)
		toAxis := math3d.V3(-pos.X, 0, -pos.Z).Normalize()
		if d := facing.Dot(toAxis); d < 0.999 {
			t.Errorf("surface %d: facing·toAxis = %v, want 1", i, d)
		}
		if r := math.Hypot(pos.X, pos.Z); math.Abs(r-(4-pos.Y)*0.45) > 1e-9 {
			t.Errorf("surface %d radius %v, want %v", i, r, (4-pos.Y)*0.45)
		}
	}
}

func TestRenderDrawsSomething(t *testing.T) {
	e := newTestEngine(t)
	e.SetPhotos(photo.NewList(photo.New("a.png")))
	<-e.surfaces[0].texture.Done()

	fb := render.NewFramebuffer(160, 96)
	e.Update(false, 1.0/60)
	e.Render(fb)

	lit := 0
	for _, p := range fb.Pixels {
		if p != (color.RGBA{}) {
			lit++
		}
	}
	if lit == 0 {
		t.Error("render left the framebuffer empty")
	}
	if e.Stats().Points == 0 {
		t.Error("no points drawn")
	}
}

func TestCloseMakesCallsNoops(t *testing.T) {
	e := New(smallOptions(), 64, 64)
	e.Close()
	e.Close()

	e.Update(true, 1.0/60)
	e.SetPhotos(photo.NewList(photo.New("a.png")))
	e.Render(render.NewFramebuffer(8, 8))

	if e.Morph() != 0 {
		t.Errorf("morph changed after Close: %v", e.Morph())
	}
	if e.SurfaceCount() != 0 || e.Tree().Len() != 0 {
		t.Error("closed engine still holds state")
	}
	if !e.Closed() {
		t.Error("Closed() = false")
	}
}

func TestSameSeedSameScene(t *testing.T) {
	a := New(smallOptions(), 64, 64)
	b := New(smallOptions(), 64, 64)
	defer a.Close()
	defer b.Close()

	for i := range a.Tree().Base {
		if a.Tree().Base[i] != b.Tree().Base[i] {
			t.Fatalf("particle %d differs: %v vs %v", i, a.Tree().Base[i], b.Tree().Base[i])
		}
	}
	for i := range a.Ornaments() {
		if a.Ornaments()[i] != b.Ornaments()[i] {
			t.Fatalf("ornament %d differs", i)
		}
	}
}

func TestOrnamentsOnCone(t *testing.T) {
	e := newTestEngine(t)
	if got := len(e.Ornaments()); got != 70 {
		t.Fatalf("got %d ornaments, want 70", got)
	}
	for i, o := range e.Ornaments() {
		r := math.Hypot(o.Local.X, o.Local.Z)
		if math.Abs(r-(4-o.Local.Y)*0.45) > 1e-9 {
			t.Errorf("ornament %d off the cone: r=%v h=%v", i, r, o.Local.Y)
		}
		if o.Color != DefaultPalette[i%len(DefaultPalette)] {
			t.Errorf("ornament %d color %v", i, o.Color)
		}
	}
}

func BenchmarkUpdate(b *testing.B) {
	opts := DefaultOptions()
	opts.Seed = 1
	e := New(opts, 200, 120)
	defer e.Close()
	for b.Loop() {
		e.Update(true, 1.0/60)
	}
}

func BenchmarkRender(b *testing.B) {
	opts := DefaultOptions()
	opts.Seed = 1
	e := New(opts, 200, 120)
	defer e.Close()
	fb := render.NewFramebuffer(200, 120)
	for b.Loop() {
		fb.Clear(render.ColorBlack)
		e.Update(false, 1.0/60)
		e.Render(fb)
	}
}
