// Package window runs a game in a desktop window through ebiten. The
// framebuffer is upscaled by an integer factor; labels are drawn with the
// ebiten debug font at screen resolution.
package window

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/taigrr/noel/internal/display"
	"github.com/taigrr/noel/pkg/input"
	"github.com/taigrr/noel/pkg/render"
)

var namedKeys = []struct {
	key  ebiten.Key
	name string
}{
	{ebiten.KeyEscape, "escape"},
	{ebiten.KeyEnter, "enter"},
	{ebiten.KeyBackspace, "backspace"},
}

type runner struct {
	ctx   context.Context
	game  display.Game
	d     *display.Dispatcher
	fb    *render.Framebuffer
	scale int
	dt    float64

	img    *ebiten.Image
	pix    []byte
	labels []render.Label

	cx, cy  int
	touches []ebiten.TouchID
	chars   []rune
}

func Run(ctx context.Context, game display.Game, opts display.Options) error {
	scale := max(opts.Scale, 1)
	fps := opts.FPS
	if fps <= 0 {
		fps = ebiten.DefaultTPS
	}
	fb := render.NewFramebuffer(opts.Width, opts.Height)
	r := &runner{
		ctx:   ctx,
		game:  game,
		d:     &display.Dispatcher{Game: game, FB: fb},
		fb:    fb,
		scale: scale,
		dt:    1 / float64(fps),
		cx:    -1,
		cy:    -1,
	}

	ebiten.SetWindowSize(fb.Width*scale, fb.Height*scale)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(fps)

	if err := ebiten.RunGame(r); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}

func (r *runner) Update() error {
	if r.ctx.Err() != nil || r.game.Done() {
		return ebiten.Termination
	}
	r.pollMouse()
	r.pollTouches()
	r.pollKeys()

	r.game.Tick(r.dt)
	if r.game.Done() {
		return ebiten.Termination
	}
	return nil
}

func (r *runner) pointer(kind input.Kind, sx, sy int) {
	r.d.Dispatch(input.Event{
		Kind: kind,
		X:    (float64(sx) + 0.5) / float64(r.scale),
		Y:    (float64(sy) + 0.5) / float64(r.scale),
	})
}

func (r *runner) pollMouse() {
	x, y := ebiten.CursorPosition()
	if x != r.cx || y != r.cy {
		r.cx, r.cy = x, y
		r.pointer(input.PointerMove, x, y)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		r.pointer(input.PointerDown, x, y)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		r.pointer(input.PointerUp, x, y)
	}
}

func (r *runner) pollTouches() {
	r.touches = inpututil.AppendJustPressedTouchIDs(r.touches[:0])
	for _, id := range r.touches {
		x, y := ebiten.TouchPosition(id)
		r.pointer(input.PointerDown, x, y)
	}

	r.touches = ebiten.AppendTouchIDs(r.touches[:0])
	for _, id := range r.touches {
		x, y := ebiten.TouchPosition(id)
		px, py := inpututil.TouchPositionInPreviousTick(id)
		if x != px || y != py {
			r.pointer(input.PointerMove, x, y)
		}
	}

	r.touches = inpututil.AppendJustReleasedTouchIDs(r.touches[:0])
	for _, id := range r.touches {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		r.pointer(input.PointerUp, x, y)
	}
}

func (r *runner) pollKeys() {
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		if inpututil.IsKeyJustPressed(ebiten.KeyC) {
			r.d.Dispatch(input.Event{Kind: input.Key, Key: "ctrl+c"})
		}
		return
	}
	for _, k := range namedKeys {
		if inpututil.IsKeyJustPressed(k.key) {
			r.d.Dispatch(input.Event{Kind: input.Key, Key: k.name})
		}
	}
	r.chars = ebiten.AppendInputChars(r.chars[:0])
	for _, c := range r.chars {
		s := string(c)
		r.d.Dispatch(input.Event{Kind: input.Key, Key: s, Text: s})
	}
}

func (r *runner) Draw(screen *ebiten.Image) {
	r.labels = r.game.Draw(r.fb)

	if r.img == nil || r.img.Bounds().Dx() != r.fb.Width || r.img.Bounds().Dy() != r.fb.Height {
		if r.img != nil {
			r.img.Deallocate()
		}
		r.img = ebiten.NewImage(r.fb.Width, r.fb.Height)
	}
	r.pix = r.fb.AppendRGBA(r.pix[:0])
	r.img.WritePixels(r.pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(r.scale), float64(r.scale))
	screen.DrawImage(r.img, op)

	for _, l := range r.labels {
		ebitenutil.DebugPrintAt(screen, l.Text, l.X*r.scale, l.Y*r.scale)
	}
}

func (r *runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := max(1, outsideWidth/r.scale), max(1, outsideHeight/r.scale)
	if w != r.fb.Width || h != r.fb.Height {
		r.d.Dispatch(input.Event{Kind: input.Resize, Width: w, Height: h})
	}
	return outsideWidth, outsideHeight
}
