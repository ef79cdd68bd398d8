// Package display connects a Game to a screen. Backends live in
// subpackages; this package holds what they share: the Game contract,
// event dispatch with double-click synthesis and the fixed-rate frame loop
// used by the terminal backends.
package display

import (
	"context"
	"time"

	"github.com/taigrr/noel/pkg/input"
	"github.com/taigrr/noel/pkg/render"
)

// Game is what a backend drives. Every method is called from the frame
// goroutine.
type Game interface {
	HandleEvent(ev input.Event)
	Tick(dt float64)
	// Draw renders into fb and returns text to overlay on it.
	Draw(fb *render.Framebuffer) []render.Label
	Done() bool
}

// Options configures a backend.
type Options struct {
	FPS   int
	Title string

	// Window backend only.
	Width, Height int // framebuffer size
	Scale         int // screen pixels per framebuffer pixel
}

// Dispatcher forwards events to a game, keeping the framebuffer sized to
// Resize events and adding a DoubleClick after the second of two quick
// pointer-downs.
type Dispatcher struct {
	Game Game
	FB   *render.Framebuffer

	clicks input.ClickTracker
}

// Dispatch delivers ev. Events without a timestamp get the current time.
func (d *Dispatcher) Dispatch(ev input.Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	if ev.Kind == input.Resize && d.FB != nil {
		d.FB.Resize(ev.Width, ev.Height)
		ev.Width, ev.Height = d.FB.Width, d.FB.Height
	}
	d.Game.HandleEvent(ev)
	if d.clicks.Observe(ev) {
		d.Game.HandleEvent(input.Event{Kind: input.DoubleClick, X: ev.X, Y: ev.Y, Time: ev.Time})
	}
}

// PresentFunc shows a drawn frame.
type PresentFunc func(fb *render.Framebuffer, labels []render.Label) error

// maxDelta caps the step after a stall.
const maxDelta = 0.1

// RunFrames drives game at fps frames per second: drain pending events,
// tick, draw, present, then sleep out the rest of the frame. The game first
// receives a Resize with the framebuffer size. RunFrames returns when ctx is
// done, the game reports Done, events is closed or present fails.
func RunFrames(ctx context.Context, game Game, fps int, events <-chan input.Event, fb *render.Framebuffer, present PresentFunc) error {
	if fps <= 0 {
		fps = 30
	}
	d := &Dispatcher{Game: game, FB: fb}
	d.Dispatch(input.Event{Kind: input.Resize, Width: fb.Width, Height: fb.Height})
	frame := time.Second / time.Duration(fps)
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				d.Dispatch(ev)
			default:
				break drain
			}
		}
		if game.Done() {
			return nil
		}

		now := time.Now()
		dt := min(now.Sub(last).Seconds(), maxDelta)
		last = now

		game.Tick(dt)
		labels := game.Draw(fb)
		if err := present(fb, labels); err != nil {
			return err
		}
		if game.Done() {
			return nil
		}

		if elapsed := time.Since(now); elapsed < frame {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(frame - elapsed):
			}
		}
	}
}

// CellToPixel maps a terminal cell to the framebuffer pixel at its center.
// Each cell shows two pixels stacked vertically.
func CellToPixel(col, row int) (x, y float64) {
	return float64(col) + 0.5, float64(row*2) + 1
}
