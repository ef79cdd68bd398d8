// Package uvterm runs a game in the terminal through ultraviolet, drawing
// two framebuffer pixels per cell.
package uvterm

import (
	"context"
	"fmt"
	"image"
	"os"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/noel/internal/display"
	"github.com/taigrr/noel/pkg/input"
	"github.com/taigrr/noel/pkg/render"
)

const (
	mouseOn  = "\x1b[?1003h\x1b[?1006h" // any-event tracking, SGR coordinates
	mouseOff = "\x1b[?1003l\x1b[?1006l"
)

// Run takes over the terminal until ctx is done or the game finishes.
func Run(ctx context.Context, game display.Game, opts display.Options) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	fmt.Fprint(os.Stdout, mouseOn)

	defer func() {
		fmt.Fprint(os.Stdout, mouseOff)
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan input.Event, 64)
	go func() {
		for ev := range term.Events() {
			e, ok := Translate(ev)
			if !ok {
				continue
			}
			select {
			case events <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	fb := render.NewFramebuffer(width, height*2)
	cols, rows := width, height
	present := func(fb *render.Framebuffer, labels []render.Label) error {
		if w, h := fb.Width, fb.Height/2; w != cols || h != rows {
			cols, rows = w, h
			term.Erase()
			term.Resize(cols, rows)
		}
		area := image.Rect(0, 0, cols, rows)
		fb.Draw(term, area)
		fb.DrawLabels(term, area, labels)
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}
		return nil
	}

	return display.RunFrames(ctx, game, opts.FPS, events, fb, present)
}

// Translate converts an ultraviolet event. Pointer positions become the
// center of the cell in framebuffer pixels; sizes become framebuffer sizes.
func Translate(ev any) (input.Event, bool) {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		return input.Event{Kind: input.Resize, Width: ev.Width, Height: ev.Height * 2}, true

	case uv.MouseClickEvent:
		x, y := display.CellToPixel(ev.X, ev.Y)
		return input.Event{Kind: input.PointerDown, X: x, Y: y}, true
	case uv.MouseMotionEvent:
		x, y := display.CellToPixel(ev.X, ev.Y)
		return input.Event{Kind: input.PointerMove, X: x, Y: y}, true
	case uv.MouseReleaseEvent:
		x, y := display.CellToPixel(ev.X, ev.Y)
		return input.Event{Kind: input.PointerUp, X: x, Y: y}, true

	case uv.KeyPressEvent:
		e := input.Event{Kind: input.Key, Text: ev.Text}
		switch {
		case ev.MatchString("ctrl+c"):
			e.Key = "ctrl+c"
		case ev.MatchString("escape"):
			e.Key = "escape"
		case ev.MatchString("enter"):
			e.Key = "enter"
		case ev.MatchString("backspace"):
			e.Key = "backspace"
		case ev.Text != "":
			e.Key = ev.Text
		default:
			return input.Event{}, false
		}
		return e, true
	}
	return input.Event{}, false
}
