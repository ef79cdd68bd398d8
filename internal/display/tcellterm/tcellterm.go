// Package tcellterm runs a game in the terminal through tcell. It is the
// fallback for terminals where ultraviolet misreads input.
package tcellterm

import (
	"context"
	"fmt"
	"image"

	"github.com/gdamore/tcell/v2"

	"github.com/taigrr/noel/internal/display"
	"github.com/taigrr/noel/pkg/input"
	"github.com/taigrr/noel/pkg/render"
)

const halfBlock = '▀'

func Run(ctx context.Context, game display.Game, opts display.Options) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()
	screen.Clear()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan input.Event, 64)
	go func() {
		var tr Translator
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			if _, ok := ev.(*tcell.EventResize); ok {
				screen.Sync()
			}
			e, ok := tr.Translate(ev)
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

	width, height := screen.Size()
	fb := render.NewFramebuffer(width, height*2)
	present := func(fb *render.Framebuffer, labels []render.Label) error {
		cols, rows := fb.Width, fb.Height/2
		for row := range rows {
			for col := range cols {
				top, bot := fb.Cell(col, row)
				screen.SetContent(col, row, halfBlock, nil, tcell.StyleDefault.Foreground(toTcell(top)).Background(toTcell(bot)))
			}
		}
		fb.LabelCells(labels, image.Rect(0, 0, cols, rows), func(col, row int, r rune, _ int, fg, bg render.Color) {
			screen.SetContent(col, row, r, nil, tcell.StyleDefault.Foreground(toTcell(fg)).Background(toTcell(bg)))
		})
		screen.Show()
		return nil
	}

	return display.RunFrames(ctx, game, opts.FPS, events, fb, present)
}

// Translator converts tcell events. tcell reports button state rather than
// transitions, so it remembers whether the primary button was held.
type Translator struct {
	down bool
}

func (tr *Translator) Translate(ev tcell.Event) (input.Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		w, h := ev.Size()
		return input.Event{Kind: input.Resize, Width: w, Height: h * 2}, true

	case *tcell.EventMouse:
		col, row := ev.Position()
		x, y := display.CellToPixel(col, row)
		e := input.Event{Kind: input.PointerMove, X: x, Y: y, Time: ev.When()}
		held := ev.Buttons()&tcell.Button1 != 0
		switch {
		case held && !tr.down:
			e.Kind = input.PointerDown
		case !held && tr.down:
			e.Kind = input.PointerUp
		}
		tr.down = held
		return e, true

	case *tcell.EventKey:
		e := input.Event{Kind: input.Key, Time: ev.When()}
		switch ev.Key() {
		case tcell.KeyCtrlC:
			e.Key = "ctrl+c"
		case tcell.KeyEscape:
			e.Key = "escape"
		case tcell.KeyEnter:
			e.Key = "enter"
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			e.Key = "backspace"
		case tcell.KeyRune:
			e.Text = string(ev.Rune())
			e.Key = e.Text
		default:
			return input.Event{}, false
		}
		return e, true
	}
	return input.Event{}, false
}

func toTcell(c render.Color) tcell.Color {
	if c.A == 0 {
		return tcell.ColorReset
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
