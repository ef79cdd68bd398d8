package display

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taigrr/noel/pkg/input"
	"github.com/taigrr/noel/pkg/render"
)

type recordingGame struct {
	events []input.Event
	ticks  int
	quitAt int
}

func (g *recordingGame) HandleEvent(ev input.Event) { g.events = append(g.events, ev) }
func (g *recordingGame) Tick(float64)               { g.ticks++ }
func (g *recordingGame) Done() bool                 { return g.quitAt > 0 && g.ticks >= g.quitAt }

func (g *recordingGame) Draw(fb *render.Framebuffer) []render.Label {
	fb.Clear(render.ColorWhite)
	return []render.Label{{Text: "hi"}}
}

func TestDispatcherDoubleClick(t *testing.T) {
	g := &recordingGame{}
	d := &Dispatcher{Game: g}
	t0 := time.Now()

	d.Dispatch(input.Event{Kind: input.PointerDown, X: 5, Y: 5, Time: t0})
	d.Dispatch(input.Event{Kind: input.PointerUp, X: 5, Y: 5, Time: t0.Add(50 * time.Millisecond)})
	d.Dispatch(input.Event{Kind: input.PointerDown, X: 6, Y: 5, Time: t0.Add(150 * time.Millisecond)})

	kinds := make([]input.Kind, len(g.events))
	for i, ev := range g.events {
		kinds[i] = ev.Kind
	}
	want := []input.Kind{input.PointerDown, input.PointerUp, input.PointerDown, input.DoubleClick}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestDispatcherResize(t *testing.T) {
	g := &recordingGame{}
	fb := render.NewFramebuffer(4, 4)
	d := &Dispatcher{Game: g, FB: fb}

	d.Dispatch(input.Event{Kind: input.Resize, Width: 0, Height: 10})
	if fb.Width != 1 || fb.Height != 10 {
		t.Errorf("fb = %dx%d, want 1x10", fb.Width, fb.Height)
	}
	if ev := g.events[0]; ev.Width != 1 || ev.Height != 10 {
		t.Errorf("event size = %dx%d, want clamped 1x10", ev.Width, ev.Height)
	}
	if g.events[0].Time.IsZero() {
		t.Error("event time not stamped")
	}
}

func TestRunFrames(t *testing.T) {
	g := &recordingGame{quitAt: 3}
	events := make(chan input.Event, 4)
	events <- input.Event{Kind: input.Key, Key: "g"}
	fb := render.NewFramebuffer(4, 4)

	presented := 0
	err := RunFrames(context.Background(), g, 240, events, fb, func(fb *render.Framebuffer, labels []render.Label) error {
		presented++
		if len(labels) != 1 || fb.GetPixel(0, 0) != render.ColorWhite {
			t.Errorf("frame %d: labels %v pixel %v", presented, labels, fb.GetPixel(0, 0))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunFrames: %v", err)
	}
	if g.ticks != 3 || presented != 3 {
		t.Errorf("ticks %d presented %d, want 3 each", g.ticks, presented)
	}
	if len(g.events) != 2 || g.events[0].Kind != input.Resize || g.events[0].Width != 4 || g.events[1].Key != "g" {
		t.Errorf("events = %v", g.events)
	}
}

func TestRunFramesStops(t *testing.T) {
	tests := []struct {
		name    string
		run     func(events chan input.Event) (context.Context, PresentFunc)
		wantErr bool
	}{
		{
			name: "closed events",
			run: func(events chan input.Event) (context.Context, PresentFunc) {
				close(events)
				return context.Background(), func(*render.Framebuffer, []render.Label) error { return nil }
			},
		},
		{
			name: "cancelled",
			run: func(chan input.Event) (context.Context, PresentFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, func(*render.Framebuffer, []render.Label) error { return nil }
			},
		},
		{
			name: "present error",
			run: func(chan input.Event) (context.Context, PresentFunc) {
				return context.Background(), func(*render.Framebuffer, []render.Label) error { return errors.New("broken pipe") }
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := make(chan input.Event)
			ctx, present := tt.run(events)
			done := make(chan error, 1)
			go func() {
				done <- RunFrames(ctx, &recordingGame{}, 120, events, render.NewFramebuffer(2, 2), present)
			}()
			select {
			case err := <-done:
				if (err != nil) != tt.wantErr {
					t.Errorf("got error %v, wantErr %v", err, tt.wantErr)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("RunFrames did not return")
			}
		})
	}
}

func TestCellToPixel(t *testing.T) {
	x, y := CellToPixel(3, 4)
	if x != 3.5 || y != 9 {
		t.Errorf("got %v, %v; want 3.5, 9", x, y)
	}
}
