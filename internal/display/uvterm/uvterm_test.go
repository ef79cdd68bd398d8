package uvterm

import (
	"testing"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/noel/pkg/input"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		ev   any
		want input.Event
		ok   bool
	}{
		{"resize", uv.WindowSizeEvent{Width: 80, Height: 24}, input.Event{Kind: input.Resize, Width: 80, Height: 48}, true},
		{"click", uv.MouseClickEvent{X: 3, Y: 4}, input.Event{Kind: input.PointerDown, X: 3.5, Y: 9}, true},
		{"motion", uv.MouseMotionEvent{X: 0, Y: 0}, input.Event{Kind: input.PointerMove, X: 0.5, Y: 1}, true},
		{"release", uv.MouseReleaseEvent{X: 10, Y: 1}, input.Event{Kind: input.PointerUp, X: 10.5, Y: 3}, true},
		{"unknown", "paste", input.Event{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(tt.ev)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
