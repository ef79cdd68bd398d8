package tcellterm

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/taigrr/noel/pkg/input"
	"github.com/taigrr/noel/pkg/render"
)

func TestTranslateMouse(t *testing.T) {
	var tr Translator
	steps := []struct {
		buttons tcell.ButtonMask
		want    input.Kind
	}{
		{tcell.ButtonNone, input.PointerMove},
		{tcell.Button1, input.PointerDown},
		{tcell.Button1, input.PointerMove},
		{tcell.ButtonNone, input.PointerUp},
		{tcell.Button2, input.PointerMove},
	}

	for i, s := range steps {
		got, ok := tr.Translate(tcell.NewEventMouse(2, 3, s.buttons, tcell.ModNone))
		if !ok {
			t.Fatalf("step %d: not translated", i)
		}
		if got.Kind != s.want {
			t.Errorf("step %d: got %v, want %v", i, got.Kind, s.want)
		}
		if got.X != 2.5 || got.Y != 7 {
			t.Errorf("step %d: position %v,%v, want 2.5,7", i, got.X, got.Y)
		}
	}
}

func TestTranslateResize(t *testing.T) {
	var tr Translator
	got, ok := tr.Translate(tcell.NewEventResize(100, 30))
	if !ok || got.Kind != input.Resize || got.Width != 100 || got.Height != 60 {
		t.Errorf("got %+v, %v", got, ok)
	}
}

func TestToTcell(t *testing.T) {
	if got := toTcell(render.Color{}); got != tcell.ColorReset {
		t.Errorf("transparent: got %v, want reset", got)
	}
	if got := toTcell(render.RGB(1, 2, 3)); got != tcell.NewRGBColor(1, 2, 3) {
		t.Errorf("got %v", got)
	}
}
