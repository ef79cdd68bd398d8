package render

import (
	"image"
	"testing"
)

func TestLabelCells(t *testing.T) {
	fb := NewFramebuffer(10, 4)
	fb.Clear(RGB(0, 0, 100))
	fb.SetPixel(1, 3, RGB(0, 0, 200))

	type cell struct {
		col, row, w int
		r           rune
	}
	var got []cell
	var bg Color
	labels := []Label{
		{X: 0, Y: 3, Text: "a圣b", Color: ColorWhite},
		{X: 8, Y: 0, Text: "xyz"},   // clipped on the right
		{X: 0, Y: 40, Text: "gone"}, // below the area
	}
	fb.LabelCells(labels, image.Rect(0, 0, 10, 2), func(col, row int, r rune, w int, fg, b Color) {
		got = append(got, cell{col, row, w, r})
		if col == 1 && row == 1 {
			bg = b
		}
	})

	want := []cell{{0, 1, 1, 'a'}, {1, 1, 2, '圣'}, {3, 1, 1, 'b'}, {8, 0, 1, 'x'}, {9, 0, 1, 'y'}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if bg != RGB(0, 0, 150) {
		t.Errorf("background = %v, want average of the two pixels", bg)
	}
}

func TestTextWidth(t *testing.T) {
	if got := TextWidth("圣诞快乐"); got != 8 {
		t.Errorf("got %d, want 8", got)
	}
}
