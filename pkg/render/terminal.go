package render

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mattn/go-runewidth"
)

// HalfBlock is the glyph used for every cell: foreground paints the top
// pixel, background the bottom one.
const HalfBlock = "▀"

// Label is a line of text drawn over the framebuffer. X and Y are in
// framebuffer pixels; terminals place it at column X, row Y/2.
type Label struct {
	X, Y  int
	Text  string
	Color Color
}

// Cell returns the top and bottom pixel colors shown by terminal cell
// (col, row).
func (fb *Framebuffer) Cell(col, row int) (top, bottom Color) {
	return fb.GetPixel(col, row*2), fb.GetPixel(col, row*2+1)
}

// Draw converts the framebuffer to half-block cells on scr.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			top, bot := fb.Cell(col, row)
			scr.SetCell(col, row, &uv.Cell{
				Content: HalfBlock,
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(top),
					Bg: rgbaToColor(bot),
				},
			})
		}
	}
}

// DrawLabels writes text cells over an already drawn framebuffer. The cell
// background keeps the average of the two pixels underneath.
func (fb *Framebuffer) DrawLabels(scr uv.Screen, area uv.Rectangle, labels []Label) {
	fb.LabelCells(labels, area, func(col, row int, r rune, w int, fg, bg Color) {
		scr.SetCell(col, row, &uv.Cell{
			Content: string(r),
			Width:   w,
			Style:   uv.Style{Fg: fg, Bg: bg},
		})
	})
}

// LabelCells lays labels out on terminal cells inside area and calls set for
// each visible glyph with its width in columns.
func (fb *Framebuffer) LabelCells(labels []Label, area image.Rectangle, set func(col, row int, r rune, w int, fg, bg Color)) {
	for _, l := range labels {
		row := l.Y / 2
		if row < area.Min.Y || row >= area.Max.Y {
			continue
		}
		col := l.X
		for _, r := range l.Text {
			w := runewidth.RuneWidth(r)
			if w == 0 {
				continue
			}
			if col >= area.Min.X && col+w <= area.Max.X {
				top, bot := fb.Cell(col, row)
				set(col, row, r, w, l.Color, LerpColor(top, bot, 0.5))
			}
			col += w
		}
	}
}

// TextWidth returns the number of terminal columns s occupies.
func TextWidth(s string) int {
	return runewidth.StringWidth(s)
}

// rgbaToColor maps fully transparent pixels to the terminal default.
func rgbaToColor(c Color) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
