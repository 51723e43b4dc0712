package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the screen.
// Each terminal row shows two framebuffer rows using the upper half block with
// fg=top pixel and bg=bottom pixel.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1
		if topY >= fb.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: fb.GetPixel(x, topY).RGBA(),
					Bg: fb.cellBackground(x, botY),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// cellBackground returns the bottom half color, or nil past the last row so
// odd heights leave the terminal background showing.
func (fb *Framebuffer) cellBackground(x, y int) color.Color {
	if y >= fb.Height {
		return nil
	}
	return fb.GetPixel(x, y).RGBA()
}

// TerminalSize returns the framebuffer size that fills cols×rows terminal cells.
func TerminalSize(cols, rows int) (width, height int) {
	return max(cols, 1), max(rows*2, 2)
}

// TerminalDisplay presents frames on an ultraviolet terminal.
type TerminalDisplay struct {
	term *uv.Terminal
}

// NewTerminalDisplay creates a display drawing to term. The caller owns the
// terminal's lifecycle (Start, alt screen, Shutdown).
func NewTerminalDisplay(term *uv.Terminal) *TerminalDisplay {
	return &TerminalDisplay{term: term}
}

// Present draws fb over the whole terminal and flushes it.
func (d *TerminalDisplay) Present(fb *Framebuffer) error {
	fb.Draw(d.term, d.term.Bounds())
	return d.term.Display()
}
