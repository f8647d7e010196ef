package render

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorGreen = color.RGBA{0, 255, 128, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// Draw paints the framebuffer into area as upper-half blocks: each cell
// shows two pixel rows, the top one as foreground and the bottom as
// background. Transparent pixels leave the terminal default color.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	cols := min(area.Dx(), fb.Width)
	for y := 0; y < area.Dy(); y++ {
		for x := 0; x < cols; x++ {
			scr.SetCell(area.Min.X+x, area.Min.Y+y, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, 2*y)),
					Bg: cellColor(fb.GetPixel(x, 2*y+1)),
				},
			})
		}
	}
}

func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Surface is a terminal screen that can push its cells to the terminal.
// *uv.Terminal satisfies it.
type Surface interface {
	uv.Screen
	Display() error
}

// TerminalRenderer places a square logo viewport in the middle of a terminal
// and maps mouse cells back into the viewport.
type TerminalRenderer struct {
	surface Surface
	area    image.Rectangle
}

// NewTerminalRenderer fits the largest square viewport (in pixels) into a
// width x height cell terminal, leaving the first and last rows for the HUD.
func NewTerminalRenderer(surface Surface, width, height int) *TerminalRenderer {
	rows := max(height-2, 1)
	// Two pixels per row, one per column
	side := min(width, rows*2)
	cols := side
	rows = (side + 1) / 2

	x0 := max((width-cols)/2, 0)
	y0 := max((height-rows)/2, 0)
	return &TerminalRenderer{
		surface: surface,
		area:    image.Rect(x0, y0, x0+cols, y0+rows),
	}
}

// FramebufferSize returns the framebuffer dimensions that fill the viewport.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.area.Dx(), t.area.Dy() * 2
}

// Area returns the viewport in terminal cells.
func (t *TerminalRenderer) Area() image.Rectangle {
	return t.area
}

// Render copies the framebuffer into the viewport cells.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.surface, uv.Rectangle(t.area))
}

// Flush pushes the changed cells to the terminal.
func (t *TerminalRenderer) Flush() error {
	return t.surface.Display()
}

// Pointer maps a terminal cell to normalized viewport coordinates in [0,1]²
// (Y down). inside reports whether the cell lies within the viewport.
func (t *TerminalRenderer) Pointer(col, row int) (x, y float64, inside bool) {
	w, h := t.area.Dx(), t.area.Dy()
	if w == 0 || h == 0 {
		return 0, 0, false
	}
	x = (float64(col-t.area.Min.X) + 0.5) / float64(w)
	y = (float64(row-t.area.Min.Y) + 0.5) / float64(h)
	inside = x >= 0 && x <= 1 && y >= 0 && y <= 1
	return x, y, inside
}
