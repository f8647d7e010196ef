package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
)

// Framebuffer is the rasterizer's render target. In the terminal each cell
// shows two rows through the upper half-block character (▀).
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA // row-major, row 0 at the top
}

// NewFramebuffer allocates a transparent framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	if len(fb.Pixels) == 0 {
		return
	}
	fb.Pixels[0] = c
	for n := 1; n < len(fb.Pixels); n *= 2 {
		copy(fb.Pixels[n:], fb.Pixels[:n])
	}
}

// SetPixel writes c at (x, y); out-of-range writes are dropped.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y), or transparent black outside.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// DrawLine steps along the longer axis from (x0, y0) to (x1, y1),
// rounding the other coordinate.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		fb.SetPixel(x0, y0, c)
		return
	}
	dx := float64(x1-x0) / float64(steps)
	dy := float64(y1-y0) / float64(steps)
	x, y := float64(x0)+0.5, float64(y0)+0.5
	for range steps + 1 {
		fb.SetPixel(int(math.Floor(x)), int(math.Floor(y)), c)
		x += dx
		y += dy
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// PackRGBA writes the pixels into dst as tightly packed RGBA bytes, the
// layout of image.RGBA and of ffmpeg's rgba input. dst must hold
// 4*Width*Height bytes.
func (fb *Framebuffer) PackRGBA(dst []byte) {
	for i, c := range fb.Pixels {
		o := i * 4
		dst[o], dst[o+1], dst[o+2], dst[o+3] = c.R, c.G, c.B, c.A
	}
}

// ToImage copies the framebuffer into a new image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	fb.PackRGBA(img.Pix)
	return img
}

// EncodePNG writes the framebuffer as PNG.
func (fb *Framebuffer) EncodePNG(w io.Writer) error {
	return png.Encode(w, fb.ToImage())
}
