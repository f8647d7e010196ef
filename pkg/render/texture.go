package render

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/taigrr/ouroboros/pkg/math3d"
)

// Texture is a row-major RGBA8 raster sampled with v = 0 on the top row,
// the same orientation GL sees after an unflipped upload. Synthesized maps
// are never written again once a program holds them.
type Texture struct {
	Width, Height int
	Pixels        []Color

	// Clamp pins coordinates to the edge instead of tiling. Cube faces set it.
	Clamp bool
	// Nearest disables bilinear filtering.
	Nearest bool
}

// NewTexture allocates a tiling, bilinear texture filled with transparent black.
func NewTexture(width, height int) *Texture {
	return &Texture{Width: width, Height: height, Pixels: make([]Color, width*height)}
}

// LoadTexture decodes a PNG or JPEG file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage converts any image to a texture.
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	tex := NewTexture(b.Dx(), b.Dy())
	for i := range tex.Pixels {
		p := rgba.Pix[i*4 : i*4+4 : i*4+4]
		tex.Pixels[i] = Color{R: p[0], G: p[1], B: p[2], A: p[3]}
	}
	return tex
}

func (t *Texture) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < t.Width && y < t.Height
}

// SetPixel ignores writes outside the raster.
func (t *Texture) SetPixel(x, y int, c Color) {
	if t.inside(x, y) {
		t.Pixels[y*t.Width+x] = c
	}
}

// GetPixel returns transparent black outside the raster.
func (t *Texture) GetPixel(x, y int) Color {
	if !t.inside(x, y) {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Row returns the pixels of row y. Synthesis writes rows in parallel through
// this slice; rows never overlap.
func (t *Texture) Row(y int) []Color {
	return t.Pixels[y*t.Width : (y+1)*t.Width]
}

// Sample reads the texture at (u, v), wrapping or clamping per Clamp.
func (t *Texture) Sample(u, v float64) Color {
	if len(t.Pixels) == 0 {
		return Color{}
	}
	if t.Clamp {
		u, v = math3d.Clamp(u, 0, 1), math3d.Clamp(v, 0, 1)
	} else {
		u, v = math3d.Fract(u), math3d.Fract(v)
	}

	fx := u * float64(t.Width)
	fy := v * float64(t.Height)
	if t.Nearest {
		return t.GetPixel(min(int(fx), t.Width-1), min(int(fy), t.Height-1))
	}

	// Texel centres sit at half-integers.
	fx -= 0.5
	fy -= 0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	tx, ty := fx-x0, fy-y0

	xa, xb := t.texel(int(x0), t.Width), t.texel(int(x0)+1, t.Width)
	ya, yb := t.texel(int(y0), t.Height), t.texel(int(y0)+1, t.Height)
	top := mixColor(t.Pixels[ya*t.Width+xa], t.Pixels[ya*t.Width+xb], tx)
	bottom := mixColor(t.Pixels[yb*t.Width+xa], t.Pixels[yb*t.Width+xb], tx)
	return mixColor(top, bottom, ty)
}

// texel folds an integer coordinate back into [0, size).
func (t *Texture) texel(i, size int) int {
	if t.Clamp {
		return max(0, min(i, size-1))
	}
	i %= size
	if i < 0 {
		i += size
	}
	return i
}

// SampleVec samples the texture and returns RGB in [0,1] for shading math.
func (t *Texture) SampleVec(u, v float64) math3d.Vec3 {
	c := t.Sample(u, v)
	return math3d.V3(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

func mixColor(a, b Color, t float64) Color {
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// ToImage copies the texture into an image.RGBA.
func (t *Texture) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for i, c := range t.Pixels {
		copy(img.Pix[i*4:], []byte{c.R, c.G, c.B, c.A})
	}
	return img
}

// EncodePNG writes the texture as PNG.
func (t *Texture) EncodePNG(w io.Writer) error {
	return png.Encode(w, t.ToImage())
}
