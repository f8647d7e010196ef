package render

import (
	"image/color"
	"testing"
)

func TestFramebufferClear(t *testing.T) {
	for _, n := range []int{1, 3, 7, 64} {
		fb := NewFramebuffer(n, 3)
		fb.Clear(ColorGreen)
		for i, c := range fb.Pixels {
			if c != ColorGreen {
				t.Fatalf("%dx3: pixel %d = %v", n, i, c)
			}
		}
	}
	NewFramebuffer(0, 0).Clear(ColorWhite)
}

func TestDrawLineEndpoints(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           int // pixels set
	}{
		{"point", 3, 3, 3, 3, 1},
		{"horizontal", 0, 2, 7, 2, 8},
		{"vertical", 4, 7, 4, 0, 8},
		{"diagonal", 0, 0, 5, 5, 6},
		{"steep", 1, 0, 3, 7, 8},
		{"clipped", -4, 0, 3, 0, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(8, 8)
			fb.DrawLine(tc.x0, tc.y0, tc.x1, tc.y1, ColorWhite)
			set := 0
			for _, c := range fb.Pixels {
				if c == ColorWhite {
					set++
				}
			}
			if set != tc.want {
				t.Errorf("set %d pixels, want %d", set, tc.want)
			}
			if tc.x1 >= 0 && fb.GetPixel(tc.x1, tc.y1) != ColorWhite {
				t.Errorf("end point (%d,%d) not drawn", tc.x1, tc.y1)
			}
		})
	}
}

func TestToImage(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	c := color.RGBA{R: 1, G: 2, B: 3, A: 4}
	fb.SetPixel(2, 1, c)
	img := fb.ToImage()
	if got := img.RGBAAt(2, 1); got != c {
		t.Errorf("RGBAAt(2,1) = %v, want %v", got, c)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("RGBAAt(0,0) = %v", got)
	}
}
