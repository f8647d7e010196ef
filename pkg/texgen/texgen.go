// Package texgen synthesizes the creature's seamless albedo, normal and
// roughness maps from a seeded noise field and a brick-offset scale grid.
package texgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/ouroboros/pkg/math3d"
	"github.com/taigrr/ouroboros/pkg/noise"
	"github.com/taigrr/ouroboros/pkg/render"
)

// MaxSize bounds each texture dimension.
const MaxSize = 8192

// ErrInvalidSize is returned when the requested raster cannot be allocated.
var ErrInvalidSize = errors.New("invalid texture size")

// Kind names one of the synthesized maps.
type Kind int

const (
	Albedo Kind = iota
	Normal
	Roughness
)

// Kinds lists every map in a Set.
var Kinds = []Kind{Albedo, Normal, Roughness}

func (k Kind) String() string {
	switch k {
	case Albedo:
		return "albedo"
	case Normal:
		return "normal"
	case Roughness:
		return "roughness"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Params controls synthesis. Colors are in sRGB.
type Params struct {
	Width  int
	Height int
	Seed   int64

	BaseColor     colorful.Color
	PatternColors [2]colorful.Color
	EdgeColor     colorful.Color

	// NoiseStrength scales the hue/saturation/lightness jitter.
	NoiseStrength float64
	// PatternScale multiplies every noise frequency.
	PatternScale float64

	// ScaleColumns and ScaleRows size the scale grid. Rows are rounded up
	// to an even count so the brick offset repeats across the seam.
	ScaleColumns int
	ScaleRows    int

	BaseRoughness  float64
	ScaleRoughness float64

	// Workers is the number of goroutines rows are spread over.
	// Zero uses GOMAXPROCS.
	Workers int
}

// DefaultParams returns the green-and-gold scale look of the logo.
func DefaultParams() Params {
	return Params{
		Width:          256,
		Height:         256,
		Seed:           7,
		BaseColor:      colorful.Color{R: 0.18, G: 0.42, B: 0.22},
		PatternColors:  [2]colorful.Color{{R: 0.1, G: 0.3, B: 0.16}, {R: 0.62, G: 0.55, B: 0.2}},
		EdgeColor:      colorful.Color{R: 0.9, G: 0.8, B: 0.45},
		NoiseStrength:  0.15,
		PatternScale:   1,
		ScaleColumns:   32,
		ScaleRows:      16,
		BaseRoughness:  0.65,
		ScaleRoughness: 0.35,
	}
}

// Set holds the three maps of one synthesis run. The textures are never
// modified after Synthesize returns.
type Set struct {
	Albedo    *render.Texture
	Normal    *render.Texture
	Roughness *render.Texture
}

// Map returns the texture of the given kind.
func (s *Set) Map(k Kind) *render.Texture {
	switch k {
	case Albedo:
		return s.Albedo
	case Normal:
		return s.Normal
	case Roughness:
		return s.Roughness
	default:
		return nil
	}
}

// EncodePNG writes one map as PNG.
func (s *Set) EncodePNG(k Kind, w io.Writer) error {
	tex := s.Map(k)
	if tex == nil {
		return fmt.Errorf("encode %s: no such map", k)
	}
	if err := tex.EncodePNG(w); err != nil {
		return fmt.Errorf("encode %s: %w", k, err)
	}
	return nil
}

// Synthesize generates the albedo, normal and roughness maps. Rows are
// computed in parallel; output depends only on p.
func Synthesize(ctx context.Context, p Params) (*Set, error) {
	if p.Width <= 0 || p.Height <= 0 || p.Width > MaxSize || p.Height > MaxSize {
		return nil, fmt.Errorf("synthesize %dx%d: %w", p.Width, p.Height, ErrInvalidSize)
	}
	p = p.normalized()

	s := &synth{p: p, field: noise.New(p.Seed)}
	set := &Set{
		Albedo:    render.NewTexture(p.Width, p.Height),
		Normal:    render.NewTexture(p.Width, p.Height),
		Roughness: render.NewTexture(p.Width, p.Height),
	}

	pool := worker.NewDynamicWorkerPool(p.Workers, p.Height, time.Second)
	var wg sync.WaitGroup
	for y := range p.Height {
		wg.Add(1)
		row := y
		pool.SubmitTask(worker.Task{
			ID: row,
			Do: func() (any, error) {
				defer wg.Done()
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				albedo, normal, rough := set.Albedo.Row(row), set.Normal.Row(row), set.Roughness.Row(row)
				for x := range p.Width {
					px := s.pixel(x, row)
					albedo[x], normal[x], rough[x] = px.albedo, px.normal, px.roughness
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	return set, nil
}

func (p Params) normalized() Params {
	if p.Workers <= 0 {
		p.Workers = runtime.GOMAXPROCS(0)
	}
	if p.PatternScale <= 0 {
		p.PatternScale = 1
	}
	p.ScaleColumns = max(p.ScaleColumns, 1)
	p.ScaleRows = max(p.ScaleRows, 2)
	if p.ScaleRows%2 != 0 {
		p.ScaleRows++
	}
	return p
}

type synth struct {
	p     Params
	field *noise.Field
}

type texel struct {
	albedo    render.Color
	normal    render.Color
	roughness render.Color
}

// pixel evaluates all three maps at pixel (x, y). Coordinates are wrapped
// first, so pixel(x+Width, y) is bit-identical to pixel(x, y).
func (s *synth) pixel(x, y int) texel {
	p := s.p
	w, h := float64(p.Width), float64(p.Height)
	u := math3d.Wrap(float64(x), w) / w
	v := math3d.Wrap(float64(y), h) / h

	// Pattern blotches and thin boundary lines
	n1 := s.field.Tileable(u, v, 3*p.PatternScale)
	n2 := s.field.Tileable(u+0.37, v+0.61, 7*p.PatternScale)
	patternMask := math3d.Smoothstep(-0.1, 0.35, n1)
	edgeMask := (1 - math3d.Smoothstep(0, 0.06, math.Abs(n2))) * 0.6

	pair := p.PatternColors[0].BlendRgb(p.PatternColors[1], 0.5+0.5*n2)
	col := p.BaseColor.BlendRgb(pair, patternMask).BlendRgb(p.EdgeColor, edgeMask)

	// Brick-offset scale grid
	sx := u * float64(p.ScaleColumns)
	sy := v * float64(p.ScaleRows)
	if int(math.Floor(sy))%2 == 1 {
		sx += 0.5
	}
	cellU, cellV := math3d.Fract(sx), math3d.Fract(sy)
	dx, dy := cellU-0.5, cellV-0.5
	dist := math.Sqrt(dx*dx+dy*dy) * 2
	scaleMask := 1 - math3d.Smoothstep(0.55, 0.95, dist)
	scaleEdge := math3d.Smoothstep(0.75, 1.0, dist)

	// Darken seams and jitter HSL
	n3 := s.field.Tileable(u+0.71, v+0.13, 16*p.PatternScale)
	hue, sat, light := col.Hsl()
	light *= 1 - 0.45*scaleEdge
	hue = math3d.Wrap(hue+n3*p.NoiseStrength*40, 360)
	sat = math3d.Clamp(sat+n3*p.NoiseStrength*0.5, 0, 1)
	light = math3d.Clamp(light+n3*p.NoiseStrength*0.25, 0, 1)
	r, g, b := colorful.Hsl(hue, sat, light).Clamped().RGB255()

	// Normal from the offset inside the scale
	nx := dx * scaleMask
	ny := dy * scaleMask
	nz := math.Sqrt(math.Max(0, 1-nx*nx-ny*ny))

	rough := encodeUnit(math3d.Mix(p.BaseRoughness, p.ScaleRoughness, scaleMask))

	return texel{
		albedo:    render.RGB(r, g, b),
		normal:    render.RGB(encodeSigned(nx), encodeSigned(ny), encodeSigned(nz)),
		roughness: render.RGB(rough, rough, rough),
	}
}

// encodeSigned maps [-1,1] to [0,255].
func encodeSigned(x float64) uint8 {
	return encodeUnit((x + 1) / 2)
}

func encodeUnit(x float64) uint8 {
	return uint8(math.Round(math3d.Clamp(x, 0, 1) * 255))
}
