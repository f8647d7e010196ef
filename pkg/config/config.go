// Package config loads ouroboros.json: palette, texture and tuning
// overrides, environment map faces and viewer defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/ouroboros/pkg/creature"
	"github.com/taigrr/ouroboros/pkg/render"
	"github.com/taigrr/ouroboros/pkg/texgen"
)

// DefaultFile is the config file name looked up by the CLI.
const DefaultFile = "ouroboros.json"

// SchemaConstraint is the range of schema versions this build reads.
const SchemaConstraint = "^1"

// ErrIncompatibleVersion is returned for files outside SchemaConstraint.
var ErrIncompatibleVersion = errors.New("incompatible config version")

// Palette holds hex colors such as "#2e6b38".
type Palette struct {
	Base     string    `json:"base"`
	Patterns [2]string `json:"patterns"`
	Edge     string    `json:"edge"`
}

// Texture overrides texgen.Params.
type Texture struct {
	Size           int     `json:"size"`
	Seed           int64   `json:"seed"`
	NoiseStrength  float64 `json:"noiseStrength"`
	PatternScale   float64 `json:"patternScale"`
	ScaleColumns   int     `json:"scaleColumns"`
	ScaleRows      int     `json:"scaleRows"`
	BaseRoughness  float64 `json:"baseRoughness"`
	ScaleRoughness float64 `json:"scaleRoughness"`
}

// Tuning overrides the cosmetic parts of creature.Tuning.
type Tuning struct {
	BaseSpeed        float64 `json:"baseSpeed"`
	HoverSpeedFactor float64 `json:"hoverSpeedFactor"`
	ClickSpeedFactor float64 `json:"clickSpeedFactor"`
	CameraRest       float64 `json:"cameraRest"`
	CameraHover      float64 `json:"cameraHover"`
	WiggleRest       float64 `json:"wiggleRest"`
	WiggleHover      float64 `json:"wiggleHover"`
	WiggleSpeed      float64 `json:"wiggleSpeed"`
	PulseAmplitude   float64 `json:"pulseAmplitude"`
	EnvMapIntensity  float64 `json:"envMapIntensity"`
	EyeReach         float64 `json:"eyeReach"`
	Route            string  `json:"route"`
	Seed             uint64  `json:"seed"`
}

// Config is the decoded file.
type Config struct {
	Version    string   `json:"version"`
	FPS        int      `json:"fps"`
	Background string   `json:"background"`
	Palette    Palette  `json:"palette"`
	Texture    Texture  `json:"texture"`
	Tuning     Tuning   `json:"tuning"`
	CubeMap    []string `json:"cubeMap,omitempty"` // +x, -x, +y, -y, +z, -z

	ContentRoot string `json:"contentRoot,omitempty"`
	ContentURL  string `json:"contentURL,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := texgen.DefaultParams()
	t := creature.DefaultTuning()
	return &Config{
		Version:    "1.0.0",
		FPS:        30,
		Background: "#000000",
		Palette: Palette{
			Base:     p.BaseColor.Hex(),
			Patterns: [2]string{p.PatternColors[0].Hex(), p.PatternColors[1].Hex()},
			Edge:     p.EdgeColor.Hex(),
		},
		Texture: Texture{
			Size:           p.Width,
			Seed:           p.Seed,
			NoiseStrength:  p.NoiseStrength,
			PatternScale:   p.PatternScale,
			ScaleColumns:   p.ScaleColumns,
			ScaleRows:      p.ScaleRows,
			BaseRoughness:  p.BaseRoughness,
			ScaleRoughness: p.ScaleRoughness,
		},
		Tuning: Tuning{
			BaseSpeed:        t.BaseSpeed,
			HoverSpeedFactor: t.HoverSpeedFactor,
			ClickSpeedFactor: t.ClickSpeedFactor,
			CameraRest:       t.CameraRest,
			CameraHover:      t.CameraHover,
			WiggleRest:       t.WiggleRest,
			WiggleHover:      t.WiggleHover,
			WiggleSpeed:      t.WiggleSpeed,
			PulseAmplitude:   t.PulseAmplitude,
			EnvMapIntensity:  t.EnvMapIntensity,
			EyeReach:         t.EyeReach,
			Route:            t.Route,
			Seed:             t.Seed,
		},
	}
}

// Load reads path over the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, returning the defaults if it does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks the schema version, colors and cube map list.
func (c *Config) Validate() error {
	v, err := semver.NewVersion(c.Version)
	if err != nil {
		return fmt.Errorf("version %q: %w", c.Version, err)
	}
	constraint, err := semver.NewConstraint(SchemaConstraint)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("version %s does not satisfy %s: %w", v, SchemaConstraint, ErrIncompatibleVersion)
	}

	if _, err := c.TextureParams(); err != nil {
		return err
	}
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	if n := len(c.CubeMap); n != 0 && n != 6 {
		return fmt.Errorf("cubeMap lists %d faces, want 6", n)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps %d must be positive", c.FPS)
	}
	return c.Tuning.validate()
}

// validate rejects tuning that would stall or invert the animation.
func (t Tuning) validate() error {
	if !(t.BaseSpeed > 0) {
		return fmt.Errorf("tuning.baseSpeed %v must be positive", t.BaseSpeed)
	}
	if !(t.HoverSpeedFactor > 0) || !(t.ClickSpeedFactor > 0) {
		return fmt.Errorf("tuning speed factors %v, %v must be positive", t.HoverSpeedFactor, t.ClickSpeedFactor)
	}
	if !(t.CameraRest > 0) || !(t.CameraHover > 0) {
		return fmt.Errorf("tuning camera distances %v, %v must be positive", t.CameraRest, t.CameraHover)
	}
	return nil
}

// TextureParams converts the palette and texture sections.
func (c *Config) TextureParams() (texgen.Params, error) {
	p := texgen.DefaultParams()
	var err error
	if p.BaseColor, err = parseHex("palette.base", c.Palette.Base); err != nil {
		return p, err
	}
	for i, h := range c.Palette.Patterns {
		if p.PatternColors[i], err = parseHex(fmt.Sprintf("palette.patterns[%d]", i), h); err != nil {
			return p, err
		}
	}
	if p.EdgeColor, err = parseHex("palette.edge", c.Palette.Edge); err != nil {
		return p, err
	}

	t := c.Texture
	p.Width, p.Height = t.Size, t.Size
	p.Seed = t.Seed
	p.NoiseStrength = t.NoiseStrength
	p.PatternScale = t.PatternScale
	p.ScaleColumns = t.ScaleColumns
	p.ScaleRows = t.ScaleRows
	p.BaseRoughness = t.BaseRoughness
	p.ScaleRoughness = t.ScaleRoughness
	return p, nil
}

// CreatureTuning applies the tuning section over creature.DefaultTuning.
func (c *Config) CreatureTuning() creature.Tuning {
	t := creature.DefaultTuning()
	o := c.Tuning
	t.BaseSpeed = o.BaseSpeed
	t.HoverSpeedFactor = o.HoverSpeedFactor
	t.ClickSpeedFactor = o.ClickSpeedFactor
	t.CameraRest = o.CameraRest
	t.CameraHover = o.CameraHover
	t.WiggleRest = o.WiggleRest
	t.WiggleHover = o.WiggleHover
	t.WiggleSpeed = o.WiggleSpeed
	t.PulseAmplitude = o.PulseAmplitude
	t.EnvMapIntensity = o.EnvMapIntensity
	t.EyeReach = o.EyeReach
	t.Route = o.Route
	t.Seed = o.Seed
	return t
}

// BackgroundColor parses the background hex color.
func (c *Config) BackgroundColor() (render.Color, error) {
	col, err := parseHex("background", c.Background)
	if err != nil {
		return render.ColorBlack, err
	}
	r, g, b := col.RGB255()
	return render.RGB(r, g, b), nil
}

// SceneConfig builds a creature scene description of the given size.
func (c *Config) SceneConfig(width, height int) (creature.SceneConfig, error) {
	sc := creature.DefaultSceneConfig()
	sc.Width, sc.Height = width, height

	var err error
	if sc.Texture, err = c.TextureParams(); err != nil {
		return sc, err
	}
	if sc.Background, err = c.BackgroundColor(); err != nil {
		return sc, err
	}
	sc.Tuning = c.CreatureTuning()
	if len(c.CubeMap) == 6 {
		var faces [6]string
		copy(faces[:], c.CubeMap)
		sc.CubeMap = &faces
	}
	return sc, nil
}

func parseHex(field, s string) (colorful.Color, error) {
	col, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%s: %w", field, err)
	}
	return col, nil
}
