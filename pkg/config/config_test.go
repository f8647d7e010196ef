package config

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/taigrr/ouroboros/pkg/render"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFile)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		check   func(t *testing.T, c *Config)
	}{
		{
			name: "overrides",
			body: `{"version": "1.2.0", "fps": 24, "background": "#102030",
				"palette": {"base": "#336633"},
				"tuning": {"baseSpeed": 0.2, "route": "/docker"},
				"texture": {"size": 128}}`,
			check: func(t *testing.T, c *Config) {
				if c.FPS != 24 || c.Tuning.BaseSpeed != 0.2 || c.Tuning.Route != "/docker" {
					t.Errorf("overrides not applied: %+v", c)
				}
				bg, err := c.BackgroundColor()
				if err != nil || bg != render.RGB(0x10, 0x20, 0x30) {
					t.Errorf("background = %v, %v", bg, err)
				}
				p, err := c.TextureParams()
				if err != nil {
					t.Fatalf("TextureParams: %v", err)
				}
				if p.Width != 128 || p.Height != 128 {
					t.Errorf("texture size = %dx%d", p.Width, p.Height)
				}
				if got := p.BaseColor.Hex(); got != "#336633" {
					t.Errorf("base color = %s", got)
				}
				// Untouched sections keep their defaults.
				if c.Tuning.WiggleRest != 0.04 {
					t.Errorf("wiggleRest = %v, want default", c.Tuning.WiggleRest)
				}
			},
		},
		{
			name:    "future major version",
			body:    `{"version": "2.0.0"}`,
			wantErr: ErrIncompatibleVersion,
		},
		{
			name:    "older major version",
			body:    `{"version": "0.9.0"}`,
			wantErr: ErrIncompatibleVersion,
		},
		{
			name:    "bad version",
			body:    `{"version": "one"}`,
			wantErr: errAny,
		},
		{
			name:    "bad color",
			body:    `{"version": "1.0.0", "palette": {"edge": "gold"}}`,
			wantErr: errAny,
		},
		{
			name:    "short cube map",
			body:    `{"version": "1.0.0", "cubeMap": ["a.png", "b.png"]}`,
			wantErr: errAny,
		},
		{
			name:    "zero base speed",
			body:    `{"version": "1.0.0", "tuning": {"baseSpeed": 0}}`,
			wantErr: errAny,
		},
		{
			name:    "negative camera distance",
			body:    `{"version": "1.0.0", "tuning": {"cameraHover": -1}}`,
			wantErr: errAny,
		},
		{
			name:    "malformed json",
			body:    `{"version": `,
			wantErr: errAny,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tc.body)
			cfg, err := Load(path)
			switch {
			case tc.wantErr == nil && err != nil:
				t.Fatalf("Load: %v", err)
			case tc.wantErr == errAny && err == nil:
				t.Fatal("Load succeeded, want error")
			case tc.wantErr != nil && tc.wantErr != errAny && !errors.Is(err, tc.wantErr):
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if tc.check != nil {
				tc.check(t, cfg)
			}
		})
	}
}

// errAny marks table cases that expect some error.
var errAny = errors.New("any error")

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), DefaultFile))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestSceneConfig(t *testing.T) {
	cfg := Default()
	cfg.CubeMap = []string{"px.png", "nx.png", "py.png", "ny.png", "pz.png", "nz.png"}
	cfg.Tuning.EyeReach = 2

	sc, err := cfg.SceneConfig(48, 32)
	if err != nil {
		t.Fatalf("SceneConfig: %v", err)
	}
	if sc.Width != 48 || sc.Height != 32 {
		t.Errorf("size = %dx%d", sc.Width, sc.Height)
	}
	if sc.CubeMap == nil || sc.CubeMap[4] != "pz.png" {
		t.Errorf("cube map = %v", sc.CubeMap)
	}
	if sc.Tuning.EyeReach != 2 {
		t.Errorf("eye reach = %v", sc.Tuning.EyeReach)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{"version": "1.0.0"}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := Watch(ctx, path, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// An invalid write is skipped, the valid one is delivered.
	writeConfig(t, dir, `{"version": "3.0.0"}`)
	writeConfig(t, dir, `{"version": "1.0.0", "tuning": {"baseSpeed": 0.5}}`)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-updates:
			if cfg.Tuning.BaseSpeed == 0.5 {
				cancel()
				for range updates {
				}
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
