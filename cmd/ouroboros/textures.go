package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taigrr/ouroboros/pkg/texgen"
)

func newTexturesCmd(g *globalFlags) *cobra.Command {
	var (
		dir  string
		size int
		seed int64
	)
	cmd := &cobra.Command{
		Use:   "textures",
		Short: "Synthesize the albedo, normal and roughness maps as PNGs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var override *int64
			if cmd.Flags().Changed("seed") {
				override = &seed
			}
			return runTextures(cmd.Context(), g, dir, size, override)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&dir, "out", "o", ".", "Output directory")
	f.IntVar(&size, "size", 0, "Texture size (0 uses the config value)")
	f.Int64Var(&seed, "seed", 0, "Noise seed (default from config)")
	return cmd
}

func runTextures(ctx context.Context, g *globalFlags, dir string, size int, seed *int64) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger, logCloser, err := g.newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	p, err := cfg.TextureParams()
	if err != nil {
		return err
	}
	if size > 0 {
		p.Width, p.Height = size, size
	}
	if seed != nil {
		p.Seed = *seed
	}

	set, err := texgen.Synthesize(ctx, p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, k := range texgen.Kinds {
		path := filepath.Join(dir, k.String()+".png")
		if err := writeMap(set, k, path); err != nil {
			return err
		}
		logger.Printf("wrote %s", path)
	}
	return nil
}

func writeMap(set *texgen.Set, k texgen.Kind, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", k, err)
	}
	if err := set.EncodePNG(k, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
