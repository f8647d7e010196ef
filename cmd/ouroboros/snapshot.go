package main

import (
	"context"
	"fmt"
	"image/png"
	"os"

	"github.com/nfnt/resize"
	"github.com/spf13/cobra"

	"github.com/taigrr/ouroboros/pkg/creature"
)

// simulateStep is the fixed timestep used for offline rendering.
const simulateStep = 1.0 / 60

// simulate advances scene by seconds in fixed steps, hovering at the
// center of the logo when hover is set.
func simulate(scene *creature.Scene, seconds float64, hover bool) {
	if ctrl := scene.Controller(); ctrl != nil && hover {
		ctrl.PointerEnter()
		ctrl.PointerMove(0.5, 0.5)
	}
	for t := 0.0; t < seconds; t += simulateStep {
		scene.Step(simulateStep)
	}
}

func newSnapshotCmd(g *globalFlags) *cobra.Command {
	var (
		out         string
		size        int
		supersample int
		at          float64
		hover       bool
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render one frame to a PNG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshot(cmd.Context(), g, out, size, supersample, at, hover)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "ouroboros.png", "Output PNG")
	f.IntVar(&size, "size", 512, "Output size in pixels")
	f.IntVar(&supersample, "supersample", 2, "Render at this multiple of size and downscale")
	f.Float64Var(&at, "at", 2, "Animation time in seconds")
	f.BoolVar(&hover, "hover", false, "Render with the pointer over the logo")
	return cmd
}

func runSnapshot(ctx context.Context, g *globalFlags, out string, size, supersample int, at float64, hover bool) error {
	if size <= 0 || supersample <= 0 {
		return fmt.Errorf("snapshot size %d x%d: must be positive", size, supersample)
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger, logCloser, err := g.newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	full := size * supersample
	scene, err := g.newScene(ctx, cfg, full, full, routeNavigator(nil), logger)
	if err != nil {
		return err
	}
	defer scene.Dispose()

	simulate(scene, at, hover)
	scene.Draw()

	img := resize.Resize(uint(size), uint(size), scene.Framebuffer().ToImage(), resize.Lanczos3)

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	logger.Printf("wrote %s (%dx%d, %dx supersampled)", out, size, size, supersample)
	return nil
}
