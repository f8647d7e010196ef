package main

import (
	"context"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/taigrr/ouroboros/pkg/glview"
)

// GLFW must run on the main thread.
func init() {
	runtime.LockOSThread()
}

func newGPUCmd(g *globalFlags) *cobra.Command {
	var opts glview.Options
	cmd := &cobra.Command{
		Use:   "gpu",
		Short: "Show the animated logo in an OpenGL window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGPU(cmd.Context(), g, opts)
		},
	}
	cmd.Flags().IntVar(&opts.Width, "width", 640, "Window width")
	cmd.Flags().IntVar(&opts.Height, "height", 640, "Window height")
	cmd.Flags().BoolVar(&opts.VSync, "vsync", true, "Wait for vertical sync")
	return cmd
}

func runGPU(ctx context.Context, g *globalFlags, opts glview.Options) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger, logCloser, err := g.newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	// The software framebuffer is unused here; keep it small.
	scene, err := g.newScene(ctx, cfg, 1, 1, routeNavigator(nil), logger)
	if err != nil {
		return err
	}

	if err := glview.Init(); err != nil {
		scene.Dispose()
		return err
	}
	defer glview.Terminate()
	// Dispose closes the view, so it has to run before Terminate.
	defer scene.Dispose()

	view, err := glview.Open(scene, opts, logger)
	if err != nil {
		return err
	}
	return view.Run(ctx)
}
