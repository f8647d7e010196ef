package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/taigrr/ouroboros/pkg/models"
)

func newExportCmd(g *globalFlags) *cobra.Command {
	var (
		out string
		at  float64
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the creature's current pose as a GLB model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), g, out, at)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "ouroboros.glb", "Output GLB")
	cmd.Flags().Float64Var(&at, "at", 0, "Animation time in seconds")
	return cmd
}

func runExport(ctx context.Context, g *globalFlags, out string, at float64) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger, logCloser, err := g.newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	scene, err := g.newScene(ctx, cfg, 1, 1, routeNavigator(nil), logger)
	if err != nil {
		return err
	}
	defer scene.Dispose()

	simulate(scene, at, false)
	if err := models.SaveGLB(out, scene.ExportNodes()); err != nil {
		return err
	}
	logger.Printf("wrote %s", out)
	return nil
}
