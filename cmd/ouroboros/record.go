package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/taigrr/ouroboros/pkg/record"
)

func newRecordCmd(g *globalFlags) *cobra.Command {
	var (
		opts     record.Options
		duration float64
		hover    bool
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Encode the animation to a video file with ffmpeg",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecord(cmd.Context(), g, opts, duration, hover)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.Path, "out", "o", "ouroboros.mp4", "Output video")
	f.IntVar(&opts.Width, "size", 512, "Frame size in pixels (even)")
	f.IntVar(&opts.FPS, "fps", 0, "Frames per second (0 uses the config value)")
	f.StringVar(&opts.Codec, "codec", "h264", "Video codec: h264 or hevc")
	f.StringVar(&opts.Bitrate, "bitrate", "", "Target bitrate, e.g. 8M")
	f.StringVar(&opts.FFmpegPath, "ffmpeg", "", "Path to ffmpeg executable")
	f.Float64Var(&duration, "duration", 0, "Seconds to record (0 records one lap of the path)")
	f.BoolVar(&hover, "hover", false, "Record with the pointer over the logo")
	return cmd
}

func runRecord(ctx context.Context, g *globalFlags, opts record.Options, duration float64, hover bool) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger, logCloser, err := g.newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	opts.Height = opts.Width
	if opts.FPS <= 0 {
		opts.FPS = cfg.FPS
	}
	t := cfg.CreatureTuning()
	if duration <= 0 {
		duration = 1 / t.BaseSpeed
	}

	scene, err := g.newScene(ctx, cfg, opts.Width, opts.Height, routeNavigator(nil), logger)
	if err != nil {
		return err
	}
	defer scene.Dispose()

	rec, err := record.Start(opts)
	if err != nil {
		return err
	}
	if hover {
		simulate(scene, 0, true)
	}

	dt := 1 / float64(opts.FPS)
	frames := int(duration * float64(opts.FPS))
	for i := 0; i < frames; i++ {
		if ctx.Err() != nil {
			break
		}
		scene.Frame(dt)
		if err := rec.WriteFrame(scene.Framebuffer()); err != nil {
			return errors.Join(err, rec.Close())
		}
	}
	return rec.Close()
}
