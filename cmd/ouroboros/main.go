// ouroboros - procedural snake logo renderer
//
// Draws the animated creature in the terminal or an OpenGL window and
// exports stills, textures, models and video of it.
//
// Terminal controls (view):
//
//	Mouse over  - Hover: the creature slows, calms and leans in
//	Click       - Nod and navigate
//	X           - Toggle wireframe mode (x-ray)
//	L           - Light positioning mode (move mouse, click to set, Esc to cancel)
//	?           - Toggle HUD overlay
//	Esc         - Quit (or cancel light mode)
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/ouroboros/pkg/config"
)

var version = "dev"

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	bg         string
	texture    string
	logPath    string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "ouroboros",
		Short:         "Procedural snake logo renderer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", config.DefaultFile, "Config file (JSON)")
	pf.StringVar(&g.bg, "bg", "", "Background color (R,G,B or #rrggbb)")
	pf.StringVar(&g.texture, "texture", "", "Path to an albedo image replacing the synthesized scales")
	pf.StringVar(&g.logPath, "log", "", "Write log output to this file")

	root.AddCommand(
		newViewCmd(g),
		newGPUCmd(g),
		newSnapshotCmd(g),
		newTexturesCmd(g),
		newExportCmd(g),
		newRecordCmd(g),
		newLessonCmd(g),
	)
	return root
}

// loadConfig reads the config file and applies flag overrides.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.bg != "" {
		hex, err := parseBackground(g.bg)
		if err != nil {
			return nil, err
		}
		cfg.Background = hex
	}
	return cfg, nil
}

// parseBackground accepts "R,G,B" as well as a hex color.
func parseBackground(s string) (string, error) {
	if strings.HasPrefix(s, "#") {
		return s, nil
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b); err != nil {
		return "", fmt.Errorf("parse background %q: %w", s, err)
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b), nil
}

// newLogger returns a logger writing to --log, or to fallback when unset.
// The returned closer releases the log file.
func (g *globalFlags) newLogger(fallback io.Writer) (*log.Logger, io.Closer, error) {
	if g.logPath == "" {
		return log.New(fallback, "", log.LstdFlags), nopCloser{}, nil
	}
	f, err := os.OpenFile(g.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return log.New(f, "", log.LstdFlags), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
