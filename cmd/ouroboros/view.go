package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/ouroboros/pkg/config"
	"github.com/taigrr/ouroboros/pkg/creature"
	"github.com/taigrr/ouroboros/pkg/render"
)

func newViewCmd(g *globalFlags) *cobra.Command {
	var fps int
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the animated logo in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd.Context(), g, fps)
		},
	}
	cmd.Flags().IntVar(&fps, "fps", 0, "Target FPS (0 uses the config value)")
	return cmd
}

type inputKind int

const (
	inputMove inputKind = iota
	inputClick
	inputResize
	inputKey
)

// input is a terminal event reduced to what the frame loop needs.
type input struct {
	kind inputKind
	x, y int // cell, or new size for inputResize
	key  string
}

var viewKeys = []string{"escape", "ctrl+c", "x", "l", "?", "shift+/"}

// Mouse reporting: any-event tracking in SGR encoding.
const (
	mouseOn  = "\x1b[?1003h\x1b[?1006h"
	mouseOff = "\x1b[?1003l\x1b[?1006l"
)

// openTerminal takes over the terminal. The returned func restores it.
func openTerminal() (*uv.Terminal, int, int, func(), error) {
	term := uv.DefaultTerminal()
	w, h, err := term.GetSize()
	if err != nil {
		return nil, 0, 0, nil, fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return nil, 0, 0, nil, fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(w, h)
	fmt.Fprint(os.Stdout, mouseOn)

	restore := func() {
		fmt.Fprint(os.Stdout, mouseOff)
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	return term, w, h, restore, nil
}

// forwardInput reduces terminal events to inputs on out until ctx ends.
// Scene state is owned by the frame loop, so nothing here touches it.
func forwardInput(ctx context.Context, term *uv.Terminal, out chan<- input) {
	for ev := range term.Events() {
		var in input
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			in = input{kind: inputResize, x: ev.Width, y: ev.Height}
		case uv.MouseClickEvent:
			in = input{kind: inputClick, x: ev.X, y: ev.Y}
		case uv.MouseMotionEvent:
			in = input{kind: inputMove, x: ev.X, y: ev.Y}
		case uv.KeyPressEvent:
			in.kind = inputKind(-1)
			for _, k := range viewKeys {
				if ev.MatchString(k) {
					in = input{kind: inputKey, key: k}
					break
				}
			}
			if in.kind != inputKey {
				continue
			}
		default:
			continue
		}
		select {
		case out <- in:
		case <-ctx.Done():
			return
		}
	}
}

// terminalView is the state of one `ouroboros view` session.
type terminalView struct {
	term    *uv.Terminal
	screen  *render.TerminalRenderer
	scene   *creature.Scene
	vs      *ViewState
	hud     *HUD
	light   *lightEase
	logger  *log.Logger
	quit    context.CancelFunc
	hovered bool

	width, height int
}

func (v *terminalView) resize(w, h int) {
	v.width, v.height = w, h
	v.term.Erase()
	v.term.Resize(w, h)
	v.screen = render.NewTerminalRenderer(v.term, w, h)
	v.scene.Resize(v.screen.FramebufferSize())
}

func (v *terminalView) key(k string) {
	vs := v.vs
	switch k {
	case "escape":
		if !vs.LightMode {
			v.quit()
		}
		vs.LightMode = false
	case "ctrl+c":
		v.quit()
	case "x":
		vs.Wireframe = !vs.Wireframe
	case "l":
		vs.LightMode = true
		vs.PendingLight = vs.LightDir
	case "?", "shift+/":
		vs.ShowHUD = !vs.ShowHUD
	}
}

// pointer routes a mouse event either to light aiming or to the creature.
// Leaving the viewport counts as PointerLeave.
func (v *terminalView) pointer(in input) {
	px, py, inside := v.screen.Pointer(in.x, in.y)
	click := in.kind == inputClick

	if v.vs.LightMode {
		v.vs.PendingLight = ScreenToLightDir(px, py)
		if click {
			v.vs.LightDir = v.vs.PendingLight
			v.vs.LightMode = false
		}
		return
	}

	ctrl := v.scene.Controller()
	if ctrl == nil {
		return
	}
	if inside != v.hovered {
		v.hovered = inside
		if inside {
			ctrl.PointerEnter()
		} else {
			ctrl.PointerLeave()
		}
	}
	if !inside {
		return
	}
	ctrl.PointerMove(px, py)
	if click {
		ctrl.Click()
	}
}

func (v *terminalView) handle(in input) {
	switch in.kind {
	case inputResize:
		v.resize(in.x, in.y)
	case inputKey:
		v.key(in.key)
	case inputMove, inputClick:
		v.pointer(in)
	}
}

// frame advances the creature by dt and repaints the terminal.
func (v *terminalView) frame(dt float64) error {
	var state creature.State
	if ctrl := v.scene.Controller(); ctrl != nil {
		aim := v.vs.LightDir
		if v.vs.LightMode {
			aim = v.vs.PendingLight
		}
		ctrl.SetLightDirection(v.light.Update(aim))
		v.scene.Wireframe = v.vs.Wireframe
	}

	v.scene.Frame(dt)
	if fb := v.scene.Framebuffer(); fb != nil {
		v.screen.Render(fb)
	}
	if err := v.screen.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	if ctrl := v.scene.Controller(); ctrl != nil {
		state = ctrl.State()
	}
	v.hud.UpdateFPS()
	v.hud.Render(v.width, v.height, v.vs, state, v.scene != nil)
	return nil
}

// reload swaps in tuning from a changed config, keeping the aimed light.
func (v *terminalView) reload(cfg *config.Config) {
	ctrl := v.scene.Controller()
	if ctrl == nil {
		return
	}
	t := cfg.CreatureTuning()
	t.LightDirection = ctrl.Tuning().LightDirection
	ctrl.SetTuning(t)
	v.logger.Printf("tuning reloaded")
}

func runView(ctx context.Context, g *globalFlags, fps int) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if fps <= 0 {
		fps = cfg.FPS
	}
	// Log lines would tear the alternate screen.
	logger, logCloser, err := g.newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	term, width, height, restore, err := openTerminal()
	if err != nil {
		return err
	}
	defer restore()

	v := &terminalView{
		term:   term,
		screen: render.NewTerminalRenderer(term, width, height),
		vs:     NewViewState(cfg.CreatureTuning().LightDirection),
		hud:    NewHUD(),
		logger: logger,
		quit:   cancel,
		width:  width,
		height: height,
	}
	v.light = newLightEase(fps, v.vs.LightDir)
	nav := routeNavigator(func(route string) { v.vs.LastRoute = route })

	// A failed setup leaves a nil scene; the loop keeps running and the HUD
	// says so.
	fbw, fbh := v.screen.FramebufferSize()
	v.scene, _ = g.newScene(ctx, cfg, fbw, fbh, nav, logger)
	defer v.scene.Dispose()

	reloads, err := config.Watch(ctx, g.configPath, logger)
	if err != nil {
		logger.Printf("config reload disabled: %v", err)
	}

	events := make(chan input, 64)
	go forwardInput(ctx, term, events)

	budget := time.Second / time.Duration(fps)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case next, ok := <-reloads:
			if !ok {
				reloads = nil
				break
			}
			v.reload(next)
		default:
		}
		for pending := len(events); pending > 0; pending-- {
			v.handle(<-events)
		}

		now := time.Now()
		dt := min(now.Sub(last).Seconds(), 0.1)
		last = now
		if err := v.frame(dt); err != nil {
			return err
		}
		if spent := time.Since(now); spent < budget {
			time.Sleep(budget - spent)
		}
	}
}
