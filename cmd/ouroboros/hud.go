package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/ouroboros/pkg/creature"
	"github.com/taigrr/ouroboros/pkg/math3d"
)

// ViewState is what the terminal user has toggled, as opposed to what the
// creature is doing.
type ViewState struct {
	Wireframe bool
	ShowHUD   bool

	// LightMode is on while the user aims the light with the pointer.
	// PendingLight follows the pointer; LightDir is the committed aim.
	LightMode    bool
	LightDir     math3d.Vec3
	PendingLight math3d.Vec3

	LastRoute string
}

func NewViewState(light math3d.Vec3) *ViewState {
	light = light.Normalize()
	return &ViewState{LightDir: light, PendingLight: light, ShowHUD: true}
}

// ScreenToLightDir lifts a normalized pointer position onto the unit
// hemisphere facing the viewer. Positions outside the inscribed circle land
// on its rim.
func ScreenToLightDir(px, py float64) math3d.Vec3 {
	disk := math3d.V2(px*2-1, 1-py*2)
	if l := disk.Len(); l > 1 {
		disk = disk.Scale(1 / l)
	}
	z := math.Sqrt(max(0, 1-disk.X*disk.X-disk.Y*disk.Y))
	return math3d.V3(disk.X, disk.Y, z).Normalize()
}

// lightEase glides the shading light toward its aim with one critically
// damped spring per axis.
type lightEase struct {
	pos, vel [3]float64
	spring   harmonica.Spring
}

func newLightEase(fps int, start math3d.Vec3) *lightEase {
	return &lightEase{
		pos:    [3]float64{start.X, start.Y, start.Z},
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update advances one frame and returns the unit direction.
func (e *lightEase) Update(target math3d.Vec3) math3d.Vec3 {
	goal := [3]float64{target.X, target.Y, target.Z}
	for i := range e.pos {
		e.pos[i], e.vel[i] = e.spring.Update(e.pos[i], e.vel[i], goal[i])
	}
	return math3d.V3(e.pos[0], e.pos[1], e.pos[2]).Normalize()
}

var (
	hudBar      = lipgloss.NewStyle().Background(lipgloss.Color("#000000"))
	hudFPS      = hudBar.Foreground(lipgloss.Color("#5fff5f"))
	hudTitle    = hudBar.Bold(true).Foreground(lipgloss.Color("#ffffff"))
	hudProgress = hudBar.Bold(true).Foreground(lipgloss.Color("#5fffff"))
	hudHint     = hudBar.Faint(true).Foreground(lipgloss.Color("#ffff5f"))
	hudLight    = hudBar.Bold(true).Foreground(lipgloss.Color("#ffff5f"))
)

// HUD draws a status row at the top and bottom of the terminal.
type HUD struct {
	fps    float64
	frames int
	since  time.Time
}

func NewHUD() *HUD {
	return &HUD{since: time.Now()}
}

// UpdateFPS counts a frame and refreshes the rate once a second.
func (h *HUD) UpdateFPS() {
	h.frames++
	if d := time.Since(h.since); d >= time.Second {
		h.fps = float64(h.frames) / d.Seconds()
		h.frames = 0
		h.since = time.Now()
	}
}

// activity names what the creature is doing.
func activity(s creature.State, ok bool) string {
	switch {
	case !ok:
		return "renderer unavailable"
	case s.Animating:
		return "nodding"
	case s.Hovered:
		return "watching"
	default:
		return "cruising"
	}
}

// spread lays left, mid and right out across width cells. Mid is centred;
// nothing is truncated when the row is too narrow.
func spread(width int, left, mid, right string) string {
	lw, mw, rw := lipgloss.Width(left), lipgloss.Width(mid), lipgloss.Width(right)
	midAt := max((width-mw)/2, lw)
	gap1 := midAt - lw
	gap2 := max(width-rw-midAt-mw, 1)
	if mid == "" {
		gap2 = max(width-lw-rw, 1)
		gap1 = 0
	}
	return left + strings.Repeat(" ", gap1) + mid + strings.Repeat(" ", gap2) + right
}

// Render redraws both HUD rows. The rows are always cleared first so
// hiding the HUD leaves no residue.
func (h *HUD) Render(width, height int, vs *ViewState, s creature.State, ok bool) {
	var top, bottom string
	switch {
	case vs.LightMode:
		bottom = spread(width, "", hudLight.Render(" ◉ LIGHT: move to aim, click to set, Esc to cancel "), "")
	case vs.ShowHUD:
		top = spread(width,
			hudFPS.Render(fmt.Sprintf(" %.0f FPS ", h.fps)),
			hudTitle.Render(" "+activity(s, ok)+" "),
			hudProgress.Render(fmt.Sprintf(" %3.0f%% ", s.Progress*100)))

		wire := "[ ]"
		if vs.Wireframe {
			wire = "[✓]"
		}
		hint := "L: aim light"
		if vs.LastRoute != "" {
			hint = "→ " + vs.LastRoute
		}
		bottom = spread(width,
			hudBar.Render(fmt.Sprintf(" %s X-Ray  nods: %d ", wire, s.Nods)),
			"",
			hudHint.Render(" "+hint+" "))
	}
	fmt.Printf("\x1b[1;1H\x1b[2K%s\x1b[%d;1H\x1b[2K%s", top, height, bottom)
}
