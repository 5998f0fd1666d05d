// Package tui is the overlay's root bubbletea model. It owns the frame loop, the
// canvas the systems draw on and the routing of keys to those systems.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/boardhud/infra/config"
	"github.com/CrestNiraj12/boardhud/input"
	"github.com/CrestNiraj12/boardhud/render"
	"github.com/CrestNiraj12/boardhud/tui/common"
	"github.com/CrestNiraj12/boardhud/tui/thread"
)

const (
	boardInset = 80  // Pixels between the left edge and the board panel
	boardWidth = 560 // Widest the board panel gets
)

// System is one independent overlay feature. Systems receive every message,
// draw once per frame and take keys through the router.
type System interface {
	input.Handler
	Init() tea.Cmd
	Update(tea.Msg) tea.Cmd
	Render(s render.Surface, area render.Rect) tea.Cmd
	Status() string
	PendingCmd() tea.Cmd
}

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Systems   []System // Registered with the router in this order
	Switches  *common.Switches
	Router    *input.Router
	Resources *render.Resources
	Overlay   config.OverlayConfig
	Logger    zerolog.Logger
}

type frameMsg struct{}

// gated hides a switched-off system from the router.
type gated struct {
	System
	switches *common.Switches
}

func (g gated) HandleKey(ev input.Event) bool {
	return g.switches.On(g.Name()) && g.System.HandleKey(ev)
}

// App is the root Bubble Tea model.
type App struct {
	systems  []System
	switches *common.Switches
	router   *input.Router
	res      *render.Resources
	canvas   *render.Canvas
	log      zerolog.Logger
	keys     common.KeyMap
	frame    time.Duration
	width    int
	hidden   bool
}

// NewApp creates the root model and registers every system with the router.
func NewApp(deps Deps) App {
	fps := deps.Overlay.FPS
	if fps <= 0 {
		fps = 15
	}
	switches := deps.Switches
	if switches == nil {
		switches = common.NewSwitches()
	}
	for _, s := range deps.Systems {
		switches.Add(s.Name())
		deps.Router.Register(gated{System: s, switches: switches})
	}
	return App{
		systems:  deps.Systems,
		switches: switches,
		router:   deps.Router,
		res:      deps.Resources,
		canvas:   render.NewCanvas(deps.Resources, 0, 0, deps.Overlay.CellWidth, deps.Overlay.CellHeight),
		log:      deps.Logger.With().Str("component", "tui").Logger(),
		keys:     common.DefaultKeyMap(),
		frame:    time.Second / time.Duration(fps),
		hidden:   deps.Overlay.Hidden,
	}
}

// Init starts every system and the frame loop.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.nextFrame()}
	for _, s := range a.systems {
		cmds = append(cmds, s.Init())
	}
	return tea.Batch(cmds...)
}

func (a App) nextFrame() tea.Cmd {
	return tea.Tick(a.frame, func(time.Time) tea.Msg { return frameMsg{} })
}

// Update handles global keys and window changes, and fans everything else out
// to the systems.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		// The last row belongs to the status bar.
		a.canvas.Resize(msg.Width, max(msg.Height-1, 0))
		a.res.Invalidate()
		a.log.Debug().Int("width", msg.Width).Int("height", msg.Height).Msg("resized")
		return a, nil

	case frameMsg:
		return a, tea.Batch(a.draw(), a.nextFrame())

	case tea.KeyMsg:
		// Global key bindings, handled regardless of locks.
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Hide):
			a.hidden = !a.hidden
			return a, nil
		case key.Matches(msg, a.keys.Suspend):
			a.router.Suspend()
			return a, nil
		}
		ev, by := a.router.Dispatch(msg.String())
		if by != "" {
			a.log.Debug().Str("key", ev.Key).Str("priority", ev.Priority.String()).Str("system", by).Msg("key handled")
		}
		return a, a.pending()
	}

	cmds := make([]tea.Cmd, 0, len(a.systems))
	for _, s := range a.systems {
		cmds = append(cmds, s.Update(msg))
	}
	return a, tea.Batch(cmds...)
}

func (a App) pending() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(a.systems))
	for _, s := range a.systems {
		cmds = append(cmds, s.PendingCmd())
	}
	return tea.Batch(cmds...)
}

// draw renders one frame. Resources recreated after a reset become drawable here;
// systems skip whatever is still not ready.
func (a App) draw() tea.Cmd {
	a.res.Setup()
	a.canvas.Clear()
	if a.hidden {
		return nil
	}
	bounds := a.canvas.Bounds()
	cmds := make([]tea.Cmd, 0, len(a.systems))
	for _, s := range a.systems {
		if a.switches.On(s.Name()) {
			cmds = append(cmds, s.Render(a.canvas, areaFor(s.Name(), bounds)))
		}
	}
	return tea.Batch(cmds...)
}

// areaFor places a system on screen: the board gets a panel off the left edge,
// everything else the whole canvas.
func areaFor(name string, bounds render.Rect) render.Rect {
	if name != thread.Name {
		return bounds
	}
	left := min(bounds.Min.X+boardInset, bounds.Max.X)
	return render.R(left, bounds.Min.Y, min(left+boardWidth, bounds.Max.X), bounds.Max.Y)
}

// View renders the canvas with the status bar below it. Hidden renders nothing.
func (a App) View() string {
	if a.hidden {
		return ""
	}
	segments := []string{common.AppTitleStyle.Render("boardhud")}
	if a.router.Suspended() {
		segments = append(segments, common.WarnStyle.Render("keys suspended (f3)"))
	}
	for _, s := range a.systems {
		if a.switches.On(s.Name()) {
			segments = append(segments, s.Status())
		}
	}
	status := common.StatusBarStyle.Render(common.JoinStatus(a.width, segments...))
	return a.canvas.String() + "\n" + status
}
