// Package menu is the overlay's systems menu. While open it holds the input
// lock and lets the user switch the other systems on and off.
package menu

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/boardhud/input"
	"github.com/CrestNiraj12/boardhud/render"
	"github.com/CrestNiraj12/boardhud/tui/common"
)

// Name identifies the system to the input router.
const Name = "menu"

const (
	left       = 12
	bottom     = 34 // Above the bottom edge of the area
	gap        = 12
	glyphWidth = 6
	lineHeight = 17
)

// Deps holds what the menu needs.
type Deps struct {
	Router    *input.Router
	Switches  *common.Switches
	Resources *render.Resources
	Logger    zerolog.Logger
}

// Model is the menu state.
type Model struct {
	router   *input.Router
	switches *common.Switches
	keys     common.KeyMap
	log      zerolog.Logger

	open   bool
	cursor int

	font     render.FontHandle
	text     render.BrushHandle
	item     render.BrushHandle
	selected render.BrushHandle
}

// New creates a closed menu.
func New(deps Deps) *Model {
	return &Model{
		router:   deps.Router,
		switches: deps.Switches,
		keys:     common.DefaultKeyMap(),
		log:      deps.Logger.With().Str("component", Name).Logger(),
		font:     deps.Resources.AddFont("Consolas", 14, false),
		text:     deps.Resources.AddSolidColor(render.RGB(255, 255, 255)),
		item:     deps.Resources.AddSolidColor(render.RGB(0, 0, 0)),
		selected: deps.Resources.AddSolidColor(render.RGB(255, 102, 0)),
	}
}

func (m *Model) Name() string { return Name }

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(tea.Msg) tea.Cmd { return nil }

func (m *Model) PendingCmd() tea.Cmd { return nil }

// Open reports whether the menu is showing.
func (m *Model) Open() bool { return m.open }

// Cursor returns the selected entry, 0-based.
func (m *Model) Cursor() int { return m.cursor }

// entries lists every switchable system except the menu itself.
func (m *Model) entries() []string {
	var out []string
	for _, n := range m.switches.Names() {
		if n != Name {
			out = append(out, n)
		}
	}
	return out
}

// HandleKey opens and closes the menu and, while open, moves the cursor and
// toggles the selected system. An open menu swallows every key.
func (m *Model) HandleKey(ev input.Event) bool {
	if ev.Priority > input.Normal && ev.Owner != Name {
		return false
	}
	k := ev.Key
	if !m.open {
		if !common.Matches(k, m.keys.Menu) {
			return false
		}
		m.open, m.cursor = true, 0
		m.router.Lock(Name)
		return true
	}

	entries := m.entries()
	switch {
	case common.Matches(k, m.keys.Menu, m.keys.Exit):
		m.open = false
		m.router.Unlock(Name)
	case len(entries) == 0:
	case common.Matches(k, m.keys.Right):
		m.cursor = (m.cursor + 1) % len(entries)
	case common.Matches(k, m.keys.Left):
		m.cursor = (m.cursor + len(entries) - 1) % len(entries)
	case common.Matches(k, m.keys.Expand):
		m.cursor = min(m.cursor, len(entries)-1)
		name := entries[m.cursor]
		on := m.switches.Toggle(name)
		m.log.Info().Str("system", name).Bool("on", on).Msg("system toggled")
	}
	return true
}

func label(name string, on bool) string {
	if on {
		return "[x] " + name
	}
	return "[ ] " + name
}

// Render draws the entries in a row along the bottom-left of area.
func (m *Model) Render(s render.Surface, area render.Rect) tea.Cmd {
	if !m.open {
		return nil
	}
	x := area.Min.X + left
	y := area.Max.Y - bottom
	for i, name := range m.entries() {
		text := label(name, m.switches.On(name))
		w := len(text) * glyphWidth
		bg := m.item
		if i == m.cursor {
			bg = m.selected
		}
		s.FillRect(bg, render.R(x, y, x+w, y+lineHeight))
		s.DrawText(m.font, m.text, render.Pt(x, y), text)
		x += w + gap
	}
	return nil
}

// Status hints at the menu keys while open.
func (m *Model) Status() string {
	if !m.open {
		return ""
	}
	return common.AccentStyle.Render(fmt.Sprintf("menu %d/%d: ←/→ select, enter toggle, esc close", m.cursor+1, len(m.entries())))
}
