// Package cooldown tracks the time since each character last used their skill.
package cooldown

import (
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/boardhud/infra/config"
	"github.com/CrestNiraj12/boardhud/input"
	"github.com/CrestNiraj12/boardhud/render"
	"github.com/CrestNiraj12/boardhud/tui/common"
)

// Name identifies the system to the input router.
const Name = "cooldown"

const (
	marginX    = 12 // From the right edge of the area
	marginY    = 17
	slotStride = 34 // Two text rows per slot
	padding    = 6
	glyphWidth = 6
	lineHeight = 17
)

// Deps holds what the cooldown system needs.
type Deps struct {
	Resources *render.Resources
	Config    config.CooldownConfig
	Logger    zerolog.Logger
	Now       func() time.Time // Defaults to time.Now
}

// Model holds one timer per character slot.
type Model struct {
	keys     []string
	skillKey string
	max      time.Duration
	now      func() time.Time
	log      zerolog.Logger

	lastUse  []time.Time
	selected int

	font       render.FontHandle
	text       render.BrushHandle
	background render.BrushHandle
	active     render.BrushHandle
}

// New creates the cooldown system. Every slot starts counting from now.
func New(deps Deps) *Model {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	m := &Model{
		keys:       slices.Clone(deps.Config.Keys),
		skillKey:   deps.Config.SkillKey,
		max:        deps.Config.Max,
		now:        now,
		log:        deps.Logger.With().Str("component", Name).Logger(),
		lastUse:    make([]time.Time, len(deps.Config.Keys)),
		font:       deps.Resources.AddFont("Consolas", 14, false),
		text:       deps.Resources.AddSolidColor(render.RGB(255, 255, 255)),
		background: deps.Resources.AddSolidColor(render.RGB(0, 0, 0)),
		active:     deps.Resources.AddSolidColor(render.RGB(255, 102, 0)),
	}
	start := now()
	for i := range m.lastUse {
		m.lastUse[i] = start
	}
	return m
}

func (m *Model) Name() string { return Name }

// Init has nothing to start; the root frame tick redraws the timers.
func (m *Model) Init() tea.Cmd { return nil }

// Update ignores messages; the timers are derived from the clock at draw time.
func (m *Model) Update(tea.Msg) tea.Cmd { return nil }

// PendingCmd never has work queued.
func (m *Model) PendingCmd() tea.Cmd { return nil }

// HandleKey selects a slot or restarts the selected slot's timer.
func (m *Model) HandleKey(ev input.Event) bool {
	if ev.Priority > input.Normal && ev.Owner != Name {
		return false
	}
	if len(m.lastUse) == 0 {
		return false
	}
	if i := slices.Index(m.keys, ev.Key); i >= 0 {
		m.selected = i
		return true
	}
	if ev.Key == m.skillKey {
		m.lastUse[m.selected] = m.now()
		m.log.Debug().Int("slot", m.selected+1).Msg("skill used")
		return true
	}
	return false
}

// Selected returns the active slot, 0-based.
func (m *Model) Selected() int { return m.selected }

// Elapsed returns the time since slot i last used its skill.
func (m *Model) Elapsed(i int) time.Duration {
	return m.now().Sub(m.lastUse[i])
}

// FormatElapsed renders d as m:ss.cc, or zero once it reaches limit.
func FormatElapsed(d, limit time.Duration) string {
	if d < 0 || (limit > 0 && d >= limit) {
		d = 0
	}
	cs := d / (10 * time.Millisecond)
	return fmt.Sprintf("%d:%02d.%02d", cs/6000, cs/100%60, cs%100)
}

// Render draws one timer per slot down the top-right corner of area.
func (m *Model) Render(s render.Surface, area render.Rect) tea.Cmd {
	for i := range m.lastUse {
		text := FormatElapsed(m.Elapsed(i), m.max)
		w := len(text) * glyphWidth
		at := render.Pt(area.Max.X-marginX-w, area.Min.Y+marginY+slotStride*i)

		bg := m.background
		if i == m.selected {
			bg = m.active
		}
		s.FillRect(bg, render.R(at.X-padding, at.Y, at.X+w+padding, at.Y+lineHeight))
		s.DrawText(m.font, m.text, at, text)
	}
	return nil
}

// Status shows the selected slot.
func (m *Model) Status() string {
	if len(m.lastUse) == 0 {
		return ""
	}
	return common.AccentStyle.Render(fmt.Sprintf("slot %d", m.selected+1))
}
