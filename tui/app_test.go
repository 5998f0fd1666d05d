package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/boardhud/infra/config"
	"github.com/CrestNiraj12/boardhud/input"
	"github.com/CrestNiraj12/boardhud/render"
	"github.com/CrestNiraj12/boardhud/tui/common"
	"github.com/CrestNiraj12/boardhud/tui/thread"
)

type pingMsg struct{}

type fakeSystem struct {
	name    string
	keys    []string
	msgs    []tea.Msg
	areas   []render.Rect
	queued  tea.Cmd
	consume bool
}

func (f *fakeSystem) Name() string  { return f.name }
func (f *fakeSystem) Init() tea.Cmd { return nil }

func (f *fakeSystem) HandleKey(ev input.Event) bool {
	f.keys = append(f.keys, ev.Key)
	return f.consume
}

func (f *fakeSystem) Update(msg tea.Msg) tea.Cmd {
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeSystem) Render(s render.Surface, area render.Rect) tea.Cmd {
	f.areas = append(f.areas, area)
	return nil
}

func (f *fakeSystem) Status() string { return f.name + " ok" }

func (f *fakeSystem) PendingCmd() tea.Cmd {
	cmd := f.queued
	f.queued = nil
	return cmd
}

func newTestApp(t *testing.T, systems ...System) (App, *input.Router) {
	t.Helper()
	router := input.NewRouter(zerolog.Nop())
	a := NewApp(Deps{
		Systems:   systems,
		Router:    router,
		Resources: render.NewResources(),
		Overlay:   config.DefaultConfig().Overlay,
		Logger:    zerolog.Nop(),
	})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 200, Height: 41})
	return m.(App), router
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

func TestApp_FrameRendersEverySystem(t *testing.T) {
	board := &fakeSystem{name: thread.Name}
	timers := &fakeSystem{name: "cooldown"}
	a, _ := newTestApp(t, timers, board)

	cols, rows := a.canvas.Size()
	assert.Equal(t, 200, cols)
	assert.Equal(t, 40, rows, "one row is left for the status bar")

	a, cmd := update(t, a, frameMsg{})
	require.NotNil(t, cmd)

	require.Len(t, timers.areas, 1)
	assert.Equal(t, a.canvas.Bounds(), timers.areas[0])
	require.Len(t, board.areas, 1)
	assert.Equal(t, render.R(80, 0, 640, 680), board.areas[0])
}

func TestApp_HideSkipsDrawing(t *testing.T) {
	sys := &fakeSystem{name: "cooldown"}
	a, _ := newTestApp(t, sys)

	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyF2})
	assert.Empty(t, a.View())
	update(t, a, frameMsg{})
	assert.Empty(t, sys.areas)

	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyF2})
	assert.Contains(t, a.View(), "cooldown ok")
}

func TestApp_KeysGoThroughRouter(t *testing.T) {
	first := &fakeSystem{name: "first"}
	second := &fakeSystem{name: "second", consume: true}
	a, router := newTestApp(t, first, second)

	update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	assert.Equal(t, []string{"e"}, first.keys)
	assert.Equal(t, []string{"e"}, second.keys)

	router.Lock("second")
	update(t, a, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, []string{"e"}, first.keys)
	assert.Equal(t, []string{"e", "up"}, second.keys)
}

func TestApp_SuspendHoldsKeysBack(t *testing.T) {
	sys := &fakeSystem{name: "cooldown"}
	a, router := newTestApp(t, sys)

	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyF3})
	assert.True(t, router.Suspended())
	assert.Contains(t, a.View(), "keys suspended")

	update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	assert.Empty(t, sys.keys)

	update(t, a, tea.KeyMsg{Type: tea.KeyF3})
	assert.False(t, router.Suspended())
	update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	assert.Equal(t, []string{"1"}, sys.keys)
}

func TestApp_CollectsQueuedCommands(t *testing.T) {
	sys := &fakeSystem{name: "board", consume: true}
	sys.queued = func() tea.Msg { return pingMsg{} }
	a, _ := newTestApp(t, sys)

	_, cmd := update(t, a, tea.KeyMsg{Type: tea.KeyF5})
	require.NotNil(t, cmd)
	assert.Equal(t, pingMsg{}, cmd())
}

func TestApp_QuitKey(t *testing.T) {
	a, _ := newTestApp(t, &fakeSystem{name: "cooldown"})
	_, cmd := update(t, a, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_BroadcastsOtherMessages(t *testing.T) {
	a1 := &fakeSystem{name: "a"}
	a2 := &fakeSystem{name: "b"}
	a, _ := newTestApp(t, a1, a2)

	update(t, a, pingMsg{})
	assert.Equal(t, []tea.Msg{pingMsg{}}, a1.msgs)
	assert.Equal(t, []tea.Msg{pingMsg{}}, a2.msgs)
}

func TestAreaFor(t *testing.T) {
	narrow := render.R(0, 0, 300, 100)
	assert.Equal(t, render.R(80, 0, 300, 100), areaFor(thread.Name, narrow))
	assert.Equal(t, narrow, areaFor("cooldown", narrow))

	tiny := render.R(0, 0, 50, 100)
	assert.True(t, areaFor(thread.Name, tiny).Empty())
}

func TestApp_SwitchedOffSystemsAreSkipped(t *testing.T) {
	board := &fakeSystem{name: thread.Name, consume: true}
	timers := &fakeSystem{name: "cooldown", consume: true}
	switches := common.NewSwitches()
	router := input.NewRouter(zerolog.Nop())
	a := NewApp(Deps{
		Systems:   []System{board, timers},
		Switches:  switches,
		Router:    router,
		Resources: render.NewResources(),
		Overlay:   config.DefaultConfig().Overlay,
		Logger:    zerolog.Nop(),
	})
	a, _ = update(t, a, tea.WindowSizeMsg{Width: 100, Height: 20})
	assert.Equal(t, []string{thread.Name, "cooldown"}, switches.Names())

	switches.Toggle(thread.Name)
	update(t, a, frameMsg{})
	assert.Empty(t, board.areas)
	assert.Len(t, timers.areas, 1)

	_, by := router.Dispatch("x")
	assert.Equal(t, "cooldown", by)
	assert.Empty(t, board.keys)
	assert.NotContains(t, a.View(), "board ok")
	assert.Contains(t, a.View(), "cooldown ok")
}
