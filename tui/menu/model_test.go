package menu

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/boardhud/input"
	"github.com/CrestNiraj12/boardhud/render"
	"github.com/CrestNiraj12/boardhud/tui/common"
)

type keySink struct {
	name string
	keys []string
}

func (k *keySink) Name() string { return k.name }

func (k *keySink) HandleKey(ev input.Event) bool {
	k.keys = append(k.keys, ev.Key)
	return true
}

func newTestMenu(t *testing.T) (*Model, *input.Router, *common.Switches, *render.Resources) {
	t.Helper()
	router := input.NewRouter(zerolog.Nop())
	res := render.NewResources()
	switches := common.NewSwitches()
	for _, n := range []string{"cooldown", "board", Name} {
		switches.Add(n)
	}
	m := New(Deps{Router: router, Switches: switches, Resources: res, Logger: zerolog.Nop()})
	router.Register(m)
	res.Setup()
	return m, router, switches, res
}

func TestMenu_OpenTakesTheLock(t *testing.T) {
	m, router, _, _ := newTestMenu(t)
	other := &keySink{name: "cooldown"}
	router.Register(other)

	_, by := router.Dispatch("1")
	assert.Equal(t, "cooldown", by, "closed menu passes keys on")

	_, by = router.Dispatch("home")
	assert.Equal(t, Name, by)
	assert.True(t, m.Open())
	assert.Equal(t, Name, router.Owner())

	router.Dispatch("1")
	assert.Equal(t, []string{"1"}, other.keys, "open menu keeps keys to itself")

	router.Dispatch("esc")
	assert.False(t, m.Open())
	assert.Empty(t, router.Owner())
}

func TestMenu_CursorWrapsAndTogglesSystems(t *testing.T) {
	m, router, switches, _ := newTestMenu(t)
	router.Dispatch("home")

	router.Dispatch("left")
	assert.Equal(t, 1, m.Cursor(), "wraps to the last entry; the menu lists itself out")
	router.Dispatch("right")
	assert.Equal(t, 0, m.Cursor())
	router.Dispatch("right")
	assert.Equal(t, 1, m.Cursor())

	router.Dispatch("enter")
	assert.False(t, switches.On("board"))
	assert.True(t, switches.On("cooldown"))
	router.Dispatch("enter")
	assert.True(t, switches.On("board"))

	router.Dispatch("home")
	assert.False(t, m.Open())
	router.Dispatch("home")
	assert.Zero(t, m.Cursor(), "reopening starts from the first entry")
}

func TestMenu_IgnoresWhileAnotherSystemHoldsTheLock(t *testing.T) {
	m, _, _, _ := newTestMenu(t)
	assert.False(t, m.HandleKey(input.Event{Key: "home", Priority: input.Locked, Owner: "board"}))
	assert.False(t, m.HandleKey(input.Event{Key: "home", Priority: input.System}))
	assert.False(t, m.Open())
}

func TestMenu_RenderListsEntries(t *testing.T) {
	m, router, switches, res := newTestMenu(t)
	canvas := render.NewCanvas(res, 60, 10, 6, 17)

	m.Render(canvas, canvas.Bounds())
	assert.NotContains(t, canvas.String(), "cooldown", "closed menu draws nothing")

	router.Dispatch("home")
	switches.Toggle("board")
	m.Render(canvas, canvas.Bounds())

	// Bottom edge at 170px, entries 34px above it: row 8.
	line := canvas.Line(8)
	require.NotEmpty(t, line)
	assert.Contains(t, line, "[x] cooldown")
	assert.Contains(t, line, "[ ] board")
	assert.NotContains(t, line, Name)
	assert.Contains(t, m.Status(), "menu 1/2")
}
