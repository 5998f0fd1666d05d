package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigator_EnterFocusNeedsPosts(t *testing.T) {
	nav := NewNavigator(NewStore())
	nav.EnterFocus()
	_, ok := nav.Focused()
	assert.False(t, ok)
	assert.Empty(t, nav.Window())
}

func TestNavigator_EnterFocusPicksNewest(t *testing.T) {
	s := seeded(3)
	nav := NewNavigator(s)
	nav.EnterFocus()

	p, ok := nav.Focused()
	require.True(t, ok)
	assert.Equal(t, 3, p.Num)
	assert.False(t, nav.Expanded())

	nav.FocusPrevious()
	nav.EnterFocus()
	p, _ = nav.Focused()
	assert.Equal(t, 2, p.Num, "entering while focused is a no-op")
}

func TestNavigator_PreviousClampsAtOldest(t *testing.T) {
	nav := NewNavigator(seeded(3))
	nav.EnterFocus()
	for range 5 {
		nav.FocusPrevious()
	}
	p, ok := nav.Focused()
	require.True(t, ok)
	assert.Equal(t, 1, p.Num)
	assert.Equal(t, 1, nav.Position())
}

func TestNavigator_NextPastNewestUnfocuses(t *testing.T) {
	nav := NewNavigator(seeded(3))
	nav.EnterFocus()
	nav.ToggleExpand()
	nav.FocusPrevious()
	assert.True(t, nav.Expanded(), "moving keeps expansion")

	nav.FocusNext()
	p, _ := nav.Focused()
	assert.Equal(t, 3, p.Num)

	nav.FocusNext()
	_, ok := nav.Focused()
	assert.False(t, ok)
	assert.False(t, nav.Expanded())
}

func TestNavigator_ToggleExpandOnlyWhileFocused(t *testing.T) {
	nav := NewNavigator(seeded(2))
	nav.ToggleExpand()
	assert.False(t, nav.Expanded())

	nav.EnterFocus()
	nav.ToggleExpand()
	assert.True(t, nav.Expanded())
	nav.ExitFocus()
	assert.False(t, nav.Expanded())
	nav.EnterFocus()
	assert.False(t, nav.Expanded())
}

func TestNavigator_WindowUnfocused(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, nums(NewNavigator(seeded(3)).Window()))
	assert.Equal(t, []int{6, 7, 8, 9, 10}, nums(NewNavigator(seeded(10)).Window()))
}

func TestNavigator_WindowInterleave(t *testing.T) {
	tests := []struct {
		name  string
		total int
		focus int
		want  []int
	}{
		{"middle", 10, 7, []int{5, 6, 7, 8, 9}},
		{"oldest", 10, 1, []int{1, 2, 3, 4, 5}},
		{"second", 10, 2, []int{1, 2, 3, 4, 5}},
		{"newest", 10, 10, []int{6, 7, 8, 9, 10}},
		{"one before newest", 10, 9, []int{6, 7, 8, 9, 10}},
		{"short thread", 3, 2, []int{1, 2, 3}},
		{"single", 1, 1, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := NewNavigator(seeded(tt.total))
			nav.EnterFocus()
			for range tt.total - tt.focus {
				nav.FocusPrevious()
			}
			window := nav.Window()
			assert.Equal(t, tt.want, nums(window))
			assert.LessOrEqual(t, len(window), WindowSize)
			assert.True(t, nav.IsFocused(tt.focus))
		})
	}
}

func TestNavigator_WindowSizeInvariant(t *testing.T) {
	for total := 1; total <= 12; total++ {
		s := seeded(total)
		nav := NewNavigator(s)
		nav.EnterFocus()
		for i := 0; i < total; i++ {
			assert.Len(t, nav.Window(), min(WindowSize, total), "total %d step %d", total, i)
			nav.FocusPrevious()
		}
	}
}

func TestNavigator_FocusSurvivesAppendsAndDropsOnReset(t *testing.T) {
	s := seeded(3)
	nav := NewNavigator(s)
	nav.EnterFocus()
	s.Ingest(post(4, ""))
	assert.True(t, nav.IsFocused(3))

	s.Reset()
	_, ok := nav.Focused()
	assert.False(t, ok)
}
