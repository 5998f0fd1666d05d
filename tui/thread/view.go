package thread

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/boardhud/render"
	"github.com/CrestNiraj12/boardhud/tui/common"
)

// Render draws the post window into area and requests thumbnails it is missing.
func (m *Model) Render(s render.Surface, area render.Rect) tea.Cmd {
	frame := m.renderer.Draw(s, area)
	return m.fetchThumbs(frame.Pending)
}

// Status summarizes the board for the status bar.
func (m *Model) Status() string {
	var segments []string
	if m.loading {
		segments = append(segments, m.spinner.View()+" loading /"+m.cfg.Board+"/ "+m.cfg.Tag)
	} else if m.threadID != 0 {
		segments = append(segments, fmt.Sprintf("/%s/%d", m.cfg.Board, m.threadID))
		segments = append(segments, fmt.Sprintf("%d posts", m.store.Len()))
	}
	if pos := m.nav.Position(); pos > 0 {
		label := fmt.Sprintf("%d/%d", pos, m.store.Len())
		if m.nav.Expanded() {
			label += " expanded"
		}
		segments = append(segments, common.AccentStyle.Render(label))
	}
	if m.err != nil {
		segments = append(segments, common.ErrorStyle.Render(describeErr(m.err)))
	}
	return common.JoinStatus(0, segments...)
}
