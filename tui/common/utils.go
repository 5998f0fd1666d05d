package common

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// StatusSeparator joins status segments.
const StatusSeparator = " · "

// JoinStatus joins the non-empty segments and truncates the result to width
// display cells. width <= 0 disables truncation.
func JoinStatus(width int, segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if strings.TrimSpace(ansi.Strip(s)) != "" {
			parts = append(parts, s)
		}
	}
	line := strings.Join(parts, StatusSeparator)
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}
