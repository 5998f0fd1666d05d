package domain

import (
	"strings"
	"unicode/utf8"
)

// WrapResult is the outcome of Wrap.
type WrapResult struct {
	Text      string // Wrapped lines, each terminated by '\n'
	Truncated bool   // The row budget ran out before the text did
	Rows      int    // Lines emitted
}

// Wrap greedily packs the words of each paragraph into lines of at most maxLen
// runes. Every emitted line keeps its trailing separator, so a word fits when
// len(line)+len(word)+1 <= maxLen. A word longer than maxLen gets a line of its own.
//
// maxRows == 0 means unlimited. Otherwise Wrap stops as soon as another line would
// exceed the budget and reports Truncated without scanning the rest.
func Wrap(text string, maxLen, maxRows int) WrapResult {
	var (
		out  strings.Builder
		rows int
	)
	fits := func() bool { return maxRows == 0 || rows < maxRows }

	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Split(paragraph, " ")
		var line strings.Builder
		lineLen := 0

		for i, word := range words {
			wordLen := utf8.RuneCountInString(word)
			if lineLen+wordLen+1 > maxLen {
				if lineLen > 0 {
					if !fits() {
						return WrapResult{Text: out.String(), Truncated: true, Rows: rows}
					}
					out.WriteString(line.String())
					out.WriteByte('\n')
					rows++
				}
				line.Reset()
				lineLen = 0
			}
			line.WriteString(word)
			line.WriteByte(' ')
			lineLen += wordLen + 1

			if i == len(words)-1 {
				if !fits() {
					return WrapResult{Text: out.String(), Truncated: true, Rows: rows}
				}
				out.WriteString(line.String())
				out.WriteByte('\n')
				rows++
			}
		}
	}

	return WrapResult{Text: out.String(), Rows: rows}
}
