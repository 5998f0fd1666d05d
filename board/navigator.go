package board

import "github.com/CrestNiraj12/boardhud/domain"

const (
	// WindowSize is the number of posts shown at once.
	WindowSize = 5
	// Lookaround caps how many neighbours per side the focused window considers.
	Lookaround = 4
)

// Navigator tracks the focused post over a Store. It remembers the focused post
// by number, so appends never move the focus.
type Navigator struct {
	store    *Store
	focused  int
	hasFocus bool
	expanded bool
}

// NewNavigator returns an unfocused navigator over store.
func NewNavigator(store *Store) *Navigator {
	return &Navigator{store: store}
}

// index resolves the focused post, dropping the focus if it left the store.
func (n *Navigator) index() int {
	if !n.hasFocus {
		return -1
	}
	i := n.store.IndexOf(n.focused)
	if i < 0 {
		n.ExitFocus()
	}
	return i
}

// EnterFocus focuses the newest post, collapsed. No-op when already focused or
// the store is empty.
func (n *Navigator) EnterFocus() {
	if n.index() >= 0 {
		return
	}
	last := n.store.Last()
	if last == nil {
		return
	}
	n.focused, n.hasFocus, n.expanded = last.Num, true, false
}

// FocusPrevious moves to the predecessor. No-op on the oldest post.
func (n *Navigator) FocusPrevious() {
	i := n.index()
	if i <= 0 {
		return
	}
	n.focused = n.store.At(i - 1).Num
}

// FocusNext moves to the successor; past the newest post the focus is released.
func (n *Navigator) FocusNext() {
	i := n.index()
	if i < 0 {
		return
	}
	if i+1 >= n.store.Len() {
		n.ExitFocus()
		return
	}
	n.focused = n.store.At(i + 1).Num
}

// ToggleExpand flips the expanded flag while focused.
func (n *Navigator) ToggleExpand() {
	if n.index() < 0 {
		return
	}
	n.expanded = !n.expanded
}

// ExitFocus releases the focus and collapses.
func (n *Navigator) ExitFocus() {
	n.focused, n.hasFocus, n.expanded = 0, false, false
}

// Focused returns the focused post.
func (n *Navigator) Focused() (*domain.Post, bool) {
	i := n.index()
	if i < 0 {
		return nil, false
	}
	return n.store.At(i), true
}

// Position returns the 1-based position of the focused post, or 0.
func (n *Navigator) Position() int {
	return n.index() + 1
}

// Expanded reports whether the focused post is expanded.
func (n *Navigator) Expanded() bool {
	return n.index() >= 0 && n.expanded
}

// IsFocused reports whether num is the focused post.
func (n *Navigator) IsFocused(num int) bool {
	return n.index() >= 0 && n.focused == num
}

// Window returns up to WindowSize posts, oldest first. Unfocused it is the
// newest posts. Focused it starts from the focused post and alternately takes
// one predecessor and one successor, predecessor first, out of at most
// Lookaround per side; once a side runs dry the other one fills the rest.
func (n *Navigator) Window() []*domain.Post {
	total := n.store.Len()
	if total == 0 {
		return nil
	}

	i := n.index()
	if i < 0 {
		start := max(total-WindowSize, 0)
		out := make([]*domain.Post, 0, total-start)
		for j := start; j < total; j++ {
			out = append(out, n.store.At(j))
		}
		return out
	}

	before := min(i, Lookaround)
	after := min(total-1-i, Lookaround)
	lo, hi := i, i
	for hi-lo+1 < WindowSize && (i-lo < before || hi-i < after) {
		if i-lo < before {
			lo--
		}
		if hi-lo+1 < WindowSize && hi-i < after {
			hi++
		}
	}

	out := make([]*domain.Post, 0, hi-lo+1)
	for j := lo; j <= hi; j++ {
		out = append(out, n.store.At(j))
	}
	return out
}
