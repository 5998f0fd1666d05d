package render

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// FontHandle identifies a font registered with Resources.
type FontHandle string

// BrushHandle identifies a solid colour registered with Resources.
type BrushHandle string

type fontEntry struct {
	family string
	size   float64
	bold   bool
	style  lipgloss.Style
	ready  bool
}

type brushEntry struct {
	color RGBA
	ready bool
}

// Resources caches fonts and brushes keyed by their parameters. Handles survive a
// device reset; the underlying resources do not, and draw calls must check
// readiness until Setup recreates them.
type Resources struct {
	mu      sync.Mutex
	fonts   map[FontHandle]*fontEntry
	brushes map[BrushHandle]*brushEntry
	pending bool
}

// NewResources returns an empty cache.
func NewResources() *Resources {
	return &Resources{
		fonts:   make(map[FontHandle]*fontEntry),
		brushes: make(map[BrushHandle]*brushEntry),
	}
}

// AddFont registers a font and returns its handle. Requesting the same parameters
// twice returns the existing handle. New fonts become ready on the next Setup.
func (r *Resources) AddFont(family string, size float64, bold bool) FontHandle {
	h := FontHandle(fmt.Sprintf("%s%g", family, size))
	if bold {
		h += ":bold"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fonts[h]; ok {
		return h
	}
	r.fonts[h] = &fontEntry{family: family, size: size, bold: bold}
	r.pending = true
	return h
}

// AddSolidColor registers a brush and returns its handle.
func (r *Resources) AddSolidColor(c RGBA) BrushHandle {
	h := BrushHandle(fmt.Sprintf("%d:%d:%d:%d", c.A, c.R, c.G, c.B))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.brushes[h]; ok {
		return h
	}
	r.brushes[h] = &brushEntry{color: c}
	r.pending = true
	return h
}

// Invalidate drops every underlying resource, as after a device reset.
func (r *Resources) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.fonts {
		f.ready = false
	}
	for _, b := range r.brushes {
		b.ready = false
	}
	r.pending = true
}

// Setup recreates resources when something was added or invalidated since the
// last call. Returns true if it did any work.
func (r *Resources) Setup() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.pending {
		return false
	}
	r.recreateLocked()
	return true
}

// Recreate rebuilds every registered resource unconditionally.
func (r *Resources) Recreate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recreateLocked()
}

func (r *Resources) recreateLocked() {
	for _, f := range r.fonts {
		f.style = lipgloss.NewStyle().Bold(f.bold)
		f.ready = true
	}
	for _, b := range r.brushes {
		b.ready = true
	}
	r.pending = false
}

// FontReady reports whether the font can be drawn with this frame.
func (r *Resources) FontReady(h FontHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fonts[h]
	return ok && f.ready
}

// BrushReady reports whether the brush can be drawn with this frame.
func (r *Resources) BrushReady(h BrushHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.brushes[h]
	return ok && b.ready
}

// Font resolves a ready font to its style.
func (r *Resources) Font(h FontHandle) (lipgloss.Style, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fonts[h]
	if !ok || !f.ready {
		return lipgloss.Style{}, false
	}
	return f.style, true
}

// Brush resolves a ready brush to its colour.
func (r *Resources) Brush(h BrushHandle) (RGBA, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.brushes[h]
	if !ok || !b.ready {
		return RGBA{}, false
	}
	return b.color, true
}
