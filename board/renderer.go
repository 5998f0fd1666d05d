package board

import (
	"github.com/CrestNiraj12/boardhud/app"
	"github.com/CrestNiraj12/boardhud/domain"
	"github.com/CrestNiraj12/boardhud/render"
)

// Palette is the set of resource handles the board draws with.
type Palette struct {
	Font        render.FontHandle
	HeaderFont  render.FontHandle
	Text        render.BrushHandle
	Header      render.BrushHandle
	Rule        render.BrushHandle
	Focus       render.BrushHandle
	Placeholder render.BrushHandle
}

// NewPalette registers the board's fonts and brushes.
func NewPalette(res *render.Resources) Palette {
	return Palette{
		Font:        res.AddFont("Consolas", 14, false),
		HeaderFont:  res.AddFont("Consolas", 14, true),
		Text:        res.AddSolidColor(render.RGB(255, 255, 255)),
		Header:      res.AddSolidColor(render.RGB(150, 150, 150)),
		Rule:        res.AddSolidColor(render.RGB(255, 255, 255)),
		Focus:       res.AddSolidColor(render.RGB(255, 102, 0)),
		Placeholder: res.AddSolidColor(render.RGB(40, 40, 40)),
	}
}

// Frame summarizes one Draw call.
type Frame struct {
	Drawn   int
	Pending []string // Thumbnails nobody has requested yet
}

// Renderer draws the navigator window onto a surface, newest post at the bottom.
type Renderer struct {
	nav     *Navigator
	cache   *LayoutCache
	thumbs  app.ThumbnailSource
	res     *render.Resources
	palette Palette
}

// NewRenderer wires a renderer. thumbs may be nil, in which case attachments
// are laid out but never drawn.
func NewRenderer(nav *Navigator, cache *LayoutCache, thumbs app.ThumbnailSource, res *render.Resources) *Renderer {
	return &Renderer{
		nav:     nav,
		cache:   cache,
		thumbs:  thumbs,
		res:     res,
		palette: NewPalette(res),
	}
}

// absent reports attachments whose thumbnail failed to load.
func (r *Renderer) absent(f domain.File) bool {
	if r.thumbs == nil {
		return false
	}
	_, state := r.thumbs.Thumbnail(f.Thumbnail)
	return state == app.ThumbFailed
}

// Draw lays the window out bottom-up inside panel and draws it. Posts are
// stacked until one crosses the panel top.
func (r *Renderer) Draw(s render.Surface, panel render.Rect) Frame {
	var frame Frame
	window := r.nav.Window()
	if len(window) == 0 || panel.Empty() {
		return frame
	}

	m := r.cache.Metrics()
	left := panel.Min.X + m.RuleOffset + m.RuleWidth
	bottom := panel.Max.Y
	seen := make(map[string]struct{})

	for i := len(window) - 1; i >= 0; i-- {
		p := window[i]
		key := LayoutKey{
			Num:          p.Num,
			Bottom:       bottom,
			Left:         left,
			Focused:      r.nav.IsFocused(p.Num),
			IncomingRefs: p.IncomingRefCount(),
			Thumbs:       ThumbMask(p.Files, r.absent),
		}
		key.Expanded = key.Focused && r.nav.Expanded()

		g := r.cache.Get(p, key, r.absent)
		r.drawPost(s, g, &frame, seen)
		frame.Drawn++

		if g.Top < panel.Min.Y {
			break
		}
		bottom = g.Top - m.PostSpacing
	}
	return frame
}

func (r *Renderer) drawPost(s render.Surface, g PostGeometry, frame *Frame, seen map[string]struct{}) {
	p := r.palette

	rule := p.Rule
	if g.Focused {
		rule = p.Focus
	}
	if r.res.BrushReady(rule) {
		s.DrawLine(rule, g.RuleFrom, g.RuleTo, g.RuleWidth)
	}

	for _, img := range g.Images {
		r.drawThumb(s, img, frame, seen)
	}

	if r.res.FontReady(p.HeaderFont) && r.res.BrushReady(p.Header) {
		s.DrawText(p.HeaderFont, p.Header, g.Header.At, g.Header.Text)
	}
	if !r.res.FontReady(p.Font) || !r.res.BrushReady(p.Text) {
		return
	}
	s.DrawText(p.Font, p.Text, g.Body.At, g.Body.Text)
	if g.Refs.Rows > 0 {
		s.DrawText(p.Font, p.Header, g.Refs.At, g.Refs.Text)
	}
}

func (r *Renderer) drawThumb(s render.Surface, img ImageBlock, frame *Frame, seen map[string]struct{}) {
	if r.thumbs == nil {
		return
	}
	m := r.cache.Metrics()
	decoded, state := r.thumbs.Thumbnail(img.URL)
	switch state {
	case app.ThumbReady:
		s.DrawImage(decoded, img.Rect, m.ThumbOpacity)
		return
	case app.ThumbMissing:
		if _, ok := seen[img.URL]; !ok {
			seen[img.URL] = struct{}{}
			frame.Pending = append(frame.Pending, img.URL)
		}
	}
	if r.res.BrushReady(r.palette.Placeholder) {
		s.FillRect(r.palette.Placeholder, img.Rect)
	}
}
