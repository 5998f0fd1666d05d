package board

import (
	"fmt"
	"strings"

	"github.com/CrestNiraj12/boardhud/domain"
	"github.com/CrestNiraj12/boardhud/render"
)

// Metrics are the pixel constants of post layout.
type Metrics struct {
	LineHeight   int
	GlyphWidth   int
	NoImageRows  int
	ThumbWidth   int
	PostWidth    int
	ThumbGap     int // Between a single thumbnail and its text column
	FileGap      int // Between thumbnails in a row
	SectionGap   int // Between the thumbnail row and the text
	PostSpacing  int
	RuleOffset   int
	RuleWidth    int
	ThumbOpacity float64
	ExpandMarker string
}

// DefaultMetrics returns the stock layout constants.
func DefaultMetrics() Metrics {
	return Metrics{
		LineHeight:   17,
		GlyphWidth:   6,
		NoImageRows:  6,
		ThumbWidth:   100,
		PostWidth:    430,
		ThumbGap:     10,
		FileGap:      5,
		SectionGap:   10,
		PostSpacing:  15,
		RuleOffset:   5,
		RuleWidth:    2,
		ThumbOpacity: 0.5,
		ExpandMarker: "Развернуть...",
	}
}

// LayoutKey captures every input that changes a post's geometry.
type LayoutKey struct {
	Num          int
	Bottom       int
	Left         int
	Focused      bool
	Expanded     bool
	IncomingRefs int
	Thumbs       uint64 // Bit i set when attachment i is absent
}

// ThumbMask encodes which attachments are absent.
func ThumbMask(files []domain.File, absent func(domain.File) bool) uint64 {
	var mask uint64
	for i, f := range files {
		if i >= 64 {
			break
		}
		if !f.HasThumbnail() || (absent != nil && absent(f)) {
			mask |= 1 << i
		}
	}
	return mask
}

// TextBlock is text anchored at its top-left corner.
type TextBlock struct {
	At   render.Point
	Text string
	Rows int
}

// ImageBlock places one attachment thumbnail.
type ImageBlock struct {
	URL  string
	Rect render.Rect
}

// PostGeometry is the laid-out form of a post, bottom-anchored at Bottom.
type PostGeometry struct {
	Num       int
	Top       int
	Bottom    int
	Height    int
	Focused   bool
	Truncated bool
	Header    TextBlock
	Body      TextBlock
	Refs      TextBlock // Rows == 0 when nothing links here
	Images    []ImageBlock
	RuleFrom  render.Point
	RuleTo    render.Point
	RuleWidth float64
}

// Layout computes the geometry of p for key. It is pure: the same inputs always
// give the same geometry. absent reports attachments to leave out.
func Layout(p *domain.Post, key LayoutKey, m Metrics, absent func(domain.File) bool) PostGeometry {
	var usable []domain.File
	for i, f := range p.Files {
		if i < 64 && key.Thumbs&(1<<i) != 0 {
			continue
		}
		if !f.HasThumbnail() || (absent != nil && absent(f)) {
			continue
		}
		usable = append(usable, f)
	}

	g := PostGeometry{
		Num:       p.Num,
		Bottom:    key.Bottom,
		Focused:   key.Focused,
		RuleWidth: float64(m.RuleWidth),
	}

	headerH := m.LineHeight
	refs := refsText(p, key.IncomingRefs)
	var refsWrap domain.WrapResult
	if refs != "" {
		refsWrap = domain.Wrap(refs, m.PostWidth/m.GlyphWidth, 0)
	}
	refsH := refsWrap.Rows * m.LineHeight

	var (
		body     TextBlock
		bodyH    int
		sectionH int
		images   []ImageBlock
	)
	maxRows := m.NoImageRows
	if len(usable) == 1 {
		f := usable[0]
		thumbH := f.ThumbHeight(m.ThumbWidth)
		bodyH = max(thumbH, m.LineHeight*m.NoImageRows)
		maxRows = bodyH / m.LineHeight
		if key.Expanded {
			maxRows = 0
		}
		maxLen := (m.PostWidth - (m.ThumbWidth + m.ThumbGap)) / m.GlyphWidth
		body, g.Truncated = wrapBody(p.CleanedComment(), maxLen, maxRows, m.ExpandMarker)
		if g.Truncated {
			bodyH += m.LineHeight
		} else {
			bodyH = max(bodyH, body.Rows*m.LineHeight)
		}

		top := key.Bottom - refsH - bodyH - headerH
		bodyTop := top + headerH
		body.At = render.Pt(key.Left+m.ThumbWidth+m.ThumbGap, bodyTop)
		images = []ImageBlock{{
			URL:  f.Thumbnail,
			Rect: render.R(key.Left, bodyTop, key.Left+m.ThumbWidth, bodyTop+thumbH),
		}}
	} else {
		if key.Expanded {
			maxRows = 0
		}
		body, g.Truncated = wrapBody(p.CleanedComment(), m.PostWidth/m.GlyphWidth, maxRows, m.ExpandMarker)
		bodyH = body.Rows * m.LineHeight

		rows := thumbRows(usable, m)
		for _, h := range rows.heights {
			sectionH += h
		}
		if len(usable) > 0 {
			sectionH += (len(rows.heights)-1)*m.FileGap + m.SectionGap
		}

		top := key.Bottom - refsH - bodyH - sectionH - headerH
		rowTop := top + headerH
		for r, row := range rows.files {
			x := key.Left
			for _, f := range row {
				h := f.ThumbHeight(m.ThumbWidth)
				images = append(images, ImageBlock{
					URL:  f.Thumbnail,
					Rect: render.R(x, rowTop, x+m.ThumbWidth, rowTop+h),
				})
				x += m.ThumbWidth + m.FileGap
			}
			rowTop += rows.heights[r] + m.FileGap
		}
		body.At = render.Pt(key.Left, top+headerH+sectionH)
	}

	g.Height = headerH + sectionH + bodyH + refsH
	g.Top = key.Bottom - g.Height
	g.Header = TextBlock{At: render.Pt(key.Left, g.Top), Text: headerText(p, key.IncomingRefs), Rows: 1}
	g.Body = body
	g.Images = images
	if refsWrap.Rows > 0 {
		g.Refs = TextBlock{
			At:   render.Pt(key.Left, key.Bottom-refsH),
			Text: refsWrap.Text,
			Rows: refsWrap.Rows,
		}
	}
	ruleX := key.Left - m.RuleOffset
	g.RuleFrom = render.Pt(ruleX, key.Bottom)
	g.RuleTo = render.Pt(ruleX, g.Top)
	return g
}

func wrapBody(text string, maxLen, maxRows int, marker string) (TextBlock, bool) {
	res := domain.Wrap(text, maxLen, maxRows)
	block := TextBlock{Text: res.Text, Rows: res.Rows}
	if res.Truncated {
		block.Text += marker + "\n"
		block.Rows++
	}
	return block, res.Truncated
}

type thumbGrid struct {
	files   [][]domain.File
	heights []int
}

// thumbRows packs thumbnails left to right, starting a new row when the next one
// would overflow the post width.
func thumbRows(files []domain.File, m Metrics) thumbGrid {
	var g thumbGrid
	perRow := max((m.PostWidth+m.FileGap)/(m.ThumbWidth+m.FileGap), 1)
	for i := 0; i < len(files); i += perRow {
		row := files[i:min(i+perRow, len(files))]
		h := 0
		for _, f := range row {
			h = max(h, f.ThumbHeight(m.ThumbWidth))
		}
		g.files = append(g.files, row)
		g.heights = append(g.heights, h)
	}
	return g
}

func headerText(p *domain.Post, refs int) string {
	var b strings.Builder
	fmt.Fprintf(&b, ">>%d", p.Num)
	if p.Date != "" {
		b.WriteString("  ")
		b.WriteString(p.Date)
	}
	if refs > 0 {
		fmt.Fprintf(&b, "  ↩%d", refs)
	}
	return b.String()
}

func refsText(p *domain.Post, count int) string {
	if count <= 0 {
		return ""
	}
	refs := p.IncomingRefs()
	if len(refs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(refs)+1)
	parts = append(parts, "↩")
	for _, n := range refs {
		parts = append(parts, fmt.Sprintf(">>%d", n))
	}
	return strings.Join(parts, " ")
}

// LayoutCache memoizes one geometry per post, recomputed whenever the key changes.
type LayoutCache struct {
	metrics Metrics
	entries map[int]cachedLayout
	hits    int
	misses  int
}

type cachedLayout struct {
	key  LayoutKey
	geom PostGeometry
}

// NewLayoutCache returns an empty cache using m.
func NewLayoutCache(m Metrics) *LayoutCache {
	return &LayoutCache{metrics: m, entries: make(map[int]cachedLayout)}
}

// Metrics returns the layout constants in use.
func (c *LayoutCache) Metrics() Metrics { return c.metrics }

// Get returns the geometry of p for key, reusing the previous result when the
// key is unchanged.
func (c *LayoutCache) Get(p *domain.Post, key LayoutKey, absent func(domain.File) bool) PostGeometry {
	if e, ok := c.entries[p.Num]; ok && e.key == key {
		c.hits++
		return e.geom
	}
	c.misses++
	g := Layout(p, key, c.metrics, absent)
	c.entries[p.Num] = cachedLayout{key: key, geom: g}
	return g
}

// Forget drops the cached geometry of one post.
func (c *LayoutCache) Forget(num int) {
	delete(c.entries, num)
}

// Reset drops every cached geometry.
func (c *LayoutCache) Reset() {
	c.entries = make(map[int]cachedLayout)
	c.hits, c.misses = 0, 0
}

// Len returns the number of cached posts.
func (c *LayoutCache) Len() int { return len(c.entries) }

// Stats reports cache hits and misses since the last Reset.
func (c *LayoutCache) Stats() (hits, misses int) { return c.hits, c.misses }
