package render

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	DefaultCellWidth  = 6
	DefaultCellHeight = 17
)

type cell struct {
	ch     rune // 0 marks the right half of a wide rune
	fg, bg RGBA
	hasFg  bool
	hasBg  bool
	bold   bool
}

func (c cell) styleKey() cellStyle {
	return cellStyle{fg: c.fg, bg: c.bg, hasFg: c.hasFg, hasBg: c.hasBg, bold: c.bold}
}

type cellStyle struct {
	fg, bg RGBA
	hasFg  bool
	hasBg  bool
	bold   bool
}

// Canvas is a Surface backed by a grid of terminal cells. Each cell covers
// CellWidth x CellHeight pixels.
type Canvas struct {
	res        *Resources
	cols, rows int
	cellW      int
	cellH      int
	cells      []cell
	styles     map[cellStyle]lipgloss.Style
}

// NewCanvas allocates a canvas of cols x rows cells.
func NewCanvas(res *Resources, cols, rows, cellW, cellH int) *Canvas {
	if cellW <= 0 {
		cellW = DefaultCellWidth
	}
	if cellH <= 0 {
		cellH = DefaultCellHeight
	}
	c := &Canvas{
		res:    res,
		cellW:  cellW,
		cellH:  cellH,
		styles: make(map[cellStyle]lipgloss.Style),
	}
	c.Resize(cols, rows)
	return c
}

// Resize reallocates the grid, clearing it.
func (c *Canvas) Resize(cols, rows int) {
	c.cols = max(cols, 0)
	c.rows = max(rows, 0)
	c.cells = make([]cell, c.cols*c.rows)
	c.Clear()
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{ch: ' '}
	}
}

// Size returns the grid size in cells.
func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

// CellSize returns the pixel size of one cell.
func (c *Canvas) CellSize() (w, h int) { return c.cellW, c.cellH }

// Bounds is the drawable area in pixels.
func (c *Canvas) Bounds() Rect {
	return R(0, 0, c.cols*c.cellW, c.rows*c.cellH)
}

func (c *Canvas) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return nil
	}
	return &c.cells[row*c.cols+col]
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}

// DrawText writes text starting at the cell containing at. Newlines advance one
// cell row. Wide runes take two cells.
func (c *Canvas) DrawText(font FontHandle, brush BrushHandle, at Point, text string) {
	style, ok := c.res.Font(font)
	if !ok {
		return
	}
	fg, ok := c.res.Brush(brush)
	if !ok {
		return
	}
	bold := style.GetBold()

	row := floorDiv(at.Y, c.cellH)
	startCol := floorDiv(at.X, c.cellW)
	for i, line := range strings.Split(text, "\n") {
		col := startCol
		for _, r := range line {
			w := ansi.StringWidth(string(r))
			if w == 0 {
				continue
			}
			if dst := c.at(col, row+i); dst != nil {
				dst.ch = r
				dst.fg, dst.hasFg = fg, true
				dst.bold = bold
			}
			if w == 2 {
				if dst := c.at(col+1, row+i); dst != nil {
					dst.ch = 0
				}
			}
			col += w
		}
	}
}

// DrawImage samples img into the cells covered by rect using upper half blocks,
// two pixels per cell. Opacity darkens toward the terminal background.
func (c *Canvas) DrawImage(img image.Image, rect Rect, opacity float64) {
	if img == nil || rect.Empty() {
		return
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return
	}
	c0, r0 := floorDiv(rect.Min.X, c.cellW), floorDiv(rect.Min.Y, c.cellH)
	c1, r1 := ceilDiv(rect.Max.X, c.cellW), ceilDiv(rect.Max.Y, c.cellH)
	cols, rows := c1-c0, r1-r0
	if cols <= 0 || rows <= 0 {
		return
	}

	sample := func(x, y int) RGBA {
		px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		alpha := float64(px.A) / 255 * opacity
		return RGB(px.R, px.G, px.B).Scale(alpha)
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			dst := c.at(c0+col, r0+row)
			if dst == nil {
				continue
			}
			sx := b.Min.X + (2*col+1)*b.Dx()/(2*cols)
			top := b.Min.Y + (2*row)*b.Dy()/(2*rows)
			bottom := b.Min.Y + (2*row+1)*b.Dy()/(2*rows)
			*dst = cell{
				ch:    '▀',
				fg:    sample(sx, top),
				bg:    sample(sx, bottom),
				hasFg: true,
				hasBg: true,
			}
		}
	}
}

// DrawLine rasterizes a line with box-drawing runes. Widths of 2 and more use
// the heavy variants.
func (c *Canvas) DrawLine(brush BrushHandle, from, to Point, width float64) {
	fg, ok := c.res.Brush(brush)
	if !ok {
		return
	}
	heavy := width >= 2

	x0, y0 := floorDiv(from.X, c.cellW), floorDiv(from.Y, c.cellH)
	x1, y1 := floorDiv(to.X, c.cellW), floorDiv(to.Y, c.cellH)

	put := func(col, row int, r rune) {
		if dst := c.at(col, row); dst != nil {
			dst.ch = r
			dst.fg, dst.hasFg = fg, true
		}
	}

	switch {
	case x0 == x1:
		r := '│'
		if heavy {
			r = '┃'
		}
		lo, hi := min(from.Y, to.Y), max(from.Y, to.Y)
		for row := floorDiv(lo, c.cellH); row <= floorDiv(max(hi-1, lo), c.cellH); row++ {
			put(x0, row, r)
		}
	case y0 == y1:
		r := '─'
		if heavy {
			r = '━'
		}
		lo, hi := min(from.X, to.X), max(from.X, to.X)
		for col := floorDiv(lo, c.cellW); col <= floorDiv(max(hi-1, lo), c.cellW); col++ {
			put(col, y0, r)
		}
	default:
		dx, dy := abs(x1-x0), -abs(y1-y0)
		sx, sy := sign(x1-x0), sign(y1-y0)
		e := dx + dy
		for {
			put(x0, y0, '•')
			if x0 == x1 && y0 == y1 {
				break
			}
			e2 := 2 * e
			if e2 >= dy {
				e += dy
				x0 += sx
			}
			if e2 <= dx {
				e += dx
				y0 += sy
			}
		}
	}
}

// FillRect paints the background of every cell touched by rect.
func (c *Canvas) FillRect(brush BrushHandle, rect Rect) {
	bg, ok := c.res.Brush(brush)
	if !ok || rect.Empty() {
		return
	}
	for row := floorDiv(rect.Min.Y, c.cellH); row < ceilDiv(rect.Max.Y, c.cellH); row++ {
		for col := floorDiv(rect.Min.X, c.cellW); col < ceilDiv(rect.Max.X, c.cellW); col++ {
			if dst := c.at(col, row); dst != nil {
				dst.bg, dst.hasBg = bg, true
			}
		}
	}
}

// Line returns the plain runes of one row, without styling.
func (c *Canvas) Line(row int) string {
	if row < 0 || row >= c.rows {
		return ""
	}
	var b strings.Builder
	for col := 0; col < c.cols; col++ {
		if ch := c.cells[row*c.cols+col].ch; ch != 0 {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// String renders the grid with lipgloss, one style per run of equally styled cells.
func (c *Canvas) String() string {
	var out strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		var run strings.Builder
		var runStyle cellStyle
		flush := func() {
			if run.Len() == 0 {
				return
			}
			out.WriteString(c.style(runStyle).Render(run.String()))
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			cl := c.cells[row*c.cols+col]
			if cl.ch == 0 {
				continue
			}
			if key := cl.styleKey(); key != runStyle {
				flush()
				runStyle = key
			}
			run.WriteRune(cl.ch)
		}
		flush()
	}
	return out.String()
}

func (c *Canvas) style(k cellStyle) lipgloss.Style {
	if s, ok := c.styles[k]; ok {
		return s
	}
	s := lipgloss.NewStyle().Bold(k.bold)
	if k.hasFg {
		s = s.Foreground(lipgloss.Color(k.fg.Hex()))
	}
	if k.hasBg {
		s = s.Background(lipgloss.Color(k.bg.Hex()))
	}
	c.styles[k] = s
	return s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
