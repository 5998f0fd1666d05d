// Package render holds the drawing collaborators of the overlay: a pixel-space
// Surface, the font/brush resource cache and a terminal cell Canvas.
package render

import "fmt"

// Point is a position in top-left-origin pixel space.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Rect is an axis-aligned rectangle; Max is exclusive.
type Rect struct {
	Min, Max Point
}

// R builds a rectangle from its edges.
func R(left, top, right, bottom int) Rect {
	return Rect{Min: Point{X: left, Y: top}, Max: Point{X: right, Y: bottom}}
}

func (r Rect) Dx() int { return r.Max.X - r.Min.X }
func (r Rect) Dy() int { return r.Max.Y - r.Min.Y }

// Empty reports whether the rectangle contains no pixels.
func (r Rect) Empty() bool { return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y }

// Translate moves the rectangle by the given offset.
func (r Rect) Translate(dx, dy int) Rect {
	return R(r.Min.X+dx, r.Min.Y+dy, r.Max.X+dx, r.Max.Y+dy)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

// RGBA is an 8-bit colour.
type RGBA struct {
	R, G, B, A uint8
}

// RGB is an opaque colour.
func RGB(r, g, b uint8) RGBA { return RGBA{R: r, G: g, B: b, A: 255} }

// Hex formats the colour as #rrggbb for lipgloss.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Scale darkens the colour toward black by factor (0..1).
func (c RGBA) Scale(factor float64) RGBA {
	if factor >= 1 {
		return c
	}
	if factor < 0 {
		factor = 0
	}
	return RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}
