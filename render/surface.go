package render

import "image"

// Surface accepts draw primitives in top-left-origin pixel space. Callers manage
// layout; a surface only rasterizes.
type Surface interface {
	DrawText(font FontHandle, brush BrushHandle, at Point, text string)
	DrawImage(img image.Image, rect Rect, opacity float64)
	DrawLine(brush BrushHandle, from, to Point, width float64)
	FillRect(brush BrushHandle, rect Rect)
	Bounds() Rect
}
