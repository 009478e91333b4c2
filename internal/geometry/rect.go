// Package geometry provides the rectangle value type shared by zone detection,
// reading order and content assignment.
package geometry

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle in page coordinates with the origin at the
// top-left corner and Y growing downward.
type Rect struct {
	X0 float64 `json:"x0" yaml:"x0"`
	Y0 float64 `json:"y0" yaml:"y0"`
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
}

// NewRect creates a rectangle from two opposite corners, normalizing the edges
// so that X0 <= X1 and Y0 <= Y1
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// FromArray creates a rectangle from an [x0, y0, x1, y1] array
func FromArray(a [4]float64) Rect {
	return NewRect(a[0], a[1], a[2], a[3])
}

// Array returns the rectangle as an [x0, y0, x1, y1] array
func (r Rect) Array() [4]float64 {
	return [4]float64{r.X0, r.Y0, r.X1, r.Y1}
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Center returns the midpoint of the rectangle
func (r Rect) Center() (x, y float64) {
	return (r.X0 + r.X1) / 2, (r.Y0 + r.Y1) / 2
}

// IsEmpty reports whether the rectangle has zero area
func (r Rect) IsEmpty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains reports whether other lies entirely within r. Shared edges count as
// contained; partial overlap does not.
func (r Rect) Contains(other Rect) bool {
	return other.X0 >= r.X0 &&
		other.Y0 >= r.Y0 &&
		other.X1 <= r.X1 &&
		other.Y1 <= r.Y1
}

// Intersects reports whether the interiors of r and other overlap
func (r Rect) Intersects(other Rect) bool {
	return r.X0 < other.X1 && other.X0 < r.X1 &&
		r.Y0 < other.Y1 && other.Y0 < r.Y1
}

// OverlapsX reports whether the horizontal ranges of r and other touch or overlap
func (r Rect) OverlapsX(other Rect) bool {
	return r.X0 <= other.X1 && other.X0 <= r.X1
}

// OverlapY returns the length of the vertical overlap of r and other (0 if none)
func (r Rect) OverlapY(other Rect) float64 {
	overlap := math.Min(r.Y1, other.Y1) - math.Max(r.Y0, other.Y0)
	if overlap < 0 {
		return 0
	}
	return overlap
}

// Union returns the smallest rectangle enclosing both r and other
func (r Rect) Union(other Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, other.X0),
		Y0: math.Min(r.Y0, other.Y0),
		X1: math.Max(r.X1, other.X1),
		Y1: math.Max(r.Y1, other.Y1),
	}
}

// Inset returns r shrunk by top and bottom margins. The result never inverts:
// margins larger than the height collapse it to a zero-height rectangle.
func (r Rect) Inset(top, bottom float64) Rect {
	out := Rect{X0: r.X0, Y0: r.Y0 + top, X1: r.X1, Y1: r.Y1 - bottom}
	if out.Y1 < out.Y0 {
		out.Y1 = out.Y0
	}
	return out
}

// String renders the rectangle as Rect(x0, y0, x1, y1)
func (r Rect) String() string {
	return fmt.Sprintf("Rect(%g, %g, %g, %g)", r.X0, r.Y0, r.X1, r.Y1)
}

// Bounds returns the union of all rectangles and false when rects is empty
func Bounds(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	out := rects[0]
	for _, r := range rects[1:] {
		out = out.Union(r)
	}
	return out, true
}
