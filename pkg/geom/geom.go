// Package geom holds the small value types shared by the frame, viewport and
// paint packages. Coordinates are CSS pixels unless a name says otherwise.
package geom

import (
	"image"
	"math"
)

// Point is a location in float coordinates.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by the vector v.
func (p Point) Add(v Vector) Point { return Point{X: p.X + v.X, Y: p.Y + v.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Vector { return Vector{X: p.X - q.X, Y: p.Y - q.Y} }

// IsOrigin reports whether p is (0, 0).
func (p Point) IsOrigin() bool { return p.X == 0 && p.Y == 0 }

// Floor rounds both coordinates down.
func (p Point) Floor() Point { return Point{X: math.Floor(p.X), Y: math.Floor(p.Y)} }

// Ceil rounds both coordinates up.
func (p Point) Ceil() Point { return Point{X: math.Ceil(p.X), Y: math.Ceil(p.Y)} }

// Max returns the component-wise maximum of p and q.
func (p Point) Max(q Point) Point { return Point{X: math.Max(p.X, q.X), Y: math.Max(p.Y, q.Y)} }

// Min returns the component-wise minimum of p and q.
func (p Point) Min(q Point) Point { return Point{X: math.Min(p.X, q.X), Y: math.Min(p.Y, q.Y)} }

// Vector is an offset between two points.
type Vector struct {
	X float64
	Y float64
}

// Scale multiplies each component independently.
func (v Vector) Scale(sx, sy float64) Vector { return Vector{X: v.X * sx, Y: v.Y * sy} }

// Size is a width and height.
type Size struct {
	Width  float64
	Height float64
}

// IsEmpty reports whether either dimension is zero or negative.
func (s Size) IsEmpty() bool { return s.Width <= 0 || s.Height <= 0 }

// Scale multiplies both dimensions by f.
func (s Size) Scale(f float64) Size { return Size{Width: s.Width * f, Height: s.Height * f} }

// Max returns the component-wise maximum of s and o.
func (s Size) Max(o Size) Size {
	return Size{Width: math.Max(s.Width, o.Width), Height: math.Max(s.Height, o.Height)}
}

// Area returns Width*Height.
func (s Size) Area() float64 { return s.Width * s.Height }

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RectFromPointSize builds a Rect from an origin and a size.
func RectFromPointSize(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Size returns the rectangle dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// BottomRight returns the bottom-right corner.
func (r Rect) BottomRight() Point { return Point{X: r.Right(), Y: r.Bottom()} }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// WithOrigin returns r moved so that its origin is p.
func (r Rect) WithOrigin(p Point) Rect { r.X, r.Y = p.X, p.Y; return r }

// Offset returns r translated by v.
func (r Rect) Offset(v Vector) Rect { r.X += v.X; r.Y += v.Y; return r }

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive, matching image.Rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Intersect returns the overlap of r and o, or the zero Rect when they do not
// overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.Right(), o.Right())
	y1 := math.Min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// ToImageRect converts r to integer pixel bounds by flooring the origin and
// ceiling the far edges.
func (r Rect) ToImageRect() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.Right())), int(math.Ceil(r.Bottom())),
	)
}

// FromImageRect converts integer pixel bounds to a Rect.
func FromImageRect(r image.Rectangle) Rect {
	return Rect{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// Transform is a scale followed by a translation. It is the only affine shape
// the viewport code needs (device emulation, frame offsets).
type Transform struct {
	Scale     float64
	Translate Vector
}

// IdentityTransform returns the transform that leaves points unchanged.
func IdentityTransform() Transform { return Transform{Scale: 1} }

// IsIdentity reports whether t leaves points unchanged.
func (t Transform) IsIdentity() bool {
	return t.Scale == 1 && t.Translate.X == 0 && t.Translate.Y == 0
}

// Apply maps p through t.
func (t Transform) Apply(p Point) Point {
	return Point{X: p.X*t.Scale + t.Translate.X, Y: p.Y*t.Scale + t.Translate.Y}
}
