// Package viewport models the two scrolling viewports of the main frame and
// the anchor that keeps content in place across a rotation.
package viewport

import (
	"math"

	"framecore/pkg/geom"
)

// LayoutViewport is the frame's own scroller (the "outer" viewport). Its
// scroll offset is in document coordinates.
type LayoutViewport struct {
	size         geom.Size
	contentsSize geom.Size
	scrollOffset geom.Vector

	scrollListeners []func(geom.Vector)
}

// NewLayoutViewport returns a viewport of the given size showing contents
// of the same size.
func NewLayoutViewport(size geom.Size) *LayoutViewport {
	return &LayoutViewport{size: size, contentsSize: size}
}

// Size is the visible size, excluding nothing (there are no scrollbars).
func (l *LayoutViewport) Size() geom.Size { return l.size }

// SetSize resizes the viewport and re-clamps the scroll offset.
func (l *LayoutViewport) SetSize(s geom.Size) {
	l.size = s
	l.SetScrollOffset(l.scrollOffset)
}

// ContentsSize is the scrollable size of the document.
func (l *LayoutViewport) ContentsSize() geom.Size { return l.contentsSize }

// SetContentsSize updates the scrollable size and re-clamps the offset.
func (l *LayoutViewport) SetContentsSize(s geom.Size) {
	l.contentsSize = s
	l.SetScrollOffset(l.scrollOffset)
}

// ScrollOffset returns the current scroll offset.
func (l *LayoutViewport) ScrollOffset() geom.Vector { return l.scrollOffset }

// MaximumScrollOffset is contents minus viewport size, never negative.
func (l *LayoutViewport) MaximumScrollOffset() geom.Vector {
	return geom.Vector{
		X: math.Max(0, l.contentsSize.Width-l.size.Width),
		Y: math.Max(0, l.contentsSize.Height-l.size.Height),
	}
}

// ClampScrollOffset clamps v into [0, MaximumScrollOffset].
func (l *LayoutViewport) ClampScrollOffset(v geom.Vector) geom.Vector {
	hi := l.MaximumScrollOffset()
	return geom.Vector{
		X: math.Max(0, math.Min(v.X, hi.X)),
		Y: math.Max(0, math.Min(v.Y, hi.Y)),
	}
}

// SetScrollOffset scrolls to the clamped v and notifies listeners when the
// offset changes.
func (l *LayoutViewport) SetScrollOffset(v geom.Vector) {
	v = l.ClampScrollOffset(v)
	if v == l.scrollOffset {
		return
	}
	l.scrollOffset = v
	for _, fn := range l.scrollListeners {
		fn(v)
	}
}

// OnScroll registers fn to run after every scroll offset change.
func (l *LayoutViewport) OnScroll(fn func(geom.Vector)) {
	l.scrollListeners = append(l.scrollListeners, fn)
}

// VisibleContentRect is the document region the viewport shows.
func (l *LayoutViewport) VisibleContentRect() geom.Rect {
	return geom.Rect{X: l.scrollOffset.X, Y: l.scrollOffset.Y, Width: l.size.Width, Height: l.size.Height}
}
