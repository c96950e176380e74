package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"framecore/pkg/geom"
)

func TestLayoutViewportClampsScroll(t *testing.T) {
	l := NewLayoutViewport(geom.Size{Width: 400, Height: 800})
	l.SetContentsSize(geom.Size{Width: 1000, Height: 3000})

	var notified []geom.Vector
	l.OnScroll(func(v geom.Vector) { notified = append(notified, v) })

	l.SetScrollOffset(geom.Vector{X: -5, Y: 5000})
	assert.Equal(t, geom.Vector{X: 0, Y: 2200}, l.ScrollOffset())
	l.SetScrollOffset(geom.Vector{X: 0, Y: 2200})
	assert.Len(t, notified, 1, "unchanged offset does not notify")

	l.SetContentsSize(geom.Size{Width: 400, Height: 1000})
	assert.Equal(t, geom.Vector{X: 0, Y: 200}, l.ScrollOffset())
	assert.Equal(t, geom.Rect{X: 0, Y: 200, Width: 400, Height: 800}, l.VisibleContentRect())
}

func TestVisualViewportScaleClampsLocation(t *testing.T) {
	v := NewVisualViewport(geom.Size{Width: 400, Height: 800})
	v.SetLocation(geom.Point{X: 50, Y: 50})
	assert.Equal(t, geom.Point{}, v.Location(), "nothing to pan at scale 1")

	v.SetScale(2)
	v.SetLocation(geom.Point{X: 150, Y: 500})
	assert.Equal(t, geom.Point{X: 150, Y: 400}, v.Location())
	assert.Equal(t, geom.Size{Width: 200, Height: 400}, v.VisibleSize())

	v.SetScale(1.25)
	assert.Equal(t, geom.Point{X: 80, Y: 160}, v.Location())
	assert.True(t, v.NeedsRepaint())
	v.ClearNeedsRepaint()
	assert.False(t, v.NeedsRepaint())
}

func TestRootFrameViewportVisibleRect(t *testing.T) {
	l := NewLayoutViewport(geom.Size{Width: 400, Height: 800})
	l.SetContentsSize(geom.Size{Width: 2000, Height: 4000})
	l.SetScrollOffset(geom.Vector{X: 100, Y: 200})
	v := NewVisualViewport(geom.Size{Width: 400, Height: 800})
	v.SetScaleAndLocation(2, geom.Point{X: 10, Y: 20})

	r := NewRootFrameViewport(l, v)
	assert.Equal(t, geom.Rect{X: 110, Y: 220, Width: 200, Height: 400}, r.VisibleContentRect())
}

func TestMoveToEncloseRect(t *testing.T) {
	outer := geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	inner := geom.Rect{X: 150.5, Y: 20, Width: 50, Height: 50}
	got := moveToEncloseRect(outer, inner)
	assert.Equal(t, geom.Rect{X: 101, Y: 0, Width: 100, Height: 100}, got)
}

func TestMoveIntoRect(t *testing.T) {
	outer := geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	assert.Equal(t, geom.Rect{X: 50, Y: 0, Width: 50, Height: 50},
		moveIntoRect(geom.Rect{X: 80, Y: -10, Width: 50, Height: 50}, outer))
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 200, Height: 50},
		moveIntoRect(geom.Rect{X: 30, Y: 0, Width: 200, Height: 50}, outer),
		"oversized inner keeps the minimum position")
}
