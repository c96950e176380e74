package geom

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"overlap", Rect{0, 0, 10, 10}, Rect{5, 5, 10, 10}, Rect{5, 5, 5, 5}},
		{"contained", Rect{0, 0, 10, 10}, Rect{2, 2, 3, 3}, Rect{2, 2, 3, 3}},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 5, 5}, Rect{}},
		{"touching edges", Rect{0, 0, 10, 10}, Rect{10, 0, 5, 5}, Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersect(tt.b))
		})
	}
}

func TestRectImageRoundTrip(t *testing.T) {
	r := Rect{X: 1.5, Y: 2.2, Width: 3, Height: 4}
	assert.Equal(t, image.Rect(1, 2, 5, 7), r.ToImageRect())
	assert.Equal(t, Rect{X: 1, Y: 2, Width: 4, Height: 5}, FromImageRect(image.Rect(1, 2, 5, 7)))
}

func TestTransformApply(t *testing.T) {
	tr := Transform{Scale: 2, Translate: Vector{X: 10, Y: -5}}
	assert.Equal(t, Point{X: 12, Y: -1}, tr.Apply(Point{X: 1, Y: 2}))
	assert.True(t, IdentityTransform().IsIdentity())
	assert.False(t, tr.IsIdentity())
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	assert.True(t, r.Contains(Point{X: 0, Y: 0}))
	assert.True(t, r.Contains(Point{X: 9.9, Y: 9.9}))
	assert.False(t, r.Contains(Point{X: 10, Y: 5}))
}
