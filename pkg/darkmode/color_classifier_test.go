package darkmode

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func gray(v uint8) color.NRGBA { return color.NRGBA{R: v, G: v, B: v, A: 255} }

func TestBrightness(t *testing.T) {
	assert.Equal(t, 0, Brightness(gray(0)))
	assert.Equal(t, 255, Brightness(gray(255)))
	assert.Equal(t, 76, Brightness(color.NRGBA{R: 255, A: 255}))
	assert.Equal(t, 149, Brightness(color.NRGBA{G: 255, A: 255}))
	assert.Equal(t, 29, Brightness(color.NRGBA{B: 255, A: 255}))
}

func TestBackgroundClassifierBoundary(t *testing.T) {
	const threshold = 200
	c := NewBackgroundClassifier(threshold)
	// Grays have brightness equal to their channel value.
	assert.Equal(t, DoNotApplyFilter, c.ShouldInvertColor(gray(threshold)))
	assert.Equal(t, ApplyFilter, c.ShouldInvertColor(gray(threshold+1)))
	assert.Equal(t, DoNotApplyFilter, c.ShouldInvertColor(gray(threshold-1)))
}

func TestForegroundClassifierBoundary(t *testing.T) {
	const threshold = 150
	c := NewForegroundClassifier(threshold)
	assert.Equal(t, DoNotApplyFilter, c.ShouldInvertColor(gray(threshold)))
	assert.Equal(t, ApplyFilter, c.ShouldInvertColor(gray(threshold-1)))
	assert.Equal(t, DoNotApplyFilter, c.ShouldInvertColor(gray(threshold+1)))
}

func TestClassifierExtremeThresholds(t *testing.T) {
	for v := 0; v <= 255; v += 15 {
		c := gray(uint8(v))
		assert.Equal(t, DoNotApplyFilter, NewBackgroundClassifier(0).ShouldInvertColor(c))
		assert.Equal(t, DoNotApplyFilter, NewBackgroundClassifier(255).ShouldInvertColor(c))
		assert.Equal(t, DoNotApplyFilter, NewForegroundClassifier(0).ShouldInvertColor(c))
		assert.Equal(t, ApplyFilter, NewForegroundClassifier(255).ShouldInvertColor(c))
		assert.Equal(t, ApplyFilter, NewForegroundClassifier(300).ShouldInvertColor(c))
	}
}
