package darkmode

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	result float32
	calls  int
	last   [4]float32
}

func (m *stubModel) Infer(f [4]float32) float32 {
	m.calls++
	m.last = f
	return m.result
}

func fill(w, h int, fn func(x, y int) color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, fn(x, y))
		}
	}
	return img
}

// icon is white with a black square in the middle.
func icon() *image.NRGBA {
	return fill(20, 20, func(x, y int) color.NRGBA {
		if x >= 5 && x < 15 && y >= 5 && y < 15 {
			return gray(0)
		}
		return gray(255)
	})
}

func TestClassifyDegenerateInputs(t *testing.T) {
	c := NewImageClassifier(nil)
	populated := icon()

	t.Run("nil pixmap", func(t *testing.T) {
		assert.Equal(t, DoNotApplyFilter, c.Classify(nil, image.Rect(0, 0, 10, 10)))
	})
	t.Run("empty pixmap", func(t *testing.T) {
		assert.Equal(t, DoNotApplyFilter, c.Classify(image.NewNRGBA(image.Rectangle{}), image.Rect(0, 0, 10, 10)))
	})
	t.Run("src exceeds bounds", func(t *testing.T) {
		assert.Equal(t, DoNotApplyFilter, c.Classify(populated, image.Rect(0, 0, 21, 20)))
		assert.Equal(t, DoNotApplyFilter, c.Classify(populated, image.Rect(-1, 0, 10, 10)))
	})
	t.Run("empty src", func(t *testing.T) {
		assert.Equal(t, DoNotApplyFilter, c.Classify(populated, image.Rect(5, 5, 5, 15)))
	})
	t.Run("fully transparent", func(t *testing.T) {
		clear := fill(20, 20, func(int, int) color.NRGBA { return color.NRGBA{} })
		assert.Equal(t, DoNotApplyFilter, c.Classify(clear, clear.Bounds()))
	})
}

func TestClassifyIconApplies(t *testing.T) {
	c := NewImageClassifier(nil)
	img := icon()
	f, ok := c.GetFeatures(img, img.Bounds())
	require.True(t, ok)
	assert.False(t, f.IsColorful)
	assert.InDelta(t, 2.0/16, f.ColorBucketsRatio, 1e-6)
	assert.Zero(t, f.TransparencyRatio)
	assert.Zero(t, f.BackgroundRatio)
	assert.Equal(t, ApplyFilter, c.Classify(img, img.Bounds()))
}

func TestClassifyPhotoDoesNotApply(t *testing.T) {
	c := NewImageClassifier(nil)
	img := fill(100, 100, func(x, y int) color.NRGBA {
		return color.NRGBA{R: uint8(x * 255 / 99), G: uint8(y * 255 / 99), B: uint8((x + y) % 256), A: 255}
	})
	f, ok := c.GetFeatures(img, img.Bounds())
	require.True(t, ok)
	assert.True(t, f.IsColorful)
	assert.Greater(t, f.ColorBucketsRatio, float32(0.025635))
	assert.Equal(t, DoNotApplyFilter, c.Classify(img, img.Bounds()))
}

func TestClassifyFallsBackToModel(t *testing.T) {
	// A horizontal gray ramp fills every luminance bucket, which the
	// decision tree leaves unclassified.
	img := fill(100, 100, func(x, _ int) color.NRGBA { return gray(uint8(x * 255 / 99)) })

	positive := &stubModel{result: 1}
	assert.Equal(t, ApplyFilter, NewImageClassifier(positive).Classify(img, img.Bounds()))
	assert.Equal(t, 1, positive.calls)
	assert.Equal(t, [4]float32{0, 1, 0, 0}, positive.last)

	negative := &stubModel{result: -0.5}
	assert.Equal(t, DoNotApplyFilter, NewImageClassifier(negative).Classify(img, img.Bounds()))

	zero := &stubModel{result: 0}
	assert.Equal(t, DoNotApplyFilter, NewImageClassifier(zero).Classify(img, img.Bounds()))
}

func TestTransparencyAndBackgroundRatios(t *testing.T) {
	img := fill(20, 20, func(x, _ int) color.NRGBA {
		if x < 10 {
			return gray(0)
		}
		return color.NRGBA{}
	})
	f, ok := NewImageClassifier(nil).GetFeatures(img, img.Bounds())
	require.True(t, ok)
	assert.InDelta(t, 0.5, f.TransparencyRatio, 1e-6)
	assert.InDelta(t, 0.5, f.BackgroundRatio, 1e-6)
}

func TestSubRegionSampling(t *testing.T) {
	// Only the black square is sampled, a single bucket.
	img := icon()
	f, ok := NewImageClassifier(nil).GetFeatures(img, image.Rect(5, 5, 15, 15))
	require.True(t, ok)
	assert.InDelta(t, 1.0/16, f.ColorBucketsRatio, 1e-6)
}

func TestClassifyUsingDecisionTree(t *testing.T) {
	tests := []struct {
		name string
		f    Features
		want Classification
	}{
		{"few grays", Features{ColorBucketsRatio: 0.5}, ApplyFilter},
		{"many grays", Features{ColorBucketsRatio: 0.9}, NotClassified},
		{"few colors", Features{IsColorful: true, ColorBucketsRatio: 0.01}, ApplyFilter},
		{"some colors", Features{IsColorful: true, ColorBucketsRatio: 0.02}, NotClassified},
		{"many colors", Features{IsColorful: true, ColorBucketsRatio: 0.03}, DoNotApplyFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyUsingDecisionTree(tt.f))
		})
	}
}

func TestDefaultModel(t *testing.T) {
	m := DefaultModel()
	transparentIcon := Features{IsColorful: true, ColorBucketsRatio: 0.02, TransparencyRatio: 0.6, BackgroundRatio: 0.6}
	opaqueImage := Features{IsColorful: true, ColorBucketsRatio: 0.02}
	assert.Greater(t, m.Infer(transparentIcon.Vector()), float32(0))
	assert.Less(t, m.Infer(opaqueImage.Vector()), float32(0))
}
