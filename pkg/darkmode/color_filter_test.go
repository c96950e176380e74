package darkmode

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewColorFilterOff(t *testing.T) {
	assert.Nil(t, NewColorFilter(Settings{Mode: InversionOff}))
}

func TestSimpleInvert(t *testing.T) {
	f := NewColorFilter(Settings{Mode: InversionSimpleInvertForTesting})
	assert.Equal(t, color.NRGBA{R: 245, G: 235, B: 225, A: 77}, f.InvertColor(color.NRGBA{R: 10, G: 20, B: 30, A: 77}))
}

func TestInvertBrightnessKeepsAlpha(t *testing.T) {
	f := NewColorFilter(Settings{Mode: InversionBrightness})
	assert.Equal(t, color.NRGBA{A: 128}, f.InvertColor(color.NRGBA{R: 255, G: 255, B: 255, A: 128}))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, f.InvertColor(color.NRGBA{A: 255}))
}

func TestInvertBrightnessGrayscale(t *testing.T) {
	f := NewColorFilter(Settings{Mode: InversionBrightness, Grayscale: true})
	out := f.InvertColor(color.NRGBA{R: 255, A: 255})
	assert.Equal(t, out.R, out.G)
	assert.Equal(t, out.G, out.B)
}

func TestContrastStretchesAwayFromMidGray(t *testing.T) {
	plain := NewColorFilter(Settings{Mode: InversionBrightness})
	contrasty := NewColorFilter(Settings{Mode: InversionBrightness, Contrast: 0.5})
	in := color.NRGBA{R: 60, G: 60, B: 60, A: 255}
	assert.Greater(t, contrasty.InvertColor(in).R, plain.InvertColor(in).R)
}

func TestInvertLightnessPreservesHue(t *testing.T) {
	f := NewColorFilter(Settings{Mode: InversionLightness})
	dark := color.NRGBA{R: 0, G: 0, B: 128, A: 255}
	out := f.InvertColor(dark)
	assert.Greater(t, out.B, out.R)
	assert.InDelta(t, float64(out.R), float64(out.G), 1)
	assert.Greater(t, Brightness(out), Brightness(dark))
}

func TestLabFilter(t *testing.T) {
	f := NewColorFilter(Settings{Mode: InversionLightnessLAB})
	white := f.InvertColor(color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	// L=100 maps to L=10, a near-black gray.
	assert.InDelta(t, float64(white.R), float64(white.G), 1)
	assert.Less(t, white.R, uint8(40))
	assert.Equal(t, uint8(255), white.A)

	black := f.InvertColor(color.NRGBA{A: 255})
	// L=0 maps to min(110, 100) = 100.
	assert.InDelta(t, 255, float64(black.R), 1)
	assert.InDelta(t, 255, float64(black.G), 1)
	assert.InDelta(t, 255, float64(black.B), 1)
}

func TestAdjustGray(t *testing.T) {
	assert.Equal(t, gray(18), adjustGray(gray(25)))
	assert.Equal(t, gray(18), adjustGray(gray(18)))
	assert.Equal(t, gray(32), adjustGray(gray(32)))
	assert.Equal(t, color.NRGBA{R: 25, G: 26, B: 25, A: 255}, adjustGray(color.NRGBA{R: 25, G: 26, B: 25, A: 255}))
}

func TestGrayscaleFilter(t *testing.T) {
	full := NewGrayscaleFilter(1)
	out := full.InvertColor(color.NRGBA{R: 255, A: 200})
	assert.Equal(t, out.R, out.G)
	assert.Equal(t, out.G, out.B)
	assert.Equal(t, uint8(200), out.A)

	none := NewGrayscaleFilter(0)
	in := color.NRGBA{R: 10, G: 200, B: 90, A: 255}
	assert.Equal(t, in, none.InvertColor(in))
}
