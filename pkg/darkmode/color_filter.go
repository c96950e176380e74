package darkmode

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorFilter maps a color to its dark mode counterpart. Alpha is preserved.
type ColorFilter interface {
	InvertColor(c color.NRGBA) color.NRGBA
}

// NewColorFilter builds the filter for s.Mode, or nil when dark mode is off.
func NewColorFilter(s Settings) ColorFilter {
	switch s.Mode {
	case InversionSimpleInvertForTesting:
		return simpleInvertFilter{}
	case InversionBrightness:
		return highContrastFilter{style: invertBrightness, grayscale: s.Grayscale, contrast: float64(s.Contrast)}
	case InversionLightness:
		return highContrastFilter{style: invertLightness, grayscale: s.Grayscale, contrast: float64(s.Contrast)}
	case InversionLightnessLAB:
		return labFilter{}
	}
	return nil
}

type simpleInvertFilter struct{}

func (simpleInvertFilter) InvertColor(c color.NRGBA) color.NRGBA {
	return color.NRGBA{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B, A: c.A}
}

type invertStyle int

const (
	invertBrightness invertStyle = iota
	invertLightness
)

// highContrastFilter desaturates (optionally), inverts brightness or HSL
// lightness, then stretches contrast around mid-gray.
type highContrastFilter struct {
	style     invertStyle
	grayscale bool
	contrast  float64
}

func (f highContrastFilter) InvertColor(c color.NRGBA) color.NRGBA {
	col := toColorful(c)
	if f.grayscale {
		l := 0.2126*col.R + 0.7152*col.G + 0.0722*col.B
		col = colorful.Color{R: l, G: l, B: l}
	}

	switch f.style {
	case invertBrightness:
		col = colorful.Color{R: 1 - col.R, G: 1 - col.G, B: 1 - col.B}
	case invertLightness:
		h, s, l := col.Hsl()
		col = colorful.Hsl(h, s, 1-l)
	}

	if f.contrast != 0 {
		c := math.Min(f.contrast, 0.99)
		m := (1 + c) / (1 - c)
		off := -m*0.5 + 0.5
		col = colorful.Color{R: m*col.R + off, G: m*col.G + off, B: m*col.B + off}
	}
	return fromColorful(col, c.A)
}

// labFilter inverts CIE Lab lightness with L' = min(110-L, 100), then nudges
// near-black grays to a fixed dark gray.
type labFilter struct{}

const (
	labGrayBrightnessThreshold = 32
	labAdjustedGray            = 18
)

func (labFilter) InvertColor(c color.NRGBA) color.NRGBA {
	l, a, b := toColorful(c).Lab()
	l = math.Min(1.10-l, 1.0)
	return adjustGray(fromColorful(colorful.Lab(l, a, b), c.A))
}

func adjustGray(c color.NRGBA) color.NRGBA {
	if c.R == c.G && c.R == c.B && c.R < labGrayBrightnessThreshold && c.R > labAdjustedGray {
		return color.NRGBA{R: labAdjustedGray, G: labAdjustedGray, B: labAdjustedGray, A: c.A}
	}
	return c
}

// matrixFilter is a 5x4 row-major color matrix over [0, 255] channels:
// R' = m[0]*R + m[1]*G + m[2]*B + m[3]*A + m[4], and so on per row.
type matrixFilter [20]float64

func (m matrixFilter) InvertColor(c color.NRGBA) color.NRGBA {
	in := [4]float64{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
	var out [4]uint8
	for row := 0; row < 4; row++ {
		v := m[row*5+4]
		for col := 0; col < 4; col++ {
			v += m[row*5+col] * in[col]
		}
		out[row] = clampChannel(v)
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: out[3]}
}

// NewGrayscaleFilter desaturates by amount in [0, 1], using the same
// matrix as the CSS grayscale() filter function.
func NewGrayscaleFilter(amount float64) ColorFilter {
	a := 1 - math.Max(0, math.Min(1, amount))
	return matrixFilter{
		0.2126 + 0.7874*a, 0.7152 - 0.7152*a, 0.0722 - 0.0722*a, 0, 0,
		0.2126 - 0.2126*a, 0.7152 + 0.2848*a, 0.0722 - 0.0722*a, 0, 0,
		0.2126 - 0.2126*a, 0.7152 - 0.7152*a, 0.0722 + 0.9278*a, 0, 0,
		0, 0, 0, 1, 0,
	}
}

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(col colorful.Color, alpha uint8) color.NRGBA {
	r, g, b := col.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}
}

func clampChannel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
