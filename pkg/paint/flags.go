package paint

import (
	"image/color"

	"framecore/pkg/darkmode"
)

// Flags describes how a shape is filled or stroked. A gradient, when set,
// takes the place of the flat color.
type Flags struct {
	color       color.NRGBA
	gradient    *Gradient
	colorFilter darkmode.ColorFilter

	StrokeWidth float64
}

// NewFlags returns flags painting with c.
func NewFlags(c color.NRGBA) *Flags {
	return &Flags{color: c, StrokeWidth: 1}
}

// NewGradientFlags returns flags painting with g.
func NewGradientFlags(g *Gradient) *Flags {
	return &Flags{gradient: g, StrokeWidth: 1}
}

func (f *Flags) Color() color.NRGBA     { return f.color }
func (f *Flags) SetColor(c color.NRGBA) { f.color = c }
func (f *Flags) Gradient() *Gradient    { return f.gradient }

// HasShader reports whether the flags paint with a gradient.
func (f *Flags) HasShader() bool { return f.gradient != nil }

// ColorFilter is the filter applied to the shader's colors, or nil.
func (f *Flags) ColorFilter() darkmode.ColorFilter { return f.colorFilter }

func (f *Flags) SetColorFilter(cf darkmode.ColorFilter) { f.colorFilter = cf }

// Clone returns a copy that can be rewritten without touching f.
func (f *Flags) Clone() *Flags {
	c := *f
	return &c
}
