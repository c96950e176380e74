package dom

import (
	"image/color"
	"strconv"
	"strings"

	"framecore/pkg/paint"
)

// Position is the CSS position scheme of an element.
type Position int

const (
	PositionStatic Position = iota
	PositionFixed
	PositionSticky
)

// Style is the computed subset of inline style this engine understands.
// Only the style attribute is consulted; there is no cascade.
type Style struct {
	DisplayNone bool
	Position    Position

	Top, Left       float64
	HasTop, HasLeft bool

	Width, Height       float64
	HasWidth, HasHeight bool
	Padding             float64

	Background    color.NRGBA
	HasBackground bool
	Gradient      *paint.Gradient

	Color    color.NRGBA
	HasColor bool
}

// IsViewportConstrained reports whether the element's painted position
// depends on the frame's scroll offset.
func (s Style) IsViewportConstrained() bool {
	return s.Position == PositionFixed || s.Position == PositionSticky
}

// ParseStyle parses a style attribute. Unknown properties and values that
// do not parse are ignored.
func ParseStyle(attr string) Style {
	var s Style
	for _, decl := range strings.Split(attr, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		switch prop {
		case "display":
			s.DisplayNone = strings.EqualFold(value, "none")
		case "position":
			switch strings.ToLower(value) {
			case "fixed":
				s.Position = PositionFixed
			case "sticky":
				s.Position = PositionSticky
			default:
				s.Position = PositionStatic
			}
		case "top":
			s.Top, s.HasTop = parseLength(value)
		case "left":
			s.Left, s.HasLeft = parseLength(value)
		case "width":
			s.Width, s.HasWidth = parseLength(value)
		case "height":
			s.Height, s.HasHeight = parseLength(value)
		case "padding":
			s.Padding, _ = parseLength(value)
		case "background", "background-color", "background-image":
			if g, ok := paint.ParseLinearGradient(value); ok {
				s.Gradient = g
			} else if c, ok := paint.ParseColor(value); ok {
				s.Background, s.HasBackground = c, true
			}
		case "color":
			s.Color, s.HasColor = paint.ParseColor(value)
		}
	}
	return s
}

// parseLength accepts unitless numbers and px values.
func parseLength(v string) (float64, bool) {
	v = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(v)), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}
