package paint

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/gg"

	"framecore/pkg/darkmode"
	"framecore/pkg/geom"
)

// ColorStop is one color of a gradient. Offset is in [0, 1]; a negative
// offset means the position was not given and is filled in by
// distributing the unplaced stops evenly.
type ColorStop struct {
	Color  color.NRGBA
	Offset float64
}

// Gradient is a linear gradient. Direction is a CSS direction such as
// "to right" or "45deg".
type Gradient struct {
	Direction string
	Stops     []ColorStop
}

// ParseLinearGradient parses a linear-gradient() value.
// Example: "linear-gradient(to right, blue 0%, red 100%)"
func ParseLinearGradient(value string) (*Gradient, bool) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "linear-gradient(") || !strings.HasSuffix(value, ")") {
		return nil, false
	}
	parts := splitGradientParts(value[len("linear-gradient(") : len(value)-1])
	if len(parts) < 2 {
		return nil, false
	}

	g := &Gradient{Direction: "to bottom"}
	first := strings.TrimSpace(parts[0])
	if strings.HasPrefix(first, "to ") || strings.HasSuffix(first, "deg") {
		g.Direction = first
		parts = parts[1:]
	}
	for _, p := range parts {
		stop, ok := parseColorStop(strings.TrimSpace(p))
		if !ok {
			return nil, false
		}
		g.Stops = append(g.Stops, stop)
	}
	if len(g.Stops) < 2 {
		return nil, false
	}
	g.fillMissingOffsets()
	return g, true
}

// parseColorStop parses "red" or "red 50%"
func parseColorStop(stop string) (ColorStop, bool) {
	// The color itself may contain spaces, as in rgb(1, 2, 3).
	colorPart, pos := stop, ""
	if i := strings.LastIndexByte(stop, ' '); i >= 0 && strings.HasSuffix(stop, "%") {
		colorPart, pos = stop[:i], stop[i+1:]
	}
	c, ok := ParseColor(colorPart)
	if !ok {
		return ColorStop{}, false
	}
	cs := ColorStop{Color: c, Offset: -1}
	if pos != "" {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(pos, "%"), 64)
		if err != nil {
			return ColorStop{}, false
		}
		cs.Offset = pct / 100
	}
	return cs, true
}

// splitGradientParts splits by top-level commas
func splitGradientParts(content string) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	for _, ch := range content {
		switch {
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		case ch == ',' && depth == 0:
			parts = append(parts, current.String())
			current.Reset()
			continue
		}
		current.WriteRune(ch)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func (g *Gradient) fillMissingOffsets() {
	n := len(g.Stops)
	if g.Stops[0].Offset < 0 {
		g.Stops[0].Offset = 0
	}
	if g.Stops[n-1].Offset < 0 {
		g.Stops[n-1].Offset = 1
	}
	for i := 1; i < n-1; i++ {
		if g.Stops[i].Offset >= 0 {
			continue
		}
		next := i + 1
		for g.Stops[next].Offset < 0 {
			next++
		}
		prev := g.Stops[i-1].Offset
		step := (g.Stops[next].Offset - prev) / float64(next-i+1)
		g.Stops[i].Offset = prev + step
	}
}

// endpoints returns the gradient line for r.
func (g *Gradient) endpoints(r geom.Rect) (x0, y0, x1, y1 float64) {
	switch g.Direction {
	case "to right":
		return r.X, r.Y, r.Right(), r.Y
	case "to left":
		return r.Right(), r.Y, r.X, r.Y
	case "to top":
		return r.X, r.Bottom(), r.X, r.Y
	case "to bottom":
		return r.X, r.Y, r.X, r.Bottom()
	}
	deg, err := strconv.ParseFloat(strings.TrimSuffix(g.Direction, "deg"), 64)
	if err != nil {
		return r.X, r.Y, r.X, r.Bottom()
	}
	// 0deg points up and angles turn clockwise.
	rad := deg * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	half := (math.Abs(r.Width*dx) + math.Abs(r.Height*dy)) / 2
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	return cx - dx*half, cy - dy*half, cx + dx*half, cy + dy*half
}

// pattern builds the gg fill for r. The points are mapped to device space
// because gg evaluates patterns per device pixel. A non-nil filter is
// applied to every stop.
func (g *Gradient) pattern(dc *gg.Context, r geom.Rect, filter darkmode.ColorFilter) gg.Gradient {
	x0, y0, x1, y1 := g.endpoints(r)
	x0, y0 = dc.TransformPoint(x0, y0)
	x1, y1 = dc.TransformPoint(x1, y1)
	grad := gg.NewLinearGradient(x0, y0, x1, y1)
	for _, s := range g.Stops {
		c := s.Color
		if filter != nil {
			c = filter.InvertColor(c)
		}
		grad.AddColorStop(s.Offset, c)
	}
	return grad
}
