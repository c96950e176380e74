// Package pagescale resolves the page scale factor limits that apply to the
// main frame from the defaults, the page's viewport declaration, the user
// agent and fullscreen mode.
package pagescale

import (
	"math"

	"framecore/pkg/geom"
)

// Unset marks a scale that a constraints layer leaves to lower layers.
const Unset = -1

// Constraints bound the page scale factor. A field equal to Unset does not
// override the same field of a lower layer.
type Constraints struct {
	InitialScale float64
	MinimumScale float64
	MaximumScale float64
	LayoutSize   geom.Size
}

// NewConstraints returns constraints with every scale Unset.
func NewConstraints() Constraints {
	return Constraints{InitialScale: Unset, MinimumScale: Unset, MaximumScale: Unset}
}

// MakeConstraints returns constraints with the given scales.
func MakeConstraints(initial, minimum, maximum float64) Constraints {
	return Constraints{InitialScale: initial, MinimumScale: minimum, MaximumScale: maximum}
}

// OverrideWith replaces each field other sets, keeping min <= max.
func (c *Constraints) OverrideWith(other Constraints) {
	if other.MinimumScale != Unset {
		c.MinimumScale = other.MinimumScale
		if c.MaximumScale != Unset {
			c.MaximumScale = math.Max(c.MaximumScale, c.MinimumScale)
		}
	}
	if other.MaximumScale != Unset {
		c.MaximumScale = other.MaximumScale
		if c.MinimumScale != Unset {
			c.MinimumScale = math.Min(c.MinimumScale, c.MaximumScale)
		}
	}
	if other.InitialScale != Unset {
		c.InitialScale = other.InitialScale
	}
	if !other.LayoutSize.IsEmpty() {
		c.LayoutSize = other.LayoutSize
	}
}

// ClampToConstraints clamps scale into [MinimumScale, MaximumScale],
// ignoring unset bounds. Unset passes through.
func (c Constraints) ClampToConstraints(scale float64) float64 {
	if scale == Unset {
		return scale
	}
	if c.MinimumScale != Unset {
		scale = math.Max(scale, c.MinimumScale)
	}
	if c.MaximumScale != Unset {
		scale = math.Min(scale, c.MaximumScale)
	}
	return scale
}

// FitToContentsWidth raises the minimum scale so the contents cannot be
// zoomed out narrower than the view.
func (c *Constraints) FitToContentsWidth(contentsWidth, viewWidthWithoutScrollbars float64) {
	if contentsWidth == 0 || viewWidthWithoutScrollbars == 0 {
		return
	}
	c.MinimumScale = math.Max(c.MinimumScale, viewWidthWithoutScrollbars/contentsWidth)
	c.ResolveAutoInitialScale()
}

// ResolveAutoInitialScale replaces an unset initial scale with the minimum
// scale and clamps the result.
func (c *Constraints) ResolveAutoInitialScale() {
	if c.InitialScale == Unset {
		c.InitialScale = c.MinimumScale
	}
	c.InitialScale = c.ClampToConstraints(c.InitialScale)
}
