package pagescale

import (
	"math"

	"framecore/pkg/geom"
)

// LengthType is the unit of a viewport descriptor length.
type LengthType int

const (
	LengthAuto LengthType = iota
	LengthFixed
	LengthPercent
	LengthExtendToZoom
	LengthDeviceWidth
	LengthDeviceHeight
)

// Length is a width or height descriptor from a viewport declaration.
type Length struct {
	Type  LengthType
	Value float64
}

func Auto() Length { return Length{Type: LengthAuto} }
func Fixed(px float64) Length { return Length{Type: LengthFixed, Value: px} }
func Percent(p float64) Length { return Length{Type: LengthPercent, Value: p} }
func ExtendToZoom() Length { return Length{Type: LengthExtendToZoom} }
func DeviceWidth() Length { return Length{Type: LengthDeviceWidth} }
func DeviceHeight() Length { return Length{Type: LengthDeviceHeight} }
func (l Length) IsAuto() bool { return l.Type == LengthAuto }
func (l Length) IsDeviceWidth() bool { return l.Type == LengthDeviceWidth }
func (l Length) IsDeviceHeight() bool { return l.Type == LengthDeviceHeight }
func (l Length) IsExtendToZoom() bool { return l.Type == LengthExtendToZoom }

// DescriptionType records where a viewport description came from, in
// increasing order of precedence.
type DescriptionType int

const (
	TypeUserAgentStyleSheet DescriptionType = iota
	TypeHandheldFriendlyMeta
	TypeMobileOptimizedMeta
	TypeViewportMeta
	TypeAuthorStyleSheet
)

// TargetDensityDPI values for the legacy target-densitydpi viewport key.
// Positive values are explicit DPIs.
const (
	DPIAuto   = -1
	DPIDevice = -6
	DPILow    = -7
	DPIMedium = -8
	DPIHigh   = -9
)

const (
	valueAuto         = -1
	valueExtendToZoom = -10
)

// ViewportDescription is the parsed viewport declaration of a page. Zoom
// fields use Unset for "auto".
type ViewportDescription struct {
	Type DescriptionType

	MinWidth, MaxWidth   Length
	MinHeight, MaxHeight Length

	Zoom, MinZoom, MaxZoom float64
	UserZoom               bool

	DeprecatedTargetDensityDPI float64
}

// NewViewportDescription returns an all-auto description of type t.
func NewViewportDescription(t DescriptionType) ViewportDescription {
	return ViewportDescription{
		Type:                       t,
		Zoom:                       Unset,
		MinZoom:                    Unset,
		MaxZoom:                    Unset,
		UserZoom:                   true,
		DeprecatedTargetDensityDPI: DPIAuto,
	}
}

// IsLegacyViewportType reports whether d came from a meta tag.
func (d ViewportDescription) IsLegacyViewportType() bool {
	return d.Type >= TypeHandheldFriendlyMeta && d.Type <= TypeViewportMeta
}

func compareIgnoringAuto(a, b float64, fn func(float64, float64) float64) float64 {
	if a == valueAuto {
		return b
	}
	if b == valueAuto {
		return a
	}
	return fn(a, b)
}

func resolveLength(l Length, initial geom.Size, horizontal bool) float64 {
	switch l.Type {
	case LengthFixed:
		return l.Value
	case LengthExtendToZoom:
		return valueExtendToZoom
	case LengthPercent:
		if horizontal {
			return initial.Width * l.Value / 100
		}
		return initial.Height * l.Value / 100
	case LengthDeviceWidth:
		return initial.Width
	case LengthDeviceHeight:
		return initial.Height
	}
	return valueAuto
}

// Resolve turns the description into page-defined constraints for an
// initial containing block of size initial. legacyFallbackWidth is used as
// the width of meta viewports that do not declare one.
func (d ViewportDescription) Resolve(initial geom.Size, legacyFallbackWidth Length) Constraints {
	minWidth, maxWidth := d.MinWidth, d.MaxWidth
	if d.IsLegacyViewportType() && d.MaxWidth.IsAuto() {
		if d.Zoom == Unset {
			minWidth = ExtendToZoom()
			maxWidth = legacyFallbackWidth
		} else if d.MaxHeight.IsAuto() {
			minWidth = ExtendToZoom()
			maxWidth = ExtendToZoom()
		}
	}

	resultMaxWidth := resolveLength(maxWidth, initial, true)
	resultMinWidth := resolveLength(minWidth, initial, true)
	resultMaxHeight := resolveLength(d.MaxHeight, initial, false)
	resultMinHeight := resolveLength(d.MinHeight, initial, false)

	zoom, minZoom, maxZoom := d.Zoom, d.MinZoom, d.MaxZoom

	if minZoom != valueAuto && maxZoom != valueAuto {
		maxZoom = math.Max(minZoom, maxZoom)
	}
	if zoom != valueAuto {
		zoom = compareIgnoringAuto(minZoom, compareIgnoringAuto(maxZoom, zoom, math.Min), math.Max)
	}

	extendZoom := compareIgnoringAuto(zoom, maxZoom, math.Min)
	if extendZoom == valueAuto {
		if resultMaxWidth == valueExtendToZoom {
			resultMaxWidth = valueAuto
		}
		if resultMaxHeight == valueExtendToZoom {
			resultMaxHeight = valueAuto
		}
		if resultMinWidth == valueExtendToZoom {
			resultMinWidth = resultMaxWidth
		}
		if resultMinHeight == valueExtendToZoom {
			resultMinHeight = resultMaxHeight
		}
	} else {
		extendWidth := initial.Width / extendZoom
		extendHeight := initial.Height / extendZoom
		if resultMaxWidth == valueExtendToZoom {
			resultMaxWidth = extendWidth
		}
		if resultMaxHeight == valueExtendToZoom {
			resultMaxHeight = extendHeight
		}
		if resultMinWidth == valueExtendToZoom {
			resultMinWidth = compareIgnoringAuto(extendWidth, resultMaxWidth, math.Max)
		}
		if resultMinHeight == valueExtendToZoom {
			resultMinHeight = compareIgnoringAuto(extendHeight, resultMaxHeight, math.Max)
		}
	}

	width, height := float64(valueAuto), float64(valueAuto)
	if resultMinWidth != valueAuto || resultMaxWidth != valueAuto {
		width = compareIgnoringAuto(resultMinWidth, compareIgnoringAuto(resultMaxWidth, initial.Width, math.Min), math.Max)
	}
	if resultMinHeight != valueAuto || resultMaxHeight != valueAuto {
		height = compareIgnoringAuto(resultMinHeight, compareIgnoringAuto(resultMaxHeight, initial.Height, math.Min), math.Max)
	}

	if width == valueAuto {
		if height == valueAuto || initial.Height == 0 {
			width = initial.Width
		} else {
			width = height * initial.Width / initial.Height
		}
	}
	if height == valueAuto {
		if initial.Width == 0 {
			height = initial.Height
		} else {
			height = width * initial.Height / initial.Width
		}
	}

	if zoom == valueAuto {
		if width > 0 {
			zoom = initial.Width / width
		}
		if height > 0 {
			zoom = math.Max(zoom, initial.Height/height)
		}
		zoom = compareIgnoringAuto(minZoom, compareIgnoringAuto(maxZoom, zoom, math.Min), math.Max)
	}

	if !d.UserZoom {
		minZoom = zoom
		maxZoom = zoom
	}

	return Constraints{
		InitialScale: zoom,
		MinimumScale: minZoom,
		MaximumScale: maxZoom,
		LayoutSize:   geom.Size{Width: width, Height: height},
	}
}
