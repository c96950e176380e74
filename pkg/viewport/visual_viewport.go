package viewport

import (
	"math"

	"framecore/pkg/geom"
)

// VisualViewport is the pinch-zoom viewport (the "inner" viewport). Its
// location is relative to the layout viewport, in CSS pixels.
type VisualViewport struct {
	size     geom.Size
	scale    float64
	location geom.Point

	deviceEmulation geom.Transform
	needsRepaint    bool
}

// NewVisualViewport returns an unzoomed viewport of size device pixels.
func NewVisualViewport(size geom.Size) *VisualViewport {
	return &VisualViewport{size: size, scale: 1, deviceEmulation: geom.IdentityTransform()}
}

// Size is the unscaled viewport size.
func (v *VisualViewport) Size() geom.Size { return v.size }

// SetSize resizes the viewport and re-clamps the location.
func (v *VisualViewport) SetSize(s geom.Size) {
	v.size = s
	v.location = v.clampLocation(v.location)
	v.needsRepaint = true
}

// Scale is the page scale factor.
func (v *VisualViewport) Scale() float64 { return v.scale }

// SetScale changes the page scale factor. The location is re-clamped, so a
// caller setting both must set the scale first.
func (v *VisualViewport) SetScale(scale float64) {
	if scale <= 0 || scale == v.scale {
		return
	}
	v.scale = scale
	v.location = v.clampLocation(v.location)
	v.needsRepaint = true
}

// Location is the offset of the visual viewport within the layout viewport.
func (v *VisualViewport) Location() geom.Point { return v.location }

// SetLocation moves the viewport within the layout viewport, clamped.
func (v *VisualViewport) SetLocation(p geom.Point) {
	p = v.clampLocation(p)
	if p == v.location {
		return
	}
	v.location = p
	v.needsRepaint = true
}

// SetScaleAndLocation sets the scale, then the location.
func (v *VisualViewport) SetScaleAndLocation(scale float64, p geom.Point) {
	v.SetScale(scale)
	v.SetLocation(p)
}

// VisibleSize is the CSS-pixel size of the visible region.
func (v *VisualViewport) VisibleSize() geom.Size { return v.size.Scale(1 / v.scale) }

// MaximumLocation is the largest location at the current scale.
func (v *VisualViewport) MaximumLocation() geom.Point {
	visible := v.VisibleSize()
	return geom.Point{
		X: math.Max(0, v.size.Width-visible.Width),
		Y: math.Max(0, v.size.Height-visible.Height),
	}
}

func (v *VisualViewport) clampLocation(p geom.Point) geom.Point {
	return p.Max(geom.Point{}).Min(v.MaximumLocation())
}

// DeviceEmulationTransform is the transform applied when emulating another
// device's screen; identity otherwise.
func (v *VisualViewport) DeviceEmulationTransform() geom.Transform { return v.deviceEmulation }

// SetDeviceEmulationTransform installs a device emulation transform.
func (v *VisualViewport) SetDeviceEmulationTransform(t geom.Transform) {
	v.deviceEmulation = t
	v.needsRepaint = true
}

// NeedsRepaint reports whether the viewport or an overlay attached to it
// must be repainted.
func (v *VisualViewport) NeedsRepaint() bool { return v.needsRepaint }

// SetNeedsRepaint marks the viewport and its overlays for repaint.
func (v *VisualViewport) SetNeedsRepaint() { v.needsRepaint = true }

// ClearNeedsRepaint is called after the overlays are painted.
func (v *VisualViewport) ClearNeedsRepaint() { v.needsRepaint = false }
