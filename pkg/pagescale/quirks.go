package pagescale

import (
	"math"

	"framecore/pkg/geom"
)

// WebViewQuirks are the legacy embedder settings that change how meta
// viewports are interpreted.
type WebViewQuirks struct {
	LayoutFallbackWidth         float64
	SupportTargetDensityDPI     bool
	WideViewportQuirkEnabled    bool
	UseWideViewport             bool
	LoadWithOverviewMode        bool
	NonUserScalableQuirkEnabled bool
}

// targetDensityDPIFactor maps the legacy target-densitydpi value to a scale
// factor relative to 160dpi.
func targetDensityDPIFactor(desc ViewportDescription) float64 {
	if desc.DeprecatedTargetDensityDPI == DPIDevice {
		return 1
	}
	targetDPI := -1.0
	switch desc.DeprecatedTargetDensityDPI {
	case DPILow:
		targetDPI = 120
	case DPIMedium:
		targetDPI = 160
	case DPIHigh:
		targetDPI = 240
	case DPIAuto:
	default:
		targetDPI = desc.DeprecatedTargetDensityDPI
	}
	if targetDPI > 0 {
		return 160 / targetDPI
	}
	return 1
}

func layoutWidthForNonWideViewport(device geom.Size, initialScale float64) float64 {
	if initialScale == Unset {
		return device.Width
	}
	return device.Width / initialScale
}

func heightByAspectRatio(width float64, device geom.Size) float64 {
	if device.Width == 0 {
		return 0
	}
	return width * device.Height / device.Width
}

// AdjustForAndroidWebViewQuirks rewrites the page-defined constraints in
// place to emulate legacy WebView viewport handling.
func (s *ConstraintsSet) AdjustForAndroidWebViewQuirks(desc ViewportDescription, q WebViewQuirks) {
	if !q.SupportTargetDensityDPI && !q.WideViewportQuirkEnabled && q.LoadWithOverviewMode && !q.NonUserScalableQuirkEnabled {
		return
	}

	page := &s.pageDefinedConstraints
	device := s.icbSize
	autoWidth := desc.MaxWidth.IsAuto() || desc.MaxWidth.IsExtendToZoom()
	oldInitialScale := page.InitialScale

	if !q.LoadWithOverviewMode {
		reset := false
		if desc.Zoom == Unset {
			if autoWidth || q.UseWideViewport || desc.MaxWidth.IsDeviceWidth() {
				reset = true
			}
		}
		if reset {
			page.InitialScale = 1
		}
	}

	width := page.LayoutSize.Width
	height := page.LayoutSize.Height
	dpiFactor := 1.0

	if q.SupportTargetDensityDPI {
		dpiFactor = targetDensityDPIFactor(desc)
		if page.InitialScale != Unset {
			page.InitialScale *= dpiFactor
		}
		if page.MinimumScale != Unset {
			page.MinimumScale *= dpiFactor
		}
		if page.MaximumScale != Unset {
			page.MaximumScale *= dpiFactor
		}
		if q.WideViewportQuirkEnabled && (!q.UseWideViewport || desc.MaxWidth.IsDeviceWidth()) {
			width /= dpiFactor
			height /= dpiFactor
		}
	}

	if q.WideViewportQuirkEnabled {
		if q.UseWideViewport && autoWidth && desc.Zoom != 1 {
			if q.LayoutFallbackWidth != 0 {
				width = q.LayoutFallbackWidth
			}
			height = heightByAspectRatio(width, device)
		} else if !q.UseWideViewport {
			nonWideScale := oldInitialScale
			if desc.Zoom < 1 && !desc.MaxWidth.IsDeviceWidth() && !desc.MaxWidth.IsDeviceHeight() {
				nonWideScale = Unset
			}
			width = layoutWidthForNonWideViewport(device, nonWideScale) / dpiFactor
			newInitialScale := dpiFactor
			if s.userAgentConstraints.InitialScale != Unset &&
				(desc.MaxWidth.IsDeviceWidth() || (autoWidth && desc.Zoom == Unset)) {
				width /= s.userAgentConstraints.InitialScale
				newInitialScale = s.userAgentConstraints.InitialScale
			}
			height = heightByAspectRatio(width, device)
			if desc.Zoom < 1 {
				page.InitialScale = newInitialScale
				if page.MinimumScale != Unset {
					page.MinimumScale = math.Min(page.MinimumScale, page.InitialScale)
				}
				if page.MaximumScale != Unset {
					page.MaximumScale = math.Max(page.MaximumScale, page.InitialScale)
				}
			}
		}
	}

	if q.NonUserScalableQuirkEnabled && !desc.UserZoom {
		page.InitialScale = dpiFactor
		page.MinimumScale = dpiFactor
		page.MaximumScale = dpiFactor
		if autoWidth || desc.MaxWidth.IsDeviceWidth() {
			width = device.Width / dpiFactor
			height = heightByAspectRatio(width, device)
		}
	}

	page.LayoutSize.Width = width
	page.LayoutSize.Height = height
	s.constraintsDirty = true
}
