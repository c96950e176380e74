package pagescale

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"framecore/pkg/geom"
)

func TestTargetDensityDPIFactor(t *testing.T) {
	tests := []struct {
		dpi  float64
		want float64
	}{
		{DPIAuto, 1},
		{DPIDevice, 1},
		{DPILow, 160.0 / 120},
		{DPIMedium, 1},
		{DPIHigh, 160.0 / 240},
		{320, 0.5},
	}
	for _, tt := range tests {
		d := NewViewportDescription(TypeViewportMeta)
		d.DeprecatedTargetDensityDPI = tt.dpi
		assert.InDelta(t, tt.want, targetDensityDPIFactor(d), 1e-9, "dpi %v", tt.dpi)
	}
}

func TestQuirksNoopWhenAllDisabled(t *testing.T) {
	s := NewConstraintsSet()
	s.DidChangeInitialContainingBlockSize(phone)
	d := NewViewportDescription(TypeViewportMeta)
	s.UpdatePageDefinedConstraints(d, Fixed(980))
	before := s.PageDefinedConstraints()

	s.AdjustForAndroidWebViewQuirks(d, WebViewQuirks{LoadWithOverviewMode: true})
	assert.Equal(t, before, s.PageDefinedConstraints())
}

func TestNonUserScalableQuirk(t *testing.T) {
	s := NewConstraintsSet()
	s.DidChangeInitialContainingBlockSize(phone)
	d := NewViewportDescription(TypeViewportMeta)
	d.MaxWidth = DeviceWidth()
	d.Zoom = 3
	d.UserZoom = false
	s.UpdatePageDefinedConstraints(d, Fixed(980))

	s.AdjustForAndroidWebViewQuirks(d, WebViewQuirks{
		LoadWithOverviewMode:        true,
		NonUserScalableQuirkEnabled: true,
		SupportTargetDensityDPI:     true,
	})
	page := s.PageDefinedConstraints()
	assert.Equal(t, 1.0, page.InitialScale)
	assert.Equal(t, 1.0, page.MinimumScale)
	assert.Equal(t, 1.0, page.MaximumScale)
	assert.Equal(t, geom.Size{Width: 400, Height: 800}, page.LayoutSize)
}

func TestWideViewportQuirkUsesFallbackWidth(t *testing.T) {
	s := NewConstraintsSet()
	s.DidChangeInitialContainingBlockSize(phone)
	d := NewViewportDescription(TypeViewportMeta)
	s.UpdatePageDefinedConstraints(d, Fixed(980))

	s.AdjustForAndroidWebViewQuirks(d, WebViewQuirks{
		LoadWithOverviewMode:     true,
		WideViewportQuirkEnabled: true,
		UseWideViewport:          true,
		LayoutFallbackWidth:      1200,
	})
	page := s.PageDefinedConstraints()
	assert.Equal(t, 1200.0, page.LayoutSize.Width)
	assert.Equal(t, 2400.0, page.LayoutSize.Height)
}

func TestOverviewModeOffResetsInitialScale(t *testing.T) {
	s := NewConstraintsSet()
	s.DidChangeInitialContainingBlockSize(phone)
	d := NewViewportDescription(TypeViewportMeta)
	s.UpdatePageDefinedConstraints(d, Fixed(980))

	s.AdjustForAndroidWebViewQuirks(d, WebViewQuirks{LoadWithOverviewMode: false})
	assert.Equal(t, 1.0, s.PageDefinedConstraints().InitialScale)
}
