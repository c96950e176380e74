package pagescale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framecore/pkg/geom"
)

func TestParseViewportMetaDeviceWidth(t *testing.T) {
	d := ParseViewportMeta("width=device-width, initial-scale=1")

	assert.Equal(t, TypeViewportMeta, d.Type)
	assert.Equal(t, ExtendToZoom(), d.MinWidth)
	assert.Equal(t, DeviceWidth(), d.MaxWidth)
	assert.Equal(t, 1.0, d.Zoom)
	assert.Equal(t, float64(Unset), d.MinZoom)
	assert.True(t, d.UserZoom)

	c := d.Resolve(phone, Fixed(980))
	assert.Equal(t, geom.Size{Width: 400, Height: 800}, c.LayoutSize)
}

func TestParseViewportMetaSeparatorsAndCase(t *testing.T) {
	d := ParseViewportMeta(" WIDTH = 600 ; Maximum-Scale=2.5x;user-scalable=no ")

	assert.Equal(t, Fixed(600), d.MaxWidth)
	assert.Equal(t, 2.5, d.MaxZoom)
	assert.False(t, d.UserZoom)
}

func TestParseViewportMetaClampsValues(t *testing.T) {
	d := ParseViewportMeta("width=99999,initial-scale=40,minimum-scale=0")

	assert.Equal(t, Fixed(10000), d.MaxWidth)
	assert.Equal(t, 10.0, d.Zoom)
	assert.Equal(t, 0.1, d.MinZoom)
}

func TestParseViewportMetaInvalidValuesStayAuto(t *testing.T) {
	d := ParseViewportMeta("width=wide,initial-scale=big,height=-5")

	assert.True(t, d.MaxWidth.IsAuto())
	assert.True(t, d.MaxHeight.IsAuto())
	assert.Equal(t, float64(Unset), d.Zoom)
}

func TestParseViewportMetaUserScalable(t *testing.T) {
	cases := map[string]bool{
		"yes":          true,
		"no":           false,
		"device-width": true,
		"1":            true,
		"-2":           true,
		"0.5":          false,
		"maybe":        false,
	}
	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			d := ParseViewportMeta("user-scalable=" + value)
			assert.Equal(t, want, d.UserZoom)
		})
	}
}

func TestParseViewportMetaTargetDensity(t *testing.T) {
	require.Equal(t, float64(DPIDevice), ParseViewportMeta("target-densitydpi=device-dpi").DeprecatedTargetDensityDPI)
	require.Equal(t, 160.0, ParseViewportMeta("target-densitydpi=160").DeprecatedTargetDensityDPI)
	require.Equal(t, float64(DPIAuto), ParseViewportMeta("target-densitydpi=20").DeprecatedTargetDensityDPI)
}
