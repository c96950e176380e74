package pagescale

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	minScaleValue  = 0.1
	maxScaleValue  = 10
	minLengthValue = 1
	maxLengthValue = 10000
)

// ParseViewportMeta parses the content attribute of a
// <meta name="viewport"> element. Unknown keys are logged and skipped.
func ParseViewportMeta(content string) ViewportDescription {
	d := NewViewportDescription(TypeViewportMeta)
	logger := zap.L().Named("pagescale")
	for _, pair := range strings.FieldsFunc(content, func(r rune) bool { return r == ',' || r == ';' }) {
		key, value, _ := strings.Cut(pair, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		switch key {
		case "width":
			if l := parseViewportLength(value); !l.IsAuto() {
				d.MinWidth = ExtendToZoom()
				d.MaxWidth = l
			}
		case "height":
			if l := parseViewportLength(value); !l.IsAuto() {
				d.MinHeight = ExtendToZoom()
				d.MaxHeight = l
			}
		case "initial-scale":
			d.Zoom = parseViewportZoom(value)
		case "minimum-scale":
			d.MinZoom = parseViewportZoom(value)
		case "maximum-scale":
			d.MaxZoom = parseViewportZoom(value)
		case "user-scalable":
			d.UserZoom = parseViewportUserZoom(value)
		case "target-densitydpi":
			d.DeprecatedTargetDensityDPI = parseTargetDensityDPI(value)
		default:
			logger.Debug("ignoring unknown viewport key", zap.String("key", key))
		}
	}
	return d
}

// parseLeadingNumber reads the longest numeric prefix of s, so "2.5px"
// parses as 2.5. ok is false when s does not start with a number.
func parseLeadingNumber(s string) (float64, bool) {
	end := 0
	for end < len(s) && (s[end] == '-' || s[end] == '+' || s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	for end > 0 {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return v, true
		}
		end--
	}
	return 0, false
}

func parseViewportLength(value string) Length {
	switch strings.ToLower(value) {
	case "device-width":
		return DeviceWidth()
	case "device-height":
		return DeviceHeight()
	}
	v, ok := parseLeadingNumber(value)
	if !ok || v < 0 {
		return Auto()
	}
	return Fixed(clamp(v, minLengthValue, maxLengthValue))
}

func parseViewportZoom(value string) float64 {
	switch strings.ToLower(value) {
	case "yes":
		return 1
	case "no":
		return minScaleValue
	case "device-width", "device-height":
		return maxScaleValue
	}
	v, ok := parseLeadingNumber(value)
	if !ok || v < 0 {
		return Unset
	}
	return clamp(v, minScaleValue, maxScaleValue)
}

func parseViewportUserZoom(value string) bool {
	switch strings.ToLower(value) {
	case "yes", "device-width", "device-height":
		return true
	case "no":
		return false
	}
	v, ok := parseLeadingNumber(value)
	if !ok {
		return false
	}
	return v >= 1 || v <= -1
}

func parseTargetDensityDPI(value string) float64 {
	switch strings.ToLower(value) {
	case "device-dpi":
		return DPIDevice
	case "low-dpi":
		return DPILow
	case "medium-dpi":
		return DPIMedium
	case "high-dpi":
		return DPIHigh
	}
	v, ok := parseLeadingNumber(value)
	if !ok || v < 70 || v > 400 {
		return DPIAuto
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
