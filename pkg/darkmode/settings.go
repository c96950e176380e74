// Package darkmode decides which colors and images to transform when a page
// is painted in forced dark mode, and performs the transformation.
package darkmode

import (
	"fmt"
	"strings"
)

// InversionAlgorithm selects the color filter a Filter builds.
type InversionAlgorithm int

const (
	InversionOff InversionAlgorithm = iota
	// InversionSimpleInvertForTesting maps each channel c to 255-c.
	InversionSimpleInvertForTesting
	// InversionBrightness inverts each RGB channel, optionally after
	// desaturating, then applies contrast.
	InversionBrightness
	// InversionLightness inverts HSL lightness, preserving hue.
	InversionLightness
	// InversionLightnessLAB inverts CIE Lab lightness.
	InversionLightnessLAB
)

var algorithmNames = map[string]InversionAlgorithm{
	"off":        InversionOff,
	"simple":     InversionSimpleInvertForTesting,
	"brightness": InversionBrightness,
	"lightness":  InversionLightness,
	"lab":        InversionLightnessLAB,
}

func (a InversionAlgorithm) String() string {
	for name, v := range algorithmNames {
		if v == a {
			return name
		}
	}
	return fmt.Sprintf("InversionAlgorithm(%d)", int(a))
}

// ParseInversionAlgorithm accepts off, simple, brightness, lightness or lab.
func ParseInversionAlgorithm(s string) (InversionAlgorithm, error) {
	if a, ok := algorithmNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return a, nil
	}
	return InversionOff, fmt.Errorf("unknown dark mode algorithm %q", s)
}

// ImagePolicy controls whether images are filtered.
type ImagePolicy int

const (
	// ImagePolicyAll filters every image.
	ImagePolicyAll ImagePolicy = iota
	// ImagePolicyNone never filters images.
	ImagePolicyNone
	// ImagePolicySmart filters images the classifier judges to be icons or
	// other simple graphics.
	ImagePolicySmart
)

var policyNames = map[string]ImagePolicy{
	"all":   ImagePolicyAll,
	"none":  ImagePolicyNone,
	"smart": ImagePolicySmart,
}

func (p ImagePolicy) String() string {
	for name, v := range policyNames {
		if v == p {
			return name
		}
	}
	return fmt.Sprintf("ImagePolicy(%d)", int(p))
}

// ParseImagePolicy accepts all, none or smart.
func ParseImagePolicy(s string) (ImagePolicy, error) {
	if p, ok := policyNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return ImagePolicyAll, fmt.Errorf("unknown dark mode image policy %q", s)
}

// Settings is the immutable configuration of one Filter. Changing settings
// means building a new Filter.
type Settings struct {
	Mode        InversionAlgorithm
	ImagePolicy ImagePolicy

	// Brightness thresholds in [0, 255]. Foreground colors darker than the
	// threshold are inverted; background colors brighter than it are.
	ForegroundBrightnessThreshold int
	BackgroundBrightnessThreshold int

	// Contrast in [-1, 1], applied by the brightness and lightness filters.
	Contrast float32
	// Grayscale desaturates before inverting (brightness and lightness
	// filters only).
	Grayscale bool
	// ImageGrayscalePercent in [0, 1]. When positive, images are desaturated
	// by this amount instead of being inverted.
	ImageGrayscalePercent float32
}

// DefaultSettings returns dark mode switched off.
func DefaultSettings() Settings {
	return Settings{
		Mode:                          InversionOff,
		ImagePolicy:                   ImagePolicySmart,
		ForegroundBrightnessThreshold: 150,
		BackgroundBrightnessThreshold: 205,
	}
}

// Role is the semantic category of a painted color.
type Role int

const (
	RoleForeground Role = iota
	RoleListSymbol
	RoleBackground
	RoleSVG
)

func (r Role) String() string {
	switch r {
	case RoleForeground:
		return "foreground"
	case RoleListSymbol:
		return "list-symbol"
	case RoleBackground:
		return "background"
	case RoleSVG:
		return "svg"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Classification is the outcome of a color or image classifier.
type Classification int

const (
	NotClassified Classification = iota
	ApplyFilter
	DoNotApplyFilter
)

func (c Classification) String() string {
	switch c {
	case ApplyFilter:
		return "apply"
	case DoNotApplyFilter:
		return "do-not-apply"
	}
	return "not-classified"
}
