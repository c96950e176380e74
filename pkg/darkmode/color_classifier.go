package darkmode

import "image/color"

// ColorClassifier decides whether one color should be inverted.
type ColorClassifier interface {
	ShouldInvertColor(c color.NRGBA) Classification
}

// Brightness is the perceived brightness of c in [0, 255], weighted
// 299:587:114 over R, G and B.
func Brightness(c color.NRGBA) int {
	return (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
}

type constantClassifier Classification

func (k constantClassifier) ShouldInvertColor(color.NRGBA) Classification {
	return Classification(k)
}

// invertLowBrightness inverts colors darker than threshold.
type invertLowBrightness struct{ threshold int }

func (c invertLowBrightness) ShouldInvertColor(col color.NRGBA) Classification {
	if Brightness(col) < c.threshold {
		return ApplyFilter
	}
	return DoNotApplyFilter
}

// invertHighBrightness inverts colors brighter than threshold.
type invertHighBrightness struct{ threshold int }

func (c invertHighBrightness) ShouldInvertColor(col color.NRGBA) Classification {
	if Brightness(col) > c.threshold {
		return ApplyFilter
	}
	return DoNotApplyFilter
}

// NewForegroundClassifier returns the classifier for text and other
// foreground colors. A threshold of 0 never inverts and 255 or above always
// inverts, without computing brightness.
func NewForegroundClassifier(threshold int) ColorClassifier {
	switch {
	case threshold <= 0:
		return constantClassifier(DoNotApplyFilter)
	case threshold >= 255:
		return constantClassifier(ApplyFilter)
	}
	return invertLowBrightness{threshold: threshold}
}

// NewBackgroundClassifier returns the classifier for background colors. The
// extreme thresholds 0 and 255 both collapse to never inverting.
func NewBackgroundClassifier(threshold int) ColorClassifier {
	if threshold <= 0 || threshold >= 255 {
		return constantClassifier(DoNotApplyFilter)
	}
	return invertHighBrightness{threshold: threshold}
}
