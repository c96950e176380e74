package darkmode

import (
	"image"
	"image/color"

	"go.uber.org/zap"

	"framecore/pkg/geom"
	"framecore/pkg/lifecycle"
)

const (
	// Images drawn from a source this thin in either dimension are likely
	// borders or separators and are always classified.
	minImageLength = 8
	// Images drawn larger than this in both dimensions are treated as photos.
	maxImageLength = 100
)

// Flags is the part of a paint flags value the filter rewrites.
type Flags interface {
	Color() color.NRGBA
	SetColor(c color.NRGBA)
	HasShader() bool
	SetColorFilter(f ColorFilter)
}

// Filter applies one dark mode Settings snapshot to paint calls. It is not
// safe for concurrent use.
type Filter struct {
	settings Settings

	colorFilter ColorFilter
	imageFilter ColorFilter
	foreground  ColorClassifier
	background  ColorClassifier
	images      *ImageClassifier
	cache       *invertedColorCache

	roleOverride *Role

	logger *zap.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithLogger sets the filter's logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Filter) { f.logger = l }
}

// WithInferenceModel replaces the image classifier's fallback model.
func WithInferenceModel(m InferenceModel) Option {
	return func(f *Filter) { f.images = NewImageClassifier(m) }
}

// NewFilter builds a filter for settings. With InversionOff the filter never
// changes a color.
func NewFilter(settings Settings, opts ...Option) *Filter {
	f := &Filter{
		settings: settings,
		cache:    newInvertedColorCache(),
		logger:   zap.L().Named("darkmode"),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.images == nil {
		f.images = NewImageClassifier(nil)
	}

	f.colorFilter = NewColorFilter(settings)
	if f.colorFilter == nil {
		return f
	}
	f.foreground = NewForegroundClassifier(settings.ForegroundBrightnessThreshold)
	f.background = NewBackgroundClassifier(settings.BackgroundBrightnessThreshold)
	if settings.ImageGrayscalePercent > 0 {
		f.imageFilter = NewGrayscaleFilter(float64(settings.ImageGrayscalePercent))
	} else {
		f.imageFilter = f.colorFilter
	}

	f.logger.Debug("dark mode filter created",
		zap.Stringer("algorithm", settings.Mode),
		zap.Stringer("image_policy", settings.ImagePolicy),
		zap.Int("foreground_threshold", settings.ForegroundBrightnessThreshold),
		zap.Int("background_threshold", settings.BackgroundBrightnessThreshold))
	return f
}

// Settings returns the snapshot the filter was built from.
func (f *Filter) Settings() Settings { return f.settings }

// IsEnabled reports whether the filter has a color filter.
func (f *Filter) IsEnabled() bool { return f.colorFilter != nil }

// ImageFilter returns the filter applied to images, or nil.
func (f *Filter) ImageFilter() ColorFilter { return f.imageFilter }

// OverrideRole makes every InvertColorIfNeeded call use role until restore
// is called. Overrides nest.
func (f *Filter) OverrideRole(role Role) (restore func()) {
	prev := f.roleOverride
	f.roleOverride = &role
	return func() { f.roleOverride = prev }
}

// InvertColorIfNeeded returns the dark mode color for c painted in role.
func (f *Filter) InvertColorIfNeeded(c color.NRGBA, role Role) color.NRGBA {
	if f.colorFilter == nil {
		return c
	}
	if f.roleOverride != nil {
		role = *f.roleOverride
	}
	if f.classifierFor(role).ShouldInvertColor(c) == ApplyFilter {
		return f.cache.GetInvertedColor(c, f.colorFilter)
	}
	return c
}

func (f *Filter) classifierFor(role Role) ColorClassifier {
	switch role {
	case RoleForeground, RoleListSymbol:
		return f.foreground
	case RoleBackground:
		return f.background
	}
	return constantClassifier(DoNotApplyFilter)
}

// ApplyToFlagsIfNeeded rewrites flags for dark mode and reports whether it
// did. Shaders cannot be classified per color, so they get the color filter
// attached wholesale; flat colors go through InvertColorIfNeeded.
func (f *Filter) ApplyToFlagsIfNeeded(flags Flags, role Role) bool {
	if f.colorFilter == nil {
		return false
	}
	if flags.HasShader() {
		flags.SetColorFilter(f.colorFilter)
	} else {
		flags.SetColor(f.InvertColorIfNeeded(flags.Color(), role))
	}
	return true
}

// AnalyzeShouldApplyToImage makes the cheap, size-based part of the image
// decision. NotClassified means the caller must run ApplyToImage.
func (f *Filter) AnalyzeShouldApplyToImage(src, dst geom.Rect) Classification {
	switch f.settings.ImagePolicy {
	case ImagePolicyNone:
		return DoNotApplyFilter
	case ImagePolicyAll:
		return ApplyFilter
	}
	if src.Width <= minImageLength || src.Height <= minImageLength {
		return NotClassified
	}
	if dst.Width > maxImageLength && dst.Height > maxImageLength {
		return DoNotApplyFilter
	}
	return NotClassified
}

// ClassifyImage runs the image classifier over the src region of pixmap.
// Only meaningful under the smart image policy.
func (f *Filter) ClassifyImage(pixmap image.Image, src image.Rectangle) Classification {
	lifecycle.DCheck(f.settings.ImagePolicy == ImagePolicySmart, "image classification requires the smart image policy")
	return f.images.Classify(pixmap, src)
}

// ApplyToImage returns the image filter when the classifier decides pixmap
// should be filtered, nil otherwise.
func (f *Filter) ApplyToImage(pixmap image.Image, src image.Rectangle) ColorFilter {
	if f.ClassifyImage(pixmap, src) == ApplyFilter {
		return f.imageFilter
	}
	return nil
}

// FilterFor maps a classification to the image filter to use, or nil.
func (f *Filter) FilterFor(c Classification) ColorFilter {
	if c == ApplyFilter {
		return f.imageFilter
	}
	return nil
}

// CacheLen is the number of memoized inversions.
func (f *Filter) CacheLen() int { return f.cache.Len() }

// ClearCache drops every memoized inversion.
func (f *Filter) ClearCache() { f.cache.Clear() }

// ApplyColorFilter returns a copy of the src region of img with filter
// applied to every pixel. The result's bounds start at the origin.
func ApplyColorFilter(img image.Image, src image.Rectangle, filter ColorFilter) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if filter != nil && px.A != 0 {
				px = filter.InvertColor(px)
			}
			out.SetNRGBA(x-src.Min.X, y-src.Min.Y, px)
		}
	}
	return out
}
