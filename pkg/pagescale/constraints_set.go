package pagescale

import (
	"math"

	"go.uber.org/zap"

	"framecore/pkg/geom"
)

// ConstraintsSet layers the default, page-defined, user agent and fullscreen
// constraints and caches their composition. Final constraints are always
// recomputed from the whole stack.
type ConstraintsSet struct {
	defaultConstraints     Constraints
	pageDefinedConstraints Constraints
	userAgentConstraints   Constraints
	fullscreenConstraints  Constraints
	finalConstraints       Constraints

	icbSize                    geom.Size
	lastContentsWidth          float64
	lastVerticalScrollbarWidth float64

	needsReset       bool
	constraintsDirty bool
	shrinksToFit     bool

	logger *zap.Logger
}

// Option configures a ConstraintsSet.
type Option func(*ConstraintsSet)

// WithShrinksViewportContentToFit enables fitting the minimum scale to the
// contents width.
func WithShrinksViewportContentToFit(enabled bool) Option {
	return func(s *ConstraintsSet) { s.shrinksToFit = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *ConstraintsSet) { s.logger = l }
}

// NewConstraintsSet returns a set whose defaults are (auto, 1, 1).
func NewConstraintsSet(opts ...Option) *ConstraintsSet {
	s := &ConstraintsSet{
		defaultConstraints:     MakeConstraints(Unset, 1, 1),
		pageDefinedConstraints: NewConstraints(),
		userAgentConstraints:   NewConstraints(),
		fullscreenConstraints:  NewConstraints(),
		logger:                 zap.L().Named("pagescale"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.finalConstraints = s.ComputeConstraintsStack()
	return s
}

// DefaultConstraints returns the bottom layer.
func (s *ConstraintsSet) DefaultConstraints() Constraints { return s.defaultConstraints }

// SetDefaultConstraints replaces the bottom layer.
func (s *ConstraintsSet) SetDefaultConstraints(c Constraints) {
	s.defaultConstraints = c
	s.constraintsDirty = true
}

// PageDefinedConstraints returns the layer resolved from the page's
// viewport declaration.
func (s *ConstraintsSet) PageDefinedConstraints() Constraints { return s.pageDefinedConstraints }

// UpdatePageDefinedConstraints resolves desc against the current initial
// containing block.
func (s *ConstraintsSet) UpdatePageDefinedConstraints(desc ViewportDescription, legacyFallbackWidth Length) {
	s.pageDefinedConstraints = desc.Resolve(s.icbSize, legacyFallbackWidth)
	s.constraintsDirty = true
}

// ClearPageDefinedConstraints resets the page layer to unset.
func (s *ConstraintsSet) ClearPageDefinedConstraints() {
	s.pageDefinedConstraints = NewConstraints()
	s.constraintsDirty = true
}

// UserAgentConstraints returns the user agent layer.
func (s *ConstraintsSet) UserAgentConstraints() Constraints { return s.userAgentConstraints }

// SetUserAgentConstraints replaces the user agent layer.
func (s *ConstraintsSet) SetUserAgentConstraints(c Constraints) {
	s.userAgentConstraints = c
	s.constraintsDirty = true
}

// SetFullscreenConstraints replaces the top layer.
func (s *ConstraintsSet) SetFullscreenConstraints(c Constraints) {
	s.fullscreenConstraints = c
	s.constraintsDirty = true
}

// ComputeConstraintsStack composes all layers without the contents-size
// adjustments.
func (s *ConstraintsSet) ComputeConstraintsStack() Constraints {
	c := s.defaultConstraints
	c.OverrideWith(s.pageDefinedConstraints)
	c.OverrideWith(s.userAgentConstraints)
	c.OverrideWith(s.fullscreenConstraints)
	return c
}

// ComputeFinalConstraints recomputes FinalConstraints and clears the dirty
// flag.
func (s *ConstraintsSet) ComputeFinalConstraints() {
	s.finalConstraints = s.ComputeConstraintsStack()
	s.adjustFinalConstraintsToContentsSize()
	s.constraintsDirty = false
}

func (s *ConstraintsSet) adjustFinalConstraintsToContentsSize() {
	if s.shrinksToFit {
		s.finalConstraints.FitToContentsWidth(s.lastContentsWidth, s.icbSize.Width-s.lastVerticalScrollbarWidth)
	}
	s.finalConstraints.ResolveAutoInitialScale()
}

// FinalConstraints returns the last computed composition.
func (s *ConstraintsSet) FinalConstraints() Constraints { return s.finalConstraints }

// ConstraintsDirty reports whether a layer or input changed since the last
// ComputeFinalConstraints.
func (s *ConstraintsSet) ConstraintsDirty() bool { return s.constraintsDirty }

// NeedsReset reports whether the page scale should be reset to the initial
// scale on the next update.
func (s *ConstraintsSet) NeedsReset() bool { return s.needsReset }

// SetNeedsReset sets or clears the reset request.
func (s *ConstraintsSet) SetNeedsReset(needsReset bool) {
	s.needsReset = needsReset
	if needsReset {
		s.constraintsDirty = true
	}
}

// DidChangeContentsSize records a new contents size. When a wide element
// appears late in loading while the user is still at the minimum scale, the
// page scale is flagged for reset so the page does not stay zoomed out at a
// stale scale.
func (s *ConstraintsSet) DidChangeContentsSize(contents geom.Size, verticalScrollbarWidth, pageScaleFactor float64) {
	if contents.Width > s.lastContentsWidth &&
		pageScaleFactor == s.finalConstraints.MinimumScale &&
		s.ComputeConstraintsStack().MinimumScale < s.finalConstraints.MinimumScale {
		s.logger.Debug("contents widened at minimum scale; page scale reset requested",
			zap.Float64("contents_width", contents.Width),
			zap.Float64("page_scale", pageScaleFactor))
		s.SetNeedsReset(true)
	}
	s.constraintsDirty = true
	s.lastVerticalScrollbarWidth = verticalScrollbarWidth
	s.lastContentsWidth = contents.Width
}

// DidChangeInitialContainingBlockSize records the size viewport lengths
// resolve against.
func (s *ConstraintsSet) DidChangeInitialContainingBlockSize(size geom.Size) {
	if s.icbSize == size {
		return
	}
	s.icbSize = size
	s.constraintsDirty = true
}

// InitialContainingBlockSize returns the size set by
// DidChangeInitialContainingBlockSize.
func (s *ConstraintsSet) InitialContainingBlockSize() geom.Size { return s.icbSize }

// LayoutSize is the floored layout size of the composed stack.
func (s *ConstraintsSet) LayoutSize() geom.Size {
	l := s.ComputeConstraintsStack().LayoutSize
	return geom.Size{Width: math.Floor(l.Width), Height: math.Floor(l.Height)}
}
