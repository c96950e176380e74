// Package overlay hosts content painted above a frame, such as inspector
// highlights or a debugging HUD. The content comes from a Delegate.
package overlay

import (
	"runtime"
	"time"

	"go.uber.org/zap"

	"framecore/pkg/frame"
	"framecore/pkg/geom"
	"framecore/pkg/lifecycle"
	"framecore/pkg/paint"
	"framecore/pkg/viewport"
)

// Delegate paints the overlay's content.
type Delegate interface {
	// PaintFrameOverlay paints into gc, which covers size starting at the
	// frame's origin.
	PaintFrameOverlay(o *FrameOverlay, gc *paint.GraphicsContext, size geom.Size)
	// Invalidate is called before every paint so the delegate can refresh
	// what it will draw.
	Invalidate()
	ServiceScriptedAnimations(t time.Time)
}

// PropertyTreeState is the paint property state an overlay paints under.
type PropertyTreeState struct {
	Transform geom.Transform
}

// FrameOverlay is a surface above a frame, sized to the visual viewport.
// Destroy must be called exactly once.
type FrameOverlay struct {
	frame    *frame.Frame
	visual   *viewport.VisualViewport
	delegate Delegate
	lastSize geom.Size
	state    *destroyState
	logger   *zap.Logger
}

type destroyState struct{ destroyed bool }

// Option configures a FrameOverlay.
type Option func(*FrameOverlay)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *FrameOverlay) { o.logger = l }
}

// New creates an overlay on f and registers it with f's view. visual is
// the page's visual viewport.
func New(f *frame.Frame, visual *viewport.VisualViewport, d Delegate, opts ...Option) *FrameOverlay {
	o := &FrameOverlay{
		frame:    f,
		visual:   visual,
		delegate: d,
		state:    &destroyState{},
		logger:   zap.L().Named("overlay"),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.lastSize = o.Size()
	if v := f.View(); v != nil {
		v.AddFrameOverlay(o)
	}

	logger, name := o.logger, f.Name()
	runtime.AddCleanup(o, func(s *destroyState) {
		if !s.destroyed {
			logger.Error("frame overlay collected without Destroy", zap.String("frame", name))
		}
	}, o.state)
	return o
}

// Frame returns the frame the overlay is attached to.
func (o *FrameOverlay) Frame() *frame.Frame { return o.frame }

// Delegate returns the delegate, or nil after Destroy.
func (o *FrameOverlay) Delegate() Delegate { return o.delegate }

// Size is the visual viewport size. Outside the main frame, or inside a
// fenced frame tree, it grows to cover the frame's own view as well.
func (o *FrameOverlay) Size() geom.Size {
	size := o.visual.Size()
	if !o.frame.IsMainFrame() || o.frame.IsInFencedFrameTree() {
		if v := o.frame.View(); v != nil {
			size = size.Max(v.Size())
		}
	}
	return size
}

// UpdatePrePaint runs during the pre-paint phase. A size change forces a
// repaint.
func (o *FrameOverlay) UpdatePrePaint() {
	if o.delegate == nil {
		return
	}
	o.delegate.Invalidate()
	if size := o.Size(); size != o.lastSize {
		o.lastSize = size
		if v := o.frame.View(); v != nil {
			v.SetVisualViewportOrOverlayNeedsRepaint()
		}
	}
}

// DefaultPropertyTreeState is identity, except on a main frame outside a
// fenced frame tree where the device emulation transform applies.
func (o *FrameOverlay) DefaultPropertyTreeState() PropertyTreeState {
	state := PropertyTreeState{Transform: geom.IdentityTransform()}
	if o.frame.IsMainFrame() && !o.frame.IsInFencedFrameTree() {
		state.Transform = o.visual.DeviceEmulationTransform()
	}
	return state
}

// Paint has the delegate paint under the default property tree state.
func (o *FrameOverlay) Paint(gc *paint.GraphicsContext) {
	if o.delegate == nil {
		return
	}
	gc.Save()
	defer gc.Restore()
	gc.ApplyTransform(o.DefaultPropertyTreeState().Transform)
	o.delegate.PaintFrameOverlay(o, gc, o.Size())
}

// ServiceScriptedAnimations forwards an animation frame to the delegate.
func (o *FrameOverlay) ServiceScriptedAnimations(t time.Time) {
	if o.delegate != nil {
		o.delegate.ServiceScriptedAnimations(t)
	}
}

// Destroy detaches the overlay. The overlay area is repainted without it.
func (o *FrameOverlay) Destroy() {
	lifecycle.DCheck(!o.state.destroyed, "frame overlay on %q destroyed twice", o.frame.Name())
	o.state.destroyed = true
	o.delegate = nil
	if v := o.frame.View(); v != nil {
		v.RemoveFrameOverlay(o)
		v.SetVisualViewportOrOverlayNeedsRepaint()
	}
	o.visual.SetNeedsRepaint()
	o.logger.Debug("frame overlay destroyed", zap.String("frame", o.frame.Name()))
}
