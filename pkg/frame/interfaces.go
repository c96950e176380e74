package frame

import (
	"time"

	"framecore/pkg/darkmode"
	"framecore/pkg/geom"
	"framecore/pkg/paint"
)

// Host is the page-level embedder of a frame tree.
type Host interface {
	// ScheduleVisualUpdate asks for a future lifecycle pass. It must not run
	// one synchronously.
	ScheduleVisualUpdate(f *Frame, delay time.Duration)
	// DarkModeFilter returns the filter paint should use, or nil.
	DarkModeFilter() *darkmode.Filter
	Compositor() paint.Compositor
	DidChangeContentsSize(f *Frame, size geom.Size)
	// ResizeObserverLoopLimit caps gather passes per lifecycle update.
	ResizeObserverLoopLimit() int
	RenderThrottlingEnabled() bool
}

// LayoutObject is a node of a document's layout tree. The frame view drives
// layout through it but never computes geometry itself.
type LayoutObject interface {
	// Parent returns nil at the layout root.
	Parent() LayoutObject
	NeedsLayout() bool
	UpdateLayout()
	ClearNeedsLayout()
	// MarkContainerChainForLayout marks the object and every ancestor up to
	// the root as needing layout.
	MarkContainerChainForLayout()
}

// LayoutView is the root of a layout tree.
type LayoutView interface {
	LayoutObject
	// SetViewportSize sets the initial containing block.
	SetViewportSize(s geom.Size)
	// DocumentSize is the laid out size of the document.
	DocumentSize() geom.Size
	Paint(gc *paint.GraphicsContext)
}

// PaintInvalidator is implemented by layout objects that cache paint
// output and must be told when it is stale.
type PaintInvalidator interface {
	SetNeedsPaintInvalidation()
}

// StyleEngine recalculates computed style.
type StyleEngine interface {
	NeedsStyleRecalc() bool
	RecalcStyle()
}

// ScriptController is the document's script context.
type ScriptController interface {
	// DispatchErrorEvent fires an error event at the global object.
	DispatchErrorEvent(message string)
	// EnqueueAnimationEvent queues an event for the next animation frame.
	EnqueueAnimationEvent(eventType string)
}

// AXObjectCache is the accessibility tree of a document.
type AXObjectCache interface {
	ProcessUpdates()
}

// ScrollTimelineValidator revalidates scroll-linked animation snapshots
// after layout.
type ScrollTimelineValidator interface {
	// ValidateSnapshots reports whether revalidation dirtied anything.
	ValidateSnapshots() bool
}

// Overlay is painted on top of a frame's content.
type Overlay interface {
	UpdatePrePaint()
	Paint(gc *paint.GraphicsContext)
}

// LifecycleObserver hears about full (paint-clean) lifecycle updates.
type LifecycleObserver interface {
	WillStartLifecycleUpdate(v *LocalFrameView)
	DidFinishLifecycleUpdate(v *LocalFrameView)
}
