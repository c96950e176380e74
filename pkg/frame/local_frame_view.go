package frame

import (
	"time"

	"go.uber.org/zap"

	"framecore/pkg/geom"
	"framecore/pkg/lifecycle"
	"framecore/pkg/viewport"
)

// IntersectionObservationState says how urgently a frame needs its
// intersection observations recomputed.
type IntersectionObservationState int

const (
	NotNeeded IntersectionObservationState = iota
	// Desired means geometry changed and observations should be computed
	// when the frame is next updated.
	Desired
	// Required means observations must be computed even if the frame is
	// throttled. It propagates to every ancestor.
	Required
)

func (s IntersectionObservationState) String() string {
	switch s {
	case NotNeeded:
		return "NotNeeded"
	case Desired:
		return "Desired"
	case Required:
		return "Required"
	}
	return "IntersectionObservationState(?)"
}

// Plugin is an embedded document driven through its own full lifecycle
// during its host frame's style and layout phase.
type Plugin interface {
	UpdateAllLifecyclePhases() bool
}

// ViewOption configures a LocalFrameView.
type ViewOption func(*LocalFrameView)

// WithLogger sets the view's logger.
func WithLogger(l *zap.Logger) ViewOption {
	return func(v *LocalFrameView) { v.logger = l }
}

// LocalFrameView drives a local frame's document through the rendering
// lifecycle. Only the view of a local root accepts update requests; it
// walks every view in its local subtree.
type LocalFrameView struct {
	frame  *Frame
	logger *zap.Logger

	layoutViewport *viewport.LayoutViewport

	hiddenForThrottling bool
	subtreeThrottled    bool
	displayLocked       bool
	// Non-zero on a local root while throttling is disallowed for its tree.
	disallowThrottlingCount int

	// Set on the local root for the duration of an update.
	targetState lifecycle.State

	intersectionObservationState IntersectionObservationState

	layoutSubtreeRoots  *LayoutSubtreeRootList
	viewportConstrained *ViewportConstrainedObjectSet
	plugins             []Plugin
	overlays            []Overlay

	lifecycleObservers   []LifecycleObserver
	startOfLifecycleTask []func()

	layoutCount          int
	lifecycleUpdateCount int

	needsPaint           bool
	descendantNeedsPaint bool
	pendingScrollEvent   bool
	frameRectsChanged    bool
}

func newLocalFrameView(f *Frame, size geom.Size, opts ...ViewOption) *LocalFrameView {
	v := &LocalFrameView{
		frame:               f,
		logger:              zap.L().Named("frame"),
		layoutViewport:      viewport.NewLayoutViewport(size),
		layoutSubtreeRoots:  &LayoutSubtreeRootList{},
		viewportConstrained: newViewportConstrainedObjectSet(),
		needsPaint:          true,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With(zap.String("frame", f.name))
	v.layoutViewport.OnScroll(v.didScrollLayoutViewport)
	f.document.intersectionObservers.onChange = func() {
		v.SetIntersectionObservationState(Desired)
		v.scheduleAnimation()
	}
	if lv := f.document.layoutView; lv != nil {
		lv.SetViewportSize(size)
	}
	return v
}

func (v *LocalFrameView) Frame() *Frame { return v.frame }

// Lifecycle is the document's lifecycle.
func (v *LocalFrameView) Lifecycle() *lifecycle.Lifecycle { return v.frame.document.lifecycle }

func (v *LocalFrameView) LayoutViewport() *viewport.LayoutViewport { return v.layoutViewport }

// Size is the frame's viewport size.
func (v *LocalFrameView) Size() geom.Size { return v.layoutViewport.Size() }

func (v *LocalFrameView) layoutView() LayoutView { return v.frame.document.layoutView }

func (v *LocalFrameView) parentFrameView() *LocalFrameView {
	if p := v.frame.parent; p != nil {
		return p.view
	}
	return nil
}

func (v *LocalFrameView) localRootView() *LocalFrameView {
	return v.frame.LocalFrameRoot().view
}

func (v *LocalFrameView) scheduleAnimation() {
	if h := v.frame.host; h != nil {
		h.ScheduleVisualUpdate(v.frame, 0)
	}
}

// ScheduleAnimationAfter asks the host for an update after delay.
func (v *LocalFrameView) ScheduleAnimationAfter(delay time.Duration) {
	if h := v.frame.host; h != nil {
		h.ScheduleVisualUpdate(v.frame, delay)
	}
}

// SetNeedsPaint marks the frame's painted output stale, as when an image
// shows a new frame. It does not schedule an update.
func (v *LocalFrameView) SetNeedsPaint() { v.needsPaint = true }

// Resize changes the frame viewport size, which is also the initial
// containing block of the document.
func (v *LocalFrameView) Resize(size geom.Size) {
	if size == v.layoutViewport.Size() {
		return
	}
	v.layoutViewport.SetSize(size)
	if lv := v.layoutView(); lv != nil {
		lv.SetViewportSize(size)
		v.ScheduleRelayout()
	}
	v.SetIntersectionObservationState(Desired)
	v.needsPaint = true
}

func (v *LocalFrameView) didScrollLayoutViewport(geom.Vector) {
	v.viewportConstrained.InvalidatePaint()
	v.pendingScrollEvent = true
	v.needsPaint = true
	v.SetIntersectionObservationState(Desired)
	v.scheduleAnimation()
}

// ScheduleRelayout requests a full layout of the document.
func (v *LocalFrameView) ScheduleRelayout() {
	lc := v.Lifecycle()
	lifecycle.DCheck(lc.LayoutInvalidationAllowed(), "layout invalidated in frame %q while disallowed", v.frame.name)
	lv := v.layoutView()
	if lv == nil {
		return
	}
	v.layoutSubtreeRoots.ClearAndMarkContainingBlocksForLayout()
	lv.MarkContainerChainForLayout()
	if lc.InPerformLayout() {
		return
	}
	v.scheduleAnimation()
	lc.EnsureStateAtMost(lifecycle.StyleClean)
}

// ScheduleRelayoutOfSubtree requests a layout of root's subtree only. The
// caller has already marked root as needing layout.
func (v *LocalFrameView) ScheduleRelayoutOfSubtree(root LayoutObject) {
	lc := v.Lifecycle()
	lifecycle.DCheck(lc.LayoutInvalidationAllowed(), "layout invalidated in frame %q while disallowed", v.frame.name)
	lv := v.layoutView()
	if lv == nil {
		return
	}
	if root == LayoutObject(lv) {
		v.ScheduleRelayout()
		return
	}
	if lv.NeedsLayout() {
		// A full layout is already pending and will reach root.
		root.MarkContainerChainForLayout()
		return
	}
	v.layoutSubtreeRoots.Add(root)
	if lc.InPerformLayout() {
		return
	}
	v.scheduleAnimation()
	lc.EnsureStateAtMost(lifecycle.StyleClean)
}

// NeedsLayout reports whether a full or subtree layout is pending.
func (v *LocalFrameView) NeedsLayout() bool {
	lv := v.layoutView()
	return (lv != nil && lv.NeedsLayout()) || !v.layoutSubtreeRoots.IsEmpty()
}

// IsSubtreeLayout reports whether only subtree layouts are pending.
func (v *LocalFrameView) IsSubtreeLayout() bool { return !v.layoutSubtreeRoots.IsEmpty() }

// LayoutCount is the number of layout passes this view has run.
func (v *LocalFrameView) LayoutCount() int { return v.layoutCount }

// LifecycleUpdateCount is the number of completed paint-clean updates.
func (v *LocalFrameView) LifecycleUpdateCount() int { return v.lifecycleUpdateCount }

func (v *LocalFrameView) performLayout() {
	lc := v.Lifecycle()
	lv := v.layoutView()
	lc.AdvanceTo(lifecycle.InPerformLayout)
	v.layoutCount++

	if v.IsSubtreeLayout() && !lv.NeedsLayout() {
		roots := v.layoutSubtreeRoots.Ordered()
		v.layoutSubtreeRoots.Clear()
		for _, root := range roots {
			// An ancestor listed earlier may already have laid this out.
			if !root.NeedsLayout() {
				continue
			}
			root.UpdateLayout()
			root.ClearNeedsLayout()
		}
		v.logger.Debug("subtree layout", zap.Int("roots", len(roots)))
	} else {
		v.layoutSubtreeRoots.ClearAndMarkContainingBlocksForLayout()
		lv.UpdateLayout()
		lv.ClearNeedsLayout()
		v.logger.Debug("full layout", zap.Int("count", v.layoutCount))
	}

	lc.AdvanceTo(lifecycle.AfterPerformLayout)
	v.performPostLayoutTasks()
}

func (v *LocalFrameView) performPostLayoutTasks() {
	v.needsPaint = true
	v.SetIntersectionObservationState(Desired)
	size := v.layoutView().DocumentSize()
	if size == v.layoutViewport.ContentsSize() {
		return
	}
	v.layoutViewport.SetContentsSize(size)
	if h := v.frame.host; h != nil {
		h.DidChangeContentsSize(v.frame, size)
	}
}

// AddPlugin registers an embedded document to be updated alongside this
// frame.
func (v *LocalFrameView) AddPlugin(p Plugin) { v.plugins = append(v.plugins, p) }

func (v *LocalFrameView) RemovePlugin(p Plugin) {
	for i, q := range v.plugins {
		if q == p {
			v.plugins = append(v.plugins[:i], v.plugins[i+1:]...)
			return
		}
	}
}

// AddFrameOverlay registers o to be painted above the frame's content.
func (v *LocalFrameView) AddFrameOverlay(o Overlay) {
	v.overlays = append(v.overlays, o)
	v.needsPaint = true
}

// SetVisualViewportOrOverlayNeedsRepaint makes the next paint phase repaint
// even when no frame content changed.
func (v *LocalFrameView) SetVisualViewportOrOverlayNeedsRepaint() {
	v.needsPaint = true
	v.scheduleAnimation()
}

func (v *LocalFrameView) RemoveFrameOverlay(o Overlay) {
	for i, q := range v.overlays {
		if q == o {
			v.overlays = append(v.overlays[:i], v.overlays[i+1:]...)
			v.needsPaint = true
			return
		}
	}
}

// AddViewportConstrainedObject tracks a fixed or sticky positioned object.
func (v *LocalFrameView) AddViewportConstrainedObject(o LayoutObject, sticky bool) {
	v.viewportConstrained.Add(o, sticky)
}

func (v *LocalFrameView) RemoveViewportConstrainedObject(o LayoutObject) {
	v.viewportConstrained.Remove(o)
}

func (v *LocalFrameView) HasViewportConstrainedObjects() bool {
	return !v.viewportConstrained.IsEmpty()
}

func (v *LocalFrameView) HasStickyViewportConstrainedObject() bool {
	return v.viewportConstrained.HasSticky()
}

// RegisterForLifecycleNotifications adds o to the observers told about
// every paint-clean update.
func (v *LocalFrameView) RegisterForLifecycleNotifications(o LifecycleObserver) {
	v.lifecycleObservers = append(v.lifecycleObservers, o)
}

func (v *LocalFrameView) UnregisterFromLifecycleNotifications(o LifecycleObserver) {
	for i, q := range v.lifecycleObservers {
		if q == o {
			v.lifecycleObservers = append(v.lifecycleObservers[:i], v.lifecycleObservers[i+1:]...)
			return
		}
	}
}

// EnqueueStartOfLifecycleTask queues fn to run once at the start of the
// next paint-clean update.
func (v *LocalFrameView) EnqueueStartOfLifecycleTask(fn func()) {
	v.startOfLifecycleTask = append(v.startOfLifecycleTask, fn)
}

func (v *LocalFrameView) notifyWillStartLifecycleUpdate() {
	for _, o := range append([]LifecycleObserver(nil), v.lifecycleObservers...) {
		o.WillStartLifecycleUpdate(v)
	}
	tasks := v.startOfLifecycleTask
	v.startOfLifecycleTask = nil
	for _, fn := range tasks {
		fn()
	}
}

func (v *LocalFrameView) notifyDidFinishLifecycleUpdate() {
	for _, o := range append([]LifecycleObserver(nil), v.lifecycleObservers...) {
		o.DidFinishLifecycleUpdate(v)
	}
}

// IntersectionObservationState returns the current requirement level.
func (v *LocalFrameView) IntersectionObservationState() IntersectionObservationState {
	return v.intersectionObservationState
}

// SetIntersectionObservationState raises the requirement level; it never
// lowers it. Required propagates to every ancestor view.
func (v *LocalFrameView) SetIntersectionObservationState(s IntersectionObservationState) {
	if v.intersectionObservationState >= s {
		return
	}
	v.intersectionObservationState = s
	if s == Required {
		if p := v.parentFrameView(); p != nil {
			p.SetIntersectionObservationState(Required)
		}
	}
}
