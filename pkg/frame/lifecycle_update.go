package frame

import (
	"go.uber.org/zap"

	"framecore/pkg/lifecycle"
	"framecore/pkg/paint"
)

const resizeObserverLoopErrorMessage = "ResizeObserver loop completed with undelivered notifications."

// UpdateAllLifecyclePhases runs every phase including paint.
func (v *LocalFrameView) UpdateAllLifecyclePhases() bool {
	return v.UpdateLifecyclePhases(lifecycle.PaintClean)
}

// UpdateAllLifecyclePhasesExceptPaint stops after pre-paint.
func (v *LocalFrameView) UpdateAllLifecyclePhasesExceptPaint() bool {
	return v.UpdateLifecyclePhases(lifecycle.PrePaintClean)
}

func (v *LocalFrameView) UpdateLifecycleToLayoutClean() bool {
	return v.UpdateLifecyclePhases(lifecycle.LayoutClean)
}

func (v *LocalFrameView) UpdateLifecycleToCompositingInputsClean() bool {
	return v.UpdateLifecyclePhases(lifecycle.CompositingInputsClean)
}

func (v *LocalFrameView) isUpdatingLifecycle() bool {
	return v.localRootView().targetState != lifecycle.Uninitialized
}

// UpdateLifecyclePhases brings the local frame tree up to target and
// reports whether this view's document reached it. It must be called on a
// local root (or a detached view) and never while an update is running.
func (v *LocalFrameView) UpdateLifecyclePhases(target lifecycle.State) bool {
	doc := v.frame.document
	if doc.lifecycle.LifecyclePostponed() {
		return false
	}
	lifecycle.Check(!v.isUpdatingLifecycle(), "re-entrant lifecycle update of frame %q", v.frame.name)
	lifecycle.DCheck(v.frame.IsLocalRoot() || !v.frame.IsAttached(),
		"lifecycle update requested on non-root frame %q", v.frame.name)
	lifecycle.DCheck(lifecycle.IsUpdateTarget(target), "unsupported lifecycle target %s", target)
	if !doc.IsActive() {
		return false
	}

	if v.ShouldThrottleRendering() && v.intersectionObservationState < Required {
		return doc.lifecycle.State() == target
	}

	v.ForAllNonThrottledLocalFrameViews(func(fv *LocalFrameView) {
		fv.Lifecycle().EnsureStateAtMost(lifecycle.VisualUpdatePending)
	}, PreOrder)

	v.targetState = target
	defer func() { v.targetState = lifecycle.Uninitialized }()

	if target == lifecycle.PaintClean {
		v.ForAllNonThrottledLocalFrameViews((*LocalFrameView).notifyWillStartLifecycleUpdate, PreOrder)
	}

	v.updateLifecyclePhasesInternal(target)

	if target == lifecycle.PaintClean {
		v.ForAllNonThrottledLocalFrameViews(func(fv *LocalFrameView) {
			fv.lifecycleUpdateCount++
			fv.notifyDidFinishLifecycleUpdate()
		}, PreOrder)
	}
	return doc.lifecycle.State() == target
}

func (v *LocalFrameView) updateLifecyclePhasesInternal(target lifecycle.State) {
	// Views unthrottled mid-pass wait for the next update; views throttled
	// mid-pass still finish the pre-paint phases of this one but are not
	// painted.
	preOrder := v.collectNonThrottled(PreOrder)
	postOrder := v.collectNonThrottled(PostOrder)

	runScrollTimelineSteps := target == lifecycle.PaintClean
	for pass := 1; ; pass++ {
		for _, fv := range preOrder {
			if fv.frame.IsAttached() {
				fv.Lifecycle().EnsureStateAtMost(lifecycle.VisualUpdatePending)
			}
		}

		if !v.updateStyleAndLayoutIfNeededRecursive() {
			v.logger.Debug("style and layout did not complete", zap.Int("pass", pass))
			return
		}
		if target == lifecycle.LayoutClean {
			return
		}

		for _, fv := range preOrder {
			fv.runPostLayoutSteps(target)
		}

		more := v.runPostLayoutPhases(preOrder, postOrder, target)
		if !more {
			return
		}

		if runScrollTimelineSteps {
			runScrollTimelineSteps = false
			if v.validateScrollTimelines(preOrder) {
				continue
			}
		}
		if v.runResizeObserverSteps(preOrder, target) {
			continue
		}
		if v.runPostLayoutIntersectionObserverSteps(preOrder) {
			continue
		}
		v.logger.Debug("lifecycle loop settled", zap.Int("passes", pass))
		break
	}

	for _, fv := range preOrder {
		fv.frame.document.resizeObservers.ClearMinDepth()
		if fv.intersectionObservationState != NotNeeded {
			fv.intersectionObservationState = NotNeeded
		}
	}

	// Only views that went through pre-paint in this update are painted,
	// and of those only the ones still unthrottled.
	var paintable []*LocalFrameView
	for _, fv := range preOrder {
		if fv.frame.IsAttached() && !fv.ShouldThrottleRendering() {
			paintable = append(paintable, fv)
		}
	}
	v.runPaintLifecyclePhase(paintable)
	v.ForAllRemoteFrameViews((*RemoteFrameView).UpdateCompositingRect)
}

// runPostLayoutPhases runs the phases that must not dirty layout and
// reports whether phases beyond them are still needed.
func (v *LocalFrameView) runPostLayoutPhases(preOrder, postOrder []*LocalFrameView, target lifecycle.State) bool {
	var releases []func()
	for _, fv := range preOrder {
		releases = append(releases, fv.Lifecycle().DisallowLayoutInvalidation())
	}
	defer func() {
		for _, release := range releases {
			release()
		}
	}()

	if !v.runCompositingInputsLifecyclePhase(preOrder, target) {
		return false
	}
	if !v.runCompositingAssignmentsLifecyclePhase(preOrder, target) {
		return false
	}
	if !v.runPrePaintLifecyclePhase(postOrder, target) {
		return false
	}
	return v.runAccessibilityLifecyclePhase(preOrder, target)
}

func (v *LocalFrameView) updateStyleAndLayoutIfNeededRecursive() bool {
	doc := v.frame.document
	if v.ShouldThrottleRendering() || !doc.IsActive() {
		return true
	}
	v.updateStyleAndLayout()
	for _, p := range v.plugins {
		p.UpdateAllLifecyclePhases()
	}
	lifecycle.DCheck(!v.NeedsLayout(), "frame %q still needs layout after layout", v.frame.name)

	ok := true
	v.ForAllChildLocalFrameViews(func(c *LocalFrameView) {
		if !c.updateStyleAndLayoutIfNeededRecursive() {
			ok = false
		}
	})
	lifecycle.DCheck(!v.NeedsLayout(), "frame %q was dirtied by its children's layout", v.frame.name)
	return ok && doc.lifecycle.State() >= lifecycle.LayoutClean
}

func (v *LocalFrameView) updateStyleAndLayout() {
	doc := v.frame.document
	doc.UpdateStyleAndLayoutTree()
	if v.layoutView() != nil && v.NeedsLayout() {
		v.performLayout()
	}
	doc.lifecycle.AdvanceTo(lifecycle.LayoutClean)
}

func (v *LocalFrameView) runPostLayoutSteps(target lifecycle.State) {
	if v.pendingScrollEvent {
		v.pendingScrollEvent = false
		if sc := v.frame.document.script; sc != nil {
			sc.EnqueueAnimationEvent("scroll")
		}
	}
	if target == lifecycle.PaintClean && v.frameRectsChanged {
		v.frameRectsChanged = false
		v.needsPaint = true
		v.SetIntersectionObservationState(Desired)
	}
}

func advanceAll(views []*LocalFrameView, to lifecycle.State) {
	for _, fv := range views {
		fv.Lifecycle().AdvanceTo(to)
	}
}

func (v *LocalFrameView) runCompositingInputsLifecyclePhase(views []*LocalFrameView, target lifecycle.State) bool {
	advanceAll(views, lifecycle.InCompositingInputsUpdate)
	advanceAll(views, lifecycle.CompositingInputsClean)
	return target > lifecycle.CompositingInputsClean
}

func (v *LocalFrameView) runCompositingAssignmentsLifecyclePhase(views []*LocalFrameView, target lifecycle.State) bool {
	advanceAll(views, lifecycle.InCompositingAssignment)
	advanceAll(views, lifecycle.CompositingAssignmentsClean)
	return target > lifecycle.CompositingAssignmentsClean
}

// runPrePaintLifecyclePhase visits views in post order so a child's paint
// flags are folded into its parent before the parent is visited.
func (v *LocalFrameView) runPrePaintLifecyclePhase(postOrder []*LocalFrameView, target lifecycle.State) bool {
	for _, fv := range postOrder {
		lc := fv.Lifecycle()
		lc.AdvanceTo(lifecycle.InPrePaint)
		for _, o := range fv.overlays {
			o.UpdatePrePaint()
		}
		fv.descendantNeedsPaint = false
		fv.ForAllChildLocalFrameViews(func(c *LocalFrameView) {
			if c.needsPaint || c.descendantNeedsPaint {
				fv.descendantNeedsPaint = true
			}
		})
		lc.AdvanceTo(lifecycle.PrePaintClean)
	}
	return target > lifecycle.PrePaintClean
}

func (v *LocalFrameView) runAccessibilityLifecyclePhase(views []*LocalFrameView, target lifecycle.State) bool {
	for _, fv := range views {
		lc := fv.Lifecycle()
		lc.AdvanceTo(lifecycle.InAccessibility)
		if ax := fv.frame.document.axCache; ax != nil {
			ax.ProcessUpdates()
		}
		lc.AdvanceTo(lifecycle.AccessibilityClean)
	}
	return target > lifecycle.AccessibilityClean
}

func (v *LocalFrameView) validateScrollTimelines(views []*LocalFrameView) bool {
	dirtied := false
	for _, fv := range views {
		if st := fv.frame.document.scrollTimeline; st != nil && st.ValidateSnapshots() {
			dirtied = true
		}
	}
	return dirtied
}

// runResizeObserverSteps gathers and delivers resize observations across
// the tree and reports whether the loop must run again.
func (v *LocalFrameView) runResizeObserverSteps(views []*LocalFrameView, target lifecycle.State) bool {
	if target != lifecycle.PaintClean {
		return false
	}
	limit := 0
	if h := v.frame.host; h != nil {
		limit = h.ResizeObserverLoopLimit()
	}

	minDepth := DepthBottom
	for _, fv := range views {
		c := fv.frame.document.resizeObservers
		c.SetLoopLimit(limit)
		minDepth = min(minDepth, c.GatherObservations())
	}

	if minDepth != DepthBottom {
		for _, fv := range views {
			fv.frame.document.resizeObservers.DeliverObservations()
		}
		return true
	}

	for _, fv := range views {
		c := fv.frame.document.resizeObservers
		if !c.SkippedObservations() || c.LoopLimitErrorDispatched() {
			continue
		}
		c.ClearObservations()
		fv.logger.Warn("resize observer loop limit exceeded")
		if sc := fv.frame.document.script; sc != nil {
			sc.DispatchErrorEvent(resizeObserverLoopErrorMessage)
		}
		// The undelivered observations go out next frame.
		fv.scheduleAnimation()
		c.SetLoopLimitErrorDispatched(true)
	}
	return v.Lifecycle().State() < lifecycle.PrePaintClean
}

// runPostLayoutIntersectionObserverSteps computes intersections for views
// that need it and reports whether a callback dirtied layout.
func (v *LocalFrameView) runPostLayoutIntersectionObserverSteps(views []*LocalFrameView) bool {
	for _, fv := range views {
		c := fv.frame.document.intersectionObservers
		if fv.intersectionObservationState == NotNeeded || !c.HasObservers() {
			continue
		}
		c.ComputeIntersections(fv.layoutViewport.VisibleContentRect(), fv.displayLocked)
	}
	for _, fv := range views {
		fv.frame.document.intersectionObservers.DeliverNotifications()
	}
	for _, fv := range views {
		if fv.NeedsLayout() || fv.Lifecycle().State() < lifecycle.PrePaintClean {
			return true
		}
	}
	return false
}

// RunPaintLifecyclePhase paints the non-throttled views of the tree. It is
// normally reached through UpdateAllLifecyclePhases.
func (v *LocalFrameView) RunPaintLifecyclePhase() {
	lifecycle.DCheck(v.frame.IsLocalRoot(), "paint requested on non-root frame %q", v.frame.name)
	v.runPaintLifecyclePhase(v.collectNonThrottled(PreOrder))
}

func (v *LocalFrameView) runPaintLifecyclePhase(views []*LocalFrameView) {
	advanceAll(views, lifecycle.InPaint)

	repaint := v.needsPaint || v.descendantNeedsPaint || len(views) == 0
	for _, fv := range views {
		repaint = repaint || fv.needsPaint
	}
	if repaint {
		v.paintTree(views)
	}

	for _, fv := range views {
		fv.needsPaint = false
		fv.descendantNeedsPaint = false
		fv.Lifecycle().AdvanceTo(lifecycle.PaintClean)
	}
}

// paintTree records every view into one context and hands the result to
// the compositor. Each frame is painted at its position in the local root
// and clipped to its frame rect.
func (v *LocalFrameView) paintTree(views []*LocalFrameView) {
	h := v.frame.host
	if h == nil {
		return
	}
	size := v.Size()
	gc := paint.NewGraphicsContext(int(size.Width), int(size.Height), h.DarkModeFilter())

	for _, fv := range views {
		origin := fv.frame.originInLocalRoot()
		scroll := fv.layoutViewport.ScrollOffset()

		gc.Save()
		gc.ClipRect(fv.frame.clipRectInLocalRoot())
		gc.Save()
		gc.Translate(origin.X-scroll.X, origin.Y-scroll.Y)
		if lv := fv.layoutView(); lv != nil {
			lv.Paint(gc)
		}
		gc.Restore()

		if len(fv.overlays) > 0 {
			gc.Translate(origin.X, origin.Y)
			for _, o := range fv.overlays {
				o.Paint(gc)
			}
		}
		gc.Restore()
	}

	artifact := gc.Finish()
	v.ForAllThrottledLocalFrameViews(func(fv *LocalFrameView) {
		artifact.Throttled = append(artifact.Throttled, fv.frame.name)
	})
	v.logger.Debug("painted frame tree",
		zap.Int("views", len(views)),
		zap.Strings("throttled", artifact.Throttled),
		zap.Int("items", len(artifact.Items)))
	if c := h.Compositor(); c != nil {
		c.Commit(artifact)
	}
}
