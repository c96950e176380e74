package frame

import (
	"go.uber.org/zap"

	"framecore/pkg/lifecycle"
)

func (v *LocalFrameView) localFrameTreeAllowsThrottling() bool {
	if h := v.frame.host; h != nil && !h.RenderThrottlingEnabled() {
		return false
	}
	return v.localRootView().disallowThrottlingCount == 0
}

// CanThrottleRendering reports whether this frame's rendering may be
// skipped: a hidden cross-origin frame, a frame inside a throttled
// subtree, or a display locked frame.
func (v *LocalFrameView) CanThrottleRendering() bool {
	if !v.localFrameTreeAllowsThrottling() {
		return false
	}
	return (v.hiddenForThrottling && v.frame.IsCrossOriginToMainFrame()) || v.subtreeThrottled || v.displayLocked
}

// ShouldThrottleRendering is CanThrottleRendering with one exception: while
// the local root runs a paint-clean update, a frame whose intersection
// observations are required is unthrottled until it reaches PrePaintClean.
// Display locked frames are never unthrottled for this reason because they
// always report "not intersecting".
func (v *LocalFrameView) ShouldThrottleRendering() bool {
	if !v.CanThrottleRendering() {
		return false
	}
	if v.displayLocked {
		return true
	}
	root := v.localRootView()
	if root.targetState == lifecycle.PaintClean && v.intersectionObservationState == Required {
		return v.Lifecycle().State() >= lifecycle.PrePaintClean
	}
	return true
}

func (v *LocalFrameView) IsHiddenForThrottling() bool { return v.hiddenForThrottling }
func (v *LocalFrameView) IsSubtreeThrottled() bool    { return v.subtreeThrottled }
func (v *LocalFrameView) IsDisplayLocked() bool       { return v.displayLocked }

// UpdateRenderThrottlingStatus sets the throttling inputs of this view.
// With recurse set, every descendant's subtree flag is updated to match.
func (v *LocalFrameView) UpdateRenderThrottlingStatus(hidden, subtreeThrottled, displayLocked, recurse bool) {
	was := v.CanThrottleRendering()
	v.hiddenForThrottling = hidden
	v.subtreeThrottled = subtreeThrottled
	v.displayLocked = displayLocked
	now := v.CanThrottleRendering()

	if recurse {
		for _, c := range v.frame.children {
			switch {
			case c.view != nil:
				cv := c.view
				cv.UpdateRenderThrottlingStatus(cv.hiddenForThrottling, now, cv.displayLocked, true)
			case c.remoteView != nil:
				c.remoteView.UpdateRenderThrottlingStatus(c.remoteView.hiddenForThrottling, now)
			}
		}
	}
	if was != now {
		v.renderThrottlingStatusChanged()
	}
}

func (v *LocalFrameView) renderThrottlingStatusChanged() {
	lc := v.Lifecycle()
	lifecycle.DCheck(!lc.InPerformLayout(), "throttling of %q changed during layout", v.frame.name)
	lifecycle.DCheck(!lc.InStyleRecalc(), "throttling of %q changed during style recalc", v.frame.name)

	throttled := v.CanThrottleRendering()
	v.logger.Debug("render throttling changed", zap.Bool("throttled", throttled))

	// Previous output must be discarded or restored either way.
	v.needsPaint = true
	if p := v.parentFrameView(); p != nil {
		p.needsPaint = true
	}

	if !throttled {
		v.scheduleAnimation()
		v.SetIntersectionObservationState(Required)
	} else if v.frame.IsLocalRoot() {
		// Every view in the tree is now throttled, so painting just clears
		// the previous output.
		lifecycle.DCheck(!v.isUpdatingLifecycle(), "local root %q throttled during its own update", v.frame.name)
		v.runPaintLifecyclePhase(nil)
	}

	if lifecycle.DCheckIsOn() {
		for p := v.parentFrameView(); p != nil; p = p.parentFrameView() {
			lifecycle.DCheck(throttled || !p.CanThrottleRendering(),
				"unthrottled frame %q inside throttled frame %q", v.frame.name, p.frame.name)
		}
	}
}

// DisallowThrottling disables throttling for v's whole local tree until
// the returned func is called. Scopes nest.
func (v *LocalFrameView) DisallowThrottling() (release func()) {
	root := v.localRootView()
	root.disallowThrottlingCount++
	return func() { root.disallowThrottlingCount-- }
}
