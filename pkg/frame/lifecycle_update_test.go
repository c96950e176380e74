package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framecore/pkg/geom"
	"framecore/pkg/lifecycle"
)

type funcObserver struct {
	willStart, didFinish int
	onWillStart          func(v *LocalFrameView)
}

func (o *funcObserver) WillStartLifecycleUpdate(v *LocalFrameView) {
	o.willStart++
	if o.onWillStart != nil {
		o.onWillStart(v)
	}
}

func (o *funcObserver) DidFinishLifecycleUpdate(*LocalFrameView) { o.didFinish++ }

type fakeAXCache struct{ onProcess func() }

func (a *fakeAXCache) ProcessUpdates() {
	if a.onProcess != nil {
		a.onProcess()
	}
}

type fakeScrollTimeline struct{ dirtyTimes int }

func (s *fakeScrollTimeline) ValidateSnapshots() bool {
	if s.dirtyTimes == 0 {
		return false
	}
	s.dirtyTimes--
	return true
}

type fakePlugin struct{ updates int }

func (p *fakePlugin) UpdateAllLifecyclePhases() bool {
	p.updates++
	return true
}

func newMainFrame(t *testing.T, h *fakeHost, opts ...DocumentOption) (*Frame, *fakeView) {
	t.Helper()
	return newTestFrame(h, "main", "https://a.test", rect(0, 0, 800, 600), geom.Size{Width: 800, Height: 1200}, opts...)
}

func TestUpdateToLayoutCleanRunsLayoutOnce(t *testing.T) {
	h := &fakeHost{}
	f, lv := newMainFrame(t, h)
	v := f.View()
	require.True(t, v.NeedsLayout())

	assert.True(t, v.UpdateLifecycleToLayoutClean())
	assert.Equal(t, lifecycle.LayoutClean, v.Lifecycle().State())
	assert.Equal(t, 1, lv.layoutCalls)
	assert.Equal(t, 1, v.LayoutCount())
	assert.False(t, v.NeedsLayout())
	assert.Equal(t, []geom.Size{{Width: 800, Height: 1200}}, h.contentsSizes)
	assert.Equal(t, geom.Size{Width: 800, Height: 1200}, v.LayoutViewport().ContentsSize())

	assert.True(t, v.UpdateLifecycleToLayoutClean())
	assert.Equal(t, 1, lv.layoutCalls)
	assert.Equal(t, 1, v.LayoutCount())
	assert.Empty(t, h.committed)
}

func TestSubtreeLayoutVisitsEachRootOnceShallowestFirst(t *testing.T) {
	h := &fakeHost{}
	f, lv := newMainFrame(t, h)
	v := f.View()
	a := newFakeBox("a", &lv.fakeBox)
	b := newFakeBox("b", a)
	c := newFakeBox("c", &lv.fakeBox)
	require.True(t, v.UpdateAllLifecyclePhases())
	*lv.log = nil

	b.needsLayout = true
	c.needsLayout = true
	v.ScheduleRelayoutOfSubtree(b)
	v.ScheduleRelayoutOfSubtree(c)
	assert.True(t, v.IsSubtreeLayout())
	assert.True(t, v.NeedsLayout())
	assert.Equal(t, lifecycle.StyleClean, v.Lifecycle().State())
	assert.NotEmpty(t, h.scheduled)

	require.True(t, v.UpdateLifecycleToLayoutClean())
	assert.Equal(t, []string{"c", "b"}, *lv.log)
	assert.Equal(t, 1, b.layoutCalls)
	assert.Equal(t, 1, c.layoutCalls)
	assert.Equal(t, 1, lv.layoutCalls)
	assert.False(t, v.IsSubtreeLayout())
	assert.Equal(t, 2, v.LayoutCount())
}

func TestSubtreeLayoutFoldsIntoPendingFullLayout(t *testing.T) {
	h := &fakeHost{}
	f, lv := newMainFrame(t, h)
	v := f.View()
	a := newFakeBox("a", &lv.fakeBox)
	require.True(t, lv.NeedsLayout())

	a.needsLayout = true
	v.ScheduleRelayoutOfSubtree(a)
	assert.False(t, v.IsSubtreeLayout())

	require.True(t, v.UpdateLifecycleToLayoutClean())
	assert.Equal(t, 1, lv.layoutCalls)
	assert.Equal(t, 0, a.layoutCalls)
}

func TestLifecycleIsMonotonicWithinAPass(t *testing.T) {
	h := &fakeHost{}
	f, _ := newMainFrame(t, h)
	v := f.View()

	var rewinds []lifecycle.State
	v.Lifecycle().SetTransitionObserver(func(from, to lifecycle.State, kind lifecycle.TransitionKind) {
		if kind == lifecycle.Advance {
			assert.Greater(t, to, from)
			return
		}
		rewinds = append(rewinds, to)
	})

	for _, target := range []lifecycle.State{
		lifecycle.LayoutClean,
		lifecycle.CompositingInputsClean,
		lifecycle.CompositingAssignmentsClean,
		lifecycle.PrePaintClean,
		lifecycle.AccessibilityClean,
		lifecycle.PaintClean,
	} {
		rewinds = nil
		require.True(t, v.UpdateLifecyclePhases(target), target.String())
		assert.Equal(t, target, v.Lifecycle().State())
		for _, s := range rewinds {
			assert.Equal(t, lifecycle.VisualUpdatePending, s, "rewind while updating to %s", target)
		}
	}
}

type phaseStep struct {
	frame string
	state lifecycle.State
}

func TestPhasesRunInStateOrder(t *testing.T) {
	h := &fakeHost{}
	main, _ := newMainFrame(t, h)
	child, _ := appendTestChild(main, "child", "https://a.test", rect(0, 0, 100, 100))

	var steps []phaseStep
	for _, f := range []*Frame{main, child} {
		name := f.Name()
		f.View().Lifecycle().SetTransitionObserver(func(_, to lifecycle.State, kind lifecycle.TransitionKind) {
			if kind == lifecycle.Advance && lifecycle.IsUpdateTarget(to) && to > lifecycle.LayoutClean {
				steps = append(steps, phaseStep{name, to})
			}
		})
	}
	require.True(t, main.View().UpdateAllLifecyclePhases())

	// Pre-paint walks children first; every other phase walks parents first.
	assert.Equal(t, []phaseStep{
		{"main", lifecycle.CompositingInputsClean},
		{"child", lifecycle.CompositingInputsClean},
		{"main", lifecycle.CompositingAssignmentsClean},
		{"child", lifecycle.CompositingAssignmentsClean},
		{"child", lifecycle.PrePaintClean},
		{"main", lifecycle.PrePaintClean},
		{"main", lifecycle.AccessibilityClean},
		{"child", lifecycle.AccessibilityClean},
		{"main", lifecycle.PaintClean},
		{"child", lifecycle.PaintClean},
	}, steps)
}

func TestReentrantUpdatePanics(t *testing.T) {
	h := &fakeHost{}
	f, _ := newMainFrame(t, h)
	v := f.View()
	obs := &funcObserver{onWillStart: func(v *LocalFrameView) { v.UpdateAllLifecyclePhases() }}
	v.RegisterForLifecycleNotifications(obs)

	require.Panics(t, func() { v.UpdateAllLifecyclePhases() })

	// The guard is released even though the update unwound.
	v.UnregisterFromLifecycleNotifications(obs)
	assert.True(t, v.UpdateAllLifecyclePhases())
}

func TestUpdateFromChildFramePanics(t *testing.T) {
	if !lifecycle.DCheckIsOn() {
		t.Skip("DCHECKs compiled out")
	}
	h := &fakeHost{}
	main, _ := newMainFrame(t, h)
	child, _ := newTestFrame(nil, "child", "https://a.test", rect(0, 0, 100, 100), geom.Size{Width: 100, Height: 100})
	main.AppendChild(child)
	require.Panics(t, func() { child.View().UpdateAllLifecyclePhases() })
}

func TestUpdateReturnsFalseWhenInactiveOrPostponed(t *testing.T) {
	h := &fakeHost{}
	f, lv := newMainFrame(t, h)
	v := f.View()
	doc := f.Document()

	doc.Lifecycle().PostponeTransitions()
	assert.False(t, v.UpdateAllLifecyclePhases())
	assert.Zero(t, lv.layoutCalls)
	doc.Lifecycle().ResumePostponedTransitions()

	doc.SetActive(false)
	assert.False(t, v.UpdateAllLifecyclePhases())
	assert.Zero(t, lv.layoutCalls)

	doc.SetActive(true)
	assert.True(t, v.UpdateAllLifecyclePhases())
	assert.Equal(t, 1, lv.layoutCalls)
}

func TestLifecycleObserversAndStartOfLifecycleTasks(t *testing.T) {
	h := &fakeHost{}
	main, _ := newMainFrame(t, h)
	child, _ := newTestFrame(nil, "child", "https://a.test", rect(0, 0, 100, 100), geom.Size{Width: 100, Height: 100})
	main.AppendChild(child)

	obs := &funcObserver{}
	child.View().RegisterForLifecycleNotifications(obs)
	ran := 0
	child.View().EnqueueStartOfLifecycleTask(func() { ran++ })

	require.True(t, main.View().UpdateLifecycleToLayoutClean())
	assert.Zero(t, obs.willStart)
	assert.Zero(t, ran)

	require.True(t, main.View().UpdateAllLifecyclePhases())
	require.True(t, main.View().UpdateAllLifecyclePhases())
	assert.Equal(t, 2, obs.willStart)
	assert.Equal(t, 2, obs.didFinish)
	assert.Equal(t, 1, ran)
	assert.Equal(t, 2, child.View().LifecycleUpdateCount())
}

func TestPaintPlacesChildFramesAndCommits(t *testing.T) {
	h := &fakeHost{}
	main, mainView := newMainFrame(t, h)
	child, childView := newTestFrame(nil, "child", "https://a.test", rect(100, 50, 200, 100), geom.Size{Width: 200, Height: 100})
	main.AppendChild(child)

	require.True(t, main.View().UpdateAllLifecyclePhases())
	assert.Equal(t, lifecycle.PaintClean, child.Document().Lifecycle().State())
	a := h.lastArtifact(t)
	require.Len(t, a.Items, 2)
	assert.Equal(t, rect(0, 0, 800, 1200), a.Items[0].Bounds)
	assert.Equal(t, rect(100, 50, 200, 100), a.Items[1].Bounds)
	assert.Equal(t, 800, a.Image.Bounds().Dx())

	// Nothing changed, nothing repainted.
	require.True(t, main.View().UpdateAllLifecyclePhases())
	assert.Len(t, h.committed, 1)
	assert.Equal(t, 1, mainView.paints)

	main.View().LayoutViewport().SetScrollOffset(geom.Vector{Y: 100})
	require.True(t, main.View().UpdateAllLifecyclePhases())
	a = h.lastArtifact(t)
	require.Len(t, a.Items, 2)
	assert.Equal(t, rect(0, -100, 800, 1200), a.Items[0].Bounds)
	assert.Equal(t, rect(100, -50, 200, 100), a.Items[1].Bounds)
	assert.Equal(t, 2, childView.paints)
}

func TestRunPaintLifecyclePhaseAfterExceptPaint(t *testing.T) {
	h := &fakeHost{}
	f, _ := newMainFrame(t, h)
	v := f.View()
	require.True(t, v.UpdateAllLifecyclePhasesExceptPaint())
	assert.Equal(t, lifecycle.PrePaintClean, v.Lifecycle().State())
	assert.Empty(t, h.committed)

	v.RunPaintLifecyclePhase()
	assert.Equal(t, lifecycle.PaintClean, v.Lifecycle().State())
	assert.Len(t, h.committed, 1)
}

func TestLayoutInvalidationDuringPrePaintPanics(t *testing.T) {
	if !lifecycle.DCheckIsOn() {
		t.Skip("DCHECKs compiled out")
	}
	h := &fakeHost{}
	var v *LocalFrameView
	ax := &fakeAXCache{}
	f, _ := newMainFrame(t, h, WithAXObjectCache(ax))
	v = f.View()
	require.True(t, v.UpdateAllLifecyclePhases())

	ax.onProcess = func() { v.ScheduleRelayout() }
	v.ScheduleRelayout()
	require.Panics(t, func() { v.UpdateAllLifecyclePhases() })

	ax.onProcess = nil
	assert.True(t, v.Lifecycle().LayoutInvalidationAllowed())
	assert.True(t, v.UpdateAllLifecyclePhases())
}

func TestScrollTimelineRevalidationRestartsOnce(t *testing.T) {
	h := &fakeHost{}
	st := &fakeScrollTimeline{dirtyTimes: 5}
	f, _ := newMainFrame(t, h, WithScrollTimelineValidator(st))
	require.True(t, f.View().UpdateAllLifecyclePhases())
	// Validation runs at most once per update.
	assert.Equal(t, 4, st.dirtyTimes)
	require.True(t, f.View().UpdateAllLifecyclePhases())
	assert.Equal(t, 3, st.dirtyTimes)
}

func TestPluginsAreDrivenDuringLayout(t *testing.T) {
	h := &fakeHost{}
	f, _ := newMainFrame(t, h)
	p := &fakePlugin{}
	f.View().AddPlugin(p)

	pluginFrame, _ := newTestFrame(h, "plugin", "https://a.test", rect(0, 0, 50, 50), geom.Size{Width: 50, Height: 50})
	f.View().AddPlugin(pluginFrame.View())

	require.True(t, f.View().UpdateLifecycleToLayoutClean())
	assert.Equal(t, 1, p.updates)
	assert.Equal(t, lifecycle.PaintClean, pluginFrame.Document().Lifecycle().State())

	f.View().RemovePlugin(p)
	require.True(t, f.View().UpdateLifecycleToLayoutClean())
	assert.Equal(t, 1, p.updates)
}

func TestScrollInvalidatesViewportConstrainedObjects(t *testing.T) {
	h := &fakeHost{}
	script := &fakeScript{}
	f, lv := newMainFrame(t, h, WithScriptController(script))
	v := f.View()
	fixed := newFakeBox("fixed", &lv.fakeBox)
	sticky := newFakeBox("sticky", &lv.fakeBox)
	v.AddViewportConstrainedObject(fixed, false)
	v.AddViewportConstrainedObject(sticky, true)
	require.True(t, v.UpdateAllLifecyclePhases())
	assert.True(t, v.HasViewportConstrainedObjects())
	assert.True(t, v.HasStickyViewportConstrainedObject())

	scheduled := len(h.scheduled)
	v.LayoutViewport().SetScrollOffset(geom.Vector{Y: 250})
	assert.Equal(t, 1, fixed.paintInvalidations)
	assert.Equal(t, 1, sticky.paintInvalidations)
	assert.Greater(t, len(h.scheduled), scheduled)

	require.True(t, v.UpdateAllLifecyclePhases())
	assert.Equal(t, []string{"scroll"}, script.events)

	v.RemoveViewportConstrainedObject(sticky)
	assert.False(t, v.HasStickyViewportConstrainedObject())
}

func TestRemoteFrameCompositingRectFollowsViewport(t *testing.T) {
	h := &fakeHost{}
	main, _ := newMainFrame(t, h)
	remote := NewRemoteFrame("remote", "https://b.test", rect(700, 500, 200, 200))
	main.AppendChild(remote)

	require.True(t, main.View().UpdateAllLifecyclePhases())
	assert.Equal(t, rect(0, 0, 100, 100), remote.RemoteView().CompositingRect())

	main.View().LayoutViewport().SetScrollOffset(geom.Vector{Y: 100})
	require.True(t, main.View().UpdateAllLifecyclePhases())
	assert.Equal(t, rect(0, 0, 100, 200), remote.RemoteView().CompositingRect())

	main.View().LayoutViewport().SetScrollOffset(geom.Vector{Y: 600})
	require.True(t, main.View().UpdateAllLifecyclePhases())
	assert.Equal(t, rect(0, 100, 100, 100), remote.RemoteView().CompositingRect())

	remote.SetFrameRect(rect(900, 0, 200, 200))
	require.True(t, main.View().UpdateAllLifecyclePhases())
	assert.Equal(t, geom.Rect{}, remote.RemoteView().CompositingRect())
}
