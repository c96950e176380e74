package overlay

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framecore/pkg/darkmode"
	"framecore/pkg/frame"
	"framecore/pkg/geom"
	"framecore/pkg/paint"
	"framecore/pkg/viewport"
)

type testHost struct {
	scheduled int
	artifacts []*paint.Artifact
}

func (h *testHost) ScheduleVisualUpdate(*frame.Frame, time.Duration) { h.scheduled++ }
func (h *testHost) DarkModeFilter() *darkmode.Filter { return nil }
func (h *testHost) Compositor() paint.Compositor { return h }
func (h *testHost) Commit(a *paint.Artifact) { h.artifacts = append(h.artifacts, a) }
func (h *testHost) DidChangeContentsSize(*frame.Frame, geom.Size) {}
func (h *testHost) ResizeObserverLoopLimit() int { return 0 }
func (h *testHost) RenderThrottlingEnabled() bool { return true }

type highlightDelegate struct {
	sizes         []geom.Size
	invalidations int
	ticks         []time.Time
}

func (d *highlightDelegate) PaintFrameOverlay(_ *FrameOverlay, gc *paint.GraphicsContext, size geom.Size) {
	d.sizes = append(d.sizes, size)
	gc.FillRect(geom.Rect{X: 10, Y: 10, Width: 20, Height: 20}, paint.NewFlags(color.NRGBA{R: 255, A: 128}), darkmode.RoleBackground)
}
func (d *highlightDelegate) Invalidate() { d.invalidations++ }
func (d *highlightDelegate) ServiceScriptedAnimations(t time.Time) { d.ticks = append(d.ticks, t) }

func newFrame(h frame.Host, name string, r geom.Rect) *frame.Frame {
	return frame.NewLocalFrame(h, name, "https://a.test", r, frame.NewDocument())
}

func TestSizeFollowsVisualViewport(t *testing.T) {
	h := &testHost{}
	main := newFrame(h, "main", geom.Rect{Width: 800, Height: 600})
	child := newFrame(h, "child", geom.Rect{Width: 500, Height: 100})
	main.AppendChild(child)
	vv := viewport.NewVisualViewport(geom.Size{Width: 400, Height: 300})

	o := New(main, vv, &highlightDelegate{})
	defer o.Destroy()
	assert.Equal(t, geom.Size{Width: 400, Height: 300}, o.Size())

	c := New(child, vv, &highlightDelegate{})
	defer c.Destroy()
	assert.Equal(t, geom.Size{Width: 500, Height: 300}, c.Size())

	main.MarkFencedFrameRoot()
	assert.Equal(t, geom.Size{Width: 800, Height: 600}, o.Size())
}

func TestDefaultPropertyTreeState(t *testing.T) {
	h := &testHost{}
	main := newFrame(h, "main", geom.Rect{Width: 800, Height: 600})
	child := newFrame(h, "child", geom.Rect{Width: 100, Height: 100})
	main.AppendChild(child)
	vv := viewport.NewVisualViewport(geom.Size{Width: 800, Height: 600})
	emulation := geom.Transform{Scale: 0.5, Translate: geom.Vector{X: 10}}
	vv.SetDeviceEmulationTransform(emulation)

	o := New(main, vv, &highlightDelegate{})
	c := New(child, vv, &highlightDelegate{})
	defer o.Destroy()
	defer c.Destroy()

	assert.Equal(t, emulation, o.DefaultPropertyTreeState().Transform)
	assert.True(t, c.DefaultPropertyTreeState().Transform.IsIdentity())

	main.MarkFencedFrameRoot()
	assert.True(t, o.DefaultPropertyTreeState().Transform.IsIdentity())
}

func TestPaintedAboveFrameUnderEmulation(t *testing.T) {
	h := &testHost{}
	main := newFrame(h, "main", geom.Rect{Width: 200, Height: 200})
	vv := viewport.NewVisualViewport(geom.Size{Width: 200, Height: 200})
	vv.SetDeviceEmulationTransform(geom.Transform{Scale: 2})
	d := &highlightDelegate{}
	o := New(main, vv, d)
	defer o.Destroy()

	require.True(t, main.View().UpdateAllLifecyclePhases())
	require.Len(t, h.artifacts, 1)
	items := h.artifacts[0].Items
	require.Len(t, items, 1)
	assert.Equal(t, geom.Rect{X: 20, Y: 20, Width: 40, Height: 40}, items[0].Bounds)
	assert.Equal(t, []geom.Size{{Width: 200, Height: 200}}, d.sizes)
	assert.Equal(t, 1, d.invalidations)
}

func TestResizeForcesRepaint(t *testing.T) {
	h := &testHost{}
	main := newFrame(h, "main", geom.Rect{Width: 200, Height: 200})
	vv := viewport.NewVisualViewport(geom.Size{Width: 200, Height: 200})
	d := &highlightDelegate{}
	o := New(main, vv, d)
	defer o.Destroy()

	require.True(t, main.View().UpdateAllLifecyclePhases())
	require.True(t, main.View().UpdateAllLifecyclePhases())
	require.Len(t, h.artifacts, 1, "nothing changed, nothing repainted")

	vv.SetSize(geom.Size{Width: 100, Height: 150})
	require.True(t, main.View().UpdateAllLifecyclePhases())
	require.Len(t, h.artifacts, 2)
	assert.Equal(t, geom.Size{Width: 100, Height: 150}, d.sizes[len(d.sizes)-1])
}

func TestDestroy(t *testing.T) {
	h := &testHost{}
	main := newFrame(h, "main", geom.Rect{Width: 200, Height: 200})
	vv := viewport.NewVisualViewport(geom.Size{Width: 200, Height: 200})
	d := &highlightDelegate{}
	o := New(main, vv, d)

	require.True(t, main.View().UpdateAllLifecyclePhases())
	vv.ClearNeedsRepaint()

	o.Destroy()
	assert.Nil(t, o.Delegate())
	assert.True(t, vv.NeedsRepaint())

	o.ServiceScriptedAnimations(time.Now())
	assert.Empty(t, d.ticks)

	require.True(t, main.View().UpdateAllLifecyclePhases())
	require.Len(t, h.artifacts, 2)
	assert.Empty(t, h.artifacts[1].Items, "overlay no longer painted")

	require.Panics(t, o.Destroy)
}

func TestServiceScriptedAnimations(t *testing.T) {
	h := &testHost{}
	main := newFrame(h, "main", geom.Rect{Width: 10, Height: 10})
	d := &highlightDelegate{}
	o := New(main, viewport.NewVisualViewport(geom.Size{Width: 10, Height: 10}), d)
	defer o.Destroy()

	now := time.Unix(100, 0)
	o.ServiceScriptedAnimations(now)
	assert.Equal(t, []time.Time{now}, d.ticks)
}
