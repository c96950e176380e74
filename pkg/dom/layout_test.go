package dom

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

type fakeClient struct {
	full        int
	subtrees    []frame.LayoutObject
	constrained map[frame.LayoutObject]bool
	lv          *viewport.LayoutViewport
}

func newFakeClient() *fakeClient {
	return &fakeClient{constrained: map[frame.LayoutObject]bool{}, lv: viewport.NewLayoutViewport(geom.Size{Width: 200, Height: 100})}
}

func (c *fakeClient) ScheduleRelayout() { c.full++ }
func (c *fakeClient) ScheduleRelayoutOfSubtree(root frame.LayoutObject) {
	c.subtrees = append(c.subtrees, root)
}
func (c *fakeClient) AddViewportConstrainedObject(o frame.LayoutObject, sticky bool) {
	c.constrained[o] = sticky
}
func (c *fakeClient) RemoveViewportConstrainedObject(o frame.LayoutObject) { delete(c.constrained, o) }
func (c *fakeClient) LayoutViewport() *viewport.LayoutViewport { return c.lv }

func layoutDoc(t *testing.T, src string, width float64) (*Document, *fakeClient) {
	t.Helper()
	doc, err := Parse(src)
	require.NoError(t, err)
	c := newFakeClient()
	doc.Attach(c)
	doc.SetViewportSize(geom.Size{Width: width, Height: 100})
	doc.UpdateLayout()
	doc.ClearNeedsLayout()
	c.lv.SetContentsSize(doc.DocumentSize())
	return doc, c
}

func TestLayoutStacksBlocks(t *testing.T) {
	doc, _ := layoutDoc(t, `<div id=a style="height:30"></div><div id=b style="padding:5"><p id=c>hello</p></div>`, 200)

	a, b, c := doc.GetElementByID("a"), doc.GetElementByID("b"), doc.GetElementByID("c")
	assert.Equal(t, geom.Rect{Width: 200, Height: 30}, a.TargetRect())
	assert.Equal(t, geom.Rect{Y: 30, Width: 200, Height: 26}, b.TargetRect())
	assert.Equal(t, geom.Rect{X: 5, Y: 35, Width: 190, Height: 16}, c.TargetRect())
	assert.Equal(t, geom.Size{Width: 200, Height: 100}, doc.DocumentSize())
	assert.Equal(t, 2, c.TreeDepth())
}

func TestLayoutWrapsText(t *testing.T) {
	doc, _ := layoutDoc(t, `<p id=p>aaaa bbbb cccc</p>`, 70)

	text := doc.GetElementByID("p").Children[0]
	assert.Equal(t, []string{"aaaa bbbb", "cccc"}, text.lines)
	assert.Equal(t, geom.Size{Width: 63, Height: 32}, text.ContentSize())
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "g", "hi"}, wrapText("abcdefg hi", 3))
	assert.Empty(t, wrapText("   ", 10))
}

func TestLayoutDocumentSizeGrowsWithContent(t *testing.T) {
	doc, _ := layoutDoc(t, `<div style="width:500;height:400"></div><div style="position:fixed;top:0;width:900;height:900"></div>`, 200)
	assert.Equal(t, geom.Size{Width: 500, Height: 400}, doc.DocumentSize())
}

func TestDisplayNoneHasNoBox(t *testing.T) {
	doc, _ := layoutDoc(t, `<div id=a style="display:none"><p id=b>x</p></div><div id=c style="height:10"></div>`, 200)

	_, ok := doc.GetElementByID("b").BoundingBox()
	assert.False(t, ok)
	assert.Equal(t, 0.0, doc.GetElementByID("c").TargetRect().Y)
}

func TestMutationSchedulesRelayout(t *testing.T) {
	doc, c := layoutDoc(t, `<div id=box style="width:100;height:50"><p id=inner>x</p></div><p id=free>y</p>`, 200)
	c.full = 0

	doc.GetElementByID("inner").AppendText("more")
	require.Len(t, c.subtrees, 1, "fixed-size parent is a relayout boundary")
	box := doc.GetElementByID("box").LayoutObject()
	assert.Same(t, box, c.subtrees[0])
	assert.True(t, box.NeedsLayout())
	assert.False(t, doc.NeedsLayout())

	doc.GetElementByID("free").AppendText("z")
	assert.Equal(t, 1, c.full)
	assert.True(t, doc.NeedsLayout())
}

func TestSubtreeLayoutKeepsBoundaryBox(t *testing.T) {
	doc, _ := layoutDoc(t, `<div style="height:20"></div><div id=box style="width:100;height:50"><p id=inner>x</p></div>`, 200)
	inner := doc.GetElementByID("inner")
	inner.Children[0].SetText("a much longer line of text")

	box := doc.GetElementByID("box")
	box.LayoutObject().UpdateLayout()

	assert.Equal(t, geom.Rect{Y: 20, Width: 100, Height: 50}, box.TargetRect())
	assert.Equal(t, []string{"a much longer", "line of text"}, inner.Children[0].lines)
	assert.Equal(t, 1, doc.LayoutCount())
}

func TestLayoutBoxParentChain(t *testing.T) {
	doc, _ := layoutDoc(t, `<div id=a><p id=b>x</p></div>`, 200)

	b := doc.GetElementByID("b").LayoutObject()
	a := doc.GetElementByID("a").LayoutObject()
	assert.Same(t, a, b.Parent())
	assert.Equal(t, frame.LayoutObject(doc), a.Parent())
	assert.Nil(t, doc.Parent())

	doc.ClearNeedsLayout()
	b.MarkContainerChainForLayout()
	assert.True(t, a.NeedsLayout())
	assert.True(t, doc.NeedsLayout())
}

func TestViewportConstrainedRegistration(t *testing.T) {
	doc, c := layoutDoc(t, `<div id=f style="position:fixed;top:5;left:5;width:20;height:20"></div><div id=s style="position:sticky;top:0;height:10"></div>`, 200)

	f, s := doc.GetElementByID("f"), doc.GetElementByID("s")
	assert.Equal(t, map[frame.LayoutObject]bool{f.LayoutObject(): false, s.LayoutObject(): true}, c.constrained)
	assert.Equal(t, geom.Rect{X: 5, Y: 5, Width: 20, Height: 20}, f.TargetRect())

	f.SetAttribute("style", "height:20")
	assert.NotContains(t, c.constrained, f.LayoutObject())

	doc.Root.RemoveChild(s)
	assert.Empty(t, c.constrained)
}

func TestHitTest(t *testing.T) {
	doc, c := layoutDoc(t, `<div id=a style="height:50"><div id=b style="width:40;height:20"></div></div><div id=c style="height:500"></div><div id=f style="position:fixed;top:0;left:150;width:50;height:50"></div>`, 200)

	assert.Equal(t, "b", doc.NodeAt(geom.Point{X: 10, Y: 10}).ID())
	assert.Equal(t, "a", doc.NodeAt(geom.Point{X: 100, Y: 10}).ID())
	assert.Equal(t, "f", doc.NodeAt(geom.Point{X: 160, Y: 10}).ID())
	assert.Nil(t, doc.HitTest(geom.Point{X: 10, Y: 900}))

	c.lv.SetScrollOffset(geom.Vector{Y: 100})
	assert.Equal(t, "f", doc.NodeAt(geom.Point{X: 160, Y: 110}).ID(), "fixed element follows the scroll offset")
	assert.Equal(t, "a", doc.NodeAt(geom.Point{X: 160, Y: 10}).ID())
	assert.Equal(t, "c", doc.NodeAt(geom.Point{X: 160, Y: 60}).ID())
}

func TestNodeTreeOperations(t *testing.T) {
	doc := NewDocument()
	parent := doc.CreateElement("div")
	a, b, c := doc.CreateElement("a"), doc.CreateElement("b"), doc.CreateElement("c")
	parent.AddChild(a)
	parent.AddChild(c)
	parent.InsertBefore(b, c)

	assert.Equal(t, 1, b.IndexInParent())
	assert.True(t, parent.Contains(b))
	assert.False(t, b.Contains(parent))
	assert.False(t, b.IsConnected())

	doc.Root.AddChild(parent)
	assert.True(t, b.IsConnected())
	assert.Equal(t, viewport.Node(parent), b.ParentNode())

	assert.Same(t, b, parent.RemoveChild(b))
	assert.Nil(t, parent.RemoveChild(b))
	assert.Equal(t, -1, b.IndexInParent())
	assert.Len(t, parent.Children, 2)
}

type recordingCompositor struct{ artifacts []*paint.Artifact }

func (r *recordingCompositor) Commit(a *paint.Artifact) { r.artifacts = append(r.artifacts, a) }

type testHost struct {
	compositor recordingCompositor
	dark       *darkmode.Filter
}

func (h *testHost) ScheduleVisualUpdate(*frame.Frame, time.Duration) {}
func (h *testHost) DarkModeFilter() *darkmode.Filter                 { return h.dark }
func (h *testHost) Compositor() paint.Compositor                     { return &h.compositor }
func (h *testHost) DidChangeContentsSize(*frame.Frame, geom.Size)    {}
func (h *testHost) ResizeObserverLoopLimit() int                     { return 0 }
func (h *testHost) RenderThrottlingEnabled() bool                    { return true }

func TestPaintThroughFrameLifecycle(t *testing.T) {
	doc, err := Parse(`<body><p id=t style="color:#ff0000">hi</p><ul><li>x</li></ul><svg width=10 height=10 fill="#00ff00"></svg></body>`)
	require.NoError(t, err)
	h := &testHost{}
	fdoc := frame.NewDocument(frame.WithLayoutView(doc))
	f := frame.NewLocalFrame(h, "main", "https://a.test", geom.Rect{Width: 200, Height: 100}, fdoc)
	doc.Attach(f.View())

	require.True(t, f.View().UpdateAllLifecyclePhases())
	require.Len(t, h.compositor.artifacts, 1)

	items := h.compositor.artifacts[0].Items
	require.NotEmpty(t, items)
	assert.Equal(t, paint.ItemRect, items[0].Kind)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, items[0].Color)

	var sawText, sawBullet, sawSVG bool
	for _, it := range items {
		switch {
		case it.Kind == paint.ItemText && it.Color == (color.NRGBA{R: 255, A: 255}):
			sawText = true
		case it.Kind == paint.ItemRect && it.Bounds.Width == 5:
			sawBullet = true
		case it.Kind == paint.ItemRect && it.Color == (color.NRGBA{G: 255, A: 255}):
			sawSVG = true
		}
	}
	assert.True(t, sawText)
	assert.True(t, sawBullet)
	assert.True(t, sawSVG)
	assert.Equal(t, 1, doc.LayoutCount())
}

func TestSVGContentPaintsWithSVGRole(t *testing.T) {
	doc, err := Parse(`<body><p>out</p><svg width=100 height=40 fill="#00ff00"><p>in</p></svg></body>`)
	require.NoError(t, err)
	h := &testHost{dark: darkmode.NewFilter(darkmode.Settings{
		Mode:                          darkmode.InversionSimpleInvertForTesting,
		ImagePolicy:                   darkmode.ImagePolicyNone,
		ForegroundBrightnessThreshold: 255,
		BackgroundBrightnessThreshold: 205,
	})}
	fdoc := frame.NewDocument(frame.WithLayoutView(doc))
	f := frame.NewLocalFrame(h, "main", "https://a.test", geom.Rect{Width: 200, Height: 100}, fdoc)
	doc.Attach(f.View())

	require.True(t, f.View().UpdateAllLifecyclePhases())
	require.Len(t, h.compositor.artifacts, 1)

	var texts []color.NRGBA
	sawFill := false
	for _, it := range h.compositor.artifacts[0].Items {
		switch {
		case it.Kind == paint.ItemText:
			texts = append(texts, it.Color)
		case it.Kind == paint.ItemRect && it.Color == (color.NRGBA{G: 255, A: 255}):
			sawFill = true
		}
	}
	assert.Equal(t, []color.NRGBA{
		{R: 255, G: 255, B: 255, A: 255},
		{A: 255},
	}, texts, "text outside the svg is inverted, text inside is not")
	assert.True(t, sawFill, "svg fill is left alone")
}
