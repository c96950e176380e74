package dom

import (
	"go.uber.org/zap"

	"framecore/pkg/frame"
	"framecore/pkg/geom"
	"framecore/pkg/images"
	"framecore/pkg/pagescale"
	"framecore/pkg/viewport"
)

// LayoutClient receives a document's layout invalidations. A
// *frame.LocalFrameView satisfies it.
type LayoutClient interface {
	ScheduleRelayout()
	ScheduleRelayoutOfSubtree(root frame.LayoutObject)
	AddViewportConstrainedObject(o frame.LayoutObject, sticky bool)
	RemoveViewportConstrainedObject(o frame.LayoutObject)
	LayoutViewport() *viewport.LayoutViewport
}

// Document is a parsed page and the root of its layout tree.
type Document struct {
	Root *Node

	// Scripts holds the text of every <script> element in document order.
	Scripts []string
	// ViewportMeta is the parsed <meta name="viewport">, if the page has
	// one.
	ViewportMeta *pagescale.ViewportDescription

	client LayoutClient
	images *images.Cache
	logger *zap.Logger

	viewportSize geom.Size
	size         geom.Size
	extent       geom.Size
	fixedDepth   int
	needsLayout  bool
	inLayout     bool
	layoutCount  int

	constrained map[*Node]bool

	// Frame index of each image as of the last paint.
	paintedFrames map[*images.Image]int
}

// Option configures a Document.
type Option func(*Document)

// WithImageCache sets the cache <img> elements load from. Without one,
// images are not loaded.
func WithImageCache(c *images.Cache) Option {
	return func(d *Document) { d.images = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Document) { d.logger = l }
}

// NewDocument returns an empty document.
func NewDocument(opts ...Option) *Document {
	d := &Document{
		needsLayout:   true,
		constrained:   map[*Node]bool{},
		paintedFrames: map[*images.Image]int{},
		logger:        zap.L().Named("dom"),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Root = newNode(d, DocumentNode, "#document")
	return d
}

// CreateElement returns a detached element owned by d.
func (d *Document) CreateElement(tag string) *Node {
	return newNode(d, ElementNode, tag)
}

// CreateTextNode returns a detached text node owned by d.
func (d *Document) CreateTextNode(text string) *Node {
	n := newNode(d, TextNode, "")
	n.Text = text
	return n
}

// GetElementByID returns the first element with the given id, or nil.
func (d *Document) GetElementByID(id string) *Node {
	var found *Node
	d.Root.walk(func(n *Node) {
		if found == nil && n.Type == ElementNode && n.ID() == id {
			found = n
		}
	})
	return found
}

// ElementsByTagName returns the elements named tag in tree order.
func (d *Document) ElementsByTagName(tag string) []*Node {
	var out []*Node
	d.Root.walk(func(n *Node) {
		if n.Type == ElementNode && n.TagName == tag {
			out = append(out, n)
		}
	})
	return out
}

// FrameOwners returns the <iframe> elements in tree order.
func (d *Document) FrameOwners() []*Node { return d.ElementsByTagName("iframe") }

// Attach connects d to the frame view that lays it out. Pending layout and
// viewport-constrained elements are handed over.
func (d *Document) Attach(c LayoutClient) {
	d.client = c
	for n := range d.constrained {
		c.AddViewportConstrainedObject(n.layout, n.style.Position == PositionSticky)
	}
	if d.needsLayout {
		c.ScheduleRelayout()
	}
}

// LayoutCount is the number of full layouts run.
func (d *Document) LayoutCount() int { return d.layoutCount }

func (d *Document) scheduleRelayout(target *LayoutBox) {
	if target == nil {
		d.needsLayout = true
	}
	if d.client == nil || d.inLayout {
		return
	}
	if target == nil {
		d.client.ScheduleRelayout()
		return
	}
	d.client.ScheduleRelayoutOfSubtree(target)
}

// ScrollOffset is the layout viewport's scroll offset, zero when detached.
func (d *Document) ScrollOffset() geom.Vector {
	if d.client == nil {
		return geom.Vector{}
	}
	return d.client.LayoutViewport().ScrollOffset()
}

// syncViewportConstrained registers newly laid out fixed and sticky
// elements with the client and drops the ones that lost their box.
func (d *Document) syncViewportConstrained() {
	seen := map[*Node]bool{}
	d.Root.walk(func(n *Node) {
		if n.Type != ElementNode || !n.hasBox || !n.style.IsViewportConstrained() {
			return
		}
		seen[n] = true
		if d.constrained[n] {
			return
		}
		d.constrained[n] = true
		if d.client != nil {
			d.client.AddViewportConstrainedObject(n.layout, n.style.Position == PositionSticky)
		}
	})
	for n := range d.constrained {
		if !seen[n] {
			d.forgetConstrained(n)
		}
	}
}

func (d *Document) forgetConstrained(n *Node) {
	if !d.constrained[n] {
		return
	}
	delete(d.constrained, n)
	if d.client != nil {
		d.client.RemoveViewportConstrainedObject(n.layout)
	}
}

// Parent implements frame.LayoutObject. The document is the layout root.
func (d *Document) Parent() frame.LayoutObject { return nil }

// NeedsLayout reports whether a full layout is pending.
func (d *Document) NeedsLayout() bool { return d.needsLayout }

// ClearNeedsLayout implements frame.LayoutObject.
func (d *Document) ClearNeedsLayout() { d.needsLayout = false }

// MarkContainerChainForLayout implements frame.LayoutObject.
func (d *Document) MarkContainerChainForLayout() { d.needsLayout = true }

// SetViewportSize sets the initial containing block size.
func (d *Document) SetViewportSize(s geom.Size) {
	if d.viewportSize == s {
		return
	}
	d.viewportSize = s
	d.needsLayout = true
}

// DocumentSize is the laid out size, at least the viewport size.
func (d *Document) DocumentSize() geom.Size { return d.size }
