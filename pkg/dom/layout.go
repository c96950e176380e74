package dom

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"framecore/pkg/frame"
	"framecore/pkg/geom"
)

// Metrics of the built-in 7x13 font.
const (
	charWidth  = 7
	lineHeight = 16
	textAscent = 12
	listIndent = 20
)

// LayoutBox is the layout object of a node.
type LayoutBox struct {
	node               *Node
	needsLayout        bool
	paintInvalidations int
}

// Node returns the node the box was generated for.
func (b *LayoutBox) Node() *Node { return b.node }

// Parent returns the containing layout object. Children of the document
// node are contained by the document itself.
func (b *LayoutBox) Parent() frame.LayoutObject {
	p := b.node.Parent
	if p == nil {
		return nil
	}
	if p.Type == DocumentNode {
		if p.doc == nil {
			return nil
		}
		return p.doc
	}
	return p.layout
}

func (b *LayoutBox) NeedsLayout() bool { return b.needsLayout }
func (b *LayoutBox) ClearNeedsLayout() { b.needsLayout = false }

// MarkContainerChainForLayout marks every ancestor up to the document.
func (b *LayoutBox) MarkContainerChainForLayout() {
	for n := b.node; n != nil; n = n.Parent {
		n.layout.needsLayout = true
		if n.Type == DocumentNode && n.doc != nil {
			n.doc.needsLayout = true
		}
	}
}

// UpdateLayout lays out the box's subtree in place. Only relayout
// boundaries are laid out this way, so the box keeps its size.
func (b *LayoutBox) UpdateLayout() {
	n := b.node
	d := n.doc
	if d == nil {
		return
	}
	d.inLayout = true
	defer func() { d.inLayout = false }()
	if n.style.Position == PositionFixed {
		d.fixedDepth++
		defer func() { d.fixedDepth-- }()
	}
	d.layoutNode(n, n.box.X, n.box.Y, n.box.Width)
	d.syncViewportConstrained()
	d.logger.Debug("subtree layout", zap.String("tag", n.TagName), zap.Any("box", n.box))
}

// SetNeedsPaintInvalidation implements frame.PaintInvalidator.
func (b *LayoutBox) SetNeedsPaintInvalidation() { b.paintInvalidations++ }

// PaintInvalidationCount is the number of paint invalidations received.
func (b *LayoutBox) PaintInvalidationCount() int { return b.paintInvalidations }

func (b *LayoutBox) isRelayoutBoundary() bool {
	n := b.node
	if n.Type != ElementNode || n.Parent == nil {
		return false
	}
	return n.style.HasWidth && n.style.HasHeight && !n.style.DisplayNone
}

// UpdateLayout runs a full layout against the viewport width.
func (d *Document) UpdateLayout() {
	d.inLayout = true
	defer func() { d.inLayout = false }()
	d.layoutCount++
	d.extent = geom.Size{}

	y := 0.0
	for _, c := range d.Root.Children {
		y += d.layoutNode(c, 0, y, d.viewportSize.Width)
	}
	d.Root.box = geom.Rect{Width: d.viewportSize.Width, Height: y}
	d.Root.hasBox = true
	d.Root.layout.needsLayout = false
	d.size = d.viewportSize.Max(d.extent)
	d.syncViewportConstrained()
	d.logger.Debug("layout",
		zap.Int("count", d.layoutCount),
		zap.Float64("width", d.size.Width),
		zap.Float64("height", d.size.Height))
}

func isNonRendered(tag string) bool {
	switch tag {
	case "head", "title", "meta", "link", "script", "style", "template":
		return true
	}
	return false
}

// layoutNode places n at (x, y) with avail width and returns the height it
// takes in flow.
func (d *Document) layoutNode(n *Node, x, y, avail float64) float64 {
	n.layout.needsLayout = false
	if n.Type == TextNode {
		return d.layoutText(n, x, y, avail)
	}
	st := n.style
	if st.DisplayNone || isNonRendered(n.TagName) {
		n.walk(func(c *Node) {
			c.hasBox = false
			c.layout.needsLayout = false
		})
		return 0
	}
	if st.Position == PositionFixed {
		x, y = st.Left, st.Top
		d.fixedDepth++
		defer func() { d.fixedDepth-- }()
	}

	w := math.Max(0, avail)
	if st.HasWidth {
		w = st.Width
	}
	iw, ih, replaced := d.intrinsicSize(n)
	if replaced && !st.HasWidth {
		w = iw
	}

	inset := st.Padding
	if n.TagName == "ul" || n.TagName == "ol" {
		inset += listIndent
	}
	cy := y + st.Padding
	for _, c := range n.Children {
		cy += d.layoutNode(c, x+inset, cy, w-inset-st.Padding)
	}

	h := cy + st.Padding - y
	if replaced {
		h = ih
	}
	if st.HasHeight {
		h = st.Height
	}
	n.box = geom.Rect{X: x, Y: y, Width: w, Height: h}
	n.hasBox = true
	if st.Position == PositionFixed {
		return 0
	}
	d.growExtent(n.box)
	return h
}

func (d *Document) growExtent(r geom.Rect) {
	if d.fixedDepth > 0 {
		return
	}
	d.extent = d.extent.Max(geom.Size{Width: r.Right(), Height: r.Bottom()})
}

func (d *Document) layoutText(n *Node, x, y, avail float64) float64 {
	perLine := int(avail / charWidth)
	if perLine < 1 {
		perLine = 1
	}
	n.lines = wrapText(n.Text, perLine)
	if len(n.lines) == 0 {
		n.hasBox = false
		return 0
	}
	widest := 0
	for _, l := range n.lines {
		widest = max(widest, len([]rune(l)))
	}
	n.box = geom.Rect{X: x, Y: y, Width: float64(widest * charWidth), Height: float64(len(n.lines) * lineHeight)}
	n.hasBox = true
	d.growExtent(n.box)
	return n.box.Height
}

// wrapText breaks s into lines of at most perLine characters at word
// boundaries. Words longer than a line are split.
func wrapText(s string, perLine int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(s) {
		for len([]rune(word)) > perLine {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			r := []rune(word)
			lines = append(lines, string(r[:perLine]))
			word = string(r[perLine:])
		}
		switch {
		case line == "":
			line = word
		case len([]rune(line))+1+len([]rune(word)) <= perLine:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// intrinsicSize returns the natural size of replaced elements.
func (d *Document) intrinsicSize(n *Node) (w, h float64, replaced bool) {
	switch n.TagName {
	case "iframe", "svg":
		w, h = 300, 150
	case "img":
		if src, ok := n.GetAttribute("src"); ok && d.images != nil {
			if iw, ih, err := d.images.Dimensions(src); err == nil {
				w, h = float64(iw), float64(ih)
			} else {
				d.logger.Debug("image unavailable", zap.String("src", src), zap.Error(err))
			}
		}
	default:
		return 0, 0, false
	}
	if v, err := strconv.ParseFloat(n.Attributes["width"], 64); err == nil && v >= 0 {
		w = v
	}
	if v, err := strconv.ParseFloat(n.Attributes["height"], 64); err == nil && v >= 0 {
		h = v
	}
	return w, h, true
}
