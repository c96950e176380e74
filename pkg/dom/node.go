// Package dom is a small document model: a markup parser, inline styles,
// block layout, painting and hit testing. A Document is the layout view of
// a frame.
package dom

import (
	"framecore/pkg/geom"
	"framecore/pkg/viewport"
)

// NodeType distinguishes elements from text.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	DocumentNode
)

// Node is an element or text node.
type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string
	Children   []*Node
	Parent     *Node

	doc    *Document
	style  Style
	layout *LayoutBox
	box    geom.Rect
	hasBox bool
	lines  []string
}

func newNode(doc *Document, t NodeType, tag string) *Node {
	n := &Node{Type: t, TagName: tag, Attributes: map[string]string{}, doc: doc}
	n.layout = &LayoutBox{node: n}
	return n
}

// Document returns the owner document.
func (n *Node) Document() *Document { return n.doc }

// Style returns the parsed inline style.
func (n *Node) Style() Style { return n.style }

// LayoutObject returns the node's layout object.
func (n *Node) LayoutObject() *LayoutBox { return n.layout }

// GetAttribute returns the named attribute.
func (n *Node) GetAttribute(name string) (string, bool) {
	v, ok := n.Attributes[name]
	return v, ok
}

// SetAttribute sets an attribute. Changing style invalidates layout.
func (n *Node) SetAttribute(name, value string) {
	if old, ok := n.Attributes[name]; ok && old == value {
		return
	}
	n.Attributes[name] = value
	switch name {
	case "style":
		wasConstrained := n.style.IsViewportConstrained()
		n.style = ParseStyle(value)
		if wasConstrained && !n.style.IsViewportConstrained() && n.doc != nil {
			n.doc.forgetConstrained(n)
		}
		n.setNeedsBoxLayout()
	case "width", "height", "src":
		n.setNeedsBoxLayout()
	}
}

// RemoveAttribute deletes an attribute. Removing a layout-affecting
// attribute invalidates layout the same way setting it does.
func (n *Node) RemoveAttribute(name string) {
	if _, ok := n.Attributes[name]; !ok {
		return
	}
	if name == "style" {
		n.SetAttribute("style", "")
	}
	delete(n.Attributes, name)
	switch name {
	case "width", "height", "src":
		n.setNeedsBoxLayout()
	}
}

// SetText replaces a text node's data.
func (n *Node) SetText(text string) {
	if n.Text == text {
		return
	}
	n.Text = text
	n.setNeedsLayout()
}

// AddChild appends child, detaching it from any previous parent.
func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	n.setNeedsLayout()
}

// AppendText appends a text node holding text.
func (n *Node) AppendText(text string) *Node {
	if text == "" {
		return nil
	}
	t := newNode(n.doc, TextNode, "")
	t.Text = text
	n.AddChild(t)
	return t
}

// RemoveChild removes child and returns it, or nil when child is not a
// child of n.
func (n *Node) RemoveChild(child *Node) *Node {
	i := child.IndexInParent()
	if child.Parent != n || i < 0 {
		return nil
	}
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
	child.Parent = nil
	if n.doc != nil {
		child.walk(func(c *Node) {
			c.hasBox = false
			n.doc.forgetConstrained(c)
		})
	}
	n.setNeedsLayout()
	return child
}

// InsertBefore inserts child before ref. A nil or foreign ref appends.
func (n *Node) InsertBefore(child, ref *Node) *Node {
	if ref == nil || ref.Parent != n {
		n.AddChild(child)
		return child
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	i := ref.IndexInParent()
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
	child.Parent = n
	n.setNeedsLayout()
	return child
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// IndexInParent is n's position among its siblings, or -1.
func (n *Node) IndexInParent() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// ID returns the id attribute.
func (n *Node) ID() string { return n.Attributes["id"] }

// TextContent concatenates the text of n's subtree.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Text
	}
	s := ""
	for _, c := range n.Children {
		s += c.TextContent()
	}
	return s
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// setNeedsLayout marks n and its ancestors up to the nearest relayout
// boundary, then asks the frame for a layout of that boundary.
func (n *Node) setNeedsLayout() { n.markForLayout(true) }

// setNeedsBoxLayout is setNeedsLayout for a change to n's own box, which
// n cannot contain as its own boundary.
func (n *Node) setNeedsBoxLayout() { n.markForLayout(false) }

func (n *Node) markForLayout(selfBoundary bool) {
	if n.doc == nil {
		return
	}
	target := n
	for {
		target.layout.needsLayout = true
		if target.Parent == nil {
			break
		}
		if (target != n || selfBoundary) && target.layout.isRelayoutBoundary() {
			break
		}
		target = target.Parent
	}
	if target.Type == DocumentNode {
		n.doc.scheduleRelayout(nil)
		return
	}
	if target.IsConnected() {
		n.doc.scheduleRelayout(target.layout)
	}
}

// ParentNode implements viewport.Node.
func (n *Node) ParentNode() viewport.Node {
	if n.Parent == nil {
		return nil
	}
	return n.Parent
}

// IsConnected reports whether n is in its document's tree.
func (n *Node) IsConnected() bool {
	p := n
	for p.Parent != nil {
		p = p.Parent
	}
	return n.doc != nil && p == n.doc.Root
}

// BoundingBox returns the node's layout box in document coordinates. ok is
// false for nodes without a box.
func (n *Node) BoundingBox() (geom.Rect, bool) {
	return n.box, n.hasBox
}

// TargetRect is the box reported to intersection observers.
func (n *Node) TargetRect() geom.Rect {
	if !n.hasBox {
		return geom.Rect{}
	}
	return n.box
}

// TreeDepth is the number of ancestors of n.
func (n *Node) TreeDepth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// ContentSize is the size of the layout box, or zero without one.
func (n *Node) ContentSize() geom.Size {
	if !n.hasBox {
		return geom.Size{}
	}
	return n.box.Size()
}
