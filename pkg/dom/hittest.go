package dom

import (
	"framecore/pkg/geom"
	"framecore/pkg/viewport"
)

// HitTest returns the deepest node whose box contains p, a point in
// document coordinates. Later siblings paint on top, so they win. It
// returns nil when only the document itself is hit.
func (d *Document) HitTest(p geom.Point) viewport.Node {
	if n := d.NodeAt(p); n != nil {
		return n
	}
	return nil
}

// NodeAt is HitTest with a concrete result type.
func (d *Document) NodeAt(p geom.Point) *Node { return d.hitTestNode(d.Root, p, geom.Vector{}) }

// hitTestNode tests n's subtree. off is the paint offset inherited from
// fixed or sticky ancestors.
func (d *Document) hitTestNode(n *Node, p geom.Point, off geom.Vector) *Node {
	if n.Type == ElementNode && n.hasBox {
		o := d.constrainedOffset(n)
		off = geom.Vector{X: off.X + o.X, Y: off.Y + o.Y}
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		if hit := d.hitTestNode(n.Children[i], p, off); hit != nil {
			return hit
		}
	}
	if n.Type == DocumentNode || !n.hasBox {
		return nil
	}
	if n.box.Offset(off).Contains(p) {
		return n
	}
	return nil
}
