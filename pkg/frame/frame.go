package frame

import (
	"framecore/pkg/geom"
	"framecore/pkg/lifecycle"
)

// Frame is a node of the frame tree. A local frame renders here and owns a
// LocalFrameView; a remote frame stands in for one rendered elsewhere and
// owns a RemoteFrameView.
type Frame struct {
	name   string
	origin string

	parent   *Frame
	children []*Frame
	host     Host

	// rect is the frame's box in its parent's document coordinates.
	rect       geom.Rect
	fencedRoot bool
	detached   bool

	document   *Document
	view       *LocalFrameView
	remoteView *RemoteFrameView
}

// NewLocalFrame creates a local frame showing doc and activates the
// document. It is a main frame until appended to a parent.
func NewLocalFrame(host Host, name, origin string, rect geom.Rect, doc *Document, opts ...ViewOption) *Frame {
	f := &Frame{name: name, origin: origin, host: host, rect: rect, document: doc}
	doc.frame = f
	f.view = newLocalFrameView(f, rect.Size(), opts...)
	doc.SetActive(true)
	return f
}

// NewRemoteFrame creates a placeholder for a frame rendered elsewhere.
func NewRemoteFrame(name, origin string, rect geom.Rect) *Frame {
	f := &Frame{name: name, origin: origin, rect: rect}
	f.remoteView = newRemoteFrameView(f)
	return f
}

// MarkFencedFrameRoot makes f the root of a fenced frame tree.
func (f *Frame) MarkFencedFrameRoot() { f.fencedRoot = true }

// AppendChild attaches child below f. The child inherits f's host and its
// throttling state.
func (f *Frame) AppendChild(child *Frame) {
	lifecycle.DCheck(child.parent == nil, "frame %q already has a parent", child.name)
	child.parent = f
	f.children = append(f.children, child)
	child.setHost(f.host)

	switch {
	case child.view != nil:
		parentThrottled := f.view != nil && f.view.CanThrottleRendering()
		cv := child.view
		cv.UpdateRenderThrottlingStatus(cv.hiddenForThrottling, parentThrottled, cv.displayLocked, true)
	case child.remoteView != nil && f.view != nil:
		child.remoteView.UpdateRenderThrottlingStatus(child.remoteView.hiddenForThrottling, f.view.CanThrottleRendering())
	}
}

func (f *Frame) setHost(h Host) {
	if f.host == nil {
		f.host = h
	}
	for _, c := range f.children {
		c.setHost(h)
	}
}

// Detach removes f and its subtree from the tree. Documents are
// deactivated and views stop taking part in lifecycle updates.
func (f *Frame) Detach() {
	for len(f.children) > 0 {
		f.children[len(f.children)-1].Detach()
	}
	if f.parent != nil {
		siblings := f.parent.children
		for i, c := range siblings {
			if c == f {
				f.parent.children = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
		f.parent = nil
	}
	if f.document != nil {
		f.document.SetActive(false)
	}
	f.detached = true
}

func (f *Frame) Name() string       { return f.name }
func (f *Frame) Origin() string     { return f.origin }
func (f *Frame) Parent() *Frame     { return f.parent }
func (f *Frame) Children() []*Frame { return f.children }
func (f *Frame) Host() Host         { return f.host }

// Document is nil for remote frames.
func (f *Frame) Document() *Document { return f.document }

// View is nil for remote frames.
func (f *Frame) View() *LocalFrameView { return f.view }

// RemoteView is nil for local frames.
func (f *Frame) RemoteView() *RemoteFrameView { return f.remoteView }

func (f *Frame) IsLocal() bool  { return f.view != nil }
func (f *Frame) IsRemote() bool { return f.remoteView != nil }

// IsAttached reports whether f has not been detached.
func (f *Frame) IsAttached() bool { return !f.detached }

// IsMainFrame reports whether f is the attached root of the frame tree.
func (f *Frame) IsMainFrame() bool { return f.parent == nil && !f.detached }

// IsLocalRoot reports whether f is a local frame whose parent, if any, is
// remote.
func (f *Frame) IsLocalRoot() bool {
	return f.IsLocal() && (f.parent == nil || f.parent.IsRemote())
}

// LocalFrameRoot returns the top of f's contiguous local subtree.
func (f *Frame) LocalFrameRoot() *Frame {
	root := f
	for root.parent != nil && root.parent.IsLocal() {
		root = root.parent
	}
	return root
}

// Top returns the root of the whole frame tree.
func (f *Frame) Top() *Frame {
	top := f
	for top.parent != nil {
		top = top.parent
	}
	return top
}

// IsCrossOriginToMainFrame compares origins with the top frame.
func (f *Frame) IsCrossOriginToMainFrame() bool {
	return f.origin != f.Top().origin
}

// IsInFencedFrameTree reports whether f or an ancestor is a fenced frame
// root.
func (f *Frame) IsInFencedFrameTree() bool {
	for fr := f; fr != nil; fr = fr.parent {
		if fr.fencedRoot {
			return true
		}
	}
	return false
}

// FrameRect is f's box in its parent's document coordinates.
func (f *Frame) FrameRect() geom.Rect { return f.rect }

// SetFrameRect moves or resizes f. A size change resizes the view.
func (f *Frame) SetFrameRect(r geom.Rect) {
	old := f.rect
	f.rect = r
	if f.view != nil {
		if r.Size() != old.Size() {
			f.view.Resize(r.Size())
		}
		if r != old {
			f.view.frameRectsChanged = true
		}
	}
}

// originInLocalRoot is the offset of f's document origin within its local
// root's document.
func (f *Frame) originInLocalRoot() geom.Point {
	var p geom.Point
	for fr := f; fr.parent != nil && !fr.IsLocalRoot(); fr = fr.parent {
		p = p.Add(geom.Vector{X: fr.rect.X, Y: fr.rect.Y})
		if pv := fr.parent.view; pv != nil {
			off := pv.layoutViewport.ScrollOffset()
			p = p.Add(geom.Vector{X: -off.X, Y: -off.Y})
		}
	}
	return p
}

// clipRectInLocalRoot is the area of the local root's viewport f may paint
// into: its frame rect cut by every ancestor's.
func (f *Frame) clipRectInLocalRoot() geom.Rect {
	if f.parent == nil || f.IsLocalRoot() {
		if f.view == nil {
			return geom.Rect{}
		}
		s := f.view.Size()
		return geom.Rect{Width: s.Width, Height: s.Height}
	}
	o := f.originInLocalRoot()
	r := geom.Rect{X: o.X, Y: o.Y, Width: f.rect.Width, Height: f.rect.Height}
	return r.Intersect(f.parent.clipRectInLocalRoot())
}
