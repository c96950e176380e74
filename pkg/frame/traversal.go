package frame

// TraversalOrder selects whether a visitor sees a view before or after its
// descendants.
type TraversalOrder int

const (
	PreOrder TraversalOrder = iota
	PostOrder
)

// ForAllNonThrottledLocalFrameViews visits v and its local descendants,
// pruning at throttled views. Post order folds children into parents.
func (v *LocalFrameView) ForAllNonThrottledLocalFrameViews(fn func(*LocalFrameView), order TraversalOrder) {
	if v.ShouldThrottleRendering() {
		return
	}
	if order == PreOrder {
		fn(v)
	}
	v.ForAllChildLocalFrameViews(func(c *LocalFrameView) {
		c.ForAllNonThrottledLocalFrameViews(fn, order)
	})
	if order == PostOrder {
		fn(v)
	}
}

// ForAllChildLocalFrameViews visits the direct local children of v.
func (v *LocalFrameView) ForAllChildLocalFrameViews(fn func(*LocalFrameView)) {
	for _, c := range v.frame.children {
		if c.view != nil {
			fn(c.view)
		}
	}
}

// ForAllThrottledLocalFrameViews visits every throttled view in v's local
// subtree, v included.
func (v *LocalFrameView) ForAllThrottledLocalFrameViews(fn func(*LocalFrameView)) {
	if v.ShouldThrottleRendering() {
		fn(v)
	}
	v.ForAllChildLocalFrameViews(func(c *LocalFrameView) {
		c.ForAllThrottledLocalFrameViews(fn)
	})
}

// ForAllRemoteFrameViews visits remote frames embedded anywhere in v's
// local subtree.
func (v *LocalFrameView) ForAllRemoteFrameViews(fn func(*RemoteFrameView)) {
	for _, c := range v.frame.children {
		switch {
		case c.remoteView != nil:
			fn(c.remoteView)
		case c.view != nil:
			c.view.ForAllRemoteFrameViews(fn)
		}
	}
}

func (v *LocalFrameView) collectNonThrottled(order TraversalOrder) []*LocalFrameView {
	var views []*LocalFrameView
	v.ForAllNonThrottledLocalFrameViews(func(fv *LocalFrameView) { views = append(views, fv) }, order)
	return views
}
