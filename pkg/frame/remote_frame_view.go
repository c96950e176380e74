package frame

import "framecore/pkg/geom"

// RemoteFrameView is the local stand-in for a frame rendered in another
// process. It only tracks what the embedding side must tell the remote
// renderer: which part of the frame is visible and whether it is throttled.
type RemoteFrameView struct {
	frame *Frame

	compositingRect     geom.Rect
	hiddenForThrottling bool
	subtreeThrottled    bool
}

func newRemoteFrameView(f *Frame) *RemoteFrameView {
	return &RemoteFrameView{frame: f}
}

func (r *RemoteFrameView) Frame() *Frame { return r.frame }

// CompositingRect is the visible part of the frame in its own coordinates,
// as of the last paint.
func (r *RemoteFrameView) CompositingRect() geom.Rect { return r.compositingRect }

// UpdateCompositingRect clips the frame rect to the local root's
// viewport.
func (r *RemoteFrameView) UpdateCompositingRect() {
	parent := r.frame.parent
	if parent == nil || parent.view == nil {
		r.compositingRect = geom.Rect{}
		return
	}
	root := parent.LocalFrameRoot().view
	origin := r.frame.originInLocalRoot()
	inRoot := geom.RectFromPointSize(origin, r.frame.rect.Size())
	visible := inRoot.Intersect(geom.Rect{Width: root.Size().Width, Height: root.Size().Height})
	if visible.IsEmpty() {
		r.compositingRect = geom.Rect{}
		return
	}
	r.compositingRect = visible.Offset(geom.Vector{X: -origin.X, Y: -origin.Y})
}

// UpdateRenderThrottlingStatus records the embedding side's view of the
// remote frame's visibility.
func (r *RemoteFrameView) UpdateRenderThrottlingStatus(hidden, subtreeThrottled bool) {
	r.hiddenForThrottling = hidden
	r.subtreeThrottled = subtreeThrottled
}

func (r *RemoteFrameView) CanThrottleRendering() bool {
	return r.subtreeThrottled || (r.hiddenForThrottling && r.frame.IsCrossOriginToMainFrame())
}
