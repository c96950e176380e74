package viewport

import "framecore/pkg/geom"

// RootFrameViewport combines the layout and visual viewports of the main
// frame into the region the user actually sees.
type RootFrameViewport struct {
	Layout *LayoutViewport
	Visual *VisualViewport
}

// NewRootFrameViewport pairs layout and visual.
func NewRootFrameViewport(layout *LayoutViewport, visual *VisualViewport) *RootFrameViewport {
	return &RootFrameViewport{Layout: layout, Visual: visual}
}

// VisibleContentRect is the visual viewport's rect in document coordinates.
func (r *RootFrameViewport) VisibleContentRect() geom.Rect {
	origin := r.Visual.Location().Add(r.Layout.ScrollOffset())
	return geom.RectFromPointSize(origin, r.Visual.VisibleSize())
}

// RootContentsToLayoutViewportContents maps a rect from root frame document
// coordinates into the layout viewport's contents space. The root frame
// does not transform its contents, so this is the identity.
func (r *RootFrameViewport) RootContentsToLayoutViewportContents(rect geom.Rect) geom.Rect {
	return rect
}
