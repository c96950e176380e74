package viewport

import (
	"math"

	"go.uber.org/zap"

	"framecore/pkg/geom"
	"framecore/pkg/lifecycle"
	"framecore/pkg/pagescale"
)

// A node whose box is larger than this multiple of the visible area is a
// poor anchor; one retry is made slightly further into the viewport.
const (
	maxAnchorNodeAreaFactor = 2
	anchorRelativeEpsilon   = 0.1
)

// Node is the part of a DOM node the anchor needs.
type Node interface {
	// ParentNode returns nil at the root.
	ParentNode() Node
	IsConnected() bool
	// BoundingBox is the node's layout box in document coordinates; ok is
	// false when the node has no layout box.
	BoundingBox() (box geom.Rect, ok bool)
}

// HitTester finds the innermost node at a document point, or nil.
type HitTester interface {
	HitTest(p geom.Point) Node
}

// RotationViewportAnchor records what the user is looking at before a
// viewport geometry change (typically a device rotation) and, on Restore,
// scrolls and zooms so the same content stays under the same relative
// screen position.
type RotationViewportAnchor struct {
	root        *RootFrameViewport
	constraints *pagescale.ConstraintsSet

	anchorInInnerViewCoords geom.Point

	oldPageScaleFactor        float64
	oldMinimumPageScaleFactor float64

	visualViewportInDocument       geom.Point
	normalizedVisualViewportOffset geom.Vector
	anchorNode                     Node
	anchorNodeBounds               geom.Rect
	anchorInNodeCoords             geom.Point

	restored bool
	logger   *zap.Logger
}

// NewRotationViewportAnchor captures the current anchor. anchorCoords is the
// anchor point normalized within the visual viewport, e.g. (0.5, 0) for the
// top center.
func NewRotationViewportAnchor(root *RootFrameViewport, hit HitTester, anchorCoords geom.Point, constraints *pagescale.ConstraintsSet) *RotationViewportAnchor {
	a := &RotationViewportAnchor{
		root:                    root,
		constraints:             constraints,
		anchorInInnerViewCoords: anchorCoords,
		logger:                  zap.L().Named("viewport"),
	}
	a.setAnchor(hit)
	return a
}

// AnchorNode returns the node the anchor is tracking, or nil.
func (a *RotationViewportAnchor) AnchorNode() Node { return a.anchorNode }

func (a *RotationViewportAnchor) setAnchor(hit HitTester) {
	visual := a.root.Visual
	a.oldPageScaleFactor = visual.Scale()
	a.oldMinimumPageScaleFactor = a.constraints.FinalConstraints().MinimumScale

	innerViewRect := a.root.VisibleContentRect()
	a.visualViewportInDocument = innerViewRect.Origin()

	if innerViewRect.Origin().IsOrigin() || innerViewRect.IsEmpty() {
		return
	}

	outerViewRect := a.root.Layout.VisibleContentRect()
	lifecycle.DCheck(!outerViewRect.IsEmpty(), "layout viewport must not be empty")
	loc := visual.Location()
	a.normalizedVisualViewportOffset = geom.Vector{X: loc.X / outerViewRect.Width, Y: loc.Y / outerViewRect.Height}

	// The unscaled size is used so the anchor stays at the same relative
	// spot even though the scale changes across the rotation.
	anchorOffset := geom.Vector{
		X: visual.Size().Width * a.anchorInInnerViewCoords.X / a.oldPageScaleFactor,
		Y: visual.Size().Height * a.anchorInInnerViewCoords.Y / a.oldPageScaleFactor,
	}
	anchorPoint := innerViewRect.Origin().Add(anchorOffset)

	node := findNonEmptyAnchorNode(anchorPoint, innerViewRect, hit)
	if node == nil {
		return
	}
	bounds, _ := node.BoundingBox()

	a.anchorNode = node
	a.anchorNodeBounds = bounds
	inNode := anchorPoint.Sub(bounds.Origin())
	a.anchorInNodeCoords = geom.Point{X: inNode.X / bounds.Width, Y: inNode.Y / bounds.Height}
}

func findNonEmptyAnchorNode(p geom.Point, viewRect geom.Rect, hit HitTester) Node {
	if hit == nil {
		return nil
	}
	point := p.Floor()
	node := hit.HitTest(point)
	if node == nil {
		return nil
	}

	var nodeArea float64
	if box, ok := node.BoundingBox(); ok {
		nodeArea = box.Size().Area()
	}
	if nodeArea > maxAnchorNodeAreaFactor*viewRect.Size().Area() {
		offset := geom.Vector{
			X: math.Floor(viewRect.Width * anchorRelativeEpsilon),
			Y: math.Floor(viewRect.Height * anchorRelativeEpsilon),
		}
		node = hit.HitTest(point.Add(offset))
	}

	for node != nil {
		if box, ok := node.BoundingBox(); ok && !box.IsEmpty() {
			return node
		}
		node = node.ParentNode()
	}
	return nil
}

// Restore repositions the viewports. It must be called exactly once, after
// the geometry change and the layout that follows it.
func (a *RotationViewportAnchor) Restore() {
	lifecycle.DCheck(!a.restored, "rotation anchor restored twice")
	a.restored = true

	final := a.constraints.FinalConstraints()
	newScale := a.oldPageScaleFactor / a.oldMinimumPageScaleFactor * final.MinimumScale
	newScale = final.ClampToConstraints(newScale)

	innerSize := a.root.Visual.Size().Scale(1 / newScale)
	layoutOrigin, visualOrigin := a.computeOrigins(innerSize)

	a.logger.Debug("restoring rotation anchor",
		zap.Float64("scale", newScale),
		zap.Float64("layout_x", layoutOrigin.X), zap.Float64("layout_y", layoutOrigin.Y),
		zap.Bool("anchored_to_node", a.anchorNode != nil))

	// Scale before location: setting the scale clamps the location.
	a.root.Layout.SetScrollOffset(geom.Vector{X: layoutOrigin.X, Y: layoutOrigin.Y})
	a.root.Visual.SetScale(newScale)
	a.root.Visual.SetLocation(visualOrigin)
}

func (a *RotationViewportAnchor) computeOrigins(innerSize geom.Size) (layoutOrigin, visualOrigin geom.Point) {
	outerSize := a.root.Layout.VisibleContentRect().Size()

	absVisualOffset := a.normalizedVisualViewportOffset.Scale(outerSize.Width, outerSize.Height)

	innerOrigin := a.innerOrigin(innerSize)
	outerOrigin := geom.Point{X: innerOrigin.X - absVisualOffset.X, Y: innerOrigin.Y - absVisualOffset.Y}

	outerRect := geom.RectFromPointSize(outerOrigin.Floor(), outerSize)
	innerRect := geom.RectFromPointSize(innerOrigin, innerSize)

	outerRect = moveToEncloseRect(outerRect, innerRect)
	clamped := a.root.Layout.ClampScrollOffset(geom.Vector{X: outerRect.X, Y: outerRect.Y})
	outerRect = outerRect.WithOrigin(geom.Point{X: clamped.X, Y: clamped.Y})
	innerRect = moveIntoRect(innerRect, outerRect)

	layoutOrigin = outerRect.Origin().Floor()
	visualOrigin = geom.Point{X: innerRect.X - outerRect.X, Y: innerRect.Y - outerRect.Y}
	return layoutOrigin, visualOrigin
}

func (a *RotationViewportAnchor) innerOrigin(innerSize geom.Size) geom.Point {
	if a.anchorNode == nil || !a.anchorNode.IsConnected() {
		return a.visualViewportInDocument
	}
	current, ok := a.anchorNode.BoundingBox()
	if !ok {
		return a.visualViewportInDocument
	}
	if current == a.anchorNodeBounds {
		return a.visualViewportInDocument
	}

	inLayout := a.root.RootContentsToLayoutViewportContents(current)
	anchorPoint := inLayout.Origin().Add(geom.Vector{
		X: inLayout.Width * a.anchorInNodeCoords.X,
		Y: inLayout.Height * a.anchorInNodeCoords.Y,
	})
	return anchorPoint.Add(geom.Vector{
		X: -innerSize.Width * a.anchorInInnerViewCoords.X,
		Y: -innerSize.Height * a.anchorInInnerViewCoords.Y,
	})
}

// moveToEncloseRect moves outer as little as possible so it contains inner.
func moveToEncloseRect(outer, inner geom.Rect) geom.Rect {
	minimum := geom.Point{X: inner.Right() - outer.Width, Y: inner.Bottom() - outer.Height}.Ceil()
	maximum := inner.Origin().Floor()
	return outer.WithOrigin(outer.Origin().Max(minimum).Min(maximum))
}

// moveIntoRect moves inner as little as possible to lie inside outer. When
// inner is larger, its origin is pinned to outer's origin.
func moveIntoRect(inner, outer geom.Rect) geom.Rect {
	minimum := outer.Origin()
	maximum := geom.Point{X: outer.Right() - inner.Width, Y: outer.Bottom() - inner.Height}
	return inner.WithOrigin(inner.Origin().Min(maximum).Max(minimum))
}
