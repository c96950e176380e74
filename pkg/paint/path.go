package paint

import (
	"github.com/fogleman/gg"

	"framecore/pkg/geom"
)

type pathVerb int

const (
	verbMove pathVerb = iota
	verbLine
	verbQuad
	verbCubic
	verbClose
)

type pathOp struct {
	verb pathVerb
	pts  [3]geom.Point
}

// Path is a recorded sequence of drawing commands that can be replayed
// onto any context.
type Path struct {
	ops    []pathOp
	bounds geom.Rect
	empty  bool
}

// NewPath returns an empty path.
func NewPath() *Path { return &Path{empty: true} }

func (p *Path) MoveTo(x, y float64) *Path {
	return p.add(verbMove, geom.Point{X: x, Y: y})
}

func (p *Path) LineTo(x, y float64) *Path {
	return p.add(verbLine, geom.Point{X: x, Y: y})
}

func (p *Path) QuadraticTo(x1, y1, x2, y2 float64) *Path {
	return p.add(verbQuad, geom.Point{X: x1, Y: y1}, geom.Point{X: x2, Y: y2})
}

func (p *Path) CubicTo(x1, y1, x2, y2, x3, y3 float64) *Path {
	return p.add(verbCubic, geom.Point{X: x1, Y: y1}, geom.Point{X: x2, Y: y2}, geom.Point{X: x3, Y: y3})
}

func (p *Path) Close() *Path {
	p.ops = append(p.ops, pathOp{verb: verbClose})
	return p
}

// AddRect appends a closed rectangle.
func (p *Path) AddRect(r geom.Rect) *Path {
	return p.MoveTo(r.X, r.Y).LineTo(r.Right(), r.Y).LineTo(r.Right(), r.Bottom()).LineTo(r.X, r.Bottom()).Close()
}

// Bounds is the bounding box of every point on the path, control points
// included.
func (p *Path) Bounds() geom.Rect { return p.bounds }

func (p *Path) add(verb pathVerb, pts ...geom.Point) *Path {
	op := pathOp{verb: verb}
	copy(op.pts[:], pts)
	p.ops = append(p.ops, op)
	for _, pt := range pts {
		p.extend(pt)
	}
	return p
}

func (p *Path) extend(pt geom.Point) {
	if p.empty {
		p.bounds = geom.Rect{X: pt.X, Y: pt.Y}
		p.empty = false
		return
	}
	minPt := p.bounds.Origin().Min(pt)
	maxPt := p.bounds.BottomRight().Max(pt)
	p.bounds = geom.Rect{X: minPt.X, Y: minPt.Y, Width: maxPt.X - minPt.X, Height: maxPt.Y - minPt.Y}
}

func (p *Path) replay(dc *gg.Context) {
	dc.NewSubPath()
	for _, op := range p.ops {
		switch op.verb {
		case verbMove:
			dc.MoveTo(op.pts[0].X, op.pts[0].Y)
		case verbLine:
			dc.LineTo(op.pts[0].X, op.pts[0].Y)
		case verbQuad:
			dc.QuadraticTo(op.pts[0].X, op.pts[0].Y, op.pts[1].X, op.pts[1].Y)
		case verbCubic:
			dc.CubicTo(op.pts[0].X, op.pts[0].Y, op.pts[1].X, op.pts[1].Y, op.pts[2].X, op.pts[2].Y)
		case verbClose:
			dc.ClosePath()
		}
	}
}
