package dom

import (
	"image/color"
	"time"

	"go.uber.org/zap"

	"framecore/pkg/darkmode"
	"framecore/pkg/geom"
	"framecore/pkg/images"
	"framecore/pkg/paint"
)

var (
	canvasColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	textColor   = color.NRGBA{A: 255}
)

// Paint draws the document in document coordinates. Fixed elements are
// shifted by the scroll offset so they stay put in the viewport; sticky
// elements are pushed down to their top offset once scrolled past it.
func (d *Document) Paint(gc *paint.GraphicsContext) {
	gc.FillRect(geom.Rect{Width: d.size.Width, Height: d.size.Height}, paint.NewFlags(d.canvasBackground()), darkmode.RoleBackground)
	for _, c := range d.Root.Children {
		d.paintNode(gc, c, textColor)
	}
}

// canvasBackground propagates the root or body background to the canvas.
func (d *Document) canvasBackground() color.NRGBA {
	for _, tag := range []string{"html", "body"} {
		for _, n := range d.ElementsByTagName(tag) {
			if n.style.HasBackground {
				return n.style.Background
			}
		}
	}
	return canvasColor
}

func (d *Document) constrainedOffset(n *Node) geom.Vector {
	switch n.style.Position {
	case PositionFixed:
		return d.ScrollOffset()
	case PositionSticky:
		top := d.ScrollOffset().Y + n.style.Top
		if n.box.Y < top {
			return geom.Vector{Y: top - n.box.Y}
		}
	}
	return geom.Vector{}
}

func (d *Document) paintNode(gc *paint.GraphicsContext, n *Node, fg color.NRGBA) {
	if !n.hasBox {
		return
	}
	if n.Type == TextNode {
		for i, line := range n.lines {
			gc.DrawText(line, n.box.X, n.box.Y+textAscent+float64(i*lineHeight), paint.NewFlags(fg), darkmode.RoleForeground)
		}
		return
	}

	st := n.style
	if st.HasColor {
		fg = st.Color
	}
	if off := d.constrainedOffset(n); off != (geom.Vector{}) {
		gc.Save()
		gc.Translate(off.X, off.Y)
		defer gc.Restore()
	}

	box := n.box
	switch {
	case st.Gradient != nil:
		gc.FillRectWithGradient(box, st.Gradient, darkmode.RoleBackground)
	case st.HasBackground && n.TagName != "html" && n.TagName != "body":
		gc.FillRect(box, paint.NewFlags(st.Background), darkmode.RoleBackground)
	}

	switch n.TagName {
	case "li":
		bullet := geom.Rect{X: box.X - 12, Y: box.Y + 6, Width: 5, Height: 5}
		gc.FillRect(bullet, paint.NewFlags(fg), darkmode.RoleListSymbol)
	case "svg":
		fill := fg
		if c, ok := paint.ParseColor(n.Attributes["fill"]); ok {
			fill = c
		}
		gc.FillRect(box, paint.NewFlags(fill), darkmode.RoleSVG)
		// Content inside the svg is part of the graphic.
		restore := gc.OverrideDarkModeRole(darkmode.RoleSVG)
		defer restore()
	case "img":
		d.paintImage(gc, n)
	case "iframe":
		// The child frame paints its own contents.
		return
	}

	for _, c := range n.Children {
		d.paintNode(gc, c, fg)
	}
}

func (d *Document) paintImage(gc *paint.GraphicsContext, n *Node) {
	src, ok := n.GetAttribute("src")
	if !ok || d.images == nil {
		return
	}
	img, err := d.images.Load(src)
	if err != nil {
		d.logger.Debug("skipping image", zap.String("src", src), zap.Error(err))
		return
	}
	d.paintedFrames[img] = img.CurrentFrameIndex()
	gc.DrawImage(img, geom.FromImageRect(img.Bounds()), n.box)
}

// AnimateImages moves every animated <img> forward to now. It reports
// whether some image now shows a different frame than was last painted,
// and the earliest time another frame is due. Images shared through the
// cache are stepped once.
func (d *Document) AnimateImages(now time.Time) (changed bool, next time.Time, running bool) {
	if d.images == nil {
		return false, time.Time{}, false
	}
	seen := map[*images.Image]bool{}
	for _, n := range d.ElementsByTagName("img") {
		src, ok := n.GetAttribute("src")
		if !ok {
			continue
		}
		img, err := d.images.Load(src)
		if err != nil || seen[img] {
			continue
		}
		seen[img] = true

		_, due, ok := img.Animate(now)
		if shown, painted := d.paintedFrames[img]; painted && shown != img.CurrentFrameIndex() {
			changed = true
		}
		if ok && (!running || due.Before(next)) {
			next, running = due, true
		}
	}
	return changed, next, running
}
