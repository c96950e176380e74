package paint

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"go.uber.org/zap"

	"framecore/pkg/darkmode"
	"framecore/pkg/geom"
)

// Image is a drawable bitmap that remembers the dark mode decision for each
// source rect it has been drawn from.
type Image interface {
	CurrentFrame() image.Image
	DarkModeClassification(src image.Rectangle) (darkmode.Classification, bool)
	SetDarkModeClassification(src image.Rectangle, c darkmode.Classification)
}

// GraphicsContext paints onto a gg context. Every draw call goes through
// the dark mode filter, if one is installed.
type GraphicsContext struct {
	dc     *gg.Context
	dark   *darkmode.Filter
	items  []DisplayItem
	logger *zap.Logger

	// gg's Pop keeps the current mask, so clips are scoped here.
	clip  *image.Alpha
	clips []*image.Alpha
}

// NewGraphicsContext returns a transparent width x height context. dark may
// be nil.
func NewGraphicsContext(width, height int, dark *darkmode.Filter) *GraphicsContext {
	return &GraphicsContext{
		dc:     gg.NewContext(width, height),
		dark:   dark,
		logger: zap.L().Named("paint"),
	}
}

func (gc *GraphicsContext) Width() int  { return gc.dc.Width() }
func (gc *GraphicsContext) Height() int { return gc.dc.Height() }

// DarkModeFilter returns the installed filter, or nil.
func (gc *GraphicsContext) DarkModeFilter() *darkmode.Filter { return gc.dark }

// Save pushes the transform and clip state.
func (gc *GraphicsContext) Save() {
	gc.dc.Push()
	gc.clips = append(gc.clips, gc.clip)
}

// Restore pops the state pushed by the matching Save.
func (gc *GraphicsContext) Restore() {
	gc.dc.Pop()
	n := len(gc.clips) - 1
	prev := gc.clips[n]
	gc.clips = gc.clips[:n]
	gc.setClip(prev)
}

// ClipRect intersects the clip with r in the current coordinates. The clip
// lasts until the enclosing Restore.
func (gc *GraphicsContext) ClipRect(r geom.Rect) {
	mask := image.NewAlpha(image.Rect(0, 0, gc.Width(), gc.Height()))
	b := gc.deviceRect(r).ToImageRect().Intersect(mask.Bounds())
	if !b.Empty() {
		var src image.Image = image.Opaque
		if gc.clip != nil {
			src = gc.clip
		}
		draw.Draw(mask, b, src, b.Min, draw.Src)
	}
	gc.setClip(mask)
}

func (gc *GraphicsContext) setClip(mask *image.Alpha) {
	gc.clip = mask
	if mask == nil {
		gc.dc.ResetClip()
		return
	}
	if err := gc.dc.SetMask(mask); err != nil {
		gc.logger.Warn("dropping clip", zap.Error(err))
	}
}

// OverrideDarkModeRole paints every call until restore as role. It is a
// no-op without a dark mode filter.
func (gc *GraphicsContext) OverrideDarkModeRole(role darkmode.Role) (restore func()) {
	if gc.dark == nil {
		return func() {}
	}
	return gc.dark.OverrideRole(role)
}

func (gc *GraphicsContext) Translate(dx, dy float64) { gc.dc.Translate(dx, dy) }

// ApplyTransform concatenates t onto the current transform.
func (gc *GraphicsContext) ApplyTransform(t geom.Transform) {
	if t.IsIdentity() {
		return
	}
	gc.dc.Translate(t.Translate.X, t.Translate.Y)
	gc.dc.Scale(t.Scale, t.Scale)
}

// Clear fills the whole surface with c as a background.
func (gc *GraphicsContext) Clear(c color.NRGBA) {
	f := gc.prepare(NewFlags(c), darkmode.RoleBackground)
	gc.dc.SetColor(f.Color())
	gc.dc.Clear()
	gc.record(ItemRect, geom.Rect{Width: float64(gc.Width()), Height: float64(gc.Height())}, f)
}

// FillRect fills r.
func (gc *GraphicsContext) FillRect(r geom.Rect, flags *Flags, role darkmode.Role) {
	if r.IsEmpty() {
		return
	}
	f := gc.prepare(flags, role)
	gc.setFill(f, r)
	gc.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	gc.dc.Fill()
	kind := ItemRect
	if f.HasShader() {
		kind = ItemGradient
	}
	gc.record(kind, r, f)
}

// FillRectWithGradient fills r with g.
func (gc *GraphicsContext) FillRectWithGradient(r geom.Rect, g *Gradient, role darkmode.Role) {
	gc.FillRect(r, NewGradientFlags(g), role)
}

// StrokeRect outlines r with flags.StrokeWidth.
func (gc *GraphicsContext) StrokeRect(r geom.Rect, flags *Flags, role darkmode.Role) {
	f := gc.prepare(flags, role)
	if f.HasShader() {
		gc.dc.SetStrokeStyle(f.Gradient().pattern(gc.dc, r, f.ColorFilter()))
	} else {
		gc.dc.SetColor(f.Color())
	}
	gc.dc.SetLineWidth(f.StrokeWidth)
	gc.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	gc.dc.Stroke()
	gc.record(ItemStroke, r, f)
}

// FillPath fills p.
func (gc *GraphicsContext) FillPath(p *Path, flags *Flags, role darkmode.Role) {
	f := gc.prepare(flags, role)
	gc.setFill(f, p.Bounds())
	p.replay(gc.dc)
	gc.dc.Fill()
	gc.record(ItemPath, p.Bounds(), f)
}

// DrawText draws s with its baseline at (x, y) in the built-in font.
func (gc *GraphicsContext) DrawText(s string, x, y float64, flags *Flags, role darkmode.Role) {
	f := gc.prepare(flags, role)
	gc.dc.SetColor(f.Color())
	gc.dc.DrawString(s, x, y)
	w, h := gc.dc.MeasureString(s)
	gc.record(ItemText, geom.Rect{X: x, Y: y - h, Width: w, Height: h}, f)
}

// DrawImage draws the src region of img's current frame scaled into dst.
// With dark mode on, the size heuristics run first; images they cannot
// decide are classified once per source rect and the result is cached on
// the image.
func (gc *GraphicsContext) DrawImage(img Image, src, dst geom.Rect) {
	frame := img.CurrentFrame()
	if frame == nil || dst.IsEmpty() {
		return
	}
	srcPx := src.ToImageRect().Intersect(frame.Bounds())
	if srcPx.Empty() {
		return
	}

	var filter darkmode.ColorFilter
	if gc.dark != nil && gc.dark.IsEnabled() {
		c := gc.dark.AnalyzeShouldApplyToImage(src, dst)
		if c == darkmode.NotClassified {
			if cached, ok := img.DarkModeClassification(srcPx); ok {
				c = cached
			} else {
				c = gc.dark.ClassifyImage(frame, srcPx)
				img.SetDarkModeClassification(srcPx, c)
				gc.logger.Debug("classified image",
					zap.Stringer("src", srcPx),
					zap.Stringer("classification", c))
			}
		}
		filter = gc.dark.FilterFor(c)
	}
	pixels := darkmode.ApplyColorFilter(frame, srcPx, filter)

	gc.dc.Push()
	gc.dc.Translate(dst.X, dst.Y)
	gc.dc.Scale(dst.Width/float64(srcPx.Dx()), dst.Height/float64(srcPx.Dy()))
	gc.dc.DrawImage(pixels, 0, 0)
	gc.dc.Pop()

	gc.items = append(gc.items, DisplayItem{Kind: ItemImage, Bounds: gc.deviceRect(dst), Filtered: filter != nil})
}

// Items returns the display items recorded so far.
func (gc *GraphicsContext) Items() []DisplayItem { return gc.items }

// Finish ends recording and returns the artifact.
func (gc *GraphicsContext) Finish() *Artifact {
	a := &Artifact{Image: gc.dc.Image(), Items: gc.items}
	gc.items = nil
	return a
}

// prepare returns the flags to paint with: flags itself, or a dark mode
// rewrite of a copy.
func (gc *GraphicsContext) prepare(flags *Flags, role darkmode.Role) *Flags {
	if gc.dark == nil || !gc.dark.IsEnabled() {
		return flags
	}
	f := flags.Clone()
	gc.dark.ApplyToFlagsIfNeeded(f, role)
	return f
}

func (gc *GraphicsContext) setFill(f *Flags, bounds geom.Rect) {
	if f.HasShader() {
		gc.dc.SetFillStyle(f.Gradient().pattern(gc.dc, bounds, f.ColorFilter()))
		return
	}
	gc.dc.SetColor(f.Color())
}

func (gc *GraphicsContext) record(kind ItemKind, r geom.Rect, f *Flags) {
	gc.items = append(gc.items, DisplayItem{
		Kind:     kind,
		Bounds:   gc.deviceRect(r),
		Color:    f.Color(),
		Filtered: f.ColorFilter() != nil,
	})
}

// deviceRect maps r through the current transform. Only scale and
// translation are ever applied, so two corners suffice.
func (gc *GraphicsContext) deviceRect(r geom.Rect) geom.Rect {
	x0, y0 := gc.dc.TransformPoint(r.X, r.Y)
	x1, y1 := gc.dc.TransformPoint(r.Right(), r.Bottom())
	return geom.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
