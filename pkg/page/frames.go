package page

import (
	"fmt"

	"go.uber.org/zap"

	"framecore/pkg/dom"
	"framecore/pkg/frame"
	"framecore/pkg/geom"
	"framecore/pkg/js"
)

// frameState ties a local frame to its document and script engine. owner
// is the <iframe> element the frame was created for, nil for the main
// frame.
type frameState struct {
	frame  *frame.Frame
	doc    *dom.Document
	engine *js.Engine
	owner  *dom.Node
}

type remoteFrame struct {
	frame *frame.Frame
	owner *dom.Node
}

// loadFrame parses markup and creates a local frame showing it. The frame
// is not attached to a parent and its scripts have not run.
func (p *Page) loadFrame(name, origin string, rect geom.Rect, markup string) (*frameState, error) {
	doc, err := dom.Parse(markup,
		dom.WithImageCache(p.images),
		dom.WithLogger(p.logger.Named("dom").With(zap.String("frame", name))))
	if err != nil {
		return nil, fmt.Errorf("frame %q: %w", name, err)
	}
	engine := js.New(
		js.WithLogger(p.logger.Named("js").With(zap.String("frame", name))),
		js.WithTimeOrigin(p.now()))
	fdoc := frame.NewDocument(
		frame.WithURL(origin),
		frame.WithLayoutView(doc),
		frame.WithScriptController(engine))
	engine.BindFrameDocument(fdoc)

	f := frame.NewLocalFrame(p, name, origin, rect, fdoc)
	doc.Attach(f.View())
	engine.SetAnimationScheduler(func() { f.View().ScheduleAnimationAfter(0) })
	return &frameState{frame: f, doc: doc, engine: engine}, nil
}

func (p *Page) runScripts(fs *frameState) {
	if err := fs.engine.Execute(fs.doc); err != nil {
		p.logger.Warn("script error", zap.String("frame", fs.frame.Name()), zap.Error(err))
	}
}

// buildChildFrames creates frames for the iframes of every local frame,
// level by level. Each level needs a layout so the iframes have boxes.
func (p *Page) buildChildFrames() {
	level := []*frameState{p.frames[0]}
	for len(level) > 0 {
		p.MainFrame().View().UpdateLifecycleToLayoutClean()
		var next []*frameState
		for _, parent := range level {
			next = append(next, p.attachChildFrames(parent)...)
		}
		level = next
	}
}

// attachChildFrames creates a frame for each iframe of parent. An iframe
// with data-remote becomes a remote frame; data-origin sets the child's
// origin, which otherwise is the parent's. Local children show srcdoc.
func (p *Page) attachChildFrames(parent *frameState) []*frameState {
	var added []*frameState
	for i, owner := range parent.doc.FrameOwners() {
		name := owner.ID()
		if name == "" {
			name = fmt.Sprintf("%s/%d", parent.frame.Name(), i)
		}
		origin := parent.frame.Origin()
		if o, ok := owner.GetAttribute("data-origin"); ok && o != "" {
			origin = o
		}
		rect, _ := owner.BoundingBox()

		if _, remote := owner.GetAttribute("data-remote"); remote {
			rf := frame.NewRemoteFrame(name, origin, rect)
			parent.frame.AppendChild(rf)
			p.remotes = append(p.remotes, &remoteFrame{frame: rf, owner: owner})
			p.logger.Debug("remote frame attached", zap.String("frame", name), zap.String("origin", origin))
			continue
		}

		srcdoc, _ := owner.GetAttribute("srcdoc")
		child, err := p.loadFrame(name, origin, rect, srcdoc)
		if err != nil {
			p.logger.Warn("child frame not loaded", zap.String("frame", name), zap.Error(err))
			continue
		}
		child.owner = owner
		parent.frame.AppendChild(child.frame)
		p.frames = append(p.frames, child)
		p.updateFrameVisibility(child.frame)
		p.runScripts(child)
		added = append(added, child)
		p.logger.Debug("local frame attached", zap.String("frame", name), zap.String("origin", origin))
	}
	return added
}

// updateChildFrames moves child frames to their iframe boxes and updates
// their throttling: a child outside its parent's visible area is hidden.
func (p *Page) updateChildFrames() {
	for _, fs := range p.frames[1:] {
		if !fs.frame.IsAttached() {
			continue
		}
		if box, ok := fs.owner.BoundingBox(); ok && box != fs.frame.FrameRect() {
			fs.frame.SetFrameRect(box)
		}
		p.updateFrameVisibility(fs.frame)
	}
	for _, r := range p.remotes {
		if !r.frame.IsAttached() {
			continue
		}
		if box, ok := r.owner.BoundingBox(); ok && box != r.frame.FrameRect() {
			r.frame.SetFrameRect(box)
		}
		p.updateFrameVisibility(r.frame)
	}
}

func (p *Page) updateFrameVisibility(f *frame.Frame) {
	pv := f.Parent().View()
	if pv == nil {
		return
	}
	hidden := f.FrameRect().Intersect(pv.LayoutViewport().VisibleContentRect()).IsEmpty()
	if rv := f.RemoteView(); rv != nil {
		rv.UpdateRenderThrottlingStatus(hidden, pv.CanThrottleRendering())
		return
	}
	v := f.View()
	if hidden != v.IsHiddenForThrottling() {
		v.UpdateRenderThrottlingStatus(hidden, v.IsSubtreeThrottled(), v.IsDisplayLocked(), true)
	}
}
