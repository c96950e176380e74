// Package page embeds a frame tree: it owns the main frame, the visual
// viewport, the page scale constraints and the dark mode filter, and it
// drives lifecycle updates from an animation frame loop.
//
// A Page is not safe for concurrent use. Drive it from one goroutine; only
// the Animator and the Compositor may be touched from others.
package page

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"framecore/pkg/config"
	"framecore/pkg/darkmode"
	"framecore/pkg/dom"
	"framecore/pkg/frame"
	"framecore/pkg/geom"
	"framecore/pkg/images"
	"framecore/pkg/js"
	"framecore/pkg/overlay"
	"framecore/pkg/pagescale"
	"framecore/pkg/paint"
	"framecore/pkg/viewport"
)

// legacyFallbackWidth is the layout width of viewport meta tags that do not
// declare one.
const legacyFallbackWidth = 980

// Page is the embedder of one frame tree.
type Page struct {
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time
	origin string

	images     *images.Cache
	animator   *Animator
	compositor *Compositor

	visual      *viewport.VisualViewport
	root        *viewport.RootFrameViewport
	constraints *pagescale.ConstraintsSet
	darkMode    *darkmode.Filter

	// frames holds every local frame in tree order; frames[0] is the main
	// frame.
	frames   []*frameState
	remotes  []*remoteFrame
	overlays []*overlay.FrameOverlay
	closed   bool
}

var _ frame.Host = (*Page)(nil)

// Option configures a Page.
type Option func(*Page)

// WithConfig sets the configuration. The default is config.NewDefaultConfig.
func WithConfig(cfg *config.Config) Option {
	return func(p *Page) { p.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Page) { p.logger = l }
}

// WithOrigin sets the main frame's origin.
func WithOrigin(origin string) Option {
	return func(p *Page) { p.origin = origin }
}

// WithClock replaces time.Now for scheduling and script time origins.
func WithClock(now func() time.Time) Option {
	return func(p *Page) { p.now = now }
}

// WithImageCache shares an image cache between pages.
func WithImageCache(c *images.Cache) Option {
	return func(p *Page) { p.images = c }
}

// WithCommitHandler is called with every artifact the page commits.
func WithCommitHandler(fn func(*paint.Artifact)) Option {
	return func(p *Page) { p.compositor.onCommit = fn }
}

// New loads markup into a main frame of the given size. Child frames are
// created for its iframes, every frame's scripts run, and the first
// animation frame is scheduled. Script errors are logged, not returned.
func New(markup string, size geom.Size, opts ...Option) (*Page, error) {
	p := &Page{
		logger:     zap.L().Named("page"),
		now:        time.Now,
		origin:     "null",
		compositor: &Compositor{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cfg == nil {
		p.cfg = config.NewDefaultConfig()
	}
	if p.images == nil {
		p.images = images.NewCache()
	}
	p.animator = newAnimator(p.now)

	vc := p.cfg.Viewport
	p.visual = viewport.NewVisualViewport(size)
	p.constraints = pagescale.NewConstraintsSet(
		pagescale.WithShrinksViewportContentToFit(vc.ShrinksViewportContentToFit),
		pagescale.WithLogger(p.logger.Named("pagescale")),
	)
	p.constraints.SetDefaultConstraints(pagescale.MakeConstraints(pagescale.Unset, vc.DefaultMinimumScale, vc.DefaultMaximumScale))
	p.constraints.DidChangeInitialContainingBlockSize(size)
	p.setDarkModeFilter(p.cfg.DarkModeSettings())

	main, err := p.loadFrame("main", p.origin, geom.Rect{Width: size.Width, Height: size.Height}, markup)
	if err != nil {
		return nil, err
	}
	p.frames = append(p.frames, main)
	p.root = viewport.NewRootFrameViewport(main.frame.View().LayoutViewport(), p.visual)

	if meta := main.doc.ViewportMeta; meta != nil {
		p.UpdatePageDefinedViewportConstraints(*meta)
	} else {
		p.RefreshPageScaleFactor()
	}
	p.runScripts(main)
	p.buildChildFrames()

	main.frame.View().ScheduleAnimationAfter(0)
	p.logger.Info("page loaded",
		zap.String("origin", p.origin),
		zap.Float64("width", size.Width), zap.Float64("height", size.Height),
		zap.Int("local_frames", len(p.frames)), zap.Int("remote_frames", len(p.remotes)))
	return p, nil
}

// MainFrame returns the root of the frame tree.
func (p *Page) MainFrame() *frame.Frame { return p.frames[0].frame }

// Document returns the main frame's document.
func (p *Page) Document() *dom.Document { return p.frames[0].doc }

// Engine returns the main frame's script engine.
func (p *Page) Engine() *js.Engine { return p.frames[0].engine }

func (p *Page) VisualViewport() *viewport.VisualViewport       { return p.visual }
func (p *Page) RootFrameViewport() *viewport.RootFrameViewport { return p.root }
func (p *Page) Constraints() *pagescale.ConstraintsSet         { return p.constraints }
func (p *Page) Animator() *Animator                            { return p.animator }
func (p *Page) Config() *config.Config                         { return p.cfg }

// LastArtifact is the most recently committed paint result, or nil.
func (p *Page) LastArtifact() *paint.Artifact { return p.compositor.LastArtifact() }

// Commits is the number of artifacts committed so far.
func (p *Page) Commits() int { return p.compositor.Commits() }

// Frame finds a local or remote frame by name.
func (p *Page) Frame(name string) *frame.Frame {
	for _, fs := range p.frames {
		if fs.frame.Name() == name {
			return fs.frame
		}
	}
	for _, r := range p.remotes {
		if r.frame.Name() == name {
			return r.frame
		}
	}
	return nil
}

// FrameEngine returns the script engine of the named local frame, or nil.
func (p *Page) FrameEngine(name string) *js.Engine {
	for _, fs := range p.frames {
		if fs.frame.Name() == name {
			return fs.engine
		}
	}
	return nil
}

// BeginFrame runs an animation frame if one is due at now. It reports
// whether a frame ran.
func (p *Page) BeginFrame(now time.Time) bool {
	if p.closed || !p.animator.take(now) {
		return false
	}
	p.ServiceScriptedAnimations(now)
	return true
}

// ServiceScriptedAnimations runs one animation frame. Every unthrottled
// frame runs its script animation callbacks and events and steps its
// animated images. The overlays animate next, then the main frame runs a
// full lifecycle update. It reports whether the update reached PaintClean.
func (p *Page) ServiceScriptedAnimations(now time.Time) bool {
	p.updateChildFrames()
	for _, fs := range p.frames {
		v := fs.frame.View()
		if !fs.frame.IsAttached() || v.CanThrottleRendering() {
			continue
		}
		fs.engine.ServiceScriptedAnimations(now)

		changed, next, running := fs.doc.AnimateImages(now)
		if changed {
			v.SetNeedsPaint()
		}
		if running {
			v.ScheduleAnimationAfter(next.Sub(now))
		}
	}
	for _, o := range p.overlays {
		o.ServiceScriptedAnimations(now)
	}

	view := p.MainFrame().View()
	if p.visual.NeedsRepaint() {
		p.visual.ClearNeedsRepaint()
		view.SetVisualViewportOrOverlayNeedsRepaint()
	}
	ok := view.UpdateAllLifecyclePhases()
	if !ok {
		p.logger.Debug("lifecycle update did not reach paint clean")
	}
	return ok
}

// Run services animation frames on a ticker until ctx is done.
func (p *Page) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.BeginFrame(p.now())
		}
	}
}

// Resize changes the main frame and visual viewport size, as on a device
// rotation. The content under the configured anchor point stays in the
// same relative position.
func (p *Page) Resize(size geom.Size) {
	if size == p.visual.Size() {
		return
	}
	main := p.MainFrame()
	view := main.View()
	view.UpdateLifecycleToLayoutClean()

	anchorCoords := geom.Point{X: p.cfg.Viewport.AnchorX, Y: p.cfg.Viewport.AnchorY}
	anchor := viewport.NewRotationViewportAnchor(p.root, p.Document(), anchorCoords, p.constraints)

	p.visual.SetSize(size)
	main.SetFrameRect(geom.Rect{Width: size.Width, Height: size.Height})
	p.constraints.DidChangeInitialContainingBlockSize(size)
	if meta := p.Document().ViewportMeta; meta != nil {
		p.constraints.UpdatePageDefinedConstraints(*meta, pagescale.Fixed(legacyFallbackWidth))
	}
	view.UpdateLifecycleToLayoutClean()
	p.constraints.ComputeFinalConstraints()
	anchor.Restore()

	view.SetVisualViewportOrOverlayNeedsRepaint()
	p.logger.Info("page resized",
		zap.Float64("width", size.Width), zap.Float64("height", size.Height),
		zap.Float64("page_scale", p.visual.Scale()))
}

// UpdatePageDefinedViewportConstraints applies the page's viewport
// declaration and resets the page scale to its initial scale.
func (p *Page) UpdatePageDefinedViewportConstraints(desc pagescale.ViewportDescription) {
	p.constraints.UpdatePageDefinedConstraints(desc, pagescale.Fixed(legacyFallbackWidth))
	p.constraints.SetNeedsReset(true)
	p.RefreshPageScaleFactor()
}

// RefreshPageScaleFactor recomputes the final constraints and clamps the
// page scale into them. A pending reset moves the scale to the initial
// scale instead.
func (p *Page) RefreshPageScaleFactor() {
	p.constraints.ComputeFinalConstraints()
	final := p.constraints.FinalConstraints()
	scale := p.visual.Scale()
	if p.constraints.NeedsReset() {
		scale = final.InitialScale
		p.constraints.SetNeedsReset(false)
	}
	p.visual.SetScale(final.ClampToConstraints(scale))
}

// SetDarkModeSettings replaces the dark mode filter and repaints.
func (p *Page) SetDarkModeSettings(s darkmode.Settings) {
	p.setDarkModeFilter(s)
	p.logger.Info("dark mode settings changed",
		zap.Stringer("algorithm", s.Mode),
		zap.Stringer("image_policy", s.ImagePolicy))
	if len(p.frames) > 0 {
		p.MainFrame().View().SetVisualViewportOrOverlayNeedsRepaint()
	}
}

func (p *Page) setDarkModeFilter(s darkmode.Settings) {
	p.darkMode = darkmode.NewFilter(s, darkmode.WithLogger(p.logger.Named("darkmode")))
}

// AddOverlay creates an overlay above the main frame. The caller owns it
// and must release it with RemoveOverlay.
func (p *Page) AddOverlay(d overlay.Delegate) *overlay.FrameOverlay {
	o := overlay.New(p.MainFrame(), p.visual, d, overlay.WithLogger(p.logger.Named("overlay")))
	p.overlays = append(p.overlays, o)
	return o
}

// RemoveOverlay destroys o.
func (p *Page) RemoveOverlay(o *overlay.FrameOverlay) {
	for i, q := range p.overlays {
		if q == o {
			p.overlays = append(p.overlays[:i], p.overlays[i+1:]...)
			o.Destroy()
			return
		}
	}
}

// Close destroys the overlays and detaches the frame tree.
func (p *Page) Close() {
	if p.closed {
		return
	}
	p.closed = true
	for _, o := range p.overlays {
		o.Destroy()
	}
	p.overlays = nil
	p.MainFrame().Detach()
	p.logger.Debug("page closed")
}

func (p *Page) String() string {
	return fmt.Sprintf("page(%s, %d local, %d remote)", p.origin, len(p.frames), len(p.remotes))
}
