package frame

import "framecore/pkg/lifecycle"

// Document is the per-frame container of the lifecycle state and of the
// collaborators the frame view drives. Collaborators are optional; a
// document without a layout view has nothing to lay out or paint.
type Document struct {
	url    string
	frame  *Frame
	active bool

	lifecycle *lifecycle.Lifecycle

	styleEngine    StyleEngine
	layoutView     LayoutView
	script         ScriptController
	axCache        AXObjectCache
	scrollTimeline ScrollTimelineValidator

	resizeObservers       *ResizeObserverController
	intersectionObservers *IntersectionObserverController
}

// DocumentOption configures a Document.
type DocumentOption func(*Document)

func WithURL(url string) DocumentOption {
	return func(d *Document) { d.url = url }
}

func WithStyleEngine(se StyleEngine) DocumentOption {
	return func(d *Document) { d.styleEngine = se }
}

func WithLayoutView(lv LayoutView) DocumentOption {
	return func(d *Document) { d.layoutView = lv }
}

func WithScriptController(sc ScriptController) DocumentOption {
	return func(d *Document) { d.script = sc }
}

func WithAXObjectCache(ax AXObjectCache) DocumentOption {
	return func(d *Document) { d.axCache = ax }
}

func WithScrollTimelineValidator(v ScrollTimelineValidator) DocumentOption {
	return func(d *Document) { d.scrollTimeline = v }
}

// NewDocument returns an inactive document in the Uninitialized state.
func NewDocument(opts ...DocumentOption) *Document {
	d := &Document{
		lifecycle:             lifecycle.New(),
		resizeObservers:       NewResizeObserverController(),
		intersectionObservers: NewIntersectionObserverController(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Document) URL() string                     { return d.url }
func (d *Document) Frame() *Frame                   { return d.frame }
func (d *Document) Lifecycle() *lifecycle.Lifecycle { return d.lifecycle }
func (d *Document) LayoutView() LayoutView          { return d.layoutView }
func (d *Document) ScriptController() ScriptController {
	return d.script
}

func (d *Document) ResizeObserverController() *ResizeObserverController {
	return d.resizeObservers
}

func (d *Document) IntersectionObserverController() *IntersectionObserverController {
	return d.intersectionObservers
}

// IsActive reports whether the document is attached and not shutting down.
func (d *Document) IsActive() bool { return d.active }

// SetActive activates or deactivates the document. A first activation
// moves the lifecycle to VisualUpdatePending.
func (d *Document) SetActive(active bool) {
	d.active = active
	if active && d.lifecycle.State() == lifecycle.Uninitialized {
		d.lifecycle.AdvanceTo(lifecycle.VisualUpdatePending)
	}
}

// UpdateStyleAndLayoutTree runs style recalc if the document is not yet
// style clean.
func (d *Document) UpdateStyleAndLayoutTree() {
	if d.lifecycle.State() >= lifecycle.StyleClean {
		return
	}
	d.lifecycle.AdvanceTo(lifecycle.InStyleRecalc)
	if d.styleEngine != nil && d.styleEngine.NeedsStyleRecalc() {
		d.styleEngine.RecalcStyle()
	}
	d.lifecycle.AdvanceTo(lifecycle.StyleClean)
}
