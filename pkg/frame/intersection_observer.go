package frame

import (
	"sort"

	"framecore/pkg/geom"
)

// IntersectionTarget is an element whose visibility can be observed.
type IntersectionTarget interface {
	// TargetRect is the element's box in document coordinates.
	TargetRect() geom.Rect
}

// IntersectionObserverEntry describes one threshold crossing.
type IntersectionObserverEntry struct {
	Target            IntersectionTarget
	BoundingRect      geom.Rect
	IntersectionRect  geom.Rect
	RootBounds        geom.Rect
	IntersectionRatio float64
	IsIntersecting    bool
}

type IntersectionObserverCallback func(entries []IntersectionObserverEntry, o *IntersectionObserver)

type intersectionObservation struct {
	target             IntersectionTarget
	lastThresholdIndex int
}

// IntersectionObserver reports when targets cross visibility thresholds
// relative to the frame viewport.
type IntersectionObserver struct {
	controller   *IntersectionObserverController
	callback     IntersectionObserverCallback
	thresholds   []float64
	observations []*intersectionObservation
	pending      []IntersectionObserverEntry
}

func (o *IntersectionObserver) Thresholds() []float64 { return o.thresholds }

// Observe starts watching t. The first computation always reports.
func (o *IntersectionObserver) Observe(t IntersectionTarget) {
	for _, io := range o.observations {
		if io.target == t {
			return
		}
	}
	o.observations = append(o.observations, &intersectionObservation{target: t, lastThresholdIndex: -1})
	o.controller.changed()
}

func (o *IntersectionObserver) Unobserve(t IntersectionTarget) {
	for i, io := range o.observations {
		if io.target == t {
			o.observations = append(o.observations[:i], o.observations[i+1:]...)
			return
		}
	}
}

func (o *IntersectionObserver) Disconnect() {
	o.observations = nil
	o.pending = nil
	o.controller.remove(o)
}

// thresholdIndex is the number of thresholds at or below ratio, or zero
// when not intersecting.
func (o *IntersectionObserver) thresholdIndex(ratio float64, intersecting bool) int {
	if !intersecting {
		return 0
	}
	return sort.Search(len(o.thresholds), func(i int) bool { return o.thresholds[i] > ratio })
}

func (o *IntersectionObserver) compute(root geom.Rect, displayLocked bool) {
	for _, io := range o.observations {
		box := io.target.TargetRect()
		entry := IntersectionObserverEntry{Target: io.target, BoundingRect: box, RootBounds: root}
		if !displayLocked {
			entry.IntersectionRect, entry.IntersectionRatio, entry.IsIntersecting = intersect(box, root)
		}
		idx := o.thresholdIndex(entry.IntersectionRatio, entry.IsIntersecting)
		if idx == io.lastThresholdIndex {
			continue
		}
		io.lastThresholdIndex = idx
		o.pending = append(o.pending, entry)
	}
}

// intersect treats a zero-area box lying inside root as fully visible.
func intersect(box, root geom.Rect) (geom.Rect, float64, bool) {
	if box.IsEmpty() {
		if root.Contains(box.Origin()) {
			return geom.Rect{X: box.X, Y: box.Y}, 1, true
		}
		return geom.Rect{}, 0, false
	}
	isect := box.Intersect(root)
	if isect.IsEmpty() {
		return geom.Rect{}, 0, false
	}
	return isect, isect.Size().Area() / box.Size().Area(), true
}

// IntersectionObserverController owns a document's intersection observers.
type IntersectionObserverController struct {
	observers []*IntersectionObserver
	onChange  func()
}

func NewIntersectionObserverController() *IntersectionObserverController {
	return &IntersectionObserverController{}
}

// NewObserver registers an observer. Thresholds are sorted; an empty list
// means a single threshold of zero.
func (c *IntersectionObserverController) NewObserver(cb IntersectionObserverCallback, thresholds ...float64) *IntersectionObserver {
	if len(thresholds) == 0 {
		thresholds = []float64{0}
	}
	ts := append([]float64(nil), thresholds...)
	sort.Float64s(ts)
	o := &IntersectionObserver{controller: c, callback: cb, thresholds: ts}
	c.observers = append(c.observers, o)
	return o
}

func (c *IntersectionObserverController) remove(o *IntersectionObserver) {
	for i, obs := range c.observers {
		if obs == o {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			return
		}
	}
}

func (c *IntersectionObserverController) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *IntersectionObserverController) HasObservers() bool { return len(c.observers) > 0 }

// ComputeIntersections measures every observation against root. A display
// locked frame reports every target as not intersecting.
func (c *IntersectionObserverController) ComputeIntersections(root geom.Rect, displayLocked bool) {
	for _, o := range c.observers {
		o.compute(root, displayLocked)
	}
}

// DeliverNotifications runs callbacks for pending entries and reports
// whether any ran.
func (c *IntersectionObserverController) DeliverNotifications() bool {
	delivered := false
	for _, o := range append([]*IntersectionObserver(nil), c.observers...) {
		if len(o.pending) == 0 {
			continue
		}
		entries := o.pending
		o.pending = nil
		o.callback(entries, o)
		delivered = true
	}
	return delivered
}
