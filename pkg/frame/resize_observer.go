package frame

import (
	"math"

	"framecore/pkg/geom"
)

// DepthBottom is returned by GatherObservations when no observation is
// active deeper than the previous pass.
const DepthBottom = math.MaxInt

// ResizeObservationTarget is an element whose content box can be observed.
type ResizeObservationTarget interface {
	// TreeDepth is the element's depth in the DOM, root is 0.
	TreeDepth() int
	ContentSize() geom.Size
}

// ResizeObserverEntry reports a new content size to a callback.
type ResizeObserverEntry struct {
	Target      ResizeObservationTarget
	ContentSize geom.Size
}

type ResizeObserverCallback func(entries []ResizeObserverEntry, o *ResizeObserver)

type resizeObservation struct {
	target       ResizeObservationTarget
	lastReported geom.Size
}

func (ro *resizeObservation) outOfSync() bool {
	return ro.target.ContentSize() != ro.lastReported
}

// ResizeObserver watches a set of targets and reports size changes in
// batches.
type ResizeObserver struct {
	controller   *ResizeObserverController
	callback     ResizeObserverCallback
	observations []*resizeObservation
	active       []*resizeObservation
	skipped      bool
}

// Observe starts watching t. The last reported size starts at zero, so a
// target with a non-empty box is reported on the next delivery.
func (o *ResizeObserver) Observe(t ResizeObservationTarget) {
	for _, ro := range o.observations {
		if ro.target == t {
			return
		}
	}
	o.observations = append(o.observations, &resizeObservation{target: t})
}

func (o *ResizeObserver) Unobserve(t ResizeObservationTarget) {
	for i, ro := range o.observations {
		if ro.target == t {
			o.observations = append(o.observations[:i], o.observations[i+1:]...)
			return
		}
	}
}

// Disconnect stops all observations and detaches o from its controller.
func (o *ResizeObserver) Disconnect() {
	o.observations = nil
	o.active = nil
	o.skipped = false
	o.controller.remove(o)
}

func (o *ResizeObserver) gather(deeperThan int) int {
	minDepth := DepthBottom
	for _, ro := range o.observations {
		if !ro.outOfSync() {
			continue
		}
		if d := ro.target.TreeDepth(); d > deeperThan {
			o.active = append(o.active, ro)
			minDepth = min(minDepth, d)
		} else {
			o.skipped = true
		}
	}
	return minDepth
}

func (o *ResizeObserver) deliver() bool {
	if len(o.active) == 0 {
		return false
	}
	entries := make([]ResizeObserverEntry, 0, len(o.active))
	for _, ro := range o.active {
		size := ro.target.ContentSize()
		ro.lastReported = size
		entries = append(entries, ResizeObserverEntry{Target: ro.target, ContentSize: size})
	}
	o.active = nil
	o.callback(entries, o)
	return true
}

// ResizeObserverController owns a document's resize observers. Each gather
// pass only considers targets strictly deeper than those delivered by the
// previous pass, so a series of passes always terminates.
type ResizeObserverController struct {
	observers []*ResizeObserver

	minDepth  int
	passes    int
	loopLimit int

	loopLimitErrorDispatched bool
}

func NewResizeObserverController() *ResizeObserverController {
	return &ResizeObserverController{}
}

// NewObserver registers an observer delivering to cb.
func (c *ResizeObserverController) NewObserver(cb ResizeObserverCallback) *ResizeObserver {
	o := &ResizeObserver{controller: c, callback: cb}
	c.observers = append(c.observers, o)
	return o
}

func (c *ResizeObserverController) remove(o *ResizeObserver) {
	for i, obs := range c.observers {
		if obs == o {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			return
		}
	}
}

// SetLoopLimit caps the number of delivering passes per series. Zero means
// only the depth rule bounds the series.
func (c *ResizeObserverController) SetLoopLimit(n int) { c.loopLimit = n }

// HasObservers reports whether any observer is registered.
func (c *ResizeObserverController) HasObservers() bool { return len(c.observers) > 0 }

// GatherObservations collects out of sync observations deeper than the
// previous pass and returns the shallowest depth found, or DepthBottom.
// Once the loop limit is reached every out of sync observation is skipped.
func (c *ResizeObserverController) GatherObservations() int {
	deeperThan := c.minDepth
	if c.loopLimit > 0 && c.passes >= c.loopLimit {
		deeperThan = DepthBottom
	}
	minDepth := DepthBottom
	for _, o := range c.observers {
		minDepth = min(minDepth, o.gather(deeperThan))
	}
	c.minDepth = minDepth
	if minDepth != DepthBottom {
		c.passes++
	}
	return minDepth
}

// DeliverObservations runs the callbacks of observers with active
// observations. It reports whether any callback ran.
func (c *ResizeObserverController) DeliverObservations() bool {
	delivered := false
	// Callbacks may disconnect observers.
	for _, o := range append([]*ResizeObserver(nil), c.observers...) {
		if o.deliver() {
			delivered = true
		}
	}
	return delivered
}

// SkippedObservations reports whether a gather pass left out of sync
// observations undelivered.
func (c *ResizeObserverController) SkippedObservations() bool {
	for _, o := range c.observers {
		if o.skipped {
			return true
		}
	}
	return false
}

// ClearObservations drops active and skipped observations.
func (c *ResizeObserverController) ClearObservations() {
	for _, o := range c.observers {
		o.active = nil
		o.skipped = false
	}
}

// ClearMinDepth ends a series of passes.
func (c *ResizeObserverController) ClearMinDepth() {
	c.minDepth = 0
	c.passes = 0
	c.loopLimitErrorDispatched = false
}

func (c *ResizeObserverController) LoopLimitErrorDispatched() bool {
	return c.loopLimitErrorDispatched
}

func (c *ResizeObserverController) SetLoopLimitErrorDispatched(v bool) {
	c.loopLimitErrorDispatched = v
}
