// Package js runs page scripts against a dom.Document with goja. The
// Engine is also the frame's script controller: it receives error events
// and services animation frames.
package js

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"framecore/pkg/dom"
	"framecore/pkg/frame"
)

// Engine executes JavaScript against a document's DOM.
type Engine struct {
	vm     *goja.Runtime
	logger *zap.Logger
	origin time.Time

	dom      *domContext
	frameDoc *frame.Document
	window   *eventTarget
	document *eventTarget

	// schedule asks the embedder for an animation frame.
	schedule func()

	nextCallbackID int64
	callbacks      []animationFrameCallback
	pendingEvents  []string
}

var _ frame.ScriptController = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger console output and script errors go to.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithAnimationScheduler sets the function called when a script needs an
// animation frame.
func WithAnimationScheduler(fn func()) Option {
	return func(e *Engine) { e.schedule = fn }
}

// WithTimeOrigin sets the zero point of animation frame timestamps.
func WithTimeOrigin(t time.Time) Option {
	return func(e *Engine) { e.origin = t }
}

// New creates a new JS engine with a fresh goja runtime.
func New(opts ...Option) *Engine {
	vm := goja.New()
	e := &Engine{
		vm:     vm,
		logger: zap.L().Named("js"),
		origin: time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}

	c := &consoleAPI{logger: e.logger}
	c.register(vm)

	e.window = newEventTarget(e)
	e.window.install(vm.GlobalObject())
	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	e.registerAnimationFrames()
	e.registerObservers()
	return e
}

// BindFrameDocument connects the engine to the frame document whose
// observer controllers back ResizeObserver and IntersectionObserver.
func (e *Engine) BindFrameDocument(d *frame.Document) { e.frameDoc = d }

// SetAnimationScheduler replaces the animation frame scheduler.
func (e *Engine) SetAnimationScheduler(fn func()) { e.schedule = fn }

// Runtime exposes the goja runtime.
func (e *Engine) Runtime() *goja.Runtime { return e.vm }

// Execute binds doc as the global document and runs its scripts in
// order. A script that throws is reported as an error event and does not
// stop later scripts; the returned error joins every failure.
func (e *Engine) Execute(doc *dom.Document) error {
	e.dom = registerDocument(e, doc)

	var errs []error
	for i, script := range doc.Scripts {
		if _, err := e.vm.RunString(script); err != nil {
			errs = append(errs, fmt.Errorf("script %d: %w", i, err))
			e.reportException(err)
		}
	}
	return errors.Join(errs...)
}

// RunString evaluates src in the engine's global scope.
func (e *Engine) RunString(src string) (goja.Value, error) {
	return e.vm.RunString(src)
}

// DispatchErrorEvent fires window.onerror and then "error" listeners.
func (e *Engine) DispatchErrorEvent(message string) {
	e.logger.Debug("error event", zap.String("message", message))
	if fn, ok := goja.AssertFunction(e.vm.GlobalObject().Get("onerror")); ok {
		if _, err := fn(e.vm.GlobalObject(), e.vm.ToValue(message)); err != nil {
			e.logger.Warn("onerror handler threw", zap.Error(err))
		}
	}
	ev := e.newEvent("error")
	ev.Set("message", message)
	e.window.dispatch(ev)
}

// EnqueueAnimationEvent queues an event fired at the document and then
// the window during the next animation frame. Duplicates of a queued
// event are dropped.
func (e *Engine) EnqueueAnimationEvent(eventType string) {
	for _, t := range e.pendingEvents {
		if t == eventType {
			return
		}
	}
	e.pendingEvents = append(e.pendingEvents, eventType)
	e.requestFrame()
}

// reportException logs a thrown script error and turns it into an error
// event.
func (e *Engine) reportException(err error) {
	msg := err.Error()
	var ex *goja.Exception
	if errors.As(err, &ex) {
		msg = ex.Value().String()
	}
	e.logger.Warn("uncaught script error", zap.String("message", msg))
	e.DispatchErrorEvent(msg)
}

// invoke calls fn and reports anything it throws.
func (e *Engine) invoke(fn goja.Callable, this goja.Value, args ...goja.Value) {
	if _, err := fn(this, args...); err != nil {
		e.reportException(err)
	}
}

func (e *Engine) newEvent(eventType string) *goja.Object {
	ev := e.vm.NewObject()
	ev.Set("type", eventType)
	return ev
}

func (e *Engine) requestFrame() {
	if e.schedule != nil {
		e.schedule()
	}
}
