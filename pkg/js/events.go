package js

import (
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// eventTarget holds the listeners of window or document.
type eventTarget struct {
	e         *Engine
	obj       *goja.Object
	listeners map[string][]goja.Value
}

func newEventTarget(e *Engine) *eventTarget {
	return &eventTarget{e: e, listeners: make(map[string][]goja.Value)}
}

// install adds addEventListener, removeEventListener and dispatchEvent to
// obj.
func (t *eventTarget) install(obj *goja.Object) {
	t.obj = obj
	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		typ, fn := call.Argument(0).String(), call.Argument(1)
		if _, ok := goja.AssertFunction(fn); !ok {
			return goja.Undefined()
		}
		for _, l := range t.listeners[typ] {
			if l.SameAs(fn) {
				return goja.Undefined()
			}
		}
		t.listeners[typ] = append(t.listeners[typ], fn)
		return goja.Undefined()
	})
	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		typ, fn := call.Argument(0).String(), call.Argument(1)
		ls := t.listeners[typ]
		for i, l := range ls {
			if l.SameAs(fn) {
				t.listeners[typ] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
		return goja.Undefined()
	})
	obj.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		ev := call.Argument(0).ToObject(t.e.vm)
		t.dispatch(ev)
		return t.e.vm.ToValue(true)
	})
}

// dispatch calls the listeners registered for ev.type. Listeners added
// during dispatch wait for the next event.
func (t *eventTarget) dispatch(ev *goja.Object) {
	typ := ev.Get("type").String()
	ev.Set("target", t.obj)
	for _, l := range append([]goja.Value(nil), t.listeners[typ]...) {
		fn, _ := goja.AssertFunction(l)
		if _, err := fn(t.obj, ev); err != nil {
			if typ == "error" {
				t.e.logger.Warn("error listener threw", zap.Error(err))
				continue
			}
			t.e.reportException(err)
		}
	}
}

type animationFrameCallback struct {
	id int64
	fn goja.Callable
}

func (e *Engine) registerAnimationFrames() {
	e.vm.Set("requestAnimationFrame", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(e.vm.NewTypeError("Failed to execute 'requestAnimationFrame': parameter 1 is not a function"))
		}
		e.nextCallbackID++
		e.callbacks = append(e.callbacks, animationFrameCallback{id: e.nextCallbackID, fn: fn})
		e.requestFrame()
		return e.vm.ToValue(e.nextCallbackID)
	})
	e.vm.Set("cancelAnimationFrame", func(call goja.FunctionCall) goja.Value {
		id := call.Argument(0).ToInteger()
		for i, cb := range e.callbacks {
			if cb.id == id {
				e.callbacks = append(e.callbacks[:i:i], e.callbacks[i+1:]...)
				break
			}
		}
		return goja.Undefined()
	})
}

// HasPendingAnimationFrame reports whether the next ServiceScriptedAnimations
// has work.
func (e *Engine) HasPendingAnimationFrame() bool {
	return len(e.callbacks) > 0 || len(e.pendingEvents) > 0
}

// ServiceScriptedAnimations fires queued animation events, then runs the
// animation frame callbacks registered before this frame. Callbacks
// registered while running wait for the next frame.
func (e *Engine) ServiceScriptedAnimations(now time.Time) {
	events := e.pendingEvents
	e.pendingEvents = nil
	for _, typ := range events {
		if e.document != nil {
			e.document.dispatch(e.newEvent(typ))
		}
		e.window.dispatch(e.newEvent(typ))
	}

	callbacks := e.callbacks
	e.callbacks = nil
	ts := e.vm.ToValue(float64(now.Sub(e.origin)) / float64(time.Millisecond))
	for _, cb := range callbacks {
		e.invoke(cb.fn, goja.Undefined(), ts)
	}
}
