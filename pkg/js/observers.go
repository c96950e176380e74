package js

import (
	"github.com/dop251/goja"

	"framecore/pkg/dom"
	"framecore/pkg/frame"
	"framecore/pkg/geom"
)

func (e *Engine) registerObservers() {
	e.vm.Set("ResizeObserver", e.newResizeObserver)
	e.vm.Set("IntersectionObserver", e.newIntersectionObserver)
}

func (e *Engine) requireFrameDocument(name string) {
	if e.frameDoc == nil {
		panic(e.vm.NewTypeError("Failed to construct '%s': document is not attached to a frame", name))
	}
}

// targetArg unwraps the element passed to observe and unobserve.
func (e *Engine) targetArg(call goja.FunctionCall, method string) *dom.Node {
	var n *dom.Node
	if e.dom != nil {
		n = e.dom.unwrapNode(call.Argument(0))
	}
	if n == nil || n.Type != dom.ElementNode {
		panic(e.vm.NewTypeError("Failed to execute '%s': parameter 1 is not an Element", method))
	}
	return n
}

func (e *Engine) newResizeObserver(call goja.ConstructorCall) *goja.Object {
	e.requireFrameDocument("ResizeObserver")
	cb, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(e.vm.NewTypeError("Failed to construct 'ResizeObserver': parameter 1 is not a function"))
	}
	self := call.This
	ro := e.frameDoc.ResizeObserverController().NewObserver(func(entries []frame.ResizeObserverEntry, _ *frame.ResizeObserver) {
		items := make([]any, 0, len(entries))
		for _, en := range entries {
			entry := e.vm.NewObject()
			entry.Set("target", e.targetValue(en.Target))
			entry.Set("contentRect", e.rectValue(geom.Rect{Width: en.ContentSize.Width, Height: en.ContentSize.Height}))
			items = append(items, entry)
		}
		e.invoke(cb, self, e.vm.NewArray(items...), self)
	})

	self.Set("observe", func(call goja.FunctionCall) goja.Value {
		ro.Observe(e.targetArg(call, "observe"))
		return goja.Undefined()
	})
	self.Set("unobserve", func(call goja.FunctionCall) goja.Value {
		ro.Unobserve(e.targetArg(call, "unobserve"))
		return goja.Undefined()
	})
	self.Set("disconnect", func(goja.FunctionCall) goja.Value {
		ro.Disconnect()
		return goja.Undefined()
	})
	return nil
}

func (e *Engine) newIntersectionObserver(call goja.ConstructorCall) *goja.Object {
	e.requireFrameDocument("IntersectionObserver")
	cb, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(e.vm.NewTypeError("Failed to construct 'IntersectionObserver': parameter 1 is not a function"))
	}
	thresholds := e.thresholds(call.Argument(1))
	self := call.This
	io := e.frameDoc.IntersectionObserverController().NewObserver(func(entries []frame.IntersectionObserverEntry, _ *frame.IntersectionObserver) {
		items := make([]any, 0, len(entries))
		for _, en := range entries {
			entry := e.vm.NewObject()
			entry.Set("target", e.targetValue(en.Target))
			entry.Set("boundingClientRect", e.rectValue(en.BoundingRect))
			entry.Set("intersectionRect", e.rectValue(en.IntersectionRect))
			entry.Set("rootBounds", e.rectValue(en.RootBounds))
			entry.Set("intersectionRatio", en.IntersectionRatio)
			entry.Set("isIntersecting", en.IsIntersecting)
			items = append(items, entry)
		}
		e.invoke(cb, self, e.vm.NewArray(items...), self)
	}, thresholds...)

	self.Set("thresholds", e.vm.ToValue(io.Thresholds()))
	self.Set("observe", func(call goja.FunctionCall) goja.Value {
		io.Observe(e.targetArg(call, "observe"))
		return goja.Undefined()
	})
	self.Set("unobserve", func(call goja.FunctionCall) goja.Value {
		io.Unobserve(e.targetArg(call, "unobserve"))
		return goja.Undefined()
	})
	self.Set("disconnect", func(goja.FunctionCall) goja.Value {
		io.Disconnect()
		return goja.Undefined()
	})
	return nil
}

// thresholds reads options.threshold, a number or an array of numbers in
// [0, 1].
func (e *Engine) thresholds(options goja.Value) []float64 {
	if options == nil || goja.IsUndefined(options) || goja.IsNull(options) {
		return nil
	}
	v := options.ToObject(e.vm).Get("threshold")
	if v == nil || goja.IsUndefined(v) {
		return nil
	}
	var ts []float64
	if obj, ok := v.(*goja.Object); ok && obj.ClassName() == "Array" {
		if err := e.vm.ExportTo(obj, &ts); err != nil {
			panic(e.vm.NewTypeError("Failed to construct 'IntersectionObserver': %v", err))
		}
	} else {
		ts = []float64{v.ToFloat()}
	}
	for _, t := range ts {
		if t < 0 || t > 1 {
			panic(e.vm.NewTypeError("Failed to construct 'IntersectionObserver': threshold %v is outside [0, 1]", t))
		}
	}
	return ts
}

func (e *Engine) targetValue(t any) goja.Value {
	n, ok := t.(*dom.Node)
	if !ok || e.dom == nil {
		return goja.Null()
	}
	return e.dom.elementProxy(n)
}

func (e *Engine) rectValue(r geom.Rect) *goja.Object {
	o := e.vm.NewObject()
	o.Set("x", r.X)
	o.Set("y", r.Y)
	o.Set("width", r.Width)
	o.Set("height", r.Height)
	o.Set("top", r.Y)
	o.Set("left", r.X)
	o.Set("right", r.X+r.Width)
	o.Set("bottom", r.Y+r.Height)
	return o
}
