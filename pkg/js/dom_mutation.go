package js

import (
	"github.com/dop251/goja"

	"framecore/pkg/dom"
)

// appendChildFn returns a JS function that implements node.appendChild(child).
func (e *elementAccessor) appendChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.ctx.unwrapNode(call.Argument(0))
		if child == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'appendChild': parameter 1 is not a Node"))
		}
		if child.Contains(e.node) {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'appendChild': the new child contains the parent"))
		}
		e.node.AddChild(child)
		return e.ctx.elementProxy(child)
	}
}

// removeChildFn returns a JS function that implements node.removeChild(child).
func (e *elementAccessor) removeChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.ctx.unwrapNode(call.Argument(0))
		if child == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': parameter 1 is not a Node"))
		}
		removed := e.node.RemoveChild(child)
		if removed == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': The node to be removed is not a child of this node"))
		}
		return e.ctx.elementProxy(removed)
	}
}

// insertBeforeFn returns a JS function that implements node.insertBefore(newNode, refNode).
func (e *elementAccessor) insertBeforeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		newChild := e.ctx.unwrapNode(call.Argument(0))
		if newChild == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'insertBefore': parameter 1 is not a Node"))
		}
		refChild := e.ctx.unwrapNode(call.Argument(1))
		e.node.InsertBefore(newChild, refChild)
		return e.ctx.elementProxy(newChild)
	}
}

// nodesFromArgs converts append/prepend arguments into nodes. Strings
// become text nodes.
func (e *elementAccessor) nodesFromArgs(args []goja.Value) []*dom.Node {
	nodes := make([]*dom.Node, 0, len(args))
	for _, arg := range args {
		if n := e.ctx.unwrapNode(arg); n != nil {
			nodes = append(nodes, n)
			continue
		}
		nodes = append(nodes, e.ctx.doc.CreateTextNode(arg.String()))
	}
	return nodes
}

// appendFn returns a JS function for element.append(...nodes).
func (e *elementAccessor) appendFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		for _, n := range e.nodesFromArgs(call.Arguments) {
			e.node.AddChild(n)
		}
		return goja.Undefined()
	}
}

// prependFn returns a JS function for element.prepend(...nodes).
func (e *elementAccessor) prependFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var first *dom.Node
		if len(e.node.Children) > 0 {
			first = e.node.Children[0]
		}
		for _, n := range e.nodesFromArgs(call.Arguments) {
			e.node.InsertBefore(n, first)
		}
		return goja.Undefined()
	}
}
