package js

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dop251/goja"

	"framecore/pkg/dom"
	"framecore/pkg/geom"
)

// domContext binds one document to one runtime. Proxies are cached per node
// so scripts can compare elements with ===.
type domContext struct {
	e     *Engine
	vm    *goja.Runtime
	doc   *dom.Document
	cache map[*dom.Node]*goja.Object
	nodes map[*goja.Object]*dom.Node
}

func newDOMContext(e *Engine, doc *dom.Document) *domContext {
	return &domContext{
		e:     e,
		vm:    e.vm,
		doc:   doc,
		cache: make(map[*dom.Node]*goja.Object),
		nodes: make(map[*goja.Object]*dom.Node),
	}
}

// registerDocument installs the `document` global.
func registerDocument(e *Engine, doc *dom.Document) *domContext {
	ctx := newDOMContext(e, doc)
	vm := e.vm

	docObj := vm.NewObject()
	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		node := doc.GetElementByID(call.Argument(0).String())
		if node == nil {
			return goja.Null()
		}
		return ctx.elementProxy(node)
	})
	docObj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		return ctx.elementArray(doc.ElementsByTagName(strings.ToLower(call.Arguments[0].String())))
	})
	docObj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
		}
		return ctx.elementProxy(doc.CreateElement(strings.ToLower(call.Arguments[0].String())))
	})
	docObj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		text := ""
		if len(call.Arguments) > 0 {
			text = call.Arguments[0].String()
		}
		return ctx.elementProxy(doc.CreateTextNode(text))
	})
	registerDocumentProperties(ctx, docObj)

	e.document = newEventTarget(e)
	e.document.install(docObj)
	vm.Set("document", docObj)
	return ctx
}

// elementArray wraps nodes as a JS array of element proxies.
func (ctx *domContext) elementArray(nodes []*dom.Node) goja.Value {
	items := make([]any, len(nodes))
	for i, n := range nodes {
		items[i] = ctx.elementProxy(n)
	}
	return ctx.vm.NewArray(items...)
}

// elementProxy creates (or retrieves from cache) a JS DynamicObject wrapping a dom.Node.
func (ctx *domContext) elementProxy(node *dom.Node) goja.Value {
	if v, ok := ctx.cache[node]; ok {
		return v
	}
	v := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, node: node})
	ctx.cache[node] = v
	ctx.nodes[v] = node
	return v
}

// unwrapNode extracts the *dom.Node behind a proxy, or nil for anything
// else.
func (ctx *domContext) unwrapNode(val goja.Value) *dom.Node {
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil
	}
	return ctx.nodes[obj]
}

func (ctx *domContext) nodeOrNull(n *dom.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	return ctx.elementProxy(n)
}

// elementAccessor is the goja.DynamicObject behind every element proxy.
type elementAccessor struct {
	ctx  *domContext
	node *dom.Node
}

var elementKeys = []string{
	"tagName", "nodeName", "nodeType", "nodeValue", "id", "className",
	"textContent", "getAttribute", "setAttribute", "hasAttribute", "removeAttribute",
	"children", "childNodes", "parentElement", "parentNode", "style",
	"appendChild", "removeChild", "insertBefore", "remove", "append", "prepend",
	"firstChild", "lastChild", "firstElementChild", "lastElementChild",
	"nextSibling", "previousSibling", "nextElementSibling", "previousElementSibling",
	"childElementCount", "contains", "hasChildNodes", "isConnected",
	"getBoundingClientRect", "offsetWidth", "offsetHeight", "getElementsByTagName",
}

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.vm
	n := e.node

	switch key {
	case "nodeType":
		if n.Type == dom.TextNode {
			return vm.ToValue(3) // Node.TEXT_NODE
		}
		return vm.ToValue(1) // Node.ELEMENT_NODE
	case "nodeName":
		if n.Type == dom.TextNode {
			return vm.ToValue("#text")
		}
		return vm.ToValue(strings.ToUpper(n.TagName))
	case "nodeValue":
		if n.Type == dom.TextNode {
			return vm.ToValue(n.Text)
		}
		return goja.Null()
	case "tagName":
		if n.Type == dom.TextNode {
			return goja.Undefined()
		}
		return vm.ToValue(strings.ToUpper(n.TagName))
	case "id":
		return vm.ToValue(n.ID())
	case "className":
		cls, _ := n.GetAttribute("class")
		return vm.ToValue(cls)
	case "textContent":
		return vm.ToValue(n.TextContent())
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			val, ok := n.GetAttribute(call.Argument(0).String())
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(val)
		})
	case "setAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(vm.NewTypeError("Failed to execute 'setAttribute': 2 arguments required"))
			}
			n.SetAttribute(strings.ToLower(call.Arguments[0].String()), call.Arguments[1].String())
			return goja.Undefined()
		})
	case "hasAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			_, ok := n.GetAttribute(call.Argument(0).String())
			return vm.ToValue(ok)
		})
	case "removeAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			n.RemoveAttribute(call.Argument(0).String())
			return goja.Undefined()
		})
	case "children":
		return e.ctx.elementArray(elementChildren(n))
	case "childNodes":
		return e.ctx.elementArray(n.Children)
	case "parentElement":
		if n.Parent != nil && n.Parent.Type == dom.ElementNode {
			return e.ctx.elementProxy(n.Parent)
		}
		return goja.Null()
	case "parentNode":
		if n.Parent != nil && n.Parent.Type == dom.ElementNode {
			return e.ctx.elementProxy(n.Parent)
		}
		if n.Parent != nil {
			return vm.Get("document")
		}
		return goja.Null()
	case "style":
		return newStyleProxy(vm, n)
	case "isConnected":
		return vm.ToValue(n.IsConnected())

	case "appendChild":
		return vm.ToValue(e.appendChildFn())
	case "removeChild":
		return vm.ToValue(e.removeChildFn())
	case "insertBefore":
		return vm.ToValue(e.insertBeforeFn())
	case "remove":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
			}
			return goja.Undefined()
		})
	case "append":
		return vm.ToValue(e.appendFn())
	case "prepend":
		return vm.ToValue(e.prependFn())

	case "firstChild":
		return e.firstChild()
	case "lastChild":
		return e.lastChild()
	case "firstElementChild":
		return e.firstElementChild()
	case "lastElementChild":
		return e.lastElementChild()
	case "nextSibling":
		return e.nextSibling()
	case "previousSibling":
		return e.previousSibling()
	case "nextElementSibling":
		return e.nextElementSibling()
	case "previousElementSibling":
		return e.previousElementSibling()
	case "childElementCount":
		return vm.ToValue(len(elementChildren(n)))

	case "contains":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			other := e.ctx.unwrapNode(call.Argument(0))
			return vm.ToValue(other != nil && n.Contains(other))
		})
	case "hasChildNodes":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			return vm.ToValue(len(n.Children) > 0)
		})
	case "getElementsByTagName":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			tag := strings.ToLower(call.Argument(0).String())
			var result []*dom.Node
			for _, child := range n.Children {
				result = append(result, elementsByTagName(child, tag)...)
			}
			return e.ctx.elementArray(result)
		})

	case "getBoundingClientRect":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			return e.ctx.e.rectValue(e.clientRect())
		})
	case "offsetWidth":
		return vm.ToValue(n.TargetRect().Width)
	case "offsetHeight":
		return vm.ToValue(n.TargetRect().Height)
	}
	return goja.Undefined()
}

// clientRect is the node's box relative to the viewport. Fixed elements
// already are.
func (e *elementAccessor) clientRect() geom.Rect {
	r := e.node.TargetRect()
	if e.node.Style().Position == dom.PositionFixed {
		return r
	}
	return r.Offset(e.ctx.doc.ScrollOffset().Scale(-1, -1))
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	n := e.node
	switch key {
	case "textContent":
		setTextContent(n, val.String())
		return true
	case "className":
		n.SetAttribute("class", val.String())
		return true
	case "id":
		n.SetAttribute("id", val.String())
		return true
	case "nodeValue":
		if n.Type == dom.TextNode {
			n.SetText(val.String())
		}
		return true
	}
	return false
}

func (e *elementAccessor) Has(key string) bool {
	for _, k := range elementKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (e *elementAccessor) Delete(key string) bool {
	return false
}

func (e *elementAccessor) Keys() []string {
	return elementKeys
}

func elementChildren(n *dom.Node) []*dom.Node {
	var out []*dom.Node
	for _, c := range n.Children {
		if c.Type == dom.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func elementsByTagName(n *dom.Node, tag string) []*dom.Node {
	var result []*dom.Node
	if n.Type == dom.ElementNode && n.TagName == tag {
		result = append(result, n)
	}
	for _, child := range n.Children {
		result = append(result, elementsByTagName(child, tag)...)
	}
	return result
}

// setTextContent replaces all children with a single text node. A text
// node keeps its identity and changes its data.
func setTextContent(n *dom.Node, text string) {
	if n.Type == dom.TextNode {
		n.SetText(text)
		return
	}
	for len(n.Children) > 0 {
		n.RemoveChild(n.Children[len(n.Children)-1])
	}
	n.AppendText(text)
}

// newStyleProxy exposes node's style attribute as element.style, with
// camelCase names mapped to declarations.
func newStyleProxy(vm *goja.Runtime, node *dom.Node) goja.Value {
	return vm.NewDynamicObject(&styleAccessor{vm: vm, node: node})
}

type styleAccessor struct {
	vm   *goja.Runtime
	node *dom.Node
}

func (s *styleAccessor) Get(key string) goja.Value {
	if key == "cssText" {
		return s.vm.ToValue(s.getStyleAttr())
	}
	for _, d := range parseInlineStyle(s.getStyleAttr()) {
		if d.prop == camelToKebab(key) {
			return s.vm.ToValue(d.value)
		}
	}
	return s.vm.ToValue("")
}

func (s *styleAccessor) Set(key string, val goja.Value) bool {
	if key == "cssText" {
		s.node.SetAttribute("style", val.String())
		return true
	}
	prop := camelToKebab(key)
	decls := parseInlineStyle(s.getStyleAttr())
	value := val.String()
	if _, isNum := val.Export().(int64); isNum {
		value = strconv.FormatInt(val.ToInteger(), 10) + "px"
	}
	found := false
	for i := range decls {
		if decls[i].prop == prop {
			decls[i].value = value
			found = true
		}
	}
	if !found {
		decls = append(decls, declaration{prop: prop, value: value})
	}
	s.node.SetAttribute("style", serializeInlineStyle(decls))
	return true
}

func (s *styleAccessor) Has(key string) bool {
	return true
}

func (s *styleAccessor) Delete(key string) bool {
	prop := camelToKebab(key)
	decls := parseInlineStyle(s.getStyleAttr())
	kept := decls[:0]
	for _, d := range decls {
		if d.prop != prop {
			kept = append(kept, d)
		}
	}
	s.node.SetAttribute("style", serializeInlineStyle(kept))
	return true
}

func (s *styleAccessor) Keys() []string {
	decls := parseInlineStyle(s.getStyleAttr())
	keys := make([]string, 0, len(decls))
	for _, d := range decls {
		keys = append(keys, d.prop)
	}
	return keys
}

func (s *styleAccessor) getStyleAttr() string {
	v, _ := s.node.GetAttribute("style")
	return v
}

type declaration struct {
	prop, value string
}

// parseInlineStyle splits an inline style string into declarations in
// source order.
func parseInlineStyle(s string) []declaration {
	var result []declaration
	for _, decl := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		result = append(result, declaration{prop: strings.TrimSpace(prop), value: strings.TrimSpace(val)})
	}
	return result
}

func serializeInlineStyle(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.prop+": "+d.value)
	}
	return strings.Join(parts, "; ")
}

// camelToKebab maps backgroundColor to background-color.
func camelToKebab(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
