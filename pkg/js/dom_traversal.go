package js

import (
	"github.com/dop251/goja"

	"framecore/pkg/dom"
)

// Traversal property methods on elementAccessor

func (e *elementAccessor) firstChild() goja.Value {
	if len(e.node.Children) == 0 {
		return goja.Null()
	}
	return e.ctx.elementProxy(e.node.Children[0])
}

func (e *elementAccessor) lastChild() goja.Value {
	if len(e.node.Children) == 0 {
		return goja.Null()
	}
	return e.ctx.elementProxy(e.node.Children[len(e.node.Children)-1])
}

func (e *elementAccessor) firstElementChild() goja.Value {
	kids := elementChildren(e.node)
	if len(kids) == 0 {
		return goja.Null()
	}
	return e.ctx.elementProxy(kids[0])
}

func (e *elementAccessor) lastElementChild() goja.Value {
	kids := elementChildren(e.node)
	if len(kids) == 0 {
		return goja.Null()
	}
	return e.ctx.elementProxy(kids[len(kids)-1])
}

// sibling walks from the node in direction step, optionally skipping
// non-element nodes.
func (e *elementAccessor) sibling(step int, elementsOnly bool) goja.Value {
	parent := e.node.Parent
	if parent == nil {
		return goja.Null()
	}
	idx := e.node.IndexInParent()
	if idx < 0 {
		return goja.Null()
	}
	for i := idx + step; i >= 0 && i < len(parent.Children); i += step {
		if !elementsOnly || parent.Children[i].Type == dom.ElementNode {
			return e.ctx.elementProxy(parent.Children[i])
		}
	}
	return goja.Null()
}

func (e *elementAccessor) nextSibling() goja.Value            { return e.sibling(1, false) }
func (e *elementAccessor) previousSibling() goja.Value        { return e.sibling(-1, false) }
func (e *elementAccessor) nextElementSibling() goja.Value     { return e.sibling(1, true) }
func (e *elementAccessor) previousElementSibling() goja.Value { return e.sibling(-1, true) }

// registerDocumentProperties adds document.documentElement, document.head
// and document.body as accessors, so scripts see elements added later.
func registerDocumentProperties(ctx *domContext, docObj *goja.Object) {
	root := ctx.doc.Root
	findElement := func(tag string) *dom.Node {
		for _, child := range root.Children {
			if child.Type == dom.ElementNode && child.TagName == tag {
				return child
			}
		}
		for _, child := range root.Children {
			if child.Type == dom.ElementNode && child.TagName == "html" {
				for _, grandchild := range child.Children {
					if grandchild.Type == dom.ElementNode && grandchild.TagName == tag {
						return grandchild
					}
				}
			}
		}
		return nil
	}

	for _, tag := range []string{"html", "head", "body"} {
		name := tag
		if tag == "html" {
			name = "documentElement"
		}
		getter := ctx.vm.ToValue(func(goja.FunctionCall) goja.Value {
			return ctx.nodeOrNull(findElement(tag))
		})
		docObj.DefineAccessorProperty(name, getter, nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}
}
