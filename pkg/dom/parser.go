package dom

import (
	"fmt"
	"strings"

	"framecore/pkg/pagescale"
)

// Parser builds a Document from markup.
type Parser struct {
	tokenizer *Tokenizer
	doc       *Document
	open      []*Node
}

// NewParser returns a parser that fills doc from src.
func NewParser(src string, doc *Document) *Parser {
	return &Parser{tokenizer: NewTokenizer(src), doc: doc}
}

// Parse parses src into a new document configured by opts.
func Parse(src string, opts ...Option) (*Document, error) {
	doc := NewDocument(opts...)
	if err := NewParser(src, doc).Parse(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Parse consumes the whole input.
func (p *Parser) Parse() error {
	p.open = []*Node{p.doc.Root}
	for {
		tok, err := p.tokenizer.Next()
		if err != nil {
			return fmt.Errorf("parse: %w", err)
		}
		switch tok.Kind {
		case EOFToken:
			return nil
		case TextToken:
			p.current().AppendText(tok.Data)
		case EndTagToken:
			p.close(tok.Tag)
		case StartTagToken:
			p.startTag(tok)
		}
	}
}

func (p *Parser) current() *Node { return p.open[len(p.open)-1] }

func (p *Parser) startTag(tok Token) {
	switch tok.Tag {
	case "script":
		p.doc.Scripts = append(p.doc.Scripts, p.tokenizer.RawText("script"))
		return
	case "style":
		p.tokenizer.RawText("style")
		return
	}
	if closesParagraph(tok.Tag) {
		p.closeOpenParagraph()
	}

	n := p.doc.CreateElement(tok.Tag)
	for k, v := range tok.Attrs {
		n.Attributes[k] = v
	}
	n.style = ParseStyle(n.Attributes["style"])
	p.current().AddChild(n)

	if tok.Tag == "meta" && strings.EqualFold(n.Attributes["name"], "viewport") {
		desc := pagescale.ParseViewportMeta(n.Attributes["content"])
		p.doc.ViewportMeta = &desc
	}
	if !isVoid(tok.Tag) && !tok.SelfClosing {
		p.open = append(p.open, n)
	}
}

// close pops up to and including the innermost open element named tag.
// Unmatched end tags are ignored.
func (p *Parser) close(tag string) {
	for i := len(p.open) - 1; i >= 1; i-- {
		if p.open[i].TagName == tag {
			p.open = p.open[:i]
			return
		}
	}
}

func (p *Parser) closeOpenParagraph() {
	for i := len(p.open) - 1; i >= 1; i-- {
		switch tag := p.open[i].TagName; {
		case tag == "p":
			p.open = p.open[:i]
			return
		case closesParagraph(tag):
			return
		}
	}
}

func isVoid(tag string) bool {
	switch tag {
	case "area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}

func closesParagraph(tag string) bool {
	switch tag {
	case "address", "article", "aside", "blockquote", "details", "div",
		"dl", "fieldset", "figure", "footer", "form", "h1", "h2", "h3",
		"h4", "h5", "h6", "header", "hr", "li", "main", "nav", "ol", "p",
		"pre", "section", "table", "ul":
		return true
	}
	return false
}
