package dom

import (
	"fmt"
	gohtml "html"
	"strings"
	"unicode"
)

// TokenKind classifies a token produced by the Tokenizer.
type TokenKind int

const (
	StartTagToken TokenKind = iota
	EndTagToken
	TextToken
	EOFToken
)

// Token is one lexical unit of markup.
type Token struct {
	Kind        TokenKind
	Tag         string
	Attrs       map[string]string
	Data        string
	SelfClosing bool
}

// Tokenizer splits markup into tags and text. It skips comments, doctypes
// and processing instructions.
type Tokenizer struct {
	src string
	pos int
}

// NewTokenizer returns a tokenizer over src.
func NewTokenizer(src string) *Tokenizer {
	return &Tokenizer{src: src}
}

func (t *Tokenizer) eof() bool { return t.pos >= len(t.src) }

func (t *Tokenizer) hasPrefix(p string) bool { return strings.HasPrefix(t.src[t.pos:], p) }

// skipPast moves past the next occurrence of end, or to EOF.
func (t *Tokenizer) skipPast(end string) {
	if i := strings.Index(t.src[t.pos:], end); i >= 0 {
		t.pos += i + len(end)
		return
	}
	t.pos = len(t.src)
}

// Next returns the next token. Whitespace-only text between tags is
// dropped.
func (t *Tokenizer) Next() (Token, error) {
	for !t.eof() {
		switch {
		case t.hasPrefix("<!--"):
			t.skipPast("-->")
		case t.hasPrefix("<!"), t.hasPrefix("<?"):
			t.skipPast(">")
		case t.src[t.pos] == '<':
			return t.tag()
		default:
			if tok, ok := t.text(); ok {
				return tok, nil
			}
		}
	}
	return Token{Kind: EOFToken}, nil
}

func (t *Tokenizer) tag() (Token, error) {
	t.pos++
	end := false
	if !t.eof() && t.src[t.pos] == '/' {
		end = true
		t.pos++
	}
	name := t.readName(isTagNameByte)
	if name == "" {
		return Token{}, fmt.Errorf("dom: expected tag name at offset %d", t.pos)
	}
	if end {
		t.skipPast(">")
		return Token{Kind: EndTagToken, Tag: name}, nil
	}

	tok := Token{Kind: StartTagToken, Tag: name, Attrs: map[string]string{}}
	for {
		t.skipSpace()
		if t.eof() {
			return Token{}, fmt.Errorf("dom: unexpected EOF in <%s>", name)
		}
		switch t.src[t.pos] {
		case '>':
			t.pos++
			return tok, nil
		case '/':
			t.pos++
			t.skipSpace()
			if !t.eof() && t.src[t.pos] == '>' {
				t.pos++
				tok.SelfClosing = true
				return tok, nil
			}
			continue
		}
		key := t.readName(isAttrNameByte)
		if key == "" {
			return Token{}, fmt.Errorf("dom: bad attribute in <%s> at offset %d", name, t.pos)
		}
		t.skipSpace()
		value := ""
		if !t.eof() && t.src[t.pos] == '=' {
			t.pos++
			t.skipSpace()
			v, err := t.attrValue()
			if err != nil {
				return Token{}, err
			}
			value = gohtml.UnescapeString(v)
		}
		if _, dup := tok.Attrs[key]; !dup {
			tok.Attrs[key] = value
		}
	}
}

func (t *Tokenizer) attrValue() (string, error) {
	if t.eof() {
		return "", fmt.Errorf("dom: missing attribute value at offset %d", t.pos)
	}
	if q := t.src[t.pos]; q == '"' || q == '\'' {
		t.pos++
		i := strings.IndexByte(t.src[t.pos:], q)
		if i < 0 {
			return "", fmt.Errorf("dom: unterminated attribute value")
		}
		v := t.src[t.pos : t.pos+i]
		t.pos += i + 1
		return v, nil
	}
	start := t.pos
	for !t.eof() && t.src[t.pos] != '>' && !unicode.IsSpace(rune(t.src[t.pos])) {
		t.pos++
	}
	return t.src[start:t.pos], nil
}

// text reads up to the next '<'. ok is false for whitespace-only runs.
func (t *Tokenizer) text() (Token, bool) {
	start := t.pos
	if i := strings.IndexByte(t.src[t.pos:], '<'); i >= 0 {
		t.pos += i
	} else {
		t.pos = len(t.src)
	}
	raw := t.src[start:t.pos]
	if strings.TrimSpace(raw) == "" {
		return Token{}, false
	}
	return Token{Kind: TextToken, Data: gohtml.UnescapeString(collapseSpace(raw))}, true
}

// RawText returns everything up to the matching end tag and consumes the
// end tag. It is used for elements whose content is not markup.
func (t *Tokenizer) RawText(tag string) string {
	closing := "</" + tag
	lower := strings.ToLower(t.src[t.pos:])
	i := strings.Index(lower, closing)
	if i < 0 {
		s := t.src[t.pos:]
		t.pos = len(t.src)
		return s
	}
	s := t.src[t.pos : t.pos+i]
	t.pos += i
	t.skipPast(">")
	return s
}

func (t *Tokenizer) readName(valid func(byte) bool) string {
	start := t.pos
	for !t.eof() && valid(t.src[t.pos]) {
		t.pos++
	}
	return strings.ToLower(t.src[start:t.pos])
}

func (t *Tokenizer) skipSpace() {
	for !t.eof() && unicode.IsSpace(rune(t.src[t.pos])) {
		t.pos++
	}
}

// collapseSpace folds whitespace runs to one space, keeping a single
// leading or trailing space so adjacent inline runs stay separated.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}

func isTagNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_'
}

func isAttrNameByte(c byte) bool {
	return isTagNameByte(c) || c == ':' || c == '.'
}
