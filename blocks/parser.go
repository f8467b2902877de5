package blocks

import (
	"fmt"
	"strings"
)

// SyntaxError reports malformed block markup.
type SyntaxError struct {
	Offset int
	Msg    string
	Err    error
}

func (e *SyntaxError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("blocks: %s at offset %d", e.Msg, e.Offset)
	}
	return fmt.Sprintf("blocks: %s at offset %d: %v", e.Msg, e.Offset, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

type tokenKind int

const (
	tokenOpener tokenKind = iota
	tokenCloser
	tokenVoid
)

type token struct {
	kind  tokenKind
	name  string
	attrs Attributes
	start int
	end   int
}

// Parse splits a serialized document into top-level blocks. Markup outside
// any delimiter is returned as freeform blocks so that serializing the result
// reproduces the document.
func Parse(doc string) ([]Block, error) {
	out := []Block{}
	stack := []Block{}
	pos := 0

	for {
		tok, ok, err := nextToken(doc, pos)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		text := doc[pos:tok.start]
		pos = tok.end

		switch tok.kind {
		case tokenVoid:
			block := Block{Name: tok.name, Attrs: tok.attrs}
			if len(stack) == 0 {
				out = appendFreeform(out, text)
				out = append(out, block)
				continue
			}
			top := &stack[len(stack)-1]
			appendText(top, text)
			addInner(top, block)
		case tokenOpener:
			if len(stack) == 0 {
				out = appendFreeform(out, text)
			} else {
				appendText(&stack[len(stack)-1], text)
			}
			stack = append(stack, Block{Name: tok.name, Attrs: tok.attrs})
		case tokenCloser:
			if len(stack) == 0 {
				return nil, &SyntaxError{Offset: tok.start, Msg: fmt.Sprintf("unexpected closing delimiter for %q", tok.name)}
			}
			top := stack[len(stack)-1]
			if top.Name != tok.name {
				return nil, &SyntaxError{Offset: tok.start, Msg: fmt.Sprintf("closing delimiter for %q does not match %q", tok.name, top.Name)}
			}
			appendText(&top, text)
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				out = append(out, top)
			} else {
				addInner(&stack[len(stack)-1], top)
			}
		}
	}

	if len(stack) > 0 {
		return nil, &SyntaxError{Offset: len(doc), Msg: fmt.Sprintf("block %q is never closed", stack[len(stack)-1].Name)}
	}
	return appendFreeform(out, doc[pos:]), nil
}

func appendFreeform(out []Block, text string) []Block {
	if text == "" {
		return out
	}
	return append(out, Freeform(text))
}

func appendText(b *Block, text string) {
	if text == "" {
		return
	}
	b.InnerHTML += text
	b.InnerContent = append(b.InnerContent, TextChunk(text))
}

func addInner(parent *Block, child Block) {
	parent.InnerBlocks = append(parent.InnerBlocks, child)
	parent.InnerContent = append(parent.InnerContent, InnerChunk())
}

func nextToken(doc string, pos int) (token, bool, error) {
	for pos < len(doc) {
		idx := strings.Index(doc[pos:], "<!--")
		if idx < 0 {
			return token{}, false, nil
		}
		start := pos + idx
		tok, ok, err := readDelimiter(doc, start)
		if err != nil {
			return token{}, false, err
		}
		if ok {
			return tok, true, nil
		}
		pos = start + len("<!--")
	}
	return token{}, false, nil
}

// readDelimiter reads a block delimiter comment starting at start. Comments
// that are not delimiters report ok=false and stay part of the markup.
func readDelimiter(doc string, start int) (token, bool, error) {
	i := start + len("<!--")
	j := skipSpace(doc, i)
	if j == i {
		return token{}, false, nil
	}
	i = j

	kind := tokenOpener
	if i < len(doc) && doc[i] == '/' {
		kind = tokenCloser
		i++
	}
	if !strings.HasPrefix(doc[i:], "wp:") {
		return token{}, false, nil
	}
	i += len("wp:")

	name, n := readName(doc[i:])
	if n == 0 {
		return token{}, false, nil
	}
	i += n

	endIdx := strings.Index(doc[i:], "-->")
	if endIdx < 0 {
		return token{}, false, nil
	}
	end := i + endIdx
	body := doc[i:end]

	void := false
	if strings.HasSuffix(body, "/") {
		void = true
		body = body[:len(body)-1]
	}
	trimmed := strings.TrimRight(body, spaceChars)
	if len(trimmed) == len(body) {
		return token{}, false, nil
	}

	var attrs Attributes
	if trimmed != "" {
		rest := strings.TrimLeft(trimmed, spaceChars)
		if len(rest) == len(trimmed) || !strings.HasPrefix(rest, "{") || !strings.HasSuffix(rest, "}") {
			return token{}, false, nil
		}
		parsed, err := ParseAttributes(rest)
		if err != nil {
			return token{}, false, &SyntaxError{Offset: start, Msg: fmt.Sprintf("invalid attributes for %q", name), Err: err}
		}
		attrs = parsed
	}

	if void && kind == tokenOpener {
		kind = tokenVoid
	}
	return token{kind: kind, name: name, attrs: attrs, start: start, end: end + len("-->")}, true, nil
}

const spaceChars = " \t\r\n\f"

func skipSpace(s string, i int) int {
	for i < len(s) && strings.IndexByte(spaceChars, s[i]) >= 0 {
		i++
	}
	return i
}

// readName reads [namespace/]name and returns the qualified name and the
// number of bytes consumed.
func readName(s string) (string, int) {
	n := nameLen(s)
	if n == 0 {
		return "", 0
	}
	if n < len(s) && s[n] == '/' {
		m := nameLen(s[n+1:])
		if m > 0 {
			return s[:n+1+m], n + 1 + m
		}
	}
	return DefaultNamespace + s[:n], n
}

func nameLen(s string) int {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return 0
	}
	i := 1
	for i < len(s) {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' || c == '-' {
			i++
			continue
		}
		break
	}
	return i
}
