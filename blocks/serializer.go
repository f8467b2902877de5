package blocks

import (
	"fmt"
	"strings"
)

// Serialize renders blocks back to document markup. It fails when a block
// carries attribute values that are not valid JSON.
func Serialize(list []Block) (string, error) {
	var b strings.Builder
	for _, block := range list {
		if err := writeBlock(&b, block); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func writeBlock(b *strings.Builder, block Block) error {
	content, err := innerContent(block)
	if err != nil {
		return err
	}
	if block.IsFreeform() {
		b.WriteString(content)
		return nil
	}

	name := strings.TrimPrefix(block.Name, DefaultNamespace)
	b.WriteString("<!-- wp:")
	b.WriteString(name)
	b.WriteByte(' ')
	if len(block.Attrs) > 0 {
		attrs, err := SerializeAttributes(block.Attrs)
		if err != nil {
			return fmt.Errorf("block %q: %w", block.Name, err)
		}
		b.WriteString(attrs)
		b.WriteByte(' ')
	}
	if content == "" {
		b.WriteString("/-->")
		return nil
	}
	b.WriteString("-->")
	b.WriteString(content)
	b.WriteString("<!-- /wp:")
	b.WriteString(name)
	b.WriteString(" -->")
	return nil
}

func innerContent(block Block) (string, error) {
	if len(block.InnerContent) == 0 {
		return block.InnerHTML, nil
	}
	var b strings.Builder
	next := 0
	for _, chunk := range block.InnerContent {
		if !chunk.Inner {
			b.WriteString(chunk.Text)
			continue
		}
		if next < len(block.InnerBlocks) {
			if err := writeBlock(&b, block.InnerBlocks[next]); err != nil {
				return "", err
			}
			next++
		}
	}
	return b.String(), nil
}

// SerializeAttributes encodes attributes for a delimiter comment. Inside
// strings, "--", quotes and HTML special characters are unicode escaped so the
// comment cannot be terminated early.
func SerializeAttributes(attrs Attributes) (string, error) {
	data, err := attrs.MarshalJSON()
	if err != nil {
		return "", err
	}
	return escapeCommentJSON(data), nil
}

func escapeCommentJSON(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}
		switch c {
		case '\\':
			if i+1 < len(data) && data[i+1] == '"' {
				b.WriteString(`\u0022`)
			} else if i+1 < len(data) {
				b.WriteByte(c)
				b.WriteByte(data[i+1])
			} else {
				b.WriteByte(c)
			}
			i++
		case '"':
			inString = false
			b.WriteByte(c)
		case '-':
			if i+1 < len(data) && data[i+1] == '-' {
				b.WriteString(`\u002d\u002d`)
				i++
				continue
			}
			b.WriteByte(c)
		case '<':
			b.WriteString(`\u003c`)
		case '>':
			b.WriteString(`\u003e`)
		case '&':
			b.WriteString(`\u0026`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
