package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DefaultNamespace is implied when a delimiter omits the namespace.
const DefaultNamespace = "core/"

// Block is a node in a block document.
type Block struct {
	// Name is the fully qualified block name. Empty for freeform HTML.
	Name         string
	Attrs        Attributes
	InnerBlocks  []Block
	InnerHTML    string
	InnerContent []Chunk
}

// Chunk is a piece of a block's inner content: either markup or a
// placeholder for the next inner block.
type Chunk struct {
	Text  string
	Inner bool
}

// TextChunk returns a markup chunk.
func TextChunk(text string) Chunk {
	return Chunk{Text: text}
}

// InnerChunk returns an inner block placeholder.
func InnerChunk() Chunk {
	return Chunk{Inner: true}
}

// IsFreeform reports whether the block is plain HTML outside any delimiter.
func (b Block) IsFreeform() bool {
	return b.Name == ""
}

// Freeform builds a freeform block holding html.
func Freeform(html string) Block {
	return Block{InnerHTML: html, InnerContent: []Chunk{TextChunk(html)}}
}

// Attribute is a single block attribute with its raw JSON value.
type Attribute struct {
	Key   string
	Value json.RawMessage
}

// Attributes keeps block attributes in document order.
type Attributes []Attribute

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	return a.index(key) >= 0
}

// Get returns the raw JSON value for key.
func (a Attributes) Get(key string) (json.RawMessage, bool) {
	idx := a.index(key)
	if idx < 0 {
		return nil, false
	}
	return a[idx].Value, true
}

// String returns the value for key when it is a JSON string.
func (a Attributes) String(key string) (string, bool) {
	raw, ok := a.Get(key)
	if !ok {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

// Set encodes value and stores it under key, keeping the position of an
// existing key.
func (a *Attributes) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode attribute %q: %w", key, err)
	}
	if idx := a.index(key); idx >= 0 {
		(*a)[idx].Value = raw
		return nil
	}
	*a = append(*a, Attribute{Key: key, Value: raw})
	return nil
}

// Delete removes key and reports whether it was present.
func (a *Attributes) Delete(key string) bool {
	idx := a.index(key)
	if idx < 0 {
		return false
	}
	*a = append((*a)[:idx], (*a)[idx+1:]...)
	return true
}

// Keys returns attribute names in order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for _, attr := range a {
		keys = append(keys, attr.Key)
	}
	return keys
}

// MarshalJSON encodes the attributes as a compact JSON object in order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(attr.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value := attr.Value
		if len(value) == 0 {
			value = json.RawMessage("null")
		}
		if err := json.Compact(&buf, value); err != nil {
			return nil, fmt.Errorf("attribute %q: %w", attr.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order. Repeated keys keep
// the first position and the last value.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAttributes(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Attributes) index(key string) int {
	for i, attr := range a {
		if attr.Key == key {
			return i
		}
	}
	return -1
}

// ParseAttributes decodes a JSON object into ordered attributes.
func ParseAttributes(raw string) (Attributes, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("attributes must be a JSON object")
	}

	attrs := Attributes{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if idx := attrs.index(key); idx >= 0 {
			attrs[idx].Value = value
			continue
		}
		attrs = append(attrs, Attribute{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after attributes")
	}
	return attrs, nil
}
