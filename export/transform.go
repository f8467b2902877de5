package export

import (
	"github.com/goliatone/go-site-export/blocks"
)

// Transformer strips an attribute from one block type in serialized content.
type Transformer struct {
	Codec     BlockCodec
	BlockName string
	Attribute string
	// Strict fails on unparsable content instead of passing it through.
	Strict bool
	Logger Logger
}

// NewTransformer creates a transformer that removes the theme attribute from
// template part blocks.
func NewTransformer(codec BlockCodec) *Transformer {
	if codec == nil {
		codec = blocks.Codec{}
	}
	return &Transformer{
		Codec:     codec,
		BlockName: TemplatePartBlock,
		Attribute: ThemeAttribute,
		Logger:    NopLogger{},
	}
}

// RemoveThemeAttribute removes the attribute from every matching block,
// nested blocks included. When nothing is removed the original content is
// returned untouched.
func (t *Transformer) RemoveThemeAttribute(content string) (string, error) {
	if t == nil {
		return content, nil
	}
	codec := t.Codec
	if codec == nil {
		codec = blocks.Codec{}
	}

	list, err := codec.Parse(content)
	if err != nil {
		return t.unchanged(content, "template content could not be parsed", err)
	}

	if !removeAttribute(list, t.blockName(), t.attribute()) {
		return content, nil
	}
	out, err := codec.Serialize(list)
	if err != nil {
		return t.unchanged(content, "template content could not be serialized", err)
	}
	return out, nil
}

// unchanged returns content as is, or a validation error in strict mode.
func (t *Transformer) unchanged(content, msg string, err error) (string, error) {
	if t.Strict {
		return "", NewError(KindValidation, msg, err)
	}
	t.logger().Warnf("%s, left unchanged: %v", msg, err)
	return content, nil
}

func removeAttribute(list []blocks.Block, blockName, attribute string) bool {
	removed := false
	blocks.Walk(list, func(b *blocks.Block) bool {
		if b.Name == blockName && b.Attrs.Delete(attribute) {
			removed = true
		}
		return true
	})
	return removed
}

func (t *Transformer) blockName() string {
	if t.BlockName == "" {
		return TemplatePartBlock
	}
	return t.BlockName
}

func (t *Transformer) attribute() string {
	if t.Attribute == "" {
		return ThemeAttribute
	}
	return t.Attribute
}

func (t *Transformer) logger() Logger {
	if t.Logger == nil {
		return NopLogger{}
	}
	return t.Logger
}
