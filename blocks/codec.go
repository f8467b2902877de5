package blocks

// Codec parses and serializes block documents.
type Codec struct{}

func (Codec) Parse(content string) ([]Block, error) {
	return Parse(content)
}

func (Codec) Serialize(list []Block) (string, error) {
	return Serialize(list)
}

// Walk visits every block depth first. Returning false from fn skips the
// block's children.
func Walk(list []Block, fn func(b *Block) bool) {
	for i := range list {
		if fn(&list[i]) {
			Walk(list[i].InnerBlocks, fn)
		}
	}
}
