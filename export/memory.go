package export

import (
	"context"
	"sync"
)

// MemorySource keeps templates in memory.
type MemorySource struct {
	mu    sync.RWMutex
	items []Template
}

// NewMemorySource creates an in-memory template source.
func NewMemorySource(items ...Template) *MemorySource {
	src := &MemorySource{}
	src.Add(items...)
	return src
}

// Add appends templates to the source.
func (s *MemorySource) Add(items ...Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
}

// Templates returns templates matching query in insertion order.
func (s *MemorySource) Templates(ctx context.Context, query TemplateQuery) ([]Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Template, 0, len(s.items))
	for _, item := range s.items {
		if query.Matches(item) {
			out = append(out, item)
		}
	}
	return out, nil
}
