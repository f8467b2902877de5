package export

import (
	"context"
	"fmt"
)

// CapabilityGuard allows actors holding Capability.
type CapabilityGuard struct {
	Capability string
}

func (g CapabilityGuard) AuthorizeExport(ctx context.Context, actor Actor) error {
	_ = ctx
	capability := g.Capability
	if capability == "" {
		capability = DefaultCapability
	}
	if !actor.Can(capability) {
		return NewError(KindAuthz, fmt.Sprintf("capability %q required", capability), nil)
	}
	return nil
}

// GuardFunc adapts a function to a Guard.
type GuardFunc func(ctx context.Context, actor Actor) error

func (f GuardFunc) AuthorizeExport(ctx context.Context, actor Actor) error {
	if f == nil {
		return nil
	}
	return f(ctx, actor)
}
