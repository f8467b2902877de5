package exporthttp

import (
	"context"
	"net/http"

	"github.com/goliatone/go-site-export/export"
)

type actorContextKey struct{}

// WithActor stores the requesting user in ctx.
func WithActor(ctx context.Context, actor export.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the user stored by WithActor.
func ActorFromContext(ctx context.Context) (export.Actor, bool) {
	if ctx == nil {
		return export.Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(export.Actor)
	return actor, ok
}

// ActorMiddleware resolves the user for each request and stores it in the
// request context. Requests the resolver rejects continue without an actor
// and are refused by the export guard.
func ActorMiddleware(resolve func(r *http.Request) (export.Actor, bool), next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if resolve != nil {
			if actor, ok := resolve(r); ok {
				r = r.WithContext(WithActor(r.Context(), actor))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ContextActorProvider reads the user placed in context by WithActor or
// ActorMiddleware.
type ContextActorProvider struct{}

func (ContextActorProvider) FromContext(ctx context.Context) (export.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.ID == "" {
		return export.Actor{}, export.NewError(export.KindAuthz, "no authenticated user", nil)
	}
	return actor, nil
}

// StaticActorProvider resolves every request to the same user.
type StaticActorProvider struct {
	Actor export.Actor
}

func (p StaticActorProvider) FromContext(ctx context.Context) (export.Actor, error) {
	_ = ctx
	if p.Actor.ID == "" {
		return export.Actor{}, export.NewError(export.KindAuthz, "no authenticated user", nil)
	}
	return p.Actor, nil
}
