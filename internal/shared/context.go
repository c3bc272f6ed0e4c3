package shared

import "context"

// Actor identifies the authenticated caller for the duration of one request.
// Role and ProjectID come from the caller's token claims and are not
// re-derived from storage mid-request.
type Actor struct {
	ID        string
	Role      string
	ProjectID string
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context. The boolean reports
// whether an authenticated actor is present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	if !ok || actor.ID == "" {
		return Actor{}, false
	}
	return actor, true
}
