package actorctx

import "context"

type ctxKey struct{}

// Actor is the authenticated caller carried on a request context.
type Actor struct {
	UserID string
	Email  string
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func From(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)

	return a, ok && a.UserID != ""
}

func UserIDFrom(ctx context.Context) (string, bool) {
	a, ok := From(ctx)

	return a.UserID, ok
}
