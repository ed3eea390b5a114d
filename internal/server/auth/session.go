package auth

import (
	"context"

	"github.com/dmitrijs2005/gophdiary/internal/common"
)

type ctxKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext returns the user id stored by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// ContextSession resolves the current user from the request context.
type ContextSession struct{}

// CurrentUserID returns common.ErrUnauthenticated when no user is attached.
func (ContextSession) CurrentUserID(ctx context.Context) (string, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return "", common.ErrUnauthenticated
	}
	return id, nil
}

// StaticSession always resolves to the same user. Used by the admin CLI,
// which acts on behalf of a user looked up by email.
type StaticSession string

func (s StaticSession) CurrentUserID(context.Context) (string, error) {
	if s == "" {
		return "", common.ErrUnauthenticated
	}
	return string(s), nil
}
