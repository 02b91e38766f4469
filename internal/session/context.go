package session

import (
	"context"

	"admin-console/internal/token"
)

type ctxKey struct{}

// WithIdentity stores the authenticated identity in the request context.
func WithIdentity(ctx context.Context, id token.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity placed by the session middleware.
func FromContext(ctx context.Context) (token.Identity, bool) {
	if v := ctx.Value(ctxKey{}); v != nil {
		if id, ok := v.(token.Identity); ok && id.ID != "" {
			return id, true
		}
	}
	return token.Identity{}, false
}
