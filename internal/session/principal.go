package session

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
)

// Principal is the authenticated identity of a request. It is built only
// from a verified token and the stored user row, never from request fields.
type Principal struct {
	ID    string      `json:"id"`
	Role  access.Role `json:"role"`
	Email string      `json:"email"`
}

type principalContextKey struct{}

// WithPrincipal stores p on the context for downstream handlers.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// FromContext retrieves the principal set by Middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
