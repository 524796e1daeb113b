// Package auth provides bearer-token authentication for the ItemVault API.
// It resolves the Authorization header of an inbound request into a User:
// the token is verified, its subject is loaded from the store, and the user
// is attached to the request context for handlers to consume.
package auth

import (
	"context"

	"github.com/itemvault-io/itemvault/internal/domain"
)

// contextKey is a private type for context keys defined in this package.
type contextKey struct{}

// userContextKey is the key under which the resolved user is stored.
var userContextKey = contextKey{}

// WithUser returns a context carrying the resolved user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user resolved by the middleware, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}
