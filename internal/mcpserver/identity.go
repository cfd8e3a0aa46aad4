package mcpserver

import (
	"context"
)

// Identity is the authenticated caller of a protected MCP request, as
// resolved from the bearer token and the user record captured at login.
type Identity struct {
	UserID      string
	ClientID    string
	Username    string
	APIToken    string
	Permissions []string
	Scope       string
}

type identityContextKey struct{}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the authenticated identity, if present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
