package domain

import "context"

// Identity is a verified caller, before any tenant scoping.
type Identity struct {
	UserID string
	Email  string
}

// IdentityProvider verifies a raw bearer credential and returns the
// identity it proves. Implementations must not consult tenant state.
type IdentityProvider interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
