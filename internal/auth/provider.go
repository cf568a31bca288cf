// Package auth integrates the external identity provider. The server never
// mints or verifies credentials itself; every token check is delegated to
// the provider over HTTP.
package auth

import "context"

// Identity is the provider's view of an account.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Provider is the identity backend the API server talks to.
// Implementations must be safe for concurrent use.
type Provider interface {
	// SignUp registers a new account and returns its identity.
	SignUp(ctx context.Context, email, password, name string) (*Identity, error)

	// Introspect resolves a bearer token to the identity it belongs to.
	// Returns ErrTokenInvalid for tokens the provider rejects.
	Introspect(ctx context.Context, token string) (*Identity, error)
}
