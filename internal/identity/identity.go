// Package identity is the authentication collaborator boundary. The
// platform consumes it through the Provider interface; the in-memory
// implementation here backs tests and single-node deployments.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrEmailExists is returned when registering an email that is taken.
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown emails and bad passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated is returned for missing or expired tokens.
	ErrUnauthenticated = errors.New("not authenticated")
)

// Identity is the minimal identity the platform needs: a stable unique id
// and an email.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// ChangeListener fires on sign-in and sign-out. A nil identity means
// signed out.
type ChangeListener func(id *Identity)

// Provider issues and verifies identities. Login returns an opaque bearer
// token alongside the identity; Verify resolves a token back.
type Provider interface {
	Register(ctx context.Context, email, password, displayName string) (*Identity, error)
	Login(ctx context.Context, email, password string) (*Identity, string, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*Identity, error)
	OnChange(l ChangeListener) func()
}
