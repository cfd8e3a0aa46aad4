package identity

import (
	"context"
	"errors"
)

// UserRecord is an authenticated user as returned by the identity backend.
type UserRecord struct {
	ID       string
	Username string
	Email    string
	Name     string

	// APIToken is the backend-issued JWT forwarded to downstream data
	// endpoints on the user's behalf.
	APIToken string

	// Permissions is extracted from APIToken claims when a JWT secret is
	// configured, empty otherwise.
	Permissions []string
}

// Provider verifies end-user credentials.
type Provider interface {
	Verify(ctx context.Context, username, password string) (*UserRecord, error)
}

// Sentinel errors. ErrInvalidCredentials means the backend rejected the
// credentials; ErrServiceUnavailable means the backend could not be reached
// or returned something unusable, and the caller should not treat the
// credentials as wrong.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrServiceUnavailable = errors.New("identity service unavailable")
)
