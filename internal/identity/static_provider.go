package identity

import (
	"context"
	"crypto/subtle"

	"remotemcp/pkg/logging"
)

// StaticProvider accepts a single fixed credential pair. It exists so the
// full authorization flow can be exercised without the account backend and
// is only wired in when test mode is enabled in configuration.
type StaticProvider struct {
	username string
	password string
	record   UserRecord
}

// NewStaticProvider creates a provider that accepts exactly one
// username/password pair and returns the given record for it.
func NewStaticProvider(username, password string, record UserRecord) *StaticProvider {
	return &StaticProvider{username: username, password: password, record: record}
}

// NewTestProvider returns the standard test fixture account.
func NewTestProvider() *StaticProvider {
	return NewStaticProvider("test", "test123", UserRecord{
		ID:          "4001",
		Username:    "test",
		Email:       "test@academiadepolitie.com",
		Name:        "Test User",
		Permissions: []string{"profile", "search", "interactive", "progress"},
	})
}

// Verify checks the credentials against the fixed pair.
func (p *StaticProvider) Verify(_ context.Context, username, password string) (*UserRecord, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(p.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(p.password)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	logging.Info("Identity", "Test user %s authenticated", p.username)
	record := p.record
	return &record, nil
}

// Chain tries providers in order and returns the first success. When every
// provider fails, the last provider's error is returned.
type Chain []Provider

// Verify implements Provider.
func (c Chain) Verify(ctx context.Context, username, password string) (*UserRecord, error) {
	var lastErr error = ErrInvalidCredentials
	for _, p := range c {
		record, err := p.Verify(ctx, username, password)
		if err == nil {
			return record, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
