package oauth

import (
	"sync"
	"time"

	"remotemcp/pkg/logging"
)

const (
	// TokenTTL is the lifetime of an access token.
	TokenTTL = 24 * time.Hour

	tokenSweepInterval = 5 * time.Minute
)

// TokenStore holds issued access tokens. Tokens are opaque handles into this
// store; everything the resource server needs to know about a bearer is
// looked up here at request time.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*AccessToken

	stopSweep chan struct{}
	sweepOnce sync.Once
}

// NewTokenStore creates a token store and starts its expiry sweeper.
func NewTokenStore() *TokenStore {
	ts := &TokenStore{
		tokens:    make(map[string]*AccessToken),
		stopSweep: make(chan struct{}),
	}
	go ts.sweepLoop()
	return ts
}

// Issue mints an access token for the user and client, bound to the given
// audience (the exact resource URL the token may be presented to).
func (ts *TokenStore) Issue(userID, clientID, audience, scope string) (*AccessToken, error) {
	raw, err := newRawToken("tok_")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	token := &AccessToken{
		Token:     raw,
		UserID:    userID,
		ClientID:  clientID,
		Audience:  audience,
		Scope:     scope,
		CreatedAt: now,
		ExpiresAt: now.Add(TokenTTL),
	}

	ts.mu.Lock()
	ts.tokens[raw] = token
	ts.mu.Unlock()

	logging.Debug("OAuth", "Issued access token for user %s, client %s, audience %s", userID, clientID, audience)
	return token, nil
}

// Validate checks a presented bearer token against the resource URL it was
// presented to. Unknown, expired, and wrong-audience tokens all fail; the
// distinction is logged but not exposed to the caller, who sees a uniform
// invalid_token.
func (ts *TokenStore) Validate(rawToken, resource string) (*Claims, error) {
	ts.mu.RLock()
	token, ok := ts.tokens[rawToken]
	ts.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidToken("token is not recognized")
	}
	if time.Now().After(token.ExpiresAt) {
		ts.mu.Lock()
		delete(ts.tokens, rawToken)
		ts.mu.Unlock()
		logging.Debug("OAuth", "Rejected expired token for user %s", token.UserID)
		return nil, ErrInvalidToken("token has expired")
	}
	if token.Audience != resource {
		logging.Warn("OAuth", "Rejected token presented to %s but bound to %s", resource, token.Audience)
		return nil, ErrInvalidToken("token audience does not match this resource")
	}

	return &Claims{
		UserID:   token.UserID,
		ClientID: token.ClientID,
		Audience: token.Audience,
		Scope:    token.Scope,
	}, nil
}

// Revoke removes a token from the store.
func (ts *TokenStore) Revoke(rawToken string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, ok := ts.tokens[rawToken]; !ok {
		return false
	}
	delete(ts.tokens, rawToken)
	return true
}

// Count returns the number of live tokens.
func (ts *TokenStore) Count() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.tokens)
}

// Close stops the background sweeper.
func (ts *TokenStore) Close() {
	ts.sweepOnce.Do(func() { close(ts.stopSweep) })
}

func (ts *TokenStore) sweepLoop() {
	ticker := time.NewTicker(tokenSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ts.sweepExpired()
		case <-ts.stopSweep:
			return
		}
	}
}

func (ts *TokenStore) sweepExpired() {
	now := time.Now()
	removed := 0

	ts.mu.Lock()
	for raw, token := range ts.tokens {
		if now.After(token.ExpiresAt) {
			delete(ts.tokens, raw)
			removed++
		}
	}
	ts.mu.Unlock()

	if removed > 0 {
		logging.Debug("OAuth", "Swept %d expired access tokens", removed)
	}
}
