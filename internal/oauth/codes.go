package oauth

import (
	"sync"
	"time"

	"remotemcp/pkg/logging"
)

const (
	// CodeTTL is the lifetime of an authorization code.
	CodeTTL = 10 * time.Minute

	codeSweepInterval = time.Minute
)

// CodeStore holds pending authorization codes. Codes are single use: a code
// is removed from the store the moment it is looked up, whether or not
// redemption ultimately succeeds.
type CodeStore struct {
	mu    sync.Mutex
	codes map[string]*AuthorizationCode

	stopSweep chan struct{}
	sweepOnce sync.Once
}

// NewCodeStore creates a code store and starts its expiry sweeper.
func NewCodeStore() *CodeStore {
	cs := &CodeStore{
		codes:     make(map[string]*AuthorizationCode),
		stopSweep: make(chan struct{}),
	}
	go cs.sweepLoop()
	return cs
}

// Issue mints a new authorization code for the given user, client, redirect
// URI, and PKCE challenge. An empty challenge records a legacy public flow
// for which Redeem skips PKCE verification.
func (cs *CodeStore) Issue(userID, clientID, redirectURI, codeChallenge string) (*AuthorizationCode, error) {
	raw, err := newRawToken("code_")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	code := &AuthorizationCode{
		Code:          raw,
		UserID:        userID,
		ClientID:      clientID,
		RedirectURI:   redirectURI,
		CodeChallenge: codeChallenge,
		CreatedAt:     now,
		ExpiresAt:     now.Add(CodeTTL),
	}

	cs.mu.Lock()
	cs.codes[raw] = code
	cs.mu.Unlock()

	logging.Debug("OAuth", "Issued authorization code for user %s, client %s", userID, clientID)
	return code, nil
}

// Redeem exchanges a code for its record, enforcing single use, expiry,
// client and redirect URI binding, and the PKCE challenge. The code is
// taken out of the store under the lock before any check runs, so two
// concurrent redemptions of the same code cannot both succeed.
func (cs *CodeStore) Redeem(rawCode, clientID, redirectURI, codeVerifier string) (*AuthorizationCode, error) {
	cs.mu.Lock()
	code, ok := cs.codes[rawCode]
	if ok {
		delete(cs.codes, rawCode)
	}
	cs.mu.Unlock()

	if !ok {
		return nil, ErrInvalidGrant("authorization code is invalid or has already been used")
	}
	if time.Now().After(code.ExpiresAt) {
		return nil, ErrInvalidGrant("authorization code has expired")
	}
	if code.ClientID != clientID {
		// A mismatched client is an authentication failure, not a grant
		// failure, so a stolen code cannot probe for its issuing client.
		return nil, ErrInvalidClient("authorization code was issued to a different client")
	}
	if code.RedirectURI != redirectURI {
		return nil, ErrInvalidGrant("redirect_uri does not match the authorization request")
	}
	if code.CodeChallenge != "" {
		if codeVerifier == "" {
			return nil, ErrInvalidGrant("code_verifier is required")
		}
		if !VerifyChallenge(codeVerifier, code.CodeChallenge) {
			return nil, ErrInvalidGrant("code_verifier does not match code_challenge")
		}
	}

	logging.Debug("OAuth", "Redeemed authorization code for user %s, client %s", code.UserID, clientID)
	return code, nil
}

// Count returns the number of pending codes.
func (cs *CodeStore) Count() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.codes)
}

// Close stops the background sweeper.
func (cs *CodeStore) Close() {
	cs.sweepOnce.Do(func() { close(cs.stopSweep) })
}

func (cs *CodeStore) sweepLoop() {
	ticker := time.NewTicker(codeSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cs.sweepExpired()
		case <-cs.stopSweep:
			return
		}
	}
}

func (cs *CodeStore) sweepExpired() {
	now := time.Now()
	removed := 0

	cs.mu.Lock()
	for raw, code := range cs.codes {
		if now.After(code.ExpiresAt) {
			delete(cs.codes, raw)
			removed++
		}
	}
	cs.mu.Unlock()

	if removed > 0 {
		logging.Debug("OAuth", "Swept %d expired authorization codes", removed)
	}
}
