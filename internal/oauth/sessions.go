package oauth

import (
	"sync"
	"time"

	"remotemcp/pkg/logging"
)

const (
	// SessionTTL is the lifetime of a browser session without "remember me".
	SessionTTL = time.Hour

	// SessionCookieName is the name of the session cookie set after login.
	SessionCookieName = "mcp_session"
)

// Session is a logged-in browser session backing the consent flow.
type Session struct {
	ID        string
	UserID    string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore holds browser sessions. Expired sessions are evicted lazily
// on lookup rather than by a sweeper; the session population is small and
// every access path goes through Get.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	rememberTTL time.Duration
}

// NewSessionStore creates a session store. rememberTTL is the extended
// lifetime applied when the user checks "remember me" at login.
func NewSessionStore(rememberTTL time.Duration) *SessionStore {
	return &SessionStore{
		sessions:    make(map[string]*Session),
		rememberTTL: rememberTTL,
	}
}

// Create mints a session for an authenticated user.
func (ss *SessionStore) Create(userID, username string, remember bool) (*Session, error) {
	id, err := newRawToken("sess_")
	if err != nil {
		return nil, err
	}

	ttl := SessionTTL
	if remember {
		ttl = ss.rememberTTL
	}

	now := time.Now()
	session := &Session{
		ID:        id,
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	ss.mu.Lock()
	ss.sessions[id] = session
	ss.mu.Unlock()

	logging.Debug("OAuth", "Created session for user %s (remember=%t)", userID, remember)
	return session, nil
}

// Get returns the session for the given ID, or false if it does not exist
// or has expired. Expired sessions are removed on the way out.
func (ss *SessionStore) Get(id string) (*Session, bool) {
	ss.mu.RLock()
	session, ok := ss.sessions[id]
	ss.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(session.ExpiresAt) {
		ss.mu.Lock()
		delete(ss.sessions, id)
		ss.mu.Unlock()
		return nil, false
	}
	return session, true
}

// Destroy removes a session, ending the login.
func (ss *SessionStore) Destroy(id string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, id)
}

// Count returns the number of sessions, including any not yet evicted
// expired ones.
func (ss *SessionStore) Count() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}
