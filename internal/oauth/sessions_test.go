package oauth

import (
	"strings"
	"testing"
	"time"
)

func TestSessionStore_CreateAndGet(t *testing.T) {
	ss := NewSessionStore(30 * 24 * time.Hour)

	session, err := ss.Create("4001", "test", false)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if !strings.HasPrefix(session.ID, "sess_") {
		t.Errorf("Expected session ID with sess_ prefix, got %q", session.ID)
	}

	got, ok := ss.Get(session.ID)
	if !ok {
		t.Fatal("Expected session to be found")
	}
	if got.UserID != "4001" || got.Username != "test" {
		t.Errorf("Unexpected session contents: %+v", got)
	}

	ttl := session.ExpiresAt.Sub(session.CreatedAt)
	if ttl != SessionTTL {
		t.Errorf("Expected TTL %v, got %v", SessionTTL, ttl)
	}
}

func TestSessionStore_RememberExtendsTTL(t *testing.T) {
	rememberTTL := 30 * 24 * time.Hour
	ss := NewSessionStore(rememberTTL)

	session, err := ss.Create("4001", "test", true)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	ttl := session.ExpiresAt.Sub(session.CreatedAt)
	if ttl != rememberTTL {
		t.Errorf("Expected TTL %v, got %v", rememberTTL, ttl)
	}
}

func TestSessionStore_LazyEviction(t *testing.T) {
	ss := NewSessionStore(30 * 24 * time.Hour)

	session, err := ss.Create("4001", "test", false)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	ss.mu.Lock()
	ss.sessions[session.ID].ExpiresAt = time.Now().Add(-time.Second)
	ss.mu.Unlock()

	if _, ok := ss.Get(session.ID); ok {
		t.Error("Expected expired session to not be returned")
	}
	if count := ss.Count(); count != 0 {
		t.Errorf("Expected expired session to be evicted on lookup, got %d remaining", count)
	}
}

func TestSessionStore_Destroy(t *testing.T) {
	ss := NewSessionStore(30 * 24 * time.Hour)

	session, err := ss.Create("4001", "test", false)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	ss.Destroy(session.ID)
	if _, ok := ss.Get(session.ID); ok {
		t.Error("Expected destroyed session to not be found")
	}

	// Destroying an unknown session is a no-op.
	ss.Destroy("sess_doesnotexist")
}
