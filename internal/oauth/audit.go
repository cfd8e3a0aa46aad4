package oauth

import (
	"time"

	"github.com/google/uuid"

	"remotemcp/pkg/logging"
)

// Audit event types for the authorization flow.
const (
	AuditClientRegistered = "client_registered"
	AuditLoginSucceeded   = "login_succeeded"
	AuditLoginFailed      = "login_failed"
	AuditCodeIssued       = "code_issued"
	AuditTokenIssued      = "token_issued"
	AuditTokenRejected    = "token_rejected"
)

// AuditEvent is a single security-relevant event in the authorization flow.
type AuditEvent struct {
	ID        string
	Type      string
	UserID    string
	ClientID  string
	Detail    string
	Timestamp time.Time
}

// Auditor records authorization events to the structured log under the
// Audit subsystem. Each event gets a unique ID so log lines can be
// correlated with support reports.
type Auditor struct{}

// NewAuditor creates an auditor.
func NewAuditor() *Auditor {
	return &Auditor{}
}

// Record logs an audit event and returns it.
func (a *Auditor) Record(eventType, userID, clientID, detail string) AuditEvent {
	event := AuditEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		ClientID:  clientID,
		Detail:    detail,
		Timestamp: time.Now(),
	}

	logging.Info("Audit", "event=%s id=%s user=%s client=%s detail=%q",
		event.Type, event.ID, event.UserID, event.ClientID, event.Detail)
	return event
}
