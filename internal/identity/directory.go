package identity

import (
	"sync"
)

// Directory remembers the user records captured at login so protected
// requests can recover the backend token and permissions from just a user
// ID. Records are overwritten on each login.
type Directory struct {
	mu      sync.RWMutex
	records map[string]UserRecord
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{records: make(map[string]UserRecord)}
}

// Put stores or replaces the record for a user.
func (d *Directory) Put(record UserRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records[record.ID] = record
}

// Get returns the record for a user ID.
func (d *Directory) Get(userID string) (UserRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	record, ok := d.records[userID]
	return record, ok
}
