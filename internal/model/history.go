package model

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is an immutable audit record of one mutation. Entries are
// append-only; nothing in the system edits or removes them.
type HistoryEntry struct {
	ID        string         `json:"id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	User      string         `json:"user"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewHistoryEntry creates a history entry stamped with the current UTC time.
func NewHistoryEntry(action, user string, details map[string]any) HistoryEntry {
	return HistoryEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Action:    action,
		User:      user,
		Details:   details,
	}
}
