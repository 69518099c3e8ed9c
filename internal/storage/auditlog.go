// Package storage holds durable side-channels next to the snapshot file.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/taskflow-manager/taskflow/internal/events"
)

// AuditLogger persists mutation events to a JSONL file. It is the only
// record of project deletions, which leave no history entry behind.
type AuditLogger struct {
	path        string
	unsubscribe func()
}

// NewAuditLogger subscribes to all bus events and appends them to path.
func NewAuditLogger(path string, bus *events.Bus) *AuditLogger {
	al := &AuditLogger{path: path}
	al.unsubscribe = bus.Subscribe(al.handleEvent)
	return al
}

// Close unsubscribes the logger from the event bus.
func (al *AuditLogger) Close() {
	if al.unsubscribe != nil {
		al.unsubscribe()
	}
}

func (al *AuditLogger) handleEvent(e events.Event) {
	_ = al.writeEvent(e)
}

func (al *AuditLogger) writeEvent(e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(al.path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(al.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}
