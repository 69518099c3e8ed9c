package events

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Type identifies the kind of mutation an event describes.
type Type string

const (
	ProjectCreated Type = "project.created"
	ProjectUpdated Type = "project.updated"
	ProjectClosed  Type = "project.closed"
	ProjectDeleted Type = "project.deleted"

	TaskCreated Type = "task.created"
	TaskUpdated Type = "task.updated"
	TaskDeleted Type = "task.deleted"

	SubtaskCreated Type = "subtask.created"
	SubtaskUpdated Type = "subtask.updated"
	SubtaskDeleted Type = "subtask.deleted"
)

// Event describes one committed store mutation. Events are emitted after the
// snapshot write succeeds, so subscribers only ever observe durable state.
type Event struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	ProjectID string         `json:"project_id"`
	User      string         `json:"user"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// eventIDCounter is used to generate sequential event IDs.
var eventIDCounter uint64

// NewEvent creates an event stamped with the current time.
func NewEvent(t Type, projectID, user string, payload map[string]any) Event {
	return Event{
		ID:        generateEventID(),
		Type:      t,
		ProjectID: projectID,
		User:      user,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

func generateEventID() string {
	seq := atomic.AddUint64(&eventIDCounter, 1)
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), seq)
}
