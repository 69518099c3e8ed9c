package model

// Status represents the lifecycle state of a project, task or subtask.
type Status string

const (
	StatusPending    Status = "pending"
	StatusActive     Status = "active"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusClosed     Status = "closed"
	StatusArchived   Status = "archived"
)

// Valid reports whether s is one of the known status tags.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInProgress, StatusCompleted, StatusClosed, StatusArchived:
		return true
	}
	return false
}
