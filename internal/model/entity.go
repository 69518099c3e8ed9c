// Package model defines the project/task/subtask records and their
// containment structure. The JSON field names are the stable external
// contract shared by the snapshot file and the API; they intentionally
// differ from the Go field names.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPayload reports a creation payload missing required structural
// fields or carrying values of the wrong shape.
var ErrInvalidPayload = errors.New("invalid payload")

// Attachment is a named link carried by a task.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// Notification is a dated reminder carried by a task. Nothing in the store
// fires these; they are plain data owned by the task.
type Notification struct {
	Kind    string    `json:"tipo"`
	When    time.Time `json:"fecha"`
	Message string    `json:"mensaje"`
}

// UnmarshalJSON defaults the kind to "reminder" when tipo is omitted.
func (n *Notification) UnmarshalJSON(data []byte) error {
	type plain Notification
	aux := plain{Kind: "reminder"}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = Notification(aux)
	return nil
}

// Subtask is the smallest unit of work, owned exclusively by one task.
type Subtask struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      Status         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	History     []HistoryEntry `json:"history"`
}

// Task is a unit of work within a project, owning its subtasks.
type Task struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	StartDate     *time.Time     `json:"fecha_inicio,omitempty"`
	EndDate       *time.Time     `json:"fecha_fin,omitempty"`
	Status        Status         `json:"status"`
	UpdatedAt     time.Time      `json:"updated_at,omitzero"`
	Assignees     []string       `json:"asignados"`
	Priority      string         `json:"priority,omitempty"`
	Dependencies  []string       `json:"dependencies"`
	Tags          []string       `json:"etiquetas"`
	Subtasks      []*Subtask     `json:"subtasks"`
	History       []HistoryEntry `json:"history"`
	Attachments   []Attachment   `json:"adjuntos"`
	Notifications []Notification `json:"notificaciones"`
	CustomFields  map[string]any `json:"campos_personalizados"`
}

// Project is the top-level unit of work, owning its tasks. Its id is
// caller-supplied and immutable after creation.
type Project struct {
	ID           string         `json:"id"`
	Name         string         `json:"nombre"`
	Description  string         `json:"descripcion,omitempty"`
	Status       Status         `json:"status"`
	StartDate    *time.Time     `json:"fecha_inicio,omitempty"`
	EndDate      *time.Time     `json:"fecha_fin,omitempty"`
	Owners       []string       `json:"responsables"`
	Tags         []string       `json:"etiquetas"`
	Tasks        []*Task        `json:"tasks"`
	History      []HistoryEntry `json:"history"`
	CustomFields map[string]any `json:"campos_personalizados"`
}

// External payload keys recognized by each entity. Anything else in a
// creation payload is routed into custom_fields (projects and tasks) or
// dropped (subtasks, which have no custom-fields container).
var projectKeys = keySet(
	"id", "nombre", "descripcion", "status", "fecha_inicio", "fecha_fin",
	"responsables", "etiquetas", "tasks", "history", "campos_personalizados",
)

var taskKeys = keySet(
	"id", "title", "description", "fecha_inicio", "fecha_fin", "status",
	"updated_at", "asignados", "priority", "dependencies", "etiquetas", "subtasks",
	"history", "adjuntos", "notificaciones", "campos_personalizados",
)

var subtaskKeys = keySet(
	"id", "title", "description", "status", "created_at", "updated_at", "history",
)

func keySet(keys ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// NewProject constructs a project from an open payload. Required: id and
// nombre. Status defaults to active. Unrecognized keys land in custom_fields.
func NewProject(data map[string]any) (*Project, error) {
	known, extra := splitKeys(data, projectKeys)

	var p Project
	if err := decodePayload(known, &p); err != nil {
		return nil, fmt.Errorf("%w: project: %v", ErrInvalidPayload, err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: project id is required", ErrInvalidPayload)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%w: project nombre is required", ErrInvalidPayload)
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if !p.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidPayload, p.Status)
	}
	if p.CustomFields == nil {
		p.CustomFields = map[string]any{}
	}
	for k, v := range extra {
		p.CustomFields[k] = v
	}
	return &p, nil
}

// NewTask constructs a task from an open payload. Required: id and title.
// Status defaults to pending.
func NewTask(data map[string]any) (*Task, error) {
	known, extra := splitKeys(data, taskKeys)

	var t Task
	if err := decodePayload(known, &t); err != nil {
		return nil, fmt.Errorf("%w: task: %v", ErrInvalidPayload, err)
	}
	if t.ID == "" {
		return nil, fmt.Errorf("%w: task id is required", ErrInvalidPayload)
	}
	if t.Title == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrInvalidPayload)
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if !t.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidPayload, t.Status)
	}
	if t.CustomFields == nil {
		t.CustomFields = map[string]any{}
	}
	for k, v := range extra {
		t.CustomFields[k] = v
	}
	return &t, nil
}

// NewSubtask constructs a subtask from an open payload. Required: id and
// title. updated_at defaults to created_at; unrecognized keys are dropped.
func NewSubtask(data map[string]any) (*Subtask, error) {
	known, _ := splitKeys(data, subtaskKeys)

	var st Subtask
	if err := decodePayload(known, &st); err != nil {
		return nil, fmt.Errorf("%w: subtask: %v", ErrInvalidPayload, err)
	}
	if st.ID == "" {
		return nil, fmt.Errorf("%w: subtask id is required", ErrInvalidPayload)
	}
	if st.Title == "" {
		return nil, fmt.Errorf("%w: subtask title is required", ErrInvalidPayload)
	}
	if st.Status == "" {
		st.Status = StatusPending
	}
	if !st.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidPayload, st.Status)
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = st.CreatedAt
	}
	return &st, nil
}

func splitKeys(data map[string]any, known map[string]struct{}) (map[string]any, map[string]any) {
	k := make(map[string]any, len(data))
	extra := map[string]any{}
	for key, v := range data {
		if _, ok := known[key]; ok {
			k[key] = v
		} else {
			extra[key] = v
		}
	}
	return k, extra
}

// decodePayload moves an open map into a typed record through the JSON codec,
// so the external field names and time formats apply uniformly.
func decodePayload(data map[string]any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Clone returns a deep copy. Callers of the store never see live pointers
// into the collection.
func (p *Project) Clone() *Project {
	var out Project
	cloneVia(p, &out)
	return &out
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	var out Task
	cloneVia(t, &out)
	return &out
}

// Clone returns a deep copy of the subtask.
func (st *Subtask) Clone() *Subtask {
	var out Subtask
	cloneVia(st, &out)
	return &out
}

func cloneVia(src, dst any) {
	raw, err := json.Marshal(src)
	if err != nil {
		panic(fmt.Sprintf("model: clone marshal: %v", err))
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		panic(fmt.Sprintf("model: clone unmarshal: %v", err))
	}
}
