package store

import (
	"encoding/json"
	"fmt"

	"github.com/taskflow-manager/taskflow/internal/model"
)

// Partial updates are dispatched through explicit per-entity allow-lists.
// Update keys use the internal field names (name, start_date, owners, ...),
// not the external JSON aliases. Keys naming identity, containment or
// history fields are rejected; truly unknown keys go to custom_fields on
// projects and tasks, and are dropped on subtasks.
//
// Each applier works on a deep copy and swaps it in only once every key has
// been accepted, so a rejected update leaves the entity exactly as it was.

func applyProjectUpdates(p *model.Project, updates map[string]any) error {
	next := p.Clone()
	for key, value := range updates {
		var err error
		switch key {
		case "id", "history", "tasks":
			return fmt.Errorf("%w: field %q cannot be changed via update", ErrValidation, key)
		case "name":
			err = assign(&next.Name, value)
		case "description":
			err = assign(&next.Description, value)
		case "status":
			err = assignStatus(&next.Status, value)
		case "start_date":
			err = assign(&next.StartDate, value)
		case "end_date":
			err = assign(&next.EndDate, value)
		case "owners":
			err = assign(&next.Owners, value)
		case "tags":
			err = assign(&next.Tags, value)
		case "custom_fields":
			err = assign(&next.CustomFields, value)
		default:
			if next.CustomFields == nil {
				next.CustomFields = map[string]any{}
			}
			next.CustomFields[key] = value
		}
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrValidation, key, err)
		}
	}

	// Status always reflects the last explicit value in updates, even if the
	// generic pass already set it.
	if v, ok := updates["status"]; ok {
		if err := assignStatus(&next.Status, v); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrValidation, "status", err)
		}
	}

	*p = *next
	return nil
}

func applyTaskUpdates(t *model.Task, updates map[string]any) error {
	next := t.Clone()
	for key, value := range updates {
		var err error
		switch key {
		case "id", "history", "subtasks", "created_at", "updated_at":
			return fmt.Errorf("%w: field %q cannot be changed via update", ErrValidation, key)
		case "title":
			err = assign(&next.Title, value)
		case "description":
			err = assign(&next.Description, value)
		case "status":
			err = assignStatus(&next.Status, value)
		case "start_date":
			err = assign(&next.StartDate, value)
		case "end_date":
			err = assign(&next.EndDate, value)
		case "assignees":
			err = assign(&next.Assignees, value)
		case "priority":
			err = assign(&next.Priority, value)
		case "dependencies":
			err = assign(&next.Dependencies, value)
		case "tags":
			err = assign(&next.Tags, value)
		case "attachments":
			err = assign(&next.Attachments, value)
		case "notifications":
			err = assign(&next.Notifications, value)
		case "custom_fields":
			err = assign(&next.CustomFields, value)
		default:
			if next.CustomFields == nil {
				next.CustomFields = map[string]any{}
			}
			next.CustomFields[key] = value
		}
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrValidation, key, err)
		}
	}

	if v, ok := updates["status"]; ok {
		if err := assignStatus(&next.Status, v); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrValidation, "status", err)
		}
	}

	*t = *next
	return nil
}

// applySubtaskUpdates has a narrower contract than the project/task variants:
// subtasks carry no custom-fields container, so unrecognized keys are
// silently dropped.
func applySubtaskUpdates(st *model.Subtask, updates map[string]any) error {
	next := st.Clone()
	for key, value := range updates {
		var err error
		switch key {
		case "id", "history", "created_at", "updated_at":
			return fmt.Errorf("%w: field %q cannot be changed via update", ErrValidation, key)
		case "title":
			err = assign(&next.Title, value)
		case "description":
			err = assign(&next.Description, value)
		case "status":
			err = assignStatus(&next.Status, value)
		}
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrValidation, key, err)
		}
	}

	*st = *next
	return nil
}

// assign moves an open value into a typed field through the JSON codec.
func assign(dst any, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func assignStatus(dst *model.Status, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("status must be a string, got %T", value)
	}
	status := model.Status(s)
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", s)
	}
	*dst = status
	return nil
}
