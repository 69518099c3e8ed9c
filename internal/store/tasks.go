package store

import (
	"fmt"
	"time"

	"github.com/taskflow-manager/taskflow/internal/events"
	"github.com/taskflow-manager/taskflow/internal/model"
)

// TaskService layers task and subtask operations on the ProjectStore. Every
// call resolves the containing project (and task, for subtasks) first, then
// applies the same create/update/close/delete protocol one level down.
// History lands on the project; persistence goes through the store's choke
// point.
type TaskService struct {
	ps *ProjectStore
}

// NewTaskService creates a task service over the given store.
func NewTaskService(ps *ProjectStore) *TaskService {
	return &TaskService{ps: ps}
}

// AddTask appends a new task to the project's task list.
func (ts *TaskService) AddTask(projectID string, data map[string]any, user string) (*model.Task, error) {
	ts.ps.mu.Lock()
	defer ts.ps.mu.Unlock()

	p, err := ts.projectLocked(projectID)
	if err != nil {
		return nil, err
	}

	if id, _ := data["id"].(string); id != "" {
		if findTask(p, id) != nil {
			return nil, fmt.Errorf("%w: task %q in project %q", ErrDuplicate, id, projectID)
		}
	}

	t, err := model.NewTask(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if findTask(p, t.ID) != nil {
		return nil, fmt.Errorf("%w: task %q in project %q", ErrDuplicate, t.ID, projectID)
	}

	p.Tasks = append(p.Tasks, t)
	recordHistory(p, "task-created", user, map[string]any{"task_id": t.ID})

	if err := ts.ps.persistLocked(); err != nil {
		return nil, err
	}
	ts.ps.publish(events.TaskCreated, p.ID, user, map[string]any{"task_id": t.ID})
	return t.Clone(), nil
}

// UpdateTask applies a partial update to a task and refreshes its
// updated_at stamp.
func (ts *TaskService) UpdateTask(projectID, taskID string, updates map[string]any, user string) (*model.Task, error) {
	ts.ps.mu.Lock()
	defer ts.ps.mu.Unlock()

	p, t, err := ts.taskLocked(projectID, taskID)
	if err != nil {
		return nil, err
	}

	if err := applyTaskUpdates(t, updates); err != nil {
		return nil, err
	}
	t.UpdatedAt = time.Now().UTC()

	recordHistory(p, "task-updated", user, mergeDetails(map[string]any{"task_id": t.ID}, updates))
	if err := ts.ps.persistLocked(); err != nil {
		return nil, err
	}
	ts.ps.publish(events.TaskUpdated, p.ID, user, map[string]any{"task_id": t.ID})
	return t.Clone(), nil
}

// CloseTask is defined purely as an update setting status to completed.
// Unlike project close it stamps no end date.
func (ts *TaskService) CloseTask(projectID, taskID string, user string) (*model.Task, error) {
	return ts.UpdateTask(projectID, taskID, map[string]any{"status": string(model.StatusCompleted)}, user)
}

// DeleteTask removes a task by id from the project's task list. Removal is
// set-difference: deleting an absent id succeeds and still records history.
func (ts *TaskService) DeleteTask(projectID, taskID string, user string) error {
	ts.ps.mu.Lock()
	defer ts.ps.mu.Unlock()

	p, err := ts.projectLocked(projectID)
	if err != nil {
		return err
	}

	kept := p.Tasks[:0]
	for _, t := range p.Tasks {
		if t.ID != taskID {
			kept = append(kept, t)
		}
	}
	p.Tasks = kept

	recordHistory(p, "task-deleted", user, map[string]any{"task_id": taskID})
	if err := ts.ps.persistLocked(); err != nil {
		return err
	}
	ts.ps.publish(events.TaskDeleted, p.ID, user, map[string]any{"task_id": taskID})
	return nil
}

// AddSubtask appends a new subtask to the task's subtask list.
func (ts *TaskService) AddSubtask(projectID, taskID string, data map[string]any, user string) (*model.Subtask, error) {
	ts.ps.mu.Lock()
	defer ts.ps.mu.Unlock()

	p, t, err := ts.taskLocked(projectID, taskID)
	if err != nil {
		return nil, err
	}

	if id, _ := data["id"].(string); id != "" {
		if findSubtask(t, id) != nil {
			return nil, fmt.Errorf("%w: subtask %q in task %q", ErrDuplicate, id, taskID)
		}
	}

	st, err := model.NewSubtask(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if findSubtask(t, st.ID) != nil {
		return nil, fmt.Errorf("%w: subtask %q in task %q", ErrDuplicate, st.ID, taskID)
	}

	t.Subtasks = append(t.Subtasks, st)
	recordHistory(p, "subtask-created", user, map[string]any{"task_id": taskID, "subtask_id": st.ID})

	if err := ts.ps.persistLocked(); err != nil {
		return nil, err
	}
	ts.ps.publish(events.SubtaskCreated, p.ID, user, map[string]any{"task_id": taskID, "subtask_id": st.ID})
	return st.Clone(), nil
}

// UpdateSubtask applies a partial update to a subtask and refreshes its
// updated_at stamp.
func (ts *TaskService) UpdateSubtask(projectID, taskID, subtaskID string, updates map[string]any, user string) (*model.Subtask, error) {
	ts.ps.mu.Lock()
	defer ts.ps.mu.Unlock()

	p, _, st, err := ts.subtaskLocked(projectID, taskID, subtaskID)
	if err != nil {
		return nil, err
	}

	if err := applySubtaskUpdates(st, updates); err != nil {
		return nil, err
	}
	st.UpdatedAt = time.Now().UTC()

	recordHistory(p, "subtask-updated", user, mergeDetails(map[string]any{"task_id": taskID, "subtask_id": subtaskID}, updates))
	if err := ts.ps.persistLocked(); err != nil {
		return nil, err
	}
	ts.ps.publish(events.SubtaskUpdated, p.ID, user, map[string]any{"task_id": taskID, "subtask_id": subtaskID})
	return st.Clone(), nil
}

// CloseSubtask is an update setting status to completed, mirroring CloseTask.
func (ts *TaskService) CloseSubtask(projectID, taskID, subtaskID string, user string) (*model.Subtask, error) {
	return ts.UpdateSubtask(projectID, taskID, subtaskID, map[string]any{"status": string(model.StatusCompleted)}, user)
}

// DeleteSubtask removes a subtask by id from the task's subtask list, with
// the same set-difference semantics as DeleteTask.
func (ts *TaskService) DeleteSubtask(projectID, taskID, subtaskID string, user string) error {
	ts.ps.mu.Lock()
	defer ts.ps.mu.Unlock()

	p, t, err := ts.taskLocked(projectID, taskID)
	if err != nil {
		return err
	}

	kept := t.Subtasks[:0]
	for _, st := range t.Subtasks {
		if st.ID != subtaskID {
			kept = append(kept, st)
		}
	}
	t.Subtasks = kept

	recordHistory(p, "subtask-deleted", user, map[string]any{"task_id": taskID, "subtask_id": subtaskID})
	if err := ts.ps.persistLocked(); err != nil {
		return err
	}
	ts.ps.publish(events.SubtaskDeleted, p.ID, user, map[string]any{"task_id": taskID, "subtask_id": subtaskID})
	return nil
}

func (ts *TaskService) projectLocked(projectID string) (*model.Project, error) {
	p, ok := ts.ps.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: project %q", ErrNotFound, projectID)
	}
	return p, nil
}

func (ts *TaskService) taskLocked(projectID, taskID string) (*model.Project, *model.Task, error) {
	p, err := ts.projectLocked(projectID)
	if err != nil {
		return nil, nil, err
	}
	t := findTask(p, taskID)
	if t == nil {
		return nil, nil, fmt.Errorf("%w: task %q in project %q", ErrNotFound, taskID, projectID)
	}
	return p, t, nil
}

func (ts *TaskService) subtaskLocked(projectID, taskID, subtaskID string) (*model.Project, *model.Task, *model.Subtask, error) {
	p, t, err := ts.taskLocked(projectID, taskID)
	if err != nil {
		return nil, nil, nil, err
	}
	st := findSubtask(t, subtaskID)
	if st == nil {
		return nil, nil, nil, fmt.Errorf("%w: subtask %q in task %q", ErrNotFound, subtaskID, taskID)
	}
	return p, t, st, nil
}

func findTask(p *model.Project, id string) *model.Task {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func findSubtask(t *model.Task, id string) *model.Subtask {
	for _, st := range t.Subtasks {
		if st.ID == id {
			return st
		}
	}
	return nil
}

func mergeDetails(base map[string]any, updates map[string]any) map[string]any {
	for k, v := range updates {
		base[k] = v
	}
	return base
}
