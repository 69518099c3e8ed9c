package store

import (
	"errors"
	"testing"

	"github.com/taskflow-manager/taskflow/internal/model"
)

func newTestTaskService(t *testing.T) (*ProjectStore, *TaskService) {
	t.Helper()
	ps := newTestStore(t)
	return ps, NewTaskService(ps)
}

func TestProjectTaskSubtaskLifecycle(t *testing.T) {
	ps, ts := newTestTaskService(t)

	mustCreate(t, ps, map[string]any{"id": "p1", "nombre": "Launch"}, "alice")

	if _, err := ts.AddTask("p1", map[string]any{"id": "t1", "title": "build"}, "alice"); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if _, err := ts.AddSubtask("p1", "t1", map[string]any{"id": "s1", "title": "scaffold"}, "alice"); err != nil {
		t.Fatalf("AddSubtask: %v", err)
	}

	st, err := ts.CloseSubtask("p1", "t1", "s1", "alice")
	if err != nil {
		t.Fatalf("CloseSubtask: %v", err)
	}
	if st.Status != model.StatusCompleted {
		t.Errorf("subtask status: got %q, want %q", st.Status, model.StatusCompleted)
	}

	p, err := ps.Get("p1")
	if err != nil {
		t.Fatal(err)
	}

	// Tasks carry no history of their own; everything lands on the project.
	if len(p.Tasks[0].History) != 0 {
		t.Errorf("task history should stay empty, got %d entries", len(p.Tasks[0].History))
	}

	want := []string{"created", "task-created", "subtask-created", "subtask-updated"}
	if len(p.History) != len(want) {
		t.Fatalf("expected %d history entries, got %d", len(want), len(p.History))
	}
	for i, action := range want {
		if p.History[i].Action != action {
			t.Errorf("history[%d]: got %q, want %q", i, p.History[i].Action, action)
		}
	}

	if _, err := ps.Delete("p1", "alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := ps.Get("p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAddTaskDuplicateID(t *testing.T) {
	ps, ts := newTestTaskService(t)
	mustCreate(t, ps, map[string]any{"id": "p1", "nombre": "Launch"}, "alice")

	if _, err := ts.AddTask("p1", map[string]any{"id": "t1", "title": "build"}, "alice"); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if _, err := ts.AddTask("p1", map[string]any{"id": "t1", "title": "again"}, "alice"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCloseTaskSetsNoEndDate(t *testing.T) {
	ps, ts := newTestTaskService(t)
	mustCreate(t, ps, map[string]any{"id": "p1", "nombre": "Launch"}, "alice")
	if _, err := ts.AddTask("p1", map[string]any{"id": "t1", "title": "build"}, "alice"); err != nil {
		t.Fatal(err)
	}

	task, err := ts.CloseTask("p1", "t1", "alice")
	if err != nil {
		t.Fatalf("CloseTask: %v", err)
	}
	if task.Status != model.StatusCompleted {
		t.Errorf("status: got %q, want %q", task.Status, model.StatusCompleted)
	}
	if task.EndDate != nil {
		t.Errorf("closing a task must not stamp an end date, got %v", task.EndDate)
	}

	// Close is just an update, so the history action says "task-updated".
	p, _ := ps.Get("p1")
	last := p.History[len(p.History)-1]
	if last.Action != "task-updated" {
		t.Errorf("action: got %q, want %q", last.Action, "task-updated")
	}
	if last.Details["task_id"] != "t1" || last.Details["status"] != "completed" {
		t.Errorf("details: got %v", last.Details)
	}
}

func TestUpdateTaskRefreshesUpdatedAt(t *testing.T) {
	ps, ts := newTestTaskService(t)
	mustCreate(t, ps, map[string]any{"id": "p1", "nombre": "Launch"}, "alice")
	if _, err := ts.AddTask("p1", map[string]any{"id": "t1", "title": "build"}, "alice"); err != nil {
		t.Fatal(err)
	}

	task, err := ts.UpdateTask("p1", "t1", map[string]any{"title": "build faster"}, "alice")
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.Title != "build faster" {
		t.Errorf("title: got %q", task.Title)
	}
	if task.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be stamped")
	}
}

func TestUpdateTaskRejectsProtectedFields(t *testing.T) {
	ps, ts := newTestTaskService(t)
	mustCreate(t, ps, map[string]any{"id": "p1", "nombre": "Launch"}, "alice")
	if _, err := ts.AddTask("p1", map[string]any{"id": "t1", "title": "build"}, "alice"); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"id", "history", "subtasks", "created_at", "updated_at"} {
		if _, err := ts.UpdateTask("p1", "t1", map[string]any{key: "x"}, "alice"); !errors.Is(err, ErrValidation) {
			t.Errorf("update of %q: expected ErrValidation, got %v", key, err)
		}
	}
}

func TestUpdateTaskMixedKeysChangesNothing(t *testing.T) {
	ps, ts := newTestTaskService(t)
	mustCreate(t, ps, map[string]any{"id": "p1", "nombre": "Launch"}, "alice")
	if _, err := ts.AddTask("p1", map[string]any{"id": "t1", "title": "build"}, "alice"); err != nil {
		t.Fatal(err)
	}

	for range 10 {
		if _, err := ts.UpdateTask("p1", "t1", map[string]any{"title": "evil", "subtasks": "x"}, "alice"); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	}

	p, _ := ps.Get("p1")
	if p.Tasks[0].Title != "build" {
		t.Errorf("failed update left partial state: Title=%q", p.Tasks[0].Title)
	}
	if !p.Tasks[0].UpdatedAt.IsZero() {
		t.Errorf("failed update stamped UpdatedAt: %v", p.Tasks[0].UpdatedAt)
	}
}

func TestUpdateSubtaskMixedKeysChangesNothing(t *testing.T) {
	ps, ts := newTestTaskService(t)
	mustCreate(t, ps, map[string]any{"id": "p1", "nombre": "Launch"}, "alice")
	if _, err := ts.AddTask("p1", map[string]any{"id": "t1", "title": "build"}, "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := ts.AddSubtask("p1", "t1", map[string]any{"id": "s1", "title": "scaffold"}, "alice"); err != nil {
		t.Fatal(err)
	}

	for range 10 {
		if _, err := ts.UpdateSubtask("p1", "t1", "s1", map[string]any{"title": "evil", "status": "sideways"}, "alice"); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	}

	p, _ := ps.Get("p1")
	st := p.Tasks[0].Subtasks[0]
	if st.Title != "scaffold" || st.Status != model.StatusPending {
		t.Errorf("failed update left partial state: %+v", st)
	}
}

func TestUpdateTaskUnknownKeyBecomesCustomField(t *testing.T) {
	ps, ts := newTestTaskService(t)
	mustCreate(t, ps, map[string]any{"id": "p1", "nombre": "Launch"}, "alice")
	if _, err := ts.AddTask("p1", map[string]any{"id": "t1", "title": "build"}, "alice"); err != nil {
		t.Fatal(err)
	}

	task, err := ts.UpdateTask("p1", "t1", map[string]any{"reviewer": "dana"}, "alice")
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.CustomFields["reviewer"] != "dana" {
		t.Errorf("custom field: got %v", task.CustomFields)
	}
}

func TestUpdateSubtaskDropsUnknownKeys(t *testing.T) {
	ps, ts := newTestTaskService(t)
	mustCreate(t, ps, map[string]any{"id": "p1", "nombre": "Launch"}, "alice")
	if _, err := ts.AddTask("p1", map[string]any{"id": "t1", "title": "build"}, "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := ts.AddSubtask("p1", "t1", map[string]any{"id": "s1", "title": "scaffold"}, "alice"); err != nil {
		t.Fatal(err)
	}

	// Subtasks have no custom-field bag; unrecognized keys vanish silently.
	st, err := ts.UpdateSubtask("p1", "t1", "s1", map[string]any{"title": "scaffold v2", "reviewer": "dana"}, "alice")
	if err != nil {
		t.Fatalf("UpdateSubtask: %v", err)
	}
	if st.Title != "scaffold v2" {
		t.Errorf("title: got %q", st.Title)
	}
}

func TestDeleteTaskAbsentIDIsNoOp(t *testing.T) {
	ps, ts := newTestTaskService(t)
	mustCreate(t, ps, map[string]any{"id": "p1", "nombre": "Launch"}, "alice")
	if _, err := ts.AddTask("p1", map[string]any{"id": "t1", "title": "build"}, "alice"); err != nil {
		t.Fatal(err)
	}

	if err := ts.DeleteTask("p1", "ghost", "alice"); err != nil {
		t.Fatalf("deleting an absent task id must succeed, got %v", err)
	}

	p, _ := ps.Get("p1")
	if len(p.Tasks) != 1 {
		t.Errorf("existing task removed by no-op delete: %d tasks", len(p.Tasks))
	}
	// The attempt is still recorded.
	last := p.History[len(p.History)-1]
	if last.Action != "task-deleted" || last.Details["task_id"] != "ghost" {
		t.Errorf("history entry: %+v", last)
	}
}

func TestDeleteSubtask(t *testing.T) {
	ps, ts := newTestTaskService(t)
	mustCreate(t, ps, map[string]any{"id": "p1", "nombre": "Launch"}, "alice")
	if _, err := ts.AddTask("p1", map[string]any{"id": "t1", "title": "build"}, "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := ts.AddSubtask("p1", "t1", map[string]any{"id": "s1", "title": "scaffold"}, "alice"); err != nil {
		t.Fatal(err)
	}

	if err := ts.DeleteSubtask("p1", "t1", "s1", "alice"); err != nil {
		t.Fatalf("DeleteSubtask: %v", err)
	}

	p, _ := ps.Get("p1")
	if len(p.Tasks[0].Subtasks) != 0 {
		t.Errorf("expected empty subtask list, got %d", len(p.Tasks[0].Subtasks))
	}
}

func TestTaskChainResolution(t *testing.T) {
	ps, ts := newTestTaskService(t)
	mustCreate(t, ps, map[string]any{"id": "p1", "nombre": "Launch"}, "alice")
	if _, err := ts.AddTask("p1", map[string]any{"id": "t1", "title": "build"}, "alice"); err != nil {
		t.Fatal(err)
	}

	if _, err := ts.AddTask("ghost", map[string]any{"id": "t2", "title": "x"}, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing project: expected ErrNotFound, got %v", err)
	}
	if _, err := ts.UpdateTask("p1", "ghost", map[string]any{"title": "x"}, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing task: expected ErrNotFound, got %v", err)
	}
	if _, err := ts.UpdateSubtask("p1", "t1", "ghost", map[string]any{"title": "x"}, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing subtask: expected ErrNotFound, got %v", err)
	}
}
