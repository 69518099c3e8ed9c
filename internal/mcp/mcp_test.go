package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/taskflow-manager/taskflow/internal/store"
)

func TestObjectSchemaSortsRequired(t *testing.T) {
	schema := objectSchema(map[string]any{
		"nombre": stringProp("name"),
		"id":     stringProp("id"),
	}, []string{"nombre", "id"})

	if schema["type"] != "object" {
		t.Errorf("type = %v, want object", schema["type"])
	}
	req, ok := schema["required"].([]string)
	if !ok {
		t.Fatal("required not a string slice")
	}
	if req[0] != "id" || req[1] != "nombre" {
		t.Errorf("required = %v, want [id nombre]", req)
	}
}

func TestObjectSchemaOmitsEmptyRequired(t *testing.T) {
	schema := objectSchema(nil, nil)
	if _, ok := schema["required"]; ok {
		t.Error("schema should not carry required when nothing is required")
	}
	if _, ok := schema["properties"].(map[string]any); !ok {
		t.Error("properties should be present even when empty")
	}
}

func TestCreateProjectSchemaShape(t *testing.T) {
	schema := createProjectSchema()

	// Round-trip through JSON: that is the shape the client sees.
	data, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	props := decoded["properties"].(map[string]any)
	for _, name := range []string{"id", "nombre", "descripcion", "responsables", "etiquetas"} {
		if _, ok := props[name]; !ok {
			t.Errorf("missing property %q", name)
		}
	}

	req := decoded["required"].([]any)
	if len(req) != 2 || req[0] != "id" || req[1] != "nombre" {
		t.Errorf("required = %v, want [id nombre]", req)
	}
}

func TestUpdatesSchemaRequiresIDsAndUpdates(t *testing.T) {
	schema := updatesSchema("project_id", "task_id")

	req := schema["required"].([]string)
	if len(req) != 3 {
		t.Fatalf("required = %v", req)
	}
	// Sorted: project_id, task_id, updates
	if req[0] != "project_id" || req[1] != "task_id" || req[2] != "updates" {
		t.Errorf("required = %v", req)
	}
}

func newTestToolset(t *testing.T) *toolset {
	t.Helper()
	projects, err := store.Open(filepath.Join(t.TempDir(), "projects.json"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return &toolset{projects: projects, tasks: store.NewTaskService(projects)}
}

func TestNewServerRegistersTools(t *testing.T) {
	ts := newTestToolset(t)
	server := NewServer(ts.projects, ts.tasks)
	if server == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestCreateProjectTool(t *testing.T) {
	ts := newTestToolset(t)

	args, _ := json.Marshal(map[string]any{
		"id":     "p1",
		"nombre": "Launch",
	})
	result, err := ts.createProject(context.Background(), args)
	if err != nil {
		t.Fatalf("createProject: %v", err)
	}
	if result == nil {
		t.Fatal("expected a project result")
	}

	p, err := ts.projects.Get("p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Name != "Launch" {
		t.Errorf("name: got %q", p.Name)
	}
	// Tool mutations are attributed to the fixed tool actor.
	if p.History[0].User != toolUser {
		t.Errorf("history user: got %q, want %q", p.History[0].User, toolUser)
	}
}

func TestTaskToolsRoundTrip(t *testing.T) {
	ts := newTestToolset(t)

	createArgs, _ := json.Marshal(map[string]any{"id": "p1", "nombre": "Launch"})
	if _, err := ts.createProject(context.Background(), createArgs); err != nil {
		t.Fatal(err)
	}

	addArgs, _ := json.Marshal(map[string]any{
		"project_id": "p1",
		"payload":    map[string]any{"id": "t1", "title": "build"},
	})
	if _, err := ts.addTask(context.Background(), addArgs); err != nil {
		t.Fatalf("addTask: %v", err)
	}

	closeArgs, _ := json.Marshal(map[string]any{"project_id": "p1", "task_id": "t1"})
	if _, err := ts.closeTask(context.Background(), closeArgs); err != nil {
		t.Fatalf("closeTask: %v", err)
	}

	p, _ := ts.projects.Get("p1")
	if string(p.Tasks[0].Status) != "completed" {
		t.Errorf("task status: got %q", p.Tasks[0].Status)
	}

	deleteArgs, _ := json.Marshal(map[string]any{"project_id": "p1", "task_id": "t1"})
	result, err := ts.deleteTask(context.Background(), deleteArgs)
	if err != nil {
		t.Fatalf("deleteTask: %v", err)
	}
	if m, ok := result.(map[string]string); !ok || m["deleted"] != "t1" {
		t.Errorf("delete result: %v", result)
	}
}

func TestGetProjectToolNotFound(t *testing.T) {
	ts := newTestToolset(t)

	args, _ := json.Marshal(map[string]any{"id": "ghost"})
	if _, err := ts.getProject(context.Background(), args); err == nil {
		t.Fatal("expected error for missing project")
	}
}
