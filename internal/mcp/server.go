// Package mcp re-exposes the store operations as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskflow-manager/taskflow/internal/store"
)

// toolUser is the actor recorded in history for tool-invoked mutations.
const toolUser = "llm"

type toolset struct {
	projects *store.ProjectStore
	tasks    *store.TaskService
}

// NewServer creates an MCP server exposing every store operation as a tool.
func NewServer(projects *store.ProjectStore, tasks *store.TaskService) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "taskflow",
		Version: "0.1.0",
	}, nil)

	t := &toolset{projects: projects, tasks: tasks}

	add := func(name, description string, schema map[string]any, handler func(context.Context, json.RawMessage) (any, error)) {
		tool := &mcpsdk.Tool{
			Name:        name,
			Description: description,
			InputSchema: schema,
		}
		server.AddTool(tool, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			result, err := handler(ctx, req.Params.Arguments)
			if err != nil {
				slog.Debug("mcp tool error", "tool", name, "error", err)
				return errorResult(err), nil
			}
			return textResult(result)
		})
		slog.Debug("mcp tool registered", "tool", name)
	}

	add("list_projects", "List all projects.",
		objectSchema(nil, nil), t.listProjects)
	add("get_project", "Fetch a project by id.",
		idSchema(), t.getProject)
	add("create_project", "Create a project, failing on a duplicate id.",
		createProjectSchema(), t.createProject)
	add("update_project", "Apply a partial update to a project. Unrecognized fields are stored as custom fields.",
		updatesSchema("id"), t.updateProject)
	add("close_project", "Mark a project closed, stamping its end date if unset.",
		idSchema(), t.closeProject)
	add("delete_project", "Delete a project and all its tasks and subtasks.",
		idSchema(), t.deleteProject)

	add("add_task", "Add a task to a project.",
		payloadSchema("project_id"), t.addTask)
	add("update_task", "Apply a partial update to a task.",
		updatesSchema("project_id", "task_id"), t.updateTask)
	add("close_task", "Mark a task completed.",
		idsSchema("project_id", "task_id"), t.closeTask)
	add("delete_task", "Remove a task from a project.",
		idsSchema("project_id", "task_id"), t.deleteTask)

	add("add_subtask", "Add a subtask to a task.",
		payloadSchema("project_id", "task_id"), t.addSubtask)
	add("update_subtask", "Apply a partial update to a subtask.",
		updatesSchema("project_id", "task_id", "subtask_id"), t.updateSubtask)
	add("close_subtask", "Mark a subtask completed.",
		idsSchema("project_id", "task_id", "subtask_id"), t.closeSubtask)
	add("delete_subtask", "Remove a subtask from a task.",
		idsSchema("project_id", "task_id", "subtask_id"), t.deleteSubtask)

	return server
}

type projectArgs struct {
	ID string `json:"id"`
}

type createProjectArgs struct {
	ID          string   `json:"id"`
	Name        string   `json:"nombre"`
	Description string   `json:"descripcion"`
	Owners      []string `json:"responsables"`
	Tags        []string `json:"etiquetas"`
}

type updateProjectArgs struct {
	ID      string         `json:"id"`
	Updates map[string]any `json:"updates"`
}

type taskArgs struct {
	ProjectID string         `json:"project_id"`
	TaskID    string         `json:"task_id"`
	Payload   map[string]any `json:"payload"`
	Updates   map[string]any `json:"updates"`
}

type subtaskArgs struct {
	ProjectID string         `json:"project_id"`
	TaskID    string         `json:"task_id"`
	SubtaskID string         `json:"subtask_id"`
	Payload   map[string]any `json:"payload"`
	Updates   map[string]any `json:"updates"`
}

func (t *toolset) listProjects(_ context.Context, _ json.RawMessage) (any, error) {
	return t.projects.List(), nil
}

func (t *toolset) getProject(_ context.Context, raw json.RawMessage) (any, error) {
	var args projectArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return t.projects.Get(args.ID)
}

func (t *toolset) createProject(_ context.Context, raw json.RawMessage) (any, error) {
	var args createProjectArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	payload := map[string]any{
		"id":           args.ID,
		"nombre":       args.Name,
		"descripcion":  args.Description,
		"responsables": args.Owners,
		"etiquetas":    args.Tags,
	}
	return t.projects.Create(payload, toolUser)
}

func (t *toolset) updateProject(_ context.Context, raw json.RawMessage) (any, error) {
	var args updateProjectArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return t.projects.Update(args.ID, args.Updates, toolUser)
}

func (t *toolset) closeProject(_ context.Context, raw json.RawMessage) (any, error) {
	var args projectArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return t.projects.Close(args.ID, toolUser)
}

func (t *toolset) deleteProject(_ context.Context, raw json.RawMessage) (any, error) {
	var args projectArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	removed, err := t.projects.Delete(args.ID, toolUser)
	if err != nil {
		return nil, err
	}
	return map[string]string{"deleted": removed.ID}, nil
}

func (t *toolset) addTask(_ context.Context, raw json.RawMessage) (any, error) {
	var args taskArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return t.tasks.AddTask(args.ProjectID, args.Payload, toolUser)
}

func (t *toolset) updateTask(_ context.Context, raw json.RawMessage) (any, error) {
	var args taskArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return t.tasks.UpdateTask(args.ProjectID, args.TaskID, args.Updates, toolUser)
}

func (t *toolset) closeTask(_ context.Context, raw json.RawMessage) (any, error) {
	var args taskArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return t.tasks.CloseTask(args.ProjectID, args.TaskID, toolUser)
}

func (t *toolset) deleteTask(_ context.Context, raw json.RawMessage) (any, error) {
	var args taskArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := t.tasks.DeleteTask(args.ProjectID, args.TaskID, toolUser); err != nil {
		return nil, err
	}
	return map[string]string{"deleted": args.TaskID}, nil
}

func (t *toolset) addSubtask(_ context.Context, raw json.RawMessage) (any, error) {
	var args subtaskArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return t.tasks.AddSubtask(args.ProjectID, args.TaskID, args.Payload, toolUser)
}

func (t *toolset) updateSubtask(_ context.Context, raw json.RawMessage) (any, error) {
	var args subtaskArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return t.tasks.UpdateSubtask(args.ProjectID, args.TaskID, args.SubtaskID, args.Updates, toolUser)
}

func (t *toolset) closeSubtask(_ context.Context, raw json.RawMessage) (any, error) {
	var args subtaskArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return t.tasks.CloseSubtask(args.ProjectID, args.TaskID, args.SubtaskID, toolUser)
}

func (t *toolset) deleteSubtask(_ context.Context, raw json.RawMessage) (any, error) {
	var args subtaskArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := t.tasks.DeleteSubtask(args.ProjectID, args.TaskID, args.SubtaskID, toolUser); err != nil {
		return nil, err
	}
	return map[string]string{"deleted": args.SubtaskID}, nil
}

func decodeArgs(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}

func textResult(v any) (*mcpsdk.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(err), nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(err error) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
	}
}
