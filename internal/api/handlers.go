package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskflow-manager/taskflow/internal/events"
	"github.com/taskflow-manager/taskflow/internal/store"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Taskflow Manager running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeDetail(w, http.StatusBadRequest, fmt.Sprintf("limit must be a positive integer, got %q", v))
			return
		}
		limit = n
	}

	history := s.bus.History(limit)
	if history == nil {
		history = []events.Event{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.projects.List())
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r)
	if !ok {
		return
	}
	p, err := s.projects.Create(payload, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	updates, ok := decodeBody(w, r)
	if !ok {
		return
	}
	p, err := s.projects.Update(chi.URLParam(r, "projectID"), updates, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCloseProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Close(chi.URLParam(r, "projectID"), actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	removed, err := s.projects.Delete(chi.URLParam(r, "projectID"), actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": removed.ID})
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r)
	if !ok {
		return
	}
	t, err := s.tasks.AddTask(chi.URLParam(r, "projectID"), payload, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	updates, ok := decodeBody(w, r)
	if !ok {
		return
	}
	t, err := s.tasks.UpdateTask(chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"), updates, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCloseTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.CloseTask(chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"), actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if err := s.tasks.DeleteTask(chi.URLParam(r, "projectID"), taskID, actor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": taskID})
}

func (s *Server) handleAddSubtask(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r)
	if !ok {
		return
	}
	st, err := s.tasks.AddSubtask(chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"), payload, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleUpdateSubtask(w http.ResponseWriter, r *http.Request) {
	updates, ok := decodeBody(w, r)
	if !ok {
		return
	}
	st, err := s.tasks.UpdateSubtask(
		chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"), chi.URLParam(r, "subtaskID"),
		updates, actor(r),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCloseSubtask(w http.ResponseWriter, r *http.Request) {
	st, err := s.tasks.CloseSubtask(
		chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"), chi.URLParam(r, "subtaskID"),
		actor(r),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteSubtask(w http.ResponseWriter, r *http.Request) {
	subtaskID := chi.URLParam(r, "subtaskID")
	err := s.tasks.DeleteSubtask(
		chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"), subtaskID,
		actor(r),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": subtaskID})
}

// actor returns the acting user from the query string, defaulting to
// "system".
func actor(r *http.Request) string {
	if u := r.URL.Query().Get("user"); u != "" {
		return u
	}
	return "system"
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed JSON body")
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps store error kinds onto transport status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, store.ErrValidation):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		writeDetail(w, http.StatusInternalServerError, err.Error())
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
