// Package api exposes the store operations over HTTP. It is a thin
// translation layer: routes map onto store calls one-to-one, and store
// error kinds map onto status codes.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskflow-manager/taskflow/internal/events"
	"github.com/taskflow-manager/taskflow/internal/store"
)

// Server is the Taskflow HTTP API server.
type Server struct {
	httpServer *http.Server
	projects   *store.ProjectStore
	tasks      *store.TaskService
	bus        *events.Bus
}

// NewServer creates an API server over the given store handles. bus may be
// nil; it only backs the /events endpoint.
func NewServer(projects *store.ProjectStore, tasks *store.TaskService, bus *events.Bus, host string, port int) *Server {
	s := &Server{
		projects: projects,
		tasks:    tasks,
		bus:      bus,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/events", s.handleEvents)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.handleListProjects)
		r.Post("/", s.handleCreateProject)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", s.handleGetProject)
			r.Put("/", s.handleUpdateProject)
			r.Patch("/close", s.handleCloseProject)
			r.Delete("/", s.handleDeleteProject)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", s.handleAddTask)

				r.Route("/{taskID}", func(r chi.Router) {
					r.Put("/", s.handleUpdateTask)
					r.Patch("/close", s.handleCloseTask)
					r.Delete("/", s.handleDeleteTask)

					r.Route("/subtasks", func(r chi.Router) {
						r.Post("/", s.handleAddSubtask)

						r.Route("/{subtaskID}", func(r chi.Router) {
							r.Put("/", s.handleUpdateSubtask)
							r.Patch("/close", s.handleCloseSubtask)
							r.Delete("/", s.handleDeleteSubtask)
						})
					})
				})
			})
		})
	})

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: r,
	}

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("taskflow api listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
