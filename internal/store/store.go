// Package store owns the in-memory project collection and its persistence.
// Every mutation funnels through one choke point: mutate in place, append a
// history entry to the owning project, rewrite the full snapshot, then emit
// a mutation event. A single RWMutex guards the collection; mutators hold
// the write lock across both the in-memory change and the snapshot write.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/taskflow-manager/taskflow/internal/events"
	"github.com/taskflow-manager/taskflow/internal/model"
)

// ProjectStore holds the full project collection. Construct it once at
// startup and hand it to every collaborator; there is no package-level
// singleton.
type ProjectStore struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	bus      *events.Bus
	projects map[string]*model.Project
}

// Open loads (or initializes) the snapshot at path and returns a store over
// it. bus may be nil; when set, every committed mutation is published to it.
func Open(path string, bus *events.Bus) (*ProjectStore, error) {
	snap := NewSnapshot(path)
	projects, err := snap.Load()
	if err != nil {
		return nil, err
	}
	return &ProjectStore{
		snapshot: snap,
		bus:      bus,
		projects: projects,
	}, nil
}

// Snapshot returns the codec backing this store.
func (s *ProjectStore) Snapshot() *Snapshot {
	return s.snapshot
}

// Create constructs a project from the payload, records a "created" history
// entry attributed to user, inserts it and persists.
func (s *ProjectStore) Create(data map[string]any, user string) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, _ := data["id"].(string); id != "" {
		if _, exists := s.projects[id]; exists {
			return nil, fmt.Errorf("%w: project %q", ErrDuplicate, id)
		}
	}

	p, err := model.NewProject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, exists := s.projects[p.ID]; exists {
		return nil, fmt.Errorf("%w: project %q", ErrDuplicate, p.ID)
	}

	recordHistory(p, "created", user, nil)
	s.projects[p.ID] = p

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	s.publish(events.ProjectCreated, p.ID, user, nil)
	return p.Clone(), nil
}

// Get returns a copy of the project or ErrNotFound.
func (s *ProjectStore) Get(id string) (*model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: project %q", ErrNotFound, id)
	}
	return p.Clone(), nil
}

// List returns copies of all projects, ordered by id.
func (s *ProjectStore) List() []*model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.projects))
	for id := range s.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	list := make([]*model.Project, 0, len(ids))
	for _, id := range ids {
		list = append(list, s.projects[id].Clone())
	}
	return list
}

// Update applies a partial update to the project, records an "updated"
// history entry carrying the full updates mapping, and persists.
func (s *ProjectStore) Update(id string, updates map[string]any, user string) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: project %q", ErrNotFound, id)
	}

	if err := applyProjectUpdates(p, updates); err != nil {
		return nil, err
	}

	recordHistory(p, "updated", user, updates)
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	s.publish(events.ProjectUpdated, p.ID, user, updates)
	return p.Clone(), nil
}

// Close marks the project closed, stamping end_date only if it is not
// already set, and records a "closed" history entry.
func (s *ProjectStore) Close(id string, user string) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: project %q", ErrNotFound, id)
	}

	p.Status = model.StatusClosed
	if p.EndDate == nil {
		now := time.Now().UTC()
		p.EndDate = &now
	}

	recordHistory(p, "closed", user, nil)
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	s.publish(events.ProjectClosed, p.ID, user, nil)
	return p.Clone(), nil
}

// Delete removes the project and all its descendants irrecoverably and
// returns the removed project. The project itself can carry no history of
// its own deletion; the mutation event is the remaining trace.
func (s *ProjectStore) Delete(id string, user string) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: project %q", ErrNotFound, id)
	}
	delete(s.projects, id)

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	s.publish(events.ProjectDeleted, id, user, nil)
	return p, nil
}

// persistLocked rewrites the snapshot. Callers hold the write lock. A
// failure here leaves memory ahead of disk; the store does not roll back
// (atomic snapshot writes bound the damage to one lost mutation).
func (s *ProjectStore) persistLocked() error {
	return s.snapshot.Save(s.projects)
}

func (s *ProjectStore) publish(t events.Type, projectID, user string, payload map[string]any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.NewEvent(t, projectID, user, payload))
}

func recordHistory(p *model.Project, action, user string, details map[string]any) {
	p.History = append(p.History, model.NewHistoryEntry(action, user, details))
}
