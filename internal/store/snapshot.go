package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/taskflow-manager/taskflow/internal/model"
)

// Snapshot reads and writes the full project collection as a single JSON
// document: an array of projects with tasks, subtasks and history inlined.
type Snapshot struct {
	path string
}

// NewSnapshot creates a codec for the snapshot file at path.
func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path}
}

// Path returns the snapshot file location.
func (s *Snapshot) Path() string {
	return s.path
}

// Load reads the persisted collection, indexed by project id. An absent file
// is not an error: a valid empty snapshot is created in its place. Corrupt
// content is fatal.
func (s *Snapshot) Load() (map[string]*model.Project, error) {
	if err := s.ensureFile(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var list []*model.Project
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("corrupt snapshot %s: %w", s.path, err)
	}

	projects := make(map[string]*model.Project, len(list))
	for _, p := range list {
		projects[p.ID] = p
	}
	return projects, nil
}

// Save writes the entire collection atomically via temp file + rename, so a
// crash mid-write never clobbers the previous valid snapshot. Projects are
// ordered by id for stable diffs.
func (s *Snapshot) Save(projects map[string]*model.Project) error {
	ids := make([]string, 0, len(projects))
	for id := range projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	list := make([]*model.Project, 0, len(ids))
	for _, id := range ids {
		list = append(list, projects[id])
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

func (s *Snapshot) ensureFile() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, []byte("[]\n"), 0o644); err != nil {
		return fmt.Errorf("init snapshot: %w", err)
	}
	return nil
}
