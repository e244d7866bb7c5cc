// Package memory is a process-local gateway. It backs the service and HTTP
// tests and the `--store memory` development mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"kanban/internal/models"
	"kanban/internal/storage"
)

// Store keeps projects and tasks in maps guarded by a single lock.
type Store struct {
	mu       sync.RWMutex
	projects map[string]models.Project
	tasks    map[string]models.Task
	// down simulates an unreachable store when set.
	down bool
}

var _ storage.Gateway = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		projects: make(map[string]models.Project),
		tasks:    make(map[string]models.Task),
	}
}

// SetUnavailable makes every call fail with storage.ErrUnavailable.
func (s *Store) SetUnavailable(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

func (s *Store) check(ctx context.Context) error {
	if s.down {
		return storage.ErrUnavailable
	}
	if ctx.Err() != nil {
		return storage.ErrUnavailable
	}
	// An expired deadline counts even before the context timer has fired.
	if dl, ok := ctx.Deadline(); ok && !time.Now().Before(dl) {
		return storage.ErrUnavailable
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check(ctx)
}

func (s *Store) Close() error { return nil }

func (s *Store) FindProjects(ctx context.Context, filter storage.ProjectFilter, order storage.Sort) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	out := []models.Project{}
	for _, p := range s.projects {
		if filter.MatchesProject(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessProject(out[i], out[j], order)
	})
	return out, nil
}

func (s *Store) FindProjectByID(ctx context.Context, id string) (models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return models.Project{}, err
	}
	p, ok := s.projects[id]
	if !ok {
		return models.Project{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) InsertProject(ctx context.Context, p models.Project) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return models.Project{}, err
	}
	if s.nameTaken(p.Name, "") {
		return models.Project{}, storage.ErrDuplicate
	}

	now := storage.Now()
	p.ID = models.NewID()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.projects[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProjectByID(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return models.Project{}, err
	}
	p, ok := s.projects[id]
	if !ok {
		return models.Project{}, storage.ErrNotFound
	}
	if patch.Name != nil {
		if s.nameTaken(*patch.Name, id) {
			return models.Project{}, storage.ErrDuplicate
		}
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Color != nil {
		p.Color = *patch.Color
	}
	p.UpdatedAt = storage.Now()
	s.projects[id] = p
	return p, nil
}

func (s *Store) DeleteProjectByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	if _, ok := s.projects[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *Store) CountProjects(ctx context.Context, filter storage.ProjectFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	var n int64
	for _, p := range s.projects {
		if filter.MatchesProject(p) {
			n++
		}
	}
	return n, nil
}

func (s *Store) nameTaken(name, exceptID string) bool {
	for id, p := range s.projects {
		if id != exceptID && p.Name == name {
			return true
		}
	}
	return false
}
