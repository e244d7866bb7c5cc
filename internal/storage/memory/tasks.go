package memory

import (
	"context"
	"sort"
	"strings"

	"kanban/internal/models"
	"kanban/internal/storage"
)

func (s *Store) FindTasks(ctx context.Context, filter storage.TaskFilter, order storage.Sort) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	out := []models.Task{}
	for _, t := range s.tasks {
		if filter.MatchesTask(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessTask(out[i], out[j], order)
	})
	return out, nil
}

func (s *Store) FindTaskByID(ctx context.Context, id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return models.Task{}, err
	}
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *Store) InsertTask(ctx context.Context, t models.Task) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return models.Task{}, err
	}

	now := storage.Now()
	t.ID = models.NewID()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tasks[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTaskByID(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return models.Task{}, err
	}
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, storage.ErrNotFound
	}
	if patch.ProjectID != nil {
		t.ProjectID = *patch.ProjectID
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		t.DueDate = *patch.DueDate
	}
	if patch.BlockedReason != nil {
		t.BlockedReason = *patch.BlockedReason
	}
	t.UpdatedAt = storage.Now()
	s.tasks[id] = t
	return t, nil
}

func (s *Store) DeleteTaskByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	if _, ok := s.tasks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *Store) CountTasks(ctx context.Context, filter storage.TaskFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	var n int64
	for _, t := range s.tasks {
		if filter.MatchesTask(t) {
			n++
		}
	}
	return n, nil
}

func (s *Store) GroupCountTasks(ctx context.Context, filter storage.TaskFilter, field storage.GroupField) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for _, t := range s.tasks {
		if !filter.MatchesTask(t) {
			continue
		}
		switch field {
		case storage.GroupByStatus:
			counts[string(t.Status)]++
		case storage.GroupByPriority:
			counts[string(t.Priority)]++
		case storage.GroupByProjectID:
			counts[t.ProjectID]++
		}
	}
	return counts, nil
}

func lessTask(a, b models.Task, order storage.Sort) bool {
	var c int
	switch order.Field {
	case storage.SortUpdatedAt:
		c = a.UpdatedAt.Compare(b.UpdatedAt)
	case storage.SortDueDate:
		c = a.DueDate.Compare(b.DueDate)
	case storage.SortTitle:
		c = strings.Compare(a.Title, b.Title)
	case storage.SortStatus:
		c = strings.Compare(string(a.Status), string(b.Status))
	case storage.SortPriority:
		c = strings.Compare(string(a.Priority), string(b.Priority))
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if c == 0 {
		c = strings.Compare(a.ID, b.ID)
	}
	if order.Descending {
		return c > 0
	}
	return c < 0
}

func lessProject(a, b models.Project, order storage.Sort) bool {
	var c int
	switch order.Field {
	case storage.SortName:
		c = strings.Compare(a.Name, b.Name)
	case storage.SortUpdatedAt:
		c = a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if c == 0 {
		c = strings.Compare(a.ID, b.ID)
	}
	if order.Descending {
		return c > 0
	}
	return c < 0
}
