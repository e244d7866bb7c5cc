package service

import (
	"context"
	"errors"
	"log/slog"

	"kanban/internal/apperr"
	"kanban/internal/models"
	"kanban/internal/storage"
	"kanban/internal/validate"
)

// ProjectService manages projects.
type ProjectService struct {
	store  storage.Gateway
	logger *slog.Logger
}

// NewProjectService returns a ProjectService backed by store.
func NewProjectService(store storage.Gateway, logger *slog.Logger) *ProjectService {
	return &ProjectService{store: store, logger: defaultLogger(logger)}
}

// List returns every project, newest first, with its task count.
func (s *ProjectService) List(ctx context.Context) ([]models.ProjectView, error) {
	projects, err := s.store.FindProjects(ctx, storage.ProjectFilter{}, storage.NewestFirst)
	if err != nil {
		return nil, storeFailure(ctx, s.logger, "fetch projects", err)
	}
	counts, err := s.store.GroupCountTasks(ctx, storage.TaskFilter{}, storage.GroupByProjectID)
	if err != nil {
		return nil, storeFailure(ctx, s.logger, "fetch projects", err)
	}

	views := make([]models.ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, models.ProjectView{Project: p, TaskCount: counts[p.ID]})
	}
	return views, nil
}

// Get returns one project with its task count.
func (s *ProjectService) Get(ctx context.Context, id string) (models.ProjectView, error) {
	p, err := s.find(ctx, id, "fetch project")
	if err != nil {
		return models.ProjectView{}, err
	}
	n, err := s.store.CountTasks(ctx, storage.TaskFilter{ProjectID: id})
	if err != nil {
		return models.ProjectView{}, storeFailure(ctx, s.logger, "fetch project", err)
	}
	return models.ProjectView{Project: p, TaskCount: n}, nil
}

// Create validates in and stores a new project with a unique name.
func (s *ProjectService) Create(ctx context.Context, in validate.CreateProjectInput) (models.Project, error) {
	if err := validate.Struct(&in); err != nil {
		return models.Project{}, err
	}
	if err := s.ensureNameFree(ctx, in.Name, "", "create project"); err != nil {
		return models.Project{}, err
	}

	p, err := s.store.InsertProject(ctx, models.Project{
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return models.Project{}, apperr.Conflict(msgDuplicateName)
	}
	if err != nil {
		return models.Project{}, storeFailure(ctx, s.logger, "create project", err)
	}

	s.logger.InfoContext(ctx, "project created", slog.String("id", p.ID), slog.String("name", p.Name))
	return p, nil
}

// Update applies the fields present in in to the project.
func (s *ProjectService) Update(ctx context.Context, id string, in validate.UpdateProjectInput) (models.Project, error) {
	if err := validate.ProjectID(id); err != nil {
		return models.Project{}, err
	}
	if err := validate.Struct(&in); err != nil {
		return models.Project{}, err
	}
	if in.Name != nil {
		if err := s.ensureNameFree(ctx, *in.Name, id, "update project"); err != nil {
			return models.Project{}, err
		}
	}

	p, err := s.store.UpdateProjectByID(ctx, id, in.Patch())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return models.Project{}, apperr.NotFound(msgProjectNotFound)
	case errors.Is(err, storage.ErrDuplicate):
		return models.Project{}, apperr.Conflict(msgDuplicateName)
	case err != nil:
		return models.Project{}, storeFailure(ctx, s.logger, "update project", err)
	}
	return p, nil
}

// Delete removes a project that no task references.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := validate.ProjectID(id); err != nil {
		return err
	}

	n, err := s.store.CountTasks(ctx, storage.TaskFilter{ProjectID: id})
	if err != nil {
		return storeFailure(ctx, s.logger, "delete project", err)
	}
	if n > 0 {
		return apperr.Referential(msgProjectHasTasks)
	}

	err = s.store.DeleteProjectByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(msgProjectNotFound)
	}
	if err != nil {
		return storeFailure(ctx, s.logger, "delete project", err)
	}

	s.logger.InfoContext(ctx, "project deleted", slog.String("id", id))
	return nil
}

// Stats counts the tasks of a project by status and by priority. Both maps
// carry every known value, zero when no task has it.
func (s *ProjectService) Stats(ctx context.Context, id string) (models.ProjectStats, error) {
	p, err := s.find(ctx, id, "fetch project stats")
	if err != nil {
		return models.ProjectStats{}, err
	}

	filter := storage.TaskFilter{ProjectID: id}
	byStatus, err := s.store.GroupCountTasks(ctx, filter, storage.GroupByStatus)
	if err != nil {
		return models.ProjectStats{}, storeFailure(ctx, s.logger, "fetch project stats", err)
	}
	byPriority, err := s.store.GroupCountTasks(ctx, filter, storage.GroupByPriority)
	if err != nil {
		return models.ProjectStats{}, storeFailure(ctx, s.logger, "fetch project stats", err)
	}
	total, err := s.store.CountTasks(ctx, filter)
	if err != nil {
		return models.ProjectStats{}, storeFailure(ctx, s.logger, "fetch project stats", err)
	}

	stats := models.ProjectStats{
		Project:       p,
		StatusStats:   make(map[string]int64, len(models.Statuses())),
		PriorityStats: make(map[string]int64, len(models.Priorities())),
		TotalTasks:    total,
	}
	for _, st := range models.Statuses() {
		stats.StatusStats[string(st)] = byStatus[string(st)]
	}
	for _, pr := range models.Priorities() {
		stats.PriorityStats[string(pr)] = byPriority[string(pr)]
	}
	return stats, nil
}

func (s *ProjectService) find(ctx context.Context, id, op string) (models.Project, error) {
	if err := validate.ProjectID(id); err != nil {
		return models.Project{}, err
	}
	p, err := s.store.FindProjectByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Project{}, apperr.NotFound(msgProjectNotFound)
	}
	if err != nil {
		return models.Project{}, storeFailure(ctx, s.logger, op, err)
	}
	return p, nil
}

// ensureNameFree fails with a conflict when another project already uses name.
func (s *ProjectService) ensureNameFree(ctx context.Context, name, exceptID, op string) error {
	n, err := s.store.CountProjects(ctx, storage.ProjectFilter{Name: name, ExcludeID: exceptID})
	if err != nil {
		return storeFailure(ctx, s.logger, op, err)
	}
	if n > 0 {
		return apperr.Conflict(msgDuplicateName)
	}
	return nil
}
