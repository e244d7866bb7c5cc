package service

import (
	"context"
	"errors"
	"log/slog"

	"kanban/internal/apperr"
	"kanban/internal/lifecycle"
	"kanban/internal/models"
	"kanban/internal/storage"
	"kanban/internal/validate"
)

// TaskService manages tasks. Every task it returns is joined with the
// summary of its project.
type TaskService struct {
	store  storage.Gateway
	logger *slog.Logger
}

// NewTaskService returns a TaskService backed by store.
func NewTaskService(store storage.Gateway, logger *slog.Logger) *TaskService {
	return &TaskService{store: store, logger: defaultLogger(logger)}
}

// List returns every task matching q. There is no pagination.
func (s *TaskService) List(ctx context.Context, q validate.TaskQuery) ([]models.TaskView, error) {
	if err := validate.Struct(&q); err != nil {
		return nil, err
	}
	if q.ProjectID != "" {
		if err := validate.ProjectID(q.ProjectID); err != nil {
			return nil, err
		}
	}

	tasks, err := s.store.FindTasks(ctx, q.Filter(), q.Sort())
	if err != nil {
		return nil, storeFailure(ctx, s.logger, "fetch tasks", err)
	}
	return s.join(ctx, tasks, "fetch tasks")
}

// ListByProject returns the tasks of an existing project, newest first.
func (s *TaskService) ListByProject(ctx context.Context, projectID string) ([]models.TaskView, error) {
	p, err := s.project(ctx, projectID, "fetch project tasks")
	if err != nil {
		return nil, err
	}

	tasks, err := s.store.FindTasks(ctx, storage.TaskFilter{ProjectID: projectID}, storage.NewestFirst)
	if err != nil {
		return nil, storeFailure(ctx, s.logger, "fetch project tasks", err)
	}

	summary := p.Summary()
	views := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, models.TaskView{Task: t, Project: &summary})
	}
	return views, nil
}

// Get returns one task.
func (s *TaskService) Get(ctx context.Context, id string) (models.TaskView, error) {
	if err := validate.TaskID(id); err != nil {
		return models.TaskView{}, err
	}
	t, err := s.store.FindTaskByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.TaskView{}, apperr.NotFound(msgTaskNotFound)
	}
	if err != nil {
		return models.TaskView{}, storeFailure(ctx, s.logger, "fetch task", err)
	}
	return s.joinOne(ctx, t, "fetch task")
}

// Create stores a new task in an existing project.
func (s *TaskService) Create(ctx context.Context, in validate.CreateTaskInput) (models.TaskView, error) {
	if err := validate.Struct(&in); err != nil {
		return models.TaskView{}, err
	}
	p, err := s.project(ctx, in.ProjectID, "create task")
	if err != nil {
		return models.TaskView{}, err
	}

	status, reason, err := lifecycle.ForCreate(in.RequestedStatus(), in.BlockedReason)
	if err != nil {
		return models.TaskView{}, err
	}

	t, err := s.store.InsertTask(ctx, models.Task{
		ProjectID:     p.ID,
		Title:         in.Title,
		Description:   in.Description,
		Status:        status,
		Priority:      in.ResolvedPriority(),
		DueDate:       in.ResolvedDueDate(storage.Now()),
		BlockedReason: reason,
	})
	if err != nil {
		return models.TaskView{}, storeFailure(ctx, s.logger, "create task", err)
	}

	s.logger.InfoContext(ctx, "task created",
		slog.String("id", t.ID),
		slog.String("project_id", t.ProjectID),
		slog.String("status", string(t.Status)),
	)
	summary := p.Summary()
	return models.TaskView{Task: t, Project: &summary}, nil
}

// Update applies the fields present in in. Status and blocked reason are
// resolved against the stored task.
func (s *TaskService) Update(ctx context.Context, id string, in validate.UpdateTaskInput) (models.TaskView, error) {
	if err := validate.TaskID(id); err != nil {
		return models.TaskView{}, err
	}
	if err := validate.Struct(&in); err != nil {
		return models.TaskView{}, err
	}
	if in.ProjectID != nil {
		if _, err := s.project(ctx, *in.ProjectID, "update task"); err != nil {
			return models.TaskView{}, err
		}
	}

	current, err := s.store.FindTaskByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.TaskView{}, apperr.NotFound(msgTaskNotFound)
	}
	if err != nil {
		return models.TaskView{}, storeFailure(ctx, s.logger, "update task", err)
	}

	status, reason, err := lifecycle.ForUpdate(current, in.RequestedStatus(), in.BlockedReason)
	if err != nil {
		return models.TaskView{}, err
	}

	patch := in.Patch()
	patch.Status = &status
	patch.BlockedReason = &reason
	return s.save(ctx, id, patch, "update task")
}

// UpdateStatus moves a task to another column. The stored reason is not
// reused: moving to blocked needs a reason in the same request.
func (s *TaskService) UpdateStatus(ctx context.Context, id string, in validate.StatusInput) (models.TaskView, error) {
	if err := validate.TaskID(id); err != nil {
		return models.TaskView{}, err
	}
	if err := validate.Struct(&in); err != nil {
		return models.TaskView{}, err
	}

	requested := models.Status(in.Status)
	status, reason, err := lifecycle.Apply(lifecycle.Change{
		RequestedStatus: &requested,
		RequestedReason: in.BlockedReason,
	})
	if err != nil {
		return models.TaskView{}, err
	}

	return s.save(ctx, id, models.TaskPatch{Status: &status, BlockedReason: &reason}, "update task status")
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := validate.TaskID(id); err != nil {
		return err
	}
	err := s.store.DeleteTaskByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(msgTaskNotFound)
	}
	if err != nil {
		return storeFailure(ctx, s.logger, "delete task", err)
	}

	s.logger.InfoContext(ctx, "task deleted", slog.String("id", id))
	return nil
}

func (s *TaskService) save(ctx context.Context, id string, patch models.TaskPatch, op string) (models.TaskView, error) {
	t, err := s.store.UpdateTaskByID(ctx, id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return models.TaskView{}, apperr.NotFound(msgTaskNotFound)
	}
	if err != nil {
		return models.TaskView{}, storeFailure(ctx, s.logger, op, err)
	}
	return s.joinOne(ctx, t, op)
}

// project loads a referenced project, failing with 404 when it is gone.
func (s *TaskService) project(ctx context.Context, id, op string) (models.Project, error) {
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

func (s *TaskService) joinOne(ctx context.Context, t models.Task, op string) (models.TaskView, error) {
	views, err := s.join(ctx, []models.Task{t}, op)
	if err != nil {
		return models.TaskView{}, err
	}
	return views[0], nil
}

// join attaches project summaries with a single project lookup.
func (s *TaskService) join(ctx context.Context, tasks []models.Task, op string) ([]models.TaskView, error) {
	views := make([]models.TaskView, 0, len(tasks))
	if len(tasks) == 0 {
		return views, nil
	}

	seen := make(map[string]bool, len(tasks))
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if !seen[t.ProjectID] {
			seen[t.ProjectID] = true
			ids = append(ids, t.ProjectID)
		}
	}

	projects, err := s.store.FindProjects(ctx, storage.ProjectFilter{IDs: ids}, storage.NewestFirst)
	if err != nil {
		return nil, storeFailure(ctx, s.logger, op, err)
	}
	summaries := make(map[string]*models.ProjectSummary, len(projects))
	for _, p := range projects {
		summary := p.Summary()
		summaries[p.ID] = &summary
	}

	for _, t := range tasks {
		views = append(views, models.TaskView{Task: t, Project: summaries[t.ProjectID]})
	}
	return views, nil
}
