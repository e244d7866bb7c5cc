// Package storage defines the persistence gateway used by the services.
//
// Implementations live in the mongo, sqlite and memory subpackages; all of
// them pass the conformance suite in storagetest.
package storage

import (
	"context"
	"errors"

	"kanban/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the given id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrUnavailable is returned when the store cannot be reached in time.
	ErrUnavailable = errors.New("store unavailable")
)

// SortField names a sortable task attribute using its API spelling.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortDueDate   SortField = "dueDate"
	SortTitle     SortField = "title"
	SortStatus    SortField = "status"
	SortPriority  SortField = "priority"
	SortName      SortField = "name"
)

// Sort orders a result set by a single field.
type Sort struct {
	Field      SortField
	Descending bool
}

// NewestFirst is the default ordering for listings.
var NewestFirst = Sort{Field: SortCreatedAt, Descending: true}

// GroupField names a task attribute that can be grouped on.
type GroupField string

const (
	GroupByStatus    GroupField = "status"
	GroupByPriority  GroupField = "priority"
	GroupByProjectID GroupField = "project_id"
)

// ProjectFilter selects projects. Zero fields do not constrain the result.
type ProjectFilter struct {
	// Name matches the exact, case-sensitive project name.
	Name string
	// ExcludeID drops the project with this id from the result.
	ExcludeID string
	// IDs restricts the result to these ids.
	IDs []string
}

// TaskFilter selects tasks. Zero fields do not constrain the result.
type TaskFilter struct {
	Status    *models.Status
	Priority  *models.Priority
	ProjectID string
	// Search is free text matched against title and description.
	Search string
}

// ProjectStore persists projects.
type ProjectStore interface {
	FindProjects(ctx context.Context, filter ProjectFilter, sort Sort) ([]models.Project, error)
	FindProjectByID(ctx context.Context, id string) (models.Project, error)
	InsertProject(ctx context.Context, p models.Project) (models.Project, error)
	UpdateProjectByID(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error)
	DeleteProjectByID(ctx context.Context, id string) error
	CountProjects(ctx context.Context, filter ProjectFilter) (int64, error)
}

// TaskStore persists tasks.
type TaskStore interface {
	FindTasks(ctx context.Context, filter TaskFilter, sort Sort) ([]models.Task, error)
	FindTaskByID(ctx context.Context, id string) (models.Task, error)
	InsertTask(ctx context.Context, t models.Task) (models.Task, error)
	UpdateTaskByID(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)
	DeleteTaskByID(ctx context.Context, id string) error
	CountTasks(ctx context.Context, filter TaskFilter) (int64, error)
	GroupCountTasks(ctx context.Context, filter TaskFilter, field GroupField) (map[string]int64, error)
}

// Gateway is the full persistence surface handed to the services.
type Gateway interface {
	ProjectStore
	TaskStore
	Ping(ctx context.Context) error
	Close() error
}
