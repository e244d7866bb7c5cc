// Package service implements the project and task use cases on top of a
// storage.Gateway.
//
// Every method returns either a value or an *apperr.Error. Store failures that
// are not part of the expected flow are logged here and replaced by a generic
// message before they leave the package.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"kanban/internal/apperr"
	"kanban/internal/storage"
)

const (
	msgProjectNotFound = "Project not found"
	msgTaskNotFound    = "Task not found"
	msgDuplicateName   = "Project with this name already exists"
	msgProjectHasTasks = "Cannot delete project with existing tasks. Please delete all tasks first."
	msgUnavailable     = "Database connection not available"
)

// Services bundles both services so callers can pass them around together.
type Services struct {
	Projects *ProjectService
	Tasks    *TaskService
}

// New builds both services over the same gateway.
func New(store storage.Gateway, logger *slog.Logger) *Services {
	return &Services{
		Projects: NewProjectService(store, logger),
		Tasks:    NewTaskService(store, logger),
	}
}

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

// storeFailure converts an unexpected store error into an application error.
// Application errors pass through untouched.
func storeFailure(ctx context.Context, logger *slog.Logger, op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, storage.ErrUnavailable) {
		logger.WarnContext(ctx, "store unavailable", slog.String("op", op), slog.String("error", err.Error()))
		return apperr.Unavailable(msgUnavailable, err)
	}
	logger.ErrorContext(ctx, "store operation failed", slog.String("op", op), slog.String("error", err.Error()))
	return apperr.Internal("Failed to "+op, err)
}
