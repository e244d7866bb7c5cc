package validate

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	entityProject = "project"
	entityTask    = "task"
)

// messages is keyed by entity, field and failing tag.
var messages = map[string]string{
	"project.name.required":        "Project name is required",
	"project.name.min":             "Project name cannot be empty",
	"project.name.max":             "Project name must be between 1 and 100 characters",
	"project.description.required": "Project description is required",
	"project.description.min":      "Project description cannot be empty",
	"project.description.max":      "Project description must be between 1 and 500 characters",
	"project.color.required":       "Project color is required",
	"project.color.rgbhex":         "Color must be a valid hex color code",

	"task.title.required":       "Title is required",
	"task.title.min":            "Title cannot be empty",
	"task.title.max":            "Title must be between 1 and 200 characters",
	"task.description.required": "Description is required",
	"task.description.min":      "Description cannot be empty",
	"task.description.max":      "Description must be between 1 and 1000 characters",
	"task.status.required":      "Status is required",
	"task.status.oneof":         "Status must be one of: backlog, blocked, todo, done",
	"task.priority.oneof":       "Priority must be one of: low, medium, high",
	"task.dueDate.isodate":      "Due date must be a valid ISO 8601 date",
	"task.blockedReason.max":    "Blocked reason cannot exceed 500 characters",
	"task.project_id.required":  "Project ID is required",
	"task.sortBy.oneof":         "Sort by must be one of: createdAt, updatedAt, dueDate, title, status, priority",
	"task.sortOrder.oneof":      "Sort order must be asc or desc",
	"task.search.min":           "Search term must not be empty",
}

func message(entity string, fe validator.FieldError) string {
	if msg, ok := messages[entity+"."+fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
