package validate

import (
	"strings"
	"time"

	"kanban/internal/models"
	"kanban/internal/storage"
)

// CreateProjectInput is the body of POST /projects.
type CreateProjectInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=500"`
	Color       string `json:"color" validate:"required,rgbhex"`
}

func (in *CreateProjectInput) entity() string { return entityProject }

func (in *CreateProjectInput) normalize() {
	trim(&in.Name)
	trim(&in.Description)
	trim(&in.Color)
}

// UpdateProjectInput is the body of PUT /projects/:id.
type UpdateProjectInput struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,min=1,max=500"`
	Color       *string `json:"color" validate:"omitnil,rgbhex"`
}

func (in *UpdateProjectInput) entity() string { return entityProject }

func (in *UpdateProjectInput) normalize() {
	trim(in.Name)
	trim(in.Description)
	trim(in.Color)
}

// Patch converts the validated input into a store patch.
func (in *UpdateProjectInput) Patch() models.ProjectPatch {
	return models.ProjectPatch{Name: in.Name, Description: in.Description, Color: in.Color}
}

// CreateTaskInput is the body of POST /tasks.
type CreateTaskInput struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description" validate:"required,max=1000"`
	Status        string  `json:"status" validate:"omitempty,oneof=backlog blocked todo done"`
	Priority      string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate       string  `json:"dueDate" validate:"omitempty,isodate"`
	BlockedReason *string `json:"blockedReason" validate:"omitnil,max=500"`
	ProjectID     string  `json:"project_id" validate:"required"`
}

func (in *CreateTaskInput) entity() string { return entityTask }

func (in *CreateTaskInput) normalize() {
	trim(&in.Title)
	trim(&in.Description)
	trim(&in.Status)
	trim(&in.Priority)
	trim(&in.DueDate)
	trim(in.BlockedReason)
	trim(&in.ProjectID)
}

// RequestedStatus returns the status asked for, nil when omitted.
func (in *CreateTaskInput) RequestedStatus() *models.Status {
	return statusPtr(in.Status)
}

// ResolvedPriority returns the requested priority or the default one.
func (in *CreateTaskInput) ResolvedPriority() models.Priority {
	if in.Priority == "" {
		return models.DefaultPriority
	}
	return models.Priority(in.Priority)
}

// ResolvedDueDate returns the requested due date or now when omitted.
func (in *CreateTaskInput) ResolvedDueDate(now time.Time) time.Time {
	if in.DueDate == "" {
		return now
	}
	t, err := ParseDate(in.DueDate)
	if err != nil {
		return now
	}
	return t
}

// UpdateTaskInput is the body of PUT /tasks/:id.
type UpdateTaskInput struct {
	Title         *string `json:"title" validate:"omitnil,min=1,max=200"`
	Description   *string `json:"description" validate:"omitnil,min=1,max=1000"`
	Status        *string `json:"status" validate:"omitnil,oneof=backlog blocked todo done"`
	Priority      *string `json:"priority" validate:"omitnil,oneof=low medium high"`
	DueDate       *string `json:"dueDate" validate:"omitnil,isodate"`
	BlockedReason *string `json:"blockedReason" validate:"omitnil,max=500"`
	ProjectID     *string `json:"project_id"`
}

func (in *UpdateTaskInput) entity() string { return entityTask }

func (in *UpdateTaskInput) normalize() {
	trim(in.Title)
	trim(in.Description)
	trim(in.Status)
	trim(in.Priority)
	trim(in.DueDate)
	trim(in.BlockedReason)
	trim(in.ProjectID)
}

// RequestedStatus returns the status asked for, nil when omitted.
func (in *UpdateTaskInput) RequestedStatus() *models.Status {
	if in.Status == nil {
		return nil
	}
	return statusPtr(*in.Status)
}

// Patch converts the non-status fields into a store patch. Status and
// blocked reason are resolved separately by the lifecycle rules.
func (in *UpdateTaskInput) Patch() models.TaskPatch {
	patch := models.TaskPatch{
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
	}
	if in.Priority != nil {
		p := models.Priority(*in.Priority)
		patch.Priority = &p
	}
	if in.DueDate != nil {
		if t, err := ParseDate(*in.DueDate); err == nil {
			patch.DueDate = &t
		}
	}
	return patch
}

// StatusInput is the body of PATCH /tasks/:id/status.
type StatusInput struct {
	Status        string  `json:"status" validate:"required,oneof=backlog blocked todo done"`
	BlockedReason *string `json:"blockedReason" validate:"omitnil,max=500"`
}

func (in *StatusInput) entity() string { return entityTask }

func (in *StatusInput) normalize() {
	trim(&in.Status)
	trim(in.BlockedReason)
}

// TaskQuery holds the query string of GET /tasks.
type TaskQuery struct {
	Status    string  `form:"status" validate:"omitempty,oneof=backlog blocked todo done"`
	Priority  string  `form:"priority" validate:"omitempty,oneof=low medium high"`
	ProjectID string  `form:"project_id"`
	Search    *string `form:"search" validate:"omitnil,min=1"`
	SortBy    string  `form:"sortBy" validate:"omitempty,oneof=createdAt updatedAt dueDate title status priority"`
	SortOrder string  `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

func (q *TaskQuery) entity() string { return entityTask }

func (q *TaskQuery) normalize() {
	trim(&q.Status)
	trim(&q.Priority)
	trim(&q.ProjectID)
	trim(q.Search)
	trim(&q.SortBy)
	q.SortOrder = strings.ToLower(strings.TrimSpace(q.SortOrder))
}

// Filter converts the validated query into a store filter.
func (q *TaskQuery) Filter() storage.TaskFilter {
	f := storage.TaskFilter{ProjectID: q.ProjectID}
	if q.Status != "" {
		s := models.Status(q.Status)
		f.Status = &s
	}
	if q.Priority != "" {
		p := models.Priority(q.Priority)
		f.Priority = &p
	}
	if q.Search != nil {
		f.Search = *q.Search
	}
	return f
}

// Sort converts the validated query into a store sort, newest first by default.
func (q *TaskQuery) Sort() storage.Sort {
	field := storage.SortField(q.SortBy)
	if field == "" {
		field = storage.SortCreatedAt
	}
	return storage.Sort{Field: field, Descending: q.SortOrder != "asc"}
}

func statusPtr(raw string) *models.Status {
	if raw == "" {
		return nil
	}
	s := models.Status(raw)
	return &s
}
