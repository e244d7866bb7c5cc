package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanban/internal/apperr"
	"kanban/internal/models"
	"kanban/internal/storage"
)

func ptr[T any](v T) *T { return &v }

func requireValidation(t *testing.T, err error, field, msg string) {
	t.Helper()
	require.Error(t, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, field, ae.Field)
	assert.Equal(t, msg, ae.Message)
}

func TestCreateProjectInput(t *testing.T) {
	tests := []struct {
		name  string
		in    CreateProjectInput
		field string
		msg   string
	}{
		{"missing name", CreateProjectInput{Description: "d", Color: "#fff"}, "name", "Project name is required"},
		{"blank name", CreateProjectInput{Name: "   ", Description: "d", Color: "#fff"}, "name", "Project name is required"},
		{"long name", CreateProjectInput{Name: strings.Repeat("x", 101), Description: "d", Color: "#fff"}, "name", "Project name must be between 1 and 100 characters"},
		{"missing description", CreateProjectInput{Name: "n", Color: "#fff"}, "description", "Project description is required"},
		{"long description", CreateProjectInput{Name: "n", Description: strings.Repeat("x", 501), Color: "#fff"}, "description", "Project description must be between 1 and 500 characters"},
		{"missing color", CreateProjectInput{Name: "n", Description: "d"}, "color", "Project color is required"},
		{"bad color", CreateProjectInput{Name: "n", Description: "d", Color: "blue"}, "color", "Color must be a valid hex color code"},
		{"four digit color", CreateProjectInput{Name: "n", Description: "d", Color: "#abcd"}, "color", "Color must be a valid hex color code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			requireValidation(t, Struct(&in), tt.field, tt.msg)
		})
	}
}

func TestCreateProjectInput_TrimsAndAccepts(t *testing.T) {
	in := CreateProjectInput{Name: "  Website Redesign ", Description: " Revamp ", Color: "#3B82F6"}
	require.NoError(t, Struct(&in))
	assert.Equal(t, "Website Redesign", in.Name)
	assert.Equal(t, "Revamp", in.Description)

	short := CreateProjectInput{Name: "n", Description: "d", Color: "#abc"}
	assert.NoError(t, Struct(&short))
}

func TestUpdateProjectInput(t *testing.T) {
	empty := UpdateProjectInput{}
	require.NoError(t, Struct(&empty))
	assert.Equal(t, models.ProjectPatch{}, empty.Patch())

	blank := UpdateProjectInput{Name: ptr("  ")}
	requireValidation(t, Struct(&blank), "name", "Project name cannot be empty")

	color := UpdateProjectInput{Color: ptr("#12345G")}
	requireValidation(t, Struct(&color), "color", "Color must be a valid hex color code")

	ok := UpdateProjectInput{Name: ptr(" Renamed "), Color: ptr("#000000")}
	require.NoError(t, Struct(&ok))
	patch := ok.Patch()
	require.NotNil(t, patch.Name)
	assert.Equal(t, "Renamed", *patch.Name)
	assert.Nil(t, patch.Description)
}

func TestCreateTaskInput(t *testing.T) {
	valid := func() CreateTaskInput {
		return CreateTaskInput{Title: "Write docs", Description: "API docs", ProjectID: models.NewID()}
	}

	t.Run("defaults", func(t *testing.T) {
		in := valid()
		require.NoError(t, Struct(&in))
		assert.Nil(t, in.RequestedStatus())
		assert.Equal(t, models.PriorityMedium, in.ResolvedPriority())

		now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		assert.Equal(t, now, in.ResolvedDueDate(now))
	})

	t.Run("explicit values", func(t *testing.T) {
		in := valid()
		in.Status = "blocked"
		in.Priority = "high"
		in.DueDate = "2025-03-01"
		in.BlockedReason = ptr("  waiting on vendor ")
		require.NoError(t, Struct(&in))

		require.NotNil(t, in.RequestedStatus())
		assert.Equal(t, models.StatusBlocked, *in.RequestedStatus())
		assert.Equal(t, models.PriorityHigh, in.ResolvedPriority())
		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), in.ResolvedDueDate(time.Now()))
		assert.Equal(t, "waiting on vendor", *in.BlockedReason)
	})

	cases := []struct {
		name   string
		mutate func(*CreateTaskInput)
		field  string
		msg    string
	}{
		{"missing title", func(in *CreateTaskInput) { in.Title = "" }, "title", "Title is required"},
		{"long title", func(in *CreateTaskInput) { in.Title = strings.Repeat("t", 201) }, "title", "Title must be between 1 and 200 characters"},
		{"missing description", func(in *CreateTaskInput) { in.Description = " " }, "description", "Description is required"},
		{"long description", func(in *CreateTaskInput) { in.Description = strings.Repeat("d", 1001) }, "description", "Description must be between 1 and 1000 characters"},
		{"bad status", func(in *CreateTaskInput) { in.Status = "doing" }, "status", "Status must be one of: backlog, blocked, todo, done"},
		{"bad priority", func(in *CreateTaskInput) { in.Priority = "urgent" }, "priority", "Priority must be one of: low, medium, high"},
		{"bad date", func(in *CreateTaskInput) { in.DueDate = "next week" }, "dueDate", "Due date must be a valid ISO 8601 date"},
		{"long reason", func(in *CreateTaskInput) { in.BlockedReason = ptr(strings.Repeat("r", 501)) }, "blockedReason", "Blocked reason cannot exceed 500 characters"},
		{"missing project", func(in *CreateTaskInput) { in.ProjectID = "" }, "project_id", "Project ID is required"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			requireValidation(t, Struct(&in), tt.field, tt.msg)
		})
	}
}

func TestUpdateTaskInput(t *testing.T) {
	in := UpdateTaskInput{
		Title:    ptr(" New title "),
		Status:   ptr("done"),
		Priority: ptr("low"),
		DueDate:  ptr("2025-06-30T12:00:00.000Z"),
	}
	require.NoError(t, Struct(&in))

	require.NotNil(t, in.RequestedStatus())
	assert.Equal(t, models.StatusDone, *in.RequestedStatus())

	patch := in.Patch()
	assert.Equal(t, "New title", *patch.Title)
	assert.Equal(t, models.PriorityLow, *patch.Priority)
	assert.Equal(t, time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC), *patch.DueDate)
	assert.Nil(t, patch.Status, "status is resolved by the lifecycle rules")
	assert.Nil(t, patch.BlockedReason)

	empty := UpdateTaskInput{}
	require.NoError(t, Struct(&empty))
	assert.Nil(t, empty.RequestedStatus())

	blank := UpdateTaskInput{Title: ptr("")}
	requireValidation(t, Struct(&blank), "title", "Title cannot be empty")

	badStatus := UpdateTaskInput{Status: ptr("archived")}
	requireValidation(t, Struct(&badStatus), "status", "Status must be one of: backlog, blocked, todo, done")
}

func TestStatusInput(t *testing.T) {
	missing := StatusInput{}
	requireValidation(t, Struct(&missing), "status", "Status is required")

	bad := StatusInput{Status: "BLOCKED"}
	requireValidation(t, Struct(&bad), "status", "Status must be one of: backlog, blocked, todo, done")

	ok := StatusInput{Status: " todo "}
	require.NoError(t, Struct(&ok))
	assert.Equal(t, "todo", ok.Status)
}

func TestTaskQuery(t *testing.T) {
	q := TaskQuery{}
	require.NoError(t, Struct(&q))
	assert.Equal(t, storage.TaskFilter{}, q.Filter())
	assert.Equal(t, storage.NewestFirst, q.Sort())

	q = TaskQuery{Status: "todo", Priority: "high", ProjectID: "abc", Search: ptr(" docs "), SortBy: "title", SortOrder: "ASC"}
	require.NoError(t, Struct(&q))
	f := q.Filter()
	assert.Equal(t, models.StatusTodo, *f.Status)
	assert.Equal(t, models.PriorityHigh, *f.Priority)
	assert.Equal(t, "abc", f.ProjectID)
	assert.Equal(t, "docs", f.Search)
	assert.Equal(t, storage.Sort{Field: storage.SortTitle}, q.Sort())

	bad := TaskQuery{SortBy: "name"}
	requireValidation(t, Struct(&bad), "sortBy", "Sort by must be one of: createdAt, updatedAt, dueDate, title, status, priority")

	order := TaskQuery{SortOrder: "up"}
	requireValidation(t, Struct(&order), "sortOrder", "Sort order must be asc or desc")

	search := TaskQuery{Search: ptr("   ")}
	requireValidation(t, Struct(&search), "search", "Search term must not be empty")

	status := TaskQuery{Status: "wip"}
	requireValidation(t, Struct(&status), "status", "Status must be one of: backlog, blocked, todo, done")
}

func TestIDs(t *testing.T) {
	id := models.NewID()
	assert.NoError(t, ProjectID(id))
	assert.NoError(t, TaskID(id))

	requireValidation(t, ProjectID("123"), "project_id", "Invalid project ID format")
	requireValidation(t, TaskID("zzzzzzzzzzzzzzzzzzzzzzzz"), "id", "Invalid task ID format")
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2025-01-15T10:30", time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2025-01-15T10:30:45", time.Date(2025, 1, 15, 10, 30, 45, 0, time.UTC)},
		{"2025-01-15T10:30:45.123Z", time.Date(2025, 1, 15, 10, 30, 45, 123e6, time.UTC)},
		{"2025-01-15T10:30:45.123456789Z", time.Date(2025, 1, 15, 10, 30, 45, 123e6, time.UTC)},
		{"2025-01-15T12:00:00+02:00", time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDate(tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	for _, raw := range []string{"", "tomorrow", "2025-13-01", "15/01/2025"} {
		_, err := ParseDate(raw)
		assert.Error(t, err, raw)
	}
}
