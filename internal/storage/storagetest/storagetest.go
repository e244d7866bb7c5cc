// Package storagetest is a conformance suite for storage.Gateway
// implementations.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanban/internal/models"
	"kanban/internal/storage"
)

// Factory returns an empty gateway. Cleanup is registered on t.
type Factory func(t *testing.T) storage.Gateway

// Run exercises every gateway operation against fresh stores from newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Gateway)
	}{
		{"ProjectInsertAndFind", testProjectInsertAndFind},
		{"ProjectNotFound", testProjectNotFound},
		{"ProjectDuplicateName", testProjectDuplicateName},
		{"ProjectUpdatePartial", testProjectUpdatePartial},
		{"ProjectDelete", testProjectDelete},
		{"ProjectFilters", testProjectFilters},
		{"ProjectSortNewestFirst", testProjectSortNewestFirst},
		{"TaskInsertAndFind", testTaskInsertAndFind},
		{"TaskUpdatePartial", testTaskUpdatePartial},
		{"TaskClearBlockedReason", testTaskClearBlockedReason},
		{"TaskDelete", testTaskDelete},
		{"TaskFilters", testTaskFilters},
		{"TaskSearch", testTaskSearch},
		{"TaskSort", testTaskSort},
		{"TaskCountAndGroup", testTaskCountAndGroup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func ptr[T any](v T) *T { return &v }

func insertProject(t *testing.T, s storage.Gateway, name string) models.Project {
	t.Helper()
	p, err := s.InsertProject(context.Background(), models.Project{
		Name:        name,
		Description: "Description of " + name,
		Color:       "#3B82F6",
	})
	require.NoError(t, err)
	return p
}

func insertTask(t *testing.T, s storage.Gateway, projectID, title string, status models.Status, priority models.Priority) models.Task {
	t.Helper()
	task := models.Task{
		ProjectID:   projectID,
		Title:       title,
		Description: "Work on " + title,
		Status:      status,
		Priority:    priority,
		DueDate:     time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
	}
	if status == models.StatusBlocked {
		task.BlockedReason = "waiting"
	}
	got, err := s.InsertTask(context.Background(), task)
	require.NoError(t, err)
	return got
}

func testProjectInsertAndFind(t *testing.T, s storage.Gateway) {
	ctx := context.Background()
	p := insertProject(t, s, "Website Redesign")

	assert.True(t, models.IsValidID(p.ID))
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	got, err := s.FindProjectByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Description, got.Description)
	assert.Equal(t, p.Color, got.Color)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, p.UpdatedAt.Equal(got.UpdatedAt))
}

func testProjectNotFound(t *testing.T, s storage.Gateway) {
	ctx := context.Background()
	missing := models.NewID()

	_, err := s.FindProjectByID(ctx, missing)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.UpdateProjectByID(ctx, missing, models.ProjectPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProjectByID(ctx, missing), storage.ErrNotFound)
}

func testProjectDuplicateName(t *testing.T, s storage.Gateway) {
	ctx := context.Background()
	insertProject(t, s, "Website Redesign")
	other := insertProject(t, s, "API Integration")

	_, err := s.InsertProject(ctx, models.Project{Name: "Website Redesign", Description: "d", Color: "#fff"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	_, err = s.UpdateProjectByID(ctx, other.ID, models.ProjectPatch{Name: ptr("Website Redesign")})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	// Names are case-sensitive.
	_, err = s.InsertProject(ctx, models.Project{Name: "website redesign", Description: "d", Color: "#fff"})
	assert.NoError(t, err)
}

func testProjectUpdatePartial(t *testing.T, s storage.Gateway) {
	ctx := context.Background()
	p := insertProject(t, s, "Website Redesign")
	time.Sleep(5 * time.Millisecond)

	got, err := s.UpdateProjectByID(ctx, p.ID, models.ProjectPatch{Color: ptr("#10B981")})
	require.NoError(t, err)
	assert.Equal(t, "#10B981", got.Color)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Description, got.Description)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, got.UpdatedAt.After(p.UpdatedAt))

	// Renaming to its own name is not a conflict.
	_, err = s.UpdateProjectByID(ctx, p.ID, models.ProjectPatch{Name: ptr(p.Name)})
	assert.NoError(t, err)
}

func testProjectDelete(t *testing.T, s storage.Gateway) {
	ctx := context.Background()
	p := insertProject(t, s, "Website Redesign")

	require.NoError(t, s.DeleteProjectByID(ctx, p.ID))
	_, err := s.FindProjectByID(ctx, p.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testProjectFilters(t *testing.T, s storage.Gateway) {
	ctx := context.Background()
	a := insertProject(t, s, "A")
	b := insertProject(t, s, "B")
	insertProject(t, s, "C")

	n, err := s.CountProjects(ctx, storage.ProjectFilter{Name: "A"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.CountProjects(ctx, storage.ProjectFilter{Name: "A", ExcludeID: a.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	got, err := s.FindProjects(ctx, storage.ProjectFilter{IDs: []string{a.ID, b.ID}}, storage.Sort{Field: storage.SortName})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "B", got[1].Name)

	got, err = s.FindProjects(ctx, storage.ProjectFilter{IDs: []string{}}, storage.NewestFirst)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testProjectSortNewestFirst(t *testing.T, s storage.Gateway) {
	first := insertProject(t, s, "First")
	time.Sleep(5 * time.Millisecond)
	second := insertProject(t, s, "Second")

	got, err := s.FindProjects(context.Background(), storage.ProjectFilter{}, storage.NewestFirst)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}

func testTaskInsertAndFind(t *testing.T, s storage.Gateway) {
	p := insertProject(t, s, "Website Redesign")
	task := insertTask(t, s, p.ID, "Set up authentication", models.StatusBlocked, models.PriorityHigh)

	got, err := s.FindTaskByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, p.ID, got.ProjectID)
	assert.Equal(t, "Set up authentication", got.Title)
	assert.Equal(t, models.StatusBlocked, got.Status)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, "waiting", got.BlockedReason)
	assert.True(t, task.DueDate.Equal(got.DueDate))
	assert.True(t, task.CreatedAt.Equal(got.CreatedAt))

	_, err = s.FindTaskByID(context.Background(), models.NewID())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testTaskUpdatePartial(t *testing.T, s storage.Gateway) {
	ctx := context.Background()
	p := insertProject(t, s, "Website Redesign")
	q := insertProject(t, s, "API Integration")
	task := insertTask(t, s, p.ID, "Design wireframes", models.StatusTodo, models.PriorityLow)

	due := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	got, err := s.UpdateTaskByID(ctx, task.ID, models.TaskPatch{
		ProjectID: ptr(q.ID),
		Priority:  ptr(models.PriorityHigh),
		DueDate:   &due,
	})
	require.NoError(t, err)
	assert.Equal(t, q.ID, got.ProjectID)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.True(t, due.Equal(got.DueDate))
	assert.Equal(t, task.Title, got.Title)
	assert.Equal(t, models.StatusTodo, got.Status)

	_, err = s.UpdateTaskByID(ctx, models.NewID(), models.TaskPatch{Title: ptr("x")})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testTaskClearBlockedReason(t *testing.T, s storage.Gateway) {
	ctx := context.Background()
	p := insertProject(t, s, "Website Redesign")
	task := insertTask(t, s, p.ID, "Set up authentication", models.StatusBlocked, models.PriorityHigh)

	got, err := s.UpdateTaskByID(ctx, task.ID, models.TaskPatch{
		Status:        ptr(models.StatusDone),
		BlockedReason: ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, got.Status)
	assert.Empty(t, got.BlockedReason)

	reread, err := s.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, reread.BlockedReason)
}

func testTaskDelete(t *testing.T, s storage.Gateway) {
	ctx := context.Background()
	p := insertProject(t, s, "Website Redesign")
	task := insertTask(t, s, p.ID, "Design wireframes", models.StatusTodo, models.PriorityLow)

	require.NoError(t, s.DeleteTaskByID(ctx, task.ID))
	assert.ErrorIs(t, s.DeleteTaskByID(ctx, task.ID), storage.ErrNotFound)
}

func testTaskFilters(t *testing.T, s storage.Gateway) {
	ctx := context.Background()
	p := insertProject(t, s, "Website Redesign")
	q := insertProject(t, s, "Mobile App Development")
	insertTask(t, s, p.ID, "Design wireframes", models.StatusDone, models.PriorityHigh)
	insertTask(t, s, p.ID, "Implement header component", models.StatusTodo, models.PriorityMedium)
	insertTask(t, s, q.ID, "Design app icons", models.StatusBacklog, models.PriorityLow)
	insertTask(t, s, q.ID, "Set up authentication", models.StatusTodo, models.PriorityHigh)

	all, err := s.FindTasks(ctx, storage.TaskFilter{}, storage.NewestFirst)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	todo, err := s.FindTasks(ctx, storage.TaskFilter{Status: ptr(models.StatusTodo)}, storage.NewestFirst)
	require.NoError(t, err)
	require.Len(t, todo, 2)
	for _, task := range todo {
		assert.Equal(t, models.StatusTodo, task.Status)
	}

	high, err := s.FindTasks(ctx, storage.TaskFilter{Priority: ptr(models.PriorityHigh), ProjectID: q.ID}, storage.NewestFirst)
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "Set up authentication", high[0].Title)
}

func testTaskSearch(t *testing.T, s storage.Gateway) {
	ctx := context.Background()
	p := insertProject(t, s, "Website Redesign")
	insertTask(t, s, p.ID, "Design wireframes", models.StatusTodo, models.PriorityHigh)
	insertTask(t, s, p.ID, "Research payment providers", models.StatusTodo, models.PriorityLow)

	got, err := s.FindTasks(ctx, storage.TaskFilter{Search: "wireframes"}, storage.NewestFirst)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Design wireframes", got[0].Title)

	got, err = s.FindTasks(ctx, storage.TaskFilter{Search: "payment"}, storage.NewestFirst)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Research payment providers", got[0].Title)

	got, err = s.FindTasks(ctx, storage.TaskFilter{Search: "kubernetes"}, storage.NewestFirst)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testTaskSort(t *testing.T, s storage.Gateway) {
	ctx := context.Background()
	p := insertProject(t, s, "Website Redesign")
	b := insertTask(t, s, p.ID, "Bravo", models.StatusTodo, models.PriorityLow)
	time.Sleep(5 * time.Millisecond)
	a := insertTask(t, s, p.ID, "Alpha", models.StatusTodo, models.PriorityLow)
	time.Sleep(5 * time.Millisecond)
	c := insertTask(t, s, p.ID, "Charlie", models.StatusTodo, models.PriorityLow)

	got, err := s.FindTasks(ctx, storage.TaskFilter{}, storage.NewestFirst)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, taskIDs(got))

	got, err = s.FindTasks(ctx, storage.TaskFilter{}, storage.Sort{Field: storage.SortTitle})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, taskIDs(got))

	got, err = s.FindTasks(ctx, storage.TaskFilter{}, storage.Sort{Field: storage.SortTitle, Descending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, taskIDs(got))
}

func testTaskCountAndGroup(t *testing.T, s storage.Gateway) {
	ctx := context.Background()
	p := insertProject(t, s, "Website Redesign")
	q := insertProject(t, s, "Mobile App Development")
	insertTask(t, s, p.ID, "One", models.StatusTodo, models.PriorityHigh)
	insertTask(t, s, p.ID, "Two", models.StatusTodo, models.PriorityLow)
	insertTask(t, s, p.ID, "Three", models.StatusBlocked, models.PriorityHigh)
	insertTask(t, s, q.ID, "Four", models.StatusDone, models.PriorityMedium)

	n, err := s.CountTasks(ctx, storage.TaskFilter{ProjectID: p.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	byStatus, err := s.GroupCountTasks(ctx, storage.TaskFilter{ProjectID: p.ID}, storage.GroupByStatus)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"todo": 2, "blocked": 1}, byStatus)

	byPriority, err := s.GroupCountTasks(ctx, storage.TaskFilter{ProjectID: p.ID}, storage.GroupByPriority)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"high": 2, "low": 1}, byPriority)

	byProject, err := s.GroupCountTasks(ctx, storage.TaskFilter{}, storage.GroupByProjectID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{p.ID: 3, q.ID: 1}, byProject)
}

func taskIDs(tasks []models.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
