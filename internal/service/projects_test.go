package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanban/internal/apperr"
	"kanban/internal/models"
	"kanban/internal/storage/memory"
	"kanban/internal/validate"
)

func ptr[T any](v T) *T { return &v }

func newServices(t *testing.T) (*Services, *memory.Store) {
	t.Helper()
	store := memory.New()
	return New(store, nil), store
}

func createProject(t *testing.T, svc *Services, name string) models.Project {
	t.Helper()
	p, err := svc.Projects.Create(context.Background(), validate.CreateProjectInput{
		Name:        name,
		Description: name + " description",
		Color:       "#3B82F6",
	})
	require.NoError(t, err)
	return p
}

func createTask(t *testing.T, svc *Services, projectID, title string) models.TaskView {
	t.Helper()
	task, err := svc.Tasks.Create(context.Background(), validate.CreateTaskInput{
		Title:       title,
		Description: title + " description",
		Status:      "todo",
		ProjectID:   projectID,
	})
	require.NoError(t, err)
	return task
}

func assertKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
	if msg != "" {
		assert.Equal(t, msg, apperr.PublicMessage(err))
	}
}

func TestProjectCreate(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	p := createProject(t, svc, "Website Redesign")
	assert.True(t, models.IsValidID(p.ID))
	assert.Equal(t, "Website Redesign", p.Name)
	assert.Equal(t, "#3B82F6", p.Color)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := svc.Projects.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got.Project)
	assert.Zero(t, got.TaskCount)

	_, err = svc.Projects.Create(ctx, validate.CreateProjectInput{Name: "Website Redesign", Description: "again", Color: "#fff"})
	assertKind(t, err, apperr.KindConflict, "Project with this name already exists")

	_, err = svc.Projects.Create(ctx, validate.CreateProjectInput{Name: "Other", Description: "d", Color: "red"})
	assertKind(t, err, apperr.KindValidation, "Color must be a valid hex color code")
}

func TestProjectCreate_NameIsCaseSensitive(t *testing.T) {
	svc, _ := newServices(t)
	createProject(t, svc, "Website Redesign")

	_, err := svc.Projects.Create(context.Background(), validate.CreateProjectInput{
		Name: "website redesign", Description: "d", Color: "#000",
	})
	assert.NoError(t, err)
}

func TestProjectUpdate(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	a := createProject(t, svc, "Alpha")
	createProject(t, svc, "Beta")

	got, err := svc.Projects.Update(ctx, a.ID, validate.UpdateProjectInput{Color: ptr("#10B981")})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)
	assert.Equal(t, "#10B981", got.Color)
	assert.Equal(t, a.Description, got.Description)

	// Renaming to its own name is not a conflict.
	_, err = svc.Projects.Update(ctx, a.ID, validate.UpdateProjectInput{Name: ptr("Alpha")})
	require.NoError(t, err)

	_, err = svc.Projects.Update(ctx, a.ID, validate.UpdateProjectInput{Name: ptr("Beta")})
	assertKind(t, err, apperr.KindConflict, "Project with this name already exists")

	_, err = svc.Projects.Update(ctx, "bad-id", validate.UpdateProjectInput{Name: ptr("X")})
	assertKind(t, err, apperr.KindValidation, "Invalid project ID format")

	_, err = svc.Projects.Update(ctx, models.NewID(), validate.UpdateProjectInput{Name: ptr("X")})
	assertKind(t, err, apperr.KindNotFound, "Project not found")
}

func TestProjectList(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	empty, err := svc.Projects.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	a := createProject(t, svc, "Alpha")
	b := createProject(t, svc, "Beta")
	createTask(t, svc, a.ID, "one")
	createTask(t, svc, a.ID, "two")

	list, err := svc.Projects.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID, "newest first")
	assert.Zero(t, list[0].TaskCount)
	assert.Equal(t, a.ID, list[1].ID)
	assert.Equal(t, int64(2), list[1].TaskCount)
}

func TestProjectDelete(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	p := createProject(t, svc, "Website Redesign")
	task := createTask(t, svc, p.ID, "Design wireframes")

	err := svc.Projects.Delete(ctx, p.ID)
	assertKind(t, err, apperr.KindReferential, "Cannot delete project with existing tasks. Please delete all tasks first.")
	assert.Equal(t, 400, apperr.HTTPStatus(err))

	require.NoError(t, svc.Tasks.Delete(ctx, task.ID))
	require.NoError(t, svc.Projects.Delete(ctx, p.ID))

	_, err = svc.Projects.Get(ctx, p.ID)
	assertKind(t, err, apperr.KindNotFound, "Project not found")

	assertKind(t, svc.Projects.Delete(ctx, p.ID), apperr.KindNotFound, "Project not found")
	assertKind(t, svc.Projects.Delete(ctx, "123"), apperr.KindValidation, "Invalid project ID format")
}

func TestProjectStats(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	p := createProject(t, svc, "Website Redesign")
	other := createProject(t, svc, "Other")

	createTask(t, svc, p.ID, "one")
	createTask(t, svc, p.ID, "two")
	createTask(t, svc, other.ID, "elsewhere")
	_, err := svc.Tasks.Create(ctx, validate.CreateTaskInput{
		Title: "three", Description: "d", Status: "blocked", BlockedReason: ptr("vendor"),
		Priority: "high", ProjectID: p.ID,
	})
	require.NoError(t, err)

	stats, err := svc.Projects.Stats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, stats.Project.ID)
	assert.Equal(t, int64(3), stats.TotalTasks)
	assert.Equal(t, map[string]int64{"backlog": 0, "blocked": 1, "todo": 2, "done": 0}, stats.StatusStats)
	assert.Equal(t, map[string]int64{"low": 0, "medium": 2, "high": 1}, stats.PriorityStats)

	_, err = svc.Projects.Stats(ctx, models.NewID())
	assertKind(t, err, apperr.KindNotFound, "Project not found")
}

func TestProjectStoreUnavailable(t *testing.T) {
	svc, store := newServices(t)
	ctx := context.Background()
	p := createProject(t, svc, "Alpha")

	store.SetUnavailable(true)

	_, err := svc.Projects.List(ctx)
	assertKind(t, err, apperr.KindUnavailable, "Database connection not available")
	assert.Equal(t, 503, apperr.HTTPStatus(err))

	_, err = svc.Projects.Get(ctx, p.ID)
	assertKind(t, err, apperr.KindUnavailable, "")

	// Validation happens before the store is touched.
	_, err = svc.Projects.Create(ctx, validate.CreateProjectInput{})
	assertKind(t, err, apperr.KindValidation, "Project name is required")
}
