package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanban/internal/models"
	"kanban/internal/service"
	"kanban/internal/storage/memory"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type testServer struct {
	t     *testing.T
	srv   *Server
	store *memory.Store
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	store := memory.New()
	srv := New(service.New(store, nil), store, nil, opts)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, store: store}
}

func (ts *testServer) do(method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	ts.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (ts *testServer) createProject(name string) models.Project {
	ts.t.Helper()
	rec, resp := ts.do(http.MethodPost, "/api/projects", map[string]string{
		"name": name, "description": name + " project", "color": "#3B82F6",
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Project](ts.t, resp.Data)
}

func (ts *testServer) createTask(body map[string]any) (int, apiResponse) {
	ts.t.Helper()
	rec, resp := ts.do(http.MethodPost, "/api/tasks", body)
	return rec.Code, resp
}

func TestBoardScenario(t *testing.T) {
	ts := newTestServer(t, Options{})

	project := ts.createProject("Website Redesign")
	assert.Len(t, project.ID, 24)

	code, resp := ts.createTask(map[string]any{
		"title":       "Design wireframes",
		"description": "Homepage and product pages",
		"status":      "todo",
		"priority":    "high",
		"project_id":  project.ID,
	})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	assert.Equal(t, "Task created successfully", resp.Message)
	task := decode[models.TaskView](t, resp.Data)
	require.NotNil(t, task.Project)
	assert.Equal(t, "Website Redesign", task.Project.Name)

	rec, resp := ts.do(http.MethodGet, "/api/tasks/"+task.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, string(resp.Data), "blockedReason")
	got := decode[models.TaskView](t, resp.Data)
	assert.Equal(t, models.StatusTodo, got.Status)

	rec, resp = ts.do(http.MethodPut, "/api/tasks/"+task.ID, map[string]any{"status": "blocked"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Blocked reason is required when status is blocked", resp.Error)

	rec, resp = ts.do(http.MethodPut, "/api/tasks/"+task.ID, map[string]any{
		"status": "blocked", "blockedReason": "waiting on design review",
	})
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)
	assert.Equal(t, "waiting on design review", decode[models.TaskView](t, resp.Data).BlockedReason)

	rec, resp = ts.do(http.MethodPut, "/api/tasks/"+task.ID, map[string]any{"status": "done"})
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)
	done := decode[models.TaskView](t, resp.Data)
	assert.Equal(t, models.StatusDone, done.Status)
	assert.Empty(t, done.BlockedReason)

	rec, resp = ts.do(http.MethodDelete, "/api/projects/"+project.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "Cannot delete project with existing tasks")

	rec, _ = ts.do(http.MethodDelete, "/api/tasks/"+task.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = ts.do(http.MethodDelete, "/api/projects/"+project.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Project deleted successfully", resp.Message)
	assert.Empty(t, resp.Data)
}

func TestProjectEndpoints(t *testing.T) {
	ts := newTestServer(t, Options{})
	p := ts.createProject("Alpha")

	rec, resp := ts.do(http.MethodPost, "/api/projects", map[string]string{
		"name": "Alpha", "description": "dup", "color": "#000",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Project with this name already exists", resp.Error)

	rec, resp = ts.do(http.MethodPost, "/api/projects", map[string]string{"description": "d", "color": "#000"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Project name is required", resp.Error)

	rec, resp = ts.do(http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.ProjectView](t, resp.Data)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
	assert.Contains(t, string(resp.Data), `"taskCount":0`)

	rec, resp = ts.do(http.MethodGet, "/api/projects/"+p.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Project retrieved successfully", resp.Message)

	rec, resp = ts.do(http.MethodPut, "/api/projects/"+p.ID, map[string]string{"color": "#10B981"})
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)
	assert.Equal(t, "#10B981", decode[models.Project](t, resp.Data).Color)

	rec, resp = ts.do(http.MethodGet, "/api/projects/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid project ID format", resp.Error)

	rec, resp = ts.do(http.MethodGet, "/api/projects/"+models.NewID(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", resp.Error)
}

func TestProjectStatsEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{})
	p := ts.createProject("Alpha")
	code, _ := ts.createTask(map[string]any{"title": "a", "description": "d", "project_id": p.ID})
	require.Equal(t, http.StatusCreated, code)

	rec, resp := ts.do(http.MethodGet, "/api/projects/"+p.ID+"/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.ProjectStats](t, resp.Data)
	assert.Equal(t, int64(1), stats.TotalTasks)
	assert.Equal(t, int64(1), stats.StatusStats["backlog"])
	assert.Equal(t, int64(0), stats.StatusStats["done"])
	assert.Equal(t, int64(1), stats.PriorityStats["medium"])
}

func TestTaskEndpoints(t *testing.T) {
	ts := newTestServer(t, Options{})
	a := ts.createProject("Alpha")
	b := ts.createProject("Beta")

	for _, body := range []map[string]any{
		{"title": "Write docs", "description": "API docs", "status": "todo", "project_id": a.ID},
		{"title": "Fix login", "description": "OAuth", "status": "done", "priority": "high", "project_id": b.ID},
	} {
		code, resp := ts.createTask(body)
		require.Equal(t, http.StatusCreated, code, resp.Error)
	}

	rec, resp := ts.do(http.MethodGet, "/api/tasks?status=done", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]models.TaskView](t, resp.Data)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Fix login", tasks[0].Title)

	rec, resp = ts.do(http.MethodGet, "/api/tasks?sortBy=title&sortOrder=asc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks = decode[[]models.TaskView](t, resp.Data)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Fix login", tasks[0].Title)

	rec, resp = ts.do(http.MethodGet, "/api/tasks?search=docs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.TaskView](t, resp.Data), 1)

	rec, resp = ts.do(http.MethodGet, "/api/tasks?status=wip", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Status must be one of: backlog, blocked, todo, done", resp.Error)

	rec, resp = ts.do(http.MethodGet, "/api/tasks?priority=critical", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Priority must be one of: low, medium, high", resp.Error)

	rec, resp = ts.do(http.MethodGet, "/api/projects/"+a.ID+"/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Project tasks retrieved successfully", resp.Message)
	assert.Len(t, decode[[]models.TaskView](t, resp.Data), 1)

	rec, resp = ts.do(http.MethodGet, "/api/tasks?status=blocked", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestTaskStatusEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{})
	p := ts.createProject("Alpha")
	code, resp := ts.createTask(map[string]any{"title": "a", "description": "d", "project_id": p.ID})
	require.Equal(t, http.StatusCreated, code)
	task := decode[models.TaskView](t, resp.Data)

	rec, resp := ts.do(http.MethodPatch, "/api/tasks/"+task.ID+"/status", map[string]any{"status": "blocked"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Blocked reason is required when status is blocked", resp.Error)

	rec, resp = ts.do(http.MethodPatch, "/api/tasks/"+task.ID+"/status", map[string]any{
		"status": "blocked", "blockedReason": "vendor",
	})
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)
	assert.Equal(t, "Task status updated successfully", resp.Message)
	assert.Equal(t, "vendor", decode[models.TaskView](t, resp.Data).BlockedReason)

	rec, resp = ts.do(http.MethodPatch, "/api/tasks/"+models.NewID()+"/status", map[string]any{"status": "todo"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", resp.Error)
}

func TestTaskCreate_ProjectChecks(t *testing.T) {
	ts := newTestServer(t, Options{})

	code, resp := ts.createTask(map[string]any{"title": "a", "description": "d", "project_id": models.NewID()})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Project not found", resp.Error)

	code, resp = ts.createTask(map[string]any{"title": "a", "description": "d", "project_id": "42"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid project ID format", resp.Error)
}

func TestInvalidBody(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec, resp := ts.do(http.MethodPost, "/api/projects", `{"name": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid request body", resp.Error)

	rec, resp = ts.do(http.MethodPost, "/api/tasks", `{"title": 7}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", resp.Error)
}

func TestNotFoundRoute(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec, resp := ts.do(http.MethodGet, "/api/unknown?x=1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found - /api/unknown?x=1", resp.Error)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{StoreDriver: "memory", Version: "test"})

	rec, resp := ts.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Contains(t, string(resp.Data), `"store":"memory"`)

	ts.store.SetUnavailable(true)
	rec, resp = ts.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Database connection not available", resp.Error)

	rec, resp = ts.do(http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Database connection not available", resp.Error)
}

func TestBanner(t *testing.T) {
	ts := newTestServer(t, Options{Version: "1.2.3"})

	rec := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Kanban Dashboard API", body["message"])
	assert.Equal(t, "1.2.3", body["version"])
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec, _ := ts.do(http.MethodGet, "/api/projects", nil)
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, Options{CORSOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, Options{RateLimit: RateLimitConfig{RatePerSecond: 1, Burst: 2}})

	for i := 0; i < 2; i++ {
		rec, _ := ts.do(http.MethodGet, "/api/projects", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, resp := ts.do(http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests from this IP, please try again later", resp.Error)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRequestTimeout(t *testing.T) {
	ts := newTestServer(t, Options{RequestTimeout: time.Nanosecond})

	rec, resp := ts.do(http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Database connection not available", resp.Error)
}

func TestStaticFrontend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>board</html>"), 0o644))

	ts := newTestServer(t, Options{StaticDir: dir})

	rec := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boards/42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "board")

	rec, resp := ts.do(http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found - /api/nope", resp.Error)
}
