package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"kanban/internal/models"
	"kanban/internal/storage"
)

const taskColumns = `id, project_id, title, description, status, priority, due_date, blocked_reason, created_at, updated_at`

var taskSortColumns = map[storage.SortField]string{
	storage.SortCreatedAt: "created_at",
	storage.SortUpdatedAt: "updated_at",
	storage.SortDueDate:   "due_date",
	storage.SortTitle:     "title",
	storage.SortStatus:    "status",
	storage.SortPriority:  "priority",
}

var groupColumns = map[storage.GroupField]string{
	storage.GroupByStatus:    "status",
	storage.GroupByPriority:  "priority",
	storage.GroupByProjectID: "project_id",
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var due, created, updated int64
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&due, &t.BlockedReason, &created, &updated)
	if err != nil {
		return models.Task{}, err
	}
	t.DueDate = fromMillis(due)
	t.CreatedAt = fromMillis(created)
	t.UpdatedAt = fromMillis(updated)
	return t, nil
}

func taskWhere(f storage.TaskFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.Priority != nil {
		clauses = append(clauses, "priority = ?")
		args = append(args, string(*f.Priority))
	}
	if f.ProjectID != "" {
		clauses = append(clauses, "project_id = ?")
		args = append(args, f.ProjectID)
	}
	if terms := storage.SearchTerms(f.Search); len(terms) > 0 {
		var ors []string
		for _, term := range terms {
			ors = append(ors, "(lower(title) LIKE ? ESCAPE '\\' OR lower(description) LIKE ? ESCAPE '\\')")
			pattern := "%" + escapeLike(term) + "%"
			args = append(args, pattern, pattern)
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// FindTasks lists tasks matching filter in the requested order.
func (s *Store) FindTasks(ctx context.Context, filter storage.TaskFilter, order storage.Sort) ([]models.Task, error) {
	where, args := taskWhere(filter)
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks`+where+orderBy(taskSortColumns, order), args...)
	if err != nil {
		return nil, wrap("list tasks", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, wrap("scan task", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, wrap("list tasks", rows.Err())
}

// FindTaskByID retrieves a task by id.
func (s *Store) FindTaskByID(ctx context.Context, id string) (models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Task{}, wrap("get task", err)
	}
	return t, nil
}

// InsertTask inserts a new task, assigning its id and timestamps.
func (s *Store) InsertTask(ctx context.Context, t models.Task) (models.Task, error) {
	now := storage.Now()
	t.ID = models.NewID()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks(`+taskColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Title, t.Description, string(t.Status), string(t.Priority),
		toMillis(t.DueDate), t.BlockedReason, toMillis(now), toMillis(now))
	if err != nil {
		return models.Task{}, wrap("insert task", err)
	}
	return t, nil
}

// UpdateTaskByID applies the non-nil fields of patch.
func (s *Store) UpdateTaskByID(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	sets := []string{"updated_at = ?"}
	args := []any{toMillis(storage.Now())}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.ProjectID != nil {
		add("project_id", *patch.ProjectID)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.Priority != nil {
		add("priority", string(*patch.Priority))
	}
	if patch.DueDate != nil {
		add("due_date", toMillis(*patch.DueDate))
	}
	if patch.BlockedReason != nil {
		add("blocked_reason", *patch.BlockedReason)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return models.Task{}, wrap("update task", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, wrap("update task", err)
	}
	if affected == 0 {
		return models.Task{}, storage.ErrNotFound
	}
	return s.FindTaskByID(ctx, id)
}

// DeleteTaskByID removes a task by id.
func (s *Store) DeleteTaskByID(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return wrap("delete task", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return wrap("delete task", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CountTasks counts tasks matching filter.
func (s *Store) CountTasks(ctx context.Context, filter storage.TaskFilter) (int64, error) {
	where, args := taskWhere(filter)
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&n); err != nil {
		return 0, wrap("count tasks", err)
	}
	return n, nil
}

// GroupCountTasks counts tasks matching filter per distinct value of field.
func (s *Store) GroupCountTasks(ctx context.Context, filter storage.TaskFilter, field storage.GroupField) (map[string]int64, error) {
	col, ok := groupColumns[field]
	if !ok {
		return nil, fmt.Errorf("group tasks: unsupported field %q", field)
	}
	where, args := taskWhere(filter)
	rows, err := s.db.QueryContext(ctx, `SELECT `+col+`, COUNT(*) FROM tasks`+where+` GROUP BY `+col, args...)
	if err != nil {
		return nil, wrap("group tasks", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			key string
			n   int64
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, wrap("scan group", err)
		}
		counts[key] = n
	}
	return counts, wrap("group tasks", rows.Err())
}
