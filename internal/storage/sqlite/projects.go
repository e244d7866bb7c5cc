package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"kanban/internal/models"
	"kanban/internal/storage"
)

const projectColumns = `id, name, description, color, created_at, updated_at`

var projectSortColumns = map[storage.SortField]string{
	storage.SortCreatedAt: "created_at",
	storage.SortUpdatedAt: "updated_at",
	storage.SortName:      "name",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (models.Project, error) {
	var p models.Project
	var created, updated int64
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &created, &updated); err != nil {
		return models.Project{}, err
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

func projectWhere(f storage.ProjectFilter) (string, []any, bool) {
	var (
		clauses []string
		args    []any
	)
	if f.Name != "" {
		clauses = append(clauses, "name = ?")
		args = append(args, f.Name)
	}
	if f.ExcludeID != "" {
		clauses = append(clauses, "id <> ?")
		args = append(args, f.ExcludeID)
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return "", nil, false
		}
		clauses = append(clauses, "id IN ("+placeholders(len(f.IDs))+")")
		for _, id := range f.IDs {
			args = append(args, id)
		}
	}
	if len(clauses) == 0 {
		return "", nil, true
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, true
}

// FindProjects lists projects matching filter in the requested order.
func (s *Store) FindProjects(ctx context.Context, filter storage.ProjectFilter, order storage.Sort) ([]models.Project, error) {
	where, args, ok := projectWhere(filter)
	projects := []models.Project{}
	if !ok {
		return projects, nil
	}

	query := `SELECT ` + projectColumns + ` FROM projects` + where + orderBy(projectSortColumns, order)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list projects", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, wrap("scan project", err)
		}
		projects = append(projects, p)
	}
	return projects, wrap("list projects", rows.Err())
}

// FindProjectByID fetches a single project by id.
func (s *Store) FindProjectByID(ctx context.Context, id string) (models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Project{}, wrap("get project", err)
	}
	return p, nil
}

// InsertProject persists a new project, assigning its id and timestamps.
func (s *Store) InsertProject(ctx context.Context, p models.Project) (models.Project, error) {
	now := storage.Now()
	p.ID = models.NewID()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects(id, name, description, color, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Color, toMillis(now), toMillis(now))
	if err != nil {
		return models.Project{}, wrap("insert project", err)
	}
	return p, nil
}

// UpdateProjectByID applies the non-nil fields of patch.
func (s *Store) UpdateProjectByID(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error) {
	sets := []string{"updated_at = ?"}
	args := []any{toMillis(storage.Now())}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *patch.Color)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return models.Project{}, wrap("update project", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Project{}, wrap("update project", err)
	}
	if affected == 0 {
		return models.Project{}, storage.ErrNotFound
	}
	return s.FindProjectByID(ctx, id)
}

// DeleteProjectByID removes a project. Tasks are left to the caller.
func (s *Store) DeleteProjectByID(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return wrap("delete project", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return wrap("delete project", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CountProjects counts projects matching filter.
func (s *Store) CountProjects(ctx context.Context, filter storage.ProjectFilter) (int64, error) {
	where, args, ok := projectWhere(filter)
	if !ok {
		return 0, nil
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`+where, args...).Scan(&n); err != nil {
		return 0, wrap("count projects", err)
	}
	return n, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// orderBy renders an ORDER BY clause from a whitelisted column, falling back
// to creation time. Ties are broken by id, which grows with insertion order.
func orderBy(columns map[storage.SortField]string, order storage.Sort) string {
	col, ok := columns[order.Field]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if order.Descending {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", id " + dir
}
