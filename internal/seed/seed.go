// Package seed loads demo projects and tasks through the services.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"kanban/internal/service"
	"kanban/internal/validate"
)

//go:embed seed.yaml
var defaultFixture []byte

// Fixture is the YAML document describing the seed data.
type Fixture struct {
	Projects []ProjectFixture `yaml:"projects"`
	Tasks    []TaskFixture    `yaml:"tasks"`
}

type ProjectFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Color       string `yaml:"color"`
}

// TaskFixture references its project by name.
type TaskFixture struct {
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	Status        string `yaml:"status"`
	Priority      string `yaml:"priority"`
	DueDate       string `yaml:"dueDate"`
	BlockedReason string `yaml:"blockedReason"`
	Project       string `yaml:"project"`
}

// Result counts what a run changed.
type Result struct {
	DeletedProjects int
	DeletedTasks    int
	Projects        int
	Tasks           int
}

// Default returns the bundled fixture.
func Default() (Fixture, error) {
	return parse(defaultFixture)
}

// Load reads a fixture from r.
func Load(r io.Reader) (Fixture, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return parse(raw)
}

func parse(raw []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}

// Run inserts the fixture. With reset, every existing task and then every
// project is deleted first. Projects that already exist are reused.
func Run(ctx context.Context, svc *service.Services, f Fixture, reset bool, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var res Result

	if reset {
		if err := wipe(ctx, svc, &res); err != nil {
			return res, err
		}
		logger.Info("cleared existing data",
			slog.Int("projects", res.DeletedProjects),
			slog.Int("tasks", res.DeletedTasks),
		)
	}

	existing, err := svc.Projects.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list projects: %w", err)
	}
	ids := make(map[string]string, len(existing))
	for _, p := range existing {
		ids[p.Name] = p.ID
	}

	for _, pf := range f.Projects {
		if _, ok := ids[pf.Name]; ok {
			logger.Info("project already present", slog.String("name", pf.Name))
			continue
		}
		p, err := svc.Projects.Create(ctx, validate.CreateProjectInput{
			Name:        pf.Name,
			Description: pf.Description,
			Color:       pf.Color,
		})
		if err != nil {
			return res, fmt.Errorf("create project %q: %w", pf.Name, err)
		}
		ids[p.Name] = p.ID
		res.Projects++
	}

	for _, tf := range f.Tasks {
		projectID, ok := ids[tf.Project]
		if !ok {
			return res, fmt.Errorf("task %q: unknown project %q", tf.Title, tf.Project)
		}
		in := validate.CreateTaskInput{
			Title:       tf.Title,
			Description: tf.Description,
			Status:      tf.Status,
			Priority:    tf.Priority,
			DueDate:     tf.DueDate,
			ProjectID:   projectID,
		}
		if tf.BlockedReason != "" {
			reason := tf.BlockedReason
			in.BlockedReason = &reason
		}
		t, err := svc.Tasks.Create(ctx, in)
		if err != nil {
			return res, fmt.Errorf("create task %q: %w", tf.Title, err)
		}
		logger.Debug("task created", slog.String("title", t.Title), slog.String("status", string(t.Status)))
		res.Tasks++
	}

	logger.Info("seeding completed", slog.Int("projects", res.Projects), slog.Int("tasks", res.Tasks))
	return res, nil
}

func wipe(ctx context.Context, svc *service.Services, res *Result) error {
	tasks, err := svc.Tasks.List(ctx, validate.TaskQuery{})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	for _, t := range tasks {
		if err := svc.Tasks.Delete(ctx, t.ID); err != nil {
			return fmt.Errorf("delete task %s: %w", t.ID, err)
		}
		res.DeletedTasks++
	}

	projects, err := svc.Projects.List(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	for _, p := range projects {
		if err := svc.Projects.Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("delete project %s: %w", p.ID, err)
		}
		res.DeletedProjects++
	}
	return nil
}
