package models

import "time"

// Project describes a board that groups multiple tasks.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Task represents a single card on the board.
type Task struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        Status    `json:"status"`
	Priority      Priority  `json:"priority"`
	DueDate       time.Time `json:"dueDate"`
	BlockedReason string    `json:"blockedReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProjectPatch lists the project fields changed by a partial update.
// Nil fields are left untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
	Color       *string
}

// TaskPatch lists the task fields changed by a partial update.
// A non-nil BlockedReason pointing at "" removes the stored reason.
type TaskPatch struct {
	ProjectID     *string
	Title         *string
	Description   *string
	Status        *Status
	Priority      *Priority
	DueDate       *time.Time
	BlockedReason *string
}

// ProjectSummary is the slice of a project embedded in task responses.
type ProjectSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Summary returns the summary of p.
func (p Project) Summary() ProjectSummary {
	return ProjectSummary{ID: p.ID, Name: p.Name, Color: p.Color}
}

// ProjectView is a project annotated with the number of tasks referencing it.
type ProjectView struct {
	Project
	TaskCount int64 `json:"taskCount"`
}

// TaskView is a task joined with the summary of its project. Project is nil
// when the referenced project no longer exists.
type TaskView struct {
	Task
	Project *ProjectSummary `json:"project"`
}

// ProjectStats aggregates the tasks of a single project.
type ProjectStats struct {
	Project       Project          `json:"project"`
	StatusStats   map[string]int64 `json:"statusStats"`
	PriorityStats map[string]int64 `json:"priorityStats"`
	TotalTasks    int64            `json:"totalTasks"`
}
