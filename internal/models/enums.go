package models

import "fmt"

// Status is the column a task currently sits in.
type Status string

const (
	StatusBacklog Status = "backlog"
	StatusBlocked Status = "blocked"
	StatusTodo    Status = "todo"
	StatusDone    Status = "done"
)

var validStatuses = []Status{StatusBacklog, StatusBlocked, StatusTodo, StatusDone}

// Statuses returns every task status in board order.
func Statuses() []Status {
	return append([]Status(nil), validStatuses...)
}

// ParseStatus converts raw into a Status, rejecting unknown values.
func ParseStatus(raw string) (Status, error) {
	for _, s := range validStatuses {
		if Status(raw) == s {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid status %q: must be one of backlog, blocked, todo, done", raw)
}

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Priorities returns every task priority from lowest to highest.
func Priorities() []Priority {
	return append([]Priority(nil), validPriorities...)
}

// ParsePriority converts raw into a Priority, rejecting unknown values.
func ParsePriority(raw string) (Priority, error) {
	for _, p := range validPriorities {
		if Priority(raw) == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q: must be one of low, medium, high", raw)
}

const (
	DefaultStatus   = StatusBacklog
	DefaultPriority = PriorityMedium
)
