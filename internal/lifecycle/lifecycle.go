// Package lifecycle holds the rules for moving a task between statuses.
//
// Any status may follow any other. The only gate is the blocked reason: a
// task may be blocked only with a non-empty reason, and the reason is
// discarded as soon as the task leaves the blocked status.
package lifecycle

import (
	"strings"

	"kanban/internal/apperr"
	"kanban/internal/models"
)

// MsgBlockedReasonRequired is reported when a task would end up blocked
// without a reason.
const MsgBlockedReasonRequired = "Blocked reason is required when status is blocked"

// Change describes a requested status transition. Nil requested fields mean
// the caller did not supply them.
type Change struct {
	CurrentStatus   models.Status
	CurrentReason   string
	RequestedStatus *models.Status
	RequestedReason *string
}

// Apply resolves the status and blocked reason that should be stored after c.
func Apply(c Change) (models.Status, string, error) {
	status := c.CurrentStatus
	if c.RequestedStatus != nil {
		status = *c.RequestedStatus
	}
	if status == "" {
		status = models.DefaultStatus
	}

	if status != models.StatusBlocked {
		return status, "", nil
	}

	reason := c.CurrentReason
	if c.RequestedReason != nil {
		reason = *c.RequestedReason
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", "", apperr.ValidationField("blockedReason", MsgBlockedReasonRequired)
	}
	return status, reason, nil
}

// ForCreate resolves the initial status of a new task.
func ForCreate(requested *models.Status, reason *string) (models.Status, string, error) {
	return Apply(Change{RequestedStatus: requested, RequestedReason: reason})
}

// ForUpdate resolves a partial update against the stored task.
func ForUpdate(current models.Task, requested *models.Status, reason *string) (models.Status, string, error) {
	return Apply(Change{
		CurrentStatus:   current.Status,
		CurrentReason:   current.BlockedReason,
		RequestedStatus: requested,
		RequestedReason: reason,
	})
}
