package validate

import (
	"fmt"
	"time"

	"github.com/loftlab/huddle/pkg/types"
)

// Field limits
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000

	// DateLayout is the ISO calendar date format used by StartDate/DueDate
	DateLayout = "2006-01-02"
)

// Result reports the outcome of validating an entity. Errors holds every
// violated rule, not just the first.
type Result struct {
	Valid  bool
	Errors []string
}

func result(errs []string) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Task validates the merged view of a task. Callers must overlay any pending
// patch onto the existing entity before calling, so a partial update cannot
// slip an invalid merged entity past the gate.
func Task(t *types.Task) Result {
	var errs []string

	if t.WorkspaceID == "" {
		errs = append(errs, "workspaceId is required")
	}
	if t.Title == "" {
		errs = append(errs, "title is required")
	}
	if len(t.Title) > MaxTitleLength {
		errs = append(errs, fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	if len(t.Description) > MaxDescriptionLength {
		errs = append(errs, fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	}
	if t.Status != "" && !validTaskStatus(t.Status) {
		errs = append(errs, fmt.Sprintf("unknown status %q", t.Status))
	}
	if t.Priority != "" && !validPriority(t.Priority) {
		errs = append(errs, fmt.Sprintf("unknown priority %q", t.Priority))
	}
	errs = append(errs, dateErrors(t.StartDate, t.DueDate)...)

	return result(errs)
}

// Project validates the merged view of a project
func Project(p *types.Project) Result {
	var errs []string

	if p.WorkspaceID == "" {
		errs = append(errs, "workspaceId is required")
	}
	if p.Title == "" {
		errs = append(errs, "title is required")
	}
	if len(p.Title) > MaxTitleLength {
		errs = append(errs, fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	if len(p.Description) > MaxDescriptionLength {
		errs = append(errs, fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	}
	if p.Status != "" && !validProjectStatus(p.Status) {
		errs = append(errs, fmt.Sprintf("unknown status %q", p.Status))
	}
	if p.Priority != "" && !validPriority(p.Priority) {
		errs = append(errs, fmt.Sprintf("unknown priority %q", p.Priority))
	}
	errs = append(errs, dateErrors(p.StartDate, p.DueDate)...)

	return result(errs)
}

// dateErrors checks date formats and the startDate<=dueDate ordering.
// The ordering rule only fires when both dates parsed, so a malformed date
// reports exactly one error.
func dateErrors(startDate, dueDate string) []string {
	var errs []string

	var start, due time.Time
	var startOK, dueOK bool

	if startDate != "" {
		t, err := time.Parse(DateLayout, startDate)
		if err != nil {
			errs = append(errs, fmt.Sprintf("startDate %q is not a valid date (want YYYY-MM-DD)", startDate))
		} else {
			start, startOK = t, true
		}
	}
	if dueDate != "" {
		t, err := time.Parse(DateLayout, dueDate)
		if err != nil {
			errs = append(errs, fmt.Sprintf("dueDate %q is not a valid date (want YYYY-MM-DD)", dueDate))
		} else {
			due, dueOK = t, true
		}
	}
	if startOK && dueOK && due.Before(start) {
		errs = append(errs, "dueDate must be on or after startDate")
	}

	return errs
}

func validTaskStatus(s types.TaskStatus) bool {
	switch s {
	case types.TaskStatusBacklog, types.TaskStatusTodo, types.TaskStatusInProgress,
		types.TaskStatusInReview, types.TaskStatusDone:
		return true
	}
	return false
}

func validProjectStatus(s types.ProjectStatus) bool {
	switch s {
	case types.ProjectStatusPlanning, types.ProjectStatusActive, types.ProjectStatusOnHold,
		types.ProjectStatusCompleted, types.ProjectStatusArchived:
		return true
	}
	return false
}

func validPriority(p types.Priority) bool {
	switch p {
	case types.PriorityLow, types.PriorityMedium, types.PriorityHigh, types.PriorityUrgent:
		return true
	}
	return false
}
