package types

import "time"

// TaskPatch describes a partial task update. Nil fields are absent: they are
// neither validated, applied, nor serialized. AssigneeIDs is a pointer to a
// slice so that "clear all assignees" (pointer to empty slice) stays distinct
// from "leave assignees alone" (nil pointer).
type TaskPatch struct {
	ProjectID   *string     `json:"projectId,omitempty"`
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	AssigneeIDs *[]string   `json:"assigneeIds,omitempty"`
	StartDate   *string     `json:"startDate,omitempty"`
	DueDate     *string     `json:"dueDate,omitempty"`
}

// Empty reports whether the patch carries no field at all
func (p *TaskPatch) Empty() bool {
	return p == nil || (p.ProjectID == nil && p.Title == nil && p.Description == nil &&
		p.Status == nil && p.Priority == nil && p.AssigneeIDs == nil &&
		p.StartDate == nil && p.DueDate == nil)
}

// ApplyTo overlays the patch onto a copy of the task and refreshes the
// update timestamp. The input task is not modified.
func (p *TaskPatch) ApplyTo(t *Task, now time.Time) *Task {
	merged := t.Clone()
	if p == nil {
		return merged
	}
	if p.ProjectID != nil {
		merged.ProjectID = *p.ProjectID
	}
	if p.Title != nil {
		merged.Title = *p.Title
	}
	if p.Description != nil {
		merged.Description = *p.Description
	}
	if p.Status != nil {
		merged.Status = *p.Status
	}
	if p.Priority != nil {
		merged.Priority = *p.Priority
	}
	if p.AssigneeIDs != nil {
		merged.AssigneeIDs = append([]string{}, (*p.AssigneeIDs)...)
	}
	if p.StartDate != nil {
		merged.StartDate = *p.StartDate
	}
	if p.DueDate != nil {
		merged.DueDate = *p.DueDate
	}
	merged.UpdatedAt = now
	return merged
}

// Fields returns only the present fields, keyed by their wire names. This is
// the serialization step handed to the store so absent fields never reach
// the remote write.
func (p *TaskPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p == nil {
		return fields
	}
	if p.ProjectID != nil {
		fields["projectId"] = *p.ProjectID
	}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.Priority != nil {
		fields["priority"] = *p.Priority
	}
	if p.AssigneeIDs != nil {
		fields["assigneeIds"] = *p.AssigneeIDs
	}
	if p.StartDate != nil {
		fields["startDate"] = *p.StartDate
	}
	if p.DueDate != nil {
		fields["dueDate"] = *p.DueDate
	}
	return fields
}

// ProjectPatch describes a partial project update. Same absence semantics
// as TaskPatch.
type ProjectPatch struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty"`
	Priority    *Priority      `json:"priority,omitempty"`
	AssigneeID  *string        `json:"assigneeId,omitempty"`
	StartDate   *string        `json:"startDate,omitempty"`
	DueDate     *string        `json:"dueDate,omitempty"`
}

// Empty reports whether the patch carries no field at all
func (p *ProjectPatch) Empty() bool {
	return p == nil || (p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.AssigneeID == nil && p.StartDate == nil && p.DueDate == nil)
}

// ApplyTo overlays the patch onto a copy of the project and refreshes the
// update timestamp. The input project is not modified.
func (p *ProjectPatch) ApplyTo(pr *Project, now time.Time) *Project {
	merged := pr.Clone()
	if p == nil {
		return merged
	}
	if p.Title != nil {
		merged.Title = *p.Title
	}
	if p.Description != nil {
		merged.Description = *p.Description
	}
	if p.Status != nil {
		merged.Status = *p.Status
	}
	if p.Priority != nil {
		merged.Priority = *p.Priority
	}
	if p.AssigneeID != nil {
		merged.AssigneeID = *p.AssigneeID
	}
	if p.StartDate != nil {
		merged.StartDate = *p.StartDate
	}
	if p.DueDate != nil {
		merged.DueDate = *p.DueDate
	}
	merged.UpdatedAt = now
	return merged
}

// Fields returns only the present fields, keyed by their wire names
func (p *ProjectPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p == nil {
		return fields
	}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.Priority != nil {
		fields["priority"] = *p.Priority
	}
	if p.AssigneeID != nil {
		fields["assigneeId"] = *p.AssigneeID
	}
	if p.StartDate != nil {
		fields["startDate"] = *p.StartDate
	}
	if p.DueDate != nil {
		fields["dueDate"] = *p.DueDate
	}
	return fields
}
