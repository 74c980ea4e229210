package domain

import "time"

// ComplaintChangeType captures what changed in a history entry.
type ComplaintChangeType string

const (
	ChangeTypeStatus              ComplaintChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee            ComplaintChangeType = "ASSIGNEE_CHANGE"
	ChangeTypeDepartment          ComplaintChangeType = "DEPARTMENT_CHANGE"
	ChangeTypePriority            ComplaintChangeType = "PRIORITY_CHANGE"
	ChangeTypeProgress            ComplaintChangeType = "PROGRESS_CHANGE"
	ChangeTypeEstimatedResolution ComplaintChangeType = "ESTIMATED_RESOLUTION_CHANGE"
	ChangeTypeDeleted             ComplaintChangeType = "DELETED"
)

// ComplaintHistory is an immutable audit trail entry.
type ComplaintHistory struct {
	ID          string
	ComplaintID string
	ChangedByID string
	ChangeType  ComplaintChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}
