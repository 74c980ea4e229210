package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Category    string                   `json:"category"`
	Priority    domain.ComplaintPriority `json:"priority"`
	Anonymous   bool                     `json:"anonymous"`
}

// UpdateComplaintRequest is a partial update; absent keys are left alone and
// explicit nulls clear nullable fields.
type UpdateComplaintRequest struct {
	Status              domain.Optional[domain.ComplaintStatus]   `json:"status"`
	AssignedTo          domain.Optional[*string]                  `json:"assigned_to"`
	Department          domain.Optional[*string]                  `json:"department"`
	Priority            domain.Optional[domain.ComplaintPriority] `json:"priority"`
	Progress            domain.Optional[int]                      `json:"progress"`
	EstimatedResolution domain.Optional[*string]                  `json:"estimated_resolution"`
}

// Patch converts the request into a domain patch.
func (r UpdateComplaintRequest) Patch() domain.ComplaintPatch {
	return domain.ComplaintPatch{
		Status:              r.Status,
		AssignedTo:          r.AssignedTo,
		Department:          r.Department,
		Priority:            r.Priority,
		Progress:            r.Progress,
		EstimatedResolution: r.EstimatedResolution,
	}
}

// ComplaintResponse is the wire form of a complaint.
type ComplaintResponse struct {
	ID                  string                   `json:"_id"`
	Title               string                   `json:"title"`
	Description         string                   `json:"description"`
	Category            string                   `json:"category"`
	Priority            domain.ComplaintPriority `json:"priority"`
	Status              domain.ComplaintStatus   `json:"status"`
	UserID              string                   `json:"user_id"`
	Anonymous           bool                     `json:"anonymous"`
	AssignedTo          *string                  `json:"assigned_to"`
	Department          *string                  `json:"department"`
	Progress            int                      `json:"progress"`
	EstimatedResolution *string                  `json:"estimated_resolution"`
	ResolvedAt          *time.Time               `json:"resolved_at,omitempty"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
}

// ComplaintHistoryResponse is one audit entry.
type ComplaintHistoryResponse struct {
	ID          string         `json:"id"`
	ComplaintID string         `json:"complaint_id"`
	ChangedBy   string         `json:"changed_by"`
	ChangeType  string         `json:"change_type"`
	OldValue    map[string]any `json:"old_value"`
	NewValue    map[string]any `json:"new_value"`
	CreatedAt   time.Time      `json:"created_at"`
}
