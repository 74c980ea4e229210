package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "open"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
)

// Normalize maps accepted spellings onto the canonical status.
func (s ComplaintStatus) Normalize() ComplaintStatus {
	if s == "in-progress" {
		return ComplaintStatusInProgress
	}
	return s
}

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintStatusOpen, ComplaintStatusInProgress, ComplaintStatusResolved:
		return true
	}
	return false
}

// ComplaintPriority enumerates urgency.
type ComplaintPriority string

const (
	ComplaintPriorityLow    ComplaintPriority = "low"
	ComplaintPriorityMedium ComplaintPriority = "medium"
	ComplaintPriorityHigh   ComplaintPriority = "high"
)

// Valid reports whether p is a known priority.
func (p ComplaintPriority) Valid() bool {
	switch p {
	case ComplaintPriorityLow, ComplaintPriorityMedium, ComplaintPriorityHigh:
		return true
	}
	return false
}

const (
	MinProgress = 0
	MaxProgress = 100
)

// Complaint is a grievance filed by a user and triaged by admins.
type Complaint struct {
	ID          string
	Title       string
	Description string
	Category    string
	Priority    ComplaintPriority
	Status      ComplaintStatus
	// UserID is the owner. It never changes after creation.
	UserID              string
	Anonymous           bool
	AssignedTo          *string
	Department          *string
	Progress            int
	EstimatedResolution *string
	ResolvedAt          *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ComplaintPatch is the set of admin-editable fields. Only fields marked Set
// are written.
type ComplaintPatch struct {
	Status              Optional[ComplaintStatus]
	AssignedTo          Optional[*string]
	Department          Optional[*string]
	Priority            Optional[ComplaintPriority]
	Progress            Optional[int]
	EstimatedResolution Optional[*string]

	// Maintained by the lifecycle manager, never taken from callers.
	ResolvedAt Optional[*time.Time]
	UpdatedAt  time.Time
}

// IsEmpty reports whether no caller-editable field is present.
func (p ComplaintPatch) IsEmpty() bool {
	return !p.Status.Set && !p.AssignedTo.Set && !p.Department.Set &&
		!p.Priority.Set && !p.Progress.Set && !p.EstimatedResolution.Set
}

// Apply returns a copy of c with the patch applied.
func (p ComplaintPatch) Apply(c Complaint) Complaint {
	if p.Status.Set {
		c.Status = p.Status.Value
	}
	if p.AssignedTo.Set {
		c.AssignedTo = p.AssignedTo.Value
	}
	if p.Department.Set {
		c.Department = p.Department.Value
	}
	if p.Priority.Set {
		c.Priority = p.Priority.Value
	}
	if p.Progress.Set {
		c.Progress = p.Progress.Value
	}
	if p.EstimatedResolution.Set {
		c.EstimatedResolution = p.EstimatedResolution.Value
	}
	if p.ResolvedAt.Set {
		c.ResolvedAt = p.ResolvedAt.Value
	}
	if !p.UpdatedAt.IsZero() {
		c.UpdatedAt = p.UpdatedAt
	}
	return c
}
