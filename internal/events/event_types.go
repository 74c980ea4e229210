package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated      EventType = "complaint_created"
	EventComplaintUpdated      EventType = "complaint_updated"
	EventComplaintDeleted      EventType = "complaint_deleted"
	EventFeedbackCreated       EventType = "feedback_created"
	EventFeedbackStatusChanged EventType = "feedback_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ResourceID string      `json:"resource_id"`
	ActorID    string      `json:"actor_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, resourceID, actorID string, at time.Time, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ResourceID: resourceID,
		ActorID:    actorID,
		Timestamp:  at,
		Payload:    payload,
	}
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	Category string                   `json:"category"`
	Priority domain.ComplaintPriority `json:"priority"`
	Title    string                   `json:"title"`
}

// FieldChange records one modified complaint field.
type FieldChange struct {
	Type     domain.ComplaintChangeType `json:"type"`
	Field    string                     `json:"field"`
	OldValue any                        `json:"old_value"`
	NewValue any                        `json:"new_value"`
}

// ComplaintUpdatedPayload payload.
type ComplaintUpdatedPayload struct {
	Changes []FieldChange `json:"changes"`
}

// ComplaintDeletedPayload payload.
type ComplaintDeletedPayload struct {
	Title  string                 `json:"title"`
	Status domain.ComplaintStatus `json:"status"`
}

// FeedbackCreatedPayload payload.
type FeedbackCreatedPayload struct {
	Rating   int    `json:"rating"`
	Category string `json:"category"`
}

// FeedbackStatusChangedPayload payload.
type FeedbackStatusChangedPayload struct {
	NewStatus domain.FeedbackStatus `json:"new_status"`
}
