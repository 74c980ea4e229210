package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CreateFeedbackRequest payload.
type CreateFeedbackRequest struct {
	Rating   int    `json:"rating"`
	Category string `json:"category"`
	Comments string `json:"comments"`
}

// UpdateFeedbackRequest payload. An absent status only refreshes updated_at.
type UpdateFeedbackRequest struct {
	Status domain.Optional[domain.FeedbackStatus] `json:"status"`
}

// FeedbackResponse is the wire form of a feedback entry.
type FeedbackResponse struct {
	ID        string                `json:"_id"`
	Rating    int                   `json:"rating"`
	Category  string                `json:"category"`
	Comments  string                `json:"comments"`
	Status    domain.FeedbackStatus `json:"status"`
	UserID    string                `json:"user_id"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}
