package domain

import "time"

// FeedbackStatus enumerates review states.
type FeedbackStatus string

const (
	FeedbackStatusPending  FeedbackStatus = "pending"
	FeedbackStatusReviewed FeedbackStatus = "reviewed"
)

// Valid reports whether s is a known status.
func (s FeedbackStatus) Valid() bool {
	return s == FeedbackStatusPending || s == FeedbackStatusReviewed
}

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a rated comment submitted by a user.
type Feedback struct {
	ID        string
	Rating    int
	Category  string
	Comments  string
	Status    FeedbackStatus
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
