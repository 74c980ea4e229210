package dto

import "time"

// DirectoryUser is a user as listed for admins. The password hash is never
// part of it.
type DirectoryUser struct {
	MongoID          string     `json:"_id"`
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	Department       string     `json:"department"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	LastLogin        *time.Time `json:"last_login"`
	TicketsSubmitted int64      `json:"tickets_submitted"`
	TicketsResolved  *int64     `json:"tickets_resolved,omitempty"`
}

// StatsResponse summarizes the admin dashboard.
type StatsResponse struct {
	TotalTickets         int64   `json:"total_tickets"`
	AvgResolutionTime    string  `json:"avg_resolution_time"`
	HighPriorityAlerts   int64   `json:"high_priority_alerts"`
	CustomerSatisfaction float64 `json:"customer_satisfaction"`
	TotalFeedback        int64   `json:"total_feedback"`
	OpenComplaints       int64   `json:"open_complaints"`
	ResolvedComplaints   int64   `json:"resolved_complaints"`
}

// CategoryBucket is one group of a category distribution.
type CategoryBucket struct {
	Category string `json:"_id"`
	Count    int64  `json:"count"`
}

// CategoryDistribution groups complaints and feedback by category.
type CategoryDistribution struct {
	Complaints []CategoryBucket `json:"complaints"`
	Feedback   []CategoryBucket `json:"feedback"`
}

// SentimentResponse splits feedback by rating band.
type SentimentResponse struct {
	Positive int64 `json:"positive"`
	Neutral  int64 `json:"neutral"`
	Negative int64 `json:"negative"`
}

// InsightsResponse is the admin insights payload.
type InsightsResponse struct {
	CategoryDistribution CategoryDistribution `json:"category_distribution"`
	Sentiment            SentimentResponse    `json:"sentiment"`
	TotalFeedback        int64                `json:"total_feedback"`
	CustomerSatisfaction float64              `json:"customer_satisfaction"`
}
