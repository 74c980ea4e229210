package domain

// CategoryCount is one bucket of a group-by-category aggregation.
type CategoryCount struct {
	Category string
	Count    int64
}

// RatingCount is the number of feedback entries carrying a rating.
type RatingCount struct {
	Rating int
	Count  int64
}

// Stats summarizes the complaint and feedback collections.
type Stats struct {
	TotalComplaints      int64
	TotalFeedback        int64
	OpenComplaints       int64
	ResolvedComplaints   int64
	HighPriorityAlerts   int64
	CustomerSatisfaction float64
	AvgResolutionHours   float64
}

// Sentiment splits feedback by rating band.
type Sentiment struct {
	Positive int64
	Neutral  int64
	Negative int64
}

// Insights holds category and sentiment breakdowns.
type Insights struct {
	ComplaintsByCategory []CategoryCount
	FeedbackByCategory   []CategoryCount
	Sentiment            Sentiment
	TotalFeedback        int64
	CustomerSatisfaction float64
}
