package service

import (
	"context"
	"math"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// AnalyticsService computes admin dashboards on demand.
type AnalyticsService struct {
	complaints repository.ComplaintRepository
	feedback   repository.FeedbackRepository
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(complaints repository.ComplaintRepository, feedback repository.FeedbackRepository) *AnalyticsService {
	return &AnalyticsService{complaints: complaints, feedback: feedback}
}

// Stats returns headline counters. Admin only.
func (s *AnalyticsService) Stats(ctx context.Context, identity domain.Identity) (*domain.Stats, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}

	var (
		stats domain.Stats
		err   error
	)
	counters := []struct {
		dst    *int64
		filter repository.ComplaintFilter
	}{
		{&stats.TotalComplaints, repository.ComplaintFilter{}},
		{&stats.OpenComplaints, repository.ComplaintFilter{Status: domain.ComplaintStatusOpen}},
		{&stats.ResolvedComplaints, repository.ComplaintFilter{Status: domain.ComplaintStatusResolved}},
		{&stats.HighPriorityAlerts, repository.ComplaintFilter{Status: domain.ComplaintStatusOpen, Priority: domain.ComplaintPriorityHigh}},
	}
	for _, c := range counters {
		if *c.dst, err = s.complaints.Count(ctx, c.filter); err != nil {
			return nil, err
		}
	}
	if stats.TotalFeedback, err = s.feedback.Count(ctx, repository.FeedbackFilter{}); err != nil {
		return nil, err
	}
	if stats.CustomerSatisfaction, err = s.satisfaction(ctx); err != nil {
		return nil, err
	}
	hours, err := s.complaints.AverageResolutionHours(ctx)
	if err != nil {
		return nil, err
	}
	stats.AvgResolutionHours = round1(hours)
	return &stats, nil
}

// Insights returns category distributions and the sentiment split. Admin only.
func (s *AnalyticsService) Insights(ctx context.Context, identity domain.Identity) (*domain.Insights, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}

	byComplaint, err := s.complaints.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	byFeedback, err := s.feedback.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := s.feedback.CountByRating(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.feedback.Count(ctx, repository.FeedbackFilter{})
	if err != nil {
		return nil, err
	}
	satisfaction, err := s.satisfaction(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Insights{
		ComplaintsByCategory: nonNil(byComplaint),
		FeedbackByCategory:   nonNil(byFeedback),
		Sentiment:            sentimentOf(ratings),
		TotalFeedback:        total,
		CustomerSatisfaction: satisfaction,
	}, nil
}

func (s *AnalyticsService) satisfaction(ctx context.Context) (float64, error) {
	avg, err := s.feedback.AverageRating(ctx)
	if err != nil {
		return 0, err
	}
	return round1(avg), nil
}

// sentimentOf buckets rating counts: 4 and above positive, 3 neutral, 2 and
// below negative.
func sentimentOf(ratings []domain.RatingCount) domain.Sentiment {
	var s domain.Sentiment
	for _, r := range ratings {
		switch {
		case r.Rating >= 4:
			s.Positive += r.Count
		case r.Rating == 3:
			s.Neutral += r.Count
		default:
			s.Negative += r.Count
		}
	}
	return s
}

func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10) / 10
}

func nonNil(counts []domain.CategoryCount) []domain.CategoryCount {
	if counts == nil {
		return []domain.CategoryCount{}
	}
	return counts
}
