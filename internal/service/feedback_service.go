package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/errorutil"
)

// FeedbackService manages customer feedback.
type FeedbackService struct {
	feedback   repository.FeedbackRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// FeedbackCreateInput describes a feedback submission.
type FeedbackCreateInput struct {
	Rating   int
	Category string
	Comments string
}

// NewFeedbackService constructs the service.
func NewFeedbackService(repo repository.FeedbackRepository, dispatcher events.Dispatcher, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{feedback: repo, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// List returns all feedback for admins and the caller's own otherwise.
func (s *FeedbackService) List(ctx context.Context, identity domain.Identity) ([]domain.Feedback, error) {
	return s.feedback.List(ctx, repository.FeedbackFilter{OwnerID: auth.OwnerScope(identity)})
}

// Create stores feedback from the caller in pending state.
func (s *FeedbackService) Create(ctx context.Context, identity domain.Identity, input FeedbackCreateInput) (*domain.Feedback, error) {
	if input.Rating < domain.MinRating || input.Rating > domain.MaxRating {
		return nil, apperrors.NewValidationError("Rating must be between 1 and 5")
	}
	now := s.now()
	fb := &domain.Feedback{
		Rating:    input.Rating,
		Category:  input.Category,
		Comments:  input.Comments,
		Status:    domain.FeedbackStatusPending,
		UserID:    identity.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventFeedbackCreated, fb.ID, identity.UserID, now, events.FeedbackCreatedPayload{
		Rating:   fb.Rating,
		Category: fb.Category,
	}))
	return fb, nil
}

// UpdateStatus touches a feedback entry and, when status is present, changes
// its review status. Admin only.
func (s *FeedbackService) UpdateStatus(ctx context.Context, identity domain.Identity, id string, status domain.Optional[domain.FeedbackStatus]) (*domain.Feedback, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}
	if status.Set && !status.Value.Valid() {
		return nil, apperrors.NewValidationError("Invalid status")
	}
	now := s.now()
	fb, err := s.feedback.UpdateStatus(ctx, id, status, now)
	if err != nil {
		return nil, notFoundAs(err, "Feedback")
	}
	if status.Set {
		s.publish(ctx, events.New(events.EventFeedbackStatusChanged, id, identity.UserID, now, events.FeedbackStatusChangedPayload{NewStatus: status.Value}))
	}
	return fb, nil
}

func (s *FeedbackService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, event)
}
