package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// AuditService records complaint changes into the history store.
type AuditService struct {
	dispatcher events.Dispatcher
	history    repository.ComplaintHistoryRepository
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, history repository.ComplaintHistoryRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{dispatcher: dispatcher, history: history, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventComplaintCreated, a.handleComplaintCreated)
	a.dispatcher.Subscribe(events.EventComplaintUpdated, a.handleComplaintUpdated)
	a.dispatcher.Subscribe(events.EventComplaintDeleted, a.handleComplaintDeleted)
	a.dispatcher.Subscribe(events.EventFeedbackCreated, a.handleFeedbackEvent)
	a.dispatcher.Subscribe(events.EventFeedbackStatusChanged, a.handleFeedbackEvent)
}

func (a *AuditService) handleComplaintCreated(_ context.Context, event events.Event) error {
	a.logger.Info("ComplaintCreated", zap.String("complaint_id", event.ResourceID), zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleComplaintUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintUpdatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	for _, change := range payload.Changes {
		entry := &domain.ComplaintHistory{
			ComplaintID: event.ResourceID,
			ChangedByID: event.ActorID,
			ChangeType:  change.Type,
			OldValue:    map[string]any{change.Field: change.OldValue},
			NewValue:    map[string]any{change.Field: change.NewValue},
		}
		if err := a.history.Create(ctx, entry); err != nil {
			return fmt.Errorf("record %s: %w", change.Type, err)
		}
	}
	return nil
}

func (a *AuditService) handleComplaintDeleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintDeletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	entry := &domain.ComplaintHistory{
		ComplaintID: event.ResourceID,
		ChangedByID: event.ActorID,
		ChangeType:  domain.ChangeTypeDeleted,
		OldValue: map[string]any{
			"title":  payload.Title,
			"status": string(payload.Status),
		},
	}
	if err := a.history.Create(ctx, entry); err != nil {
		return fmt.Errorf("record deletion: %w", err)
	}
	return nil
}

func (a *AuditService) handleFeedbackEvent(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), zap.String("feedback_id", event.ResourceID), zap.Any("payload", event.Payload))
	return nil
}
