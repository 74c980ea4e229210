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

// ComplaintService coordinates the complaint lifecycle.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	history    repository.ComplaintHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ComplaintDependencies bundles repositories for complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	HistoryRepo   repository.ComplaintHistoryRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// ComplaintCreateInput describes complaint creation payload.
type ComplaintCreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    domain.ComplaintPriority
	Anonymous   bool
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns every complaint for admins and the caller's own otherwise,
// newest first.
func (s *ComplaintService) List(ctx context.Context, identity domain.Identity) ([]domain.Complaint, error) {
	return s.complaints.List(ctx, repository.ComplaintFilter{OwnerID: auth.OwnerScope(identity)})
}

// Create files a complaint owned by the caller.
func (s *ComplaintService) Create(ctx context.Context, identity domain.Identity, input ComplaintCreateInput) (*domain.Complaint, error) {
	priority := input.Priority
	if priority == "" {
		priority = domain.ComplaintPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("Invalid priority")
	}

	now := s.now()
	complaint := &domain.Complaint{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    priority,
		Status:      domain.ComplaintStatusOpen,
		UserID:      identity.UserID,
		Anonymous:   input.Anonymous,
		Progress:    domain.MinProgress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, err
	}

	s.logger.Info("complaint created", zap.String("complaint_id", complaint.ID), zap.String("user_id", identity.UserID))
	s.publish(ctx, events.New(events.EventComplaintCreated, complaint.ID, identity.UserID, now, events.ComplaintCreatedPayload{
		Category: complaint.Category,
		Priority: complaint.Priority,
		Title:    complaint.Title,
	}))
	return complaint, nil
}

// Get returns a complaint visible to the caller.
func (s *ComplaintService) Get(ctx context.Context, identity domain.Identity, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Complaint")
	}
	if err := auth.RequireOwnerOrAdmin(identity, complaint.UserID); err != nil {
		return nil, err
	}
	return complaint, nil
}

// Update applies an admin's partial update and returns the stored result.
func (s *ComplaintService) Update(ctx context.Context, identity domain.Identity, id string, patch domain.ComplaintPatch) (*domain.Complaint, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}
	if patch.Status.Set {
		patch.Status.Value = patch.Status.Value.Normalize()
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	before, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Complaint")
	}

	now := s.now()
	patch.UpdatedAt = now
	patch.ResolvedAt = domain.Optional[*time.Time]{}
	if patch.Status.Set {
		switch {
		case patch.Status.Value == domain.ComplaintStatusResolved && before.Status != domain.ComplaintStatusResolved:
			resolvedAt := now
			patch.ResolvedAt = domain.Some(&resolvedAt)
		case patch.Status.Value != domain.ComplaintStatusResolved && before.ResolvedAt != nil:
			patch.ResolvedAt = domain.Some[*time.Time](nil)
		}
	}

	after, err := s.complaints.Update(ctx, id, patch)
	if err != nil {
		return nil, notFoundAs(err, "Complaint")
	}

	if changes := complaintChanges(*before, *after); len(changes) > 0 {
		s.logger.Info("complaint updated",
			zap.String("complaint_id", id),
			zap.String("admin_id", identity.UserID),
			zap.Int("changes", len(changes)))
		s.publish(ctx, events.New(events.EventComplaintUpdated, id, identity.UserID, now, events.ComplaintUpdatedPayload{Changes: changes}))
	}
	return after, nil
}

// Delete removes a complaint. Admin only.
func (s *ComplaintService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	if err := auth.RequireAdmin(identity); err != nil {
		return err
	}
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, "Complaint")
	}
	if err := s.complaints.Delete(ctx, id); err != nil {
		return notFoundAs(err, "Complaint")
	}

	s.logger.Info("complaint deleted", zap.String("complaint_id", id), zap.String("admin_id", identity.UserID))
	s.publish(ctx, events.New(events.EventComplaintDeleted, id, identity.UserID, s.now(), events.ComplaintDeletedPayload{
		Title:  complaint.Title,
		Status: complaint.Status,
	}))
	return nil
}

// History returns the audit trail of a complaint, oldest first. Admin only.
func (s *ComplaintService) History(ctx context.Context, identity domain.Identity, id string) ([]domain.ComplaintHistory, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.ComplaintHistory{}
	}
	return entries, nil
}

func (s *ComplaintService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, event)
}

func validatePatch(patch domain.ComplaintPatch) error {
	if patch.Status.Set && !patch.Status.Value.Valid() {
		return apperrors.NewValidationError("Invalid status")
	}
	if patch.Priority.Set && !patch.Priority.Value.Valid() {
		return apperrors.NewValidationError("Invalid priority")
	}
	if patch.Progress.Set {
		if patch.Progress.Null || patch.Progress.Value < domain.MinProgress || patch.Progress.Value > domain.MaxProgress {
			return apperrors.NewValidationError("Progress must be between 0 and 100")
		}
	}
	return nil
}

// complaintChanges lists the admin-editable fields that differ between two
// versions of a complaint.
func complaintChanges(before, after domain.Complaint) []events.FieldChange {
	var changes []events.FieldChange
	add := func(t domain.ComplaintChangeType, field string, oldValue, newValue any) {
		changes = append(changes, events.FieldChange{Type: t, Field: field, OldValue: oldValue, NewValue: newValue})
	}
	if before.Status != after.Status {
		add(domain.ChangeTypeStatus, "status", string(before.Status), string(after.Status))
	}
	if !sameString(before.AssignedTo, after.AssignedTo) {
		add(domain.ChangeTypeAssignee, "assigned_to", deref(before.AssignedTo), deref(after.AssignedTo))
	}
	if !sameString(before.Department, after.Department) {
		add(domain.ChangeTypeDepartment, "department", deref(before.Department), deref(after.Department))
	}
	if before.Priority != after.Priority {
		add(domain.ChangeTypePriority, "priority", string(before.Priority), string(after.Priority))
	}
	if before.Progress != after.Progress {
		add(domain.ChangeTypeProgress, "progress", before.Progress, after.Progress)
	}
	if !sameString(before.EstimatedResolution, after.EstimatedResolution) {
		add(domain.ChangeTypeEstimatedResolution, "estimated_resolution", deref(before.EstimatedResolution), deref(after.EstimatedResolution))
	}
	return changes
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
