package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// DirectoryService lists and provisions accounts for admins.
type DirectoryService struct {
	users      repository.UserRepository
	complaints repository.ComplaintRepository
	accounts   *AuthService
	logger     *zap.Logger
}

// NewDirectoryService constructs the service. Account creation shares the
// validation rules of self-registration through accounts.
func NewDirectoryService(users repository.UserRepository, complaints repository.ComplaintRepository, accounts *AuthService, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{users: users, complaints: complaints, accounts: accounts, logger: logger}
}

// ListUsers returns every account, newest first, with ticket counters.
func (s *DirectoryService) ListUsers(ctx context.Context, identity domain.Identity) ([]domain.UserDirectoryEntry, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.UserDirectoryEntry, 0, len(users))
	for _, u := range users {
		submitted, err := s.complaints.Count(ctx, repository.ComplaintFilter{OwnerID: u.ID})
		if err != nil {
			return nil, err
		}
		entry := domain.UserDirectoryEntry{User: u, TicketsSubmitted: submitted}
		// Assignment is by display name, so renaming a staff member loses
		// their resolved count. A blank name would match every assignee.
		if u.Role == domain.RoleStaff {
			var resolved int64
			if strings.TrimSpace(u.Name) != "" {
				resolved, err = s.complaints.Count(ctx, repository.ComplaintFilter{
					AssignedTo: u.Name,
					Status:     domain.ComplaintStatusResolved,
				})
				if err != nil {
					return nil, err
				}
			}
			entry.TicketsResolved = &resolved
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// CreateUser provisions an account on behalf of an admin.
func (s *DirectoryService) CreateUser(ctx context.Context, identity domain.Identity, input AccountInput) (*domain.UserDirectoryEntry, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}
	user, err := s.accounts.createAccount(ctx, input, "Missing required fields: name, email, and password are required")
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created by admin",
		zap.String("user_id", user.ID),
		zap.String("admin_id", identity.UserID),
		zap.String("role", string(user.Role)))

	entry := &domain.UserDirectoryEntry{User: *user}
	if user.Role == domain.RoleStaff {
		var zero int64
		entry.TicketsResolved = &zero
	}
	return entry, nil
}
