package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/errorutil"
)

// AccountInput describes a new user account.
type AccountInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
}

// AuthResult is returned by registration and login.
type AuthResult struct {
	User        *domain.User
	AccessToken string
	Token       domain.Token
}

// AuthService coordinates registration, login and logout flows.
type AuthService struct {
	users     repository.UserRepository
	revoked   repository.RevokedTokenRepository
	tokenMgr  *auth.TokenManager
	hasher    *auth.PasswordHasher
	allowRole bool
	logger    *zap.Logger
	now       func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	RevokedRepo repository.RevokedTokenRepository
	Tokens      *auth.TokenManager
	Hasher      *auth.PasswordHasher
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL())
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.NewPasswordHasher(cfg.BcryptCost)
	}
	return &AuthService{
		users:     deps.UserRepo,
		revoked:   deps.RevokedRepo,
		tokenMgr:  tokens,
		hasher:    hasher,
		allowRole: cfg.RegisterAllowRole,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates a self-service account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, input AccountInput) (*AuthResult, error) {
	if !s.allowRole {
		input.Role = ""
	}
	user, err := s.createAccount(ctx, input, "Missing required fields")
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.issue(user)
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("Missing credentials")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("Invalid credentials")
		}
		return nil, err
	}
	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewUnauthorized("Invalid credentials")
	}
	if !user.IsActive() {
		return nil, apperrors.NewForbidden("Account is not active")
	}

	at := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, at); err != nil {
		return nil, err
	}
	user.LastLogin = &at
	return s.issue(user)
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token domain.Token) error {
	ttl := token.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, token.ID, ttl)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	signed, meta, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: signed, Token: meta}, nil
}

// createAccount validates input, hashes the password and persists the user.
// missingMsg is the error returned when a required field is blank.
func (s *AuthService) createAccount(ctx context.Context, input AccountInput, missingMsg string) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError(missingMsg)
	}

	role := domain.RoleUser
	if input.Role != "" {
		role = domain.Role(input.Role)
		if !role.Valid() {
			return nil, apperrors.NewValidationError("Invalid role")
		}
	}
	department := strings.TrimSpace(input.Department)
	if department == "" {
		department = domain.DefaultDepartment
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("Email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Department:   department,
		Status:       domain.UserStatusActive,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("Email already registered")
		}
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates an admin account unless the email is already taken. The
// returned flag reports whether a new account was written.
func (s *AuthService) EnsureAdmin(ctx context.Context, input AccountInput) (*domain.User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}
	input.Role = string(domain.RoleAdmin)
	user, err := s.createAccount(ctx, input, "name, email and password are required")
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("admin bootstrapped", zap.String("user_id", user.ID))
	return user, true, nil
}
