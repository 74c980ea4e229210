package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User  *domain.User
	Token domain.Token
}

// Identity returns the caller identity used by authorization checks.
func (p *Principal) Identity() domain.Identity {
	return domain.IdentityOf(p.User)
}

// Authenticator validates bearer tokens and loads principals. The user is
// re-read on every request so role and status changes apply immediately.
type Authenticator struct {
	tokens  *TokenManager
	users   repository.UserRepository
	revoked repository.RevokedTokenRepository
}

// NewAuthenticator constructs the authenticator.
func NewAuthenticator(tokens *TokenManager, users repository.UserRepository, revoked repository.RevokedTokenRepository) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, revoked: revoked}
}

// Handle enforces authentication for protected routes.
func (a *Authenticator) Handle(c *fiber.Ctx) error {
	principal, err := a.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Authenticate resolves an Authorization header value to a principal.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*Principal, error) {
	if header == "" {
		return nil, apperrors.NewUnauthorized("Missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, apperrors.NewUnauthorized("Invalid authorization header")
	}

	token, err := a.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, apperrors.NewUnauthorized("Invalid or expired token")
	}

	if token.ID != "" {
		revoked, err := a.revoked.IsRevoked(ctx, token.ID)
		if err != nil {
			return nil, fmt.Errorf("check token revocation: %w", err)
		}
		if revoked {
			return nil, apperrors.NewUnauthorized("Token has been revoked")
		}
	}

	user, err := a.users.GetByID(ctx, token.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("User not found")
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, apperrors.NewForbidden("Account is not active")
	}

	return &Principal{User: user, Token: token}, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// MustPrincipal returns the principal or an Unauthenticated error.
func MustPrincipal(c *fiber.Ctx) (*Principal, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("Authentication required")
	}
	return principal, nil
}
