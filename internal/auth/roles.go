package auth

import (
	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/errorutil"
)

// RequireAdmin allows only admins. Callers resolve the identity first and
// invoke this before any admin-only mutation or read.
func RequireAdmin(identity domain.Identity) error {
	if !identity.IsAdmin() {
		return apperrors.NewForbidden("Admin access required")
	}
	return nil
}

// RequireOwnerOrAdmin allows admins and the owner of a resource.
func RequireOwnerOrAdmin(identity domain.Identity, ownerID string) error {
	if identity.IsAdmin() || (identity.UserID != "" && identity.UserID == ownerID) {
		return nil
	}
	return apperrors.NewForbidden("Unauthorized")
}

// OwnerScope returns the owner id a listing must be restricted to, or "" for
// admins who see everything.
func OwnerScope(identity domain.Identity) string {
	if identity.IsAdmin() {
		return ""
	}
	return identity.UserID
}
