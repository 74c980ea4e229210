package domain

import "time"

// Identity is the authenticated caller resolved from a token.
type Identity struct {
	UserID string
	Name   string
	Role   Role
}

// IsAdmin reports whether the identity holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IdentityOf builds the identity of a stored user.
func IdentityOf(u *User) Identity {
	return Identity{UserID: u.ID, Name: u.Name, Role: u.Role}
}

// Token represents issued access token metadata.
type Token struct {
	ID        string
	SubjectID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
