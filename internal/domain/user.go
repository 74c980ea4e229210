package domain

import "time"

// Role is the access level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// DefaultDepartment is stored when no department is supplied.
const DefaultDepartment = "N/A"

// User is an account that files complaints and feedback or administers them.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	Status       UserStatus
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// IsActive reports whether the account may sign in.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// UserDirectoryEntry annotates a user with ticket counters for admins.
type UserDirectoryEntry struct {
	User             User
	TicketsSubmitted int64
	// TicketsResolved is only populated for staff.
	TicketsResolved *int64
}
