package domain

import "time"

// Role type to distinguish between dashboard roles
type Role string

// Define constants for roles
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Known reports whether the role is one the dashboard understands.
func (r Role) Known() bool {
	return r == RoleAdmin || r == RoleUser
}

// UserProfile is the cached profile snapshot kept next to the token.
// The authoritative record lives in the backend.
type UserProfile struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Session is the persisted authentication triple of one browser.
type Session struct {
	Token   string       `json:"token"`
	Role    Role         `json:"role"`
	Profile *UserProfile `json:"profile,omitempty"`
}

// Valid is true only when token and role are both present.
// A half-set session is treated as absent.
func (s Session) Valid() bool {
	return s.Token != "" && s.Role.Known()
}

// IsAdmin checks the role tag. It says nothing about backend authorization.
func (s Session) IsAdmin() bool {
	return s.Valid() && s.Role == RoleAdmin
}

// UserID returns the cached profile id, or "" when no profile is cached.
func (s Session) UserID() string {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.ID
}
