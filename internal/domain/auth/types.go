package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
	RoleUser   Role = "user"
)

// Valid returns true if the Role is one of the defined constants.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleViewer || r == RoleUser
}

// IsAdmin returns true if the role grants unrestricted visibility.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Principal is the authenticated actor behind a request.
type Principal struct {
	UserID string
	Role   Role
}

// CanAccessResourceOwnedBy is the owner-or-admin predicate applied to
// ingestions and documents: a principal may act on a resource if they own it
// or hold the admin role.
func (p Principal) CanAccessResourceOwnedBy(ownerID string) bool {
	return p.UserID == ownerID || p.Role.IsAdmin()
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Principal derives the acting principal from the session.
func (s Session) Principal() Principal {
	return Principal{UserID: s.UserID, Role: s.Role}
}
