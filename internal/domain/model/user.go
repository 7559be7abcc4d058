package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/docuflow/ingest-api/internal/domain/auth"
)

// User represents a registered account. The password hash never serializes.
type User struct {
	ID           string    `json:"id"         db:"id"`
	Username     string    `json:"username"   db:"username"`
	Email        string    `json:"email"      db:"email"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	Role         auth.Role `json:"role"       db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// CreateUserRequest represents a request to register a new user.
// PasswordHash is produced by the auth service; plaintext never reaches the
// data layer.
type CreateUserRequest struct {
	Username     string
	Email        string
	PasswordHash string
	Role         auth.Role
}

// Validate validates the CreateUserRequest fields.
func (r *CreateUserRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("email is invalid")
	}
	if r.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if !r.Role.Valid() {
		return errors.New("invalid role")
	}
	return nil
}
