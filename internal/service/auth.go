package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/docuflow/ingest-api/internal/core"
	"github.com/docuflow/ingest-api/internal/domain/auth"
	"github.com/docuflow/ingest-api/internal/domain/model"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
)

const (
	defaultSessionTTL = 24 * time.Hour
	minPasswordLength = 8
)

// invalidCredentialsMsg deliberately does not say whether the username or the
// password was wrong.
const invalidCredentialsMsg = "invalid username or password"

// AuthServiceConfig groups tuning knobs for AuthService.
type AuthServiceConfig struct {
	SessionTTL time.Duration
	BcryptCost int
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users    core.UserRepository // Required: account storage
	Sessions core.SessionStore   // Required: session storage
	Config   AuthServiceConfig
	Logger   *slog.Logger // Optional: structured logger
}

// AuthService handles account registration and session-based login.
type AuthService struct {
	users    core.UserRepository
	sessions core.SessionStore
	cfg      AuthServiceConfig
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Users == nil {
		return nil, errors.New("UserRepository is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("SessionStore is required")
	}
	if opts.Config.SessionTTL <= 0 {
		opts.Config.SessionTTL = defaultSessionTTL
	}
	if opts.Config.BcryptCost <= 0 {
		opts.Config.BcryptCost = bcrypt.DefaultCost
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "auth_service")
	}

	return &AuthService{
		users:    opts.Users,
		sessions: opts.Sessions,
		cfg:      opts.Config,
		logger:   logger,
	}, nil
}

// RegisterRequest carries a new account's details. Role defaults to user
// when empty.
type RegisterRequest struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role,omitempty"`
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if len(req.Password) < minPasswordLength {
		return nil, apperrors.ValidationField("password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	role := req.Role
	if role == "" {
		role = auth.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.ValidationField("role", "invalid role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &model.CreateUserRequest{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username, "role", user.Role)
	}
	return user, nil
}

// Login verifies credentials and opens a new session. Unknown usernames and
// wrong passwords both come back as Unauthorized with the same message.
func (s *AuthService) Login(ctx context.Context, username, password string) (auth.Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return auth.Session{}, apperrors.Unauthorized(invalidCredentialsMsg)
		}
		return auth.Session{}, fmt.Errorf("get user by username: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return auth.Session{}, apperrors.Unauthorized(invalidCredentialsMsg)
	}

	sess := auth.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return auth.Session{}, fmt.Errorf("save session: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "username", user.Username)
	}
	return sess, nil
}

// Logout deletes the session. Logging out an absent session is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// GetSession returns the session for id, or Unauthorized if it is absent or
// expired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (auth.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return auth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "session not found or expired")
	}
	return sess, nil
}
