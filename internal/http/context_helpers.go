package httpx

import (
	"context"

	"github.com/docuflow/ingest-api/internal/domain/auth"
)

// sessionKey is the context key type for the authenticated session.
type sessionKey struct{}

// SetSessionInContext stores the authenticated session in the request context.
func SetSessionInContext(ctx context.Context, sess *auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// GetSessionFromContext retrieves the authenticated session from the request
// context. Returns nil if no session is present (unauthenticated request).
func GetSessionFromContext(ctx context.Context) *auth.Session {
	sess, _ := ctx.Value(sessionKey{}).(*auth.Session)
	return sess
}
