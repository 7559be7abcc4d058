package httpx

import (
	"context"
	"net/http"

	"github.com/docuflow/ingest-api/internal/domain/auth"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
)

// sessionCookieName is the cookie carrying the opaque session identifier.
const sessionCookieName = "session_id"

// AuthServiceInterface is the slice of the auth service the middleware needs.
type AuthServiceInterface interface {
	GetSession(ctx context.Context, sessionID string) (auth.Session, error)
}

// RequireAuth rejects requests without a valid session cookie and stores the
// resolved session in the request context for downstream handlers.
func RequireAuth(authSvc AuthServiceInterface, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			RenderError(w, apperrors.Unauthorized("authentication required"))
			return
		}

		sess, err := authSvc.GetSession(r.Context(), cookie.Value)
		if err != nil {
			RenderError(w, err)
			return
		}

		ctx := SetSessionInContext(r.Context(), &sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
