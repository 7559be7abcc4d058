package httpx

import (
	"net/http"
	"time"

	"github.com/docuflow/ingest-api/internal/domain/auth"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
	"github.com/docuflow/ingest-api/internal/service"
)

// AuthHandlers bundles the HTTP handlers for registration and sessions.
type AuthHandlers struct {
	Svc          *service.AuthService
	CookieDomain string
	CookieSecure bool
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Svc.Register(r.Context(), req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login. A successful login sets the session
// cookie; the response body echoes the session's user identity.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sess, err := h.Svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		RenderError(w, err)
		return
	}

	h.setSessionCookie(w, sess)
	WriteJSON(w, http.StatusOK, sessionBody(sess))
}

// Logout handles POST /api/auth/logout. Logging out without a session is fine.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.Svc.Logout(r.Context(), cookie.Value); err != nil {
			RenderError(w, err)
			return
		}
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me for the authenticated caller.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		RenderError(w, apperrors.Unauthorized("authentication required"))
		return
	}
	WriteJSON(w, http.StatusOK, sessionBody(*sess))
}

func sessionBody(sess auth.Session) map[string]any {
	return map[string]any{
		"user_id":    sess.UserID,
		"username":   sess.Username,
		"email":      sess.Email,
		"role":       sess.Role,
		"expires_at": sess.ExpiresAt,
	}
}

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, sess auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
