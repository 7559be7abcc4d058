// Package httpx wires the HTTP surface of the ingest API: routing, session
// middleware, JSON helpers, and the request handlers.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/docuflow/ingest-api/internal/service"
)

// RouterServices groups everything NewRouter needs to assemble the API.
type RouterServices struct {
	Ingestions   *service.IngestionService
	Documents    *service.DocumentService
	Auth         *service.AuthService
	CookieDomain string
	CookieSecure bool
	Logger       *slog.Logger
}

// NewRouter builds the HTTP handler with all API routes registered.
func NewRouter(svcs RouterServices) http.Handler {
	mux := http.NewServeMux()

	registerHealthRoutes(mux)
	registerAuthRoutes(mux, svcs)
	registerIngestionRoutes(mux, svcs)
	registerDocumentRoutes(mux, svcs)

	if svcs.Logger != nil {
		return requestLogger(svcs.Logger, mux)
	}
	return mux
}

func registerHealthRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("HEAD /healthz", handleHealthz)
}

func registerAuthRoutes(mux *http.ServeMux, svcs RouterServices) {
	h := &AuthHandlers{Svc: svcs.Auth, CookieDomain: svcs.CookieDomain, CookieSecure: svcs.CookieSecure}

	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.Handle("GET /api/auth/me", RequireAuth(svcs.Auth, http.HandlerFunc(h.Me)))
}

func registerIngestionRoutes(mux *http.ServeMux, svcs RouterServices) {
	h := &IngestionHandlers{Svc: svcs.Ingestions}

	mux.Handle("POST /api/ingestions", RequireAuth(svcs.Auth, http.HandlerFunc(h.Trigger)))
	mux.Handle("GET /api/ingestions", RequireAuth(svcs.Auth, http.HandlerFunc(h.List)))
	mux.Handle("GET /api/ingestions/{id}", RequireAuth(svcs.Auth, http.HandlerFunc(h.GetStatus)))
	mux.Handle("POST /api/ingestions/{id}/retry", RequireAuth(svcs.Auth, http.HandlerFunc(h.Retry)))
}

func registerDocumentRoutes(mux *http.ServeMux, svcs RouterServices) {
	h := &DocumentHandlers{Svc: svcs.Documents}

	mux.Handle("POST /api/documents", RequireAuth(svcs.Auth, http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/documents", RequireAuth(svcs.Auth, http.HandlerFunc(h.List)))
	mux.Handle("GET /api/documents/{id}", RequireAuth(svcs.Auth, http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/documents/{id}", RequireAuth(svcs.Auth, http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/documents/{id}", RequireAuth(svcs.Auth, http.HandlerFunc(h.Delete)))
}

// requestLogger logs method, path, and status for every request.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.InfoContext(r.Context(), "http request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
