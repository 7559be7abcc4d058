package httpx

import (
	"net/http"

	"github.com/docuflow/ingest-api/internal/domain/model"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
	"github.com/docuflow/ingest-api/internal/service"
)

// IngestionHandlers bundles the HTTP handlers for the ingestion lifecycle.
type IngestionHandlers struct {
	Svc *service.IngestionService
}

// Trigger handles POST /api/ingestions. The caller becomes the owner of the
// created ingestion; execution starts in the background.
func (h *IngestionHandlers) Trigger(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())

	var req model.CreateIngestionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.OwnerID = sess.UserID

	if err := req.Validate(); err != nil {
		RenderError(w, apperrors.Validation(err.Error()))
		return
	}

	ing, err := h.Svc.Trigger(r.Context(), &req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, ing)
}

// GetStatus handles GET /api/ingestions/{id}.
func (h *IngestionHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	id := r.PathValue("id")

	ing, err := h.Svc.GetStatus(r.Context(), id, sess.UserID)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ing)
}

// List handles GET /api/ingestions with optional status, limit, and offset
// query parameters.
func (h *IngestionHandlers) List(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())

	params := service.ListParams{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.IngestionStatus(raw)
		if !status.Valid() {
			RenderError(w, apperrors.ValidationField("status", "invalid status filter"))
			return
		}
		params.Status = &status
	}

	var ok bool
	if params.Limit, ok = parseIntQuery(w, r, "limit"); !ok {
		return
	}
	if params.Offset, ok = parseIntQuery(w, r, "offset"); !ok {
		return
	}

	list, err := h.Svc.List(r.Context(), sess.UserID, params)
	if err != nil {
		RenderError(w, err)
		return
	}
	if list == nil {
		list = []*model.Ingestion{}
	}
	WriteJSON(w, http.StatusOK, list)
}

// Retry handles POST /api/ingestions/{id}/retry.
func (h *IngestionHandlers) Retry(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	id := r.PathValue("id")

	ing, err := h.Svc.Retry(r.Context(), id, sess.UserID)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, ing)
}
