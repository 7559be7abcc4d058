package httpx

import (
	"net/http"

	"github.com/docuflow/ingest-api/internal/domain/model"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
	"github.com/docuflow/ingest-api/internal/service"
)

// DocumentHandlers bundles the HTTP handlers for document records.
type DocumentHandlers struct {
	Svc *service.DocumentService
}

// Create handles POST /api/documents.
func (h *DocumentHandlers) Create(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())

	var req model.CreateDocumentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.OwnerID = sess.UserID

	if err := req.Validate(); err != nil {
		RenderError(w, apperrors.Validation(err.Error()))
		return
	}

	doc, err := h.Svc.Create(r.Context(), sess.UserID, &req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, doc)
}

// Get handles GET /api/documents/{id}.
func (h *DocumentHandlers) Get(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())

	doc, err := h.Svc.Get(r.Context(), r.PathValue("id"), sess.UserID)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

// List handles GET /api/documents.
func (h *DocumentHandlers) List(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())

	docs, err := h.Svc.List(r.Context(), sess.UserID)
	if err != nil {
		RenderError(w, err)
		return
	}
	if docs == nil {
		docs = []*model.Document{}
	}
	WriteJSON(w, http.StatusOK, docs)
}

// Update handles PUT /api/documents/{id}.
func (h *DocumentHandlers) Update(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())

	var req model.UpdateDocumentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		RenderError(w, apperrors.Validation(err.Error()))
		return
	}

	doc, err := h.Svc.Update(r.Context(), r.PathValue("id"), sess.UserID, &req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

// Delete handles DELETE /api/documents/{id}.
func (h *DocumentHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())

	if err := h.Svc.Delete(r.Context(), r.PathValue("id"), sess.UserID); err != nil {
		RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
