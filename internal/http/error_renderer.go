package httpx

import (
	"errors"
	"net/http"

	apperrors "github.com/docuflow/ingest-api/internal/errors"
)

// statusForCode maps application error codes to HTTP status codes.
func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RenderError translates a service-layer error into a JSON error response.
// AppError codes select the HTTP status; anything else is a 500 with a
// generic message so internals never leak to clients.
func RenderError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		WriteJSON(w, http.StatusInternalServerError, errorBody{
			Error:   string(apperrors.ErrCodeInternal),
			Message: "An internal error occurred. Please try again.",
		})
		return
	}

	body := errorBody{Error: string(code), Message: err.Error()}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		// Prefer the structured message over the wrapped chain.
		body.Message = appErr.Message
		body.Field = appErr.Field
	}
	WriteJSON(w, statusForCode(code), body)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
