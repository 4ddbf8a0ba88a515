package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/simple-share/pkg/simpleshare"
)

// multipartError marks a malformed multipart body
type multipartError struct {
	err error
}

func (e *multipartError) Error() string { return "malformed multipart body: " + e.err.Error() }
func (e *multipartError) Unwrap() error { return e.err }

// errorResponse maps an error to a status code and a message safe to show clients
func errorResponse(err error) (int, string) {
	var maxBytesErr *http.MaxBytesError
	var multipartErr *multipartError

	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, "File too large"
	case errors.Is(err, simpleshare.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid delete token"
	case errors.Is(err, simpleshare.ErrInvalidName):
		return http.StatusBadRequest, "Invalid filename"
	case errors.Is(err, simpleshare.ErrNotFound):
		return http.StatusNotFound, "File not found"
	case errors.Is(err, simpleshare.ErrAlreadyExists):
		return http.StatusConflict, "File already exists"
	case errors.Is(err, simpleshare.ErrNoFile):
		return http.StatusBadRequest, "No file provided"
	case errors.As(err, &multipartErr):
		return http.StatusBadRequest, "Invalid multipart request"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorResponse(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		h.logger.DebugContext(r.Context(), "Request rejected", "status", status, "error", err)
	}

	render.Status(r, status)
	render.PlainText(w, r, message)
}
