// Package errors maps domain errors onto HTTP responses and provides
// the router-level fallbacks.
package errors

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"campusconnect/entity"
	"campusconnect/lib/api/response"
	"campusconnect/lib/validate"
)

func NotFound(_ *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, 404)
		render.JSON(w, r, response.Error("Requested resource not found"))
	}
}

func NotAllowed(_ *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, 405)
		render.JSON(w, r, response.Error("Method not allowed"))
	}
}

// Render writes a domain error with its HTTP status. Expiry keeps a
// message distinct from not-found: the resource exists but its window
// has closed.
func Render(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case stderrors.Is(err, entity.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("Requested resource not found"))
	case stderrors.Is(err, entity.ErrForbidden):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("You do not have permission to access this resource"))
	case stderrors.Is(err, entity.ErrTokenExpired):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("QR code has expired"))
	case stderrors.Is(err, entity.ErrTokenNotIssued):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("No QR code has been issued for this event"))
	case stderrors.Is(err, entity.ErrEventInactive):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Event is not active"))
	case stderrors.Is(err, entity.ErrEventEnded):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Event has already ended"))
	case stderrors.Is(err, entity.ErrEventFull):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Event is at full capacity"))
	case stderrors.Is(err, entity.ErrAlreadyRegistered):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("You are already registered for this event"))
	case stderrors.Is(err, entity.ErrEmailTaken):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Invalid("Validation failed", map[string]string{"email": "is already registered"}))
	case stderrors.Is(err, entity.ErrGuestCodeTaken):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Invalid("Validation failed", map[string]string{"guest_code": "is already in use"}))
	case stderrors.Is(err, entity.ErrBadCredentials):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Invalid email or password"))
	default:
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal error"))
	}
}

// RenderBind writes a request binding failure, with per-field
// messages when validation produced them.
func RenderBind(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	var fields validate.FieldErrors
	if stderrors.As(err, &fields) {
		render.JSON(w, r, response.Invalid("Validation failed", fields))
		return
	}
	render.JSON(w, r, response.Error("Invalid request: "+err.Error()))
}
