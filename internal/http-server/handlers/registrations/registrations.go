package registrations

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"campusconnect/entity"
	"campusconnect/internal/http-server/handlers/errors"
	"campusconnect/lib/api/cont"
	"campusconnect/lib/api/response"
	"campusconnect/lib/sl"
)

type Core interface {
	Register(ctx context.Context, user *entity.User, eventId string) (*entity.Registration, error)
	MyRegistrations(ctx context.Context, user *entity.User) ([]*entity.Registration, error)
	GetRegistration(ctx context.Context, user *entity.User, id string) (*entity.Registration, error)
	CancelRegistration(ctx context.Context, user *entity.User, id string) (*entity.Registration, error)
	AdminRegistrations(ctx context.Context, eventId string, status entity.Status) ([]*entity.Registration, error)
}

// Create registers the authenticated user for an event. The full
// validation chain (active, not ended, not full, not duplicate) runs
// atomically in the store.
func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.registrations")
		user := cont.GetUser(r.Context())

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.User(user.Id),
		)

		var req entity.RegisterRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Warn("bind request", sl.Err(err))
			errors.RenderBind(w, r, err)
			return
		}
		logger = logger.With(sl.Event(req.EventId))

		reg, err := handler.Register(r.Context(), user, req.EventId)
		if err != nil {
			logger.Warn("register", sl.Err(err))
			errors.Render(w, r, err)
			return
		}
		logger.Debug("registration created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(reg))
	}
}

// ListOwn returns the authenticated user's registrations.
func ListOwn(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.registrations")
		user := cont.GetUser(r.Context())

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.User(user.Id),
		)

		regs, err := handler.MyRegistrations(r.Context(), user)
		if err != nil {
			logger.Error("list registrations", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(regs))
	}
}

// Get returns one registration to its owner or an admin.
func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.registrations")
		user := cont.GetUser(r.Context())
		regId := chi.URLParam(r, "id")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.User(user.Id),
			slog.String("registration_id", regId),
		)

		reg, err := handler.GetRegistration(r.Context(), user, regId)
		if err != nil {
			logger.Warn("get registration", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(reg))
	}
}

// Cancel is owner-only and idempotent: cancelling twice leaves the
// registration unchanged.
func Cancel(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.registrations")
		user := cont.GetUser(r.Context())
		regId := chi.URLParam(r, "id")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.User(user.Id),
			slog.String("registration_id", regId),
		)

		reg, err := handler.CancelRegistration(r.Context(), user, regId)
		if err != nil {
			logger.Warn("cancel registration", sl.Err(err))
			errors.Render(w, r, err)
			return
		}
		logger.Debug("registration cancelled")

		render.JSON(w, r, response.Ok(reg))
	}
}

// AdminList lists registrations across users, narrowed by the
// event_id and status query parameters.
func AdminList(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.registrations")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		eventId := r.URL.Query().Get("event_id")
		status := entity.Status(r.URL.Query().Get("status"))

		regs, err := handler.AdminRegistrations(r.Context(), eventId, status)
		if err != nil {
			logger.Error("admin list registrations", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(regs))
	}
}

// ByEvent lists all registrations for one event.
func ByEvent(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.registrations")
		eventId := chi.URLParam(r, "id")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Event(eventId),
		)

		regs, err := handler.AdminRegistrations(r.Context(), eventId, "")
		if err != nil {
			logger.Error("event registrations", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(regs))
	}
}
