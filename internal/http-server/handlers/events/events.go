package events

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	qrcode "github.com/skip2/go-qrcode"

	"campusconnect/entity"
	"campusconnect/impl/core"
	"campusconnect/internal/http-server/handlers/errors"
	"campusconnect/lib/api/response"
	"campusconnect/lib/sl"
)

// qrImageSize is the side length in pixels of the rendered QR PNG.
const qrImageSize = 256

type Core interface {
	ListEvents(ctx context.Context, filter core.EventFilter) ([]*entity.Event, error)
	GetEvent(ctx context.Context, id string) (*entity.Event, error)
	CreateEvent(ctx context.Context, req *entity.EventRequest) (*entity.Event, error)
	UpdateEvent(ctx context.Context, id string, req *entity.EventRequest) (*entity.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	IssueEventToken(ctx context.Context, eventId string) (*entity.Event, error)
	EventToken(ctx context.Context, eventId string) (string, error)
}

// List is the public listing: active events only, with optional
// upcoming and search filters.
func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return list(log, handler, false)
}

// AdminList includes inactive events.
func AdminList(log *slog.Logger, handler Core) http.HandlerFunc {
	return list(log, handler, true)
}

func list(log *slog.Logger, handler Core, includeInactive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.events")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filter := core.EventFilter{
			IncludeInactive: includeInactive,
			Upcoming:        r.URL.Query().Get("upcoming") == "true",
			Search:          r.URL.Query().Get("search"),
		}

		events, err := handler.ListEvents(r.Context(), filter)
		if err != nil {
			logger.Error("list events", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(events))
	}
}

func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.events")
		eventId := chi.URLParam(r, "id")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Event(eventId),
		)

		event, err := handler.GetEvent(r.Context(), eventId)
		if err != nil {
			logger.Warn("get event", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(event))
	}
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.events")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.EventRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Warn("bind request", sl.Err(err))
			errors.RenderBind(w, r, err)
			return
		}

		event, err := handler.CreateEvent(r.Context(), &req)
		if err != nil {
			logger.Error("create event", sl.Err(err))
			errors.Render(w, r, err)
			return
		}
		logger.With(sl.Event(event.Id)).Debug("event created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(event))
	}
}

func Update(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.events")
		eventId := chi.URLParam(r, "id")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Event(eventId),
		)

		var req entity.EventRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Warn("bind request", sl.Err(err))
			errors.RenderBind(w, r, err)
			return
		}

		event, err := handler.UpdateEvent(r.Context(), eventId, &req)
		if err != nil {
			logger.Error("update event", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(event))
	}
}

func Delete(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.events")
		eventId := chi.URLParam(r, "id")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Event(eventId),
		)

		if err := handler.DeleteEvent(r.Context(), eventId); err != nil {
			logger.Warn("delete event", sl.Err(err))
			errors.Render(w, r, err)
			return
		}
		logger.Debug("event deleted")

		render.JSON(w, r, response.Ok(nil))
	}
}

// IssueToken mints a fresh QR token for the event. The previous
// token, if any, stops working immediately.
func IssueToken(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.events")
		eventId := chi.URLParam(r, "id")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Event(eventId),
		)

		event, err := handler.IssueEventToken(r.Context(), eventId)
		if err != nil {
			logger.Error("issue event token", sl.Err(err))
			errors.Render(w, r, err)
			return
		}
		logger.Debug("event token issued")

		render.JSON(w, r, response.Ok(event))
	}
}

// QRImage renders the event's current token as a PNG. 404 when no
// token was ever issued, 400 when the token window has closed.
func QRImage(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.events")
		eventId := chi.URLParam(r, "id")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Event(eventId),
		)

		tok, err := handler.EventToken(r.Context(), eventId)
		if err != nil {
			logger.Warn("event token", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		png, err := qrcode.Encode(tok, qrcode.Medium, qrImageSize)
		if err != nil {
			logger.Error("encode qr image", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		if _, err = w.Write(png); err != nil {
			logger.Error("write qr image", sl.Err(err))
		}
	}
}
