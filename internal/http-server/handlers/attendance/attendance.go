package attendance

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"campusconnect/entity"
	"campusconnect/internal/http-server/handlers/errors"
	"campusconnect/lib/api/cont"
	"campusconnect/lib/api/response"
	"campusconnect/lib/sl"
)

type Core interface {
	ConfirmAttendance(ctx context.Context, user *entity.User, req *entity.ConfirmRequest) (*entity.ConfirmResult, error)
	ScanLog(limit int64) ([]*entity.ScanRecord, error)
}

// Confirm presents a scanned event QR token, plus the attendance code
// for guest users. A failed outcome (unknown token, expired token,
// wrong code, cancelled registration) is a 400 with the outcome
// message; "already checked in" counts as success.
func Confirm(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.attendance")
		user := cont.GetUser(r.Context())

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.User(user.Id),
		)

		var req entity.ConfirmRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Warn("bind request", sl.Err(err))
			errors.RenderBind(w, r, err)
			return
		}
		logger = logger.With(sl.Secret("token", req.EventToken))

		result, err := handler.ConfirmAttendance(r.Context(), user, &req)
		if err != nil {
			logger.Error("confirm attendance", sl.Err(err))
			errors.Render(w, r, err)
			return
		}
		logger = logger.With(slog.String("outcome", result.Message))

		if result.Registration == nil {
			logger.Warn("confirmation failed")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(result.Message))
			return
		}
		logger.Debug("confirmation accepted")

		render.JSON(w, r, response.Ok(result))
	}
}

// Log returns the latest scan audit entries.
func Log(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.attendance")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

		records, err := handler.ScanLog(limit)
		if err != nil {
			logger.Error("scan log", sl.Err(err))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Scan log not available"))
			return
		}

		render.JSON(w, r, response.Ok(records))
	}
}
