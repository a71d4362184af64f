package users

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
	ListUsers(ctx context.Context) ([]*entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
	UpdateUser(ctx context.Context, id string, req *entity.UserUpdateRequest) (*entity.User, error)
	DeleteUser(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, user *entity.User, req *entity.ProfileUpdateRequest) (*entity.User, error)
}

// Auth is the credential side: public signup and login.
type Auth interface {
	Signup(ctx context.Context, req *entity.SignupRequest) (*entity.AuthToken, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthToken, error)
}

func Signup(log *slog.Logger, handler Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.users")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.SignupRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Warn("bind request", sl.Err(err))
			errors.RenderBind(w, r, err)
			return
		}

		tok, err := handler.Signup(r.Context(), &req)
		if err != nil {
			logger.Warn("signup", sl.Err(err))
			errors.Render(w, r, err)
			return
		}
		logger.With(sl.User(tok.User.Id)).Debug("user created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(tok))
	}
}

func Login(log *slog.Logger, handler Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.users")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.LoginRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Warn("bind request", sl.Err(err))
			errors.RenderBind(w, r, err)
			return
		}

		tok, err := handler.Login(r.Context(), &req)
		if err != nil {
			logger.Warn("login", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(tok))
	}
}

// Profile returns the authenticated user's own account.
func Profile(_ *slog.Logger, _ Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := cont.GetUser(r.Context())
		render.JSON(w, r, response.Ok(user))
	}
}

// UpdateProfile writes the self-service fields; role and guest code
// are never writable here.
func UpdateProfile(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.users")
		user := cont.GetUser(r.Context())

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.User(user.Id),
		)

		var req entity.ProfileUpdateRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Warn("bind request", sl.Err(err))
			errors.RenderBind(w, r, err)
			return
		}

		updated, err := handler.UpdateProfile(r.Context(), user, &req)
		if err != nil {
			logger.Error("update profile", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(updated))
	}
}

func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.users")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		users, err := handler.ListUsers(r.Context())
		if err != nil {
			logger.Error("list users", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(users))
	}
}

func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.users")
		userId := chi.URLParam(r, "id")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.User(userId),
		)

		user, err := handler.GetUser(r.Context(), userId)
		if err != nil {
			logger.Warn("get user", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(user))
	}
}

func Update(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.users")
		userId := chi.URLParam(r, "id")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.User(userId),
		)

		var req entity.UserUpdateRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Warn("bind request", sl.Err(err))
			errors.RenderBind(w, r, err)
			return
		}

		user, err := handler.UpdateUser(r.Context(), userId, &req)
		if err != nil {
			logger.Error("update user", sl.Err(err))
			errors.Render(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(user))
	}
}

func Delete(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.users")
		userId := chi.URLParam(r, "id")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.User(userId),
		)

		if err := handler.DeleteUser(r.Context(), userId); err != nil {
			logger.Warn("delete user", sl.Err(err))
			errors.Render(w, r, err)
			return
		}
		logger.Debug("user deleted")

		render.JSON(w, r, response.Ok(nil))
	}
}
