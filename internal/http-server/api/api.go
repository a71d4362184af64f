package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"campusconnect/entity"
	"campusconnect/internal/config"
	"campusconnect/internal/http-server/handlers/attendance"
	"campusconnect/internal/http-server/handlers/errors"
	"campusconnect/internal/http-server/handlers/events"
	"campusconnect/internal/http-server/handlers/registrations"
	"campusconnect/internal/http-server/handlers/users"
	"campusconnect/internal/http-server/middleware/authenticate"
	"campusconnect/internal/http-server/middleware/authorize"
	"campusconnect/internal/http-server/middleware/timeout"
	"campusconnect/lib/sl"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	events.Core
	registrations.Core
	attendance.Core
	users.Core
	users.Auth
}

func New(conf *config.Config, log *slog.Logger, handler Handler) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(5))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Route("/auth", func(auth chi.Router) {
		auth.Post("/signup", users.Signup(log, handler))
		auth.Post("/login", users.Login(log, handler))
	})

	router.Route("/v1", func(rootApi chi.Router) {
		// public event reads
		rootApi.Get("/events", events.List(log, handler))
		rootApi.Get("/events/{id}", events.Get(log, handler))

		rootApi.Group(func(private chi.Router) {
			private.Use(authenticate.New(log, handler))

			private.Get("/profile", users.Profile(log, handler))
			private.Put("/profile", users.UpdateProfile(log, handler))

			private.Get("/events/{id}/qr", events.QRImage(log, handler))

			private.Route("/registrations", func(regs chi.Router) {
				regs.Post("/", registrations.Create(log, handler))
				regs.Get("/", registrations.ListOwn(log, handler))
				regs.Get("/{id}", registrations.Get(log, handler))
				regs.Post("/{id}/cancel", registrations.Cancel(log, handler))
			})

			private.Post("/attendance/confirm", attendance.Confirm(log, handler))

			private.Group(func(manage chi.Router) {
				manage.Use(authorize.Require(log, entity.CapManageEvents))
				manage.Post("/events", events.Create(log, handler))
				manage.Put("/events/{id}", events.Update(log, handler))
				manage.Delete("/events/{id}", events.Delete(log, handler))
				manage.Post("/events/{id}/token", events.IssueToken(log, handler))
				manage.Get("/admin/events", events.AdminList(log, handler))
			})

			private.Group(func(view chi.Router) {
				view.Use(authorize.Require(log, entity.CapViewAllRegistrations))
				view.Get("/events/{id}/registrations", registrations.ByEvent(log, handler))
				view.Get("/admin/registrations", registrations.AdminList(log, handler))
			})

			private.Group(func(audit chi.Router) {
				audit.Use(authorize.Require(log, entity.CapViewScanLog))
				audit.Get("/attendance/log", attendance.Log(log, handler))
			})

			private.Route("/users", func(admin chi.Router) {
				admin.Use(authorize.Require(log, entity.CapManageUsers))
				admin.Get("/", users.List(log, handler))
				admin.Get("/{id}", users.Get(log, handler))
				admin.Put("/{id}", users.Update(log, handler))
				admin.Delete("/{id}", users.Delete(log, handler))
			})
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:      router,
		ErrorLog:     httpLog,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIp, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
