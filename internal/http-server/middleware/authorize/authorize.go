package authorize

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"campusconnect/entity"
	"campusconnect/lib/api/cont"
	"campusconnect/lib/api/response"
	"campusconnect/lib/sl"
)

// Require gates a route group on one capability, evaluated once per
// request against the authenticated user's role. The denial is
// deliberately generic: it does not reveal whether the resource
// exists.
func Require(log *slog.Logger, cap entity.Capability) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authorize")

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			user := cont.GetUser(r.Context())
			if user.Id == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("Unauthorized"))
				return
			}
			if !user.Can(cap) {
				log.With(
					mod,
					sl.User(user.Id),
					slog.String("capability", string(cap)),
					slog.String("path", r.URL.Path),
				).Warn("capability denied")
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("You do not have permission to access this resource"))
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
