package authorize

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusconnect/entity"
	"campusconnect/lib/api/cont"
)

func request(user *entity.User) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/admin/events", nil)
	if user != nil {
		r = r.WithContext(cont.PutUser(r.Context(), user))
	}
	return r
}

func TestRequire(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	guard := Require(log, entity.CapManageEvents)(next)

	w := httptest.NewRecorder()
	guard.ServeHTTP(w, request(&entity.User{Id: "u1", Role: entity.RoleAdmin}))
	if !called {
		t.Fatal("admin was not let through")
	}
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	called = false
	w = httptest.NewRecorder()
	guard.ServeHTTP(w, request(&entity.User{Id: "u2", Role: entity.RoleStudent}))
	if called {
		t.Fatal("student reached the handler")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	w = httptest.NewRecorder()
	guard.ServeHTTP(w, request(nil))
	if called {
		t.Fatal("anonymous request reached the handler")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
