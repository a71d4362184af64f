package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"campusconnect/entity"
	"campusconnect/internal/database"
)

func testAuth(t *testing.T) *Auth {
	t.Helper()
	store, err := database.Open("sqlite", filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)

	a, err := New(store, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new auth: %v", err)
	}
	return a
}

func signupRequest(email string) *entity.SignupRequest {
	return &entity.SignupRequest{
		Email:           email,
		Password:        "correct horse",
		PasswordConfirm: "correct horse",
		Name:            "Test User",
		Role:            entity.RoleStudent,
	}
}

func TestNewRequiresSecret(t *testing.T) {
	if _, err := New(nil, "", time.Hour); err == nil {
		t.Fatal("expected error")
	}
}

func TestSignupLoginRoundTrip(t *testing.T) {
	a := testAuth(t)
	ctx := context.Background()

	issued, err := a.Signup(ctx, signupRequest("alice@campus.edu"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if issued.AccessToken == "" {
		t.Fatal("empty access token")
	}
	if issued.User.PasswordHash == "correct horse" {
		t.Fatal("password stored in plain text")
	}

	logged, err := a.Login(ctx, &entity.LoginRequest{Email: "Alice@Campus.edu", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.User.Id != issued.User.Id {
		t.Fatalf("login user %s, want %s", logged.User.Id, issued.User.Id)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	a := testAuth(t)
	ctx := context.Background()

	if _, err := a.Signup(ctx, signupRequest("bob@campus.edu")); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := a.Signup(ctx, signupRequest("bob@campus.edu")); !errors.Is(err, entity.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	a := testAuth(t)
	ctx := context.Background()

	if _, err := a.Signup(ctx, signupRequest("carol@campus.edu")); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, err := a.Login(ctx, &entity.LoginRequest{Email: "carol@campus.edu", Password: "wrong"})
	if !errors.Is(err, entity.ErrBadCredentials) {
		t.Fatalf("wrong password err = %v, want ErrBadCredentials", err)
	}
	_, err = a.Login(ctx, &entity.LoginRequest{Email: "nobody@campus.edu", Password: "correct horse"})
	if !errors.Is(err, entity.ErrBadCredentials) {
		t.Fatalf("unknown email err = %v, want ErrBadCredentials", err)
	}
}

func TestAuthenticateByToken(t *testing.T) {
	a := testAuth(t)

	issued, err := a.Signup(context.Background(), signupRequest("dave@campus.edu"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	user, err := a.AuthenticateByToken(issued.AccessToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Id != issued.User.Id || user.Email != "dave@campus.edu" {
		t.Fatalf("resolved %+v", user)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	a := testAuth(t)

	issued, err := a.Signup(context.Background(), signupRequest("erin@campus.edu"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err = a.AuthenticateByToken(issued.AccessToken + "x"); err == nil {
		t.Fatal("accepted a token with a broken signature")
	}
	if _, err = a.AuthenticateByToken("not-a-token"); err == nil {
		t.Fatal("accepted garbage")
	}

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: issued.User.Id,
	}).SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("sign foreign token: %v", err)
	}
	if _, err = a.AuthenticateByToken(foreign); err == nil {
		t.Fatal("accepted a token signed with a different key")
	}
}
