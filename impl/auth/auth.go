// Package auth issues and verifies bearer credentials. The identity
// concern is a signed HS256 token carrying the user id; everything
// else about the user is read back from storage on each request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"campusconnect/entity"
	"campusconnect/lib/clock"
)

type Database interface {
	CreateUser(ctx context.Context, user *entity.User) error
	GetUser(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
}

type Auth struct {
	db     Database
	secret []byte
	ttl    time.Duration
}

func New(db Database, secret string, ttl time.Duration) (*Auth, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth secret is empty")
	}
	return &Auth{db: db, secret: []byte(secret), ttl: ttl}, nil
}

// Signup creates the account and logs it straight in.
func (a *Auth) Signup(ctx context.Context, req *entity.SignupRequest) (*entity.AuthToken, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &entity.User{
		Email:        entity.NormalizeEmail(req.Email),
		Name:         req.Name,
		Role:         req.Role,
		Phone:        req.Phone,
		GuestCode:    req.GuestCode,
		PasswordHash: string(hash),
	}
	if err = a.db.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return a.issue(user)
}

func (a *Auth) Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthToken, error) {
	user, err := a.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, entity.ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, entity.ErrBadCredentials
	}
	return a.issue(user)
}

// AuthenticateByToken resolves a presented bearer token to its user.
func (a *Auth) AuthenticateByToken(token string) (*entity.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return a.db.GetUser(context.Background(), claims.Subject)
}

func (a *Auth) issue(user *entity.User) (*entity.AuthToken, error) {
	now := time.Now().UTC()
	expires := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   user.Id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &entity.AuthToken{
		User:        user,
		AccessToken: signed,
		ExpiresAt:   clock.Format(expires),
	}, nil
}
