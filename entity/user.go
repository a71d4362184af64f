package entity

import (
	"net/http"
	"strings"
	"time"

	"campusconnect/lib/validate"
)

// Role is the access level of an account. Roles are immutable through
// self-service profile updates; only admins may change them.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
	RoleGuest   Role = "guest"
)

// Capability is an authorization predicate checked once per operation.
// Route groups are gated on a capability instead of comparing role
// strings inside handlers.
type Capability string

const (
	CapManageEvents         Capability = "manage_events"
	CapManageUsers          Capability = "manage_users"
	CapViewAllRegistrations Capability = "view_all_registrations"
	CapViewScanLog          Capability = "view_scan_log"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {CapManageEvents, CapManageUsers, CapViewAllRegistrations, CapViewScanLog},
}

// Can reports whether the role grants the capability.
func (r Role) Can(cap Capability) bool {
	for _, c := range roleCapabilities[r] {
		if c == cap {
			return true
		}
	}
	return false
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent || r == RoleGuest
}

// User is an account in the registration system. Email is the unique
// identifier, stored lower-cased. GuestCode is set for guest accounts
// only and gates their signup.
type User struct {
	Id           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	GuestCode    string    `json:"guest_code,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsGuest() bool {
	return u.Role == RoleGuest
}

func (u *User) Can(cap Capability) bool {
	return u.Role.Can(cap)
}

// NormalizeEmail lower-cases and trims the address before storage or
// lookup, so that uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignupRequest is the public account creation payload.
type SignupRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Role            Role   `json:"role" validate:"required,oneof=admin student guest"`
	Phone           string `json:"phone" validate:"omitempty,max=20"`
	GuestCode       string `json:"guest_code" validate:"omitempty,max=50"`
}

func (s *SignupRequest) Bind(_ *http.Request) error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if s.Password != s.PasswordConfirm {
		return validate.FieldErrors{"password": "password fields did not match"}
	}
	if s.Role == RoleGuest && s.GuestCode == "" {
		return validate.FieldErrors{"guest_code": "guest code is required for guest users"}
	}
	return nil
}

// LoginRequest exchanges credentials for a bearer token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (l *LoginRequest) Bind(_ *http.Request) error {
	return validate.Struct(l)
}

// ProfileUpdateRequest carries the self-service writable fields.
// Role and guest code are deliberately absent.
type ProfileUpdateRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"omitempty,max=20"`
}

func (p *ProfileUpdateRequest) Bind(_ *http.Request) error {
	return validate.Struct(p)
}

// UserUpdateRequest is the admin-side update payload.
type UserUpdateRequest struct {
	Name      string `json:"name" validate:"required"`
	Role      Role   `json:"role" validate:"required,oneof=admin student guest"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	GuestCode string `json:"guest_code" validate:"omitempty,max=50"`
}

func (u *UserUpdateRequest) Bind(_ *http.Request) error {
	return validate.Struct(u)
}

// AuthToken is returned by signup and login.
type AuthToken struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}
