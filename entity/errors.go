package entity

import "errors"

// Domain errors. Handlers map these onto HTTP statuses: validation,
// conflict and expiry errors become 400, ErrForbidden 403, ErrNotFound
// 404. Expiry is distinct from not-found: the resource exists but its
// window has closed, and the caller can react by re-issuing.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrEventInactive     = errors.New("event is not active")
	ErrEventEnded        = errors.New("event has already ended")
	ErrEventFull         = errors.New("event is at full capacity")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrTokenNotIssued    = errors.New("no QR token has been issued")
	ErrTokenExpired      = errors.New("event QR code has expired")
	ErrEmailTaken        = errors.New("email is already registered")
	ErrGuestCodeTaken    = errors.New("guest code is already in use")
	ErrBadCredentials    = errors.New("invalid email or password")
)
