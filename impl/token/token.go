// Package token implements the event QR token: an opaque 128-bit
// identifier with a fixed validity window after issuance.
package token

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campusconnect/entity"
	"campusconnect/lib/clock"
)

// Storage persists the issued token on its event.
type Storage interface {
	SetEventToken(ctx context.Context, eventId, token, issuedAt string) error
}

// Issuer mints and validates event QR tokens.
type Issuer struct {
	db     Storage
	window time.Duration
}

func NewIssuer(db Storage, window time.Duration) *Issuer {
	return &Issuer{db: db, window: window}
}

func (i *Issuer) Window() time.Duration {
	return i.window
}

// Issue stores a fresh token on the event with the issuance time.
// Re-issuing overwrites: the previous token becomes invalid at once,
// with no rotation overlap.
func (i *Issuer) Issue(ctx context.Context, event *entity.Event, now time.Time) (string, error) {
	tok := uuid.New().String()
	issuedAt := clock.Format(now)
	if err := i.db.SetEventToken(ctx, event.Id, tok, issuedAt); err != nil {
		return "", err
	}
	event.QRToken = tok
	event.QRIssuedAt = issuedAt
	return tok, nil
}

// Valid reports whether the event's current token is inside its
// window at the moment now. False when no token was ever issued, and
// false at exactly issuance+window: the boundary is exclusive on the
// valid side. Pure function of stored metadata and the clock; never
// cached.
func (i *Issuer) Valid(event *entity.Event, now time.Time) bool {
	if event.QRToken == "" || event.QRIssuedAt == "" {
		return false
	}
	return !clock.Expired(event.QRIssuedAt, i.window, now)
}
