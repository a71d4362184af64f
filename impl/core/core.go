// Package core wires storage, token issuance, audit and notification
// into the operations the HTTP handlers expose.
package core

import (
	"context"
	"log/slog"
	"time"

	"campusconnect/entity"
	"campusconnect/impl/token"
	"campusconnect/internal/database"
	"campusconnect/lib/sl"
)

// Database is the slice of the relational store the core depends on.
type Database interface {
	CreateEvent(ctx context.Context, req *entity.EventRequest) (*entity.Event, error)
	UpdateEvent(ctx context.Context, id string, req *entity.EventRequest) (*entity.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	GetEvent(ctx context.Context, id string) (*entity.Event, error)
	GetEventByToken(ctx context.Context, token string) (*entity.Event, error)
	ListEvents(ctx context.Context, filter database.EventFilter) ([]*entity.Event, error)

	CreateRegistration(ctx context.Context, user *entity.User, eventId string, now time.Time, codeGen func() string) (*entity.Registration, error)
	GetRegistration(ctx context.Context, id string, now time.Time) (*entity.Registration, error)
	FindRegistration(ctx context.Context, userId, eventId string) (*entity.Registration, error)
	FindRegistrationByCode(ctx context.Context, userId, eventId, code string) (*entity.Registration, error)
	ListRegistrationsByUser(ctx context.Context, userId string, now time.Time) ([]*entity.Registration, error)
	ListRegistrations(ctx context.Context, filter database.RegistrationFilter) ([]*entity.Registration, error)
	CheckIn(ctx context.Context, id string, now time.Time) (*entity.Registration, error)
	Cancel(ctx context.Context, id string, now time.Time) (*entity.Registration, error)

	GetUser(ctx context.Context, id string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]*entity.User, error)
	UpdateUser(ctx context.Context, id string, req *entity.UserUpdateRequest) (*entity.User, error)
	UpdateProfile(ctx context.Context, id string, req *entity.ProfileUpdateRequest) (*entity.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// AuditLog records attendance scan attempts. Optional.
type AuditLog interface {
	SaveScan(record *entity.ScanRecord) error
	RecentScans(limit int64) ([]*entity.ScanRecord, error)
}

// Notifier posts out-of-band admin notifications. Optional.
type Notifier interface {
	Send(msg string)
}

type Core struct {
	db     Database
	issuer *token.Issuer
	auth   AuthService
	audit  AuditLog
	notify Notifier
	log    *slog.Logger
	now    func() time.Time
}

func New(db Database, issuer *token.Issuer, log *slog.Logger) *Core {
	return &Core{
		db:     db,
		issuer: issuer,
		log:    log.With(sl.Module("core")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (c *Core) SetAuditLog(audit AuditLog) {
	c.audit = audit
}

func (c *Core) SetNotifier(notify Notifier) {
	c.notify = notify
}

// SetClock overrides the time source.
func (c *Core) SetClock(now func() time.Time) {
	c.now = now
}

func (c *Core) send(msg string) {
	if c.notify != nil {
		c.notify.Send(msg)
	}
}
