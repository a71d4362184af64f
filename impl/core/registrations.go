package core

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"campusconnect/entity"
	"campusconnect/internal/database"
)

// attendanceCodeLength matches the short, human-enterable code handed
// to guest registrants.
const attendanceCodeLength = 6

func attendanceCode() string {
	return strings.ToUpper(uuid.New().String()[:attendanceCodeLength])
}

// Register admits the authenticated user to an event. Guest users
// receive an attendance code for later check-in.
func (c *Core) Register(ctx context.Context, user *entity.User, eventId string) (*entity.Registration, error) {
	reg, err := c.db.CreateRegistration(ctx, user, eventId, c.now(), attendanceCode)
	if err != nil {
		return nil, err
	}
	c.notifyIfFull(reg.Event)
	return reg, nil
}

func (c *Core) MyRegistrations(ctx context.Context, user *entity.User) ([]*entity.Registration, error) {
	return c.db.ListRegistrationsByUser(ctx, user.Id, c.now())
}

// GetRegistration returns the registration to its owner or to a user
// holding the view-all capability.
func (c *Core) GetRegistration(ctx context.Context, user *entity.User, id string) (*entity.Registration, error) {
	reg, err := c.db.GetRegistration(ctx, id, c.now())
	if err != nil {
		return nil, err
	}
	if reg.UserId != user.Id && !user.Can(entity.CapViewAllRegistrations) {
		return nil, entity.ErrForbidden
	}
	return reg, nil
}

// CancelRegistration is owner-only and idempotent.
func (c *Core) CancelRegistration(ctx context.Context, user *entity.User, id string) (*entity.Registration, error) {
	reg, err := c.db.GetRegistration(ctx, id, c.now())
	if err != nil {
		return nil, err
	}
	if reg.UserId != user.Id {
		return nil, entity.ErrForbidden
	}
	return c.db.Cancel(ctx, id, c.now())
}

// AdminRegistrations lists registrations across users, optionally
// narrowed by event and status.
func (c *Core) AdminRegistrations(ctx context.Context, eventId string, status entity.Status) ([]*entity.Registration, error) {
	return c.db.ListRegistrations(ctx, database.RegistrationFilter{
		EventId: eventId,
		Status:  status,
		Now:     c.now(),
	})
}
