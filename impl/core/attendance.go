package core

import (
	"context"
	"errors"
	"fmt"

	"campusconnect/entity"
	"campusconnect/lib/clock"
	"campusconnect/lib/sl"
)

// Attendance confirmation outcomes. "Already checked in" is a success:
// the registration is returned and the original check-in timestamp is
// left untouched. Every other non-final outcome is a failure with no
// registration.
const (
	MsgInvalidToken     = "Invalid event QR code"
	MsgTokenExpired     = "Event QR code has expired"
	MsgCodeRequired     = "Attendance code is required for guest users"
	MsgInvalidCode      = "Invalid attendance code"
	MsgNotRegistered    = "You are not registered for this event"
	MsgCancelled        = "Registration has been cancelled"
	MsgAlreadyCheckedIn = "Already checked in"
	MsgCheckedIn        = "Check-in successful"
)

// ConfirmAttendance resolves a presented event QR token (plus the
// attendance code for guest users) to exactly one registration and
// drives it to checked_in. The outcome message classifies every
// terminal state; a storage failure is the only error return.
func (c *Core) ConfirmAttendance(ctx context.Context, user *entity.User, req *entity.ConfirmRequest) (*entity.ConfirmResult, error) {
	result, err := c.confirm(ctx, user, req)
	if err != nil {
		return nil, err
	}
	c.record(user, req, result)
	return result, nil
}

func (c *Core) confirm(ctx context.Context, user *entity.User, req *entity.ConfirmRequest) (*entity.ConfirmResult, error) {
	now := c.now()

	event, err := c.db.GetEventByToken(ctx, req.EventToken)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return &entity.ConfirmResult{Message: MsgInvalidToken}, nil
		}
		return nil, err
	}
	// expiry is a function of wall-clock time, checked per request
	if !c.issuer.Valid(event, now) {
		return &entity.ConfirmResult{EventId: event.Id, Message: MsgTokenExpired}, nil
	}

	var reg *entity.Registration
	if user.IsGuest() {
		if req.AttendanceCode == "" {
			return &entity.ConfirmResult{EventId: event.Id, Message: MsgCodeRequired}, nil
		}
		reg, err = c.db.FindRegistrationByCode(ctx, user.Id, event.Id, req.AttendanceCode)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return &entity.ConfirmResult{EventId: event.Id, Message: MsgInvalidCode}, nil
			}
			return nil, err
		}
	} else {
		reg, err = c.db.FindRegistration(ctx, user.Id, event.Id)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return &entity.ConfirmResult{EventId: event.Id, Message: MsgNotRegistered}, nil
			}
			return nil, err
		}
	}

	switch reg.Status {
	case entity.StatusCancelled:
		return &entity.ConfirmResult{EventId: event.Id, Message: MsgCancelled}, nil
	case entity.StatusCheckedIn:
		// idempotent: report success, keep the original timestamp
		full, err := c.db.GetRegistration(ctx, reg.Id, now)
		if err != nil {
			return nil, err
		}
		return &entity.ConfirmResult{EventId: event.Id, Registration: full, Message: MsgAlreadyCheckedIn}, nil
	}

	checked, err := c.db.CheckIn(ctx, reg.Id, now)
	if err != nil {
		return nil, err
	}
	c.send(fmt.Sprintf("Checked in %s at %q", user.Email, event.Name))
	return &entity.ConfirmResult{EventId: event.Id, Registration: checked, Message: MsgCheckedIn}, nil
}

// record appends the attempt to the scan audit log. Audit being
// disabled or unreachable never fails a confirmation.
func (c *Core) record(user *entity.User, req *entity.ConfirmRequest, result *entity.ConfirmResult) {
	if c.audit == nil {
		return
	}
	rec := &entity.ScanRecord{
		EventId:   result.EventId,
		UserId:    user.Id,
		UserRole:  user.Role,
		Outcome:   result.Message,
		CheckedIn: result.Message == MsgCheckedIn,
		ScannedAt: clock.Format(c.now()),
	}
	if err := c.audit.SaveScan(rec); err != nil {
		c.log.Warn("scan audit write failed", sl.Err(err), sl.User(user.Id))
	}
}

// ScanLog returns the latest audit entries, newest first.
func (c *Core) ScanLog(limit int64) ([]*entity.ScanRecord, error) {
	if c.audit == nil {
		return nil, fmt.Errorf("scan audit log is not enabled")
	}
	if limit <= 0 {
		limit = 50
	}
	return c.audit.RecentScans(limit)
}
