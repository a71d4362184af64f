package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"campusconnect/entity"
	"campusconnect/lib/clock"
)

const registrationColumns = `id, event_id, user_id, status, checked_in_at, attendance_code, created_at, updated_at`

// codeAttempts bounds attendance-code regeneration when a generated
// code collides with an existing one for the same event.
const codeAttempts = 3

// RegistrationFilter narrows the admin listing. Now anchors the
// derived fields of the attached events.
type RegistrationFilter struct {
	EventId string
	Status  entity.Status
	Now     time.Time
}

// CreateRegistration admits the user to the event. The validation
// chain (event exists, active, not ended, not full, not already
// registered) runs inside one transaction; the (user_id, event_id)
// unique index is the backstop for the race between the duplicate
// check and the insert. A narrow over-admission race between the
// occupancy read and the insert is accepted; the SQLite driver
// serialises writers outright.
//
// Guest users receive a generated attendance code, unique per event.
func (s *Store) CreateRegistration(ctx context.Context, user *entity.User, eventId string, now time.Time, codeGen func() string) (*entity.Registration, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.id = ?`, eventId)
	event, err := scanEvent(row)
	if err != nil {
		return nil, err
	}
	if !event.Active {
		return nil, entity.ErrEventInactive
	}
	if event.EndTime.Before(now) {
		return nil, entity.ErrEventEnded
	}
	if event.Capacity != nil && event.Registered >= *event.Capacity {
		return nil, entity.ErrEventFull
	}

	// any prior registration blocks re-admission, cancelled included
	var existing int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE user_id = ? AND event_id = ?`,
		user.Id, eventId).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if existing > 0 {
		return nil, entity.ErrAlreadyRegistered
	}

	reg := &entity.Registration{
		Id:        uuid.New().String(),
		EventId:   eventId,
		UserId:    user.Id,
		Status:    entity.StatusRegistered,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		if user.IsGuest() {
			reg.AttendanceCode = codeGen()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO registrations (`+registrationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			reg.Id, reg.EventId, reg.UserId, string(reg.Status), nil,
			nullable(reg.AttendanceCode),
			clock.Format(reg.CreatedAt), clock.Format(reg.UpdatedAt),
		)
		if err == nil {
			break
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("insert registration: %w", err)
		}
		// non-guests have no code to regenerate, so the violated
		// index can only be the (user, event) pair
		if !user.IsGuest() || attempt == codeAttempts-1 {
			return nil, entity.ErrAlreadyRegistered
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	event.Registered++
	event.Derive(now)
	reg.Event = event
	return reg, nil
}

func (s *Store) GetRegistration(ctx context.Context, id string, now time.Time) (*entity.Registration, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = ?`, id)
	reg, err := scanRegistration(row)
	if err != nil {
		return nil, err
	}
	return s.attachEvent(ctx, reg, now)
}

// FindRegistration locates the user's registration for an event.
func (s *Store) FindRegistration(ctx context.Context, userId, eventId string) (*entity.Registration, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE user_id = ? AND event_id = ?`,
		userId, eventId)
	return scanRegistration(row)
}

// FindRegistrationByCode locates a guest registration by the
// (user, event, attendance code) triple.
func (s *Store) FindRegistrationByCode(ctx context.Context, userId, eventId, code string) (*entity.Registration, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE user_id = ? AND event_id = ? AND attendance_code = ?`,
		userId, eventId, code)
	return scanRegistration(row)
}

func (s *Store) ListRegistrationsByUser(ctx context.Context, userId string, now time.Time) ([]*entity.Registration, error) {
	return s.listRegistrations(ctx, now,
		`SELECT `+registrationColumns+` FROM registrations WHERE user_id = ? ORDER BY created_at DESC`,
		userId)
}

func (s *Store) ListRegistrations(ctx context.Context, filter RegistrationFilter) ([]*entity.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations`
	var conds []string
	var args []interface{}
	if filter.EventId != "" {
		conds = append(conds, `event_id = ?`)
		args = append(args, filter.EventId)
	}
	if filter.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, string(filter.Status))
	}
	for i, cond := range conds {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}
	query += ` ORDER BY created_at DESC`
	return s.listRegistrations(ctx, filter.Now, query, args...)
}

// CheckIn transitions registered -> checked_in and records the
// timestamp. Guarded on the current status so a repeat never
// overwrites the original check-in time.
func (s *Store) CheckIn(ctx context.Context, id string, now time.Time) (*entity.Registration, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE registrations SET status = ?, checked_in_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(entity.StatusCheckedIn), clock.Format(now), clock.Format(now),
		id, string(entity.StatusRegistered))
	if err != nil {
		return nil, fmt.Errorf("check in: %w", err)
	}
	return s.GetRegistration(ctx, id, now)
}

// Cancel transitions any state to cancelled. Idempotent: cancelling a
// cancelled registration changes nothing, timestamps included.
func (s *Store) Cancel(ctx context.Context, id string, now time.Time) (*entity.Registration, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE registrations SET status = ?, updated_at = ?
		 WHERE id = ? AND status != ?`,
		string(entity.StatusCancelled), clock.Format(now),
		id, string(entity.StatusCancelled))
	if err != nil {
		return nil, fmt.Errorf("cancel: %w", err)
	}
	return s.GetRegistration(ctx, id, now)
}

func (s *Store) listRegistrations(ctx context.Context, now time.Time, query string, args ...interface{}) ([]*entity.Registration, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []*entity.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	for _, reg := range regs {
		if _, err = s.attachEvent(ctx, reg, now); err != nil && !errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
	}
	return regs, nil
}

// attachEvent loads the owning event and derives its computed fields
// against the caller's clock.
func (s *Store) attachEvent(ctx context.Context, reg *entity.Registration, now time.Time) (*entity.Registration, error) {
	event, err := s.GetEvent(ctx, reg.EventId)
	if err != nil {
		return reg, err
	}
	event.Derive(now)
	reg.Event = event
	return reg, nil
}

func scanRegistration(row rowScanner) (*entity.Registration, error) {
	var reg entity.Registration
	var status string
	var checkedInAt, attendanceCode sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&reg.Id, &reg.EventId, &reg.UserId, &status,
		&checkedInAt, &attendanceCode, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	reg.Status = entity.Status(status)
	reg.AttendanceCode = attendanceCode.String
	if checkedInAt.Valid {
		t, err := clock.Parse(checkedInAt.String)
		if err != nil {
			return nil, err
		}
		reg.CheckedInAt = &t
	}
	if reg.CreatedAt, err = clock.Parse(createdAt); err != nil {
		return nil, err
	}
	if reg.UpdatedAt, err = clock.Parse(updatedAt); err != nil {
		return nil, err
	}
	return &reg, nil
}
