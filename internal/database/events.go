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

// occupancy counts non-cancelled registrations, so cancelling frees
// the slot.
const eventColumns = `e.id, e.name, e.description, e.location, e.start_time, e.end_time,
	e.capacity, e.active, e.qr_token, e.qr_issued_at, e.created_at, e.updated_at,
	(SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id AND r.status != 'cancelled') AS registered`

// EventFilter narrows ListEvents. ActiveOnly is set for the public
// listing; Upcoming keeps events starting after Now; Search matches
// name and location.
type EventFilter struct {
	ActiveOnly bool
	Upcoming   bool
	Search     string
	Now        time.Time
}

func (s *Store) CreateEvent(ctx context.Context, req *entity.EventRequest) (*entity.Event, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	event := &entity.Event{
		Id:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.Start,
		EndTime:     req.End,
		Capacity:    req.Capacity,
		Active:      active,
		CreatedAt:   time.Now().UTC(),
	}
	event.UpdatedAt = event.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, name, description, location, start_time, end_time,
			capacity, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Id, event.Name, event.Description, event.Location,
		clock.Format(event.StartTime), clock.Format(event.EndTime),
		event.Capacity, boolToInt(event.Active),
		clock.Format(event.CreatedAt), clock.Format(event.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id string, req *entity.EventRequest) (*entity.Event, error) {
	if _, err := s.GetEvent(ctx, id); err != nil {
		return nil, err
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE events SET name = ?, description = ?, location = ?, start_time = ?,
			end_time = ?, capacity = ?, active = ?, updated_at = ? WHERE id = ?`,
		req.Name, req.Description, req.Location,
		clock.Format(req.Start), clock.Format(req.End),
		req.Capacity, boolToInt(active), clock.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.GetEvent(ctx, id)
}

// DeleteEvent removes the event and, in the same transaction, every
// registration attached to it.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM registrations WHERE event_id = ?`, id); err != nil {
		return fmt.Errorf("delete event registrations: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return entity.ErrNotFound
	}
	return tx.Commit()
}

func (s *Store) GetEvent(ctx context.Context, id string) (*entity.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.id = ?`, id)
	return scanEvent(row)
}

// GetEventByToken resolves a presented QR token to its owning event.
func (s *Store) GetEventByToken(ctx context.Context, token string) (*entity.Event, error) {
	if token == "" {
		return nil, entity.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.qr_token = ?`, token)
	return scanEvent(row)
}

func (s *Store) ListEvents(ctx context.Context, filter EventFilter) ([]*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e`
	var conds []string
	var args []interface{}
	if filter.ActiveOnly {
		conds = append(conds, `e.active = 1`)
	}
	if filter.Upcoming {
		conds = append(conds, `e.start_time > ?`)
		args = append(args, clock.Format(filter.Now))
	}
	if filter.Search != "" {
		conds = append(conds, `(e.name LIKE ? OR e.location LIKE ?)`)
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	for i, cond := range conds {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}
	query += ` ORDER BY e.start_time ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// SetEventToken overwrites the event QR token and its issuance time;
// the previous token becomes invalid immediately.
func (s *Store) SetEventToken(ctx context.Context, id, token, issuedAt string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET qr_token = ?, qr_issued_at = ?, updated_at = ? WHERE id = ?`,
		token, issuedAt, clock.Now(), id)
	if err != nil {
		return fmt.Errorf("set event token: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func scanEvent(row rowScanner) (*entity.Event, error) {
	var event entity.Event
	var description, qrToken, qrIssuedAt sql.NullString
	var capacity sql.NullInt64
	var active int
	var startTime, endTime, createdAt, updatedAt string
	err := row.Scan(&event.Id, &event.Name, &description, &event.Location,
		&startTime, &endTime, &capacity, &active, &qrToken, &qrIssuedAt,
		&createdAt, &updatedAt, &event.Registered)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	event.Description = description.String
	event.QRToken = qrToken.String
	event.QRIssuedAt = qrIssuedAt.String
	event.Active = active != 0
	if capacity.Valid {
		value := int(capacity.Int64)
		event.Capacity = &value
	}
	if event.StartTime, err = clock.Parse(startTime); err != nil {
		return nil, err
	}
	if event.EndTime, err = clock.Parse(endTime); err != nil {
		return nil, err
	}
	if event.CreatedAt, err = clock.Parse(createdAt); err != nil {
		return nil, err
	}
	if event.UpdatedAt, err = clock.Parse(updatedAt); err != nil {
		return nil, err
	}
	return &event, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
