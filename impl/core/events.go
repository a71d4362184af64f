package core

import (
	"context"
	"fmt"

	"campusconnect/entity"
	"campusconnect/internal/database"
)

// EventFilter is the public listing filter.
type EventFilter struct {
	IncludeInactive bool
	Upcoming        bool
	Search          string
}

func (c *Core) ListEvents(ctx context.Context, filter EventFilter) ([]*entity.Event, error) {
	now := c.now()
	events, err := c.db.ListEvents(ctx, database.EventFilter{
		ActiveOnly: !filter.IncludeInactive,
		Upcoming:   filter.Upcoming,
		Search:     filter.Search,
		Now:        now,
	})
	if err != nil {
		return nil, err
	}
	for _, event := range events {
		event.Derive(now)
	}
	return events, nil
}

func (c *Core) GetEvent(ctx context.Context, id string) (*entity.Event, error) {
	event, err := c.db.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Derive(c.now())
	return event, nil
}

func (c *Core) CreateEvent(ctx context.Context, req *entity.EventRequest) (*entity.Event, error) {
	event, err := c.db.CreateEvent(ctx, req)
	if err != nil {
		return nil, err
	}
	event.Derive(c.now())
	return event, nil
}

func (c *Core) UpdateEvent(ctx context.Context, id string, req *entity.EventRequest) (*entity.Event, error) {
	event, err := c.db.UpdateEvent(ctx, id, req)
	if err != nil {
		return nil, err
	}
	event.Derive(c.now())
	return event, nil
}

func (c *Core) DeleteEvent(ctx context.Context, id string) error {
	return c.db.DeleteEvent(ctx, id)
}

// IssueEventToken mints a fresh QR token for the event, replacing any
// previous one.
func (c *Core) IssueEventToken(ctx context.Context, eventId string) (*entity.Event, error) {
	event, err := c.db.GetEvent(ctx, eventId)
	if err != nil {
		return nil, err
	}
	if _, err = c.issuer.Issue(ctx, event, c.now()); err != nil {
		return nil, err
	}
	event.Derive(c.now())
	return event, nil
}

// EventToken returns the event's current token string for rendering.
// ErrTokenNotIssued when no token was ever issued; ErrTokenExpired
// when the window has closed.
func (c *Core) EventToken(ctx context.Context, eventId string) (string, error) {
	event, err := c.db.GetEvent(ctx, eventId)
	if err != nil {
		return "", err
	}
	if event.QRToken == "" {
		return "", entity.ErrTokenNotIssued
	}
	if !c.issuer.Valid(event, c.now()) {
		return "", entity.ErrTokenExpired
	}
	return event.QRToken, nil
}

func (c *Core) notifyIfFull(event *entity.Event) {
	if event != nil && event.IsFull {
		c.send(fmt.Sprintf("Event %q is now at full capacity", event.Name))
	}
}
