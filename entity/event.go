package entity

import (
	"net/http"
	"time"

	"campusconnect/lib/validate"
)

// Event is a campus event users can register for. Capacity is optional:
// nil means unbounded admission. The QR token is event-scoped, shared
// by all registrants, and valid for a fixed window after issuance; it
// is never exposed in JSON, only rendered as a QR image.
type Event struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Capacity    *int      `json:"capacity,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	QRToken    string `json:"-"`
	QRIssuedAt string `json:"-"`

	// Registered is the occupancy: the live count of non-cancelled
	// registrations. Populated by the store on read.
	Registered int `json:"registered"`

	IsPast         bool `json:"is_past"`
	IsFull         bool `json:"is_full"`
	AvailableSpots *int `json:"available_spots,omitempty"`
}

// Derive fills the computed fields from the stored ones. Cancelled
// registrations do not count toward occupancy, so a cancellation frees
// its capacity slot.
func (e *Event) Derive(now time.Time) {
	e.IsPast = e.EndTime.Before(now)
	e.IsFull = false
	e.AvailableSpots = nil
	if e.Capacity != nil {
		e.IsFull = e.Registered >= *e.Capacity
		spots := *e.Capacity - e.Registered
		if spots < 0 {
			spots = 0
		}
		e.AvailableSpots = &spots
	}
}

// EventRequest is the admin create/update payload.
type EventRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty"`
	Location    string `json:"location" validate:"required,max=255"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	Capacity    *int   `json:"capacity" validate:"omitempty,min=1"`
	Active      *bool  `json:"active" validate:"omitempty"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (e *EventRequest) Bind(_ *http.Request) error {
	if err := validate.Struct(e); err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339, e.StartTime)
	if err != nil {
		return validate.FieldErrors{"start_time": "must be an RFC 3339 timestamp"}
	}
	end, err := time.Parse(time.RFC3339, e.EndTime)
	if err != nil {
		return validate.FieldErrors{"end_time": "must be an RFC 3339 timestamp"}
	}
	if !end.After(start) {
		return validate.FieldErrors{"end_time": "end time must be after start time"}
	}
	e.Start = start.UTC()
	e.End = end.UTC()
	return nil
}
