package entity

import (
	"net/http"
	"time"

	"campusconnect/lib/validate"
)

// Status is the registration lifecycle state. Transitions: registered
// to checked_in (records the check-in time once), and any state to
// cancelled. Cancelled is terminal.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusCheckedIn  Status = "checked_in"
	StatusCancelled  Status = "cancelled"
)

// Registration links one user to one event; the pair is unique.
// AttendanceCode is assigned to guest registrations at creation time
// and disambiguates the guest's registration when the shared event QR
// token is presented.
type Registration struct {
	Id             string     `json:"id"`
	EventId        string     `json:"event_id"`
	UserId         string     `json:"user_id"`
	Status         Status     `json:"status"`
	CheckedInAt    *time.Time `json:"checked_in_at,omitempty"`
	AttendanceCode string     `json:"attendance_code,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Populated on detail reads.
	Event *Event `json:"event,omitempty"`
	User  *User  `json:"user,omitempty"`
}

// RegisterRequest creates a registration for the authenticated user.
type RegisterRequest struct {
	EventId string `json:"event_id" validate:"required"`
}

func (r *RegisterRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}

// ConfirmRequest presents the scanned event QR token, plus the
// attendance code for guest users.
type ConfirmRequest struct {
	EventToken     string `json:"event_qr_code" validate:"required"`
	AttendanceCode string `json:"attendance_code" validate:"omitempty,max=10"`
}

func (c *ConfirmRequest) Bind(_ *http.Request) error {
	return validate.Struct(c)
}

// ConfirmResult is the attendance confirmation outcome. EventId is
// set as soon as the presented token resolved to an event, failure
// outcomes included. Registration is nil on failure; on an idempotent
// re-confirmation it is returned with the original check-in timestamp
// intact.
type ConfirmResult struct {
	EventId      string        `json:"event_id,omitempty"`
	Registration *Registration `json:"registration,omitempty"`
	Message      string        `json:"message"`
}

// ScanRecord is one audit entry for an attendance confirmation attempt.
type ScanRecord struct {
	EventId   string `json:"event_id" bson:"event_id"`
	UserId    string `json:"user_id" bson:"user_id"`
	UserRole  Role   `json:"user_role" bson:"user_role"`
	Outcome   string `json:"outcome" bson:"outcome"`
	CheckedIn bool   `json:"checked_in" bson:"checked_in"`
	ScannedAt string `json:"scanned_at" bson:"scanned_at"`
}
