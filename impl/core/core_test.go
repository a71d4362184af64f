package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"campusconnect/entity"
	"campusconnect/impl/token"
	"campusconnect/internal/database"
)

var base = time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)

type memAudit struct {
	records []*entity.ScanRecord
}

func (m *memAudit) SaveScan(record *entity.ScanRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memAudit) RecentScans(limit int64) ([]*entity.ScanRecord, error) {
	out := make([]*entity.ScanRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

type memNotifier struct {
	msgs []string
}

func (m *memNotifier) Send(msg string) {
	m.msgs = append(m.msgs, msg)
}

// testCore wires a Core over a temp SQLite store with a settable clock.
func testCore(t *testing.T) (*Core, *database.Store, *time.Time) {
	t.Helper()
	store, err := database.Open("sqlite", filepath.Join(t.TempDir(), "core.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)

	issuer := token.NewIssuer(store, 10*time.Minute)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(store, issuer, log)

	now := base
	c.SetClock(func() time.Time { return now })
	return c, store, &now
}

func newUser(t *testing.T, store *database.Store, email string, role entity.Role) *entity.User {
	t.Helper()
	user := &entity.User{Email: email, Name: "Test User", Role: role, PasswordHash: "x"}
	if role == entity.RoleGuest {
		user.GuestCode = "GC-" + email
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func newEvent(t *testing.T, c *Core, name string, capacity *int) *entity.Event {
	t.Helper()
	event, err := c.CreateEvent(context.Background(), &entity.EventRequest{
		Name:     name,
		Location: "Main Hall",
		Start:    base.Add(time.Hour),
		End:      base.Add(3 * time.Hour),
		Capacity: capacity,
	})
	if err != nil {
		t.Fatalf("create event %s: %v", name, err)
	}
	return event
}

func issueToken(t *testing.T, c *Core, eventId string) string {
	t.Helper()
	if _, err := c.IssueEventToken(context.Background(), eventId); err != nil {
		t.Fatalf("issue token: %v", err)
	}
	tok, err := c.EventToken(context.Background(), eventId)
	if err != nil {
		t.Fatalf("read token: %v", err)
	}
	return tok
}

func intPtr(v int) *int {
	return &v
}

func TestConfirmUnknownToken(t *testing.T) {
	c, store, _ := testCore(t)
	user := newUser(t, store, "alice@campus.edu", entity.RoleStudent)

	result, err := c.ConfirmAttendance(context.Background(), user, &entity.ConfirmRequest{EventToken: "bogus"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Message != MsgInvalidToken {
		t.Fatalf("message = %q, want %q", result.Message, MsgInvalidToken)
	}
	if result.Registration != nil {
		t.Fatal("registration returned on failure")
	}
}

func TestConfirmExpiredToken(t *testing.T) {
	c, store, now := testCore(t)
	audit := &memAudit{}
	c.SetAuditLog(audit)
	user := newUser(t, store, "alice@campus.edu", entity.RoleStudent)
	event := newEvent(t, c, "Hackathon", nil)
	if _, err := c.Register(context.Background(), user, event.Id); err != nil {
		t.Fatalf("register: %v", err)
	}
	tok := issueToken(t, c, event.Id)

	*now = base.Add(10 * time.Minute)
	result, err := c.ConfirmAttendance(context.Background(), user, &entity.ConfirmRequest{EventToken: tok})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Message != MsgTokenExpired {
		t.Fatalf("message = %q, want %q", result.Message, MsgTokenExpired)
	}
	if result.EventId != event.Id {
		t.Fatalf("result event = %q, want %s", result.EventId, event.Id)
	}

	// the failed attempt is still attributed to the resolved event
	if len(audit.records) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(audit.records))
	}
	if audit.records[0].EventId != event.Id {
		t.Fatalf("audit event = %q, want %s", audit.records[0].EventId, event.Id)
	}
	if audit.records[0].Outcome != MsgTokenExpired || audit.records[0].CheckedIn {
		t.Fatalf("audit entry = %+v", audit.records[0])
	}
}

func TestConfirmStudentFlow(t *testing.T) {
	c, store, now := testCore(t)
	ctx := context.Background()
	audit := &memAudit{}
	c.SetAuditLog(audit)
	notifier := &memNotifier{}
	c.SetNotifier(notifier)

	registered := newUser(t, store, "alice@campus.edu", entity.RoleStudent)
	stranger := newUser(t, store, "bob@campus.edu", entity.RoleStudent)
	event := newEvent(t, c, "Hackathon", nil)
	if _, err := c.Register(ctx, registered, event.Id); err != nil {
		t.Fatalf("register: %v", err)
	}
	tok := issueToken(t, c, event.Id)

	result, err := c.ConfirmAttendance(ctx, stranger, &entity.ConfirmRequest{EventToken: tok})
	if err != nil {
		t.Fatalf("confirm stranger: %v", err)
	}
	if result.Message != MsgNotRegistered {
		t.Fatalf("message = %q, want %q", result.Message, MsgNotRegistered)
	}

	*now = base.Add(5 * time.Minute)
	result, err = c.ConfirmAttendance(ctx, registered, &entity.ConfirmRequest{EventToken: tok})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Message != MsgCheckedIn {
		t.Fatalf("message = %q, want %q", result.Message, MsgCheckedIn)
	}
	if result.Registration == nil || result.Registration.Status != entity.StatusCheckedIn {
		t.Fatalf("registration = %+v", result.Registration)
	}
	firstCheckIn := result.Registration.CheckedInAt
	if firstCheckIn == nil || !firstCheckIn.Equal(base.Add(5*time.Minute)) {
		t.Fatalf("checked_in_at = %v", firstCheckIn)
	}
	if len(notifier.msgs) == 0 {
		t.Fatal("no check-in notification sent")
	}

	// repeat confirmation succeeds and keeps the original timestamp
	*now = base.Add(8 * time.Minute)
	result, err = c.ConfirmAttendance(ctx, registered, &entity.ConfirmRequest{EventToken: tok})
	if err != nil {
		t.Fatalf("repeat confirm: %v", err)
	}
	if result.Message != MsgAlreadyCheckedIn {
		t.Fatalf("message = %q, want %q", result.Message, MsgAlreadyCheckedIn)
	}
	if result.Registration == nil || !result.Registration.CheckedInAt.Equal(*firstCheckIn) {
		t.Fatalf("check-in timestamp moved: %v", result.Registration.CheckedInAt)
	}

	if len(audit.records) != 3 {
		t.Fatalf("audit entries = %d, want 3", len(audit.records))
	}
	for i, rec := range audit.records {
		if rec.EventId != event.Id {
			t.Fatalf("audit entry %d event = %q, want %s", i, rec.EventId, event.Id)
		}
	}
	if audit.records[0].Outcome != MsgNotRegistered || audit.records[0].CheckedIn {
		t.Fatalf("failure audit entry = %+v", audit.records[0])
	}
	last := audit.records[len(audit.records)-1]
	if last.Outcome != MsgAlreadyCheckedIn || last.CheckedIn {
		t.Fatalf("last audit entry = %+v", last)
	}
	if audit.records[1].Outcome != MsgCheckedIn || !audit.records[1].CheckedIn {
		t.Fatalf("success audit entry = %+v", audit.records[1])
	}
}

func TestConfirmGuestFlow(t *testing.T) {
	c, store, _ := testCore(t)
	ctx := context.Background()
	guest := newUser(t, store, "guest@campus.edu", entity.RoleGuest)
	event := newEvent(t, c, "Open Day", nil)

	reg, err := c.Register(ctx, guest, event.Id)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(reg.AttendanceCode) != attendanceCodeLength {
		t.Fatalf("attendance code = %q", reg.AttendanceCode)
	}
	tok := issueToken(t, c, event.Id)

	result, err := c.ConfirmAttendance(ctx, guest, &entity.ConfirmRequest{EventToken: tok})
	if err != nil {
		t.Fatalf("confirm without code: %v", err)
	}
	if result.Message != MsgCodeRequired {
		t.Fatalf("message = %q, want %q", result.Message, MsgCodeRequired)
	}

	result, err = c.ConfirmAttendance(ctx, guest, &entity.ConfirmRequest{EventToken: tok, AttendanceCode: "WRONG1"})
	if err != nil {
		t.Fatalf("confirm with wrong code: %v", err)
	}
	if result.Message != MsgInvalidCode {
		t.Fatalf("message = %q, want %q", result.Message, MsgInvalidCode)
	}

	result, err = c.ConfirmAttendance(ctx, guest, &entity.ConfirmRequest{EventToken: tok, AttendanceCode: reg.AttendanceCode})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Message != MsgCheckedIn {
		t.Fatalf("message = %q, want %q", result.Message, MsgCheckedIn)
	}
}

func TestConfirmCancelledRegistration(t *testing.T) {
	c, store, _ := testCore(t)
	ctx := context.Background()
	user := newUser(t, store, "alice@campus.edu", entity.RoleStudent)
	event := newEvent(t, c, "Seminar", nil)

	reg, err := c.Register(ctx, user, event.Id)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err = c.CancelRegistration(ctx, user, reg.Id); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	tok := issueToken(t, c, event.Id)

	result, err := c.ConfirmAttendance(ctx, user, &entity.ConfirmRequest{EventToken: tok})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Message != MsgCancelled {
		t.Fatalf("message = %q, want %q", result.Message, MsgCancelled)
	}
}

func TestRegisterNotifiesWhenFull(t *testing.T) {
	c, store, _ := testCore(t)
	ctx := context.Background()
	notifier := &memNotifier{}
	c.SetNotifier(notifier)

	event := newEvent(t, c, "Tiny Meetup", intPtr(1))
	user := newUser(t, store, "alice@campus.edu", entity.RoleStudent)

	reg, err := c.Register(ctx, user, event.Id)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Event == nil || !reg.Event.IsFull {
		t.Fatalf("event not derived as full: %+v", reg.Event)
	}
	if len(notifier.msgs) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.msgs))
	}
}

func TestGetRegistrationAuthorization(t *testing.T) {
	c, store, _ := testCore(t)
	ctx := context.Background()
	owner := newUser(t, store, "alice@campus.edu", entity.RoleStudent)
	other := newUser(t, store, "bob@campus.edu", entity.RoleStudent)
	admin := newUser(t, store, "root@campus.edu", entity.RoleAdmin)
	event := newEvent(t, c, "Gala", nil)

	reg, err := c.Register(ctx, owner, event.Id)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err = c.GetRegistration(ctx, owner, reg.Id); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err = c.GetRegistration(ctx, admin, reg.Id); err != nil {
		t.Fatalf("admin read: %v", err)
	}
	if _, err = c.GetRegistration(ctx, other, reg.Id); !errors.Is(err, entity.ErrForbidden) {
		t.Fatalf("stranger read err = %v, want ErrForbidden", err)
	}

	// cancellation stays owner-only even for admins
	if _, err = c.CancelRegistration(ctx, admin, reg.Id); !errors.Is(err, entity.ErrForbidden) {
		t.Fatalf("admin cancel err = %v, want ErrForbidden", err)
	}
	if _, err = c.CancelRegistration(ctx, owner, reg.Id); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
}

func TestEventTokenStates(t *testing.T) {
	c, _, now := testCore(t)
	ctx := context.Background()
	event := newEvent(t, c, "Expo", nil)

	if _, err := c.EventToken(ctx, event.Id); !errors.Is(err, entity.ErrTokenNotIssued) {
		t.Fatalf("err = %v, want ErrTokenNotIssued", err)
	}

	if _, err := c.IssueEventToken(ctx, event.Id); err != nil {
		t.Fatalf("issue: %v", err)
	}
	tok, err := c.EventToken(ctx, event.Id)
	if err != nil {
		t.Fatalf("read token: %v", err)
	}
	if tok == "" {
		t.Fatal("empty token")
	}

	*now = base.Add(10 * time.Minute)
	if _, err = c.EventToken(ctx, event.Id); !errors.Is(err, entity.ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}

	// re-issuing restarts the window
	if _, err = c.IssueEventToken(ctx, event.Id); err != nil {
		t.Fatalf("reissue: %v", err)
	}
	fresh, err := c.EventToken(ctx, event.Id)
	if err != nil {
		t.Fatalf("read fresh token: %v", err)
	}
	if fresh == tok {
		t.Fatal("reissue kept the old token")
	}
}

func TestScanLog(t *testing.T) {
	c, store, _ := testCore(t)

	if _, err := c.ScanLog(10); err == nil {
		t.Fatal("expected error with audit disabled")
	}

	audit := &memAudit{}
	c.SetAuditLog(audit)
	user := newUser(t, store, "alice@campus.edu", entity.RoleStudent)
	if _, err := c.ConfirmAttendance(context.Background(), user, &entity.ConfirmRequest{EventToken: "bogus"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	records, err := c.ScanLog(0)
	if err != nil {
		t.Fatalf("scan log: %v", err)
	}
	if len(records) != 1 || records[0].Outcome != MsgInvalidToken {
		t.Fatalf("records = %+v", records)
	}
}
