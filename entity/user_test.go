package entity

import "testing"

func TestRoleCapabilities(t *testing.T) {
	caps := []Capability{CapManageEvents, CapManageUsers, CapViewAllRegistrations, CapViewScanLog}
	for _, c := range caps {
		if !RoleAdmin.Can(c) {
			t.Fatalf("admin missing %s", c)
		}
		if RoleStudent.Can(c) {
			t.Fatalf("student granted %s", c)
		}
		if RoleGuest.Can(c) {
			t.Fatalf("guest granted %s", c)
		}
	}
	if Role("unknown").Can(CapManageEvents) {
		t.Fatal("unknown role granted a capability")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleStudent, RoleGuest} {
		if !r.Valid() {
			t.Fatalf("%s not valid", r)
		}
	}
	if Role("superuser").Valid() {
		t.Fatal("superuser accepted")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Campus.EDU "); got != "alice@campus.edu" {
		t.Fatalf("normalized = %q", got)
	}
}

func TestSignupRequestBind(t *testing.T) {
	ok := &SignupRequest{
		Email:           "alice@campus.edu",
		Password:        "longenough",
		PasswordConfirm: "longenough",
		Name:            "Alice",
		Role:            RoleStudent,
	}
	if err := ok.Bind(nil); err != nil {
		t.Fatalf("bind: %v", err)
	}

	mismatch := *ok
	mismatch.PasswordConfirm = "different"
	if err := mismatch.Bind(nil); err == nil {
		t.Fatal("accepted mismatched passwords")
	}

	short := *ok
	short.Password = "short"
	short.PasswordConfirm = "short"
	if err := short.Bind(nil); err == nil {
		t.Fatal("accepted a short password")
	}

	guest := *ok
	guest.Role = RoleGuest
	if err := guest.Bind(nil); err == nil {
		t.Fatal("accepted a guest without a guest code")
	}
	guest.GuestCode = "INVITE-1"
	if err := guest.Bind(nil); err != nil {
		t.Fatalf("bind guest: %v", err)
	}

	badRole := *ok
	badRole.Role = "superuser"
	if err := badRole.Bind(nil); err == nil {
		t.Fatal("accepted an unknown role")
	}
}
