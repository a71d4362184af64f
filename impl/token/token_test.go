package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusconnect/entity"
	"campusconnect/lib/clock"
)

type memStorage struct {
	eventId  string
	token    string
	issuedAt string
	err      error
}

func (m *memStorage) SetEventToken(_ context.Context, eventId, token, issuedAt string) error {
	if m.err != nil {
		return m.err
	}
	m.eventId = eventId
	m.token = token
	m.issuedAt = issuedAt
	return nil
}

func TestValidWithoutToken(t *testing.T) {
	issuer := NewIssuer(&memStorage{}, 10*time.Minute)
	event := &entity.Event{Id: "e1"}
	if issuer.Valid(event, time.Now()) {
		t.Fatal("valid without an issued token")
	}
}

func TestIssueAndValidity(t *testing.T) {
	store := &memStorage{}
	issuer := NewIssuer(store, 10*time.Minute)
	event := &entity.Event{Id: "e1"}
	base := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)

	tok, err := issuer.Issue(context.Background(), event, base)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok == "" {
		t.Fatal("empty token")
	}
	if store.eventId != "e1" || store.token != tok {
		t.Fatalf("stored %s/%s, want e1/%s", store.eventId, store.token, tok)
	}
	if event.QRToken != tok || event.QRIssuedAt != clock.Format(base) {
		t.Fatalf("event not updated: %s %s", event.QRToken, event.QRIssuedAt)
	}

	if !issuer.Valid(event, base) {
		t.Fatal("invalid at issuance")
	}
	if !issuer.Valid(event, base.Add(10*time.Minute-time.Second)) {
		t.Fatal("invalid just inside the window")
	}
	// the window is exclusive at its upper edge
	if issuer.Valid(event, base.Add(10*time.Minute)) {
		t.Fatal("valid at exactly issuance+window")
	}
	if issuer.Valid(event, base.Add(time.Hour)) {
		t.Fatal("valid long after the window")
	}
}

func TestReissueReplacesToken(t *testing.T) {
	store := &memStorage{}
	issuer := NewIssuer(store, 10*time.Minute)
	event := &entity.Event{Id: "e1"}
	base := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)

	first, err := issuer.Issue(context.Background(), event, base)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := issuer.Issue(context.Background(), event, base.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("reissue: %v", err)
	}
	if first == second {
		t.Fatal("reissue returned the same token")
	}
	if event.QRToken != second || store.token != second {
		t.Fatal("previous token still stored")
	}
	// validity follows the fresh issuance time
	if !issuer.Valid(event, base.Add(14*time.Minute)) {
		t.Fatal("fresh token invalid inside its window")
	}
}

func TestIssueStorageFailure(t *testing.T) {
	boom := errors.New("storage down")
	issuer := NewIssuer(&memStorage{err: boom}, 10*time.Minute)
	event := &entity.Event{Id: "e1"}

	if _, err := issuer.Issue(context.Background(), event, time.Now()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want storage error", err)
	}
	if event.QRToken != "" {
		t.Fatal("event token set despite storage failure")
	}
}
