package keychain

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

func TestPasswordLifecycle(t *testing.T) {
	m := NewWithKeyring(keyring.NewArrayKeyring(nil))

	if _, err := m.LoadPassword("prod"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := m.SavePassword("prod", "s3cret"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.SavePassword("staging", "other"); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := m.LoadPassword("prod")
	if err != nil || got != "s3cret" {
		t.Fatalf("load: %q %v", got, err)
	}

	if err := m.ClearProfile("prod"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := m.LoadPassword("prod"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected password removed, got %v", err)
	}
	if got, _ := m.LoadPassword("staging"); got != "other" {
		t.Fatalf("other profiles must survive, got %q", got)
	}
}

func TestSessionState(t *testing.T) {
	m := NewWithKeyring(keyring.NewArrayKeyring(nil))
	if err := m.SaveSessionState("prod", []byte(`{"uid":2}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := m.LoadSessionState("prod")
	if err != nil || string(data) != `{"uid":2}` {
		t.Fatalf("load: %s %v", data, err)
	}
	if err := m.ClearProfile("prod"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := m.ClearProfile("prod"); err != nil {
		t.Fatalf("clearing twice must succeed: %v", err)
	}
}

func TestEmptyPassword(t *testing.T) {
	m := NewWithKeyring(keyring.NewArrayKeyring([]keyring.Item{{Key: keyPassword + "x"}}))
	if _, err := m.LoadPassword("x"); err == nil {
		t.Fatalf("expected error for empty password")
	}
}
