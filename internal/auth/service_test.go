package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(t *testing.T) (*Service, *InMemory) {
	t.Helper()
	store := NewInMemory()
	svc, err := NewService(store, WithClock(func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	actor, err := svc.Register(ctx, "  Alice@Example.COM ", "s3cret", RoleParticipant, false)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if actor.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %s", actor.Email)
	}
	if actor.IsActive {
		t.Fatal("self-registered actor should start inactive")
	}
	if actor.PasswordHash == "s3cret" {
		t.Fatal("password must be hashed")
	}

	got, err := svc.Authenticate(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != actor.ID {
		t.Fatalf("unexpected actor: %s", got.ID)
	}

	// Inactive accounts still authenticate; activation gates actions, not login.
	if got.IsActive {
		t.Fatal("expected the returned actor to still be inactive")
	}
}

func TestAuthenticateFailuresAreUniform(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob@example.com", "pw", RoleReviewer, true); err != nil {
		t.Fatalf("Register: %v", err)
	}

	cases := []struct{ email, password string }{
		{"bob@example.com", "wrong"},
		{"nobody@example.com", "pw"},
		{"", "pw"},
		{"bob@example.com", ""},
	}
	for _, tc := range cases {
		if _, err := svc.Authenticate(ctx, tc.email, tc.password); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("Authenticate(%q): expected ErrUnauthorized, got %v", tc.email, err)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "no-at-sign", "pw", RoleParticipant, false); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad email, got %v", err)
	}
	if _, err := svc.Register(ctx, "a@b.c", "", RoleParticipant, false); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty password, got %v", err)
	}
	if _, err := svc.Register(ctx, "a@b.c", "pw", Role("moderator"), false); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown role, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dup@example.com", "pw", RoleParticipant, false); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "dup@example.com", "pw2", RoleReviewer, false); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSetActive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	actor, err := svc.Register(ctx, "carol@example.com", "pw", RoleParticipant, false)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	updated, err := svc.SetActive(ctx, actor.ID, true)
	if err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if !updated.IsActive {
		t.Fatal("expected actor to be active")
	}

	if _, err := svc.SetActive(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListActors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		if _, err := svc.Register(ctx, email, "pw", RoleParticipant, false); err != nil {
			t.Fatalf("Register %s: %v", email, err)
		}
	}
	actors, err := svc.ListActors(ctx)
	if err != nil {
		t.Fatalf("ListActors: %v", err)
	}
	if len(actors) != 3 {
		t.Fatalf("expected 3 actors, got %d", len(actors))
	}
}
