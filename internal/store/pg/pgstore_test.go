package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"confero.org/internal/auth"
	"confero.org/internal/conference"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func checkExpectations(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetActor(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}).
		AddRow("actor-1", "a@example.com", "hash", "organizer", true, now, now)
	mock.ExpectQuery("select .* from actors where id =").WithArgs("actor-1").WillReturnRows(rows)

	actor, err := store.GetActor(context.Background(), "actor-1")
	if err != nil {
		t.Fatalf("GetActor: %v", err)
	}
	if actor.Email != "a@example.com" || actor.Role != auth.RoleOrganizer || !actor.IsActive {
		t.Fatalf("unexpected actor: %+v", actor)
	}
	checkExpectations(t, mock)
}

func TestGetActorNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select .* from actors where id =").WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}))

	if _, err := store.GetActor(context.Background(), "ghost"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	checkExpectations(t, mock)
}

func TestCreateActorDuplicateEmail(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectExec("insert into actors").
		WithArgs("actor-1", "a@example.com", "hash", "participant", false, now, now).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := store.CreateActor(context.Background(), auth.Actor{
		ID: "actor-1", Email: "a@example.com", PasswordHash: "hash",
		Role: auth.RoleParticipant, CreatedAt: now, UpdatedAt: now,
	})
	if !errors.Is(err, auth.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	checkExpectations(t, mock)
}

func TestSaveApplicationRevisionMismatch(t *testing.T) {
	store, mock := newMockStore(t)

	// The CAS update matches no row, but the application exists: a stale read.
	mock.ExpectQuery("update applications").WillReturnRows(sqlmock.NewRows([]string{"revision"}))
	mock.ExpectQuery("select exists").WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := store.SaveApplication(context.Background(), conference.Application{ID: "app-1", Status: conference.StatusAccepted}, 3)
	if !errors.Is(err, conference.ErrRevisionMismatch) {
		t.Fatalf("expected ErrRevisionMismatch, got %v", err)
	}
	checkExpectations(t, mock)
}

func TestSaveApplicationNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("update applications").WillReturnRows(sqlmock.NewRows([]string{"revision"}))
	mock.ExpectQuery("select exists").WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := store.SaveApplication(context.Background(), conference.Application{ID: "ghost"}, 1)
	if !errors.Is(err, conference.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	checkExpectations(t, mock)
}

func TestSaveApplicationAdvancesRevision(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("update applications").
		WillReturnRows(sqlmock.NewRows([]string{"revision"}).AddRow(4))

	saved, err := store.SaveApplication(context.Background(), conference.Application{ID: "app-1", Status: conference.StatusAccepted}, 3)
	if err != nil {
		t.Fatalf("SaveApplication: %v", err)
	}
	if saved.Revision != 4 {
		t.Fatalf("revision not advanced: %d", saved.Revision)
	}
	checkExpectations(t, mock)
}

func TestDeleteConferenceReferenced(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("delete from conferences").WithArgs("conf-1").
		WillReturnError(&pgconn.PgError{Code: "23503"})

	if err := store.DeleteConference(context.Background(), "conf-1"); !errors.Is(err, conference.ErrReferenced) {
		t.Fatalf("expected ErrReferenced, got %v", err)
	}
	checkExpectations(t, mock)
}

func TestDeleteConferenceNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("delete from conferences").WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.DeleteConference(context.Background(), "ghost"); !errors.Is(err, conference.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	checkExpectations(t, mock)
}

func TestGetApplicationScansNullables(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "conference_id", "participant_id", "status", "title", "abstract", "presentation_type",
		"assigned_reviewer_id", "reviewer_comments", "review_date", "attended", "revision", "created_at", "updated_at",
	}).AddRow("app-1", "conf-1", "part-1", "submitted", "T", "A", "talk", nil, "", nil, false, 1, now, now)
	mock.ExpectQuery("select .* from applications where id =").WithArgs("app-1").WillReturnRows(rows)

	app, err := store.GetApplication(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("GetApplication: %v", err)
	}
	if app.AssignedReviewerID != "" {
		t.Fatalf("expected empty reviewer, got %q", app.AssignedReviewerID)
	}
	if !app.ReviewDate.IsZero() {
		t.Fatalf("expected zero review date, got %v", app.ReviewDate)
	}
	if app.Status != conference.StatusSubmitted {
		t.Fatalf("unexpected status: %s", app.Status)
	}
	checkExpectations(t, mock)
}

func TestSetActorActive(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}).
		AddRow("actor-1", "a@example.com", "hash", "participant", true, now, now)
	mock.ExpectQuery("update actors").WithArgs("actor-1", true, sqlmock.AnyArg()).WillReturnRows(rows)

	actor, err := store.SetActorActive(context.Background(), "actor-1", true)
	if err != nil {
		t.Fatalf("SetActorActive: %v", err)
	}
	if !actor.IsActive {
		t.Fatal("actor not activated")
	}
	checkExpectations(t, mock)
}
