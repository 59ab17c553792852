package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"confero.org/internal/conference"
)

const applicationColumns = `id, conference_id, participant_id, status, title, abstract, presentation_type,
	assigned_reviewer_id, reviewer_comments, review_date, attended, revision, created_at, updated_at`

func (s *Store) CreateApplication(ctx context.Context, app conference.Application) (conference.Application, error) {
	app.Revision = 1
	_, err := s.db.ExecContext(ctx, `
		insert into applications(id, conference_id, participant_id, status, title, abstract, presentation_type,
			assigned_reviewer_id, reviewer_comments, review_date, attended, revision, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, app.ID, app.ConferenceID, app.ParticipantID, string(app.Status), app.Title, app.Abstract, app.PresentationType,
		nullString(app.AssignedReviewerID), app.ReviewerComments, nullTime(app.ReviewDate), app.Attended,
		app.Revision, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return conference.Application{}, conference.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return conference.Application{}, conference.ErrNotFound
		}
		return conference.Application{}, err
	}
	return app, nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (conference.Application, error) {
	row := s.db.QueryRowContext(ctx, `select `+applicationColumns+` from applications where id = $1`, id)
	return scanApplication(row)
}

// SaveApplication performs the compare-and-swap: the update only lands when
// the stored revision still matches what the caller read.
func (s *Store) SaveApplication(ctx context.Context, app conference.Application, expectedRevision uint64) (conference.Application, error) {
	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		update applications
		set status = $2, title = $3, abstract = $4, presentation_type = $5,
			assigned_reviewer_id = $6, reviewer_comments = $7, review_date = $8,
			attended = $9, revision = revision + 1, updated_at = $10
		where id = $1 and revision = $11
		returning revision
	`, app.ID, string(app.Status), app.Title, app.Abstract, app.PresentationType,
		nullString(app.AssignedReviewerID), app.ReviewerComments, nullTime(app.ReviewDate),
		app.Attended, now, expectedRevision)

	var revision uint64
	err := row.Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a stale revision from a missing row.
		var exists bool
		if checkErr := s.db.QueryRowContext(ctx, `select exists(select 1 from applications where id = $1)`, app.ID).Scan(&exists); checkErr != nil {
			return conference.Application{}, checkErr
		}
		if exists {
			return conference.Application{}, conference.ErrRevisionMismatch
		}
		return conference.Application{}, conference.ErrNotFound
	}
	if err != nil {
		return conference.Application{}, err
	}
	app.Revision = revision
	app.UpdatedAt = now
	return app, nil
}

func (s *Store) ListApplicationsByConference(ctx context.Context, conferenceID string) ([]conference.Application, error) {
	return s.listApplications(ctx, `select `+applicationColumns+` from applications where conference_id = $1 order by created_at asc`, conferenceID)
}

func (s *Store) ListApplicationsByParticipant(ctx context.Context, participantID string) ([]conference.Application, error) {
	return s.listApplications(ctx, `select `+applicationColumns+` from applications where participant_id = $1 order by created_at asc`, participantID)
}

func (s *Store) listApplications(ctx context.Context, query string, arg any) ([]conference.Application, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []conference.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func scanApplication(row rowScanner) (conference.Application, error) {
	var app conference.Application
	var status string
	var reviewer sql.NullString
	var reviewDate sql.NullTime
	err := row.Scan(&app.ID, &app.ConferenceID, &app.ParticipantID, &status, &app.Title, &app.Abstract,
		&app.PresentationType, &reviewer, &app.ReviewerComments, &reviewDate, &app.Attended,
		&app.Revision, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return conference.Application{}, conference.ErrNotFound
	}
	if err != nil {
		return conference.Application{}, err
	}
	app.Status = conference.Status(status)
	if reviewer.Valid {
		app.AssignedReviewerID = reviewer.String
	}
	if reviewDate.Valid {
		app.ReviewDate = reviewDate.Time
	}
	return app, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
