package pg

import (
	"context"
	"database/sql"
	"errors"

	"confero.org/internal/conference"
)

const conferenceColumns = `id, theme, organizer_id, submission_deadline, start_date, end_date, published, created_at, updated_at`

func (s *Store) CreateConference(ctx context.Context, conf conference.Conference) (conference.Conference, error) {
	_, err := s.db.ExecContext(ctx, `
		insert into conferences(id, theme, organizer_id, submission_deadline, start_date, end_date, published, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, conf.ID, conf.Theme, conf.OrganizerID, conf.SubmissionDeadline, conf.StartDate, conf.EndDate, conf.Published, conf.CreatedAt, conf.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return conference.Conference{}, conference.ErrAlreadyExists
		}
		return conference.Conference{}, err
	}
	return conf, nil
}

func (s *Store) GetConference(ctx context.Context, id string) (conference.Conference, error) {
	row := s.db.QueryRowContext(ctx, `select `+conferenceColumns+` from conferences where id = $1`, id)
	return scanConference(row)
}

func (s *Store) ListConferences(ctx context.Context, publishedOnly bool) ([]conference.Conference, error) {
	query := `select ` + conferenceColumns + ` from conferences order by start_date asc`
	if publishedOnly {
		query = `select ` + conferenceColumns + ` from conferences where published order by start_date asc`
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []conference.Conference
	for rows.Next() {
		conf, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, conf)
	}
	return out, rows.Err()
}

func (s *Store) UpdateConference(ctx context.Context, conf conference.Conference) (conference.Conference, error) {
	res, err := s.db.ExecContext(ctx, `
		update conferences
		set theme = $2, submission_deadline = $3, start_date = $4, end_date = $5, published = $6, updated_at = $7
		where id = $1
	`, conf.ID, conf.Theme, conf.SubmissionDeadline, conf.StartDate, conf.EndDate, conf.Published, conf.UpdatedAt)
	if err != nil {
		return conference.Conference{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return conference.Conference{}, err
	}
	if affected == 0 {
		return conference.Conference{}, conference.ErrNotFound
	}
	return conf, nil
}

func (s *Store) DeleteConference(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from conferences where id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return conference.ErrReferenced
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return conference.ErrNotFound
	}
	return nil
}

func scanConference(row rowScanner) (conference.Conference, error) {
	var conf conference.Conference
	err := row.Scan(&conf.ID, &conf.Theme, &conf.OrganizerID, &conf.SubmissionDeadline,
		&conf.StartDate, &conf.EndDate, &conf.Published, &conf.CreatedAt, &conf.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return conference.Conference{}, conference.ErrNotFound
	}
	if err != nil {
		return conference.Conference{}, err
	}
	return conf, nil
}
