package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"confero.org/internal/auth"
)

const actorColumns = `id, email, password_hash, role, is_active, created_at, updated_at`

func (s *Store) CreateActor(ctx context.Context, actor auth.Actor) (auth.Actor, error) {
	_, err := s.db.ExecContext(ctx, `
		insert into actors(id, email, password_hash, role, is_active, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7)
	`, actor.ID, actor.Email, actor.PasswordHash, string(actor.Role), actor.IsActive, actor.CreatedAt, actor.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.Actor{}, auth.ErrAlreadyExists
		}
		return auth.Actor{}, err
	}
	return actor, nil
}

func (s *Store) GetActor(ctx context.Context, id string) (auth.Actor, error) {
	row := s.db.QueryRowContext(ctx, `select `+actorColumns+` from actors where id = $1`, id)
	return scanActor(row)
}

func (s *Store) FindActorByEmail(ctx context.Context, email string) (auth.Actor, error) {
	row := s.db.QueryRowContext(ctx, `select `+actorColumns+` from actors where email = $1`, strings.ToLower(email))
	return scanActor(row)
}

func (s *Store) ListActors(ctx context.Context) ([]auth.Actor, error) {
	rows, err := s.db.QueryContext(ctx, `select `+actorColumns+` from actors order by created_at asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []auth.Actor
	for rows.Next() {
		actor, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, actor)
	}
	return out, rows.Err()
}

func (s *Store) SetActorActive(ctx context.Context, id string, active bool) (auth.Actor, error) {
	row := s.db.QueryRowContext(ctx, `
		update actors set is_active = $2, updated_at = $3
		where id = $1
		returning `+actorColumns,
		id, active, time.Now().UTC())
	return scanActor(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActor(row rowScanner) (auth.Actor, error) {
	var actor auth.Actor
	var role string
	err := row.Scan(&actor.ID, &actor.Email, &actor.PasswordHash, &role, &actor.IsActive, &actor.CreatedAt, &actor.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Actor{}, auth.ErrNotFound
	}
	if err != nil {
		return auth.Actor{}, err
	}
	actor.Role = auth.Role(role)
	return actor, nil
}
