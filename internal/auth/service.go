package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"confero.org/internal/ids"
)

// Service provides actor registration, activation and credential checks on
// top of an ActorStore.
type Service struct {
	store ActorStore
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service.
func NewService(store ActorStore, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("actor store is required")
	}
	svc := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register creates an actor. Self-registered accounts start inactive and
// stay that way until an administrator activates them; the active flag is
// honored only when an admin creates the account directly.
func (s *Service) Register(ctx context.Context, email, password string, role Role, active bool) (Actor, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return Actor{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	password = strings.TrimSpace(password)
	if password == "" {
		return Actor{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if _, err := ParseRole(string(role)); err != nil {
		return Actor{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return Actor{}, err
	}
	now := s.now().UTC()
	actor := Actor{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.store.CreateActor(ctx, actor)
}

// Authenticate checks credentials and returns the stored actor. Inactive
// actors authenticate successfully; denying them state-changing actions is
// the workflow engine's job.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Actor, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Actor{}, ErrUnauthorized
	}
	actor, err := s.store.FindActorByEmail(ctx, email)
	if err != nil {
		return Actor{}, ErrUnauthorized
	}
	if err := VerifyPassword(actor.PasswordHash, password); err != nil {
		return Actor{}, ErrUnauthorized
	}
	return actor, nil
}

// Actor loads an actor by id.
func (s *Service) Actor(ctx context.Context, id string) (Actor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Actor{}, fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}
	return s.store.GetActor(ctx, id)
}

// ListActors returns all actors.
func (s *Service) ListActors(ctx context.Context) ([]Actor, error) {
	return s.store.ListActors(ctx)
}

// SetActive flips the activation flag on an actor account.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (Actor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Actor{}, fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}
	return s.store.SetActorActive(ctx, id, active)
}
