package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

// InMemory implements ActorStore with in-process concurrency safety. It
// backs local development and tests; production deployments use the
// Postgres store.
type InMemory struct {
	mu      sync.RWMutex
	actors  map[string]*Actor
	byEmail map[string]string
}

var _ ActorStore = (*InMemory)(nil)

// NewInMemory creates an empty actor store.
func NewInMemory() *InMemory {
	return &InMemory{
		actors:  make(map[string]*Actor),
		byEmail: make(map[string]string),
	}
}

func (s *InMemory) CreateActor(ctx context.Context, actor Actor) (Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(actor.Email)
	if _, ok := s.byEmail[email]; ok {
		return Actor{}, ErrAlreadyExists
	}
	stored := actor
	s.actors[actor.ID] = &stored
	s.byEmail[email] = actor.ID
	return stored, nil
}

func (s *InMemory) GetActor(ctx context.Context, id string) (Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	actor, ok := s.actors[id]
	if !ok {
		return Actor{}, ErrNotFound
	}
	return *actor, nil
}

func (s *InMemory) FindActorByEmail(ctx context.Context, email string) (Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return Actor{}, ErrNotFound
	}
	return *s.actors[id], nil
}

func (s *InMemory) ListActors(ctx context.Context) ([]Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Actor, 0, len(s.actors))
	for _, actor := range s.actors {
		out = append(out, *actor)
	}
	return out, nil
}

func (s *InMemory) SetActorActive(ctx context.Context, id string, active bool) (Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	actor, ok := s.actors[id]
	if !ok {
		return Actor{}, ErrNotFound
	}
	actor.IsActive = active
	actor.UpdatedAt = time.Now().UTC()
	return *actor, nil
}
