package conference

import (
	"context"
	"sync"
	"time"
)

// InMemory implements Store with in-process concurrency safety.
type InMemory struct {
	mu    sync.RWMutex
	confs map[string]*Conference
	apps  map[string]*Application
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		confs: make(map[string]*Conference),
		apps:  make(map[string]*Application),
	}
}

func (s *InMemory) CreateConference(ctx context.Context, conf Conference) (Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.confs[conf.ID]; ok {
		return Conference{}, ErrAlreadyExists
	}
	stored := conf
	s.confs[conf.ID] = &stored
	return stored, nil
}

func (s *InMemory) GetConference(ctx context.Context, id string) (Conference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conf, ok := s.confs[id]
	if !ok {
		return Conference{}, ErrNotFound
	}
	return *conf, nil
}

func (s *InMemory) ListConferences(ctx context.Context, publishedOnly bool) ([]Conference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Conference, 0, len(s.confs))
	for _, conf := range s.confs {
		if publishedOnly && !conf.Published {
			continue
		}
		out = append(out, *conf)
	}
	return out, nil
}

func (s *InMemory) UpdateConference(ctx context.Context, conf Conference) (Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.confs[conf.ID]; !ok {
		return Conference{}, ErrNotFound
	}
	stored := conf
	s.confs[conf.ID] = &stored
	return stored, nil
}

func (s *InMemory) DeleteConference(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.confs[id]; !ok {
		return ErrNotFound
	}
	for _, app := range s.apps {
		if app.ConferenceID == id {
			return ErrReferenced
		}
	}
	delete(s.confs, id)
	return nil
}

func (s *InMemory) CreateApplication(ctx context.Context, app Application) (Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[app.ID]; ok {
		return Application{}, ErrAlreadyExists
	}
	if _, ok := s.confs[app.ConferenceID]; !ok {
		return Application{}, ErrNotFound
	}
	stored := app
	stored.Revision = 1
	s.apps[app.ID] = &stored
	return stored, nil
}

func (s *InMemory) GetApplication(ctx context.Context, id string) (Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	return *app, nil
}

func (s *InMemory) SaveApplication(ctx context.Context, app Application, expectedRevision uint64) (Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.apps[app.ID]
	if !ok {
		return Application{}, ErrNotFound
	}
	if stored.Revision != expectedRevision {
		return Application{}, ErrRevisionMismatch
	}
	next := app
	next.Revision = expectedRevision + 1
	next.UpdatedAt = time.Now().UTC()
	s.apps[app.ID] = &next
	return next, nil
}

func (s *InMemory) ListApplicationsByConference(ctx context.Context, conferenceID string) ([]Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Application
	for _, app := range s.apps {
		if app.ConferenceID == conferenceID {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (s *InMemory) ListApplicationsByParticipant(ctx context.Context, participantID string) ([]Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Application
	for _, app := range s.apps {
		if app.ParticipantID == participantID {
			out = append(out, *app)
		}
	}
	return out, nil
}
