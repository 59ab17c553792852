package stream

import (
	"context"
	"sync"
	"time"

	"confero.org/internal/conference"
)

// DecisionEvent describes a committed review decision, fanned out to
// dashboard clients over SSE.
type DecisionEvent struct {
	ApplicationID string            `json:"application_id"`
	ConferenceID  string            `json:"conference_id"`
	ParticipantID string            `json:"participant_id"`
	Status        conference.Status `json:"status"`
	Comments      string            `json:"comments,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// Stream fan-outs decision events to all active subscribers. Slow
// subscribers are skipped rather than blocking the publisher.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan DecisionEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan DecisionEvent)}
}

// Subscribe registers a subscriber; the channel closes when ctx is done.
func (s *Stream) Subscribe(ctx context.Context) <-chan DecisionEvent {
	ch := make(chan DecisionEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Publish delivers the event to every subscriber that can keep up.
func (s *Stream) Publish(event DecisionEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// ApplicationDecided adapts the stream to the workflow notifier contract.
func (s *Stream) ApplicationDecided(app conference.Application) {
	s.Publish(DecisionEvent{
		ApplicationID: app.ID,
		ConferenceID:  app.ConferenceID,
		ParticipantID: app.ParticipantID,
		Status:        app.Status,
		Comments:      app.ReviewerComments,
		Timestamp:     time.Now().UTC(),
	})
}
