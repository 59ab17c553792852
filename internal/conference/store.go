package conference

import "context"

// Store is the persistence collaborator contract. A save immediately
// following a get within one request must observe the latest committed
// state; both implementations (in-memory, Postgres) guarantee it.
type Store interface {
	CreateConference(ctx context.Context, conf Conference) (Conference, error)
	GetConference(ctx context.Context, id string) (Conference, error)
	ListConferences(ctx context.Context, publishedOnly bool) ([]Conference, error)
	UpdateConference(ctx context.Context, conf Conference) (Conference, error)
	DeleteConference(ctx context.Context, id string) error

	CreateApplication(ctx context.Context, app Application) (Application, error)
	GetApplication(ctx context.Context, id string) (Application, error)
	// SaveApplication persists app if the stored revision still equals
	// expectedRevision, bumping the revision on success. A mismatch yields
	// ErrRevisionMismatch.
	SaveApplication(ctx context.Context, app Application, expectedRevision uint64) (Application, error)
	ListApplicationsByConference(ctx context.Context, conferenceID string) ([]Application, error)
	ListApplicationsByParticipant(ctx context.Context, participantID string) ([]Application, error)
}
