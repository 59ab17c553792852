package auth

import "context"

// ActorStore describes persistence operations required by the auth subsystem.
// The identity collaborator is external; the core only reads and updates
// actor records through this interface.
type ActorStore interface {
	CreateActor(ctx context.Context, actor Actor) (Actor, error)
	GetActor(ctx context.Context, id string) (Actor, error)
	FindActorByEmail(ctx context.Context, email string) (Actor, error)
	ListActors(ctx context.Context) ([]Actor, error)
	SetActorActive(ctx context.Context, id string, active bool) (Actor, error)
}
