package workflow

import (
	"errors"
	"fmt"

	"confero.org/internal/conference"
)

// Every rejection the engine produces is traceable to exactly one of these
// kinds; nothing is swallowed or auto-corrected.
var (
	ErrActorInactive           = errors.New("workflow: actor account is not activated")
	ErrPermissionDenied        = errors.New("workflow: permission denied")
	ErrDeadlinePassed          = errors.New("workflow: submission deadline has passed")
	ErrConcurrentModification  = errors.New("workflow: application changed concurrently")
	ErrCollaboratorUnavailable = errors.New("workflow: collaborator unavailable")
)

// InvalidTransitionError reports a requested edge that does not exist in the
// transition table. It usually signals a UI or caller bug.
type InvalidTransitionError struct {
	From conference.Status
	To   conference.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("workflow: invalid transition %s -> %s", e.From, e.To)
}
