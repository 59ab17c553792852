package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"confero.org/internal/auth"
	"confero.org/internal/conference"
)

// ApplicationStore is the slice of the persistence collaborator the engine
// needs for applications.
type ApplicationStore interface {
	GetApplication(ctx context.Context, id string) (conference.Application, error)
	SaveApplication(ctx context.Context, app conference.Application, expectedRevision uint64) (conference.Application, error)
}

// ConferenceStore resolves the owning conference.
type ConferenceStore interface {
	GetConference(ctx context.Context, id string) (conference.Conference, error)
}

// Notifier receives committed review decisions. Delivery is fire-and-forget:
// a notifier must never block the request path nor fail the transition.
type Notifier interface {
	ApplicationDecided(app conference.Application)
}

// TransitionPayload carries optional per-transition data.
type TransitionPayload struct {
	Comments string `json:"comments,omitempty"`
}

// Engine is the single entry point for status changes. It composes the
// permission evaluator and the state machine, and is the only component
// that persists a transitioned application.
type Engine struct {
	apps     ApplicationStore
	confs    ConferenceStore
	notifier Notifier
	now      func() time.Time
}

// EngineOption configures Engine behavior.
type EngineOption func(*Engine)

// WithNotifier attaches a decision notifier.
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) { e.notifier = n }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.now = fn
		}
	}
}

// NewEngine constructs an Engine.
func NewEngine(apps ApplicationStore, confs ConferenceStore, opts ...EngineOption) (*Engine, error) {
	if apps == nil || confs == nil {
		return nil, errors.New("application and conference stores are required")
	}
	e := &Engine{apps: apps, confs: confs, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// RequestTransition processes one status change end-to-end: activation
// check, fresh re-read of application and conference, permission check,
// state machine application, compare-and-swap persistence, then decision
// notification. Either the persisted application is returned or a typed
// error naming the step that refused; the in-memory result is discarded
// whenever persistence fails.
func (e *Engine) RequestTransition(ctx context.Context, actor auth.Actor, applicationID string, target conference.Status, payload TransitionPayload) (conference.Application, error) {
	if !actor.IsActive {
		return conference.Application{}, ErrActorInactive
	}

	// Never act on a cached application; status may have moved since the
	// caller last saw it.
	app, err := e.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return conference.Application{}, collaboratorError("load application", err)
	}
	conf, err := e.confs.GetConference(ctx, app.ConferenceID)
	if err != nil {
		return conference.Application{}, collaboratorError("load conference", err)
	}

	if app.Status == conference.StatusDraft && target == conference.StatusSubmitted {
		if !CanEditApplication(actor, app) {
			return conference.Application{}, ErrPermissionDenied
		}
		if e.now().After(conf.SubmissionDeadline) {
			return conference.Application{}, ErrDeadlinePassed
		}
	} else {
		if !CanReviewApplication(actor, app) {
			return conference.Application{}, ErrPermissionDenied
		}
	}

	updated, err := Apply(app, target, e.now(), payload.Comments)
	if err != nil {
		return conference.Application{}, err
	}

	saved, err := e.apps.SaveApplication(ctx, updated, app.Revision)
	if err != nil {
		if errors.Is(err, conference.ErrRevisionMismatch) {
			return conference.Application{}, fmt.Errorf("%w: application %s", ErrConcurrentModification, app.ID)
		}
		return conference.Application{}, collaboratorError("save application", err)
	}

	if e.notifier != nil && saved.Status.Decided() {
		e.notifier.ApplicationDecided(saved)
	}
	return saved, nil
}

// collaboratorError keeps not-found distinct so callers can map it to 404;
// everything else from a collaborator becomes unavailable.
func collaboratorError(op string, err error) error {
	if errors.Is(err, conference.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrCollaboratorUnavailable, op, err)
}
