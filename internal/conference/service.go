package conference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"confero.org/internal/ids"
)

// Service provides validated CRUD operations over a Store. Authorization is
// not its concern: callers consult the workflow evaluator before invoking
// anything that mutates state.
type Service struct {
	store Store
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
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("conference store is required")
	}
	svc := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ConferenceUpdate carries optional field changes.
type ConferenceUpdate struct {
	Theme              *string
	SubmissionDeadline *time.Time
	StartDate          *time.Time
	EndDate            *time.Time
	Published          *bool
}

// ApplicationUpdate carries the presentation metadata a submitter may edit.
type ApplicationUpdate struct {
	Title            *string
	Abstract         *string
	PresentationType *string
}

// CreateConference validates the date invariants and persists a new
// conference owned by organizerID.
func (s *Service) CreateConference(ctx context.Context, organizerID, theme string, deadline, start, end time.Time, published bool) (Conference, error) {
	now := s.now().UTC()
	conf := Conference{
		ID:                 ids.New(),
		Theme:              strings.TrimSpace(theme),
		OrganizerID:        strings.TrimSpace(organizerID),
		SubmissionDeadline: deadline,
		StartDate:          start,
		EndDate:            end,
		Published:          published,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := conf.Validate(); err != nil {
		return Conference{}, err
	}
	return s.store.CreateConference(ctx, conf)
}

// GetConference loads a conference by id.
func (s *Service) GetConference(ctx context.Context, id string) (Conference, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Conference{}, fmt.Errorf("%w: conference id is required", ErrInvalidInput)
	}
	return s.store.GetConference(ctx, id)
}

// ListConferences returns conferences, optionally only published ones.
func (s *Service) ListConferences(ctx context.Context, publishedOnly bool) ([]Conference, error) {
	return s.store.ListConferences(ctx, publishedOnly)
}

// UpdateConference applies the update and revalidates the date invariants.
func (s *Service) UpdateConference(ctx context.Context, id string, upd ConferenceUpdate) (Conference, error) {
	conf, err := s.GetConference(ctx, id)
	if err != nil {
		return Conference{}, err
	}
	if upd.Theme != nil {
		conf.Theme = strings.TrimSpace(*upd.Theme)
	}
	if upd.SubmissionDeadline != nil {
		conf.SubmissionDeadline = *upd.SubmissionDeadline
	}
	if upd.StartDate != nil {
		conf.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		conf.EndDate = *upd.EndDate
	}
	if upd.Published != nil {
		conf.Published = *upd.Published
	}
	if err := conf.Validate(); err != nil {
		return Conference{}, err
	}
	conf.UpdatedAt = s.now().UTC()
	return s.store.UpdateConference(ctx, conf)
}

// DeleteConference removes a conference. The store refuses while
// applications still reference it.
func (s *Service) DeleteConference(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: conference id is required", ErrInvalidInput)
	}
	return s.store.DeleteConference(ctx, id)
}

// CreateApplication persists a new application in draft or submitted state.
// Both are valid creation outcomes; which one depends on whether the
// submitter saved or submitted.
func (s *Service) CreateApplication(ctx context.Context, conferenceID, participantID string, submit bool, meta ApplicationUpdate) (Application, error) {
	conferenceID = strings.TrimSpace(conferenceID)
	participantID = strings.TrimSpace(participantID)
	if conferenceID == "" || participantID == "" {
		return Application{}, fmt.Errorf("%w: conference id and participant id are required", ErrInvalidInput)
	}
	now := s.now().UTC()
	app := Application{
		ID:            ids.New(),
		ConferenceID:  conferenceID,
		ParticipantID: participantID,
		Status:        StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if submit {
		app.Status = StatusSubmitted
	}
	applyMetadata(&app, meta)
	return s.store.CreateApplication(ctx, app)
}

// GetApplication loads an application by id.
func (s *Service) GetApplication(ctx context.Context, id string) (Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Application{}, fmt.Errorf("%w: application id is required", ErrInvalidInput)
	}
	return s.store.GetApplication(ctx, id)
}

// UpdateApplication edits presentation metadata. Status is untouched here;
// all status movement goes through the workflow engine.
func (s *Service) UpdateApplication(ctx context.Context, id string, meta ApplicationUpdate) (Application, error) {
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	applyMetadata(&app, meta)
	app.UpdatedAt = s.now().UTC()
	return s.store.SaveApplication(ctx, app, app.Revision)
}

// AssignReviewer records the reviewer responsible for the application.
func (s *Service) AssignReviewer(ctx context.Context, id, reviewerID string) (Application, error) {
	reviewerID = strings.TrimSpace(reviewerID)
	if reviewerID == "" {
		return Application{}, fmt.Errorf("%w: reviewer id is required", ErrInvalidInput)
	}
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	app.AssignedReviewerID = reviewerID
	app.UpdatedAt = s.now().UTC()
	return s.store.SaveApplication(ctx, app, app.Revision)
}

// SetAttended flags whether the participant showed up.
func (s *Service) SetAttended(ctx context.Context, id string, attended bool) (Application, error) {
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	app.Attended = attended
	app.UpdatedAt = s.now().UTC()
	return s.store.SaveApplication(ctx, app, app.Revision)
}

// ListApplicationsByConference returns a conference's applications.
func (s *Service) ListApplicationsByConference(ctx context.Context, conferenceID string) ([]Application, error) {
	conferenceID = strings.TrimSpace(conferenceID)
	if conferenceID == "" {
		return nil, fmt.Errorf("%w: conference id is required", ErrInvalidInput)
	}
	return s.store.ListApplicationsByConference(ctx, conferenceID)
}

// ListApplicationsByParticipant returns a participant's applications.
func (s *Service) ListApplicationsByParticipant(ctx context.Context, participantID string) ([]Application, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return nil, fmt.Errorf("%w: participant id is required", ErrInvalidInput)
	}
	return s.store.ListApplicationsByParticipant(ctx, participantID)
}

func applyMetadata(app *Application, meta ApplicationUpdate) {
	if meta.Title != nil {
		app.Title = strings.TrimSpace(*meta.Title)
	}
	if meta.Abstract != nil {
		app.Abstract = strings.TrimSpace(*meta.Abstract)
	}
	if meta.PresentationType != nil {
		app.PresentationType = strings.TrimSpace(*meta.PresentationType)
	}
}
