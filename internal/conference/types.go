package conference

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the closed set of application lifecycle states. Raw strings are
// validated once at the boundary via ParseStatus so illegal values never
// reach the workflow engine.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
	StatusWaitlist    Status = "waitlist"
)

var (
	ErrNotFound         = errors.New("conference: not found")
	ErrAlreadyExists    = errors.New("conference: already exists")
	ErrInvalidInput     = errors.New("conference: invalid input")
	ErrInvalidStatus    = errors.New("conference: invalid status")
	ErrRevisionMismatch = errors.New("conference: revision mismatch")
	ErrReferenced       = errors.New("conference: applications still reference it")
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.TrimSpace(strings.ToLower(raw)))
	switch status {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusAccepted, StatusRejected, StatusWaitlist:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Terminal reports whether no further transition is defined from s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Decided reports whether s is a review decision. Waitlist counts: it is a
// decision the submitter gets notified about, even though it may still move
// to accepted or rejected.
func (s Status) Decided() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusWaitlist
}

// Conference is the event an application is submitted against.
type Conference struct {
	ID                 string    `json:"id"`
	Theme              string    `json:"theme"`
	OrganizerID        string    `json:"organizer_id"`
	SubmissionDeadline time.Time `json:"submission_deadline"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	Published          bool      `json:"published"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Validate checks the date invariants: the conference must not end before it
// starts and submissions must close before it starts.
func (c Conference) Validate() error {
	if strings.TrimSpace(c.Theme) == "" {
		return fmt.Errorf("%w: theme is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.OrganizerID) == "" {
		return fmt.Errorf("%w: organizer_id is required", ErrInvalidInput)
	}
	if c.SubmissionDeadline.IsZero() || c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("%w: submission_deadline, start_date and end_date are required", ErrInvalidInput)
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: end_date precedes start_date", ErrInvalidInput)
	}
	if !c.SubmissionDeadline.Before(c.StartDate) {
		return fmt.Errorf("%w: submission_deadline must precede start_date", ErrInvalidInput)
	}
	return nil
}

// Application is a participant's submission to a conference.
type Application struct {
	ID                 string    `json:"id"`
	ConferenceID       string    `json:"conference_id"`
	ParticipantID      string    `json:"participant_id"`
	Status             Status    `json:"status"`
	Title              string    `json:"title,omitempty"`
	Abstract           string    `json:"abstract,omitempty"`
	PresentationType   string    `json:"presentation_type,omitempty"`
	AssignedReviewerID string    `json:"assigned_reviewer_id,omitempty"`
	ReviewerComments   string    `json:"reviewer_comments,omitempty"`
	ReviewDate         time.Time `json:"review_date,omitzero"`
	Attended           bool      `json:"attended"`
	// Revision is the optimistic-concurrency token; every save must present
	// the revision it read.
	Revision  uint64    `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
