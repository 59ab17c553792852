package workflow

import (
	"strings"
	"time"

	"confero.org/internal/conference"
)

// transitions is the legal edge table. Accepted and rejected are terminal;
// waitlist may still move to a final decision but never back to the queue.
var transitions = map[conference.Status][]conference.Status{
	conference.StatusDraft:       {conference.StatusSubmitted},
	conference.StatusSubmitted:   {conference.StatusUnderReview, conference.StatusAccepted, conference.StatusRejected, conference.StatusWaitlist},
	conference.StatusUnderReview: {conference.StatusAccepted, conference.StatusRejected, conference.StatusWaitlist},
	conference.StatusWaitlist:    {conference.StatusAccepted, conference.StatusRejected},
	conference.StatusAccepted:    {},
	conference.StatusRejected:    {},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to conference.Status) bool {
	for _, target := range transitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// Targets returns the legal targets from a status.
func Targets(from conference.Status) []conference.Status {
	out := make([]conference.Status, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

// Apply moves the application to target and records the transition's side
// effects. It checks only the edge table; permission and deadline rules are
// the engine's responsibility. Movement is monotonic: there is no edge back
// to draft or submitted, so a returned application can never regress.
func Apply(app conference.Application, target conference.Status, now time.Time, comments string) (conference.Application, error) {
	if !CanTransition(app.Status, target) {
		return conference.Application{}, &InvalidTransitionError{From: app.Status, To: target}
	}
	app.Status = target
	if target != conference.StatusDraft && target != conference.StatusSubmitted {
		app.ReviewDate = now.UTC()
	}
	if comments = strings.TrimSpace(comments); comments != "" {
		// Reviewer comments are shown to the submitter; this is deliberate
		// transparency, not an operator-only log.
		app.ReviewerComments = comments
	}
	app.UpdatedAt = now.UTC()
	return app, nil
}
