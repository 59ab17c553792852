package workflow

import (
	"time"

	"confero.org/internal/auth"
	"confero.org/internal/conference"
)

// Instance-level permission checks. All functions are pure and total over
// typed inputs: a "no" is always false, never an error. Role strings are
// validated at the boundary (auth.ParseRole), so an unknown role cannot
// reach this package.

// CanManageConference: super admins manage everything; organizers only what
// they own.
func CanManageConference(actor auth.Actor, conf conference.Conference) bool {
	switch actor.Role {
	case auth.RoleSuperAdmin:
		return true
	case auth.RoleOrganizer:
		return actor.ID == conf.OrganizerID
	}
	return false
}

// CanSubmitApplication: active participants (or super admins on their
// behalf) while submissions are open. The deadline instant itself is still
// open; one tick past it is closed.
func CanSubmitApplication(actor auth.Actor, conf conference.Conference, now time.Time) bool {
	if !actor.IsActive {
		return false
	}
	if actor.Role != auth.RoleSuperAdmin && actor.Role != auth.RoleParticipant {
		return false
	}
	return !now.After(conf.SubmissionDeadline)
}

// CanEditApplication: the submitter while the application has not left
// draft/submitted, or a super admin at any time.
func CanEditApplication(actor auth.Actor, app conference.Application) bool {
	if actor.Role == auth.RoleSuperAdmin {
		return true
	}
	if actor.ID != app.ParticipantID {
		return false
	}
	return app.Status == conference.StatusDraft || app.Status == conference.StatusSubmitted
}

// CanReviewApplication: super admins and the owning side (organizers)
// always; reviewers only when assigned, or when no reviewer is assigned yet.
func CanReviewApplication(actor auth.Actor, app conference.Application) bool {
	switch actor.Role {
	case auth.RoleSuperAdmin, auth.RoleOrganizer:
		return true
	case auth.RoleReviewer:
		return app.AssignedReviewerID == "" || app.AssignedReviewerID == actor.ID
	}
	return false
}

// CanViewApplication: the submitter, the assigned reviewer, the owning
// conference's organizer, or a super admin.
func CanViewApplication(actor auth.Actor, app conference.Application, conf conference.Conference) bool {
	if actor.Role == auth.RoleSuperAdmin {
		return true
	}
	if actor.ID == app.ParticipantID {
		return true
	}
	if actor.ID != "" && actor.ID == app.AssignedReviewerID {
		return true
	}
	return actor.Role == auth.RoleOrganizer && actor.ID == conf.OrganizerID
}
