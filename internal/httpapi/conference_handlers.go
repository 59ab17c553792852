package httpapi

import (
	"net/http"
	"strings"
	"time"

	"confero.org/internal/auth"
	"confero.org/internal/conference"
	"confero.org/internal/workflow"
)

type createConferenceRequest struct {
	Theme              string    `json:"theme"`
	OrganizerID        string    `json:"organizer_id"`
	SubmissionDeadline time.Time `json:"submission_deadline"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	Published          bool      `json:"published"`
}

type updateConferenceRequest struct {
	Theme              *string    `json:"theme"`
	SubmissionDeadline *time.Time `json:"submission_deadline"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	Published          *bool      `json:"published"`
}

type createApplicationRequest struct {
	Title            string `json:"title"`
	Abstract         string `json:"abstract"`
	PresentationType string `json:"presentation_type"`
	Submit           bool   `json:"submit"`
}

func (a *API) handleConferencesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createConference(w, r)
	case http.MethodGet:
		a.listConferences(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createConference(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireCapability(w, r, auth.CapManageConferences)
	if !ok {
		return
	}
	var req createConferenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Organizers own what they create; only super admins may create on
	// another organizer's behalf.
	organizerID := actor.ID
	if req.OrganizerID != "" && req.OrganizerID != actor.ID {
		if actor.Role != auth.RoleSuperAdmin {
			writeError(w, r, http.StatusForbidden, "permission denied")
			return
		}
		organizerID = strings.TrimSpace(req.OrganizerID)
	}

	conf, err := a.confs.CreateConference(r.Context(), organizerID, req.Theme, req.SubmissionDeadline, req.StartDate, req.EndDate, req.Published)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.audit(r.Context(), "conference.create", "conference", conf.ID, map[string]string{
		"theme":        conf.Theme,
		"organizer_id": conf.OrganizerID,
	})
	w.Header().Set("Location", "/v1/conferences/"+conf.ID)
	writeJSON(w, http.StatusCreated, conf)
}

func (a *API) listConferences(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	publishedOnly := !auth.HasCapability(actor.Role, auth.CapManageConferences)
	items, err := a.confs.ListConferences(r.Context(), publishedOnly)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handleConferenceResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/conferences/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		a.conferenceItem(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "applications":
		a.conferenceApplications(w, r, parts[0])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) conferenceItem(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		a.getConference(w, r, id)
	case http.MethodPatch:
		a.updateConference(w, r, id)
	case http.MethodDelete:
		a.deleteConference(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) getConference(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	conf, err := a.confs.GetConference(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if !conf.Published && !workflow.CanManageConference(actor, conf) {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

func (a *API) updateConference(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := requireCapability(w, r, auth.CapManageConferences)
	if !ok {
		return
	}
	conf, err := a.confs.GetConference(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if !workflow.CanManageConference(actor, conf) {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var req updateConferenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := a.confs.UpdateConference(r.Context(), id, conference.ConferenceUpdate{
		Theme:              req.Theme,
		SubmissionDeadline: req.SubmissionDeadline,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Published:          req.Published,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.audit(r.Context(), "conference.update", "conference", updated.ID, nil)
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) deleteConference(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := requireCapability(w, r, auth.CapManageConferences)
	if !ok {
		return
	}
	conf, err := a.confs.GetConference(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if !workflow.CanManageConference(actor, conf) {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	if err := a.confs.DeleteConference(r.Context(), id); err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.audit(r.Context(), "conference.delete", "conference", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) conferenceApplications(w http.ResponseWriter, r *http.Request, conferenceID string) {
	switch r.Method {
	case http.MethodPost:
		a.createApplication(w, r, conferenceID)
	case http.MethodGet:
		a.listConferenceApplications(w, r, conferenceID)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createApplication(w http.ResponseWriter, r *http.Request, conferenceID string) {
	actor, ok := requireCapability(w, r, auth.CapSubmitApplications)
	if !ok {
		return
	}
	conf, err := a.confs.GetConference(r.Context(), conferenceID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if !workflow.CanSubmitApplication(actor, conf, time.Now()) {
		if !actor.IsActive {
			writeError(w, r, http.StatusForbidden, "account not activated")
			return
		}
		if time.Now().After(conf.SubmissionDeadline) {
			writeError(w, r, http.StatusConflict, "submission deadline has passed")
			return
		}
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}

	var req createApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	app, err := a.confs.CreateApplication(r.Context(), conferenceID, actor.ID, req.Submit, conference.ApplicationUpdate{
		Title:            &req.Title,
		Abstract:         &req.Abstract,
		PresentationType: &req.PresentationType,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.audit(r.Context(), "application.create", "application", app.ID, map[string]string{
		"conference_id": conferenceID,
		"status":        string(app.Status),
	})
	w.Header().Set("Location", "/v1/applications/"+app.ID)
	writeJSON(w, http.StatusCreated, app)
}

func (a *API) listConferenceApplications(w http.ResponseWriter, r *http.Request, conferenceID string) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	conf, err := a.confs.GetConference(r.Context(), conferenceID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	items, err := a.confs.ListApplicationsByConference(r.Context(), conferenceID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	// Visibility is per item: submitters see their own, reviewers their
	// queue, organizers and admins everything.
	visible := make([]conference.Application, 0, len(items))
	for _, app := range items {
		if workflow.CanViewApplication(actor, app, conf) {
			visible = append(visible, app)
			continue
		}
		if actor.Role == auth.RoleReviewer && workflow.CanReviewApplication(actor, app) {
			visible = append(visible, app)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": visible})
}
