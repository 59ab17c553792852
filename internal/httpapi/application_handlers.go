package httpapi

import (
	"net/http"
	"strings"
	"time"

	"confero.org/internal/auth"
	"confero.org/internal/conference"
	"confero.org/internal/obs"
	"confero.org/internal/workflow"
)

type updateApplicationRequest struct {
	Title            *string `json:"title"`
	Abstract         *string `json:"abstract"`
	PresentationType *string `json:"presentation_type"`
}

type transitionRequest struct {
	Target   string `json:"target"`
	Comments string `json:"comments"`
}

type assignReviewerRequest struct {
	ReviewerID string `json:"reviewer_id"`
}

type attendedRequest struct {
	Attended bool `json:"attended"`
}

func (a *API) handleApplicationResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/applications/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		a.applicationItem(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "transition":
		a.transitionApplication(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "reviewer":
		a.assignReviewer(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "attended":
		a.setAttended(w, r, parts[0])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) applicationItem(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		a.getApplication(w, r, id)
	case http.MethodPatch:
		a.updateApplication(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch)
	}
}

// loadApplicationWithConference fetches the application and its owning
// conference, handling error responses. ok=false means a response was
// already written.
func (a *API) loadApplicationWithConference(w http.ResponseWriter, r *http.Request, id string) (conference.Application, conference.Conference, bool) {
	app, err := a.confs.GetApplication(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return conference.Application{}, conference.Conference{}, false
	}
	conf, err := a.confs.GetConference(r.Context(), app.ConferenceID)
	if err != nil {
		handleDomainError(w, r, err)
		return conference.Application{}, conference.Conference{}, false
	}
	return app, conf, true
}

func (a *API) getApplication(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	app, conf, ok := a.loadApplicationWithConference(w, r, id)
	if !ok {
		return
	}
	if !workflow.CanViewApplication(actor, app, conf) &&
		!(actor.Role == auth.RoleReviewer && workflow.CanReviewApplication(actor, app)) {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (a *API) updateApplication(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	app, _, ok := a.loadApplicationWithConference(w, r, id)
	if !ok {
		return
	}
	if !workflow.CanEditApplication(actor, app) {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var req updateApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := a.confs.UpdateApplication(r.Context(), id, conference.ApplicationUpdate{
		Title:            req.Title,
		Abstract:         req.Abstract,
		PresentationType: req.PresentationType,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.audit(r.Context(), "application.update", "application", updated.ID, nil)
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) transitionApplication(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req transitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	target, err := conference.ParseStatus(req.Target)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	app, err := a.engine.RequestTransition(r.Context(), actor, id, target, workflow.TransitionPayload{
		Comments: req.Comments,
	})
	obs.ObserveTransition(string(target), workflowOutcome(err))
	if err != nil {
		handleWorkflowError(w, r, err)
		return
	}

	meta := map[string]string{
		"status": string(app.Status),
	}
	if req.Comments != "" {
		meta["has_comments"] = "true"
	}
	a.audit(r.Context(), "application.transition", "application", app.ID, meta)
	writeJSON(w, http.StatusOK, app)
}

func (a *API) assignReviewer(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	actor, ok := requireCapability(w, r, auth.CapManageConferences)
	if !ok {
		return
	}
	_, conf, ok := a.loadApplicationWithConference(w, r, id)
	if !ok {
		return
	}
	if !workflow.CanManageConference(actor, conf) {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	var req assignReviewerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	reviewer, err := a.auth.Actor(r.Context(), strings.TrimSpace(req.ReviewerID))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if !auth.HasCapability(reviewer.Role, auth.CapReviewApplications) {
		writeError(w, r, http.StatusBadRequest, "assignee cannot review applications")
		return
	}
	updated, err := a.confs.AssignReviewer(r.Context(), id, reviewer.ID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.audit(r.Context(), "application.reviewer.assign", "application", updated.ID, map[string]string{
		"reviewer_id": reviewer.ID,
	})
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) setAttended(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	actor, ok := requireCapability(w, r, auth.CapManageConferences)
	if !ok {
		return
	}
	_, conf, ok := a.loadApplicationWithConference(w, r, id)
	if !ok {
		return
	}
	if !workflow.CanManageConference(actor, conf) {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	// Attendance only makes sense once the conference is over.
	if time.Now().Before(conf.EndDate) {
		writeError(w, r, http.StatusConflict, "conference has not ended")
		return
	}
	var req attendedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := a.confs.SetAttended(r.Context(), id, req.Attended)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.audit(r.Context(), "application.attended", "application", updated.ID, map[string]string{
		"attended": map[bool]string{true: "true", false: "false"}[req.Attended],
	})
	writeJSON(w, http.StatusOK, updated)
}
