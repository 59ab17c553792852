package httpapi

import (
	"net/http"
	"strings"
	"time"

	"confero.org/internal/auth"
)

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Actor     authActor `json:"actor"`
	HomeRoute string    `json:"home_route"`
}

type authActor struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	Role     auth.Role `json:"role"`
	IsActive bool      `json:"is_active"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

const tokenTTL = 15 * time.Minute

func (a *API) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	actor, err := a.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(actor.ID, actor.Role, tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}

	expiresAt := time.Now().UTC().Add(tokenTTL)
	a.audit(r.Context(), "auth.token.issued", "actor", actor.ID, map[string]string{
		"role":       string(actor.Role),
		"expires_at": expiresAt.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Actor:     authActor{ID: actor.ID, Email: actor.Email, Role: actor.Role, IsActive: actor.IsActive},
		HomeRoute: auth.HomeRoute(actor.Role),
	})
}

// handleRegister is public self-signup. Accounts always start as inactive
// participants; only an admin can create other roles or activate accounts.
func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	actor, err := a.auth.Register(r.Context(), req.Email, req.Password, auth.RoleParticipant, false)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	a.audit(r.Context(), "auth.actor.registered", "actor", actor.ID, map[string]string{
		"email": actor.Email,
	})
	w.Header().Set("Location", "/v1/actors/"+actor.ID)
	writeJSON(w, http.StatusCreated, actor)
}

func (a *API) handleActorsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listActors(w, r)
	case http.MethodPost:
		a.createActor(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listActors(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCapability(w, r, auth.CapManageUsers); !ok {
		return
	}
	actors, err := a.auth.ListActors(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": actors})
}

// createActor lets an admin create accounts with any role, already active.
func (a *API) createActor(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCapability(w, r, auth.CapManageUsers); !ok {
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	actor, err := a.auth.Register(r.Context(), req.Email, req.Password, role, true)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.audit(r.Context(), "auth.actor.created", "actor", actor.ID, map[string]string{
		"email": actor.Email,
		"role":  string(role),
	})
	w.Header().Set("Location", "/v1/actors/"+actor.ID)
	writeJSON(w, http.StatusCreated, actor)
}

func (a *API) handleActorResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/actors/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		a.getActor(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "activation":
		a.setActorActive(w, r, parts[0])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) getActor(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if actor.ID != id && !auth.HasCapability(actor.Role, auth.CapManageUsers) {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}
	target, err := a.auth.Actor(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (a *API) setActorActive(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	if _, ok := requireCapability(w, r, auth.CapManageUsers); !ok {
		return
	}
	var req setActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	actor, err := a.auth.SetActive(r.Context(), id, req.Active)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	event := "auth.actor.deactivated"
	if req.Active {
		event = "auth.actor.activated"
	}
	a.audit(r.Context(), event, "actor", actor.ID, nil)
	writeJSON(w, http.StatusOK, actor)
}
