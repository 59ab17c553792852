package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"confero.org/internal/audit"
	"confero.org/internal/auth"
	"confero.org/internal/conference"
	"confero.org/internal/obs"
	"confero.org/internal/stream"
	"confero.org/internal/workflow"
)

// ReadyProbe checks readiness, typically by pinging the database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config wires the API's collaborators.
type Config struct {
	ReadyProbe  ReadyProbe
	Version     string
	Auth        *auth.Service
	Conferences *conference.Service
	Engine      *workflow.Engine
	Stream      *stream.Stream
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	auth       *auth.Service
	confs      *conference.Service
	engine     *workflow.Engine
	stream     *stream.Stream
}

func New(cfg Config) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: cfg.ReadyProbe,
		version:    cfg.Version,
		auth:       cfg.Auth,
		confs:      cfg.Conferences,
		engine:     cfg.Engine,
		stream:     cfg.Stream,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/token", a.handleAuthToken)
	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/actors", a.handleActorsCollection)
	a.mux.HandleFunc("/v1/actors/", a.handleActorResource)

	a.mux.HandleFunc("/v1/conferences", a.handleConferencesCollection)
	a.mux.HandleFunc("/v1/conferences/", a.handleConferenceResource)
	a.mux.HandleFunc("/v1/applications/", a.handleApplicationResource)

	a.mux.HandleFunc("/v1/stream/decisions", a.StreamDecisions)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, 30, 10)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- service handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "confero-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "confero-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func (a *API) audit(ctx context.Context, event, resourceType, resourceID string, meta map[string]string) {
	fields := map[string]any{
		"resource_type": resourceType,
		"resource_id":   resourceID,
	}
	for k, v := range meta {
		fields[k] = v
	}
	_ = audit.LogEvent(ctx, event, fields)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleDomainError maps store/service errors to HTTP status codes.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, conference.ErrInvalidInput),
		errors.Is(err, conference.ErrInvalidStatus),
		errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, conference.ErrNotFound), errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	case errors.Is(err, conference.ErrAlreadyExists), errors.Is(err, auth.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, conference.ErrReferenced),
		errors.Is(err, conference.ErrRevisionMismatch):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// handleWorkflowError maps engine rejections. Invalid transitions surface as
// a generic "action not allowed" to end users while the detail goes to the
// operator log.
func handleWorkflowError(w http.ResponseWriter, r *http.Request, err error) {
	var transitionErr *workflow.InvalidTransitionError
	switch {
	case errors.Is(err, workflow.ErrActorInactive):
		writeError(w, r, http.StatusForbidden, "account not activated")
	case errors.Is(err, workflow.ErrPermissionDenied):
		writeError(w, r, http.StatusForbidden, "permission denied")
	case errors.Is(err, workflow.ErrDeadlinePassed):
		writeError(w, r, http.StatusConflict, "submission deadline has passed")
	case errors.As(err, &transitionErr):
		obs.LogRequest(map[string]any{
			"ts":    time.Now().UTC().Format(time.RFC3339Nano),
			"level": "warn",
			"msg":   "invalid transition requested",
			"from":  string(transitionErr.From),
			"to":    string(transitionErr.To),
			"path":  r.URL.Path,
		})
		writeError(w, r, http.StatusConflict, "action not allowed")
	case errors.Is(err, workflow.ErrConcurrentModification):
		writeError(w, r, http.StatusConflict, "application was modified concurrently; refetch and retry")
	case errors.Is(err, conference.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	case errors.Is(err, workflow.ErrCollaboratorUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "storage unavailable")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// workflowOutcome labels a transition result for metrics.
func workflowOutcome(err error) string {
	var transitionErr *workflow.InvalidTransitionError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, workflow.ErrActorInactive):
		return "actor_inactive"
	case errors.Is(err, workflow.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, workflow.ErrDeadlinePassed):
		return "deadline_passed"
	case errors.As(err, &transitionErr):
		return "invalid_transition"
	case errors.Is(err, workflow.ErrConcurrentModification):
		return "concurrent_modification"
	case errors.Is(err, workflow.ErrCollaboratorUnavailable):
		return "collaborator_unavailable"
	case errors.Is(err, conference.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
