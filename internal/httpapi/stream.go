package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"confero.org/internal/auth"
)

// StreamDecisions handles Server-Sent Events for committed review decisions.
// Restricted to roles with review or analytics capability; participants get
// their decisions through the application resource.
func (a *API) StreamDecisions(w http.ResponseWriter, r *http.Request) {
	if a.stream == nil {
		http.Error(w, "streaming disabled", http.StatusServiceUnavailable)
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !auth.HasCapability(actor.Role, auth.CapReviewApplications) &&
		!auth.HasCapability(actor.Role, auth.CapViewAnalytics) {
		writeError(w, r, http.StatusForbidden, "permission denied")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := a.stream.Subscribe(ctx)

	// Initial comment establishes the stream before the first decision.
	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	for event := range ch {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
	}
}
