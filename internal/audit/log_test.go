package audit

import (
	"context"
	"testing"

	"confero.org/internal/auth"
)

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
}

func TestLogEventWithContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = auth.ContextWithActor(ctx, auth.Actor{ID: "actor-1", Role: auth.RoleOrganizer})

	if err := LogEvent(ctx, "conference.created", map[string]any{"conference_id": "conf-1"}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
}

func TestWithRequestIDIgnoresBlank(t *testing.T) {
	ctx := WithRequestID(context.Background(), "   ")
	if rid := requestIDFromContext(ctx); rid != "" {
		t.Fatalf("expected no request id, got %q", rid)
	}
	ctx = WithRequestID(context.Background(), "req-2")
	if rid := requestIDFromContext(ctx); rid != "req-2" {
		t.Fatalf("unexpected request id: %q", rid)
	}
}
