package faults

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManagerHandle(t *testing.T) {
	var seen []FormattedError
	m := NewManager(nil, nil, quietLogger(), func(fe FormattedError) {
		seen = append(seen, fe)
	})

	fe := m.Handle(errors.New("validation failed: name required"), "suggestion", Metadata{})

	if fe.Type != TypeValidation {
		t.Errorf("Type = %s, want validation", fe.Type)
	}
	if fe.Severity != SeverityLow {
		t.Errorf("Severity = %s, want low", fe.Severity)
	}
	if len(seen) != 1 {
		t.Fatalf("sink called %d times, want 1", len(seen))
	}
	if seen[0].ID != fe.ID {
		t.Error("sink received a different error record")
	}
}

func TestManagerHandleTotality(t *testing.T) {
	m := NewManager(nil, nil, quietLogger())

	for _, raw := range []any{nil, "plain string", 99, errors.New("boom"), map[string]any{"status": 503}} {
		fe := m.Handle(raw, "vote", Metadata{})
		if fe.ID == "" || fe.UserMessage == "" {
			t.Errorf("Handle(%v) produced an incomplete record: %+v", raw, fe)
		}
	}
}

func TestManagerIsRetryable(t *testing.T) {
	m := NewManager(nil, nil, quietLogger())

	tests := []struct {
		raw  any
		want bool
	}{
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("postgres: deadlock detected"), true},
		{errors.New("validation failed: bad input"), false},
		{map[string]any{"message": "JWT expired", "code": "PGRST301"}, false},
	}

	for _, tt := range tests {
		if got := m.IsRetryable(tt.raw); got != tt.want {
			t.Errorf("IsRetryable(%v) = %t, want %t", tt.raw, got, tt.want)
		}
	}
}
