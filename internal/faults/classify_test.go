package faults

import (
	"errors"
	"fmt"
	"testing"
)

// codedErr mimics an upstream client error carrying a code and status.
type codedErr struct {
	msg    string
	code   string
	status int
	cause  error
}

func (e *codedErr) Error() string { return e.msg }
func (e *codedErr) Code() string  { return e.code }
func (e *codedErr) Status() int   { return e.status }
func (e *codedErr) Unwrap() error { return e.cause }

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		online bool
		want   ErrType
	}{
		{
			name:   "offline forces network regardless of shape",
			raw:    errors.New("validation failed: name required"),
			online: false,
			want:   TypeNetwork,
		},
		{
			name:   "auth code beats network message",
			raw:    map[string]any{"message": "network timeout", "code": "PGRST301"},
			online: true,
			want:   TypeAuth,
		},
		{
			name:   "expired token code",
			raw:    map[string]any{"message": "JWT expired", "code": "PGRST302"},
			online: true,
			want:   TypeAuth,
		},
		{
			name:   "not-found rest code is validation",
			raw:    map[string]any{"message": "row not found", "code": "PGRST116"},
			online: true,
			want:   TypeValidation,
		},
		{
			name:   "connection refused message",
			raw:    errors.New("dial tcp 10.0.0.1:5432: connection refused"),
			online: true,
			want:   TypeNetwork,
		},
		{
			name:   "server status is a network signature",
			raw:    map[string]any{"message": "bad gateway", "status": 502},
			online: true,
			want:   TypeNetwork,
		},
		{
			name:   "network error code without status",
			raw:    map[string]any{"message": "request failed", "code": "ECONNREFUSED"},
			online: true,
			want:   TypeNetwork,
		},
		{
			name:   "database keyword in message",
			raw:    errors.New("postgres: unique constraint violation"),
			online: true,
			want:   TypeDatabase,
		},
		{
			name:   "runtime error name",
			raw:    map[string]any{"name": "TypeError", "message": "x is not a function"},
			online: true,
			want:   TypeRuntime,
		},
		{
			name:   "validation keyword in message",
			raw:    errors.New("validation failed: name required"),
			online: true,
			want:   TypeValidation,
		},
		{
			name:   "explicit validation code",
			raw:    map[string]any{"message": "bad payload", "code": "VALIDATION_ERROR"},
			online: true,
			want:   TypeValidation,
		},
		{
			name:   "unrecognized error",
			raw:    errors.New("something odd happened"),
			online: true,
			want:   TypeUnknown,
		},
		{
			name:   "nil input",
			raw:    nil,
			online: true,
			want:   TypeUnknown,
		},
		{
			name:   "arbitrary value",
			raw:    42,
			online: true,
			want:   TypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(StaticEnv{IsOnline: tt.online})
			if got := c.Classify(tt.raw); got.Type != tt.want {
				t.Errorf("Classify(%v).Type = %s, want %s", tt.raw, got.Type, tt.want)
			}
		})
	}
}

func TestClassifyNeverEmpty(t *testing.T) {
	c := NewClassifier(nil)

	for _, raw := range []any{nil, "", 3.14, struct{}{}, map[string]any{}} {
		p := c.Classify(raw)
		if p.Message == "" {
			t.Errorf("Classify(%v) produced an empty message", raw)
		}
		if p.Type == "" {
			t.Errorf("Classify(%v) produced an empty type", raw)
		}
	}
}

func TestClassifyCodedError(t *testing.T) {
	cause := errors.New("socket closed")
	err := fmt.Errorf("fetching names: %w", &codedErr{
		msg:    "upstream rejected the request",
		code:   "PGRST301",
		status: 401,
		cause:  cause,
	})

	p := NewClassifier(nil).Classify(err)

	if p.Code != "PGRST301" {
		t.Errorf("Code = %s, want PGRST301", p.Code)
	}
	if p.Status != 401 {
		t.Errorf("Status = %d, want 401", p.Status)
	}
	if p.Type != TypeAuth {
		t.Errorf("Type = %s, want auth", p.Type)
	}
	if p.Cause == nil {
		t.Error("Cause was not captured from the wrapped chain")
	}
}

func TestClassifyRecordFields(t *testing.T) {
	p := NewClassifier(nil).Classify(map[string]any{
		"name":    "FetchError",
		"message": "request timed out",
		"code":    500.0, // JSON numbers decode as float64
		"status":  503.0,
		"stack":   "goroutine 1 [running]:",
	})

	if p.Name != "FetchError" {
		t.Errorf("Name = %s, want FetchError", p.Name)
	}
	if p.Code != "500" {
		t.Errorf("Code = %s, want 500", p.Code)
	}
	if p.Status != 503 {
		t.Errorf("Status = %d, want 503", p.Status)
	}
	if p.Stack == "" {
		t.Error("Stack was dropped")
	}
	if p.Type != TypeNetwork {
		t.Errorf("Type = %s, want network", p.Type)
	}
}
