package faults

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrType is the error taxonomy used across the app.
type ErrType string

const (
	TypeNetwork    ErrType = "network"
	TypeValidation ErrType = "validation"
	TypeAuth       ErrType = "auth"
	TypeDatabase   ErrType = "database"
	TypeRuntime    ErrType = "runtime"
	TypeUnknown    ErrType = "unknown"
)

// ParsedError is the normalized form of an arbitrary raw error value.
// Downstream code matches on Type instead of re-probing the raw shape.
type ParsedError struct {
	Type    ErrType `json:"type"`
	Name    string  `json:"name"`
	Message string  `json:"message"`
	Stack   string  `json:"stack,omitempty"`
	Cause   error   `json:"-"`
	Code    string  `json:"code,omitempty"`
	Status  int     `json:"status,omitempty"`
}

// Env exposes ambient host state the classifier consults. Injected so tests
// can simulate offline conditions.
type Env interface {
	Online() bool
}

// StaticEnv is a fixed Env, the default for server processes.
type StaticEnv struct {
	IsOnline bool
}

func (e StaticEnv) Online() bool { return e.IsOnline }

// Coder is implemented by errors carrying a machine-readable code.
type Coder interface {
	Code() string
}

// StatusCarrier is implemented by errors carrying an HTTP-ish status.
type StatusCarrier interface {
	Status() int
}

// Classifier turns raw error values into ParsedError records.
type Classifier struct {
	env Env
}

// NewClassifier creates a classifier. A nil env is treated as always online.
func NewClassifier(env Env) *Classifier {
	if env == nil {
		env = StaticEnv{IsOnline: true}
	}
	return &Classifier{env: env}
}

// Classify normalizes any raw value into a ParsedError. It is total: every
// input maps to some record, and it never panics.
func (c *Classifier) Classify(raw any) ParsedError {
	var p ParsedError

	switch v := raw.(type) {
	case nil:
		p = ParsedError{Name: "UnknownError", Message: "an unexpected error occurred"}
	case error:
		p = parseErr(v)
	case string:
		p = ParsedError{Name: "Error", Message: v}
	case map[string]any:
		p = parseRecord(v)
	default:
		p = ParsedError{Name: "UnknownError", Message: fmt.Sprintf("unexpected error: %v", v)}
	}

	p.Type = c.inferType(p)
	return p
}

func parseErr(err error) ParsedError {
	p := ParsedError{
		Name:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Cause:   errors.Unwrap(err),
	}

	var coder Coder
	if errors.As(err, &coder) {
		p.Code = coder.Code()
	}
	var sc StatusCarrier
	if errors.As(err, &sc) {
		p.Status = sc.Status()
	}

	var rt runtime.Error
	if errors.As(err, &rt) {
		p.Name = "RuntimeError"
	}

	return p
}

// parseRecord duck-types a loosely structured error record, the shape
// produced when decoding error payloads from external services.
func parseRecord(rec map[string]any) ParsedError {
	p := ParsedError{Name: "Error"}

	if s, ok := rec["message"].(string); ok && s != "" {
		p.Message = s
	} else if s, ok := rec["error"].(string); ok && s != "" {
		p.Message = s
	} else {
		p.Message = "an unexpected error occurred"
	}

	if s, ok := rec["name"].(string); ok && s != "" {
		p.Name = s
	}
	if s, ok := rec["stack"].(string); ok {
		p.Stack = s
	}
	switch code := rec["code"].(type) {
	case string:
		p.Code = code
	case int:
		p.Code = fmt.Sprintf("%d", code)
	case float64:
		p.Code = fmt.Sprintf("%d", int(code))
	}
	switch status := rec["status"].(type) {
	case int:
		p.Status = status
	case float64:
		p.Status = int(status)
	}
	if cause, ok := rec["cause"].(error); ok {
		p.Cause = cause
	}

	return p
}

// Auth and validation codes surfaced by the backing REST layer.
var (
	authCodes       = map[string]bool{"PGRST301": true, "PGRST302": true}
	validationCodes = map[string]bool{"PGRST116": true, "PGRST117": true}
)

var networkKeywords = []string{
	"fetch", "network", "timeout", "timed out",
	"connection refused", "connection reset", "no such host", "dial tcp",
}

var databaseKeywords = []string{"database", "supabase", "postgres"}

// inferType applies the classification precedence, first match wins:
// offline, auth codes, validation codes, network signatures, database
// keywords, runtime error names, validation keywords, unknown.
func (c *Classifier) inferType(p ParsedError) ErrType {
	if !c.env.Online() {
		return TypeNetwork
	}
	if authCodes[p.Code] {
		return TypeAuth
	}
	if validationCodes[p.Code] {
		return TypeValidation
	}
	if isNetworkSignature(p) {
		return TypeNetwork
	}

	msg := strings.ToLower(p.Message)
	for _, kw := range databaseKeywords {
		if strings.Contains(msg, kw) {
			return TypeDatabase
		}
	}

	switch p.Name {
	case "RuntimeError", "TypeError", "ReferenceError":
		return TypeRuntime
	}

	if p.Code == "VALIDATION_ERROR" || strings.Contains(msg, "validation") {
		return TypeValidation
	}

	return TypeUnknown
}

func isNetworkSignature(p ParsedError) bool {
	if p.Status == 0 && p.Code != "" {
		switch p.Code {
		case "ECONNREFUSED", "ETIMEDOUT", "ENETUNREACH", "NETWORK_ERROR":
			return true
		}
	}
	if p.Status >= 500 {
		return true
	}

	msg := strings.ToLower(p.Message)
	for _, kw := range networkKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}
