package faults

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pawmatch/pawmatch/internal/core/domain"
)

// Severity grades user impact independently of the error type.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Metadata carries call-site knowledge about the failing operation.
type Metadata struct {
	IsCritical      bool           `json:"is_critical,omitempty"`
	AffectsUserData bool           `json:"affects_user_data,omitempty"`
	IsRetryable     *bool          `json:"is_retryable,omitempty"`
	Request         map[string]any `json:"request,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// FormattedError is the complete, loggable form of a handled error.
// UserMessage is always a presentable sentence; Stack and Diagnostics are
// reserved for logs.
type FormattedError struct {
	ID          string      `json:"id"`
	Message     string      `json:"message"`
	UserMessage string      `json:"user_message"`
	Context     string      `json:"context"`
	Type        ErrType     `json:"type"`
	Severity    Severity    `json:"severity"`
	IsRetryable bool        `json:"is_retryable"`
	Timestamp   time.Time   `json:"timestamp"`
	Metadata    Metadata    `json:"metadata"`
	Diagnostics Diagnostics `json:"diagnostics"`
	AIContext   string      `json:"ai_context"`
	Stack       string      `json:"stack,omitempty"`
}

// Formatter derives severity, user messaging, and retryability from parsed
// errors.
type Formatter struct {
	env   Env
	clock domain.Clock
}

// NewFormatter creates a formatter. Nil env defaults to always-online; nil
// clock defaults to the system clock.
func NewFormatter(env Env, clock domain.Clock) *Formatter {
	if env == nil {
		env = StaticEnv{IsOnline: true}
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Formatter{env: env, clock: clock}
}

// Format assembles a FormattedError. Like classification it never fails;
// unrecognized shapes degrade to the unknown/medium bucket.
func (f *Formatter) Format(p ParsedError, context string, md Metadata) FormattedError {
	if p.Type == "" {
		p.Type = TypeUnknown
	}

	severity := severityFor(p.Type, md)
	diag := buildDiagnostics(p, context, md, f.env)

	fe := FormattedError{
		ID:          uuid.NewString(),
		Message:     p.Message,
		UserMessage: f.userMessage(p.Type, severity, context),
		Context:     context,
		Type:        p.Type,
		Severity:    severity,
		IsRetryable: retryableFor(p.Type, md),
		Timestamp:   f.clock.Now(),
		Metadata:    md,
		Diagnostics: diag,
		Stack:       p.Stack,
	}
	fe.AIContext = aiContext(fe)
	return fe
}

// severityFor applies the precedence chain: explicit critical flag, user-data
// impact, then type defaults.
func severityFor(t ErrType, md Metadata) Severity {
	if md.IsCritical {
		return SeverityCritical
	}
	if md.AffectsUserData {
		return SeverityHigh
	}
	switch t {
	case TypeAuth:
		return SeverityHigh
	case TypeValidation:
		return SeverityLow
	case TypeDatabase, TypeNetwork, TypeRuntime:
		return SeverityMedium
	default:
		return SeverityMedium
	}
}

var defaultClassifier = NewClassifier(nil)

// Retryable classifies err with the default environment and reports whether
// retrying could help. Retry loops use this as their fallback predicate so
// auth and validation failures are never replayed by default.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	parsed := defaultClassifier.Classify(err)
	return retryableFor(parsed.Type, Metadata{})
}

// retryableFor decides whether the UI may offer a "try again" affordance.
// An explicit metadata override always wins.
func retryableFor(t ErrType, md Metadata) bool {
	if md.IsRetryable != nil {
		return *md.IsRetryable
	}
	switch t {
	case TypeNetwork, TypeDatabase:
		return true
	default:
		return false
	}
}

// userMessages is the type-to-message table, specialized where severity
// changes what the user should do next.
var userMessages = map[ErrType]map[Severity]string{
	TypeNetwork: {
		SeverityCritical: "We can't reach the server right now. Please try again shortly.",
		SeverityHigh:     "We can't reach the server right now. Please try again shortly.",
		SeverityMedium:   "A network hiccup interrupted that request. Please try again.",
		SeverityLow:      "A network hiccup interrupted that request. Please try again.",
	},
	TypeAuth: {
		SeverityCritical: "Your session has expired. Please log in again.",
		SeverityHigh:     "Your session has expired. Please log in again.",
		SeverityMedium:   "We couldn't verify your session. Please log in again.",
		SeverityLow:      "We couldn't verify your session. Please log in again.",
	},
	TypeValidation: {
		SeverityCritical: "Some of that input doesn't look right. Please check it and try again.",
		SeverityHigh:     "Some of that input doesn't look right. Please check it and try again.",
		SeverityMedium:   "Some of that input doesn't look right. Please check it and try again.",
		SeverityLow:      "Some of that input doesn't look right. Please check it and try again.",
	},
	TypeDatabase: {
		SeverityCritical: "We're having trouble saving your data. Please try again in a moment.",
		SeverityHigh:     "We're having trouble saving your data. Please try again in a moment.",
		SeverityMedium:   "We're having trouble loading your data. Please try again in a moment.",
		SeverityLow:      "We're having trouble loading your data. Please try again in a moment.",
	},
	TypeRuntime: {
		SeverityCritical: "Something went wrong on our side. Please refresh and try again.",
		SeverityHigh:     "Something went wrong on our side. Please refresh and try again.",
		SeverityMedium:   "Something went wrong on our side. Please refresh and try again.",
		SeverityLow:      "Something went wrong on our side. Please refresh and try again.",
	},
	TypeUnknown: {
		SeverityCritical: "Something unexpected happened. Please try again.",
		SeverityHigh:     "Something unexpected happened. Please try again.",
		SeverityMedium:   "Something unexpected happened. Please try again.",
		SeverityLow:      "Something unexpected happened. Please try again.",
	},
}

const offlineMessage = "You appear to be offline. Check your connection and try again."

// contextNames maps call-site context tags to user-facing prefixes.
var contextNames = map[string]string{
	"tournament_start": "While starting your tournament",
	"tournament":       "While loading your tournament",
	"vote":             "While recording your vote",
	"undo":             "While undoing your vote",
	"names":            "While loading the name pool",
	"suggestion":       "While submitting your suggestion",
	"leaderboard":      "While loading the leaderboard",
	"admin":            "While applying moderation changes",
}

func (f *Formatter) userMessage(t ErrType, severity Severity, context string) string {
	if t == TypeNetwork && !f.env.Online() {
		return offlineMessage
	}

	msg := userMessages[TypeUnknown][SeverityMedium]
	if bySeverity, ok := userMessages[t]; ok {
		if m, ok := bySeverity[severity]; ok {
			msg = m
		}
	}

	if prefix, ok := contextNames[context]; ok {
		return fmt.Sprintf("%s: %s", prefix, strings.ToLower(msg[:1])+msg[1:])
	}
	return msg
}

// aiContext renders a newline-joined summary suitable for log search and
// LLM-assisted triage.
func aiContext(fe FormattedError) string {
	lines := []string{
		fmt.Sprintf("error id: %s", fe.ID),
		fmt.Sprintf("type: %s", fe.Type),
		fmt.Sprintf("severity: %s", fe.Severity),
		fmt.Sprintf("context: %s", fe.Context),
		fmt.Sprintf("message: %s", fe.Message),
		fmt.Sprintf("fingerprint: %s", fe.Diagnostics.Fingerprint),
		fmt.Sprintf("retryable: %t", fe.IsRetryable),
	}
	if fe.Diagnostics.Location != "" {
		lines = append(lines, fmt.Sprintf("location: %s", fe.Diagnostics.Location))
	}
	for _, h := range fe.Diagnostics.Hints {
		lines = append(lines, "hint: "+h)
	}
	return strings.Join(lines, "\n")
}
