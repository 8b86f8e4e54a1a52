package faults

import (
	"log/slog"

	"github.com/pawmatch/pawmatch/internal/core/domain"
	"github.com/pawmatch/pawmatch/internal/metrics"
)

// Sink receives every formatted error, e.g. an external error tracker.
type Sink func(fe FormattedError)

// Manager is the single entry point call sites use to handle a caught error:
// classify, format, log, count, and fan out to sinks. Handle never panics;
// anything unrecognizable lands in the unknown bucket.
type Manager struct {
	classifier *Classifier
	formatter  *Formatter
	log        *slog.Logger
	sinks      []Sink
}

// NewManager wires a manager. Nil env/clock/logger select process defaults.
func NewManager(env Env, clock domain.Clock, log *slog.Logger, sinks ...Sink) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		classifier: NewClassifier(env),
		formatter:  NewFormatter(env, clock),
		log:        log,
		sinks:      sinks,
	}
}

// Handle processes one raw error from the given call-site context.
func (m *Manager) Handle(raw any, context string, md Metadata) FormattedError {
	parsed := m.classifier.Classify(raw)
	fe := m.formatter.Format(parsed, context, md)

	metrics.ErrorsTotal.WithLabelValues(string(fe.Type), string(fe.Severity)).Inc()

	attrs := []any{
		"id", fe.ID,
		"type", fe.Type,
		"context", fe.Context,
		"fingerprint", fe.Diagnostics.Fingerprint,
		"retryable", fe.IsRetryable,
	}
	switch fe.Severity {
	case SeverityCritical, SeverityHigh:
		m.log.Error(fe.Message, attrs...)
	case SeverityMedium:
		m.log.Warn(fe.Message, attrs...)
	default:
		m.log.Info(fe.Message, attrs...)
	}

	for _, sink := range m.sinks {
		sink(fe)
	}

	return fe
}

// IsRetryable classifies a raw error and reports the formatter's default
// retry judgment. Used as the shared retry predicate so policy stays
// consistent across call sites.
func (m *Manager) IsRetryable(raw any) bool {
	parsed := m.classifier.Classify(raw)
	return retryableFor(parsed.Type, Metadata{})
}
