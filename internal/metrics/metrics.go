package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TournamentsStarted counts tournament sessions created.
	TournamentsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pawmatch_tournaments_started_total",
			Help: "Total number of tournament sessions started",
		},
	)

	// TournamentsCompleted counts sessions that resolved every match.
	TournamentsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pawmatch_tournaments_completed_total",
			Help: "Total number of tournament sessions completed",
		},
	)

	// VotesTotal counts resolved votes by option.
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmatch_votes_total",
			Help: "Total number of votes by option",
		},
		[]string{"option"},
	)

	// UndosTotal counts undo attempts by result.
	UndosTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmatch_undos_total",
			Help: "Total number of undo attempts by result",
		},
		[]string{"result"},
	)

	// VoteLatency tracks end-to-end vote handling latency.
	VoteLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pawmatch_vote_latency_seconds",
			Help:    "Vote handling latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ErrorsTotal counts handled errors by type and severity.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmatch_errors_total",
			Help: "Total number of handled errors",
		},
		[]string{"type", "severity"},
	)

	// RetryAttempts counts retry attempts by outcome.
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmatch_retry_attempts_total",
			Help: "Total number of retry attempts",
		},
		[]string{"outcome"},
	)

	// BreakerState exposes circuit breaker state per breaker
	// (0=closed, 1=half-open, 2=open).
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pawmatch_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// BreakerTransitions counts breaker state transitions.
	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmatch_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "to"},
	)

	// DBConnectionPoolUsage tracks database pool utilization percentage.
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pawmatch_db_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
