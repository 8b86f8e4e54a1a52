package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/pawmatch/pawmatch/internal/core/domain"
	"github.com/pawmatch/pawmatch/internal/metrics"
)

// BreakerState is the circuit breaker's three-state machine.
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

var breakerStateGauge = map[BreakerState]float64{
	BreakerClosed:   0,
	BreakerHalfOpen: 1,
	BreakerOpen:     2,
}

// BreakerConfig parameterizes a circuit breaker.
type BreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive failures before opening
	ResetTimeout     time.Duration // cooldown before a half-open probe
	Clock            domain.Clock
}

// Breaker guards a failing dependency: after FailureThreshold consecutive
// failures it opens and fails fast, and after ResetTimeout it lets one probe
// call through. All state transitions are serialized by a mutex, so a single
// breaker may be shared across goroutines.
type Breaker struct {
	mu sync.Mutex

	name            string
	state           BreakerState
	failureCount    int
	threshold       int
	lastFailureTime time.Time
	resetTimeout    time.Duration
	clock           domain.Clock
}

// NewBreaker creates a breaker in the closed state.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = domain.SystemClock{}
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}

	b := &Breaker{
		name:         cfg.Name,
		state:        BreakerClosed,
		threshold:    cfg.FailureThreshold,
		resetTimeout: cfg.ResetTimeout,
		clock:        cfg.Clock,
	}
	metrics.BreakerState.WithLabelValues(b.name).Set(breakerStateGauge[BreakerClosed])
	return b
}

// State returns the current state without touching it.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// FailureCount returns the consecutive failure counter.
func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount
}

// Execute runs fn under the breaker. When open and still cooling down it
// fails fast with ErrCircuitOpen without invoking fn; after the cooldown a
// single half-open probe decides whether the circuit closes again. The
// original error is always rethrown on failure.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.beforeCall(); err != nil {
		return err
	}

	err := fn(ctx)
	b.afterCall(err)
	return err
}

func (b *Breaker) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != BreakerOpen {
		return nil
	}
	if b.clock.Now().Sub(b.lastFailureTime) >= b.resetTimeout {
		b.transition(BreakerHalfOpen)
		return nil
	}
	return domain.ErrCircuitOpen
}

func (b *Breaker) afterCall(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failureCount = 0
		if b.state != BreakerClosed {
			b.transition(BreakerClosed)
		}
		return
	}

	b.failureCount++
	b.lastFailureTime = b.clock.Now()
	if b.state == BreakerHalfOpen || b.failureCount >= b.threshold {
		if b.state != BreakerOpen {
			b.transition(BreakerOpen)
		}
	}
}

// transition must be called with the mutex held.
func (b *Breaker) transition(to BreakerState) {
	b.state = to
	metrics.BreakerState.WithLabelValues(b.name).Set(breakerStateGauge[to])
	metrics.BreakerTransitions.WithLabelValues(b.name, string(to)).Inc()
}
