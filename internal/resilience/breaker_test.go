package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pawmatch/pawmatch/internal/core/domain"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBreaker(clock *fakeClock, threshold int) *Breaker {
	return NewBreaker(BreakerConfig{
		Name:             "test",
		FailureThreshold: threshold,
		ResetTimeout:     30 * time.Second,
		Clock:            clock,
	})
}

func failN(b *Breaker, n int) {
	for i := 0; i < n; i++ {
		_ = b.Execute(context.Background(), func(ctx context.Context) error {
			return errBoom
		})
	}
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 3)

	failN(b, 2)
	if b.State() != BreakerClosed {
		t.Fatalf("state after 2 failures = %s, want closed", b.State())
	}

	failN(b, 1)
	if b.State() != BreakerOpen {
		t.Fatalf("state after 3 failures = %s, want open", b.State())
	}
	if b.FailureCount() != 3 {
		t.Errorf("FailureCount = %d, want 3", b.FailureCount())
	}

	// While open, calls fail fast without reaching the operation.
	called := false
	err := b.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, domain.ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("operation was invoked while the breaker was open")
	}
}

func TestBreakerSuccessResetsCounter(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 3)

	failN(b, 2)
	if err := b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if b.FailureCount() != 0 {
		t.Errorf("FailureCount after success = %d, want 0", b.FailureCount())
	}
	if b.State() != BreakerClosed {
		t.Errorf("state = %s, want closed", b.State())
	}

	// The streak starts over, so two more failures stay under the threshold.
	failN(b, 2)
	if b.State() != BreakerClosed {
		t.Errorf("state after reset streak = %s, want closed", b.State())
	}
}

func TestBreakerHalfOpenProbeCloses(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 2)

	failN(b, 2)
	clock.Advance(30 * time.Second)

	called := false
	err := b.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if !called {
		t.Fatal("probe did not reach the operation")
	}
	if b.State() != BreakerClosed {
		t.Errorf("state after successful probe = %s, want closed", b.State())
	}
	if b.FailureCount() != 0 {
		t.Errorf("FailureCount = %d, want 0", b.FailureCount())
	}
}

func TestBreakerHalfOpenProbeReopens(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 2)

	failN(b, 2)
	clock.Advance(30 * time.Second)
	failN(b, 1)

	if b.State() != BreakerOpen {
		t.Fatalf("state after failed probe = %s, want open", b.State())
	}

	// The cooldown restarted at the probe failure.
	err := b.Execute(context.Background(), func(ctx context.Context) error { return nil })
	if !errors.Is(err, domain.ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerCooldownGate(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 1)

	failN(b, 1)

	clock.Advance(29 * time.Second)
	err := b.Execute(context.Background(), func(ctx context.Context) error { return nil })
	if !errors.Is(err, domain.ErrCircuitOpen) {
		t.Fatalf("call inside cooldown: got %v, want ErrCircuitOpen", err)
	}

	clock.Advance(time.Second)
	if err := b.Execute(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Errorf("call at cooldown boundary failed: %v", err)
	}
}

func TestResilientRetriesCountOnce(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 2)

	calls := 0
	op := NewResilient(b, fastRetry(3), func(ctx context.Context) error {
		calls++
		return errBoom
	})

	// One resilient call runs the whole retry budget but registers a single
	// breaker failure.
	if err := op(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want wrapped errBoom", err)
	}
	if calls != 3 {
		t.Errorf("op invoked %d times, want 3", calls)
	}
	if b.FailureCount() != 1 {
		t.Errorf("FailureCount = %d, want 1", b.FailureCount())
	}
	if b.State() != BreakerClosed {
		t.Errorf("state = %s, want closed", b.State())
	}

	// A second exhausted unit trips the threshold.
	_ = op(context.Background())
	if calls != 6 {
		t.Errorf("op invoked %d times, want 6", calls)
	}
	if b.State() != BreakerOpen {
		t.Fatalf("state = %s, want open", b.State())
	}

	// Open circuit short-circuits before any retry happens.
	if err := op(context.Background()); !errors.Is(err, domain.ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if calls != 6 {
		t.Errorf("op invoked %d times after fast-fail, want 6", calls)
	}
}
