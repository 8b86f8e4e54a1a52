package resilience

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// errBoom classifies as a network failure, so the default predicate retries it.
var errBoom = errors.New("dial tcp: connection refused")

// fastRetry keeps backoff delays negligible in tests.
func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		Multiplier:  2.0,
		MaxDelay:    5 * time.Millisecond,
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(3), func(ctx context.Context) error {
		calls++
		return errBoom
	})

	if calls != 3 {
		t.Errorf("op invoked %d times, want 3", calls)
	}
	if !errors.Is(err, errBoom) {
		t.Errorf("final error does not wrap the cause: %v", err)
	}
	if !strings.Contains(err.Error(), "failed after 3 attempts") {
		t.Errorf("final error missing attempt count: %v", err)
	}
}

func TestDoStopsOnSuccess(t *testing.T) {
	calls := 0
	got, err := DoValue(context.Background(), fastRetry(5), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errBoom
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("DoValue failed: %v", err)
	}
	if got != "ok" {
		t.Errorf("value = %q, want ok", got)
	}
	if calls != 3 {
		t.Errorf("op invoked %d times, want 3", calls)
	}
}

func TestDoRespectsShouldRetry(t *testing.T) {
	cfg := fastRetry(5)
	cfg.ShouldRetry = func(err error) bool { return false }

	calls := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return errBoom
	})

	if calls != 1 {
		t.Errorf("op invoked %d times, want 1", calls)
	}
	// Non-retryable errors come back unwrapped.
	if err != errBoom {
		t.Errorf("err = %v, want the original error", err)
	}
}

func TestDoDefaultPredicate(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{"validation errors are not replayed", errors.New("validation failed: name required"), 1},
		{"database errors are replayed", errors.New("postgres: deadlock detected"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(context.Background(), fastRetry(3), func(ctx context.Context) error {
				calls++
				return tt.err
			})

			if calls != tt.wantCalls {
				t.Errorf("op invoked %d times under the default predicate, want %d",
					calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v in the chain", err, tt.err)
			}
		})
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, fastRetry(5), func(ctx context.Context) error {
		calls++
		cancel()
		return errBoom
	})

	if calls != 1 {
		t.Errorf("op invoked %d times, want 1", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBackoffDelayCurve(t *testing.T) {
	cfg := RetryConfig{
		BaseDelay:  100 * time.Millisecond,
		Multiplier: 2.0,
		MaxDelay:   300 * time.Millisecond,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 300 * time.Millisecond}, // capped
		{4, 300 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := backoffDelay(tt.attempt, cfg); got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffDelayJitterBounds(t *testing.T) {
	cfg := RetryConfig{
		BaseDelay:  100 * time.Millisecond,
		Multiplier: 2.0,
		MaxDelay:   time.Second,
		Jitter:     0.5,
	}

	base := 100 * time.Millisecond
	lo := base - base/4
	hi := base + base/4
	for i := 0; i < 100; i++ {
		got := backoffDelay(1, cfg)
		if got < lo || got > hi {
			t.Fatalf("jittered delay %v outside [%v, %v]", got, lo, hi)
		}
	}
}
