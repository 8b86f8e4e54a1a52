package resilience

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/pawmatch/pawmatch/internal/faults"
	"github.com/pawmatch/pawmatch/internal/metrics"
)

// RetryConfig defines exponential-backoff retry behavior.
type RetryConfig struct {
	MaxAttempts int           // total attempts including the first
	BaseDelay   time.Duration // delay before the second attempt
	Multiplier  float64       // backoff growth factor
	Jitter      float64       // fraction of the delay perturbed (+/- jitter*delay/2)
	MaxDelay    time.Duration // backoff ceiling
	ShouldRetry func(error) bool
}

// DefaultRetryConfig provides sensible defaults. ShouldRetry is nil, which
// selects faults.Retryable: only errors classified as transient (network,
// database) are replayed. Callers with a fault manager plug in its judgment.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	Multiplier:  2.0,
	Jitter:      0.1,
	MaxDelay:    10 * time.Second,
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultRetryConfig.MaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultRetryConfig.BaseDelay
	}
	if c.Multiplier <= 0 {
		c.Multiplier = DefaultRetryConfig.Multiplier
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultRetryConfig.MaxDelay
	}
	if c.ShouldRetry == nil {
		c.ShouldRetry = faults.Retryable
	}
	return c
}

// Do runs op with exponential backoff, retrying until the attempt budget is
// exhausted or ShouldRetry rejects the error. The last error is returned
// wrapped with the attempt count.
func Do(ctx context.Context, cfg RetryConfig, op func(context.Context) error) error {
	_, err := DoValue(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](
	ctx context.Context,
	cfg RetryConfig,
	op func(context.Context) (T, error),
) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			metrics.RetryAttempts.WithLabelValues("success").Inc()
			return result, nil
		}

		lastErr = err
		metrics.RetryAttempts.WithLabelValues("failure").Inc()

		if !cfg.ShouldRetry(err) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoffDelay(attempt, cfg)):
		}
	}

	return zero, fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// backoffDelay computes the delay before attempt+1, with uniform jitter of
// +/- Jitter*delay/2 around the exponential curve.
func backoffDelay(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter > 0 {
		spread := cfg.Jitter * delay
		delay += spread*rand.Float64() - spread/2
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
