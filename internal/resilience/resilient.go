package resilience

import "context"

// NewResilient composes a circuit breaker around a retried operation. The
// retry loop runs inside one breaker-guarded call, so an outage that
// exhausts every retry counts as a single failure toward the breaker; the
// retries succeed or fail as a unit.
func NewResilient(
	breaker *Breaker,
	cfg RetryConfig,
	fn func(context.Context) error,
) func(context.Context) error {
	return func(ctx context.Context) error {
		return breaker.Execute(ctx, func(ctx context.Context) error {
			return Do(ctx, cfg, fn)
		})
	}
}
