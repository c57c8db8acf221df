package resilience

import (
	"context"
	"time"

	"github.com/sells-group/mifid-advisor/internal/config"
)

// Guard combines a retry policy with a circuit breaker. Retries run inside
// the breaker, so one exhausted retry sequence counts as one failure.
type Guard struct {
	Retry   RetryConfig
	Breaker *Breaker
}

// NewGuard builds the guard for the named upstream from configuration.
// Zero values fall back to the package defaults.
func NewGuard(name string, cfg config.RetryConfig) *Guard {
	retry := DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialBackoffMs > 0 {
		retry.InitialBackoff = time.Duration(cfg.InitialBackoffMs) * time.Millisecond
	}
	if cfg.MaxBackoffMs > 0 {
		retry.MaxBackoff = time.Duration(cfg.MaxBackoffMs) * time.Millisecond
	}
	retry.OnRetry = RetryLogger(name, "create_message")

	return &Guard{
		Retry: retry,
		Breaker: NewBreaker(BreakerConfig{
			Name:             name,
			FailureThreshold: cfg.BreakerThreshold,
			ResetTimeout:     time.Duration(cfg.BreakerResetSecs) * time.Second,
			ShouldTrip:       IsTransient,
		}),
	}
}

// Call runs fn through g's breaker and retry policy. A nil guard calls fn
// once.
func Call[T any](ctx context.Context, g *Guard, fn func(ctx context.Context) (T, error)) (T, error) {
	if g == nil {
		return fn(ctx)
	}
	return ExecuteVal(ctx, g.Breaker, func(ctx context.Context) (T, error) {
		return DoVal(ctx, g.Retry, fn)
	})
}
