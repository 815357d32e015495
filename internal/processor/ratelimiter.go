package processor

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/ravenstack/ticket-classifier/internal/logger"
)

const defaultQueriesPerSecond = 10

// RateLimiter bounds the rate of repository operations issued by the
// poller so a large backlog cannot saturate the ticket store.
type RateLimiter struct {
	limiter *rate.Limiter
	log     logger.Logger
}

// NewRateLimiter creates a limiter allowing qps operations per second
// with the given burst. Non-positive values fall back to defaults.
func NewRateLimiter(qps, burst int, log logger.Logger) *RateLimiter {
	if qps <= 0 {
		qps = defaultQueriesPerSecond
	}
	if burst <= 0 {
		burst = qps
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(qps), burst),
		log:     log,
	}
}

// Wait blocks until the limiter allows another operation or the context
// is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		r.log.Warn("rate limiter wait failed", logger.Error(err))
		return err
	}
	return nil
}

// Allow reports whether an operation may proceed without waiting.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}
