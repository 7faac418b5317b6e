package market

import (
	"context"

	"golang.org/x/time/rate"
)

// RequestLimiter throttles outbound calls to the upstream market
// service to a fixed requests-per-second budget, independent of the
// circuit breaker (which tracks failure rate, not volume).
type RequestLimiter struct {
	limiter *rate.Limiter
}

// NewRequestLimiter builds a limiter allowing requestsPerSecond steady
// state with a burst of one -- the adapter issues requests one at a
// time, never in bulk.
func NewRequestLimiter(requestsPerSecond float64) *RequestLimiter {
	return &RequestLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1)}
}

// Wait blocks until a request token is available or ctx is canceled.
func (l *RequestLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
