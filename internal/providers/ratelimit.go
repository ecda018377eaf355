package providers

import (
	"context"
	"sync"
	"time"
)

const defaultRequestsPerMinute = 120

// RateLimiter is a token-bucket limiter keyed to a requests-per-minute
// budget. One limiter guards one upstream endpoint.
type RateLimiter struct {
	mu sync.Mutex

	limit  int // tokens per minute, also the bucket cap
	tokens float64
	last   time.Time

	consumed    int64
	waited      time.Duration
	lastBackoff time.Time
}

// Status is a point-in-time snapshot of the limiter.
type Status struct {
	TokensAvailable int           `json:"tokens_available"`
	TokensLimit     int           `json:"tokens_limit"`
	TotalConsumed   int64         `json:"total_consumed"`
	TotalWaited     time.Duration `json:"total_waited"`
	LastBackoff     time.Time     `json:"last_backoff,omitempty"`
}

// NewRateLimiter creates a limiter allowing requestsPerMinute requests.
// Non-positive values fall back to the default budget.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultRequestsPerMinute
	}
	return &RateLimiter{
		limit:  requestsPerMinute,
		tokens: float64(requestsPerMinute),
		last:   time.Now(),
	}
}

// Wait blocks until a token is available or the context ends.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens >= 1 {
			r.tokens--
			r.consumed++
			r.mu.Unlock()
			return nil
		}
		wait := r.durationUntilToken()
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			r.mu.Lock()
			r.waited += wait
			r.mu.Unlock()
		}
	}
}

// TryConsume takes a token if one is available without blocking.
func (r *RateLimiter) TryConsume() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		r.consumed++
		return true
	}
	return false
}

// Record429 notes an upstream rate-limit response and drains the bucket so
// subsequent calls back off for a full refill interval.
func (r *RateLimiter) Record429(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastBackoff = time.Now()
	r.tokens = 0
	if retryAfter > 0 {
		// Push the refill origin forward so the bucket stays empty until
		// the server-requested delay has passed.
		r.last = time.Now().Add(retryAfter)
	}
}

// Snapshot returns current limiter state.
func (r *RateLimiter) Snapshot() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	return Status{
		TokensAvailable: int(r.tokens),
		TokensLimit:     r.limit,
		TotalConsumed:   r.consumed,
		TotalWaited:     r.waited,
		LastBackoff:     r.lastBackoff,
	}
}

// refill adds tokens for elapsed time. Callers hold the lock.
func (r *RateLimiter) refill() {
	now := time.Now()
	if now.Before(r.last) {
		return // refill origin pushed into the future by Record429
	}
	elapsed := now.Sub(r.last).Seconds()
	r.last = now

	r.tokens += elapsed * float64(r.limit) / 60.0
	if r.tokens > float64(r.limit) {
		r.tokens = float64(r.limit)
	}
}

// durationUntilToken estimates the wait for the next token. Callers hold the
// lock.
func (r *RateLimiter) durationUntilToken() time.Duration {
	missing := 1 - r.tokens
	perSecond := float64(r.limit) / 60.0
	d := time.Duration(missing / perSecond * float64(time.Second))
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}
