package scrape

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/orgscout/orgscout/internal/constants"
)

// RateLimiter enforces a minimum spacing between outbound requests.
//
// A bounded random jitter is applied on top of the spacing so repeated
// runs against the same host don't fall into a synchronized rhythm.
// Collection is sequential, so a single pending waiter is all that is
// ever needed.
type RateLimiter struct {
	mu      sync.Mutex
	last    time.Time
	delay   time.Duration
	jitter  time.Duration
	sleepFn func(context.Context, time.Duration) error
}

// NewRateLimiter creates a rate limiter with the given minimum delay and
// jitter bound. Non-positive values fall back to the defaults.
func NewRateLimiter(delay, jitter time.Duration) *RateLimiter {
	if delay <= 0 {
		delay = constants.DefaultRequestDelay
	}
	if jitter < 0 {
		jitter = constants.DefaultRequestJitter
	}
	return &RateLimiter{
		delay:   delay,
		jitter:  jitter,
		sleepFn: sleepCtx,
	}
}

// WaitForNext blocks until at least the configured delay has elapsed
// since the end of the previous call, plus or minus the jitter bound.
// It returns early with the context's error if ctx is done.
func (r *RateLimiter) WaitForNext(ctx context.Context) error {
	r.mu.Lock()
	delay := r.delay
	jitter := r.jitter
	last := r.last
	r.mu.Unlock()

	remaining := delay - time.Since(last)
	if remaining > 0 {
		if jitter > 0 {
			remaining += time.Duration(rand.Int63n(int64(2*jitter))) - jitter
		}
		if remaining > 0 {
			if err := r.sleepFn(ctx, remaining); err != nil {
				return err
			}
		}
	}

	r.mu.Lock()
	r.last = time.Now()
	r.mu.Unlock()
	return nil
}

// SetDelay reconfigures the minimum delay. The change applies from the
// next WaitForNext call.
func (r *RateLimiter) SetDelay(delay time.Duration) {
	r.mu.Lock()
	r.delay = delay
	r.mu.Unlock()
}

// sleepCtx sleeps for d, returning the context error if ctx is
// cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
