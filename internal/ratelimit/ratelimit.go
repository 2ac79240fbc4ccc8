// Package ratelimit paces outbound scrapes. Delays between competitor
// lookups are deliberate courtesy toward the target platforms.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

type RateLimiter interface {
	Wait(ctx context.Context) error
}

// JitteredLimiter enforces a randomized delay between minDelay and maxDelay
// since the previous action. The jitter source is injectable so tests can
// pin the schedule.
type JitteredLimiter struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	lastAction time.Time
	rng        *rand.Rand
	mu         sync.Mutex
}

func NewJitteredLimiter(minDelay, maxDelay time.Duration, rng *rand.Rand) *JitteredLimiter {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &JitteredLimiter{
		minDelay: minDelay,
		maxDelay: maxDelay,
		rng:      rng,
	}
}

// Wait blocks until the delay since the last action has elapsed or ctx is
// done. The wait is a timer, never a busy loop.
func (r *JitteredLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delay := r.minDelay
	if delta := r.maxDelay - r.minDelay; delta > 0 {
		delay += time.Duration(r.rng.Int63n(int64(delta)))
	}

	if elapsed := time.Since(r.lastAction); elapsed < delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay - elapsed):
		}
	}

	r.lastAction = time.Now()
	return nil
}
