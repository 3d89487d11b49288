package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Bucket is a token bucket refilled lazily from elapsed wall-clock time.
// Capacity equals the configured requests-per-second, so a full bucket
// allows at most one second's worth of burst.
type Bucket struct {
	mu         sync.Mutex
	capacity   int
	tokens     int
	lastRefill time.Time

	// refillInterval is the time one token takes to accrue: 1s / capacity.
	refillInterval time.Duration
	pollInterval   time.Duration

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// Option configures a Bucket.
type Option func(*Bucket) error

// WithClock replaces the wall clock. Used by tests for deterministic refill.
func WithClock(now func() time.Time) Option {
	return func(b *Bucket) error {
		if now == nil {
			now = time.Now
		}
		b.now = now
		b.lastRefill = now()
		return nil
	}
}

// WithSleep replaces the poll sleep, letting tests advance a fake clock
// instead of waiting.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(b *Bucket) error {
		if sleep == nil {
			sleep = sleepWithContext
		}
		b.sleep = sleep
		return nil
	}
}

// NewBucket creates a bucket allowing requestsPerSecond acquisitions per
// second. Values below 1 are raised to 1. The bucket starts full.
func NewBucket(requestsPerSecond int, opts ...Option) (*Bucket, error) {
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}

	interval := time.Second / time.Duration(requestsPerSecond)
	poll := interval / 4
	if poll < time.Millisecond {
		poll = time.Millisecond
	}

	b := &Bucket{
		capacity:       requestsPerSecond,
		tokens:         requestsPerSecond,
		refillInterval: interval,
		pollInterval:   poll,
		now:            time.Now,
		sleep:          sleepWithContext,
	}
	b.lastRefill = b.now()

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Acquire blocks until a token is available, then consumes it. It polls
// cooperatively rather than sleeping for the full refill interval, and
// returns early if the context is cancelled.
func (b *Bucket) Acquire(ctx context.Context) error {
	for {
		if b.tryAcquire() {
			return nil
		}
		if err := b.sleep(ctx, b.pollInterval); err != nil {
			return err
		}
	}
}

// tryAcquire refills from elapsed time and consumes one token if available.
// Refill and decrement happen under the same lock so no other caller can
// interleave between them.
func (b *Bucket) tryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := b.now().Sub(b.lastRefill)
	if add := int(elapsed / b.refillInterval); add > 0 {
		b.tokens += add
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		// Advance by whole intervals only, keeping the fractional remainder
		// accruing toward the next token.
		b.lastRefill = b.lastRefill.Add(time.Duration(add) * b.refillInterval)
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Available returns the token count after a refill pass. Diagnostic only.
func (b *Bucket) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := b.now().Sub(b.lastRefill)
	tokens := b.tokens + int(elapsed/b.refillInterval)
	if tokens > b.capacity {
		tokens = b.capacity
	}
	return tokens
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
