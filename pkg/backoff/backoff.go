// Package backoff provides the wait strategy for polite scraping: a
// randomized pre-request delay to avoid burst patterns, and exponential
// backoff between failed attempts.
package backoff

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Jitter returns base plus a uniform random duration in [0, spread).
// The result is never negative.
func Jitter(base, spread time.Duration) time.Duration {
	d := base
	if spread > 0 {
		d += time.Duration(rand.Int63n(int64(spread)))
	}
	if d < 0 {
		return 0
	}
	return d
}

// Exponential returns the wait before retry number attempt (0-based):
// 2^attempt seconds plus a uniform random duration in [1s, 3s).
func Exponential(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	extra := time.Second + time.Duration(rand.Int63n(int64(2*time.Second)))
	return base + extra
}

// Sleep blocks for d or until the context is cancelled, whichever comes
// first. It returns the context error on cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
